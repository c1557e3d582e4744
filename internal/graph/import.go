package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/models"
)

// ImportFile is the YAML document accepted by Import.
type ImportFile struct {
	Pages []ImportPage `yaml:"pages"`
}

// ImportPage is a page and its blocks.
type ImportPage struct {
	UID    string        `yaml:"uid"`
	Title  string        `yaml:"title"`
	Blocks []ImportBlock `yaml:"blocks"`
}

// ImportBlock is a block. Attributes are stored as references; a block
// with a Task is also a task.
type ImportBlock struct {
	UID        string              `yaml:"uid"`
	Text       string              `yaml:"text"`
	Attributes map[string][]string `yaml:"attributes"`
	Task       *ImportTask         `yaml:"task"`
}

// ImportTask carries the task fields of a block. Dates are YYYY-MM-DD or RFC 3339.
type ImportTask struct {
	Title       string              `yaml:"title"`
	Completed   bool                `yaml:"completed"`
	CompletedAt string              `yaml:"completedAt"`
	Start       string              `yaml:"start"`
	Defer       string              `yaml:"defer"`
	Due         string              `yaml:"due"`
	Repeat      string              `yaml:"repeat"`
	Metadata    models.TaskMetadata `yaml:",inline"`
}

// ImportResult counts what an import wrote.
type ImportResult struct {
	Pages  int
	Blocks int
	Tasks  int
}

var taskMarker = regexp.MustCompile(`(?i)\{\{\s*\[\[(TODO|DONE)\]\]\s*\}\}`)

// titleFromText returns the first line of text without task markers.
func titleFromText(text string) string {
	line := strings.SplitN(text, "\n", 2)[0]
	line = taskMarker.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

// ParseImport decodes an import document.
func ParseImport(r io.Reader) (ImportFile, error) {
	var f ImportFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return ImportFile{}, nil
		}
		return ImportFile{}, fmt.Errorf("parsing import: %w", err)
	}
	return f, nil
}

// Import upserts pages, blocks and tasks from a YAML document. Missing uids
// are generated. Pages are matched by title so repeated imports update in place.
func (s *Store) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	if s.db == nil {
		return ImportResult{}, ErrNotInitialized
	}
	f, err := ParseImport(r)
	if err != nil {
		return ImportResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	var res ImportResult
	for _, page := range f.Pages {
		title := strings.TrimSpace(page.Title)
		if title == "" {
			return ImportResult{}, fmt.Errorf("page %d has no title", res.Pages+1)
		}
		pageUID, err := s.upsertPage(ctx, tx, page.UID, title)
		if err != nil {
			return ImportResult{}, err
		}
		res.Pages++

		for _, block := range page.Blocks {
			isTask, err := s.importBlock(ctx, tx, pageUID, block)
			if err != nil {
				return ImportResult{}, err
			}
			res.Blocks++
			if isTask {
				res.Tasks++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("committing import: %w", err)
	}
	return res, nil
}

func (s *Store) upsertPage(ctx context.Context, tx *sql.Tx, uid, title string) (string, error) {
	var existing string
	err := tx.QueryRowContext(ctx, "SELECT uid FROM pages WHERE title = ?", title).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("looking up page %q: %w", title, err)
	}
	if uid == "" {
		uid = s.newUID()
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO pages (uid, title) VALUES (?, ?)", uid, title); err != nil {
		return "", fmt.Errorf("inserting page %q: %w", title, err)
	}
	return uid, nil
}

func (s *Store) importBlock(ctx context.Context, tx *sql.Tx, pageUID string, b ImportBlock) (bool, error) {
	uid := b.UID
	if uid == "" {
		uid = s.newUID()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO blocks (uid, page_uid, text) VALUES (?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET page_uid = excluded.page_uid, text = excluded.text
	`, uid, pageUID, b.Text); err != nil {
		return false, fmt.Errorf("inserting block %s: %w", uid, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM attribute_refs WHERE block_uid = ?", uid); err != nil {
		return false, fmt.Errorf("clearing references for %s: %w", uid, err)
	}
	for label, values := range b.Attributes {
		for _, v := range values {
			if err := insertRef(ctx, tx, uid, label, v); err != nil {
				return false, err
			}
		}
	}

	if b.Task == nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE block_uid = ?", uid); err != nil {
			return false, fmt.Errorf("clearing task %s: %w", uid, err)
		}
		return false, nil
	}
	return true, importTask(ctx, tx, uid, b)
}

func importTask(ctx context.Context, tx *sql.Tx, uid string, b ImportBlock) error {
	t := b.Task
	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = titleFromText(b.Text)
	}
	dates := map[string]*time.Time{}
	for name, raw := range map[string]string{
		"completedAt": t.CompletedAt,
		"start":       t.Start,
		"defer":       t.Defer,
		"due":         t.Due,
	} {
		parsed, err := parseImportTime(raw)
		if err != nil {
			return fmt.Errorf("task %s: invalid %s %q: %w", uid, name, raw, err)
		}
		dates[name] = parsed
	}
	completed := 0
	if t.Completed {
		completed = 1
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (block_uid, title, is_completed, completed_at, start_at, defer_until, due_at, repeat_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(block_uid) DO UPDATE SET
			title = excluded.title,
			is_completed = excluded.is_completed,
			completed_at = excluded.completed_at,
			start_at = excluded.start_at,
			defer_until = excluded.defer_until,
			due_at = excluded.due_at,
			repeat_text = excluded.repeat_text
	`, uid, title, completed,
		formatStoredTime(dates["completedAt"]), formatStoredTime(dates["start"]),
		formatStoredTime(dates["defer"]), formatStoredTime(dates["due"]), t.Repeat); err != nil {
		return fmt.Errorf("inserting task %s: %w", uid, err)
	}
	return writeMetadata(ctx, tx, uid, t.Metadata)
}

func parseImportTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(constants.DateFormat, raw, timeNow().Location())
	if err != nil {
		return nil, err
	}
	return &t, nil
}
