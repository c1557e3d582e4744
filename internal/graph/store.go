// Package graph is a local notes graph: pages, blocks, attribute references
// and the task records extracted from blocks. It backs the task source, the
// option lookups and bulk edits.
package graph

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/logger"
	"github.com/julianstephens/taskdash/internal/migration"
	"github.com/julianstephens/taskdash/internal/models"
	"github.com/julianstephens/taskdash/internal/options"
	"github.com/julianstephens/taskdash/migrations"
)

var (
	// ErrNotInitialized is returned when the graph database does not exist.
	ErrNotInitialized = errors.New("graph not initialized")

	timeNow = func() time.Time { return time.Now() }
)

// Attribute labels maintained for task metadata.
const (
	LabelProject    = "Project"
	LabelWaitingFor = "Waiting For"
	LabelContext    = "Context"
)

// Store is a SQLite notes graph.
type Store struct {
	path string
	db   *sql.DB

	idMu    sync.Mutex
	entropy io.Reader
}

func NewStore(path string) *Store {
	return &Store{
		path:    path,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Init creates the database if needed and applies migrations.
func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create graph directory: %w", err)
	}
	if s.db == nil {
		db, err := sql.Open("sqlite", s.dsn())
		if err != nil {
			return fmt.Errorf("failed to open graph: %w", err)
		}
		s.db = db
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to migrate graph: %w", err)
	}
	return nil
}

// Load opens an existing graph.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return ErrNotInitialized
	}
	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open graph: %w", err)
	}
	s.db = db

	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// dsn enables foreign keys on every pooled connection.
func (s *Store) dsn() string {
	return s.path + "?_pragma=foreign_keys(1)"
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "graph")
	if err != nil {
		return nil, fmt.Errorf("failed to access graph migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS), nil
}

func (s *Store) newUID() string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(timeNow()), s.entropy)
	if err != nil {
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return strings.ToLower(id.String())
}

// FetchTasks returns every task with buckets computed against the current time.
func (s *Store) FetchTasks(ctx context.Context) ([]models.Task, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.block_uid, t.title, p.title, p.uid, b.text, t.is_completed,
		       t.completed_at, t.start_at, t.defer_until, t.due_at, t.repeat_text,
		       t.priority, t.energy, t.gtd, t.project, t.waiting_for, t.context
		FROM tasks t
		JOIN blocks b ON b.uid = t.block_uid
		JOIN pages p ON p.uid = b.page_uid
		ORDER BY p.title COLLATE NOCASE, t.rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	now := timeNow()
	tasks := []models.Task{}
	for rows.Next() {
		var (
			t                                models.Task
			completed                        int
			completedAt, startAt, deferUntil sql.NullString
			dueAt                            sql.NullString
			contextJSON                      string
		)
		if err := rows.Scan(&t.UID, &t.Title, &t.PageTitle, &t.PageUID, &t.Text, &completed,
			&completedAt, &startAt, &deferUntil, &dueAt, &t.RepeatText,
			&t.Metadata.Priority, &t.Metadata.Energy, &t.Metadata.GTD, &t.Metadata.Project,
			&t.Metadata.WaitingFor, &contextJSON); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		t.IsCompleted = completed != 0
		t.CompletedAt = parseStoredTime(completedAt)
		t.StartAt = parseStoredTime(startAt)
		t.DeferUntil = parseStoredTime(deferUntil)
		t.DueAt = parseStoredTime(dueAt)
		if err := json.Unmarshal([]byte(contextJSON), &t.Metadata.Context); err != nil {
			logger.Debug("Ignoring malformed task context", "uid", t.UID, "error", err)
			t.Metadata.Context = nil
		}
		Bucket(&t, now)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Bucket fills the precomputed due, start, defer and recurrence buckets.
func Bucket(t *models.Task, now time.Time) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	switch {
	case t.DueAt == nil:
		t.DueBucket = constants.DueNone
	case t.DueAt.Before(today):
		t.DueBucket = constants.DueOverdue
	case t.DueAt.Before(tomorrow):
		t.DueBucket = constants.DueToday
	default:
		t.DueBucket = constants.DueUpcoming
	}

	switch {
	case t.StartAt == nil:
		t.StartBucket = constants.StartNone
	case t.StartAt.After(now):
		t.StartBucket = constants.StartNotStarted
	default:
		t.StartBucket = constants.StartStarted
	}

	switch {
	case t.DeferUntil == nil:
		t.DeferBucket = constants.DeferNone
	case t.DeferUntil.After(now):
		t.DeferBucket = constants.DeferDeferred
	default:
		t.DeferBucket = constants.DeferAvailable
	}

	if strings.TrimSpace(t.RepeatText) != "" {
		t.RecurrenceBucket = constants.RecurrenceRecurring
	} else {
		t.RecurrenceBucket = constants.RecurrenceOneOff
	}
}

// LookupAttribute returns referenced values for any of labels.
func (s *Store) LookupAttribute(ctx context.Context, labels []string) ([]options.Candidate, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	if len(labels) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(labels)), ",")
	args := make([]any, len(labels))
	for i, l := range labels {
		args[i] = strings.ToLower(l)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT ar.value, p.title
		FROM attribute_refs ar
		JOIN blocks b ON b.uid = ar.block_uid
		JOIN pages p ON p.uid = b.page_uid
		WHERE lower(ar.label) IN (`+placeholders+`)
		ORDER BY ar.value
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("looking up attributes: %w", err)
	}
	defer rows.Close()

	var out []options.Candidate
	for rows.Next() {
		var c options.Candidate
		if err := rows.Scan(&c.Value, &c.PageTitle); err != nil {
			return nil, fmt.Errorf("scanning attribute: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ScanBlocks returns blocks whose text contains any needle, ignoring case.
func (s *Store) ScanBlocks(ctx context.Context, needles []string) ([]options.Block, error) {
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	if len(needles) == 0 {
		return nil, nil
	}
	conds := make([]string, len(needles))
	args := make([]any, len(needles))
	for i, n := range needles {
		conds[i] = "instr(lower(b.text), ?) > 0"
		args[i] = strings.ToLower(n)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.uid, p.title, b.text
		FROM blocks b
		JOIN pages p ON p.uid = b.page_uid
		WHERE `+strings.Join(conds, " OR ")+`
		ORDER BY b.rowid
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("scanning blocks: %w", err)
	}
	defer rows.Close()

	var out []options.Block
	for rows.Next() {
		var b options.Block
		if err := rows.Scan(&b.UID, &b.PageTitle, &b.Text); err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateTasks applies patch to every task in uids and keeps the attribute
// references in step. It returns how many tasks were changed; unknown uids
// are skipped.
func (s *Store) UpdateTasks(ctx context.Context, uids []string, patch models.MetadataPatch) (int, error) {
	if s.db == nil {
		return 0, ErrNotInitialized
	}
	if patch.IsEmpty() || len(uids) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning bulk update: %w", err)
	}
	defer tx.Rollback()

	updated := 0
	for _, uid := range uids {
		var (
			meta        models.TaskMetadata
			contextJSON string
		)
		err := tx.QueryRowContext(ctx, `
			SELECT priority, energy, gtd, project, waiting_for, context FROM tasks WHERE block_uid = ?
		`, uid).Scan(&meta.Priority, &meta.Energy, &meta.GTD, &meta.Project, &meta.WaitingFor, &contextJSON)
		if errors.Is(err, sql.ErrNoRows) {
			logger.Debug("Skipping unknown task in bulk update", "uid", uid)
			continue
		}
		if err != nil {
			return updated, fmt.Errorf("reading task %s: %w", uid, err)
		}
		_ = json.Unmarshal([]byte(contextJSON), &meta.Context)

		next := patch.Apply(meta)
		if err := writeMetadata(ctx, tx, uid, next); err != nil {
			return updated, err
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing bulk update: %w", err)
	}
	return updated, nil
}

func writeMetadata(ctx context.Context, tx *sql.Tx, uid string, m models.TaskMetadata) error {
	contexts := m.Context
	if contexts == nil {
		contexts = []string{}
	}
	contextJSON, err := json.Marshal(contexts)
	if err != nil {
		return fmt.Errorf("encoding context: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE tasks SET priority = ?, energy = ?, gtd = ?, project = ?, waiting_for = ?, context = ?
		WHERE block_uid = ?
	`, m.Priority, m.Energy, m.GTD, m.Project, m.WaitingFor, string(contextJSON), uid); err != nil {
		return fmt.Errorf("updating task %s: %w", uid, err)
	}
	return syncTaskRefs(ctx, tx, uid, m)
}

// syncTaskRefs replaces the metadata attribute references of a task block.
func syncTaskRefs(ctx context.Context, tx *sql.Tx, uid string, m models.TaskMetadata) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM attribute_refs WHERE block_uid = ? AND label IN (?, ?, ?)
	`, uid, LabelProject, LabelWaitingFor, LabelContext); err != nil {
		return fmt.Errorf("clearing references for %s: %w", uid, err)
	}
	refs := map[string][]string{
		LabelProject:    {m.Project},
		LabelWaitingFor: {m.WaitingFor},
		LabelContext:    m.Context,
	}
	for label, values := range refs {
		for _, v := range values {
			if err := insertRef(ctx, tx, uid, label, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertRef(ctx context.Context, tx *sql.Tx, blockUID, label, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO attribute_refs (block_uid, label, value) VALUES (?, ?, ?)
	`, blockUID, label, value); err != nil {
		return fmt.Errorf("inserting reference %s for %s: %w", label, blockUID, err)
	}
	return nil
}

func parseStoredTime(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil
	}
	return &t
}

func formatStoredTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
