// Package rows flattens grouped tasks into the row list the dashboard renders.
package rows

import (
	"sync"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/julianstephens/taskdash/internal/engine"
	"github.com/julianstephens/taskdash/internal/models"
)

// Kind distinguishes group headers from task rows.
type Kind int

const (
	KindHeader Kind = iota
	KindTask
)

// Row is one line of the virtualized list.
type Row struct {
	Key     string
	Kind    Kind
	GroupID string
	// Title is the group title on header rows.
	Title string
	// Count is the number of tasks in the group on header rows.
	Count int
	// Collapsed reports whether a header's group is folded.
	Collapsed bool
	Task      *models.Task
}

// Project emits a header row per group followed by its task rows. A group is
// collapsed only when expanded holds an explicit false for its id.
func Project(groups []engine.Group, expanded map[string]bool) []Row {
	n := len(groups)
	for _, g := range groups {
		n += len(g.Items)
	}
	out := make([]Row, 0, n)
	for _, g := range groups {
		collapsed := isCollapsed(expanded, g.ID)
		out = append(out, Row{
			Key:       g.ID,
			Kind:      KindHeader,
			GroupID:   g.ID,
			Title:     g.Title,
			Count:     len(g.Items),
			Collapsed: collapsed,
		})
		if collapsed {
			continue
		}
		for i := range g.Items {
			t := &g.Items[i]
			out = append(out, Row{
				Key:     TaskKey(g.ID, t.UID),
				Kind:    KindTask,
				GroupID: g.ID,
				Task:    t,
			})
		}
	}
	return out
}

// TaskKey is the row key of task uid within group groupID. Header rows use
// the bare group id.
func TaskKey(groupID, uid string) string {
	return groupID + "\x00" + uid
}

func isCollapsed(expanded map[string]bool, id string) bool {
	v, ok := expanded[id]
	return ok && !v
}

// IndexOf returns the position of the row with key, or -1.
func IndexOf(rows []Row, key string) int {
	for i, r := range rows {
		if r.Key == key {
			return i
		}
	}
	return -1
}

// Window returns the visible slice of rows starting at offset. offset is
// clamped into range and height <= 0 yields no rows.
func Window(rows []Row, offset, height int) []Row {
	if height <= 0 || len(rows) == 0 {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		offset = len(rows) - 1
	}
	end := offset + height
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

// Projector memoizes the most recent projection. It is safe for concurrent use.
type Projector struct {
	mu   sync.Mutex
	key  uint64
	ok   bool
	rows []Row
}

type projectionInput struct {
	Groups   []engine.Group
	Expanded map[string]bool
}

// Project returns the cached rows when groups and expanded hash to the same
// value as the previous call.
func (p *Projector) Project(groups []engine.Group, expanded map[string]bool) []Row {
	key, err := hashstructure.Hash(projectionInput{Groups: groups, Expanded: expanded}, hashstructure.FormatV2, nil)
	if err != nil {
		return Project(groups, expanded)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ok && p.key == key {
		return p.rows
	}
	p.rows = Project(groups, expanded)
	p.key = key
	p.ok = true
	return p.rows
}
