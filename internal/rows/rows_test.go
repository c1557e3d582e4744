package rows

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/taskdash/internal/engine"
	"github.com/julianstephens/taskdash/internal/models"
)

func sampleGroups() []engine.Group {
	return []engine.Group{
		{ID: "overdue", Title: "Overdue", Items: []models.Task{{UID: "a"}, {UID: "b"}}},
		{ID: "today", Title: "Today", Items: []models.Task{{UID: "c"}}},
	}
}

func keys(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Key
	}
	return out
}

func TestProjectExpandedByDefault(t *testing.T) {
	rows := Project(sampleGroups(), nil)

	assert.Equal(t, []string{"overdue", TaskKey("overdue", "a"), TaskKey("overdue", "b"), "today", TaskKey("today", "c")}, keys(rows))
	assert.Equal(t, KindHeader, rows[0].Kind)
	assert.Equal(t, 2, rows[0].Count)
	assert.Equal(t, "Overdue", rows[0].Title)
	require.NotNil(t, rows[1].Task)
	assert.Equal(t, "a", rows[1].Task.UID)
	assert.Equal(t, "overdue", rows[1].GroupID)
}

func TestProjectCollapsedOnlyWhenExplicit(t *testing.T) {
	rows := Project(sampleGroups(), map[string]bool{"overdue": false, "today": true, "other": false})

	assert.Equal(t, []string{"overdue", "today", TaskKey("today", "c")}, keys(rows))
	assert.True(t, rows[0].Collapsed)
	assert.Equal(t, 2, rows[0].Count)
	assert.False(t, rows[1].Collapsed)
}

func TestProjectIsDeterministic(t *testing.T) {
	a := Project(sampleGroups(), map[string]bool{"today": false})
	b := Project(sampleGroups(), map[string]bool{"today": false})
	assert.Equal(t, a, b)
}

func TestKeysUniqueWithSlashInProject(t *testing.T) {
	groups := []engine.Group{
		{ID: "project:a", Title: "a", Items: []models.Task{{UID: "b"}}},
		{ID: "project:a/b", Title: "a/b", Items: []models.Task{{UID: "c"}}},
	}
	rows := Project(groups, nil)

	seen := map[string]bool{}
	for _, k := range keys(rows) {
		require.False(t, seen[k], "duplicate key %q", k)
		seen[k] = true
	}
	assert.Equal(t, 2, IndexOf(rows, "project:a/b"))
	assert.Equal(t, 1, IndexOf(rows, TaskKey("project:a", "b")))
}

func TestIndexOfAndWindow(t *testing.T) {
	rows := Project(sampleGroups(), nil)

	assert.Equal(t, 3, IndexOf(rows, "today"))
	assert.Equal(t, -1, IndexOf(rows, "missing"))

	assert.Equal(t, []string{TaskKey("overdue", "b"), "today"}, keys(Window(rows, 2, 2)))
	assert.Equal(t, []string{TaskKey("today", "c")}, keys(Window(rows, 4, 10)))
	assert.Equal(t, []string{"overdue"}, keys(Window(rows, -3, 1)))
	assert.Equal(t, []string{TaskKey("today", "c")}, keys(Window(rows, 99, 3)))
	assert.Nil(t, Window(rows, 0, 0))
	assert.Nil(t, Window(nil, 0, 5))
}

func TestProjectorMemoizes(t *testing.T) {
	var p Projector

	first := p.Project(sampleGroups(), nil)
	second := p.Project(sampleGroups(), nil)
	require.NotEmpty(t, first)
	assert.Same(t, &first[0], &second[0], "identical inputs should reuse the cached rows")

	collapsed := p.Project(sampleGroups(), map[string]bool{"overdue": false})
	assert.Equal(t, []string{"overdue", "today", TaskKey("today", "c")}, keys(collapsed))

	changed := sampleGroups()
	changed[1].Items[0].Title = "renamed"
	rows := p.Project(changed, map[string]bool{"overdue": false})
	assert.Equal(t, "renamed", rows[2].Task.Title)
}
