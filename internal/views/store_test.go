package views

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/filters"
	"github.com/julianstephens/taskdash/internal/models"
)

func pinClock(t *testing.T) *time.Time {
	t.Helper()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	seq := 0
	origNow, origID := timeNow, newID
	timeNow = func() time.Time { return now }
	newID = func() string {
		seq++
		return fmt.Sprintf("view-%d", seq)
	}
	t.Cleanup(func() {
		timeNow, newID = origNow, origID
	})
	return &now
}

func stateWith(grouping constants.Grouping, query string) models.ViewState {
	return models.ViewState{
		Filters:  filters.Toggle(filters.Default(), constants.FilterCompletion, constants.CompletionOpen),
		Grouping: grouping,
		Query:    query,
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	pinClock(t)

	s := Create(Empty(), "My View", stateWith(constants.GroupingTime, ""))
	require.Len(t, s.Views, 1)
	id := s.Views[0].ID
	assert.Equal(t, id, s.ActiveViewID)
	assert.Equal(t, "My View", s.Views[0].Name)

	s = Update(s, id, stateWith(constants.GroupingProject, "launch"))
	assert.Equal(t, constants.GroupingProject, s.Views[0].State.Grouping)
	assert.Equal(t, "launch", s.Views[0].State.Query)

	s = Delete(s, id)
	assert.Empty(t, s.Views)
	assert.Equal(t, "", s.ActiveViewID)
}

func TestCreateIgnoresBlankName(t *testing.T) {
	s := Create(Empty(), "   ", stateWith(constants.GroupingTime, ""))
	assert.Empty(t, s.Views)
	assert.Equal(t, "", s.ActiveViewID)
}

func TestCreateDoesNotMutateInput(t *testing.T) {
	pinClock(t)
	base := Create(Empty(), "First", stateWith(constants.GroupingTime, ""))
	_ = Create(base, "Second", stateWith(constants.GroupingTime, ""))
	assert.Len(t, base.Views, 1)
}

func TestRename(t *testing.T) {
	now := pinClock(t)
	s := Create(Empty(), "Draft", stateWith(constants.GroupingTime, ""))
	id := s.Views[0].ID

	*now = now.Add(time.Hour)
	renamed := Rename(s, id, "  Final  ")
	assert.Equal(t, "Final", renamed.Views[0].Name)
	assert.True(t, renamed.Views[0].UpdatedAt.After(renamed.Views[0].CreatedAt))

	assert.Equal(t, "Draft", Rename(s, id, " ").Views[0].Name)
	assert.Equal(t, "Draft", Rename(s, "missing", "Other").Views[0].Name)
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	pinClock(t)
	s := Create(Empty(), "One", stateWith(constants.GroupingTime, ""))
	out := Update(s, "nope", stateWith(constants.GroupingProject, ""))
	assert.Equal(t, s, out)
}

func TestSetActive(t *testing.T) {
	pinClock(t)
	s := Create(Empty(), "One", stateWith(constants.GroupingTime, ""))
	s = SetActive(s, "")
	assert.Equal(t, "", s.ActiveViewID)

	s = SetActive(s, "view-1")
	assert.Equal(t, "view-1", s.ActiveViewID)

	s = SetActive(s, "stale-id")
	assert.Equal(t, "", s.ActiveViewID)
}

func TestDanglingActiveIDHeals(t *testing.T) {
	pinClock(t)
	s := Create(Empty(), "One", stateWith(constants.GroupingTime, ""))
	s = Delete(s, s.ActiveViewID)
	assert.Equal(t, "", Normalize(s).ActiveViewID)

	raw := models.ViewsStore{ActiveViewID: "ghost", Views: []models.View{{ID: "a", Name: "A"}}}
	assert.Equal(t, "", Normalize(raw).ActiveViewID)
}

func TestSetLastDefaultState(t *testing.T) {
	now := pinClock(t)
	s := SetLastDefaultState(Empty(), stateWith(constants.GroupingRecurrence, "in progress "))
	require.NotNil(t, s.LastDefaultState)
	assert.Equal(t, constants.GroupingRecurrence, s.LastDefaultState.Grouping)
	assert.Equal(t, "in progress ", s.LastDefaultState.Query)
	require.NotNil(t, s.LastDefaultUpdatedAt)
	assert.Equal(t, *now, *s.LastDefaultUpdatedAt)
}

func TestLoadMalformed(t *testing.T) {
	inputs := []any{
		nil,
		"",
		"{not json",
		[]byte(`[1,2]`),
		42,
		map[string]any{"views": "nope"},
	}
	for _, in := range inputs {
		s := Load(in)
		assert.Empty(t, s.Views, "input %v", in)
		assert.Equal(t, "", s.ActiveViewID)
		assert.Equal(t, constants.ViewsSchemaVersion, s.Schema)
	}
}

func TestLoadDropsInvalidViews(t *testing.T) {
	raw := `{
		"schema": 1,
		"activeViewId": "b",
		"views": [
			{"id": "a", "name": "Alpha", "createdAt": 1700000000000, "state": {"grouping": "project"}},
			{"id": "", "name": "No id"},
			{"id": "b", "name": "   "},
			"garbage",
			{"id": "c", "name": " Charlie ", "state": {"filters": {"Priority": ["high", null, "high"]}}},
			{"id": "a", "name": "Duplicate"}
		]
	}`
	s := Load(raw)

	require.Len(t, s.Views, 2)
	assert.Equal(t, "Alpha", s.Views[0].Name)
	assert.Equal(t, constants.GroupingProject, s.Views[0].State.Grouping)
	assert.Equal(t, int64(1700000000000), s.Views[0].CreatedAt.UnixMilli())
	assert.Equal(t, "Charlie", s.Views[1].Name)
	assert.Equal(t, []string{"high"}, s.Views[1].State.Filters.Priority)
	// "b" was dropped, so the active reference heals to none
	assert.Equal(t, "", s.ActiveViewID)
}

func TestRoundTrip(t *testing.T) {
	pinClock(t)
	s := Create(Empty(), "One", stateWith(constants.GroupingTime, "q"))
	s = Create(s, "Two", stateWith(constants.GroupingProject, ""))
	s = Rename(s, "view-1", "Uno")
	s = Update(s, "view-2", stateWith(constants.GroupingRecurrence, "x"))
	s = Create(s, "Three", stateWith(constants.GroupingTime, ""))
	s = Delete(s, "view-3")
	s = SetActive(s, "view-1")
	s = SetLastDefaultState(s, stateWith(constants.GroupingProject, "idle"))

	data, err := Marshal(s)
	require.NoError(t, err)
	loaded := Load(data)

	assert.Equal(t, s.ActiveViewID, loaded.ActiveViewID)
	require.Len(t, loaded.Views, len(s.Views))
	for i := range s.Views {
		assert.Equal(t, s.Views[i].ID, loaded.Views[i].ID)
		assert.Equal(t, s.Views[i].Name, loaded.Views[i].Name)
		assert.True(t, filters.Equal(s.Views[i].State, loaded.Views[i].State))
	}
	require.NotNil(t, loaded.LastDefaultState)
	assert.True(t, filters.Equal(*s.LastDefaultState, *loaded.LastDefaultState))
}

func TestDisplayOrder(t *testing.T) {
	pinClock(t)
	s := Create(Empty(), "zeta", stateWith(constants.GroupingTime, ""))
	s = Create(s, "Alpha", stateWith(constants.GroupingTime, ""))
	s = InstallPresets(s, false, InstallOptions{}).Store

	ordered := DisplayOrder(s)
	require.Len(t, ordered, 9)
	for i, p := range Presets() {
		assert.Equal(t, p.ID, ordered[i].ID)
	}
	assert.Equal(t, "Alpha", ordered[7].Name)
	assert.Equal(t, "zeta", ordered[8].Name)
}
