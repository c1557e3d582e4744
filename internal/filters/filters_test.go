package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/models"
)

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []any{
		nil,
		map[string]any{},
		map[string]any{"unknown": 42, "Priority": []any{"high", nil, "low", "high"}},
		`{"Completion":["open"],"completedRange":"7d","GTD":["Someday","next action"]}`,
		[]byte(`not json`),
		models.Filters{Due: []string{"today", "overdue", "today"}},
		42,
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "input %v", in)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	f := Normalize(map[string]any{"Completion": []any{"open"}})

	assert.Equal(t, []string{"open"}, f.Completion)
	assert.Equal(t, []string{}, f.Due)
	assert.Equal(t, constants.RangeAny, f.CompletedRange)
	assert.Equal(t, constants.RangeAny, f.UpcomingRange)
	assert.Equal(t, "", f.ProjectText)
}

func TestNormalizeSortsCaseInsensitively(t *testing.T) {
	f := Normalize(map[string]any{"GTD": []any{"someday", "Delegated", "next action", 7}})
	assert.Equal(t, []string{"Delegated", "next action", "someday"}, f.GTD)
}

func TestNormalizeRejectsUnknownRanges(t *testing.T) {
	f := Normalize(map[string]any{"completedRange": "14d", "upcomingRange": "30d", "projectText": 3})
	assert.Equal(t, constants.RangeAny, f.CompletedRange)
	assert.Equal(t, constants.Range30d, f.UpcomingRange)
	assert.Equal(t, "", f.ProjectText)
}

func TestNormalizeViewState(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		grouping constants.Grouping
		query    string
	}{
		{name: "nil", raw: nil, grouping: constants.GroupingTime},
		{name: "unknown grouping", raw: map[string]any{"grouping": "week"}, grouping: constants.GroupingTime},
		{name: "project grouping", raw: map[string]any{"grouping": "project", "query": "  draft "}, grouping: constants.GroupingProject, query: "  draft "},
		{name: "struct", raw: models.ViewState{Grouping: "recurrence"}, grouping: constants.GroupingRecurrence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NormalizeViewState(tt.raw)
			assert.Equal(t, tt.grouping, st.Grouping)
			assert.Equal(t, tt.query, st.Query)
			assert.Equal(t, Default(), st.Filters)
		})
	}
}

func TestEqual(t *testing.T) {
	a := models.ViewState{
		Filters:  models.Filters{Priority: []string{"high", "low"}},
		Grouping: constants.GroupingProject,
		Query:    "report ",
	}
	b := models.ViewState{
		Filters:  models.Filters{Priority: []string{"low", "high", "low"}, CompletedRange: "bogus"},
		Grouping: constants.GroupingProject,
		Query:    " report",
	}
	assert.True(t, Equal(a, b))

	b.Grouping = constants.GroupingTime
	assert.False(t, Equal(a, b))
}

func TestToggle(t *testing.T) {
	f := Toggle(Default(), constants.FilterPriority, "high")
	assert.Equal(t, []string{"high"}, f.Priority)

	f = Toggle(f, constants.FilterPriority, "low")
	assert.Equal(t, []string{"high", "low"}, f.Priority)

	g := Toggle(f, constants.FilterPriority, "high")
	assert.Equal(t, []string{"low"}, g.Priority)
	// the original record is untouched
	assert.Equal(t, []string{"high", "low"}, f.Priority)
}

func TestToggleSingle(t *testing.T) {
	f := Toggle(Default(), constants.FilterCompletion, "open")
	f = ToggleSingle(f, constants.FilterCompletion, "completed")
	assert.Equal(t, []string{"completed"}, f.Completion)
	assert.True(t, IsSingle(f, constants.FilterCompletion, "completed"))

	f = ToggleSingle(f, constants.FilterCompletion, "completed")
	assert.Empty(t, f.Completion)
}

func TestSetTextAndRange(t *testing.T) {
	f := SetText(Default(), constants.TextProject, "  Website ")
	assert.Equal(t, "  Website ", f.ProjectText)

	f = SetRange(f, constants.RangeCompleted, constants.Range90d)
	assert.Equal(t, constants.Range90d, f.CompletedRange)
	f = SetRange(f, constants.RangeCompleted, "forever")
	assert.Equal(t, constants.RangeAny, f.CompletedRange)

	assert.Equal(t, Default(), Reset())
}

func TestHydrate(t *testing.T) {
	state := models.ViewState{
		Filters: models.Filters{
			Due:            []string{"today", "", "overdue", "today"},
			CompletedRange: "1y",
		},
		Grouping: constants.GroupingProject,
	}
	got := Hydrate(state)
	assert.Equal(t, []string{"overdue", "today"}, got.Due)
	assert.Equal(t, "any", got.CompletedRange)
	assert.Equal(t, got, NormalizeViewState(state).Filters)
}

func TestSessionRoundTrip(t *testing.T) {
	f := Toggle(Default(), constants.FilterDue, "today")
	f = SetText(f, constants.TextWaiting, "alex")

	got := DecodeSession(EncodeSession(f))
	require.Equal(t, f, got)
}

func TestDecodeSessionFallsBack(t *testing.T) {
	cases := map[string]string{
		"empty":           ``,
		"corrupt":         `{"v":`,
		"missing version": `{"filters":{"Due":["today"]}}`,
		"future version":  `{"v":99,"filters":{"Due":["today"]}}`,
		"not an object":   `[1,2,3]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, Default(), DecodeSession([]byte(raw)))
		})
	}
}
