package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/taskdash/internal/models"
	"github.com/julianstephens/taskdash/internal/views"
)

func types(r ValidationResult) []ConflictType {
	var out []ConflictType
	for _, c := range r.Conflicts {
		out = append(out, c.Type)
	}
	return out
}

const messyDoc = `{
	"schema": 1,
	"activeViewId": "gone",
	"views": [
		{"id": "a", "name": "Inbox", "state": {}},
		{"id": "", "name": "No id"},
		{"id": "b", "name": "  "},
		{"id": "a", "name": "Copy"},
		{"id": "c", "name": "inbox", "state": {}},
		"junk"
	]
}`

func TestValidateViewsDocument(t *testing.T) {
	r := New().ValidateViewsDocument(messyDoc)
	assert.Equal(t, []ConflictType{
		ConflictInvalidView,
		ConflictInvalidView,
		ConflictDuplicateViewID,
		ConflictInvalidView,
		ConflictDuplicateViewName,
		ConflictDanglingActive,
	}, types(r))
	assert.Equal(t, []string{"a", "c"}, r.Conflicts[4].ViewIDs)
	assert.Contains(t, r.FormatReport(), "Active view gone does not exist")
}

func TestValidateViewsDocumentClean(t *testing.T) {
	v := New()
	r := v.ValidateViewsDocument("")
	assert.False(t, r.HasConflicts())
	assert.Equal(t, "No conflicts detected.", r.FormatReport())

	doc, err := views.Marshal(views.Create(views.Empty(), "Inbox", models.ViewState{}))
	require.NoError(t, err)
	r = v.ValidateViewsDocument(string(doc))
	assert.False(t, r.HasConflicts())
}

func TestValidateViewsDocumentMalformed(t *testing.T) {
	for _, raw := range []string{"not json", "[1,2]", "null"} {
		r := New().ValidateViewsDocument(raw)
		assert.Equal(t, []ConflictType{ConflictMalformedStore}, types(r), raw)
	}
}

func TestFixViewsDocument(t *testing.T) {
	fixed, actions := New().FixViewsDocument(messyDoc)
	require.Len(t, fixed.Views, 2)
	assert.Equal(t, "", fixed.ActiveViewID)

	var texts []string
	for _, a := range actions {
		texts = append(texts, a.Action)
	}
	assert.Equal(t, []string{
		"Dropped a view with no id or name",
		"Dropped a view with no id or name",
		"Dropped duplicate of view a",
		"Dropped a view with no id or name",
		"Cleared dangling active view gone",
	}, texts)
}

func TestValidateReview(t *testing.T) {
	store := views.Create(views.Empty(), "Inbox", models.ViewState{})
	id := store.Views[0].ID
	candidates := []string{id, "missing-on", "missing-off"}

	r := New().ValidateReview(store, candidates, map[string]bool{"missing-off": false})
	require.Len(t, r.Conflicts, 1)
	assert.Equal(t, ConflictMissingReviewView, r.Conflicts[0].Type)
	assert.Equal(t, []string{"missing-on"}, r.Conflicts[0].ViewIDs)
}

func TestValidateTasks(t *testing.T) {
	day := func(d int) *time.Time {
		ts := time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}
	tasks := []models.Task{
		{UID: "1", Title: "Fine", StartAt: day(1), DueAt: day(3)},
		{UID: "1", Title: "Clone"},
		{UID: "2", Title: "Backwards", StartAt: day(5), DueAt: day(3)},
		{UID: "3", Title: "Late defer", DeferUntil: day(9), DueAt: day(3)},
		{UID: "4", Title: "Half done", CompletedAt: day(2)},
		{UID: "5", Title: "Done", IsCompleted: true, CompletedAt: day(2)},
	}

	var r ValidationResult
	r.Merge(New().ValidateTasks(tasks))
	assert.Equal(t, []ConflictType{
		ConflictDuplicateTaskUID,
		ConflictInvalidDateTime,
		ConflictInvalidDateTime,
		ConflictInvalidDateTime,
	}, types(r))
	assert.Equal(t, []string{"Fine", "Clone"}, r.Conflicts[0].Items)
	assert.Equal(t, []string{"4"}, r.Conflicts[3].TaskUIDs)
}
