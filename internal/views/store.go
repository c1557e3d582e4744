// Package views implements the saved-views document. Every operation is pure:
// it takes a store and returns a new, normalized store, and never fails.
package views

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/filters"
	"github.com/julianstephens/taskdash/internal/logger"
	"github.com/julianstephens/taskdash/internal/models"
)

var (
	timeNow = func() time.Time { return time.Now().UTC() }
	newID   = func() string { return uuid.NewString() }
)

// Empty returns a store with no views.
func Empty() models.ViewsStore {
	return models.ViewsStore{Schema: constants.ViewsSchemaVersion, Views: []models.View{}}
}

// Load parses a persisted store. raw may be a models.ViewsStore, a decoded JSON
// object, or JSON text. Invalid views are dropped one by one; anything that is
// not a store at all yields an empty store.
func Load(raw any) models.ViewsStore {
	switch v := raw.(type) {
	case nil:
		return Empty()
	case models.ViewsStore:
		return Normalize(v)
	case *models.ViewsStore:
		if v == nil {
			return Empty()
		}
		return Normalize(*v)
	}

	m := decodeObject(raw)
	if m == nil {
		logger.Debug("views store is not an object, starting empty")
		return Empty()
	}

	s := Empty()
	if items, ok := m["views"].([]any); ok {
		for _, item := range items {
			if view, ok := parseView(item); ok {
				s.Views = append(s.Views, view)
			}
		}
	}
	if id, ok := m["activeViewId"].(string); ok {
		s.ActiveViewID = id
	}
	if st, ok := m["lastDefaultState"].(map[string]any); ok {
		state := filters.NormalizeViewState(st)
		s.LastDefaultState = &state
	}
	if ts, ok := parseTime(m["lastDefaultUpdatedAt"]); ok {
		s.LastDefaultUpdatedAt = &ts
	}
	return Normalize(s)
}

// Normalize returns a canonical copy of s: invalid and duplicate views are
// dropped, names are trimmed, states are normalized, and a dangling
// ActiveViewID is cleared. Normalize is idempotent.
func Normalize(s models.ViewsStore) models.ViewsStore {
	out := models.ViewsStore{
		Schema:       constants.ViewsSchemaVersion,
		ActiveViewID: s.ActiveViewID,
		Views:        make([]models.View, 0, len(s.Views)),
	}
	seen := make(map[string]struct{}, len(s.Views))
	for _, v := range s.Views {
		name := strings.TrimSpace(v.Name)
		if v.ID == "" || name == "" {
			continue
		}
		if _, dup := seen[v.ID]; dup {
			continue
		}
		seen[v.ID] = struct{}{}
		v.Name = name
		v.State = filters.NormalizeViewState(v.State)
		out.Views = append(out.Views, v)
	}
	if _, ok := seen[out.ActiveViewID]; !ok {
		out.ActiveViewID = ""
	}
	if s.LastDefaultState != nil {
		state := filters.NormalizeViewState(*s.LastDefaultState)
		out.LastDefaultState = &state
	}
	if s.LastDefaultUpdatedAt != nil {
		ts := *s.LastDefaultUpdatedAt
		out.LastDefaultUpdatedAt = &ts
	}
	return out
}

// Marshal serializes the normalized store.
func Marshal(s models.ViewsStore) ([]byte, error) {
	return json.Marshal(Normalize(s))
}

// Create appends a new view built from state and makes it active.
// An empty name is a no-op.
func Create(s models.ViewsStore, name string, state models.ViewState) models.ViewsStore {
	out := Normalize(s)
	name = strings.TrimSpace(name)
	if name == "" {
		return out
	}
	id := newID()
	for id == "" || indexOf(out, id) >= 0 {
		id = newID()
	}
	now := timeNow()
	out.Views = append(out.Views, models.View{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		State:     filters.NormalizeViewState(state),
	})
	out.ActiveViewID = id
	return out
}

// Update overwrites the state of view id. Unknown ids are a no-op.
func Update(s models.ViewsStore, id string, state models.ViewState) models.ViewsStore {
	out := Normalize(s)
	i := indexOf(out, id)
	if i < 0 {
		return out
	}
	out.Views[i].State = filters.NormalizeViewState(state)
	out.Views[i].UpdatedAt = timeNow()
	return out
}

// Rename changes the name of view id. Empty names and unknown ids are a no-op.
func Rename(s models.ViewsStore, id, name string) models.ViewsStore {
	out := Normalize(s)
	name = strings.TrimSpace(name)
	i := indexOf(out, id)
	if name == "" || i < 0 {
		return out
	}
	out.Views[i].Name = name
	out.Views[i].UpdatedAt = timeNow()
	return out
}

// Delete removes view id, clearing the active id when it pointed at it.
func Delete(s models.ViewsStore, id string) models.ViewsStore {
	out := Normalize(s)
	i := indexOf(out, id)
	if i < 0 {
		return out
	}
	out.Views = append(out.Views[:i:i], out.Views[i+1:]...)
	if out.ActiveViewID == id {
		out.ActiveViewID = ""
	}
	return out
}

// SetActive activates id when it names an existing view; otherwise no view is active.
func SetActive(s models.ViewsStore, id string) models.ViewsStore {
	out := Normalize(s)
	if indexOf(out, id) >= 0 {
		out.ActiveViewID = id
	} else {
		out.ActiveViewID = ""
	}
	return out
}

// SetLastDefaultState records the ad-hoc configuration used while no view is active.
func SetLastDefaultState(s models.ViewsStore, state models.ViewState) models.ViewsStore {
	out := Normalize(s)
	st := filters.NormalizeViewState(state)
	now := timeNow()
	out.LastDefaultState = &st
	out.LastDefaultUpdatedAt = &now
	return out
}

// Find returns view id.
func Find(s models.ViewsStore, id string) (models.View, bool) {
	for _, v := range s.Views {
		if v.ID == id && id != "" {
			return v, true
		}
	}
	return models.View{}, false
}

// IDs returns the ids of all views in storage order.
func IDs(s models.ViewsStore) []string {
	ids := make([]string, 0, len(s.Views))
	for _, v := range s.Views {
		ids = append(ids, v.ID)
	}
	return ids
}

// DisplayOrder returns the views as they are listed to the user: presets in
// preset order, then the remaining views by name.
func DisplayOrder(s models.ViewsStore) []models.View {
	rank := make(map[string]int)
	for i, p := range Presets() {
		rank[p.ID] = i
	}
	out := append([]models.View(nil), Normalize(s).Views...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, iPreset := rank[out[i].ID]
		rj, jPreset := rank[out[j].ID]
		switch {
		case iPreset && jPreset:
			return ri < rj
		case iPreset != jPreset:
			return iPreset
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func indexOf(s models.ViewsStore, id string) int {
	if id == "" {
		return -1
	}
	for i, v := range s.Views {
		if v.ID == id {
			return i
		}
	}
	return -1
}

func parseView(raw any) (models.View, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return models.View{}, false
	}
	id, _ := m["id"].(string)
	name, _ := m["name"].(string)
	if id == "" || strings.TrimSpace(name) == "" {
		return models.View{}, false
	}
	v := models.View{
		ID:    id,
		Name:  strings.TrimSpace(name),
		State: filters.NormalizeViewState(m["state"]),
	}
	if ts, ok := parseTime(m["createdAt"]); ok {
		v.CreatedAt = ts
	}
	if ts, ok := parseTime(m["updatedAt"]); ok {
		v.UpdatedAt = ts
	}
	return v, true
}

// parseTime accepts RFC 3339 strings and epoch milliseconds.
func parseTime(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case string:
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, false
		}
		return ts.UTC(), true
	case float64:
		return time.UnixMilli(int64(v)).UTC(), true
	}
	return time.Time{}, false
}

func decodeObject(raw any) map[string]any {
	var data []byte
	switch v := raw.(type) {
	case map[string]any:
		return v
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	case string:
		data = []byte(v)
	default:
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}
