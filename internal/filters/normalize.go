// Package filters normalizes dashboard filter state and implements the named
// filter actions. Every function tolerates malformed input and returns a
// fresh, canonical value.
package filters

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/models"
)

// Default returns the canonical default filter record.
func Default() models.Filters {
	f := models.Filters{
		CompletedRange: constants.RangeAny,
		UpcomingRange:  constants.RangeAny,
	}
	for _, key := range constants.FilterKeys {
		f = f.WithSet(key, []string{})
	}
	return f
}

// Normalize merges raw over the default record and canonicalizes it.
// raw may be a models.Filters, a decoded JSON object, or JSON text; anything
// unrecognized yields the defaults.
func Normalize(raw any) models.Filters {
	switch v := raw.(type) {
	case nil:
		return Default()
	case models.Filters:
		return clean(v)
	case *models.Filters:
		if v == nil {
			return Default()
		}
		return clean(*v)
	}
	m := toMap(raw)
	if m == nil {
		return Default()
	}
	return clean(fromMap(m))
}

// NormalizeViewState canonicalizes a dashboard view state. The query is kept
// verbatim so in-progress typing survives a round trip.
func NormalizeViewState(raw any) models.ViewState {
	switch v := raw.(type) {
	case models.ViewState:
		return models.ViewState{
			Filters:  Hydrate(v),
			Grouping: NormalizeGrouping(string(v.Grouping)),
			Query:    v.Query,
		}
	case *models.ViewState:
		if v != nil {
			return NormalizeViewState(*v)
		}
	}
	m := toMap(raw)
	state := models.ViewState{Filters: Default(), Grouping: constants.GroupingTime}
	if m == nil {
		return state
	}
	state.Filters = Normalize(m["filters"])
	if g, ok := m["grouping"].(string); ok {
		state.Grouping = NormalizeGrouping(g)
	}
	if q, ok := m["query"].(string); ok {
		state.Query = q
	}
	return state
}

// NormalizeGrouping returns g when it is a known grouping mode, otherwise "time".
func NormalizeGrouping(g string) constants.Grouping {
	switch constants.Grouping(g) {
	case constants.GroupingTime, constants.GroupingRecurrence, constants.GroupingProject:
		return constants.Grouping(g)
	}
	return constants.GroupingTime
}

// Equal reports whether two view states are the same after normalization.
// Queries are compared trimmed.
func Equal(a, b models.ViewState) bool {
	na := NormalizeViewState(a)
	nb := NormalizeViewState(b)
	na.Query = strings.TrimSpace(na.Query)
	nb.Query = strings.TrimSpace(nb.Query)
	return reflect.DeepEqual(na, nb)
}

func clean(f models.Filters) models.Filters {
	out := f
	for _, key := range constants.FilterKeys {
		out = out.WithSet(key, cleanSet(f.Set(key)))
	}
	out.CompletedRange = normalizeRange(f.CompletedRange)
	out.UpcomingRange = normalizeRange(f.UpcomingRange)
	return out
}

func cleanSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li != lj {
			return li < lj
		}
		return out[i] < out[j]
	})
	return out
}

func normalizeRange(r string) string {
	for _, known := range constants.Ranges {
		if r == known {
			return r
		}
	}
	return constants.RangeAny
}

func fromMap(m map[string]any) models.Filters {
	f := Default()
	for _, key := range constants.FilterKeys {
		if v, ok := m[string(key)]; ok {
			f = f.WithSet(key, stringsOf(v))
		}
	}
	f.CompletedRange = stringOf(m[constants.RangeCompleted])
	f.UpcomingRange = stringOf(m[constants.RangeUpcoming])
	f.ProjectText = stringOf(m[constants.TextProject])
	f.WaitingText = stringOf(m[constants.TextWaiting])
	f.ContextText = stringOf(m[constants.TextContext])
	return f
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func stringsOf(v any) []string {
	switch items := v.(type) {
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// toMap decodes raw into a generic JSON object, or returns nil.
func toMap(raw any) map[string]any {
	var data []byte
	switch v := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		data = b
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}
