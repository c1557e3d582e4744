package filters

import (
	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/models"
)

// Toggle adds token to the set under key, or removes it when present.
func Toggle(f models.Filters, key constants.FilterKey, token string) models.Filters {
	cur := clean(f).Set(key)
	next := make([]string, 0, len(cur)+1)
	found := false
	for _, v := range cur {
		if v == token {
			found = true
			continue
		}
		next = append(next, v)
	}
	if !found {
		next = append(next, token)
	}
	return clean(f.WithSet(key, next))
}

// ToggleSingle makes token the only selection under key. Selecting the token
// that is already the sole selection clears the set.
func ToggleSingle(f models.Filters, key constants.FilterKey, token string) models.Filters {
	cur := clean(f).Set(key)
	if len(cur) == 1 && cur[0] == token {
		return clean(f.WithSet(key, []string{}))
	}
	return clean(f.WithSet(key, []string{token}))
}

// SetText sets one of the free-text filter fields. The value is stored as typed.
func SetText(f models.Filters, field, value string) models.Filters {
	out := clean(f)
	switch field {
	case constants.TextProject:
		out.ProjectText = value
	case constants.TextWaiting:
		out.WaitingText = value
	case constants.TextContext:
		out.ContextText = value
	}
	return out
}

// SetRange sets completedRange or upcomingRange. Unknown values become "any".
func SetRange(f models.Filters, field, value string) models.Filters {
	out := clean(f)
	switch field {
	case constants.RangeCompleted:
		out.CompletedRange = normalizeRange(value)
	case constants.RangeUpcoming:
		out.UpcomingRange = normalizeRange(value)
	}
	return out
}

// Reset returns the default filter record.
func Reset() models.Filters {
	return Default()
}

// Hydrate returns the filters saved in a view state.
func Hydrate(state models.ViewState) models.Filters {
	return clean(state.Filters)
}

// IsSingle reports whether the set under key is exactly {token}.
func IsSingle(f models.Filters, key constants.FilterKey, token string) bool {
	set := f.Set(key)
	return len(set) == 1 && set[0] == token
}

// Contains reports whether token is selected under key.
func Contains(f models.Filters, key constants.FilterKey, token string) bool {
	for _, v := range f.Set(key) {
		if v == token {
			return true
		}
	}
	return false
}
