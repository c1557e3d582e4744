// Package engine turns a flat task snapshot and a filter configuration into
// the ordered groups the dashboard renders. All functions are pure.
package engine

import (
	"strings"
	"time"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/filters"
	"github.com/julianstephens/taskdash/internal/models"
)

// ApplyFilters returns the tasks that satisfy every active predicate, in their
// original order. now anchors the completed and upcoming windows.
func ApplyFilters(tasks []models.Task, f models.Filters, query string, now time.Time) []models.Task {
	p := compile(filters.Normalize(f), query, now)
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if p.match(t) {
			out = append(out, t)
		}
	}
	return out
}

type predicate struct {
	completion  set
	recurrence  set
	start       set
	deferred    set
	due         set
	priority    set
	energy      set
	gtd         set
	project     string
	waiting     string
	context     string
	query       string
	completedIn *window
	upcomingIn  *window
}

// window is a half-open time interval [from, to).
type window struct {
	from, to time.Time
}

func (w window) contains(t *time.Time) bool {
	if t == nil || t.IsZero() {
		return false
	}
	return !t.Before(w.from) && t.Before(w.to)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func compile(f models.Filters, query string, now time.Time) predicate {
	p := predicate{
		completion: newSet(f.Completion, false),
		recurrence: newSet(f.Recurrence, false),
		start:      newSet(f.Start, false),
		deferred:   newSet(f.Defer, false),
		due:        newSet(f.Due, false),
		priority:   newSet(f.Priority, false),
		energy:     newSet(f.Energy, false),
		gtd:        newSet(f.GTD, true),
		project:    strings.ToLower(strings.TrimSpace(f.ProjectText)),
		waiting:    strings.ToLower(strings.TrimSpace(f.WaitingText)),
		context:    strings.ToLower(strings.TrimSpace(f.ContextText)),
		query:      strings.ToLower(strings.TrimSpace(query)),
	}

	today := startOfDay(now)
	if filters.IsSingle(f, constants.FilterCompletion, constants.CompletionCompleted) {
		if days := constants.RangeDays(f.CompletedRange); days > 0 {
			// trailing window ending with the full current day
			p.completedIn = &window{from: today.AddDate(0, 0, -days), to: today.AddDate(0, 0, 1)}
		}
	}
	if filters.Contains(f, constants.FilterDue, constants.DueUpcoming) {
		if days := constants.RangeDays(f.UpcomingRange); days > 0 {
			// today through N days later, inclusive of that whole day
			p.upcomingIn = &window{from: today, to: today.AddDate(0, 0, days+1)}
		}
	}
	return p
}

func (p predicate) match(t models.Task) bool {
	if !p.completion.allows(t.CompletionState()) {
		return false
	}
	if p.completedIn != nil && t.IsCompleted && !p.completedIn.contains(t.CompletedAt) {
		return false
	}
	if !p.recurrence.allows(t.RecurrenceBucket) ||
		!p.start.allows(t.StartBucket) ||
		!p.deferred.allows(t.DeferBucket) ||
		!p.due.allows(t.DueBucket) {
		return false
	}
	if p.upcomingIn != nil && t.DueBucket == constants.DueUpcoming && !p.upcomingIn.contains(t.DueAt) {
		return false
	}
	if !p.priority.allows(t.Metadata.Priority) ||
		!p.energy.allows(t.Metadata.Energy) ||
		!p.gtd.allows(t.Metadata.GTD) {
		return false
	}
	if p.project != "" && strings.ToLower(strings.TrimSpace(t.Metadata.Project)) != p.project {
		return false
	}
	if p.waiting != "" && !strings.Contains(strings.ToLower(t.Metadata.WaitingFor), p.waiting) {
		return false
	}
	if p.context != "" && !anyContains(t.Metadata.Context, p.context) {
		return false
	}
	if p.query != "" {
		haystack := strings.ToLower(t.Title + " " + t.PageTitle + " " + t.Text)
		if !strings.Contains(haystack, p.query) {
			return false
		}
	}
	return true
}

func anyContains(values []string, needle string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}

// set is a token membership test; an empty set allows everything.
type set struct {
	members map[string]struct{}
	fold    bool
}

func newSet(values []string, fold bool) set {
	if len(values) == 0 {
		return set{}
	}
	s := set{members: make(map[string]struct{}, len(values)), fold: fold}
	for _, v := range values {
		if fold {
			v = strings.ToLower(v)
		}
		s.members[v] = struct{}{}
	}
	return s
}

func (s set) allows(v string) bool {
	if s.members == nil {
		return true
	}
	if s.fold {
		v = strings.ToLower(v)
	}
	_, ok := s.members[v]
	return ok
}
