package engine

import (
	"sort"
	"strings"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/filters"
	"github.com/julianstephens/taskdash/internal/models"
)

// Group is one titled section of the dashboard.
type Group struct {
	ID    string
	Title string
	Items []models.Task
}

// GroupOptions carries the caller's context for grouping.
type GroupOptions struct {
	// CompletionTokens is the Completion filter set currently applied.
	CompletionTokens []string
	// Labels maps group ids to display titles. Missing ids use DefaultLabels.
	Labels map[string]string
}

// DefaultLabels are the built-in English group titles.
var DefaultLabels = map[string]string{
	constants.GroupCompleted:      "Completed",
	constants.DueOverdue:          "Overdue",
	constants.DueToday:            "Today",
	constants.DueUpcoming:         "Upcoming",
	constants.DueNone:             "No due date",
	constants.RecurrenceRecurring: "Recurring",
	constants.RecurrenceOneOff:    "One-off",
	constants.GroupNoProject:      "No project",
}

var (
	timeOrder       = []string{constants.DueOverdue, constants.DueToday, constants.DueUpcoming, constants.DueNone}
	recurrenceOrder = []string{constants.RecurrenceRecurring, constants.RecurrenceOneOff}
)

// GroupTasks buckets tasks for display. When the completion filter selects
// only completed tasks they are split into a leading "Completed" group and
// the remaining tasks are grouped by the requested mode. Empty groups are
// omitted and item order within a group follows the input.
func GroupTasks(tasks []models.Task, grouping constants.Grouping, opts GroupOptions) []Group {
	rest := tasks
	var completed []models.Task
	if completedOnly(opts.CompletionTokens) {
		rest = make([]models.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.IsCompleted {
				completed = append(completed, t)
			} else {
				rest = append(rest, t)
			}
		}
	}

	var groups []Group
	switch grouping {
	case constants.GroupingProject:
		groups = groupByProject(rest, opts.Labels)
	case constants.GroupingRecurrence:
		groups = groupFixed(rest, recurrenceOrder, opts.Labels, func(t models.Task) string {
			if t.RecurrenceBucket == constants.RecurrenceRecurring {
				return constants.RecurrenceRecurring
			}
			return constants.RecurrenceOneOff
		})
	default:
		groups = groupFixed(rest, timeOrder, opts.Labels, func(t models.Task) string {
			switch t.DueBucket {
			case constants.DueOverdue, constants.DueToday, constants.DueUpcoming:
				return t.DueBucket
			}
			return constants.DueNone
		})
	}

	if len(completed) > 0 {
		head := Group{
			ID:    constants.GroupCompleted,
			Title: label(opts.Labels, constants.GroupCompleted),
			Items: completed,
		}
		groups = append([]Group{head}, groups...)
	}
	return groups
}

// completedOnly reports whether the normalized Completion set is exactly
// {completed}.
func completedOnly(tokens []string) bool {
	f := filters.Normalize(models.Filters{Completion: tokens})
	return filters.IsSingle(f, constants.FilterCompletion, constants.CompletionCompleted)
}

func label(labels map[string]string, id string) string {
	if l, ok := labels[id]; ok && l != "" {
		return l
	}
	if l, ok := DefaultLabels[id]; ok {
		return l
	}
	return id
}

func groupFixed(tasks []models.Task, order []string, labels map[string]string, key func(models.Task) string) []Group {
	buckets := make(map[string][]models.Task, len(order))
	for _, t := range tasks {
		k := key(t)
		buckets[k] = append(buckets[k], t)
	}
	groups := make([]Group, 0, len(order))
	for _, id := range order {
		if items := buckets[id]; len(items) > 0 {
			groups = append(groups, Group{ID: id, Title: label(labels, id), Items: items})
		}
	}
	return groups
}

func groupByProject(tasks []models.Task, labels map[string]string) []Group {
	buckets := make(map[string][]models.Task)
	var names []string
	var none []models.Task
	for _, t := range tasks {
		name := strings.TrimSpace(t.Metadata.Project)
		if name == "" {
			none = append(none, t)
			continue
		}
		if _, ok := buckets[name]; !ok {
			names = append(names, name)
		}
		buckets[name] = append(buckets[name], t)
	}
	sort.SliceStable(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})

	groups := make([]Group, 0, len(names)+1)
	for _, name := range names {
		groups = append(groups, Group{ID: constants.GroupProject + name, Title: name, Items: buckets[name]})
	}
	if len(none) > 0 {
		groups = append(groups, Group{
			ID:    constants.GroupNoProject,
			Title: label(labels, constants.GroupNoProject),
			Items: none,
		})
	}
	return groups
}
