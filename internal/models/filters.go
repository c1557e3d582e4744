package models

import "github.com/julianstephens/taskdash/internal/constants"

// Filters is the live filter configuration of a dashboard session.
// Treat values as immutable; the filters package returns fresh copies.
type Filters struct {
	Completion     []string `json:"Completion"`
	Defer          []string `json:"Defer"`
	Due            []string `json:"Due"`
	Energy         []string `json:"Energy"`
	GTD            []string `json:"GTD"`
	Priority       []string `json:"Priority"`
	Recurrence     []string `json:"Recurrence"`
	Start          []string `json:"Start"`
	CompletedRange string   `json:"completedRange"`
	ContextText    string   `json:"contextText"`
	ProjectText    string   `json:"projectText"`
	UpcomingRange  string   `json:"upcomingRange"`
	WaitingText    string   `json:"waitingText"`
}

// Set returns the token set stored under key.
func (f Filters) Set(key constants.FilterKey) []string {
	switch key {
	case constants.FilterCompletion:
		return f.Completion
	case constants.FilterDefer:
		return f.Defer
	case constants.FilterDue:
		return f.Due
	case constants.FilterEnergy:
		return f.Energy
	case constants.FilterGTD:
		return f.GTD
	case constants.FilterPriority:
		return f.Priority
	case constants.FilterRecurrence:
		return f.Recurrence
	case constants.FilterStart:
		return f.Start
	}
	return nil
}

// WithSet returns a copy of f with the set under key replaced.
// Unknown keys return f unchanged.
func (f Filters) WithSet(key constants.FilterKey, values []string) Filters {
	out := f
	switch key {
	case constants.FilterCompletion:
		out.Completion = values
	case constants.FilterDefer:
		out.Defer = values
	case constants.FilterDue:
		out.Due = values
	case constants.FilterEnergy:
		out.Energy = values
	case constants.FilterGTD:
		out.GTD = values
	case constants.FilterPriority:
		out.Priority = values
	case constants.FilterRecurrence:
		out.Recurrence = values
	case constants.FilterStart:
		out.Start = values
	}
	return out
}
