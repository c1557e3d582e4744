package constants

import "time"

// FilterKey names one of the set-valued filter fields.
type FilterKey string

// Grouping is the dashboard grouping mode.
type Grouping string

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "taskdash"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/taskdash/taskdash.db"
	DefaultGraphPath   = "~/.config/taskdash/graph.db"
	DefaultSessionPath = "~/.config/taskdash/session.json"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Filter keys
	FilterRecurrence FilterKey = "Recurrence"
	FilterStart      FilterKey = "Start"
	FilterDefer      FilterKey = "Defer"
	FilterDue        FilterKey = "Due"
	FilterCompletion FilterKey = "Completion"
	FilterPriority   FilterKey = "Priority"
	FilterEnergy     FilterKey = "Energy"
	FilterGTD        FilterKey = "GTD"

	// Text filter fields
	TextProject = "projectText"
	TextWaiting = "waitingText"
	TextContext = "contextText"

	// Range filter fields and values
	RangeCompleted = "completedRange"
	RangeUpcoming  = "upcomingRange"
	RangeAny       = "any"
	Range7d        = "7d"
	Range30d       = "30d"
	Range90d       = "90d"

	// Grouping modes
	GroupingTime       Grouping = "time"
	GroupingRecurrence Grouping = "recurrence"
	GroupingProject    Grouping = "project"

	// Completion tokens
	CompletionOpen      = "open"
	CompletionCompleted = "completed"

	// Due buckets
	DueOverdue  = "overdue"
	DueToday    = "today"
	DueUpcoming = "upcoming"
	DueNone     = "none"

	// Start buckets
	StartNotStarted = "not-started"
	StartStarted    = "started"
	StartNone       = "none"

	// Defer buckets
	DeferDeferred  = "deferred"
	DeferAvailable = "available"
	DeferNone      = "none"

	// Recurrence buckets
	RecurrenceRecurring = "recurring"
	RecurrenceOneOff    = "one-off"

	// Priority / energy levels
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"

	// GTD states
	GTDNextAction = "next action"
	GTDDelegated  = "delegated"
	GTDDeferred   = "deferred"
	GTDSomeday    = "someday"

	// Synthetic group ids
	GroupCompleted = "completed"
	GroupNoProject = "no-project"
	GroupProject   = "project:"

	// Views store
	ViewsSchemaVersion   = 1
	SessionSchemaVersion = 1

	// Option providers
	OptionsTTL             = 8 * time.Minute
	DefaultExcludedPrefix  = "roam/"
	LastDefaultPersistWait = 750 * time.Millisecond
)

// Session States
const (
	StateDashboard SessionState = iota
	StateQuery
	StateSaveView
	StateRenameView
	StateConfirmDelete
	StateBulkEdit
)

// FilterKeys lists the set-valued filter keys in canonical order.
var FilterKeys = []FilterKey{
	FilterCompletion,
	FilterDefer,
	FilterDue,
	FilterEnergy,
	FilterGTD,
	FilterPriority,
	FilterRecurrence,
	FilterStart,
}

// Ranges lists the accepted values for completedRange and upcomingRange.
var Ranges = []string{RangeAny, Range7d, Range30d, Range90d}

// RangeDays returns the window length of a range token, or 0 for "any" and unknown tokens.
func RangeDays(r string) int {
	switch r {
	case Range7d:
		return 7
	case Range30d:
		return 30
	case Range90d:
		return 90
	default:
		return 0
	}
}
