package models

import (
	"time"

	"github.com/julianstephens/taskdash/internal/constants"
)

// TaskMetadata holds the attribute values parsed from a task block.
// Empty strings stand in for missing values.
type TaskMetadata struct {
	Priority   string   `json:"priority,omitempty" yaml:"priority"`
	Energy     string   `json:"energy,omitempty" yaml:"energy"`
	GTD        string   `json:"gtd,omitempty" yaml:"gtd"`
	Project    string   `json:"project,omitempty" yaml:"project"`
	WaitingFor string   `json:"waitingFor,omitempty" yaml:"waitingFor"`
	Context    []string `json:"context,omitempty" yaml:"context"`
}

// Task is a read-only task record supplied by the task provider.
// Buckets are precomputed by the provider and trusted verbatim.
type Task struct {
	UID              string       `json:"uid" yaml:"uid"`
	Title            string       `json:"title" yaml:"title"`
	PageTitle        string       `json:"pageTitle,omitempty" yaml:"pageTitle"`
	PageUID          string       `json:"pageUid,omitempty" yaml:"pageUid"`
	Text             string       `json:"text" yaml:"text"`
	IsCompleted      bool         `json:"isCompleted" yaml:"isCompleted"`
	CompletedAt      *time.Time   `json:"completedAt,omitempty" yaml:"completedAt"`
	StartAt          *time.Time   `json:"startAt,omitempty" yaml:"startAt"`
	DeferUntil       *time.Time   `json:"deferUntil,omitempty" yaml:"deferUntil"`
	DueAt            *time.Time   `json:"dueAt,omitempty" yaml:"dueAt"`
	StartBucket      string       `json:"startBucket" yaml:"startBucket"`
	DeferBucket      string       `json:"deferBucket" yaml:"deferBucket"`
	DueBucket        string       `json:"dueBucket" yaml:"dueBucket"`
	RecurrenceBucket string       `json:"recurrenceBucket" yaml:"recurrenceBucket"`
	RepeatText       string       `json:"repeatText,omitempty" yaml:"repeatText"`
	Metadata         TaskMetadata `json:"metadata" yaml:"metadata"`
}

// CompletionState returns the completion token for the task.
func (t Task) CompletionState() string {
	if t.IsCompleted {
		return constants.CompletionCompleted
	}
	return constants.CompletionOpen
}

// MetadataPatch describes a bulk edit. Nil fields are left unchanged;
// a pointer to "" clears the field.
type MetadataPatch struct {
	Priority   *string
	Energy     *string
	GTD        *string
	Project    *string
	WaitingFor *string
	Context    *[]string
}

// IsEmpty reports whether the patch changes nothing.
func (p MetadataPatch) IsEmpty() bool {
	return p.Priority == nil && p.Energy == nil && p.GTD == nil &&
		p.Project == nil && p.WaitingFor == nil && p.Context == nil
}

// Apply returns a copy of m with the patch applied.
func (p MetadataPatch) Apply(m TaskMetadata) TaskMetadata {
	out := m
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.Energy != nil {
		out.Energy = *p.Energy
	}
	if p.GTD != nil {
		out.GTD = *p.GTD
	}
	if p.Project != nil {
		out.Project = *p.Project
	}
	if p.WaitingFor != nil {
		out.WaitingFor = *p.WaitingFor
	}
	if p.Context != nil {
		out.Context = append([]string(nil), (*p.Context)...)
	}
	return out
}
