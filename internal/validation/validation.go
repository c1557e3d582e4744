package validation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/taskdash/internal/models"
	"github.com/julianstephens/taskdash/internal/views"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictMalformedStore    ConflictType = "malformed_store"
	ConflictInvalidView       ConflictType = "invalid_view"
	ConflictDuplicateViewID   ConflictType = "duplicate_view_id"
	ConflictDuplicateViewName ConflictType = "duplicate_view_name"
	ConflictDanglingActive    ConflictType = "dangling_active_view"
	ConflictMissingReviewView ConflictType = "missing_review_view"
	ConflictDuplicateTaskUID  ConflictType = "duplicate_task_uid"
	ConflictInvalidDateTime   ConflictType = "invalid_datetime"
)

// Conflict represents a detected problem in the views document or tasks
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // View names or task titles involved
	ViewIDs     []string
	TaskUIDs    []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// Merge appends the conflicts of other.
func (vr *ValidationResult) Merge(other ValidationResult) {
	vr.Conflicts = append(vr.Conflicts, other.Conflicts...)
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", conflict.Description)
	}
	return b.String()
}

// Validator checks the saved-views document and task records
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateViewsDocument checks a persisted views document as stored, before
// normalization drops or heals anything.
func (v *Validator) ValidateViewsDocument(raw string) ValidationResult {
	var result ValidationResult
	if strings.TrimSpace(raw) == "" {
		return result
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil || doc == nil {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictMalformedStore,
			Description: "Saved views document is not a JSON object and will be replaced by an empty store",
		})
		return result
	}

	items, _ := doc["views"].([]any)
	ids := make(map[string]struct{}, len(items))
	names := make(map[string][]string)
	for i, item := range items {
		m, _ := item.(map[string]any)
		id, _ := m["id"].(string)
		name, _ := m["name"].(string)
		name = strings.TrimSpace(name)
		if id == "" || name == "" {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidView,
				Description: fmt.Sprintf("View #%d has no id or name and will be dropped", i+1),
				ViewIDs:     nonEmpty(id),
				Items:       nonEmpty(name),
			})
			continue
		}
		if _, dup := ids[id]; dup {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateViewID,
				Description: fmt.Sprintf("View %q reuses id %s and will be dropped", name, id),
				ViewIDs:     []string{id},
				Items:       []string{name},
			})
			continue
		}
		ids[id] = struct{}{}
		key := strings.ToLower(name)
		names[key] = append(names[key], id)
	}

	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(names[k]) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateViewName,
				Description: fmt.Sprintf("%d views are named %q", len(names[k]), k),
				ViewIDs:     names[k],
				Items:       []string{k},
			})
		}
	}

	if active, _ := doc["activeViewId"].(string); active != "" {
		if _, ok := ids[active]; !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDanglingActive,
				Description: fmt.Sprintf("Active view %s does not exist and will be cleared", active),
				ViewIDs:     []string{active},
			})
		}
	}
	return result
}

// ValidateReview reports enabled review candidates whose view is missing.
func (v *Validator) ValidateReview(store models.ViewsStore, candidates []string, enabled map[string]bool) ValidationResult {
	var result ValidationResult
	for _, id := range candidates {
		if on, set := enabled[id]; set && !on {
			continue
		}
		if _, ok := views.Find(store, id); !ok {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMissingReviewView,
				Description: fmt.Sprintf("Review view %s is enabled but missing; run 'taskdash presets install --force'", id),
				ViewIDs:     []string{id},
			})
		}
	}
	return result
}

// ValidateTasks checks task records for duplicate uids and inconsistent dates
func (v *Validator) ValidateTasks(tasks []models.Task) ValidationResult {
	var result ValidationResult
	seen := make(map[string]string, len(tasks))
	for _, t := range tasks {
		if prev, dup := seen[t.UID]; dup {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateTaskUID,
				Description: fmt.Sprintf("Tasks %q and %q share uid %s", prev, t.Title, t.UID),
				Items:       []string{prev, t.Title},
				TaskUIDs:    []string{t.UID},
			})
			continue
		}
		seen[t.UID] = t.Title

		if t.StartAt != nil && t.DueAt != nil && t.DueAt.Before(*t.StartAt) {
			result.Conflicts = append(result.Conflicts, dateConflict(t, "is due before it starts"))
		}
		if t.DeferUntil != nil && t.DueAt != nil && t.DeferUntil.After(*t.DueAt) {
			result.Conflicts = append(result.Conflicts, dateConflict(t, "is deferred past its due date"))
		}
		if !t.IsCompleted && t.CompletedAt != nil {
			result.Conflicts = append(result.Conflicts, dateConflict(t, "is open but has a completion time"))
		}
	}
	return result
}

func dateConflict(t models.Task, what string) Conflict {
	return Conflict{
		Type:        ConflictInvalidDateTime,
		Description: fmt.Sprintf("Task %q %s", t.Title, what),
		Items:       []string{t.Title},
		TaskUIDs:    []string{t.UID},
	}
}

// FixViewsDocument normalizes raw and describes what changed. Duplicate
// names are reported but left alone.
func (v *Validator) FixViewsDocument(raw string) (models.ViewsStore, []FixAction) {
	fixed := views.Load(raw)
	var actions []FixAction
	for _, c := range v.ValidateViewsDocument(raw).Conflicts {
		var action string
		switch c.Type {
		case ConflictMalformedStore:
			action = "Replaced malformed views document with an empty store"
		case ConflictInvalidView:
			action = "Dropped a view with no id or name"
		case ConflictDuplicateViewID:
			action = fmt.Sprintf("Dropped duplicate of view %s", c.ViewIDs[0])
		case ConflictDanglingActive:
			action = fmt.Sprintf("Cleared dangling active view %s", c.ViewIDs[0])
		default:
			continue
		}
		actions = append(actions, FixAction{Action: action, SourceConflict: c})
	}
	return fixed, actions
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}
