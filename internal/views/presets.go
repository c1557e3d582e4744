package views

import (
	"strings"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/filters"
	"github.com/julianstephens/taskdash/internal/models"
)

// Preset is a built-in starter view.
type Preset struct {
	ID    string
	Name  string
	State models.ViewState
}

// InstallOptions controls preset seeding.
type InstallOptions struct {
	Force bool
}

// InstallResult reports what a seeding pass did.
type InstallResult struct {
	Store                 models.ViewsStore
	InstalledIDs          []string
	SkippedNameCollisions []string
	SkippedExistingIDs    []string
	DidSave               bool
	// MarkSeeded is true when the caller should persist the seeded flag.
	MarkSeeded bool
}

func presetState(grouping constants.Grouping, build func(models.Filters) models.Filters) models.ViewState {
	return models.ViewState{
		Filters:  build(filters.Default()),
		Grouping: grouping,
	}
}

func openOnly(f models.Filters) models.Filters {
	return filters.ToggleSingle(f, constants.FilterCompletion, constants.CompletionOpen)
}

// Presets returns the built-in views in their fixed order.
func Presets() []Preset {
	return []Preset{
		{
			ID:   constants.PresetNextActions,
			Name: "Next Actions",
			State: presetState(constants.GroupingProject, func(f models.Filters) models.Filters {
				return filters.ToggleSingle(openOnly(f), constants.FilterGTD, constants.GTDNextAction)
			}),
		},
		{
			ID:   constants.PresetWaitingFor,
			Name: "Waiting For",
			State: presetState(constants.GroupingProject, func(f models.Filters) models.Filters {
				return filters.ToggleSingle(openOnly(f), constants.FilterGTD, constants.GTDDelegated)
			}),
		},
		{
			ID:   constants.PresetCompleted7d,
			Name: "Completed (7d)",
			State: presetState(constants.GroupingTime, func(f models.Filters) models.Filters {
				f = filters.ToggleSingle(f, constants.FilterCompletion, constants.CompletionCompleted)
				return filters.SetRange(f, constants.RangeCompleted, constants.Range7d)
			}),
		},
		{
			ID:   constants.PresetUpcoming7d,
			Name: "Upcoming (7d)",
			State: presetState(constants.GroupingTime, func(f models.Filters) models.Filters {
				f = filters.ToggleSingle(openOnly(f), constants.FilterDue, constants.DueUpcoming)
				return filters.SetRange(f, constants.RangeUpcoming, constants.Range7d)
			}),
		},
		{
			ID:   constants.PresetOverdue,
			Name: "Overdue",
			State: presetState(constants.GroupingProject, func(f models.Filters) models.Filters {
				return filters.ToggleSingle(openOnly(f), constants.FilterDue, constants.DueOverdue)
			}),
		},
		{
			ID:   constants.PresetSomeday,
			Name: "Someday / Maybe",
			State: presetState(constants.GroupingProject, func(f models.Filters) models.Filters {
				return filters.ToggleSingle(openOnly(f), constants.FilterGTD, constants.GTDSomeday)
			}),
		},
		{
			ID:    constants.PresetAllOpen,
			Name:  "All Open",
			State: presetState(constants.GroupingTime, openOnly),
		},
	}
}

// ReviewPresetIDs returns the review candidates in their fixed order.
func ReviewPresetIDs() []string {
	return append([]string(nil), constants.DashboardReviewPresetIDs...)
}

// IsPreset reports whether id is one of the built-in view ids.
func IsPreset(id string) bool {
	for _, p := range Presets() {
		if p.ID == id {
			return true
		}
	}
	return false
}

// InstallPresets seeds the built-in views. Seeding runs when forced, or when
// the store has not been seeded yet and is empty or missing a preset. Presets
// whose id or case-insensitive name is already taken are skipped.
func InstallPresets(s models.ViewsStore, seeded bool, opts InstallOptions) InstallResult {
	store := Normalize(s)
	res := InstallResult{Store: store, MarkSeeded: !seeded}

	presets := Presets()
	ids := make(map[string]struct{}, len(store.Views))
	names := make(map[string]struct{}, len(store.Views))
	for _, v := range store.Views {
		ids[v.ID] = struct{}{}
		names[strings.ToLower(v.Name)] = struct{}{}
	}

	missing := false
	for _, p := range presets {
		if _, ok := ids[p.ID]; !ok {
			missing = true
			break
		}
	}
	firstRun := !seeded && (len(store.Views) == 0 || missing)
	if !opts.Force && !firstRun {
		return res
	}

	now := timeNow()
	for _, p := range presets {
		if _, ok := ids[p.ID]; ok {
			res.SkippedExistingIDs = append(res.SkippedExistingIDs, p.ID)
			continue
		}
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if _, ok := names[key]; ok {
			res.SkippedNameCollisions = append(res.SkippedNameCollisions, p.ID)
			continue
		}
		store.Views = append(store.Views, models.View{
			ID:        p.ID,
			Name:      p.Name,
			CreatedAt: now,
			UpdatedAt: now,
			State:     filters.NormalizeViewState(p.State),
		})
		ids[p.ID] = struct{}{}
		names[key] = struct{}{}
		res.InstalledIDs = append(res.InstalledIDs, p.ID)
	}

	res.Store = Normalize(store)
	res.DidSave = len(res.InstalledIDs) > 0
	return res
}
