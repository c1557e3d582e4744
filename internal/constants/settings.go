package constants

const (
	// Settings store keys
	SettingViewsStore        = "dashboard.views"
	SettingViewsSeeded       = "dashboard.views.seeded"
	SettingReviewEnabled     = "dashboard.review.enabled"
	SettingExclusionsEnabled = "options.exclusions.enabled"
	SettingExclusionPages    = "options.exclusions.pages"

	// Session storage keys
	SessionFilters = "dashboard.filters"

	// Preset view ids
	PresetNextActions = "preset-next-actions"
	PresetWaitingFor  = "preset-waiting-for"
	PresetCompleted7d = "preset-completed-7d"
	PresetUpcoming7d  = "preset-upcoming-7d"
	PresetOverdue     = "preset-overdue"
	PresetSomeday     = "preset-someday"
	PresetAllOpen     = "preset-all-open"
)

// DashboardReviewPresetIDs is the fixed candidate order for review mode.
var DashboardReviewPresetIDs = []string{
	PresetNextActions,
	PresetWaitingFor,
	PresetCompleted7d,
	PresetUpcoming7d,
	PresetOverdue,
	PresetSomeday,
}
