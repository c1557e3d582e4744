package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/filters"
	"github.com/julianstephens/taskdash/internal/models"
	"github.com/julianstephens/taskdash/internal/options"
	"github.com/julianstephens/taskdash/internal/review"
	"github.com/julianstephens/taskdash/internal/rows"
	"github.com/julianstephens/taskdash/internal/storage"
	"github.com/julianstephens/taskdash/internal/tasks"
	"github.com/julianstephens/taskdash/internal/views"
)

type fakePrompter struct {
	text    []string
	selects []string
	confirm bool
	titles  []string
}

func (p *fakePrompter) PromptText(title, initial string) (string, bool) {
	p.titles = append(p.titles, title)
	if len(p.text) == 0 {
		return "", false
	}
	v := p.text[0]
	p.text = p.text[1:]
	return v, true
}

func (p *fakePrompter) PromptSelect(title string, choices []Choice) (string, bool) {
	p.titles = append(p.titles, title)
	if len(p.selects) == 0 {
		return "", false
	}
	v := p.selects[0]
	p.selects = p.selects[1:]
	return v, true
}

func (p *fakePrompter) Confirm(title string) bool {
	p.titles = append(p.titles, title)
	return p.confirm
}

type fakeWriter struct {
	uids  []string
	patch models.MetadataPatch
	err   error
}

func (w *fakeWriter) UpdateTasks(_ context.Context, uids []string, patch models.MetadataPatch) (int, error) {
	w.uids = uids
	w.patch = patch
	if w.err != nil {
		return 0, w.err
	}
	return len(uids), nil
}

type notices struct {
	mu   sync.Mutex
	msgs []string
}

func (n *notices) add(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func newController(t *testing.T, mutate ...func(*Config)) (*Controller, *storage.MemoryStore) {
	t.Helper()
	mem := storage.NewMemoryStore()
	cfg := Config{
		Settings:     mem,
		Session:      mem,
		PersistDelay: 10 * time.Millisecond,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	c := New(cfg)
	t.Cleanup(c.Close)
	return c, mem
}

func storedViews(t *testing.T, mem *storage.MemoryStore) models.ViewsStore {
	t.Helper()
	raw, err := mem.GetSetting(constants.SettingViewsStore)
	require.NoError(t, err)
	return views.Load(raw)
}

func TestStartSeedsPresetsOnce(t *testing.T) {
	c, mem := newController(t)
	res := c.Start()

	assert.Len(t, res.InstalledIDs, len(views.Presets()))
	assert.Len(t, storedViews(t, mem).Views, len(views.Presets()))
	seeded, err := mem.GetSetting(constants.SettingViewsSeeded)
	require.NoError(t, err)
	assert.Equal(t, "true", seeded)

	// A deliberately emptied store is not reseeded.
	for _, v := range c.Views() {
		require.True(t, c.DeleteView(v.ID))
	}
	again, _ := newController(t, func(cfg *Config) { cfg.Settings = mem; cfg.Session = mem })
	res = again.Start()
	assert.Empty(t, res.InstalledIDs)
	assert.Empty(t, again.Views())

	res = again.InstallPresets(true)
	assert.Len(t, res.InstalledIDs, len(views.Presets()))
}

func TestStartRestoresActiveViewAndSessionFilters(t *testing.T) {
	c, mem := newController(t)
	c.Start()
	c.SelectView(constants.PresetOverdue)
	c.ToggleFilter(constants.FilterPriority, constants.LevelHigh)
	c.Close()

	next, _ := newController(t, func(cfg *Config) { cfg.Settings = mem; cfg.Session = mem })
	next.Start()
	active, ok := next.ActiveView()
	require.True(t, ok)
	assert.Equal(t, constants.PresetOverdue, active.ID)
	assert.Equal(t, constants.GroupingProject, next.State().Grouping)
	assert.Equal(t, []string{constants.LevelHigh}, next.State().Filters.Priority)
	assert.True(t, next.IsDirty())
}

func TestCorruptPersistedDataFallsBack(t *testing.T) {
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.SetSetting(constants.SettingViewsStore, "{not json"))
	require.NoError(t, mem.SetSetting(constants.SettingViewsSeeded, "true"))
	require.NoError(t, mem.SetSetting(constants.SettingReviewEnabled, "[1,2"))
	require.NoError(t, mem.SetSession(constants.SessionFilters, `{"v":99,"filters":{}}`))

	c, _ := newController(t, func(cfg *Config) { cfg.Settings = mem; cfg.Session = mem })
	c.Start()

	assert.Empty(t, c.Views())
	assert.Empty(t, c.ReviewEnabled())
	assert.True(t, filters.Equal(filters.NormalizeViewState(nil), c.State()))
}

func TestLastDefaultStateIsDebounced(t *testing.T) {
	c, mem := newController(t)
	c.Start()

	c.SetQuery("re")
	c.SetQuery("report")
	c.SetGrouping(constants.GroupingRecurrence)

	require.Eventually(t, func() bool {
		s := storedViews(t, mem)
		return s.LastDefaultState != nil && s.LastDefaultState.Query == "report"
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, constants.GroupingRecurrence, storedViews(t, mem).LastDefaultState.Grouping)
}

func TestCloseCancelsPendingPersist(t *testing.T) {
	c, mem := newController(t, func(cfg *Config) { cfg.PersistDelay = 30 * time.Millisecond })
	c.Start()
	c.SetQuery("late")
	c.Close()

	time.Sleep(80 * time.Millisecond)
	assert.Nil(t, storedViews(t, mem).LastDefaultState)
}

func TestSessionFiltersPersistOnChange(t *testing.T) {
	c, mem := newController(t)
	c.Start()
	c.ToggleFilter(constants.FilterEnergy, constants.LevelLow)

	raw, err := mem.GetSession(constants.SessionFilters)
	require.NoError(t, err)
	assert.Equal(t, []string{constants.LevelLow}, filters.DecodeSession([]byte(raw)).Energy)
}

func TestSaveViewAs(t *testing.T) {
	p := &fakePrompter{}
	c, mem := newController(t, func(cfg *Config) { cfg.Prompter = p })
	c.Start()
	c.ToggleSingleFilter(constants.FilterGTD, constants.GTDSomeday)

	// Cancelled and blank prompts save nothing.
	assert.Empty(t, c.SaveViewAs())
	p.text = []string{"   "}
	assert.Empty(t, c.SaveViewAs())
	assert.Len(t, c.Views(), len(views.Presets()))

	p.text = []string{"  Maybe later "}
	id := c.SaveViewAs()
	require.NotEmpty(t, id)

	v, ok := c.ActiveView()
	require.True(t, ok)
	assert.Equal(t, id, v.ID)
	assert.Equal(t, "Maybe later", v.Name)
	assert.False(t, c.IsDirty())
	assert.Equal(t, id, storedViews(t, mem).ActiveViewID)
}

func TestDirtyAndUpdateActiveView(t *testing.T) {
	c, mem := newController(t)
	c.Start()
	assert.False(t, c.UpdateActiveView())

	c.SelectView(constants.PresetNextActions)
	assert.False(t, c.IsDirty())

	c.SetQuery("  ")
	assert.False(t, c.IsDirty(), "whitespace-only query is not a change")

	c.SetText(constants.TextProject, "garden")
	assert.True(t, c.IsDirty())

	require.True(t, c.UpdateActiveView())
	assert.False(t, c.IsDirty())
	v, ok := views.Find(storedViews(t, mem), constants.PresetNextActions)
	require.True(t, ok)
	assert.Equal(t, "garden", v.State.Filters.ProjectText)
}

func TestRenameAndDeleteThroughPrompts(t *testing.T) {
	p := &fakePrompter{}
	c, _ := newController(t, func(cfg *Config) { cfg.Prompter = p })
	c.Start()
	c.SelectView(constants.PresetSomeday)

	assert.False(t, c.RenameViewPrompt(constants.PresetSomeday))
	p.text = []string{"Later"}
	assert.True(t, c.RenameViewPrompt(constants.PresetSomeday))
	v, _ := c.ActiveView()
	assert.Equal(t, "Later", v.Name)
	assert.False(t, c.RenameViewPrompt("missing"))

	assert.False(t, c.DeleteViewPrompt(constants.PresetSomeday))
	p.confirm = true
	state := c.State()
	assert.True(t, c.DeleteViewPrompt(constants.PresetSomeday))
	_, ok := c.ActiveView()
	assert.False(t, ok)
	assert.Equal(t, state, c.State(), "deleting the active view keeps the live state")
}

func TestSelectViewAndClear(t *testing.T) {
	p := &fakePrompter{}
	c, _ := newController(t, func(cfg *Config) { cfg.Prompter = p })
	c.Start()
	c.SetQuery("adhoc")

	p.selects = []string{constants.PresetCompleted7d}
	require.True(t, c.SelectViewPrompt())
	assert.Equal(t, []string{constants.CompletionCompleted}, c.State().Filters.Completion)
	assert.Equal(t, "", c.State().Query)

	c.ClearView()
	_, ok := c.ActiveView()
	assert.False(t, ok)
	assert.Equal(t, "adhoc", c.State().Query, "clearing restores the ad-hoc state")

	// Clearing again keeps unsaved ad-hoc edits.
	c.SetQuery("adhoc2")
	c.ClearView()
	assert.Equal(t, "adhoc2", c.State().Query)

	assert.False(t, c.SelectViewPrompt(), "cancelled selection")
}

func TestReviewWalkAndExit(t *testing.T) {
	n := &notices{}
	c, _ := newController(t, func(cfg *Config) { cfg.Notify = n.add })
	c.Start()
	c.SetQuery("before review")

	c.StartReview()
	st := c.ReviewStatus()
	require.True(t, st.Active)
	assert.Equal(t, constants.PresetNextActions, st.ViewID)
	assert.Equal(t, len(constants.DashboardReviewPresetIDs), st.Total)

	c.PrevReview()
	assert.Equal(t, 0, c.ReviewStatus().Index)

	c.NextReview()
	active, _ := c.ActiveView()
	assert.Equal(t, constants.PresetWaitingFor, active.ID)

	c.ExitReview()
	assert.False(t, c.ReviewStatus().Active)
	_, ok := c.ActiveView()
	assert.False(t, ok)
	assert.Equal(t, "before review", c.State().Query)
	assert.Empty(t, n.msgs)
}

func TestReviewExitReturnsToPriorView(t *testing.T) {
	c, _ := newController(t)
	c.Start()
	c.SelectView(constants.PresetAllOpen)

	c.StartReview()
	c.NextReview()
	c.ExitReview()

	active, ok := c.ActiveView()
	require.True(t, ok)
	assert.Equal(t, constants.PresetAllOpen, active.ID)
}

func TestReviewReconcilesEnablementChanges(t *testing.T) {
	n := &notices{}
	c, mem := newController(t, func(cfg *Config) { cfg.Notify = n.add })
	c.Start()

	c.StartReview()
	c.NextReview()
	c.SetReviewEnabled(constants.PresetWaitingFor, false)

	active, _ := c.ActiveView()
	assert.Equal(t, constants.PresetCompleted7d, active.ID, "moves to the next enabled view")
	assert.Equal(t, 1, c.ReviewStatus().Index)

	raw, err := mem.GetSetting(constants.SettingReviewEnabled)
	require.NoError(t, err)
	assert.JSONEq(t, `{"preset-waiting-for":false}`, raw)

	for _, id := range constants.DashboardReviewPresetIDs {
		c.SetReviewEnabled(id, false)
	}
	assert.False(t, c.ReviewStatus().Active)
	require.Len(t, n.msgs, 1)
	assert.Equal(t, noticeText[review.NoticeEnded], n.msgs[0])

	c.StartReview()
	assert.False(t, c.ReviewStatus().Active)
	assert.Len(t, n.msgs, 2)
}

func TestDeletingReviewedViewReconciles(t *testing.T) {
	c, _ := newController(t)
	c.Start()
	c.StartReview()
	require.True(t, c.DeleteView(constants.PresetNextActions))

	st := c.ReviewStatus()
	assert.True(t, st.Active)
	assert.Equal(t, constants.PresetWaitingFor, st.ViewID)
	active, _ := c.ActiveView()
	assert.Equal(t, constants.PresetWaitingFor, active.ID)
}

func TestReviewSeesChangesFromAnotherSession(t *testing.T) {
	c, mem := newController(t)
	c.Start()
	c.StartReview()
	c.NextReview()
	require.Equal(t, constants.PresetWaitingFor, c.ReviewStatus().ViewID)

	other, _ := newController(t, func(cfg *Config) { cfg.Settings = mem; cfg.Session = nil })
	other.Start()
	for _, id := range constants.DashboardReviewPresetIDs[1:] {
		require.True(t, other.DeleteView(id))
	}

	c.NextReview()
	st := c.ReviewStatus()
	require.True(t, st.Active)
	assert.Equal(t, 0, st.Index)
	assert.Equal(t, 1, st.Total)
	assert.Equal(t, constants.PresetNextActions, st.ViewID)
	active, ok := c.ActiveView()
	require.True(t, ok)
	assert.Equal(t, constants.PresetNextActions, active.ID)
}

func TestReviewReconcilesOnAnyStoreWrite(t *testing.T) {
	c, mem := newController(t)
	c.Start()
	c.StartReview()
	c.NextReview()

	other, _ := newController(t, func(cfg *Config) { cfg.Settings = mem; cfg.Session = nil })
	other.Start()
	require.True(t, other.DeleteView(constants.PresetWaitingFor))

	require.True(t, c.RenameView(constants.PresetAllOpen, "Everything"))
	st := c.ReviewStatus()
	require.True(t, st.Active)
	assert.Equal(t, constants.PresetCompleted7d, st.ViewID)
	assert.Equal(t, 1, st.Index)
	assert.Less(t, st.Index, st.Total)
}

func TestReviewSeesEnablementFromAnotherSession(t *testing.T) {
	c, mem := newController(t)
	c.Start()
	c.StartReview()
	c.NextReview()

	other, _ := newController(t, func(cfg *Config) { cfg.Settings = mem; cfg.Session = nil })
	other.Start()
	other.SetReviewEnabled(constants.PresetWaitingFor, false)

	c.NextReview()
	assert.Equal(t, constants.PresetCompleted7d, c.ReviewStatus().ViewID)

	c.SetReviewEnabled(constants.PresetSomeday, false)
	assert.Equal(t, map[string]bool{
		constants.PresetWaitingFor: false,
		constants.PresetSomeday:    false,
	}, c.ReviewEnabled())
}

func TestManualSelectionCancelsReview(t *testing.T) {
	c, _ := newController(t)
	c.Start()
	c.StartReview()
	c.SelectView(constants.PresetAllOpen)
	assert.False(t, c.ReviewStatus().Active)
	active, _ := c.ActiveView()
	assert.Equal(t, constants.PresetAllOpen, active.ID)
}

func TestRowsAndGroupToggle(t *testing.T) {
	src := tasks.SourceFunc(func(context.Context) ([]models.Task, error) {
		return []models.Task{
			{UID: "a", Title: "A", DueBucket: constants.DueOverdue, RecurrenceBucket: constants.RecurrenceOneOff},
			{UID: "b", Title: "B", DueBucket: constants.DueNone, RecurrenceBucket: constants.RecurrenceOneOff},
		}, nil
	})
	provider := tasks.NewProvider(src)
	c, _ := newController(t, func(cfg *Config) { cfg.Tasks = provider })
	c.Start()
	require.NoError(t, c.Refresh(context.Background(), "test", false))

	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	got := c.Rows(now)
	require.Len(t, got, 4)
	assert.Equal(t, rows.KindHeader, got[0].Kind)
	assert.Equal(t, "Overdue", got[0].Title)
	assert.Equal(t, rows.TaskKey(constants.DueOverdue, "a"), got[1].Key)

	c.ToggleGroup(constants.DueOverdue)
	got = c.Rows(now)
	require.Len(t, got, 3)
	assert.True(t, got[0].Collapsed)

	c.ToggleGroup(constants.DueOverdue)
	assert.Len(t, c.Rows(now), 4)

	c.SetQuery("b")
	assert.Len(t, c.Rows(now), 2)
}

func TestBulkUpdate(t *testing.T) {
	w := &fakeWriter{}
	c, _ := newController(t, func(cfg *Config) { cfg.Writer = w })
	c.Start()

	high := constants.LevelHigh
	n, err := c.BulkUpdate(context.Background(), []string{"a", "b"}, models.MetadataPatch{Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, w.uids)

	w.uids = nil
	n, err = c.BulkUpdate(context.Background(), []string{"a"}, models.MetadataPatch{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Nil(t, w.uids)

	w.err = errors.New("locked")
	_, err = c.BulkUpdate(context.Background(), []string{"a"}, models.MetadataPatch{Priority: &high})
	assert.ErrorContains(t, err, "locked")
}

func TestExclusionsPersistAndApply(t *testing.T) {
	reg := options.NewRegistry(nil)
	c, mem := newController(t, func(cfg *Config) { cfg.Options = reg })
	c.Start()

	c.SetExclusions(options.ExclusionPolicy{Enabled: true, Pages: []string{"Archive"}})
	enabled, err := mem.GetSetting(constants.SettingExclusionsEnabled)
	require.NoError(t, err)
	assert.Equal(t, "true", enabled)

	next, _ := newController(t, func(cfg *Config) { cfg.Settings = mem })
	next.Start()
	p := next.Exclusions()
	assert.True(t, p.Enabled)
	assert.Equal(t, []string{"Archive"}, p.Pages)
}
