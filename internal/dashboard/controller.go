// Package dashboard owns one interactive dashboard session: the live view
// state, the saved-views document, review mode and the providers feeding them.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/engine"
	"github.com/julianstephens/taskdash/internal/filters"
	"github.com/julianstephens/taskdash/internal/i18n"
	"github.com/julianstephens/taskdash/internal/logger"
	"github.com/julianstephens/taskdash/internal/models"
	"github.com/julianstephens/taskdash/internal/options"
	"github.com/julianstephens/taskdash/internal/review"
	"github.com/julianstephens/taskdash/internal/rows"
	"github.com/julianstephens/taskdash/internal/storage"
	"github.com/julianstephens/taskdash/internal/tasks"
	"github.com/julianstephens/taskdash/internal/views"
)

// Choice is one entry of a selection prompt.
type Choice struct {
	Label string
	Value string
}

// Prompter asks the user for input. ok == false means the user cancelled
// and the caller does nothing.
type Prompter interface {
	PromptText(title, initial string) (value string, ok bool)
	PromptSelect(title string, choices []Choice) (value string, ok bool)
	Confirm(title string) (ok bool)
}

// TaskWriter applies a metadata patch to tasks in the notes graph.
type TaskWriter interface {
	UpdateTasks(ctx context.Context, uids []string, patch models.MetadataPatch) (int, error)
}

// Config wires a controller to its collaborators. Only Settings is required.
type Config struct {
	Settings storage.Provider
	Session  storage.SessionStore
	Tasks    *tasks.Provider
	Options  *options.Registry
	Writer   TaskWriter
	Prompter Prompter
	Catalog  *i18n.Catalog
	// Notify shows a short message to the user.
	Notify func(msg string)
	// PersistDelay is the idle window before the last default state is saved.
	PersistDelay time.Duration
	// ReviewCandidates overrides the review order. Nil uses the review presets.
	ReviewCandidates []string
}

// Controller serializes every session operation behind one mutex.
type Controller struct {
	mu        sync.Mutex
	cfg       Config
	state     models.ViewState
	store     models.ViewsStore
	expanded  map[string]bool
	enabled   map[string]bool
	seq       *review.Sequencer
	projector rows.Projector
	persist   *debouncer
	closed    bool

	reconciling bool
}

// New returns a controller in the default state. Call Start to load
// persisted data.
func New(cfg Config) *Controller {
	if cfg.Settings == nil {
		cfg.Settings = storage.NewMemoryStore()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = i18n.Empty()
	}
	if cfg.PersistDelay <= 0 {
		cfg.PersistDelay = constants.LastDefaultPersistWait
	}
	c := &Controller{
		cfg:      cfg,
		state:    filters.NormalizeViewState(nil),
		store:    views.Empty(),
		expanded: map[string]bool{},
		enabled:  map[string]bool{},
		seq:      review.New(cfg.ReviewCandidates),
	}
	c.persist = newDebouncer(cfg.PersistDelay, c.persistLastDefault)
	return c
}

// Start loads the views document, seeds presets on first run, restores the
// session filters and applies the stored settings. Persisted data that
// cannot be read falls back to defaults.
func (c *Controller) Start() views.InstallResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = c.loadStore()
	res := c.installPresets(false)

	if v, ok := views.Find(c.store, c.store.ActiveViewID); ok {
		c.state = v.State
	} else if c.store.LastDefaultState != nil {
		c.state = *c.store.LastDefaultState
	}
	if f, ok := c.loadSessionFilters(); ok {
		c.state.Filters = f
	}
	c.enabled = c.loadEnabled()
	if c.cfg.Options != nil {
		c.cfg.Options.SetPolicy(c.loadExclusions())
	}
	logger.Debug("dashboard started", "views", len(c.store.Views), "active", c.store.ActiveViewID)
	return res
}

// Close stops the pending last-default write. Further changes are not persisted.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.persist.Stop()
}

// Refresh reloads tasks and, when force is set or their cache is stale, the
// picklist options.
func (c *Controller) Refresh(ctx context.Context, reason string, force bool) error {
	if c.cfg.Options != nil {
		go func() {
			if err := c.cfg.Options.RefreshAll(context.WithoutCancel(ctx), force); err != nil {
				logger.Warn("option refresh failed", "error", err)
			}
		}()
	}
	if c.cfg.Tasks == nil {
		return nil
	}
	return c.cfg.Tasks.Refresh(ctx, reason)
}

// State returns the live view state.
func (c *Controller) State() models.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Store returns the cached views document.
func (c *Controller) Store() models.ViewsStore {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store
}

// ActiveView returns the active saved view, if any.
func (c *Controller) ActiveView() (models.View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return views.Find(c.store, c.store.ActiveViewID)
}

// Views returns the saved views in display order.
func (c *Controller) Views() []models.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return views.DisplayOrder(c.store)
}

// IsDirty reports whether the live state differs from the active view.
func (c *Controller) IsDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := views.Find(c.store, c.store.ActiveViewID)
	return ok && !filters.Equal(v.State, c.state)
}

// Groups runs the current task snapshot through the filter/group engine.
func (c *Controller) Groups(now time.Time) []engine.Group {
	var all []models.Task
	if c.cfg.Tasks != nil {
		all = c.cfg.Tasks.Snapshot().Tasks
	}
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	visible := engine.ApplyFilters(all, state.Filters, state.Query, now)
	return engine.GroupTasks(visible, state.Grouping, engine.GroupOptions{
		CompletionTokens: state.Filters.Completion,
		Labels:           c.cfg.Catalog.GroupLabels(),
	})
}

// Rows flattens Groups with the session's collapse map.
func (c *Controller) Rows(now time.Time) []rows.Row {
	groups := c.Groups(now)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projector.Project(groups, c.expanded)
}

// ToggleGroup flips a group between expanded and collapsed.
func (c *Controller) ToggleGroup(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make(map[string]bool, len(c.expanded)+1)
	for k, v := range c.expanded {
		next[k] = v
	}
	expanded, set := c.expanded[id]
	next[id] = set && !expanded
	c.expanded = next
}

// ToggleFilter adds or removes token from the set under key.
func (c *Controller) ToggleFilter(key constants.FilterKey, token string) {
	c.setFilters(func(f models.Filters) models.Filters { return filters.Toggle(f, key, token) })
}

// ToggleSingleFilter makes token the only member of the set under key, or
// clears the set when it already is.
func (c *Controller) ToggleSingleFilter(key constants.FilterKey, token string) {
	c.setFilters(func(f models.Filters) models.Filters { return filters.ToggleSingle(f, key, token) })
}

// SetText sets one of the free-text filter fields.
func (c *Controller) SetText(field, value string) {
	c.setFilters(func(f models.Filters) models.Filters { return filters.SetText(f, field, value) })
}

// SetRange sets completedRange or upcomingRange.
func (c *Controller) SetRange(field, value string) {
	c.setFilters(func(f models.Filters) models.Filters { return filters.SetRange(f, field, value) })
}

// ResetFilters restores the default filters.
func (c *Controller) ResetFilters() {
	c.setFilters(func(models.Filters) models.Filters { return filters.Reset() })
}

// SetGrouping changes the grouping mode.
func (c *Controller) SetGrouping(g constants.Grouping) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Grouping = filters.NormalizeGrouping(string(g))
	c.changed()
}

// SetQuery changes the search text. It is stored untrimmed.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Query = q
	c.changed()
}

// OptionsFor returns the cached picklist values for kind.
func (c *Controller) OptionsFor(kind options.Kind) []string {
	if c.cfg.Options == nil {
		return nil
	}
	svc := c.cfg.Options.Service(kind)
	if svc == nil {
		return nil
	}
	return svc.Options()
}

func (c *Controller) setFilters(fn func(models.Filters) models.Filters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Filters = fn(c.state.Filters)
	c.changed()
}

// changed persists the live filters and, with no view active, schedules the
// last default state write. Caller holds c.mu.
func (c *Controller) changed() {
	if c.closed {
		return
	}
	c.saveSessionFilters()
	if c.store.ActiveViewID == "" {
		c.persist.Trigger()
	}
}

// hydrate replaces the live state with a saved one. Caller holds c.mu.
func (c *Controller) hydrate(state models.ViewState) {
	c.state = filters.NormalizeViewState(state)
	c.saveSessionFilters()
}

func (c *Controller) persistLastDefault() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.store.ActiveViewID != "" {
		return
	}
	state := c.state
	c.mutate("persist last default state", func(s models.ViewsStore) models.ViewsStore {
		if s.ActiveViewID != "" {
			return s
		}
		return views.SetLastDefaultState(s, state)
	})
}

func (c *Controller) notify(key, fallback string) {
	if c.cfg.Notify == nil {
		return
	}
	c.cfg.Notify(c.cfg.Catalog.Lookup(key, fallback))
}
