package dashboard

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/julianstephens/taskdash/internal/constants"
	apperrors "github.com/julianstephens/taskdash/internal/errors"
	"github.com/julianstephens/taskdash/internal/filters"
	"github.com/julianstephens/taskdash/internal/logger"
	"github.com/julianstephens/taskdash/internal/models"
	"github.com/julianstephens/taskdash/internal/options"
	"github.com/julianstephens/taskdash/internal/storage"
	"github.com/julianstephens/taskdash/internal/views"
)

// loadStore reads the freshest views document. A missing document is empty;
// an unreadable settings store falls back to the cached copy.
func (c *Controller) loadStore() models.ViewsStore {
	raw, err := c.cfg.Settings.GetSetting(constants.SettingViewsStore)
	if errors.Is(err, storage.ErrNotFound) {
		return views.Empty()
	}
	if err != nil {
		logger.Warn("reading views store", "error", err)
		return c.store
	}
	return views.Load(raw)
}

func (c *Controller) saveStore(op string, s models.ViewsStore) {
	data, err := views.Marshal(s)
	if err != nil {
		apperrors.Absorb(op, err)
		return
	}
	apperrors.Absorb(op, c.cfg.Settings.SetSetting(constants.SettingViewsStore, string(data)))
}

// mutate runs one load-freshest, transform, save cycle. The fresh document
// may carry changes written elsewhere, so a running review is reconciled
// against it. Caller holds c.mu.
func (c *Controller) mutate(op string, fn func(models.ViewsStore) models.ViewsStore) {
	next := fn(c.loadStore())
	c.saveStore(op, next)
	c.store = next
	if c.seq.State().Active {
		c.enabled = c.loadEnabled()
		c.reconcile()
	}
}

// installPresets seeds the built-in views. Caller holds c.mu.
func (c *Controller) installPresets(force bool) views.InstallResult {
	seeded := c.settingBool(constants.SettingViewsSeeded, false)
	res := views.InstallPresets(c.loadStore(), seeded, views.InstallOptions{Force: force})
	if res.DidSave {
		c.saveStore("install presets", res.Store)
	}
	c.store = res.Store
	if res.MarkSeeded {
		apperrors.Absorb("mark presets seeded", c.cfg.Settings.SetSetting(constants.SettingViewsSeeded, "true"))
	}
	if len(res.InstalledIDs) > 0 {
		logger.Info("installed preset views", "ids", res.InstalledIDs)
	}
	return res
}

func (c *Controller) loadSessionFilters() (models.Filters, bool) {
	if c.cfg.Session == nil {
		return models.Filters{}, false
	}
	raw, err := c.cfg.Session.GetSession(constants.SessionFilters)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Debug("reading session filters", "error", err)
		}
		return models.Filters{}, false
	}
	return filters.DecodeSession([]byte(raw)), true
}

// saveSessionFilters writes the live filters. Caller holds c.mu.
func (c *Controller) saveSessionFilters() {
	if c.cfg.Session == nil || c.closed {
		return
	}
	apperrors.Absorb("save session filters",
		c.cfg.Session.SetSession(constants.SessionFilters, string(filters.EncodeSession(c.state.Filters))))
}

// loadEnabled reads the review enablement map. Views missing from the map
// are enabled.
func (c *Controller) loadEnabled() map[string]bool {
	out := map[string]bool{}
	raw, err := c.cfg.Settings.GetSetting(constants.SettingReviewEnabled)
	if err != nil {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		logger.Debug("discarding unreadable review settings", "error", err)
		return map[string]bool{}
	}
	return out
}

func (c *Controller) saveEnabled() {
	data, err := json.Marshal(c.enabled)
	if err != nil {
		apperrors.Absorb("save review settings", err)
		return
	}
	apperrors.Absorb("save review settings", c.cfg.Settings.SetSetting(constants.SettingReviewEnabled, string(data)))
}

func (c *Controller) loadExclusions() options.ExclusionPolicy {
	policy := options.ExclusionPolicy{
		Enabled: c.settingBool(constants.SettingExclusionsEnabled, false),
	}
	raw, err := c.cfg.Settings.GetSetting(constants.SettingExclusionPages)
	if err != nil {
		return policy
	}
	if err := json.Unmarshal([]byte(raw), &policy.Pages); err != nil {
		logger.Debug("discarding unreadable excluded pages", "error", err)
		policy.Pages = nil
	}
	return policy
}

func (c *Controller) settingBool(key string, fallback bool) bool {
	raw, err := c.cfg.Settings.GetSetting(key)
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// ReviewEnabled returns a copy of the review enablement map.
func (c *Controller) ReviewEnabled() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]bool, len(c.enabled))
	for k, v := range c.enabled {
		out[k] = v
	}
	return out
}

// SetReviewEnabled includes or excludes a view from review mode and
// reconciles a running review.
func (c *Controller) SetReviewEnabled(id string, enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.loadEnabled()
	next := make(map[string]bool, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[id] = enabled
	c.enabled = next
	c.saveEnabled()
	c.reconcile()
}

// Exclusions returns the stored picklist exclusion policy.
func (c *Controller) Exclusions() options.ExclusionPolicy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadExclusions()
}

// SetExclusions stores the picklist exclusion policy and applies it to the
// option services.
func (c *Controller) SetExclusions(p options.ExclusionPolicy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	apperrors.Absorb("save exclusions", c.cfg.Settings.SetSetting(constants.SettingExclusionsEnabled, strconv.FormatBool(p.Enabled)))
	pages := p.Pages
	if pages == nil {
		pages = []string{}
	}
	data, err := json.Marshal(pages)
	if err == nil {
		err = c.cfg.Settings.SetSetting(constants.SettingExclusionPages, string(data))
	}
	apperrors.Absorb("save excluded pages", err)
	if c.cfg.Options != nil {
		c.cfg.Options.SetPolicy(p)
	}
}
