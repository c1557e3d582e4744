package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/taskdash/internal/filters"
	"github.com/julianstephens/taskdash/internal/models"
	"github.com/julianstephens/taskdash/internal/views"
)

// SaveViewAs prompts for a name and saves the live state as a new, active
// view. It returns the new view id, or "" when nothing was saved.
func (c *Controller) SaveViewAs() string {
	name, ok := c.promptText(c.cfg.Catalog.Lookup("prompts.saveView", "Save view as"), "")
	if !ok {
		return ""
	}
	return c.CreateView(name)
}

// CreateView saves the live state under name and makes it active. An empty
// name is a no-op and returns "".
func (c *Controller) CreateView(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq.Cancel()
	var before []string
	leaving := c.store.ActiveViewID == ""
	state := c.state
	c.mutate("create view", func(s models.ViewsStore) models.ViewsStore {
		before = views.IDs(s)
		if leaving {
			s = views.SetLastDefaultState(s, state)
		}
		return views.Create(s, name, state)
	})
	id := c.store.ActiveViewID
	if id == "" || slices.Contains(before, id) {
		return ""
	}
	return id
}

// UpdateActiveView overwrites the active view with the live state. It
// reports whether a view was updated.
func (c *Controller) UpdateActiveView() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.store.ActiveViewID
	if id == "" {
		return false
	}
	state := c.state
	c.mutate("update view", func(s models.ViewsStore) models.ViewsStore {
		return views.Update(s, id, state)
	})
	_, found := views.Find(c.store, id)
	return found
}

// RenameViewPrompt asks for a new name for view id.
func (c *Controller) RenameViewPrompt(id string) bool {
	v, found := c.findView(id)
	if !found {
		return false
	}
	name, ok := c.promptText(c.cfg.Catalog.Lookup("prompts.renameView", "Rename view"), v.Name)
	if !ok {
		return false
	}
	return c.RenameView(id, name)
}

// RenameView renames view id. Empty names and unknown ids are no-ops.
func (c *Controller) RenameView(id, name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mutate("rename view", func(s models.ViewsStore) models.ViewsStore {
		return views.Rename(s, id, name)
	})
	v, found := views.Find(c.store, id)
	return found && v.Name == strings.TrimSpace(name)
}

// DeleteViewPrompt confirms and deletes view id.
func (c *Controller) DeleteViewPrompt(id string) bool {
	v, found := c.findView(id)
	if !found {
		return false
	}
	title := fmt.Sprintf(c.cfg.Catalog.Lookup("prompts.deleteView", "Delete view %q?"), v.Name)
	if c.cfg.Prompter == nil || !c.cfg.Prompter.Confirm(title) {
		return false
	}
	return c.DeleteView(id)
}

// DeleteView removes view id. Deleting the active view leaves the live
// state in place with no view selected. A running review is reconciled.
func (c *Controller) DeleteView(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, existed := views.Find(c.loadStore(), id)
	c.mutate("delete view", func(s models.ViewsStore) models.ViewsStore {
		return views.Delete(s, id)
	})
	return existed
}

// SelectViewPrompt lets the user pick a saved view, or none.
func (c *Controller) SelectViewPrompt() bool {
	list := c.Views()
	choices := make([]Choice, 0, len(list)+1)
	choices = append(choices, Choice{Label: c.cfg.Catalog.Lookup("views.none", "No view"), Value: ""})
	for _, v := range list {
		choices = append(choices, Choice{Label: v.Name, Value: v.ID})
	}
	if c.cfg.Prompter == nil {
		return false
	}
	id, ok := c.cfg.Prompter.PromptSelect(c.cfg.Catalog.Lookup("prompts.selectView", "Select view"), choices)
	if !ok {
		return false
	}
	c.SelectView(id)
	return true
}

// SelectView activates view id by hand and loads its state. An empty or
// unknown id clears the selection and restores the last default state.
// Clearing when no view is active keeps the live state.
// A running review is cancelled without restoring anything.
func (c *Controller) SelectView(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq.Cancel()
	if id == "" {
		if c.store.ActiveViewID != "" {
			c.restoreDefault()
		}
		return
	}
	c.activate(id)
}

// ClearView deselects the active view.
func (c *Controller) ClearView() {
	c.SelectView("")
}

// activate makes id active and hydrates from it. Leaving the no-view state
// captures it as the last default state first. A view that vanished during a
// review is handed back to the sequencer. Caller holds c.mu.
func (c *Controller) activate(id string) {
	leaving := c.store.ActiveViewID == ""
	state := c.state
	c.mutate("activate view", func(s models.ViewsStore) models.ViewsStore {
		if leaving {
			s = views.SetLastDefaultState(s, state)
		}
		return views.SetActive(s, id)
	})
	if v, ok := views.Find(c.store, c.store.ActiveViewID); ok {
		c.hydrate(v.State)
		return
	}
	if c.seq.State().Active {
		c.reconcile()
		return
	}
	c.restoreDefault()
}

// restoreDefault clears the active view and reloads the last default state.
// Caller holds c.mu.
func (c *Controller) restoreDefault() {
	c.mutate("clear active view", func(s models.ViewsStore) models.ViewsStore {
		return views.SetActive(s, "")
	})
	if c.store.LastDefaultState != nil {
		c.hydrate(*c.store.LastDefaultState)
		return
	}
	c.hydrate(filters.NormalizeViewState(nil))
}

// InstallPresets seeds the built-in views, optionally ignoring the seeded flag.
func (c *Controller) InstallPresets(force bool) views.InstallResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := c.installPresets(force)
	c.reconcile()
	return res
}

func (c *Controller) findView(id string) (models.View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return views.Find(c.store, id)
}

func (c *Controller) promptText(title, initial string) (string, bool) {
	if c.cfg.Prompter == nil {
		return "", false
	}
	v, ok := c.cfg.Prompter.PromptText(title, initial)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
