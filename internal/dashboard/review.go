package dashboard

import (
	"context"
	"fmt"

	"github.com/julianstephens/taskdash/internal/logger"
	"github.com/julianstephens/taskdash/internal/models"
	"github.com/julianstephens/taskdash/internal/review"
	"github.com/julianstephens/taskdash/internal/views"
)

var noticeText = map[string]string{
	review.NoticeNoViews: "No review views are enabled.",
	review.NoticeEnded:   "Review ended: no review views remain.",
}

// ReviewStatus describes review mode for display.
type ReviewStatus struct {
	Active bool
	Index  int
	Total  int
	ViewID string
}

// ReviewStatus reports the current review position.
func (c *Controller) ReviewStatus() ReviewStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.seq.State()
	return ReviewStatus{
		Active: st.Active,
		Index:  st.Index,
		Total:  len(c.seq.Effective(c.reviewInputs())),
		ViewID: c.seq.Current(),
	}
}

// ReviewViews returns the effective review list in order.
func (c *Controller) ReviewViews() []models.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := c.seq.Effective(c.reviewInputs())
	out := make([]models.View, 0, len(ids))
	for _, id := range ids {
		if v, ok := views.Find(c.store, id); ok {
			out = append(out, v)
		}
	}
	return out
}

// ReviewCandidates returns every review candidate id in order, enabled or not.
func (c *Controller) ReviewCandidates() []string {
	return c.seq.Candidates()
}

// StartReview begins review mode at the first enabled review view.
func (c *Controller) StartReview() {
	c.withReview(c.seq.Start)
}

// NextReview advances review mode.
func (c *Controller) NextReview() {
	c.withReview(c.seq.Next)
}

// PrevReview steps review mode back.
func (c *Controller) PrevReview() {
	c.withReview(c.seq.Back)
}

// ExitReview leaves review mode and returns to the view active before it
// started, or to the last default state.
func (c *Controller) ExitReview() {
	c.withReview(c.seq.Exit)
}

func (c *Controller) withReview(op func(review.Inputs) review.Effect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = c.loadStore()
	c.enabled = c.loadEnabled()
	c.apply(op(c.reviewInputs()))
}

// reconcile re-evaluates a running review after the views or the enablement
// map changed. Effects applied here may mutate the store again; those nested
// mutations do not reconcile a second time. Caller holds c.mu.
func (c *Controller) reconcile() {
	if c.reconciling {
		return
	}
	c.reconciling = true
	defer func() { c.reconciling = false }()
	c.apply(c.seq.Reconcile(c.reviewInputs()))
}

func (c *Controller) reviewInputs() review.Inputs {
	return review.Inputs{
		ViewIDs:      views.IDs(c.store),
		Enabled:      c.enabled,
		ActiveViewID: c.store.ActiveViewID,
	}
}

// apply carries out a sequencer effect. Caller holds c.mu.
func (c *Controller) apply(e review.Effect) {
	switch e.Kind {
	case review.EffectActivate:
		c.activate(e.ViewID)
	case review.EffectRestoreDefault:
		c.restoreDefault()
	}
	if e.Notice != "" {
		c.notify(e.Notice, noticeText[e.Notice])
	}
}

// BulkUpdate applies patch to the given tasks, then refreshes tasks and
// picklist options so the dashboard reflects the edit.
func (c *Controller) BulkUpdate(ctx context.Context, uids []string, patch models.MetadataPatch) (int, error) {
	if len(uids) == 0 || patch.IsEmpty() {
		return 0, nil
	}
	if c.cfg.Writer == nil {
		return 0, fmt.Errorf("bulk update: no task writer configured")
	}
	n, err := c.cfg.Writer.UpdateTasks(ctx, uids, patch)
	if err != nil {
		return n, fmt.Errorf("bulk update: %w", err)
	}
	logger.Info("bulk updated tasks", "requested", len(uids), "updated", n)
	if err := c.Refresh(ctx, "bulk-update", true); err != nil {
		logger.Warn("refresh after bulk update failed", "error", err)
	}
	return n, nil
}
