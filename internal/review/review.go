// Package review implements the sequential walk over the review views.
package review

import (
	"slices"

	"github.com/julianstephens/taskdash/internal/constants"
)

// Notice keys reported with an Effect. They resolve through the label catalog.
const (
	NoticeNoViews = "notices.review.noViews"
	NoticeEnded   = "notices.review.ended"
)

// EffectKind tells the owner what to do after a transition.
type EffectKind int

const (
	EffectNone EffectKind = iota
	// EffectActivate makes Effect.ViewID the active view.
	EffectActivate
	// EffectRestoreDefault clears the active view and restores the last default state.
	EffectRestoreDefault
)

// Effect is the side effect a transition asks its owner to apply.
type Effect struct {
	Kind   EffectKind
	ViewID string
	Notice string
}

// Inputs is the live context a transition is evaluated against.
type Inputs struct {
	// ViewIDs are the ids of the views currently in the store.
	ViewIDs []string
	// Enabled disables a candidate when it maps to false. Missing ids are enabled.
	Enabled map[string]bool
	// ActiveViewID is the store's active view, or "".
	ActiveViewID string
}

// State is the externally visible review position.
type State struct {
	Active bool
	Index  int
}

// Sequencer walks the effective review list. It is not safe for concurrent
// use; the dashboard controller serializes access.
type Sequencer struct {
	candidates []string
	active     bool
	index      int
	current    string
	prior      string
}

// New returns a sequencer over candidates. A nil slice uses the built-in review presets.
func New(candidates []string) *Sequencer {
	if candidates == nil {
		candidates = constants.DashboardReviewPresetIDs
	}
	return &Sequencer{candidates: slices.Clone(candidates)}
}

// Candidates returns the fixed candidate order.
func (s *Sequencer) Candidates() []string {
	return slices.Clone(s.candidates)
}

// Effective filters the candidates down to existing, enabled views.
func (s *Sequencer) Effective(in Inputs) []string {
	out := make([]string, 0, len(s.candidates))
	for _, id := range s.candidates {
		if !slices.Contains(in.ViewIDs, id) {
			continue
		}
		if enabled, ok := in.Enabled[id]; ok && !enabled {
			continue
		}
		out = append(out, id)
	}
	return out
}

// State reports whether a review is running and where.
func (s *Sequencer) State() State {
	return State{Active: s.active, Index: s.index}
}

// Current returns the view id under review, or "" when inactive.
func (s *Sequencer) Current() string {
	if !s.active {
		return ""
	}
	return s.current
}

// Start begins a review at the first effective view, remembering the view
// that was active so Exit can return to it.
func (s *Sequencer) Start(in Inputs) Effect {
	eff := s.Effective(in)
	if len(eff) == 0 {
		return Effect{Notice: NoticeNoViews}
	}
	s.active = true
	s.index = 0
	s.current = eff[0]
	s.prior = in.ActiveViewID
	return Effect{Kind: EffectActivate, ViewID: s.current}
}

// Next moves to the following effective view. It is a no-op on the last one.
func (s *Sequencer) Next(in Inputs) Effect {
	return s.step(in, 1)
}

// Back moves to the previous effective view. It is a no-op on the first one.
func (s *Sequencer) Back(in Inputs) Effect {
	return s.step(in, -1)
}

func (s *Sequencer) step(in Inputs, delta int) Effect {
	if !s.active {
		return Effect{}
	}
	if eff := s.Reconcile(in); eff.Kind != EffectNone || !s.active {
		return eff
	}
	list := s.Effective(in)
	next := s.index + delta
	if next < 0 || next >= len(list) {
		return Effect{}
	}
	s.index = next
	s.current = list[next]
	return Effect{Kind: EffectActivate, ViewID: s.current}
}

// Exit ends the review and returns to the view active before Start, or to the
// default state when there was none or it no longer exists.
func (s *Sequencer) Exit(in Inputs) Effect {
	if !s.active {
		return Effect{}
	}
	prior := s.prior
	s.reset()
	if prior != "" && slices.Contains(in.ViewIDs, prior) {
		return Effect{Kind: EffectActivate, ViewID: prior}
	}
	return Effect{Kind: EffectRestoreDefault}
}

// Cancel drops the review without restoring anything. Used when the user
// picks a view by hand mid-review.
func (s *Sequencer) Cancel() {
	s.reset()
}

func (s *Sequencer) reset() {
	s.active = false
	s.index = 0
	s.current = ""
	s.prior = ""
}

// Reconcile recomputes the review position against the current inputs. When
// the reviewed view is no longer effective it moves to the nearest later
// effective view, else the nearest earlier one. An empty effective list ends
// the review with a notice.
func (s *Sequencer) Reconcile(in Inputs) Effect {
	if !s.active {
		return Effect{}
	}
	eff := s.Effective(in)
	if len(eff) == 0 {
		out := s.Exit(in)
		out.Notice = NoticeEnded
		return out
	}

	if pos := slices.Index(eff, s.current); pos >= 0 {
		s.index = pos
		if in.ActiveViewID != s.current {
			return Effect{Kind: EffectActivate, ViewID: s.current}
		}
		return Effect{}
	}

	s.index = s.nearest(eff)
	s.current = eff[s.index]
	return Effect{Kind: EffectActivate, ViewID: s.current}
}

// nearest finds the replacement position for a current id that dropped out
// of eff, searching forward in candidate order first.
func (s *Sequencer) nearest(eff []string) int {
	cpos := slices.Index(s.candidates, s.current)
	if cpos < 0 {
		return min(s.index, len(eff)-1)
	}
	for _, id := range s.candidates[cpos+1:] {
		if pos := slices.Index(eff, id); pos >= 0 {
			return pos
		}
	}
	for j := cpos - 1; j >= 0; j-- {
		if pos := slices.Index(eff, s.candidates[j]); pos >= 0 {
			return pos
		}
	}
	return 0
}
