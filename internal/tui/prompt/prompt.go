// Package prompt implements the dashboard prompter with standalone huh forms
// for use outside the TUI.
package prompt

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/taskdash/internal/dashboard"
	"github.com/julianstephens/taskdash/internal/logger"
)

// Huh prompts on the terminal. Accessible switches to plain line prompts,
// which also work when stdin is not a TTY.
type Huh struct {
	Accessible bool
	Input      io.Reader
	Output     io.Writer
}

var _ dashboard.Prompter = (*Huh)(nil)

func (h *Huh) run(field huh.Field) bool {
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(huh.ThemeDracula()).
		WithAccessible(h.Accessible)
	if h.Input != nil {
		form = form.WithInput(h.Input)
	}
	if h.Output != nil {
		form = form.WithOutput(h.Output)
	}
	return completed(form.Run())
}

// completed maps a form error to the prompter's ok flag.
func completed(err error) bool {
	if err == nil {
		return true
	}
	if !errors.Is(err, huh.ErrUserAborted) {
		logger.Warn("Prompt failed", "error", err)
	}
	return false
}

func (h *Huh) PromptText(title, initial string) (string, bool) {
	value := initial
	ok := h.run(huh.NewInput().Title(title).Value(&value))
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func (h *Huh) PromptSelect(title string, choices []dashboard.Choice) (string, bool) {
	if len(choices) == 0 {
		return "", false
	}
	opts := make([]huh.Option[string], 0, len(choices))
	for _, c := range choices {
		opts = append(opts, huh.NewOption(c.Label, c.Value))
	}
	value := choices[0].Value
	if !h.run(huh.NewSelect[string]().Title(title).Options(opts...).Value(&value)) {
		return "", false
	}
	return value, true
}

func (h *Huh) Confirm(title string) bool {
	var confirmed bool
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)
	return h.run(field) && confirmed
}

// Static answers prompts from fixed values. It drives non-interactive
// commands where the answer is already known from flags.
type Static struct {
	Text   string
	Select string
	Yes    bool
}

var _ dashboard.Prompter = Static{}

func (s Static) PromptText(string, string) (string, bool) {
	v := strings.TrimSpace(s.Text)
	return v, v != ""
}

func (s Static) PromptSelect(_ string, choices []dashboard.Choice) (string, bool) {
	for _, c := range choices {
		if c.Value == s.Select {
			return c.Value, true
		}
	}
	return "", false
}

func (s Static) Confirm(string) bool { return s.Yes }
