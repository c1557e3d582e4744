package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/tasks"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateSaveView, constants.StateRenameView, constants.StateConfirmDelete, constants.StateBulkEdit:
		content = docStyle.Render(m.form.View())
	default:
		content = docStyle.Render(m.taskList.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		m.viewFilterLine(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	var tabs []string
	name := "No view"
	if v, ok := m.ctrl.ActiveView(); ok {
		name = v.Name
		if m.ctrl.IsDirty() {
			name += " *"
		}
	}
	tabs = append(tabs, activeTabStyle.Render(name))
	grouping := m.ctrl.State().Grouping
	for _, g := range groupingCycle {
		if g == grouping {
			tabs = append(tabs, activeTabStyle.Render(string(g)))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(string(g)))
		}
	}
	if st := m.ctrl.ReviewStatus(); st.Active {
		tabs = append(tabs, reviewStyle.Render(fmt.Sprintf("REVIEW %d/%d", st.Index+1, st.Total)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewFilterLine() string {
	if m.state == constants.StateQuery {
		return m.query.View()
	}
	st := m.ctrl.State()
	var parts []string
	if q := strings.TrimSpace(st.Query); q != "" {
		parts = append(parts, fmt.Sprintf("search %q", q))
	}
	for _, k := range constants.FilterKeys {
		if set := st.Filters.Set(k); len(set) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(set, ",")))
		}
	}
	texts := [][2]string{
		{"project", st.Filters.ProjectText},
		{"waiting", st.Filters.WaitingText},
		{"context", st.Filters.ContextText},
	}
	for _, t := range texts {
		if t[1] != "" {
			parts = append(parts, fmt.Sprintf("%s~%s", t[0], t[1]))
		}
	}
	if len(parts) == 0 {
		return mutedStyle.Render("no filters")
	}
	return mutedStyle.Render(strings.Join(parts, "  "))
}

func (m Model) viewStatus() string {
	if m.notice != "" {
		return warningStyle.Render(m.notice)
	}
	switch m.snapshot.Status {
	case tasks.StatusLoading:
		return mutedStyle.Render("Loading tasks...")
	case tasks.StatusError:
		return dangerStyle.Render(fmt.Sprintf("Could not load tasks: %s", m.snapshot.Err))
	}
	if m.snapshot.LastUpdated.IsZero() {
		return ""
	}
	return mutedStyle.Render(fmt.Sprintf("%d tasks, updated %s",
		len(m.snapshot.Tasks), humanize.RelTime(m.snapshot.LastUpdated, m.now(), "ago", "from now")))
}
