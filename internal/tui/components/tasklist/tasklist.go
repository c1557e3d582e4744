package tasklist

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/taskdash/internal/models"
	"github.com/julianstephens/taskdash/internal/rows"
)

// ToggleGroupMsg asks the owner to expand or collapse a group.
type ToggleGroupMsg struct {
	GroupID string
}

type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Toggle   key.Binding
	Select   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "expand/collapse"),
		),
		Select: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "select"),
		),
	}
}

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// Model renders a window of dashboard rows with a cursor.
type Model struct {
	rows     []rows.Row
	cursor   int
	offset   int
	width    int
	height   int
	selected map[string]bool
	keys     KeyMap
	now      func() time.Time
}

func New(width, height int) Model {
	return Model{
		width:    width,
		height:   height,
		selected: map[string]bool{},
		keys:     DefaultKeyMap(),
		now:      time.Now,
	}
}

func (m Model) Keys() KeyMap {
	return m.keys
}

// SetRows replaces the rows, keeping the cursor on the same row key when it
// still exists.
func (m *Model) SetRows(rs []rows.Row) {
	var at string
	if cur, ok := m.Current(); ok {
		at = cur.Key
	}
	m.rows = rs
	if i := rows.IndexOf(rs, at); i >= 0 {
		m.cursor = i
	}
	m.clamp()

	live := make(map[string]bool, len(m.selected))
	for _, r := range rs {
		if r.Task != nil && m.selected[r.Task.UID] {
			live[r.Task.UID] = true
		}
	}
	m.selected = live
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.clamp()
}

// Current returns the row under the cursor.
func (m Model) Current() (rows.Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return rows.Row{}, false
	}
	return m.rows[m.cursor], true
}

// Selected returns the selected task uids, or the task under the cursor
// when nothing is selected.
func (m Model) Selected() []string {
	if len(m.selected) == 0 {
		if cur, ok := m.Current(); ok && cur.Task != nil {
			return []string{cur.Task.UID}
		}
		return nil
	}
	out := make([]string, 0, len(m.selected))
	for uid := range m.selected {
		out = append(out, uid)
	}
	sort.Strings(out)
	return out
}

func (m *Model) ClearSelection() {
	m.selected = map[string]bool{}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(kmsg, m.keys.Up):
		m.cursor--
	case key.Matches(kmsg, m.keys.Down):
		m.cursor++
	case key.Matches(kmsg, m.keys.PageUp):
		m.cursor -= m.height
	case key.Matches(kmsg, m.keys.PageDown):
		m.cursor += m.height
	case key.Matches(kmsg, m.keys.Toggle):
		if cur, ok := m.Current(); ok {
			return m, func() tea.Msg { return ToggleGroupMsg{GroupID: cur.GroupID} }
		}
	case key.Matches(kmsg, m.keys.Select):
		if cur, ok := m.Current(); ok && cur.Task != nil {
			uid := cur.Task.UID
			next := make(map[string]bool, len(m.selected)+1)
			for k := range m.selected {
				next[k] = true
			}
			if next[uid] {
				delete(next, uid)
			} else {
				next[uid] = true
			}
			m.selected = next
		}
	}
	m.clamp()
	return m, nil
}

func (m *Model) clamp() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.height <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m Model) View() string {
	if len(m.rows) == 0 {
		return mutedStyle.Render("\n  No tasks match the current filters.")
	}
	visible := rows.Window(m.rows, m.offset, m.height)
	lines := make([]string, 0, len(visible))
	for i, r := range visible {
		line := m.renderRow(r)
		if m.offset+i == m.cursor {
			line = cursorStyle.Width(m.width).Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(r rows.Row) string {
	if r.Kind == rows.KindHeader {
		marker := "▾"
		if r.Collapsed {
			marker = "▸"
		}
		return headerStyle.Render(fmt.Sprintf("%s %s (%d)", marker, r.Title, r.Count))
	}
	t := r.Task
	box := "[ ]"
	if t.IsCompleted {
		box = "[x]"
	}
	if m.selected[t.UID] {
		box = selectedStyle.Render("[*]")
	}
	parts := []string{"  " + box + " " + t.Title}
	parts = append(parts, m.details(t)...)
	return strings.Join(parts, mutedStyle.Render(" · "))
}

func (m Model) details(t *models.Task) []string {
	var out []string
	if t.PageTitle != "" {
		out = append(out, mutedStyle.Render(t.PageTitle))
	}
	if t.DueAt != nil {
		due := "due " + humanize.RelTime(*t.DueAt, m.now(), "ago", "from now")
		if t.DueAt.Before(m.now()) && !t.IsCompleted {
			due = overdueStyle.Render(due)
		}
		out = append(out, due)
	}
	if t.Metadata.Priority != "" {
		out = append(out, "!"+t.Metadata.Priority)
	}
	if t.Metadata.Project != "" {
		out = append(out, mutedStyle.Render("["+t.Metadata.Project+"]"))
	}
	for _, c := range t.Metadata.Context {
		out = append(out, mutedStyle.Render("@"+c))
	}
	return out
}
