package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/dashboard"
	"github.com/julianstephens/taskdash/internal/tasks"
	"github.com/julianstephens/taskdash/internal/tui/components/tasklist"
)

// headerLines is the space reserved above and below the task list.
const headerLines = 6

// Notices carries controller notifications into the program.
type Notices chan string

func NewNotices() Notices {
	return make(Notices, 16)
}

// Send queues msg without blocking. Messages beyond the buffer are dropped.
func (n Notices) Send(msg string) {
	select {
	case n <- msg:
	default:
	}
}

type snapshotMsg tasks.Snapshot

type noticeMsg string

// statusMsg reports the outcome of a background command.
type statusMsg string

type refreshedMsg struct {
	err error
}

type Model struct {
	ctrl        *dashboard.Controller
	notices     Notices
	snapshots   chan tasks.Snapshot
	unsubscribe func()
	state       constants.SessionState
	keys        KeyMap
	help        help.Model
	query       textinput.Model
	taskList    tasklist.Model
	form        *huh.Form
	viewForm    *ViewFormModel
	deleteForm  *DeleteFormModel
	bulkForm    *BulkFormModel
	bulkUIDs    []string
	renamingID  string
	snapshot    tasks.Snapshot
	notice      string
	quitting    bool
	width       int
	height      int
	now         func() time.Time
}

func NewModel(ctrl *dashboard.Controller, provider *tasks.Provider, notices Notices) Model {
	ti := textinput.New()
	ti.Placeholder = "search tasks"
	ti.Prompt = "/ "
	ti.SetValue(ctrl.State().Query)

	m := Model{
		ctrl:        ctrl,
		notices:     notices,
		snapshots:   make(chan tasks.Snapshot, 1),
		unsubscribe: func() {},
		state:       constants.StateDashboard,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		query:       ti,
		taskList:    tasklist.New(0, 0),
		now:         time.Now,
	}
	if provider != nil {
		ch := m.snapshots
		m.unsubscribe = provider.Subscribe(func(s tasks.Snapshot) {
			// keep only the newest snapshot
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		})
		m.snapshot = provider.Snapshot()
	}
	m.syncRows()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := m.keys.ShortHelp()
	if m.ctrl.ReviewStatus().Active {
		keys = append([]key.Binding{m.keys.ReviewNext, m.keys.ReviewBack, m.keys.ReviewExit}, keys...)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	tl := m.taskList.Keys()
	nav := []key.Binding{tl.Up, tl.Down, tl.PageUp, tl.PageDown, tl.Toggle, tl.Select}
	return append([][]key.Binding{nav}, m.keys.FullHelp()...)
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(false), waitForSnapshot(m.snapshots), waitForNotice(m.notices))
}

// Close detaches from the task provider.
func (m Model) Close() {
	m.unsubscribe()
}

func (m Model) refresh(force bool) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return refreshedMsg{err: ctrl.Refresh(context.Background(), "tui", force)}
	}
}

func waitForSnapshot(ch <-chan tasks.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-ch)
	}
}

func waitForNotice(ch Notices) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return noticeMsg(<-ch)
	}
}

// syncRows re-projects the dashboard into the task list.
func (m *Model) syncRows() {
	m.taskList.SetRows(m.ctrl.Rows(m.now()))
}

func (m *Model) resize() {
	m.help.Width = m.width
	m.taskList.SetSize(m.width-4, m.height-headerLines)
}
