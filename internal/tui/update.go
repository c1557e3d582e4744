package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/options"
	"github.com/julianstephens/taskdash/internal/tasks"
	"github.com/julianstephens/taskdash/internal/tui/components/tasklist"
)

var groupingCycle = []constants.Grouping{
	constants.GroupingTime,
	constants.GroupingRecurrence,
	constants.GroupingProject,
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case snapshotMsg:
		m.snapshot = tasks.Snapshot(msg)
		m.syncRows()
		return m, waitForSnapshot(m.snapshots)

	case noticeMsg:
		m.notice = string(msg)
		return m, waitForNotice(m.notices)

	case statusMsg:
		m.notice = string(msg)
		return m, nil

	case refreshedMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("Refresh failed: %v", msg.err)
		}
		return m, nil

	case tasklist.ToggleGroupMsg:
		m.ctrl.ToggleGroup(msg.GroupID)
		m.syncRows()
		return m, nil
	}

	switch m.state {
	case constants.StateQuery:
		return m.updateQuery(msg)
	case constants.StateSaveView, constants.StateRenameView, constants.StateConfirmDelete, constants.StateBulkEdit:
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	reviewing := m.ctrl.ReviewStatus().Active
	m.notice = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	case key.Matches(msg, m.keys.Query):
		m.state = constants.StateQuery
		m.query.SetValue(m.ctrl.State().Query)
		return m, m.query.Focus()
	case key.Matches(msg, m.keys.Grouping):
		m.ctrl.SetGrouping(nextGrouping(m.ctrl.State().Grouping))
	case key.Matches(msg, m.keys.Completion):
		m.cycleCompletion()
	case key.Matches(msg, m.keys.Reset):
		m.ctrl.ResetFilters()
	case key.Matches(msg, m.keys.SaveView):
		m.viewForm = &ViewFormModel{}
		m.form = NewViewForm("Save view as", m.viewForm)
		m.state = constants.StateSaveView
		return m, m.form.Init()
	case key.Matches(msg, m.keys.UpdateView):
		if m.ctrl.UpdateActiveView() {
			m.notice = "View updated"
		}
	case key.Matches(msg, m.keys.RenameView):
		v, ok := m.ctrl.ActiveView()
		if !ok {
			return m, nil
		}
		m.renamingID = v.ID
		m.viewForm = &ViewFormModel{Name: v.Name}
		m.form = NewViewForm("Rename view", m.viewForm)
		m.state = constants.StateRenameView
		return m, m.form.Init()
	case key.Matches(msg, m.keys.DeleteView):
		v, ok := m.ctrl.ActiveView()
		if !ok {
			return m, nil
		}
		m.deleteForm = &DeleteFormModel{ViewID: v.ID}
		m.form = NewDeleteForm(v.Name, m.deleteForm)
		m.state = constants.StateConfirmDelete
		return m, m.form.Init()
	case key.Matches(msg, m.keys.NextView):
		m.ctrl.SelectView(m.nextViewID())
	case key.Matches(msg, m.keys.ClearView):
		m.ctrl.ClearView()
	case key.Matches(msg, m.keys.Review):
		m.ctrl.StartReview()
	case reviewing && key.Matches(msg, m.keys.ReviewNext):
		m.ctrl.NextReview()
	case reviewing && key.Matches(msg, m.keys.ReviewBack):
		m.ctrl.PrevReview()
	case reviewing && key.Matches(msg, m.keys.ReviewExit):
		m.ctrl.ExitReview()
	case key.Matches(msg, m.keys.BulkEdit):
		m.bulkUIDs = m.taskList.Selected()
		if len(m.bulkUIDs) == 0 {
			return m, nil
		}
		m.bulkForm = newBulkFormModel()
		m.form = NewBulkForm(len(m.bulkUIDs),
			m.ctrl.OptionsFor(options.KindProject),
			m.ctrl.OptionsFor(options.KindWaiting),
			m.bulkForm)
		m.state = constants.StateBulkEdit
		return m, m.form.Init()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh(true)
	default:
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		return m, cmd
	}

	m.query.SetValue(m.ctrl.State().Query)
	m.syncRows()
	return m, nil
}

func (m Model) updateQuery(msg tea.Msg) (tea.Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			m.query.Blur()
			m.state = constants.StateDashboard
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	if m.query.Value() != m.ctrl.State().Query {
		m.ctrl.SetQuery(m.query.Value())
		m.syncRows()
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.Type == tea.KeyEsc {
		m.state = constants.StateDashboard
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		cmd = tea.Batch(cmd, m.applyForm())
		m.state = constants.StateDashboard
		m.syncRows()
	case huh.StateAborted:
		m.state = constants.StateDashboard
	}
	return m, cmd
}

// applyForm carries out the action of a completed form.
func (m *Model) applyForm() tea.Cmd {
	switch m.state {
	case constants.StateSaveView:
		if id := m.ctrl.CreateView(m.viewForm.Name); id != "" {
			m.notice = fmt.Sprintf("Saved view %q", m.viewForm.Name)
		}
	case constants.StateRenameView:
		m.ctrl.RenameView(m.renamingID, m.viewForm.Name)
	case constants.StateConfirmDelete:
		if m.deleteForm.Confirm {
			m.ctrl.DeleteView(m.deleteForm.ViewID)
		}
	case constants.StateBulkEdit:
		ctrl, uids, patch := m.ctrl, m.bulkUIDs, m.bulkForm.Patch()
		m.taskList.ClearSelection()
		return func() tea.Msg {
			n, err := ctrl.BulkUpdate(context.Background(), uids, patch)
			if err != nil {
				return statusMsg(fmt.Sprintf("Bulk edit failed: %v", err))
			}
			return statusMsg(fmt.Sprintf("Updated %d tasks", n))
		}
	}
	return nil
}

func (m *Model) cycleCompletion() {
	cur := m.ctrl.State().Filters.Completion
	single := func(token string) bool { return len(cur) == 1 && cur[0] == token }
	switch {
	case single(constants.CompletionOpen):
		m.ctrl.ToggleSingleFilter(constants.FilterCompletion, constants.CompletionCompleted)
	case single(constants.CompletionCompleted):
		// selecting the sole token again clears the set
		m.ctrl.ToggleSingleFilter(constants.FilterCompletion, constants.CompletionCompleted)
	default:
		m.ctrl.ToggleSingleFilter(constants.FilterCompletion, constants.CompletionOpen)
	}
}

// nextViewID returns the view after the active one in display order, or ""
// after the last.
func (m Model) nextViewID() string {
	list := m.ctrl.Views()
	if len(list) == 0 {
		return ""
	}
	active, ok := m.ctrl.ActiveView()
	if !ok {
		return list[0].ID
	}
	for i, v := range list {
		if v.ID == active.ID && i+1 < len(list) {
			return list[i+1].ID
		}
	}
	return ""
}

func nextGrouping(g constants.Grouping) constants.Grouping {
	for i, cand := range groupingCycle {
		if cand == g {
			return groupingCycle[(i+1)%len(groupingCycle)]
		}
	}
	return constants.GroupingTime
}
