package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/taskdash/internal/cli"
	"github.com/julianstephens/taskdash/internal/logger"
	"github.com/julianstephens/taskdash/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	// the dashboard still opens without a graph and reports the load error
	if err := ctx.LoadGraph(); err != nil {
		logger.Warn("Notes graph unavailable", "error", err)
	}

	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	notices := tui.NewNotices()
	d := ctx.OpenDashboard(cli.DashboardOptions{WithOptions: true, Notify: notices.Send})
	defer d.Close()

	m := tui.NewModel(d.Controller, d.Tasks, notices)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard exited with error: %w", err)
	}
	return nil
}
