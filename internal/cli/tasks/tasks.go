package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/taskdash/internal/cli"
	"github.com/julianstephens/taskdash/internal/cli/views"
	"github.com/julianstephens/taskdash/internal/engine"
	apperrors "github.com/julianstephens/taskdash/internal/errors"
	"github.com/julianstephens/taskdash/internal/filters"
	"github.com/julianstephens/taskdash/internal/models"
)

var timeNow = time.Now

// Selection is the view state a read command runs with: the saved session
// state, optionally replaced by a saved view and adjusted by flags.
type Selection struct {
	View     string `help:"Use a saved view (ID or name) for this command only."`
	Query    string `short:"q" help:"Free-text query over task titles and pages."`
	Grouping string `short:"g" help:"Grouping mode: time, recurrence or project."`
}

func (s Selection) state(d *cli.Dashboard) (models.ViewState, error) {
	state := d.State()
	if s.View != "" {
		v, err := views.Resolve(d.Views(), s.View)
		if err != nil {
			return models.ViewState{}, err
		}
		state = v.State
	}
	if s.Query != "" {
		state.Query = s.Query
	}
	if s.Grouping != "" {
		state.Grouping = filters.NormalizeGrouping(s.Grouping)
	}
	return state, nil
}

// load opens an ephemeral dashboard over the notes graph and fetches tasks.
func load(ctx *cli.Context) (*cli.Dashboard, error) {
	if err := ctx.LoadGraph(); err != nil {
		return nil, apperrors.WithHint(fmt.Errorf("failed to open notes graph: %w", err), apperrors.GraphHint)
	}
	d := ctx.OpenDashboard(cli.DashboardOptions{Ephemeral: true})
	if err := d.Refresh(context.Background(), "cli", false); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return d, nil
}

func group(ctx *cli.Context, d *cli.Dashboard, state models.ViewState, now time.Time) []engine.Group {
	visible := engine.ApplyFilters(d.Tasks.Snapshot().Tasks, state.Filters, state.Query, now)
	return engine.GroupTasks(visible, state.Grouping, engine.GroupOptions{
		CompletionTokens: state.Filters.Completion,
		Labels:           ctx.Catalog.GroupLabels(),
	})
}

type TaskListCmd struct {
	Selection `embed:""`
	UIDs      bool `help:"Show task uids."`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	d, err := load(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	state, err := c.state(d)
	if err != nil {
		return err
	}
	now := timeNow()
	groups := group(ctx, d, state, now)
	if len(groups) == 0 {
		ctx.Println("No tasks match.")
		return nil
	}

	for i, g := range groups {
		if i > 0 {
			ctx.Println()
		}
		ctx.Printf("%s (%d)\n", g.Title, len(g.Items))
		for _, t := range g.Items {
			ctx.Println("  " + formatTask(t, now, c.UIDs))
		}
	}
	return nil
}

func formatTask(t models.Task, now time.Time, withUID bool) string {
	check := "[ ]"
	if t.IsCompleted {
		check = "[x]"
	}
	parts := []string{check, t.Title}
	if t.DueAt != nil {
		parts = append(parts, "· due "+humanize.RelTime(*t.DueAt, now, "ago", "from now"))
	}
	if t.Metadata.Priority != "" {
		parts = append(parts, "· "+t.Metadata.Priority)
	}
	if t.Metadata.Project != "" {
		parts = append(parts, "· ["+t.Metadata.Project+"]")
	}
	if t.Metadata.WaitingFor != "" {
		parts = append(parts, "· waiting for "+t.Metadata.WaitingFor)
	}
	if t.PageTitle != "" {
		parts = append(parts, "· "+t.PageTitle)
	}
	if withUID {
		parts = append(parts, "("+t.UID+")")
	}
	return strings.Join(parts, " ")
}
