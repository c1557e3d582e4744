package tasks

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/taskdash/internal/cli/clitest"
	"github.com/julianstephens/taskdash/internal/constants"
)

func TestTaskListCmd_RequiresGraph(t *testing.T) {
	ctx, _ := clitest.New(t)
	err := (&TaskListCmd{}).Run(ctx)
	assert.ErrorContains(t, err, "taskdash init")
}

func TestTaskListCmd_GroupsByDue(t *testing.T) {
	ctx, out := clitest.New(t)
	clitest.ImportGraph(t, ctx, clitest.Tasks)

	require.NoError(t, (&TaskListCmd{}).Run(ctx))
	got := out.String()
	assert.Contains(t, got, "Overdue (1)")
	assert.Contains(t, got, "Upcoming (1)")
	assert.Contains(t, got, "No due date (2)")
	assert.Contains(t, got, "[ ] Write quarterly report")
	assert.Contains(t, got, "[x] Water plants")
	assert.Contains(t, got, "waiting for Sam")
	assert.Less(t, strings.Index(got, "Overdue"), strings.Index(got, "Upcoming"))
}

func TestTaskListCmd_ViewAndQuery(t *testing.T) {
	ctx, out := clitest.New(t)
	clitest.ImportGraph(t, ctx, clitest.Tasks)

	require.NoError(t, (&TaskListCmd{Selection: Selection{View: constants.PresetWaitingFor}, UIDs: true}).Run(ctx))
	assert.Contains(t, out.String(), "Call Sam")
	assert.Contains(t, out.String(), "(t-call)")
	assert.NotContains(t, out.String(), "quarterly")

	out.Reset()
	require.NoError(t, (&TaskListCmd{Selection: Selection{Query: "piano"}}).Run(ctx))
	assert.Contains(t, out.String(), "Learn piano")
	assert.NotContains(t, out.String(), "Call Sam")

	out.Reset()
	require.NoError(t, (&TaskListCmd{Selection: Selection{Query: "no such task"}}).Run(ctx))
	assert.Contains(t, out.String(), "No tasks match.")

	out.Reset()
	assert.Error(t, (&TaskListCmd{Selection: Selection{View: "qqqqq"}}).Run(ctx))
}

func TestTaskListCmd_RecurrenceGrouping(t *testing.T) {
	ctx, out := clitest.New(t)
	clitest.ImportGraph(t, ctx, clitest.Tasks)

	require.NoError(t, (&TaskListCmd{Selection: Selection{Grouping: "recurrence"}}).Run(ctx))
	assert.Contains(t, out.String(), "Recurring (1)")
	assert.Contains(t, out.String(), "One-off (3)")
}

func TestTaskStatsCmd(t *testing.T) {
	ctx, out := clitest.New(t)
	clitest.ImportGraph(t, ctx, clitest.Tasks)

	require.NoError(t, (&TaskStatsCmd{Plain: true}).Run(ctx))
	assert.Contains(t, out.String(), "Overdue")
	assert.Regexp(t, `Total\s+4`, out.String())

	out.Reset()
	require.NoError(t, (&TaskStatsCmd{Width: 40, Height: 8}).Run(ctx))
	assert.Regexp(t, `Total\s+4`, out.String())
}

func TestTaskEditCmd(t *testing.T) {
	ctx, out := clitest.New(t)
	clitest.ImportGraph(t, ctx, clitest.Tasks)

	low := "low"
	require.NoError(t, (&TaskEditCmd{UIDs: []string{"t-call", "missing"}, Priority: &low, Clear: []string{"waiting"}}).Run(ctx))
	assert.Contains(t, out.String(), "Updated 1 of 2 tasks")

	all, err := ctx.Graph.FetchTasks(context.Background())
	require.NoError(t, err)
	for _, task := range all {
		if task.UID == "t-call" {
			assert.Equal(t, "low", task.Metadata.Priority)
			assert.Empty(t, task.Metadata.WaitingFor)
		}
	}
}

func TestTaskEditCmd_RejectsEmptyPatch(t *testing.T) {
	ctx, _ := clitest.New(t)
	assert.ErrorContains(t, (&TaskEditCmd{UIDs: []string{"t-call"}}).Run(ctx), "nothing to change")
	assert.ErrorContains(t, (&TaskEditCmd{UIDs: []string{"t-call"}, Clear: []string{"colour"}}).Run(ctx), "unknown field")
}
