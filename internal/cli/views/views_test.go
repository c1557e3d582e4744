package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/taskdash/internal/cli"
	"github.com/julianstephens/taskdash/internal/cli/clitest"
	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/models"
	"github.com/julianstephens/taskdash/internal/tui/prompt"
	viewstore "github.com/julianstephens/taskdash/internal/views"
)

func storedViews(t *testing.T, ctx *cli.Context) models.ViewsStore {
	t.Helper()
	raw, err := ctx.Store.GetSetting(constants.SettingViewsStore)
	require.NoError(t, err)
	return viewstore.Load(raw)
}

func TestResolve(t *testing.T) {
	list := []models.View{
		{ID: "a1", Name: "Next Actions"},
		{ID: "b2", Name: "Waiting For"},
		{ID: "c3", Name: "Garden chores"},
	}

	v, err := Resolve(list, "b2")
	require.NoError(t, err)
	assert.Equal(t, "Waiting For", v.Name)

	v, err = Resolve(list, "garden CHORES")
	require.NoError(t, err)
	assert.Equal(t, "c3", v.ID)

	v, err = Resolve(list, "wtng")
	require.NoError(t, err)
	assert.Equal(t, "b2", v.ID)

	_, err = Resolve(list, "zzz")
	assert.ErrorContains(t, err, "no view matches")
	_, err = Resolve(list, "  ")
	assert.Error(t, err)
}

func TestViewListCmd_ShowsPresets(t *testing.T) {
	ctx, out := clitest.New(t)

	require.NoError(t, (&ViewListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), constants.PresetNextActions)
	assert.Contains(t, out.String(), "Someday / Maybe")
	assert.NotContains(t, out.String(), "* ")
}

func TestViewSaveAndUse(t *testing.T) {
	ctx, out := clitest.New(t)

	require.NoError(t, (&ViewSaveCmd{Name: "Errands"}).Run(ctx))
	assert.Contains(t, out.String(), `Saved view "Errands"`)

	store := storedViews(t, ctx)
	active, ok := viewstore.Find(store, store.ActiveViewID)
	require.True(t, ok)
	assert.Equal(t, "Errands", active.Name)

	out.Reset()
	require.NoError(t, (&ViewUseCmd{View: "overdue"}).Run(ctx))
	assert.Contains(t, out.String(), `Using view "Overdue"`)
	assert.Equal(t, constants.PresetOverdue, storedViews(t, ctx).ActiveViewID)

	out.Reset()
	require.NoError(t, (&ViewListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "* "+constants.PresetOverdue)

	out.Reset()
	require.NoError(t, (&ViewClearCmd{}).Run(ctx))
	assert.Contains(t, out.String(), `Cleared view "Overdue"`)
	assert.Empty(t, storedViews(t, ctx).ActiveViewID)
}

func TestViewSaveCmd_BlankName(t *testing.T) {
	ctx, _ := clitest.New(t)
	assert.Error(t, (&ViewSaveCmd{Name: "   "}).Run(ctx))
}

func TestViewSaveCmd_PromptsForName(t *testing.T) {
	ctx, out := clitest.New(t)
	ctx.Prompter = prompt.Static{Text: "Inbox"}

	require.NoError(t, (&ViewSaveCmd{}).Run(ctx))
	assert.Contains(t, out.String(), `Saved view "Inbox"`)

	ctx.Prompter = prompt.Static{}
	out.Reset()
	require.NoError(t, (&ViewSaveCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Save cancelled.")
}

func TestViewUpdateCmd(t *testing.T) {
	ctx, out := clitest.New(t)
	assert.ErrorContains(t, (&ViewUpdateCmd{}).Run(ctx), "no view is active")

	require.NoError(t, (&ViewUseCmd{View: constants.PresetAllOpen}).Run(ctx))
	out.Reset()
	require.NoError(t, (&ViewUpdateCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "already up to date")
}

func TestViewRenameCmd(t *testing.T) {
	ctx, out := clitest.New(t)

	require.NoError(t, (&ViewRenameCmd{View: constants.PresetSomeday, Name: "Maybe later"}).Run(ctx))
	assert.Contains(t, out.String(), `Renamed "Someday / Maybe" to "Maybe later"`)

	v, ok := viewstore.Find(storedViews(t, ctx), constants.PresetSomeday)
	require.True(t, ok)
	assert.Equal(t, "Maybe later", v.Name)

	assert.Error(t, (&ViewRenameCmd{View: "nothing like it"}).Run(ctx))
}

func TestViewDeleteCmd(t *testing.T) {
	ctx, out := clitest.New(t)

	require.NoError(t, (&ViewDeleteCmd{View: constants.PresetOverdue}).Run(ctx))
	assert.Contains(t, out.String(), "Delete cancelled.")
	_, ok := viewstore.Find(storedViews(t, ctx), constants.PresetOverdue)
	assert.True(t, ok)

	out.Reset()
	require.NoError(t, (&ViewDeleteCmd{View: constants.PresetOverdue, Yes: true}).Run(ctx))
	assert.Contains(t, out.String(), `Deleted view "Overdue"`)
	assert.Contains(t, out.String(), "presets install --force")
	_, ok = viewstore.Find(storedViews(t, ctx), constants.PresetOverdue)
	assert.False(t, ok)

	out.Reset()
	require.NoError(t, (&PresetsInstallCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "already installed")

	out.Reset()
	require.NoError(t, (&PresetsInstallCmd{Force: true}).Run(ctx))
	assert.Contains(t, out.String(), "Installed 1 preset views: "+constants.PresetOverdue)
}

func TestPresetsInstallCmd_FirstRun(t *testing.T) {
	ctx, out := clitest.New(t)

	require.NoError(t, (&PresetsInstallCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Installed 7 preset views")
}
