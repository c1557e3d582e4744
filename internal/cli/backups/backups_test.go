package backups

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/taskdash/internal/cli/clitest"
	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/tui/prompt"
)

func TestBackupList_Empty(t *testing.T) {
	ctx, out := clitest.New(t)

	require.NoError(t, (&BackupListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No backups found.")
}

func TestBackupCreateListRestore(t *testing.T) {
	ctx, out := clitest.New(t)
	require.NoError(t, ctx.Store.SetSetting(constants.SettingExclusionsEnabled, "true"))

	require.NoError(t, (&BackupCreateCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Backup created: taskdash-")

	out.Reset()
	require.NoError(t, (&BackupListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "1 total")

	matches, err := filepath.Glob(filepath.Join(ctx.ConfigDir, "backups", "taskdash-*.yaml"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	require.NoError(t, ctx.Store.SetSetting(constants.SettingExclusionsEnabled, "false"))

	out.Reset()
	require.NoError(t, (&BackupRestoreCmd{BackupFile: filepath.Base(matches[0])}).Run(ctx))
	assert.Contains(t, out.String(), "Restore cancelled.")
	v, err := ctx.Store.GetSetting(constants.SettingExclusionsEnabled)
	require.NoError(t, err)
	assert.Equal(t, "false", v)

	ctx.Prompter = prompt.Static{Yes: true}
	out.Reset()
	require.NoError(t, (&BackupRestoreCmd{BackupFile: matches[0]}).Run(ctx))
	assert.Contains(t, out.String(), "Settings restored successfully!")
	v, err = ctx.Store.GetSetting(constants.SettingExclusionsEnabled)
	require.NoError(t, err)
	assert.Equal(t, "true", v)
}

func TestBackupRestore_NotFound(t *testing.T) {
	ctx, _ := clitest.New(t)
	err := (&BackupRestoreCmd{BackupFile: "taskdash-19990101-0000.yaml", Yes: true}).Run(ctx)
	assert.ErrorContains(t, err, "backup file not found")
}
