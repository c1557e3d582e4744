package graphs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/taskdash/internal/cli/clitest"
	"github.com/julianstephens/taskdash/internal/options"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.yaml")
	require.NoError(t, os.WriteFile(path, []byte(clitest.Tasks), 0600))
	return path
}

func TestGraphImportCmd_InitializesGraph(t *testing.T) {
	ctx, out := clitest.New(t)

	require.NoError(t, (&GraphImportCmd{File: writeFixture(t)}).Run(ctx))
	assert.Contains(t, out.String(), "Imported 2 pages, 5 blocks, 4 tasks")

	_, err := os.Stat(ctx.Graph.Path())
	assert.NoError(t, err)
}

func TestGraphImportCmd_BadFile(t *testing.T) {
	ctx, _ := clitest.New(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pages: [{blocks: []}]"), 0600))

	assert.ErrorContains(t, (&GraphImportCmd{File: path}).Run(ctx), "import failed")
}

func TestGraphOptionsCmd(t *testing.T) {
	ctx, out := clitest.New(t)
	clitest.ImportGraph(t, ctx, clitest.Tasks)

	require.NoError(t, (&GraphOptionsCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Garden")
	assert.Contains(t, out.String(), "Website")
	assert.Contains(t, out.String(), "Sam")
	assert.Regexp(t, `context\s+\(none\)`, out.String())

	out.Reset()
	require.NoError(t, (&GraphOptionsCmd{Kind: string(options.KindWaiting)}).Run(ctx))
	assert.Contains(t, out.String(), "Sam")
	assert.NotContains(t, out.String(), "Website")

	assert.ErrorContains(t, (&GraphOptionsCmd{Kind: "colour"}).Run(ctx), "unknown picklist")
}

func TestGraphOptionsCmd_RequiresGraph(t *testing.T) {
	ctx, _ := clitest.New(t)
	assert.ErrorContains(t, (&GraphOptionsCmd{}).Run(ctx), "taskdash init")
}
