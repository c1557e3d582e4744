// Package clitest builds command contexts over throwaway stores for tests.
package clitest

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/julianstephens/taskdash/internal/cli"
	"github.com/julianstephens/taskdash/internal/graph"
	"github.com/julianstephens/taskdash/internal/i18n"
	"github.com/julianstephens/taskdash/internal/storage"
	"github.com/julianstephens/taskdash/internal/storage/sqlite"
)

// New returns a context over an initialized SQLite settings store, a session
// file and an uninitialized notes graph, all under a temp dir. Command output
// is captured in the returned buffer.
func New(t testing.TB) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	store := sqlite.NewStore(filepath.Join(dir, "taskdash.db"))
	require.NoError(t, store.Init())
	g := graph.NewStore(filepath.Join(dir, "graph.db"))
	t.Cleanup(func() {
		_ = store.Close()
		_ = g.Close()
	})

	out := &bytes.Buffer{}
	return &cli.Context{
		Store:     store,
		Session:   storage.NewSessionFile(filepath.Join(dir, "session.json")),
		Graph:     g,
		Catalog:   i18n.Empty(),
		Out:       out,
		ConfigDir: dir,
	}, out
}

// ImportGraph initializes the context's graph and imports a YAML document.
func ImportGraph(t testing.TB, ctx *cli.Context, doc string) graph.ImportResult {
	t.Helper()
	require.NoError(t, ctx.Graph.Init())
	res, err := ctx.Graph.Import(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	return res
}

// Tasks is a small graph with tasks in every due bucket relative to the
// current date.
const Tasks = `
pages:
  - title: Work
    blocks:
      - uid: t-report
        text: "{{[[TODO]]}} Write quarterly report"
        task:
          due: 2000-01-01
          priority: high
          gtd: next action
          project: Website
      - uid: t-call
        text: "{{[[TODO]]}} Call Sam"
        task:
          due: 2999-01-01
          waitingFor: Sam
          gtd: delegated
      - uid: note-1
        text: "meeting notes\nProject:: [[Garden]]"
  - title: Home
    blocks:
      - uid: t-water
        text: "{{[[DONE]]}} Water plants"
        task:
          completed: true
          completedAt: 2000-01-02T08:00:00Z
          repeat: every week
      - uid: t-someday
        text: "{{[[TODO]]}} Learn piano"
        task:
          gtd: someday
`
