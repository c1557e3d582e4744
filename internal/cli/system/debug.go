package system

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/taskdash/internal/cli"
	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/filters"
	"github.com/julianstephens/taskdash/internal/logger"
	"github.com/julianstephens/taskdash/internal/storage"
	"github.com/julianstephens/taskdash/internal/views"
)

type DebugCmd struct {
	Paths       *DebugPathsCmd       `cmd:"" help:"Show storage paths."`
	DumpViews   *DebugDumpViewsCmd   `cmd:"" help:"Dump the saved views document as JSON."`
	DumpSession *DebugDumpSessionCmd `cmd:"" help:"Dump the session filters as JSON."`
	DumpTask    *DebugDumpTaskCmd    `cmd:"" help:"Dump a task as JSON."`
}

func printJSON(ctx *cli.Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}

type DebugPathsCmd struct{}

func (cmd *DebugPathsCmd) Run(ctx *cli.Context) error {
	output := map[string]string{
		"settings": ctx.Store.GetConfigPath(),
		"config":   ctx.ConfigDir,
		"log":      logger.LogPath(ctx.ConfigDir),
	}
	if ctx.Graph != nil {
		output["graph"] = ctx.Graph.Path()
	}
	return printJSON(ctx, output)
}

type DebugDumpViewsCmd struct {
	Raw bool `help:"Print the document as stored, without normalizing it."`
}

func (cmd *DebugDumpViewsCmd) Run(ctx *cli.Context) error {
	raw, err := ctx.Store.GetSetting(constants.SettingViewsStore)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no saved views found")
	}
	if err != nil {
		return fmt.Errorf("failed to get saved views: %w", err)
	}
	if cmd.Raw {
		ctx.Println(raw)
		return nil
	}
	return printJSON(ctx, views.Load(raw))
}

type DebugDumpSessionCmd struct{}

func (cmd *DebugDumpSessionCmd) Run(ctx *cli.Context) error {
	if ctx.Session == nil {
		return fmt.Errorf("no session store configured")
	}
	raw, err := ctx.Session.GetSession(constants.SessionFilters)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no session filters saved")
	}
	if err != nil {
		return fmt.Errorf("failed to get session filters: %w", err)
	}
	return printJSON(ctx, filters.DecodeSession([]byte(raw)))
}

type DebugDumpTaskCmd struct {
	UID string `arg:"" help:"UID of the task to dump."`
}

func (cmd *DebugDumpTaskCmd) Run(ctx *cli.Context) error {
	if err := ctx.LoadGraph(); err != nil {
		return err
	}
	list, err := ctx.Graph.FetchTasks(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get tasks: %w", err)
	}
	for _, t := range list {
		if t.UID == cmd.UID {
			return printJSON(ctx, t)
		}
	}
	return fmt.Errorf("task not found: %s", cmd.UID)
}
