package system

import (
	"fmt"
	"strings"

	"github.com/julianstephens/taskdash/internal/cli"
)

type InitCmd struct {
	Force bool `help:"Reinstall preset views that are missing, even after the first run."`
	Graph bool `help:"Also create the notes graph." default:"true" negatable:""`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized taskdash settings at: %s\n", ctx.Store.GetConfigPath())

	if c.Graph && ctx.Graph != nil {
		if err := ctx.Graph.Init(); err != nil {
			return fmt.Errorf("failed to initialize graph: %w", err)
		}
		ctx.Printf("Initialized notes graph at: %s\n", ctx.Graph.Path())
	}

	d := ctx.OpenDashboard(cli.DashboardOptions{Ephemeral: true})
	defer d.Close()
	res := d.Seeding
	if c.Force {
		res = d.InstallPresets(true)
	}

	if len(res.InstalledIDs) > 0 {
		ctx.Printf("Installed %d preset views\n", len(res.InstalledIDs))
	} else {
		ctx.Printf("Preset views already installed (%d views)\n", len(d.Views()))
	}
	if len(res.SkippedNameCollisions) > 0 {
		ctx.Printf("Skipped presets whose names are taken: %s\n", strings.Join(res.SkippedNameCollisions, ", "))
	}
	return nil
}
