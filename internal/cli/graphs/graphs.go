package graphs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/julianstephens/taskdash/internal/cli"
	apperrors "github.com/julianstephens/taskdash/internal/errors"
	"github.com/julianstephens/taskdash/internal/graph"
	"github.com/julianstephens/taskdash/internal/logger"
	"github.com/julianstephens/taskdash/internal/options"
)

type GraphImportCmd struct {
	File string `arg:"" type:"existingfile" help:"YAML export of pages and blocks to import."`
}

func (c *GraphImportCmd) Run(ctx *cli.Context) error {
	if ctx.Graph == nil {
		return graph.ErrNotInitialized
	}
	if err := ctx.LoadGraph(); errors.Is(err, graph.ErrNotInitialized) {
		if err := ctx.Graph.Init(); err != nil {
			return fmt.Errorf("failed to initialize graph: %w", err)
		}
	} else if err != nil {
		return err
	}

	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.File, err)
	}
	defer f.Close()

	res, err := ctx.Graph.Import(context.Background(), f)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	logger.Info("Imported graph", "file", c.File, "pages", res.Pages, "blocks", res.Blocks, "tasks", res.Tasks)
	ctx.Printf("✓ Imported %d pages, %d blocks, %d tasks into %s\n", res.Pages, res.Blocks, res.Tasks, ctx.Graph.Path())
	return nil
}

type GraphOptionsCmd struct {
	Kind string `arg:"" optional:"" help:"Only show one picklist: project, waiting or context."`
}

func (c *GraphOptionsCmd) Run(ctx *cli.Context) error {
	if c.Kind != "" && !slices.Contains([]options.Kind{options.KindProject, options.KindWaiting, options.KindContext}, options.Kind(c.Kind)) {
		return fmt.Errorf("unknown picklist %q", c.Kind)
	}
	if err := ctx.LoadGraph(); err != nil {
		return apperrors.WithHint(fmt.Errorf("failed to open notes graph: %w", err), apperrors.GraphHint)
	}
	d := ctx.OpenDashboard(cli.DashboardOptions{Ephemeral: true, WithOptions: true})
	defer d.Close()

	if err := d.Options.RefreshAll(context.Background(), true); err != nil {
		return fmt.Errorf("failed to refresh picklists: %w", err)
	}

	for _, kind := range d.Options.Kinds() {
		if c.Kind != "" && string(kind) != c.Kind {
			continue
		}
		values := d.OptionsFor(kind)
		if len(values) == 0 {
			ctx.Printf("%-8s (none)\n", kind)
			continue
		}
		ctx.Printf("%-8s %s\n", kind, strings.Join(values, ", "))
	}
	if policy := d.Exclusions(); policy.Enabled && len(policy.Pages) > 0 {
		ctx.Printf("\nExcluding values found on: %s\n", strings.Join(policy.Pages, ", "))
	}
	return nil
}
