package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/taskdash/internal/cli"
	apperrors "github.com/julianstephens/taskdash/internal/errors"
	"github.com/julianstephens/taskdash/internal/storage/sqlite"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if store, ok := ctx.Store.(*sqlite.Store); ok {
		// Init would create a fresh database; migrate only upgrades one
		if _, err := os.Stat(store.GetConfigPath()); errors.Is(err, os.ErrNotExist) {
			return apperrors.WithHint(fmt.Errorf("no settings database at %s", store.GetConfigPath()), apperrors.InitHint)
		}
	}
	if err := ctx.Store.Init(); err != nil {
		return fmt.Errorf("settings migration failed: %w", err)
	}
	ctx.Println("✓ Settings schema is up to date")

	if ctx.Graph == nil {
		return nil
	}
	if _, err := os.Stat(ctx.Graph.Path()); errors.Is(err, os.ErrNotExist) {
		ctx.Println("⊘ Notes graph not initialized, skipped")
		return nil
	}
	if err := ctx.Graph.Init(); err != nil {
		return fmt.Errorf("graph migration failed: %w", err)
	}
	ctx.Println("✓ Graph schema is up to date")
	return nil
}
