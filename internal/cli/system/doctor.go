package system

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/julianstephens/taskdash/internal/backup"
	"github.com/julianstephens/taskdash/internal/cli"
	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/keyring"
	"github.com/julianstephens/taskdash/internal/migration"
	"github.com/julianstephens/taskdash/internal/storage"
	"github.com/julianstephens/taskdash/internal/storage/sqlite"
	"github.com/julianstephens/taskdash/internal/validation"
	"github.com/julianstephens/taskdash/internal/views"
	"github.com/julianstephens/taskdash/migrations"
)

type DoctorCmd struct{}

type check struct {
	name    string
	run     func(ctx *cli.Context) error
	warning bool
	// needs is the name of a check that must pass first.
	needs string
}

var checks = []check{
	{name: "Settings store reachable", run: checkStoreReachable},
	{name: "Settings schema version", run: checkSchemaVersion, needs: "Settings store reachable"},
	{name: "Saved views document", run: checkViewsDocument, needs: "Settings store reachable"},
	{name: "Review views present", run: checkReviewViews, needs: "Settings store reachable"},
	{name: "Notes graph reachable", run: checkGraphReachable},
	{name: "Task data", run: checkTasks, needs: "Notes graph reachable"},
	{name: "OS keyring", run: checkKeyring, warning: true},
	{name: "Backups present", run: checkBackupsPresent, warning: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	passed := make(map[string]bool, len(checks))
	for _, c := range checks {
		if c.needs != "" && !passed[c.needs] {
			ctx.Printf("⊘ %s: SKIPPED (%s failed)\n", c.name, c.needs)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
			passed[c.name] = true
		case c.warning:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if _, err := ctx.Store.GetSetting(constants.SettingViewsStore); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to query settings: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		// other backends validate their schema on Load
		return nil
	}
	db := store.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return err
	}
	runner := migration.NewRunner(db, subFS)
	current, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	if current < latest {
		return fmt.Errorf("schema version %d is behind %d, run 'taskdash init'", current, latest)
	}
	return runner.ValidateVersion()
}

func checkViewsDocument(ctx *cli.Context) error {
	raw, err := ctx.Store.GetSetting(constants.SettingViewsStore)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no saved views yet, run 'taskdash init'")
	}
	if err != nil {
		return err
	}
	result := validation.New().ValidateViewsDocument(raw)
	if result.HasConflicts() {
		return fmt.Errorf("%d problems, run 'taskdash validate --fix'", len(result.Conflicts))
	}
	return nil
}

func checkReviewViews(ctx *cli.Context) error {
	raw, err := ctx.Store.GetSetting(constants.SettingViewsStore)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	enabled := map[string]bool{}
	if data, err := ctx.Store.GetSetting(constants.SettingReviewEnabled); err == nil {
		// unreadable enablement counts as all enabled, as in the dashboard
		_ = json.Unmarshal([]byte(data), &enabled)
	}
	result := validation.New().ValidateReview(views.Load(raw), views.ReviewPresetIDs(), enabled)
	if result.HasConflicts() {
		return fmt.Errorf("%d enabled review views are missing, run 'taskdash presets install --force'", len(result.Conflicts))
	}
	return nil
}

func checkGraphReachable(ctx *cli.Context) error {
	if err := ctx.LoadGraph(); err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}
	return nil
}

func checkTasks(ctx *cli.Context) error {
	list, err := ctx.Graph.FetchTasks(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read tasks: %w", err)
	}
	result := validation.New().ValidateTasks(list)
	if result.HasConflicts() {
		return fmt.Errorf("%d problems, run 'taskdash validate'", len(result.Conflicts))
	}
	return nil
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	backups, err := backup.NewManager(ctx.Store, ctx.ConfigDir).ListBackups()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, run 'taskdash backup create'")
	}
	return nil
}
