package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/taskdash/internal/cli"
	"github.com/julianstephens/taskdash/internal/cli/backups"
	"github.com/julianstephens/taskdash/internal/cli/graphs"
	"github.com/julianstephens/taskdash/internal/cli/review"
	"github.com/julianstephens/taskdash/internal/cli/settings"
	"github.com/julianstephens/taskdash/internal/cli/system"
	"github.com/julianstephens/taskdash/internal/cli/tasks"
	"github.com/julianstephens/taskdash/internal/cli/views"
	"github.com/julianstephens/taskdash/internal/constants"
	apperrors "github.com/julianstephens/taskdash/internal/errors"
	"github.com/julianstephens/taskdash/internal/graph"
	"github.com/julianstephens/taskdash/internal/i18n"
	"github.com/julianstephens/taskdash/internal/logger"
	"github.com/julianstephens/taskdash/internal/storage"
	"github.com/julianstephens/taskdash/internal/tui/prompt"
)

type CLI struct {
	Version    kong.VersionFlag
	Config     string `help:"Settings database path, a .json file, ':memory:', 'keyring', or a PostgreSQL connection string without credentials." env:"TASKDASH_CONFIG"`
	Graph      string `help:"Notes graph database path." default:"${graph_path}" env:"TASKDASH_GRAPH"`
	Session    string `help:"Session file holding the live filters." default:"${session_path}" env:"TASKDASH_SESSION"`
	Labels     string `help:"YAML or JSON file overriding UI labels." env:"TASKDASH_LABELS"`
	Debug      bool   `help:"Log debug output to stderr."`
	LogLevel   string `help:"Log file level: debug, info, warn or error." env:"TASKDASH_LOG_LEVEL"`
	Accessible bool   `help:"Use plain line prompts instead of forms." env:"ACCESSIBLE"`

	Init     system.InitCmd     `cmd:"" help:"Initialize taskdash storage and install preset views."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Apply pending schema migrations."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd `cmd:"" help:"Validate saved views and tasks."`
	DebugCmd system.DebugCmd    `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Keyring  system.KeyringCmd  `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Task     struct {
		List  tasks.TaskListCmd  `cmd:"" help:"List tasks grouped like the dashboard." default:"1"`
		Stats tasks.TaskStatsCmd `cmd:"" help:"Chart task counts per group."`
		Edit  tasks.TaskEditCmd  `cmd:"" help:"Set or clear metadata on tasks."`
	} `cmd:"" help:"Read and edit tasks."`
	View struct {
		List   views.ViewListCmd   `cmd:"" help:"List saved views." default:"1"`
		Save   views.ViewSaveCmd   `cmd:"" help:"Save the current filters as a new view."`
		Update views.ViewUpdateCmd `cmd:"" help:"Overwrite the active view with the current filters."`
		Rename views.ViewRenameCmd `cmd:"" help:"Rename a view."`
		Delete views.ViewDeleteCmd `cmd:"" help:"Delete a view."`
		Use    views.ViewUseCmd    `cmd:"" help:"Activate a view."`
		Clear  views.ViewClearCmd  `cmd:"" help:"Deselect the active view."`
	} `cmd:"" help:"Manage saved views."`
	Presets struct {
		Install views.PresetsInstallCmd `cmd:"" help:"Install the built-in preset views." default:"1"`
	} `cmd:"" help:"Manage preset views."`
	Review struct {
		List    review.ReviewListCmd    `cmd:"" help:"Show the review sequence." default:"1"`
		Enable  review.ReviewEnableCmd  `cmd:"" help:"Include a view in review mode."`
		Disable review.ReviewDisableCmd `cmd:"" help:"Skip a view in review mode."`
	} `cmd:"" help:"Configure review mode."`
	Exclusions settings.ExclusionsCmd `cmd:"" help:"Show or change pages excluded from picklists."`
	GraphCmd   struct {
		Import  graphs.GraphImportCmd  `cmd:"" help:"Import pages and tasks from a YAML export."`
		Options graphs.GraphOptionsCmd `cmd:"" help:"Show picklist values found in the graph."`
	} `cmd:"" name:"graph" help:"Manage the notes graph."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage settings backups."`
}

// noStoreCommands manage storage themselves or never touch it.
var noStoreCommands = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
	"keyring": true,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var app CLI
	parser, err := kong.New(&app,
		kong.Name(constants.AppName),
		kong.Description("Task dashboard over a notes graph: saved views, grouping and review"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":      constants.Version,
			"graph_path":   constants.DefaultGraphPath,
			"session_path": constants.DefaultSessionPath,
		},
	)
	if err != nil {
		fmt.Fprintln(stderr, apperrors.Format(err))
		return 1
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintln(stderr, apperrors.Format(err))
		return 1
	}

	configDir := cli.ConfigDir(app.Config)
	if err := logger.Init(logger.Config{Debug: app.Debug, Level: app.LogLevel, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	store, err := cli.OpenStore(app.Config)
	if err != nil {
		return fail(stderr, err)
	}
	defer store.Close()

	command := strings.Fields(ctx.Command())[0]
	if !noStoreCommands[command] {
		if err := store.Load(); err != nil {
			return fail(stderr, err)
		}
	}

	catalog := i18n.Empty()
	if app.Labels != "" {
		catalog, err = i18n.Load(cli.ExpandPath(app.Labels))
		if err != nil {
			return fail(stderr, err)
		}
	}

	g := graph.NewStore(cli.ExpandPath(app.Graph))
	defer g.Close()

	appCtx := &cli.Context{
		Store:     store,
		Session:   storage.NewSessionFile(cli.ExpandPath(app.Session)),
		Graph:     g,
		Catalog:   catalog,
		Prompter:  &prompt.Huh{Accessible: app.Accessible},
		Out:       stdout,
		ConfigDir: configDir,
	}

	if err := ctx.Run(appCtx); err != nil {
		logger.Error("Command execution failed", "command", command, "error", err)
		return fail(stderr, err)
	}
	return 0
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintln(stderr, apperrors.Format(err))
	return 1
}
