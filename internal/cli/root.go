package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/taskdash/internal/backup"
	"github.com/julianstephens/taskdash/internal/constants"
	"github.com/julianstephens/taskdash/internal/dashboard"
	"github.com/julianstephens/taskdash/internal/graph"
	"github.com/julianstephens/taskdash/internal/i18n"
	"github.com/julianstephens/taskdash/internal/keyring"
	"github.com/julianstephens/taskdash/internal/logger"
	"github.com/julianstephens/taskdash/internal/options"
	"github.com/julianstephens/taskdash/internal/storage"
	"github.com/julianstephens/taskdash/internal/storage/postgres"
	"github.com/julianstephens/taskdash/internal/storage/sqlite"
	"github.com/julianstephens/taskdash/internal/tasks"
	"github.com/julianstephens/taskdash/internal/views"
)

// KeyringConfig selects the postgres connection string stored in the OS keyring.
const KeyringConfig = "keyring"

type Context struct {
	Store     storage.Provider
	Session   storage.SessionStore
	Graph     *graph.Store
	Catalog   *i18n.Catalog
	Prompter  dashboard.Prompter
	Out       io.Writer
	// ConfigDir holds logs and backups.
	ConfigDir string
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store, c.ConfigDir)
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// DashboardOptions controls how OpenDashboard wires the controller.
type DashboardOptions struct {
	// Ephemeral keeps filter changes in memory. The saved session filters
	// are still read.
	Ephemeral bool
	// WithOptions attaches the picklist option services.
	WithOptions bool
	Notify      func(string)
}

// Dashboard is a started controller and the providers behind it.
type Dashboard struct {
	*dashboard.Controller
	Tasks   *tasks.Provider
	Options *options.Registry
	// Seeding is what Start did about preset views.
	Seeding views.InstallResult
}

// OpenDashboard builds a controller over the settings store and the notes
// graph and starts it. Callers Close it when done.
func (c *Context) OpenDashboard(opts DashboardOptions) *Dashboard {
	d := &Dashboard{}
	cfg := dashboard.Config{
		Settings: c.Store,
		Session:  c.Session,
		Prompter: c.Prompter,
		Catalog:  c.Catalog,
		Notify:   opts.Notify,
	}
	if opts.Ephemeral {
		cfg.Session = c.ephemeralSession()
	}
	if c.Graph != nil {
		d.Tasks = tasks.NewProvider(c.Graph)
		cfg.Tasks = d.Tasks
		cfg.Writer = c.Graph
		if opts.WithOptions {
			d.Options = options.NewRegistry(c.Graph)
			cfg.Options = d.Options
		}
	}
	d.Controller = dashboard.New(cfg)
	d.Seeding = d.Controller.Start()
	return d
}

func (c *Context) ephemeralSession() storage.SessionStore {
	mem := storage.NewMemoryStore()
	if c.Session == nil {
		return mem
	}
	if v, err := c.Session.GetSession(constants.SessionFilters); err == nil {
		_ = mem.SetSession(constants.SessionFilters, v)
	}
	return mem
}

// LoadGraph opens the notes graph for commands that read tasks.
func (c *Context) LoadGraph() error {
	if c.Graph == nil {
		return graph.ErrNotInitialized
	}
	return c.Graph.Load()
}

// OpenStore picks the settings backend for config: the keyring connection
// string, a postgres URL, a JSON file, ":memory:" or a SQLite database path.
func OpenStore(config string) (storage.Provider, error) {
	config = strings.TrimSpace(config)
	switch {
	case config == "":
		return sqlite.NewStore(ExpandPath(constants.DefaultConfigPath)), nil
	case config == KeyringConfig:
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, fmt.Errorf("no connection string in keyring, run 'taskdash keyring set' first")
			}
			return nil, err
		}
		return postgres.New(connStr), nil
	case postgres.IsConnString(config):
		if err := postgres.ValidateConnString(config); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; store it with 'taskdash keyring set' and use --config=keyring, or use .pgpass")
			}
			return nil, err
		}
		return postgres.New(config), nil
	case config == ":memory:":
		return storage.NewMemoryStore(), nil
	case strings.HasSuffix(config, ".json"):
		return storage.NewJSONStore(ExpandPath(config)), nil
	default:
		return sqlite.NewStore(ExpandPath(config)), nil
	}
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) || path == "~" {
		home, _ := os.UserHomeDir()
		if home != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// ConfigDir is the directory holding the settings database, or the default
// config directory for remote and in-memory stores.
func ConfigDir(config string) string {
	if config == "" || config == KeyringConfig || config == ":memory:" || postgres.IsConnString(config) {
		return filepath.Dir(ExpandPath(constants.DefaultConfigPath))
	}
	return filepath.Dir(ExpandPath(config))
}
