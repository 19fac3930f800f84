package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/cli/routines"
	"github.com/julianstephens/routinely/internal/cli/system"
	"github.com/julianstephens/routinely/internal/cli/tasks"
	"github.com/julianstephens/routinely/internal/cli/users"
	"github.com/julianstephens/routinely/internal/cli/views"
	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/keyring"
	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/scheduler"
	"github.com/julianstephens/routinely/internal/stats"
	"github.com/julianstephens/routinely/internal/status"
	"github.com/julianstephens/routinely/internal/storage"
	"github.com/julianstephens/routinely/internal/storage/postgres"
	"github.com/julianstephens/routinely/internal/storage/sqlite"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"SQLite file path or PostgreSQL connection string. Connection strings must not embed a password; use the OS keyring or .pgpass." default:"${config_path}"`
	Postgres bool   `help:"Use the PostgreSQL connection string stored in the OS keyring."`
	Debug    bool   `help:"Enable debug logging to stderr."`
	UserFlag string `name:"user" help:"User ID to act as (optional in single-user installs)."`

	Init    system.InitCmd   `cmd:"" help:"Initialize routinely storage."`
	Serve   system.ServeCmd  `cmd:"" help:"Run the scheduler daemon."`
	Sweep   system.SweepCmd  `cmd:"" help:"Run the status sweep once and exit."`
	Doctor  system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Tui     system.TuiCmd    `cmd:"" help:"Launch the interactive day view." default:"1"`
	Day     views.DayCmd     `cmd:"" help:"Show the day's tasks and statuses."`
	Stats   views.StatsCmd   `cmd:"" help:"Show daily and weekly statistics."`
	Summary views.SummaryCmd `cmd:"" help:"Show the materialized daily summary."`
	User    struct {
		Add  users.UserAddCmd  `cmd:"" help:"Add a user."`
		List users.UserListCmd `cmd:"" help:"List users."`
	} `cmd:"" help:"Manage users."`
	Routine struct {
		Add     routines.RoutineAddCmd     `cmd:"" help:"Add a routine."`
		List    routines.RoutineListCmd    `cmd:"" help:"List routines."`
		Show    routines.RoutineShowCmd    `cmd:"" help:"Show a routine and its tasks."`
		Edit    routines.RoutineEditCmd    `cmd:"" help:"Edit a routine."`
		Enable  routines.RoutineEnableCmd  `cmd:"" help:"Enable a routine."`
		Disable routines.RoutineDisableCmd `cmd:"" help:"Disable a routine."`
		Delete  routines.RoutineDeleteCmd  `cmd:"" help:"Delete a routine and its tasks."`
	} `cmd:"" help:"Manage routines."`
	Task struct {
		Add    tasks.TaskAddCmd    `cmd:"" help:"Add a template task to a routine."`
		Edit   tasks.TaskEditCmd   `cmd:"" help:"Edit a template task."`
		List   tasks.TaskListCmd   `cmd:"" help:"List a routine's template tasks."`
		Delete tasks.TaskDeleteCmd `cmd:"" help:"Delete a template task."`
	} `cmd:"" help:"Manage template tasks."`
	Category struct {
		Add  tasks.CategoryAddCmd  `cmd:"" help:"Add a task category."`
		List tasks.CategoryListCmd `cmd:"" help:"List task categories."`
	} `cmd:"" help:"Manage task categories."`
	Status struct {
		Start    tasks.StatusStartCmd    `cmd:"" help:"Start a task."`
		Complete tasks.StatusCompleteCmd `cmd:"" help:"Complete a task."`
		Skip     tasks.StatusSkipCmd     `cmd:"" help:"Skip a task for today."`
		Reset    tasks.StatusResetCmd    `cmd:"" help:"Reset a task back to pending."`
		Notes    tasks.StatusNotesCmd    `cmd:"" help:"Set notes on a task's progress."`
	} `cmd:"" help:"Change task statuses."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (redacted)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage stored database credentials."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Personal routine tracker with a daily task-status scheduler"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)

	store, configDir, err := buildStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	statusSvc := status.NewService(store)
	appCtx := &cli.Context{
		Store:     store,
		Status:    statusSvc,
		Scheduler: scheduler.New(statusSvc),
		Stats:     stats.NewAggregator(store),
		UserID:    CLI.UserFlag,
	}

	// Init handles its own storage setup; keyring commands never touch the
	// database. Everything else needs a loaded store.
	command := ctx.Command()
	if !strings.HasPrefix(command, "init") && !strings.HasPrefix(command, "keyring") {
		if err := store.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildStore picks the storage backend from the flags: an explicit postgres
// connection string, the keyring-stored one, or the SQLite file path.
func buildStore() (storage.Provider, string, error) {
	connStr := CLI.Config
	if CLI.Postgres && !isPostgresConnStr(connStr) {
		stored, err := keyring.GetConnectionString()
		if err != nil {
			return nil, "", fmt.Errorf("no connection string in keyring, run 'routinely keyring set' first: %w", err)
		}
		connStr = stored
	}

	if isPostgresConnStr(connStr) {
		configDir, err := defaultConfigDir()
		if err != nil {
			return nil, "", err
		}
		return postgres.New(connStr), configDir, nil
	}

	path, err := expandHome(connStr)
	if err != nil {
		return nil, "", err
	}
	return sqlite.New(path), filepath.Dir(path), nil
}

func isPostgresConnStr(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://") || strings.Contains(s, "host=")
}

func defaultConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(configDir, constants.AppName), nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
