package commands

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskroll/internal/core/styles"
	"github.com/colonyops/taskroll/internal/engine"
)

const (
	RootUsage       = "Roll up the todos scattered across a Markdown vault"
	RootUsageText   = "taskroll [global options] command [command options]"
	RootDescription = `Taskroll scans a folder of Markdown notes for checkbox todos and collects
the open ones into a single aggregate document, grouped by note and linked
back to it.

Ticking a todo in the aggregate document and running 'taskroll sync' (or
keeping 'taskroll watch' running) copies the new status back to its note.`
)

// GlobalFlags returns the flags shared by every command, bound to flags.
func GlobalFlags(flags *Flags) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error, fatal, panic)",
			Sources:     cli.EnvVars("TASKROLL_LOG_LEVEL"),
			Value:       "info",
			Destination: &flags.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "path to log file (logs go to stderr when unset)",
			Sources:     cli.EnvVars("TASKROLL_LOG_FILE"),
			Destination: &flags.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to config file",
			Sources:     cli.EnvVars("TASKROLL_CONFIG"),
			Value:       DefaultConfigPath(),
			Destination: &flags.ConfigPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "path to data directory",
			Sources:     cli.EnvVars("TASKROLL_DATA_DIR"),
			Value:       DefaultDataDir(),
			Destination: &flags.DataDir,
		},
		&cli.StringFlag{
			Name:        "root",
			Aliases:     []string{"r"},
			Usage:       "vault root, overrides the configured root",
			Sources:     cli.EnvVars("TASKROLL_ROOT"),
			Destination: &flags.Root,
		},
		&cli.StringFlag{
			Name:        "theme",
			Usage:       fmt.Sprintf("color theme (%v)", styles.ThemeNames()),
			Sources:     cli.EnvVars("TASKROLL_THEME"),
			Value:       styles.DefaultTheme,
			Destination: &flags.Theme,
		},
	}
}

// RegisterAll adds every subcommand to root.
func RegisterAll(root *cli.Command, flags *Flags, app *engine.App) *cli.Command {
	root = NewRunCmd(flags, app).Register(root)
	root = NewSyncCmd(flags, app).Register(root)
	root = NewWatchCmd(flags, app).Register(root)
	root = NewLsCmd(flags, app).Register(root)
	root = NewShowCmd(flags, app).Register(root)
	root = NewHistoryCmd(flags, app).Register(root)
	root = NewDoctorCmd(flags, app).Register(root)
	root = NewConfigValidateCmd(flags).Register(root)
	root = NewInitCmd(flags).Register(root)
	return root
}
