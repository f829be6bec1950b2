package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskroll/internal/commands"
	"github.com/colonyops/taskroll/internal/core/config"
	"github.com/colonyops/taskroll/internal/core/docstore"
	"github.com/colonyops/taskroll/internal/core/eventbus"
	"github.com/colonyops/taskroll/internal/core/history"
	"github.com/colonyops/taskroll/internal/core/logging"
	"github.com/colonyops/taskroll/internal/core/styles"
	"github.com/colonyops/taskroll/internal/data/db"
	"github.com/colonyops/taskroll/internal/data/stores"
	"github.com/colonyops/taskroll/internal/engine"
	"github.com/colonyops/taskroll/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		appRef    = &engine.App{}
		database  *db.DB
		busCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:        "taskroll",
		Usage:       commands.RootUsage,
		UsageText:   commands.RootUsageText,
		Description: commands.RootDescription,
		Version:     build(),
		Flags:       commands.GlobalFlags(flags),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			palette, ok := styles.GetPalette(flags.Theme)
			if !ok {
				return ctx, fmt.Errorf("unknown theme %q, available: %v", flags.Theme, styles.ThemeNames())
			}
			styles.SetTheme(palette)

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.Root != "" {
				cfg.Root = flags.Root
			}
			if applied, err := cfg.ApplyVaultOverlay(); err != nil {
				return ctx, fmt.Errorf("load vault config: %w", err)
			} else if applied {
				log.Debug().Str("file", config.VaultConfigFile).Msg("applied vault config")
			}
			flags.Config = cfg

			root, err := cfg.RootDir()
			if err != nil {
				return ctx, fmt.Errorf("resolve root: %w", err)
			}

			store := docstore.NewFSStore(root, docstore.FSOptions{
				Include: cfg.Documents.Include,
				Ignore:  cfg.Documents.Ignore,
			}, log.Logger)

			// History is optional; a nil interface disables recording.
			var hist history.Store
			if cfg.History.Enabled {
				database, err = stores.Open(cfg.HistoryFile(), db.DefaultOpenOptions(), log.Logger)
				if err != nil {
					return ctx, fmt.Errorf("open history database: %w", err)
				}
				hist = stores.NewRunStore(database)
			}

			bus := eventbus.New(64)
			eventbus.RegisterDebugLogger(bus, log.With().Str("component", "eventbus").Logger())

			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			go bus.Start(busCtx)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*appRef = *engine.NewApp(cfg, store, hist, bus, log.Logger)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if busCancel != nil {
				busCancel()
			}

			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.RegisterAll(app, flags, appRef)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
