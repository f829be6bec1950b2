package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskroll/internal/core/eventbus"
	"github.com/colonyops/taskroll/internal/engine"
	"github.com/colonyops/taskroll/internal/profiler"
)

type WatchCmd struct {
	flags *Flags
	app   *engine.App

	quiet        bool
	profilerPort int
}

// NewWatchCmd creates a new watch command
func NewWatchCmd(flags *Flags, app *engine.App) *WatchCmd {
	return &WatchCmd{flags: flags, app: app}
}

// Register adds the watch command to the application
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Keep the aggregate document up to date as documents change",
		UsageText: "taskroll watch [--quiet] [--profiler-port PORT]",
		Description: `Syncs and aggregates once, then watches the vault and re-aggregates after
every burst of changes. Editing the aggregate document syncs the edits back
to the sources first. Runs until interrupted.

With --profiler-port, pprof endpoints and a JSON run summary at /debug/status
are served on localhost.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "quiet",
				Aliases:     []string{"q"},
				Usage:       "do not print a line per run",
				Destination: &cmd.quiet,
			},
			&cli.IntFlag{
				Name:        "profiler-port",
				Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
				Sources:     cli.EnvVars("TASKROLL_PROFILER_PORT"),
				Destination: &cmd.profilerPort,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *WatchCmd) run(ctx context.Context, _ *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	status := newWatchStatus(time.Now())
	cmd.app.Bus.SubscribeRunCompleted(func(p eventbus.RunCompletedPayload) {
		status.observe(p)
		if !cmd.quiet {
			_, _ = fmt.Fprintln(os.Stderr, formatRun(p.Run))
		}
	})

	if cmd.profilerPort > 0 {
		srv := profiler.New(cmd.profilerPort, status, log.Logger)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("profiler shutdown failed")
			}
		}()
	}

	return cmd.app.Watch(ctx)
}
