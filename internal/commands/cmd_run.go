package commands

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskroll/internal/core/history"
	"github.com/colonyops/taskroll/internal/engine"
)

type RunCmd struct {
	flags *Flags
	app   *engine.App

	// Command-specific flags
	sync bool
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags, app *engine.App) *RunCmd {
	return &RunCmd{flags: flags, app: app}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Aggregate todos into the aggregate document once",
		UsageText: "taskroll run [--sync]",
		Description: `Scans every document in the vault and rewrites the aggregate document
with the open todos, grouped by document and ordered by creation time.

Use --sync to first copy status edits made in the aggregate document back to
the source documents. Without it, such edits are overwritten.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "sync",
				Aliases:     []string{"s"},
				Usage:       "sync status edits back to sources before aggregating",
				Destination: &cmd.sync,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, _ *cli.Command) error {
	out, err := cmd.app.Runner.RunOnce(ctx, history.TriggerManual, cmd.sync)
	if err != nil {
		return err
	}

	if out.Sync != nil {
		printSync(os.Stderr, *out.Sync)
	}
	printAggregate(os.Stderr, cmd.app.Config.AggregateFilename, out.Aggregate)
	return nil
}
