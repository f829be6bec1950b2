package commands

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskroll/internal/core/history"
	"github.com/colonyops/taskroll/internal/engine"
)

type SyncCmd struct {
	flags *Flags
	app   *engine.App
}

// NewSyncCmd creates a new sync command
func NewSyncCmd(flags *Flags, app *engine.App) *SyncCmd {
	return &SyncCmd{flags: flags, app: app}
}

// Register adds the sync command to the application
func (cmd *SyncCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "sync",
		Usage:     "Copy status edits from the aggregate document back to sources",
		UsageText: "taskroll sync",
		Description: `Reads the aggregate document and patches the marker of every todo whose
status no longer matches the included task types in its source document.
The aggregate document itself is not rewritten.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *SyncCmd) run(ctx context.Context, _ *cli.Command) error {
	res, err := cmd.app.Runner.Sync(ctx, history.TriggerManual)
	if err != nil {
		return err
	}

	printSync(os.Stderr, res)
	return nil
}
