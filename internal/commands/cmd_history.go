package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskroll/internal/core/history"
	"github.com/colonyops/taskroll/internal/engine"
	"github.com/colonyops/taskroll/pkg/iojson"
)

type HistoryCmd struct {
	flags *Flags
	app   *engine.App

	limit      int
	jsonOutput bool
	yes        bool
}

// NewHistoryCmd creates a new history command
func NewHistoryCmd(flags *Flags, app *engine.App) *HistoryCmd {
	return &HistoryCmd{flags: flags, app: app}
}

// Register adds the history command to the application
func (cmd *HistoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "history",
		Usage:     "Show recent runs",
		UsageText: "taskroll history [--limit N] [--json] [run-id]",
		Description: `Lists recorded sync and aggregation runs, newest first.

Pass a run ID to show a single run.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "maximum number of runs to show (0 for all)",
				Value:       20,
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		ShellComplete: RunIDCompleter(cmd.app),
		Action:        cmd.run,
		Commands: []*cli.Command{
			{
				Name:        "reset",
				Usage:       "Delete every recorded run",
				UsageText:   "taskroll history reset [--yes]",
				Description: "Rebuilds the history database from its migrations, removing all runs.",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "yes",
						Aliases:     []string{"y"},
						Usage:       "skip the confirmation prompt",
						Destination: &cmd.yes,
					},
				},
				Action: cmd.reset,
			},
		},
	})

	return app
}

func (cmd *HistoryCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.app.History == nil {
		return fmt.Errorf("run history is disabled, set history.enabled in the config")
	}

	if c.Args().Present() {
		return cmd.show(ctx, c, c.Args().First())
	}

	runs, err := cmd.app.History.List(ctx, cmd.limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, r := range runs {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode run: %w", err)
			}
		}
		return nil
	}

	if len(runs) == 0 {
		fmt.Fprintf(os.Stderr, "No runs recorded\n")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tTRIGGER\tSTATUS\tDOCS\tTODOS\tPATCHED\tTIME")

	for _, r := range runs {
		status := "ok"
		if r.Failed() {
			status = "failed"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID[:min(8, len(r.ID))],
			r.Kind,
			r.Trigger,
			status,
			r.Documents,
			r.Todos,
			r.Patched,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
		)
	}

	return w.Flush()
}

func (cmd *HistoryCmd) reset(ctx context.Context, c *cli.Command) error {
	if cmd.app.History == nil {
		return fmt.Errorf("run history is disabled, set history.enabled in the config")
	}

	if !cmd.yes {
		ok, err := confirm("Delete every recorded run?", cmd.app.Config.HistoryFile())
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	if err := cmd.app.History.Reset(ctx); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "History cleared")
	return nil
}

func (cmd *HistoryCmd) show(ctx context.Context, c *cli.Command, id string) error {
	run, err := cmd.app.History.Get(ctx, id)
	if errors.Is(err, history.ErrNotFound) {
		return fmt.Errorf("run %q not found in history", id)
	}
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, run)
	}

	_, _ = fmt.Fprintln(out, formatRun(run))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "id\t%s\n", run.ID)
	_, _ = fmt.Fprintf(w, "trigger\t%s\n", run.Trigger)
	_, _ = fmt.Fprintf(w, "started\t%s\n", run.StartedAt.Local().Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "duration\t%s\n", run.Duration)
	_, _ = fmt.Fprintf(w, "documents\t%d\n", run.Documents)
	_, _ = fmt.Fprintf(w, "todos\t%d\n", run.Todos)
	_, _ = fmt.Fprintf(w, "patched\t%d\n", run.Patched)
	if run.Failed() {
		_, _ = fmt.Fprintf(w, "error\t%s\n", run.Error)
	}
	return w.Flush()
}
