package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskroll/internal/engine"
)

// RunIDCompleter returns a ShellCompleteFunc that suggests recent run IDs as
// positional completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func RunIDCompleter(app *engine.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		// Delegate to default flag completion when typing a flag
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if app.History == nil {
			return
		}

		runs, err := app.History.List(ctx, 20)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, r := range runs {
			_, _ = fmt.Fprintln(w, r.ID)
		}
	}
}
