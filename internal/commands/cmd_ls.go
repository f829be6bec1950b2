package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskroll/internal/core/styles"
	"github.com/colonyops/taskroll/internal/core/todo"
	"github.com/colonyops/taskroll/internal/engine"
	"github.com/colonyops/taskroll/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *engine.App

	// flags
	jsonOutput bool
	all        bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *engine.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List todos per document",
		UsageText: "taskroll ls [--json] [--all]",
		Description: `Scans the vault and lists the todos of every document that is not
excluded, without touching the aggregate document.

By default only the task types included in the aggregate are listed. Use --all
to list every task type.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines, one per todo",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "list every task type",
				Destination: &cmd.all,
			},
		},
		Action: cmd.run,
	})

	return app
}

// todoInfo is the JSON output format for taskroll ls --json.
type todoInfo struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Depth  int    `json:"depth"`
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	res, err := cmd.app.Scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan documents: %w", err)
	}

	include := cmd.app.Config.Include
	if cmd.all {
		include = todo.Include{NotStarted: true, InProgress: true, WontDo: true, Done: true}
	}

	out := c.Root().Writer
	found := 0

	for _, doc := range res.Documents {
		var todos []todo.Todo
		for _, t := range doc.Todos {
			if include.Has(t.Task) {
				todos = append(todos, t)
			}
		}
		if len(todos) == 0 {
			continue
		}
		found += len(todos)

		if cmd.jsonOutput {
			for _, t := range todos {
				info := todoInfo{
					Path:   doc.Ref.Path,
					Line:   t.Line + 1,
					Status: t.Task.String(),
					Text:   t.Text,
					Depth:  len(t.Indentation) / len(todo.IndentUnit),
				}
				if err := iojson.WriteLine(out, info); err != nil {
					return fmt.Errorf("encode todo: %w", err)
				}
			}
			continue
		}

		_, _ = fmt.Fprintln(out, styles.TextPrimaryBoldStyle.Render(doc.Ref.Path))
		for _, t := range todos {
			_, _ = fmt.Fprintf(out, "  %s%s %s %s\n",
				t.Indentation,
				markerStyle(t.Task).Render("["+t.Task.Marker()+"]"),
				t.Text,
				styles.TextMutedStyle.Render(fmt.Sprintf(":%d", t.Line+1)),
			)
		}
	}

	if found == 0 && !cmd.jsonOutput {
		fmt.Fprintf(os.Stderr, "No todos found\n")
	}

	return nil
}

func markerStyle(t todo.TaskType) lipgloss.Style {
	switch t {
	case todo.InProgress:
		return styles.TextWarningStyle
	case todo.WontDo:
		return styles.TextMutedStyle
	case todo.Done:
		return styles.TextSuccessStyle
	default:
		return styles.TextForegroundStyle
	}
}
