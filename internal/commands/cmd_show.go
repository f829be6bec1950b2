package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/taskroll/internal/core/docstore"
	"github.com/colonyops/taskroll/internal/core/styles"
	"github.com/colonyops/taskroll/internal/engine"
)

type ShowCmd struct {
	flags *Flags
	app   *engine.App

	raw bool
}

// NewShowCmd creates a new show command
func NewShowCmd(flags *Flags, app *engine.App) *ShowCmd {
	return &ShowCmd{flags: flags, app: app}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Print the aggregate document",
		UsageText: "taskroll show [--raw]",
		Description: `Prints the aggregate document. On a terminal the Markdown is rendered;
use --raw, or pipe the output, to print it unchanged.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print the document without rendering",
				Destination: &cmd.raw,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	filename := cmd.app.Config.AggregateFilename

	ref, err := cmd.app.Store.Resolve(ctx, filename)
	if errors.Is(err, docstore.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "%s does not exist yet, run 'taskroll run' to create it\n", filename)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve %s: %w", filename, err)
	}
	if ref.Folder {
		return fmt.Errorf("%w: %s", engine.ErrAggregateIsFolder, filename)
	}

	content, err := cmd.app.Store.Read(ctx, ref)
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}

	out := c.Root().Writer
	fd := int(os.Stdout.Fd())
	if cmd.raw || !term.IsTerminal(fd) {
		_, err = fmt.Fprint(out, content)
		return err
	}

	rendered, err := render(content, fd)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

func render(content string, fd int) (string, error) {
	width := 80
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		width = w
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	out, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
