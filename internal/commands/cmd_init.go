package commands

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	initcmd "github.com/colonyops/taskroll/internal/commands/init"
)

type InitCmd struct {
	flags *Flags
	yes   bool
	force bool
}

func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Create a taskroll config with an interactive wizard",
		UsageText: "taskroll init [options]",
		Description: `Asks for the vault root, the aggregate document name, which todo types to
collect, and the exclude markers, then writes the config file and validates it.

Use --yes to accept all defaults without prompts. The global --root flag
presets the vault root.
Use --force to overwrite an existing config (a .bak copy is kept).`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "accept defaults without prompting",
				Destination: &cmd.yes,
			},
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "overwrite existing configuration",
				Destination: &cmd.force,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *InitCmd) run(ctx context.Context, c *cli.Command) error {
	wizard := initcmd.NewWizard(initcmd.WizardOptions{
		ConfigPath: cmd.flags.ConfigPath,
		DataDir:    cmd.flags.DataDir,
		Yes:        cmd.yes,
		Force:      cmd.force,
		Root:       cmd.flags.Root,
		Out:        os.Stderr,
	})

	err := wizard.Run(ctx)
	if errors.Is(err, initcmd.ErrCancelled) {
		_, _ = os.Stderr.WriteString("Init cancelled\n")
		return nil
	}
	return err
}
