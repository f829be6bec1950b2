// Package initcmd implements the 'taskroll init' setup wizard.
package initcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/colonyops/taskroll/internal/core/config"
	"github.com/colonyops/taskroll/internal/core/doctor"
	"github.com/colonyops/taskroll/internal/core/styles"
	"github.com/colonyops/taskroll/internal/core/todo"
)

// ErrCancelled is returned when the user declines to overwrite a config.
var ErrCancelled = errors.New("init cancelled")

// WizardOptions configures the wizard behavior.
type WizardOptions struct {
	ConfigPath string
	DataDir    string
	Yes        bool   // skip prompts, use defaults
	Force      bool   // overwrite existing config
	Root       string // preset vault root ("" = prompt or default)
	Out        io.Writer
}

// Wizard writes a config file from prompted or default answers.
type Wizard struct {
	opts WizardOptions
}

// NewWizard creates a new init wizard.
func NewWizard(opts WizardOptions) *Wizard {
	if opts.Out == nil {
		opts.Out = os.Stderr
	}
	return &Wizard{opts: opts}
}

// Run executes the wizard.
func (w *Wizard) Run(ctx context.Context) error {
	if ConfigExists(w.opts.ConfigPath) && !w.opts.Force {
		if w.opts.Yes {
			return fmt.Errorf("config exists at %s; use --force to overwrite", w.opts.ConfigPath)
		}

		var overwrite bool
		err := huh.NewConfirm().
			Title("Config file already exists").
			Description(w.opts.ConfigPath + "\nOverwrite? (a backup will be created)").
			Value(&overwrite).
			Run()
		if err != nil {
			return err
		}
		if !overwrite {
			return ErrCancelled
		}
	}

	answers := DefaultAnswers()
	if w.opts.Root != "" {
		answers.Root = w.opts.Root
	}

	if !w.opts.Yes {
		if err := w.prompt(&answers); err != nil {
			return err
		}
	}

	data, err := GenerateConfig(answers)
	if err != nil {
		return err
	}

	backupPath, err := BackupConfig(w.opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("backup config: %w", err)
	}
	if backupPath != "" {
		w.success("Backed up config to: " + backupPath)
	}

	if err := WriteConfig(data, w.opts.ConfigPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	w.success("Created config: " + w.opts.ConfigPath)

	cfg, err := config.Load(w.opts.ConfigPath, w.opts.DataDir)
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}

	w.report(doctor.NewConfigCheck(cfg, w.opts.ConfigPath).Run(ctx))
	w.nextSteps(cfg)
	return nil
}

func (w *Wizard) prompt(a *Answers) error {
	include := includeKeys(a.Include)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Vault root").
				Description("Folder containing your Markdown notes").
				Value(&a.Root).
				Validate(notEmpty),
			huh.NewInput().
				Title("Aggregate document").
				Description("File name of the generated todo list, written to the vault root").
				Value(&a.AggregateFilename).
				Validate(fileName),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Todos to collect").
				Description("Ticking a todo to a type left out here syncs it back to its note").
				Options(
					huh.NewOption("Not started [ ]", "not_started"),
					huh.NewOption("In progress [.]", "in_progress"),
					huh.NewOption("Won't do [~]", "wont_do"),
					huh.NewOption("Done [x]", "done"),
				).
				Value(&include),
			huh.NewConfirm().
				Title("Label groups with the full note path?").
				Value(&a.UseFullFilepath),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Folder exclude marker").
				Description("A file with this name excludes its folder and everything below it").
				Value(&a.ExcludeFolderFilename).
				Validate(fileName),
			huh.NewInput().
				Title("Note exclude marker").
				Description("A note containing this line on its own is skipped (empty disables)").
				Value(&a.ExcludeFilePattern),
			huh.NewConfirm().
				Title("Record run history?").
				Value(&a.History),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	a.Include = includeFromKeys(include)
	return nil
}

func (w *Wizard) report(result doctor.Result) {
	_, _ = fmt.Fprintln(w.opts.Out)
	_, _ = fmt.Fprintln(w.opts.Out, styles.TextForegroundBoldStyle.Render(result.Name))
	for _, item := range result.Items {
		icon := styles.TextSuccessStyle.Render("✔")
		switch item.Status {
		case doctor.StatusWarn:
			icon = styles.TextWarningStyle.Render("●")
		case doctor.StatusFail:
			icon = styles.TextErrorStyle.Render("✘")
		}

		detail := ""
		if item.Detail != "" {
			detail = " " + styles.TextMutedStyle.Render(item.Detail)
		}
		_, _ = fmt.Fprintf(w.opts.Out, "  %s %s%s\n", icon, item.Label, detail)
	}
}

func (w *Wizard) nextSteps(cfg *config.Config) {
	_, _ = fmt.Fprintln(w.opts.Out)
	_, _ = fmt.Fprintln(w.opts.Out, styles.TextForegroundBoldStyle.Render("Next Steps"))
	_, _ = fmt.Fprintf(w.opts.Out, "  1. Run 'taskroll run' to write %s\n", cfg.AggregateFilename)
	_, _ = fmt.Fprintln(w.opts.Out, "  2. Run 'taskroll watch' to keep it current while you edit")
}

func (w *Wizard) success(msg string) {
	_, _ = fmt.Fprintf(w.opts.Out, "%s %s\n", styles.TextSuccessStyle.Render("✔"), msg)
}

var includeOrder = []string{"not_started", "in_progress", "wont_do", "done"}

func includeKeys(inc todo.Include) []string {
	flags := []bool{inc.NotStarted, inc.InProgress, inc.WontDo, inc.Done}
	var keys []string
	for i, on := range flags {
		if on {
			keys = append(keys, includeOrder[i])
		}
	}
	return keys
}

func includeFromKeys(keys []string) todo.Include {
	return todo.Include{
		NotStarted: slices.Contains(keys, "not_started"),
		InProgress: slices.Contains(keys, "in_progress"),
		WontDo:     slices.Contains(keys, "wont_do"),
		Done:       slices.Contains(keys, "done"),
	}
}

func notEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be empty")
	}
	return nil
}

func fileName(s string) error {
	if err := notEmpty(s); err != nil {
		return err
	}
	if strings.ContainsAny(s, `/\`) {
		return errors.New("must be a file name, not a path")
	}
	return nil
}
