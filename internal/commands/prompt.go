package commands

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

var errNotInteractive = errors.New("confirmation required, rerun with --yes")

var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// confirm asks a yes/no question on the terminal. It fails when stdin is not
// a terminal so scripts never block on a prompt.
func confirm(title, description string) (bool, error) {
	if !stdinIsTerminal() {
		return false, errNotInteractive
	}

	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}
