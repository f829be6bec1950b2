package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/colonyops/taskroll/internal/core/history"
	"github.com/colonyops/taskroll/internal/core/styles"
	"github.com/colonyops/taskroll/internal/engine"
)

// formatRun renders a one line summary of a finished run.
func formatRun(run history.Run) string {
	var icon, detail string
	switch {
	case run.Failed():
		icon = styles.TextErrorStyle.Render("✘")
		detail = styles.TextErrorStyle.Render(run.Error)
	case run.Kind == history.KindSync:
		icon = styles.TextSuccessStyle.Render("✔")
		detail = fmt.Sprintf("%d line(s) patched in %d document(s)", run.Patched, run.Documents)
	default:
		icon = styles.TextSuccessStyle.Render("✔")
		detail = fmt.Sprintf("%d todo(s) from %d document(s)", run.Todos, run.Documents)
	}

	return fmt.Sprintf("%s %s %s %s",
		icon,
		styles.TextForegroundBoldStyle.Render(string(run.Kind)),
		detail,
		styles.TextMutedStyle.Render(run.Duration.Round(time.Millisecond).String()),
	)
}

// printSync reports which source documents a sync patched.
func printSync(w io.Writer, res engine.SyncResult) {
	if len(res.Documents) == 0 {
		_, _ = fmt.Fprintln(w, styles.TextMutedStyle.Render("No status changes to sync"))
		return
	}
	for _, doc := range res.Documents {
		_, _ = fmt.Fprintf(w, "%s %s %s\n",
			styles.TextSuccessStyle.Render("✔"),
			doc.Path,
			styles.TextMutedStyle.Render(fmt.Sprintf("(%d patched)", doc.Patched)),
		)
	}
}

// printAggregate reports the outcome of an aggregation.
func printAggregate(w io.Writer, filename string, res engine.AggregateResult) {
	state := "unchanged"
	if res.Written {
		state = "written"
	}
	_, _ = fmt.Fprintf(w, "%s %s %s\n",
		styles.TextSuccessStyle.Render("✔"),
		styles.TextForegroundBoldStyle.Render(filename),
		styles.TextMutedStyle.Render(fmt.Sprintf(
			"%s: %d todo(s) in %d section(s), %d document(s) scanned, %d excluded",
			state, res.Todos, res.Sections, res.Documents, res.Excluded,
		)),
	)
}
