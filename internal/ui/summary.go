package ui

import (
	"fmt"
	"strings"

	"github.com/kenki-os/kenkictl/internal/provisioning"
)

// RenderSummary formats the final run report for the operator.
func RenderSummary(summary *provisioning.Summary) string {
	var b strings.Builder

	title := fmt.Sprintf("provisioning run %s: %s", summary.RunID, summary.State)
	switch summary.State {
	case provisioning.StateAborted:
		b.WriteString(errorStyle.Render(title))
	case provisioning.StateDone:
		if len(summary.Skipped) > 0 {
			b.WriteString(warnStyle.Render(title + " (with skips)"))
		} else {
			b.WriteString(successStyle.Render(title))
		}
	default:
		b.WriteString(title)
	}
	b.WriteString("\n")

	for _, name := range summary.Succeeded {
		fmt.Fprintf(&b, "  %s %s\n", successStyle.Render("ok"), name)
	}
	for _, skip := range summary.Skipped {
		fmt.Fprintf(&b, "  %s %s: %s\n", warnStyle.Render("skipped"), skip.Step, skip.Reason)
	}
	if summary.Err != nil {
		fmt.Fprintf(&b, "  %s %v\n", errorStyle.Render("aborted:"), summary.Err)
	}

	return b.String()
}
