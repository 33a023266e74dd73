package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/monthly/internal/tasks"
)

// ProgressLine renders a progress update as a single line.
func ProgressLine(update tasks.ProgressUpdate) string {
	switch update.Phase {
	case tasks.Aborted:
		return Error(update.Message)
	case tasks.Done:
		return Success(update.Message)
	case tasks.Reconciling:
		if add, ok := update.Data.(tasks.Addition); ok && add.Outcome == tasks.AlreadyPresent {
			return Help(update.Message)
		}
		return update.Message
	default:
		return Help(update.Message)
	}
}

// Summary renders a run result as a short block of text.
func Summary(result *tasks.RunResult) string {
	var b strings.Builder

	if result.Phase == tasks.Aborted {
		b.WriteString(Error(fmt.Sprintf("Sync aborted while %s", result.FailedIn)))
	} else {
		b.WriteString(Title("Sync complete"))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "  Liked songs fetched: %d\n", result.Fetched)
	fmt.Fprintf(&b, "  New since watermark: %d\n", result.New)
	fmt.Fprintf(&b, "  Added:               %s\n", Success(fmt.Sprint(result.Added())))
	fmt.Fprintf(&b, "  Already present:     %d\n", result.Skipped())

	if len(result.Created) > 0 {
		fmt.Fprintf(&b, "  Playlists created:   %s\n", strings.Join(result.Created, ", "))
	}
	fmt.Fprintf(&b, "  Watermark:           %s\n", result.Watermark.Format(time.RFC3339))

	return b.String()
}
