// package formatter exports sync run reports to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/monthly/internal/tasks"
)

// ExportToCSV writes one row per reconciled track with columns: Liked At, ID, Name, Playlist, Outcome
func ExportToCSV(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Liked At", "ID", "Name", "Playlist", "Outcome"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, add := range result.Additions {
		record := []string{
			add.Item.LikedAt.Format(time.RFC3339),
			add.Item.ID,
			add.Item.Name,
			add.Playlist,
			add.Outcome.String(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the run with one section per playlist
func ExportToMarkdown(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Sync %s\n\n", result.Phase))
	if result.Phase == tasks.Aborted {
		buf.WriteString(fmt.Sprintf("**Failed while**: %s\n\n", result.FailedIn))
	}
	buf.WriteString(fmt.Sprintf("**Fetched**: %d\n", result.Fetched))
	buf.WriteString(fmt.Sprintf("**New**: %d\n", result.New))
	buf.WriteString(fmt.Sprintf("**Added**: %d\n", result.Added()))
	buf.WriteString(fmt.Sprintf("**Already present**: %d\n", result.Skipped()))
	buf.WriteString(fmt.Sprintf("**Watermark**: %s\n\n", result.Watermark.Format(time.RFC3339)))

	if len(result.Created) > 0 {
		buf.WriteString("## Created\n\n")
		for _, name := range result.Created {
			buf.WriteString(fmt.Sprintf("- %s\n", name))
		}
		buf.WriteString("\n")
	}

	current := ""
	for _, add := range result.Additions {
		if add.Playlist != current {
			current = add.Playlist
			buf.WriteString(fmt.Sprintf("## %s\n\n", current))
		}
		mark := "x"
		if add.Outcome == tasks.AlreadyPresent {
			mark = " "
		}
		buf.WriteString(fmt.Sprintf("- [%s] %s (%s)\n", mark, add.Item.Name, add.Item.LikedAt.Format(time.DateOnly)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a run to plain text format
func ExportToText(result *tasks.RunResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Sync: %s\n", result.Phase))
	buf.WriteString(fmt.Sprintf("Added: %d, already present: %d\n\n", result.Added(), result.Skipped()))

	for i, add := range result.Additions {
		buf.WriteString(fmt.Sprintf("%d. %s -> %s (%s)\n", i+1, add.Item.Name, add.Playlist, add.Outcome))
	}

	return buf.Bytes(), nil
}

// WriteReport writes result to path in the format picked by its extension: .csv, .md, or plain text otherwise.
func WriteReport(result *tasks.RunResult, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		data, err = ExportToCSV(result)
	case ".md", ".markdown":
		data, err = ExportToMarkdown(result)
	default:
		data, err = ExportToText(result)
	}
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
