package formatter

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/monthly/internal/tasks"
	th "github.com/desertthunder/monthly/internal/testing"
)

func sampleResult() *tasks.RunResult {
	jan := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2024, time.February, 2, 8, 30, 0, 0, time.UTC)

	return &tasks.RunResult{
		Phase:   tasks.Done,
		Fetched: 50,
		New:     3,
		Additions: []tasks.Addition{
			{Item: tasks.Item{ID: "f1", Name: "Song, With Comma", LikedAt: feb}, Playlist: "Feb '24", Outcome: tasks.Added},
			{Item: tasks.Item{ID: "j1", Name: "Song One", LikedAt: jan}, Playlist: "Jan '24", Outcome: tasks.Added},
			{Item: tasks.Item{ID: "j2", Name: "Song Two", LikedAt: jan}, Playlist: "Jan '24", Outcome: tasks.AlreadyPresent},
		},
		Created:   []string{"Feb '24"},
		Watermark: feb,
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleResult())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Liked At,ID,Name,Playlist,Outcome\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, `2024-02-02T08:30:00Z,f1,"Song, With Comma",Feb '24,added`) {
			t.Errorf("CSV missing quoted f1 row, got: %s", output)
		}
		if !strings.Contains(output, "j2,Song Two,Jan '24,already_present") {
			t.Errorf("CSV missing j2 row, got: %s", output)
		}
		if lines := strings.Count(output, "\n"); lines != 4 {
			t.Errorf("expected 4 lines, got %d", lines)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleResult())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Sync done",
			"**Added**: 2",
			"**Already present**: 1",
			"## Created\n\n- Feb '24",
			"## Jan '24",
			"- [x] Song One (2024-01-15)",
			"- [ ] Song Two (2024-01-15)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
		if strings.Count(output, "## Jan '24") != 1 {
			t.Error("expected one Jan '24 section")
		}
	})

	t.Run("ExportToMarkdown aborted", func(t *testing.T) {
		data, err := ExportToMarkdown(&tasks.RunResult{Phase: tasks.Aborted, FailedIn: tasks.Reconciling})
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if !strings.Contains(string(data), "**Failed while**: reconciling") {
			t.Errorf("expected failure line, got:\n%s", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleResult())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Added: 2, already present: 1") {
			t.Errorf("text missing counts, got: %s", output)
		}
		if !strings.Contains(output, "3. Song Two -> Jan '24 (already_present)") {
			t.Errorf("text missing j2 line, got: %s", output)
		}
	})
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()

	tc := []struct {
		name string
		file string
		want string
	}{
		{name: "csv", file: "report.csv", want: "Liked At,ID,Name,Playlist,Outcome"},
		{name: "markdown", file: "report.md", want: "# Sync done"},
		{name: "text", file: "report.txt", want: "Sync: done"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := WriteReport(sampleResult(), path); err != nil {
				t.Fatalf("WriteReport failed: %v", err)
			}

			th.AssertFileExists(t, path)
			if content := th.MustReadFile(t, path); !strings.Contains(content, tt.want) {
				t.Errorf("expected %q in report, got:\n%s", tt.want, content)
			}
		})
	}

	t.Run("unwritable path", func(t *testing.T) {
		if err := WriteReport(sampleResult(), filepath.Join(dir, "missing", "report.csv")); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
