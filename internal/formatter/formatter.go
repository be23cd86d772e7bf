// package formatter renders assembly reports to various formats (JSON, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"ytmb/internal/shared"
	"ytmb/internal/tasks"
)

// Format identifies a report output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// ParseFormat validates a format string, accepting common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt", "plain":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidArgument, s)
	}
}

// ReportJSON converts an AssemblyResult to indented JSON.
func ReportJSON(result *tasks.AssemblyResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to generate JSON report: %w", err)
	}
	return append(data, '\n'), nil
}

// ReportMarkdown converts an AssemblyResult to a Markdown report with one
// section per query outcome.
func ReportMarkdown(result *tasks.AssemblyResult, title string) []byte {
	var buf bytes.Buffer

	if title == "" {
		title = "Playlist"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Playlist**: [%s](%s)\n", result.PlaylistID, result.PlaylistURL))
	buf.WriteString(fmt.Sprintf("**Created**: %s\n", result.CreatedAt.Format("2006-01-02 15:04:05 MST")))
	buf.WriteString(fmt.Sprintf("**Added**: %d of %d\n\n", result.AddedCount, result.TotalCount))

	buf.WriteString("## Tracks\n\n")
	for i, outcome := range result.Queries {
		if outcome.Matched {
			c := outcome.Candidate
			buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", i+1, strings.Join(c.ArtistNames, ", "), c.Title, formatDuration(c.DurationSeconds)))
		} else {
			buf.WriteString(fmt.Sprintf("%d. ~~%s~~ (%s)\n", i+1, outcome.Query, outcome.Reason))
		}
	}

	return buf.Bytes()
}

// ReportText converts an AssemblyResult to plain text.
func ReportText(result *tasks.AssemblyResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", result.PlaylistURL))
	buf.WriteString(fmt.Sprintf("Added %d of %d tracks\n\n", result.AddedCount, result.TotalCount))

	for i, outcome := range result.Queries {
		if outcome.Matched {
			c := outcome.Candidate
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, strings.Join(c.ArtistNames, ", "), c.Title))
		} else {
			buf.WriteString(fmt.Sprintf("%d. [unmatched] %s: %s\n", i+1, outcome.Query, outcome.Reason))
		}
	}

	return buf.Bytes()
}

// WriteReport renders an AssemblyResult in the given format. When path is
// empty the report goes to stdout, otherwise to the named file.
func WriteReport(result *tasks.AssemblyResult, format Format, title, path string) error {
	var data []byte
	var err error

	switch format {
	case FormatJSON:
		data, err = ReportJSON(result)
		if err != nil {
			return err
		}
	case FormatMarkdown:
		data = ReportMarkdown(result, title)
	case FormatText:
		data = ReportText(result)
	default:
		return fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidArgument, format)
	}

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// formatDuration renders seconds as M:SS.
func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
