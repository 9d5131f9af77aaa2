package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/csvlist/internal/models"
	"github.com/desertthunder/csvlist/internal/shared"
	"gopkg.in/yaml.v3"
)

// Format is a summary export format.
type Format string

const (
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON, FormatYAML}

// ParseFormat accepts a format name or common alias ("text", "markdown", "yml").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "txt", "text":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// FormatFromPath infers the export format from the file extension, falling back to text.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return FormatText
}

// WriteSummary writes the console summary: totals followed by the matched and unmatched pairs.
func WriteSummary(w io.Writer, s *models.RunSummary) error {
	var buf bytes.Buffer

	buf.WriteString("Summary:\n")
	fmt.Fprintf(&buf, "Total tracks processed: %d\n", s.Total)
	fmt.Fprintf(&buf, "Matches found: %d\n", len(s.Matched))
	fmt.Fprintf(&buf, "No matches found: %d\n", len(s.Unmatched))

	if len(s.Matched) > 0 {
		buf.WriteString("\nMatched tracks:\n")
		for _, r := range s.Matched {
			fmt.Fprintf(&buf, "✓ %s\n", r)
		}
	}

	if len(s.Unmatched) > 0 {
		buf.WriteString("\nNo matches found for:\n")
		for _, r := range s.Unmatched {
			fmt.Fprintf(&buf, "✗ %s\n", r)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// ExportSummary renders s in the given format.
func ExportSummary(s *models.RunSummary, f Format) ([]byte, error) {
	switch f {
	case FormatText:
		var buf bytes.Buffer
		if err := WriteSummary(&buf, s); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatMarkdown:
		return exportMarkdown(s), nil
	case FormatCSV:
		return exportCSV(s)
	case FormatJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// WriteSummaryExport renders s and writes it to path. An empty format is inferred from the extension.
func WriteSummaryExport(s *models.RunSummary, path string, f Format) error {
	if f == "" {
		f = FormatFromPath(path)
	}

	data, err := ExportSummary(s, f)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	return nil
}

func exportMarkdown(s *models.RunSummary) []byte {
	var buf bytes.Buffer

	title := "Import summary"
	if s.Playlist != nil {
		title = s.Playlist.Name
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)

	if s.Playlist != nil {
		if s.Playlist.URL != "" {
			fmt.Fprintf(&buf, "**Playlist**: [%s](%s)\n", s.Playlist.Name, s.Playlist.URL)
		}
		fmt.Fprintf(&buf, "**Visibility**: %s\n", shared.VisibilityString(s.Playlist.Public))
	}
	if s.DryRun {
		buf.WriteString("**Dry run**: no playlist was created\n")
	}
	fmt.Fprintf(&buf, "**Tracks**: %d processed, %d matched (%.1f%%), %d unmatched\n",
		s.Total, len(s.Matched), s.MatchPercentage(), len(s.Unmatched))
	if s.PopulateErr != nil {
		fmt.Fprintf(&buf, "**Warning**: only %d tracks were added: %v\n", s.Appended, s.PopulateErr)
	}

	buf.WriteString("\n## Matched\n\n")
	n := 0
	for _, o := range s.Outcomes {
		if !o.Matched {
			continue
		}
		n++
		fmt.Fprintf(&buf, "%d. %s → %s - %s\n", n, o.Request, o.Artist, o.Title)
	}

	buf.WriteString("\n## Not matched\n\n")
	n = 0
	for _, o := range s.Outcomes {
		if o.Matched {
			continue
		}
		n++
		detail := o.Reason.String()
		if o.Reason == models.ReasonBadMatch {
			detail = fmt.Sprintf("%s: found %s - %s", detail, o.Artist, o.Title)
		}
		fmt.Fprintf(&buf, "%d. %s (%s)\n", n, o.Request, detail)
	}

	return buf.Bytes()
}

func exportCSV(s *models.RunSummary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"row", "artist", "song", "matched", "reason", "track_id", "found_title", "found_artist"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, o := range s.Outcomes {
		record := []string{
			strconv.Itoa(o.Request.Row),
			o.Request.Artist,
			o.Request.Song,
			strconv.FormatBool(o.Matched),
			o.Reason.String(),
			o.TrackID,
			o.Title,
			o.Artist,
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
