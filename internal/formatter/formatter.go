// package formatter renders song cards and exports the library to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/undertone/internal/models"
	"github.com/desertthunder/undertone/internal/shared"
)

// Card badges.
const (
	BadgeSuggested  = "AI SUGGESTED"
	BadgeMainstream = "MAINSTREAM"
	BadgeUndertone  = "UNDERTONE"
)

// NoTags is shown in place of an empty tag list.
const NoTags = "Unidentified"

// Badge labels song as an AI suggestion, mainstream or undertone.
func Badge(song models.Song) string {
	switch {
	case song.AIRecommendation:
		return BadgeSuggested
	case song.Mainstream():
		return BadgeMainstream
	default:
		return BadgeUndertone
	}
}

// Decibels formats a peak without trailing zeros.
func Decibels(peak float64) string {
	return strconv.FormatFloat(peak, 'f', -1, 64)
}

// MetaLine returns "Genre • 104 BPM • -10.4 dB".
func MetaLine(song models.Song) string {
	return fmt.Sprintf("%s • %d BPM • %s dB", song.Genre, song.BPM, Decibels(song.DecibelPeak))
}

// Tags returns the song's tags, or [NoTags] alone when it has none.
func Tags(song models.Song) []string {
	tags := song.CleanTags()
	if len(tags) == 0 {
		return []string{NoTags}
	}
	return tags
}

// Stars draws a five-star control with n filled.
func Stars(n int) string {
	n = max(0, min(n, 5))
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// Card renders one song as plain text lines.
func Card(song models.Song) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s [%s]\n", song.Title, Badge(song))
	fmt.Fprintf(&buf, "%s\n", song.Artist)
	fmt.Fprintf(&buf, "%s\n", MetaLine(song))
	fmt.Fprintf(&buf, "%s\n", strings.Join(Tags(song), " · "))
	if song.MatchScore > 0 {
		fmt.Fprintf(&buf, "match %.2f\n", song.MatchScore)
	}
	return buf.String()
}

// Export is a snapshot of a user's library.
type Export struct {
	Owner      string
	ExportedAt time.Time
	Entries    []models.LibraryEntry
}

// NewExport stamps entries with the current time.
func NewExport(owner string, entries []models.LibraryEntry) *Export {
	return &Export{Owner: owner, ExportedAt: time.Now().UTC(), Entries: entries}
}

func (e *Export) title() string {
	if e.Owner == "" {
		return "Library"
	}
	return e.Owner + "'s Library"
}

// ExportToCSV converts an Export to CSV format with columns: ID, Title, Artist, Genre, Year, BPM, Peak, Mainstream, Tags, Rating, Comment
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Genre", "Year", "BPM", "Peak", "Mainstream", "Tags", "Rating", "Comment"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range export.Entries {
		a := entry.Annotation()
		record := []string{
			strconv.FormatInt(entry.ID, 10),
			entry.Title,
			entry.Artist,
			entry.Genre,
			strconv.Itoa(entry.Year),
			strconv.Itoa(entry.BPM),
			Decibels(entry.DecibelPeak),
			strconv.Itoa(entry.MainstreamScore),
			strings.Join(entry.CleanTags(), ";"),
			strconv.Itoa(a.Rating),
			a.Comment,
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

// ExportToMarkdown converts an Export to Markdown format
func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.title()))
	if !export.ExportedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Exported**: %s\n", export.ExportedAt.Format(time.RFC3339)))
	}
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n", len(export.Entries)))
	buf.WriteString(fmt.Sprintf("**Rated**: %d\n\n", rated(export.Entries)))

	buf.WriteString("## Songs\n\n")
	for i, entry := range export.Entries {
		a := entry.Annotation()
		buf.WriteString(fmt.Sprintf("%d. **%s** - %s `%s` %s\n", i+1, entry.Title, entry.Artist, Badge(entry.Song), Stars(a.Rating)))
		buf.WriteString(fmt.Sprintf("   - %s\n", MetaLine(entry.Song)))
		buf.WriteString(fmt.Sprintf("   - Tags: %s\n", strings.Join(Tags(entry.Song), ", ")))
		if a.Comment != "" {
			buf.WriteString(fmt.Sprintf("   - > %s\n", a.Comment))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts an Export to plain text format
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s\n", export.title()))
	buf.WriteString(fmt.Sprintf("Songs: %d\n\n", len(export.Entries)))

	for i, entry := range export.Entries {
		buf.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, entry.Label(), Stars(entry.Annotation().Rating)))
	}

	return buf.Bytes(), nil
}

// ToJSON renders the export with two-space indentation.
func ToJSON(export *Export) ([]byte, error) {
	return shared.MarshalJSON(export.Entries, true)
}

func rated(entries []models.LibraryEntry) int {
	n := 0
	for _, e := range entries {
		if e.Annotation().Rated() {
			n++
		}
	}
	return n
}

// Format is an export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (use csv, md, txt or json)", shared.ErrInvalidArgument, s)
	}
}

// Render encodes export in format f.
func Render(export *Export, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatJSON:
		return ToJSON(export)
	case FormatText:
		return ExportToText(export)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// WriteExport renders export and writes it to path.
//
// Defaults to library.{format} in the working directory. Parent directories are created.
func WriteExport(export *Export, f Format, path string) (string, error) {
	if path == "" {
		path = "library." + string(f)
	}

	data, err := Render(export, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}

	return path, nil
}
