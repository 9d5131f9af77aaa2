// package formatter reads the input table and renders run summaries (text, Markdown, CSV, JSON, YAML)
package formatter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/csvlist/internal/models"
	"github.com/desertthunder/csvlist/internal/shared"
)

// ColumnMap names the header columns holding the artist and song.
type ColumnMap struct {
	Artist string
	Song   string
}

// DefaultColumns matches a table with "artist" and "song" headers.
var DefaultColumns = ColumnMap{Artist: "artist", Song: "song"}

func (c ColumnMap) withDefaults() ColumnMap {
	if strings.TrimSpace(c.Artist) == "" {
		c.Artist = DefaultColumns.Artist
	}
	if strings.TrimSpace(c.Song) == "" {
		c.Song = DefaultColumns.Song
	}
	return c
}

// ReadRequestsCSV reads one [models.Request] per data row.
//
// The first record is the header. Column names are matched case-insensitively and extra columns are ignored.
// Cell values are trimmed; rows where both artist and song are empty are skipped.
func ReadRequestsCSV(r io.Reader, cols ColumnMap) ([]models.Request, error) {
	cols = cols.withDefaults()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input, expected a header row", shared.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	artistIdx, ok := index[strings.ToLower(strings.TrimSpace(cols.Artist))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", shared.ErrMissingColumn, cols.Artist)
	}
	songIdx, ok := index[strings.ToLower(strings.TrimSpace(cols.Song))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", shared.ErrMissingColumn, cols.Song)
	}

	get := func(rec []string, i int) string {
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	requests := []models.Request{}
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return requests, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", shared.ErrInvalidInput, row, err)
		}

		req := models.Request{Row: row, Artist: get(rec, artistIdx), Song: get(rec, songIdx)}
		if req.Artist == "" && req.Song == "" {
			continue
		}
		requests = append(requests, req)
	}
}

// ReadRequestsFile opens path and reads it with [ReadRequestsCSV].
func ReadRequestsFile(path string, cols ColumnMap) ([]models.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	return ReadRequestsCSV(f, cols)
}
