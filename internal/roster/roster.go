// Package roster parses uploaded student lists (CSV or TSV) into the
// roll/name entries the seating engine consumes.  Files come from exam
// cells with no common format, so parsing is forgiving: the delimiter is
// sniffed, header rows are detected by common column names, and rows that
// yield no roll are reported as warnings rather than failing the upload.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/blazex/seat-allocation/internal/seating"
)

// Result is the outcome of one parse: the extracted entries in file
// order, plus a warning per skipped or suspicious row.
type Result struct {
	Entries  []seating.RollEntry
	Warnings []string
}

// headerNames are the column titles (lowercased) that mark a header row
// and, when present, bind columns to fields.
var headerNames = map[string]string{
	"roll":         "roll",
	"roll no":      "roll",
	"roll_no":      "roll",
	"roll number":  "roll",
	"enrollment":   "roll",
	"reg no":       "roll",
	"name":         "name",
	"student":      "name",
	"student name": "name",
}

// Parse reads a delimited student list.  The first column is taken as the
// roll and the second as the name unless a header row maps them
// explicitly.  Duplicate rolls within the file are kept (the engine's
// validator reports them) but flagged as warnings.
func Parse(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	text := string(data)

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = sniffDelimiter(text)
	cr.FieldsPerRecord = -1 // ragged rows are tolerated, handled per row
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	res := &Result{}
	rollCol, nameCol := 0, 1
	seen := make(map[string]bool)
	for i, rec := range records {
		if i == 0 {
			if rc, nc, ok := headerColumns(rec); ok {
				rollCol, nameCol = rc, nc
				continue
			}
		}
		if isBlank(rec) {
			continue
		}
		roll := field(rec, rollCol)
		if roll == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: no roll number, row skipped", i+1))
			continue
		}
		if seen[roll] {
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: duplicate roll %s", i+1, roll))
		}
		seen[roll] = true
		res.Entries = append(res.Entries, seating.RollEntry{
			Roll: roll,
			Name: field(rec, nameCol),
		})
	}
	return res, nil
}

// sniffDelimiter picks tab when the first line contains one, otherwise
// comma.
func sniffDelimiter(text string) rune {
	line := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	if strings.ContainsRune(line, '\t') {
		return '\t'
	}
	return ','
}

// headerColumns inspects a row for known column titles.  It reports the
// roll and name column indexes and whether the row is a header at all.
func headerColumns(rec []string) (rollCol, nameCol int, ok bool) {
	rollCol, nameCol = -1, -1
	for i, cell := range rec {
		switch headerNames[strings.ToLower(strings.TrimSpace(cell))] {
		case "roll":
			if rollCol < 0 {
				rollCol = i
			}
		case "name":
			if nameCol < 0 {
				nameCol = i
			}
		}
	}
	if rollCol < 0 {
		return 0, 1, false
	}
	if nameCol < 0 {
		// header without a name column: keep names empty
		nameCol = len(rec)
	}
	return rollCol, nameCol, true
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
