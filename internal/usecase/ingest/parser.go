package ingest

import (
	"encoding/csv"
	"fmt"
	"strings"

	apperrors "github.com/dropofflens/dropofflens/errors"
)

// Column header keywords that mark a feedback column, checked in file order
var feedbackKeywords = []string{"feedback", "comment", "review", "message"}

// previewSize is the number of entries returned for upload preview
const previewSize = 5

// ParseResult holds the extracted feedback entries from a CSV upload
type ParseResult struct {
	Entries []string
	Preview []string
	Header  string
}

// ParseCSV extracts feedback text from CSV content. The first column whose
// header contains one of the feedback keywords (case-insensitive) is used;
// cells are trimmed and empty cells dropped.
func ParseCSV(content []byte) (*ParseResult, error) {
	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.ErrCSVParse(fmt.Sprintf("invalid CSV: %v", err))
	}

	if len(records) == 0 {
		return nil, apperrors.ErrCSVParse("CSV file is empty")
	}

	headers := records[0]
	colIndex, header := findFeedbackColumn(headers)
	if colIndex < 0 {
		return nil, apperrors.ErrCSVParse(fmt.Sprintf(
			"no feedback column found. Expected a column containing %q, %q, %q or %q; got headers: %s",
			"feedback", "comment", "review", "message", strings.Join(headers, ", ")))
	}

	entries := make([]string, 0, len(records)-1)
	for _, row := range records[1:] {
		if colIndex >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[colIndex])
		if cell == "" {
			continue
		}
		entries = append(entries, cell)
	}

	if len(entries) == 0 {
		return nil, apperrors.ErrCSVParse("no feedback entries found in CSV")
	}

	preview := entries
	if len(preview) > previewSize {
		preview = preview[:previewSize]
	}

	return &ParseResult{
		Entries: entries,
		Preview: preview,
		Header:  header,
	}, nil
}

// findFeedbackColumn returns the index and original header of the first
// column matching a feedback keyword, or -1 when none matches
func findFeedbackColumn(headers []string) (int, string) {
	for i, h := range headers {
		lower := strings.ToLower(strings.TrimSpace(h))
		for _, kw := range feedbackKeywords {
			if strings.Contains(lower, kw) {
				return i, strings.TrimSpace(h)
			}
		}
	}
	return -1, ""
}
