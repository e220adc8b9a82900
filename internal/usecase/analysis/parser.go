package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dropofflens/dropofflens/internal/domain/entities"
)

// providerTheme is the shape the model is instructed to return
type providerTheme struct {
	Name            string   `json:"name"`
	Summary         string   `json:"summary"`
	Percentage      float64  `json:"percentage"`
	Quotes          []string `json:"quotes"`
	SuggestedAction string   `json:"suggestedAction"`
}

type providerResult struct {
	Themes []providerTheme `json:"themes"`
}

// parseResults decodes the model output and builds validated results for the
// given feedback entries. Malformed output is rejected rather than patched:
// a response that does not match the contract fails the whole extraction.
func parseResults(raw string, entries []string) (*entities.AnalysisResults, error) {
	var result providerResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("model response is not valid JSON: %w", err)
	}

	if len(result.Themes) == 0 {
		return nil, fmt.Errorf("model response contains no themes")
	}

	themes := make([]entities.FeedbackTheme, 0, len(result.Themes))
	for i, pt := range result.Themes {
		if strings.TrimSpace(pt.Name) == "" {
			return nil, fmt.Errorf("theme %d has no name", i+1)
		}
		if strings.TrimSpace(pt.Summary) == "" {
			return nil, fmt.Errorf("theme %q has no summary", pt.Name)
		}
		if pt.Percentage < 0 || pt.Percentage > 100 {
			return nil, fmt.Errorf("theme %q has percentage %v outside 0-100", pt.Name, pt.Percentage)
		}

		themes = append(themes, entities.FeedbackTheme{
			ID:              uuid.New().String(),
			Name:            pt.Name,
			Summary:         pt.Summary,
			Percentage:      pt.Percentage,
			Quotes:          verifyQuotes(pt, entries),
			SuggestedAction: pt.SuggestedAction,
			IsEdited:        false,
		})
	}

	return &entities.AnalysisResults{
		Themes:        themes,
		TotalFeedback: len(entries),
		ThemesFound:   len(themes),
	}, nil
}

// verifyQuotes keeps only quotes that actually appear in the feedback, then
// backfills a single related entry when the model invented all of them.
func verifyQuotes(pt providerTheme, entries []string) []string {
	kept := make([]string, 0, len(pt.Quotes))
	for _, quote := range pt.Quotes {
		if quoteMatchesFeedback(quote, entries) {
			kept = append(kept, quote)
		}
	}

	if len(kept) == 0 {
		if entry, ok := findRelatedEntry(pt, entries); ok {
			kept = []string{entry}
		}
	}

	return kept
}

// quoteMatchesFeedback checks substring containment in either direction,
// case-insensitive, so partial quotes and full-entry quotes both pass
func quoteMatchesFeedback(quote string, entries []string) bool {
	q := strings.ToLower(quote)
	for _, entry := range entries {
		e := strings.ToLower(entry)
		if strings.Contains(e, q) || strings.Contains(q, e) {
			return true
		}
	}
	return false
}

// findRelatedEntry picks the first entry mentioning the theme name, or one
// whose opening text appears in the theme summary
func findRelatedEntry(pt providerTheme, entries []string) (string, bool) {
	name := strings.ToLower(pt.Name)
	summary := strings.ToLower(pt.Summary)

	for _, entry := range entries {
		e := strings.ToLower(entry)
		prefix := e
		if len(prefix) > 20 {
			prefix = prefix[:20]
		}
		if strings.Contains(e, name) || strings.Contains(summary, prefix) {
			return entry, true
		}
	}
	return "", false
}
