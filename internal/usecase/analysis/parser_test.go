package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResults_Valid(t *testing.T) {
	entries := []string{"Too slow", "Too expensive", "Too slow and buggy"}
	raw := `{"themes":[{"name":"Performance","summary":"The product is too slow for daily use.","percentage":67,"quotes":["Too slow","Too slow and buggy"],"suggestedAction":"Profile and fix the slowest endpoints"},{"name":"Pricing","summary":"The price is seen as too high.","percentage":33,"quotes":["Too expensive"],"suggestedAction":"Introduce a cheaper tier"}]}`

	results, err := parseResults(raw, entries)
	require.NoError(t, err)

	assert.Equal(t, 3, results.TotalFeedback)
	assert.Equal(t, 2, results.ThemesFound)
	assert.Len(t, results.Themes, results.ThemesFound)

	perf := results.Themes[0]
	assert.NotEmpty(t, perf.ID)
	assert.Equal(t, "Performance", perf.Name)
	assert.Equal(t, []string{"Too slow", "Too slow and buggy"}, perf.Quotes)
	assert.False(t, perf.IsEdited)

	// Each theme gets its own id
	assert.NotEqual(t, results.Themes[0].ID, results.Themes[1].ID)
}

func TestParseResults_DropsInventedQuotes(t *testing.T) {
	entries := []string{"Support never answered my tickets"}
	raw := `{"themes":[{"name":"Support","summary":"Slow support responses.","percentage":100,"quotes":["Support never answered my tickets","I hate the new dashboard"],"suggestedAction":"Staff the support queue"}]}`

	results, err := parseResults(raw, entries)
	require.NoError(t, err)

	assert.Equal(t, []string{"Support never answered my tickets"}, results.Themes[0].Quotes)
}

func TestParseResults_QuoteMatchIsBidirectionalAndCaseInsensitive(t *testing.T) {
	entries := []string{"The onboarding flow was VERY confusing for my team"}

	// Partial quote: entry contains quote
	raw := `{"themes":[{"name":"Onboarding","summary":"Confusing onboarding.","percentage":100,"quotes":["very confusing"],"suggestedAction":"Rework onboarding"}]}`
	results, err := parseResults(raw, entries)
	require.NoError(t, err)
	assert.Equal(t, []string{"very confusing"}, results.Themes[0].Quotes)

	// Expanded quote: quote contains entry
	raw = `{"themes":[{"name":"Onboarding","summary":"Confusing onboarding.","percentage":100,"quotes":["the onboarding flow was very confusing for my team, sadly"],"suggestedAction":"Rework onboarding"}]}`
	results, err = parseResults(raw, entries)
	require.NoError(t, err)
	assert.Len(t, results.Themes[0].Quotes, 1)
}

func TestParseResults_BackfillsQuoteByThemeName(t *testing.T) {
	entries := []string{"Too many bugs in the mobile app", "Pricing is fine"}
	raw := `{"themes":[{"name":"Bugs","summary":"Customers report frequent defects.","percentage":50,"quotes":["something the model made up"],"suggestedAction":"Invest in QA"}]}`

	results, err := parseResults(raw, entries)
	require.NoError(t, err)

	assert.Equal(t, []string{"Too many bugs in the mobile app"}, results.Themes[0].Quotes)
}

func TestParseResults_BackfillsQuoteByEntryPrefixInSummary(t *testing.T) {
	entries := []string{"missing integrations with our CRM"}
	raw := `{"themes":[{"name":"Ecosystem","summary":"Customers leave over missing integrations with third parties.","percentage":100,"quotes":[],"suggestedAction":"Ship CRM integrations"}]}`

	results, err := parseResults(raw, entries)
	require.NoError(t, err)

	// First 20 chars of the entry appear in the summary
	assert.Equal(t, []string{"missing integrations with our CRM"}, results.Themes[0].Quotes)
}

func TestParseResults_NoRelatedEntryLeavesQuotesEmpty(t *testing.T) {
	entries := []string{"Pricing is way too high"}
	raw := `{"themes":[{"name":"Latency","summary":"Slow page loads.","percentage":10,"quotes":[],"suggestedAction":"Add caching"}]}`

	results, err := parseResults(raw, entries)
	require.NoError(t, err)

	assert.Empty(t, results.Themes[0].Quotes)
}

func TestParseResults_RejectsMalformed(t *testing.T) {
	entries := []string{"Too slow"}

	cases := map[string]string{
		"not json":           `themes: []`,
		"no themes":          `{"themes":[]}`,
		"missing name":       `{"themes":[{"name":"","summary":"x","percentage":10}]}`,
		"missing summary":    `{"themes":[{"name":"x","summary":"  ","percentage":10}]}`,
		"percentage too big": `{"themes":[{"name":"x","summary":"y","percentage":140}]}`,
		"negative pct":       `{"themes":[{"name":"x","summary":"y","percentage":-3}]}`,
	}

	for name, raw := range cases {
		_, err := parseResults(raw, entries)
		assert.Error(t, err, name)
	}
}
