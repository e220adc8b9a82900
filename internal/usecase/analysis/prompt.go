package analysis

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are an expert customer feedback analyst. Analyze feedback to identify key churn themes and provide actionable insights. Always respond with valid JSON."

// buildPrompt renders the extraction prompt with entries numbered from 1
func buildPrompt(entries []string) string {
	var sb strings.Builder

	sb.WriteString(`Analyze the following customer exit feedback and identify the top 3-6 common themes for why customers are leaving. For each theme, provide:

1. A clear theme name
2. A summary of the issue
3. The percentage of feedback that relates to this theme
4. 1-2 representative user quotes from the feedback
5. A specific suggested product action to address this theme

Feedback entries:
`)

	for i, entry := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, entry))
	}

	sb.WriteString(`
Respond with JSON in this exact format:
{
  "themes": [
    {
      "name": "Theme Name",
      "summary": "Detailed summary of the issue",
      "percentage": 42,
      "quotes": ["Representative quote 1", "Representative quote 2"],
      "suggestedAction": "Specific actionable recommendation"
    }
  ]
}`)

	return sb.String()
}
