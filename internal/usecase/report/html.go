package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/dropofflens/dropofflens/errors"
	"github.com/dropofflens/dropofflens/internal/domain/entities"
)

// AnalysisGetter resolves an analysis with its results for a requester
type AnalysisGetter interface {
	Get(ctx context.Context, id, requesterID uuid.UUID) (*entities.FeedbackAnalysis, *entities.AnalysisResults, error)
}

// Service renders completed analyses as standalone HTML report documents
type Service struct {
	analyses AnalysisGetter
	tmpl     *template.Template
}

// NewService creates a new report service
func NewService(analyses AnalysisGetter) *Service {
	return &Service{
		analyses: analyses,
		tmpl:     template.Must(template.New("report").Parse(reportTemplate)),
	}
}

// Report is a rendered export document
type Report struct {
	Filename string
	HTML     []byte
}

type reportData struct {
	Title          string
	Description    string
	GeneratedAt    string
	TotalFeedback  int
	ThemesFound    int
	ProcessingTime string
	Themes         []entities.FeedbackTheme
}

// Export renders the analysis as an HTML document. Analyses without results
// cannot be exported.
func (s *Service) Export(ctx context.Context, id, requesterID uuid.UUID) (*Report, error) {
	record, results, err := s.analyses.Get(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if results == nil {
		return nil, apperrors.ErrNotFound("Analysis results")
	}

	data := reportData{
		Title:          record.Title,
		GeneratedAt:    time.Now().Format("January 2, 2006 15:04 MST"),
		TotalFeedback:  results.TotalFeedback,
		ThemesFound:    results.ThemesFound,
		ProcessingTime: fmt.Sprintf("%.1fs", results.ProcessingTime),
		Themes:         results.Themes,
	}
	if record.Description != nil {
		data.Description = *record.Description
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return nil, apperrors.ErrReportExportFailed("html", err)
	}

	return &Report{
		Filename: fmt.Sprintf("analysis-%s.html", id),
		HTML:     buf.Bytes(),
	}, nil
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 40px auto; max-width: 800px; color: #1a202c; }
h1 { border-bottom: 2px solid #2b6cb0; padding-bottom: 8px; }
.meta { color: #718096; font-size: 14px; margin-bottom: 32px; }
.theme { border: 1px solid #e2e8f0; border-radius: 8px; padding: 16px 20px; margin-bottom: 16px; }
.theme h2 { margin: 0 0 4px; font-size: 18px; }
.pct { color: #2b6cb0; font-weight: 600; }
blockquote { border-left: 3px solid #cbd5e0; margin: 8px 0; padding-left: 12px; color: #4a5568; font-style: italic; }
.action { background: #ebf8ff; border-radius: 6px; padding: 8px 12px; margin-top: 8px; font-size: 14px; }
.edited { color: #975a16; font-size: 12px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Description}}<p>{{.Description}}</p>{{end}}
<p class="meta">Generated {{.GeneratedAt}} &middot; {{.TotalFeedback}} feedback entries &middot; {{.ThemesFound}} themes &middot; analyzed in {{.ProcessingTime}}</p>
{{range .Themes}}
<div class="theme">
<h2>{{.Name}} <span class="pct">{{printf "%.0f" .Percentage}}%</span>{{if .IsEdited}} <span class="edited">(edited)</span>{{end}}</h2>
<p>{{.Summary}}</p>
{{range .Quotes}}<blockquote>{{.}}</blockquote>{{end}}
{{if .SuggestedAction}}<div class="action"><strong>Suggested action:</strong> {{.SuggestedAction}}</div>{{end}}
</div>
{{end}}
</body>
</html>
`
