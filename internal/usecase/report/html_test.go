package report

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dropofflens/dropofflens/errors"
	"github.com/dropofflens/dropofflens/internal/domain/entities"
)

type fakeGetter struct {
	record  *entities.FeedbackAnalysis
	results *entities.AnalysisResults
	err     error
}

func (f *fakeGetter) Get(_ context.Context, _, _ uuid.UUID) (*entities.FeedbackAnalysis, *entities.AnalysisResults, error) {
	return f.record, f.results, f.err
}

func TestExport_RendersThemes(t *testing.T) {
	record, err := entities.NewFeedbackAnalysis(uuid.New(), nil, "Q3 Churn", []string{"Too slow"})
	require.NoError(t, err)

	getter := &fakeGetter{
		record: record,
		results: &entities.AnalysisResults{
			Themes: []entities.FeedbackTheme{
				{
					ID:              uuid.NewString(),
					Name:            "Performance",
					Summary:         "Customers find the product too slow.",
					Percentage:      67,
					Quotes:          []string{"Too slow"},
					SuggestedAction: "Profile the hot paths",
				},
			},
			TotalFeedback:  3,
			ThemesFound:    1,
			ProcessingTime: 2.4,
		},
	}

	svc := NewService(getter)
	report, err := svc.Export(context.Background(), record.ID, record.UserID)
	require.NoError(t, err)

	html := string(report.HTML)
	assert.Contains(t, html, "Q3 Churn")
	assert.Contains(t, html, "Performance")
	assert.Contains(t, html, "67%")
	assert.Contains(t, html, "Too slow")
	assert.Contains(t, html, "Profile the hot paths")
	assert.Contains(t, html, "3 feedback entries")
	assert.Contains(t, report.Filename, record.ID.String())
}

func TestExport_EscapesUserContent(t *testing.T) {
	record, err := entities.NewFeedbackAnalysis(uuid.New(), nil, `<script>alert(1)</script>`, []string{"x"})
	require.NoError(t, err)

	getter := &fakeGetter{
		record: record,
		results: &entities.AnalysisResults{
			Themes:      []entities.FeedbackTheme{{Name: "X", Summary: "y", Percentage: 1}},
			ThemesFound: 1,
		},
	}

	report, err := NewService(getter).Export(context.Background(), record.ID, record.UserID)
	require.NoError(t, err)
	assert.NotContains(t, string(report.HTML), "<script>alert(1)</script>")
}

func TestExport_PendingAnalysisNotFound(t *testing.T) {
	record, err := entities.NewFeedbackAnalysis(uuid.New(), nil, "Pending", []string{"x"})
	require.NoError(t, err)

	svc := NewService(&fakeGetter{record: record, results: nil})

	_, err = svc.Export(context.Background(), record.ID, record.UserID)
	require.Error(t, err)

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_NOT_FOUND, appErr.Code)
}
