package presenter

import (
	"encoding/json"

	analysisDTO "github.com/dropofflens/dropofflens/internal/adapter/dto/analysis"
	"github.com/dropofflens/dropofflens/internal/domain/entities"
)

const (
	statusCreated   = "created"
	statusCompleted = "completed"
)

// ToAnalysisResponse converts a FeedbackAnalysis entity to its full DTO.
// Results may be passed separately when already decoded (e.g. from cache);
// pass nil to decode from the entity.
func ToAnalysisResponse(a *entities.FeedbackAnalysis, results *entities.AnalysisResults) *analysisDTO.AnalysisResponse {
	if a == nil {
		return nil
	}

	if results == nil {
		results, _ = a.Results()
	}

	status := statusCreated
	if a.IsCompleted() {
		status = statusCompleted
	}

	feedback, _ := a.Feedback()

	response := &analysisDTO.AnalysisResponse{
		ID:               a.ID.String(),
		UserID:           a.UserID.String(),
		Title:            a.Title,
		Description:      a.Description,
		FeedbackData:     feedback,
		Results:          results,
		ProcessingTimeMs: a.ProcessingTimeMs,
		IsShared:         a.IsShared,
		Revision:         a.Revision,
		Status:           status,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}

	if a.TeamID != nil {
		teamID := a.TeamID.String()
		response.TeamID = &teamID
	}
	if a.SharedWith != nil {
		var shared []string
		if err := json.Unmarshal(a.SharedWith, &shared); err == nil {
			response.SharedWith = shared
		}
	}

	return response
}

// ToAnalysisSummaryResponse converts an analysis to its listing shape
func ToAnalysisSummaryResponse(a *entities.FeedbackAnalysis) *analysisDTO.AnalysisSummaryResponse {
	if a == nil {
		return nil
	}

	status := statusCreated
	totalFeedback := 0
	themesFound := 0

	if feedback, err := a.Feedback(); err == nil {
		totalFeedback = len(feedback)
	}
	if results, err := a.Results(); err == nil && results != nil {
		status = statusCompleted
		totalFeedback = results.TotalFeedback
		themesFound = results.ThemesFound
	}

	return &analysisDTO.AnalysisSummaryResponse{
		ID:            a.ID.String(),
		Title:         a.Title,
		Description:   a.Description,
		TotalFeedback: totalFeedback,
		ThemesFound:   themesFound,
		Status:        status,
		IsShared:      a.IsShared,
		CreatedAt:     a.CreatedAt,
	}
}

// ToListAnalysesResponse converts a slice of analyses to the listing DTO
func ToListAnalysesResponse(analyses []*entities.FeedbackAnalysis) *analysisDTO.ListAnalysesResponse {
	summaries := make([]*analysisDTO.AnalysisSummaryResponse, 0, len(analyses))
	for _, a := range analyses {
		summaries = append(summaries, ToAnalysisSummaryResponse(a))
	}
	return &analysisDTO.ListAnalysesResponse{
		Analyses: summaries,
		Total:    len(summaries),
	}
}
