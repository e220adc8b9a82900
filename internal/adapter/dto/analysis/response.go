package analysis

import (
	"time"

	"github.com/dropofflens/dropofflens/internal/domain/entities"
)

// UploadCSVResponse represents the result of a CSV upload
type UploadCSVResponse struct {
	Success      bool     `json:"success"`
	Data         []string `json:"data"`
	Preview      []string `json:"preview"`
	Filename     string   `json:"filename"`
	TotalEntries int      `json:"totalEntries"`
}

// AnalysisResponse represents one analysis in responses
type AnalysisResponse struct {
	ID               string                    `json:"id"`
	UserID           string                    `json:"user_id"`
	TeamID           *string                   `json:"team_id,omitempty"`
	Title            string                    `json:"title"`
	Description      *string                   `json:"description,omitempty"`
	FeedbackData     []string                  `json:"feedback_data,omitempty"`
	Results          *entities.AnalysisResults `json:"results,omitempty"`
	ProcessingTimeMs *int                      `json:"processing_time_ms,omitempty"`
	IsShared         bool                      `json:"is_shared"`
	SharedWith       []string                  `json:"shared_with,omitempty"`
	Revision         int                       `json:"revision"`
	Status           string                    `json:"status"` // "created" or "completed"
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

// AnalysisSummaryResponse is the compact shape used in listings
type AnalysisSummaryResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description,omitempty"`
	TotalFeedback int       `json:"total_feedback"`
	ThemesFound   int       `json:"themes_found"`
	Status        string    `json:"status"`
	IsShared      bool      `json:"is_shared"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListAnalysesResponse represents a list of analyses
type ListAnalysesResponse struct {
	Analyses []*AnalysisSummaryResponse `json:"analyses"`
	Total    int                        `json:"total"`
}
