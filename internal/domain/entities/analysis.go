package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FeedbackTheme is one clustered churn reason extracted from feedback
type FeedbackTheme struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Summary         string   `json:"summary"`
	Percentage      float64  `json:"percentage"`
	Quotes          []string `json:"quotes"`
	SuggestedAction string   `json:"suggestedAction"`
	IsEdited        bool     `json:"isEdited"`
}

// ResultFilters are the client-side view filters stored with results
type ResultFilters struct {
	SortBy        string  `json:"sortBy,omitempty"`
	SortOrder     string  `json:"sortOrder,omitempty"`
	MinPercentage float64 `json:"minPercentage,omitempty"`
	SearchQuery   string  `json:"searchQuery,omitempty"`
}

// AnalysisResults is the full extraction output for one feedback batch.
// Invariants: ThemesFound == len(Themes); TotalFeedback equals the count of
// submitted entries, never recomputed from quotes.
type AnalysisResults struct {
	Themes         []FeedbackTheme `json:"themes"`
	TotalFeedback  int             `json:"totalFeedback"`
	ThemesFound    int             `json:"themesFound"`
	ProcessingTime float64         `json:"processingTime"` // seconds
	Filters        *ResultFilters  `json:"filters,omitempty"`
}

// FeedbackAnalysis is one submitted feedback batch plus its extracted themes.
// Lifecycle: created with AnalysisResults null, completed exactly once when
// extraction succeeds; a failed extraction leaves the record created forever.
type FeedbackAnalysis struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	User        *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	TeamID      *uuid.UUID `json:"team_id,omitempty" gorm:"type:uuid;index"`
	Team        *Team      `json:"team,omitempty" gorm:"foreignKey:TeamID"`
	Title       string     `json:"title" gorm:"type:varchar(255);not null;default:'Untitled Analysis'"`
	Description *string    `json:"description,omitempty" gorm:"type:text"`

	FeedbackData    datatypes.JSON `json:"feedback_data" gorm:"type:jsonb;not null"`
	AnalysisResults datatypes.JSON `json:"analysis_results,omitempty" gorm:"type:jsonb"`

	ProcessingTimeMs *int           `json:"processing_time_ms,omitempty"`
	IsShared         bool           `json:"is_shared" gorm:"default:false;not null"`
	SharedWith       datatypes.JSON `json:"shared_with,omitempty" gorm:"type:jsonb"`

	// Optimistic concurrency: writers compare-and-swap on this column.
	Revision int `json:"revision" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for FeedbackAnalysis
func (FeedbackAnalysis) TableName() string {
	return "feedback_analyses"
}

// NewFeedbackAnalysis creates a pending analysis for the given feedback batch
func NewFeedbackAnalysis(userID uuid.UUID, teamID *uuid.UUID, title string, feedback []string) (*FeedbackAnalysis, error) {
	data, err := json.Marshal(feedback)
	if err != nil {
		return nil, fmt.Errorf("failed to encode feedback data: %w", err)
	}

	if title == "" {
		title = "Untitled Analysis"
	}

	return &FeedbackAnalysis{
		ID:           uuid.New(),
		UserID:       userID,
		TeamID:       teamID,
		Title:        title,
		FeedbackData: data,
	}, nil
}

// IsCompleted reports whether extraction has attached results
func (a *FeedbackAnalysis) IsCompleted() bool {
	return len(a.AnalysisResults) > 0 && string(a.AnalysisResults) != "null"
}

// Feedback decodes the stored feedback entries
func (a *FeedbackAnalysis) Feedback() ([]string, error) {
	var entries []string
	if err := json.Unmarshal(a.FeedbackData, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode feedback data: %w", err)
	}
	return entries, nil
}

// Results decodes the stored analysis results, or nil when still pending
func (a *FeedbackAnalysis) Results() (*AnalysisResults, error) {
	if !a.IsCompleted() {
		return nil, nil
	}
	var results AnalysisResults
	if err := json.Unmarshal(a.AnalysisResults, &results); err != nil {
		return nil, fmt.Errorf("failed to decode analysis results: %w", err)
	}
	return &results, nil
}
