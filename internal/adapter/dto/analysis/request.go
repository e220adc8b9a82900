package analysis

// AnalyzeRequest represents the request to run theme extraction on a
// feedback batch
type AnalyzeRequest struct {
	FeedbackEntries []string `json:"feedbackEntries" validate:"required,min=1,dive,min=1"`
	Title           string   `json:"title" validate:"omitempty,max=255"`
	Description     *string  `json:"description,omitempty"`
	TeamID          *string  `json:"teamId,omitempty" validate:"omitempty,uuid"`
}

// ThemeUpdate is one edited theme inside an update request
type ThemeUpdate struct {
	ID              string   `json:"id" validate:"required"`
	Name            string   `json:"name" validate:"required,min=1,max=255"`
	Summary         string   `json:"summary" validate:"required"`
	Percentage      float64  `json:"percentage" validate:"min=0,max=100"`
	Quotes          []string `json:"quotes"`
	SuggestedAction string   `json:"suggestedAction"`
	IsEdited        bool     `json:"isEdited"`
}

// ResultsUpdate carries edited extraction results
type ResultsUpdate struct {
	Themes         []ThemeUpdate `json:"themes" validate:"required,min=1,dive"`
	TotalFeedback  int           `json:"totalFeedback"`
	ProcessingTime float64       `json:"processingTime"`
}

// UpdateAnalysisRequest represents the request to update an analysis
type UpdateAnalysisRequest struct {
	Title       *string        `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string        `json:"description,omitempty"`
	IsShared    *bool          `json:"is_shared,omitempty"`
	SharedWith  []string       `json:"shared_with,omitempty" validate:"omitempty,dive,uuid"`
	Results     *ResultsUpdate `json:"results,omitempty"`
}
