package repositories

import (
	"context"

	"github.com/dropofflens/dropofflens/internal/domain/entities"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnalysisUpdate carries the fields an owner may change, including edited
// theme results. Nil fields are left untouched.
type AnalysisUpdate struct {
	Title       *string
	Description *string
	IsShared    *bool
	SharedWith  datatypes.JSON
	Results     datatypes.JSON
}

// AnalysisRepository defines the interface for feedback analysis data access
type AnalysisRepository interface {
	// Create persists a pending analysis (results still null)
	Create(ctx context.Context, analysis *entities.FeedbackAnalysis) error

	// FindByID retrieves an analysis with its user and team
	FindByID(ctx context.Context, id uuid.UUID) (*entities.FeedbackAnalysis, error)

	// AttachResults writes results and processing time to the record,
	// conditional on the revision read by the caller. Returns a conflict
	// error when the revision moved underneath the writer.
	AttachResults(ctx context.Context, id uuid.UUID, results datatypes.JSON, processingTimeMs int, expectedRevision int) error

	// UpdateDetails applies descriptive-field changes with the same
	// compare-and-swap semantics as AttachResults.
	UpdateDetails(ctx context.Context, id uuid.UUID, update AnalysisUpdate, expectedRevision int) error

	// FindByUserID lists a user's analyses, newest first
	FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.FeedbackAnalysis, error)

	// FindByTeamID lists a team's analyses, newest first
	FindByTeamID(ctx context.Context, teamID uuid.UUID, limit int) ([]*entities.FeedbackAnalysis, error)

	// FindShared lists analyses shared with the given user, newest first
	FindShared(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.FeedbackAnalysis, error)
}
