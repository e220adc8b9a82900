package repositories

import (
	"context"

	"github.com/dropofflens/dropofflens/internal/domain/entities"
	"github.com/google/uuid"
)

// CommentRepository defines the interface for analysis comment data access
type CommentRepository interface {
	// Create persists a new comment
	Create(ctx context.Context, comment *entities.AnalysisComment) error

	// FindByID retrieves one comment
	FindByID(ctx context.Context, id uuid.UUID) (*entities.AnalysisComment, error)

	// FindByAnalysisID lists an analysis' comments oldest first, each
	// enriched with its author
	FindByAnalysisID(ctx context.Context, analysisID uuid.UUID) ([]*entities.AnalysisComment, error)

	// UpdateContent replaces the comment text and bumps updated_at
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error

	// Delete removes a comment
	Delete(ctx context.Context, id uuid.UUID) error
}
