package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dropofflens/dropofflens/internal/domain/entities"
	"github.com/dropofflens/dropofflens/internal/domain/repositories"
)

// commentRepository implements the CommentRepository interface
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) repositories.CommentRepository {
	return &commentRepository{db: db}
}

// Create persists a new comment
func (r *commentRepository) Create(ctx context.Context, comment *entities.AnalysisComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// FindByID retrieves one comment
func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.AnalysisComment, error) {
	var comment entities.AnalysisComment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&comment).Error

	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindByAnalysisID lists an analysis' comments oldest first with authors
func (r *commentRepository) FindByAnalysisID(ctx context.Context, analysisID uuid.UUID) ([]*entities.AnalysisComment, error) {
	var comments []*entities.AnalysisComment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("analysis_id = ?", analysisID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// UpdateContent replaces the comment text and bumps updated_at
func (r *commentRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	return r.db.WithContext(ctx).
		Model(&entities.AnalysisComment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":    content,
			"updated_at": gorm.Expr("NOW()"),
		}).
		Error
}

// Delete removes a comment
func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&entities.AnalysisComment{}, id).
		Error
}
