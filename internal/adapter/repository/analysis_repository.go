package repository

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "github.com/dropofflens/dropofflens/errors"
	"github.com/dropofflens/dropofflens/internal/domain/entities"
	"github.com/dropofflens/dropofflens/internal/domain/repositories"
)

// analysisRepository implements the AnalysisRepository interface
type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *gorm.DB) repositories.AnalysisRepository {
	return &analysisRepository{db: db}
}

// Create persists a pending analysis
func (r *analysisRepository) Create(ctx context.Context, analysis *entities.FeedbackAnalysis) error {
	return r.db.WithContext(ctx).Create(analysis).Error
}

// FindByID retrieves an analysis with its user and team
func (r *analysisRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.FeedbackAnalysis, error) {
	var analysis entities.FeedbackAnalysis
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Team").
		Where("id = ?", id).
		First(&analysis).Error

	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// AttachResults writes extraction results conditional on the read revision.
// A lost race returns a conflict instead of silently overwriting.
func (r *analysisRepository) AttachResults(ctx context.Context, id uuid.UUID, results datatypes.JSON, processingTimeMs int, expectedRevision int) error {
	result := r.db.WithContext(ctx).
		Model(&entities.FeedbackAnalysis{}).
		Where("id = ? AND revision = ?", id, expectedRevision).
		Updates(map[string]interface{}{
			"analysis_results":   results,
			"processing_time_ms": processingTimeMs,
			"revision":           gorm.Expr("revision + 1"),
			"updated_at":         gorm.Expr("NOW()"),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.casFailure(ctx, id)
	}
	return nil
}

// UpdateDetails applies descriptive-field changes with compare-and-swap
// semantics on the revision column.
func (r *analysisRepository) UpdateDetails(ctx context.Context, id uuid.UUID, update repositories.AnalysisUpdate, expectedRevision int) error {
	fields := map[string]interface{}{
		"revision":   gorm.Expr("revision + 1"),
		"updated_at": gorm.Expr("NOW()"),
	}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.IsShared != nil {
		fields["is_shared"] = *update.IsShared
	}
	if update.SharedWith != nil {
		fields["shared_with"] = update.SharedWith
	}
	if update.Results != nil {
		fields["analysis_results"] = update.Results
	}

	result := r.db.WithContext(ctx).
		Model(&entities.FeedbackAnalysis{}).
		Where("id = ? AND revision = ?", id, expectedRevision).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.casFailure(ctx, id)
	}
	return nil
}

// casFailure distinguishes a missing record from a lost revision race
func (r *analysisRepository) casFailure(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.FeedbackAnalysis{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return apperrors.ErrConflict("Analysis")
}

// FindByUserID lists a user's analyses, newest first
func (r *analysisRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.FeedbackAnalysis, error) {
	return r.findAnalyses(ctx, "user_id = ?", userID, limit)
}

// FindByTeamID lists a team's analyses, newest first
func (r *analysisRepository) FindByTeamID(ctx context.Context, teamID uuid.UUID, limit int) ([]*entities.FeedbackAnalysis, error) {
	return r.findAnalyses(ctx, "team_id = ?", teamID, limit)
}

// FindShared lists analyses shared with the given user, newest first
func (r *analysisRepository) FindShared(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.FeedbackAnalysis, error) {
	var analyses []*entities.FeedbackAnalysis
	err := r.db.WithContext(ctx).
		Where("is_shared = ? AND shared_with @> ?", true, datatypes.JSON(`["`+userID.String()+`"]`)).
		Order("created_at DESC").
		Limit(limit).
		Find(&analyses).Error
	return analyses, err
}

func (r *analysisRepository) findAnalyses(ctx context.Context, cond string, arg interface{}, limit int) ([]*entities.FeedbackAnalysis, error) {
	if limit <= 0 {
		limit = 50
	}

	var analyses []*entities.FeedbackAnalysis
	err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("created_at DESC").
		Limit(limit).
		Find(&analyses).Error
	return analyses, err
}

// IsNotFound reports whether the error is a missing-record error
func IsNotFound(err error) bool {
	return stdErrors.Is(err, gorm.ErrRecordNotFound)
}
