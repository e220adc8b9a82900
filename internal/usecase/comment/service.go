package comment

import (
	"context"
	stdErrors "errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/dropofflens/dropofflens/errors"
	"github.com/dropofflens/dropofflens/internal/domain/entities"
	"github.com/dropofflens/dropofflens/internal/domain/repositories"
)

// Service manages comments on analyses
type Service struct {
	comments repositories.CommentRepository
	analyses repositories.AnalysisRepository
	logger   *zap.Logger
}

// NewService creates a new comment service
func NewService(comments repositories.CommentRepository, analyses repositories.AnalysisRepository, logger *zap.Logger) *Service {
	return &Service{
		comments: comments,
		analyses: analyses,
		logger:   logger,
	}
}

// Add creates a comment on an existing analysis
func (s *Service) Add(ctx context.Context, analysisID, authorID uuid.UUID, themeIndex *int, content string) (*entities.AnalysisComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ErrInvalidArgument("Comment content is required")
	}
	if themeIndex != nil && *themeIndex < 0 {
		return nil, apperrors.ErrInvalidArgument("Theme index must not be negative")
	}

	if _, err := s.analyses.FindByID(ctx, analysisID); err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound("Analysis")
		}
		return nil, apperrors.ErrDBQueryFailed("find analysis", err)
	}

	comment := entities.NewAnalysisComment(analysisID, authorID, themeIndex, content)
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create comment", err)
	}

	return comment, nil
}

// List returns an analysis' comments oldest first
func (s *Service) List(ctx context.Context, analysisID uuid.UUID) ([]*entities.AnalysisComment, error) {
	if _, err := s.analyses.FindByID(ctx, analysisID); err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound("Analysis")
		}
		return nil, apperrors.ErrDBQueryFailed("find analysis", err)
	}

	comments, err := s.comments.FindByAnalysisID(ctx, analysisID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list comments", err)
	}
	return comments, nil
}

// Update replaces a comment's text. Author only.
func (s *Service) Update(ctx context.Context, commentID, requesterID uuid.UUID, content string) (*entities.AnalysisComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ErrInvalidArgument("Comment content is required")
	}

	comment, err := s.find(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !comment.IsAuthor(requesterID) {
		return nil, apperrors.ErrPermissionDenied("edit comment")
	}

	if err := s.comments.UpdateContent(ctx, commentID, content); err != nil {
		return nil, apperrors.ErrDBQueryFailed("update comment", err)
	}

	return s.find(ctx, commentID)
}

// Delete removes a comment. Author only.
func (s *Service) Delete(ctx context.Context, commentID, requesterID uuid.UUID) error {
	comment, err := s.find(ctx, commentID)
	if err != nil {
		return err
	}
	if !comment.IsAuthor(requesterID) {
		return apperrors.ErrPermissionDenied("delete comment")
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return apperrors.ErrDBQueryFailed("delete comment", err)
	}
	return nil
}

func (s *Service) find(ctx context.Context, commentID uuid.UUID) (*entities.AnalysisComment, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound("Comment")
		}
		return nil, apperrors.ErrDBQueryFailed("find comment", err)
	}
	return comment, nil
}
