package analysis

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/dropofflens/dropofflens/errors"
	"github.com/dropofflens/dropofflens/internal/domain/entities"
	"github.com/dropofflens/dropofflens/internal/domain/repositories"
	"github.com/dropofflens/dropofflens/internal/infrastructure/cache"
	"github.com/dropofflens/dropofflens/pkg/ai"
	"github.com/dropofflens/dropofflens/pkg/config"
)

// Completer abstracts the chat completion provider
type Completer interface {
	CompleteJSON(ctx context.Context, messages []ai.Message) (string, error)
}

// Service runs feedback theme extraction and owns the analysis lifecycle
type Service struct {
	analyses repositories.AnalysisRepository
	client   Completer
	results  cache.ResultsCache
	logger   *zap.Logger

	retryInitial time.Duration
	retryMax     time.Duration
	retryElapsed time.Duration
}

// NewService creates a new analysis service
func NewService(
	analyses repositories.AnalysisRepository,
	client Completer,
	results cache.ResultsCache,
	cfg *config.OpenAIConfig,
	logger *zap.Logger,
) *Service {
	s := &Service{
		analyses:     analyses,
		client:       client,
		results:      results,
		logger:       logger,
		retryInitial: 2 * time.Second,
		retryMax:     10 * time.Second,
		retryElapsed: 30 * time.Second,
	}
	if cfg != nil {
		if cfg.RetryInitialInterval > 0 {
			s.retryInitial = cfg.RetryInitialInterval
		}
		if cfg.RetryMaxInterval > 0 {
			s.retryMax = cfg.RetryMaxInterval
		}
		if cfg.RetryMaxElapsed > 0 {
			s.retryElapsed = cfg.RetryMaxElapsed
		}
	}
	return s
}

// Analyze persists a pending analysis, extracts themes and attaches the
// results. On extraction failure the pending record is kept so the raw
// feedback is never lost.
func (s *Service) Analyze(ctx context.Context, userID uuid.UUID, teamID *uuid.UUID, title string, description *string, entries []string) (*entities.FeedbackAnalysis, *entities.AnalysisResults, error) {
	if len(entries) == 0 {
		return nil, nil, apperrors.ErrInvalidArgument("No feedback entries provided")
	}

	record, err := entities.NewFeedbackAnalysis(userID, teamID, title, entries)
	if err != nil {
		return nil, nil, apperrors.ErrInternal(err)
	}
	record.Description = description
	if err := s.analyses.Create(ctx, record); err != nil {
		return nil, nil, apperrors.ErrDBQueryFailed("create analysis", err)
	}

	start := time.Now()
	results, err := s.extract(ctx, entries)
	if err != nil {
		s.logger.Error("Theme extraction failed",
			zap.String("analysis_id", record.ID.String()),
			zap.Int("entries", len(entries)),
			zap.Error(err))
		if stdErrors.Is(err, ai.ErrBreakerOpen) {
			return record, nil, apperrors.ErrAIServiceUnavailable("openai")
		}
		return record, nil, apperrors.ErrAIAnalysisFailed(err)
	}

	elapsed := time.Since(start)
	results.ProcessingTime = elapsed.Seconds()

	payload, err := json.Marshal(results)
	if err != nil {
		return record, nil, apperrors.ErrInternal(err)
	}

	if err := s.analyses.AttachResults(ctx, record.ID, payload, int(elapsed.Milliseconds()), record.Revision); err != nil {
		return record, nil, wrapRepoErr("attach results", err)
	}

	record.AnalysisResults = payload
	ms := int(elapsed.Milliseconds())
	record.ProcessingTimeMs = &ms
	record.Revision++

	if s.results != nil {
		s.results.Set(ctx, record.ID.String(), string(payload))
	}

	s.logger.Info("Analysis completed",
		zap.String("analysis_id", record.ID.String()),
		zap.Int("total_feedback", results.TotalFeedback),
		zap.Int("themes_found", results.ThemesFound),
		zap.Duration("processing_time", elapsed))

	return record, results, nil
}

// extract calls the model with bounded exponential backoff. Only transient
// failures are retried; a malformed response or an open breaker fails fast.
func (s *Service) extract(ctx context.Context, entries []string) (*entities.AnalysisResults, error) {
	messages := []ai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(entries)},
	}

	var results *entities.AnalysisResults

	operation := func() error {
		raw, err := s.client.CompleteJSON(ctx, messages)
		if err != nil {
			if stdErrors.Is(err, ai.ErrBreakerOpen) {
				return backoff.Permanent(err)
			}
			var apiErr *ai.APIError
			if stdErrors.As(err, &apiErr) && !apiErr.Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}

		parsed, err := parseResults(raw, entries)
		if err != nil {
			// The model answered but broke the contract; retrying with the
			// same prompt is unlikely to help.
			return backoff.Permanent(err)
		}

		results = parsed
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retryInitial
	bo.MaxInterval = s.retryMax
	bo.MaxElapsedTime = s.retryElapsed

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return results, nil
}

// Get returns an analysis visible to the requester, serving completed
// results from cache when possible
func (s *Service) Get(ctx context.Context, id, requesterID uuid.UUID) (*entities.FeedbackAnalysis, *entities.AnalysisResults, error) {
	record, err := s.analyses.FindByID(ctx, id)
	if err != nil {
		return nil, nil, wrapRepoErr("find analysis", err)
	}

	if !canView(record, requesterID) {
		return nil, nil, apperrors.ErrPermissionDenied("view analysis")
	}

	if s.results != nil {
		if cached, ok := s.results.Get(ctx, id.String()); ok {
			var results entities.AnalysisResults
			if err := json.Unmarshal([]byte(cached), &results); err == nil {
				return record, &results, nil
			}
			s.results.Invalidate(ctx, id.String())
		}
	}

	results, err := record.Results()
	if err != nil {
		return nil, nil, apperrors.ErrInternal(err)
	}
	if results != nil && s.results != nil {
		s.results.Set(ctx, id.String(), string(record.AnalysisResults))
	}

	return record, results, nil
}

// UpdateInput carries the owner-editable fields of an analysis
type UpdateInput struct {
	Title       *string
	Description *string
	IsShared    *bool
	SharedWith  []uuid.UUID
	Results     *entities.AnalysisResults
}

// Update applies owner edits with optimistic concurrency. Edited results are
// re-validated so the theme count stays consistent, and cached results are
// invalidated.
func (s *Service) Update(ctx context.Context, id, requesterID uuid.UUID, input UpdateInput) (*entities.FeedbackAnalysis, error) {
	record, err := s.analyses.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr("find analysis", err)
	}

	if record.UserID != requesterID {
		return nil, apperrors.ErrPermissionDenied("update analysis")
	}

	update := repositories.AnalysisUpdate{
		Title:       input.Title,
		Description: input.Description,
		IsShared:    input.IsShared,
	}

	if input.SharedWith != nil {
		shared, err := json.Marshal(input.SharedWith)
		if err != nil {
			return nil, apperrors.ErrInternal(err)
		}
		update.SharedWith = shared
	}

	if input.Results != nil {
		if !record.IsCompleted() {
			return nil, apperrors.ErrInvalidArgument("Analysis has no results to edit")
		}
		feedback, err := record.Feedback()
		if err != nil {
			return nil, apperrors.ErrInternal(err)
		}
		// Counts are derived from stored data, never trusted from the edit
		input.Results.ThemesFound = len(input.Results.Themes)
		input.Results.TotalFeedback = len(feedback)
		payload, err := json.Marshal(input.Results)
		if err != nil {
			return nil, apperrors.ErrInternal(err)
		}
		update.Results = payload
	}

	if err := s.analyses.UpdateDetails(ctx, id, update, record.Revision); err != nil {
		return nil, wrapRepoErr("update analysis", err)
	}

	if s.results != nil {
		s.results.Invalidate(ctx, id.String())
	}

	refreshed, err := s.analyses.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr("find analysis", err)
	}
	return refreshed, nil
}

// UserAnalyses lists the requester's analyses, newest first
func (s *Service) UserAnalyses(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.FeedbackAnalysis, error) {
	analyses, err := s.analyses.FindByUserID(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list user analyses", err)
	}
	return analyses, nil
}

// TeamAnalyses lists a team's analyses, newest first
func (s *Service) TeamAnalyses(ctx context.Context, teamID uuid.UUID, limit int) ([]*entities.FeedbackAnalysis, error) {
	analyses, err := s.analyses.FindByTeamID(ctx, teamID, limit)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list team analyses", err)
	}
	return analyses, nil
}

// SharedAnalyses lists analyses shared with the requester, newest first
func (s *Service) SharedAnalyses(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.FeedbackAnalysis, error) {
	analyses, err := s.analyses.FindShared(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list shared analyses", err)
	}
	return analyses, nil
}

// canView allows the owner, anyone the analysis was shared with, and any
// requester when the analysis is marked shared without an explicit list
func canView(record *entities.FeedbackAnalysis, requesterID uuid.UUID) bool {
	if record.UserID == requesterID {
		return true
	}
	if !record.IsShared {
		return false
	}
	if len(record.SharedWith) == 0 {
		return true
	}

	var shared []uuid.UUID
	if err := json.Unmarshal(record.SharedWith, &shared); err != nil {
		return false
	}
	for _, id := range shared {
		if id == requesterID {
			return true
		}
	}
	return false
}

// wrapRepoErr maps repository errors onto the application error taxonomy,
// passing through errors that already carry an HTTP mapping
func wrapRepoErr(op string, err error) error {
	if _, ok := apperrors.IsAppError(err); ok {
		return err
	}
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound("Analysis")
	}
	return apperrors.ErrDBQueryFailed(op, err)
}
