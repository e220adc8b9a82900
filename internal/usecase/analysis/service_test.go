package analysis

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	apperrors "github.com/dropofflens/dropofflens/errors"
	"github.com/dropofflens/dropofflens/internal/domain/entities"
	"github.com/dropofflens/dropofflens/internal/domain/repositories"
	"github.com/dropofflens/dropofflens/internal/infrastructure/cache"
	"github.com/dropofflens/dropofflens/pkg/ai"
	"github.com/dropofflens/dropofflens/pkg/config"
)

type fakeCompleter struct {
	mu        sync.Mutex
	calls     int
	responses []func() (string, error)
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, _ []ai.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.calls
	f.calls++
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx]()
}

func respond(content string) func() (string, error) {
	return func() (string, error) { return content, nil }
}

func fail(err error) func() (string, error) {
	return func() (string, error) { return "", err }
}

type fakeAnalysisRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*entities.FeedbackAnalysis
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{records: make(map[uuid.UUID]*entities.FeedbackAnalysis)}
}

func (f *fakeAnalysisRepo) Create(_ context.Context, a *entities.FeedbackAnalysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.records[a.ID] = &cp
	return nil
}

func (f *fakeAnalysisRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.FeedbackAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *record
	return &cp, nil
}

func (f *fakeAnalysisRepo) AttachResults(_ context.Context, id uuid.UUID, results datatypes.JSON, processingTimeMs int, expectedRevision int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if record.Revision != expectedRevision {
		return apperrors.ErrConflict("Analysis")
	}
	record.AnalysisResults = results
	record.ProcessingTimeMs = &processingTimeMs
	record.Revision++
	return nil
}

func (f *fakeAnalysisRepo) UpdateDetails(_ context.Context, id uuid.UUID, update repositories.AnalysisUpdate, expectedRevision int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if record.Revision != expectedRevision {
		return apperrors.ErrConflict("Analysis")
	}
	if update.Title != nil {
		record.Title = *update.Title
	}
	if update.Description != nil {
		record.Description = update.Description
	}
	if update.IsShared != nil {
		record.IsShared = *update.IsShared
	}
	if update.SharedWith != nil {
		record.SharedWith = update.SharedWith
	}
	if update.Results != nil {
		record.AnalysisResults = update.Results
	}
	record.Revision++
	return nil
}

func (f *fakeAnalysisRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit int) ([]*entities.FeedbackAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.FeedbackAnalysis
	for _, r := range f.records {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeAnalysisRepo) FindByTeamID(_ context.Context, teamID uuid.UUID, limit int) ([]*entities.FeedbackAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.FeedbackAnalysis
	for _, r := range f.records {
		if r.TeamID != nil && *r.TeamID == teamID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeAnalysisRepo) FindShared(_ context.Context, userID uuid.UUID, limit int) ([]*entities.FeedbackAnalysis, error) {
	return nil, nil
}

func fastRetryConfig() *config.OpenAIConfig {
	return &config.OpenAIConfig{
		RetryInitialInterval: time.Millisecond,
		RetryMaxInterval:     2 * time.Millisecond,
		RetryMaxElapsed:      50 * time.Millisecond,
	}
}

const validResponse = `{"themes":[{"name":"Performance","summary":"The product is too slow.","percentage":67,"quotes":["Too slow","Too slow and buggy"],"suggestedAction":"Fix the slow paths"},{"name":"Pricing","summary":"The price is too high.","percentage":33,"quotes":["Too expensive"],"suggestedAction":"Add a cheaper tier"}]}`

func TestAnalyze_Success(t *testing.T) {
	repo := newFakeAnalysisRepo()
	client := &fakeCompleter{responses: []func() (string, error){respond(validResponse)}}
	store := cache.NewMemoryStore(time.Minute)
	defer store.Close()
	svc := NewService(repo, client, store, fastRetryConfig(), zap.NewNop())

	userID := uuid.New()
	entries := []string{"Too slow", "Too expensive", "Too slow and buggy"}

	record, results, err := svc.Analyze(context.Background(), userID, nil, "Q3 churn", nil, entries)
	require.NoError(t, err)

	assert.Equal(t, 3, results.TotalFeedback)
	assert.Equal(t, 2, results.ThemesFound)
	assert.Len(t, results.Themes, 2)
	assert.Equal(t, []string{"Too slow", "Too slow and buggy"}, results.Themes[0].Quotes)
	assert.GreaterOrEqual(t, results.ProcessingTime, 0.0)

	stored, err := repo.FindByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted())
	require.NotNil(t, stored.ProcessingTimeMs)
	assert.Equal(t, 1, stored.Revision)

	storedResults, err := stored.Results()
	require.NoError(t, err)
	assert.Equal(t, results.ThemesFound, storedResults.ThemesFound)

	// Completed results land in the cache
	cached, ok := store.Get(context.Background(), record.ID.String())
	require.True(t, ok)
	var cachedResults entities.AnalysisResults
	require.NoError(t, json.Unmarshal([]byte(cached), &cachedResults))
	assert.Equal(t, results.ThemesFound, cachedResults.ThemesFound)
}

func TestAnalyze_MalformedResponseKeepsPendingRecord(t *testing.T) {
	repo := newFakeAnalysisRepo()
	client := &fakeCompleter{responses: []func() (string, error){respond("not even json")}}
	svc := NewService(repo, client, nil, fastRetryConfig(), zap.NewNop())

	record, _, err := svc.Analyze(context.Background(), uuid.New(), nil, "", nil, []string{"Too slow"})
	require.Error(t, err)

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_AI_ANALYSIS_FAILED, appErr.Code)

	// No retry on a contract violation
	assert.Equal(t, 1, client.calls)

	// The pending record survives for later inspection
	stored, err := repo.FindByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsCompleted())
}

func TestAnalyze_RetriesTransientFailures(t *testing.T) {
	repo := newFakeAnalysisRepo()
	client := &fakeCompleter{responses: []func() (string, error){
		fail(&ai.APIError{StatusCode: 500}),
		fail(&ai.APIError{StatusCode: 429}),
		respond(validResponse),
	}}
	svc := NewService(repo, client, nil, fastRetryConfig(), zap.NewNop())

	_, results, err := svc.Analyze(context.Background(), uuid.New(), nil, "", nil, []string{"Too slow", "Too expensive", "Too slow and buggy"})
	require.NoError(t, err)
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, 2, results.ThemesFound)
}

func TestAnalyze_ClientErrorNotRetried(t *testing.T) {
	repo := newFakeAnalysisRepo()
	client := &fakeCompleter{responses: []func() (string, error){
		fail(&ai.APIError{StatusCode: 400}),
	}}
	svc := NewService(repo, client, nil, fastRetryConfig(), zap.NewNop())

	_, _, err := svc.Analyze(context.Background(), uuid.New(), nil, "", nil, []string{"Too slow"})
	require.Error(t, err)
	assert.Equal(t, 1, client.calls)
}

func TestAnalyze_BreakerOpenFailsFast(t *testing.T) {
	repo := newFakeAnalysisRepo()
	client := &fakeCompleter{responses: []func() (string, error){fail(ai.ErrBreakerOpen)}}
	svc := NewService(repo, client, nil, fastRetryConfig(), zap.NewNop())

	_, _, err := svc.Analyze(context.Background(), uuid.New(), nil, "", nil, []string{"Too slow"})
	require.Error(t, err)
	assert.Equal(t, 1, client.calls)

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_AI_SERVICE_UNAVAILABLE, appErr.Code)
}

func TestAnalyze_EmptyEntriesRejected(t *testing.T) {
	svc := NewService(newFakeAnalysisRepo(), &fakeCompleter{}, nil, fastRetryConfig(), zap.NewNop())

	_, _, err := svc.Analyze(context.Background(), uuid.New(), nil, "", nil, nil)
	require.Error(t, err)

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_INVALID_ARGUMENT, appErr.Code)
}

func TestUpdate_NonOwnerDenied(t *testing.T) {
	repo := newFakeAnalysisRepo()
	owner := uuid.New()
	record, err := entities.NewFeedbackAnalysis(owner, nil, "Mine", []string{"Too slow"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), record))

	svc := NewService(repo, &fakeCompleter{}, nil, fastRetryConfig(), zap.NewNop())

	title := "Stolen"
	_, err = svc.Update(context.Background(), record.ID, uuid.New(), UpdateInput{Title: &title})
	require.Error(t, err)

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_PERMISSION_DENIED, appErr.Code)
}

func TestUpdate_StaleRevisionConflicts(t *testing.T) {
	repo := newFakeAnalysisRepo()
	owner := uuid.New()
	record, err := entities.NewFeedbackAnalysis(owner, nil, "Mine", []string{"Too slow"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), record))

	// Another writer moves the revision between read and write
	svc := NewService(repo, &fakeCompleter{}, nil, fastRetryConfig(), zap.NewNop())
	title := "First"
	_, err = svc.Update(context.Background(), record.ID, owner, UpdateInput{Title: &title})
	require.NoError(t, err)

	// Force a stale write directly against the repo
	err = repo.UpdateDetails(context.Background(), record.ID, repositories.AnalysisUpdate{Title: &title}, 0)
	require.Error(t, err)

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_CONFLICT, appErr.Code)
}

func TestUpdate_EditedThemeCountStaysConsistent(t *testing.T) {
	repo := newFakeAnalysisRepo()
	owner := uuid.New()
	record, err := entities.NewFeedbackAnalysis(owner, nil, "Mine", []string{"Too slow"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), record))

	seed := entities.AnalysisResults{
		Themes: []entities.FeedbackTheme{
			{ID: uuid.NewString(), Name: "Performance", Summary: "slow", Percentage: 100, Quotes: []string{"Too slow"}},
		},
		TotalFeedback: 1,
		ThemesFound:   1,
	}
	payload, err := json.Marshal(seed)
	require.NoError(t, err)
	require.NoError(t, repo.AttachResults(context.Background(), record.ID, payload, 5, 0))

	svc := NewService(repo, &fakeCompleter{}, nil, fastRetryConfig(), zap.NewNop())

	edited := seed
	edited.Themes[0].Name = "Speed"
	edited.Themes[0].IsEdited = true
	edited.ThemesFound = 99    // deliberately wrong, must be recomputed
	edited.TotalFeedback = 999 // likewise, must match the stored feedback

	updated, err := svc.Update(context.Background(), record.ID, owner, UpdateInput{Results: &edited})
	require.NoError(t, err)

	results, err := updated.Results()
	require.NoError(t, err)
	assert.Equal(t, 1, results.ThemesFound)
	assert.Equal(t, 1, results.TotalFeedback)
	assert.Equal(t, "Speed", results.Themes[0].Name)
	assert.True(t, results.Themes[0].IsEdited)
}

func TestGet_CachesCompletedResults(t *testing.T) {
	repo := newFakeAnalysisRepo()
	owner := uuid.New()
	record, err := entities.NewFeedbackAnalysis(owner, nil, "Mine", []string{"Too slow"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), record))

	first := entities.AnalysisResults{
		Themes: []entities.FeedbackTheme{
			{ID: uuid.NewString(), Name: "Performance", Summary: "slow", Percentage: 100, Quotes: []string{"Too slow"}},
		},
		TotalFeedback: 1,
		ThemesFound:   1,
	}
	payload, err := json.Marshal(first)
	require.NoError(t, err)
	require.NoError(t, repo.AttachResults(context.Background(), record.ID, payload, 5, 0))

	store := cache.NewMemoryStore(time.Minute)
	defer store.Close()
	svc := NewService(repo, &fakeCompleter{}, store, fastRetryConfig(), zap.NewNop())

	// First read misses and populates the cache
	_, results, err := svc.Get(context.Background(), record.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Performance", results.Themes[0].Name)
	_, ok := store.Get(context.Background(), record.ID.String())
	assert.True(t, ok)

	// A write that bypasses the service leaves the cache untouched; the
	// next read is a hit and still sees the cached results
	second := first
	second.Themes = []entities.FeedbackTheme{
		{ID: uuid.NewString(), Name: "Pricing", Summary: "expensive", Percentage: 100, Quotes: []string{"Too slow"}},
	}
	stale, err := json.Marshal(second)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateDetails(context.Background(), record.ID, repositories.AnalysisUpdate{Results: stale}, 1))

	_, results, err = svc.Get(context.Background(), record.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Performance", results.Themes[0].Name)

	// An owner update invalidates; the read after it sees the new results
	title := "Renamed"
	_, err = svc.Update(context.Background(), record.ID, owner, UpdateInput{Title: &title})
	require.NoError(t, err)

	_, results, err = svc.Get(context.Background(), record.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Pricing", results.Themes[0].Name)
}

func TestGet_CorruptCacheEntryReplaced(t *testing.T) {
	repo := newFakeAnalysisRepo()
	owner := uuid.New()
	record, err := entities.NewFeedbackAnalysis(owner, nil, "Mine", []string{"Too slow"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), record))

	seed := entities.AnalysisResults{
		Themes: []entities.FeedbackTheme{
			{ID: uuid.NewString(), Name: "Performance", Summary: "slow", Percentage: 100, Quotes: []string{"Too slow"}},
		},
		TotalFeedback: 1,
		ThemesFound:   1,
	}
	payload, err := json.Marshal(seed)
	require.NoError(t, err)
	require.NoError(t, repo.AttachResults(context.Background(), record.ID, payload, 5, 0))

	store := cache.NewMemoryStore(time.Minute)
	defer store.Close()
	store.Set(context.Background(), record.ID.String(), "{not json")

	svc := NewService(repo, &fakeCompleter{}, store, fastRetryConfig(), zap.NewNop())

	_, results, err := svc.Get(context.Background(), record.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Performance", results.Themes[0].Name)

	// The unreadable entry was dropped and replaced with the stored payload
	cached, ok := store.Get(context.Background(), record.ID.String())
	require.True(t, ok)
	var cachedResults entities.AnalysisResults
	require.NoError(t, json.Unmarshal([]byte(cached), &cachedResults))
	assert.Equal(t, "Performance", cachedResults.Themes[0].Name)
}

func TestGet_Visibility(t *testing.T) {
	repo := newFakeAnalysisRepo()
	owner := uuid.New()
	stranger := uuid.New()
	friend := uuid.New()

	record, err := entities.NewFeedbackAnalysis(owner, nil, "Mine", []string{"Too slow"})
	require.NoError(t, err)
	record.IsShared = true
	shared, _ := json.Marshal([]uuid.UUID{friend})
	record.SharedWith = shared
	require.NoError(t, repo.Create(context.Background(), record))

	svc := NewService(repo, &fakeCompleter{}, nil, fastRetryConfig(), zap.NewNop())

	_, _, err = svc.Get(context.Background(), record.ID, owner)
	assert.NoError(t, err)

	_, _, err = svc.Get(context.Background(), record.ID, friend)
	assert.NoError(t, err)

	_, _, err = svc.Get(context.Background(), record.ID, stranger)
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_PERMISSION_DENIED, appErr.Code)
}
