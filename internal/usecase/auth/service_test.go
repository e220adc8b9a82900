package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/dropofflens/dropofflens/errors"
	"github.com/dropofflens/dropofflens/internal/domain/entities"
	"github.com/dropofflens/dropofflens/pkg/jwt"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entities.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entities.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *entities.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func newTestService() (*Service, *fakeUserRepo) {
	repo := newFakeUserRepo()
	tokens := jwt.NewManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	return NewService(repo, tokens, zap.NewNop()), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, "Ana@Example.com", "s3cret-pass", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// Password hash is stored, never the raw password
	require.NotNil(t, user.PasswordHash)
	assert.True(t, strings.HasPrefix(*user.PasswordHash, "$2"))
	assert.NotContains(t, *user.PasswordHash, "s3cret-pass")

	loggedIn, pair, err := svc.Login(ctx, "ana@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "dup@example.com", "password1", "First")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "dup@example.com", "password2", "Second")
	require.Error(t, err)

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_AUTH_USER_ALREADY_EXISTS, appErr.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "ana@example.com", "right-password", "Ana")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ana@example.com", "wrong-password")
	require.Error(t, err)

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_AUTH_INVALID_CREDENTIALS, appErr.Code)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _ := newTestService()

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	require.Error(t, err)

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_AUTH_INVALID_CREDENTIALS, appErr.Code)
}

func TestValidateAccessToken(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, "ana@example.com", "s3cret-pass", "Ana")
	require.NoError(t, err)

	resolved, err := svc.ValidateAccessToken(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	_, err = svc.ValidateAccessToken(ctx, "not-a-token")
	require.Error(t, err)

	// Deactivated users are rejected even with a valid token
	stored := repo.users[user.ID]
	stored.IsActive = false
	_, err = svc.ValidateAccessToken(ctx, pair.AccessToken)
	require.Error(t, err)
}

func TestRefresh(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, pair, err := svc.Register(ctx, "ana@example.com", "s3cret-pass", "Ana")
	require.NoError(t, err)

	refreshed, newPair, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.ID)
	assert.NotEmpty(t, newPair.AccessToken)

	_, _, err = svc.Refresh(ctx, pair.AccessToken)
	require.Error(t, err)

	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorCode_AUTH_INVALID_REFRESH, appErr.Code)
}
