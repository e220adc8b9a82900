package auth

import (
	"context"
	stdErrors "errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "github.com/dropofflens/dropofflens/errors"
	"github.com/dropofflens/dropofflens/internal/domain/entities"
	"github.com/dropofflens/dropofflens/internal/domain/repositories"
	"github.com/dropofflens/dropofflens/pkg/jwt"
)

// TokenPair is the issued access and refresh token set
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service handles registration, login and token validation
type Service struct {
	users  repositories.UserRepository
	tokens *jwt.Manager
	logger *zap.Logger
}

// NewService creates a new auth service
func NewService(users repositories.UserRepository, tokens *jwt.Manager, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a new user with a bcrypt password hash
func (s *Service) Register(ctx context.Context, email, password, name string) (*entities.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.ErrUserAlreadyExists(email)
	} else if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperrors.ErrDBQueryFailed("find user by email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, apperrors.ErrInternal(err)
	}

	user := entities.NewUser(email, name)
	hashStr := string(hash)
	user.PasswordHash = &hashStr

	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, apperrors.ErrDBQueryFailed("create user", err)
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))

	return user, pair, nil
}

// Login verifies credentials and issues a token pair
func (s *Service) Login(ctx context.Context, email, password string) (*entities.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrInvalidCredentials()
		}
		return nil, nil, apperrors.ErrDBQueryFailed("find user by email", err)
	}

	if !user.IsActive || user.PasswordHash == nil {
		return nil, nil, apperrors.ErrInvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.ErrInvalidCredentials()
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		// Login still succeeds; the timestamp is informational
		s.logger.Warn("Failed to record login time", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	user.MarkLogin()

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*entities.User, *TokenPair, error) {
	userID, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, apperrors.ErrInvalidRefreshToken()
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrUserNotFound()
		}
		return nil, nil, apperrors.ErrDBQueryFailed("find user", err)
	}
	if !user.IsActive {
		return nil, nil, apperrors.ErrInvalidRefreshToken()
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// ValidateAccessToken resolves a bearer token to its active user
func (s *Service) ValidateAccessToken(ctx context.Context, token string) (*entities.User, error) {
	claims, err := s.tokens.ValidateAccessToken(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken()
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound()
		}
		return nil, apperrors.ErrDBQueryFailed("find user", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrInvalidToken()
	}

	return user, nil
}

// Me returns the user for an authenticated request
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound()
		}
		return nil, apperrors.ErrDBQueryFailed("find user", err)
	}
	return user, nil
}

func (s *Service) issueTokens(user *entities.User) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.GetAccessExpiry().Seconds()),
	}, nil
}
