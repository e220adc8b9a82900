package presenter

import (
	authDTO "github.com/dropofflens/dropofflens/internal/adapter/dto/auth"
	"github.com/dropofflens/dropofflens/internal/domain/entities"
	"github.com/dropofflens/dropofflens/internal/usecase/auth"
)

// ToUserResponse converts a User entity to UserResponse DTO
func ToUserResponse(u *entities.User) *authDTO.UserResponse {
	if u == nil {
		return nil
	}

	response := &authDTO.UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		Name:        u.Name,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}

	if u.AvatarURL != nil {
		response.AvatarURL = *u.AvatarURL
	}

	return response
}

// ToAuthResponse combines a user and token pair into an AuthResponse DTO
func ToAuthResponse(u *entities.User, pair *auth.TokenPair) *authDTO.AuthResponse {
	if pair == nil {
		return nil
	}

	return &authDTO.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int(pair.ExpiresIn),
		TokenType:    "Bearer",
		User:         ToUserResponse(u),
	}
}
