package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	authDTO "github.com/dropofflens/dropofflens/internal/adapter/dto/auth"
	"github.com/dropofflens/dropofflens/internal/adapter/presenter"
	authUsecase "github.com/dropofflens/dropofflens/internal/usecase/auth"
)

// Auth handles authentication HTTP requests
type Auth struct {
	authService *authUsecase.Service
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *authUsecase.Service, logger *zap.Logger) *Auth {
	return &Auth{
		authService: authService,
		logger:      logger,
	}
}

// Register handles POST /auth/register
// @Summary      Register a new account
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      auth.RegisterRequest  true  "Registration request"
// @Success      201      {object}  auth.AuthResponse
// @Router       /auth/register [post]
func (h *Auth) Register(c echo.Context) error {
	var req authDTO.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	user, pair, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccessWithStatus(h.logger, c, 201, presenter.ToAuthResponse(user, pair))
}

// Login handles POST /auth/login
// @Summary      Log in with email and password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      auth.LoginRequest  true  "Login request"
// @Success      200      {object}  auth.AuthResponse
// @Router       /auth/login [post]
func (h *Auth) Login(c echo.Context) error {
	var req authDTO.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	user, pair, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToAuthResponse(user, pair))
}

// Refresh handles POST /auth/refresh
// @Summary      Exchange a refresh token for a new token pair
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      auth.RefreshTokenRequest  true  "Refresh request"
// @Success      200      {object}  auth.AuthResponse
// @Router       /auth/refresh [post]
func (h *Auth) Refresh(c echo.Context) error {
	var req authDTO.RefreshTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	user, pair, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToAuthResponse(user, pair))
}

// Me handles GET /auth/user
// @Summary      Return the authenticated user
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  auth.UserResponse
// @Router       /auth/user [get]
func (h *Auth) Me(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	user, err := h.authService.Me(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToUserResponse(user))
}
