package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/dropofflens/dropofflens/errors"
	teamDTO "github.com/dropofflens/dropofflens/internal/adapter/dto/team"
	"github.com/dropofflens/dropofflens/internal/adapter/presenter"
	"github.com/dropofflens/dropofflens/internal/domain/entities"
	teamUsecase "github.com/dropofflens/dropofflens/internal/usecase/team"
)

// Team handles team management HTTP requests
type Team struct {
	teamService *teamUsecase.Service
	logger      *zap.Logger
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamService *teamUsecase.Service, logger *zap.Logger) *Team {
	return &Team{
		teamService: teamService,
		logger:      logger,
	}
}

// Create handles POST /teams
// @Summary      Create a team; the creator becomes its owner
// @Tags         Teams
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      team.CreateTeamRequest  true  "Team"
// @Success      201      {object}  team.TeamResponse
// @Router       /teams [post]
func (h *Team) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req teamDTO.CreateTeamRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	team, err := h.teamService.Create(c.Request().Context(), userID, req.Name, req.Description)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccessWithStatus(h.logger, c, 201, presenter.ToTeamResponse(team))
}

// Get handles GET /teams/:id
// @Summary      Fetch a team with its members
// @Tags         Teams
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Team ID"
// @Success      200  {object}  team.TeamResponse
// @Router       /teams/{id} [get]
func (h *Team) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	teamID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	team, err := h.teamService.Get(c.Request().Context(), teamID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToTeamResponse(team))
}

// List handles GET /user/teams
// @Summary      List the teams the authenticated user belongs to
// @Tags         Teams
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  team.ListTeamsResponse
// @Router       /user/teams [get]
func (h *Team) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	teams, err := h.teamService.UserTeams(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToListTeamsResponse(teams))
}

// AddMember handles POST /teams/:id/members
// @Summary      Add a user to a team
// @Tags         Teams
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Team ID"
// @Param        request  body      team.AddMemberRequest  true  "Member"
// @Success      201      {object}  team.MemberResponse
// @Router       /teams/{id}/members [post]
func (h *Team) AddMember(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	teamID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req teamDTO.AddMemberRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	memberID, err := uuid.Parse(req.UserID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("Invalid user_id"))
	}

	role := entities.TeamRoleMember
	if req.Role != "" {
		role = entities.TeamRole(req.Role)
	}

	member, err := h.teamService.AddMember(c.Request().Context(), teamID, userID, memberID, role)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccessWithStatus(h.logger, c, 201, presenter.ToMemberResponse(member))
}

// RemoveMember handles DELETE /teams/:id/members/:userId
// @Summary      Remove a user from a team
// @Tags         Teams
// @Produce      json
// @Security     BearerAuth
// @Param        id      path  string  true  "Team ID"
// @Param        userId  path  string  true  "User ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /teams/{id}/members/{userId} [delete]
func (h *Team) RemoveMember(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	teamID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	memberID, err := pathUUID(c, "userId")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.teamService.RemoveMember(c.Request().Context(), teamID, userID, memberID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, nil)
}

// UpdateMemberRole handles PATCH /teams/:id/members/:userId
// @Summary      Change a member's role (owner only)
// @Tags         Teams
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string                        true  "Team ID"
// @Param        userId   path  string                        true  "User ID"
// @Param        request  body  team.UpdateMemberRoleRequest  true  "New role"
// @Success      200  {object}  map[string]interface{}
// @Router       /teams/{id}/members/{userId} [patch]
func (h *Team) UpdateMemberRole(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	teamID, err := pathUUID(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	memberID, err := pathUUID(c, "userId")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req teamDTO.UpdateMemberRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.teamService.UpdateMemberRole(c.Request().Context(), teamID, userID, memberID, entities.TeamRole(req.Role)); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, nil)
}
