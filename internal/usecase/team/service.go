package team

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/dropofflens/dropofflens/errors"
	"github.com/dropofflens/dropofflens/internal/domain/entities"
	"github.com/dropofflens/dropofflens/internal/domain/repositories"
)

// Service manages teams and memberships
type Service struct {
	teams  repositories.TeamRepository
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewService creates a new team service
func NewService(teams repositories.TeamRepository, users repositories.UserRepository, logger *zap.Logger) *Service {
	return &Service{
		teams:  teams,
		users:  users,
		logger: logger,
	}
}

// Create creates a team. The creator becomes its owner and first member.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, name string, description *string) (*entities.Team, error) {
	team := entities.NewTeam(name, ownerID)
	team.Description = description

	if err := s.teams.CreateWithOwner(ctx, team); err != nil {
		return nil, apperrors.ErrDBQueryFailed("create team", err)
	}

	s.logger.Info("Team created",
		zap.String("team_id", team.ID.String()),
		zap.String("owner_id", ownerID.String()))

	return s.Get(ctx, team.ID, ownerID)
}

// Get returns a team with its members. Only members may view a team.
func (s *Service) Get(ctx context.Context, teamID, requesterID uuid.UUID) (*entities.Team, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound("Team")
		}
		return nil, apperrors.ErrDBQueryFailed("find team", err)
	}

	if _, err := s.membership(ctx, teamID, requesterID); err != nil {
		return nil, err
	}

	return team, nil
}

// UserTeams lists the teams the user belongs to
func (s *Service) UserTeams(ctx context.Context, userID uuid.UUID) ([]*entities.Team, error) {
	teams, err := s.teams.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list user teams", err)
	}
	return teams, nil
}

// AddMember adds a user to the team. Owners and admins may add members;
// only owners may grant the admin role.
func (s *Service) AddMember(ctx context.Context, teamID, requesterID, userID uuid.UUID, role entities.TeamRole) (*entities.TeamMember, error) {
	if !role.IsValid() || role == entities.TeamRoleOwner {
		return nil, apperrors.ErrInvalidArgument("Invalid member role")
	}

	requester, err := s.membership(ctx, teamID, requesterID)
	if err != nil {
		return nil, err
	}
	if requester.Role != entities.TeamRoleOwner && requester.Role != entities.TeamRoleAdmin {
		return nil, apperrors.ErrPermissionDenied("add team member")
	}
	if role == entities.TeamRoleAdmin && requester.Role != entities.TeamRoleOwner {
		return nil, apperrors.ErrPermissionDenied("grant admin role")
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound()
		}
		return nil, apperrors.ErrDBQueryFailed("find user", err)
	}

	if _, err := s.teams.FindMember(ctx, teamID, userID); err == nil {
		return nil, apperrors.ErrAlreadyExists("Team member")
	} else if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrDBQueryFailed("find team member", err)
	}

	member := &entities.TeamMember{
		ID:     uuid.New(),
		TeamID: teamID,
		UserID: userID,
		Role:   role,
	}
	if err := s.teams.AddMember(ctx, member); err != nil {
		return nil, apperrors.ErrDBQueryFailed("add team member", err)
	}

	return member, nil
}

// RemoveMember removes a user from the team. Owners and admins may remove
// members, any member may leave, and the owner can never be removed.
func (s *Service) RemoveMember(ctx context.Context, teamID, requesterID, userID uuid.UUID) error {
	target, err := s.membership(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if target.Role == entities.TeamRoleOwner {
		return apperrors.ErrPermissionDenied("remove team owner")
	}

	if requesterID != userID {
		requester, err := s.membership(ctx, teamID, requesterID)
		if err != nil {
			return err
		}
		if requester.Role != entities.TeamRoleOwner && requester.Role != entities.TeamRoleAdmin {
			return apperrors.ErrPermissionDenied("remove team member")
		}
	}

	if err := s.teams.RemoveMember(ctx, teamID, userID); err != nil {
		return apperrors.ErrDBQueryFailed("remove team member", err)
	}
	return nil
}

// UpdateMemberRole changes a member's role. Only the owner may do this, and
// the owner role itself cannot be granted or revoked here.
func (s *Service) UpdateMemberRole(ctx context.Context, teamID, requesterID, userID uuid.UUID, role entities.TeamRole) error {
	if !role.IsValid() || role == entities.TeamRoleOwner {
		return apperrors.ErrInvalidArgument("Invalid member role")
	}

	requester, err := s.membership(ctx, teamID, requesterID)
	if err != nil {
		return err
	}
	if requester.Role != entities.TeamRoleOwner {
		return apperrors.ErrPermissionDenied("change member role")
	}

	target, err := s.membership(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if target.Role == entities.TeamRoleOwner {
		return apperrors.ErrPermissionDenied("change owner role")
	}

	if err := s.teams.UpdateMemberRole(ctx, teamID, userID, role); err != nil {
		return apperrors.ErrDBQueryFailed("update member role", err)
	}
	return nil
}

// IsMember reports whether the user belongs to the team
func (s *Service) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	_, err := s.teams.FindMember(ctx, teamID, userID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperrors.ErrDBQueryFailed("find team member", err)
	}
	return true, nil
}

func (s *Service) membership(ctx context.Context, teamID, userID uuid.UUID) (*entities.TeamMember, error) {
	member, err := s.teams.FindMember(ctx, teamID, userID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPermissionDenied("access team")
		}
		return nil, apperrors.ErrDBQueryFailed("find team member", err)
	}
	return member, nil
}
