package repositories

import (
	"context"

	"github.com/dropofflens/dropofflens/internal/domain/entities"
	"github.com/google/uuid"
)

// TeamRepository defines the interface for team and membership data access
type TeamRepository interface {
	// CreateWithOwner creates the team row and the creator's owner
	// membership in one transaction, so a team is never ownerless.
	CreateWithOwner(ctx context.Context, team *entities.Team) error

	// FindByID retrieves a team with its members and owner
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Team, error)

	// FindByUserID retrieves all teams the user is a member of
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.Team, error)

	// AddMember inserts a membership row
	AddMember(ctx context.Context, member *entities.TeamMember) error

	// FindMember retrieves one membership row
	FindMember(ctx context.Context, teamID, userID uuid.UUID) (*entities.TeamMember, error)

	// RemoveMember deletes a membership row
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error

	// UpdateMemberRole changes a member's role
	UpdateMemberRole(ctx context.Context, teamID, userID uuid.UUID, role entities.TeamRole) error
}
