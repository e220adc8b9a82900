package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dropofflens/dropofflens/internal/domain/entities"
	"github.com/dropofflens/dropofflens/internal/domain/repositories"
)

// teamRepository implements the TeamRepository interface
type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *gorm.DB) repositories.TeamRepository {
	return &teamRepository{db: db}
}

// CreateWithOwner creates the team and the creator's owner membership in
// one transaction. A team must never be observable without an owner member.
func (r *teamRepository) CreateWithOwner(ctx context.Context, team *entities.Team) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return err
		}

		member := &entities.TeamMember{
			ID:     uuid.New(),
			TeamID: team.ID,
			UserID: team.OwnerID,
			Role:   entities.TeamRoleOwner,
		}
		return tx.Create(member).Error
	})
}

// FindByID retrieves a team with its members and owner
func (r *teamRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Team, error) {
	var team entities.Team
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Members").
		Preload("Members.User").
		Where("id = ?", id).
		First(&team).Error

	if err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByUserID retrieves all teams the user is a member of
func (r *teamRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.Team, error) {
	var teams []*entities.Team
	err := r.db.WithContext(ctx).
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Order("teams.created_at DESC").
		Find(&teams).Error
	return teams, err
}

// AddMember inserts a membership row
func (r *teamRepository) AddMember(ctx context.Context, member *entities.TeamMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// FindMember retrieves one membership row
func (r *teamRepository) FindMember(ctx context.Context, teamID, userID uuid.UUID) (*entities.TeamMember, error) {
	var member entities.TeamMember
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error

	if err != nil {
		return nil, err
	}
	return &member, nil
}

// RemoveMember deletes a membership row
func (r *teamRepository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&entities.TeamMember{}).
		Error
}

// UpdateMemberRole changes a member's role
func (r *teamRepository) UpdateMemberRole(ctx context.Context, teamID, userID uuid.UUID, role entities.TeamRole) error {
	return r.db.WithContext(ctx).
		Model(&entities.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Update("role", role).
		Error
}
