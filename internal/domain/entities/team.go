package entities

import (
	"time"

	"github.com/google/uuid"
)

// TeamRole defines the role of a member within a team
type TeamRole string

const (
	TeamRoleOwner  TeamRole = "owner"
	TeamRoleAdmin  TeamRole = "admin"
	TeamRoleMember TeamRole = "member"
)

// IsValid checks if the team role is valid
func (r TeamRole) IsValid() bool {
	switch r {
	case TeamRoleOwner, TeamRoleAdmin, TeamRoleMember:
		return true
	}
	return false
}

// Team groups users for shared analysis visibility
type Team struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	OwnerID     uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Owner       *User     `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`

	Members []TeamMember `json:"members,omitempty" gorm:"foreignKey:TeamID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Team
func (Team) TableName() string {
	return "teams"
}

// TeamMember is a (team, user, role) membership row
type TeamMember struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TeamID uuid.UUID `json:"team_id" gorm:"type:uuid;not null;uniqueIndex:idx_team_user"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_team_user"`
	Role   TeamRole  `json:"role" gorm:"type:varchar(20);not null;default:'member'"`
	User   *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`

	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for TeamMember
func (TeamMember) TableName() string {
	return "team_members"
}

// NewTeam creates a team owned by the given user
func NewTeam(name string, ownerID uuid.UUID) *Team {
	return &Team{
		ID:      uuid.New(),
		Name:    name,
		OwnerID: ownerID,
	}
}
