package team

import "time"

// MemberResponse represents one team membership in responses
type MemberResponse struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Name     string    `json:"name,omitempty"`
	Email    string    `json:"email,omitempty"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// TeamResponse represents a team with its members
type TeamResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	OwnerID     string            `json:"owner_id"`
	Members     []*MemberResponse `json:"members,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ListTeamsResponse represents the teams a user belongs to
type ListTeamsResponse struct {
	Teams []*TeamResponse `json:"teams"`
	Total int             `json:"total"`
}
