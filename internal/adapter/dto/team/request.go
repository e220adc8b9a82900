package team

// CreateTeamRequest represents the request to create a team
type CreateTeamRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description,omitempty"`
}

// AddMemberRequest represents the request to add a team member
type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"omitempty,teamrole"`
}

// UpdateMemberRoleRequest represents the request to change a member's role
type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,teamrole"`
}
