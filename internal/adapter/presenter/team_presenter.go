package presenter

import (
	teamDTO "github.com/dropofflens/dropofflens/internal/adapter/dto/team"
	"github.com/dropofflens/dropofflens/internal/domain/entities"
)

// ToMemberResponse converts a TeamMember entity to its DTO
func ToMemberResponse(m *entities.TeamMember) *teamDTO.MemberResponse {
	if m == nil {
		return nil
	}

	response := &teamDTO.MemberResponse{
		ID:       m.ID.String(),
		UserID:   m.UserID.String(),
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt,
	}

	if m.User != nil {
		response.Name = m.User.Name
		response.Email = m.User.Email
	}

	return response
}

// ToTeamResponse converts a Team entity to its DTO
func ToTeamResponse(t *entities.Team) *teamDTO.TeamResponse {
	if t == nil {
		return nil
	}

	members := make([]*teamDTO.MemberResponse, 0, len(t.Members))
	for i := range t.Members {
		members = append(members, ToMemberResponse(&t.Members[i]))
	}

	return &teamDTO.TeamResponse{
		ID:          t.ID.String(),
		Name:        t.Name,
		Description: t.Description,
		OwnerID:     t.OwnerID.String(),
		Members:     members,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ToListTeamsResponse converts a slice of teams to the listing DTO
func ToListTeamsResponse(teams []*entities.Team) *teamDTO.ListTeamsResponse {
	out := make([]*teamDTO.TeamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, ToTeamResponse(t))
	}
	return &teamDTO.ListTeamsResponse{
		Teams: out,
		Total: len(out),
	}
}
