package presenter

import (
	commentDTO "github.com/dropofflens/dropofflens/internal/adapter/dto/comment"
	"github.com/dropofflens/dropofflens/internal/domain/entities"
)

// ToCommentResponse converts an AnalysisComment entity to its DTO
func ToCommentResponse(c *entities.AnalysisComment) *commentDTO.CommentResponse {
	if c == nil {
		return nil
	}

	response := &commentDTO.CommentResponse{
		ID:         c.ID.String(),
		AnalysisID: c.AnalysisID.String(),
		UserID:     c.UserID.String(),
		ThemeIndex: c.ThemeIndex,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}

	if c.User != nil {
		response.AuthorName = c.User.Name
	}

	return response
}

// ToListCommentsResponse converts a slice of comments to the listing DTO
func ToListCommentsResponse(comments []*entities.AnalysisComment) *commentDTO.ListCommentsResponse {
	out := make([]*commentDTO.CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, ToCommentResponse(c))
	}
	return &commentDTO.ListCommentsResponse{
		Comments: out,
		Total:    len(out),
	}
}
