package comment

// CreateCommentRequest represents the request to comment on an analysis
type CreateCommentRequest struct {
	Content    string `json:"content" validate:"required,min=1,max=5000"`
	ThemeIndex *int   `json:"theme_index,omitempty" validate:"omitempty,min=0"`
}

// UpdateCommentRequest represents the request to edit a comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
}
