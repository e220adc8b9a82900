package comment

import "time"

// CommentResponse represents one comment in responses
type CommentResponse struct {
	ID         string    `json:"id"`
	AnalysisID string    `json:"analysis_id"`
	UserID     string    `json:"user_id"`
	AuthorName string    `json:"author_name,omitempty"`
	ThemeIndex *int      `json:"theme_index,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ListCommentsResponse represents an analysis' comments, oldest first
type ListCommentsResponse struct {
	Comments []*CommentResponse `json:"comments"`
	Total    int                `json:"total"`
}
