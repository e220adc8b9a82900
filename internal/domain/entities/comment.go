package entities

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisComment is a free-text comment on an analysis, optionally scoped
// to a single theme index (nil = general comment).
type AnalysisComment struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AnalysisID uuid.UUID `json:"analysis_id" gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	User       *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ThemeIndex *int      `json:"theme_index,omitempty"`
	Content    string    `json:"content" gorm:"type:text;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for AnalysisComment
func (AnalysisComment) TableName() string {
	return "analysis_comments"
}

// NewAnalysisComment creates a comment authored by the given user
func NewAnalysisComment(analysisID, userID uuid.UUID, themeIndex *int, content string) *AnalysisComment {
	return &AnalysisComment{
		ID:         uuid.New(),
		AnalysisID: analysisID,
		UserID:     userID,
		ThemeIndex: themeIndex,
		Content:    content,
	}
}

// IsAuthor reports whether the given user wrote this comment
func (c *AnalysisComment) IsAuthor(userID uuid.UUID) bool {
	return c.UserID == userID
}
