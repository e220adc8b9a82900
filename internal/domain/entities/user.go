package entities

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system
type User struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email    string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name     string    `json:"name" gorm:"type:varchar(255);not null"`
	IsActive bool      `json:"is_active" gorm:"default:true;not null"`

	PasswordHash *string `json:"-" gorm:"column:password_hash;type:text"` // Never expose in JSON

	AvatarURL *string `json:"avatar_url,omitempty" gorm:"type:varchar(500)"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty" gorm:"type:timestamp"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user with default values
func NewUser(email, name string) *User {
	return &User{
		ID:       uuid.New(),
		Email:    email,
		Name:     name,
		IsActive: true,
	}
}

// MarkLogin records the login time
func (u *User) MarkLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}
