package models

import "time"

// User is an account. Password and RefreshToken never leave the service:
// both are excluded from JSON, which makes every serialized User a
// sanitized record.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FullName     string    `gorm:"size:200;not null;index" json:"fullName"`
	Password     string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Avatar       string    `gorm:"size:1000;not null" json:"avatar"`
	CoverImage   string    `gorm:"size:1000" json:"coverImage"`
	RefreshToken *string   `gorm:"type:text" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// HasRefreshToken reports whether token is the user's current refresh token.
func (u *User) HasRefreshToken(token string) bool {
	return u.RefreshToken != nil && token != "" && *u.RefreshToken == token
}
