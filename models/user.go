package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID          string            `json:"id" gorm:"type:uuid;primaryKey"`
	Email       string            `json:"email" gorm:"uniqueIndex;not null"`
	Password    string            `json:"-" gorm:"not null"`
	Metadata    datatypes.JSONMap `json:"metadata"`
	ConfirmedAt *time.Time        `json:"confirmed_at"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

func (u *User) Confirmed() bool {
	return u.ConfirmedAt != nil
}

func (u *User) metaString(key string) string {
	if u.Metadata == nil {
		return ""
	}
	s, _ := u.Metadata[key].(string)
	return strings.TrimSpace(s)
}

// DisplayName prefers the full name from metadata and falls back to the
// local part of the email address.
func (u *User) DisplayName() string {
	if name := u.metaString("full_name"); name != "" {
		return name
	}
	if name := u.metaString("name"); name != "" {
		return name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

func (u *User) AvatarURL() string {
	return u.metaString("avatar_url")
}

// Principal is the authenticated caller resolved from a session token.
type Principal struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}
