package domain

import (
	"strings"
	"time"
)

// User represents a registered identity and its profile attributes.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Nickname     string     `json:"nickname"`
	Gender       string     `json:"gender"`
	Relationship string     `json:"relationship"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Profile holds the user attributes that carry no authentication meaning.
type Profile struct {
	Nickname     string
	Gender       string
	Relationship string
	Birthday     *time.Time
}

// ApplyProfile copies profile attributes onto the user.
func (u *User) ApplyProfile(p Profile) {
	if u == nil {
		return
	}
	u.Nickname = p.Nickname
	u.Gender = p.Gender
	u.Relationship = p.Relationship
	u.Birthday = p.Birthday
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
