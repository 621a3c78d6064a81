package domain

import "time"

// Role values accepted for a user account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered identity.
// PasswordHash and the reset-token pair never cross the API boundary.
type User struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Role           string     `json:"role"`
	Avatar         string     `json:"avatar,omitempty"`
	ResetTokenHash string     `json:"-"`
	ResetExpiresAt *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
