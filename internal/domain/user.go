package domain

import "time"

// Role is a user's authorization level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a registered account.
type User struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash, empty for OAuth-only accounts
	Role      Role      `gorm:"size:50;not null;default:user" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Identity is the already-verified caller of a request. A zero Identity is anonymous.
type Identity struct {
	UserID string
	Role   Role
}

func (i Identity) Authenticated() bool { return i.UserID != "" }

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
