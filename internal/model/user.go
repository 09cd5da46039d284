package model

import "time"

// Role is a user's authorization level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account identified by the external OAuth subject.
type User struct {
	// ID is the internal identifier referenced by owned rows.
	ID string `json:"id" db:"id"`

	// OpenID is the subject issued by the identity provider. Unique.
	OpenID string `json:"open_id" db:"open_id"`

	Name        string `json:"name" db:"name"`
	Email       string `json:"email" db:"email"`
	LoginMethod string `json:"login_method" db:"login_method"`
	Role        Role   `json:"role" db:"role"`

	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	LastSignedIn time.Time `json:"last_signed_in" db:"last_signed_in"`
}
