// Package auth handles credentials, bearer tokens and the request identity.
package auth

import (
	"time"

	"github.com/eventide-agency/eventide/internal/shared"
)

// User is an account that can log in: staff or a client contact.
type User struct {
	ID           int64       `json:"id" db:"id"`
	Email        string      `json:"email" db:"email"`
	PasswordHash string      `json:"-" db:"password_hash"`
	FullName     string      `json:"full_name" db:"full_name"`
	Role         shared.Role `json:"role" db:"role"`
	IsActive     bool        `json:"is_active" db:"is_active"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// LoginRequest is the POST /auth/login body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the bearer token and the resolved identity.
type LoginResponse struct {
	Token    string          `json:"token"`
	Identity shared.Identity `json:"identity"`
}
