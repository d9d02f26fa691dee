// Package accounts owns the user account lifecycle: registration, email
// verification and login gating.
package accounts

import (
	"errors"
	"time"
)

// TokenTTL is how long an issued verification token stays valid.
const TokenTTL = 24 * time.Hour

// User represents a registered account.
type User struct {
	ID                int64
	Name              string
	Email             string
	PasswordHash      string
	IsVerified        bool
	VerificationToken *string
	TokenExpiry       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PublicUser is the caller-facing projection of a User. The password hash and
// outstanding token never leave the service.
type PublicUser struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Public returns the projection of u safe to serialize.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// Sentinel errors produced by the registry and translated by the handler.
var (
	ErrValidation         = errors.New("invalid input")
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrInvalidToken       = errors.New("invalid or expired verification token")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrUnverified         = errors.New("account not verified")
)
