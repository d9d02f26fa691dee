package accounts

import (
	"context"
	"time"
)

// NewUser carries the fields persisted when a fresh account is created.
type NewUser struct {
	Name              string
	Email             string
	PasswordHash      string
	VerificationToken string
	TokenExpiry       time.Time
}

// Repository defines persistence operations for the account registry.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u NewUser) (int64, error)
	// RotateToken replaces the verification token of an unverified account.
	// It fails with ErrAlreadyVerified when the account was verified in the
	// meantime.
	RotateToken(ctx context.Context, email, token string, expiry time.Time) error
	// ConsumeToken atomically verifies the account holding an unexpired
	// matching token, clearing both token fields. ErrInvalidToken when no row
	// qualifies.
	ConsumeToken(ctx context.Context, token string, now time.Time) (*User, error)
}
