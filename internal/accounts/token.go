package accounts

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes yields a 64 character hex token, 256 bits of entropy.
const tokenBytes = 32

// NewVerificationToken returns a fresh random verification token.
func NewVerificationToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("accounts: generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
