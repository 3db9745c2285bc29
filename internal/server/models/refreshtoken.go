package models

import "time"

// RefreshToken is one JWT refresh credential. ExpiresAt is fixed at
// issuance; a token is usable only while Revoked is false and ExpiresAt is
// in the future.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}
