package models

import "time"

// UserSession is one opaque-token login. Only the digest of the bearer
// secret is stored; the raw value never reaches persistence.
//
// CreatedAt is immutable and anchors the absolute expiry ceiling.
// LastRefreshedAt and ExpiresAt move on each rolling extension, with
// ExpiresAt never exceeding CreatedAt plus the absolute timeout.
type UserSession struct {
	ID              string
	UserID          string
	TokenHash       string
	CreatedAt       time.Time
	LastRefreshedAt time.Time
	ExpiresAt       time.Time
}
