// Package models contains row-level types shared by repositories and
// services.
package models

import "time"

type User struct {
	ID           string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
