package model

import "time"

// User represents an application user record as stored in the `users`
// table. PasswordHash and the reset-token fields are never serialized
// outward; handlers expose a separate response type with only the
// public fields.
//
// ResetTokenHash and ResetTokenExpires are set and cleared together:
// either both are present (a reset token is live) or both are nil.
type User struct {
	ID                uint64     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Role              Role       `json:"role"`
	ResetTokenHash    *string    `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
