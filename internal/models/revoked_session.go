package models

import "time"

// RevokedSession records a session token ended by logout. Rows past
// ExpiresAt carry no meaning since the token itself no longer verifies.
type RevokedSession struct {
	JTI       string    `gorm:"primaryKey;size:64" json:"jti"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
