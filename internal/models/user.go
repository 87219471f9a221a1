package models

import "time"

// User is the credential-store record. PasswordHash holds the encoded
// argon2id hash (salt included); the plaintext password is never stored and
// the hash is never serialized to a client.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is one long-lived refresh grant, one per logged-in device.
// RefreshTokenHash is the SHA-256 of the raw bearer token; the raw value is
// handed to the client once and never persisted.
type Session struct {
	ID               string
	UserID           string
	RefreshTokenHash []byte
	CreatedAt        time.Time
	ExpiresAt        time.Time
}

// Expired reports whether the session is no longer usable at the given
// instant. A session whose expiry equals now is already expired.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
