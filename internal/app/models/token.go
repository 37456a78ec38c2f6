package models

import "time"

// BlacklistedToken is a revoked refresh token, keyed by its jti.
type BlacklistedToken struct {
	JTI           string    `db:"jti"`
	UserID        int64     `db:"user_id"`
	ExpiresAt     time.Time `db:"expires_at"`
	BlacklistedAt time.Time `db:"blacklisted_at"`
}

// PasswordResetToken stores the hash of a single-use reset token.
type PasswordResetToken struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	Used      bool      `db:"used"`
	CreatedAt time.Time `db:"created_at"`
}

// Usable reports whether the token is unused and unexpired at now.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
