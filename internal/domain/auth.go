package domain

import "time"

// Credential is the identity provider's login record for an account.
type Credential struct {
	UID          string
	Email        string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PasswordResetToken represents stored reset tokens.
type PasswordResetToken struct {
	ID        string
	UID       string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token can still complete a reset at now.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
