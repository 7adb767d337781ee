package dto

import "time"

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PasswordResetRequest payload for initiating reset.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// AuthResponse describes an issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionResponse is the current user context.
type SessionResponse struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

// SessionStatusResponse reports the gate outcome for the bearer token.
type SessionStatusResponse struct {
	Decision string           `json:"decision"`
	Reason   string           `json:"reason,omitempty"`
	Session  *SessionResponse `json:"session,omitempty"`
}
