package dto

import "time"

// CreateAdminRequest payload.
type CreateAdminRequest struct {
	Email        string `json:"email" validate:"required"`
	Password     string `json:"password" validate:"required"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

// UpdateAdminEmailRequest payload.
type UpdateAdminEmailRequest struct {
	Email string `json:"email" validate:"required"`
}

// AdminResponse is the roster view of an account.
type AdminResponse struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	IsSuperAdmin bool       `json:"is_super_admin"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
