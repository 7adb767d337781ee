package domain

import (
	"strings"
	"time"
)

// RoleAdmin is the only role issued by the console.
const RoleAdmin = "admin"

// SuperAdminEmail identifies the distinguished super-admin account.
const SuperAdminEmail = "app@lcsstaffing.com"

// AdminAccount is a console user record stored in the users collection.
type AdminAccount struct {
	ID           string
	Email        string
	Role         string
	IsSuperAdmin bool
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsSuperAdminEmail compares email against the well-known super-admin address.
func IsSuperAdminEmail(email string) bool {
	return strings.EqualFold(strings.TrimSpace(email), SuperAdminEmail)
}

// Super reports whether the account is the super-admin, by flag or by address.
func (a *AdminAccount) Super() bool {
	return a.IsSuperAdmin || IsSuperAdminEmail(a.Email)
}

// LoginRecord is the per-account sign-in audit entry.
type LoginRecord struct {
	UserID     string
	Email      string
	LastLogin  time.Time
	LoginCount int
	UserAgent  string
	Device     string
}
