package auth

import (
	"github.com/lcs-staffing/admin-console/internal/domain"
	apperrors "github.com/lcs-staffing/admin-console/pkg/util"
)

// Action names a guarded console operation.
type Action string

const (
	ActionViewRoster        Action = "roster:view"
	ActionManageJobs        Action = "jobs:manage"
	ActionCreateAdmin       Action = "admin:create"
	ActionEditAdminEmail    Action = "admin:edit-email"
	ActionToggleAdminActive Action = "admin:toggle-active"
	ActionResetAdminPass    Action = "admin:password-reset"
)

// Authorize is the single policy consulted by every mutating operation.
// target is the admin being acted on, nil for actions without one.
func Authorize(s *Session, action Action, target *domain.AdminAccount) error {
	if s == nil {
		return apperrors.NewUnauthorized("session required")
	}

	switch action {
	case ActionViewRoster, ActionManageJobs:
		return nil
	case ActionCreateAdmin:
		if !s.IsSuperAdmin {
			return apperrors.NewForbidden("only the super admin can create admins")
		}
		return nil
	case ActionEditAdminEmail, ActionToggleAdminActive:
		if !s.IsSuperAdmin {
			return apperrors.NewForbidden("only the super admin can modify admins")
		}
		if target != nil && target.Super() {
			return apperrors.NewForbidden("the super admin account cannot be modified")
		}
		return nil
	case ActionResetAdminPass:
		if target != nil && target.ID == s.UID {
			return nil
		}
		if !s.IsSuperAdmin {
			return apperrors.NewForbidden("only the super admin can reset other admins")
		}
		if target != nil && target.Super() {
			return apperrors.NewForbidden("the super admin account cannot be modified")
		}
		return nil
	default:
		return apperrors.NewForbidden("unknown action")
	}
}
