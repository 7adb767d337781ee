package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/lcs-staffing/admin-console/internal/auth"
	"github.com/lcs-staffing/admin-console/internal/domain"
	"github.com/lcs-staffing/admin-console/internal/identity"
	"github.com/lcs-staffing/admin-console/internal/repository"
)

// AccountProvider is the subset of identity.Provider used to manage other admins.
type AccountProvider interface {
	CreateUser(ctx context.Context, email, password string) (string, error)
	UpdateEmail(ctx context.Context, uid, email string) error
	SendPasswordReset(ctx context.Context, email string) error
}

// RosterService manages administrator accounts.
type RosterService struct {
	admins   repository.AdminRepository
	provider AccountProvider
	logger   *zap.Logger
}

// NewRosterService constructs the service.
func NewRosterService(admins repository.AdminRepository, provider AccountProvider, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{admins: admins, provider: provider, logger: logger}
}

// List returns every admin account, newest first.
func (s *RosterService) List(ctx context.Context, session *auth.Session) ([]domain.AdminAccount, error) {
	return s.list(ctx, session, nil)
}

// ListActive returns admins that can be picked as account managers.
func (s *RosterService) ListActive(ctx context.Context, session *auth.Session) ([]domain.AdminAccount, error) {
	active := true
	return s.list(ctx, session, &active)
}

func (s *RosterService) list(ctx context.Context, session *auth.Session, active *bool) ([]domain.AdminAccount, error) {
	if err := auth.Authorize(session, auth.ActionViewRoster, nil); err != nil {
		return nil, err
	}
	role := domain.RoleAdmin
	admins, err := s.admins.List(ctx, repository.AdminFilter{Role: &role, Active: active})
	if err != nil {
		return nil, storeError("admin", err)
	}
	return admins, nil
}

// Create registers the credential with the provider, then writes the admin record.
// superAdmin flags the account explicitly; the well-known address is always super.
func (s *RosterService) Create(ctx context.Context, session *auth.Session, email, password string, superAdmin bool) (*domain.AdminAccount, error) {
	if err := auth.Authorize(session, auth.ActionCreateAdmin, nil); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)

	uid, err := s.provider.CreateUser(ctx, email, password)
	if err != nil {
		return nil, providerError(err, identity.MessageFor)
	}

	admin := &domain.AdminAccount{
		ID:           uid,
		Email:        email,
		Role:         domain.RoleAdmin,
		IsSuperAdmin: domain.IsSuperAdminEmail(email) || superAdmin,
		IsActive:     true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		s.logger.Error("admin record not written after credential creation",
			zap.String("uid", uid), zap.String("email", email), zap.Error(err))
		return nil, storeError("admin", err)
	}
	s.logger.Info("admin created", zap.String("uid", uid), zap.String("by", session.UID))
	return admin, nil
}

// EnsureSuperAdmin creates the well-known super-admin on first boot so the
// roster has someone able to add the other admins. No-op when password is empty
// or the record already exists.
func (s *RosterService) EnsureSuperAdmin(ctx context.Context, password string) error {
	if password == "" {
		return nil
	}
	_, err := s.admins.GetByEmail(ctx, domain.SuperAdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return storeError("admin", err)
	}

	uid, err := s.provider.CreateUser(ctx, domain.SuperAdminEmail, password)
	if err != nil {
		return providerError(err, identity.MessageFor)
	}
	admin := &domain.AdminAccount{
		ID:           uid,
		Email:        domain.SuperAdminEmail,
		Role:         domain.RoleAdmin,
		IsSuperAdmin: true,
		IsActive:     true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return storeError("admin", err)
	}
	s.logger.Info("super admin bootstrapped", zap.String("uid", uid))
	return nil
}

// UpdateEmail changes the login credential first and the stored profile second,
// so the two never disagree after a successful call.
func (s *RosterService) UpdateEmail(ctx context.Context, session *auth.Session, id, email string) (*domain.AdminAccount, error) {
	target, err := s.target(ctx, session, auth.ActionEditAdminEmail, id)
	if err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if strings.EqualFold(email, target.Email) {
		return target, nil
	}

	if err := s.provider.UpdateEmail(ctx, id, email); err != nil {
		return nil, providerError(err, identity.MessageFor)
	}
	if err := s.admins.UpdateEmail(ctx, id, email); err != nil {
		s.logger.Error("profile email not updated after credential change",
			zap.String("uid", id), zap.String("email", email), zap.Error(err))
		return nil, storeError("admin", err)
	}
	target.Email = email
	return target, nil
}

// ToggleActive flips isActive. A deactivated admin is rejected at their next gate pass.
func (s *RosterService) ToggleActive(ctx context.Context, session *auth.Session, id string) (*domain.AdminAccount, error) {
	target, err := s.target(ctx, session, auth.ActionToggleAdminActive, id)
	if err != nil {
		return nil, err
	}
	next := !target.IsActive
	if err := s.admins.SetActive(ctx, id, next); err != nil {
		return nil, storeError("admin", err)
	}
	target.IsActive = next
	s.logger.Info("admin active toggled", zap.String("uid", id), zap.Bool("active", next), zap.String("by", session.UID))
	return target, nil
}

// SendPasswordReset asks the provider to mail a reset link to the admin.
func (s *RosterService) SendPasswordReset(ctx context.Context, session *auth.Session, id string) error {
	target, err := s.target(ctx, session, auth.ActionResetAdminPass, id)
	if err != nil {
		return err
	}
	if err := s.provider.SendPasswordReset(ctx, target.Email); err != nil {
		return providerError(err, identity.ResetMessageFor)
	}
	return nil
}

// target loads the admin being acted on and applies the policy to it.
func (s *RosterService) target(ctx context.Context, session *auth.Session, action auth.Action, id string) (*domain.AdminAccount, error) {
	if err := auth.Authorize(session, auth.ActionViewRoster, nil); err != nil {
		return nil, err
	}
	target, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("admin", err)
	}
	if err := auth.Authorize(session, action, target); err != nil {
		return nil, err
	}
	return target, nil
}
