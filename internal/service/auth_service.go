package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lcs-staffing/admin-console/internal/auth"
	"github.com/lcs-staffing/admin-console/internal/domain"
	"github.com/lcs-staffing/admin-console/internal/identity"
	"github.com/lcs-staffing/admin-console/internal/repository"
	apperrors "github.com/lcs-staffing/admin-console/pkg/util"
)

// SessionChecker runs the identity gate.
type SessionChecker interface {
	Check(ctx context.Context, token string) auth.GateResult
}

// LoginAudit stores sign-in bookkeeping.
type LoginAudit interface {
	Record(ctx context.Context, rec *domain.LoginRecord) error
}

// LoginTouch stamps the admin record on sign-in.
type LoginTouch interface {
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

// AuthService coordinates sign-in, sign-out and password reset flows.
type AuthService struct {
	provider identity.Provider
	gate     SessionChecker
	logins   LoginAudit
	admins   LoginTouch
	logger   *zap.Logger
	now      func() time.Time
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Provider  identity.Provider
	Gate      SessionChecker
	LoginRepo repository.LoginRepository
	AdminRepo LoginTouch
	Logger    *zap.Logger
}

// LoginMeta describes the client signing in.
type LoginMeta struct {
	UserAgent string
	Device    string
}

// LoginResult is returned after a successful sign-in that passed the gate.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Session   *auth.Session
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		provider: deps.Provider,
		gate:     deps.Gate,
		logins:   deps.LoginRepo,
		admins:   deps.AdminRepo,
		logger:   logger,
		now:      time.Now,
	}
}

// Login signs in with the provider and runs the gate before handing back the token.
// Accounts without an active admin record are signed straight back out.
func (s *AuthService) Login(ctx context.Context, email, password string, meta LoginMeta) (*LoginResult, error) {
	issued, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		code := identity.CodeOf(err)
		if code == "" {
			return nil, apperrors.MapError(err)
		}
		if code == identity.CodeTooManyRequests {
			return nil, apperrors.NewDomainError(apperrors.CodeAuth, identity.MessageFor(code), http.StatusTooManyRequests,
				map[string]any{"provider_code": string(code)})
		}
		return nil, apperrors.NewAuthError(string(code), identity.MessageFor(code))
	}

	res := s.gate.Check(ctx, issued.Token)
	if res.Decision != auth.DecisionAuthorized {
		return nil, apperrors.NewDomainError(apperrors.CodeForbidden, "account is not allowed to use the console",
			http.StatusForbidden, map[string]any{"decision": string(res.Decision), "reason": res.Reason})
	}

	s.recordLogin(ctx, res.Session, meta)
	return &LoginResult{Token: issued.Token, ExpiresAt: issued.ExpiresAt, Session: res.Session}, nil
}

// recordLogin is best-effort; audit failures never block sign-in.
func (s *AuthService) recordLogin(ctx context.Context, session *auth.Session, meta LoginMeta) {
	now := s.now()
	if s.logins != nil {
		rec := &domain.LoginRecord{
			UserID:    session.UID,
			Email:     session.Email,
			LastLogin: now,
			UserAgent: meta.UserAgent,
			Device:    deviceFromAgent(meta),
		}
		if err := s.logins.Record(ctx, rec); err != nil {
			s.logger.Warn("login audit failed", zap.String("uid", session.UID), zap.Error(err))
		}
	}
	if s.admins != nil {
		if err := s.admins.TouchLogin(ctx, session.UID, now); err != nil {
			s.logger.Warn("last login not stamped", zap.String("uid", session.UID), zap.Error(err))
		}
	}
}

// Logout revokes the token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.provider.SignOut(ctx, token); err != nil {
		return providerError(err, identity.MessageFor)
	}
	return nil
}

// Session runs the gate so the UI can redirect before rendering anything protected.
func (s *AuthService) Session(ctx context.Context, token string) auth.GateResult {
	return s.gate.Check(ctx, token)
}

// RequestPasswordReset mails a reset link for email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if err := s.provider.SendPasswordReset(ctx, email); err != nil {
		return providerError(err, identity.ResetMessageFor)
	}
	return nil
}

// ConfirmPasswordReset completes the reset started by RequestPasswordReset.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if err := s.provider.ConfirmPasswordReset(ctx, token, newPassword); err != nil {
		return providerError(err, identity.MessageFor)
	}
	return nil
}

func deviceFromAgent(meta LoginMeta) string {
	if meta.Device != "" {
		return meta.Device
	}
	ua := strings.ToLower(meta.UserAgent)
	switch {
	case ua == "":
		return "unknown"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ios"):
		return "ios"
	case strings.Contains(ua, "android"):
		return "android"
	default:
		return "web"
	}
}
