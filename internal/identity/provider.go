// Package identity is the console's identity provider: credentials, session
// tokens, password resets and the provider error codes surfaced to the UI.
package identity

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/lcs-staffing/admin-console/internal/config"
	"github.com/lcs-staffing/admin-console/internal/domain"
	"github.com/lcs-staffing/admin-console/internal/repository"
)

// Provider is the identity contract the rest of the console depends on.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*IssuedToken, error)
	SignOut(ctx context.Context, token string) error
	VerifyToken(ctx context.Context, token string) (*Claims, error)
	CreateUser(ctx context.Context, email, password string) (string, error)
	UpdateEmail(ctx context.Context, uid, email string) error
	SendPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

// IssuedToken is the result of a successful sign-in.
type IssuedToken struct {
	Token     string
	UID       string
	Email     string
	ExpiresAt time.Time
}

// ResetMailer delivers password reset links.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, email, link string) error
}

// Dependencies groups the stores the local provider needs.
type Dependencies struct {
	Credentials repository.CredentialRepository
	Resets      repository.PasswordResetRepository
	Revocations RevocationStore
	Mailer      ResetMailer
}

// LocalProvider implements Provider on top of postgres credentials and JWT sessions.
type LocalProvider struct {
	creds      repository.CredentialRepository
	resets     repository.PasswordResetRepository
	revoked    RevocationStore
	mailer     ResetMailer
	tokens     *TokenManager
	limiter    *signInLimiter
	validate   *validator.Validate
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
	resetLink  string
	now        func() time.Time
}

// NewLocalProvider wires the provider from configuration.
func NewLocalProvider(cfg config.AuthConfig, deps Dependencies, logger *zap.Logger) *LocalProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	revoked := deps.Revocations
	if revoked == nil {
		revoked = NewMemoryRevocationStore()
	}
	resetTTL := time.Duration(cfg.PasswordResetTTLMinutes) * time.Minute
	if resetTTL <= 0 {
		resetTTL = 30 * time.Minute
	}
	return &LocalProvider{
		creds:      deps.Credentials,
		resets:     deps.Resets,
		revoked:    revoked,
		mailer:     deps.Mailer,
		tokens:     NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		limiter:    newSignInLimiter(cfg.SignInPerMinute, cfg.SignInBurst),
		validate:   validator.New(),
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
		resetTTL:   resetTTL,
		resetLink:  cfg.ResetLinkBase,
		now:        time.Now,
	}
}

// SignIn authenticates email and password and issues a session token.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*IssuedToken, error) {
	email = strings.TrimSpace(email)
	if err := p.checkEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, newError(CodeInvalidCredential, nil)
	}
	if !p.limiter.allow(email) {
		return nil, newError(CodeTooManyRequests, nil)
	}

	cred, err := p.creds.GetByEmail(ctx, email)
	if err != nil {
		return nil, lookupError(err)
	}
	if cred.Disabled {
		return nil, newError(CodeUserDisabled, nil)
	}
	if err := ComparePassword(cred.PasswordHash, password); err != nil {
		return nil, newError(CodeWrongPassword, nil)
	}

	signed, claims, err := p.tokens.Generate(cred.UID, cred.Email)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{
		Token:     signed,
		UID:       cred.UID,
		Email:     cred.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SignOut revokes the token until its natural expiry.
func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	claims, err := p.tokens.Parse(token)
	if err != nil {
		return newError(CodeInvalidCredential, err)
	}
	ttl := claims.ExpiresAt.Time.Sub(p.now())
	if err := p.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return newError(CodeNetworkFailed, err)
	}
	return nil
}

// VerifyToken validates signature, expiry and revocation.
func (p *LocalProvider) VerifyToken(ctx context.Context, token string) (*Claims, error) {
	claims, err := p.tokens.Parse(token)
	if err != nil {
		return nil, newError(CodeInvalidCredential, err)
	}
	revoked, err := p.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, newError(CodeNetworkFailed, err)
	}
	if revoked {
		return nil, newError(CodeInvalidCredential, errors.New("token revoked"))
	}
	return claims, nil
}

// CreateUser registers a credential and returns its uid.
func (p *LocalProvider) CreateUser(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if err := p.checkEmail(email); err != nil {
		return "", err
	}
	if len(password) < MinPasswordLength {
		return "", newError(CodeWeakPassword, nil)
	}

	if _, err := p.creds.GetByEmail(ctx, email); err == nil {
		return "", newError(CodeEmailInUse, nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return "", newError(CodeNetworkFailed, err)
	}

	hash, err := HashPassword(password, p.bcryptCost)
	if err != nil {
		return "", err
	}
	cred := &domain.Credential{Email: email, PasswordHash: hash}
	if err := p.creds.Create(ctx, cred); err != nil {
		return "", writeError(err)
	}
	return cred.UID, nil
}

// UpdateEmail changes the login address of uid.
func (p *LocalProvider) UpdateEmail(ctx context.Context, uid, email string) error {
	email = strings.TrimSpace(email)
	if err := p.checkEmail(email); err != nil {
		return err
	}
	existing, err := p.creds.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.UID != uid:
		return newError(CodeEmailInUse, nil)
	case err == nil:
		return nil
	case !errors.Is(err, pgx.ErrNoRows):
		return newError(CodeNetworkFailed, err)
	}

	if err := p.creds.UpdateEmail(ctx, uid, email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return newError(CodeUserNotFound, err)
		}
		return writeError(err)
	}
	return nil
}

// SendPasswordReset stores a single-use token and mails the reset link.
func (p *LocalProvider) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := p.checkEmail(email); err != nil {
		return err
	}
	cred, err := p.creds.GetByEmail(ctx, email)
	if err != nil {
		return lookupError(err)
	}

	token := &domain.PasswordResetToken{
		UID:       cred.UID,
		Token:     uuid.NewString(),
		ExpiresAt: p.now().Add(p.resetTTL),
	}
	if err := p.resets.Create(ctx, token); err != nil {
		return newError(CodeNetworkFailed, err)
	}

	if p.mailer == nil {
		p.logger.Warn("no reset mailer configured", zap.String("uid", cred.UID))
		return newError(CodeNetworkFailed, errors.New("no reset mailer configured"))
	}
	if err := p.mailer.SendPasswordReset(ctx, cred.Email, p.link(token.Token)); err != nil {
		return newError(CodeNetworkFailed, err)
	}
	return nil
}

// ConfirmPasswordReset consumes the token and sets the new password.
func (p *LocalProvider) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := p.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return newError(CodeExpiredActionCode, nil)
		}
		return newError(CodeNetworkFailed, err)
	}
	if !token.Usable(p.now()) {
		return newError(CodeExpiredActionCode, nil)
	}
	if len(newPassword) < MinPasswordLength {
		return newError(CodeWeakPassword, nil)
	}

	hash, err := HashPassword(newPassword, p.bcryptCost)
	if err != nil {
		return err
	}
	if err := p.creds.UpdatePassword(ctx, token.UID, hash); err != nil {
		return lookupError(err)
	}
	if err := p.resets.MarkUsed(ctx, token.ID); err != nil {
		return newError(CodeNetworkFailed, err)
	}
	return nil
}

func (p *LocalProvider) checkEmail(email string) error {
	if err := p.validate.Var(email, "required,email"); err != nil {
		return newError(CodeInvalidEmail, nil)
	}
	return nil
}

func (p *LocalProvider) link(token string) string {
	base, err := url.Parse(p.resetLink)
	if err != nil || p.resetLink == "" {
		return token
	}
	q := base.Query()
	q.Set("token", token)
	base.RawQuery = q.Encode()
	return base.String()
}

func lookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return newError(CodeUserNotFound, err)
	}
	return newError(CodeNetworkFailed, err)
}

func writeError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return newError(CodeEmailInUse, err)
	}
	return newError(CodeNetworkFailed, err)
}
