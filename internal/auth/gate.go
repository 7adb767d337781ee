// Package auth decides who may use the console and what they may do.
package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/lcs-staffing/admin-console/internal/domain"
	"github.com/lcs-staffing/admin-console/internal/identity"
	"github.com/lcs-staffing/admin-console/internal/observability"
)

// Decision is the outcome of a gate pass.
type Decision string

const (
	DecisionUnauthenticated Decision = "unauthenticated"
	DecisionUnauthorized    Decision = "unauthorized"
	DecisionAuthorized      Decision = "authorized"
)

// Session is the explicit current-user context handed to every operation.
type Session struct {
	UID          string
	Email        string
	IsSuperAdmin bool
	Token        string
}

// GateResult carries the decision and, when authorized, the session.
type GateResult struct {
	Decision Decision
	Session  *Session
	Reason   string
}

// AccountLookup resolves admin accounts by provider uid.
type AccountLookup interface {
	GetByID(ctx context.Context, id string) (*domain.AdminAccount, error)
}

// TokenVerifier is the part of identity.Provider the gate needs.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*identity.Claims, error)
	SignOut(ctx context.Context, token string) error
}

// Gate runs the identity checks on every protected request. Nothing is cached.
type Gate struct {
	tokens   TokenVerifier
	accounts AccountLookup
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewGate constructs a gate.
func NewGate(tokens TokenVerifier, accounts AccountLookup, metrics *observability.Metrics, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{tokens: tokens, accounts: accounts, metrics: metrics, logger: logger}
}

// Check resolves token to a decision. It never returns an error; failures become redirects.
func (g *Gate) Check(ctx context.Context, token string) GateResult {
	res := g.check(ctx, token)
	g.metrics.RecordGate(string(res.Decision))
	return res
}

func (g *Gate) check(ctx context.Context, token string) GateResult {
	if token == "" {
		return GateResult{Decision: DecisionUnauthenticated, Reason: "no session"}
	}

	claims, err := g.tokens.VerifyToken(ctx, token)
	if err != nil {
		if identity.CodeOf(err) == identity.CodeNetworkFailed {
			g.logger.Warn("gate: provider unavailable", zap.Error(err))
			return GateResult{Decision: DecisionUnauthorized, Reason: "identity provider unavailable"}
		}
		return GateResult{Decision: DecisionUnauthenticated, Reason: "invalid session"}
	}

	account, err := g.accounts.GetByID(ctx, claims.UID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return g.deny(ctx, token, claims.UID, "no admin record")
	case err != nil:
		// Transient store failure: deny this pass but keep the session.
		g.logger.Warn("gate: account lookup failed", zap.String("uid", claims.UID), zap.Error(err))
		return GateResult{Decision: DecisionUnauthorized, Reason: "account lookup failed"}
	case account.Role != domain.RoleAdmin:
		return g.deny(ctx, token, claims.UID, "role is not admin")
	case !account.IsActive:
		return g.deny(ctx, token, claims.UID, "account inactive")
	}

	return GateResult{
		Decision: DecisionAuthorized,
		Session: &Session{
			UID:          account.ID,
			Email:        account.Email,
			IsSuperAdmin: account.Super(),
			Token:        token,
		},
	}
}

// deny forces sign-out so the stale token cannot be replayed.
func (g *Gate) deny(ctx context.Context, token, uid, reason string) GateResult {
	if err := g.tokens.SignOut(ctx, token); err != nil {
		g.logger.Warn("gate: forced sign-out failed", zap.String("uid", uid), zap.Error(err))
	}
	g.logger.Info("gate denied", zap.String("uid", uid), zap.String("reason", reason))
	return GateResult{Decision: DecisionUnauthorized, Reason: reason}
}
