package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcs-staffing/admin-console/internal/auth"
	"github.com/lcs-staffing/admin-console/internal/identity"
	apperrors "github.com/lcs-staffing/admin-console/pkg/util"
)

type authFixture struct {
	svc    *AuthService
	ident  *fakeIdentity
	admins *fakeAdminRepo
	logins *fakeLoginRepo
}

func newAuthFixture() *authFixture {
	admins := newFakeAdminRepo(seedAdmins()...)
	ident := newFakeIdentity()
	ident.add("ops", "ops@lcsstaffing.com", "secret1")
	ident.add("retired", "retired@lcsstaffing.com", "secret1")
	ident.add("stranger", "stranger@example.com", "secret1")
	logins := &fakeLoginRepo{}
	svc := NewAuthService(AuthDependencies{
		Provider:  ident,
		Gate:      auth.NewGate(ident, admins, nil, nil),
		LoginRepo: logins,
		AdminRepo: admins,
	})
	return &authFixture{svc: svc, ident: ident, admins: admins, logins: logins}
}

func TestLogin_SuccessRecordsAudit(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	res, err := f.svc.Login(ctx, "ops@lcsstaffing.com", "secret1", LoginMeta{UserAgent: "Mozilla/5.0 (iPhone)"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ops", res.Session.UID)
	assert.False(t, res.Session.IsSuperAdmin)

	_, err = f.svc.Login(ctx, "ops@lcsstaffing.com", "secret1", LoginMeta{})
	require.NoError(t, err)

	rec := f.logins.records["ops"]
	require.NotNil(t, rec)
	assert.Equal(t, 2, rec.LoginCount)
	assert.Equal(t, "unknown", rec.Device)
	assert.NotNil(t, f.admins.admins["ops"].LastLoginAt)
}

func TestLogin_AuditFailureDoesNotBlock(t *testing.T) {
	f := newAuthFixture()
	f.logins.err = errors.New("audit table locked")

	_, err := f.svc.Login(context.Background(), "ops@lcsstaffing.com", "secret1", LoginMeta{})
	assert.NoError(t, err)
}

func TestLogin_ProviderErrorsMapToMessages(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.Login(ctx, "ops@lcsstaffing.com", "wrong", LoginMeta{})
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeAuth, de.Code)
	assert.Equal(t, http.StatusUnauthorized, de.HTTPStatus)
	assert.Equal(t, "Incorrect password", de.Message)
	assert.Equal(t, "wrong-password", de.Details["provider_code"])

	f.ident.signInErr = &identity.ProviderError{Code: identity.CodeTooManyRequests}
	_, err = f.svc.Login(ctx, "ops@lcsstaffing.com", "secret1", LoginMeta{})
	assert.Equal(t, http.StatusTooManyRequests, apperrors.ToDomainError(err).HTTPStatus)

	f.ident.signInErr = &identity.ProviderError{Code: identity.Code("quota-exceeded")}
	_, err = f.svc.Login(ctx, "ops@lcsstaffing.com", "secret1", LoginMeta{})
	assert.Equal(t, identity.GenericMessage, apperrors.ToDomainError(err).Message)
}

func TestLogin_GateRejectsAndSignsOut(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	for _, email := range []string{"retired@lcsstaffing.com", "stranger@example.com"} {
		_, err := f.svc.Login(ctx, email, "secret1", LoginMeta{})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), email)
	}
	assert.Empty(t, f.ident.tokens)
	assert.Empty(t, f.logins.records)
}

func TestLogoutAndSession(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	res, err := f.svc.Login(ctx, "ops@lcsstaffing.com", "secret1", LoginMeta{})
	require.NoError(t, err)

	assert.Equal(t, auth.DecisionAuthorized, f.svc.Session(ctx, res.Token).Decision)
	require.NoError(t, f.svc.Logout(ctx, res.Token))
	assert.Equal(t, auth.DecisionUnauthenticated, f.svc.Session(ctx, res.Token).Decision)
}

func TestPasswordResetFlows(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "ops@lcsstaffing.com"))
	assert.Equal(t, []string{"ops@lcsstaffing.com"}, f.ident.resetFor)

	f.ident.fakeAccountProvider.err = &identity.ProviderError{Code: identity.CodeInvalidEmail}
	err := f.svc.RequestPasswordReset(ctx, "nope")
	assert.Equal(t, "Invalid email", apperrors.ToDomainError(err).Message)

	require.NoError(t, f.svc.ConfirmPasswordReset(ctx, "good", "newsecret"))
	err = f.svc.ConfirmPasswordReset(ctx, "stale", "newsecret")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestDeviceFromAgent(t *testing.T) {
	assert.Equal(t, "tablet", deviceFromAgent(LoginMeta{Device: "tablet"}))
	assert.Equal(t, "android", deviceFromAgent(LoginMeta{UserAgent: "okhttp Android 14"}))
	assert.Equal(t, "web", deviceFromAgent(LoginMeta{UserAgent: "Mozilla/5.0 (X11; Linux)"}))
}
