package service

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/lcs-staffing/admin-console/internal/identity"
	apperrors "github.com/lcs-staffing/admin-console/pkg/util"
)

// storeError maps repository failures: missing rows become NotFound, everything else StoreError.
func storeError(resource string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewStoreError(err)
}

// providerError converts identity failures raised outside of sign-in.
func providerError(err error, message func(identity.Code) string) error {
	code := identity.CodeOf(err)
	if code == "" {
		return apperrors.MapError(err)
	}
	msg := message(code)
	details := map[string]any{"provider_code": string(code)}

	switch code {
	case identity.CodeInvalidEmail:
		details["field"] = "email"
		return apperrors.NewDomainError(apperrors.CodeValidation, msg, http.StatusBadRequest, details)
	case identity.CodeWeakPassword:
		details["field"] = "password"
		return apperrors.NewDomainError(apperrors.CodeValidation, msg, http.StatusBadRequest, details)
	case identity.CodeEmailInUse:
		details["field"] = "email"
		return apperrors.NewDomainError(apperrors.CodeConflict, msg, http.StatusConflict, details)
	case identity.CodeUserNotFound:
		return apperrors.NewDomainError(apperrors.CodeNotFound, msg, http.StatusNotFound, details)
	case identity.CodeExpiredActionCode:
		return apperrors.NewDomainError(apperrors.CodeValidation, msg, http.StatusBadRequest, details)
	case identity.CodeTooManyRequests:
		return apperrors.NewDomainError(apperrors.CodeAuth, msg, http.StatusTooManyRequests, details)
	default:
		return apperrors.NewDomainError(apperrors.CodeAuth, msg, http.StatusBadGateway, details)
	}
}
