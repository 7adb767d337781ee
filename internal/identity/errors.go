package identity

import (
	"errors"
	"fmt"
)

// Code identifies a provider failure kind. Values match the codes the console UI already switches on.
type Code string

const (
	CodeUserNotFound        Code = "user-not-found"
	CodeWrongPassword       Code = "wrong-password"
	CodeInvalidEmail        Code = "invalid-email"
	CodeUserDisabled        Code = "user-disabled"
	CodeTooManyRequests     Code = "too-many-requests"
	CodeNetworkFailed       Code = "network-request-failed"
	CodeInvalidCredential   Code = "invalid-credential"
	CodeEmailInUse          Code = "email-already-in-use"
	CodeWeakPassword        Code = "weak-password"
	CodeExpiredActionCode   Code = "expired-action-code"
	CodeOperationNotAllowed Code = "operation-not-allowed"
)

// GenericMessage is shown for codes without a dedicated message.
const GenericMessage = "Unexpected error. Please try again"

var messages = map[Code]string{
	CodeUserNotFound:        "No account exists with this email",
	CodeWrongPassword:       "Incorrect password",
	CodeInvalidEmail:        "Invalid email format",
	CodeUserDisabled:        "This account has been disabled",
	CodeTooManyRequests:     "Too many attempts. Try again later",
	CodeNetworkFailed:       "Connection error. Check your network",
	CodeInvalidCredential:   "Invalid credentials. Check your email and password",
	CodeEmailInUse:          "This email is already registered",
	CodeWeakPassword:        "The password is too weak",
	CodeExpiredActionCode:   "This reset link has expired or was already used",
	CodeOperationNotAllowed: "Sign-in method not enabled. Contact the administrator",
}

// MessageFor returns the user-facing message for code.
func MessageFor(code Code) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return GenericMessage
}

// ResetMessageFor is the narrower table used when dispatching a reset email.
func ResetMessageFor(code Code) string {
	switch code {
	case CodeUserNotFound:
		return "User not found"
	case CodeInvalidEmail:
		return "Invalid email"
	default:
		return "Could not send the reset email"
	}
}

// ProviderError is returned by every Provider operation that fails.
type ProviderError struct {
	Code Code
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity: %s: %v", e.Code, e.Err)
	}
	return "identity: " + string(e.Code)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func newError(code Code, err error) error {
	return &ProviderError{Code: code, Err: err}
}

// CodeOf extracts the provider code from err, or "" when err is not a ProviderError.
func CodeOf(err error) Code {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
