package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lcs-staffing/admin-console/internal/api/dto"
	"github.com/lcs-staffing/admin-console/internal/auth"
	"github.com/lcs-staffing/admin-console/internal/service"
)

// HeaderDevice lets native clients name their platform explicitly.
const HeaderDevice = "X-Device"

// AuthHandler exposes sign-in, sign-out, session and password reset endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	meta := service.LoginMeta{
		UserAgent: c.Get(fiber.HeaderUserAgent),
		Device:    c.Get(HeaderDevice),
	}
	res, err := h.service.Login(c.UserContext(), req.Email, req.Password, meta)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"auth":    dto.AuthResponse{Token: res.Token, ExpiresAt: res.ExpiresAt},
			"session": sessionResponse(res.Session),
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.UserContext(), auth.BearerToken(c)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Session handles GET /auth/session. It always answers 200 with the gate decision
// so the UI can route to login or the dashboard.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	res := h.service.Session(c.UserContext(), auth.BearerToken(c))
	out := dto.SessionStatusResponse{Decision: string(res.Decision), Reason: res.Reason}
	if res.Session != nil {
		out.Session = sessionResponse(res.Session)
	}
	return c.JSON(fiber.Map{"data": out})
}

// RequestPasswordReset handles POST /auth/password/reset.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.service.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

// ConfirmPasswordReset handles POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := h.service.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}

func sessionResponse(s *auth.Session) *dto.SessionResponse {
	if s == nil {
		return nil
	}
	return &dto.SessionResponse{UID: s.UID, Email: s.Email, IsSuperAdmin: s.IsSuperAdmin}
}
