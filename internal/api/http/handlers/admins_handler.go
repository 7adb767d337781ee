package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lcs-staffing/admin-console/internal/api/dto"
	"github.com/lcs-staffing/admin-console/internal/domain"
	"github.com/lcs-staffing/admin-console/internal/service"
)

// AdminsHandler exposes the administrator roster.
type AdminsHandler struct {
	service *service.RosterService
}

// NewAdminsHandler constructs handler.
func NewAdminsHandler(roster *service.RosterService) *AdminsHandler {
	return &AdminsHandler{service: roster}
}

// List GET /admins.
func (h *AdminsHandler) List(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	admins, err := h.service.List(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": adminResponses(admins)})
}

// ListActive GET /admins/active.
func (h *AdminsHandler) ListActive(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	admins, err := h.service.ListActive(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": adminResponses(admins)})
}

// Create POST /admins.
func (h *AdminsHandler) Create(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.CreateAdminRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	admin, err := h.service.Create(c.UserContext(), session, req.Email, req.Password, req.IsSuperAdmin)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": adminResponse(admin)})
}

// UpdateEmail PATCH /admins/:id/email.
func (h *AdminsHandler) UpdateEmail(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	var req dto.UpdateAdminEmailRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	admin, err := h.service.UpdateEmail(c.UserContext(), session, c.Params("id"), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": adminResponse(admin)})
}

// ToggleActive POST /admins/:id/toggle-active.
func (h *AdminsHandler) ToggleActive(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	admin, err := h.service.ToggleActive(c.UserContext(), session, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": adminResponse(admin)})
}

// SendPasswordReset POST /admins/:id/password-reset.
func (h *AdminsHandler) SendPasswordReset(c *fiber.Ctx) error {
	session, err := currentSession(c)
	if err != nil {
		return err
	}
	if err := h.service.SendPasswordReset(c.UserContext(), session, c.Params("id")); err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"sent": true}})
}

func adminResponse(a *domain.AdminAccount) dto.AdminResponse {
	return dto.AdminResponse{
		ID:           a.ID,
		Email:        a.Email,
		Role:         a.Role,
		IsSuperAdmin: a.Super(),
		IsActive:     a.IsActive,
		LastLoginAt:  a.LastLoginAt,
		CreatedAt:    a.CreatedAt,
	}
}

func adminResponses(admins []domain.AdminAccount) []dto.AdminResponse {
	items := make([]dto.AdminResponse, 0, len(admins))
	for i := range admins {
		items = append(items, adminResponse(&admins[i]))
	}
	return items
}
