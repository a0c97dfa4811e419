package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rental-service/internal/api/dto"
	"github.com/spec-kit/rental-service/internal/auth"
	"github.com/spec-kit/rental-service/internal/service"
	apperrors "github.com/spec-kit/rental-service/pkg/util"
)

// AdminHandler exposes admin verification and account management
// endpoints.
type AdminHandler struct {
	verification *service.VerificationService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(verificationService *service.VerificationService) *AdminHandler {
	return &AdminHandler{verification: verificationService}
}

// ApproveChannel POST /admin/users/:id/verification/:channel/approve.
func (h *AdminHandler) ApproveChannel(c *fiber.Ctx) error {
	admin, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	user, err := h.verification.ApproveChannel(c.Context(), admin, c.Params("id"), c.Params("channel"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// RejectChannel POST /admin/users/:id/verification/:channel/reject.
func (h *AdminHandler) RejectChannel(c *fiber.Ctx) error {
	admin, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.VerificationDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.verification.RejectChannel(c.Context(), admin, c.Params("id"), c.Params("channel"), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// DocumentURL GET /admin/users/:id/verification/document.
func (h *AdminHandler) DocumentURL(c *fiber.Ctx) error {
	if _, ok := auth.CurrentUser(c); !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	url, err := h.verification.DocumentURL(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"url": url}})
}

// Deactivate POST /admin/users/:id/deactivate.
func (h *AdminHandler) Deactivate(c *fiber.Ctx) error {
	admin, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.DeactivateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.verification.Deactivate(c.Context(), admin, c.Params("id"), req.AllowReactivationRequest)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// Reactivate POST /admin/users/:id/reactivate.
func (h *AdminHandler) Reactivate(c *fiber.Ctx) error {
	if _, ok := auth.CurrentUser(c); !ok {
		return apperrors.NewUnauthorized("admin required")
	}
	user, err := h.verification.Reactivate(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}
