package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rental-service/internal/api/dto"
	"github.com/spec-kit/rental-service/internal/auth"
	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/service"
	apperrors "github.com/spec-kit/rental-service/pkg/util"
)

// ApplicationsHandler manages rental application endpoints.
type ApplicationsHandler struct {
	service *service.ApplicationService
}

// NewApplicationsHandler constructs handler.
func NewApplicationsHandler(applicationService *service.ApplicationService) *ApplicationsHandler {
	return &ApplicationsHandler{service: applicationService}
}

// Submit POST /applications.
func (h *ApplicationsHandler) Submit(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SubmitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PropertyID == "" {
		return apperrors.NewValidationError("property_id required", nil)
	}

	application, err := h.service.Submit(c.Context(), user, req.PropertyID, req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": applicationResponse(application)})
}

// Process PATCH /applications/:id/status.
func (h *ApplicationsHandler) Process(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ProcessApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status := domain.ApplicationStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	application, err := h.service.Process(c.Context(), user, c.Params("id"), status, service.ProcessOptions{
		Reason:     req.Reason,
		LeaseStart: req.LeaseStart,
	})
	if err != nil {
		return err
	}
	if application == nil {
		// the application vanished under the caller; nothing to report
		return c.Status(http.StatusNoContent).Send(nil)
	}
	return c.JSON(fiber.Map{"data": applicationResponse(application)})
}

// ListMine GET /applications/mine.
func (h *ApplicationsHandler) ListMine(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	applications, err := h.service.ListForRenter(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationList(applications)})
}

// ListReceived GET /applications/received.
func (h *ApplicationsHandler) ListReceived(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	applications, err := h.service.ListForOwner(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationList(applications)})
}

// ListForProperty GET /properties/:id/applications.
func (h *ApplicationsHandler) ListForProperty(c *fiber.Ctx) error {
	if _, ok := auth.CurrentUser(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	applications, err := h.service.ListForProperty(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": applicationList(applications)})
}

func applicationList(applications []domain.Application) []dto.ApplicationResponse {
	items := make([]dto.ApplicationResponse, 0, len(applications))
	for i := range applications {
		items = append(items, applicationResponse(&applications[i]))
	}
	return items
}
