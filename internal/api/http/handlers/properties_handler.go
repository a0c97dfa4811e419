package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rental-service/internal/api/dto"
	"github.com/spec-kit/rental-service/internal/auth"
	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/repository"
	"github.com/spec-kit/rental-service/internal/service"
	apperrors "github.com/spec-kit/rental-service/pkg/util"
)

// PropertiesHandler manages listing endpoints.
type PropertiesHandler struct {
	service *service.PropertyService
}

// NewPropertiesHandler constructs handler.
func NewPropertiesHandler(propertyService *service.PropertyService) *PropertiesHandler {
	return &PropertiesHandler{service: propertyService}
}

// Create POST /properties.
func (h *PropertiesHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.PropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	property, err := h.service.Create(c.Context(), user, propertyInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": propertyResponse(property)})
}

// Update PUT /properties/:id.
func (h *PropertiesHandler) Update(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.PropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	property, err := h.service.Update(c.Context(), user, c.Params("id"), propertyInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": propertyResponse(property)})
}

// Delete DELETE /properties/:id.
func (h *PropertiesHandler) Delete(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.Delete(c.Context(), user, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"deleted": true}})
}

// Get GET /properties/:id.
func (h *PropertiesHandler) Get(c *fiber.Ctx) error {
	property, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": propertyResponse(property)})
}

// List GET /properties.
func (h *PropertiesHandler) List(c *fiber.Ctx) error {
	filter := parsePropertyQuery(c)
	properties, err := h.service.Search(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.PropertyResponse, 0, len(properties))
	for i := range properties {
		items = append(items, propertyResponse(&properties[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListMine GET /properties/mine.
func (h *PropertiesHandler) ListMine(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	properties, err := h.service.ListForOwner(c.Context(), user.ID)
	if err != nil {
		return err
	}
	items := make([]dto.PropertyResponse, 0, len(properties))
	for i := range properties {
		items = append(items, propertyResponse(&properties[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func propertyInput(req dto.PropertyRequest) service.PropertyInput {
	return service.PropertyInput{
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Bedrooms:    req.Bedrooms,
		RentAmount:  req.RentAmount,
	}
}

func parsePropertyQuery(c *fiber.Ctx) repository.PropertyFilter {
	var filter repository.PropertyFilter
	if city := c.Query("city"); city != "" {
		filter.City = &city
	}
	if raw := c.Query("status"); raw != "" {
		for _, value := range strings.Split(raw, ",") {
			value = strings.TrimSpace(strings.ToUpper(value))
			if value != "" {
				filter.Statuses = append(filter.Statuses, domain.PropertyStatus(value))
			}
		}
	}
	if ownerID := c.Query("owner_id"); ownerID != "" {
		filter.OwnerID = &ownerID
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}
	return filter
}
