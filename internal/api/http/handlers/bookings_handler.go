package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rental-service/internal/api/dto"
	"github.com/spec-kit/rental-service/internal/auth"
	"github.com/spec-kit/rental-service/internal/domain"
	"github.com/spec-kit/rental-service/internal/service"
	apperrors "github.com/spec-kit/rental-service/pkg/util"
)

// BookingsHandler manages tenancy endpoints.
type BookingsHandler struct {
	service *service.BookingService
}

// NewBookingsHandler constructs handler.
func NewBookingsHandler(bookingService *service.BookingService) *BookingsHandler {
	return &BookingsHandler{service: bookingService}
}

// Create POST /bookings.
func (h *BookingsHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PropertyID == "" || req.RenterID == "" {
		return apperrors.NewValidationError("property_id and renter_id required", nil)
	}
	if req.StartDate.IsZero() {
		return apperrors.NewValidationError("start_date required", nil)
	}

	booking, err := h.service.Add(c.Context(), user, req.PropertyID, req.RenterID, service.BookingInput{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Occupants: occupantsFromPayload(req.Occupants),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": bookingResponse(booking)})
}

// Update PUT /bookings/:id.
func (h *BookingsHandler) Update(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.StartDate.IsZero() {
		return apperrors.NewValidationError("start_date required", nil)
	}

	booking, err := h.service.Update(c.Context(), user, c.Params("id"), service.BookingInput{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Occupants: occupantsFromPayload(req.Occupants),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bookingResponse(booking)})
}

// Close POST /bookings/:id/close.
func (h *BookingsHandler) Close(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	booking, err := h.service.Close(c.Context(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bookingResponse(booking)})
}

// ListMine GET /bookings/mine.
func (h *BookingsHandler) ListMine(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	bookings, err := h.service.ListForRenter(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bookingList(bookings)})
}

// ListActive GET /bookings/active.
func (h *BookingsHandler) ListActive(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	bookings, err := h.service.ListActiveForOwner(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bookingList(bookings)})
}

func bookingList(bookings []domain.Booking) []dto.BookingResponse {
	items := make([]dto.BookingResponse, 0, len(bookings))
	for i := range bookings {
		items = append(items, bookingResponse(&bookings[i]))
	}
	return items
}
