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

// BillsHandler manages charge endpoints.
type BillsHandler struct {
	service *service.BillService
}

// NewBillsHandler constructs handler.
func NewBillsHandler(billService *service.BillService) *BillsHandler {
	return &BillsHandler{service: billService}
}

// Create POST /bills.
func (h *BillsHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateBillRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PropertyID == "" || req.RenterID == "" {
		return apperrors.NewValidationError("property_id and renter_id required", nil)
	}

	bill, err := h.service.Create(c.Context(), user, service.BillInput{
		PropertyID: req.PropertyID,
		RenterID:   req.RenterID,
		Type:       domain.BillType(strings.ToUpper(req.Type)),
		Amount:     req.Amount,
		DueDate:    req.DueDate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": billResponse(bill)})
}

// MarkPaid POST /bills/:id/pay.
func (h *BillsHandler) MarkPaid(c *fiber.Ctx) error {
	if _, ok := auth.CurrentUser(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	bill, err := h.service.MarkPaid(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": billResponse(bill)})
}

// ListMine GET /bills/mine.
func (h *BillsHandler) ListMine(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	bills, err := h.service.ListForRenter(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": billList(bills)})
}

// ListForProperty GET /properties/:id/bills.
func (h *BillsHandler) ListForProperty(c *fiber.Ctx) error {
	if _, ok := auth.CurrentUser(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	bills, err := h.service.ListForProperty(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": billList(bills)})
}

func billList(bills []domain.Bill) []dto.BillResponse {
	items := make([]dto.BillResponse, 0, len(bills))
	for i := range bills {
		items = append(items, billResponse(&bills[i]))
	}
	return items
}
