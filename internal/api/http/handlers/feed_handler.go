package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/rental-service/internal/api/dto"
	"github.com/spec-kit/rental-service/internal/auth"
	"github.com/spec-kit/rental-service/internal/service"
	apperrors "github.com/spec-kit/rental-service/pkg/util"
)

// FeedHandler exposes the aggregated notification feed.
type FeedHandler struct {
	service *service.FeedService
}

// NewFeedHandler constructs handler.
func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{service: feedService}
}

// List GET /feed.
func (h *FeedHandler) List(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	items, err := h.service.BuildFeed(c.Context(), user)
	if err != nil {
		return err
	}
	response := make([]dto.FeedItemResponse, 0, len(items))
	for _, item := range items {
		response = append(response, feedItemResponse(item))
	}
	return c.JSON(fiber.Map{"data": response})
}

// MarkRead POST /feed/:id/read.
func (h *FeedHandler) MarkRead(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.MarkRead(c.Context(), user, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"read": true}})
}

// MarkAllRead POST /feed/read-all.
func (h *FeedHandler) MarkAllRead(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.MarkAllRead(c.Context(), user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"read": true}})
}

// ClearAll DELETE /feed.
func (h *FeedHandler) ClearAll(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.ClearAll(c.Context(), user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"cleared": true}})
}
