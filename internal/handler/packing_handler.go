package handler

import (
	"errors"

	"go-invoice-verify/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PackingHandler struct {
	packingService service.PackingService
}

func NewPackingHandler(packingService service.PackingService) *PackingHandler {
	return &PackingHandler{packingService: packingService}
}

// Lookup returns the stored packing profile for a product.
// GET /api/v1/packing/:productName
func (h *PackingHandler) Lookup(c *fiber.Ctx) error {
	productName := c.Params("productName")
	if productName == "" {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Product name is required"})
	}

	profile, err := h.packingService.Lookup(productName)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to load packing profile"})
	}

	if profile == nil {
		return c.JSON(fiber.Map{"status": "not_found", "data": nil})
	}

	return c.JSON(fiber.Map{"status": "success", "data": profile})
}

// UpdateProfileRequest is an operator-entered packing override.
type UpdateProfileRequest struct {
	ShipperVal float64 `json:"shipper_val" validate:"gte=0"`
	BoxVal     float64 `json:"box_val" validate:"gte=0"`
	StripVal   float64 `json:"strip_val" validate:"gte=0"`
}

// UpdateProfile overwrites packing values for a product.
// PUT /api/v1/packing/:productName
func (h *PackingHandler) UpdateProfile(c *fiber.Ctx) error {
	productName := c.Params("productName")
	if productName == "" {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Product name is required"})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid JSON"})
	}

	obs := service.PackingObservation{
		ShipperVal: req.ShipperVal,
		BoxVal:     req.BoxVal,
		StripVal:   req.StripVal,
	}
	if obs.IsZero() {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": service.ErrNoPackingValues.Error()})
	}

	profile, err := h.packingService.UpdateProfile(productName, obs, getUserName(c))
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			return c.Status(404).JSON(fiber.Map{"status": "error", "message": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to update packing profile"})
	}

	return c.JSON(fiber.Map{"status": "success", "message": "Packing profile updated", "data": profile})
}
