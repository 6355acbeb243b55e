package handler

import (
	"errors"

	"go-invoice-verify/internal/service"
	"go-invoice-verify/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ScanHandler struct {
	resolver   service.ResolverService
	reconciler service.ReconcilerService
}

func NewScanHandler(resolver service.ResolverService, reconciler service.ReconcilerService) *ScanHandler {
	return &ScanHandler{resolver: resolver, reconciler: reconciler}
}

// Helper to get operator info from JWT context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system" // shouldn't happen on protected routes
	}
	return userID.(string)
}

func getUserName(c *fiber.Ctx) string {
	userName := c.Locals("user_name")
	if userName == nil {
		return "Unknown"
	}
	return userName.(string)
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

func validationError(c *fiber.Ctx, errs []*validator.ErrorResponse) error {
	return c.Status(400).JSON(fiber.Map{
		"status":  "error",
		"message": "Validation failed: field " + errs[0].FailedField + " is invalid (" + errs[0].Tag + ")",
	})
}

// Match resolves a scanned product against the catalog.
// POST /api/v1/scan/match
func (h *ScanHandler) Match(c *fiber.Ctx) error {
	var query service.ScanQuery
	if err := c.BodyParser(&query); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid JSON"})
	}

	if errs := validator.ValidateStruct(query); len(errs) > 0 {
		return validationError(c, errs)
	}

	matches, err := h.resolver.Resolve(query)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Product lookup failed"})
	}

	if len(matches) == 0 {
		return c.JSON(fiber.Map{
			"status":  "not_found",
			"count":   0,
			"message": "No product matched the scanned details",
			"data":    []interface{}{},
		})
	}

	status := "success"
	message := "Exact product match found"
	if len(matches) > 1 {
		status = "multiple"
		message = "Multiple candidate products found"
	}

	return c.JSON(fiber.Map{
		"status":  status,
		"count":   len(matches),
		"message": message,
		"data":    matches,
	})
}

// UpdateQuantities applies a batch of resolved scans to an invoice.
// PUT /api/v1/scan/quantity
func (h *ScanHandler) UpdateQuantities(c *fiber.Ctx) error {
	var req service.ScanBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid JSON"})
	}

	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return validationError(c, errs)
	}

	operatorID, err := parseUUID(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"status": "error", "message": "Invalid operator ID"})
	}

	result, err := h.reconciler.ApplyBatch(req, operatorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvoiceNotFound):
			return c.Status(404).JSON(fiber.Map{"status": "error", "message": err.Error()})
		case errors.Is(err, service.ErrEmptyScanBatch):
			return c.Status(400).JSON(fiber.Map{"status": "error", "message": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to apply scan batch"})
		}
	}

	if result.Status == "partial_error" {
		return c.JSON(fiber.Map{
			"status":  result.Status,
			"message": "Some items could not be updated",
			"errors":  result.Errors,
		})
	}

	return c.JSON(fiber.Map{"status": result.Status, "message": "Quantities updated"})
}
