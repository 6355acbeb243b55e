package handler

import (
	"errors"

	"go-invoice-verify/internal/service"
	"go-invoice-verify/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InvoiceHandler struct {
	invoiceService     service.InvoiceService
	workflowService    service.WorkflowService
	metricsService     service.MetricsService
	transactionService service.TransactionService
}

func NewInvoiceHandler(invoiceService service.InvoiceService, workflowService service.WorkflowService,
	metricsService service.MetricsService, transactionService service.TransactionService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService:     invoiceService,
		workflowService:    workflowService,
		metricsService:     metricsService,
		transactionService: transactionService,
	}
}

// Detail returns one invoice with its phase metadata.
// GET /api/v1/invoices/:id
func (h *InvoiceHandler) Detail(c *fiber.Ctx) error {
	invoiceID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid invoice ID"})
	}

	invoice, err := h.invoiceService.Detail(invoiceID)
	if err != nil {
		if errors.Is(err, service.ErrInvoiceNotFound) {
			return c.Status(404).JSON(fiber.Map{"status": "error", "message": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to load invoice"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": invoice})
}

// LineItems returns the invoice's product list ordered by rack number.
// GET /api/v1/invoices/:id/items
func (h *InvoiceHandler) LineItems(c *fiber.Ctx) error {
	invoiceID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid invoice ID"})
	}

	items, err := h.invoiceService.LineItems(invoiceID)
	if err != nil {
		if errors.Is(err, service.ErrInvoiceNotFound) {
			return c.Status(404).JSON(fiber.Map{"status": "error", "message": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to load line items"})
	}

	return c.JSON(fiber.Map{"status": "success", "count": len(items), "data": items})
}

// AddLineItem appends a product row to the invoice.
// POST /api/v1/invoices/:id/items
func (h *InvoiceHandler) AddLineItem(c *fiber.Ctx) error {
	invoiceID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid invoice ID"})
	}

	var req service.AddLineItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid JSON"})
	}

	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return validationError(c, errs)
	}

	item, err := h.invoiceService.AddLineItem(invoiceID, req, getUserName(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvoiceNotFound):
			return c.Status(404).JSON(fiber.Map{"status": "error", "message": err.Error()})
		case errors.Is(err, service.ErrDuplicateLineItem):
			return c.Status(409).JSON(fiber.Map{"status": "error", "message": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to add line item"})
		}
	}

	return c.Status(201).JSON(fiber.Map{"status": "success", "message": "Line item added", "data": item})
}

// RemoveLineItem deletes a product row from the invoice.
// DELETE /api/v1/invoices/:id/items/:itemId
func (h *InvoiceHandler) RemoveLineItem(c *fiber.Ctx) error {
	invoiceID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid invoice ID"})
	}

	lineItemID, err := parseUUID(c.Params("itemId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid line item ID"})
	}

	if err := h.invoiceService.RemoveLineItem(invoiceID, lineItemID); err != nil {
		switch {
		case errors.Is(err, service.ErrInvoiceNotFound), errors.Is(err, service.ErrLineItemNotFound):
			return c.Status(404).JSON(fiber.Map{"status": "error", "message": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to remove line item"})
		}
	}

	return c.JSON(fiber.Map{"status": "success", "message": "Line item removed"})
}

// UpdateMetadata records phase timestamps for the invoice.
// PUT /api/v1/invoices/:id/metadata
func (h *InvoiceHandler) UpdateMetadata(c *fiber.Ctx) error {
	invoiceID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid invoice ID"})
	}

	var req service.PhaseMetadataRequest
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

	applied, err := h.workflowService.UpdatePhaseMetadata(invoiceID, req, operatorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvoiceNotFound):
			return c.Status(404).JSON(fiber.Map{"status": "error", "message": err.Error()})
		case errors.Is(err, service.ErrNoMetadataFields), errors.Is(err, service.ErrInvalidEndRequest):
			return c.Status(400).JSON(fiber.Map{"status": "error", "message": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to update metadata"})
		}
	}

	return c.JSON(fiber.Map{"status": "success", "message": "Metadata updated", "applied": applied})
}

// Metrics returns the computed performance rows for the invoice.
// GET /api/v1/invoices/:id/metrics
func (h *InvoiceHandler) Metrics(c *fiber.Ctx) error {
	invoiceID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid invoice ID"})
	}

	metrics, err := h.metricsService.ForInvoice(invoiceID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to load metrics"})
	}

	return c.JSON(fiber.Map{"status": "success", "count": len(metrics), "data": metrics})
}

// AppendTransactions records a batch of raw scan events.
// POST /api/v1/invoices/:id/transactions
func (h *InvoiceHandler) AppendTransactions(c *fiber.Ctx) error {
	invoiceID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid invoice ID"})
	}

	var batch service.TransactionBatch
	if err := c.BodyParser(&batch); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid JSON"})
	}
	batch.InvoiceID = invoiceID

	if errs := validator.ValidateStruct(batch); len(errs) > 0 {
		return validationError(c, errs)
	}

	operatorID, err := parseUUID(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"status": "error", "message": "Invalid operator ID"})
	}

	if err := h.transactionService.Append(batch, operatorID); err != nil {
		switch {
		case errors.Is(err, service.ErrInvoiceNotFound):
			return c.Status(404).JSON(fiber.Map{"status": "error", "message": err.Error()})
		case errors.Is(err, service.ErrNoTransactions):
			return c.Status(400).JSON(fiber.Map{"status": "error", "message": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to record transactions"})
		}
	}

	return c.Status(201).JSON(fiber.Map{"status": "success", "message": "Transactions recorded"})
}

// Transactions returns the invoice's scan event log.
// GET /api/v1/invoices/:id/transactions
func (h *InvoiceHandler) Transactions(c *fiber.Ctx) error {
	invoiceID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid invoice ID"})
	}

	txs, err := h.transactionService.ForInvoice(invoiceID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to load transactions"})
	}

	return c.JSON(fiber.Map{"status": "success", "count": len(txs), "data": txs})
}

// BindTrayRequest binds or frees a physical tray.
type BindTrayRequest struct {
	InvoiceID *uuid.UUID `json:"invoice_id"` // null frees the tray
}

// BindTray assigns an invoice to a tray, or frees the tray when invoice_id
// is null.
// PUT /api/v1/trays/:trayNo/invoice
func (h *InvoiceHandler) BindTray(c *fiber.Ctx) error {
	trayNo := c.Params("trayNo")
	if trayNo == "" {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Tray number is required"})
	}

	var req BindTrayRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"status": "error", "message": "Invalid JSON"})
	}

	tray, err := h.invoiceService.BindTray(trayNo, req.InvoiceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTrayNotFound), errors.Is(err, service.ErrInvoiceNotFound):
			return c.Status(404).JSON(fiber.Map{"status": "error", "message": err.Error()})
		default:
			return c.Status(500).JSON(fiber.Map{"status": "error", "message": "Failed to update tray"})
		}
	}

	return c.JSON(fiber.Map{"status": "success", "message": "Tray updated", "data": tray})
}
