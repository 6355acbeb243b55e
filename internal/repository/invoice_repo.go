package repository

import (
	"go-invoice-verify/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceRepository interface {
	FindByID(id uuid.UUID) (*model.Invoice, error)
	Exists(id uuid.UUID) (bool, error)
	UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.InvoiceStatus) error

	LineItems(invoiceID uuid.UUID) ([]model.InvoiceLineItem, error)
	CountLineItems(invoiceID uuid.UUID) (int64, error)
	LineItemExists(invoiceID uuid.UUID, productName, batchNumber, expiryDate string, mrp float64) (bool, error)
	CreateLineItem(item *model.InvoiceLineItem) error
	DeleteLineItem(id uuid.UUID) (int64, error)

	// UpdateLineItemScan writes the role-specific scanned-qty/status pair on the
	// line item matched by (id, invoice, product name). Returns rows affected so
	// the caller can treat a zero-row match as a soft no-op.
	UpdateLineItemScan(tx *gorm.DB, role model.OperatorRole, lineItemID, invoiceID uuid.UUID,
		productName string, scannedQty float64, scanStatus *model.ScanOutcome) (int64, error)
}

type invoiceRepo struct {
	db *gorm.DB
}

func NewInvoiceRepo(db *gorm.DB) InvoiceRepository {
	return &invoiceRepo{db}
}

func (r *invoiceRepo) FindByID(id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.Preload("Metadata").First(&invoice, "id = ?", id).Error
	return &invoice, err
}

func (r *invoiceRepo) Exists(id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.Invoice{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *invoiceRepo) UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.InvoiceStatus) error {
	return tx.Model(&model.Invoice{}).Where("id = ?", id).Update("status", status).Error
}

func (r *invoiceRepo) LineItems(invoiceID uuid.UUID) ([]model.InvoiceLineItem, error) {
	var items []model.InvoiceLineItem
	err := r.db.Where("invoice_id = ?", invoiceID).Order("rack_no ASC").Find(&items).Error
	return items, err
}

func (r *invoiceRepo) CountLineItems(invoiceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.InvoiceLineItem{}).Where("invoice_id = ?", invoiceID).Count(&count).Error
	return count, err
}

func (r *invoiceRepo) LineItemExists(invoiceID uuid.UUID, productName, batchNumber, expiryDate string, mrp float64) (bool, error) {
	var count int64
	err := r.db.Model(&model.InvoiceLineItem{}).
		Where("invoice_id = ? AND product_name = ? AND batch_number = ? AND expiry_date = ? AND ABS(mrp - ?) < 0.01",
			invoiceID, productName, batchNumber, expiryDate, mrp).
		Count(&count).Error
	return count > 0, err
}

func (r *invoiceRepo) CreateLineItem(item *model.InvoiceLineItem) error {
	return r.db.Create(item).Error
}

func (r *invoiceRepo) DeleteLineItem(id uuid.UUID) (int64, error) {
	result := r.db.Unscoped().Delete(&model.InvoiceLineItem{}, "id = ?", id)
	return result.RowsAffected, result.Error
}

func (r *invoiceRepo) UpdateLineItemScan(tx *gorm.DB, role model.OperatorRole, lineItemID, invoiceID uuid.UUID,
	productName string, scannedQty float64, scanStatus *model.ScanOutcome) (int64, error) {

	// Role picks the column pair; anything other than checker falls to picker,
	// matching the two scanning phases on the line item.
	qtyCol, statusCol := "picker_scanned_qty", "picker_scan_status"
	if role == model.RoleChecker {
		qtyCol, statusCol = "checker_scanned_qty", "checker_scan_status"
	}

	result := tx.Model(&model.InvoiceLineItem{}).
		Where("id = ? AND invoice_id = ? AND product_name = ?", lineItemID, invoiceID, productName).
		Updates(map[string]interface{}{
			qtyCol:    scannedQty,
			statusCol: scanStatus,
		})
	return result.RowsAffected, result.Error
}
