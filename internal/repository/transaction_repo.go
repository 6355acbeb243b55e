package repository

import (
	"go-invoice-verify/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	CreateBatch(transactions []model.ScanTransaction) error
	FindByInvoice(invoiceID uuid.UUID) ([]model.ScanTransaction, error)
	CountByInvoicePhase(invoiceID uuid.UUID, phase model.Phase) (int64, error)
	TimestampsByInvoicePhase(invoiceID uuid.UUID, phase model.Phase) ([]string, error)
	CountResolvedScans(invoiceID uuid.UUID, phase model.Phase) (int64, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) CreateBatch(transactions []model.ScanTransaction) error {
	if len(transactions) == 0 {
		return nil
	}
	return r.db.Create(&transactions).Error
}

func (r *transactionRepo) FindByInvoice(invoiceID uuid.UUID) ([]model.ScanTransaction, error) {
	var transactions []model.ScanTransaction
	err := r.db.Where("invoice_id = ?", invoiceID).Order("timestamp ASC").Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) CountByInvoicePhase(invoiceID uuid.UUID, phase model.Phase) (int64, error) {
	var count int64
	err := r.db.Model(&model.ScanTransaction{}).
		Where("invoice_id = ? AND phase = ?", invoiceID, phase).
		Count(&count).Error
	return count, err
}

func (r *transactionRepo) TimestampsByInvoicePhase(invoiceID uuid.UUID, phase model.Phase) ([]string, error) {
	var timestamps []string
	err := r.db.Model(&model.ScanTransaction{}).
		Where("invoice_id = ? AND phase = ?", invoiceID, phase).
		Order("timestamp ASC").
		Pluck("timestamp", &timestamps).Error
	return timestamps, err
}

// CountResolvedScans counts transactions whose scan outcome is present and was
// not a manual disambiguation, the numerator of the accuracy metric.
func (r *transactionRepo) CountResolvedScans(invoiceID uuid.UUID, phase model.Phase) (int64, error) {
	var count int64
	err := r.db.Model(&model.ScanTransaction{}).
		Where("invoice_id = ? AND phase = ? AND scan_status IS NOT NULL AND scan_status != ?",
			invoiceID, phase, model.ScanManual).
		Count(&count).Error
	return count, err
}
