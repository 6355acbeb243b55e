package repository

import (
	"go-invoice-verify/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrayRepository interface {
	FindByTrayNo(trayNo string) (*model.Tray, error)
	AssignInvoice(trayNo string, invoiceID *uuid.UUID) error
	ReleaseByInvoice(tx *gorm.DB, invoiceID uuid.UUID) (int64, error)
}

type trayRepo struct {
	db *gorm.DB
}

func NewTrayRepo(db *gorm.DB) TrayRepository {
	return &trayRepo{db}
}

func (r *trayRepo) FindByTrayNo(trayNo string) (*model.Tray, error) {
	var tray model.Tray
	err := r.db.Where("tray_no = ?", trayNo).First(&tray).Error
	if err != nil {
		return nil, err
	}
	return &tray, nil
}

// AssignInvoice binds a tray to an invoice; a nil invoiceID clears the binding.
func (r *trayRepo) AssignInvoice(trayNo string, invoiceID *uuid.UUID) error {
	return r.db.Model(&model.Tray{}).
		Where("tray_no = ?", trayNo).
		Update("invoice_id", invoiceID).Error
}

// ReleaseByInvoice clears every tray bound to the invoice, returning how many
// trays were freed.
func (r *trayRepo) ReleaseByInvoice(tx *gorm.DB, invoiceID uuid.UUID) (int64, error) {
	result := tx.Model(&model.Tray{}).
		Where("invoice_id = ?", invoiceID).
		Update("invoice_id", nil)
	return result.RowsAffected, result.Error
}
