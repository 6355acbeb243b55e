package repository

import (
	"go-invoice-verify/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MetadataRepository interface {
	FindByInvoiceID(invoiceID uuid.UUID) (*model.InvoicePhaseMetadata, error)
	Create(tx *gorm.DB, meta *model.InvoicePhaseMetadata) error
	UpdateFields(tx *gorm.DB, invoiceID uuid.UUID, updates map[string]interface{}) error
}

type metadataRepo struct {
	db *gorm.DB
}

func NewMetadataRepo(db *gorm.DB) MetadataRepository {
	return &metadataRepo{db}
}

// FindByInvoiceID returns nil (no error) when the invoice has no metadata row yet.
func (r *metadataRepo) FindByInvoiceID(invoiceID uuid.UUID) (*model.InvoicePhaseMetadata, error) {
	var meta model.InvoicePhaseMetadata
	err := r.db.Where("invoice_id = ?", invoiceID).First(&meta).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &meta, nil
}

func (r *metadataRepo) Create(tx *gorm.DB, meta *model.InvoicePhaseMetadata) error {
	return tx.Create(meta).Error
}

func (r *metadataRepo) UpdateFields(tx *gorm.DB, invoiceID uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(&model.InvoicePhaseMetadata{}).
		Where("invoice_id = ?", invoiceID).
		Updates(updates).Error
}
