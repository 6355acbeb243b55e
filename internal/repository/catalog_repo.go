package repository

import (
	"go-invoice-verify/internal/model"

	"gorm.io/gorm"
)

// StructuralFilter carries the structural predicates the resolver builds for
// fuzzy expansion. Zero-valued fields are left out of the query.
type StructuralFilter struct {
	ExpiryDate string
	MfgDate    string
	MRPMin     float64
	MRPMax     float64
	HasMRP     bool
}

// PredicateCount reports how many predicates the filter would apply.
func (f StructuralFilter) PredicateCount() int {
	n := 0
	if f.ExpiryDate != "" {
		n++
	}
	if f.MfgDate != "" {
		n++
	}
	if f.HasMRP {
		n++
	}
	return n
}

type CatalogRepository interface {
	FindByBarcode(barcode string) ([]model.CatalogEntry, error)
	FindByBatch(batchNumber string) ([]model.CatalogEntry, error)
	FindByStructural(filter StructuralFilter) ([]model.CatalogEntry, error)
	FindRackNo(productName, batchNumber, expiryDate string, mrp float64) (string, error)
}

type catalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db}
}

func (r *catalogRepo) FindByBarcode(barcode string) ([]model.CatalogEntry, error) {
	var entries []model.CatalogEntry
	err := r.db.
		Where("barcode1 = ? OR barcode2 = ?", barcode, barcode).
		Find(&entries).Error
	return entries, err
}

func (r *catalogRepo) FindByBatch(batchNumber string) ([]model.CatalogEntry, error) {
	var entries []model.CatalogEntry
	err := r.db.Where("batch_number = ?", batchNumber).Find(&entries).Error
	return entries, err
}

func (r *catalogRepo) FindByStructural(filter StructuralFilter) ([]model.CatalogEntry, error) {
	query := r.db.Model(&model.CatalogEntry{})
	if filter.ExpiryDate != "" {
		query = query.Where("expiry_date = ?", filter.ExpiryDate)
	}
	if filter.MfgDate != "" {
		query = query.Where("mfg_date = ?", filter.MfgDate)
	}
	if filter.HasMRP {
		query = query.Where("mrp >= ? AND mrp <= ?", filter.MRPMin, filter.MRPMax)
	}

	var entries []model.CatalogEntry
	err := query.Find(&entries).Error
	return entries, err
}

// FindRackNo looks up the rack assigned to a catalog identity. Returns "0"
// when the catalog has no matching row.
func (r *catalogRepo) FindRackNo(productName, batchNumber, expiryDate string, mrp float64) (string, error) {
	var entry model.CatalogEntry
	err := r.db.
		Select("rack_no").
		Where("product_name = ? AND batch_number = ? AND expiry_date = ? AND ABS(mrp - ?) < 0.01",
			productName, batchNumber, expiryDate, mrp).
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "0", nil
		}
		return "0", err
	}
	if entry.RackNo == "" {
		return "0", nil
	}
	return entry.RackNo, nil
}
