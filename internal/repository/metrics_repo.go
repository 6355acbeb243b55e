package repository

import (
	"go-invoice-verify/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MetricsRepository interface {
	Upsert(metric *model.PhasePerformanceMetric) error
	FindByInvoice(invoiceID uuid.UUID) ([]model.PhasePerformanceMetric, error)
}

type metricsRepo struct {
	db *gorm.DB
}

func NewMetricsRepo(db *gorm.DB) MetricsRepository {
	return &metricsRepo{db}
}

// Upsert replaces every derived column on conflict of (invoice_id, phase),
// relying on the store's unique-constraint upsert rather than a read-then-write.
func (r *metricsRepo) Upsert(metric *model.PhasePerformanceMetric) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "invoice_id"}, {Name: "phase"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"operator_id",
			"invoice_start_time",
			"invoice_end_time",
			"line_items",
			"time_to_complete",
			"total_scans",
			"median_scan_gap",
			"accuracy",
			"updated_at",
		}),
	}).Create(metric).Error
}

func (r *metricsRepo) FindByInvoice(invoiceID uuid.UUID) ([]model.PhasePerformanceMetric, error) {
	var metrics []model.PhasePerformanceMetric
	err := r.db.Where("invoice_id = ?", invoiceID).Find(&metrics).Error
	return metrics, err
}
