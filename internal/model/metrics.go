package model

import "github.com/google/uuid"

// PhasePerformanceMetric is a derived row, recomputed and upserted whenever the
// corresponding phase ends. Keyed by (invoice, phase); never hand-edited.
type PhasePerformanceMetric struct {
	BaseModel
	InvoiceID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_metric_invoice_phase" json:"invoice_id"`
	Phase      Phase      `gorm:"type:varchar(20);not null;uniqueIndex:idx_metric_invoice_phase" json:"phase"`
	OperatorID *uuid.UUID `gorm:"type:uuid" json:"operator_id,omitempty"`

	InvoiceStartTime string `gorm:"type:varchar(20)" json:"invoice_start_time"` // DD-MM-YYYY HH:MM:SS
	InvoiceEndTime   string `gorm:"type:varchar(20)" json:"invoice_end_time"`

	LineItems      int      `gorm:"not null;default:0" json:"line_items"`
	TimeToComplete int      `gorm:"not null;default:0" json:"time_to_pick"` // seconds
	TotalScans     int      `gorm:"not null;default:0" json:"total_scans"`
	MedianScanGap  *float64 `json:"median_time_between_scans,omitempty"` // seconds, nil with <2 scans
	Accuracy       float64  `gorm:"not null;default:0" json:"accuracy"`  // percent, 2dp
}

func (PhasePerformanceMetric) TableName() string {
	return "performance_metrics"
}
