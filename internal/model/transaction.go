package model

import "github.com/google/uuid"

type OperationType string

const (
	OpScan      OperationType = "scan"
	OpQtyChange OperationType = "qty_change"
)

// Phase identifies the workflow stage a transaction belongs to. Values mirror
// the *_end metadata fields so metrics can join transactions to phase windows.
type Phase string

const (
	PhasePickerEnd  Phase = "picker_end"
	PhaseCheckerEnd Phase = "checker_end"
	PhasePackerEnd  Phase = "packer_end"
)

// ScanTransaction is one append-only scan event. Rows are never updated or
// deleted; they are the sole input to phase performance metrics.
type ScanTransaction struct {
	BaseModel
	Timestamp  string        `gorm:"type:varchar(20);not null;index" json:"timestamp"` // DD-MM-YYYY HH:MM:SS
	InvoiceID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"invoice_id"`
	UserID     uuid.UUID     `gorm:"type:uuid;not null" json:"user_id"`
	RackID     string        `gorm:"type:varchar(20)" json:"rack_id"`
	Operation  OperationType `gorm:"type:varchar(20);not null" json:"operation_type" validate:"required,oneof=scan qty_change"`
	Phase      Phase         `gorm:"type:varchar(20);not null;index" json:"operation_status" validate:"required,oneof=picker_end checker_end packer_end"`
	ScanStatus *ScanOutcome  `gorm:"type:varchar(20)" json:"scan_status,omitempty"`
	Image      string        `gorm:"type:text" json:"image,omitempty"`
	LineItemID *uuid.UUID    `gorm:"type:uuid" json:"invoice_product_id,omitempty"`
}

func (ScanTransaction) TableName() string {
	return "transactions"
}
