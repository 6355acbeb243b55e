package model

import (
	"github.com/google/uuid"
)

type PriorityLevel string

const (
	PriorityHigh   PriorityLevel = "HIGH"
	PriorityMedium PriorityLevel = "MEDIUM"
	PriorityLow    PriorityLevel = "LOW"
)

type InvoiceStatus string

const (
	StatusNotStarted    InvoiceStatus = "not_started"
	StatusCheckingStart InvoiceStatus = "checking_start"
	StatusCheckingEnd   InvoiceStatus = "checking_end"
	StatusPickingStart  InvoiceStatus = "picking_start"
	StatusPickingEnd    InvoiceStatus = "picking_end"
	StatusCompleted     InvoiceStatus = "completed"
)

type InvoiceType string

const (
	InvoicePurchase InvoiceType = "purchase"
	InvoiceSell     InvoiceType = "sell"
)

// ScanOutcome is the resolution outcome recorded against a line item or a
// scan transaction. "manual" means the operator had to disambiguate by hand.
type ScanOutcome string

const (
	ScanSuccess      ScanOutcome = "success"
	ScanAutoConfirm  ScanOutcome = "auto_confirm"
	ScanAutoFallback ScanOutcome = "auto_fallback"
	ScanAutoMulti    ScanOutcome = "auto_multi"
	ScanManual       ScanOutcome = "manual"
)

type Invoice struct {
	BaseModel
	InvoiceNo   string        `gorm:"type:varchar(100);uniqueIndex;not null" json:"invoice_no" validate:"required"`
	InvoiceDate string        `gorm:"type:varchar(10);not null" json:"invoice_date"` // DD-MM-YYYY
	InvoiceType InvoiceType   `gorm:"type:varchar(20);default:'purchase'" json:"invoice_type"`
	PartyCode   string        `gorm:"type:varchar(50)" json:"party_code"`
	PartyName   string        `gorm:"type:varchar(255)" json:"party_name"`
	Priority    PriorityLevel `gorm:"type:varchar(10);not null;default:'LOW'" json:"priority"`
	Status      InvoiceStatus `gorm:"type:varchar(20);not null;default:'not_started'" json:"status"`

	LineItems []InvoiceLineItem     `gorm:"foreignKey:InvoiceID" json:"line_items,omitempty"`
	Metadata  *InvoicePhaseMetadata `gorm:"foreignKey:InvoiceID" json:"metadata,omitempty"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceLineItem is one expected product line on an invoice. The picker and
// checker phases track independent scanned-quantity/status pairs; only the
// scan reconciler writes those columns.
type InvoiceLineItem struct {
	BaseModel
	InvoiceID   uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"product_name" validate:"required"`
	BatchNumber string    `gorm:"type:varchar(100);not null" json:"batch_number"`
	ExpiryDate  string    `gorm:"type:varchar(10);not null" json:"expiry_date"` // DD-MM-YYYY
	MRP         float64   `gorm:"not null" json:"mrp"`
	RackNo      string    `gorm:"type:varchar(20);default:'0'" json:"rack_no"`
	ActualQty   float64   `gorm:"not null;default:0" json:"actual_qty"`

	PickerScannedQty  float64      `gorm:"not null;default:0" json:"picker_scanned_qty"`
	PickerScanStatus  *ScanOutcome `gorm:"type:varchar(20)" json:"picker_scan_status,omitempty"`
	CheckerScannedQty float64      `gorm:"not null;default:0" json:"checker_scanned_qty"`
	CheckerScanStatus *ScanOutcome `gorm:"type:varchar(20)" json:"checker_scan_status,omitempty"`
}

func (InvoiceLineItem) TableName() string {
	return "invoice_product_list"
}

// InvoicePhaseMetadata carries the per-phase start/end timestamps and the
// operator who performed each phase. One row per invoice. Start fields are
// write-once; end fields may be overwritten.
type InvoicePhaseMetadata struct {
	BaseModel
	InvoiceID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"invoice_id"`

	PickerStart  string `gorm:"type:varchar(20)" json:"picker_start"` // DD-MM-YYYY HH:MM:SS
	PickerEnd    string `gorm:"type:varchar(20)" json:"picker_end"`
	CheckerStart string `gorm:"type:varchar(20)" json:"checker_start"`
	CheckerEnd   string `gorm:"type:varchar(20)" json:"checker_end"`
	PackerStart  string `gorm:"type:varchar(20)" json:"packer_start"`
	PackerEnd    string `gorm:"type:varchar(20)" json:"packer_end"`

	PickerID  *uuid.UUID `gorm:"type:uuid" json:"picker_id,omitempty"`
	CheckerID *uuid.UUID `gorm:"type:uuid" json:"checker_id,omitempty"`
	PackerID  *uuid.UUID `gorm:"type:uuid" json:"packer_id,omitempty"`
}

func (InvoicePhaseMetadata) TableName() string {
	return "invoice_metadata"
}
