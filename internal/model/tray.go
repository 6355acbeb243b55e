package model

import "github.com/google/uuid"

// Tray is a physical tray that can be bound to at most one invoice at a time.
// Completing a scan batch releases every tray bound to that invoice.
type Tray struct {
	BaseModel
	TrayNo      string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"tray_no" validate:"required"`
	TrayQRValue string     `gorm:"type:varchar(255)" json:"tray_qr_value"`
	InvoiceID   *uuid.UUID `gorm:"type:uuid;index" json:"current_invoice_id,omitempty"`
}

func (Tray) TableName() string {
	return "tray_master"
}
