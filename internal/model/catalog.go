package model

// CatalogEntry is one row of the product master catalog. Entries are written only
// by the external import pipeline; the scan flow treats them as read-only.
// Identity is (item code, batch, expiry, MRP); the same product name can appear
// under several batches and MRPs.
type CatalogEntry struct {
	BaseModel
	ItemCode    string  `gorm:"type:varchar(50);not null;uniqueIndex:idx_catalog_identity" json:"item_code" validate:"required"`
	ProductName string  `gorm:"type:varchar(255);not null;index" json:"product_name" validate:"required"`
	BatchNumber string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_catalog_identity;index" json:"batch_number" validate:"required"`
	ExpiryDate  string  `gorm:"type:varchar(10);not null;uniqueIndex:idx_catalog_identity" json:"expiry_date"` // DD-MM-YYYY
	MfgDate     string  `gorm:"type:varchar(10)" json:"mfg_date"`                                              // DD-MM-YYYY
	MRP         float64 `gorm:"not null;uniqueIndex:idx_catalog_identity" json:"mrp"`
	Division    string  `gorm:"type:varchar(100)" json:"division"`
	OBatch      string  `gorm:"type:varchar(100)" json:"obatch"`
	RackNo      string  `gorm:"type:varchar(20);default:'0'" json:"rack_no"`
	Barcode1    string  `gorm:"type:varchar(100);index" json:"barcode1"`
	Barcode2    string  `gorm:"type:varchar(100);index" json:"barcode2"`
	Optional1   string  `gorm:"type:varchar(255)" json:"optional1"`
	Optional2   string  `gorm:"type:varchar(255)" json:"optional2"`
}

func (CatalogEntry) TableName() string {
	return "product_master"
}
