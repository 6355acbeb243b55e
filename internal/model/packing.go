package model

// PackingProfile holds the per-product packing-unit multipliers (shipper/box/strip)
// used to convert physical units into base counts. A zero value means "not yet
// observed"; values converge from scan observations and are never reverted once
// shipper and box are both set.
type PackingProfile struct {
	BaseModel
	ProductName string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"product_name" validate:"required"`
	ItemCode    string  `gorm:"type:varchar(50)" json:"item_code"`
	ShipperVal  float64 `gorm:"default:0" json:"shipper_val"`
	BoxVal      float64 `gorm:"default:0" json:"box_val"`
	StripVal    float64 `gorm:"default:0" json:"strip_val"`
}

func (PackingProfile) TableName() string {
	return "product_qty_converter"
}
