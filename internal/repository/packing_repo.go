package repository

import (
	"go-invoice-verify/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PackingRepository interface {
	FindByProductName(productName string) (*model.PackingProfile, error)
	Create(tx *gorm.DB, profile *model.PackingProfile) error
	ApplyUpdates(tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	Save(profile *model.PackingProfile) error
}

type packingRepo struct {
	db *gorm.DB
}

func NewPackingRepo(db *gorm.DB) PackingRepository {
	return &packingRepo{db}
}

func (r *packingRepo) FindByProductName(productName string) (*model.PackingProfile, error) {
	var profile model.PackingProfile
	err := r.db.Where("product_name = ?", productName).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Create accepts a tx handle so profile inserts ride in the batch transaction
func (r *packingRepo) Create(tx *gorm.DB, profile *model.PackingProfile) error {
	return tx.Create(profile).Error
}

func (r *packingRepo) ApplyUpdates(tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(&model.PackingProfile{}).Where("id = ?", id).Updates(updates).Error
}

func (r *packingRepo) Save(profile *model.PackingProfile) error {
	return r.db.Save(profile).Error
}
