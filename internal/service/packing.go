package service

import (
	"errors"
	"log"

	"go-invoice-verify/internal/model"
	"go-invoice-verify/internal/repository"

	"gorm.io/gorm"
)

var ErrNoPackingValues = errors.New("no packing values provided to update")

// PackingObservation is a set of packing-unit multipliers reported alongside a
// scan. Zero means the operator did not supply that unit.
type PackingObservation struct {
	ShipperVal float64 `json:"shipper_val"`
	BoxVal     float64 `json:"box_val"`
	StripVal   float64 `json:"strip_val"`
}

// IsZero reports whether the observation carries nothing worth merging.
func (o PackingObservation) IsZero() bool {
	return o.ShipperVal <= 0 && o.BoxVal <= 0 && o.StripVal <= 0
}

// ComputePackingUpdates decides which profile columns a new observation may
// fill. The profile converges monotonically: strip is set once from zero, a
// set box locks further box writes, and once box and shipper are both set
// neither is ever overwritten.
func ComputePackingUpdates(stored *model.PackingProfile, obs PackingObservation) map[string]interface{} {
	dbShipper := stored.ShipperVal
	dbBox := stored.BoxVal
	dbStrip := stored.StripVal

	if dbShipper > 0 && dbBox > 0 && dbStrip > 0 {
		// Fully populated profile is trusted as-is.
		return nil
	}

	updates := map[string]interface{}{}

	if dbStrip == 0 && obs.StripVal > 0 {
		updates["strip_val"] = obs.StripVal
	}

	switch {
	case dbBox > 0 && dbShipper == 0:
		if obs.ShipperVal > 0 {
			updates["shipper_val"] = obs.ShipperVal
		}
	case dbBox > 0 && dbShipper > 0:
		// Both already trusted, leave them alone.
	default:
		if obs.ShipperVal > 0 {
			updates["shipper_val"] = obs.ShipperVal
		}
		if obs.BoxVal > 0 {
			updates["box_val"] = obs.BoxVal
		}
	}

	if len(updates) == 0 {
		return nil
	}
	return updates
}

type PackingService interface {
	// Lookup returns the stored profile, or nil when the product has none yet.
	Lookup(productName string) (*model.PackingProfile, error)
	// UpdateProfile applies an explicit (operator-entered) profile change.
	UpdateProfile(productName string, obs PackingObservation, updatedBy string) (*model.PackingProfile, error)
}

type packingService struct {
	packingRepo repository.PackingRepository
}

func NewPackingService(packingRepo repository.PackingRepository) PackingService {
	return &packingService{packingRepo: packingRepo}
}

func (s *packingService) Lookup(productName string) (*model.PackingProfile, error) {
	profile, err := s.packingRepo.FindByProductName(productName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfile is the manual maintenance path: unlike scan-driven merging it
// overwrites any supplied value directly.
func (s *packingService) UpdateProfile(productName string, obs PackingObservation, updatedBy string) (*model.PackingProfile, error) {
	if obs.IsZero() {
		return nil, ErrNoPackingValues
	}

	profile, err := s.Lookup(productName)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	if obs.ShipperVal > 0 {
		profile.ShipperVal = obs.ShipperVal
	}
	if obs.BoxVal > 0 {
		profile.BoxVal = obs.BoxVal
	}
	if obs.StripVal > 0 {
		profile.StripVal = obs.StripVal
	}
	profile.UpdatedBy = updatedBy

	if err := s.packingRepo.Save(profile); err != nil {
		return nil, err
	}
	log.Printf("packing profile for %q updated manually", productName)
	return profile, nil
}

var ErrProfileNotFound = errors.New("packing profile not found")
