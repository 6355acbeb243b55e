package service

import (
	"testing"

	"go-invoice-verify/internal/model"

	"github.com/stretchr/testify/assert"
)

func profile(shipper, box, strip float64) *model.PackingProfile {
	return &model.PackingProfile{
		ProductName: "DOLO 650",
		ShipperVal:  shipper,
		BoxVal:      box,
		StripVal:    strip,
	}
}

func TestComputePackingUpdates(t *testing.T) {
	tests := []struct {
		name   string
		stored *model.PackingProfile
		obs    PackingObservation
		want   map[string]interface{}
	}{
		{
			name:   "fully populated profile is never touched",
			stored: profile(10, 5, 2),
			obs:    PackingObservation{ShipperVal: 99, BoxVal: 99, StripVal: 99},
			want:   nil,
		},
		{
			name:   "empty profile takes everything",
			stored: profile(0, 0, 0),
			obs:    PackingObservation{ShipperVal: 10, BoxVal: 5, StripVal: 2},
			want:   map[string]interface{}{"shipper_val": 10.0, "box_val": 5.0, "strip_val": 2.0},
		},
		{
			name:   "strip fills only from zero",
			stored: profile(0, 0, 2),
			obs:    PackingObservation{StripVal: 7},
			want:   nil,
		},
		{
			name:   "set box locks box but lets shipper fill",
			stored: profile(0, 5, 0),
			obs:    PackingObservation{ShipperVal: 10, BoxVal: 8},
			want:   map[string]interface{}{"shipper_val": 10.0},
		},
		{
			name:   "box and shipper both set are frozen",
			stored: profile(10, 5, 0),
			obs:    PackingObservation{ShipperVal: 99, BoxVal: 99},
			want:   nil,
		},
		{
			name:   "box and shipper frozen but strip still fills",
			stored: profile(10, 5, 0),
			obs:    PackingObservation{ShipperVal: 99, BoxVal: 99, StripVal: 2},
			want:   map[string]interface{}{"strip_val": 2.0},
		},
		{
			name:   "zero observation adds nothing",
			stored: profile(0, 0, 0),
			obs:    PackingObservation{},
			want:   nil,
		},
		{
			name:   "shipper alone fills into empty profile",
			stored: profile(0, 0, 0),
			obs:    PackingObservation{ShipperVal: 12},
			want:   map[string]interface{}{"shipper_val": 12.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePackingUpdates(tt.stored, tt.obs)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputePackingUpdates_Converges(t *testing.T) {
	// Applying the same observation twice must produce nothing new the
	// second time once the first pass has been merged in.
	stored := profile(0, 0, 0)
	obs := PackingObservation{ShipperVal: 10, BoxVal: 5, StripVal: 2}

	first := ComputePackingUpdates(stored, obs)
	assert.Len(t, first, 3)

	stored.ShipperVal = 10
	stored.BoxVal = 5
	stored.StripVal = 2

	assert.Nil(t, ComputePackingUpdates(stored, obs))
}

func TestPackingObservationIsZero(t *testing.T) {
	assert.True(t, PackingObservation{}.IsZero())
	assert.True(t, PackingObservation{ShipperVal: -1}.IsZero())
	assert.False(t, PackingObservation{BoxVal: 3}.IsZero())
}
