package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanEnvelope struct {
	InvoiceID  uuid.UUID `validate:"uuid_required"`
	ExpiryDate string    `validate:"omitempty,ddmmyyyy"`
}

func TestValidateStruct_UUIDRequired(t *testing.T) {
	errs := ValidateStruct(scanEnvelope{})
	require.Len(t, errs, 1)
	assert.Equal(t, "uuid_required", errs[0].Tag)
	assert.Contains(t, errs[0].FailedField, "InvoiceID")

	errs = ValidateStruct(scanEnvelope{InvoiceID: uuid.New()})
	assert.Empty(t, errs)
}

func TestValidateStruct_DDMMYYYY(t *testing.T) {
	tests := []struct {
		name   string
		expiry string
		valid  bool
	}{
		{"canonical date", "31-12-2026", true},
		{"empty passes via omitempty", "", true},
		{"iso order rejected", "2026-12-31", false},
		{"month out of range", "01-13-2026", false},
		{"not a date", "soon", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateStruct(scanEnvelope{InvoiceID: uuid.New(), ExpiryDate: tt.expiry})
			if tt.valid {
				assert.Empty(t, errs)
			} else {
				require.Len(t, errs, 1)
				assert.Equal(t, "ddmmyyyy", errs[0].Tag)
			}
		})
	}
}
