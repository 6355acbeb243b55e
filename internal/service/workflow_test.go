package service

import (
	"testing"

	"go-invoice-verify/internal/model"
	"go-invoice-verify/pkg/timefmt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusPtr(s model.InvoiceStatus) *model.InvoiceStatus { return &s }

func TestDetectPhase(t *testing.T) {
	tests := []struct {
		name string
		req  PhaseMetadataRequest
		want model.Phase
	}{
		{"picker end", PhaseMetadataRequest{PickerEnd: 1}, model.PhasePickerEnd},
		{"checker end", PhaseMetadataRequest{CheckerEnd: 1}, model.PhaseCheckerEnd},
		{"packer end", PhaseMetadataRequest{PackerEnd: 1}, model.PhasePackerEnd},
		{"picker wins over checker", PhaseMetadataRequest{PickerEnd: 1, CheckerEnd: 1}, model.PhasePickerEnd},
		{"checker wins over packer", PhaseMetadataRequest{CheckerEnd: 1, PackerEnd: 1}, model.PhaseCheckerEnd},
		{"starts alone imply nothing", PhaseMetadataRequest{PickerStart: 1, PackerStart: 1}, model.Phase("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPhase(tt.req))
		})
	}
}

func TestPrepareMetadataUpdates_NoFields(t *testing.T) {
	_, err := PrepareMetadataUpdates(PhaseMetadataRequest{}, nil, uuid.New())
	assert.ErrorIs(t, err, ErrNoMetadataFields)
}

func TestPrepareMetadataUpdates_EndStatusNeedsEndField(t *testing.T) {
	req := PhaseMetadataRequest{
		PickerStart: 1735689600,
		Status:      statusPtr(model.StatusCheckingEnd),
	}
	_, err := PrepareMetadataUpdates(req, nil, uuid.New())
	assert.ErrorIs(t, err, ErrInvalidEndRequest)

	req.Status = statusPtr(model.StatusPickingEnd)
	_, err = PrepareMetadataUpdates(req, nil, uuid.New())
	assert.ErrorIs(t, err, ErrInvalidEndRequest)

	// A non-end status places no such requirement.
	req.Status = statusPtr(model.StatusPickingStart)
	_, err = PrepareMetadataUpdates(req, nil, uuid.New())
	assert.NoError(t, err)
}

func TestPrepareMetadataUpdates_StampsOperator(t *testing.T) {
	operator := uuid.New()
	req := PhaseMetadataRequest{PickerStart: 1735689600, PickerEnd: 1735693200}

	updates, err := PrepareMetadataUpdates(req, nil, operator)
	require.NoError(t, err)

	assert.Equal(t, timefmt.EpochToString(1735689600), updates["picker_start"])
	assert.Equal(t, timefmt.EpochToString(1735693200), updates["picker_end"])
	assert.Equal(t, operator, updates["picker_id"])
	assert.NotContains(t, updates, "checker_start")
}

func TestPrepareMetadataUpdates_StartIsWriteOnce(t *testing.T) {
	existing := &model.InvoicePhaseMetadata{
		PickerStart: "01-01-2025 00:00:00",
	}
	req := PhaseMetadataRequest{PickerStart: 1767225600}

	updates, err := PrepareMetadataUpdates(req, existing, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestPrepareMetadataUpdates_EndAlwaysWins(t *testing.T) {
	existing := &model.InvoicePhaseMetadata{
		PickerStart: "01-01-2025 00:00:00",
		PickerEnd:   "01-01-2025 01:00:00",
	}
	req := PhaseMetadataRequest{PickerEnd: 1767229200}

	updates, err := PrepareMetadataUpdates(req, existing, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, timefmt.EpochToString(1767229200), updates["picker_end"])
}

func TestPrepareMetadataUpdates_MillisecondEpochs(t *testing.T) {
	reqSec := PhaseMetadataRequest{CheckerStart: 1735689600}
	reqMs := PhaseMetadataRequest{CheckerStart: 1735689600000}

	op := uuid.New()
	secUpdates, err := PrepareMetadataUpdates(reqSec, nil, op)
	require.NoError(t, err)
	msUpdates, err := PrepareMetadataUpdates(reqMs, nil, op)
	require.NoError(t, err)

	assert.Equal(t, secUpdates["checker_start"], msUpdates["checker_start"])
}

func TestPrepareMetadataUpdates_MixedPhases(t *testing.T) {
	existing := &model.InvoicePhaseMetadata{
		PickerStart: "01-01-2025 00:00:00",
	}
	req := PhaseMetadataRequest{
		PickerStart:  1767225600, // skipped, already set
		CheckerStart: 1767225700,
		CheckerEnd:   1767229300,
	}

	operator := uuid.New()
	updates, err := PrepareMetadataUpdates(req, existing, operator)
	require.NoError(t, err)

	assert.NotContains(t, updates, "picker_start")
	assert.Equal(t, timefmt.EpochToString(1767225700), updates["checker_start"])
	assert.Equal(t, timefmt.EpochToString(1767229300), updates["checker_end"])
	assert.Equal(t, operator, updates["checker_id"])
}
