package service

import (
	"errors"
	"fmt"
	"log"

	"go-invoice-verify/internal/model"
	"go-invoice-verify/internal/repository"
	"go-invoice-verify/internal/ws"
	"go-invoice-verify/pkg/timefmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNoMetadataFields  = errors.New("no metadata fields provided to update")
	ErrInvalidEndRequest = errors.New("end status requires a positive picker_end, checker_end or packer_end field")
)

// PhaseMetadataRequest carries epoch timestamps (seconds or milliseconds) for
// any subset of the six phase fields, plus an optional target status. Zero
// means the field was not supplied.
type PhaseMetadataRequest struct {
	PickerStart  int64 `json:"picker_start"`
	PickerEnd    int64 `json:"picker_end"`
	CheckerStart int64 `json:"checker_start"`
	CheckerEnd   int64 `json:"checker_end"`
	PackerStart  int64 `json:"packer_start"`
	PackerEnd    int64 `json:"packer_end"`

	Status *model.InvoiceStatus `json:"status" validate:"omitempty,oneof=not_started checking_start checking_end picking_start picking_end completed"`
}

// metadataField describes one updatable timestamp column and the operator
// column it pairs with.
type metadataField struct {
	name        string
	operatorCol string
	isStart     bool
	value       int64
}

func (r PhaseMetadataRequest) fields() []metadataField {
	return []metadataField{
		{"picker_start", "picker_id", true, r.PickerStart},
		{"picker_end", "picker_id", false, r.PickerEnd},
		{"checker_start", "checker_id", true, r.CheckerStart},
		{"checker_end", "checker_id", false, r.CheckerEnd},
		{"packer_start", "packer_id", true, r.PackerStart},
		{"packer_end", "packer_id", false, r.PackerEnd},
	}
}

// DetectPhase returns the phase implied by the request's *_end fields,
// checked in picker > checker > packer priority order. Empty when none is set.
func DetectPhase(r PhaseMetadataRequest) model.Phase {
	switch {
	case r.PickerEnd > 0:
		return model.PhasePickerEnd
	case r.CheckerEnd > 0:
		return model.PhaseCheckerEnd
	case r.PackerEnd > 0:
		return model.PhasePackerEnd
	}
	return ""
}

// startFieldSet reports whether the stored metadata already has a value for
// the given *_start column.
func startFieldSet(meta *model.InvoicePhaseMetadata, field string) bool {
	if meta == nil {
		return false
	}
	switch field {
	case "picker_start":
		return meta.PickerStart != ""
	case "checker_start":
		return meta.CheckerStart != ""
	case "packer_start":
		return meta.PackerStart != ""
	}
	return false
}

// PrepareMetadataUpdates validates the request against the stored row and
// builds the column update set. Already-set *_start fields are silently
// skipped (idempotent retry); *_end fields always win. Every accepted
// timestamp also stamps the requesting operator into the paired id column.
func PrepareMetadataUpdates(req PhaseMetadataRequest, existing *model.InvoicePhaseMetadata,
	operatorID uuid.UUID) (map[string]interface{}, error) {

	fields := req.fields()
	supplied := 0
	for _, f := range fields {
		if f.value > 0 {
			supplied++
		}
	}
	if supplied == 0 {
		return nil, ErrNoMetadataFields
	}

	if req.Status != nil &&
		(*req.Status == model.StatusCheckingEnd || *req.Status == model.StatusPickingEnd) {
		if DetectPhase(req) == "" {
			return nil, ErrInvalidEndRequest
		}
	}

	updates := map[string]interface{}{}
	for _, f := range fields {
		if f.value <= 0 {
			continue
		}
		if f.isStart && startFieldSet(existing, f.name) {
			log.Printf("skipping %s: already set", f.name)
			continue
		}
		updates[f.name] = timefmt.EpochToString(f.value)
		updates[f.operatorCol] = operatorID
	}
	return updates, nil
}

type WorkflowService interface {
	// UpdatePhaseMetadata persists the phase timestamps and invoice status,
	// then triggers metrics computation on qualifying end transitions as a
	// best-effort side step.
	UpdatePhaseMetadata(invoiceID uuid.UUID, req PhaseMetadataRequest, operatorID uuid.UUID) (map[string]interface{}, error)
}

type workflowService struct {
	invoiceRepo  repository.InvoiceRepository
	metadataRepo repository.MetadataRepository
	metrics      MetricsService
	db           *gorm.DB
	wsHub        *ws.Hub
}

func NewWorkflowService(invoiceRepo repository.InvoiceRepository, metadataRepo repository.MetadataRepository,
	metrics MetricsService, db *gorm.DB, hub *ws.Hub) WorkflowService {
	return &workflowService{
		invoiceRepo:  invoiceRepo,
		metadataRepo: metadataRepo,
		metrics:      metrics,
		db:           db,
		wsHub:        hub,
	}
}

func (s *workflowService) UpdatePhaseMetadata(invoiceID uuid.UUID, req PhaseMetadataRequest,
	operatorID uuid.UUID) (map[string]interface{}, error) {

	exists, err := s.invoiceRepo.Exists(invoiceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrInvoiceNotFound
	}

	existing, err := s.metadataRepo.FindByInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}

	updates, err := PrepareMetadataUpdates(req, existing, operatorID)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		// Every supplied field was an already-set *_start: acknowledged, no-op.
		log.Printf("no metadata fields updated for invoice %s (start fields already set)", invoiceID)
		return map[string]interface{}{}, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if existing != nil {
			if err := s.metadataRepo.UpdateFields(tx, invoiceID, updates); err != nil {
				return err
			}
		} else {
			meta := metadataFromUpdates(invoiceID, updates)
			if err := s.metadataRepo.Create(tx, meta); err != nil {
				return err
			}
		}
		if req.Status != nil {
			return s.invoiceRepo.UpdateStatus(tx, invoiceID, *req.Status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterStatusChange(invoiceID, req)
	return updates, nil
}

// afterStatusChange fires the metrics engine on phase-end transitions. Metrics
// failures are logged and swallowed; the metadata write has already committed
// and must never be disturbed by a derived computation.
func (s *workflowService) afterStatusChange(invoiceID uuid.UUID, req PhaseMetadataRequest) {
	if req.Status == nil {
		return
	}
	status := *req.Status

	go s.wsHub.BroadcastEvent(ws.Event{
		Type:      "phase_transition",
		InvoiceID: invoiceID.String(),
		Data:      map[string]interface{}{"status": status},
		Message:   fmt.Sprintf("invoice %s moved to %s", invoiceID, status),
	})

	if status != model.StatusCheckingEnd && status != model.StatusPickingEnd && status != model.StatusCompleted {
		return
	}

	phase := DetectPhase(req)
	if err := s.metrics.Compute(invoiceID, phase); err != nil {
		log.Printf("performance metrics failed for invoice %s: %v", invoiceID, err)
		return
	}
	log.Printf("performance metrics computed for invoice %s (%s)", invoiceID, phase)
}

// metadataFromUpdates builds the first metadata row for an invoice from the
// prepared column set.
func metadataFromUpdates(invoiceID uuid.UUID, updates map[string]interface{}) *model.InvoicePhaseMetadata {
	meta := &model.InvoicePhaseMetadata{InvoiceID: invoiceID}
	for col, val := range updates {
		switch col {
		case "picker_start":
			meta.PickerStart = val.(string)
		case "picker_end":
			meta.PickerEnd = val.(string)
		case "checker_start":
			meta.CheckerStart = val.(string)
		case "checker_end":
			meta.CheckerEnd = val.(string)
		case "packer_start":
			meta.PackerStart = val.(string)
		case "packer_end":
			meta.PackerEnd = val.(string)
		case "picker_id":
			id := val.(uuid.UUID)
			meta.PickerID = &id
		case "checker_id":
			id := val.(uuid.UUID)
			meta.CheckerID = &id
		case "packer_id":
			id := val.(uuid.UUID)
			meta.PackerID = &id
		}
	}
	return meta
}
