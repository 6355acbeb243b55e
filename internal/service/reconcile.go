package service

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"go-invoice-verify/internal/model"
	"go-invoice-verify/internal/repository"
	"go-invoice-verify/internal/ws"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// scanBatchConcurrency bounds how many batch items are planned in flight. Each
// item issues its own packing-profile lookup, so the ceiling keeps connection
// pressure predictable.
const scanBatchConcurrency = 4

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrEmptyScanBatch  = errors.New("scan batch contains no items")

	errBatchItemFailures = errors.New("one or more batch items failed")
)

type ScanBatchItem struct {
	ProductID   uuid.UUID          `json:"product_id" validate:"uuid_required"`
	ProductName string             `json:"product_name" validate:"required"`
	ScannedQty  float64            `json:"scanned_qty"`
	ShipperVal  float64            `json:"shipper_val"`
	BoxVal      float64            `json:"box_val"`
	StripVal    float64            `json:"strip_val"`
	ScanStatus  *model.ScanOutcome `json:"scan_status" validate:"omitempty,oneof=success auto_confirm auto_fallback auto_multi manual"`
}

type ScanBatchRequest struct {
	InvoiceID uuid.UUID          `json:"invoice_id" validate:"uuid_required"`
	Role      model.OperatorRole `json:"role" validate:"required,oneof=picker checker"`
	Completed bool               `json:"completed"`
	Items     []ScanBatchItem    `json:"items" validate:"required,dive"`
}

type ScanBatchResult struct {
	Status string   `json:"status"` // success | partial_error
	Errors []string `json:"errors,omitempty"`
}

type ReconcilerService interface {
	// ApplyBatch reconciles a batch of resolved scans against the invoice's
	// line items. The batch is atomic: if any item fails, nothing persists
	// and the result reports the per-item failures as partial_error.
	ApplyBatch(req ScanBatchRequest, operatorID uuid.UUID) (*ScanBatchResult, error)
}

// txRunner is the slice of *gorm.DB the write stage depends on. The batch
// either commits whole or rolls back whole, and that contract lives behind
// this seam.
type txRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

type reconcilerService struct {
	invoiceRepo repository.InvoiceRepository
	packingRepo repository.PackingRepository
	trayRepo    repository.TrayRepository
	db          txRunner
	wsHub       *ws.Hub
}

func NewReconcilerService(invoiceRepo repository.InvoiceRepository, packingRepo repository.PackingRepository,
	trayRepo repository.TrayRepository, db *gorm.DB, hub *ws.Hub) ReconcilerService {
	return &reconcilerService{
		invoiceRepo: invoiceRepo,
		packingRepo: packingRepo,
		trayRepo:    trayRepo,
		db:          db,
		wsHub:       hub,
	}
}

// itemPlan is the per-item write set computed during the concurrent planning
// stage and applied inside the single batch transaction.
type itemPlan struct {
	index          int
	item           ScanBatchItem
	createProfile  *model.PackingProfile
	profileID      uuid.UUID
	profileUpdates map[string]interface{}
}

type itemFailure struct {
	index int
	msg   string
}

func (s *reconcilerService) ApplyBatch(req ScanBatchRequest, operatorID uuid.UUID) (*ScanBatchResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyScanBatch
	}

	exists, err := s.invoiceRepo.Exists(req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrInvoiceNotFound
	}

	plans, failures := s.planItems(req, operatorID)

	if len(failures) == 0 {
		failures = s.applyPlans(req, plans)
	}

	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool { return failures[i].index < failures[j].index })
		msgs := make([]string, len(failures))
		for i, f := range failures {
			msgs[i] = f.msg
		}
		log.Printf("scan batch for invoice %s rolled back: %v", req.InvoiceID, msgs)
		return &ScanBatchResult{Status: "partial_error", Errors: msgs}, nil
	}

	s.broadcast(req, operatorID)
	return &ScanBatchResult{Status: "success"}, nil
}

// planItems runs the read-only stage with bounded parallelism: each item
// fetches its packing profile and computes the merge it would apply. Failures
// are collected rather than aborting, so the response can name every bad item.
func (s *reconcilerService) planItems(req ScanBatchRequest, operatorID uuid.UUID) ([]*itemPlan, []itemFailure) {
	var (
		mu       sync.Mutex
		plans    []*itemPlan
		failures []itemFailure
	)

	g := &errgroup.Group{}
	g.SetLimit(scanBatchConcurrency)

	for i, item := range req.Items {
		i, item := i, item
		g.Go(func() error {
			plan, err := s.planItem(i, item, operatorID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, itemFailure{
					index: i,
					msg:   fmt.Sprintf("item %d (%s): %v", i, item.ProductName, err),
				})
				return nil
			}
			plans = append(plans, plan)
			return nil
		})
	}
	g.Wait()

	sort.Slice(plans, func(i, j int) bool { return plans[i].index < plans[j].index })
	return plans, failures
}

func (s *reconcilerService) planItem(index int, item ScanBatchItem, operatorID uuid.UUID) (*itemPlan, error) {
	plan := &itemPlan{index: index, item: item}

	obs := PackingObservation{
		ShipperVal: item.ShipperVal,
		BoxVal:     item.BoxVal,
		StripVal:   item.StripVal,
	}

	profile, err := s.packingRepo.FindByProductName(item.ProductName)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// No profile yet: create one straight from the observation.
		if !obs.IsZero() {
			plan.createProfile = &model.PackingProfile{
				ProductName: item.ProductName,
				ShipperVal:  obs.ShipperVal,
				BoxVal:      obs.BoxVal,
				StripVal:    obs.StripVal,
			}
			plan.createProfile.UpdatedBy = operatorID.String()
		}
		return plan, nil
	}

	plan.profileID = profile.ID
	plan.profileUpdates = ComputePackingUpdates(profile, obs)
	return plan, nil
}

// applyPlans runs the write stage as one transaction: tray release first when
// the batch marks the invoice complete, then every item's profile merge and
// line-item update. Any failure rolls the whole batch back.
func (s *reconcilerService) applyPlans(req ScanBatchRequest, plans []*itemPlan) []itemFailure {
	var failures []itemFailure

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.Completed {
			released, err := s.trayRepo.ReleaseByInvoice(tx, req.InvoiceID)
			if err != nil {
				return err
			}
			if released > 0 {
				log.Printf("released %d trays from invoice %s", released, req.InvoiceID)
			}
		}

		for _, plan := range plans {
			if plan.createProfile != nil {
				if err := s.packingRepo.Create(tx, plan.createProfile); err != nil {
					failures = append(failures, itemFailure{plan.index,
						fmt.Sprintf("item %d (%s): %v", plan.index, plan.item.ProductName, err)})
					continue
				}
			} else if len(plan.profileUpdates) > 0 {
				if err := s.packingRepo.ApplyUpdates(tx, plan.profileID, plan.profileUpdates); err != nil {
					failures = append(failures, itemFailure{plan.index,
						fmt.Sprintf("item %d (%s): %v", plan.index, plan.item.ProductName, err)})
					continue
				}
			}

			rows, err := s.invoiceRepo.UpdateLineItemScan(tx, req.Role, plan.item.ProductID,
				req.InvoiceID, plan.item.ProductName, plan.item.ScannedQty, plan.item.ScanStatus)
			if err != nil {
				failures = append(failures, itemFailure{plan.index,
					fmt.Sprintf("item %d (%s): %v", plan.index, plan.item.ProductName, err)})
				continue
			}
			if rows == 0 {
				failures = append(failures, itemFailure{plan.index,
					fmt.Sprintf("item %d (%s): no matching line item on invoice %s",
						plan.index, plan.item.ProductName, req.InvoiceID)})
			}
		}

		if len(failures) > 0 {
			return errBatchItemFailures
		}
		return nil
	})

	if err != nil && !errors.Is(err, errBatchItemFailures) {
		failures = append(failures, itemFailure{-1, fmt.Sprintf("batch transaction: %v", err)})
	}
	return failures
}

func (s *reconcilerService) broadcast(req ScanBatchRequest, operatorID uuid.UUID) {
	go s.wsHub.BroadcastEvent(ws.Event{
		Type:      "scan_reconciled",
		InvoiceID: req.InvoiceID.String(),
		Data: map[string]interface{}{
			"role":        req.Role,
			"items":       len(req.Items),
			"completed":   req.Completed,
			"operator_id": operatorID.String(),
		},
		Message: fmt.Sprintf("%d scans reconciled for invoice %s", len(req.Items), req.InvoiceID),
	})
}
