package service

import (
	"database/sql"
	"errors"
	"sync"
	"testing"

	"go-invoice-verify/internal/model"
	"go-invoice-verify/internal/ws"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakePackingRepo serves profiles from a map and records write calls.
type fakePackingRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.PackingProfile
	findErr  error
	creates  []*model.PackingProfile
}

func (f *fakePackingRepo) FindByProductName(productName string) (*model.PackingProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	p, ok := f.profiles[productName]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePackingRepo) Create(tx *gorm.DB, profile *model.PackingProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, profile)
	return nil
}

func (f *fakePackingRepo) ApplyUpdates(tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (f *fakePackingRepo) Save(profile *model.PackingProfile) error {
	return nil
}

func newPlanFixture(packing *fakePackingRepo) *reconcilerService {
	return &reconcilerService{packingRepo: packing}
}

func batchItem(name string, qty float64) ScanBatchItem {
	return ScanBatchItem{
		ProductID:   uuid.New(),
		ProductName: name,
		ScannedQty:  qty,
	}
}

func TestPlanItems_NewProductGetsProfileFromObservation(t *testing.T) {
	packing := &fakePackingRepo{profiles: map[string]*model.PackingProfile{}}
	svc := newPlanFixture(packing)

	item := batchItem("DOLO 650", 30)
	item.ShipperVal = 10
	item.BoxVal = 5

	operator := uuid.New()
	plans, failures := svc.planItems(ScanBatchRequest{Items: []ScanBatchItem{item}}, operator)
	require.Empty(t, failures)
	require.Len(t, plans, 1)

	require.NotNil(t, plans[0].createProfile)
	assert.Equal(t, "DOLO 650", plans[0].createProfile.ProductName)
	assert.Equal(t, 10.0, plans[0].createProfile.ShipperVal)
	assert.Equal(t, 5.0, plans[0].createProfile.BoxVal)
	assert.Equal(t, operator.String(), plans[0].createProfile.UpdatedBy)
}

func TestPlanItems_NewProductWithoutObservationSkipsProfile(t *testing.T) {
	packing := &fakePackingRepo{profiles: map[string]*model.PackingProfile{}}
	svc := newPlanFixture(packing)

	plans, failures := svc.planItems(ScanBatchRequest{
		Items: []ScanBatchItem{batchItem("DOLO 650", 30)},
	}, uuid.New())
	require.Empty(t, failures)
	require.Len(t, plans, 1)
	assert.Nil(t, plans[0].createProfile)
	assert.Empty(t, plans[0].profileUpdates)
}

func TestPlanItems_ExistingProfileMergesMonotonically(t *testing.T) {
	stored := &model.PackingProfile{ProductName: "DOLO 650", BoxVal: 5}
	stored.ID = uuid.New()
	packing := &fakePackingRepo{profiles: map[string]*model.PackingProfile{"DOLO 650": stored}}
	svc := newPlanFixture(packing)

	item := batchItem("DOLO 650", 30)
	item.ShipperVal = 10
	item.BoxVal = 99 // box is already set, must not be overwritten

	plans, failures := svc.planItems(ScanBatchRequest{Items: []ScanBatchItem{item}}, uuid.New())
	require.Empty(t, failures)
	require.Len(t, plans, 1)

	assert.Equal(t, stored.ID, plans[0].profileID)
	assert.Equal(t, map[string]interface{}{"shipper_val": 10.0}, plans[0].profileUpdates)
}

func TestPlanItems_RepositoryErrorBecomesItemFailure(t *testing.T) {
	packing := &fakePackingRepo{findErr: errors.New("connection reset")}
	svc := newPlanFixture(packing)

	plans, failures := svc.planItems(ScanBatchRequest{
		Items: []ScanBatchItem{batchItem("DOLO 650", 30)},
	}, uuid.New())
	assert.Empty(t, plans)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].msg, "DOLO 650")
	assert.Contains(t, failures[0].msg, "connection reset")
}

func TestPlanItems_PreservesItemOrder(t *testing.T) {
	packing := &fakePackingRepo{profiles: map[string]*model.PackingProfile{}}
	svc := newPlanFixture(packing)

	items := []ScanBatchItem{
		batchItem("A", 1), batchItem("B", 2), batchItem("C", 3),
		batchItem("D", 4), batchItem("E", 5), batchItem("F", 6),
		batchItem("G", 7), batchItem("H", 8),
	}

	plans, failures := svc.planItems(ScanBatchRequest{Items: items}, uuid.New())
	require.Empty(t, failures)
	require.Len(t, plans, len(items))
	for i, plan := range plans {
		assert.Equal(t, i, plan.index)
		assert.Equal(t, items[i].ProductName, plan.item.ProductName)
	}
}

func TestApplyBatch_EmptyBatchRejected(t *testing.T) {
	svc := &reconcilerService{}
	_, err := svc.ApplyBatch(ScanBatchRequest{InvoiceID: uuid.New()}, uuid.New())
	assert.ErrorIs(t, err, ErrEmptyScanBatch)
}

// fakeInvoiceRepo answers line-item scans from a set of product names that
// have no matching row, so zero-row updates can be driven deterministically.
type fakeInvoiceRepo struct {
	exists        bool
	lineItemCount int64
	missing       map[string]bool
	scanCalls     []string
}

func (f *fakeInvoiceRepo) FindByID(id uuid.UUID) (*model.Invoice, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInvoiceRepo) Exists(id uuid.UUID) (bool, error) { return f.exists, nil }

func (f *fakeInvoiceRepo) UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.InvoiceStatus) error {
	return nil
}

func (f *fakeInvoiceRepo) LineItems(invoiceID uuid.UUID) ([]model.InvoiceLineItem, error) {
	return nil, nil
}

func (f *fakeInvoiceRepo) CountLineItems(invoiceID uuid.UUID) (int64, error) {
	return f.lineItemCount, nil
}

func (f *fakeInvoiceRepo) LineItemExists(invoiceID uuid.UUID, productName, batchNumber, expiryDate string, mrp float64) (bool, error) {
	return false, nil
}

func (f *fakeInvoiceRepo) CreateLineItem(item *model.InvoiceLineItem) error { return nil }

func (f *fakeInvoiceRepo) DeleteLineItem(id uuid.UUID) (int64, error) { return 1, nil }

func (f *fakeInvoiceRepo) UpdateLineItemScan(tx *gorm.DB, role model.OperatorRole, lineItemID, invoiceID uuid.UUID,
	productName string, scannedQty float64, scanStatus *model.ScanOutcome) (int64, error) {
	f.scanCalls = append(f.scanCalls, productName)
	if f.missing[productName] {
		return 0, nil
	}
	return 1, nil
}

type fakeTrayRepo struct {
	released int
}

func (f *fakeTrayRepo) FindByTrayNo(trayNo string) (*model.Tray, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTrayRepo) AssignInvoice(trayNo string, invoiceID *uuid.UUID) error { return nil }

func (f *fakeTrayRepo) ReleaseByInvoice(tx *gorm.DB, invoiceID uuid.UUID) (int64, error) {
	f.released++
	return 1, nil
}

// fakeTxRunner executes the callback directly and records whether it ended in
// a rollback.
type fakeTxRunner struct {
	rolledBack bool
}

func (f *fakeTxRunner) Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error {
	if err := fc(nil); err != nil {
		f.rolledBack = true
		return err
	}
	return nil
}

func newBatchFixture(invoices *fakeInvoiceRepo, runner *fakeTxRunner, trays *fakeTrayRepo) *reconcilerService {
	hub := ws.NewHub()
	go hub.Run()
	return &reconcilerService{
		invoiceRepo: invoices,
		packingRepo: &fakePackingRepo{profiles: map[string]*model.PackingProfile{}},
		trayRepo:    trays,
		db:          runner,
		wsHub:       hub,
	}
}

func TestApplyBatch_UnmatchedLineItemRollsBackWholeBatch(t *testing.T) {
	invoices := &fakeInvoiceRepo{exists: true, missing: map[string]bool{"CROCIN ADVANCE": true}}
	runner := &fakeTxRunner{}
	trays := &fakeTrayRepo{}
	svc := newBatchFixture(invoices, runner, trays)

	req := ScanBatchRequest{
		InvoiceID: uuid.New(),
		Role:      model.RolePicker,
		Items: []ScanBatchItem{
			batchItem("DOLO 650", 10),
			batchItem("CROCIN ADVANCE", 4),
			batchItem("AZITHRAL 500", 6),
		},
	}

	result, err := svc.ApplyBatch(req, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "partial_error", result.Status)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "item 1 (CROCIN ADVANCE)")
	assert.Contains(t, result.Errors[0], "no matching line item")

	assert.True(t, runner.rolledBack, "one bad item must roll back the whole batch")
	assert.Equal(t, 0, trays.released)
}

func TestApplyBatch_AppliesAllItemsAndReleasesTrayOnCompletion(t *testing.T) {
	invoices := &fakeInvoiceRepo{exists: true}
	runner := &fakeTxRunner{}
	trays := &fakeTrayRepo{}
	svc := newBatchFixture(invoices, runner, trays)

	req := ScanBatchRequest{
		InvoiceID: uuid.New(),
		Role:      model.RoleChecker,
		Completed: true,
		Items: []ScanBatchItem{
			batchItem("DOLO 650", 10),
			batchItem("AZITHRAL 500", 6),
			batchItem("CROCIN ADVANCE", 4),
		},
	}

	result, err := svc.ApplyBatch(req, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "success", result.Status)
	assert.Empty(t, result.Errors)
	assert.False(t, runner.rolledBack)
	assert.Equal(t, 1, trays.released)
	assert.Len(t, invoices.scanCalls, 3)
}

func TestApplyBatch_UnknownInvoiceRejected(t *testing.T) {
	svc := newBatchFixture(&fakeInvoiceRepo{exists: false}, &fakeTxRunner{}, &fakeTrayRepo{})

	_, err := svc.ApplyBatch(ScanBatchRequest{
		InvoiceID: uuid.New(),
		Items:     []ScanBatchItem{batchItem("DOLO 650", 1)},
	}, uuid.New())
	require.ErrorIs(t, err, ErrInvoiceNotFound)
}
