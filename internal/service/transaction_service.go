package service

import (
	"errors"

	"go-invoice-verify/internal/model"
	"go-invoice-verify/internal/repository"
	"go-invoice-verify/pkg/timefmt"

	"github.com/google/uuid"
)

var ErrNoTransactions = errors.New("no transactions provided")

// TransactionEntry is one scan event reported by a client device.
type TransactionEntry struct {
	Timestamp  int64               `json:"timestamp" validate:"required,gt=0"` // epoch seconds or ms
	Operation  model.OperationType `json:"operation_type" validate:"required,oneof=scan qty_change"`
	Phase      model.Phase         `json:"operation_status" validate:"required,oneof=picker_end checker_end packer_end"`
	ScanStatus *model.ScanOutcome  `json:"scan_status" validate:"omitempty,oneof=success auto_confirm auto_fallback auto_multi manual"`
	Image      string              `json:"image"`
	LineItemID *uuid.UUID          `json:"invoice_product_id"`
}

type TransactionBatch struct {
	InvoiceID uuid.UUID          `json:"invoice_id" validate:"uuid_required"`
	RackID    string             `json:"rack_id"`
	Entries   []TransactionEntry `json:"transactions" validate:"required,dive"`
}

type TransactionService interface {
	// Append records a batch of scan events. The log is append-only; rows are
	// never updated once written.
	Append(batch TransactionBatch, operatorID uuid.UUID) error
	ForInvoice(invoiceID uuid.UUID) ([]model.ScanTransaction, error)
}

type transactionService struct {
	transactionRepo repository.TransactionRepository
	invoiceRepo     repository.InvoiceRepository
}

func NewTransactionService(transactionRepo repository.TransactionRepository,
	invoiceRepo repository.InvoiceRepository) TransactionService {
	return &transactionService{
		transactionRepo: transactionRepo,
		invoiceRepo:     invoiceRepo,
	}
}

func (s *transactionService) Append(batch TransactionBatch, operatorID uuid.UUID) error {
	if len(batch.Entries) == 0 {
		return ErrNoTransactions
	}

	exists, err := s.invoiceRepo.Exists(batch.InvoiceID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrInvoiceNotFound
	}

	rows := make([]model.ScanTransaction, 0, len(batch.Entries))
	for _, e := range batch.Entries {
		rows = append(rows, model.ScanTransaction{
			Timestamp:  timefmt.EpochToString(e.Timestamp),
			InvoiceID:  batch.InvoiceID,
			UserID:     operatorID,
			RackID:     batch.RackID,
			Operation:  e.Operation,
			Phase:      e.Phase,
			ScanStatus: e.ScanStatus,
			Image:      e.Image,
			LineItemID: e.LineItemID,
		})
	}
	return s.transactionRepo.CreateBatch(rows)
}

func (s *transactionService) ForInvoice(invoiceID uuid.UUID) ([]model.ScanTransaction, error) {
	return s.transactionRepo.FindByInvoice(invoiceID)
}
