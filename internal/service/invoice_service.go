package service

import (
	"errors"
	"math"

	"go-invoice-verify/internal/model"
	"go-invoice-verify/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrLineItemNotFound  = errors.New("line item not found on invoice")
	ErrDuplicateLineItem = errors.New("line item with same name, batch, expiry and MRP already exists on invoice")
	ErrTrayNotFound      = errors.New("tray not found")
)

type AddLineItemRequest struct {
	ProductName string  `json:"product_name" validate:"required"`
	BatchNumber string  `json:"batch_number" validate:"required"`
	ExpiryDate  string  `json:"expiry_date" validate:"required,ddmmyyyy"`
	MRP         float64 `json:"mrp" validate:"gte=0"`
	ActualQty   float64 `json:"actual_qty" validate:"gte=0"`
}

type InvoiceService interface {
	Detail(invoiceID uuid.UUID) (*model.Invoice, error)
	LineItems(invoiceID uuid.UUID) ([]model.InvoiceLineItem, error)
	AddLineItem(invoiceID uuid.UUID, req AddLineItemRequest, createdBy string) (*model.InvoiceLineItem, error)
	RemoveLineItem(invoiceID, lineItemID uuid.UUID) error
	BindTray(trayNo string, invoiceID *uuid.UUID) (*model.Tray, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	catalogRepo repository.CatalogRepository
	trayRepo    repository.TrayRepository
}

func NewInvoiceService(invoiceRepo repository.InvoiceRepository, catalogRepo repository.CatalogRepository,
	trayRepo repository.TrayRepository) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		catalogRepo: catalogRepo,
		trayRepo:    trayRepo,
	}
}

func (s *invoiceService) Detail(invoiceID uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) LineItems(invoiceID uuid.UUID) ([]model.InvoiceLineItem, error) {
	exists, err := s.invoiceRepo.Exists(invoiceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrInvoiceNotFound
	}
	return s.invoiceRepo.LineItems(invoiceID)
}

// AddLineItem appends an expected product line, guarding against duplicate
// identity within the invoice and assigning the rack from the catalog.
func (s *invoiceService) AddLineItem(invoiceID uuid.UUID, req AddLineItemRequest, createdBy string) (*model.InvoiceLineItem, error) {
	exists, err := s.invoiceRepo.Exists(invoiceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrInvoiceNotFound
	}

	mrp := math.Round(req.MRP*100) / 100
	dup, err := s.invoiceRepo.LineItemExists(invoiceID, req.ProductName, req.BatchNumber, req.ExpiryDate, mrp)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrDuplicateLineItem
	}

	rackNo, err := s.catalogRepo.FindRackNo(req.ProductName, req.BatchNumber, req.ExpiryDate, mrp)
	if err != nil {
		return nil, err
	}

	item := &model.InvoiceLineItem{
		InvoiceID:   invoiceID,
		ProductName: req.ProductName,
		BatchNumber: req.BatchNumber,
		ExpiryDate:  req.ExpiryDate,
		MRP:         mrp,
		RackNo:      rackNo,
		ActualQty:   req.ActualQty,
	}
	item.CreatedBy = createdBy
	item.UpdatedBy = createdBy

	if err := s.invoiceRepo.CreateLineItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *invoiceService) RemoveLineItem(invoiceID, lineItemID uuid.UUID) error {
	exists, err := s.invoiceRepo.Exists(invoiceID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrInvoiceNotFound
	}

	rows, err := s.invoiceRepo.DeleteLineItem(lineItemID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrLineItemNotFound
	}
	return nil
}

// BindTray associates a tray with an invoice; a nil invoiceID frees the tray.
func (s *invoiceService) BindTray(trayNo string, invoiceID *uuid.UUID) (*model.Tray, error) {
	if _, err := s.trayRepo.FindByTrayNo(trayNo); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrayNotFound
		}
		return nil, err
	}

	if invoiceID != nil {
		exists, err := s.invoiceRepo.Exists(*invoiceID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrInvoiceNotFound
		}
	}

	if err := s.trayRepo.AssignInvoice(trayNo, invoiceID); err != nil {
		return nil, err
	}
	return s.trayRepo.FindByTrayNo(trayNo)
}
