package service

import (
	"log"
	"math"
	"sort"

	"go-invoice-verify/internal/model"
	"go-invoice-verify/internal/repository"
	"go-invoice-verify/pkg/timefmt"

	"github.com/google/uuid"
)

// MedianScanGap sorts the transaction timestamps, takes consecutive
// differences in seconds, and returns their median. Fewer than two
// timestamps yields nil since a single scan has no gap.
func MedianScanGap(timestamps []string) (*float64, error) {
	if len(timestamps) < 2 {
		return nil, nil
	}

	times := make([]int64, 0, len(timestamps))
	for _, ts := range timestamps {
		t, err := timefmt.Parse(ts)
		if err != nil {
			return nil, err
		}
		times = append(times, t.Unix())
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	diffs := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		diffs = append(diffs, float64(times[i]-times[i-1]))
	}
	sort.Float64s(diffs)

	var median float64
	mid := len(diffs) / 2
	if len(diffs)%2 == 1 {
		median = diffs[mid]
	} else {
		median = (diffs[mid-1] + diffs[mid]) / 2
	}
	return &median, nil
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type MetricsService interface {
	// Compute derives and upserts the performance metric row for one
	// (invoice, phase). Phases without metric derivation (packer) and
	// invoices with an incomplete phase window are skipped silently.
	Compute(invoiceID uuid.UUID, phase model.Phase) error
	ForInvoice(invoiceID uuid.UUID) ([]model.PhasePerformanceMetric, error)
}

type metricsService struct {
	metadataRepo    repository.MetadataRepository
	invoiceRepo     repository.InvoiceRepository
	transactionRepo repository.TransactionRepository
	metricsRepo     repository.MetricsRepository
}

func NewMetricsService(metadataRepo repository.MetadataRepository, invoiceRepo repository.InvoiceRepository,
	transactionRepo repository.TransactionRepository, metricsRepo repository.MetricsRepository) MetricsService {
	return &metricsService{
		metadataRepo:    metadataRepo,
		invoiceRepo:     invoiceRepo,
		transactionRepo: transactionRepo,
		metricsRepo:     metricsRepo,
	}
}

// phaseWindow maps a phase onto its metadata start/end timestamps and
// operator. The packer phase is deliberately absent: no metrics are derived
// for it.
func phaseWindow(meta *model.InvoicePhaseMetadata, phase model.Phase) (start, end string, operator *uuid.UUID, ok bool) {
	switch phase {
	case model.PhasePickerEnd:
		return meta.PickerStart, meta.PickerEnd, meta.PickerID, true
	case model.PhaseCheckerEnd:
		return meta.CheckerStart, meta.CheckerEnd, meta.CheckerID, true
	}
	return "", "", nil, false
}

func (s *metricsService) Compute(invoiceID uuid.UUID, phase model.Phase) error {
	meta, err := s.metadataRepo.FindByInvoiceID(invoiceID)
	if err != nil {
		return err
	}
	if meta == nil {
		log.Printf("metrics: no metadata for invoice %s, skipping", invoiceID)
		return nil
	}

	start, end, operator, ok := phaseWindow(meta, phase)
	if !ok {
		log.Printf("metrics: phase %q has no metric derivation, skipping invoice %s", phase, invoiceID)
		return nil
	}
	if start == "" || end == "" {
		log.Printf("metrics: missing start/end for invoice %s phase %s, skipping", invoiceID, phase)
		return nil
	}

	lineItems, err := s.invoiceRepo.CountLineItems(invoiceID)
	if err != nil {
		return err
	}

	totalScans, err := s.transactionRepo.CountByInvoicePhase(invoiceID, phase)
	if err != nil {
		return err
	}

	timeToComplete, err := timefmt.SecondsBetween(start, end)
	if err != nil {
		return err
	}

	timestamps, err := s.transactionRepo.TimestampsByInvoicePhase(invoiceID, phase)
	if err != nil {
		return err
	}
	medianGap, err := MedianScanGap(timestamps)
	if err != nil {
		return err
	}

	accuracy := 0.0
	if totalScans > 0 {
		resolved, err := s.transactionRepo.CountResolvedScans(invoiceID, phase)
		if err != nil {
			return err
		}
		accuracy = round2(float64(resolved) / float64(totalScans) * 100)
	}

	metric := &model.PhasePerformanceMetric{
		InvoiceID:        invoiceID,
		Phase:            phase,
		OperatorID:       operator,
		InvoiceStartTime: start,
		InvoiceEndTime:   end,
		LineItems:        int(lineItems),
		TimeToComplete:   timeToComplete,
		TotalScans:       int(totalScans),
		MedianScanGap:    medianGap,
		Accuracy:         accuracy,
	}
	return s.metricsRepo.Upsert(metric)
}

func (s *metricsService) ForInvoice(invoiceID uuid.UUID) ([]model.PhasePerformanceMetric, error) {
	return s.metricsRepo.FindByInvoice(invoiceID)
}
