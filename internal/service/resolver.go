package service

import (
	"log"
	"strings"

	"go-invoice-verify/internal/model"
	"go-invoice-verify/internal/repository"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
)

// similarityThreshold is the 0-100 score a candidate batch must reach before
// fuzzy narrowing keeps it; minFuzzyBatchLen guards against trivial matches
// on very short batch codes.
const (
	similarityThreshold = 80
	minFuzzyBatchLen    = 3
	overFilterLimit     = 5
)

// ScanQuery is one noisy physical scan to resolve against the catalog.
// MRP is a pointer so "not supplied" and "zero" stay distinct.
type ScanQuery struct {
	BatchNumber string   `json:"batch_number" validate:"required"`
	ExpiryDate  string   `json:"expiry_date"` // DD-MM-YYYY
	MfgDate     string   `json:"mfg_date"`    // DD-MM-YYYY
	MRP         *float64 `json:"mrp"`
	Barcode1    string   `json:"barcode1"`
	Barcode2    string   `json:"barcode2"`
}

type ResolverService interface {
	// Resolve runs the hierarchical search and returns the candidate list:
	// empty (not found), one (confident) or many (caller must disambiguate).
	Resolve(query ScanQuery) ([]model.CatalogEntry, error)
}

type resolverService struct {
	catalogRepo repository.CatalogRepository
}

func NewResolverService(catalogRepo repository.CatalogRepository) ResolverService {
	return &resolverService{catalogRepo: catalogRepo}
}

// batchNoiseCutset is stripped from scanned batch numbers before matching.
const batchNoiseCutset = " @#$%^&*()!?-"

// NormalizeBatch strips whitespace and scanner noise characters from a raw
// batch number.
func NormalizeBatch(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if strings.ContainsRune(batchNoiseCutset, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// batchSimilarity scores two batch numbers on a 0-100 scale using a
// normalized edit distance.
func batchSimilarity(a, b string) int {
	if a == b {
		return 100
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	score := 100 - (dist*100)/maxLen
	if score < 0 {
		score = 0
	}
	return score
}

func (s *resolverService) Resolve(query ScanQuery) ([]model.CatalogEntry, error) {
	normalized := NormalizeBatch(query.BatchNumber)

	// Barcode short-circuit: a barcode matching exactly one row wins outright.
	// More than one match means a multi-MRP SKU, so the search continues.
	for _, barcode := range []string{query.Barcode1, query.Barcode2} {
		if barcode == "" {
			continue
		}
		entries, err := s.catalogRepo.FindByBarcode(barcode)
		if err != nil {
			return nil, err
		}
		if len(entries) == 1 {
			log.Printf("resolver: exact barcode match for %q", barcode)
			return entries, nil
		}
	}

	// Exact batch match.
	candidates, err := s.catalogRepo.FindByBatch(normalized)
	if err != nil {
		return nil, err
	}

	// Structural fuzzy expansion engages only when the exact match came up
	// empty; re-run once with the mfg predicate dropped if needed.
	if len(candidates) == 0 {
		candidates, err = s.fuzzyExpand(query, normalized, false)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			candidates, err = s.fuzzyExpand(query, normalized, true)
			if err != nil {
				return nil, err
			}
		}
	}

	if len(candidates) == 0 {
		log.Printf("resolver: no products found for batch %q", normalized)
		return nil, nil
	}

	return s.toleranceCascade(query, candidates), nil
}

// fuzzyExpand queries the catalog on structural predicates (expiry, mfg, MRP
// within ±1) and narrows the result by batch-number similarity when possible.
// Fewer than two available predicates makes the expansion too loose to trust.
func (s *resolverService) fuzzyExpand(query ScanQuery, normalized string, skipMfg bool) ([]model.CatalogEntry, error) {
	filter := repository.StructuralFilter{
		ExpiryDate: query.ExpiryDate,
	}
	if !skipMfg {
		filter.MfgDate = query.MfgDate
	}
	if query.MRP != nil {
		filter.HasMRP = true
		filter.MRPMin = *query.MRP - 1
		filter.MRPMax = *query.MRP + 1
	}

	if filter.PredicateCount() < 2 {
		log.Println("resolver: fuzzy expansion needs at least 2 predicates, skipping")
		return nil, nil
	}

	entries, err := s.catalogRepo.FindByStructural(filter)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	matched := map[string]bool{}
	for _, e := range entries {
		if len(e.BatchNumber) <= minFuzzyBatchLen {
			continue
		}
		if batchSimilarity(normalized, e.BatchNumber) >= similarityThreshold {
			matched[e.BatchNumber] = true
		}
	}
	if len(matched) == 0 {
		// No batch passed the similarity bar; keep the structurally
		// filtered set unchanged.
		return entries, nil
	}

	narrowed := entries[:0:0]
	for _, e := range entries {
		if matched[e.BatchNumber] {
			narrowed = append(narrowed, e)
		}
	}
	return narrowed, nil
}

// toleranceCascade accepts either MRP-within-±1 or exact expiry as sufficient
// confirmation, then intersects with mfg only when the set is still large.
func (s *resolverService) toleranceCascade(query ScanQuery, candidates []model.CatalogEntry) []model.CatalogEntry {
	var mrpFiltered, expiryFiltered []model.CatalogEntry

	if query.MRP != nil {
		for _, e := range candidates {
			if abs(e.MRP-*query.MRP) <= 1 {
				mrpFiltered = append(mrpFiltered, e)
			}
		}
	}

	if (len(mrpFiltered) == 0 || len(mrpFiltered) > overFilterLimit) && query.ExpiryDate != "" {
		for _, e := range candidates {
			if e.ExpiryDate == query.ExpiryDate {
				expiryFiltered = append(expiryFiltered, e)
			}
		}
	}

	if len(mrpFiltered) == 0 && len(expiryFiltered) == 0 {
		log.Println("resolver: no candidate matched either MRP or expiry")
		return nil
	}

	combined := map[uuid.UUID]bool{}
	for _, e := range mrpFiltered {
		combined[e.ID] = true
	}
	for _, e := range expiryFiltered {
		combined[e.ID] = true
	}

	var filtered []model.CatalogEntry
	for _, e := range candidates {
		if combined[e.ID] {
			filtered = append(filtered, e)
		}
	}

	// MFG only tightens an already-large set; its absence never invalidates
	// otherwise-good matches.
	if query.MfgDate != "" && len(filtered) > overFilterLimit {
		var mfgFiltered []model.CatalogEntry
		for _, e := range filtered {
			if e.MfgDate == query.MfgDate {
				mfgFiltered = append(mfgFiltered, e)
			}
		}
		if len(mfgFiltered) > 0 {
			filtered = mfgFiltered
		}
	}

	return filtered
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
