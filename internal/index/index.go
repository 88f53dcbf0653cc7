// Package index builds immutable in-memory lookup structures over the
// normalized ledger. A Snapshot is built once per load and shared read-only
// by every trace; rebuilding produces a fresh Snapshot that replaces the old
// one atomically at the owner.
package index

import (
	"time"

	"beantrace/internal/domain"
	"beantrace/internal/normalize"
)

// Snapshot holds the ledger records plus hash indexes keyed by folded
// identifiers. All lookups accept raw identifiers and fold them internally,
// and all of them return the matching records in ledger order. A missing
// key yields an empty result, never an error.
type Snapshot struct {
	records []domain.LotRecord

	byLot          map[string][]domain.LotRecord
	byProdOrder    map[string][]domain.LotRecord
	byTransferDest map[string][]domain.LotRecord

	lotOrder []string
	builtAt  time.Time
}

// Build indexes the given records. The slice is retained; callers hand
// ownership to the snapshot.
func Build(records []domain.LotRecord) *Snapshot {
	s := &Snapshot{
		records:        records,
		byLot:          make(map[string][]domain.LotRecord),
		byProdOrder:    make(map[string][]domain.LotRecord),
		byTransferDest: make(map[string][]domain.LotRecord),
		builtAt:        time.Now().UTC(),
	}

	for _, rec := range records {
		if rec.LotKey == "" {
			continue
		}
		if _, seen := s.byLot[rec.LotKey]; !seen {
			s.lotOrder = append(s.lotOrder, rec.LotNo)
		}
		s.byLot[rec.LotKey] = append(s.byLot[rec.LotKey], rec)

		if rec.ProdOrderKey != "" {
			s.byProdOrder[rec.ProdOrderKey] = append(s.byProdOrder[rec.ProdOrderKey], rec)
		}
		if rec.LotDestKey != "" {
			s.byTransferDest[rec.LotDestKey] = append(s.byTransferDest[rec.LotDestKey], rec)
		}
	}
	return s
}

// Lot returns the ledger records for a lot number. The result is shared
// with the snapshot and must not be modified.
func (s *Snapshot) Lot(lotNo string) []domain.LotRecord {
	return s.byLot[normalize.Key(lotNo)]
}

// HasLot reports whether the ledger has any record for the lot.
func (s *Snapshot) HasLot(lotNo string) bool {
	_, ok := s.byLot[normalize.Key(lotNo)]
	return ok
}

// ProductionOrder returns the ledger records posted under a production
// order: its consumption inputs and its produced outputs, in ledger order.
func (s *Snapshot) ProductionOrder(orderNo string) []domain.LotRecord {
	return s.byProdOrder[normalize.Key(orderNo)]
}

// TransfersInto returns the records of other lots that were transferred
// into the given lot, in ledger order.
func (s *Snapshot) TransfersInto(lotNo string) []domain.LotRecord {
	return s.byTransferDest[normalize.Key(lotNo)]
}

// Records returns every indexed record in ledger order. Shared, read-only.
func (s *Snapshot) Records() []domain.LotRecord {
	return s.records
}

// Lots returns the distinct lot numbers in first-appearance order, with
// their original display casing.
func (s *Snapshot) Lots() []string {
	out := make([]string, len(s.lotOrder))
	copy(out, s.lotOrder)
	return out
}

// Len returns the number of indexed records.
func (s *Snapshot) Len() int { return len(s.records) }

// BuiltAt returns when the snapshot was built.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Stats summarizes the snapshot. Loader counters (dropped rows, quantity
// coercions, contracts) belong to the load that produced the snapshot and
// are filled in by the owner.
func (s *Snapshot) Stats() domain.IndexStats {
	transferLinks := 0
	for _, recs := range s.byTransferDest {
		transferLinks += len(recs)
	}
	return domain.IndexStats{
		Records:          len(s.records),
		Lots:             len(s.byLot),
		ProductionOrders: len(s.byProdOrder),
		TransferLinks:    transferLinks,
		BuiltAt:          s.builtAt,
	}
}
