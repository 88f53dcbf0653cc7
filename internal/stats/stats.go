// Package stats derives summary figures from ledger records and
// finished traces. Everything here is a pure read over an index
// snapshot; nothing is cached.
package stats

import (
	"sort"
	"strings"

	"beantrace/internal/domain"
	"beantrace/internal/index"
	"beantrace/internal/normalize"
)

// ForLot summarizes every ledger record of one lot. Lookup is
// case-insensitive. Returns a not-found error when the lot has no
// ledger records at all.
func ForLot(snap *index.Snapshot, lotNo string) (*domain.LotStatistics, error) {
	records := snap.Lot(lotNo)
	if len(records) == 0 {
		return nil, domain.ErrNotFound("no ledger records for lot %q", strings.TrimSpace(lotNo))
	}

	st := &domain.LotStatistics{
		LotNo:        records[0].LotNo,
		TotalRecords: len(records),
	}

	seenType := make(map[domain.ProcessType]bool)
	seenDate := make(map[string]bool)
	seenUnit := make(map[string]bool)
	for _, rec := range records {
		st.TotalQuantity += rec.Quantity
		if !seenType[rec.ProcessType] {
			seenType[rec.ProcessType] = true
			st.ProcessTypes = append(st.ProcessTypes, rec.ProcessType)
		}
		if rec.PostingDate != "" && !seenDate[rec.PostingDate] {
			seenDate[rec.PostingDate] = true
			st.PostingDates = append(st.PostingDates, rec.PostingDate)
		}
		if rec.Unit != "" && !seenUnit[rec.Unit] {
			seenUnit[rec.Unit] = true
			st.Units = append(st.Units, rec.Unit)
		}
	}
	sort.Strings(st.PostingDates)
	return st, nil
}

// ForTrace summarizes a finished trace over its visited set. Quantity
// sums cover each distinct traced lot once, whatever shape the tree
// took; warning leaves are echoes of lots counted elsewhere and are
// skipped, while max depth considers every node including leaves.
func ForTrace(result *domain.TraceResult, snap *index.Snapshot) *domain.TraceStatistics {
	ts := &domain.TraceStatistics{}
	if result == nil || result.Tree == nil {
		return ts
	}
	ts.RootSources = len(result.Tree.Sources)
	ts.RootDestinations = len(result.Tree.Destinations)

	seen := make(map[string]bool)
	result.Tree.Walk(func(node *domain.LineageNode) {
		if node.Depth > ts.MaxDepthReached {
			ts.MaxDepthReached = node.Depth
		}
		if node.Warning != "" {
			return
		}
		key := normalize.Key(node.LotNo)
		if seen[key] {
			return
		}
		seen[key] = true
		ts.TotalNodes++
		for _, rec := range snap.Lot(key) {
			switch rec.ProcessType {
			case domain.ProcessConsumption:
				ts.ConsumptionQuantity += rec.Quantity
			case domain.ProcessOutput:
				ts.OutputQuantity += rec.Quantity
			}
		}
	})
	return ts
}
