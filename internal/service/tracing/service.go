// Package tracing is the orchestration facade over the lineage engine.
// It loads ledger rows from a TableSource, builds the immutable index
// snapshot, and serves traces, contract resolution, and statistics from
// whichever snapshot is current. The HTTP API, the CLI, and the demo
// entrypoint all talk to this package and nothing below it.
package tracing

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"beantrace/internal/domain"
	"beantrace/internal/index"
	"beantrace/internal/normalize"
	"beantrace/internal/resolve"
	"beantrace/internal/stats"
	"beantrace/internal/trace"
)

const defaultMaxBatch = 100

// Service owns the current snapshot and answers every engine query
// against it. Reads are served lock-free off one state value; Reindex
// builds a replacement on the side and swaps it in atomically.
type Service struct {
	source   domain.TableSource
	logger   *slog.Logger
	maxDepth int
	maxBatch int

	reindexMu sync.Mutex // held for the duration of one rebuild

	mu  sync.RWMutex
	cur *state
}

// state bundles everything derived from one ledger load. It is built
// once, never mutated, and replaced wholesale.
type state struct {
	session   *trace.Session
	contracts *domain.SaleContractMap
	stats     domain.IndexStats
}

// NewService wires a Service over a TableSource. maxDepth bounds every
// trace that does not bring its own bound, maxBatch caps batch sizes;
// zero values select the defaults.
func NewService(source domain.TableSource, maxDepth, maxBatch int, logger *slog.Logger) *Service {
	if maxDepth <= 0 {
		maxDepth = trace.DefaultMaxDepth
	}
	if maxBatch <= 0 {
		maxBatch = defaultMaxBatch
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:   source,
		logger:   logger.With("component", "tracing"),
		maxDepth: maxDepth,
		maxBatch: maxBatch,
	}
}

// Reindex rebuilds the snapshot from the TableSource: read the ledger,
// normalize, enrich from the purchase registry, index, resolve the sale
// contract chain, then swap the new state in. Queries keep answering
// from the old snapshot until the swap. Only one rebuild runs at a
// time; a second caller gets a conflict error instead of queueing.
func (s *Service) Reindex(ctx context.Context) (*domain.IndexStats, error) {
	if !s.reindexMu.TryLock() {
		return nil, domain.ErrConflict("reindex already in progress")
	}
	defer s.reindexMu.Unlock()

	start := time.Now()

	names, err := s.source.ListTables(ctx)
	if err != nil {
		return nil, domain.ErrUnavailable("list source tables: %v", err)
	}
	if !slices.Contains(names, domain.TableLedger) {
		return nil, domain.ErrUnavailable("ledger table %s not present in source", domain.TableLedger)
	}

	rows, err := s.source.ReadTable(ctx, domain.TableLedger)
	if err != nil {
		return nil, domain.ErrUnavailable("read %s: %v", domain.TableLedger, err)
	}

	records, report := normalize.Records(rows)
	if report.Dropped > 0 || report.QuantityCoercions > 0 {
		s.logger.Warn("ledger rows needed repair",
			"dropped", report.Dropped,
			"quantity_coercions", report.QuantityCoercions)
	}

	registry, err := s.source.ReadTable(ctx, domain.TablePurchaseRegistry)
	if err != nil {
		return nil, domain.ErrUnavailable("read %s: %v", domain.TablePurchaseRegistry, err)
	}
	enriched := resolve.EnrichFromRegistry(records, registry)

	snap := index.Build(records)

	tables, err := resolve.LoadTables(ctx, s.source)
	if err != nil {
		return nil, domain.ErrUnavailable("load auxiliary tables: %v", err)
	}
	contracts := resolve.SaleContracts(tables, snap)

	st := snap.Stats()
	st.RowsDropped = report.Dropped
	st.QuantityCoercions = report.QuantityCoercions
	st.Contracts = contracts.Len()

	s.mu.Lock()
	s.cur = &state{
		session:   trace.NewSession(snap),
		contracts: contracts,
		stats:     st,
	}
	s.mu.Unlock()

	s.logger.Info("index rebuilt",
		"records", st.Records,
		"lots", st.Lots,
		"production_orders", st.ProductionOrders,
		"contracts", st.Contracts,
		"enriched", enriched,
		"elapsed", time.Since(start))

	return &st, nil
}

// current returns the active state or an unavailable error before the
// first successful Reindex.
func (s *Service) current() (*state, error) {
	s.mu.RLock()
	cur := s.cur
	s.mu.RUnlock()
	if cur == nil {
		return nil, domain.ErrUnavailable("no index snapshot built yet")
	}
	return cur, nil
}

// Trace traces one lot. maxDepth <= 0 selects the service default; an
// unknown lot comes back as a NotFound leaf, not an error.
func (s *Service) Trace(ctx context.Context, lotNo string, maxDepth int) (*domain.TraceResult, error) {
	if strings.TrimSpace(lotNo) == "" {
		return nil, domain.ErrValidation("lot number must not be empty")
	}
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	if maxDepth <= 0 {
		maxDepth = s.maxDepth
	}
	_ = ctx
	return cur.session.Trace(lotNo, maxDepth), nil
}

// TraceBatch traces several lots against one snapshot. The progress
// callback may be nil.
func (s *Service) TraceBatch(ctx context.Context, lots []string, maxDepth int, progress func(done, total int)) (*domain.BatchTraceResult, error) {
	if len(lots) == 0 {
		return nil, domain.ErrValidation("no lots given")
	}
	if len(lots) > s.maxBatch {
		return nil, domain.ErrValidation("batch of %d exceeds limit of %d lots", len(lots), s.maxBatch)
	}
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	if maxDepth <= 0 {
		maxDepth = s.maxDepth
	}
	return cur.session.TraceBatch(ctx, lots, maxDepth, progress)
}

// ResolveContract returns the consumption lots behind a sale contract.
func (s *Service) ResolveContract(ctx context.Context, contract string) ([]string, error) {
	_ = ctx
	contract = strings.TrimSpace(contract)
	if contract == "" {
		return nil, domain.ErrValidation("sale contract must not be empty")
	}
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	lots, ok := cur.contracts.Lots(contract)
	if !ok {
		return nil, domain.ErrNotFound("unknown sale contract %q", contract)
	}
	return lots, nil
}

// Contracts returns every resolved sale contract with its lots.
func (s *Service) Contracts(ctx context.Context) (*domain.SaleContractMap, error) {
	_ = ctx
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	return cur.contracts, nil
}

// LotStats summarizes the ledger records of one lot.
func (s *Service) LotStats(ctx context.Context, lotNo string) (*domain.LotStatistics, error) {
	_ = ctx
	if strings.TrimSpace(lotNo) == "" {
		return nil, domain.ErrValidation("lot number must not be empty")
	}
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	return stats.ForLot(cur.session.Snapshot(), lotNo)
}

// Tables lists the canonical table names the TableSource offers.
func (s *Service) Tables(ctx context.Context) ([]string, error) {
	return s.source.ListTables(ctx)
}

// IndexStats returns the counters of the current snapshot.
func (s *Service) IndexStats(ctx context.Context) (*domain.IndexStats, error) {
	_ = ctx
	cur, err := s.current()
	if err != nil {
		return nil, err
	}
	st := cur.stats
	return &st, nil
}
