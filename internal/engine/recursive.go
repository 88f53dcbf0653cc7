package engine

import (
	"context"
	"fmt"
	"strings"

	"beantrace/internal/domain"
	"beantrace/internal/normalize"
)

// TraceClosure runs the lineage traversal as a single recursive query
// inside DuckDB and returns the flat closure of lots reachable from the
// queried lot: each related lot once, tagged with the depth, relation,
// and path of the first step order that reached it.
//
// The derived edge relation mirrors the in-memory walker: production
// orders link their output lots to their consumption lots in both
// directions, transfers link forward always and backward only for lots
// that have a transfer record of their own. The pipe-delimited path
// doubles as the cycle guard.
func (s *DuckDBSource) TraceClosure(ctx context.Context, lot string, maxDepth int) ([]domain.RelatedLot, *domain.ClosureSummary, error) {
	if maxDepth < 1 {
		return nil, nil, domain.ErrValidation("max depth must be at least 1, got %d", maxDepth)
	}

	physical := s.mapping.PhysicalTable(domain.TableLedger)
	exists, err := s.tableExists(ctx, physical)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, domain.ErrUnavailable("ledger table %s not present in source", domain.TableLedger)
	}

	query, err := s.closureQuery(ctx, physical)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, normalize.Key(lot), maxDepth)
	if err != nil {
		return nil, nil, fmt.Errorf("trace closure: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	summary := &domain.ClosureSummary{QueriedLot: normalize.Display(lot)}
	var related []domain.RelatedLot
	for rows.Next() {
		var rl domain.RelatedLot
		if err := rows.Scan(&rl.LotNo, &rl.Depth, &rl.Relation, &rl.Direction, &rl.Path); err != nil {
			return nil, nil, fmt.Errorf("scan closure row: %w", err)
		}
		related = append(related, rl)
		summary.TotalRelated++
		if rl.Depth > summary.MaxDepthReached {
			summary.MaxDepthReached = rl.Depth
		}
		if rl.Direction == "source" {
			summary.SourceCount++
		} else {
			summary.DestinationCount++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("trace closure: %w", err)
	}
	return related, summary, nil
}

// closureQuery assembles the recursive SQL against the physical ledger
// table. Canonical columns the table lacks become empty literals, so a
// partial export degrades the same way the walker does.
func (s *DuckDBSource) closureQuery(ctx context.Context, physical string) (string, error) {
	present, err := s.tableColumns(ctx, physical)
	if err != nil {
		return "", err
	}

	expr := func(field string, fold bool) string {
		col := s.mapping.PhysicalColumn(domain.TableLedger, field)
		if !present[strings.ToLower(col)] {
			return "''"
		}
		e := fmt.Sprintf("coalesce(trim(CAST(%s AS VARCHAR)), '')", QuoteIdentifier(col))
		if fold {
			e = "upper(" + e + ")"
		}
		return e
	}

	query := fmt.Sprintf(`
WITH RECURSIVE norm AS (
	SELECT %[1]s AS lot, %[2]s AS ord, %[3]s AS ptype, %[4]s AS dest
	FROM %[5]s
	WHERE %[1]s <> ''
),
prod_edges AS (
	SELECT o.lot AS src, c.lot AS dst, 'consumed-to-produce' AS relation, 'source' AS direction
	FROM norm o
	JOIN norm c ON c.ord = o.ord
	WHERE o.ptype = 'OUTPUT' AND c.ptype = 'CONSUMPTION' AND o.ord <> '' AND c.lot <> o.lot
	UNION ALL
	SELECT c.lot, o.lot, 'produced-by-consuming', 'destination'
	FROM norm c
	JOIN norm o ON o.ord = c.ord
	WHERE c.ptype = 'CONSUMPTION' AND o.ptype = 'OUTPUT' AND c.ord <> '' AND o.lot <> c.lot
),
transfer_edges AS (
	SELECT lot AS src, dest AS dst, 'transferred-to' AS relation, 'destination' AS direction
	FROM norm
	WHERE ptype = 'TRANSFER' AND dest <> ''
	UNION ALL
	SELECT t.dest, t.lot, 'transferred-from', 'source'
	FROM norm t
	WHERE t.ptype = 'TRANSFER' AND t.dest <> '' AND t.dest <> t.lot
	  AND EXISTS (SELECT 1 FROM norm x WHERE x.lot = t.dest AND x.ptype = 'TRANSFER')
),
edges AS (
	SELECT DISTINCT src, dst, relation, direction FROM (
		SELECT * FROM prod_edges
		UNION ALL
		SELECT * FROM transfer_edges
	)
),
closure AS (
	SELECT e.dst AS lot, 1 AS depth, e.relation, e.direction,
	       '|' || e.src || '|' || e.dst || '|' AS path
	FROM edges e
	WHERE e.src = ?
	UNION ALL
	SELECT e.dst, c.depth + 1, e.relation, e.direction, c.path || e.dst || '|'
	FROM closure c
	JOIN edges e ON e.src = c.lot
	WHERE c.depth < ? AND instr(c.path, '|' || e.dst || '|') = 0
),
ranked AS (
	SELECT lot, depth, relation, direction, path,
	       row_number() OVER (PARTITION BY lot ORDER BY depth, path) AS rn
	FROM closure
)
SELECT lot, depth, relation, direction, path
FROM ranked
WHERE rn = 1
ORDER BY depth, lot`,
		expr("lot_no", true),
		expr("prod_order_no", true),
		expr("process_type", true),
		expr("lot_dest", true),
		QuoteIdentifier(physical),
	)
	return query, nil
}

func (s *DuckDBSource) tableColumns(ctx context.Context, physical string) (map[string]bool, error) {
	const q = `
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = 'main' AND table_name = ?`

	rows, err := s.db.QueryContext(ctx, q, physical)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", physical, err)
	}
	defer rows.Close() //nolint:errcheck

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan column name: %w", err)
		}
		cols[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("columns of %s: %w", physical, err)
	}
	return cols, nil
}
