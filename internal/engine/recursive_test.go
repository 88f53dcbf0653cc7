package engine

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beantrace/internal/domain"
)

func seedLedgerTable(t *testing.T, db *sql.DB, rows [][4]string) {
	t.Helper()
	_, err := db.Exec(`CREATE TABLE item_ledger (lot_no VARCHAR, prod_order_no VARCHAR, process_type VARCHAR, lot_dest VARCHAR)`)
	require.NoError(t, err)
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO item_ledger VALUES (?, ?, ?, ?)`, r[0], r[1], r[2], r[3])
		require.NoError(t, err)
	}
}

func productionChain() [][4]string {
	return [][4]string{
		{"L1", "", "Purchase", ""},
		{"L1", "P0", "Consumption", ""},
		{"L2", "P0", "Output", ""},
		{"L2", "P1", "Consumption", ""},
		{"L3", "P1", "Output", ""},
	}
}

func TestTraceClosure_UpstreamChain(t *testing.T) {
	db := openTestDuckDB(t)
	seedLedgerTable(t, db, productionChain())
	src := NewDuckDBSource(db, nil)

	related, summary, err := src.TraceClosure(context.Background(), "L3", 10)
	require.NoError(t, err)

	require.Len(t, related, 2)
	assert.Equal(t, domain.RelatedLot{
		LotNo:     "L2",
		Depth:     1,
		Relation:  domain.RelationConsumedToProduce,
		Direction: "source",
		Path:      "|L3|L2|",
	}, related[0])
	assert.Equal(t, "L1", related[1].LotNo)
	assert.Equal(t, 2, related[1].Depth)
	assert.Equal(t, domain.RelationConsumedToProduce, related[1].Relation)

	assert.Equal(t, "L3", summary.QueriedLot)
	assert.Equal(t, 2, summary.TotalRelated)
	assert.Equal(t, 2, summary.MaxDepthReached)
	assert.Equal(t, 2, summary.SourceCount)
	assert.Equal(t, 0, summary.DestinationCount)
}

func TestTraceClosure_DownstreamChain(t *testing.T) {
	db := openTestDuckDB(t)
	seedLedgerTable(t, db, productionChain())
	src := NewDuckDBSource(db, nil)

	related, summary, err := src.TraceClosure(context.Background(), "L1", 10)
	require.NoError(t, err)

	require.Len(t, related, 2)
	assert.Equal(t, "L2", related[0].LotNo)
	assert.Equal(t, domain.RelationProducedByConsuming, related[0].Relation)
	assert.Equal(t, "destination", related[0].Direction)
	assert.Equal(t, "L3", related[1].LotNo)
	assert.Equal(t, 2, summary.DestinationCount)
}

func TestTraceClosure_TransferBothDirections(t *testing.T) {
	db := openTestDuckDB(t)
	seedLedgerTable(t, db, [][4]string{
		{"A", "", "Transfer", "B"},
		{"B", "", "Transfer", "C"},
	})
	src := NewDuckDBSource(db, nil)

	related, summary, err := src.TraceClosure(context.Background(), "B", 10)
	require.NoError(t, err)

	require.Len(t, related, 2)
	assert.Equal(t, "A", related[0].LotNo)
	assert.Equal(t, domain.RelationTransferredFrom, related[0].Relation)
	assert.Equal(t, "source", related[0].Direction)
	assert.Equal(t, "C", related[1].LotNo)
	assert.Equal(t, domain.RelationTransferredTo, related[1].Relation)
	assert.Equal(t, 1, summary.SourceCount)
	assert.Equal(t, 1, summary.DestinationCount)
}

func TestTraceClosure_ReverseTransferNeedsOwnRecord(t *testing.T) {
	db := openTestDuckDB(t)
	seedLedgerTable(t, db, [][4]string{
		{"A", "", "Transfer", "B"},
	})
	src := NewDuckDBSource(db, nil)

	// B never transferred anything itself, so tracing B finds nothing.
	related, _, err := src.TraceClosure(context.Background(), "B", 10)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestTraceClosure_SelfTransferTerminates(t *testing.T) {
	db := openTestDuckDB(t)
	seedLedgerTable(t, db, [][4]string{
		{"S", "", "Transfer", "S"},
	})
	src := NewDuckDBSource(db, nil)

	related, summary, err := src.TraceClosure(context.Background(), "S", 10)
	require.NoError(t, err)

	require.Len(t, related, 1)
	assert.Equal(t, "S", related[0].LotNo)
	assert.Equal(t, domain.RelationTransferredTo, related[0].Relation)
	assert.Equal(t, 1, summary.MaxDepthReached)
}

func TestTraceClosure_DepthBound(t *testing.T) {
	db := openTestDuckDB(t)
	seedLedgerTable(t, db, [][4]string{
		{"A", "", "Transfer", "B"},
		{"B", "", "Transfer", "C"},
		{"C", "", "Transfer", "D"},
	})
	src := NewDuckDBSource(db, nil)

	related, summary, err := src.TraceClosure(context.Background(), "A", 2)
	require.NoError(t, err)

	require.Len(t, related, 2)
	assert.Equal(t, "B", related[0].LotNo)
	assert.Equal(t, "C", related[1].LotNo)
	assert.Equal(t, 2, summary.MaxDepthReached)
}

func TestTraceClosure_FoldsLotCase(t *testing.T) {
	db := openTestDuckDB(t)
	seedLedgerTable(t, db, [][4]string{
		{"roast-1", "", "Transfer", "Blend-2"},
	})
	src := NewDuckDBSource(db, nil)

	related, summary, err := src.TraceClosure(context.Background(), "  Roast-1 ", 10)
	require.NoError(t, err)

	require.Len(t, related, 1)
	assert.Equal(t, "BLEND-2", related[0].LotNo)
	assert.Equal(t, "Roast-1", summary.QueriedLot)
}

func TestTraceClosure_UnknownLot(t *testing.T) {
	db := openTestDuckDB(t)
	seedLedgerTable(t, db, productionChain())
	src := NewDuckDBSource(db, nil)

	related, summary, err := src.TraceClosure(context.Background(), "NOPE", 10)
	require.NoError(t, err)
	assert.Empty(t, related)
	assert.Equal(t, 0, summary.TotalRelated)
}

func TestTraceClosure_MissingDestColumnDegrades(t *testing.T) {
	db := openTestDuckDB(t)
	_, err := db.Exec(`CREATE TABLE item_ledger (lot_no VARCHAR, prod_order_no VARCHAR, process_type VARCHAR)`)
	require.NoError(t, err)
	for _, r := range [][3]string{
		{"L1", "P0", "Consumption"},
		{"L2", "P0", "Output"},
	} {
		_, err := db.Exec(`INSERT INTO item_ledger VALUES (?, ?, ?)`, r[0], r[1], r[2])
		require.NoError(t, err)
	}
	src := NewDuckDBSource(db, nil)

	related, _, err := src.TraceClosure(context.Background(), "L2", 10)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "L1", related[0].LotNo)
}

func TestTraceClosure_Validation(t *testing.T) {
	db := openTestDuckDB(t)
	seedLedgerTable(t, db, productionChain())
	src := NewDuckDBSource(db, nil)

	var ve *domain.ValidationError
	_, _, err := src.TraceClosure(context.Background(), "L1", 0)
	require.ErrorAs(t, err, &ve)
}

func TestTraceClosure_MissingLedger(t *testing.T) {
	db := openTestDuckDB(t)
	src := NewDuckDBSource(db, nil)

	var ue *domain.UnavailableError
	_, _, err := src.TraceClosure(context.Background(), "L1", 10)
	require.ErrorAs(t, err, &ue)
}
