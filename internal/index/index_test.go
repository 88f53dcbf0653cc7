package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beantrace/internal/domain"
	"beantrace/internal/normalize"
)

func rec(lot, order, dest string, pt domain.ProcessType, qty float64) domain.LotRecord {
	return domain.LotRecord{
		LotNo:        lot,
		LotKey:       normalize.Key(lot),
		ProdOrderNo:  order,
		ProdOrderKey: normalize.Key(order),
		LotDest:      dest,
		LotDestKey:   normalize.Key(dest),
		ProcessType:  pt,
		Quantity:     qty,
	}
}

func TestBuild_LotLookup(t *testing.T) {
	snap := Build([]domain.LotRecord{
		rec("L1", "", "", domain.ProcessPurchase, 100),
		rec("L2", "P1", "", domain.ProcessConsumption, -50),
		rec("L1", "P1", "", domain.ProcessConsumption, -100),
		rec("L3", "P1", "", domain.ProcessOutput, 140),
	})

	got := snap.Lot("L1")
	require.Len(t, got, 2)
	assert.Equal(t, domain.ProcessPurchase, got[0].ProcessType)
	assert.Equal(t, domain.ProcessConsumption, got[1].ProcessType)

	assert.True(t, snap.HasLot("L1"))
	assert.False(t, snap.HasLot("L9"))
}

func TestLot_FoldsIdentifier(t *testing.T) {
	snap := Build([]domain.LotRecord{
		rec("Lot-A", "", "", domain.ProcessPurchase, 10),
	})

	require.Len(t, snap.Lot("lot-a"), 1)
	require.Len(t, snap.Lot("  LOT-A  "), 1)
	assert.Equal(t, "Lot-A", snap.Lot("lot-a")[0].LotNo)
}

func TestLot_MissingIsEmpty(t *testing.T) {
	snap := Build(nil)

	assert.Empty(t, snap.Lot("anything"))
	assert.Empty(t, snap.ProductionOrder("P1"))
	assert.Empty(t, snap.TransfersInto("L1"))
}

func TestProductionOrder_PreservesLedgerOrder(t *testing.T) {
	snap := Build([]domain.LotRecord{
		rec("L1", "P1", "", domain.ProcessConsumption, -10),
		rec("L2", "P1", "", domain.ProcessConsumption, -20),
		rec("L3", "P1", "", domain.ProcessOutput, 28),
		rec("L4", "P2", "", domain.ProcessOutput, 5),
	})

	got := snap.ProductionOrder("p1")
	require.Len(t, got, 3)
	assert.Equal(t, "L1", got[0].LotNo)
	assert.Equal(t, "L2", got[1].LotNo)
	assert.Equal(t, "L3", got[2].LotNo)
}

func TestTransfersInto(t *testing.T) {
	snap := Build([]domain.LotRecord{
		rec("L1", "", "L2", domain.ProcessTransfer, 30),
		rec("L3", "", "L2", domain.ProcessTransfer, 40),
		rec("L2", "", "", domain.ProcessOutput, 70),
	})

	got := snap.TransfersInto("L2")
	require.Len(t, got, 2)
	assert.Equal(t, "L1", got[0].LotNo)
	assert.Equal(t, "L3", got[1].LotNo)
	assert.Empty(t, snap.TransfersInto("L1"))
}

func TestLots_FirstAppearanceOrder(t *testing.T) {
	snap := Build([]domain.LotRecord{
		rec("Lot-B", "", "", domain.ProcessPurchase, 1),
		rec("Lot-A", "", "", domain.ProcessPurchase, 1),
		rec("lot-b", "", "", domain.ProcessTransfer, 1),
	})

	// Case variants collapse onto the first-seen display form.
	assert.Equal(t, []string{"Lot-B", "Lot-A"}, snap.Lots())
}

func TestStats(t *testing.T) {
	snap := Build([]domain.LotRecord{
		rec("L1", "P1", "", domain.ProcessConsumption, -10),
		rec("L2", "P1", "", domain.ProcessOutput, 9),
		rec("L2", "", "L4", domain.ProcessTransfer, 9),
		rec("L3", "P2", "", domain.ProcessPurchase, 5),
	})

	stats := snap.Stats()
	assert.Equal(t, 4, stats.Records)
	assert.Equal(t, 3, stats.Lots)
	assert.Equal(t, 2, stats.ProductionOrders)
	assert.Equal(t, 1, stats.TransferLinks)
	assert.False(t, stats.BuiltAt.IsZero())
}
