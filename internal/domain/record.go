// Package domain defines core types, interfaces, and errors for the lot
// lineage engine.
package domain

import "strings"

// ProcessType classifies a ledger event for a lot.
type ProcessType string

const (
	// ProcessPurchase marks a lot bought from a counterparty, a terminal
	// provenance point.
	ProcessPurchase ProcessType = "Purchase"
	// ProcessConsumption marks a lot fed into a production order.
	ProcessConsumption ProcessType = "Consumption"
	// ProcessOutput marks a lot produced by a production order.
	ProcessOutput ProcessType = "Output"
	// ProcessTransfer marks a lot moved to another lot identifier.
	ProcessTransfer ProcessType = "Transfer"
	// ProcessUnknown covers process types the engine does not handle.
	ProcessUnknown ProcessType = "Unknown"

	// ProcessNotFound is a sentinel used on lineage nodes for lots absent
	// from the ledger. It never appears on a LotRecord.
	ProcessNotFound ProcessType = "NotFound"
)

// ParseProcessType maps a raw ledger value to a ProcessType.
// Matching is trimmed and case-insensitive; unrecognized values map to
// ProcessUnknown.
func ParseProcessType(s string) ProcessType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "purchase":
		return ProcessPurchase
	case "consumption":
		return ProcessConsumption
	case "output":
		return ProcessOutput
	case "transfer":
		return ProcessTransfer
	default:
		return ProcessUnknown
	}
}

// LotRecord is one row of the production/consumption ledger.
//
// Display fields (LotNo, ProdOrderNo, LotDest) keep their original casing;
// the matching Key fields hold the trimmed, case-folded form used for every
// comparison and index lookup. Multiple records may share a LotNo, one per
// process event.
type LotRecord struct {
	LotNo         string
	LotKey        string
	ProdOrderNo   string
	ProdOrderKey  string
	ItemNo        string
	Description   string
	Quantity      float64
	Unit          string
	PostingDate   string
	ProcessType   ProcessType
	LocationCode  string
	Counterparty  string
	Certification string
	LotDest       string
	LotDestKey    string

	// Extra carries unrecognized source columns for pass-through display.
	Extra map[string]string
}

// Row is one raw tabular row as delivered by a TableSource: column name to
// untyped value.
type Row map[string]any

// Canonical table names the engine reads from a TableSource. Physical names
// and columns are remapped onto these via the source mapping (config).
const (
	TableLedger            = "item_ledger"
	TablePurchaseRegistry  = "purchase_registry"
	TableSaleRegistry      = "sale_registry"
	TableSaleLots          = "sale_lots"
	TableTransformLots     = "transform_lots"
	TableLotBridge         = "lot_bridge"
	TableProductionResults = "production_results"
)

// AuxTables lists the auxiliary join-chain tables in stage order.
func AuxTables() []string {
	return []string{
		TableSaleRegistry,
		TableSaleLots,
		TableTransformLots,
		TableLotBridge,
		TableProductionResults,
	}
}
