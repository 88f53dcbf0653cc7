package domain

import "time"

// LotStatistics summarizes every ledger record of one lot.
type LotStatistics struct {
	LotNo         string        `json:"lot_no"`
	TotalRecords  int           `json:"total_records"`
	TotalQuantity float64       `json:"total_quantity"`
	ProcessTypes  []ProcessType `json:"process_types"`
	PostingDates  []string      `json:"posting_dates"` // sorted distinct
	Units         []string      `json:"units"`
}

// TraceStatistics summarizes one traversal over its full visited set.
type TraceStatistics struct {
	TotalNodes          int     `json:"total_nodes"`
	ConsumptionQuantity float64 `json:"consumption_quantity"`
	OutputQuantity      float64 `json:"output_quantity"`
	MaxDepthReached     int     `json:"max_depth_reached"`
	RootSources         int     `json:"root_sources"`
	RootDestinations    int     `json:"root_destinations"`
}

// IndexStats describes one index snapshot.
type IndexStats struct {
	Records           int       `json:"records"`
	Lots              int       `json:"lots"`
	ProductionOrders  int       `json:"production_orders"`
	TransferLinks     int       `json:"transfer_links"`
	RowsDropped       int       `json:"rows_dropped"`
	QuantityCoercions int       `json:"quantity_coercions"`
	Contracts         int       `json:"contracts"`
	BuiltAt           time.Time `json:"built_at"`
}
