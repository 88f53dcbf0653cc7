package testutil

import "beantrace/internal/domain"

// FixtureTables returns a small but complete production dataset: two green
// coffee purchases consumed by one roast order, the roast transferred into
// a blend lot that feeds a packing order, plus the auxiliary sale
// bookkeeping chain linking contract SC-ALPHA to the roast order's
// consumption lots.
//
// Lineage of PACK-500, for reference:
//
//	GREEN-100 (Purchase) ─┐
//	GREEN-200 (Purchase) ─┴─ PO-500 ─ ROAST-300 ─ transfer ─ BLEND-400 ─ PO-600 ─ PACK-500
func FixtureTables() map[string][]domain.Row {
	return map[string][]domain.Row{
		domain.TableLedger: {
			{"lot_no": "GREEN-100", "process_type": "Purchase", "quantity": 1000.0, "unit": "KG", "posting_date": "2023-03-01", "item_no": "GREEN-COL", "description": "Green beans, washed", "location_code": "WAREHOUSE"},
			{"lot_no": "GREEN-200", "process_type": "Purchase", "quantity": 800.0, "unit": "KG", "posting_date": "2023-03-04", "item_no": "GREEN-BRA", "description": "Green beans, natural", "location_code": "WAREHOUSE"},
			{"lot_no": "GREEN-100", "prod_order_no": "PO-500", "process_type": "Consumption", "quantity": -600.0, "unit": "KG", "posting_date": "2023-03-10"},
			{"lot_no": "GREEN-200", "prod_order_no": "PO-500", "process_type": "Consumption", "quantity": -400.0, "unit": "KG", "posting_date": "2023-03-10"},
			{"lot_no": "ROAST-300", "prod_order_no": "PO-500", "process_type": "Output", "quantity": 850.0, "unit": "KG", "posting_date": "2023-03-11", "item_no": "ROAST-ESP", "description": "Espresso roast"},
			{"lot_no": "ROAST-300", "process_type": "Transfer", "quantity": 850.0, "unit": "KG", "posting_date": "2023-03-12", "lot_dest": "BLEND-400"},
			{"lot_no": "BLEND-400", "prod_order_no": "PO-600", "process_type": "Consumption", "quantity": -850.0, "unit": "KG", "posting_date": "2023-03-15"},
			{"lot_no": "PACK-500", "prod_order_no": "PO-600", "process_type": "Output", "quantity": 840.0, "unit": "KG", "posting_date": "2023-03-16", "item_no": "PACK-250G", "description": "Packed espresso 250g"},
		},
		domain.TablePurchaseRegistry: {
			{"lots": "GREEN-100", "counterparty": "Finca La Paz", "certification": "Organic", "origin_country": "Colombia"},
			{"lots": "GREEN-200", "counterparty": "Finca El Sol", "certification": "Rainforest", "origin_country": "Brazil"},
		},
		domain.TableSaleRegistry: {
			{"sale_contract": "SC-ALPHA", "lot_number": "REG-1"},
		},
		domain.TableSaleLots: {
			{"contract_ref": "REG-1", "sale_lot": "SALE-1"},
		},
		domain.TableTransformLots: {
			{"sale_lot": "SALE-1", "production_lot": "TRANS-1"},
		},
		domain.TableLotBridge: {
			{"origin_lot": "TRANS-1", "dest_lot": "BRIDGE-1"},
		},
		domain.TableProductionResults: {
			{"lot_no": "BRIDGE-1", "prod_order_no": "PO-500"},
		},
	}
}

// FixtureSource wraps FixtureTables in a MockSource.
func FixtureSource() *MockSource {
	return &MockSource{Tables: FixtureTables()}
}
