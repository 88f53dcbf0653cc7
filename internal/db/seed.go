package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Seed loads the demo roastery dataset into an empty ledger database:
// two green purchases roasted by one order, the roast transferred into a
// blend that feeds a packing order, plus the sale bookkeeping chain for
// contract SC-ALPHA. A ledger that already has rows is left alone.
func Seed(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM item_ledger`).Scan(&n); err != nil {
		return fmt.Errorf("seed: count ledger: %w", err)
	}
	if n > 0 {
		return nil
	}

	statements := []string{
		`INSERT INTO item_ledger (lot_no, prod_order_no, item_no, description, quantity, unit, posting_date, process_type, location_code, lot_dest) VALUES
			('GREEN-100', '', 'GREEN-COL', 'Green beans, washed', 1000, 'KG', '2023-03-01', 'Purchase', 'WAREHOUSE', ''),
			('GREEN-200', '', 'GREEN-BRA', 'Green beans, natural', 800, 'KG', '2023-03-04', 'Purchase', 'WAREHOUSE', ''),
			('GREEN-100', 'PO-500', '', '', -600, 'KG', '2023-03-10', 'Consumption', '', ''),
			('GREEN-200', 'PO-500', '', '', -400, 'KG', '2023-03-10', 'Consumption', '', ''),
			('ROAST-300', 'PO-500', 'ROAST-ESP', 'Espresso roast', 850, 'KG', '2023-03-11', 'Output', '', ''),
			('ROAST-300', '', '', '', 850, 'KG', '2023-03-12', 'Transfer', '', 'BLEND-400'),
			('BLEND-400', 'PO-600', '', '', -850, 'KG', '2023-03-15', 'Consumption', '', ''),
			('PACK-500', 'PO-600', 'PACK-250G', 'Packed espresso 250g', 840, 'KG', '2023-03-16', 'Output', '', '')`,
		`INSERT INTO purchase_registry (lots, counterparty, certification, origin_country) VALUES
			('GREEN-100', 'Finca La Paz', 'Organic', 'Colombia'),
			('GREEN-200', 'Finca El Sol', 'Rainforest', 'Brazil')`,
		`INSERT INTO sale_registry (sale_contract, lot_number) VALUES ('SC-ALPHA', 'REG-1')`,
		`INSERT INTO sale_lots (contract_ref, sale_lot) VALUES ('REG-1', 'SALE-1')`,
		`INSERT INTO transform_lots (sale_lot, production_lot) VALUES ('SALE-1', 'TRANS-1')`,
		`INSERT INTO lot_bridge (origin_lot, dest_lot) VALUES ('TRANS-1', 'BRIDGE-1')`,
		`INSERT INTO production_results (lot_no, prod_order_no) VALUES ('BRIDGE-1', 'PO-500')`,
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("seed: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}
	return nil
}
