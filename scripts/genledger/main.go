// Package main generates a synthetic roastery ledger for demos and load
// testing: green purchases, roast and pack orders, transfers, and sale
// contract chains, at whatever scale the flags ask for.
//
// Usage:
//
//	go run . -out ../../beantrace.sqlite
//	go run . -out big.sqlite -green 500 -orders 300 -contracts 40 -seed 7
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

var (
	outFlag       = flag.String("out", "beantrace.sqlite", "output SQLite file (must not exist)")
	greenFlag     = flag.Int("green", 40, "number of green coffee lots")
	ordersFlag    = flag.Int("orders", 25, "number of roast production orders")
	contractsFlag = flag.Int("contracts", 5, "number of sale contracts")
	seedFlag      = flag.Int64("seed", 1, "random seed")
)

var schema = []string{
	`CREATE TABLE item_ledger (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		lot_no        TEXT NOT NULL,
		prod_order_no TEXT NOT NULL DEFAULT '',
		item_no       TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '',
		quantity      REAL NOT NULL DEFAULT 0,
		unit          TEXT NOT NULL DEFAULT '',
		posting_date  TEXT NOT NULL DEFAULT '',
		process_type  TEXT NOT NULL DEFAULT '',
		location_code TEXT NOT NULL DEFAULT '',
		counterparty  TEXT NOT NULL DEFAULT '',
		certification TEXT NOT NULL DEFAULT '',
		lot_dest      TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX idx_item_ledger_lot_no ON item_ledger (lot_no)`,
	`CREATE TABLE purchase_registry (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		lots           TEXT NOT NULL,
		counterparty   TEXT NOT NULL DEFAULT '',
		certification  TEXT NOT NULL DEFAULT '',
		description    TEXT NOT NULL DEFAULT '',
		origin_country TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE sale_registry (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_contract TEXT NOT NULL,
		lot_number    TEXT NOT NULL
	)`,
	`CREATE TABLE sale_lots (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		contract_ref TEXT NOT NULL,
		sale_lot     TEXT NOT NULL
	)`,
	`CREATE TABLE transform_lots (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_lot       TEXT NOT NULL,
		production_lot TEXT NOT NULL
	)`,
	`CREATE TABLE lot_bridge (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		origin_lot TEXT NOT NULL,
		dest_lot   TEXT NOT NULL
	)`,
	`CREATE TABLE production_results (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		lot_no        TEXT NOT NULL,
		prod_order_no TEXT NOT NULL
	)`,
}

var vendors = []struct {
	name    string
	cert    string
	country string
	item    string
	desc    string
}{
	{"Finca La Paz", "Organic", "Colombia", "GREEN-COL", "Green beans, washed"},
	{"Finca El Sol", "Rainforest", "Brazil", "GREEN-BRA", "Green beans, natural"},
	{"Kerinci Cooperative", "Fairtrade", "Indonesia", "GREEN-IDN", "Green beans, wet-hulled"},
	{"Sidamo Union", "Organic", "Ethiopia", "GREEN-ETH", "Green beans, natural"},
	{"Tarrazu Estate", "", "Costa Rica", "GREEN-CRI", "Green beans, honey"},
}

func main() {
	flag.Parse()

	if _, err := os.Stat(*outFlag); err == nil {
		log.Fatalf("%s already exists; refusing to overwrite", *outFlag)
	}
	if *greenFlag < 1 || *ordersFlag < 1 || *contractsFlag < 0 {
		log.Fatal("need at least one green lot and one order")
	}

	db, err := sql.Open("sqlite3", *outFlag)
	if err != nil {
		log.Fatalf("open %s: %v", *outFlag, err)
	}
	defer func() { _ = db.Close() }()

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("create schema: %v", err)
		}
	}

	rng := rand.New(rand.NewSource(*seedFlag))
	g := &generator{rng: rng}

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("begin: %v", err)
	}
	if err := g.run(tx); err != nil {
		_ = tx.Rollback()
		log.Fatalf("generate: %v", err)
	}
	if err := tx.Commit(); err != nil {
		log.Fatalf("commit: %v", err)
	}

	log.Printf("wrote %s: %d ledger rows, %d green lots, %d roast orders, %d contracts",
		*outFlag, g.rows, *greenFlag, *ordersFlag, *contractsFlag)
}

type generator struct {
	rng  *rand.Rand
	rows int

	greenLots []greenLot
	orders    []string
}

type greenLot struct {
	no        string
	remaining float64
	vendor    int
}

func (g *generator) run(tx *sql.Tx) error {
	if err := g.greens(tx); err != nil {
		return err
	}
	if err := g.roasts(tx); err != nil {
		return err
	}
	return g.contracts(tx)
}

// greens inserts one Purchase row and one purchase_registry row per
// green lot.
func (g *generator) greens(tx *sql.Tx) error {
	for i := 0; i < *greenFlag; i++ {
		v := g.rng.Intn(len(vendors))
		lot := greenLot{
			no:        fmt.Sprintf("GREEN-%04d", 1000+i),
			remaining: float64(600 + g.rng.Intn(1200)),
			vendor:    v,
		}
		g.greenLots = append(g.greenLots, lot)

		if err := g.ledger(tx, lot.no, "", vendors[v].item, vendors[v].desc,
			lot.remaining, g.date(i), "Purchase", "WAREHOUSE", ""); err != nil {
			return err
		}
		_, err := tx.Exec(
			`INSERT INTO purchase_registry (lots, counterparty, certification, origin_country) VALUES (?, ?, ?, ?)`,
			lot.no, vendors[v].name, vendors[v].cert, vendors[v].country)
		if err != nil {
			return fmt.Errorf("purchase registry %s: %w", lot.no, err)
		}
	}
	return nil
}

// roasts inserts production orders: each consumes up to three green
// lots and outputs a roast lot. Every third roast transfers into a
// blend lot that a packing order consumes.
func (g *generator) roasts(tx *sql.Tx) error {
	for i := 0; i < *ordersFlag; i++ {
		order := fmt.Sprintf("PO-%04d", 5000+i)
		roast := fmt.Sprintf("ROAST-%04d", 7000+i)
		g.orders = append(g.orders, order)

		inputs := 1 + g.rng.Intn(3)
		var consumed float64
		for j := 0; j < inputs; j++ {
			lot := &g.greenLots[g.rng.Intn(len(g.greenLots))]
			qty := float64(100 + g.rng.Intn(300))
			if qty > lot.remaining {
				qty = lot.remaining
			}
			if qty == 0 {
				continue
			}
			lot.remaining -= qty
			consumed += qty
			if err := g.ledger(tx, lot.no, order, "", "",
				-qty, g.date(i), "Consumption", "", ""); err != nil {
				return err
			}
		}
		if consumed == 0 {
			// Every sampled lot was exhausted; fall back to a fresh
			// consumption so the order is never empty.
			lot := g.greenLots[g.rng.Intn(len(g.greenLots))]
			consumed = 50
			if err := g.ledger(tx, lot.no, order, "", "",
				-consumed, g.date(i), "Consumption", "", ""); err != nil {
				return err
			}
		}

		output := consumed * 0.85
		if err := g.ledger(tx, roast, order, "ROAST-ESP", "Espresso roast",
			output, g.date(i), "Output", "", ""); err != nil {
			return err
		}

		if i%3 != 0 {
			continue
		}
		blend := fmt.Sprintf("BLEND-%04d", 8000+i)
		packOrder := fmt.Sprintf("PO-%04d", 6000+i)
		pack := fmt.Sprintf("PACK-%04d", 9000+i)
		if err := g.ledger(tx, roast, "", "", "", output, g.date(i), "Transfer", "", blend); err != nil {
			return err
		}
		if err := g.ledger(tx, blend, packOrder, "", "", -output, g.date(i), "Consumption", "", ""); err != nil {
			return err
		}
		if err := g.ledger(tx, pack, packOrder, "PACK-250G", "Packed espresso 250g",
			output-10, g.date(i), "Output", "", ""); err != nil {
			return err
		}
	}
	return nil
}

// contracts inserts the sale bookkeeping chain for each contract,
// ending at a random production order.
func (g *generator) contracts(tx *sql.Tx) error {
	for i := 0; i < *contractsFlag; i++ {
		contract := fmt.Sprintf("SC-%03d", 100+i)
		reg := fmt.Sprintf("REG-%03d", 100+i)
		sale := fmt.Sprintf("SALE-%03d", 100+i)
		trans := fmt.Sprintf("TRANS-%03d", 100+i)
		bridge := fmt.Sprintf("BRIDGE-%03d", 100+i)
		order := g.orders[g.rng.Intn(len(g.orders))]

		steps := []struct {
			q    string
			a, b string
		}{
			{`INSERT INTO sale_registry (sale_contract, lot_number) VALUES (?, ?)`, contract, reg},
			{`INSERT INTO sale_lots (contract_ref, sale_lot) VALUES (?, ?)`, reg, sale},
			{`INSERT INTO transform_lots (sale_lot, production_lot) VALUES (?, ?)`, sale, trans},
			{`INSERT INTO lot_bridge (origin_lot, dest_lot) VALUES (?, ?)`, trans, bridge},
			{`INSERT INTO production_results (lot_no, prod_order_no) VALUES (?, ?)`, bridge, order},
		}
		for _, s := range steps {
			if _, err := tx.Exec(s.q, s.a, s.b); err != nil {
				return fmt.Errorf("contract %s: %w", contract, err)
			}
		}
	}
	return nil
}

func (g *generator) ledger(tx *sql.Tx, lot, order, item, desc string, qty float64, date, process, location, dest string) error {
	_, err := tx.Exec(
		`INSERT INTO item_ledger (lot_no, prod_order_no, item_no, description, quantity, unit, posting_date, process_type, location_code, lot_dest)
		 VALUES (?, ?, ?, ?, ?, 'KG', ?, ?, ?, ?)`,
		lot, order, item, desc, qty, date, process, location, dest)
	if err != nil {
		return fmt.Errorf("ledger row %s: %w", lot, err)
	}
	g.rows++
	return nil
}

// date spreads posting dates over 2023 so traces show a plausible
// timeline.
func (g *generator) date(i int) string {
	month := 1 + i%12
	day := 1 + g.rng.Intn(28)
	return fmt.Sprintf("2023-%02d-%02d", month, day)
}
