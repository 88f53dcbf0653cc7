// Package resolve walks the auxiliary sale bookkeeping tables to translate
// external sale contract identifiers into the internal consumption lots
// whose material they comprise.
package resolve

import (
	"context"
	"fmt"

	"beantrace/internal/domain"
	"beantrace/internal/index"
	"beantrace/internal/normalize"
)

// Tables holds the raw rows of the five join-chain tables. A missing table
// is an empty slice; the chain then produces no matches through it.
type Tables struct {
	SaleRegistry      []domain.Row
	SaleLots          []domain.Row
	TransformLots     []domain.Row
	LotBridge         []domain.Row
	ProductionResults []domain.Row
}

// LoadTables reads the join-chain tables from a source. Absent tables come
// back empty by the TableSource contract, so only transport failures error.
func LoadTables(ctx context.Context, src domain.TableSource) (Tables, error) {
	var t Tables
	for _, name := range domain.AuxTables() {
		rows, err := src.ReadTable(ctx, name)
		if err != nil {
			return Tables{}, fmt.Errorf("read %s: %w", name, err)
		}
		switch name {
		case domain.TableSaleRegistry:
			t.SaleRegistry = rows
		case domain.TableSaleLots:
			t.SaleLots = rows
		case domain.TableTransformLots:
			t.TransformLots = rows
		case domain.TableLotBridge:
			t.LotBridge = rows
		case domain.TableProductionResults:
			t.ProductionResults = rows
		}
	}
	return t, nil
}

// carried is one in-flight chain element: the sale contract picked up at
// the registry plus the folded key the next stage joins on.
type carried struct {
	saleContract string
	key          string
}

// stageIndex builds the hash index for one right-hand table: folded join
// key to the stage's output values, in row order. Rows with an empty key
// or output are unusable and skipped.
func stageIndex(rows []domain.Row, keyCol, outCol string) map[string][]string {
	idx := make(map[string][]string, len(rows))
	for _, row := range rows {
		key := normalize.Key(normalize.String(row[keyCol]))
		out := normalize.Display(normalize.String(row[outCol]))
		if key == "" || out == "" {
			continue
		}
		idx[key] = append(idx[key], out)
	}
	return idx
}

// joinStage advances the chain one stage: every input element fans out to
// one output element per index hit, keeping the carried sale contract.
// Inputs with no hit drop out.
func joinStage(in []carried, idx map[string][]string) []carried {
	var out []carried
	for _, item := range in {
		for _, next := range idx[item.key] {
			out = append(out, carried{saleContract: item.saleContract, key: normalize.Key(next)})
		}
	}
	return out
}

// SaleContracts runs the five-stage join chain and groups the resulting
// consumption lots by sale contract.
//
// Stages, each an equi-join on one folded key:
//
//	sale_registry.lot_number   -> sale_lots.contract_ref     => sale_lot
//	sale_lot                   -> transform_lots.sale_lot    => production_lot
//	production_lot             -> lot_bridge.origin_lot      => dest_lot
//	dest_lot                   -> production_results.lot_no  => prod_order_no
//	prod_order_no              -> ledger Consumption rows    => consumption lot
//
// The sale contract read off each registry row rides along unchanged. Every
// stage indexes its right-hand table before joining; the result is the same
// multiset of matches a nested scan would produce. Empty tables simply
// yield no matches.
func SaleContracts(tables Tables, snap *index.Snapshot) *domain.SaleContractMap {
	chain := make([]carried, 0, len(tables.SaleRegistry))
	for _, row := range tables.SaleRegistry {
		contract := normalize.Display(normalize.String(row["sale_contract"]))
		lotNumber := normalize.Key(normalize.String(row["lot_number"]))
		if contract == "" || lotNumber == "" {
			continue
		}
		chain = append(chain, carried{saleContract: contract, key: lotNumber})
	}

	chain = joinStage(chain, stageIndex(tables.SaleLots, "contract_ref", "sale_lot"))
	chain = joinStage(chain, stageIndex(tables.TransformLots, "sale_lot", "production_lot"))
	chain = joinStage(chain, stageIndex(tables.LotBridge, "origin_lot", "dest_lot"))
	chain = joinStage(chain, stageIndex(tables.ProductionResults, "lot_no", "prod_order_no"))

	contracts := domain.NewSaleContractMap()
	for _, item := range chain {
		for _, rec := range snap.ProductionOrder(item.key) {
			if rec.ProcessType != domain.ProcessConsumption {
				continue
			}
			contracts.Add(item.saleContract, rec.LotNo)
		}
	}
	return contracts
}
