package resolve

import (
	"beantrace/internal/domain"
	"beantrace/internal/normalize"
)

// EnrichFromRegistry merges purchase registry rows into ledger records
// matched by lot number, the way the source spreadsheets cross-reference
// them. Counterparty, certification and description fill in only when the
// ledger left them blank; other registry columns land in Extra without
// displacing existing entries. When the registry lists a lot twice the
// last row wins. Returns the number of records enriched.
func EnrichFromRegistry(records []domain.LotRecord, registry []domain.Row) int {
	if len(registry) == 0 || len(records) == 0 {
		return 0
	}

	lookup := make(map[string]domain.Row, len(registry))
	for _, row := range registry {
		key := normalize.Key(normalize.String(row["lots"]))
		if key == "" {
			continue
		}
		lookup[key] = row
	}

	matched := 0
	for i := range records {
		row, ok := lookup[records[i].LotKey]
		if !ok {
			continue
		}
		matched++

		if records[i].Counterparty == "" {
			records[i].Counterparty = normalize.Display(normalize.String(row["counterparty"]))
		}
		if records[i].Certification == "" {
			records[i].Certification = normalize.Display(normalize.String(row["certification"]))
		}
		if records[i].Description == "" {
			records[i].Description = normalize.Display(normalize.String(row["description"]))
		}

		for col, val := range row {
			switch col {
			case "lots", "counterparty", "certification", "description":
				continue
			}
			if records[i].Extra == nil {
				records[i].Extra = make(map[string]string)
			}
			if _, exists := records[i].Extra[col]; !exists {
				records[i].Extra[col] = normalize.String(val)
			}
		}
	}
	return matched
}
