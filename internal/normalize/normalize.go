// Package normalize converts raw source rows into ledger records using one
// shared set of string and value rules, so every comparison in the engine
// sees identifiers the same way.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"beantrace/internal/domain"
)

// Key folds an identifier for comparison: surrounding whitespace trimmed,
// case flattened. Every join and index lookup goes through this.
func Key(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Display trims an identifier for output while keeping its original casing.
func Display(s string) string {
	return strings.TrimSpace(s)
}

// Float64 coerces a raw cell to a float64. The second return is false when
// the value is absent or not numeric.
func Float64(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case []byte:
		return parseFloat(string(n))
	case string:
		return parseFloat(n)
	}
	return 0, false
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String renders a raw cell for display. Numeric cells drop a trailing
// ".0" so lot numbers that arrive as numbers read like identifiers.
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case int:
		return strconv.Itoa(s)
	case int32:
		return strconv.FormatInt(int64(s), 10)
	case int64:
		return strconv.FormatInt(s, 10)
	case uint32:
		return strconv.FormatUint(uint64(s), 10)
	case uint64:
		return strconv.FormatUint(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case json.Number:
		return s.String()
	case time.Time:
		return s.Format("2006-01-02")
	}
	return ""
}

// Spreadsheet day 0. Day 1 is 1900-01-01; the two-day offset absorbs the
// inherited 1900 leap-year bug.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Serial numbers below this are treated as plain numbers, not dates.
const minDateSerial = 20000 // 1954-10-03

// PostingDate renders a raw posting date cell as YYYY-MM-DD. Native
// timestamps are formatted, ISO strings with a time part are cut at the
// date, and spreadsheet serial numbers are resolved against the 1899-12-30
// epoch. Anything else passes through trimmed.
func PostingDate(v any) string {
	switch d := v.(type) {
	case time.Time:
		return d.Format("2006-01-02")
	case string:
		return postingDateString(d)
	case []byte:
		return postingDateString(string(d))
	}
	if serial, ok := Float64(v); ok {
		if serial >= minDateSerial && serial < 100000 {
			return serialEpoch.AddDate(0, 0, int(serial)).Format("2006-01-02")
		}
		return String(v)
	}
	return ""
}

func postingDateString(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 10 {
		head := s[:10]
		if _, err := time.Parse("2006-01-02", head); err == nil {
			return head
		}
	}
	return s
}

// Report counts what Records dropped or adjusted while normalizing.
type Report struct {
	Rows              int
	Dropped           int
	QuantityCoercions int
}

// FromRow builds a LotRecord from one canonical ledger row. The second
// return is false when the quantity cell had to be coerced to zero.
func FromRow(row domain.Row) (domain.LotRecord, bool) {
	qty, qtyOK := Float64(row["quantity"])

	rec := domain.LotRecord{
		LotNo:         Display(String(row["lot_no"])),
		ProdOrderNo:   Display(String(row["prod_order_no"])),
		ItemNo:        Display(String(row["item_no"])),
		Description:   Display(String(row["description"])),
		Quantity:      qty,
		Unit:          Display(String(row["unit"])),
		PostingDate:   PostingDate(row["posting_date"]),
		ProcessType:   domain.ParseProcessType(String(row["process_type"])),
		LocationCode:  Display(String(row["location_code"])),
		Counterparty:  Display(String(row["counterparty"])),
		Certification: Display(String(row["certification"])),
		LotDest:       Display(String(row["lot_dest"])),
	}
	rec.LotKey = Key(rec.LotNo)
	rec.ProdOrderKey = Key(rec.ProdOrderNo)
	rec.LotDestKey = Key(rec.LotDest)

	for col, val := range row {
		switch col {
		case "lot_no", "prod_order_no", "item_no", "description", "quantity",
			"unit", "posting_date", "process_type", "location_code",
			"counterparty", "certification", "lot_dest":
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[col] = String(val)
	}

	return rec, qtyOK
}

// Records normalizes a full ledger table. Rows without a lot number are
// dropped; everything else is kept, with unparseable quantities coerced to
// zero. Input order is preserved.
func Records(rows []domain.Row) ([]domain.LotRecord, Report) {
	report := Report{Rows: len(rows)}
	records := make([]domain.LotRecord, 0, len(rows))
	for _, row := range rows {
		rec, qtyOK := FromRow(row)
		if rec.LotKey == "" {
			report.Dropped++
			continue
		}
		if !qtyOK {
			report.QuantityCoercions++
		}
		records = append(records, rec)
	}
	return records, report
}
