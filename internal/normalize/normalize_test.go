package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beantrace/internal/domain"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "L-001", Key("  l-001 "))
	assert.Equal(t, "PO123", Key("po123"))
	assert.Equal(t, "", Key("   "))
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "Lot-1", Display("  Lot-1  "))
	assert.Equal(t, "", Display(""))
}

func TestFloat64(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   float64
		wantOK bool
	}{
		{name: "float64", in: 42.5, want: 42.5, wantOK: true},
		{name: "int64", in: int64(7), want: 7, wantOK: true},
		{name: "int", in: 3, want: 3, wantOK: true},
		{name: "numeric string", in: "42.5", want: 42.5, wantOK: true},
		{name: "padded string", in: "  12 ", want: 12, wantOK: true},
		{name: "bytes", in: []byte("7"), want: 7, wantOK: true},
		{name: "negative", in: "-2.25", want: -2.25, wantOK: true},
		{name: "nil", in: nil, want: 0, wantOK: false},
		{name: "empty string", in: "", want: 0, wantOK: false},
		{name: "text", in: "abc", want: 0, wantOK: false},
		{name: "bool", in: true, want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Float64(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "", String(nil))
	assert.Equal(t, "L1", String("L1"))
	assert.Equal(t, "L1", String([]byte("L1")))
	assert.Equal(t, "42", String(float64(42)))
	assert.Equal(t, "42.5", String(42.5))
	assert.Equal(t, "7", String(int64(7)))
	assert.Equal(t, "true", String(true))
}

func TestPostingDate(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "time value", in: time.Date(2023, 5, 1, 14, 30, 0, 0, time.UTC), want: "2023-05-01"},
		{name: "iso date", in: "2023-05-01", want: "2023-05-01"},
		{name: "iso timestamp", in: "2023-05-01T00:00:00Z", want: "2023-05-01"},
		{name: "sql timestamp", in: "2023-05-01 14:00:00", want: "2023-05-01"},
		{name: "padded", in: "  2023-05-01  ", want: "2023-05-01"},
		{name: "spreadsheet serial", in: float64(45000), want: "2023-03-15"},
		{name: "serial as int", in: int64(44927), want: "2023-01-01"},
		{name: "small number is not a date", in: float64(42), want: "42"},
		{name: "unrecognized string", in: "05/01/2023", want: "05/01/2023"},
		{name: "nil", in: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PostingDate(tt.in))
		})
	}
}

func TestFromRow(t *testing.T) {
	row := domain.Row{
		"lot_no":        "  lot-001 ",
		"prod_order_no": "PO-9",
		"item_no":       "COFFEE-GR",
		"description":   "Green beans",
		"quantity":      int64(1500),
		"unit":          "KG",
		"posting_date":  "2023-05-01T00:00:00Z",
		"process_type":  "output",
		"location_code": "ROAST",
		"counterparty":  "",
		"lot_dest":      "LOT-002",
		"pallet_no":     "PAL-7",
	}

	rec, qtyOK := FromRow(row)

	assert.True(t, qtyOK)
	assert.Equal(t, "lot-001", rec.LotNo)
	assert.Equal(t, "LOT-001", rec.LotKey)
	assert.Equal(t, "PO-9", rec.ProdOrderNo)
	assert.Equal(t, "PO-9", rec.ProdOrderKey)
	assert.Equal(t, 1500.0, rec.Quantity)
	assert.Equal(t, "2023-05-01", rec.PostingDate)
	assert.Equal(t, domain.ProcessOutput, rec.ProcessType)
	assert.Equal(t, "LOT-002", rec.LotDest)
	assert.Equal(t, "LOT-002", rec.LotDestKey)
	assert.Equal(t, map[string]string{"pallet_no": "PAL-7"}, rec.Extra)
}

func TestFromRow_QuantityCoerced(t *testing.T) {
	rec, qtyOK := FromRow(domain.Row{"lot_no": "L1", "quantity": "n/a"})

	assert.False(t, qtyOK)
	assert.Equal(t, 0.0, rec.Quantity)
}

func TestRecords(t *testing.T) {
	rows := []domain.Row{
		{"lot_no": "L1", "quantity": 10.0, "process_type": "Purchase"},
		{"lot_no": "", "quantity": 5.0},
		{"lot_no": "L2", "quantity": "bad", "process_type": "Output"},
		{"lot_no": "   ", "quantity": 1.0},
		{"lot_no": "L3", "quantity": 2.5, "process_type": "Consumption"},
	}

	records, report := Records(rows)

	require.Len(t, records, 3)
	assert.Equal(t, "L1", records[0].LotNo)
	assert.Equal(t, "L2", records[1].LotNo)
	assert.Equal(t, "L3", records[2].LotNo)
	assert.Equal(t, 0.0, records[1].Quantity)

	assert.Equal(t, 5, report.Rows)
	assert.Equal(t, 2, report.Dropped)
	assert.Equal(t, 1, report.QuantityCoercions)
}
