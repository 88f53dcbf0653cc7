package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// SaleContractMap maps a sale contract id to the consumption lots its
// material ultimately comprises. Contract ids keep insertion order, each
// contract's lot list keeps first-appearance order, and duplicate lots per
// contract are suppressed.
type SaleContractMap struct {
	order []string
	lots  map[string][]string
	seen  map[string]map[string]bool
}

// NewSaleContractMap returns an empty SaleContractMap.
func NewSaleContractMap() *SaleContractMap {
	return &SaleContractMap{
		lots: make(map[string][]string),
		seen: make(map[string]map[string]bool),
	}
}

// Add records lot under contract. Repeated additions of the same pair are
// no-ops; first appearance wins the position.
func (m *SaleContractMap) Add(contract, lot string) {
	if contract == "" || lot == "" {
		return
	}
	s, ok := m.seen[contract]
	if !ok {
		s = make(map[string]bool)
		m.seen[contract] = s
		m.order = append(m.order, contract)
	}
	if s[lot] {
		return
	}
	s[lot] = true
	m.lots[contract] = append(m.lots[contract], lot)
}

// Contracts returns the contract ids in insertion order.
func (m *SaleContractMap) Contracts() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Lots returns the consumption lots for contract and whether it is present.
func (m *SaleContractMap) Lots(contract string) ([]string, bool) {
	lots, ok := m.lots[contract]
	if !ok {
		return nil, false
	}
	out := make([]string, len(lots))
	copy(out, lots)
	return out, true
}

// Len returns the number of contracts.
func (m *SaleContractMap) Len() int { return len(m.order) }

// MarshalJSON renders the map as a JSON object preserving insertion order.
func (m *SaleContractMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m.lots[c])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ContractReport is the full export envelope for one sale contract: the
// resolved consumption lots plus a lineage trace per lot and a summary.
type ContractReport struct {
	SaleContract    string        `json:"sale_contract"`
	ExportID        string        `json:"export_id"`
	TraceTimestamp  time.Time     `json:"trace_timestamp"`
	Summary         ReportSummary `json:"summary"`
	ConsumptionLots []string      `json:"consumption_lots"`
	LineageTraces   []TraceResult `json:"lineage_traces"`
}

// ReportSummary aggregates the traces in a ContractReport.
type ReportSummary struct {
	ConsumptionLotsFound   int     `json:"consumption_lots_found"`
	TotalRelatedLotsTraced int     `json:"total_related_lots_traced"`
	AverageDepth           float64 `json:"average_depth"`
	MaxDepthUsed           int     `json:"max_depth_used"`
}
