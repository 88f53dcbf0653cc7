package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"beantrace/internal/domain"
)

// TableMapping binds one canonical table to its physical counterpart in
// an upstream export. Columns maps canonical field names to the physical
// headers, e.g. lot_no to "Lot No_".
type TableMapping struct {
	Physical string            `yaml:"physical"`
	Columns  map[string]string `yaml:"columns"`
}

// Mapping translates between the canonical table and column names the
// engine understands and the physical names an upstream system exports.
// Unmapped names pass through unchanged, so the identity mapping works
// against a database that already uses canonical names.
type Mapping struct {
	Tables map[string]TableMapping `yaml:"tables"`

	physicalToTable map[string]string            // folded physical table -> canonical
	columnsToCanon  map[string]map[string]string // canonical table -> folded physical column -> canonical
}

// DefaultMapping returns the identity mapping.
func DefaultMapping() *Mapping {
	m := &Mapping{}
	m.index()
	return m
}

// LoadMapping reads a YAML mapping file. An empty path yields the
// identity mapping. Tables must be keyed by canonical name.
func LoadMapping(path string) (*Mapping, error) {
	if path == "" {
		return DefaultMapping(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, fmt.Errorf("read mapping %s: %w", path, err)
	}
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse mapping %s: %w", path, err)
	}

	known := canonicalTables()
	for name := range m.Tables {
		if !known[name] {
			return nil, fmt.Errorf("mapping %s: unknown table %q", path, name)
		}
	}
	m.index()
	return &m, nil
}

// PhysicalTable returns the physical name of a canonical table, or the
// canonical name itself when unmapped.
func (m *Mapping) PhysicalTable(canonical string) string {
	if tm, ok := m.Tables[canonical]; ok && tm.Physical != "" {
		return tm.Physical
	}
	return canonical
}

// CanonicalTable returns the canonical name of a physical table, or the
// physical name itself when unmapped.
func (m *Mapping) CanonicalTable(physical string) string {
	if canonical, ok := m.physicalToTable[foldName(physical)]; ok {
		return canonical
	}
	return physical
}

// PhysicalColumn returns the physical column for a canonical field of a
// table, or the field itself when unmapped.
func (m *Mapping) PhysicalColumn(table, field string) string {
	if tm, ok := m.Tables[table]; ok {
		if physical, ok := tm.Columns[field]; ok && physical != "" {
			return physical
		}
	}
	return field
}

// CanonicalRow renames the physical columns of a row to canonical field
// names. Physical header matching is case-insensitive; columns without a
// mapping keep their key.
func (m *Mapping) CanonicalRow(canonical string, row domain.Row) domain.Row {
	cols := m.columnsToCanon[canonical]
	if len(cols) == 0 {
		return row
	}
	out := make(domain.Row, len(row))
	for k, v := range row {
		if field, ok := cols[foldName(k)]; ok {
			out[field] = v
		} else {
			out[k] = v
		}
	}
	return out
}

func (m *Mapping) index() {
	m.physicalToTable = make(map[string]string, len(m.Tables))
	m.columnsToCanon = make(map[string]map[string]string, len(m.Tables))
	for name, tm := range m.Tables {
		if tm.Physical != "" {
			m.physicalToTable[foldName(tm.Physical)] = name
		}
		if len(tm.Columns) == 0 {
			continue
		}
		cols := make(map[string]string, len(tm.Columns))
		for field, physical := range tm.Columns {
			cols[foldName(physical)] = field
		}
		m.columnsToCanon[name] = cols
	}
}

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func canonicalTables() map[string]bool {
	known := map[string]bool{
		domain.TableLedger:           true,
		domain.TablePurchaseRegistry: true,
	}
	for _, t := range domain.AuxTables() {
		known[t] = true
	}
	return known
}
