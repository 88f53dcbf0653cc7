// Package testutil provides shared mock implementations of domain interfaces
// for use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"sort"

	"beantrace/internal/domain"
)

// === Table Source Mock ===

// MockSource implements domain.TableSource over in-memory rows. Tables not
// present in the map read back empty with no error, matching the interface
// contract for absent tables.
type MockSource struct {
	Tables      map[string][]domain.Row
	ListFn      func(ctx context.Context) ([]string, error)
	ReadTableFn func(ctx context.Context, name string) ([]domain.Row, error)
	Reads       []string // table names read, in order, for assertions
}

// ListTables implements the interface method for testing.
func (m *MockSource) ListTables(ctx context.Context) ([]string, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	names := make([]string, 0, len(m.Tables))
	for name := range m.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ReadTable implements the interface method for testing.
func (m *MockSource) ReadTable(ctx context.Context, name string) ([]domain.Row, error) {
	m.Reads = append(m.Reads, name)
	if m.ReadTableFn != nil {
		return m.ReadTableFn(ctx, name)
	}
	return m.Tables[name], nil
}

var _ domain.TableSource = (*MockSource)(nil)

// === Result Sink Mock ===

// MockSink implements domain.ResultSink, collecting everything written.
type MockSink struct {
	WriteTraceFn  func(ctx context.Context, result *domain.TraceResult) error
	WriteReportFn func(ctx context.Context, report *domain.ContractReport) error
	Traces        []*domain.TraceResult
	Reports       []*domain.ContractReport
}

// WriteTrace implements the interface method for testing.
func (m *MockSink) WriteTrace(ctx context.Context, result *domain.TraceResult) error {
	if m.WriteTraceFn != nil {
		if err := m.WriteTraceFn(ctx, result); err != nil {
			return err
		}
	}
	m.Traces = append(m.Traces, result)
	return nil
}

// WriteContractReport implements the interface method for testing.
func (m *MockSink) WriteContractReport(ctx context.Context, report *domain.ContractReport) error {
	if m.WriteReportFn != nil {
		if err := m.WriteReportFn(ctx, report); err != nil {
			return err
		}
	}
	m.Reports = append(m.Reports, report)
	return nil
}

var _ domain.ResultSink = (*MockSink)(nil)
