package domain

import "context"

// TableSource supplies raw tabular rows. Implementations cover SQLite
// ledgers, DuckDB over file exports, and in-memory fixtures; the engine
// never depends on a specific storage technology.
//
// ReadTable returns an empty sequence and no error for a table the source
// does not have; absence is a normal, checked condition. Only transport
// or query failures are errors.
type TableSource interface {
	ListTables(ctx context.Context) ([]string, error)
	ReadTable(ctx context.Context, name string) ([]Row, error)
}

// ResultSink persists fully built trace output. The engine only produces
// plain serializable values; sinks own serialization and I/O.
type ResultSink interface {
	WriteTrace(ctx context.Context, res *TraceResult) error
	WriteContractReport(ctx context.Context, rep *ContractReport) error
}
