// Package sink persists finished trace output. The tracing engine hands
// sinks plain serializable values; sinks own encoding and file I/O.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"beantrace/internal/domain"
)

// JSONSink writes pretty-printed JSON documents under a directory, one
// file per result. Filenames derive from the traced lot or contract id.
type JSONSink struct {
	dir string
}

var _ domain.ResultSink = (*JSONSink)(nil)

// NewJSONSink returns a sink rooted at dir. The directory is created on
// first write.
func NewJSONSink(dir string) *JSONSink {
	return &JSONSink{dir: dir}
}

// WriteTrace persists one trace result as trace_<lot>.json.
func (s *JSONSink) WriteTrace(_ context.Context, res *domain.TraceResult) error {
	return s.write(fmt.Sprintf("trace_%s.json", fileSlug(res.QueriedLot)), res)
}

// WriteContractReport persists one report envelope as report_<contract>.json.
func (s *JSONSink) WriteContractReport(_ context.Context, rep *domain.ContractReport) error {
	return s.write(fmt.Sprintf("report_%s.json", fileSlug(rep.SaleContract)), rep)
}

func (s *JSONSink) write(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("create sink dir: %w", err)
	}
	data, err := marshal(v)
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// WriteFile encodes v pretty-printed into a single caller-named file.
func WriteFile(path string, v any) error {
	data, err := marshal(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Encode streams v pretty-printed to w, trailing newline included.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return append(data, '\n'), nil
}

// fileSlug folds an id into a safe filename fragment.
func fileSlug(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "unnamed"
	}
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
