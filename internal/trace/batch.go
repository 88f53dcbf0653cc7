package trace

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"beantrace/internal/domain"
)

// batchParallelism bounds concurrent traces in a batch.
const batchParallelism = 8

// TraceBatch traces each lot against the session's snapshot. Traces run in
// parallel but results keep the order of the requested lots. The optional
// progress callback fires after each completed trace with the running
// count; it is called from one goroutine at a time.
//
// The only error is context cancellation; individual traces cannot fail.
func (s *Session) TraceBatch(ctx context.Context, lots []string, maxDepth int, progress func(done, total int)) (*domain.BatchTraceResult, error) {
	results := make([]domain.TraceResult, len(lots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchParallelism)

	var mu sync.Mutex
	done := 0

	for i := range lots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = *s.Trace(lots[i], maxDepth)

			mu.Lock()
			done++
			if progress != nil {
				progress(done, len(lots))
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.BatchTraceResult{
		Requested: len(lots),
		Results:   results,
	}, nil
}
