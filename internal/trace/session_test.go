package trace

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"beantrace/internal/domain"
	"beantrace/internal/testutil"
)

func TestSession_ConcurrentTraces(t *testing.T) {
	s := sessionOver(testutil.FixtureTables()[domain.TableLedger])
	want := *s.Trace("ROAST-300", 10)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := s.Trace("ROAST-300", 10)
			assert.Equal(t, want, *got)
		}()
	}
	wg.Wait()
}

func TestSession_SnapshotAccessor(t *testing.T) {
	s := sessionOver(testutil.FixtureTables()[domain.TableLedger])

	assert.Equal(t, 8, s.Snapshot().Len())
}
