// Package trace implements the bidirectional lineage traversal over an
// index snapshot: sources a lot was made from, destinations it went into,
// with cycle and depth protection.
package trace

import (
	"sync"

	"beantrace/internal/domain"
	"beantrace/internal/index"
)

// DefaultMaxDepth bounds a trace when the caller does not pick a depth.
const DefaultMaxDepth = 10

// Session runs traces against one immutable snapshot and memoizes the
// per-lot views derived from it. Sessions are safe for concurrent use; a
// reindex produces a new snapshot and therefore a new session, which is
// how the caches are invalidated.
type Session struct {
	snap *index.Snapshot

	mu       sync.RWMutex
	profiles map[string]*lotProfile
}

// lotProfile is the derived per-lot view the traversal branches on:
// records grouped by process type, the distinct types in record order, and
// whether the lot has a purchase origin.
type lotProfile struct {
	records  []domain.LotRecord
	byType   map[domain.ProcessType][]domain.LotRecord
	types    []domain.ProcessType
	isOrigin bool
}

// NewSession creates a tracing session over a built snapshot.
func NewSession(snap *index.Snapshot) *Session {
	return &Session{
		snap:     snap,
		profiles: make(map[string]*lotProfile),
	}
}

// Snapshot returns the index snapshot the session reads from.
func (s *Session) Snapshot() *index.Snapshot { return s.snap }

// profile returns the memoized derived view for a folded lot key.
func (s *Session) profile(key string) *lotProfile {
	s.mu.RLock()
	p, ok := s.profiles[key]
	s.mu.RUnlock()
	if ok {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[key]; ok {
		return p
	}

	records := s.snap.Lot(key)
	p = &lotProfile{
		records: records,
		byType:  make(map[domain.ProcessType][]domain.LotRecord),
	}
	for _, rec := range records {
		if _, seen := p.byType[rec.ProcessType]; !seen {
			p.types = append(p.types, rec.ProcessType)
		}
		p.byType[rec.ProcessType] = append(p.byType[rec.ProcessType], rec)
		if rec.ProcessType == domain.ProcessPurchase {
			p.isOrigin = true
		}
	}
	s.profiles[key] = p
	return p
}
