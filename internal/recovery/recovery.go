// Package recovery brings the Store into a consistent state after an
// unclean shutdown.
package recovery

import (
	"log"
	"time"

	"github.com/forgeloop/forgeloop/internal/store"
)

// DefaultStaleAfter is the threshold past which an in_progress feature is
// considered abandoned even if no crash was detected, per spec.md §4.3.
// Used by New when staleAfter <= 0.
const DefaultStaleAfter = 2 * time.Hour

// Manager wraps a FeatureStore and performs the startup sweep.
type Manager struct {
	store      store.FeatureStore
	staleAfter time.Duration
}

// New creates a Manager over the given store. staleAfter <= 0 falls back to
// DefaultStaleAfter.
func New(fs store.FeatureStore, staleAfter time.Duration) *Manager {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Manager{store: fs, staleAfter: staleAfter}
}

// Result reports how many features each sweep step touched.
type Result struct {
	OrphansReset int64
	StaleReset   int64
}

// Run performs, in order: reset_orphans, then reset_stale. Neither step
// fails the run; both log their counts, and a step that errors logs the
// error and counts zero. The returned error is always nil.
//
// reset_stale never finds a row in the common single-process case: the
// preceding reset_orphans already cleared every in_progress feature
// unconditionally. It exists for the defensive case spec.md §4.3 calls
// out — an unexpected second live process still holding a feature
// in_progress at the time this process starts — where we'd rather release
// it than block forever.
func (m *Manager) Run() (Result, error) {
	orphans, err := m.store.ResetOrphans()
	if err != nil {
		log.Printf("[recovery] reset orphans: %v", err)
	} else {
		log.Printf("[recovery] reset %d orphaned in_progress feature(s)", orphans)
	}

	stale, err := m.store.ResetStale(m.staleAfter)
	if err != nil {
		log.Printf("[recovery] reset stale: %v", err)
	} else {
		log.Printf("[recovery] reset %d stale in_progress feature(s) (older than %s)", stale, m.staleAfter)
	}

	return Result{OrphansReset: orphans, StaleReset: stale}, nil
}
