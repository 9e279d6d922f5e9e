// Package batcher selects the next unit of work for a session.
package batcher

import (
	"github.com/forgeloop/forgeloop/internal/store"
	"github.com/forgeloop/forgeloop/pkg/models"
)

// Size is the maximum number of features drawn into a single Batch: small
// enough to keep one agent invocation within a useful context window,
// large enough to amortize per-session setup across related work.
const Size = 3

// Batcher selects the next Batch per spec.md §4.4: at most Size features,
// all from the numerically lowest category with pending work, ascending
// by id.
type Batcher struct {
	store store.FeatureStore
}

// New creates a Batcher over the given store.
func New(fs store.FeatureStore) *Batcher {
	return &Batcher{store: fs}
}

// Next returns the next batch. A zero-length batch means no pending work
// remains in any category.
func (b *Batcher) Next() (models.Batch, error) {
	return b.store.NextBatch(Size)
}
