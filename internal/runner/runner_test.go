package runner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/forgeloop/forgeloop/internal/agent"
	"github.com/forgeloop/forgeloop/internal/batcher"
	"github.com/forgeloop/forgeloop/internal/store"
)

func setupTestStore(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedFeatures(t *testing.T, db *store.DB, n int) {
	t.Helper()
	features := make([]store.IngestFeature, n)
	for i := 0; i < n; i++ {
		features[i] = store.IngestFeature{
			ID:       int64(i + 1),
			Name:     "feature",
			Category: "cat-a",
		}
	}
	if err := db.Ingest(features); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
}

// fakeInvoker runs its onStart callback and then emits a single successful
// result event. Tests that need features completed do so in onStart, by
// calling SetStatus directly against the store (simulating what the
// Control Tool Surface would do in response to tool-use events).
type fakeInvoker struct {
	events  chan agent.StreamEvent
	onStart func()
	waitErr error
}

func newFakeInvoker(onStart func()) *fakeInvoker {
	return &fakeInvoker{events: make(chan agent.StreamEvent, 16), onStart: onStart}
}

func (f *fakeInvoker) Start(prompt, workDir string) error { return f.StartWithOptions(prompt, workDir, nil) }
func (f *fakeInvoker) StartWithOptions(prompt, workDir string, opts *agent.StartOptions) error {
	f.onStart()
	f.events <- agent.StreamEvent{Type: agent.StreamEventResult, Result: &agent.ResultInfo{Subtype: "success", InputTokens: 10, OutputTokens: 20, CostUSD: 0.01}}
	close(f.events)
	return nil
}
func (f *fakeInvoker) Output() <-chan agent.StreamEvent { return f.events }
func (f *fakeInvoker) Wait() error                      { return f.waitErr }
func (f *fakeInvoker) Kill() error                      { return nil }
func (f *fakeInvoker) Stderr() string                   { return "" }
func (f *fakeInvoker) PID() int                         { return 0 }

var _ agent.Invoker = (*fakeInvoker)(nil)

func TestRunner_CompletesAllFeatures(t *testing.T) {
	db := setupTestStore(t)
	seedFeatures(t, db, 2)
	b := batcher.New(db)

	factory := func(ctx context.Context) agent.Invoker {
		return newFakeInvoker(func() {
			feats, _ := db.FeaturesByStatus("pending")
			for _, f := range feats {
				db.SetStatus(f.ID, "completed")
			}
		})
	}

	r := New(db, b, factory, Config{BreakerLimit: 3, MaxIters: 10})
	outcome, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome != OutcomeDone {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeDone)
	}

	stats, err := db.KanbanStats()
	if err != nil {
		t.Fatalf("KanbanStats: %v", err)
	}
	if stats.Total != 2 {
		t.Fatalf("total = %d, want 2", stats.Total)
	}
	if stats.ByStatus["completed"] != 2 {
		t.Errorf("completed = %d, want 2", stats.ByStatus["completed"])
	}
}

func TestRunner_BreakerTripsAfterConsecutiveFailures(t *testing.T) {
	db := setupTestStore(t)
	seedFeatures(t, db, 1)
	b := batcher.New(db)

	factory := func(ctx context.Context) agent.Invoker {
		inv := newFakeInvoker(func() {})
		inv.waitErr = context.Canceled
		return inv
	}

	r := New(db, b, factory, Config{BreakerLimit: 2, MaxIters: 10})
	outcome, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if outcome != OutcomeBreakerTrip {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeBreakerTrip)
	}
}

func TestRunner_EmptyFeatureSetTerminatesCleanly(t *testing.T) {
	db := setupTestStore(t)
	b := batcher.New(db)

	factory := func(ctx context.Context) agent.Invoker {
		t.Fatal("factory should not be called with no incomplete work")
		return nil
	}

	r := New(db, b, factory, Config{BreakerLimit: 3})
	outcome, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome != OutcomeDone {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeDone)
	}
}
