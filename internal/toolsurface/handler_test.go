package toolsurface

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forgeloop/forgeloop/internal/store"
	"github.com/forgeloop/forgeloop/pkg/models"
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

func TestDispatch_FeatureStatusCompleted(t *testing.T) {
	db := setupTestStore(t)
	db.Ingest([]store.IngestFeature{{ID: 1, Name: "A", Category: "cat-x"}})
	h := New(db, db, 1, 0)

	res := h.Dispatch("feature_status", json.RawMessage(`{"id":1,"status":"completed"}`))
	if res.IsError {
		t.Fatalf("Dispatch error: %s", res.Content)
	}

	f, _ := db.GetFeature(1)
	if f.Status != models.FeatureStatusCompleted {
		t.Errorf("status = %q, want completed", f.Status)
	}
}

func TestDispatch_FeatureStatusPendingIsRetry(t *testing.T) {
	db := setupTestStore(t)
	db.Ingest([]store.IngestFeature{{ID: 1, Name: "A", Category: "cat-x"}})
	h := New(db, db, 1, 0)

	res := h.Dispatch("feature_status", json.RawMessage(`{"id":1,"status":"pending"}`))
	if res.IsError {
		t.Fatalf("Dispatch error: %s", res.Content)
	}

	f, _ := db.GetFeature(1)
	if f.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", f.RetryCount)
	}
}

func TestDispatch_FeatureStatusAutoFailsAtLimit(t *testing.T) {
	db := setupTestStore(t)
	db.Ingest([]store.IngestFeature{{ID: 1, Name: "A", Category: "cat-x"}})
	h := New(db, db, 1, 0)

	for i := 0; i < DefaultMaxRetries; i++ {
		h.Dispatch("feature_status", json.RawMessage(`{"id":1,"status":"pending"}`))
	}

	f, _ := db.GetFeature(1)
	if f.Status != models.FeatureStatusFailed {
		t.Errorf("status = %q, want failed after %d retries", f.Status, DefaultMaxRetries)
	}
}

func TestDispatch_UnknownStatus(t *testing.T) {
	db := setupTestStore(t)
	db.Ingest([]store.IngestFeature{{ID: 1, Name: "A", Category: "cat-x"}})
	h := New(db, db, 1, 0)

	res := h.Dispatch("feature_status", json.RawMessage(`{"id":1,"status":"bogus"}`))
	if !res.IsError {
		t.Error("expected IsError for unknown status")
	}
}

func TestDispatch_FeatureStatusRejectsFailed(t *testing.T) {
	db := setupTestStore(t)
	db.Ingest([]store.IngestFeature{{ID: 1, Name: "A", Category: "cat-x"}})
	h := New(db, db, 1, 0)

	res := h.Dispatch("feature_status", json.RawMessage(`{"id":1,"status":"failed"}`))
	if !res.IsError {
		t.Error("expected IsError: failed is not an accepted feature_status input, only reachable via retry")
	}

	f, _ := db.GetFeature(1)
	if f.Status == models.FeatureStatusFailed {
		t.Error("status should not have changed to failed")
	}
}

func TestDispatch_NotesRoundTrip(t *testing.T) {
	db := setupTestStore(t)
	db.Ingest([]store.IngestFeature{{ID: 1, Name: "A", Category: "cat-x"}})
	h := New(db, db, 1, 0)

	h.Dispatch("feature_note", json.RawMessage(`{"id":1,"content":"needs a retry"}`))
	h.Dispatch("category_note", json.RawMessage(`{"category":"cat-x","content":"context for cat-x"}`))
	h.Dispatch("global_note", json.RawMessage(`{"content":"global context"}`))

	res := h.Dispatch("get_notes", json.RawMessage(`{"id":1}`))
	if !strings.Contains(res.Content, "needs a retry") {
		t.Errorf("get_notes(id=1) = %q, missing feature note", res.Content)
	}

	res = h.Dispatch("get_notes", json.RawMessage(`{}`))
	if !strings.Contains(res.Content, "global context") {
		t.Errorf("get_notes() = %q, missing global note", res.Content)
	}
}

func TestDispatch_GetStats(t *testing.T) {
	db := setupTestStore(t)
	db.Ingest([]store.IngestFeature{
		{ID: 1, Name: "A", Category: "cat-x"},
		{ID: 2, Name: "B", Category: "cat-x"},
	})
	db.SetStatus(1, models.FeatureStatusCompleted)
	h := New(db, db, 1, 0)

	res := h.Dispatch("get_stats", json.RawMessage(`{}`))
	if res.IsError {
		t.Fatalf("Dispatch error: %s", res.Content)
	}
	if !strings.Contains(res.Content, "total: 2") {
		t.Errorf("get_stats = %q, want total: 2", res.Content)
	}
}

func TestDispatch_ListFeaturesTruncates(t *testing.T) {
	db := setupTestStore(t)
	fs := make([]store.IngestFeature, 0, 15)
	for i := int64(1); i <= 15; i++ {
		fs = append(fs, store.IngestFeature{ID: i, Name: "f", Category: "cat-x"})
	}
	db.Ingest(fs)
	h := New(db, db, 1, 0)

	res := h.Dispatch("list_features", json.RawMessage(`{"limit":5}`))
	if !strings.Contains(res.Content, "10 more") {
		t.Errorf("list_features = %q, want truncation suffix", res.Content)
	}
}

func TestDispatch_UnknownTool(t *testing.T) {
	db := setupTestStore(t)
	h := New(db, db, 1, 0)

	res := h.Dispatch("Bash", json.RawMessage(`{}`))
	if !res.IsError {
		t.Error("expected IsError for a non-surface tool name")
	}
}
