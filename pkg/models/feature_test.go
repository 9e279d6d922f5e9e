package models

import (
	"testing"
	"time"
)

func TestFeatureStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status FeatureStatus
		want   bool
	}{
		{"pending is valid", FeatureStatusPending, true},
		{"in_progress is valid", FeatureStatusInProgress, true},
		{"completed is valid", FeatureStatusCompleted, true},
		{"failed is valid", FeatureStatusFailed, true},
		{"empty string is invalid", FeatureStatus(""), false},
		{"unknown status is invalid", FeatureStatus("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("FeatureStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestFeatureStatus_Terminal(t *testing.T) {
	tests := []struct {
		status FeatureStatus
		want   bool
	}{
		{FeatureStatusPending, false},
		{FeatureStatusInProgress, false},
		{FeatureStatusCompleted, true},
		{FeatureStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.want {
				t.Errorf("FeatureStatus(%q).Terminal() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestFeature_DefaultValues(t *testing.T) {
	f := Feature{}

	if f.ID != 0 {
		t.Errorf("Feature.ID default should be 0, got %d", f.ID)
	}
	if f.Status != "" {
		t.Errorf("Feature.Status default should be empty string, got %q", f.Status)
	}
	if f.Steps != nil {
		t.Errorf("Feature.Steps default should be nil, got %v", f.Steps)
	}
	if !f.CreatedAt.IsZero() {
		t.Errorf("Feature.CreatedAt default should be zero time, got %v", f.CreatedAt)
	}
}

func TestNote_Scope(t *testing.T) {
	fid := int64(7)

	tests := []struct {
		name string
		note Note
		want NoteScope
	}{
		{"feature scoped", Note{FeatureID: &fid}, NoteScopeFeature},
		{"category scoped", Note{Category: "cat-x"}, NoteScopeCategory},
		{"global", Note{}, NoteScopeGlobal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.note.Scope(); got != tt.want {
				t.Errorf("Note.Scope() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBatch_Empty(t *testing.T) {
	if !(Batch{}).Empty() {
		t.Error("zero-value Batch should be Empty")
	}
	b := Batch{Category: "cat-x", Features: []Feature{{ID: 1}}}
	if b.Empty() {
		t.Error("Batch with members should not be Empty")
	}
}

func TestBatch_IDs(t *testing.T) {
	b := Batch{Features: []Feature{{ID: 3}, {ID: 4}, {ID: 5}}}
	ids := b.IDs()
	want := []int64{3, 4, 5}
	if len(ids) != len(want) {
		t.Fatalf("IDs() length = %d, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}

func TestCategoryStats_Total(t *testing.T) {
	c := CategoryStats{Pending: 1, InProgress: 2, Completed: 3, Failed: 4}
	if got := c.Total(); got != 10 {
		t.Errorf("CategoryStats.Total() = %d, want 10", got)
	}
}

func TestSession_DefaultValues(t *testing.T) {
	s := Session{}

	if s.ID != 0 {
		t.Errorf("Session.ID default should be 0, got %d", s.ID)
	}
	if !s.StartedAt.IsZero() {
		t.Errorf("Session.StartedAt default should be zero time, got %v", s.StartedAt)
	}
	if s.EndedAt != nil {
		t.Errorf("Session.EndedAt default should be nil, got %v", s.EndedAt)
	}
	if s.Status != "" {
		t.Errorf("Session.Status default should be empty string, got %q", s.Status)
	}
}

func TestSession_Fields(t *testing.T) {
	now := time.Now()
	ended := now.Add(time.Hour)

	s := Session{
		ID:                1,
		StartedAt:         now,
		EndedAt:           &ended,
		Status:            SessionStatusCompleted,
		FeaturesAttempted: 3,
		FeaturesCompleted: 2,
		InputTokens:       1000,
		OutputTokens:      500,
		Cost:              0.05,
	}

	if s.Status != SessionStatusCompleted {
		t.Errorf("Session.Status = %q, want %q", s.Status, SessionStatusCompleted)
	}
	if s.FeaturesCompleted != 2 {
		t.Errorf("Session.FeaturesCompleted = %d, want 2", s.FeaturesCompleted)
	}
	if s.EndedAt == nil || !s.EndedAt.Equal(ended) {
		t.Errorf("Session.EndedAt = %v, want %v", s.EndedAt, ended)
	}
}
