package models

import "time"

// FeatureStatus represents the current state of a feature.
type FeatureStatus string

const (
	// FeatureStatusPending indicates the feature has not been claimed by any session.
	FeatureStatusPending FeatureStatus = "pending"
	// FeatureStatusInProgress indicates a session currently holds the feature active.
	FeatureStatusInProgress FeatureStatus = "in_progress"
	// FeatureStatusCompleted indicates the feature was verified complete.
	FeatureStatusCompleted FeatureStatus = "completed"
	// FeatureStatusFailed indicates the feature exhausted its retry budget.
	FeatureStatusFailed FeatureStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s FeatureStatus) Valid() bool {
	switch s {
	case FeatureStatusPending, FeatureStatusInProgress, FeatureStatusCompleted, FeatureStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status is one the Batcher will never draw from again.
func (s FeatureStatus) Terminal() bool {
	return s == FeatureStatusCompleted || s == FeatureStatusFailed
}

// Feature is an atomic unit of work tracked by the Store.
type Feature struct {
	// ID is the globally unique identifier assigned at ingest and preserved forever.
	ID int64 `json:"id"`
	// Name is a short human name for the feature.
	Name string `json:"name"`
	// Description provides detailed information about the feature.
	Description string `json:"description,omitempty"`
	// Category is the slug grouping this feature with others of the same phase.
	// The Category Contiguity Invariant requires that every category's ids form
	// a contiguous range.
	Category string `json:"category"`
	// Steps is the ordered list of human-readable verification steps.
	Steps []string `json:"steps,omitempty"`
	// Status is the current lifecycle state.
	Status FeatureStatus `json:"status"`
	// RetryCount is the number of times feature_status(id, pending) has been
	// recorded against this feature. retry_count >= MaxRetries forces status
	// to failed.
	RetryCount int `json:"retry_count"`
	// CreatedAt is when the feature was ingested.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the feature's status last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteScope identifies which of the three mutually-exclusive scopes a Note belongs to.
type NoteScope string

const (
	NoteScopeFeature  NoteScope = "feature"
	NoteScopeCategory NoteScope = "category"
	NoteScopeGlobal   NoteScope = "global"
)

// Note is free-text context attached to exactly one scope: a feature, a
// category, or global.
type Note struct {
	ID int64 `json:"id"`
	// FeatureID is set only for feature-scoped notes.
	FeatureID *int64 `json:"feature_id,omitempty"`
	// Category is set only for category-scoped notes.
	Category string `json:"category,omitempty"`
	Content  string `json:"content"`
	// CreatedBySession is the session id that wrote this note.
	CreatedBySession int64     `json:"created_by_session"`
	CreatedAt        time.Time `json:"created_at"`
}

// Scope reports which scope this note was written against.
func (n Note) Scope() NoteScope {
	switch {
	case n.FeatureID != nil:
		return NoteScopeFeature
	case n.Category != "":
		return NoteScopeCategory
	default:
		return NoteScopeGlobal
	}
}

// SessionStatus is the lifecycle state of a Session row.
type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// Session represents one invocation of the agent subprocess, bracketed by
// open/close rows in the sessions relation.
type Session struct {
	ID                int64         `json:"id"`
	StartedAt         time.Time     `json:"started_at"`
	EndedAt           *time.Time    `json:"ended_at,omitempty"`
	Status            SessionStatus `json:"status"`
	FeaturesAttempted int           `json:"features_attempted"`
	FeaturesCompleted int           `json:"features_completed"`
	InputTokens       int64         `json:"input_tokens"`
	OutputTokens      int64         `json:"output_tokens"`
	Cost              float64       `json:"cost"`
	ErrorMessage      string        `json:"error_message,omitempty"`
}

// EndStats carries the values written by end_session.
type EndStats struct {
	Status            SessionStatus
	FeaturesAttempted int
	FeaturesCompleted int
	InputTokens       int64
	OutputTokens      int64
	Cost              float64
	ErrorMessage      string
}

// Batch is the ephemeral, unpersisted result of a Batcher selection: up to
// batcher.Size features, all from the same category, ascending by id.
type Batch struct {
	Category string
	Features []Feature
}

// IDs returns the batch members' ids in order.
func (b Batch) IDs() []int64 {
	ids := make([]int64, len(b.Features))
	for i, f := range b.Features {
		ids[i] = f.ID
	}
	return ids
}

// Empty reports whether the batch carries no work.
func (b Batch) Empty() bool {
	return len(b.Features) == 0
}

// KanbanStats holds feature counts by status, globally and per category.
type KanbanStats struct {
	Total      int                      `json:"total"`
	ByStatus   map[FeatureStatus]int    `json:"by_status"`
	ByCategory map[string]CategoryStats `json:"by_category"`
}

// CategoryStats holds the per-status breakdown for a single category.
type CategoryStats struct {
	Pending     int `json:"pending"`
	InProgress  int `json:"in_progress"`
	Completed   int `json:"completed"`
	Failed      int `json:"failed"`
}

// Total returns the number of features in this category.
func (c CategoryStats) Total() int {
	return c.Pending + c.InProgress + c.Completed + c.Failed
}
