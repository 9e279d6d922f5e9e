package store

import (
	"time"

	"github.com/forgeloop/forgeloop/pkg/models"
)

// FeatureStore is the subset of Store operations the Batcher, Validator,
// and Recovery depend on.
type FeatureStore interface {
	Ingest(features []IngestFeature) error
	GetFeature(id int64) (*models.Feature, error)
	AllFeatures() ([]models.Feature, error)
	SetStatus(id int64, s models.FeatureStatus) error
	Retry(id int64, maxRetries int) (models.FeatureStatus, int, error)
	FeaturesByStatus(s models.FeatureStatus) ([]models.Feature, error)
	NextBatch(limit int) (models.Batch, error)
	HasIncomplete() (bool, error)
	ResetOrphans() (int64, error)
	ResetStale(olderThan time.Duration) (int64, error)
	KanbanStats() (models.KanbanStats, error)
}

// NoteStore is the subset of Store operations the Control Tool Surface
// uses to read and write notes.
type NoteStore interface {
	AddNote(featureID *int64, category, content string, sessionID int64) (int64, error)
	NotesFor(featureID *int64, category string) ([]models.Note, error)
}

// SessionStore is the subset of Store operations the Session Runner uses
// to bracket one iteration.
type SessionStore interface {
	StartSession() (int64, error)
	EndSession(id int64, stats models.EndStats) error
	GetSession(id int64) (*models.Session, error)
	GetActiveSession() (*models.Session, error)
	ListSessions(status *models.SessionStatus) ([]models.Session, error)
	PurgeSessions(olderThan time.Duration) (int64, error)
}

// Store composes the three relation-scoped interfaces into the full
// contract implemented by *DB.
type Store interface {
	FeatureStore
	NoteStore
	SessionStore
}

var _ Store = (*DB)(nil)
