package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/forgeloop/forgeloop/pkg/models"
)

// ErrNotFound is returned when a requested feature, note, or session does
// not exist.
var ErrNotFound = errors.New("not found")

// IngestFeature is one row to insert during Ingest.
type IngestFeature struct {
	ID          int64
	Name        string
	Description string
	Category    string
	Steps       []string
}

// Ingest inserts feature rows. Invoked by the external loader, not by the
// core loop; the Batcher assumes features already exist. Contiguity is
// checked by the Validator, not here.
func (db *DB) Ingest(features []IngestFeature) error {
	return db.Transaction(func(tx *sql.Tx) error {
		now := formatTime(time.Now())
		for _, f := range features {
			stepsJSON, err := json.Marshal(f.Steps)
			if err != nil {
				return fmt.Errorf("marshal steps for feature %d: %w", f.ID, err)
			}
			_, err = tx.Exec(`
				INSERT INTO features (id, name, description, category, steps, status, retry_count, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
			`, f.ID, f.Name, f.Description, f.Category, string(stepsJSON), models.FeatureStatusPending, now, now)
			if err != nil {
				return fmt.Errorf("insert feature %d: %w", f.ID, err)
			}
		}
		return nil
	})
}

func scanFeature(row interface {
	Scan(dest ...any) error
}) (*models.Feature, error) {
	var f models.Feature
	var description, stepsJSON sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&f.ID, &f.Name, &description, &f.Category, &stepsJSON,
		&f.Status, &f.RetryCount, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	f.Description = description.String
	if stepsJSON.Valid && stepsJSON.String != "" {
		if err := json.Unmarshal([]byte(stepsJSON.String), &f.Steps); err != nil {
			return nil, fmt.Errorf("unmarshal steps for feature %d: %w", f.ID, err)
		}
	}
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for feature %d: %w", f.ID, err)
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for feature %d: %w", f.ID, err)
	}
	return &f, nil
}

const featureColumns = `id, name, description, category, steps, status, retry_count, created_at, updated_at`

// GetFeature returns a single feature by id.
func (db *DB) GetFeature(id int64) (*models.Feature, error) {
	row := db.QueryRow(`SELECT `+featureColumns+` FROM features WHERE id = ?`, id)
	f, err := scanFeature(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get feature %d: %w", id, err)
	}
	return f, nil
}

// SetStatus performs an unconditional status write for s in
// {in_progress, completed}, updating updated_at. Fails with ErrNotFound if
// the feature does not exist.
func (db *DB) SetStatus(id int64, s models.FeatureStatus) error {
	result, err := db.Exec(`UPDATE features SET status = ?, updated_at = ? WHERE id = ?`,
		s, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set status for feature %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for feature %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Retry atomically increments retry_count, reading the new count c. It
// sets status = failed if c >= maxRetries, otherwise pending. Returns the
// resulting status and count. This is the only path to the failed state.
//
// Per SPEC_FULL.md / spec.md §9's flagged open question, forgeloop takes
// the safer of the two documented choices: a retry request against a
// feature already in a terminal status (completed or failed) is a no-op
// that returns the current status and count unchanged, rather than
// incrementing retry_count from a terminal state.
func (db *DB) Retry(id int64, maxRetries int) (models.FeatureStatus, int, error) {
	var status models.FeatureStatus
	var count int

	err := db.Transaction(func(tx *sql.Tx) error {
		row := tx.QueryRow(`SELECT status, retry_count FROM features WHERE id = ?`, id)
		if err := row.Scan(&status, &count); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		if status.Terminal() {
			return nil
		}

		count++
		status = models.FeatureStatusPending
		if count >= maxRetries {
			status = models.FeatureStatusFailed
		}

		_, err := tx.Exec(`UPDATE features SET status = ?, retry_count = ?, updated_at = ? WHERE id = ?`,
			status, count, formatTime(time.Now()), id)
		return err
	})
	if err != nil {
		return "", 0, fmt.Errorf("retry feature %d: %w", id, err)
	}
	return status, count, nil
}

// FeaturesByStatus returns features with the given status, ordered by id
// ascending.
func (db *DB) FeaturesByStatus(s models.FeatureStatus) ([]models.Feature, error) {
	rows, err := db.Query(`SELECT `+featureColumns+` FROM features WHERE status = ? ORDER BY id ASC`, s)
	if err != nil {
		return nil, fmt.Errorf("query features by status %q: %w", s, err)
	}
	defer rows.Close()

	var out []models.Feature
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// AllFeatures returns every feature ordered by id ascending, used by the
// Validator's startup contiguity check and by read-only tooling.
func (db *DB) AllFeatures() ([]models.Feature, error) {
	rows, err := db.Query(`SELECT ` + featureColumns + ` FROM features ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query all features: %w", err)
	}
	defer rows.Close()

	var out []models.Feature
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// NextBatch returns up to limit features such that all share the category
// of the pending feature with the lowest id, ordered by ascending id
// within that category. Returns an empty batch iff no pending features
// exist.
func (db *DB) NextBatch(limit int) (models.Batch, error) {
	var category string
	row := db.QueryRow(`
		SELECT category FROM features
		WHERE status = ? ORDER BY id ASC LIMIT 1
	`, models.FeatureStatusPending)
	if err := row.Scan(&category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Batch{}, nil
		}
		return models.Batch{}, fmt.Errorf("find lowest pending category: %w", err)
	}

	rows, err := db.Query(`
		SELECT `+featureColumns+` FROM features
		WHERE status = ? AND category = ?
		ORDER BY id ASC LIMIT ?
	`, models.FeatureStatusPending, category, limit)
	if err != nil {
		return models.Batch{}, fmt.Errorf("query next batch: %w", err)
	}
	defer rows.Close()

	b := models.Batch{Category: category}
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return models.Batch{}, err
		}
		b.Features = append(b.Features, *f)
	}
	return b, rows.Err()
}

// HasIncomplete reports whether at least one feature has status in
// {pending, in_progress}.
func (db *DB) HasIncomplete() (bool, error) {
	var count int
	row := db.QueryRow(`
		SELECT COUNT(*) FROM features WHERE status IN (?, ?)
	`, models.FeatureStatusPending, models.FeatureStatusInProgress)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("count incomplete features: %w", err)
	}
	return count > 0, nil
}

// ResetOrphans sets status = pending for every feature currently
// in_progress. Returns the count changed. Used at startup by Recovery.
func (db *DB) ResetOrphans() (int64, error) {
	result, err := db.Exec(`
		UPDATE features SET status = ?, updated_at = ? WHERE status = ?
	`, models.FeatureStatusPending, formatTime(time.Now()), models.FeatureStatusInProgress)
	if err != nil {
		return 0, fmt.Errorf("reset orphans: %w", err)
	}
	return result.RowsAffected()
}

// ResetStale sets status = pending for every in_progress feature whose
// updated_at is older than the given duration. Returns the count changed.
func (db *DB) ResetStale(olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))
	result, err := db.Exec(`
		UPDATE features SET status = ?, updated_at = ? WHERE status = ? AND updated_at < ?
	`, models.FeatureStatusPending, formatTime(time.Now()), models.FeatureStatusInProgress, cutoff)
	if err != nil {
		return 0, fmt.Errorf("reset stale: %w", err)
	}
	return result.RowsAffected()
}

// KanbanStats returns feature counts by status, globally and per category.
func (db *DB) KanbanStats() (models.KanbanStats, error) {
	stats := models.KanbanStats{
		ByStatus:   make(map[models.FeatureStatus]int),
		ByCategory: make(map[string]models.CategoryStats),
	}

	rows, err := db.Query(`SELECT category, status, COUNT(*) FROM features GROUP BY category, status`)
	if err != nil {
		return stats, fmt.Errorf("query kanban stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var status models.FeatureStatus
		var count int
		if err := rows.Scan(&category, &status, &count); err != nil {
			return stats, fmt.Errorf("scan kanban stats row: %w", err)
		}

		stats.Total += count
		stats.ByStatus[status] += count

		c := stats.ByCategory[category]
		switch status {
		case models.FeatureStatusPending:
			c.Pending += count
		case models.FeatureStatusInProgress:
			c.InProgress += count
		case models.FeatureStatusCompleted:
			c.Completed += count
		case models.FeatureStatusFailed:
			c.Failed += count
		}
		stats.ByCategory[category] = c
	}
	return stats, rows.Err()
}
