package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/forgeloop/forgeloop/pkg/models"
)

// AddNote inserts a note. Scope is exactly one of feature / category /
// global; enforced by the Control Tool Surface, not here — the Store
// accepts whatever combination it is given.
func (db *DB) AddNote(featureID *int64, category, content string, sessionID int64) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO notes (feature_id, category, content, created_by_session, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, featureID, nullIfEmpty(category), content, sessionID, formatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("add note: %w", err)
	}
	return result.LastInsertId()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NotesFor returns every note whose scope matches the given feature id, or
// the given category, or is global, ordered newest-first. Either argument
// may be zero-valued to omit that match clause (featureID == nil, category
// == "").
func (db *DB) NotesFor(featureID *int64, category string) ([]models.Note, error) {
	query := `
		SELECT id, feature_id, category, content, created_by_session, created_at
		FROM notes
		WHERE (feature_id IS NULL AND category IS NULL)
	`
	args := []any{}
	if featureID != nil {
		query += ` OR feature_id = ?`
		args = append(args, *featureID)
	}
	if category != "" {
		query += ` OR category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		var n models.Note
		var fid sql.NullInt64
		var cat sql.NullString
		var createdAt string
		if err := rows.Scan(&n.ID, &fid, &cat, &n.Content, &n.CreatedBySession, &createdAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		if fid.Valid {
			v := fid.Int64
			n.FeatureID = &v
		}
		n.Category = cat.String
		t, err := parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse note created_at: %w", err)
		}
		n.CreatedAt = t
		out = append(out, n)
	}
	return out, rows.Err()
}
