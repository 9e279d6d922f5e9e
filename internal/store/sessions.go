package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/forgeloop/forgeloop/pkg/models"
)

// StartSession opens a session row with status=running and returns its id.
func (db *DB) StartSession() (int64, error) {
	result, err := db.Exec(`
		INSERT INTO sessions (started_at, status)
		VALUES (?, ?)
	`, formatTime(time.Now()), models.SessionStatusRunning)
	if err != nil {
		return 0, fmt.Errorf("start session: %w", err)
	}
	return result.LastInsertId()
}

// EndSession closes a session row exactly once with its terminal stats.
func (db *DB) EndSession(id int64, stats models.EndStats) error {
	result, err := db.Exec(`
		UPDATE sessions SET
			ended_at = ?, status = ?, features_attempted = ?, features_completed = ?,
			input_tokens = ?, output_tokens = ?, cost = ?, error_message = ?
		WHERE id = ?
	`, formatTime(time.Now()), stats.Status, stats.FeaturesAttempted, stats.FeaturesCompleted,
		stats.InputTokens, stats.OutputTokens, stats.Cost, nullIfEmpty(stats.ErrorMessage), id)
	if err != nil {
		return fmt.Errorf("end session %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for session %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const sessionColumns = `id, started_at, ended_at, status, features_attempted, features_completed, input_tokens, output_tokens, cost, error_message`

func scanSession(row interface {
	Scan(dest ...any) error
}) (*models.Session, error) {
	var s models.Session
	var endedAt sql.NullString
	var startedAt string
	var errMsg sql.NullString

	err := row.Scan(&s.ID, &startedAt, &endedAt, &s.Status, &s.FeaturesAttempted,
		&s.FeaturesCompleted, &s.InputTokens, &s.OutputTokens, &s.Cost, &errMsg)
	if err != nil {
		return nil, err
	}

	if s.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at for session %d: %w", s.ID, err)
	}
	s.EndedAt = parseNullableTime(endedAt)
	s.ErrorMessage = errMsg.String
	return &s, nil
}

// GetSession returns a single session by id.
func (db *DB) GetSession(id int64) (*models.Session, error) {
	row := db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	return s, nil
}

// GetActiveSession returns the currently running session, if any.
func (db *DB) GetActiveSession() (*models.Session, error) {
	row := db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE status = ? ORDER BY id DESC LIMIT 1`,
		models.SessionStatusRunning)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return s, nil
}

// PurgeSessions deletes ended (non-running) session rows that ended at or
// before now minus olderThan and returns how many were removed. Used by the gc command;
// not exercised by the outer loop itself.
func (db *DB) PurgeSessions(olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))
	result, err := db.Exec(`
		DELETE FROM sessions
		WHERE status != ? AND ended_at IS NOT NULL AND ended_at <= ?
	`, models.SessionStatusRunning, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return result.RowsAffected()
}

// ListSessions returns sessions ordered most-recent-first, optionally
// filtered by status.
func (db *DB) ListSessions(status *models.SessionStatus) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var args []any
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY id DESC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
