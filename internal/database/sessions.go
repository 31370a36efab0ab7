package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Session history operations. Rows are keyed by the session's text ID so
// events may arrive in any order: every write first makes sure the session
// row exists.

func ensureSession(tx *sql.Tx, sessionID string) error {
	_, err := tx.Exec(`INSERT OR IGNORE INTO sessions (session_id) VALUES (?)`, sessionID)
	return err
}

// StartSession records the start of a session
func (db *DB) StartSession(sessionID string, totalRounds int, startedAt time.Time) error {
	return db.ExecTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO sessions (session_id, started_at, total_rounds, status)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(session_id) DO UPDATE SET
				started_at = excluded.started_at,
				total_rounds = excluded.total_rounds
		`, sessionID, startedAt, totalRounds, StatusRunning)
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		return nil
	})
}

// EndSession stores the final status of a session. duration and errorMessage may be nil.
func (db *DB) EndSession(sessionID, status string, lastTurn int, endedAt time.Time, duration *time.Duration, errorMessage *string) error {
	var durationMs *int64
	if duration != nil {
		ms := duration.Milliseconds()
		durationMs = &ms
	}

	return db.ExecTx(func(tx *sql.Tx) error {
		if err := ensureSession(tx, sessionID); err != nil {
			return fmt.Errorf("failed to ensure session: %w", err)
		}

		_, err := tx.Exec(`
			UPDATE sessions
			SET status = ?,
				ended_at = ?,
				last_turn = MAX(last_turn, ?),
				duration_ms = ?,
				error_message = ?
			WHERE session_id = ?
		`, status, endedAt, lastTurn, durationMs, errorMessage, sessionID)
		if err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		return nil
	})
}

// RecordRound stores a committed round. turn is zero-based.
func (db *DB) RecordRound(sessionID string, turn int, moves string, completedAt time.Time) error {
	return db.ExecTx(func(tx *sql.Tx) error {
		if err := ensureSession(tx, sessionID); err != nil {
			return fmt.Errorf("failed to ensure session: %w", err)
		}

		_, err := tx.Exec(`
			INSERT INTO rounds (session_id, turn, moves, completed_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(session_id, turn) DO UPDATE SET
				moves = excluded.moves,
				completed_at = excluded.completed_at
		`, sessionID, turn, moves, completedAt)
		if err != nil {
			return fmt.Errorf("failed to insert round: %w", err)
		}

		_, err = tx.Exec(`
			UPDATE sessions SET last_turn = MAX(last_turn, ?) WHERE session_id = ?
		`, turn+1, sessionID)
		return err
	})
}

// RecordTickError stores a capture failure that polling recovered from
func (db *DB) RecordTickError(sessionID string, turn int, message string, occurredAt time.Time) error {
	return db.ExecTx(func(tx *sql.Tx) error {
		if err := ensureSession(tx, sessionID); err != nil {
			return fmt.Errorf("failed to ensure session: %w", err)
		}

		_, err := tx.Exec(`
			INSERT INTO tick_errors (session_id, turn, error_message, occurred_at)
			VALUES (?, ?, ?, ?)
		`, sessionID, turn, message, occurredAt)
		if err != nil {
			return fmt.Errorf("failed to insert tick error: %w", err)
		}
		return nil
	})
}

const sessionColumns = `
	id, session_id, started_at, ended_at, status,
	total_rounds, last_turn, duration_ms, error_message`

func scanSession(row interface{ Scan(...interface{}) error }) (*SessionRecord, error) {
	s := &SessionRecord{}
	err := row.Scan(
		&s.ID, &s.SessionID, &s.StartedAt, &s.EndedAt, &s.Status,
		&s.TotalRounds, &s.LastTurn, &s.DurationMs, &s.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetSession retrieves a session by its text ID
func (db *DB) GetSession(sessionID string) (*SessionRecord, error) {
	row := db.conn.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE session_id = ?`, sessionID)
	return scanSession(row)
}

// ListRecentSessions returns the newest sessions first
func (db *DB) ListRecentSessions(limit int) ([]*SessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.Query(`
		SELECT `+sessionColumns+`
		FROM sessions
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*SessionRecord
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// GetRounds returns a session's rounds in turn order
func (db *DB) GetRounds(sessionID string) ([]*RoundRecord, error) {
	rows, err := db.conn.Query(`
		SELECT id, session_id, turn, moves, completed_at
		FROM rounds
		WHERE session_id = ?
		ORDER BY turn
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*RoundRecord
	for rows.Next() {
		r := &RoundRecord{}
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Turn, &r.Moves, &r.CompletedAt); err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}

	return rounds, rows.Err()
}

// GetTickErrors returns a session's recovered capture failures, oldest first
func (db *DB) GetTickErrors(sessionID string) ([]*TickError, error) {
	rows, err := db.conn.Query(`
		SELECT id, session_id, turn, error_message, occurred_at
		FROM tick_errors
		WHERE session_id = ?
		ORDER BY occurred_at, id
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errs []*TickError
	for rows.Next() {
		e := &TickError{}
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Turn, &e.ErrorMessage, &e.OccurredAt); err != nil {
			return nil, err
		}
		errs = append(errs, e)
	}

	return errs, rows.Err()
}

// GetSessionSummary reads the session_summary view for one session
func (db *DB) GetSessionSummary(sessionID string) (*SessionSummary, error) {
	s := &SessionSummary{}
	err := db.conn.QueryRow(`
		SELECT session_id, status, total_rounds, rounds_completed, tick_errors, duration_ms
		FROM session_summary
		WHERE session_id = ?
	`, sessionID).Scan(&s.SessionID, &s.Status, &s.TotalRounds, &s.RoundsCompleted, &s.TickErrors, &s.DurationMs)
	if err != nil {
		return nil, err
	}
	return s, nil
}
