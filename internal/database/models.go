package database

import (
	"time"
)

// Session statuses stored in sessions.status
const (
	StatusRunning   = "running"
	StatusFinished  = "finished"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// SessionRecord is one dance session
type SessionRecord struct {
	ID           int        `db:"id"`
	SessionID    string     `db:"session_id"`
	StartedAt    *time.Time `db:"started_at"`
	EndedAt      *time.Time `db:"ended_at"`
	Status       string     `db:"status"`
	TotalRounds  int        `db:"total_rounds"`
	LastTurn     int        `db:"last_turn"`
	DurationMs   *int64     `db:"duration_ms"`
	ErrorMessage *string    `db:"error_message"`
}

// RoundRecord is one committed round
type RoundRecord struct {
	ID          int       `db:"id"`
	SessionID   string    `db:"session_id"`
	Turn        int       `db:"turn"`
	Moves       string    `db:"moves"` // Comma separated, e.g. "Left,Up,Right"
	CompletedAt time.Time `db:"completed_at"`
}

// TickError is a capture failure that did not end its session
type TickError struct {
	ID           int       `db:"id"`
	SessionID    string    `db:"session_id"`
	Turn         int       `db:"turn"`
	ErrorMessage string    `db:"error_message"`
	OccurredAt   time.Time `db:"occurred_at"`
}

// SessionSummary is a row of the session_summary view
type SessionSummary struct {
	SessionID       string `db:"session_id"`
	Status          string `db:"status"`
	TotalRounds     int    `db:"total_rounds"`
	RoundsCompleted int    `db:"rounds_completed"`
	TickErrors      int    `db:"tick_errors"`
	DurationMs      *int64 `db:"duration_ms"`
}
