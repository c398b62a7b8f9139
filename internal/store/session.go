package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Session is one monitoring run.
type Session struct {
	ID        string          `json:"id"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   *time.Time      `json:"ended_at,omitempty"`
	Frames    int             `json:"frames"`
	Blinks    int             `json:"blinks"`
	SleepMS   int64           `json:"sleep_ms"`
	Settings  json.RawMessage `json:"settings"`
}

// Active reports whether the session has not been ended.
func (s *Session) Active() bool {
	return s.EndedAt == nil
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

const sessionColumns = `id, started_at, ended_at, frames, blinks, sleep_ms, settings`

// Create inserts a new session.
func (r *SessionRepository) Create(s *Session) error {
	settings := s.Settings
	if settings == nil {
		settings = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.StartedAt, nullTime(s.EndedAt), s.Frames, s.Blinks, s.SleepMS, string(settings),
	)
	return err
}

// UpdateTotals records the running counters of a session.
func (r *SessionRepository) UpdateTotals(id string, frames, blinks int, sleep time.Duration) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET frames = ?, blinks = ?, sleep_ms = ? WHERE id = ?`,
		frames, blinks, sleep.Milliseconds(), id,
	)
	if err != nil {
		return err
	}
	return affected(result)
}

// End marks a session finished at endedAt.
func (r *SessionRepository) End(id string, endedAt time.Time) error {
	result, err := r.db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, endedAt, id)
	if err != nil {
		return err
	}
	return affected(result)
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	s, err := scanSession(r.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

// List retrieves the most recent sessions first. A limit of zero or less
// returns every session.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Delete removes a session together with its events and snapshots.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	s := &Session{}
	var ended sql.NullTime
	var settings string

	if err := row.Scan(&s.ID, &s.StartedAt, &ended, &s.Frames, &s.Blinks, &s.SleepMS, &settings); err != nil {
		return nil, err
	}

	if ended.Valid {
		t := ended.Time
		s.EndedAt = &t
	}
	s.Settings = json.RawMessage(settings)
	return s, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
