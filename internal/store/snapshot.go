package store

import (
	"database/sql"
	"errors"
	"time"
)

// Snapshot is a point-in-time copy of the fatigue metrics.
type Snapshot struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	At         time.Time `json:"at"`
	Score      int       `json:"score"`
	Level      string    `json:"level"`
	BlinkRate  float64   `json:"blink_rate"`
	AvgBlinkMS float64   `json:"avg_blink_ms"`
	Yawns      int       `json:"yawns"`
	Droops     int       `json:"droops"`
	Perclos    float64   `json:"perclos"`
}

// SnapshotRepository provides storage for fatigue snapshots.
type SnapshotRepository struct {
	db *sql.DB
}

// Snapshots returns the snapshot repository for this store.
func (s *Store) Snapshots() *SnapshotRepository {
	return &SnapshotRepository{db: s.db}
}

const snapshotColumns = `id, session_id, at, score, level, blink_rate, avg_blink_ms, yawns, droops, perclos`

// Create inserts a snapshot and sets its ID.
func (r *SnapshotRepository) Create(s *Snapshot) error {
	result, err := r.db.Exec(
		`INSERT INTO fatigue_snapshots (session_id, at, score, level, blink_rate, avg_blink_ms, yawns, droops, perclos)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SessionID, s.At, s.Score, s.Level, s.BlinkRate, s.AvgBlinkMS, s.Yawns, s.Droops, s.Perclos,
	)
	if err != nil {
		return err
	}
	s.ID, err = result.LastInsertId()
	return err
}

// ListBySession returns a session's snapshots taken at or after since, oldest
// first.
func (r *SnapshotRepository) ListBySession(sessionID string, since time.Time) ([]*Snapshot, error) {
	rows, err := r.db.Query(
		`SELECT `+snapshotColumns+` FROM fatigue_snapshots
		 WHERE session_id = ? AND at >= ?
		 ORDER BY at, id`,
		sessionID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snapshots, nil
}

// Latest returns the most recent snapshot of a session.
func (r *SnapshotRepository) Latest(sessionID string) (*Snapshot, error) {
	s, err := scanSnapshot(r.db.QueryRow(
		`SELECT `+snapshotColumns+` FROM fatigue_snapshots
		 WHERE session_id = ? ORDER BY at DESC, id DESC LIMIT 1`,
		sessionID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	s := &Snapshot{}
	err := row.Scan(&s.ID, &s.SessionID, &s.At, &s.Score, &s.Level,
		&s.BlinkRate, &s.AvgBlinkMS, &s.Yawns, &s.Droops, &s.Perclos)
	if err != nil {
		return nil, err
	}
	return s, nil
}
