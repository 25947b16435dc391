// Package storage provides SQLite-based persistence for play sessions.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
//
// The pool file is the source of truth for a running game. This store only
// keeps a history of how each session ended, across restarts and pools.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DefaultPath is where the session history lives unless --db says otherwise.
const DefaultPath = "~/.pminvaders/sessions.db"

const timeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection for session history.
type Store struct {
	db *sql.DB
}

// Session is one run of the game against a pool file.
type Session struct {
	ID        string
	PoolPath  string
	Score     int
	HighScore int
	Ticks     uint64
	StartedAt time.Time
	EndedAt   time.Time
}

// PoolStats aggregates the sessions recorded for one pool file.
type PoolStats struct {
	PoolPath   string
	Sessions   int
	BestScore  int
	TotalTicks int64
	LastPlayed time.Time
}

// NewSession starts a session record for the pool at poolPath.
func NewSession(poolPath string) Session {
	if abs, err := filepath.Abs(poolPath); err == nil {
		poolPath = abs
	}
	return Session{
		ID:        uuid.NewString(),
		PoolPath:  poolPath,
		StartedAt: time.Now().UTC(),
	}
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			pool_path TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			high_score INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_pool ON sessions(pool_path);
		CREATE INDEX IF NOT EXISTS idx_sessions_top ON sessions(score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSession records the session, replacing an earlier save with the same
// ID. A zero EndedAt is stamped with the current time.
func (s *Store) SaveSession(sess Session) error {
	if sess.ID == "" {
		return fmt.Errorf("storage: session has no ID")
	}
	if sess.EndedAt.IsZero() {
		sess.EndedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, pool_path, score, high_score, ticks, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   score = excluded.score,
		   high_score = excluded.high_score,
		   ticks = excluded.ticks,
		   ended_at = excluded.ended_at`,
		sess.ID, sess.PoolPath, sess.Score, sess.HighScore, int64(sess.Ticks),
		sess.StartedAt.UTC().Format(timeLayout), sess.EndedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save session: %w", err)
	}
	return nil
}

// TopSessions retrieves the best N sessions across all pools.
// Results are ordered by final score descending.
func (s *Store) TopSessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.querySessions(
		`SELECT id, pool_path, score, high_score, ticks, started_at, ended_at
		 FROM sessions
		 ORDER BY score DESC, ended_at DESC
		 LIMIT ?`,
		limit,
	)
}

// PoolSessions retrieves the most recent sessions played against poolPath.
func (s *Store) PoolSessions(poolPath string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	if abs, err := filepath.Abs(poolPath); err == nil {
		poolPath = abs
	}
	return s.querySessions(
		`SELECT id, pool_path, score, high_score, ticks, started_at, ended_at
		 FROM sessions
		 WHERE pool_path = ?
		 ORDER BY ended_at DESC, rowid DESC
		 LIMIT ?`,
		poolPath, limit,
	)
}

func (s *Store) querySessions(query string, args ...any) ([]Session, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var ticks int64
		var startedAt, endedAt any
		if err := rows.Scan(&sess.ID, &sess.PoolPath, &sess.Score, &sess.HighScore, &ticks, &startedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sess.Ticks = uint64(ticks)
		sess.StartedAt = parseTime(startedAt)
		sess.EndedAt = parseTime(endedAt)
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sessions, nil
}

// PoolStats retrieves aggregated statistics for one pool file.
func (s *Store) PoolStats(poolPath string) (*PoolStats, error) {
	if abs, err := filepath.Abs(poolPath); err == nil {
		poolPath = abs
	}
	stats := &PoolStats{PoolPath: poolPath}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(SUM(ticks), 0), MAX(ended_at)
		 FROM sessions WHERE pool_path = ?`,
		poolPath,
	).Scan(&stats.Sessions, &stats.BestScore, &stats.TotalTicks, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get pool stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// ClearSessions deletes the history of one pool file.
func (s *Store) ClearSessions(poolPath string) error {
	if abs, err := filepath.Abs(poolPath); err == nil {
		poolPath = abs
	}
	_, err := s.db.Exec("DELETE FROM sessions WHERE pool_path = ?", poolPath)
	if err != nil {
		return fmt.Errorf("storage: cannot clear sessions: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v.UTC()
	case string:
		if parsed, err := time.Parse(timeLayout, v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
