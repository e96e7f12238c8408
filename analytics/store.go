// Package analytics counts page views without keeping anything that
// identifies a visitor: client IPs are salted and hashed before storage.
package analytics

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Visit is one recorded page view
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// PathCount is a path and how often it was viewed
type PathCount struct {
	Path   string `json:"path"`
	Visits int64  `json:"visits"`
}

// Stats summarises recorded visits
type Stats struct {
	TotalVisits    int64       `json:"total_visits"`
	UniqueVisitors int64       `json:"unique_visitors"`
	VisitsToday    int64       `json:"visits_today"`
	VisitsThisWeek int64       `json:"visits_this_week"`
	TopPaths       []PathCount `json:"top_paths"`
	RecentVisits   []Visit     `json:"recent_visits"`
}

const schema = `
CREATE TABLE IF NOT EXISTS visits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip TEXT NOT NULL,
	user_agent TEXT,
	path TEXT NOT NULL,
	visited_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_visits_visited_at ON visits(visited_at);
`

const (
	topPathsLimit     = 10
	recentVisitsLimit = 50
)

// Store keeps visits in sqlite
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open analytics database: %w", err)
	}
	// sqlite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping analytics database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create visits table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one visit. Timestamps are kept at second resolution.
func (s *Store) Record(ctx context.Context, v Visit) error {
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visits (hashed_ip, user_agent, path, visited_at)
		VALUES (?, ?, ?, ?)
	`, v.HashedIP, v.UserAgent, v.Path, v.Timestamp.Unix())
	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

// Cleanup deletes visits recorded before cutoff and returns how many went.
func (s *Store) Cleanup(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM visits WHERE visited_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up visits: %w", err)
	}
	return result.RowsAffected()
}

// Stats summarises visits as of now. "Today" starts at midnight in now's location.
func (s *Store) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{
		TopPaths:     []PathCount{},
		RecentVisits: []Visit{},
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.Add(-7 * 24 * time.Hour)

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT hashed_ip),
			COALESCE(SUM(CASE WHEN visited_at >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN visited_at >= ? THEN 1 ELSE 0 END), 0)
		FROM visits
	`, startOfDay.Unix(), weekAgo.Unix()).Scan(
		&stats.TotalVisits,
		&stats.UniqueVisitors,
		&stats.VisitsToday,
		&stats.VisitsThisWeek,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count visits: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS visits
		FROM visits
		GROUP BY path
		ORDER BY visits DESC, path ASC
		LIMIT ?
	`, topPathsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top paths: %w", err)
	}
	for rows.Next() {
		var pc PathCount
		if err := rows.Scan(&pc.Path, &pc.Visits); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan path count: %w", err)
		}
		stats.TopPaths = append(stats.TopPaths, pc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top paths: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), path, visited_at
		FROM visits
		ORDER BY visited_at DESC, id DESC
		LIMIT ?
	`, recentVisitsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent visits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v Visit
		var visitedAt int64
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &visitedAt); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		v.Timestamp = time.Unix(visitedAt, 0).In(now.Location())
		stats.RecentVisits = append(stats.RecentVisits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating visits: %w", err)
	}

	return stats, nil
}

// Hasher turns client IPs into stable, salted, truncated digests.
type Hasher struct {
	salt []byte
}

// NewHasher returns a Hasher with a random per-process salt, so digests
// cannot be correlated across restarts.
func NewHasher() (*Hasher, error) {
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return &Hasher{salt: salt}, nil
}

// NewHasherWithSalt returns a Hasher with a fixed salt.
func NewHasherWithSalt(salt []byte) *Hasher {
	return &Hasher{salt: append([]byte(nil), salt...)}
}

// Hash returns the first 16 hex characters of sha256(ip || salt).
func (h *Hasher) Hash(ip string) string {
	sum := sha256.New()
	sum.Write([]byte(ip))
	sum.Write(h.salt)
	return hex.EncodeToString(sum.Sum(nil))[:16]
}
