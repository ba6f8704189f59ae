// Package store persists search results in a schema-versioned SQLite file.
// The store is the single shared mutable resource of a search run: writes
// are serialized and the (rule, seed, generations) dedup key is enforced by
// a unique index, so concurrent puts of the same key linearize to one row.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SearchResult is the durable record of one scored candidate.
type SearchResult struct {
	ID          int64
	Rule        uint64
	Seed        int64
	Generations int
	Score       float64
	Outcome     string
	CreatedAt   time.Time
}

// Key returns the dedup key that uniquely determines the score.
func (r SearchResult) Key() Key {
	return Key{Rule: r.Rule, Seed: r.Seed, Generations: r.Generations}
}

// Key is the (rule encoding, seed, generation budget) dedup triple.
type Key struct {
	Rule        uint64
	Seed        int64
	Generations int
}

// Filter narrows Query results. Zero values leave a dimension unfiltered.
type Filter struct {
	MinScore float64
	// KindTag filters on the encoding's kind byte (0 = all kinds).
	KindTag uint8
	Limit   int
}

// Store is the result persistence contract. SQLiteStore backs native runs;
// MemoryStore backs tests and platforms without a filesystem.
type Store interface {
	Put(ctx context.Context, result SearchResult) (int64, error)
	Query(ctx context.Context, f Filter) ([]SearchResult, error)
	Checkpoint(ctx context.Context, runID, strategy string, seed int64, generation int) error
	LastCheckpoint(ctx context.Context, runID string) (int, bool, error)
	Close() error
}

// SQLiteStore is the file-backed Store implementation.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log *zap.Logger
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the SQLite store at path and migrates it
// to the current schema version.
func Open(path string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// A single connection plus the store mutex keeps writes serialized and
	// the dedup check linearizable.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA journal_mode = WAL`,
		`PRAGMA synchronous = NORMAL`,
		`PRAGMA foreign_keys = ON`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure store: %w", err)
		}
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	log.Debug("result store ready", zap.String("path", path), zap.Int("schema_version", schemaVersion))
	return &SQLiteStore{db: db, log: log}, nil
}

// Put inserts a result, deduplicating on (rule, seed, generations). Inserting
// an existing key is a no-op that returns the surviving row's id. The write
// is transactional: a failed put leaves the store untouched.
func (s *SQLiteStore) Put(ctx context.Context, result SearchResult) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin put: %w", err)
	}
	defer tx.Rollback()

	createdAt := result.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO results(rule, seed, generations, score, outcome, created_at)
		 VALUES(?, ?, ?, ?, ?, ?)
		 ON CONFLICT(rule, seed, generations) DO NOTHING`,
		int64(result.Rule), result.Seed, result.Generations,
		result.Score, result.Outcome, createdAt.Format(time.RFC3339Nano),
	); err != nil {
		return 0, fmt.Errorf("put result: %w", err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM results WHERE rule = ? AND seed = ? AND generations = ?`,
		int64(result.Rule), result.Seed, result.Generations,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("resolve put id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit put: %w", err)
	}
	return id, nil
}

// Query returns stored results matching the filter, best scores first.
func (s *SQLiteStore) Query(ctx context.Context, f Filter) ([]SearchResult, error) {
	query := `SELECT id, rule, seed, generations, score, outcome, created_at
		FROM results WHERE score >= ?`
	args := []any{f.MinScore}
	if f.KindTag != 0 {
		query += ` AND rule >= ? AND rule < ?`
		args = append(args, int64(f.KindTag)<<56, int64(f.KindTag+1)<<56)
	}
	query += ` ORDER BY score DESC, rule ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			r       SearchResult
			rule    int64
			created string
		)
		if err := rows.Scan(&r.ID, &rule, &r.Seed, &r.Generations, &r.Score, &r.Outcome, &created); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Rule = uint64(rule)
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			r.CreatedAt = t
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Checkpoint records the last fully incorporated search generation for a
// run, so a cancelled run can resume instead of starting over.
func (s *SQLiteStore) Checkpoint(ctx context.Context, runID, strategy string, seed int64, generation int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs(id, strategy, seed, last_generation, updated_at)
		 VALUES(?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET last_generation = excluded.last_generation,
			updated_at = excluded.updated_at`,
		runID, strategy, seed, generation, nowUTC(),
	); err != nil {
		return fmt.Errorf("checkpoint run %s: %w", runID, err)
	}
	return nil
}

// LastCheckpoint returns the last recorded generation for a run, and whether
// the run has a checkpoint at all.
func (s *SQLiteStore) LastCheckpoint(ctx context.Context, runID string) (int, bool, error) {
	var generation int
	err := s.db.QueryRowContext(ctx,
		`SELECT last_generation FROM runs WHERE id = ?`, runID,
	).Scan(&generation)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read checkpoint %s: %w", runID, err)
	}
	return generation, true, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
