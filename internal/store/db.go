// Package store implements ports.Repository against SQLite via
// modernc.org/sqlite, adapted from the teacher's own internal/store
// package (same driver, same DSN/pragma shape, same single-writer
// connection-pool sizing) onto the spec's companies/jobs/sessions/
// scraping_logs/settings schema.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the concrete ports.Repository binding.
type Store struct {
	Pool *sql.DB
}

// Open connects to the SQLite file at path and runs Migrate.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// SQLite wants a single writer; the orchestrator's own progress-update
	// serialization does not help here since every company worker also
	// writes jobs/logs concurrently.
	pool.SetMaxOpenConns(1)
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	s := &Store{Pool: pool}
	if err := s.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.Pool == nil {
		return nil
	}
	return s.Pool.Close()
}
