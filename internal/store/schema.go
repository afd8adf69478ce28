package store

import (
	"context"
	"database/sql"
)

// Migrate creates every table the Repository needs if it does not already
// exist. Grounded on the teacher's own idempotent CREATE TABLE IF NOT
// EXISTS style in internal/store/table.go.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS companies (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  career_url TEXT NOT NULL,
  platform TEXT NOT NULL,
  board_token TEXT NOT NULL DEFAULT '',
  active INTEGER NOT NULL DEFAULT 1,
  last_scraped_at TEXT
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_companies_career_url ON companies(career_url);`,
		`CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company_id INTEGER NOT NULL REFERENCES companies(id),
  external_id TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL,
  url TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  location_type TEXT NOT NULL DEFAULT '',
  department TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  description_format TEXT NOT NULL DEFAULT '',
  employment_type TEXT NOT NULL DEFAULT '',
  seniority_level TEXT NOT NULL DEFAULT '',
  posted_date TEXT,
  salary_min REAL,
  salary_max REAL,
  salary_currency TEXT NOT NULL DEFAULT '',
  salary_raw TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'new',
  created_at TEXT NOT NULL DEFAULT (datetime('now')),
  updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_company_external_id
ON jobs(company_id, external_id)
WHERE external_id != '';`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_company_status ON jobs(company_id, status);`,
		`CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  trigger_source TEXT NOT NULL,
  status TEXT NOT NULL,
  companies_total INTEGER NOT NULL DEFAULT 0,
  companies_completed INTEGER NOT NULL DEFAULT 0,
  total_jobs_found INTEGER NOT NULL DEFAULT 0,
  total_jobs_added INTEGER NOT NULL DEFAULT 0,
  total_jobs_filtered INTEGER NOT NULL DEFAULT 0,
  total_jobs_archived INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL DEFAULT (datetime('now'))
);`,
		`CREATE TABLE IF NOT EXISTS scraping_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_id TEXT NOT NULL DEFAULT '',
  company_id INTEGER NOT NULL REFERENCES companies(id),
  status TEXT NOT NULL,
  jobs_found INTEGER NOT NULL DEFAULT 0,
  jobs_added INTEGER NOT NULL DEFAULT 0,
  jobs_updated INTEGER NOT NULL DEFAULT 0,
  jobs_filtered INTEGER NOT NULL DEFAULT 0,
  jobs_archived INTEGER NOT NULL DEFAULT 0,
  error TEXT NOT NULL DEFAULT '',
  matcher_status TEXT NOT NULL DEFAULT '',
  matcher_jobs_total INTEGER NOT NULL DEFAULT 0,
  matcher_jobs_completed INTEGER NOT NULL DEFAULT 0,
  matcher_error_count INTEGER NOT NULL DEFAULT 0,
  matcher_duration_ms INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL DEFAULT (datetime('now'))
);`,
		`CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS scheduler_locks (
  name TEXT PRIMARY KEY,
  holder TEXT NOT NULL,
  expires_at TEXT NOT NULL
);`,
	}

	for _, stmt := range stmts {
		if _, err := s.Pool.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// execChanges runs a write statement and returns SQLite's changes() count,
// which is more reliable than sql.Result.RowsAffected() for the bulk
// UPDATE statements this package runs through it, matching the
// teacher's own "use changes() after insert" technique in
// internal/store/jobs_upsert.go.
func execChanges(ctx context.Context, tx *sql.Tx, query string, args ...any) (int, error) {
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, err
	}
	var changes int
	if err := tx.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); err != nil {
		return 0, err
	}
	return changes, nil
}
