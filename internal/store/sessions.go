package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/ports"
)

func (s *Store) CreateSession(ctx context.Context, companiesTotal int, trigger domain.TriggerSource) (*domain.Session, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.Pool.ExecContext(ctx, `
INSERT INTO sessions (id, trigger_source, status, companies_total, created_at)
VALUES (?, ?, ?, ?, ?);`, id, string(trigger), string(domain.SessionInProgress), companiesTotal, now.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		ID: id, TriggerSource: trigger, Status: domain.SessionInProgress,
		CompaniesTotal: companiesTotal, CreatedAt: now,
	}, nil
}

func (s *Store) IsSessionInProgress(ctx context.Context, sessionID string) (bool, error) {
	var status string
	err := s.Pool.QueryRowContext(ctx, `SELECT status FROM sessions WHERE id = ?;`, sessionID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status == string(domain.SessionInProgress), nil
}

func (s *Store) StopSession(ctx context.Context, sessionID string) error {
	_, err := s.Pool.ExecContext(ctx, `UPDATE sessions SET status = ? WHERE id = ? AND status = ?;`,
		string(domain.SessionStopped), sessionID, string(domain.SessionInProgress))
	return err
}

func (s *Store) UpdateSessionProgress(ctx context.Context, sessionID string, patch ports.SessionPatch) error {
	if patch.CompaniesCompleted != nil {
		if _, err := s.Pool.ExecContext(ctx, `UPDATE sessions SET companies_completed = ? WHERE id = ?;`, *patch.CompaniesCompleted, sessionID); err != nil {
			return err
		}
	}
	if patch.TotalJobsFound != nil {
		if _, err := s.Pool.ExecContext(ctx, `UPDATE sessions SET total_jobs_found = ? WHERE id = ?;`, *patch.TotalJobsFound, sessionID); err != nil {
			return err
		}
	}
	if patch.TotalJobsAdded != nil {
		if _, err := s.Pool.ExecContext(ctx, `UPDATE sessions SET total_jobs_added = ? WHERE id = ?;`, *patch.TotalJobsAdded, sessionID); err != nil {
			return err
		}
	}
	if patch.TotalJobsFiltered != nil {
		if _, err := s.Pool.ExecContext(ctx, `UPDATE sessions SET total_jobs_filtered = ? WHERE id = ?;`, *patch.TotalJobsFiltered, sessionID); err != nil {
			return err
		}
	}
	if patch.TotalJobsArchived != nil {
		if _, err := s.Pool.ExecContext(ctx, `UPDATE sessions SET total_jobs_archived = ? WHERE id = ?;`, *patch.TotalJobsArchived, sessionID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CompleteSession(ctx context.Context, sessionID string, status domain.SessionStatus) error {
	_, err := s.Pool.ExecContext(ctx, `UPDATE sessions SET status = ? WHERE id = ?;`, string(status), sessionID)
	return err
}

func (s *Store) CreateScrapingLog(ctx context.Context, row domain.ScrapingLog) (int64, error) {
	res, err := s.Pool.ExecContext(ctx, `
INSERT INTO scraping_logs (
  session_id, company_id, status, jobs_found, jobs_added, jobs_updated,
  jobs_filtered, jobs_archived, error, matcher_status, matcher_jobs_total,
  matcher_jobs_completed, matcher_error_count, matcher_duration_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		row.SessionID, row.CompanyID, string(row.Status), row.JobsFound, row.JobsAdded, row.JobsUpdated,
		row.JobsFiltered, row.JobsArchived, row.Error, string(row.MatcherStatus), row.MatcherJobsTotal,
		row.MatcherJobsCompleted, row.MatcherErrorCount, row.MatcherDuration.Milliseconds(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) UpdateScrapingLog(ctx context.Context, id int64, patch domain.ScrapingLogPatch) error {
	sets := make([]string, 0, 12)
	args := make([]any, 0, 13)

	add := func(col string, val any) {
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.JobsFound != nil {
		add("jobs_found", *patch.JobsFound)
	}
	if patch.JobsAdded != nil {
		add("jobs_added", *patch.JobsAdded)
	}
	if patch.JobsUpdated != nil {
		add("jobs_updated", *patch.JobsUpdated)
	}
	if patch.JobsFiltered != nil {
		add("jobs_filtered", *patch.JobsFiltered)
	}
	if patch.JobsArchived != nil {
		add("jobs_archived", *patch.JobsArchived)
	}
	if patch.Error != nil {
		add("error", *patch.Error)
	}
	if patch.MatcherStatus != nil {
		add("matcher_status", string(*patch.MatcherStatus))
	}
	if patch.MatcherJobsTotal != nil {
		add("matcher_jobs_total", *patch.MatcherJobsTotal)
	}
	if patch.MatcherJobsCompleted != nil {
		add("matcher_jobs_completed", *patch.MatcherJobsCompleted)
	}
	if patch.MatcherErrorCount != nil {
		add("matcher_error_count", *patch.MatcherErrorCount)
	}
	if patch.MatcherDuration != nil {
		add("matcher_duration_ms", patch.MatcherDuration.Milliseconds())
	}
	if len(sets) == 0 {
		return nil
	}

	query := "UPDATE scraping_logs SET " + joinComma(sets) + " WHERE id = ?;"
	args = append(args, id)
	_, err := s.Pool.ExecContext(ctx, query, args...)
	return err
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// AcquireSchedulerLock implements a single-owner lease: the insert succeeds
// outright for a fresh lock name, or replaces an expired lease, but never
// steals one still held by another holder.
func (s *Store) AcquireSchedulerLock(ctx context.Context, name string, holder string, ttl time.Duration) (bool, error) {
	tx, err := s.Pool.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	expiresAt := now.Add(ttl).Format(time.RFC3339)

	res, err := tx.ExecContext(ctx, `
INSERT INTO scheduler_locks (name, holder, expires_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET holder = excluded.holder, expires_at = excluded.expires_at
WHERE scheduler_locks.expires_at < ?;`, name, holder, expiresAt, now.Format(time.RFC3339))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		if err := tx.Commit(); err != nil {
			return false, err
		}
		return false, nil
	}

	var actualHolder string
	if err := tx.QueryRowContext(ctx, `SELECT holder FROM scheduler_locks WHERE name = ?;`, name).Scan(&actualHolder); err != nil {
		return false, err
	}
	if actualHolder != holder {
		if err := tx.Commit(); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) RefreshSchedulerLock(ctx context.Context, name string, holder string, ttl time.Duration) error {
	expiresAt := time.Now().UTC().Add(ttl).Format(time.RFC3339)
	res, err := s.Pool.ExecContext(ctx, `UPDATE scheduler_locks SET expires_at = ? WHERE name = ? AND holder = ?;`, expiresAt, name, holder)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("store: lock not held by this holder")
	}
	return nil
}

func (s *Store) ReleaseSchedulerLock(ctx context.Context, name string, holder string) error {
	_, err := s.Pool.ExecContext(ctx, `DELETE FROM scheduler_locks WHERE name = ? AND holder = ?;`, name, holder)
	return err
}
