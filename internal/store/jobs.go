package store

import (
	"context"
	"database/sql"
	"strings"

	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/ports"
)

func (s *Store) GetExistingJobs(ctx context.Context, companyID int64) ([]domain.ExistingJob, error) {
	rows, err := s.Pool.QueryContext(ctx, `
SELECT id, external_id, title, url, status, description
FROM jobs WHERE company_id = ?;`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ExistingJob
	for rows.Next() {
		var e domain.ExistingJob
		if err := rows.Scan(&e.ID, &e.ExternalID, &e.Title, &e.URL, &e.Status, &e.Description); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertJobs inserts every survivor job for companyID and returns the
// assigned row ids in the same order as jobs (§4.8 step 12).
func (s *Store) InsertJobs(ctx context.Context, companyID int64, jobs []domain.ScrapedJob) ([]int64, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	tx, err := s.Pool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO jobs (
  company_id, external_id, title, url, location, location_type, department,
  description, description_format, employment_type, seniority_level,
  posted_date, salary_min, salary_max, salary_currency, salary_raw, status
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'new');`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]int64, len(jobs))
	for i, j := range jobs {
		var postedDate sql.NullString
		if j.PostedDate != nil {
			postedDate = sql.NullString{String: j.PostedDate.UTC().Format("2006-01-02T15:04:05Z07:00"), Valid: true}
		}
		var salaryMin, salaryMax sql.NullFloat64
		var salaryCurrency, salaryRaw string
		if j.Salary != nil {
			salaryMin = sql.NullFloat64{Float64: j.Salary.Min, Valid: j.Salary.Min != 0}
			salaryMax = sql.NullFloat64{Float64: j.Salary.Max, Valid: j.Salary.Max != 0}
			salaryCurrency = j.Salary.Currency
			salaryRaw = j.Salary.Raw
		}

		res, err := stmt.ExecContext(ctx,
			companyID, j.ExternalID, j.Title, j.URL, j.Location, j.LocationType, j.Department,
			j.Description, j.DescriptionFormat, j.EmploymentType, j.SeniorityLevel,
			postedDate, salaryMin, salaryMax, salaryCurrency, salaryRaw,
		)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateExistingJobsFromScrape applies the hydration batch (§4.8 step 10):
// each patch replaces one existing row's description/format with the
// freshly scraped values.
func (s *Store) UpdateExistingJobsFromScrape(ctx context.Context, patches []ports.HydrationPatch) (int, error) {
	if len(patches) == 0 {
		return 0, nil
	}

	tx, err := s.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
UPDATE jobs SET description = ?, description_format = ?, updated_at = datetime('now')
WHERE id = ?;`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	updated := 0
	for _, p := range patches {
		res, err := stmt.ExecContext(ctx, p.Job.Description, p.Job.DescriptionFormat, p.ExistingJobID)
		if err != nil {
			return updated, err
		}
		n, _ := res.RowsAffected()
		updated += int(n)
	}

	if err := tx.Commit(); err != nil {
		return updated, err
	}
	return updated, nil
}

// ReopenScraperArchivedJobs moves previously-archived rows whose externalId
// reappeared in openExternalIDs back to "new" (§4.8 step 7).
func (s *Store) ReopenScraperArchivedJobs(ctx context.Context, companyID int64, externalIDs []string) (int, error) {
	if len(externalIDs) == 0 {
		return 0, nil
	}
	tx, err := s.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	placeholders, args := inClause(externalIDs)
	args = append([]any{companyID}, args...)
	n, err := execChanges(ctx, tx, `
UPDATE jobs SET status = 'new', updated_at = datetime('now')
WHERE company_id = ? AND status = 'archived' AND external_id IN (`+placeholders+`);`, args...)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// ArchiveMissingJobs moves every archivable-status row whose externalId is
// absent from openExternalIDs to "archived" (§4.8 step 8).
func (s *Store) ArchiveMissingJobs(ctx context.Context, companyID int64, openExternalIDs []string, archivable []domain.JobStatus) (int, error) {
	tx, err := s.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	statusPlaceholders, statusArgs := inClauseStatuses(archivable)

	var query string
	var args []any
	if len(openExternalIDs) == 0 {
		query = `UPDATE jobs SET status = 'archived', updated_at = datetime('now')
WHERE company_id = ? AND status IN (` + statusPlaceholders + `);`
		args = append([]any{companyID}, statusArgs...)
	} else {
		openPlaceholders, openArgs := inClause(openExternalIDs)
		query = `UPDATE jobs SET status = 'archived', updated_at = datetime('now')
WHERE company_id = ? AND status IN (` + statusPlaceholders + `) AND external_id NOT IN (` + openPlaceholders + `);`
		args = append([]any{companyID}, statusArgs...)
		args = append(args, openArgs...)
	}

	n, err := execChanges(ctx, tx, query, args...)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// GetMatchableJobIDs filters ids down to rows whose description is non-empty
// — only those are worth handing to the matcher (§4.8 step 15).
func (s *Store) GetMatchableJobIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders, args := inClauseInt64(ids)
	rows, err := s.Pool.QueryContext(ctx, `
SELECT id FROM jobs WHERE id IN (`+placeholders+`) AND description != '';`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func inClause(values []string) (string, []any) {
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		args[i] = v
	}
	return strings.Join(placeholders, ","), args
}

func inClauseInt64(values []int64) (string, []any) {
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		args[i] = v
	}
	return strings.Join(placeholders, ","), args
}

func inClauseStatuses(values []domain.JobStatus) (string, []any) {
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		args[i] = string(v)
	}
	return strings.Join(placeholders, ","), args
}
