package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/ports"
)

func (s *Store) GetCompany(ctx context.Context, id int64) (*domain.Company, error) {
	row := s.Pool.QueryRowContext(ctx, `
SELECT id, name, career_url, platform, board_token, active, last_scraped_at
FROM companies WHERE id = ?;`, id)
	return scanCompany(row)
}

func (s *Store) GetActiveCompanies(ctx context.Context) ([]domain.Company, error) {
	rows, err := s.Pool.QueryContext(ctx, `
SELECT id, name, career_url, platform, board_token, active, last_scraped_at
FROM companies WHERE active = 1 ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Company
	for rows.Next() {
		c, err := scanCompanyRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCompany(ctx context.Context, id int64, patch ports.CompanyPatch) error {
	if patch.LastScrapedAt == nil && patch.BoardToken == nil {
		return nil
	}
	if patch.LastScrapedAt != nil {
		ts := patch.LastScrapedAt.UTC().Format(time.RFC3339)
		if _, err := s.Pool.ExecContext(ctx, `UPDATE companies SET last_scraped_at = ? WHERE id = ?;`, ts, id); err != nil {
			return err
		}
	}
	if patch.BoardToken != nil {
		if _, err := s.Pool.ExecContext(ctx, `UPDATE companies SET board_token = ? WHERE id = ?;`, *patch.BoardToken, id); err != nil {
			return err
		}
	}
	return nil
}

// UpsertCompanySeed inserts or refreshes a config-seeded company row,
// keyed by career_url. This is bootstrap-only: it is never part of
// ports.Repository because the orchestrator has no business creating
// companies mid-scrape, only cmd/scrapecore's startup seeding step does.
func (s *Store) UpsertCompanySeed(ctx context.Context, name, careerURL string, platform domain.Platform, boardToken string, active bool) error {
	_, err := s.Pool.ExecContext(ctx, `
INSERT INTO companies (name, career_url, platform, board_token, active)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(career_url) DO UPDATE SET
  name = excluded.name,
  platform = excluded.platform,
  board_token = excluded.board_token,
  active = excluded.active;`,
		name, careerURL, string(platform), boardToken, boolToInt(active))
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.Pool.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (*domain.Company, error) {
	var c domain.Company
	var lastScraped sql.NullString
	var active int
	if err := row.Scan(&c.ID, &c.Name, &c.CareerURL, &c.Platform, &c.BoardToken, &active, &lastScraped); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.Active = active != 0
	if lastScraped.Valid {
		c.LastScrapedAt = &lastScraped.String
	}
	return &c, nil
}

func scanCompanyRow(rows *sql.Rows) (*domain.Company, error) {
	return scanCompany(rows)
}
