package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/ports"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUpsertCompanySeedIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.UpsertCompanySeed(ctx, "Acme", "https://acme.example/careers", domain.PlatformGreenhouse, "acme", true); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := s.UpsertCompanySeed(ctx, "Acme Inc", "https://acme.example/careers", domain.PlatformGreenhouse, "acme-2", false); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	companies, err := s.GetActiveCompanies(ctx)
	if err != nil {
		t.Fatalf("GetActiveCompanies: %v", err)
	}
	if len(companies) != 0 {
		t.Fatalf("expected the re-seeded row to be inactive, got %d active companies", len(companies))
	}

	c, err := s.GetCompany(ctx, 1)
	if err != nil {
		t.Fatalf("GetCompany: %v", err)
	}
	if c == nil || c.Name != "Acme Inc" || c.BoardToken != "acme-2" {
		t.Fatalf("expected re-seed to update the existing row in place, got %+v", c)
	}
}

func TestInsertAndArchiveJobsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.UpsertCompanySeed(ctx, "Acme", "https://acme.example/careers", domain.PlatformGreenhouse, "acme", true); err != nil {
		t.Fatalf("seed: %v", err)
	}
	company, err := s.GetCompany(ctx, 1)
	if err != nil || company == nil {
		t.Fatalf("GetCompany: %v, %+v", err, company)
	}

	ids, err := s.InsertJobs(ctx, company.ID, []domain.ScrapedJob{
		{ExternalID: "job-1", Title: "Backend Engineer", URL: "https://acme.example/jobs/1"},
		{ExternalID: "job-2", Title: "Frontend Engineer", URL: "https://acme.example/jobs/2"},
	})
	if err != nil {
		t.Fatalf("InsertJobs: %v", err)
	}
	if len(ids) != 2 || ids[0] == 0 || ids[1] == 0 {
		t.Fatalf("expected two assigned ids, got %v", ids)
	}

	existing, err := s.GetExistingJobs(ctx, company.ID)
	if err != nil {
		t.Fatalf("GetExistingJobs: %v", err)
	}
	if len(existing) != 2 {
		t.Fatalf("expected 2 existing jobs, got %d", len(existing))
	}

	n, err := s.ArchiveMissingJobs(ctx, company.ID, []string{"job-1"}, domain.ArchivableStatuses)
	if err != nil {
		t.Fatalf("ArchiveMissingJobs: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly job-2 archived, got %d", n)
	}

	existing, err = s.GetExistingJobs(ctx, company.ID)
	if err != nil {
		t.Fatalf("GetExistingJobs after archive: %v", err)
	}
	var archivedCount, newCount int
	for _, e := range existing {
		switch e.Status {
		case domain.JobStatusArchived:
			archivedCount++
		case domain.JobStatusNew:
			newCount++
		}
	}
	if archivedCount != 1 || newCount != 1 {
		t.Fatalf("expected 1 archived and 1 new, got archived=%d new=%d", archivedCount, newCount)
	}

	reopened, err := s.ReopenScraperArchivedJobs(ctx, company.ID, []string{"job-2"})
	if err != nil {
		t.Fatalf("ReopenScraperArchivedJobs: %v", err)
	}
	if reopened != 1 {
		t.Fatalf("expected 1 reopened job, got %d", reopened)
	}
}

func TestSchedulerLockSingleOwner(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ok, err := s.AcquireSchedulerLock(ctx, "scrape-all", "holder-a", time.Minute)
	if err != nil {
		t.Fatalf("AcquireSchedulerLock: %v", err)
	}
	if !ok {
		t.Fatalf("expected holder-a to acquire a fresh lock")
	}

	ok, err = s.AcquireSchedulerLock(ctx, "scrape-all", "holder-b", time.Minute)
	if err != nil {
		t.Fatalf("AcquireSchedulerLock (contested): %v", err)
	}
	if ok {
		t.Fatalf("expected holder-b to be refused a lock already held by holder-a")
	}

	if err := s.ReleaseSchedulerLock(ctx, "scrape-all", "holder-a"); err != nil {
		t.Fatalf("ReleaseSchedulerLock: %v", err)
	}

	ok, err = s.AcquireSchedulerLock(ctx, "scrape-all", "holder-b", time.Minute)
	if err != nil {
		t.Fatalf("AcquireSchedulerLock (after release): %v", err)
	}
	if !ok {
		t.Fatalf("expected holder-b to acquire the lock once released")
	}
}

func TestSessionProgressAndCompletion(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	session, err := s.CreateSession(ctx, 3, domain.TriggerManual)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	inProgress, err := s.IsSessionInProgress(ctx, session.ID)
	if err != nil {
		t.Fatalf("IsSessionInProgress: %v", err)
	}
	if !inProgress {
		t.Fatalf("expected freshly created session to be in progress")
	}

	completed := 2
	if err := s.UpdateSessionProgress(ctx, session.ID, ports.SessionPatch{CompaniesCompleted: &completed}); err != nil {
		t.Fatalf("UpdateSessionProgress: %v", err)
	}

	if err := s.CompleteSession(ctx, session.ID, domain.SessionPartial); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}

	inProgress, err = s.IsSessionInProgress(ctx, session.ID)
	if err != nil {
		t.Fatalf("IsSessionInProgress after completion: %v", err)
	}
	if inProgress {
		t.Fatalf("expected completed session to no longer be in progress")
	}
}
