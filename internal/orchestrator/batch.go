package orchestrator

import (
	"context"
	"sync"
	"time"

	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/ports"
)

// ScrapeCompanies runs the batch algorithm (§4.8) over an explicit set of
// company ids. ScrapeAllCompanies is the same algorithm over every active,
// non-custom company.
func (o *Orchestrator) ScrapeCompanies(ctx context.Context, companyIDs []int64, trigger domain.TriggerSource) ([]domain.FetchResult, error) {
	companies := make([]domain.Company, 0, len(companyIDs))
	for _, id := range companyIDs {
		c, err := o.repo.GetCompany(ctx, id)
		if err != nil || c == nil {
			continue
		}
		companies = append(companies, *c)
	}
	return o.runBatch(ctx, companies, trigger)
}

// ScrapeAllCompanies runs the batch algorithm over every active,
// non-custom-platform company (§4.8 step 1).
func (o *Orchestrator) ScrapeAllCompanies(ctx context.Context, trigger domain.TriggerSource) ([]domain.FetchResult, error) {
	all, err := o.repo.GetActiveCompanies(ctx)
	if err != nil {
		return nil, err
	}
	companies := make([]domain.Company, 0, len(all))
	for _, c := range all {
		if c.Platform == domain.PlatformCustom {
			continue
		}
		companies = append(companies, c)
	}
	return o.runBatch(ctx, companies, trigger)
}

// runBatch implements the batch algorithm's steps 2-6: session creation,
// parallelism clamp, work-stealing fan-out over a shared cursor with
// cooperative cancellation checked only at task pickup, single-writer
// progress serialization, and session completion with the mapped terminal
// status.
func (o *Orchestrator) runBatch(ctx context.Context, companies []domain.Company, trigger domain.TriggerSource) ([]domain.FetchResult, error) {
	start := time.Now()
	results := make([]domain.FetchResult, len(companies))
	for i, c := range companies {
		// Pre-filled so the ordering invariant (results[i].CompanyID ==
		// companies[i].ID) holds even for a company never picked up because
		// the session was stopped mid-run.
		results[i] = domain.FetchResult{CompanyID: c.ID, CompanyName: c.Name, Outcome: domain.OutcomeError, Error: "not scraped: session stopped"}
	}
	if len(companies) == 0 {
		return results, nil
	}

	session, err := o.repo.CreateSession(ctx, len(companies), trigger)
	if err != nil {
		return nil, err
	}

	maxParallel := o.defaultMaxParallel
	if raw, ok, gerr := o.repo.GetSetting(ctx, "scraper_max_parallel_scrapes"); gerr == nil {
		maxParallel = ClampMaxParallelScrapes(raw, ok, o.defaultMaxParallel)
	}
	if maxParallel > len(companies) {
		maxParallel = len(companies)
	}

	o.logger.BatchStart(session.ID, len(companies), maxParallel)

	// cursor is the shared work-stealing index: each worker claims the next
	// company atomically under progressMu, so no company is scraped twice
	// and no ordering assumption is placed on worker scheduling.
	cursor := 0
	var progressMu sync.Mutex
	counters := domain.SessionCounters{}
	outcomes := make([]domain.ScraperOutcome, 0, len(companies))

	var wg sync.WaitGroup
	for w := 0; w < maxParallel; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				progressMu.Lock()
				if cursor >= len(companies) {
					progressMu.Unlock()
					return
				}
				inProgress, _ := o.repo.IsSessionInProgress(ctx, session.ID)
				if !inProgress {
					progressMu.Unlock()
					return
				}
				idx := cursor
				cursor++
				progressMu.Unlock()

				company := companies[idx]
				result := o.ScrapeCompany(ctx, company.ID, ScrapeCompanyParams{SessionID: session.ID, TriggerSource: trigger})
				results[idx] = result

				// Single-writer serialization of progress updates: the
				// counters mutation AND the repository call both happen while
				// still holding progressMu, so UpdateSessionProgress is never
				// invoked concurrently for the same session, and two workers
				// finishing close together can never race their writes out of
				// order.
				progressMu.Lock()
				counters.CompaniesCompleted++
				counters.TotalJobsFound += result.JobsFound
				counters.TotalJobsAdded += result.JobsAdded
				counters.TotalJobsFiltered += result.JobsFiltered
				counters.TotalJobsArchived += result.JobsArchived
				outcomes = append(outcomes, result.Outcome)
				snapshot := counters
				_ = o.repo.UpdateSessionProgress(ctx, session.ID, ports.SessionPatch{
					CompaniesCompleted: &snapshot.CompaniesCompleted,
					TotalJobsFound:     &snapshot.TotalJobsFound,
					TotalJobsAdded:     &snapshot.TotalJobsAdded,
					TotalJobsFiltered:  &snapshot.TotalJobsFiltered,
					TotalJobsArchived:  &snapshot.TotalJobsArchived,
				})
				progressMu.Unlock()
			}
		}()
	}
	wg.Wait()

	status := domain.SessionStatusForOutcomes(outcomes)
	if len(outcomes) < len(companies) {
		// The session was stopped mid-run (IsSessionInProgress went false)
		// before every company was picked up.
		status = domain.SessionStopped
	}
	_ = o.repo.CompleteSession(ctx, session.ID, status)
	o.logger.BatchComplete(session.ID, status, time.Since(start))

	return results, nil
}
