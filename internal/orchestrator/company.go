// Package orchestrator implements the Scrape Orchestrator (§4.8): the
// per-company pipeline (fetch -> reopen -> archive -> dedupe -> hydrate ->
// filter -> insert -> log -> match hand-off) and the batch driver around
// it. Grounded on the teacher's own orchestration style
// (internal/scrape/run_scrape.go's errgroup fan-out,
// internal/scrape/ats_runner.go's per-source log lines), generalized from
// a fixed two-source poll into the full company-scoped pipeline the spec
// describes.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"jobscrapecore/internal/dedup"
	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/filter"
	"jobscrapecore/internal/ports"
	"jobscrapecore/internal/registry"
)

// Orchestrator is constructed with its dependencies injected as interface
// types (§9 "resolve by dependency injection via interface types, not
// concrete modules").
type Orchestrator struct {
	repo     ports.Repository
	registry *registry.Registry
	matcher  ports.Matcher
	logger   ports.Logger

	defaultFilters         domain.JobFilters
	defaultMaxParallel     int
	titleSimilarityThresh  float64
}

// Config carries the orchestrator's operator-controllable defaults.
type Config struct {
	DefaultFilters           domain.JobFilters
	DefaultMaxParallelScrapes int
	TitleSimilarityThreshold float64
}

// New builds an Orchestrator.
func New(repo ports.Repository, reg *registry.Registry, matcher ports.Matcher, logger ports.Logger, cfg Config) *Orchestrator {
	if cfg.DefaultMaxParallelScrapes <= 0 {
		cfg.DefaultMaxParallelScrapes = 3
	}
	if cfg.TitleSimilarityThreshold <= 0 {
		cfg.TitleSimilarityThreshold = dedup.DefaultTitleSimilarityThreshold
	}
	return &Orchestrator{
		repo:                  repo,
		registry:              reg,
		matcher:               matcher,
		logger:                logger,
		defaultFilters:        cfg.DefaultFilters,
		defaultMaxParallel:    cfg.DefaultMaxParallelScrapes,
		titleSimilarityThresh: cfg.TitleSimilarityThreshold,
	}
}

// ScrapeCompanyParams is the optional per-call override set for ScrapeCompany.
type ScrapeCompanyParams struct {
	SessionID     string
	TriggerSource domain.TriggerSource
	Filters       *domain.JobFilters
}

// ScrapeCompany implements the per-company algorithm (§4.8, steps 1-16).
func (o *Orchestrator) ScrapeCompany(ctx context.Context, companyID int64, params ScrapeCompanyParams) domain.FetchResult {
	start := time.Now()

	company, err := o.repo.GetCompany(ctx, companyID)
	if err != nil || company == nil {
		return domain.FetchResult{CompanyID: companyID, Success: false, Outcome: domain.OutcomeError, Error: "company not found"}
	}

	// Step 1: custom platform is a no-op success.
	if company.Platform == domain.PlatformCustom {
		logID, _ := o.repo.CreateScrapingLog(ctx, domain.ScrapingLog{
			CompanyID: companyID, Status: domain.LogSuccess, CreatedAt: time.Now(),
		})
		return domain.FetchResult{
			CompanyID: companyID, CompanyName: company.Name, Success: true,
			Outcome: domain.OutcomeSuccess, Platform: domain.PlatformCustom, LogID: logID, Duration: time.Since(start),
		}
	}

	// Step 2: existing jobs + hydration-eligible external id set.
	existingJobs, err := o.repo.GetExistingJobs(ctx, companyID)
	if err != nil {
		return o.failCompany(ctx, company, start, fmt.Errorf("load existing jobs: %w", err))
	}
	existingExternalIDs := make(map[string]struct{})
	for _, e := range existingJobs {
		if e.Description != "" && e.ExternalID != "" {
			existingExternalIDs[e.ExternalID] = struct{}{}
		}
	}

	// Step 3: merge filters — call params over orchestrator defaults over settings.
	filters := o.resolveFilters(ctx, params.Filters)

	// Step 4: call the registry.
	o.logger.Start(company.Name, company.Platform)
	result := o.registry.Scrape(ctx, company.CareerURL, company.Platform, domain.ScrapeOptions{
		BoardToken:          company.BoardToken,
		Filters:             filters,
		ExistingExternalIDs: existingExternalIDs,
	})

	// Step 5: adapter error -> error log row + error FetchResult.
	if result.Outcome == domain.OutcomeError {
		o.logger.Error(company.Name, company.Platform, fmt.Errorf("%s", result.Error))
		logID, _ := o.repo.CreateScrapingLog(ctx, domain.ScrapingLog{
			CompanyID: companyID, Status: domain.LogError, Error: result.Error, CreatedAt: time.Now(),
		})
		return domain.FetchResult{
			CompanyID: companyID, CompanyName: company.Name, Success: false, Outcome: domain.OutcomeError,
			Platform: company.Platform, LogID: logID, Duration: time.Since(start), Error: result.Error,
		}
	}
	if result.EarlyFiltered != nil && result.EarlyFiltered.Total > 0 {
		o.logger.FetchedWithEarlyFilter(company.Name, company.Platform, len(result.Jobs), result.EarlyFiltered.Total)
	} else {
		o.logger.Fetched(company.Name, company.Platform, len(result.Jobs))
	}

	// Step 6: declared open ids, or the jobs' external ids when none are declared.
	openExternalIDs := dedupeStrings(result.OpenExternalIDs)
	if len(openExternalIDs) == 0 {
		ids := make([]string, 0, len(result.Jobs))
		for _, j := range result.Jobs {
			ids = append(ids, j.ExternalID)
		}
		openExternalIDs = dedupeStrings(ids)
	}

	// Step 7: reopen.
	if len(openExternalIDs) > 0 {
		if _, err := o.repo.ReopenScraperArchivedJobs(ctx, companyID, openExternalIDs); err != nil {
			return o.failCompany(ctx, company, start, fmt.Errorf("reopen archived jobs: %w", err))
		}
	}

	// Step 8: archive, only when the enumeration was complete.
	jobsArchived := 0
	if result.OpenExternalIDsComplete {
		jobsArchived, err = o.archive(ctx, company, existingJobs, openExternalIDs)
		if err != nil {
			return o.failCompany(ctx, company, start, fmt.Errorf("archive missing jobs: %w", err))
		}
	}

	// Step 9: dedupe.
	dedupResult := dedup.BatchDeduplicate(result.Jobs, existingJobs, o.titleSimilarityThresh)

	// Step 10: hydrate existing rows whose description can now be filled in.
	jobsUpdated, err := o.hydrateExisting(ctx, dedupResult.Duplicates)
	if err != nil {
		return o.failCompany(ctx, company, start, fmt.Errorf("hydrate existing jobs: %w", err))
	}

	// Step 11: late filter on the new jobs subset.
	kept, jobsFilteredLate, breakdown := filter.Apply(dedupResult.New, filters)
	o.logger.Filtered(company.Name, company.Platform, breakdownString(breakdown))

	// Step 12: insert survivors.
	insertedIDs, err := o.repo.InsertJobs(ctx, companyID, kept)
	if err != nil {
		return o.failCompany(ctx, company, start, fmt.Errorf("insert jobs: %w", err))
	}

	// Step 13: company metadata.
	patch := ports.CompanyPatch{}
	now := time.Now()
	patch.LastScrapedAt = &now
	if result.DetectedBoardToken != "" && company.BoardToken == "" {
		patch.BoardToken = &result.DetectedBoardToken
	}
	if err := o.repo.UpdateCompany(ctx, companyID, patch); err != nil {
		return o.failCompany(ctx, company, start, fmt.Errorf("update company: %w", err))
	}

	// Step 14: log row.
	jobsFiltered := jobsFilteredLate
	if result.EarlyFiltered != nil {
		jobsFiltered += result.EarlyFiltered.Total
	}
	logStatus := domain.LogSuccess
	if result.Outcome != domain.OutcomeSuccess {
		logStatus = domain.LogPartial
	}
	logID, err := o.repo.CreateScrapingLog(ctx, domain.ScrapingLog{
		CompanyID: companyID, Status: logStatus,
		JobsFound: len(result.Jobs), JobsAdded: len(insertedIDs), JobsUpdated: jobsUpdated,
		JobsFiltered: jobsFiltered, JobsArchived: jobsArchived, CreatedAt: time.Now(),
	})
	if err != nil {
		return o.failCompany(ctx, company, start, fmt.Errorf("write scraping log: %w", err))
	}
	o.logger.Added(company.Name, company.Platform, len(insertedIDs), jobsUpdated, jobsArchived)

	// Step 15: matcher hand-off, fire-and-forget.
	o.handOffToMatcher(context.WithoutCancel(ctx), logID, companyID, insertedIDs, params.TriggerSource)

	outcome := result.Outcome
	return domain.FetchResult{
		CompanyID: companyID, CompanyName: company.Name, Success: outcome == domain.OutcomeSuccess,
		Outcome: outcome, JobsFound: len(result.Jobs), JobsAdded: len(insertedIDs), JobsUpdated: jobsUpdated,
		JobsFiltered: jobsFiltered, JobsArchived: jobsArchived, Platform: company.Platform, LogID: logID,
		Duration: time.Since(start),
	}
}

func (o *Orchestrator) failCompany(ctx context.Context, company *domain.Company, start time.Time, err error) domain.FetchResult {
	o.logger.Error(company.Name, company.Platform, err)
	logID, _ := o.repo.CreateScrapingLog(ctx, domain.ScrapingLog{
		CompanyID: company.ID, Status: domain.LogError, Error: err.Error(), CreatedAt: time.Now(),
	})
	return domain.FetchResult{
		CompanyID: company.ID, CompanyName: company.Name, Success: false, Outcome: domain.OutcomeError,
		Platform: company.Platform, LogID: logID, Duration: time.Since(start), Error: err.Error(),
	}
}

// archive implements §4.8 step 8, including the Uber conservative guard.
func (o *Orchestrator) archive(ctx context.Context, company *domain.Company, existingJobs []domain.ExistingJob, openExternalIDs []string) (int, error) {
	open := make(map[string]struct{}, len(openExternalIDs))
	for _, id := range openExternalIDs {
		open[id] = struct{}{}
	}

	if company.Platform == domain.PlatformUber {
		archivableCount := 0
		missing := 0
		for _, e := range existingJobs {
			if !isArchivable(e.Status) {
				continue
			}
			archivableCount++
			if _, ok := open[e.ExternalID]; !ok {
				missing++
			}
		}
		threshold := int(math.Max(5, math.Ceil(0.05*float64(archivableCount))))
		if missing > threshold {
			return 0, nil
		}
	}

	return o.repo.ArchiveMissingJobs(ctx, company.ID, openExternalIDs, domain.ArchivableStatuses)
}

func isArchivable(status domain.JobStatus) bool {
	for _, s := range domain.ArchivableStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// hydrateExisting implements §4.8 step 10 / §8 "Hydration safety": only
// externalId/url matches with a non-empty, differing scraped description
// are ever passed to the repository's batch update.
func (o *Orchestrator) hydrateExisting(ctx context.Context, duplicates []dedup.Duplicate) (int, error) {
	patches := make([]ports.HydrationPatch, 0)
	for _, d := range duplicates {
		if d.MatchReason != dedup.MatchExternalID && d.MatchReason != dedup.MatchURL {
			continue
		}
		if d.Job.Description == "" || d.Job.Description == d.ExistingDescription {
			continue
		}
		patches = append(patches, ports.HydrationPatch{ExistingJobID: d.ExistingJobID, Job: d.Job})
	}
	if len(patches) == 0 {
		return 0, nil
	}
	return o.repo.UpdateExistingJobsFromScrape(ctx, patches)
}

// handOffToMatcher implements §4.8 step 15. Errors never reach the caller's
// already-returned FetchResult; they are recorded on the log row only.
func (o *Orchestrator) handOffToMatcher(ctx context.Context, logID int64, companyID int64, insertedIDs []int64, trigger domain.TriggerSource) {
	if len(insertedIDs) == 0 {
		return
	}
	cfg, err := o.matcher.GetMatcherConfig(ctx)
	if err != nil || !cfg.AutoMatchAfterScrape {
		return
	}

	matchable, err := o.repo.GetMatchableJobIDs(ctx, insertedIDs)
	if err != nil || len(matchable) == 0 {
		return
	}

	pending := domain.MatcherPending
	total := len(matchable)
	_ = o.repo.UpdateScrapingLog(ctx, logID, domain.ScrapingLogPatch{MatcherStatus: &pending, MatcherJobsTotal: &total})

	go func() {
		start := time.Now()
		inProgress := domain.MatcherInProgress
		_ = o.repo.UpdateScrapingLog(ctx, logID, domain.ScrapingLogPatch{MatcherStatus: &inProgress})

		outcome, err := o.matcher.MatchWithTracking(ctx, matchable, ports.MatchOptions{
			TriggerSource: trigger,
			CompanyID:     companyID,
			OnProgress: func(completed int) {
				_ = o.repo.UpdateScrapingLog(ctx, logID, domain.ScrapingLogPatch{MatcherJobsCompleted: &completed})
			},
		})

		terminal := domain.MatcherCompleted
		errCount := 0
		if err != nil || (outcome.Failed > 0 && outcome.Succeeded == 0) {
			terminal = domain.MatcherFailed
		}
		if err == nil {
			errCount = outcome.Failed
		}
		duration := time.Since(start)
		_ = o.repo.UpdateScrapingLog(ctx, logID, domain.ScrapingLogPatch{
			MatcherStatus: &terminal, MatcherErrorCount: &errCount, MatcherDuration: &duration,
		})
	}()
}

func (o *Orchestrator) resolveFilters(ctx context.Context, override *domain.JobFilters) domain.JobFilters {
	if override != nil {
		return *override
	}

	var f domain.JobFilters
	if v, ok, _ := o.repo.GetSetting(ctx, "scraper_filter_country"); ok && v != "" {
		f.Country = v
	}
	if v, ok, _ := o.repo.GetSetting(ctx, "scraper_filter_city"); ok && v != "" {
		f.City = v
	}
	if v, ok, _ := o.repo.GetSetting(ctx, "scraper_filter_title_keywords"); ok && v != "" {
		var kws []string
		if json.Unmarshal([]byte(v), &kws) == nil {
			f.TitleKeywords = kws
		}
	}
	if o.defaultFilters.Country != "" {
		f.Country = o.defaultFilters.Country
	}
	if o.defaultFilters.City != "" {
		f.City = o.defaultFilters.City
	}
	if len(o.defaultFilters.TitleKeywords) > 0 {
		f.TitleKeywords = o.defaultFilters.TitleKeywords
	}
	return f
}

// ClampMaxParallelScrapes implements the settings-parse-and-clamp rule from
// §4.8 step 3: missing, unparsable or outside [1,10] -> defaultValue (3 when
// defaultValue is not positive); otherwise the parsed value unchanged.
func ClampMaxParallelScrapes(raw string, ok bool, defaultValue int) int {
	if defaultValue <= 0 {
		defaultValue = 3
	}
	if !ok || raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	if n < 1 || n > 10 {
		return defaultValue
	}
	return n
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func breakdownString(b filter.Breakdown) string {
	return fmt.Sprintf("passedCountry=%d failedCountry=%d passedCity=%d failedCity=%d passedTitle=%d failedTitle=%d finalCount=%d",
		b.PassedCountry, b.FailedCountry, b.PassedCity, b.FailedCity, b.PassedTitle, b.FailedTitle, b.FinalCount)
}
