package orchestrator

import (
	"context"
	"sync"
	"time"

	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/ports"
)

// fakeRepo is an in-memory ports.Repository test double.
type fakeRepo struct {
	mu sync.Mutex

	companies    map[int64]*domain.Company
	existingJobs map[int64][]domain.ExistingJob
	settings     map[string]string

	sessions       map[string]*domain.Session
	sessionStopped map[string]bool
	logs           []domain.ScrapingLog
	nextLogID      int64
	nextSessionID  int

	archivedCalls []archiveCall
	reopenedCalls []reopenCall
	insertedCalls []insertCall
	hydrateCalls  []ports.HydrationPatch

	maxObservedConcurrent int
	currentConcurrent     int
	concMu                sync.Mutex

	progressMu              sync.Mutex
	progressCompletedOrder  []int
	progressConcurrentCalls int
	maxProgressConcurrent   int
}

type archiveCall struct {
	companyID int64
	open      []string
}

type reopenCall struct {
	companyID int64
	open      []string
}

type insertCall struct {
	companyID int64
	jobs      []domain.ScrapedJob
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		companies:      make(map[int64]*domain.Company),
		existingJobs:   make(map[int64][]domain.ExistingJob),
		settings:       make(map[string]string),
		sessions:       make(map[string]*domain.Session),
		sessionStopped: make(map[string]bool),
	}
}

func (f *fakeRepo) GetCompany(ctx context.Context, id int64) (*domain.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) GetActiveCompanies(ctx context.Context) ([]domain.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Company, 0, len(f.companies))
	for _, c := range f.companies {
		if c.Active {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetExistingJobs(ctx context.Context, companyID int64) ([]domain.ExistingJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ExistingJob(nil), f.existingJobs[companyID]...), nil
}

func (f *fakeRepo) GetSetting(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.settings[key]
	return v, ok, nil
}

func (f *fakeRepo) InsertJobs(ctx context.Context, companyID int64, jobs []domain.ScrapedJob) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, len(jobs))
	for i := range jobs {
		ids[i] = int64(1000 + len(f.insertedCalls)*100 + i)
	}
	f.insertedCalls = append(f.insertedCalls, insertCall{companyID: companyID, jobs: jobs})
	return ids, nil
}

func (f *fakeRepo) UpdateExistingJobsFromScrape(ctx context.Context, patches []ports.HydrationPatch) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hydrateCalls = append(f.hydrateCalls, patches...)
	return len(patches), nil
}

func (f *fakeRepo) ReopenScraperArchivedJobs(ctx context.Context, companyID int64, externalIDs []string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reopenedCalls = append(f.reopenedCalls, reopenCall{companyID: companyID, open: externalIDs})
	return 0, nil
}

func (f *fakeRepo) ArchiveMissingJobs(ctx context.Context, companyID int64, openExternalIDs []string, archivable []domain.JobStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archivedCalls = append(f.archivedCalls, archiveCall{companyID: companyID, open: openExternalIDs})

	open := make(map[string]struct{}, len(openExternalIDs))
	for _, id := range openExternalIDs {
		open[id] = struct{}{}
	}
	archived := 0
	for _, e := range f.existingJobs[companyID] {
		if !isArchivable(e.Status) {
			continue
		}
		if _, ok := open[e.ExternalID]; !ok {
			archived++
		}
	}
	return archived, nil
}

func (f *fakeRepo) UpdateCompany(ctx context.Context, id int64, patch ports.CompanyPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.companies[id]; ok && patch.BoardToken != nil {
		c.BoardToken = *patch.BoardToken
	}
	return nil
}

func (f *fakeRepo) CreateSession(ctx context.Context, companiesTotal int, trigger domain.TriggerSource) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextSessionID++
	id := "sess-" + time.Now().String() + string(rune(f.nextSessionID))
	s := &domain.Session{ID: id, TriggerSource: trigger, Status: domain.SessionInProgress, CompaniesTotal: companiesTotal}
	f.sessions[id] = s
	return s, nil
}

func (f *fakeRepo) IsSessionInProgress(ctx context.Context, sessionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.sessionStopped[sessionID], nil
}

func (f *fakeRepo) StopSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionStopped[sessionID] = true
	return nil
}

// UpdateSessionProgress records call overlap and ordering so tests can
// assert the caller actually serializes these writes per session: a real
// repository write is slow enough that two racing calls will overlap in
// wall-clock time if the caller doesn't hold a lock across the call.
func (f *fakeRepo) UpdateSessionProgress(ctx context.Context, sessionID string, patch ports.SessionPatch) error {
	f.progressMu.Lock()
	f.progressConcurrentCalls++
	if f.progressConcurrentCalls > f.maxProgressConcurrent {
		f.maxProgressConcurrent = f.progressConcurrentCalls
	}
	f.progressMu.Unlock()

	time.Sleep(time.Millisecond)

	f.progressMu.Lock()
	if patch.CompaniesCompleted != nil {
		f.progressCompletedOrder = append(f.progressCompletedOrder, *patch.CompaniesCompleted)
	}
	f.progressConcurrentCalls--
	f.progressMu.Unlock()
	return nil
}

func (f *fakeRepo) CompleteSession(ctx context.Context, sessionID string, status domain.SessionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[sessionID]; ok {
		s.Status = status
	}
	return nil
}

func (f *fakeRepo) CreateScrapingLog(ctx context.Context, row domain.ScrapingLog) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextLogID++
	row.ID = f.nextLogID
	f.logs = append(f.logs, row)
	return row.ID, nil
}

func (f *fakeRepo) UpdateScrapingLog(ctx context.Context, id int64, patch domain.ScrapingLogPatch) error {
	return nil
}

func (f *fakeRepo) GetMatchableJobIDs(ctx context.Context, ids []int64) ([]int64, error) {
	return nil, nil
}

func (f *fakeRepo) AcquireSchedulerLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	return true, nil
}
func (f *fakeRepo) RefreshSchedulerLock(ctx context.Context, name, holder string, ttl time.Duration) error {
	return nil
}
func (f *fakeRepo) ReleaseSchedulerLock(ctx context.Context, name, holder string) error { return nil }

// trackConcurrencyStart and trackConcurrencyEnd serve as a stubRegistryAdapter's
// onStart/onEnd hooks to record the peak number of simultaneously in-flight
// calls, used by the max-parallel-clamp test.
func (f *fakeRepo) trackConcurrencyStart() {
	f.concMu.Lock()
	f.currentConcurrent++
	if f.currentConcurrent > f.maxObservedConcurrent {
		f.maxObservedConcurrent = f.currentConcurrent
	}
	f.concMu.Unlock()
}

func (f *fakeRepo) trackConcurrencyEnd() {
	f.concMu.Lock()
	f.currentConcurrent--
	f.concMu.Unlock()
}

// fakeLogger is a no-op ports.Logger test double.
type fakeLogger struct{}

func (fakeLogger) Start(string, domain.Platform)                                 {}
func (fakeLogger) Fetched(string, domain.Platform, int)                          {}
func (fakeLogger) FetchedWithEarlyFilter(string, domain.Platform, int, int)       {}
func (fakeLogger) Filtered(string, domain.Platform, string)                      {}
func (fakeLogger) Added(string, domain.Platform, int, int, int)                  {}
func (fakeLogger) Error(string, domain.Platform, error)                          {}
func (fakeLogger) BatchStart(string, int, int)                                   {}
func (fakeLogger) BatchComplete(string, domain.SessionStatus, time.Duration)     {}

// fakeMatcher is a ports.Matcher test double with auto-match disabled by default.
type fakeMatcher struct{ enabled bool }

func (m fakeMatcher) GetMatcherConfig(ctx context.Context) (ports.MatcherConfig, error) {
	return ports.MatcherConfig{AutoMatchAfterScrape: m.enabled}, nil
}

func (m fakeMatcher) MatchWithTracking(ctx context.Context, jobIDs []int64, opts ports.MatchOptions) (ports.MatchOutcome, error) {
	return ports.MatchOutcome{Total: len(jobIDs), Succeeded: len(jobIDs)}, nil
}

// stubRegistryAdapter lets tests control ScraperResult per company URL.
type stubRegistryAdapter struct {
	platform domain.Platform
	result   domain.ScraperResult
	delay    time.Duration
	onStart  func()
	onEnd    func()
}

func (s stubRegistryAdapter) Platform() domain.Platform       { return s.platform }
func (s stubRegistryAdapter) Validate(url string) bool        { return true }
func (s stubRegistryAdapter) ExtractIdentifier(string) string { return "" }
func (s stubRegistryAdapter) Scrape(ctx context.Context, url string, opts domain.ScrapeOptions) domain.ScraperResult {
	if s.onStart != nil {
		s.onStart()
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.onEnd != nil {
		s.onEnd()
	}
	return s.result
}
