// Package ports declares the external interfaces the orchestrator and
// adapters consume (§6): HTTP client, browser client, repository, matcher,
// and logger. Concrete bindings live in internal/httpclient,
// internal/browserclient, internal/store, and internal/logging. The only
// implementation in this package is NoopMatcher (noop_matcher.go).
package ports

import (
	"context"
	"io"
	"time"

	"jobscrapecore/internal/domain"
)

// RequestOptions configures a single HTTP call.
type RequestOptions struct {
	Timeout   time.Duration
	Retries   int
	BaseDelay time.Duration
	Headers   map[string]string
	Method    string
	Body      io.Reader
}

// Response is the uniform shape every HTTPClient call returns.
type Response struct {
	OK     bool
	Status int
	Text   func() (string, error)
	JSON   func(v any) error
}

// HTTPClient is the consumed HTTP transport (§6). Implementations retry
// transient failures automatically; 403/429 are surfaced to the caller
// rather than retried forever.
type HTTPClient interface {
	Get(ctx context.Context, url string, opts RequestOptions) (*Response, error)
	Post(ctx context.Context, url string, body []byte, opts RequestOptions) (*Response, error)
	Fetch(ctx context.Context, url string, opts RequestOptions) (*Response, error)
}

// BrowserSession is the bootstrap handshake returned by BrowserClient.
// It is immutable and may be passed by value.
type BrowserSession struct {
	BaseURL   string
	Cookies   []*Cookie
	CSRFToken string
	Domain    string
}

// Cookie is a minimal cookie representation independent of net/http so
// ports stays decoupled from any particular browser-automation library.
type Cookie struct {
	Name   string
	Value  string
	Domain string
}

// BrowserClient bootstraps a cookie/CSRF session for adapters that need
// one (Workday, Eightfold). Bootstrap is safe for concurrent use; Close
// releases the underlying browser process.
type BrowserClient interface {
	Bootstrap(ctx context.Context, url string) (*BrowserSession, error)
	Close() error
}

// SessionPatch carries partial mutations to a Session row.
type SessionPatch struct {
	CompaniesCompleted *int
	TotalJobsFound      *int
	TotalJobsAdded      *int
	TotalJobsFiltered   *int
	TotalJobsArchived   *int
}

// Repository is the consumed persistence contract (§6). All methods are
// I/O-blocking; the orchestrator additionally serializes its own
// per-session progress-update calls so repository writes are never
// concurrent for the same session.
type Repository interface {
	GetCompany(ctx context.Context, id int64) (*domain.Company, error)
	GetActiveCompanies(ctx context.Context) ([]domain.Company, error)
	GetExistingJobs(ctx context.Context, companyID int64) ([]domain.ExistingJob, error)
	GetSetting(ctx context.Context, key string) (string, bool, error)

	InsertJobs(ctx context.Context, companyID int64, jobs []domain.ScrapedJob) ([]int64, error)
	UpdateExistingJobsFromScrape(ctx context.Context, patches []HydrationPatch) (int, error)
	ReopenScraperArchivedJobs(ctx context.Context, companyID int64, externalIDs []string) (int, error)
	ArchiveMissingJobs(ctx context.Context, companyID int64, openExternalIDs []string, archivable []domain.JobStatus) (int, error)
	UpdateCompany(ctx context.Context, id int64, patch CompanyPatch) error

	CreateSession(ctx context.Context, companiesTotal int, trigger domain.TriggerSource) (*domain.Session, error)
	IsSessionInProgress(ctx context.Context, sessionID string) (bool, error)
	StopSession(ctx context.Context, sessionID string) error
	UpdateSessionProgress(ctx context.Context, sessionID string, patch SessionPatch) error
	CompleteSession(ctx context.Context, sessionID string, status domain.SessionStatus) error

	CreateScrapingLog(ctx context.Context, row domain.ScrapingLog) (int64, error)
	UpdateScrapingLog(ctx context.Context, id int64, patch domain.ScrapingLogPatch) error

	GetMatchableJobIDs(ctx context.Context, ids []int64) ([]int64, error)

	AcquireSchedulerLock(ctx context.Context, name string, holder string, ttl time.Duration) (bool, error)
	RefreshSchedulerLock(ctx context.Context, name string, holder string, ttl time.Duration) error
	ReleaseSchedulerLock(ctx context.Context, name string, holder string) error
}

// HydrationPatch is one row of the batch description-hydration update
// (§4.8 step 10): an existing job whose description should be replaced by
// the freshly scraped one.
type HydrationPatch struct {
	ExistingJobID int64
	Job           domain.ScrapedJob
}

// CompanyPatch carries the post-scrape company metadata update (§4.8 step 13).
type CompanyPatch struct {
	LastScrapedAt *time.Time
	BoardToken    *string
}

// MatcherConfig reports whether the orchestrator should hand scraped jobs
// off to the matcher automatically.
type MatcherConfig struct {
	AutoMatchAfterScrape bool
}

// MatchOptions carries the context the matcher logs its work under.
type MatchOptions struct {
	TriggerSource domain.TriggerSource
	CompanyID     int64
	OnProgress    func(completed int)
}

// MatchOutcome summarizes a completed match run.
type MatchOutcome struct {
	Total     int
	Succeeded int
	Failed    int
}

// Matcher is the consumed AI match engine (§6); only its interface is
// specified here, never its internals.
type Matcher interface {
	GetMatcherConfig(ctx context.Context) (MatcherConfig, error)
	MatchWithTracking(ctx context.Context, jobIDs []int64, opts MatchOptions) (MatchOutcome, error)
}

// Logger is the structured, company/platform-keyed logging contract (§6).
// The ScraperLogger verbs mirror the ones named in the spec.
type Logger interface {
	Start(company string, platform domain.Platform)
	Fetched(company string, platform domain.Platform, count int)
	FetchedWithEarlyFilter(company string, platform domain.Platform, count int, filtered int)
	Filtered(company string, platform domain.Platform, breakdown string)
	Added(company string, platform domain.Platform, added, updated, archived int)
	Error(company string, platform domain.Platform, err error)
	BatchStart(sessionID string, total int, workers int)
	BatchComplete(sessionID string, status domain.SessionStatus, duration time.Duration)
}
