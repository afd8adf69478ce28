package domain

import "time"

// TriggerSource identifies what caused a scrape session to start.
type TriggerSource string

const (
	TriggerManual    TriggerSource = "manual"
	TriggerScheduler TriggerSource = "scheduler"
	TriggerAutoMatch TriggerSource = "auto_match"
)

// SessionStatus is the lifecycle state of a batch scrape session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionPartial    SessionStatus = "partial"
	SessionFailed     SessionStatus = "failed"
	SessionStopped    SessionStatus = "stopped"
)

// SessionCounters accumulate as a batch run progresses.
type SessionCounters struct {
	CompaniesCompleted int
	TotalJobsFound      int
	TotalJobsAdded      int
	TotalJobsFiltered   int
	TotalJobsArchived   int
}

// Session is one batch (or single-company) scrape run.
type Session struct {
	ID             string
	TriggerSource  TriggerSource
	Status         SessionStatus
	CompaniesTotal int
	Counters       SessionCounters
	CreatedAt      time.Time
}

// MatcherStatus is the sub-state of the AI match hand-off for one ScrapingLog row.
type MatcherStatus string

const (
	MatcherNone       MatcherStatus = ""
	MatcherPending    MatcherStatus = "pending"
	MatcherInProgress MatcherStatus = "in_progress"
	MatcherCompleted  MatcherStatus = "completed"
	MatcherFailed     MatcherStatus = "failed"
)

// LogStatus is the per-company result status recorded on a ScrapingLog row.
type LogStatus string

const (
	LogSuccess LogStatus = "success"
	LogPartial LogStatus = "partial"
	LogError   LogStatus = "error"
)

// ScrapingLog is the per-company, per-session result row.
type ScrapingLog struct {
	ID                   int64
	SessionID            string
	CompanyID            int64
	Status               LogStatus
	JobsFound            int
	JobsAdded            int
	JobsUpdated          int
	JobsFiltered         int
	JobsArchived         int
	Error                string
	MatcherStatus        MatcherStatus
	MatcherJobsTotal     int
	MatcherJobsCompleted int
	MatcherErrorCount    int
	MatcherDuration      time.Duration
	CreatedAt            time.Time
}

// ScrapingLogPatch carries partial updates to an existing ScrapingLog row.
type ScrapingLogPatch struct {
	Status               *LogStatus
	JobsFound            *int
	JobsAdded            *int
	JobsUpdated          *int
	JobsFiltered         *int
	JobsArchived         *int
	Error                *string
	MatcherStatus        *MatcherStatus
	MatcherJobsTotal     *int
	MatcherJobsCompleted *int
	MatcherErrorCount    *int
	MatcherDuration      *time.Duration
}

// FetchResult is returned from a single-company scrape, both standalone and
// as part of a batch.
type FetchResult struct {
	CompanyID   int64
	CompanyName string
	Success     bool
	Outcome     ScraperOutcome
	JobsFound   int
	JobsAdded   int
	JobsUpdated int
	JobsFiltered int
	JobsArchived int
	Platform    Platform
	LogID       int64
	Duration    time.Duration
	Error       string
}

// SessionStatusForOutcomes computes the terminal batch session status from
// the set of per-company outcomes observed (§3 "Session status mapping").
func SessionStatusForOutcomes(outcomes []ScraperOutcome) SessionStatus {
	if len(outcomes) == 0 {
		return SessionCompleted
	}
	allSuccess, allError := true, true
	for _, o := range outcomes {
		if o != OutcomeSuccess {
			allSuccess = false
		}
		if o != OutcomeError {
			allError = false
		}
	}
	switch {
	case allSuccess:
		return SessionCompleted
	case allError:
		return SessionFailed
	default:
		return SessionPartial
	}
}
