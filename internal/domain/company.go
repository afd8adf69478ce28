package domain

// Company is a career-site target the orchestrator scrapes on a schedule.
type Company struct {
	ID         int64
	Name       string
	CareerURL  string
	Platform   Platform
	BoardToken string
	Active     bool
	LastScrapedAt *string
}

// JobStatus is the lifecycle state of a persisted job row.
type JobStatus string

const (
	JobStatusNew         JobStatus = "new"
	JobStatusViewed      JobStatus = "viewed"
	JobStatusInterested  JobStatus = "interested"
	JobStatusRejected    JobStatus = "rejected"
	JobStatusArchived    JobStatus = "archived"
	JobStatusApplied     JobStatus = "applied"
)

// ArchivableStatuses are the statuses the orchestrator is allowed to move to
// archived when a job disappears from a complete source enumeration.
var ArchivableStatuses = []JobStatus{
	JobStatusNew, JobStatusViewed, JobStatusInterested, JobStatusRejected,
}

// ExistingJob is the repository's view of a previously-scraped job for one company.
type ExistingJob struct {
	ID          int64
	ExternalID  string
	Title       string
	URL         string
	Status      JobStatus
	Description string
}

// JobFilters are the operator-chosen location/title predicates. The
// orchestrator applies them to deduplicated new jobs; adapters receive them
// in ScrapeOptions but none in this module drops raw listing records with
// them.
type JobFilters struct {
	Country       string
	City          string
	TitleKeywords []string
}

// HasEarlyFilters reports whether any predicate is set. No adapter in this
// module calls it.
func (f JobFilters) HasEarlyFilters() bool {
	return f.Country != "" || f.City != "" || len(f.TitleKeywords) > 0
}

// ScrapeOptions is passed by the orchestrator into registry.Scrape/adapter.Scrape.
type ScrapeOptions struct {
	BoardToken          string
	Filters             JobFilters
	ExistingExternalIDs map[string]struct{}
}
