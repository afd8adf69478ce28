package domain

import "time"

// LocationType is the normalized work arrangement of a job.
type LocationType string

const (
	LocationRemote LocationType = "remote"
	LocationHybrid LocationType = "hybrid"
	LocationOnsite LocationType = "onsite"
)

// DescriptionFormat tells consumers how to render ScrapedJob.Description.
type DescriptionFormat string

const (
	DescriptionPlain    DescriptionFormat = "plain"
	DescriptionMarkdown DescriptionFormat = "markdown"
	DescriptionHTML     DescriptionFormat = "html"
)

// EmploymentType is the normalized contract type of a job.
type EmploymentType string

const (
	EmploymentFullTime  EmploymentType = "full-time"
	EmploymentPartTime  EmploymentType = "part-time"
	EmploymentContract  EmploymentType = "contract"
	EmploymentIntern    EmploymentType = "intern"
	EmploymentTemporary EmploymentType = "temporary"
)

// SeniorityLevel is the normalized level of a job.
type SeniorityLevel string

const (
	SeniorityEntry   SeniorityLevel = "entry"
	SeniorityMid     SeniorityLevel = "mid"
	SenioritySenior  SeniorityLevel = "senior"
	SeniorityLead    SeniorityLevel = "lead"
	SeniorityManager SeniorityLevel = "manager"
)

// Salary is a best-effort normalized compensation range. Any field may be zero/empty.
type Salary struct {
	Min      float64
	Max      float64
	Currency string
	Raw      string
}

// ScrapedJob is the uniform record every platform adapter produces.
//
// ExternalID, Title, and URL are always set; every other field may be absent.
type ScrapedJob struct {
	ExternalID        string
	Title             string
	URL               string
	Location          string
	LocationType      LocationType
	Department        string
	Description       string
	DescriptionFormat DescriptionFormat
	EmploymentType    EmploymentType
	SeniorityLevel    SeniorityLevel
	PostedDate        *time.Time
	Salary            *Salary
}

// EarlyFilteredStats records how many raw listing records an adapter dropped
// before fetching details, broken down by which predicate rejected them.
type EarlyFilteredStats struct {
	Total   int
	Country int
	City    int
	Title   int
}

// ScraperOutcome is the coarse result classification of a single adapter run.
type ScraperOutcome string

const (
	OutcomeSuccess ScraperOutcome = "success"
	OutcomePartial ScraperOutcome = "partial"
	OutcomeError   ScraperOutcome = "error"
)

// ScraperResult is what every platform adapter returns from Scrape.
type ScraperResult struct {
	Success                 bool
	Outcome                 ScraperOutcome
	Jobs                    []ScrapedJob
	Error                   string
	DetectedBoardToken      string
	EarlyFiltered           *EarlyFilteredStats
	OpenExternalIDs         []string
	OpenExternalIDsComplete bool
}

// NewErrorResult builds the canonical error ScraperResult: empty jobs, the
// message carried on Error, and outcome=error.
func NewErrorResult(err error) ScraperResult {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return ScraperResult{
		Success: false,
		Outcome: OutcomeError,
		Error:   msg,
	}
}
