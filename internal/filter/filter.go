// Package filter applies the operator's country/city/title-keyword
// predicates to scraped jobs as the late pass the orchestrator runs on
// deduplicated jobs. No adapter in this module calls it to drop listing
// records early.
package filter

import (
	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/normalize"
)

// Breakdown reports how many jobs passed or failed each predicate axis.
// Rejection on any predicate short-circuits the remaining ones for that job
// (§4.3): a job failing country is counted under failedCountry only.
type Breakdown struct {
	PassedCountry int
	FailedCountry int
	PassedCity    int
	FailedCity    int
	PassedTitle   int
	FailedTitle   int
	FinalCount    int
}

// HasEarlyFilters reports whether any predicate is actually set; it is a
// package-level wrapper around domain.JobFilters.HasEarlyFilters.
func HasEarlyFilters(f domain.JobFilters) bool {
	return f.HasEarlyFilters()
}

// Apply implements applyFilters (§4.3): returns the kept jobs and a
// breakdown of why the rest were dropped.
func Apply(jobs []domain.ScrapedJob, f domain.JobFilters) (kept []domain.ScrapedJob, dropped int, b Breakdown) {
	kept = make([]domain.ScrapedJob, 0, len(jobs))
	for _, j := range jobs {
		if !normalize.MatchesCountry(j.Location, f.Country) {
			b.FailedCountry++
			dropped++
			continue
		}
		b.PassedCountry++

		if !normalize.MatchesCity(j.Location, f.City) {
			b.FailedCity++
			dropped++
			continue
		}
		b.PassedCity++

		if !normalize.MatchesTitleKeywords(j.Title, f.TitleKeywords) {
			b.FailedTitle++
			dropped++
			continue
		}
		b.PassedTitle++

		kept = append(kept, j)
	}
	b.FinalCount = len(kept)
	return kept, dropped, b
}
