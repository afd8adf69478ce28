// Package dedup implements the tiered job-matching pass described in §4.4:
// externalId exact match, then URL exact match, then Dice-coefficient title
// similarity against a threshold, with a synthetic in-batch comparison set
// so two identical scraped jobs in one batch also dedupe against each other.
package dedup

import (
	"strings"

	"github.com/hbollon/go-edlib"

	"jobscrapecore/internal/domain"
)

// DefaultTitleSimilarityThreshold is titleSimilarityThreshold from §4.4.
const DefaultTitleSimilarityThreshold = 0.9

// MatchReason names which tier matched a duplicate.
type MatchReason string

const (
	MatchExternalID      MatchReason = "externalId"
	MatchURL             MatchReason = "url"
	MatchTitleSimilarity MatchReason = "titleSimilarity"
)

// Duplicate is a scraped job the deduplicator matched against an existing
// (or synthetic in-batch) row.
type Duplicate struct {
	Job                 domain.ScrapedJob
	ExistingJobID       int64
	ExistingDescription string
	Similarity          float64
	MatchReason         MatchReason
}

// Result is the output of BatchDeduplicate: new and duplicate jobs,
// satisfying the dedup-totality invariant |New|+|Duplicates| = |scrapedBatch|.
type Result struct {
	New        []domain.ScrapedJob
	Duplicates []Duplicate
}

// comparisonRow is the internal tagged variant from the §9 design note: a
// known existing row carries its real id; a synthetic in-batch row carries
// none, since public Duplicate records never expose a synthetic id.
type comparisonRow struct {
	id          int64
	synthetic   bool
	externalID  string
	url         string
	title       string
	description string
}

// BatchDeduplicate implements batchDeduplicate (§4.4). existingJobs is the
// company's current repository view; threshold defaults to
// DefaultTitleSimilarityThreshold when <= 0.
func BatchDeduplicate(scrapedBatch []domain.ScrapedJob, existingJobs []domain.ExistingJob, threshold float64) Result {
	if threshold <= 0 {
		threshold = DefaultTitleSimilarityThreshold
	}

	rows := make([]comparisonRow, 0, len(existingJobs))
	for _, e := range existingJobs {
		rows = append(rows, comparisonRow{
			id:          e.ID,
			externalID:  e.ExternalID,
			url:         e.URL,
			title:       strings.ToLower(e.Title),
			description: e.Description,
		})
	}

	result := Result{
		New:        make([]domain.ScrapedJob, 0, len(scrapedBatch)),
		Duplicates: make([]Duplicate, 0),
	}

	for _, job := range scrapedBatch {
		if dup, ok := matchExisting(job, rows, threshold); ok {
			result.Duplicates = append(result.Duplicates, dup)
			continue
		}

		result.New = append(result.New, job)
		// Append a synthetic sentinel row so a later job in this same batch
		// that is itself identical dedupes against this one too (§4.4 step 4).
		rows = append(rows, comparisonRow{
			synthetic:  true,
			externalID: job.ExternalID,
			url:        job.URL,
			title:      strings.ToLower(job.Title),
		})
	}

	return result
}

func matchExisting(job domain.ScrapedJob, rows []comparisonRow, threshold float64) (Duplicate, bool) {
	for _, r := range rows {
		if job.ExternalID != "" && r.externalID == job.ExternalID {
			return Duplicate{Job: job, ExistingJobID: r.id, ExistingDescription: r.description, Similarity: 1, MatchReason: MatchExternalID}, true
		}
	}
	for _, r := range rows {
		if job.URL != "" && r.url == job.URL {
			return Duplicate{Job: job, ExistingJobID: r.id, ExistingDescription: r.description, Similarity: 1, MatchReason: MatchURL}, true
		}
	}

	lowTitle := strings.ToLower(job.Title)
	var best comparisonRow
	bestSim := 0.0
	for _, r := range rows {
		sim, err := edlib.StringsSimilarity(lowTitle, r.title, edlib.Dice)
		if err != nil {
			continue
		}
		if sim > bestSim {
			bestSim = sim
			best = r
		}
	}
	if bestSim > threshold {
		return Duplicate{Job: job, ExistingJobID: best.id, ExistingDescription: best.description, Similarity: bestSim, MatchReason: MatchTitleSimilarity}, true
	}
	return Duplicate{}, false
}
