package filter

import (
	"testing"

	"jobscrapecore/internal/domain"
)

func job(title, location string) domain.ScrapedJob {
	return domain.ScrapedJob{ExternalID: "x", Title: title, URL: "u", Location: location}
}

func TestApplyNoFilters(t *testing.T) {
	jobs := []domain.ScrapedJob{job("SE", "Berlin"), job("SRE", "Remote")}
	kept, dropped, b := Apply(jobs, domain.JobFilters{})
	if len(kept) != 2 || dropped != 0 {
		t.Fatalf("expected all jobs kept with no filters, got kept=%d dropped=%d", len(kept), dropped)
	}
	if b.FinalCount != 2 {
		t.Errorf("FinalCount = %d, want 2", b.FinalCount)
	}
}

func TestApplyCountryFilterRemoteMatchesAny(t *testing.T) {
	jobs := []domain.ScrapedJob{job("SE", "Remote"), job("SRE", "Berlin, DE")}
	kept, dropped, b := Apply(jobs, domain.JobFilters{Country: "india"})
	if len(kept) != 1 || kept[0].Title != "SE" {
		t.Fatalf("expected only the remote job kept, got %+v", kept)
	}
	if dropped != 1 || b.FailedCountry != 1 || b.PassedCountry != 1 {
		t.Errorf("unexpected breakdown: %+v", b)
	}
}

func TestApplyShortCircuitsOnFirstFailure(t *testing.T) {
	jobs := []domain.ScrapedJob{job("Product Manager", "Berlin, DE")}
	_, dropped, b := Apply(jobs, domain.JobFilters{Country: "india", TitleKeywords: []string{"engineer"}})
	if dropped != 1 {
		t.Fatalf("expected drop, got dropped=%d", dropped)
	}
	if b.FailedCountry != 1 || b.FailedTitle != 0 {
		t.Errorf("failure should be counted under country only, got %+v", b)
	}
}

func TestApplyCityAndTitle(t *testing.T) {
	jobs := []domain.ScrapedJob{
		job("Senior Engineer", "London, UK"),
		job("Senior Engineer", "Manchester, UK"),
		job("Product Manager", "London, UK"),
	}
	kept, dropped, b := Apply(jobs, domain.JobFilters{City: "london", TitleKeywords: []string{"engineer"}})
	if len(kept) != 1 || dropped != 2 {
		t.Fatalf("expected exactly one survivor, got kept=%d dropped=%d", len(kept), dropped)
	}
	if b.FailedCity != 1 || b.FailedTitle != 1 {
		t.Errorf("unexpected breakdown: %+v", b)
	}
}
