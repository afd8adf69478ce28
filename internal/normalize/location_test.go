package normalize

import (
	"testing"

	"jobscrapecore/internal/domain"
)

func TestLocationClassification(t *testing.T) {
	cases := []struct {
		raw      string
		wantType domain.LocationType
	}{
		{"Remote - India", domain.LocationRemote},
		{"Hybrid - Berlin, DE", domain.LocationHybrid},
		{"Berlin, DE", domain.LocationOnsite},
		{"", ""},
	}
	for _, c := range cases {
		_, got := Location(c.raw)
		if got != c.wantType {
			t.Errorf("Location(%q) type = %q, want %q", c.raw, got, c.wantType)
		}
	}
}

func TestLocationDedupesRepeatedSegments(t *testing.T) {
	loc, _ := Location("Berlin, Berlin, Germany")
	if loc != "Berlin, Germany" {
		t.Errorf("got %q, want deduped segments", loc)
	}
}

func TestMatchesCountryRemoteSentinelMatchesEvery(t *testing.T) {
	for _, country := range []string{"india", "germany", "united states", "singapore"} {
		if !MatchesCountry("Remote", country) {
			t.Errorf("Remote should match every country, failed for %q", country)
		}
		if !MatchesCountry("Worldwide", country) {
			t.Errorf("Worldwide should match every country, failed for %q", country)
		}
	}
}

func TestMatchesCountryWordBoundary(t *testing.T) {
	if !MatchesCountry("Bengaluru, India", "india") {
		t.Error("expected India variant match")
	}
	if MatchesCountry("Indiana, US", "india") {
		t.Error("word-boundary match should not fire inside 'Indiana'")
	}
}

func TestMatchesCountryEmptyAlwaysPasses(t *testing.T) {
	if !MatchesCountry("Anywhere on Earth", "") {
		t.Error("empty country predicate should always pass")
	}
}

func TestMatchesCity(t *testing.T) {
	if !MatchesCity("Greater London Area", "london") {
		t.Error("expected substring city match")
	}
	if !MatchesCity("anything", "") {
		t.Error("empty city should always pass")
	}
	if MatchesCity("Berlin", "london") {
		t.Error("unexpected city match")
	}
}

func TestMatchesTitleKeywords(t *testing.T) {
	if !MatchesTitleKeywords("Senior Software Engineer", nil) {
		t.Error("empty keyword list should always pass")
	}
	if !MatchesTitleKeywords("Senior Software Engineer", []string{"engineer"}) {
		t.Error("expected case-insensitive keyword match")
	}
	if MatchesTitleKeywords("Product Manager", []string{"engineer", "designer"}) {
		t.Error("unexpected keyword match")
	}
}
