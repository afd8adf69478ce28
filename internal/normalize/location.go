// Package normalize turns the loose, platform-specific strings adapters
// scrape off the wire into the canonical forms ScrapedJob carries.
package normalize

import (
	"regexp"
	"strings"

	"jobscrapecore/internal/domain"
)

var remoteSentinels = map[string]bool{
	"remote":          true,
	"remote position": true,
	"worldwide":       true,
	"anywhere":        true,
}

// CleanText collapses whitespace (including the NBSP many ATS boards emit)
// and trims the result.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// Location trims and dedupes a raw location string and classifies its
// LocationType per §4.2: "remote" anywhere in the text wins over "hybrid",
// which wins over a plain onsite classification for any non-empty string.
func Location(raw string) (string, domain.LocationType) {
	loc := dedupeParts(CleanText(raw))
	if loc == "" {
		return "", ""
	}

	low := strings.ToLower(loc)
	switch {
	case strings.Contains(low, "remote"):
		return loc, domain.LocationRemote
	case strings.Contains(low, "hybrid"):
		return loc, domain.LocationHybrid
	default:
		return loc, domain.LocationOnsite
	}
}

// dedupeParts splits a comma-joined location on repeated segments (several
// boards repeat the city in both a "location" and "locations" field) and
// rejoins the unique ones in order.
func dedupeParts(loc string) string {
	if loc == "" {
		return ""
	}
	parts := strings.Split(loc, ",")
	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

// CountryVariants maps each canonical country key to the name/city variants
// that identify it inside a free-text location string (§4.2).
var CountryVariants = map[string][]string{
	"india":         {"india", "bengaluru", "bangalore", "hyderabad", "pune", "mumbai", "delhi", "gurgaon", "gurugram", "chennai", "noida"},
	"united states": {"united states", "usa", "u.s.", "us", "new york", "san francisco", "seattle", "austin", "chicago", "boston", "remote - us"},
	"united kingdom": {"united kingdom", "uk", "u.k.", "london", "manchester", "edinburgh"},
	"germany":       {"germany", "berlin", "munich", "hamburg", "frankfurt"},
	"canada":        {"canada", "toronto", "vancouver", "montreal", "ottawa"},
	"ireland":       {"ireland", "dublin"},
	"france":        {"france", "paris"},
	"australia":     {"australia", "sydney", "melbourne"},
	"singapore":     {"singapore"},
	"japan":         {"japan", "tokyo"},
	"poland":        {"poland", "warsaw", "krakow"},
	"brazil":        {"brazil", "sao paulo", "são paulo"},
}

var wordBoundaryCache = map[string]*regexp.Regexp{}

func wordBoundary(variant string) *regexp.Regexp {
	if re, ok := wordBoundaryCache[variant]; ok {
		return re
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(variant) + `\b`)
	wordBoundaryCache[variant] = re
	return re
}

// MatchesCountry implements matchesPreferredCountry (§4.3): remote sentinels
// match every country; otherwise a word-boundary match against the
// country's variant table.
func MatchesCountry(loc, country string) bool {
	if country == "" {
		return true
	}
	low := strings.ToLower(CleanText(loc))
	if remoteSentinels[low] {
		return true
	}
	variants, ok := CountryVariants[strings.ToLower(country)]
	if !ok {
		variants = []string{strings.ToLower(country)}
	}
	for _, v := range variants {
		if wordBoundary(v).MatchString(low) {
			return true
		}
	}
	return false
}

// MatchesCity implements matchesPreferredCity (§4.3): plain case-insensitive
// substring match; an empty city always passes.
func MatchesCity(loc, city string) bool {
	if city == "" {
		return true
	}
	return strings.Contains(strings.ToLower(loc), strings.ToLower(city))
}

// MatchesTitleKeywords implements matchesTitleKeywords (§4.3).
func MatchesTitleKeywords(title string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	low := strings.ToLower(title)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(low, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
