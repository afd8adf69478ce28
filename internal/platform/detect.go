// Package platform implements the Platform Detector (§4.1): classifying a
// career-site URL into one of the known ATS adapters, or "custom" when none
// apply.
package platform

import (
	"regexp"
	"strings"

	"jobscrapecore/internal/domain"
)

var workdayPattern = regexp.MustCompile(`\.wd\d*\.myworkdayjobs\.com`)

// rule pairs a platform with the substrings that identify its career-site
// URLs. Checked in table order; the first match wins.
type rule struct {
	platform domain.Platform
	hosts    []string
}

var rules = []rule{
	{domain.PlatformGreenhouse, []string{"greenhouse.io"}},
	{domain.PlatformLever, []string{"lever.co"}},
	{domain.PlatformAshby, []string{"ashbyhq.com"}},
	{domain.PlatformEightfold, []string{"eightfold.ai"}},
	{domain.PlatformUber, []string{"uber.com/careers", "careers.uber.com"}},
	{domain.PlatformGoogle, []string{"careers.google.com", "google.com/about/careers"}},
	{domain.PlatformAtlassian, []string{"atlassian.com/careers", "careers.atlassian.com"}},
}

// Detect implements the Platform Detector's URL classification rule: a
// case-insensitive substring match against the fixed rule table, with
// Workday additionally recognized by its tenant-subdomain regex.
func Detect(rawURL string) domain.Platform {
	low := strings.ToLower(rawURL)

	if workdayPattern.MatchString(low) {
		return domain.PlatformWorkday
	}
	if strings.Contains(low, "myworkdayjobs.com") {
		return domain.PlatformWorkday
	}

	for _, r := range rules {
		for _, host := range r.hosts {
			if strings.Contains(low, host) {
				return r.platform
			}
		}
	}
	return domain.PlatformCustom
}
