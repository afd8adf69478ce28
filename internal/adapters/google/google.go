// Package google implements the Google careers platform adapter (§4.6): an
// HTML-scraped, paginated listing with JSON-LD-preferred detail parsing.
// Grounded on the teacher's goquery-based HTML scraping style
// (internal/scrape/greenhouse/greenhouse.go), generalized to Google's
// listing-card/detail-page layout.
package google

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/normalize"
	"jobscrapecore/internal/ports"
)

const maxPages = 30

var jobLinkPattern = regexp.MustCompile(`/jobs/results/(\d+)-([^/?#]+)`)

// Adapter is the Google registry.Adapter binding.
type Adapter struct {
	http ports.HTTPClient
}

func New(http ports.HTTPClient) *Adapter {
	return &Adapter{http: http}
}

func (a *Adapter) Platform() domain.Platform { return domain.PlatformGoogle }

func (a *Adapter) Validate(rawURL string) bool {
	low := strings.ToLower(rawURL)
	return strings.Contains(low, "careers.google.com") || strings.Contains(low, "google.com/about/careers")
}

func (a *Adapter) ExtractIdentifier(rawURL string) string { return "" }

type cardJob struct {
	id, slug, title, location string
}

func (a *Adapter) Scrape(ctx context.Context, rawURL string, opts domain.ScrapeOptions) domain.ScraperResult {
	origin := "https://www.google.com"
	baseListURL := strings.TrimSuffix(rawURL, "/")

	seen := map[string]bool{}
	var cards []cardJob
	complete := true

	for page := 1; page <= maxPages; page++ {
		pageURL := fmt.Sprintf("%s?page=%d", baseListURL, page)
		resp, err := a.http.Get(ctx, pageURL, ports.RequestOptions{})
		if err != nil || !resp.OK {
			complete = false
			break
		}
		text, terr := resp.Text()
		if terr != nil {
			complete = false
			break
		}
		doc, derr := goquery.NewDocumentFromReader(strings.NewReader(text))
		if derr != nil {
			complete = false
			break
		}

		foundOnPage := 0
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			m := jobLinkPattern.FindStringSubmatch(href)
			if m == nil {
				return
			}
			id, slug := m[1], m[2]
			if seen[id] {
				return
			}
			seen[id] = true
			foundOnPage++

			card := s.Closest("li, div")
			title := normalize.CleanText(card.Find("h3, h2").First().Text())
			if title == "" {
				title = normalize.CleanText(s.Text())
			}
			location := normalize.CleanText(card.Find("[class*='location'], .location").First().Text())

			cards = append(cards, cardJob{id: id, slug: slug, title: title, location: location})
		})

		if foundOnPage == 0 {
			break
		}
	}

	if len(cards) == 0 && !complete {
		return domain.NewErrorResult(fmt.Errorf("google: listing fetch failed for %s", rawURL))
	}

	jobs := make([]domain.ScrapedJob, 0, len(cards))
	openIDs := make([]string, 0, len(cards))
	anyDetailFailed := false

	for _, c := range cards {
		externalID := normalize.ExternalID(domain.PlatformGoogle, c.id)
		openIDs = append(openIDs, externalID)

		jobURL := fmt.Sprintf("%s/about/careers/applications/jobs/results/%s-%s", origin, c.id, c.slug)

		desc, format, derr := a.fetchDetail(ctx, jobURL)
		if derr != nil {
			anyDetailFailed = true
		}

		location, locType := normalize.Location(c.location)
		jobs = append(jobs, domain.ScrapedJob{
			ExternalID:        externalID,
			Title:             c.title,
			URL:               jobURL,
			Location:          location,
			LocationType:      locType,
			Description:       desc,
			DescriptionFormat: format,
		})
	}

	outcome := domain.OutcomeSuccess
	if !complete || anyDetailFailed {
		outcome = domain.OutcomePartial
	}

	return domain.ScraperResult{
		Success:                 outcome == domain.OutcomeSuccess,
		Outcome:                 outcome,
		Jobs:                    jobs,
		OpenExternalIDs:         openIDs,
		OpenExternalIDsComplete: complete,
	}
}

var sectionHeadings = []string{"About the job", "Minimum qualifications", "Preferred qualifications", "Responsibilities"}

func (a *Adapter) fetchDetail(ctx context.Context, jobURL string) (string, domain.DescriptionFormat, error) {
	resp, err := a.http.Get(ctx, jobURL, ports.RequestOptions{})
	if err != nil || !resp.OK {
		return "", domain.DescriptionPlain, fmt.Errorf("google: detail fetch failed for %s", jobURL)
	}
	text, terr := resp.Text()
	if terr != nil {
		return "", domain.DescriptionPlain, terr
	}
	doc, derr := goquery.NewDocumentFromReader(strings.NewReader(text))
	if derr != nil {
		return "", domain.DescriptionPlain, derr
	}

	if jsonLD := extractJSONLDDescription(doc); jsonLD != "" {
		return normalize.Description(jsonLD)
	}

	var parts []string
	for _, heading := range sectionHeadings {
		doc.Find("h2, h3").Each(func(_ int, h *goquery.Selection) {
			if !strings.EqualFold(normalize.CleanText(h.Text()), heading) {
				return
			}
			section := normalize.CleanText(h.NextUntil("h2, h3").Text())
			if section != "" {
				parts = append(parts, heading+": "+section)
			}
		})
	}
	if len(parts) == 0 {
		return "", domain.DescriptionPlain, fmt.Errorf("google: no description sections found for %s", jobURL)
	}
	return normalize.Description(strings.Join(parts, "\n\n"))
}

var jsonLDTypePattern = regexp.MustCompile(`"@type"\s*:\s*"JobPosting"`)

func extractJSONLDDescription(doc *goquery.Document) string {
	var found string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		if found != "" {
			return
		}
		text := s.Text()
		if !jsonLDTypePattern.MatchString(text) {
			return
		}
		found = extractDescriptionField(text)
	})
	return found
}

var descriptionFieldPattern = regexp.MustCompile(`"description"\s*:\s*"((?:[^"\\]|\\.)*)"`)

func extractDescriptionField(jsonLD string) string {
	m := descriptionFieldPattern.FindStringSubmatch(jsonLD)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], `\"`, `"`)
}
