// Package atlassian implements the Atlassian careers platform adapter
// (§4.6): a JSON listings endpoint with a conditional per-job detail
// fetch and source-URL query params applied as a server-side pre-filter.
package atlassian

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/normalize"
	"jobscrapecore/internal/ports"
)

type listing struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Team             string `json:"team"`
	Location         string `json:"location"`
	Overview         string `json:"overview"`
	Responsibilities string `json:"responsibilities"`
	Qualifications   string `json:"qualifications"`
	URL              string `json:"absolute_url"`
}

type listingsResponse struct {
	Jobs []listing `json:"jobs"`
}

type detail struct {
	Overview         string `json:"overview"`
	Responsibilities string `json:"responsibilities"`
	Qualifications   string `json:"qualifications"`
}

// Adapter is the Atlassian registry.Adapter binding.
type Adapter struct {
	http ports.HTTPClient
}

func New(http ports.HTTPClient) *Adapter {
	return &Adapter{http: http}
}

func (a *Adapter) Platform() domain.Platform { return domain.PlatformAtlassian }

func (a *Adapter) Validate(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), "atlassian.com/careers") ||
		strings.Contains(strings.ToLower(rawURL), "careers.atlassian.com")
}

func (a *Adapter) ExtractIdentifier(rawURL string) string { return "" }

func hasInline(l listing) bool {
	return l.Overview != "" || l.Responsibilities != "" || l.Qualifications != ""
}

func combine(overview, responsibilities, qualifications string) string {
	var parts []string
	if overview != "" {
		parts = append(parts, "About: "+overview)
	}
	if responsibilities != "" {
		parts = append(parts, "Responsibilities: "+responsibilities)
	}
	if qualifications != "" {
		parts = append(parts, "Qualifications: "+qualifications)
	}
	return strings.Join(parts, "\n\n")
}

func (a *Adapter) Scrape(ctx context.Context, rawURL string, opts domain.ScrapeOptions) domain.ScraperResult {
	u, _ := url.Parse(rawURL)
	var team, preLocation, search string
	if u != nil {
		q := u.Query()
		team = q.Get("team")
		preLocation = q.Get("location")
		search = q.Get("search")
	}

	const listEndpoint = "https://www.atlassian.com/endpoint/careers/listings"
	resp, err := a.http.Get(ctx, listEndpoint, ports.RequestOptions{})
	if err != nil || !resp.OK {
		return domain.NewErrorResult(fmt.Errorf("atlassian: listings fetch failed"))
	}
	var body listingsResponse
	if decErr := resp.JSON(&body); decErr != nil {
		return domain.NewErrorResult(fmt.Errorf("atlassian: parse listings: %w", decErr))
	}

	filtered := make([]listing, 0, len(body.Jobs))
	for _, l := range body.Jobs {
		if team != "" && !strings.EqualFold(l.Team, team) {
			continue
		}
		if preLocation != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(preLocation)) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(l.Title), strings.ToLower(search)) {
			continue
		}
		filtered = append(filtered, l)
	}

	jobs := make([]domain.ScrapedJob, 0, len(filtered))
	openIDs := make([]string, 0, len(filtered))
	anyDetailFailed := false

	for _, l := range filtered {
		externalID := normalize.ExternalID(domain.PlatformAtlassian, l.ID)
		openIDs = append(openIDs, externalID)

		overview, responsibilities, qualifications := l.Overview, l.Responsibilities, l.Qualifications
		if !hasInline(l) {
			d, derr := a.fetchDetail(ctx, l.ID)
			if derr != nil {
				anyDetailFailed = true
			} else {
				overview, responsibilities, qualifications = d.Overview, d.Responsibilities, d.Qualifications
			}
		}

		location, locType := normalize.Location(l.Location)
		desc, format := normalize.Description(combine(overview, responsibilities, qualifications))

		jobs = append(jobs, domain.ScrapedJob{
			ExternalID:        externalID,
			Title:             l.Title,
			URL:               l.URL,
			Location:          location,
			LocationType:      locType,
			Department:        l.Team,
			Description:       desc,
			DescriptionFormat: format,
		})
	}

	outcome := domain.OutcomeSuccess
	if anyDetailFailed {
		outcome = domain.OutcomePartial
	}

	return domain.ScraperResult{
		Success:                 outcome == domain.OutcomeSuccess,
		Outcome:                 outcome,
		Jobs:                    jobs,
		OpenExternalIDs:         openIDs,
		OpenExternalIDsComplete: true,
	}
}

func (a *Adapter) fetchDetail(ctx context.Context, id string) (detail, error) {
	endpoint := fmt.Sprintf("https://www.atlassian.com/endpoint/careers/details/%s", id)
	resp, err := a.http.Get(ctx, endpoint, ports.RequestOptions{})
	if err != nil {
		return detail{}, err
	}
	if !resp.OK {
		return detail{}, fmt.Errorf("atlassian: detail status for %s", id)
	}
	var d detail
	if decErr := resp.JSON(&d); decErr != nil {
		return detail{}, decErr
	}
	return d, nil
}
