// Package lever implements the Lever platform adapter (§4.6). Grounded on
// internal/scrape/lever/lever.go in the teacher, whose leverPosting JSON
// shape (text/hostedUrl/createdAt/categories) is carried over unchanged.
package lever

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/normalize"
	"jobscrapecore/internal/ports"
)

type posting struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"`
	Categories struct {
		Location    string `json:"location"`
		Team        string `json:"team"`
		Commitment  string `json:"commitment"`
	} `json:"categories"`
	Description string `json:"description"`
}

// Adapter is the Lever registry.Adapter binding.
type Adapter struct {
	http ports.HTTPClient
}

func New(http ports.HTTPClient) *Adapter {
	return &Adapter{http: http}
}

func (a *Adapter) Platform() domain.Platform { return domain.PlatformLever }

func (a *Adapter) Validate(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), "lever.co")
}

func (a *Adapter) ExtractIdentifier(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return strings.TrimSuffix(strings.TrimPrefix(u.Host, "jobs."), ".lever.co")
}

func (a *Adapter) Scrape(ctx context.Context, rawURL string, opts domain.ScrapeOptions) domain.ScraperResult {
	slug := opts.BoardToken
	if slug == "" {
		slug = a.ExtractIdentifier(rawURL)
	}
	if slug == "" {
		return domain.NewErrorResult(fmt.Errorf("lever: could not determine slug for %s", rawURL))
	}

	endpoint := fmt.Sprintf("https://api.lever.co/v0/postings/%s?mode=json", slug)
	resp, err := a.http.Get(ctx, endpoint, ports.RequestOptions{})
	if err != nil || !resp.OK {
		return domain.NewErrorResult(fmt.Errorf("lever: board %s unreachable", slug))
	}

	var postings []posting
	if decErr := resp.JSON(&postings); decErr != nil {
		return domain.NewErrorResult(fmt.Errorf("lever: parse board %s: %w", slug, decErr))
	}

	jobs := make([]domain.ScrapedJob, 0, len(postings))
	openIDs := make([]string, 0, len(postings))
	for _, p := range postings {
		externalID := normalize.ExternalID(domain.PlatformLever, slug, p.ID)
		openIDs = append(openIDs, externalID)

		location, locType := normalize.Location(p.Categories.Location)
		desc, format := normalize.Description(p.Description)

		jobs = append(jobs, domain.ScrapedJob{
			ExternalID:        externalID,
			Title:             p.Text,
			URL:               p.HostedURL,
			Location:          location,
			LocationType:      locType,
			Department:        p.Categories.Team,
			Description:       desc,
			DescriptionFormat: format,
			EmploymentType:    normalize.EmploymentType(p.Categories.Commitment),
			PostedDate:        normalize.PostedDate(strconv.FormatInt(p.CreatedAt, 10)),
		})
	}

	return domain.ScraperResult{
		Success:                 true,
		Outcome:                 domain.OutcomeSuccess,
		Jobs:                    jobs,
		DetectedBoardToken:      slug,
		OpenExternalIDs:         openIDs,
		OpenExternalIDsComplete: true,
	}
}
