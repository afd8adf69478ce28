// Package ashby implements the Ashby platform adapter (§4.6). No teacher
// equivalent exists; built fresh in the teacher's adapter shape (JSON
// board endpoint -> ScrapedJob), following the same field-mapping pattern
// as internal/adapters/lever.
package ashby

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/normalize"
	"jobscrapecore/internal/ports"
)

type posting struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	JobURL         string `json:"jobUrl"`
	ApplyURL       string `json:"applyUrl"`
	Location       string `json:"location"`
	Department     string `json:"department"`
	EmploymentType string `json:"employmentType"`
	PublishedAt    string `json:"publishedAt"`
	DescriptionHTML string `json:"descriptionHtml"`
}

type boardResponse struct {
	Jobs []posting `json:"jobs"`
}

var employmentTokenMap = map[string]string{
	"FullTime":  "full-time",
	"PartTime":  "part-time",
	"Intern":    "intern",
	"Contract":  "contract",
	"Temporary": "temporary",
}

// Adapter is the Ashby registry.Adapter binding.
type Adapter struct {
	http ports.HTTPClient
}

func New(http ports.HTTPClient) *Adapter {
	return &Adapter{http: http}
}

func (a *Adapter) Platform() domain.Platform { return domain.PlatformAshby }

func (a *Adapter) Validate(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), "ashbyhq.com")
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
	return ""
}

func (a *Adapter) Scrape(ctx context.Context, rawURL string, opts domain.ScrapeOptions) domain.ScraperResult {
	board := opts.BoardToken
	if board == "" {
		board = a.ExtractIdentifier(rawURL)
	}
	if board == "" {
		return domain.NewErrorResult(fmt.Errorf("ashby: could not determine board for %s", rawURL))
	}

	endpoint := fmt.Sprintf("https://api.ashbyhq.com/posting-api/job-board/%s?includeCompensation=true", board)
	resp, err := a.http.Get(ctx, endpoint, ports.RequestOptions{})
	if err != nil || !resp.OK {
		return domain.NewErrorResult(fmt.Errorf("ashby: board %s unreachable", board))
	}

	var body boardResponse
	if decErr := resp.JSON(&body); decErr != nil {
		return domain.NewErrorResult(fmt.Errorf("ashby: parse board %s: %w", board, decErr))
	}

	jobs := make([]domain.ScrapedJob, 0, len(body.Jobs))
	openIDs := make([]string, 0, len(body.Jobs))
	for i, p := range body.Jobs {
		idPart := p.JobURL
		if idPart == "" {
			idPart = p.ApplyURL
		}
		if idPart == "" {
			idPart = fmt.Sprintf("%d", i)
		}
		externalID := normalize.ExternalID(domain.PlatformAshby, board, idPart)
		openIDs = append(openIDs, externalID)

		location, locType := normalize.Location(p.Location)
		desc, format := normalize.Description(p.DescriptionHTML)

		empType := domain.EmploymentType(employmentTokenMap[p.EmploymentType])
		if empType == "" {
			empType = normalize.EmploymentType(p.EmploymentType)
		}

		jobURL := p.JobURL
		if jobURL == "" {
			jobURL = p.ApplyURL
		}

		jobs = append(jobs, domain.ScrapedJob{
			ExternalID:        externalID,
			Title:             p.Title,
			URL:               jobURL,
			Location:          location,
			LocationType:      locType,
			Department:        p.Department,
			Description:       desc,
			DescriptionFormat: format,
			EmploymentType:    empType,
			PostedDate:        normalize.PostedDate(p.PublishedAt),
		})
	}

	return domain.ScraperResult{
		Success:                 true,
		Outcome:                 domain.OutcomeSuccess,
		Jobs:                    jobs,
		DetectedBoardToken:      board,
		OpenExternalIDs:         openIDs,
		OpenExternalIDsComplete: true,
	}
}
