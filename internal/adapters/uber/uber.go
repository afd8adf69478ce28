// Package uber implements the Uber careers platform adapter (§4.6). No
// teacher equivalent; built in the shared adapter shape used by
// internal/adapters/lever and internal/adapters/ashby, paginating Uber's
// search-results POST endpoint.
package uber

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/normalize"
	"jobscrapecore/internal/ports"
)

const pageSize = 100

type searchRequest struct {
	Department []string `json:"department"`
	Team       []string `json:"team"`
	Region     []string `json:"region"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
}

type uberJob struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Department  string `json:"department"`
	Location    struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
	} `json:"location"`
	Description string `json:"description"`
	CreatedDate string `json:"createdDate"`
}

type searchResponse struct {
	Results []uberJob `json:"results"`
	Total   int       `json:"total"`
}

// Adapter is the Uber registry.Adapter binding.
type Adapter struct {
	http ports.HTTPClient
}

func New(http ports.HTTPClient) *Adapter {
	return &Adapter{http: http}
}

func (a *Adapter) Platform() domain.Platform { return domain.PlatformUber }

func (a *Adapter) Validate(rawURL string) bool {
	low := strings.ToLower(rawURL)
	return strings.Contains(low, "uber.com/careers") || strings.Contains(low, "careers.uber.com")
}

func (a *Adapter) ExtractIdentifier(rawURL string) string { return "" }

func (a *Adapter) Scrape(ctx context.Context, rawURL string, opts domain.ScrapeOptions) domain.ScraperResult {
	const endpoint = "https://www.uber.com/api/loadSearchJobsResults?localeCode=en"

	var jobs []domain.ScrapedJob
	var openIDs []string
	page := 0
	complete := true

	for {
		body, _ := json.Marshal(searchRequest{
			Department: []string{},
			Team:       []string{},
			Region:     []string{},
			Page:       page,
			Limit:      pageSize,
		})
		resp, err := a.http.Post(ctx, endpoint, body, ports.RequestOptions{})
		if err != nil || !resp.OK {
			if page == 0 {
				return domain.NewErrorResult(fmt.Errorf("uber: search request failed on first page"))
			}
			complete = false
			break
		}

		var sr searchResponse
		if decErr := resp.JSON(&sr); decErr != nil {
			if page == 0 {
				return domain.NewErrorResult(fmt.Errorf("uber: parse search response: %w", decErr))
			}
			complete = false
			break
		}
		if len(sr.Results) == 0 {
			break
		}

		for _, j := range sr.Results {
			externalID := normalize.ExternalID(domain.PlatformUber, j.ID)
			openIDs = append(openIDs, externalID)

			rawLoc := strings.TrimSuffix(strings.Join([]string{j.Location.City, j.Location.Region, j.Location.Country}, ", "), ", ")
			location, locType := normalize.Location(rawLoc)
			desc, format := normalize.Description(j.Description)

			jobs = append(jobs, domain.ScrapedJob{
				ExternalID:        externalID,
				Title:             j.Title,
				URL:               fmt.Sprintf("https://www.uber.com/careers/list/%s", j.ID),
				Location:          location,
				LocationType:      locType,
				Department:        j.Department,
				Description:       desc,
				DescriptionFormat: format,
				PostedDate:        normalize.PostedDate(j.CreatedDate),
			})
		}

		if len(sr.Results) < pageSize {
			break
		}
		page++
		time.Sleep(500 * time.Millisecond)
	}

	outcome := domain.OutcomeSuccess
	if !complete {
		outcome = domain.OutcomePartial
	}

	return domain.ScraperResult{
		Success:                 true,
		Outcome:                 outcome,
		Jobs:                    jobs,
		OpenExternalIDs:         openIDs,
		OpenExternalIDsComplete: complete,
	}
}
