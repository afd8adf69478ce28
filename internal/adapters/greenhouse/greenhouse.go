// Package greenhouse implements the Greenhouse platform adapter (§4.6).
// Grounded on internal/scrape/greenhouse/greenhouse.go in the teacher,
// generalized from HTML board scraping to the documented JSON API.
package greenhouse

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/normalize"
	"jobscrapecore/internal/ports"
)

var boardTokenPattern = regexp.MustCompile(`greenhouse\.io/(?:embed/job_board\?for=)?([a-zA-Z0-9\-]+)`)

type job struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt  string `json:"updated_at"`
	Content    string `json:"content"`
	Location   struct {
		Name string `json:"name"`
	} `json:"location"`
	Metadata []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"metadata"`
	Departments []struct {
		Name string `json:"name"`
	} `json:"departments"`
}

type boardResponse struct {
	Jobs []job `json:"jobs"`
}

// Adapter is the Greenhouse registry.Adapter binding.
type Adapter struct {
	http ports.HTTPClient
}

func New(http ports.HTTPClient) *Adapter {
	return &Adapter{http: http}
}

func (a *Adapter) Platform() domain.Platform { return domain.PlatformGreenhouse }

func (a *Adapter) Validate(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), "greenhouse.io")
}

func (a *Adapter) ExtractIdentifier(rawURL string) string {
	if m := boardTokenPattern.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
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
	token := opts.BoardToken
	if token == "" {
		token = a.ExtractIdentifier(rawURL)
	}
	if token == "" {
		return domain.NewErrorResult(fmt.Errorf("greenhouse: could not determine board token for %s", rawURL))
	}

	primary := fmt.Sprintf("https://boards-api.greenhouse.io/v1/boards/%s/jobs?content=true", token)
	resp, err := a.http.Get(ctx, primary, ports.RequestOptions{})
	var body boardResponse
	if err != nil || !resp.OK {
		fallback := fmt.Sprintf("https://boards.greenhouse.io/%s/embed/job_board/jobs.json", token)
		resp2, err2 := a.http.Get(ctx, fallback, ports.RequestOptions{})
		if err2 != nil || !resp2.OK {
			return domain.NewErrorResult(fmt.Errorf("greenhouse: board %s unreachable", token))
		}
		if decErr := resp2.JSON(&body); decErr != nil {
			return domain.NewErrorResult(fmt.Errorf("greenhouse: parse board %s: %w", token, decErr))
		}
	} else if decErr := resp.JSON(&body); decErr != nil {
		return domain.NewErrorResult(fmt.Errorf("greenhouse: parse board %s: %w", token, decErr))
	}

	jobs := make([]domain.ScrapedJob, 0, len(body.Jobs))
	openIDs := make([]string, 0, len(body.Jobs))
	for _, j := range body.Jobs {
		externalID := normalize.ExternalID(domain.PlatformGreenhouse, token, strconv.FormatInt(j.ID, 10))
		openIDs = append(openIDs, externalID)

		loc := j.Location.Name
		for _, md := range j.Metadata {
			if strings.Contains(strings.ToLower(md.Name), "location") && md.Value != "" {
				if loc != "" {
					loc = loc + ", " + md.Value
				} else {
					loc = md.Value
				}
			}
		}
		location, locType := normalize.Location(loc)

		desc, format := normalize.Description(html.UnescapeString(j.Content))

		dept := ""
		if len(j.Departments) > 0 {
			dept = j.Departments[0].Name
		}

		jobs = append(jobs, domain.ScrapedJob{
			ExternalID:        externalID,
			Title:             html.UnescapeString(j.Title),
			URL:               j.AbsoluteURL,
			Location:          location,
			LocationType:      locType,
			Department:        dept,
			Description:       desc,
			DescriptionFormat: format,
			PostedDate:        normalize.PostedDate(j.UpdatedAt),
		})
	}

	return domain.ScraperResult{
		Success:                 true,
		Outcome:                 domain.OutcomeSuccess,
		Jobs:                    jobs,
		DetectedBoardToken:      token,
		OpenExternalIDs:         openIDs,
		OpenExternalIDsComplete: true,
	}
}
