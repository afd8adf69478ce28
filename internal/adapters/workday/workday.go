// Package workday implements the Workday platform adapter (§4.6). Board
// URL parsing (tenant/site/locale) is carried over from
// internal/scrape/workday/workday.go's parseBoardURL in the teacher; the
// listing/detail fetch flow is rebuilt against the documented CXS JSON API
// with a bootstrapped session instead of the teacher's bare cookie jar.
package workday

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/normalize"
	"jobscrapecore/internal/ports"
)

const (
	listPageSize       = 20
	parallelListFetches = 2
)

type board struct {
	scheme string
	host   string
	tenant string
	site   string
}

func (b board) jobsEndpoint() string {
	return fmt.Sprintf("%s://%s/wday/cxs/%s/%s/jobs", b.scheme, b.host, b.tenant, b.site)
}

func parseBoardURL(raw string) (board, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return board{}, err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	parts := strings.Split(u.Host, ".")
	if len(parts) < 3 {
		return board{}, fmt.Errorf("unexpected workday host %q", u.Host)
	}
	tenant := parts[0]

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return board{}, fmt.Errorf("unexpected workday path %q", u.Path)
	}
	if len(segs) >= 2 && looksLikeLocale(segs[0]) {
		segs = segs[1:]
	}
	site := segs[len(segs)-1]
	if site == "" {
		return board{}, fmt.Errorf("could not derive workday site from path %q", u.Path)
	}
	return board{scheme: u.Scheme, host: u.Host, tenant: tenant, site: site}, nil
}

func looksLikeLocale(s string) bool {
	return len(s) == 5 && s[2] == '-'
}

type listRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type listResponse struct {
	Total       int       `json:"total"`
	JobPostings []posting `json:"jobPostings"`
}

type posting struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	ExternalPath  string `json:"externalPath"`
	LocationsText string `json:"locationsText"`
	PostedOn      string `json:"postedOn"`
}

type detailResponse struct {
	JobPostingInfo struct {
		JobDescription string `json:"jobDescription"`
		StartDate      string `json:"startDate"`
		TimeType       string `json:"timeType"`
	} `json:"jobPostingInfo"`
}

// Adapter is the Workday registry.Adapter binding.
type Adapter struct {
	http    ports.HTTPClient
	browser ports.BrowserClient
}

func New(http ports.HTTPClient, browser ports.BrowserClient) *Adapter {
	return &Adapter{http: http, browser: browser}
}

func (a *Adapter) Platform() domain.Platform { return domain.PlatformWorkday }

func (a *Adapter) Validate(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), "myworkdayjobs.com")
}

func (a *Adapter) ExtractIdentifier(rawURL string) string {
	b, err := parseBoardURL(rawURL)
	if err != nil {
		return ""
	}
	return b.tenant + "-" + b.site
}

func (a *Adapter) Scrape(ctx context.Context, rawURL string, opts domain.ScrapeOptions) domain.ScraperResult {
	b, err := parseBoardURL(rawURL)
	if err != nil {
		return domain.NewErrorResult(fmt.Errorf("workday: %w", err))
	}

	var csrf string
	var cookieHeader string
	if a.browser != nil {
		sess, berr := a.browser.Bootstrap(ctx, rawURL)
		if berr == nil && sess != nil {
			csrf = sess.CSRFToken
			parts := make([]string, 0, len(sess.Cookies))
			for _, c := range sess.Cookies {
				parts = append(parts, c.Name+"="+c.Value)
			}
			cookieHeader = strings.Join(parts, "; ")
		}
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if csrf != "" {
		headers["X-Calypso-CSRF-Token"] = csrf
	}
	if cookieHeader != "" {
		headers["Cookie"] = cookieHeader
	}

	postings, complete := a.fetchAllListings(ctx, b, headers)

	jobs := make([]domain.ScrapedJob, 0, len(postings))
	openIDs := make([]string, 0, len(postings))
	anyDetailFailed := false

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i, p := range postings {
		externalID := normalize.ExternalID(domain.PlatformWorkday, b.tenant+"-"+b.site, p.ID)
		openIDs = append(openIDs, externalID)

		wg.Add(1)
		go func(i int, p posting, externalID string) {
			defer wg.Done()
			time.Sleep(time.Duration(300+rand.Intn(200)) * time.Millisecond)

			detail, derr := a.fetchDetail(ctx, b, p.ExternalPath, headers)
			if derr != nil {
				mu.Lock()
				anyDetailFailed = true
				mu.Unlock()
				return
			}

			location, locType := normalize.Location(p.LocationsText)
			desc, format := normalize.Description(detail.JobPostingInfo.JobDescription)
			posted := normalize.PostedDate(detail.JobPostingInfo.StartDate)
			if posted == nil {
				posted = normalize.PostedDate(p.PostedOn)
			}

			mu.Lock()
			jobs = append(jobs, domain.ScrapedJob{
				ExternalID:        externalID,
				Title:             p.Title,
				URL:               absoluteJobURL(b, p.ExternalPath),
				Location:          location,
				LocationType:      locType,
				Description:       desc,
				DescriptionFormat: format,
				EmploymentType:    normalize.EmploymentType(detail.JobPostingInfo.TimeType),
				PostedDate:        posted,
			})
			mu.Unlock()
		}(i, p, externalID)
	}
	wg.Wait()

	outcome := domain.OutcomeSuccess
	if !complete || anyDetailFailed {
		outcome = domain.OutcomePartial
	}
	if len(postings) == 0 && !complete {
		outcome = domain.OutcomeError
	}

	return domain.ScraperResult{
		Success:                 outcome == domain.OutcomeSuccess,
		Outcome:                 outcome,
		Jobs:                    jobs,
		DetectedBoardToken:      b.tenant + "-" + b.site,
		OpenExternalIDs:         openIDs,
		OpenExternalIDsComplete: complete,
	}
}

func (a *Adapter) fetchAllListings(ctx context.Context, b board, headers map[string]string) ([]posting, bool) {
	var all []posting
	offset := 0
	complete := true

	for {
		var wg sync.WaitGroup
		var mu sync.Mutex
		gotAny := false

		for i := 0; i < parallelListFetches; i++ {
			wg.Add(1)
			go func(pageOffset int, stagger time.Duration) {
				defer wg.Done()
				time.Sleep(stagger)

				body, _ := json.Marshal(listRequest{
					AppliedFacets: map[string]any{},
					Limit:         listPageSize,
					Offset:        pageOffset,
					SearchText:    "",
				})
				resp, err := a.http.Post(ctx, b.jobsEndpoint(), body, ports.RequestOptions{Headers: headers})
				if err != nil || !resp.OK {
					mu.Lock()
					complete = false
					mu.Unlock()
					return
				}
				var lr listResponse
				if decErr := resp.JSON(&lr); decErr != nil {
					mu.Lock()
					complete = false
					mu.Unlock()
					return
				}
				mu.Lock()
				all = append(all, lr.JobPostings...)
				if len(lr.JobPostings) > 0 {
					gotAny = true
				}
				mu.Unlock()
			}(offset+i*listPageSize, time.Duration(300+i*200)*time.Millisecond)
		}
		wg.Wait()

		if !gotAny {
			break
		}
		offset += parallelListFetches * listPageSize
	}

	return all, complete
}

func (a *Adapter) fetchDetail(ctx context.Context, b board, externalPath string, headers map[string]string) (detailResponse, error) {
	endpoint := fmt.Sprintf("%s://%s/wday/cxs/%s/%s%s", b.scheme, b.host, b.tenant, b.site, externalPath)
	resp, err := a.http.Get(ctx, endpoint, ports.RequestOptions{Headers: headers})
	if err != nil {
		return detailResponse{}, err
	}
	if !resp.OK {
		return detailResponse{}, fmt.Errorf("workday: detail status for %s", externalPath)
	}
	var d detailResponse
	if decErr := resp.JSON(&d); decErr != nil {
		return detailResponse{}, decErr
	}
	return d, nil
}

func absoluteJobURL(b board, externalPath string) string {
	path := externalPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s%s", b.scheme, b.host, path)
}
