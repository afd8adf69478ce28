// Package eightfold implements the Eightfold platform adapter (§4.6): a
// bootstrapped-session JSON API with parallel paginated listing and
// adaptive detail hydration.
package eightfold

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/hydrate"
	"jobscrapecore/internal/normalize"
	"jobscrapecore/internal/ports"
)

const (
	listPageSize          = 10
	parallelListFetches    = 2
	detailInitialBatchSize = 4
	detailInitialDelay     = 400 * time.Millisecond
)

type searchResult struct {
	Positions []struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Location  string `json:"location"`
		Department string `json:"department"`
		TCreate   int64  `json:"t_create"`
	} `json:"positions"`
	Count int `json:"count"`
}

type positionDetails struct {
	JobDescription string `json:"jobDescription"`
	EmploymentType string `json:"employmentType"`
}

// Adapter is the Eightfold registry.Adapter binding.
type Adapter struct {
	http    ports.HTTPClient
	browser ports.BrowserClient
}

func New(http ports.HTTPClient, browser ports.BrowserClient) *Adapter {
	return &Adapter{http: http, browser: browser}
}

func (a *Adapter) Platform() domain.Platform { return domain.PlatformEightfold }

func (a *Adapter) Validate(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), "eightfold.ai")
}

func (a *Adapter) ExtractIdentifier(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Host, ".eightfold.ai")
}

func (a *Adapter) Scrape(ctx context.Context, rawURL string, opts domain.ScrapeOptions) domain.ScraperResult {
	companyDomain := a.ExtractIdentifier(rawURL)
	if companyDomain == "" {
		return domain.NewErrorResult(fmt.Errorf("eightfold: could not determine domain for %s", rawURL))
	}

	if a.browser != nil {
		if sess, err := a.browser.Bootstrap(ctx, rawURL); err == nil && sess != nil && sess.Domain != "" {
			companyDomain = sess.Domain
		}
	}

	listings, complete := a.fetchAllListings(ctx, companyDomain)
	if len(listings) == 0 && !complete {
		return domain.NewErrorResult(fmt.Errorf("eightfold: listing fetch failed for domain %s", companyDomain))
	}

	type pending struct {
		idx int
		id  int64
	}
	toHydrate := make([]pending, 0, len(listings))
	for i, l := range listings {
		externalID := normalize.ExternalID(domain.PlatformEightfold, companyDomain, strconv.FormatInt(l.ID, 10))
		if _, skip := opts.ExistingExternalIDs[externalID]; skip {
			continue
		}
		toHydrate = append(toHydrate, pending{idx: i, id: l.ID})
	}

	jobs := make([]domain.ScrapedJob, len(listings))
	openIDs := make([]string, len(listings))
	for i, l := range listings {
		externalID := normalize.ExternalID(domain.PlatformEightfold, companyDomain, strconv.FormatInt(l.ID, 10))
		openIDs[i] = externalID
		location, locType := normalize.Location(l.Location)
		jobs[i] = domain.ScrapedJob{
			ExternalID:   externalID,
			Title:        l.Name,
			URL:          fmt.Sprintf("https://%s.eightfold.ai/careers/job?pid=%d", companyDomain, l.ID),
			Location:     location,
			LocationType: locType,
			Department:   l.Department,
			PostedDate:   normalize.PostedDate(strconv.FormatInt(l.TCreate, 10)),
		}
	}

	detailFailures := 0
	if len(toHydrate) > 0 {
		fetch := func(ctx context.Context, p pending) (positionDetails, error) {
			return a.fetchDetail(ctx, companyDomain, p.id)
		}
		results, failures := hydrate.Hydrate(ctx, toHydrate, fetch, hydrate.Options{
			InitialBatchSize: detailInitialBatchSize,
			InitialDelay:     detailInitialDelay,
		})
		detailFailures = failures
		for _, r := range results {
			if r.Failed {
				continue
			}
			desc, format := normalize.Description(r.Value.JobDescription)
			jobs[r.Item.idx].Description = desc
			jobs[r.Item.idx].DescriptionFormat = format
			jobs[r.Item.idx].EmploymentType = normalize.EmploymentType(r.Value.EmploymentType)
		}
	}

	outcome := domain.OutcomeSuccess
	if !complete || detailFailures > 0 {
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

func (a *Adapter) fetchAllListings(ctx context.Context, companyDomain string) ([]struct {
	ID         int64
	Name       string
	Location   string
	Department string
	TCreate    int64
}, bool) {
	type page struct {
		offset int
		result searchResult
		err    error
	}

	type listingRow = struct {
		ID         int64
		Name       string
		Location   string
		Department string
		TCreate    int64
	}

	var all []listingRow
	offset := 0
	complete := true

	for {
		pages := make([]page, 0, parallelListFetches)
		for i := 0; i < parallelListFetches; i++ {
			pages = append(pages, page{offset: offset + i*listPageSize})
		}
		results := make([]page, len(pages))
		copy(results, pages)

		// Best-effort fan-out: a single page's failure must not cancel its
		// siblings, so every goroutine swallows its error into results[i]
		// and g.Go always returns nil (mirrors the teacher's own
		// log-and-continue errgroup usage).
		g, gctx := errgroup.WithContext(ctx)
		for i := range results {
			i := i
			stagger := time.Duration(i) * 150 * time.Millisecond
			g.Go(func() error {
				time.Sleep(stagger)
				endpoint := fmt.Sprintf("https://%s.eightfold.ai/api/pcsx/search?domain=%s&start=%d&sort_by=timestamp",
					companyDomain, companyDomain, results[i].offset)
				resp, err := a.http.Get(gctx, endpoint, ports.RequestOptions{})
				if err != nil || !resp.OK {
					results[i].err = fmt.Errorf("list page offset=%d failed", results[i].offset)
					return nil
				}
				var sr searchResult
				if decErr := resp.JSON(&sr); decErr != nil {
					results[i].err = decErr
					return nil
				}
				results[i].result = sr
				return nil
			})
		}
		_ = g.Wait()

		gotAny := false
		for _, r := range results {
			if r.err != nil {
				complete = false
				continue
			}
			for _, p := range r.result.Positions {
				all = append(all, listingRow{ID: p.ID, Name: p.Name, Location: p.Location, Department: p.Department, TCreate: p.TCreate})
			}
			if len(r.result.Positions) > 0 {
				gotAny = true
			}
		}
		if !gotAny {
			break
		}
		offset += parallelListFetches * listPageSize
	}

	return all, complete
}

func (a *Adapter) fetchDetail(ctx context.Context, companyDomain string, positionID int64) (positionDetails, error) {
	endpoint := fmt.Sprintf("https://%s.eightfold.ai/api/pcsx/position_details?position_id=%d&domain=%s",
		companyDomain, positionID, companyDomain)
	resp, err := a.http.Get(ctx, endpoint, ports.RequestOptions{})
	if err != nil {
		return positionDetails{}, err
	}
	if !resp.OK {
		return positionDetails{}, fmt.Errorf("eightfold: detail status for position %d", positionID)
	}
	var d positionDetails
	if decErr := resp.JSON(&d); decErr != nil {
		return positionDetails{}, decErr
	}
	return d, nil
}
