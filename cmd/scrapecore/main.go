// Command scrapecore runs the company scrape pipeline from the command
// line: load config, open the database, seed companies, wire the
// registry/orchestrator, and run a scrape. Grounded on the teacher's
// cmd/engine/main.go (env-driven data dir, flock single-instance lock,
// config-bootstrap-then-run shape), narrowed to a CLI since the dashboard
// HTTP/SSE surface cmd/engine also serves is out of scope here.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"jobscrapecore/internal/adapters/ashby"
	"jobscrapecore/internal/adapters/atlassian"
	"jobscrapecore/internal/adapters/eightfold"
	"jobscrapecore/internal/adapters/google"
	"jobscrapecore/internal/adapters/greenhouse"
	"jobscrapecore/internal/adapters/lever"
	"jobscrapecore/internal/adapters/uber"
	"jobscrapecore/internal/adapters/workday"
	"jobscrapecore/internal/browserclient"
	"jobscrapecore/internal/config"
	"jobscrapecore/internal/domain"
	"jobscrapecore/internal/httpclient"
	"jobscrapecore/internal/logging"
	"jobscrapecore/internal/orchestrator"
	"jobscrapecore/internal/ports"
	"jobscrapecore/internal/registry"
	"jobscrapecore/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("scrapecore: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to config file")
	company := flag.Int64("company", 0, "scrape a single company by id instead of every active company")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dataDir := cfg.App.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}

	lockPath := filepath.Join(dataDir, "scrapecore.lock")
	lk := flock.New(lockPath)
	deadline := time.Now().Add(1 * time.Second)
	for {
		locked, err := lk.TryLock()
		if err != nil {
			return err
		}
		if locked {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("scrapecore already running: %s", lockPath)
		}
		time.Sleep(50 * time.Millisecond)
	}
	defer func() { _ = lk.Unlock() }()

	dbPath := cfg.App.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "scrapecore.db")
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := seedCompanies(ctx, db, cfg.Companies); err != nil {
		return fmt.Errorf("seed companies: %w", err)
	}

	reg := buildRegistry()
	orch := orchestrator.New(db, reg, ports.NoopMatcher{}, logging.New(), orchestrator.Config{
		DefaultFilters:            cfg.DomainDefaultFilters(),
		DefaultMaxParallelScrapes: cfg.Scraper.MaxParallelScrapes,
		TitleSimilarityThreshold:  cfg.Scraper.TitleSimilarityThreshold,
	})

	if *company != 0 {
		result := orch.ScrapeCompany(ctx, *company, orchestrator.ScrapeCompanyParams{
			TriggerSource: domain.TriggerManual,
		})
		printResults([]domain.FetchResult{result})
		return nil
	}

	results, err := orch.ScrapeAllCompanies(ctx, domain.TriggerManual)
	if err != nil {
		return fmt.Errorf("scrape all: %w", err)
	}
	printResults(results)
	return nil
}

// buildRegistry wires every platform adapter against a shared HTTP client
// and a shared browser client, mirroring the teacher's single-instance
// resource sharing in cmd/engine/main.go.
func buildRegistry() *registry.Registry {
	http := httpclient.New()
	browser := browserclient.New()

	reg := registry.New()
	reg.Register(greenhouse.New(http))
	reg.Register(lever.New(http))
	reg.Register(ashby.New(http))
	reg.Register(atlassian.New(http))
	reg.Register(uber.New(http))
	reg.Register(google.New(http))
	reg.Register(workday.New(http, browser))
	reg.Register(eightfold.New(http, browser))
	return reg
}

// seedCompanies upserts the config-file company roster so a fresh database
// has something to scrape; an operator who only manages companies through
// the database can simply omit the companies block.
func seedCompanies(ctx context.Context, db *store.Store, seeds []config.CompanySeed) error {
	for _, s := range seeds {
		if err := db.UpsertCompanySeed(ctx, s.Name, s.CareerURL, domain.Platform(s.Platform), s.BoardToken, s.Active); err != nil {
			return fmt.Errorf("company %q: %w", s.Name, err)
		}
	}
	return nil
}

func printResults(results []domain.FetchResult) {
	for _, r := range results {
		fmt.Printf("company=%d %q platform=%s outcome=%s found=%d added=%d updated=%d filtered=%d archived=%d duration=%s",
			r.CompanyID, r.CompanyName, r.Platform, r.Outcome, r.JobsFound, r.JobsAdded, r.JobsUpdated, r.JobsFiltered, r.JobsArchived, r.Duration)
		if r.Error != "" {
			fmt.Printf(" error=%s", r.Error)
		}
		fmt.Println()
	}
}
