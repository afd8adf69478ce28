// Package config loads the engine's YAML configuration, adapted from the
// teacher's internal/config/config.go (same Load(path)-plus-optional-
// companies-file shape, same gopkg.in/yaml.v3 library) onto the spec's
// scraper/company/matcher settings instead of the teacher's email/scoring
// settings.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"jobscrapecore/internal/domain"
)

// CompanySeed is one bootstrap company entry, the equivalent of the
// teacher's Company{Slug,Name} pair generalized with a platform/board-token
// so every adapter (not just greenhouse/lever) can be seeded.
type CompanySeed struct {
	Name       string `yaml:"name" json:"name"`
	CareerURL  string `yaml:"career_url" json:"career_url"`
	Platform   string `yaml:"platform" json:"platform"`
	BoardToken string `yaml:"board_token" json:"board_token"`
	Active     bool   `yaml:"active" json:"active"`
}

// CompaniesFile is the optional, separately-editable company list, the same
// split the teacher uses so operators can edit the company roster without
// touching app-level settings.
type CompaniesFile struct {
	Companies []CompanySeed `yaml:"companies" json:"companies"`
}

// Config is the full engine configuration.
type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
		DBPath  string `yaml:"db_path" json:"db_path"`
	} `yaml:"app" json:"app"`

	Scraper struct {
		MaxParallelScrapes       int     `yaml:"max_parallel_scrapes" json:"max_parallel_scrapes"`
		TitleSimilarityThreshold float64 `yaml:"title_similarity_threshold" json:"title_similarity_threshold"`
		DefaultFilters           struct {
			Country       string   `yaml:"country" json:"country"`
			City          string   `yaml:"city" json:"city"`
			TitleKeywords []string `yaml:"title_keywords" json:"title_keywords"`
		} `yaml:"default_filters" json:"default_filters"`
	} `yaml:"scraper" json:"scraper"`

	Matcher struct {
		AutoMatchAfterScrape bool `yaml:"auto_match_after_scrape" json:"auto_match_after_scrape"`
	} `yaml:"matcher" json:"matcher"`

	Companies     []CompanySeed `yaml:"companies" json:"companies"`
	CompaniesFile string        `yaml:"companies_file" json:"companies_file"`
}

// Load reads path, applying the same defaults-then-overlay shape as the
// teacher's Load: the top-level config always wins on app/scraper/matcher
// settings, while an optional external companies file only ever replaces
// the company roster.
func Load(path string) (Config, error) {
	var cfg Config

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}

	if cfg.Scraper.MaxParallelScrapes <= 0 {
		cfg.Scraper.MaxParallelScrapes = 3
	}
	if cfg.Scraper.TitleSimilarityThreshold <= 0 {
		cfg.Scraper.TitleSimilarityThreshold = 0.9
	}

	if cfg.CompaniesFile != "" {
		if err := loadCompaniesFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

func loadCompaniesFile(configPath string, cfg *Config) error {
	companiesPath := cfg.CompaniesFile
	if !filepath.IsAbs(companiesPath) {
		companiesPath = filepath.Join(filepath.Dir(configPath), companiesPath)
	}

	b, err := os.ReadFile(companiesPath)
	if err != nil {
		// A missing companies file should not prevent startup; the inline
		// Companies list (if any) still applies.
		return nil
	}

	var cf CompaniesFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return err
	}
	if len(cf.Companies) > 0 {
		cfg.Companies = cf.Companies
	}
	return nil
}

// DomainDefaultFilters converts the YAML-shaped filter settings into a
// domain.JobFilters value for the orchestrator's Config.
func (c Config) DomainDefaultFilters() domain.JobFilters {
	return domain.JobFilters{
		Country:       c.Scraper.DefaultFilters.Country,
		City:          c.Scraper.DefaultFilters.City,
		TitleKeywords: c.Scraper.DefaultFilters.TitleKeywords,
	}
}
