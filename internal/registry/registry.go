// Package registry implements the Scraper Registry (§4.7): a
// platform-keyed lookup from URL or explicit platform tag to the adapter
// that should handle it.
package registry

import (
	"context"
	"fmt"
	"strings"

	"jobscrapecore/internal/domain"
)

// Adapter is the shared platform adapter contract (§4.6).
type Adapter interface {
	Platform() domain.Platform
	Validate(url string) bool
	ExtractIdentifier(url string) string
	Scrape(ctx context.Context, url string, opts domain.ScrapeOptions) domain.ScraperResult
}

// Registry holds every registered adapter and resolves a URL or platform
// tag to one of them.
type Registry struct {
	adapters []Adapter
	byName   map[domain.Platform]Adapter
}

// New builds an empty Registry.
func New() *Registry {
	return &Registry{byName: make(map[domain.Platform]Adapter)}
}

// Register adds an adapter. Insertion order is preserved for
// getScraperForUrl's first-match-wins validator scan.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
	r.byName[a.Platform()] = a
}

// GetScraperForURL implements getScraperForUrl (§4.7): runs validators in
// insertion order, returns the first match.
func (r *Registry) GetScraperForURL(url string) Adapter {
	for _, a := range r.adapters {
		if a.Validate(url) {
			return a
		}
	}
	return nil
}

// GetScraperByPlatform implements getScraperByPlatform (§4.7).
func (r *Registry) GetScraperByPlatform(p domain.Platform) Adapter {
	return r.byName[p]
}

// SupportedPlatforms lists every registered platform, used in the
// unsupported-URL error message below.
func (r *Registry) SupportedPlatforms() []string {
	out := make([]string, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, string(a.Platform()))
	}
	return out
}

// Scrape implements the registry's scrape(url, platform?, options) entry
// point (§4.7): an explicit platform wins if registered, else detect by
// URL, else return an error result listing supported platforms.
func (r *Registry) Scrape(ctx context.Context, url string, platform domain.Platform, opts domain.ScrapeOptions) domain.ScraperResult {
	var a Adapter
	if platform != "" {
		a = r.GetScraperByPlatform(platform)
	}
	if a == nil {
		a = r.GetScraperForURL(url)
	}
	if a == nil {
		return domain.NewErrorResult(fmt.Errorf(
			"no adapter for url %q; supported platforms: %s", url, strings.Join(r.SupportedPlatforms(), ", "),
		))
	}
	return a.Scrape(ctx, url, opts)
}
