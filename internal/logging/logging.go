// Package logging implements the stderr-style structured logger named in
// §6: bracketed, company/platform-keyed lines via the standard library
// log package, matching the teacher's own "[tag] message" convention
// (internal/scrape/ats_runner.go, internal/scrape/process.go).
package logging

import (
	"log"
	"time"

	"jobscrapecore/internal/domain"
)

// ScraperLogger is the concrete ports.Logger binding.
type ScraperLogger struct {
	out *log.Logger
}

// New builds a ScraperLogger writing to the standard library's default
// logger destination (stderr, unless reconfigured by the caller).
func New() *ScraperLogger {
	return &ScraperLogger{out: log.Default()}
}

func (l *ScraperLogger) Start(company string, platform domain.Platform) {
	l.out.Printf("[scrape:%s] start platform=%s", company, platform)
}

func (l *ScraperLogger) Fetched(company string, platform domain.Platform, count int) {
	l.out.Printf("[scrape:%s] fetched platform=%s count=%d", company, platform, count)
}

func (l *ScraperLogger) FetchedWithEarlyFilter(company string, platform domain.Platform, count, filtered int) {
	l.out.Printf("[scrape:%s] fetched platform=%s count=%d earlyFiltered=%d", company, platform, count, filtered)
}

func (l *ScraperLogger) Filtered(company string, platform domain.Platform, breakdown string) {
	l.out.Printf("[scrape:%s] filtered platform=%s %s", company, platform, breakdown)
}

func (l *ScraperLogger) Added(company string, platform domain.Platform, added, updated, archived int) {
	l.out.Printf("[scrape:%s] added platform=%s added=%d updated=%d archived=%d", company, platform, added, updated, archived)
}

func (l *ScraperLogger) Error(company string, platform domain.Platform, err error) {
	l.out.Printf("[scrape:%s] error platform=%s err=%v", company, platform, err)
}

func (l *ScraperLogger) BatchStart(sessionID string, total, workers int) {
	l.out.Printf("[batch:%s] start total=%d workers=%d", sessionID, total, workers)
}

func (l *ScraperLogger) BatchComplete(sessionID string, status domain.SessionStatus, duration time.Duration) {
	l.out.Printf("[batch:%s] complete status=%s duration=%s", sessionID, status, duration)
}
