package ports

import "context"

// NoopMatcher is a Matcher that never triggers auto-match hand-off. It lets
// the orchestrator run standalone (e.g. in tests, or when no real match
// engine is wired) without any special-casing in the per-company algorithm.
type NoopMatcher struct{}

func (NoopMatcher) GetMatcherConfig(ctx context.Context) (MatcherConfig, error) {
	return MatcherConfig{AutoMatchAfterScrape: false}, nil
}

func (NoopMatcher) MatchWithTracking(ctx context.Context, jobIDs []int64, opts MatchOptions) (MatchOutcome, error) {
	return MatchOutcome{}, nil
}
