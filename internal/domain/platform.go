package domain

// Platform identifies which ATS adapter produced or should handle a job record.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformAshby      Platform = "ashby"
	PlatformEightfold  Platform = "eightfold"
	PlatformWorkday    Platform = "workday"
	PlatformUber       Platform = "uber"
	PlatformGoogle     Platform = "google"
	PlatformAtlassian  Platform = "atlassian"
	PlatformCustom     Platform = "custom"
)

// ScraperErrorCode classifies adapter-level failures for retry/propagation decisions.
type ScraperErrorCode string

const (
	ErrInvalidURL    ScraperErrorCode = "invalid_url"
	ErrBoardNotFound ScraperErrorCode = "board_not_found"
	ErrParseError    ScraperErrorCode = "parse_error"
	ErrAuthRequired  ScraperErrorCode = "auth_required"
	ErrCSRFError     ScraperErrorCode = "csrf_error"
	ErrRateLimited   ScraperErrorCode = "rate_limited"
	ErrNetworkError  ScraperErrorCode = "network_error"
	ErrTimeout       ScraperErrorCode = "timeout"
	ErrBrowserError  ScraperErrorCode = "browser_error"
	ErrUnknown       ScraperErrorCode = "unknown"
)

// Retryable reports whether the HTTP client layer is expected to retry this
// class of error itself before it ever reaches a ScraperResult.
func (c ScraperErrorCode) Retryable() bool {
	switch c {
	case ErrRateLimited, ErrNetworkError, ErrTimeout, ErrBrowserError:
		return true
	default:
		return false
	}
}
