package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var daysAgoRegex = regexp.MustCompile(`(?i)^posted\s+(\d+)\s*days?\s+ago$`)

// PostedDate implements normalizePostedDate (§4.2, §8): accepts epoch
// seconds, epoch milliseconds, RFC3339/ISO strings, or loose "posted N days
// ago" text. Returns nil (absent) on parse failure rather than an error —
// a malformed date is never fatal to the rest of the record.
func PostedDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return epochToTime(n)
	}

	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return ptr(t.UTC())
		}
	}

	low := strings.ToLower(s)
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch low {
	case "posted today", "today":
		return &today
	case "posted yesterday", "yesterday":
		t := today.AddDate(0, 0, -1)
		return &t
	}
	if m := daysAgoRegex.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			t := today.AddDate(0, 0, -n)
			return &t
		}
	}
	return nil
}

// epochToTime disambiguates seconds from milliseconds by magnitude: any
// timestamp on or after year ~2001 expressed in seconds is well under
// 10^12, while the same instant in milliseconds is well above it.
func epochToTime(n int64) *time.Time {
	if n == 0 {
		return nil
	}
	if n > 1_000_000_000_000 {
		t := time.UnixMilli(n).UTC()
		return &t
	}
	t := time.Unix(n, 0).UTC()
	return &t
}

func ptr(t time.Time) *time.Time { return &t }
