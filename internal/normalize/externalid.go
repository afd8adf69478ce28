package normalize

import (
	"strings"

	"jobscrapecore/internal/domain"
)

// ExternalID implements generateExternalId (§4.2, §6): "{platform}-" followed
// by the non-empty parts joined with "-", in the order given. Stable and
// total across ordered inputs so the same call always yields the same id.
func ExternalID(platform domain.Platform, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return string(platform) + "-" + strings.Join(kept, "-")
}
