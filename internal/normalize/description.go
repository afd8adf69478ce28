package normalize

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"jobscrapecore/internal/domain"
)

var htmlTagHints = []string{"<p", "<div", "<br", "<ul", "<li", "<span", "<strong", "<em", "<a ", "<h1", "<h2", "<h3"}

func looksLikeHTML(s string) bool {
	low := strings.ToLower(s)
	for _, hint := range htmlTagHints {
		if strings.Contains(low, hint) {
			return true
		}
	}
	return false
}

// Description implements normalizeDescription (§4.2): HTML input is
// converted to markdown, everything else passes through as plain text.
// Idempotent on already-plain strings since those never match looksLikeHTML.
func Description(raw string) (string, domain.DescriptionFormat) {
	if raw == "" {
		return "", domain.DescriptionPlain
	}
	if !looksLikeHTML(raw) {
		return CleanText(raw), domain.DescriptionPlain
	}
	out, err := htmltomarkdown.ConvertString(raw)
	if err != nil {
		return CleanText(raw), domain.DescriptionPlain
	}
	return strings.TrimSpace(out), domain.DescriptionMarkdown
}
