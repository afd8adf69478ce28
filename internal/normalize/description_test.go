package normalize

import (
	"testing"

	"jobscrapecore/internal/domain"
)

func TestDescriptionPlainPassthrough(t *testing.T) {
	out, format := Description("We are looking for a great engineer.")
	if format != domain.DescriptionPlain {
		t.Errorf("format = %q, want plain", format)
	}
	if out != "We are looking for a great engineer." {
		t.Errorf("unexpected normalization of plain text: %q", out)
	}
}

func TestDescriptionIdempotentOnPlain(t *testing.T) {
	first, _ := Description("Plain text description with no markup at all.")
	second, format := Description(first)
	if second != first {
		t.Errorf("normalizeDescription not idempotent: %q -> %q", first, second)
	}
	if format != domain.DescriptionPlain {
		t.Errorf("format = %q, want plain", format)
	}
}

func TestDescriptionHTMLConvertsToMarkdown(t *testing.T) {
	out, format := Description("<p>Build <strong>great</strong> things.</p>")
	if format != domain.DescriptionMarkdown {
		t.Errorf("format = %q, want markdown", format)
	}
	if out == "" {
		t.Error("expected non-empty markdown output")
	}
}

func TestDescriptionEmpty(t *testing.T) {
	out, format := Description("")
	if out != "" || format != domain.DescriptionPlain {
		t.Errorf("empty input should return empty plain, got %q/%q", out, format)
	}
}
