package normalize

import (
	"strings"

	"jobscrapecore/internal/domain"
)

var employmentTokens = map[string]domain.EmploymentType{
	"full-time":  domain.EmploymentFullTime,
	"fulltime":   domain.EmploymentFullTime,
	"full_time":  domain.EmploymentFullTime,
	"part-time":  domain.EmploymentPartTime,
	"parttime":   domain.EmploymentPartTime,
	"part_time":  domain.EmploymentPartTime,
	"contract":   domain.EmploymentContract,
	"contractor": domain.EmploymentContract,
	"intern":     domain.EmploymentIntern,
	"internship": domain.EmploymentIntern,
	"temporary":  domain.EmploymentTemporary,
	"temp":       domain.EmploymentTemporary,
}

// EmploymentType implements parseEmploymentType (§4.2): lower-case, turn
// spaces and underscores into dashes, then match against the enum table.
// Unrecognized input returns "" rather than guessing.
func EmploymentType(raw string) domain.EmploymentType {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	if t, ok := employmentTokens[s]; ok {
		return t
	}
	if t, ok := employmentTokens[strings.ReplaceAll(s, "-", "")]; ok {
		return t
	}
	return ""
}
