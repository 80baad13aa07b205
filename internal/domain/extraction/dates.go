// Package extraction turns free-form Spanish expense text into structured
// expense data without calling any external service. It is the "direct match"
// half of the assistant: ordered regex heuristics for amounts, descriptions
// and temporal phrases, plus a spoken-number normalizer for voice input.
package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateRule maps a temporal phrase to a date offset from the reference time.
type dateRule struct {
	re      *regexp.Regexp
	resolve func(m []string, now time.Time) time.Time
}

// Ordered: first match wins. More specific phrases sit next to broader ones
// in a single pass, so reordering entries changes observable behavior.
var dateRules = []dateRule{
	{
		re: regexp.MustCompile(`\bmes\s+pasado\b`),
		resolve: func(_ []string, now time.Time) time.Time {
			return now.AddDate(0, -1, 0)
		},
	},
	{
		re: regexp.MustCompile(`\bayer\b`),
		resolve: func(_ []string, now time.Time) time.Time {
			return now.AddDate(0, 0, -1)
		},
	},
	{
		re: regexp.MustCompile(`\bhace\s+(\d+)\s+d[ií]as?\b`),
		resolve: func(m []string, now time.Time) time.Time {
			n, _ := strconv.Atoi(m[1])
			return now.AddDate(0, 0, -n)
		},
	},
	{
		re: regexp.MustCompile(`\bhace\s+(\d+)\s+mes(?:es)?\b`),
		resolve: func(m []string, now time.Time) time.Time {
			n, _ := strconv.Atoi(m[1])
			return now.AddDate(0, -n, 0)
		},
	},
}

// ISODate is the wire format for expense dates.
const ISODate = "2006-01-02"

// ResolveDate maps temporal phrases ("ayer", "hace 3 días", "mes pasado") in
// text to a concrete ISO date relative to now. When no phrase matches it
// returns now itself. It is total: every input yields a valid date string.
func ResolveDate(text string, now time.Time) string {
	lower := strings.ToLower(text)
	for _, rule := range dateRules {
		if m := rule.re.FindStringSubmatch(lower); m != nil {
			return rule.resolve(m, now).Format(ISODate)
		}
	}
	return now.Format(ISODate)
}
