package extraction

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DirectMatch is the result of local pattern extraction: everything needed to
// build an expense draft without an LLM round trip.
type DirectMatch struct {
	Amount      decimal.Decimal
	Description string
	Date        string // ISO date, already resolved against the input text
}

// expensePattern binds a compiled pattern to the submatch indexes holding the
// amount and description. The matcher evaluates patterns as an ordered list
// with early exit, so precedence is explicit and testable per entry.
type expensePattern struct {
	re        *regexp.Regexp
	amountIdx int
	descIdx   int
	// spoken marks patterns whose amount group may be number words rather
	// than digits ("nueve coma treinta").
	spoken bool
}

// Matcher extracts (amount, description) pairs from lowered Spanish text.
// The zero value is not usable; build one with NewMatcher or NewVoiceMatcher.
type Matcher struct {
	patterns []expensePattern
}

const amountGroup = `(\d+(?:[.,]\d{1,2})?)`

// chatPatterns covers typed phrasing, most common first.
func chatPatterns() []expensePattern {
	return []expensePattern{
		{
			re:        regexp.MustCompile(`gast(?:é|e|ado|ando)\s+` + amountGroup + `\s*€?\s+(?:en|de|por)\s+(.+)`),
			amountIdx: 1, descIdx: 2,
		},
		{
			re:        regexp.MustCompile(`añad(?:e|ido)\s+(?:un\s+)?gasto\s+de\s+` + amountGroup + `\s*€?\s+en\s+(.+)`),
			amountIdx: 1, descIdx: 2,
		},
		{
			re:        regexp.MustCompile(`pagu(?:é|e)\s+` + amountGroup + `\s*€?\s+(?:en|de|por)\s+(.+)`),
			amountIdx: 1, descIdx: 2,
		},
		{
			re:        regexp.MustCompile(`compr(?:é|e)\s+` + amountGroup + `\s*€?\s+(?:en|de)\s+(.+)`),
			amountIdx: 1, descIdx: 2,
		},
		{
			re:        regexp.MustCompile(amountGroup + `\s*€\s+(?:en|de)\s+(.+)`),
			amountIdx: 1, descIdx: 2,
		},
	}
}

// voicePatterns handles spoken phrasing the chat patterns never see: amounts
// spelled out as words, amount-first "que ..." clauses and description-first
// "... que me ha costado ..." clauses. They run before the chat patterns
// because they are more specific to dictated input.
func voicePatterns() []expensePattern {
	const spokenAmount = `(\d+(?:[.,]\d{1,2})?|[\p{L}]+(?:\s+coma\s+[\p{L}]+)?)`
	return []expensePattern{
		{
			re:        regexp.MustCompile(`gasto\s+(?:a|en|de)\s+(.+?)\s+que\s+me\s+ha\s+costado\s+(.+)`),
			amountIdx: 2, descIdx: 1,
			spoken: true,
		},
		{
			re:        regexp.MustCompile(`\bque\s+` + spokenAmount + `\s+(?:a|en)\s+(.+)`),
			amountIdx: 1, descIdx: 2,
			spoken: true,
		},
	}
}

// NewMatcher builds the matcher for typed chat input.
func NewMatcher() *Matcher {
	return &Matcher{patterns: chatPatterns()}
}

// NewVoiceMatcher builds the matcher for dictated input. It tries the voice
// patterns first, then falls through to the chat patterns.
func NewVoiceMatcher() *Matcher {
	return &Matcher{patterns: append(voicePatterns(), chatPatterns()...)}
}

// Detect runs the ordered pattern list against text and stops at the first
// pattern that yields a strictly positive amount and a non-empty description
// after cleanup. A false return is the normal "defer to the AI fallback"
// signal, never an error.
func (m *Matcher) Detect(text string, now time.Time) (DirectMatch, bool) {
	date := ResolveDate(text, now)
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, p := range m.patterns {
		sm := p.re.FindStringSubmatch(lower)
		if sm == nil {
			continue
		}

		amount, ok := parseAmount(sm[p.amountIdx], p.spoken)
		if !ok || !amount.IsPositive() {
			continue
		}

		desc := cleanDescription(sm[p.descIdx])
		if desc == "" {
			continue
		}

		return DirectMatch{Amount: amount, Description: desc, Date: date}, true
	}

	return DirectMatch{}, false
}

// parseAmount reads a digit amount, accepting the European comma decimal. For
// spoken patterns a failed numeric parse falls back to the word table.
func parseAmount(raw string, spoken bool) (decimal.Decimal, bool) {
	normalized := strings.Replace(strings.TrimSpace(raw), ",", ".", 1)
	if d, err := decimal.NewFromString(normalized); err == nil {
		return d, true
	}
	if spoken {
		if v, ok := TextToNumber(raw); ok {
			return decimal.NewFromFloat(v), true
		}
	}
	return decimal.Zero, false
}

var trailingQualifiers = []*regexp.Regexp{
	regexp.MustCompile(`\s+(?:del|el)\s+mes\s+pasado$`),
	regexp.MustCompile(`\s+mes\s+pasado$`),
	regexp.MustCompile(`\s+ayer$`),
	regexp.MustCompile(`\s+hace\s+\d+\s+d[ií]as?$`),
	regexp.MustCompile(`\s+hace\s+\d+\s+mes(?:es)?$`),
}

var fillerRe = regexp.MustCompile(`\s+que\s+me\s+ha\s+costado\b.*$`)

// cleanDescription strips trailing temporal qualifiers and spoken filler so
// "supermercado el mes pasado" stores as "supermercado".
func cleanDescription(desc string) string {
	desc = strings.TrimSpace(desc)
	desc = fillerRe.ReplaceAllString(desc, "")
	for _, re := range trailingQualifiers {
		desc = re.ReplaceAllString(desc, "")
	}
	return strings.Trim(desc, " .,;")
}
