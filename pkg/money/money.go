// Package money provides euro amount parsing and formatting for user-facing
// text. Arithmetic stays on shopspring/decimal; go-money handles display
// formatting so prompts and chat replies render amounts consistently.
package money

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// EUR is the only currency this application handles.
const EUR = "EUR"

// ParseEuro reads a user-entered euro amount, accepting both "12.50" and the
// European "12,50" form, with an optional trailing or leading euro sign.
func ParseEuro(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.Trim(cleaned, "€")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse euro amount %q: %w", s, err)
	}
	return d, nil
}

// ParseEuroOrZero is ParseEuro with the lenient default used when applying
// model output: anything unparseable becomes zero rather than an error.
func ParseEuroOrZero(s string) decimal.Decimal {
	d, err := ParseEuro(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatEuro renders an amount as a localized euro string ("€12.50").
func FormatEuro(d decimal.Decimal) string {
	cents := d.Shift(2).Round(0).IntPart()
	return gomoney.New(cents, EUR).Display()
}

// TwoDecimalString renders an amount with exactly two decimals and no
// currency symbol, the form the action directive carries on the wire.
func TwoDecimalString(d decimal.Decimal) string {
	return d.StringFixed(2)
}
