// Package coerce turns decorated text tokens scraped from coinmarketcap
// ("$1,234.56", "12.3%", "?", "Low Vol") into decimal values or explicit
// nulls. Placeholders are never errors; a genuinely malformed token is.
package coerce

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mondeja/gomarketcap/pkg/model"
)

// Constructor builds the numeric value from an undecorated token. Injected so
// callers can choose exact decimal semantics or float64 round-tripping.
type Constructor func(s string) (decimal.Decimal, error)

// Exact parses the token with full decimal precision.
func Exact(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// Binary parses through float64, matching consumers that compare against
// values produced by binary floating point math.
func Binary(s string) (decimal.Decimal, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(f), nil
}

// placeholders are upstream markers for "no data". All map to a nil value.
var placeholders = map[string]bool{
	"":        true,
	"?":       true,
	"-":       true,
	"Low Vol": true,
	"None":    true,
}

// IsPlaceholder reports whether the trimmed token is a known null marker.
func IsPlaceholder(token string) bool {
	return placeholders[strings.TrimSpace(token)]
}

// Coercer applies one Constructor uniformly across every parsed field.
type Coercer struct {
	construct Constructor
}

// New returns a Coercer. A nil constructor selects Exact.
func New(c Constructor) *Coercer {
	if c == nil {
		c = Exact
	}
	return &Coercer{construct: c}
}

// Amount parses a currency or supply token. Strips currency signs, thousands
// separators, superscript asterisks, percent signs and whitespace. Returns
// (nil, nil) for placeholders. An amount of exactly "0" yields a zero value,
// never nil.
func (c *Coercer) Amount(token string) (*decimal.Decimal, error) {
	cleaned, ok := strip(token)
	if !ok {
		return nil, nil
	}
	d, err := c.construct(cleaned)
	if err != nil {
		return nil, &model.ParseError{Token: token}
	}
	return &d, nil
}

// Percent parses a percentage token, tolerating a leading or trailing "%"
// and an explicit sign. Placeholder handling matches Amount.
func (c *Coercer) Percent(token string) (*decimal.Decimal, error) {
	return c.Amount(token)
}

// Int parses an integer token such as a rank cell. Placeholders yield nil.
func (c *Coercer) Int(token string) (*int, error) {
	cleaned, ok := strip(token)
	if !ok {
		return nil, nil
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		d, derr := c.construct(cleaned)
		if derr != nil {
			return nil, &model.ParseError{Token: token}
		}
		n = int(d.IntPart())
	}
	return &n, nil
}

// strip removes decoration and reports whether a numeric candidate remains.
// The second return is false for placeholder tokens.
func strip(token string) (string, bool) {
	trimmed := strings.TrimSpace(token)
	if placeholders[trimmed] {
		return "", false
	}

	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		switch r {
		case '$', ',', '*', '%', ' ', '\n', '\t', ' ':
			continue
		}
		b.WriteRune(r)
	}

	cleaned := b.String()
	if placeholders[cleaned] {
		return "", false
	}
	return cleaned, true
}
