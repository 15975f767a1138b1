package coerce

import (
	"testing"
)

// FuzzAmount checks that arbitrary tokens never panic and that the
// tri-state contract holds: value, nil, or ParseError, never two at once.
func FuzzAmount(f *testing.F) {
	seeds := []string{
		"$1,234.56", "?", "Low Vol", "", "0", "-5.2%", "1e9",
		"16,812,456 *", "garbage", "12.3.4", "$", "-", "+",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	co := New(nil)
	f.Fuzz(func(t *testing.T, token string) {
		got, err := co.Amount(token)
		if got != nil && err != nil {
			t.Errorf("Amount(%q) returned both value and error", token)
		}
		if IsPlaceholder(token) && (got != nil || err != nil) {
			t.Errorf("Amount(%q) should map placeholder to (nil, nil)", token)
		}
	})
}
