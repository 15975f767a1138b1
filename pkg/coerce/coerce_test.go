package coerce

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mondeja/gomarketcap/pkg/model"
)

func TestAmount_Decorated(t *testing.T) {
	co := New(nil)

	cases := []struct {
		token string
		want  string
	}{
		{"$65,000.50", "65000.50"},
		{"$1,234.56", "1234.56"},
		{"1,234,567", "1234567"},
		{"12.3%", "12.3"},
		{"-5.21 %", "-5.21"},
		{"16,812,456 *", "16812456"},
		{"  $0.004217  ", "0.004217"},
		{"+7.5", "7.5"},
	}

	for _, tc := range cases {
		got, err := co.Amount(tc.token)
		if err != nil {
			t.Fatalf("Amount(%q) unexpected error: %v", tc.token, err)
		}
		if got == nil {
			t.Fatalf("Amount(%q) = nil, want %s", tc.token, tc.want)
		}
		want, _ := decimal.NewFromString(tc.want)
		if !got.Equal(want) {
			t.Errorf("Amount(%q) = %s, want %s", tc.token, got, tc.want)
		}
	}
}

func TestAmount_Placeholders(t *testing.T) {
	co := New(nil)

	for _, token := range []string{"?", "", "Low Vol", "-", " ? ", "None"} {
		got, err := co.Amount(token)
		if err != nil {
			t.Fatalf("Amount(%q) unexpected error: %v", token, err)
		}
		if got != nil {
			t.Errorf("Amount(%q) = %s, want nil", token, got)
		}
	}
}

func TestAmount_ZeroIsNotNull(t *testing.T) {
	co := New(nil)

	got, err := co.Amount("0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("Amount(\"0\") = nil, want zero value")
	}
	if !got.IsZero() {
		t.Errorf("Amount(\"0\") = %s, want 0", got)
	}
}

func TestAmount_Malformed(t *testing.T) {
	co := New(nil)

	for _, token := range []string{"abc", "12.3.4", "N/A", "1,2,3x"} {
		_, err := co.Amount(token)
		var perr *model.ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Amount(%q) error = %v, want ParseError", token, err)
		}
	}
}

func TestAmount_BinaryConstructor(t *testing.T) {
	co := New(Binary)

	got, err := co.Amount("$65,000.50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := decimal.NewFromFloat(65000.50)
	if !got.Equal(want) {
		t.Errorf("Amount = %s, want %s", got, want)
	}
}

func TestPercent(t *testing.T) {
	co := New(nil)

	got, err := co.Percent("-12.05%")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := decimal.NewFromString("-12.05")
	if !got.Equal(want) {
		t.Errorf("Percent = %s, want %s", got, want)
	}

	if got, _ := co.Percent("?"); got != nil {
		t.Errorf("Percent(\"?\") = %s, want nil", got)
	}
}

func TestInt(t *testing.T) {
	co := New(nil)

	got, err := co.Int("1")
	if err != nil || got == nil || *got != 1 {
		t.Fatalf("Int(\"1\") = %v, %v; want 1", got, err)
	}

	got, err = co.Int("1,024")
	if err != nil || got == nil || *got != 1024 {
		t.Fatalf("Int(\"1,024\") = %v, %v; want 1024", got, err)
	}

	if got, _ := co.Int("?"); got != nil {
		t.Errorf("Int(\"?\") = %d, want nil", *got)
	}
}

func TestIsPlaceholder(t *testing.T) {
	if !IsPlaceholder(" Low Vol ") {
		t.Error("expected \"Low Vol\" to be a placeholder")
	}
	if IsPlaceholder("0") {
		t.Error("\"0\" must not be treated as a placeholder")
	}
}
