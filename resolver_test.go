package gomarketcap

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mondeja/gomarketcap/pkg/model"
)

func testIdentities() []model.CurrencyIdentity {
	return []model.CurrencyIdentity{
		{ID: 1, Name: "Bitcoin", Symbol: "BTC", Slug: "bitcoin"},
		{ID: 1027, Name: "Ethereum", Symbol: "ETH", Slug: "ethereum"},
		{ID: 2083, Name: "Bitcoin Gold", Symbol: "BTG", Slug: "bitcoin-gold"},
		{ID: 1389, Name: "Bitgem", Symbol: "BTG", Slug: "bitgem"},
		{ID: 93, Name: "42-coin", Symbol: "42", Slug: "42-coin"},
		{ID: 1817, Name: "CoinDash", Symbol: "CDT", Slug: "coindash"},
	}
}

func TestFieldType(t *testing.T) {
	cases := map[string]FieldKind{
		"1027":         FieldID,
		"BTC":          FieldSymbol,
		"B2X":          FieldSymbol,
		"bitcoin":      FieldSlug,
		"bitcoin-gold": FieldSlug,
		"Bitcoin Gold": FieldName,
	}
	for value, want := range cases {
		if got := FieldType(value); got != want {
			t.Errorf("FieldType(%q) = %q, want %q", value, got, want)
		}
	}
}

func TestIsSymbol(t *testing.T) {
	for _, token := range []string{"BTC", "ETH", "B2X", "42", "$$$"} {
		if !IsSymbol(token) {
			t.Errorf("IsSymbol(%q) = false, want true", token)
		}
	}
	for _, token := range []string{"bitcoin", "Bitcoin", "123"} {
		if IsSymbol(token) {
			t.Errorf("IsSymbol(%q) = true, want false", token)
		}
	}
}

func TestResolver_BySymbolAndSlug(t *testing.T) {
	r := newResolver()
	r.load(testIdentities())

	id, err := r.resolve("BTC")
	if err != nil || id.Slug != "bitcoin" {
		t.Errorf("resolve(BTC) = %+v, %v", id, err)
	}
	id, err = r.resolve("ethereum")
	if err != nil || id.Symbol != "ETH" {
		t.Errorf("resolve(ethereum) = %+v, %v", id, err)
	}
	id, err = r.resolve("Bitcoin Gold")
	if err != nil || id.Slug != "bitcoin-gold" {
		t.Errorf("resolve(Bitcoin Gold) = %+v, %v", id, err)
	}
}

func TestResolver_ByID(t *testing.T) {
	r := newResolver()
	r.load(testIdentities())

	// A numeric identifier outside the override table resolves through
	// the id index.
	id, err := r.resolve("1027")
	if err != nil || id.Slug != "ethereum" {
		t.Errorf("resolve(1027) = %+v, %v", id, err)
	}

	_, err = r.resolve("999999")
	var unknownErr *model.UnknownIdentifierError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error = %v, want UnknownIdentifierError", err)
	}
}

func TestResolver_Identities(t *testing.T) {
	r := newResolver()
	r.load(testIdentities())

	got := r.identities()
	if len(got) != 5 {
		t.Fatalf("identities = %d entries, want 5 (coindash dropped)", len(got))
	}
	if got[0].Slug != "bitcoin" || got[4].Slug != "42-coin" {
		t.Errorf("identities out of listing order: %+v", got)
	}

	// The returned slice is a copy; mutating it leaves the table intact.
	got[0] = model.CurrencyIdentity{}
	if again := r.identities(); again[0].Slug != "bitcoin" {
		t.Error("identities returned the internal slice")
	}
}

func TestResolver_AmbiguousSymbol(t *testing.T) {
	r := newResolver()
	r.load(testIdentities())

	_, err := r.resolve("BTG")

	var ambErr *model.AmbiguousSymbolError
	if !errors.As(err, &ambErr) {
		t.Fatalf("error = %v, want AmbiguousSymbolError", err)
	}
	want := []string{"bitcoin-gold", "bitgem"}
	if !reflect.DeepEqual(ambErr.Candidates, want) {
		t.Errorf("candidates = %v, want %v", ambErr.Candidates, want)
	}
}

func TestResolver_ExceptionalOverride(t *testing.T) {
	r := newResolver()
	r.load(testIdentities())

	// "42" looks like an id but the override table pins it to its slug.
	id, err := r.resolve("42")
	if err != nil || id.Slug != "42-coin" {
		t.Errorf("resolve(42) = %+v, %v", id, err)
	}
}

func TestResolver_Unknown(t *testing.T) {
	r := newResolver()
	r.load(testIdentities())

	_, err := r.resolve("NOPE")

	var unknownErr *model.UnknownIdentifierError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("error = %v, want UnknownIdentifierError", err)
	}
}

func TestResolver_InvalidCoinsDropped(t *testing.T) {
	r := newResolver()
	r.load(testIdentities())

	if _, err := r.resolve("coindash"); err == nil {
		t.Error("coindash should be dropped from the table")
	}
	for _, slug := range r.slugs() {
		if slug == "coindash" {
			t.Error("coindash present in slug list")
		}
	}
}

func TestResolver_Idempotent(t *testing.T) {
	r := newResolver()
	r.load(testIdentities())

	first, err1 := r.resolve("BTC")
	second, err2 := r.resolve("BTC")
	if err1 != nil || err2 != nil || !reflect.DeepEqual(first, second) {
		t.Errorf("resolve not idempotent: %+v / %+v (%v, %v)", first, second, err1, err2)
	}
}
