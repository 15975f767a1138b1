package gomarketcap

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/mondeja/gomarketcap/pkg/model"
)

// exceptionalCoinSlugs overrides the symbol→slug mapping for tickers that
// collide with slugs or look numeric. Merged after the dynamic fetch;
// overrides always win.
var exceptionalCoinSlugs = map[string]string{
	"42":   "42-coin",
	"300":  "300-token",
	"611":  "sixeleven",
	"808":  "808coin",
	"888":  "octocoin",
	"1337": "1337coin",
	"$$$":  "money",
	"AMMO": "ammo-reloaded",
	"BTBc": "bitbase",
	"BTW":  "bitwhite",
}

// invalidCoins are listing entries known to 404 on every page; they are
// dropped from the table at load time.
var invalidCoins = map[string]bool{
	"coindash": true,
}

// FieldKind classifies a raw identifier by shape, driving which listing
// field it is looked up against.
type FieldKind string

const (
	FieldID     FieldKind = "id"
	FieldSymbol FieldKind = "symbol"
	FieldSlug   FieldKind = "website_slug"
	FieldName   FieldKind = "name"
)

var (
	allDigits = regexp.MustCompile(`^[0-9]+$`)
	slugShape = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// FieldType classifies value: all digits is an id, uppercase (possibly with
// digits) is a symbol, lowercase hyphen-separated is a slug, anything else
// is a display name.
func FieldType(value string) FieldKind {
	switch {
	case allDigits.MatchString(value):
		return FieldID
	case isUpperToken(value):
		return FieldSymbol
	case slugShape.MatchString(value):
		return FieldSlug
	default:
		return FieldName
	}
}

// isUpperToken reports a token with at least one letter and no lowercase
// letters.
func isUpperToken(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// IsSymbol reports whether token should be treated as a ticker symbol:
// uppercase-only, or a member of the exceptional override table.
func IsSymbol(token string) bool {
	if _, ok := exceptionalCoinSlugs[token]; ok {
		return true
	}
	return isUpperToken(token)
}

// resolver owns the cached symbol table. It belongs to one Client; there is
// no package-level table. Lookups hold a read lock, a refresh builds the new
// index aside and swaps it in whole, so readers never observe a partially
// merged table.
type resolver struct {
	mu       sync.RWMutex
	byID     map[int]model.CurrencyIdentity
	bySymbol map[string][]model.CurrencyIdentity
	bySlug   map[string]model.CurrencyIdentity
	byName   map[string]model.CurrencyIdentity
	ordered  []model.CurrencyIdentity
}

func newResolver() *resolver {
	return &resolver{
		byID:     map[int]model.CurrencyIdentity{},
		bySymbol: map[string][]model.CurrencyIdentity{},
		bySlug:   map[string]model.CurrencyIdentity{},
		byName:   map[string]model.CurrencyIdentity{},
	}
}

// load indexes a freshly fetched listing and swaps it in atomically.
func (r *resolver) load(entries []model.CurrencyIdentity) {
	byID := make(map[int]model.CurrencyIdentity, len(entries))
	bySymbol := make(map[string][]model.CurrencyIdentity, len(entries))
	bySlug := make(map[string]model.CurrencyIdentity, len(entries))
	byName := make(map[string]model.CurrencyIdentity, len(entries))
	ordered := make([]model.CurrencyIdentity, 0, len(entries))

	for _, e := range entries {
		if invalidCoins[e.Slug] {
			continue
		}
		byID[e.ID] = e
		bySymbol[e.Symbol] = append(bySymbol[e.Symbol], e)
		bySlug[e.Slug] = e
		byName[e.Name] = e
		ordered = append(ordered, e)
	}

	r.mu.Lock()
	r.byID = byID
	r.bySymbol = bySymbol
	r.bySlug = bySlug
	r.byName = byName
	r.ordered = ordered
	r.mu.Unlock()
}

// resolve maps a caller-supplied identifier to a unique currency identity.
// A symbol mapping to more than one slug fails with AmbiguousSymbolError
// naming every candidate; an identifier absent from the table fails with
// UnknownIdentifierError.
func (r *resolver) resolve(token string) (model.CurrencyIdentity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if slug, ok := exceptionalCoinSlugs[token]; ok {
		if id, ok := r.bySlug[slug]; ok {
			return id, nil
		}
		// The override names a slug the listing no longer carries; still
		// usable for URL building.
		return model.CurrencyIdentity{Symbol: token, Slug: slug}, nil
	}

	switch FieldType(token) {
	case FieldID:
		if n, err := strconv.Atoi(token); err == nil {
			if id, ok := r.byID[n]; ok {
				return id, nil
			}
		}
	case FieldSymbol:
		candidates := r.bySymbol[token]
		switch len(candidates) {
		case 0:
			return model.CurrencyIdentity{}, &model.UnknownIdentifierError{Identifier: token}
		case 1:
			return candidates[0], nil
		default:
			slugs := make([]string, len(candidates))
			for i, c := range candidates {
				slugs[i] = c.Slug
			}
			sort.Strings(slugs)
			return model.CurrencyIdentity{}, &model.AmbiguousSymbolError{Symbol: token, Candidates: slugs}
		}
	case FieldSlug:
		if id, ok := r.bySlug[token]; ok {
			return id, nil
		}
	case FieldName:
		if id, ok := r.byName[token]; ok {
			return id, nil
		}
	}
	return model.CurrencyIdentity{}, &model.UnknownIdentifierError{Identifier: token}
}

// symbols returns every known ticker symbol, sorted, duplicates removed.
func (r *resolver) symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.bySymbol))
	for s := range r.bySymbol {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// slugs returns every known currency slug in listing order.
func (r *resolver) slugs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.ordered))
	for i, e := range r.ordered {
		out[i] = e.Slug
	}
	return out
}

// identities returns a copy of every cached listing entry in listing order.
// Callers may hold the slice across a table refresh.
func (r *resolver) identities() []model.CurrencyIdentity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.CurrencyIdentity, len(r.ordered))
	copy(out, r.ordered)
	return out
}

func (r *resolver) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ordered)
}

// slugify turns a display name into the URL form used by exchange pages.
func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, ".", "-")
	return s
}
