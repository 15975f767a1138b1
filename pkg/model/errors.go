package model

import (
	"fmt"
	"net/http"
	"strings"
)

// HTTPError reports a non-200 response from coinmarketcap.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("coinmarketcap: unexpected status %d for %s", e.StatusCode, e.URL)
}

// RateLimitError reports an HTTP 429 response. Callers catching it may want
// to back off and retry at a higher layer.
type RateLimitError struct {
	HTTPError
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("coinmarketcap: rate limited (429) for %s", e.URL)
}

// NewHTTPError builds the typed error for a non-200 status.
func NewHTTPError(statusCode int, url string) error {
	if statusCode == http.StatusTooManyRequests {
		return &RateLimitError{HTTPError{URL: url, StatusCode: statusCode}}
	}
	return &HTTPError{URL: url, StatusCode: statusCode}
}

// SchemaError reports that an expected structural element was absent from a
// successfully fetched page. Fragment carries the offending markup or JSON
// excerpt for debugging upstream drift.
type SchemaError struct {
	What     string
	Fragment string
}

func (e *SchemaError) Error() string {
	frag := e.Fragment
	if len(frag) > 120 {
		frag = frag[:120] + "..."
	}
	if frag == "" {
		return fmt.Sprintf("coinmarketcap: source schema drift: %s", e.What)
	}
	return fmt.Sprintf("coinmarketcap: source schema drift: %s (fragment: %q)", e.What, frag)
}

// AmbiguousSymbolError reports a symbol mapping to more than one slug.
type AmbiguousSymbolError struct {
	Symbol     string
	Candidates []string
}

func (e *AmbiguousSymbolError) Error() string {
	return fmt.Sprintf("coinmarketcap: symbol %q is ambiguous, candidate slugs: %s",
		e.Symbol, strings.Join(e.Candidates, ", "))
}

// UnknownIdentifierError reports an identifier absent from the symbol table.
type UnknownIdentifierError struct {
	Identifier string
}

func (e *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("coinmarketcap: no currency found matching %q", e.Identifier)
}

// InvalidArgumentError reports a caller-supplied value outside the accepted
// enumerated set.
type InvalidArgumentError struct {
	Argument string
	Allowed  []string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("coinmarketcap: %q is not a valid argument (allowed: %s)",
		e.Argument, strings.Join(e.Allowed, ", "))
}

// ParseError reports a token that matched neither a numeric pattern nor a
// known placeholder. Distinct from a legitimate null.
type ParseError struct {
	Token string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("coinmarketcap: cannot parse numeric token %q", e.Token)
}
