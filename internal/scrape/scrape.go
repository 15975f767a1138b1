// Package scrape converts raw coinmarketcap responses (HTML pages and JSON
// payloads) into the typed records of pkg/model. Normalizers tolerate
// placeholder cells and locale decoration but fail with model.SchemaError
// when an expected structural element is absent.
package scrape

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mondeja/gomarketcap/pkg/coerce"
)

// Parser holds the coercion strategy shared by every normalizer.
type Parser struct {
	co *coerce.Coercer
}

// NewParser builds a Parser. A nil coercer selects exact decimal parsing.
func NewParser(co *coerce.Coercer) *Parser {
	if co == nil {
		co = coerce.New(nil)
	}
	return &Parser{co: co}
}

func parseDoc(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// cellText returns the trimmed text content of a selection.
func cellText(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

// isPlaceholderText reports upstream null markers in text cells.
func isPlaceholderText(s string) bool {
	return coerce.IsPlaceholder(s)
}

// snippet renders a selection back to markup for SchemaError fragments.
func snippet(s *goquery.Selection) string {
	html, err := goquery.OuterHtml(s)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(html)
}
