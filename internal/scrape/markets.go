package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/mondeja/gomarketcap/pkg/model"
)

var percentCeiling = decimal.NewFromInt(100)

// Markets normalizes the markets table of a currency page. Separator rows,
// summary rows and empty rows are filtered before positional mapping. Every
// pair must contain exactly one "/" and percent_volume must not exceed 100;
// either violation is a hard SchemaError.
func (p *Parser) Markets(body []byte) ([]model.MarketEntry, error) {
	doc, err := parseDoc(body)
	if err != nil {
		return nil, &model.SchemaError{What: "markets page is not parseable markup"}
	}

	tbody := doc.Find("table#markets tbody").First()
	if tbody.Length() == 0 {
		return nil, &model.SchemaError{
			What:     "markets page has no markets table",
			Fragment: clip(body),
		}
	}

	var entries []model.MarketEntry
	var rowErr error

	tbody.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if isNoiseRow(row, cells) {
			return true
		}
		if cells.Length() < 7 {
			rowErr = &model.SchemaError{
				What:     fmt.Sprintf("market row has %d columns, want 7", cells.Length()),
				Fragment: snippet(row),
			}
			return false
		}

		entry, err := p.marketEntry(cells, row)
		if err != nil {
			rowErr = err
			return false
		}
		entries = append(entries, *entry)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return entries, nil
}

// marketEntry maps the fixed-position columns of one market row:
// [#, exchange, pair, volume_24h, price, percent_volume, updated].
func (p *Parser) marketEntry(cells *goquery.Selection, row *goquery.Selection) (*model.MarketEntry, error) {
	pair := strings.TrimSuffix(cellText(cells.Eq(2)), " *")
	pair = strings.TrimSuffix(pair, "*")
	if strings.Count(pair, "/") != 1 {
		return nil, &model.SchemaError{
			What:     fmt.Sprintf("market pair %q does not contain exactly one separator", pair),
			Fragment: snippet(row),
		}
	}

	volume, err := p.co.Amount(cellText(cells.Eq(3)))
	if err != nil {
		return nil, err
	}
	price, err := p.co.Amount(cellText(cells.Eq(4)))
	if err != nil {
		return nil, err
	}
	percent, err := p.co.Percent(cellText(cells.Eq(5)))
	if err != nil {
		return nil, err
	}
	if percent != nil && percent.GreaterThan(percentCeiling) {
		return nil, &model.SchemaError{
			What:     fmt.Sprintf("percent_volume %s exceeds 100", percent),
			Fragment: snippet(row),
		}
	}

	entry := &model.MarketEntry{
		Exchange: cellText(cells.Eq(1)),
		Pair:     pair,
		Updated:  strings.EqualFold(cellText(cells.Eq(6)), "Recently"),
	}
	if volume != nil {
		entry.Volume24h = *volume
	}
	if price != nil {
		entry.Price = *price
	}
	if percent != nil {
		entry.PercentVolume = *percent
	}
	return entry, nil
}

// isNoiseRow reports structural noise: separators, "Total" summaries and
// rows with no cell content.
func isNoiseRow(row *goquery.Selection, cells *goquery.Selection) bool {
	if cells.Length() == 0 {
		return true
	}
	text := cellText(row)
	if text == "" {
		return true
	}
	if strings.HasPrefix(text, "Total") {
		return true
	}
	return row.HasClass("divider")
}
