package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/mondeja/gomarketcap/pkg/model"
)

var nonDigits = regexp.MustCompile(`\D`)

// Recently normalizes the recently-added listing. Placeholder cells ("?",
// "Low Vol") degrade to nil, never errors; an asterisk on circulating supply
// marks a mineable coin.
func (p *Parser) Recently(body []byte) ([]model.RecentListing, error) {
	doc, err := parseDoc(body)
	if err != nil {
		return nil, &model.SchemaError{What: "recently-added page is not parseable markup"}
	}

	tbody := doc.Find("table#recently tbody").First()
	if tbody.Length() == 0 {
		return nil, &model.SchemaError{
			What:     "recently-added page has no listing table",
			Fragment: clip(body),
		}
	}

	var listings []model.RecentListing
	var rowErr error

	tbody.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 8 {
			rowErr = &model.SchemaError{
				What:     fmt.Sprintf("recently-added row has %d columns, want 8", cells.Length()),
				Fragment: snippet(row),
			}
			return false
		}

		// Columns: [name, symbol, added, market_cap, price,
		// circulating_supply, volume_24h, percent_change].
		listing := model.RecentListing{
			Name:   cellText(cells.Eq(0)),
			Symbol: cellText(cells.Eq(1)),
		}
		if days, err := strconv.Atoi(nonDigits.ReplaceAllString(cellText(cells.Eq(2)), "")); err == nil {
			listing.DaysAgo = days
		}

		circText := cellText(cells.Eq(5))
		listing.Mineable = strings.Contains(circText, "*")

		fields := []struct {
			text string
			dst  **decimal.Decimal
		}{
			{cellText(cells.Eq(3)), &listing.MarketCap},
			{cellText(cells.Eq(4)), &listing.Price},
			{circText, &listing.CirculatingSupply},
			{cellText(cells.Eq(6)), &listing.Volume24h},
			{cellText(cells.Eq(7)), &listing.PercentChange},
		}
		for _, f := range fields {
			d, err := p.co.Amount(f.text)
			if err != nil {
				rowErr = err
				return false
			}
			*f.dst = d
		}

		listings = append(listings, listing)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return listings, nil
}
