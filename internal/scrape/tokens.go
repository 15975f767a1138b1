package scrape

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/mondeja/gomarketcap/pkg/model"
)

// Tokens normalizes the platform-tokens listing.
func (p *Parser) Tokens(body []byte) ([]model.TokenListing, error) {
	doc, err := parseDoc(body)
	if err != nil {
		return nil, &model.SchemaError{What: "tokens page is not parseable markup"}
	}

	tbody := doc.Find("table#tokens tbody").First()
	if tbody.Length() == 0 {
		return nil, &model.SchemaError{
			What:     "tokens page has no listing table",
			Fragment: clip(body),
		}
	}

	var tokens []model.TokenListing
	var rowErr error

	tbody.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if isNoiseRow(row, cells) {
			return true
		}
		if cells.Length() < 7 {
			rowErr = &model.SchemaError{
				What:     fmt.Sprintf("token row has %d columns, want 7", cells.Length()),
				Fragment: snippet(row),
			}
			return false
		}

		// Columns: [name, symbol, platform, market_cap, price,
		// circulating_supply, volume_24h].
		token := model.TokenListing{
			Name:   cellText(cells.Eq(0)),
			Symbol: cellText(cells.Eq(1)),
		}
		if platform := cellText(cells.Eq(2)); !isPlaceholderText(platform) {
			token.Platform = platform
		}

		fields := []struct {
			text string
			dst  **decimal.Decimal
		}{
			{cellText(cells.Eq(3)), &token.MarketCap},
			{cellText(cells.Eq(4)), &token.Price},
			{cellText(cells.Eq(5)), &token.CirculatingSupply},
			{cellText(cells.Eq(6)), &token.Volume24h},
		}
		for _, f := range fields {
			d, err := p.co.Amount(f.text)
			if err != nil {
				rowErr = err
				return false
			}
			*f.dst = d
		}

		tokens = append(tokens, token)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return tokens, nil
}
