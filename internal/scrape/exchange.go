package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mondeja/gomarketcap/pkg/model"
)

// Exchange normalizes a per-exchange detail page.
func (p *Parser) Exchange(body []byte) (*model.ExchangeDetail, error) {
	doc, err := parseDoc(body)
	if err != nil {
		return nil, &model.SchemaError{What: "exchange page is not parseable markup"}
	}

	summary := doc.Find("div.exchange-summary").First()
	if summary.Length() == 0 {
		return nil, &model.SchemaError{
			What:     "exchange page has no summary block",
			Fragment: clip(body),
		}
	}

	detail := &model.ExchangeDetail{
		Name:   summary.AttrOr("data-name", ""),
		Slug:   summary.AttrOr("data-slug", ""),
		Social: map[string]string{},
	}
	if detail.Name == "" {
		return nil, &model.SchemaError{
			What:     "exchange summary block lacks a name",
			Fragment: snippet(summary),
		}
	}

	if href, ok := summary.Find("a.website").Attr("href"); ok {
		detail.Website = href
	}

	volume, err := p.co.Amount(cellText(summary.Find("span.total-volume")))
	if err != nil {
		return nil, err
	}
	detail.TotalVolume = volume

	doc.Find("ul.exchange-social a").Each(func(_ int, a *goquery.Selection) {
		platform := a.AttrOr("data-platform", "")
		href := a.AttrOr("href", "")
		if platform != "" && href != "" {
			detail.Social[platform] = href
		}
	})

	markets, err := p.exchangeMarkets(doc.Find("table#markets tbody").First(), body)
	if err != nil {
		return nil, err
	}
	detail.Markets = markets

	return detail, nil
}

// exchangeMarkets maps the market rows of an exchange page:
// [rank, currency, pair, volume_24h, price, percent_volume, updated].
func (p *Parser) exchangeMarkets(tbody *goquery.Selection, body []byte) ([]model.ExchangeMarket, error) {
	if tbody.Length() == 0 {
		return nil, &model.SchemaError{
			What:     "exchange page has no markets table",
			Fragment: clip(body),
		}
	}

	var markets []model.ExchangeMarket
	var rowErr error

	tbody.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if isNoiseRow(row, cells) {
			return true
		}
		if cells.Length() < 7 {
			rowErr = &model.SchemaError{
				What:     fmt.Sprintf("exchange market row has %d columns, want 7", cells.Length()),
				Fragment: snippet(row),
			}
			return false
		}

		market, err := p.exchangeMarket(cells, row)
		if err != nil {
			rowErr = err
			return false
		}
		markets = append(markets, *market)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return markets, nil
}

func (p *Parser) exchangeMarket(cells *goquery.Selection, row *goquery.Selection) (*model.ExchangeMarket, error) {
	rank, err := p.co.Int(cellText(cells.Eq(0)))
	if err != nil {
		return nil, err
	}

	pair := strings.TrimSuffix(cellText(cells.Eq(2)), " *")
	pair = strings.TrimSuffix(pair, "*")
	if strings.Count(pair, "/") != 1 {
		return nil, &model.SchemaError{
			What:     fmt.Sprintf("exchange market pair %q does not contain exactly one separator", pair),
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

	market := &model.ExchangeMarket{
		Currency: cellText(cells.Eq(1)),
		Pair:     pair,
		Updated:  strings.EqualFold(cellText(cells.Eq(6)), "Recently"),
	}
	if rank != nil {
		market.Rank = *rank
	}
	if volume != nil {
		market.Volume24h = *volume
	}
	if price != nil {
		market.Price = *price
	}
	if percent != nil {
		market.PercentVolume = *percent
	}
	return market, nil
}
