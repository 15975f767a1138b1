package scrape

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mondeja/gomarketcap/pkg/model"
)

// rowKind tags each row of the all-exchanges table. The table interleaves
// exchange header rows, their market rows, per-exchange totals and filler,
// so rows are classified explicitly before being fed to the accumulator.
type rowKind int

const (
	rowNoise rowKind = iota
	rowExchangeHeader
	rowColumnHeader
	rowMarket
	rowTotal
)

// classifyRow decides the kind of one <tr> of the exchanges listing.
func classifyRow(row *goquery.Selection) rowKind {
	if _, ok := row.Attr("id"); ok {
		return rowExchangeHeader
	}

	text := cellText(row)
	switch {
	case text == "":
		return rowNoise
	case strings.Contains(text, "Pair"):
		return rowColumnHeader
	case strings.HasPrefix(text, "Total"):
		return rowTotal
	case strings.Contains(text, "View More"):
		return rowNoise
	}

	if row.Find("td").Length() >= 6 {
		return rowMarket
	}
	return rowNoise
}

// Exchanges normalizes the all-exchanges volume listing into per-exchange
// blocks. limit caps the number of exchanges returned; limit <= 0 returns
// every block.
func (p *Parser) Exchanges(body []byte, limit int) ([]model.ExchangeRanking, error) {
	doc, err := parseDoc(body)
	if err != nil {
		return nil, &model.SchemaError{What: "exchanges page is not parseable markup"}
	}

	table := doc.Find("table#exchanges").First()
	if table.Length() == 0 {
		return nil, &model.SchemaError{
			What:     "exchanges page has no listing table",
			Fragment: clip(body),
		}
	}

	var (
		result  []model.ExchangeRanking
		current *model.ExchangeRanking
		rowErr  error
	)

	flush := func() {
		if current != nil {
			result = append(result, *current)
			current = nil
		}
	}

	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		switch classifyRow(row) {
		case rowExchangeHeader:
			flush()
			if limit > 0 && len(result) >= limit {
				return false
			}
			id := row.AttrOr("id", "")
			rank, _ := strconv.Atoi(nonDigits.ReplaceAllString(cellText(row), ""))
			current = &model.ExchangeRanking{
				Rank: rank,
				Name: id,
			}

		case rowMarket:
			if current == nil {
				rowErr = &model.SchemaError{
					What:     "market row precedes any exchange header",
					Fragment: snippet(row),
				}
				return false
			}
			market, err := p.listingMarket(row)
			if err != nil {
				rowErr = err
				return false
			}
			// The upstream table occasionally repeats a market row
			// across page fragments; ranks are unique per exchange.
			for _, existing := range current.Markets {
				if existing.Rank == market.Rank {
					return true
				}
			}
			current.Markets = append(current.Markets, *market)

		case rowTotal:
			if current == nil {
				return true
			}
			total, err := p.co.Amount(strings.TrimPrefix(cellText(row), "Total"))
			if err != nil {
				rowErr = err
				return false
			}
			current.TotalVolume = total

		case rowColumnHeader, rowNoise:
			// skip
		}
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	if limit <= 0 || len(result) < limit {
		flush()
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// listingMarket maps the six columns of one listing market row:
// [rank, currency, pair, volume_24h, price, percent_volume].
func (p *Parser) listingMarket(row *goquery.Selection) (*model.ExchangeMarket, error) {
	cells := row.Find("td")

	rank, err := p.co.Int(cellText(cells.Eq(0)))
	if err != nil {
		return nil, err
	}

	pair := strings.TrimSuffix(cellText(cells.Eq(2)), " *")
	pair = strings.TrimSuffix(pair, "*")
	if strings.Count(pair, "/") != 1 {
		return nil, &model.SchemaError{
			What:     fmt.Sprintf("listing market pair %q does not contain exactly one separator", pair),
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
