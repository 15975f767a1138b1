package scrape

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/mondeja/gomarketcap/pkg/model"
)

// Ranks normalizes the gainers-losers page into the requested (kind, period)
// groups. Entries keep the scraped document order: the upstream page serves
// each table already sorted, so the normalizer asserts nothing and reorders
// nothing. Each table lives in a container div with id "<kind>-<period>".
func (p *Parser) Ranks(body []byte, kinds []model.RankKind, periods []model.RankPeriod) (model.Rankings, error) {
	doc, err := parseDoc(body)
	if err != nil {
		return nil, &model.SchemaError{What: "gainers-losers page is not parseable markup"}
	}

	rankings := make(model.Rankings, len(kinds))
	for _, kind := range kinds {
		rankings[kind] = make(map[model.RankPeriod][]model.RankEntry, len(periods))
		for _, period := range periods {
			entries, err := p.rankTable(doc, kind, period)
			if err != nil {
				return nil, err
			}
			rankings[kind][period] = entries
		}
	}
	return rankings, nil
}

func (p *Parser) rankTable(doc *goquery.Document, kind model.RankKind, period model.RankPeriod) ([]model.RankEntry, error) {
	id := fmt.Sprintf("#%s-%s", kind, period)
	container := doc.Find(id).First()
	if container.Length() == 0 {
		return nil, &model.SchemaError{
			What: fmt.Sprintf("gainers-losers page has no %s table", id),
		}
	}

	var entries []model.RankEntry
	var rowErr error

	container.Find("tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 5 {
			rowErr = &model.SchemaError{
				What:     fmt.Sprintf("rank row has %d columns, want 5", cells.Length()),
				Fragment: snippet(row),
			}
			return false
		}

		// Columns: [name, symbol, volume_24h, price, percent_change].
		entry := model.RankEntry{
			Name:   cellText(cells.Eq(0)),
			Symbol: cellText(cells.Eq(1)),
		}
		volume, err := p.co.Amount(cellText(cells.Eq(2)))
		if err != nil {
			rowErr = err
			return false
		}
		price, err := p.co.Amount(cellText(cells.Eq(3)))
		if err != nil {
			rowErr = err
			return false
		}
		percent, err := p.co.Percent(cellText(cells.Eq(4)))
		if err != nil {
			rowErr = err
			return false
		}
		if volume != nil {
			entry.Volume24h = *volume
		}
		if price != nil {
			entry.Price = *price
		}
		if percent != nil {
			entry.PercentChange = *percent
		}
		entries = append(entries, entry)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return entries, nil
}
