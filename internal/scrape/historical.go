package scrape

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/mondeja/gomarketcap/pkg/model"
)

// historicalDateFormat matches the date column of the historical-data table
// after comma removal, e.g. "Aug 24 2017".
const historicalDateFormat = "Jan 2 2006"

// Historical normalizes the historical-data table, one tick per trading day.
// Rows whose date column does not parse are header or footer rows mixed into
// the body and are skipped, not errors. Ticks are returned in document order;
// sorting is the caller's concern.
func (p *Parser) Historical(body []byte) ([]model.HistoricalTick, error) {
	doc, err := parseDoc(body)
	if err != nil {
		return nil, &model.SchemaError{What: "historical page is not parseable markup"}
	}

	tbody := doc.Find("table.historical-data tbody").First()
	if tbody.Length() == 0 {
		return nil, &model.SchemaError{
			What:     "historical page has no data table",
			Fragment: clip(body),
		}
	}

	var ticks []model.HistoricalTick
	var rowErr error

	tbody.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 7 {
			return true // non-data row
		}

		dateText := strings.ReplaceAll(cellText(cells.Eq(0)), ",", "")
		date, err := time.Parse(historicalDateFormat, dateText)
		if err != nil {
			return true // header/footer row mixed into the body
		}

		tick, err := p.historicalTick(date, cells, row)
		if err != nil {
			rowErr = err
			return false
		}
		ticks = append(ticks, *tick)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return ticks, nil
}

// historicalTick maps the seven columns of one data row:
// [date, open, high, low, close, volume, market_cap].
func (p *Parser) historicalTick(date time.Time, cells *goquery.Selection, row *goquery.Selection) (*model.HistoricalTick, error) {
	tick := &model.HistoricalTick{Date: date}

	ohlc := []struct {
		name string
		dst  *decimal.Decimal
	}{
		{"open", &tick.Open}, {"high", &tick.High},
		{"low", &tick.Low}, {"close", &tick.Close},
	}
	for i, field := range ohlc {
		d, err := p.co.Amount(cellText(cells.Eq(i + 1)))
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, &model.SchemaError{
				What:     fmt.Sprintf("historical row has placeholder %s value", field.name),
				Fragment: snippet(row),
			}
		}
		*field.dst = *d
	}

	volume, err := p.co.Amount(cellText(cells.Eq(5)))
	if err != nil {
		return nil, err
	}
	marketCap, err := p.co.Amount(cellText(cells.Eq(6)))
	if err != nil {
		return nil, err
	}
	tick.Volume = volume
	tick.MarketCap = marketCap

	return tick, nil
}
