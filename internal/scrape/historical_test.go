package scrape

import (
	"errors"
	"testing"
	"time"

	"github.com/mondeja/gomarketcap/pkg/model"
)

const historicalFixture = `<html><body>
<table class="historical-data"><tbody>
<tr><td>Date</td><td>Open</td><td>High</td><td>Low</td><td>Close</td><td>Volume</td><td>Market Cap</td></tr>
<tr><td>Aug 26, 2017</td><td>$4,345.10</td><td>$4,500.00</td><td>$4,300.20</td><td>$4,382.88</td><td>$1,720,000,000</td><td>$72,000,000,000</td></tr>
<tr><td>Aug 25, 2017</td><td>$4,332.82</td><td>$4,455.70</td><td>$4,307.35</td><td>$4,345.75</td><td>$1,550,000,000</td><td>$71,600,000,000</td></tr>
<tr><td>Aug 24, 2017</td><td>$4,137.00</td><td>$4,367.68</td><td>$4,085.01</td><td>$4,334.68</td><td>-</td><td>$68,400,000,000</td></tr>
</tbody></table>
</body></html>`

func TestHistorical_DocumentOrderAndValues(t *testing.T) {
	p := NewParser(nil)

	ticks, err := p.Historical([]byte(historicalFixture))
	if err != nil {
		t.Fatalf("Historical failed: %v", err)
	}
	if len(ticks) != 3 {
		t.Fatalf("got %d ticks, want 3 (header row must be skipped)", len(ticks))
	}

	// Document order is newest-first on the upstream page; the normalizer
	// must not reorder.
	first := ticks[0]
	wantDate := time.Date(2017, time.August, 26, 0, 0, 0, 0, time.UTC)
	if !first.Date.Equal(wantDate) {
		t.Errorf("first date = %v, want %v", first.Date, wantDate)
	}
	if first.Open.String() != "4345.1" {
		t.Errorf("open = %s, want 4345.1", first.Open)
	}
	if first.Close.String() != "4382.88" {
		t.Errorf("close = %s, want 4382.88", first.Close)
	}
	if first.Volume == nil || first.Volume.String() != "1720000000" {
		t.Errorf("volume = %v, want 1720000000", first.Volume)
	}
}

func TestHistorical_PlaceholderVolumeIsNull(t *testing.T) {
	p := NewParser(nil)

	ticks, err := p.Historical([]byte(historicalFixture))
	if err != nil {
		t.Fatalf("Historical failed: %v", err)
	}

	last := ticks[len(ticks)-1]
	if last.Volume != nil {
		t.Errorf("placeholder volume = %v, want nil", last.Volume)
	}
	if last.MarketCap == nil {
		t.Error("market cap should survive a placeholder volume on the same row")
	}
}

func TestHistorical_PlaceholderCloseFails(t *testing.T) {
	fixture := `<table class="historical-data"><tbody>
<tr><td>Aug 24, 2017</td><td>$4,137.00</td><td>$4,367.68</td><td>$4,085.01</td><td>?</td><td>$1,000</td><td>$2,000</td></tr>
</tbody></table>`

	p := NewParser(nil)
	_, err := p.Historical([]byte(fixture))

	var schemaErr *model.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %v, want SchemaError for placeholder close", err)
	}
}

func TestHistorical_MissingTable(t *testing.T) {
	p := NewParser(nil)
	_, err := p.Historical([]byte(`<html><body><p>nothing here</p></body></html>`))

	var schemaErr *model.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %v, want SchemaError", err)
	}
}
