package scrape

import (
	"errors"
	"testing"

	"github.com/mondeja/gomarketcap/pkg/model"
)

const exchangeFixture = `<html><body>
<div class="exchange-summary" data-name="Binance" data-slug="binance">
  <a class="website" href="https://www.binance.com/">Website</a>
  <span class="total-volume">$1,940,000,000</span>
</div>
<ul class="exchange-social">
  <li><a data-platform="twitter" href="https://twitter.com/binance">Twitter</a></li>
  <li><a data-platform="telegram" href="https://t.me/binance">Telegram</a></li>
  <li><a data-platform="" href="https://example.com">ignored</a></li>
</ul>
<table id="markets"><tbody>
<tr><td>1</td><td>Bitcoin</td><td>BTC/USDT</td><td>$320,000,000</td><td>$6,500.10</td><td>16.4%</td><td>Recently</td></tr>
<tr><td>2</td><td>Ethereum</td><td>ETH/BTC *</td><td>$110,000,000</td><td>$210.42</td><td>5.7%</td><td>3 minutes ago</td></tr>
</tbody></table>
</body></html>`

func TestExchange_Normalization(t *testing.T) {
	p := NewParser(nil)

	detail, err := p.Exchange([]byte(exchangeFixture))
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}

	if detail.Name != "Binance" || detail.Slug != "binance" {
		t.Errorf("identity = %q/%q", detail.Name, detail.Slug)
	}
	if detail.Website != "https://www.binance.com/" {
		t.Errorf("website = %q", detail.Website)
	}
	if detail.TotalVolume == nil || detail.TotalVolume.String() != "1940000000" {
		t.Errorf("total volume = %v", detail.TotalVolume)
	}
	if len(detail.Social) != 2 {
		t.Errorf("social = %v, want 2 platforms", detail.Social)
	}
	if detail.Social["twitter"] != "https://twitter.com/binance" {
		t.Errorf("twitter = %q", detail.Social["twitter"])
	}

	if len(detail.Markets) != 2 {
		t.Fatalf("got %d markets, want 2", len(detail.Markets))
	}
	first := detail.Markets[0]
	if first.Rank != 1 || first.Pair != "BTC/USDT" || !first.Updated {
		t.Errorf("first market = %+v", first)
	}
	second := detail.Markets[1]
	if second.Pair != "ETH/BTC" {
		t.Errorf("pair = %q, asterisk must be stripped", second.Pair)
	}
	if second.Updated {
		t.Error("second market should not be marked recently updated")
	}
}

func TestExchange_MissingSummary(t *testing.T) {
	p := NewParser(nil)
	_, err := p.Exchange([]byte(`<html><body><table id="markets"></table></body></html>`))

	var schemaErr *model.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %v, want SchemaError", err)
	}
}

func TestExchange_PercentVolumeCeiling(t *testing.T) {
	fixture := `
<div class="exchange-summary" data-name="Shady" data-slug="shady">
  <span class="total-volume">$1</span>
</div>
<table id="markets"><tbody>
<tr><td>1</td><td>Bitcoin</td><td>BTC/USDT</td><td>$10</td><td>$1</td><td>104.5%</td><td>Recently</td></tr>
</tbody></table>`

	p := NewParser(nil)
	_, err := p.Exchange([]byte(fixture))

	var schemaErr *model.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %v, want SchemaError for percent_volume above 100", err)
	}
}
