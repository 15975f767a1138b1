package scrape

import (
	"errors"
	"testing"

	"github.com/mondeja/gomarketcap/pkg/model"
)

const currencyFixture = `<html><body>
<div class="coin-summary" data-name="Bitcoin" data-symbol="BTC" data-slug="bitcoin">
  <span class="rank">Rank 1</span>
  <span class="price" data-eur="60,100.25">$65,000.50</span>
  <span class="market-cap">$1,280,000,000,000</span>
  <span class="volume-24h">$35,000,000,000</span>
  <span class="circulating-supply">?</span>
  <span class="total-supplied"></span>
  <span class="total-supply">19,700,000</span>
  <span class="max-supply">21,000,000</span>
</div>
<ul class="coin-links">
  <li class="link-explorer"><a href="https://blockchain.info">Explorer</a></li>
  <li class="link-explorer"><a href="https://blockchair.com/bitcoin">Explorer 2</a></li>
  <li class="link-website"><a href="https://bitcoin.org">Website</a></li>
  <li class="link-chat"><a href="https://t.me/bitcoin">Chat</a></li>
  <li class="link-message-board"><a href="https://bitcointalk.org">Forum</a></li>
  <li class="link-source-code"><a href="https://github.com/bitcoin/bitcoin">Source</a></li>
  <li class="link-announcement"><a href="https://bitcointalk.org/index.php?topic=5"></a></li>
</ul>
</body></html>`

func TestCurrency_Normalizes(t *testing.T) {
	p := NewParser(nil)

	detail, err := p.Currency([]byte(currencyFixture), "USD")
	if err != nil {
		t.Fatalf("Currency failed: %v", err)
	}

	if detail.Symbol != "BTC" || detail.Slug != "bitcoin" || detail.Name != "Bitcoin" {
		t.Errorf("identity mismatch: %+v", detail)
	}
	if detail.Rank != 1 {
		t.Errorf("rank = %d, want 1", detail.Rank)
	}
	if detail.Price == nil || detail.Price.String() != "65000.5" {
		t.Errorf("price = %v, want 65000.5", detail.Price)
	}
	// "?" is a placeholder: circulating supply must be nil, not zero.
	if detail.CirculatingSupply != nil {
		t.Errorf("circulating_supply = %v, want nil", detail.CirculatingSupply)
	}
	if len(detail.Explorers) != 2 {
		t.Errorf("explorers = %v, want 2 entries", detail.Explorers)
	}
	if detail.SourceCode != "https://github.com/bitcoin/bitcoin" {
		t.Errorf("source_code = %q", detail.SourceCode)
	}
	if detail.Mineable {
		t.Error("no asterisk on supply, mineable should be false")
	}
}

func TestCurrency_ConvertAttribute(t *testing.T) {
	p := NewParser(nil)

	detail, err := p.Currency([]byte(currencyFixture), "EUR")
	if err != nil {
		t.Fatalf("Currency failed: %v", err)
	}

	if detail.Price == nil || detail.Price.String() != "65000.5" {
		t.Errorf("USD price must be preserved, got %v", detail.Price)
	}
	eur := detail.Converted["price_eur"]
	if eur == nil || eur.String() != "60100.25" {
		t.Errorf("price_eur = %v, want 60100.25", eur)
	}
}

func TestCurrency_Mineable(t *testing.T) {
	p := NewParser(nil)

	fixture := `<div class="coin-summary" data-name="Litecoin" data-symbol="LTC" data-slug="litecoin">
	  <span class="rank">15</span>
	  <span class="price">$80.10</span>
	  <span class="circulating-supply">74,000,000 *</span>
	</div>`

	detail, err := p.Currency([]byte(fixture), "USD")
	if err != nil {
		t.Fatalf("Currency failed: %v", err)
	}
	if !detail.Mineable {
		t.Error("asterisk on circulating supply should mark mineable")
	}
	if detail.CirculatingSupply == nil || detail.CirculatingSupply.String() != "74000000" {
		t.Errorf("circulating_supply = %v, want 74000000", detail.CirculatingSupply)
	}
}

func TestCurrency_MissingSummary(t *testing.T) {
	p := NewParser(nil)

	_, err := p.Currency([]byte("<html><body><p>maintenance</p></body></html>"), "USD")

	var schemaErr *model.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error = %v, want SchemaError", err)
	}
}
