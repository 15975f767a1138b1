package scrape

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mondeja/gomarketcap/pkg/model"
)

// Stats normalizes the /global/ API payload.
func (p *Parser) Stats(body []byte, convert string) (*model.GlobalStats, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &model.SchemaError{What: "global stats payload is not a JSON object", Fragment: clip(body)}
	}

	stats := &model.GlobalStats{}

	for key, dst := range map[string]**decimal.Decimal{
		"total_market_cap_usd":             &stats.TotalMarketCap,
		"total_24h_volume_usd":             &stats.Total24hVolume,
		"bitcoin_percentage_of_market_cap": &stats.BitcoinDominance,
	} {
		d, err := p.jsonDecimal(raw[key])
		if err != nil {
			continue
		}
		*dst = d
	}

	for key, dst := range map[string]*int{
		"active_currencies": &stats.ActiveCurrencies,
		"active_assets":     &stats.ActiveAssets,
		"active_markets":    &stats.ActiveMarkets,
	} {
		n, err := p.jsonInt(raw[key])
		if err == nil && n != nil {
			*dst = *n
		}
	}

	if n, err := p.jsonInt(raw["last_updated"]); err == nil && n != nil {
		v := int64(*n)
		stats.LastUpdated = &v
	}

	convert = strings.ToLower(convert)
	if convert != "" && convert != "usd" {
		suffix := "_" + convert
		for key, value := range raw {
			if !strings.HasSuffix(key, suffix) {
				continue
			}
			d, err := p.jsonDecimal(value)
			if err != nil {
				continue
			}
			if stats.Converted == nil {
				stats.Converted = map[string]*decimal.Decimal{}
			}
			stats.Converted[key] = d
		}
	}

	return stats, nil
}
