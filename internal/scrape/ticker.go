package scrape

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mondeja/gomarketcap/pkg/model"
)

// tickerSetter assigns one raw API value to its record field. The table maps
// known keys to setters; unknown keys are dropped for forward compatibility.
type tickerSetter func(p *Parser, rec *model.TickerRecord, raw any) error

var tickerFields = map[string]tickerSetter{
	"rank": func(p *Parser, rec *model.TickerRecord, raw any) error {
		n, err := p.jsonInt(raw)
		if err != nil {
			return fmt.Errorf("rank: %w", err)
		}
		if n == nil {
			return fmt.Errorf("rank: null value")
		}
		rec.Rank = *n
		return nil
	},
	"price_usd":          decimalSetter(func(r *model.TickerRecord) **decimal.Decimal { return &r.Price }),
	"price_btc":          decimalSetter(func(r *model.TickerRecord) **decimal.Decimal { return &r.PriceBTC }),
	"24h_volume_usd":     decimalSetter(func(r *model.TickerRecord) **decimal.Decimal { return &r.Volume24h }),
	"market_cap_usd":     decimalSetter(func(r *model.TickerRecord) **decimal.Decimal { return &r.MarketCap }),
	"available_supply":   decimalSetter(func(r *model.TickerRecord) **decimal.Decimal { return &r.CirculatingSupply }),
	"total_supply":       decimalSetter(func(r *model.TickerRecord) **decimal.Decimal { return &r.TotalSupply }),
	"max_supply":         decimalSetter(func(r *model.TickerRecord) **decimal.Decimal { return &r.MaxSupply }),
	"percent_change_1h":  decimalSetter(func(r *model.TickerRecord) **decimal.Decimal { return &r.PercentChange1h }),
	"percent_change_24h": decimalSetter(func(r *model.TickerRecord) **decimal.Decimal { return &r.PercentChange24h }),
	"percent_change_7d":  decimalSetter(func(r *model.TickerRecord) **decimal.Decimal { return &r.PercentChange7d }),
	"last_updated": func(p *Parser, rec *model.TickerRecord, raw any) error {
		n, err := p.jsonInt(raw)
		if err != nil {
			return nil // non-numeric timestamp degrades to null
		}
		if n != nil {
			v := int64(*n)
			rec.LastUpdated = &v
		}
		return nil
	},
}

func decimalSetter(field func(*model.TickerRecord) **decimal.Decimal) tickerSetter {
	return func(p *Parser, rec *model.TickerRecord, raw any) error {
		d, err := p.jsonDecimal(raw)
		if err != nil {
			return nil // wrong-typed optional field degrades to null
		}
		*field(rec) = d
		return nil
	}
}

// Ticker normalizes the /ticker/ API payload. Required identity fields (id,
// name, symbol) must be non-empty strings; a record violating that fails the
// whole call with a SchemaError. Non-USD convert codes surface counterpart
// keys (e.g. "price_eur") under Converted without replacing the USD fields.
func (p *Parser) Ticker(body []byte, convert string) ([]model.TickerRecord, error) {
	var raw []map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &model.SchemaError{What: "ticker payload is not a JSON array", Fragment: clip(body)}
	}

	convert = strings.ToLower(convert)
	records := make([]model.TickerRecord, 0, len(raw))
	for _, obj := range raw {
		rec, err := p.tickerRecord(obj, convert)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (p *Parser) tickerRecord(obj map[string]any, convert string) (*model.TickerRecord, error) {
	rec := &model.TickerRecord{}

	for _, ident := range []struct {
		key string
		dst *string
	}{
		{"id", &rec.ID},
		{"name", &rec.Name},
		{"symbol", &rec.Symbol},
	} {
		s, ok := obj[ident.key].(string)
		if !ok || s == "" {
			frag, _ := json.Marshal(obj)
			return nil, &model.SchemaError{
				What:     fmt.Sprintf("ticker record missing required field %q", ident.key),
				Fragment: string(frag),
			}
		}
		*ident.dst = s
	}

	convertSuffix := "_" + convert
	for key, value := range obj {
		if setter, ok := tickerFields[key]; ok {
			if err := setter(p, rec, value); err != nil {
				frag, _ := json.Marshal(obj)
				return nil, &model.SchemaError{What: err.Error(), Fragment: string(frag)}
			}
			continue
		}
		if convert != "" && convert != "usd" && strings.HasSuffix(key, convertSuffix) {
			d, err := p.jsonDecimal(value)
			if err != nil {
				continue
			}
			if rec.Converted == nil {
				rec.Converted = map[string]*decimal.Decimal{}
			}
			rec.Converted[key] = d
		}
		// Unknown keys are dropped silently.
	}

	return rec, nil
}

// jsonDecimal coerces a JSON value (string, number or null) to a decimal.
func (p *Parser) jsonDecimal(raw any) (*decimal.Decimal, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return p.co.Amount(v)
	case float64:
		return p.co.Amount(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return nil, fmt.Errorf("unsupported JSON value type %T", raw)
	}
}

// jsonInt coerces a JSON value to an int, tolerating string encoding.
func (p *Parser) jsonInt(raw any) (*int, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return p.co.Int(v)
	case float64:
		n := int(v)
		return &n, nil
	default:
		return nil, fmt.Errorf("unsupported JSON value type %T", raw)
	}
}

func clip(body []byte) string {
	if len(body) > 120 {
		body = body[:120]
	}
	return string(body)
}
