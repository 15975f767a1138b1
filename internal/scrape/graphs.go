package scrape

import (
	"encoding/json"
	"time"

	"github.com/mondeja/gomarketcap/pkg/model"
)

// Graphs normalizes a graphs API payload: an object mapping series names to
// arrays of [timestamp_ms, value] pairs. Timestamps are converted from
// milliseconds. When both bounds are non-nil, samples outside the inclusive
// [start, end] window are dropped.
func (p *Parser) Graphs(body []byte, start, end *time.Time) (model.GraphSeries, error) {
	var raw map[string][][2]json.Number
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &model.SchemaError{What: "graphs payload is not a series map", Fragment: clip(body)}
	}

	series := make(model.GraphSeries, len(raw))
	for name, pairs := range raw {
		points := make([]model.GraphPoint, 0, len(pairs))
		for _, pair := range pairs {
			ms, err := pair[0].Int64()
			if err != nil {
				return nil, &model.SchemaError{
					What:     "graph timestamp is not an integer",
					Fragment: pair[0].String(),
				}
			}
			value, err := p.co.Amount(pair[1].String())
			if err != nil || value == nil {
				return nil, &model.SchemaError{
					What:     "graph value is not numeric",
					Fragment: pair[1].String(),
				}
			}

			ts := time.UnixMilli(ms).UTC()
			if start != nil && end != nil {
				if ts.Before(*start) || ts.After(*end) {
					continue
				}
			}
			points = append(points, model.GraphPoint{Time: ts, Value: *value})
		}
		series[name] = points
	}

	return series, nil
}
