package gomarketcap

import (
	"context"
	"fmt"
	"time"

	"github.com/mondeja/gomarketcap/pkg/model"
)

// GraphWindow bounds a graph request. With both bounds set, samples outside
// the inclusive [Start, End] range are dropped. AutoTimeframe additionally
// sends the bounds with the request so the server buckets the series to the
// window, the way the site frontend requests charts; without it the full
// series is fetched and filtered locally. The zero value requests the full
// series.
type GraphWindow struct {
	Start, End    *time.Time
	AutoTimeframe bool
}

func (w GraphWindow) bounded() bool { return w.Start != nil && w.End != nil }

// GraphsService groups the time-series endpoints under Client.Graphs. It is
// wired at construction time and shares the client's transport, resolver
// and parser.
type GraphsService struct {
	c *Client
}

// Currency returns the graph series of one currency, bounded to w.
func (g *GraphsService) Currency(ctx context.Context, identifier string, w GraphWindow) (*model.CurrencyGraphs, error) {
	id, err := g.c.resolver.resolve(identifier)
	if err != nil {
		return nil, err
	}

	series, err := g.fetch(ctx, "/currencies/"+id.Slug, w)
	if err != nil {
		return nil, err
	}
	return &model.CurrencyGraphs{Symbol: id.Symbol, Slug: id.Slug, Series: series}, nil
}

// GlobalCap returns the total market capitalization series. bitcoin false
// selects the altcoin-only variant.
func (g *GraphsService) GlobalCap(ctx context.Context, bitcoin bool, w GraphWindow) (model.GraphSeries, error) {
	path := "/global/marketcap-total"
	if !bitcoin {
		path = "/global/marketcap-altcoin"
	}
	return g.fetch(ctx, path, w)
}

// Dominance returns the per-currency market share series.
func (g *GraphsService) Dominance(ctx context.Context, w GraphWindow) (model.GraphSeries, error) {
	return g.fetch(ctx, "/global/dominance", w)
}

func (g *GraphsService) fetch(ctx context.Context, path string, w GraphWindow) (model.GraphSeries, error) {
	body, err := g.c.transport.Get(ctx, g.url(path, w))
	if err != nil {
		return nil, err
	}
	return g.c.parser.Graphs(body, w.Start, w.End)
}

// url builds the request URL for path. Millisecond bounds are appended only
// under auto timeframe; otherwise the window stays a local filter.
func (g *GraphsService) url(path string, w GraphWindow) string {
	url := g.c.graphsBase + path + "/"
	if w.AutoTimeframe && w.bounded() {
		url = fmt.Sprintf("%s%d/%d/", url, w.Start.UnixMilli(), w.End.UnixMilli())
	}
	return url
}
