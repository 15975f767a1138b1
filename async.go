package gomarketcap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/mondeja/gomarketcap/pkg/model"
)

// Defaults for the bulk scrape pipeline.
const (
	DefaultConsumers = 10
	DefaultQueueSize = 10
)

// AsyncOption tunes an AsyncClient.
type AsyncOption func(*AsyncClient)

// WithConsumers sets the number of concurrent fetch workers.
func WithConsumers(n int) AsyncOption {
	return func(a *AsyncClient) { a.consumers = n }
}

// WithQueueSize bounds the primary queue. Producers block once it is full,
// throttling production to consumer throughput.
func WithQueueSize(n int) AsyncOption {
	return func(a *AsyncClient) { a.queueSize = n }
}

// WithPartialErrors surfaces per-item failures on Errors() instead of only
// logging them. The error channel is buffered; when the caller does not
// drain it, overflow errors are dropped rather than stalling the pipeline.
func WithPartialErrors() AsyncOption {
	return func(a *AsyncClient) { a.errs = make(chan error, 256) }
}

// AsyncClient runs the bulk "every X" operations: a bounded producer queue
// feeds a pool of consumer goroutines, each fetch runs under the client's
// per-request timeout, and a timed-out URL gets exactly one retry through a
// dead-letter pass. A URL that times out twice is dropped. Per-item fetch
// and normalize failures never fail the whole run; the item is simply absent
// from the output stream.
//
// Records are yielded on an unordered channel as they complete.
type AsyncClient struct {
	c         *Client
	consumers int
	queueSize int
	errs      chan error
}

// NewAsync wraps a Client for bulk operations.
func NewAsync(c *Client, opts ...AsyncOption) *AsyncClient {
	a := &AsyncClient{
		c:         c,
		consumers: DefaultConsumers,
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.consumers <= 0 {
		a.consumers = DefaultConsumers
	}
	if a.queueSize <= 0 {
		a.queueSize = DefaultQueueSize
	}
	return a
}

// Errors returns the per-item failure stream, nil unless WithPartialErrors
// was given.
func (a *AsyncClient) Errors() <-chan error { return a.errs }

// target is one unit of bulk work.
type target struct {
	identity model.CurrencyIdentity
	url      string
}

// page is one fetched body, tagged with the target that produced it.
type page struct {
	identity model.CurrencyIdentity
	url      string
	body     []byte
}

// report logs an item failure and forwards it to the error stream when one
// is configured. Never blocks.
func (a *AsyncClient) report(err error) {
	a.c.logger.Debug("bulk item skipped", slog.String("error", err.Error()))
	if a.errs == nil {
		return
	}
	select {
	case a.errs <- err:
	default:
	}
}

// fetchAll runs the two-pass fan-out over targets and streams raw pages.
// The returned channel closes after the dead-letter pass drains.
func (a *AsyncClient) fetchAll(ctx context.Context, targets []target) <-chan page {
	out := make(chan page)

	go func() {
		defer close(out)

		dead := a.fetchPass(ctx, targets, out, true)
		if len(dead) > 0 {
			a.c.logger.Debug("dead-letter retry pass",
				slog.Int("urls", len(dead)))
			a.fetchPass(ctx, dead, out, false)
		}
	}()

	return out
}

// fetchPass fans targets out over the consumer pool. When requeue is true,
// timed-out targets are collected and returned for the dead-letter pass;
// otherwise a timeout drops the target.
func (a *AsyncClient) fetchPass(ctx context.Context, targets []target, out chan<- page, requeue bool) []target {
	queue := make(chan target, a.queueSize)

	go func() {
		defer close(queue)
		for _, t := range targets {
			select {
			case <-ctx.Done():
				return
			case queue <- t:
			}
		}
	}()

	var (
		mu   sync.Mutex
		dead []target
		wg   sync.WaitGroup
	)

	for i := 0; i < a.consumers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range queue {
				body, err := a.c.transport.Get(ctx, t.url)
				if err != nil {
					if isTimeout(err) && requeue {
						mu.Lock()
						dead = append(dead, t)
						mu.Unlock()
						continue
					}
					a.report(fmt.Errorf("fetch %s: %w", t.url, err))
					continue
				}
				select {
				case <-ctx.Done():
					return
				case out <- page{identity: t.identity, url: t.url, body: body}:
				}
			}
		}()
	}
	wg.Wait()

	return dead
}

// isTimeout reports whether a fetch failed on the per-request deadline.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// currencyTargets resolves identifiers to fetch targets; with none given,
// every known currency is targeted. Resolution failures are reported and
// skipped.
func (a *AsyncClient) currencyTargets(identifiers []string, buildURL func(slug string) string) []target {
	var identities []model.CurrencyIdentity
	if len(identifiers) == 0 {
		identities = a.c.resolver.identities()
	} else {
		for _, ident := range identifiers {
			id, err := a.c.resolver.resolve(ident)
			if err != nil {
				a.report(err)
				continue
			}
			identities = append(identities, id)
		}
	}

	targets := make([]target, 0, len(identities))
	for _, id := range identities {
		targets = append(targets, target{identity: id, url: buildURL(id.Slug)})
	}
	return targets
}

// EveryCurrency streams the detail page of each requested currency, every
// known currency when none are named. Unordered; items that fail to fetch
// or normalize are absent from the stream.
func (a *AsyncClient) EveryCurrency(ctx context.Context, identifiers ...string) <-chan model.CurrencyDetail {
	targets := a.currencyTargets(identifiers, a.c.currencyURL)
	pages := a.fetchAll(ctx, targets)
	out := make(chan model.CurrencyDetail)

	go func() {
		defer close(out)
		for p := range pages {
			detail, err := a.c.parser.Currency(p.body, a.c.convert)
			if err != nil {
				a.report(fmt.Errorf("normalize %s: %w", p.url, err))
				continue
			}
			if detail.Symbol == "" {
				detail.Symbol = p.identity.Symbol
			}
			if detail.Slug == "" {
				detail.Slug = p.identity.Slug
			}
			select {
			case <-ctx.Done():
				return
			case out <- *detail:
			}
		}
	}()
	return out
}

// EveryMarkets streams the market listings of each requested currency.
func (a *AsyncClient) EveryMarkets(ctx context.Context, identifiers ...string) <-chan model.CurrencyMarkets {
	targets := a.currencyTargets(identifiers, a.c.currencyURL)
	pages := a.fetchAll(ctx, targets)
	out := make(chan model.CurrencyMarkets)

	go func() {
		defer close(out)
		for p := range pages {
			entries, err := a.c.parser.Markets(p.body)
			if err != nil {
				a.report(fmt.Errorf("normalize %s: %w", p.url, err))
				continue
			}
			record := model.CurrencyMarkets{
				Symbol:  p.identity.Symbol,
				Slug:    p.identity.Slug,
				Markets: entries,
			}
			select {
			case <-ctx.Done():
				return
			case out <- record:
			}
		}
	}()
	return out
}

// EveryHistorical streams the OHLCV history of each requested currency over
// [start, end], ticks sorted ascending by date.
func (a *AsyncClient) EveryHistorical(ctx context.Context, start, end time.Time, identifiers ...string) <-chan model.CurrencyHistory {
	buildURL := func(slug string) string {
		return fmt.Sprintf("%s/currencies/%s/historical-data/?start=%s&end=%s",
			a.c.webBase, slug, start.Format("20060102"), end.Format("20060102"))
	}
	targets := a.currencyTargets(identifiers, buildURL)
	pages := a.fetchAll(ctx, targets)
	out := make(chan model.CurrencyHistory)

	go func() {
		defer close(out)
		for p := range pages {
			ticks, err := a.c.parser.Historical(p.body)
			if err != nil {
				a.report(fmt.Errorf("normalize %s: %w", p.url, err))
				continue
			}
			sort.Slice(ticks, func(i, j int) bool { return ticks[i].Date.Before(ticks[j].Date) })
			record := model.CurrencyHistory{
				Symbol:  p.identity.Symbol,
				Slug:    p.identity.Slug,
				History: ticks,
			}
			select {
			case <-ctx.Done():
				return
			case out <- record:
			}
		}
	}()
	return out
}

// EveryExchange streams the detail page of each named exchange; with no
// names, the current all-exchanges listing is fetched first and every
// exchange on it is targeted. A failed listing fetch is reported and yields
// an empty stream.
func (a *AsyncClient) EveryExchange(ctx context.Context, names ...string) <-chan model.ExchangeDetail {
	out := make(chan model.ExchangeDetail)

	go func() {
		defer close(out)

		if len(names) == 0 {
			rankings, err := a.c.Exchanges(ctx, 0)
			if err != nil {
				a.report(fmt.Errorf("list exchanges: %w", err))
				return
			}
			for _, r := range rankings {
				names = append(names, r.Name)
			}
		}

		targets := make([]target, 0, len(names))
		for _, name := range names {
			slug := slugify(name)
			targets = append(targets, target{
				identity: model.CurrencyIdentity{Name: name, Slug: slug},
				url:      a.c.exchangeURL(slug),
			})
		}

		for p := range a.fetchAll(ctx, targets) {
			detail, err := a.c.parser.Exchange(p.body)
			if err != nil {
				a.report(fmt.Errorf("normalize %s: %w", p.url, err))
				continue
			}
			if detail.Slug == "" {
				detail.Slug = p.identity.Slug
			}
			select {
			case <-ctx.Done():
				return
			case out <- *detail:
			}
		}
	}()
	return out
}

// EveryCurrencyGraphs streams the graph series of each requested currency,
// bounded to w. Auto timeframe applies to every fetched URL.
func (a *AsyncClient) EveryCurrencyGraphs(ctx context.Context, w GraphWindow, identifiers ...string) <-chan model.CurrencyGraphs {
	buildURL := func(slug string) string {
		return a.c.Graphs.url("/currencies/"+slug, w)
	}
	targets := a.currencyTargets(identifiers, buildURL)
	pages := a.fetchAll(ctx, targets)
	out := make(chan model.CurrencyGraphs)

	go func() {
		defer close(out)
		for p := range pages {
			series, err := a.c.parser.Graphs(p.body, w.Start, w.End)
			if err != nil {
				a.report(fmt.Errorf("normalize %s: %w", p.url, err))
				continue
			}
			record := model.CurrencyGraphs{
				Symbol: p.identity.Symbol,
				Slug:   p.identity.Slug,
				Series: series,
			}
			select {
			case <-ctx.Done():
				return
			case out <- record:
			}
		}
	}()
	return out
}
