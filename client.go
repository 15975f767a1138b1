package gomarketcap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/mondeja/gomarketcap/internal/infra"
	"github.com/mondeja/gomarketcap/internal/scrape"
	"github.com/mondeja/gomarketcap/pkg/coerce"
	"github.com/mondeja/gomarketcap/pkg/model"
)

// Default endpoint roots. Overridable for tests via WithBaseURLs.
const (
	defaultAPIBase    = "https://api.coinmarketcap.com"
	defaultWebBase    = "https://coinmarketcap.com"
	defaultGraphsBase = "https://graphs2.coinmarketcap.com"
)

// logoSizes are the icon dimensions the upstream static file server carries.
var logoSizes = map[int]bool{16: true, 32: true, 64: true, 128: true, 200: true}

// Option tunes a Client at construction time.
type Option func(*options)

type options struct {
	timeout    time.Duration
	retries    int
	convert    string
	logger     *slog.Logger
	numeric    coerce.Constructor
	httpClient *http.Client
	apiBase    string
	webBase    string
	graphsBase string
}

// WithTimeout sets the per-request timeout. Default 15s.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRetries sets the transport retry count for connection failures and
// 5xx statuses. Default 1.
func WithRetries(n int) Option {
	return func(o *options) { o.retries = n }
}

// WithConvert sets the default additional denomination currency code. USD
// fields are always populated; the convert code adds counterpart fields
// alongside them. ConvertTo overrides it for a single call.
func WithConvert(code string) Option {
	return func(o *options) { o.convert = code }
}

// WithLogger sets the structured logger. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithNumeric injects the numeric constructor applied to every parsed field;
// coerce.Exact keeps full decimal precision, coerce.Binary round-trips
// through float64.
func WithNumeric(c coerce.Constructor) Option {
	return func(o *options) { o.numeric = c }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithBaseURLs overrides the endpoint roots. Empty strings keep defaults.
func WithBaseURLs(api, web, graphs string) Option {
	return func(o *options) {
		if api != "" {
			o.apiBase = api
		}
		if web != "" {
			o.webBase = web
		}
		if graphs != "" {
			o.graphsBase = graphs
		}
	}
}

// CallOption tunes a single request on top of the client's defaults.
type CallOption func(*callOptions)

type callOptions struct {
	convert string
}

// ConvertTo overrides the client's convert code for one call.
func ConvertTo(code string) CallOption {
	return func(co *callOptions) { co.convert = code }
}

// Client is the synchronous coinmarketcap facade. It owns the cached symbol
// table (fetched once at construction), the transport and the normalizers.
// Graphs groups the time-series operations.
type Client struct {
	transport *infra.Transport
	parser    *scrape.Parser
	logger    *slog.Logger
	resolver  *resolver
	convert   string

	apiBase    string
	webBase    string
	graphsBase string

	coinCount atomic.Int64

	// Graphs exposes the graph endpoints as a nested capability group.
	Graphs *GraphsService
}

// New constructs a Client and bootstraps the symbol table. Construction
// fails if the bootstrap fetch fails; there is no partially ready client.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	o := options{
		timeout:    infra.DefaultTimeout,
		retries:    1,
		convert:    "USD",
		apiBase:    defaultAPIBase,
		webBase:    defaultWebBase,
		graphsBase: defaultGraphsBase,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	c := &Client{
		transport: infra.NewTransport(infra.TransportConfig{
			Timeout: o.timeout,
			Retries: o.retries,
			Logger:  o.logger,
			Client:  o.httpClient,
		}),
		parser:     scrape.NewParser(coerce.New(o.numeric)),
		logger:     o.logger,
		resolver:   newResolver(),
		convert:    o.convert,
		apiBase:    o.apiBase,
		webBase:    o.webBase,
		graphsBase: o.graphsBase,
	}
	c.Graphs = &GraphsService{c: c}

	if err := c.RefreshSymbolTable(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap symbol table: %w", err)
	}
	return c, nil
}

// listingPayload mirrors the /v2/listings/ response.
type listingPayload struct {
	Data     []model.CurrencyIdentity `json:"data"`
	Metadata struct {
		NumCryptocurrencies int `json:"num_cryptocurrencies"`
	} `json:"metadata"`
}

// RefreshSymbolTable re-fetches the currency listing and swaps the cached
// table in whole. Concurrent readers keep seeing the previous table until
// the swap.
func (c *Client) RefreshSymbolTable(ctx context.Context) error {
	body, err := c.transport.Get(ctx, c.apiBase+"/v2/listings/")
	if err != nil {
		return err
	}

	var payload listingPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return &model.SchemaError{What: "listings payload is not decodable", Fragment: clipBody(body)}
	}
	if len(payload.Data) == 0 {
		return &model.SchemaError{What: "listings payload carries no currencies"}
	}

	c.resolver.load(payload.Data)
	count := payload.Metadata.NumCryptocurrencies
	if count == 0 {
		count = c.resolver.count()
	}
	c.coinCount.Store(int64(count))

	c.logger.Debug("symbol table refreshed",
		slog.Int("currencies", c.resolver.count()))
	return nil
}

// Symbols returns every known ticker symbol, sorted.
func (c *Client) Symbols() []string { return c.resolver.symbols() }

// Coins returns every known currency slug in listing order.
func (c *Client) Coins() []string { return c.resolver.slugs() }

// CoinCount returns the number of currencies the upstream listing reports.
func (c *Client) CoinCount() int { return int(c.coinCount.Load()) }

// Resolve maps an id, symbol, slug or display name to its currency identity.
func (c *Client) Resolve(identifier string) (model.CurrencyIdentity, error) {
	return c.resolver.resolve(identifier)
}

// convertFor applies per-call options over the client default.
func (c *Client) convertFor(opts []CallOption) string {
	co := callOptions{convert: c.convert}
	for _, opt := range opts {
		opt(&co)
	}
	return co.convert
}

// Ticker returns the full quote listing. start is the zero-based rank
// offset, limit caps the result count; limit <= 0 returns everything from
// start on. The returned window is contiguous by rank.
func (c *Client) Ticker(ctx context.Context, limit, start int, opts ...CallOption) ([]model.TickerRecord, error) {
	convert := c.convertFor(opts)
	url := fmt.Sprintf("%s/v1/ticker/?limit=0&convert=%s", c.apiBase, convert)
	body, err := c.transport.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	records, err := c.parser.Ticker(body, convert)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Rank < records[j].Rank })

	if start > 0 {
		if start >= len(records) {
			return nil, nil
		}
		records = records[start:]
	}
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

// TickerFor returns the quote of a single currency.
func (c *Client) TickerFor(ctx context.Context, identifier string, opts ...CallOption) (*model.TickerRecord, error) {
	id, err := c.resolver.resolve(identifier)
	if err != nil {
		return nil, err
	}

	convert := c.convertFor(opts)
	url := fmt.Sprintf("%s/v1/ticker/%s/?convert=%s", c.apiBase, id.Slug, convert)
	body, err := c.transport.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	records, err := c.parser.Ticker(body, convert)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &model.SchemaError{What: "ticker payload carries no record for " + id.Slug}
	}
	return &records[0], nil
}

// Stats returns the global market statistics.
func (c *Client) Stats(ctx context.Context, opts ...CallOption) (*model.GlobalStats, error) {
	convert := c.convertFor(opts)
	url := fmt.Sprintf("%s/v1/global/?convert=%s", c.apiBase, convert)
	body, err := c.transport.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return c.parser.Stats(body, convert)
}

// Currency returns the scraped detail page of one currency.
func (c *Client) Currency(ctx context.Context, identifier string, opts ...CallOption) (*model.CurrencyDetail, error) {
	id, err := c.resolver.resolve(identifier)
	if err != nil {
		return nil, err
	}

	body, err := c.transport.Get(ctx, c.currencyURL(id.Slug))
	if err != nil {
		return nil, err
	}

	detail, err := c.parser.Currency(body, c.convertFor(opts))
	if err != nil {
		return nil, err
	}
	if detail.Symbol == "" {
		detail.Symbol = id.Symbol
	}
	if detail.Slug == "" {
		detail.Slug = id.Slug
	}
	return detail, nil
}

// Markets returns the market rows of one currency.
func (c *Client) Markets(ctx context.Context, identifier string) (*model.CurrencyMarkets, error) {
	id, err := c.resolver.resolve(identifier)
	if err != nil {
		return nil, err
	}

	body, err := c.transport.Get(ctx, c.currencyURL(id.Slug))
	if err != nil {
		return nil, err
	}

	entries, err := c.parser.Markets(body)
	if err != nil {
		return nil, err
	}
	return &model.CurrencyMarkets{Symbol: id.Symbol, Slug: id.Slug, Markets: entries}, nil
}

// rank filter vocabulary accepted by Ranks.
var (
	allRankKinds   = []model.RankKind{model.RankGainers, model.RankLosers}
	allRankPeriods = []model.RankPeriod{model.Period1h, model.Period24h, model.Period7d}
	rankFilterSet  = []string{"gainers", "losers", "1h", "24h", "7d"}
)

// Ranks returns the gainers-losers tables. Filters restrict which groups are
// populated: kind tokens ("gainers", "losers") and period tokens ("1h",
// "24h", "7d") may be mixed freely; no filters selects every group. An
// unrecognized token fails with InvalidArgumentError.
func (c *Client) Ranks(ctx context.Context, filters ...string) (model.Rankings, error) {
	var kinds []model.RankKind
	var periods []model.RankPeriod
	for _, f := range filters {
		switch f {
		case "gainers", "losers":
			kinds = append(kinds, model.RankKind(f))
		case "1h", "24h", "7d":
			periods = append(periods, model.RankPeriod(f))
		default:
			return nil, &model.InvalidArgumentError{Argument: f, Allowed: rankFilterSet}
		}
	}
	if len(kinds) == 0 {
		kinds = allRankKinds
	}
	if len(periods) == 0 {
		periods = allRankPeriods
	}

	body, err := c.transport.Get(ctx, c.webBase+"/gainers-losers/")
	if err != nil {
		return nil, err
	}
	return c.parser.Ranks(body, kinds, periods)
}

// Historical returns the OHLCV history of one currency between start and
// end (inclusive calendar dates). Ticks are sorted ascending by date;
// revert flips to descending.
func (c *Client) Historical(ctx context.Context, identifier string, start, end time.Time, revert bool) (*model.CurrencyHistory, error) {
	id, err := c.resolver.resolve(identifier)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/currencies/%s/historical-data/?start=%s&end=%s",
		c.webBase, id.Slug, start.Format("20060102"), end.Format("20060102"))
	body, err := c.transport.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	ticks, err := c.parser.Historical(body)
	if err != nil {
		return nil, err
	}

	// The page serves rows newest-first; the normalizer keeps document
	// order and ordering is settled here.
	sort.Slice(ticks, func(i, j int) bool {
		if revert {
			return ticks[i].Date.After(ticks[j].Date)
		}
		return ticks[i].Date.Before(ticks[j].Date)
	})
	return &model.CurrencyHistory{Symbol: id.Symbol, Slug: id.Slug, History: ticks}, nil
}

// Recently returns the recently-added listing.
func (c *Client) Recently(ctx context.Context) ([]model.RecentListing, error) {
	body, err := c.transport.Get(ctx, c.webBase+"/new/")
	if err != nil {
		return nil, err
	}
	return c.parser.Recently(body)
}

// Tokens returns the platform-tokens listing.
func (c *Client) Tokens(ctx context.Context) ([]model.TokenListing, error) {
	body, err := c.transport.Get(ctx, c.webBase+"/tokens/views/all/")
	if err != nil {
		return nil, err
	}
	return c.parser.Tokens(body)
}

// Exchange returns the scraped detail page of one exchange. name may be a
// display name or a slug.
func (c *Client) Exchange(ctx context.Context, name string) (*model.ExchangeDetail, error) {
	slug := slugify(name)
	body, err := c.transport.Get(ctx, c.exchangeURL(slug))
	if err != nil {
		return nil, err
	}

	detail, err := c.parser.Exchange(body)
	if err != nil {
		return nil, err
	}
	if detail.Slug == "" {
		detail.Slug = slug
	}
	return detail, nil
}

// Exchanges returns the all-exchanges volume listing, capped at limit
// blocks; limit <= 0 returns every block.
func (c *Client) Exchanges(ctx context.Context, limit int) ([]model.ExchangeRanking, error) {
	body, err := c.transport.Get(ctx, c.webBase+"/exchanges/volume/24-hour/all/")
	if err != nil {
		return nil, err
	}
	return c.parser.Exchanges(body, limit)
}

// DownloadLogo streams the currency icon into w. size must be one of the
// dimensions the upstream static server carries (16, 32, 64, 128, 200).
func (c *Client) DownloadLogo(ctx context.Context, identifier string, size int, w io.Writer) error {
	if !logoSizes[size] {
		allowed := make([]string, 0, len(logoSizes))
		for s := range logoSizes {
			allowed = append(allowed, fmt.Sprintf("%d", s))
		}
		sort.Strings(allowed)
		return &model.InvalidArgumentError{Argument: fmt.Sprintf("%d", size), Allowed: allowed}
	}

	id, err := c.resolver.resolve(identifier)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/static/img/coins/%dx%d/%s.png", c.webBase, size, size, id.Slug)
	rc, err := c.transport.GetStream(ctx, url)
	if err != nil {
		return err
	}
	defer rc.Close()

	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("download logo for %s: %w", id.Slug, err)
	}
	return nil
}

func (c *Client) currencyURL(slug string) string {
	return c.webBase + "/currencies/" + slug + "/"
}

func (c *Client) exchangeURL(slug string) string {
	return c.webBase + "/exchanges/" + slug + "/"
}

func clipBody(body []byte) string {
	if len(body) > 120 {
		body = body[:120]
	}
	return string(body)
}
