package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyIdentity is one entry of the cached symbol table.
// Slug is the lowercase hyphen-separated identifier used in page URLs;
// Symbol may collide across currencies (e.g. "BTG"), so a symbol lookup
// can legitimately yield more than one identity.
type CurrencyIdentity struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Slug   string `json:"website_slug"`
}

// TickerRecord is one normalized quote from the public ticker API.
// Numeric fields are nil when the upstream value was null or absent.
type TickerRecord struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Symbol            string           `json:"symbol"`
	Rank              int              `json:"rank"`
	Price             *decimal.Decimal `json:"price_usd"`
	PriceBTC          *decimal.Decimal `json:"price_btc"`
	Volume24h         *decimal.Decimal `json:"24h_volume_usd"`
	MarketCap         *decimal.Decimal `json:"market_cap_usd"`
	CirculatingSupply *decimal.Decimal `json:"available_supply"`
	TotalSupply       *decimal.Decimal `json:"total_supply"`
	MaxSupply         *decimal.Decimal `json:"max_supply"`
	PercentChange1h   *decimal.Decimal `json:"percent_change_1h"`
	PercentChange24h  *decimal.Decimal `json:"percent_change_24h"`
	PercentChange7d   *decimal.Decimal `json:"percent_change_7d"`
	LastUpdated       *int64           `json:"last_updated"`

	// Converted holds the convert-specific counterparts (e.g. "price_eur")
	// when a convert code other than USD was requested. USD fields are
	// always populated regardless.
	Converted map[string]*decimal.Decimal `json:"converted,omitempty"`
}

// GlobalStats mirrors the /global/ API endpoint.
type GlobalStats struct {
	TotalMarketCap   *decimal.Decimal `json:"total_market_cap_usd"`
	Total24hVolume   *decimal.Decimal `json:"total_24h_volume_usd"`
	BitcoinDominance *decimal.Decimal `json:"bitcoin_percentage_of_market_cap"`
	ActiveCurrencies int              `json:"active_currencies"`
	ActiveAssets     int              `json:"active_assets"`
	ActiveMarkets    int              `json:"active_markets"`
	LastUpdated      *int64           `json:"last_updated"`

	Converted map[string]*decimal.Decimal `json:"converted,omitempty"`
}

// CurrencyDetail is the scraped per-currency page.
type CurrencyDetail struct {
	Symbol            string           `json:"symbol"`
	Slug              string           `json:"slug"`
	Name              string           `json:"name"`
	Rank              int              `json:"rank"`
	Price             *decimal.Decimal `json:"price"`
	MarketsCap        *decimal.Decimal `json:"markets_cap"`
	MarketsVolume24h  *decimal.Decimal `json:"markets_volume_24h"`
	CirculatingSupply *decimal.Decimal `json:"circulating_supply"`
	TotalSupply       *decimal.Decimal `json:"total_supply"`
	MaxSupply         *decimal.Decimal `json:"max_supply"`
	Mineable          bool             `json:"mineable"`
	Explorers         []string         `json:"explorers"`
	Webs              []string         `json:"webs"`
	Chats             []string         `json:"chats"`
	MessageBoards     []string         `json:"message_boards"`
	SourceCode        string           `json:"source_code,omitempty"`
	Announcement      string           `json:"announcement,omitempty"`

	// Converted carries convert-specific price counterparts when a convert
	// code other than USD was requested; USD fields are never replaced.
	Converted map[string]*decimal.Decimal `json:"converted,omitempty"`
}

// MarketEntry is one market row of a currency page.
// Pair always contains exactly one "/" separator.
type MarketEntry struct {
	Exchange      string          `json:"exchange"`
	Pair          string          `json:"pair"`
	Volume24h     decimal.Decimal `json:"volume_24h"`
	Price         decimal.Decimal `json:"price"`
	PercentVolume decimal.Decimal `json:"percent_volume"`
	Updated       bool            `json:"updated"`
}

// CurrencyMarkets groups the market rows of one currency.
type CurrencyMarkets struct {
	Symbol  string        `json:"symbol"`
	Slug    string        `json:"slug"`
	Markets []MarketEntry `json:"markets"`
}

// RankKind selects between the two gainers-losers tables.
type RankKind string

// RankPeriod selects a gainers-losers time window.
type RankPeriod string

const (
	RankGainers RankKind = "gainers"
	RankLosers  RankKind = "losers"

	Period1h  RankPeriod = "1h"
	Period24h RankPeriod = "24h"
	Period7d  RankPeriod = "7d"
)

// RankEntry is one row of a gainers-losers table.
type RankEntry struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Volume24h     decimal.Decimal `json:"volume_24h"`
	PercentChange decimal.Decimal `json:"percent_change"`
}

// Rankings holds every requested (kind, period) group.
type Rankings map[RankKind]map[RankPeriod][]RankEntry

// HistoricalTick is one OHLCV row of the historical-data page.
type HistoricalTick struct {
	Date      time.Time        `json:"date"`
	Open      decimal.Decimal  `json:"open"`
	High      decimal.Decimal  `json:"high"`
	Low       decimal.Decimal  `json:"low"`
	Close     decimal.Decimal  `json:"close"`
	Volume    *decimal.Decimal `json:"volume"`
	MarketCap *decimal.Decimal `json:"market_cap"`
}

// CurrencyHistory groups the historical ticks of one currency.
type CurrencyHistory struct {
	Symbol  string           `json:"symbol"`
	Slug    string           `json:"slug"`
	History []HistoricalTick `json:"history"`
}

// RecentListing is one row of the recently-added page.
type RecentListing struct {
	Name              string           `json:"name"`
	Symbol            string           `json:"symbol"`
	DaysAgo           int              `json:"days_ago"`
	MarketCap         *decimal.Decimal `json:"market_cap"`
	Price             *decimal.Decimal `json:"price"`
	CirculatingSupply *decimal.Decimal `json:"circulating_supply"`
	Mineable          bool             `json:"mineable"`
	Volume24h         *decimal.Decimal `json:"volume_24h"`
	PercentChange     *decimal.Decimal `json:"percent_change"`
}

// TokenListing is one row of the tokens page.
type TokenListing struct {
	Name              string           `json:"name"`
	Symbol            string           `json:"symbol"`
	Platform          string           `json:"platform,omitempty"`
	MarketCap         *decimal.Decimal `json:"market_cap"`
	Price             *decimal.Decimal `json:"price"`
	CirculatingSupply *decimal.Decimal `json:"circulating_supply"`
	Volume24h         *decimal.Decimal `json:"volume_24h"`
}

// ExchangeMarket is one market row of an exchange page, with its volume rank.
type ExchangeMarket struct {
	Rank          int             `json:"rank"`
	Currency      string          `json:"currency"`
	Pair          string          `json:"pair"`
	Volume24h     decimal.Decimal `json:"volume_24h"`
	Price         decimal.Decimal `json:"price"`
	PercentVolume decimal.Decimal `json:"percent_volume"`
	Updated       bool            `json:"updated"`
}

// ExchangeDetail is the scraped per-exchange page.
type ExchangeDetail struct {
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Website     string            `json:"website,omitempty"`
	Social      map[string]string `json:"social"`
	TotalVolume *decimal.Decimal  `json:"volume"`
	Markets     []ExchangeMarket  `json:"markets"`
}

// ExchangeRanking is one exchange block of the all-exchanges listing.
type ExchangeRanking struct {
	Rank        int              `json:"rank"`
	Name        string           `json:"name"`
	TotalVolume *decimal.Decimal `json:"volume"`
	Markets     []ExchangeMarket `json:"markets"`
}

// GraphPoint is one (timestamp, value) sample of a graph series.
type GraphPoint struct {
	Time  time.Time       `json:"time"`
	Value decimal.Decimal `json:"value"`
}

// GraphSeries maps a series name ("price_usd", "volume_usd", ...) to its
// samples. Timestamps within one series are strictly increasing.
type GraphSeries map[string][]GraphPoint

// CurrencyGraphs binds graph series to the currency they were scraped for.
type CurrencyGraphs struct {
	Symbol string      `json:"symbol"`
	Slug   string      `json:"slug"`
	Series GraphSeries `json:"series"`
}
