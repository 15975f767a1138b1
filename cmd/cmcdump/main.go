// cmcdump runs one bulk scrape operation and writes the normalized records
// to a JSON dump file, one array per operation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mondeja/gomarketcap"
	"github.com/mondeja/gomarketcap/internal/cache"
)

func main() {
	configPath := flag.String("config", "cmcdump.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging.Level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Dump failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func run(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	client, err := gomarketcap.New(ctx,
		gomarketcap.WithConvert(cfg.Scrape.Convert),
		gomarketcap.WithTimeout(time.Duration(cfg.Scrape.TimeoutSec)*time.Second),
		gomarketcap.WithRetries(cfg.Scrape.Retries),
		gomarketcap.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	logger.Info("Client ready", slog.Int("currencies", client.CoinCount()))

	async := gomarketcap.NewAsync(client,
		gomarketcap.WithConsumers(cfg.Scrape.Consumers),
		gomarketcap.WithQueueSize(cfg.Scrape.QueueSize),
	)

	var store *cache.Store
	if cfg.Output.CachePath != "" {
		store, err = cache.OpenStore(cfg.Output.CachePath)
		if err != nil {
			return fmt.Errorf("open response cache: %w", err)
		}
		defer store.Close()
	}

	records, err := collect(ctx, cfg, client, async)
	if err != nil {
		return err
	}

	dumps := cache.NewDumpStore(cfg.Output.Dir)
	if err := dumps.Write(cfg.Operation, records); err != nil {
		return err
	}

	if store != nil {
		if err := store.SetMeta(ctx, "last_run_"+cfg.Operation, time.Now().UTC().Format(time.RFC3339)); err != nil {
			logger.Warn("Failed to record run metadata", slog.Any("error", err))
		}
	}

	logger.Info("Dump complete",
		slog.String("operation", cfg.Operation),
		slog.String("path", dumps.Path(cfg.Operation)))
	return nil
}

// collect drains one bulk operation into a slice for dumping.
func collect(ctx context.Context, cfg *Config, client *gomarketcap.Client, async *gomarketcap.AsyncClient) (any, error) {
	started := time.Now()
	var records any
	var count int

	switch cfg.Operation {
	case "currency":
		out := drain(async.EveryCurrency(ctx))
		records, count = out, len(out)
	case "markets":
		out := drain(async.EveryMarkets(ctx))
		records, count = out, len(out)
	case "historical":
		window, err := cfg.HistoricalWindow()
		if err != nil {
			return nil, err
		}
		out := drain(async.EveryHistorical(ctx, window[0], window[1]))
		records, count = out, len(out)
	case "exchange":
		out := drain(async.EveryExchange(ctx))
		records, count = out, len(out)
	case "graphs":
		window, err := graphWindow(cfg)
		if err != nil {
			return nil, err
		}
		out := drain(async.EveryCurrencyGraphs(ctx, window))
		records, count = out, len(out)
	default:
		return nil, fmt.Errorf("unknown operation %q", cfg.Operation)
	}

	slog.Info("Scrape finished",
		slog.String("operation", cfg.Operation),
		slog.Int("records", count),
		slog.Int("known_currencies", client.CoinCount()),
		slog.Duration("elapsed", time.Since(started)))
	return records, ctx.Err()
}

// graphWindow builds the graphs scrape window. Without configured dates the
// full series is fetched.
func graphWindow(cfg *Config) (gomarketcap.GraphWindow, error) {
	if cfg.Scrape.Start == "" && cfg.Scrape.End == "" {
		return gomarketcap.GraphWindow{}, nil
	}
	bounds, err := cfg.HistoricalWindow()
	if err != nil {
		return gomarketcap.GraphWindow{}, err
	}
	return gomarketcap.GraphWindow{
		Start:         &bounds[0],
		End:           &bounds[1],
		AutoTimeframe: cfg.Scrape.AutoTimeframe,
	}, nil
}

func drain[T any](ch <-chan T) []T {
	var out []T
	for v := range ch {
		out = append(out, v)
	}
	return out
}
