package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// validOperations are the bulk scrapes cmcdump can run.
var validOperations = map[string]bool{
	"currency":   true,
	"markets":    true,
	"historical": true,
	"exchange":   true,
	"graphs":     true,
}

// Config holds every cmcdump setting. Loaded from YAML, then overridden by
// CMCDUMP_* environment variables.
type Config struct {
	Operation string `yaml:"operation"`

	Scrape struct {
		Convert    string `yaml:"convert"`
		TimeoutSec int    `yaml:"timeout_sec"`
		Consumers  int    `yaml:"consumers"`
		QueueSize  int    `yaml:"queue_size"`
		Retries    int    `yaml:"retries"`
		// Scrape window, "2006-01-02". Required by the historical
		// operation, optional for graphs.
		Start string `yaml:"start"`
		End   string `yaml:"end"`
		// AutoTimeframe asks the graphs server to bucket series to the
		// window instead of filtering the full series locally.
		AutoTimeframe bool `yaml:"auto_timeframe"`
	} `yaml:"scrape"`

	Output struct {
		Dir       string `yaml:"dir"`
		CachePath string `yaml:"cache_path"` // empty disables the response cache
	} `yaml:"output"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and validates the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Scrape.Convert == "" {
		cfg.Scrape.Convert = "USD"
	}
	if cfg.Scrape.TimeoutSec <= 0 {
		cfg.Scrape.TimeoutSec = 15
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "dumps"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if !validOperations[c.Operation] {
		return fmt.Errorf("unknown operation %q", c.Operation)
	}
	if c.Scrape.Consumers < 0 || c.Scrape.QueueSize < 0 {
		return fmt.Errorf("consumers and queue size must not be negative")
	}
	if c.Operation == "historical" {
		if _, err := c.HistoricalWindow(); err != nil {
			return err
		}
	}
	return nil
}

// HistoricalWindow parses the start/end dates of the historical operation.
func (c *Config) HistoricalWindow() (window [2]time.Time, err error) {
	if c.Scrape.Start == "" || c.Scrape.End == "" {
		return window, fmt.Errorf("historical operation requires start and end dates")
	}
	window[0], err = time.Parse("2006-01-02", c.Scrape.Start)
	if err != nil {
		return window, fmt.Errorf("invalid start date %q: %w", c.Scrape.Start, err)
	}
	window[1], err = time.Parse("2006-01-02", c.Scrape.End)
	if err != nil {
		return window, fmt.Errorf("invalid end date %q: %w", c.Scrape.End, err)
	}
	if window[1].Before(window[0]) {
		return window, fmt.Errorf("end date precedes start date")
	}
	return window, nil
}

// overrideWithEnv applies CMCDUMP_* environment variables over file values.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("CMCDUMP_OPERATION"); v != "" {
		cfg.Operation = v
	}
	if v := os.Getenv("CMCDUMP_CONVERT"); v != "" {
		cfg.Scrape.Convert = v
	}
	if v := os.Getenv("CMCDUMP_OUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("CMCDUMP_CACHE_PATH"); v != "" {
		cfg.Output.CachePath = v
	}
	if v := os.Getenv("CMCDUMP_CONSUMERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scrape.Consumers = n
		}
	}
	if v := os.Getenv("CMCDUMP_QUEUE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scrape.QueueSize = n
		}
	}
}
