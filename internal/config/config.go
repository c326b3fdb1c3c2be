package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"StockDeck/internal/model"
)

// DefaultTapeSymbols are the popular tickers shown on the tape.
var DefaultTapeSymbols = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "AMD", "NFLX", "JPM"}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Upstream struct {
		ChartURL  string        `yaml:"chart_url"`
		SearchURL string        `yaml:"search_url"`
		UserAgent string        `yaml:"user_agent"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"upstream"`
	Tape struct {
		Symbols  []string `yaml:"symbols"`
		Interval string   `yaml:"interval"`
		Period   string   `yaml:"period"`
		Workers  int      `yaml:"workers"`
	} `yaml:"tape"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
		MaxAge int    `yaml:"max_age"`
	} `yaml:"logging"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Path returns the config file location, honoring CONFIG_PATH.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("STOCKDECK_ADDR"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TAPE_INTERVAL"); v != "" {
		cfg.Tape.Interval = v
	}
	if v := os.Getenv("TAPE_SYMBOLS"); v != "" {
		cfg.Tape.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Upstream.Timeout = d
		} else if secs, err := strconv.Atoi(v); err == nil {
			cfg.Upstream.Timeout = time.Duration(secs) * time.Second
		}
	}

	// Defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = "0.0.0.0:8080"
	}
	if cfg.Upstream.ChartURL == "" {
		cfg.Upstream.ChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	}
	if cfg.Upstream.SearchURL == "" {
		cfg.Upstream.SearchURL = "https://query1.finance.yahoo.com/v1/finance/search"
	}
	if cfg.Upstream.UserAgent == "" {
		cfg.Upstream.UserAgent = "Mozilla/5.0"
	}
	if len(cfg.Tape.Symbols) == 0 {
		cfg.Tape.Symbols = append([]string(nil), DefaultTapeSymbols...)
	}
	if cfg.Tape.Interval == "" {
		cfg.Tape.Interval = "@every 30s"
	}
	if cfg.Tape.Period == "" {
		cfg.Tape.Period = "1d"
	}
	if cfg.Tape.Workers <= 0 {
		cfg.Tape.Workers = 4
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	return cfg, nil
}

// Validate checks that all required fields are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return fmt.Errorf("server.address is required")
	}
	for name, raw := range map[string]string{
		"upstream.chart_url":  c.Upstream.ChartURL,
		"upstream.search_url": c.Upstream.SearchURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.Proxy != "" {
		if _, err := url.Parse(c.Proxy); err != nil {
			return fmt.Errorf("proxy: %w", err)
		}
	}
	if c.Upstream.Timeout < 0 {
		return fmt.Errorf("upstream.timeout must not be negative")
	}
	if len(c.Tape.Symbols) == 0 {
		return fmt.Errorf("tape.symbols must not be empty")
	}
	if _, err := cron.ParseStandard(c.Tape.Interval); err != nil {
		return fmt.Errorf("tape.interval: %w", err)
	}
	if _, err := model.ParsePeriod(c.Tape.Period); err != nil {
		return fmt.Errorf("tape.period: %w", err)
	}
	return nil
}

func splitSymbols(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
