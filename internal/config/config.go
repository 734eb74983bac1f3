package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"QuantAI/internal/collector"
	"QuantAI/internal/indicator"
	"QuantAI/internal/model"
)

// Provider names accepted by provider.name.
const (
	ProviderYahoo     = "yahoo"
	ProviderEastMoney = "eastmoney"
	ProviderMock      = "mock"
)

// WatchItem is one ticker analysed by the scheduled watchlist job.
type WatchItem struct {
	Ticker      string   `yaml:"ticker"`
	HoldingCost *float64 `yaml:"holding_cost"`
}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr            string  `yaml:"addr"`
		RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
		RateLimitBurst  int     `yaml:"rate_limit_burst"`
	} `yaml:"server"`
	Provider struct {
		Name              string `yaml:"name"`
		BaseURL           string `yaml:"base_url"`
		Proxy             string `yaml:"proxy"`
		MaxRequestsPerMin int    `yaml:"max_requests_per_min"`
		TimeoutSec        int    `yaml:"timeout_sec"`
	} `yaml:"provider"`
	Analysis struct {
		Lookback         int    `yaml:"lookback"`
		IndicatorBackend string `yaml:"indicator_backend"`
	} `yaml:"analysis"`
	Sentiment struct {
		Seed int64 `yaml:"seed"`
	} `yaml:"sentiment"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		WatchlistCron string `yaml:"watchlist_cron"`
	} `yaml:"schedule"`
	Watchlist []WatchItem `yaml:"watchlist"`
	Telegram  struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file or .env is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	// Variables already set in the process take precedence over .env.
	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Provider.Name, "QUANT_PROVIDER")
	setString(&c.Provider.BaseURL, "QUANT_PROVIDER_BASE_URL")
	setString(&c.Provider.Proxy, "HTTPS_PROXY")
	setString(&c.Analysis.IndicatorBackend, "QUANT_INDICATOR_BACKEND")
	setString(&c.Database.SQLitePath, "SQLITE_PATH")
	setString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.Schedule.WatchlistCron, "CRON_WATCHLIST")

	if v := os.Getenv("QUANT_MAX_REQUESTS_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("QUANT_MAX_REQUESTS_PER_MIN: %w", err)
		}
		c.Provider.MaxRequestsPerMin = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.RateLimitPerSec == 0 {
		c.Server.RateLimitPerSec = 5
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = 10
	}
	c.Provider.Name = strings.ToLower(strings.TrimSpace(c.Provider.Name))
	if c.Provider.Name == "" {
		c.Provider.Name = ProviderYahoo
	}
	if c.Provider.MaxRequestsPerMin == 0 {
		c.Provider.MaxRequestsPerMin = collector.DefaultMaxRequestsPerMin
	}
	if c.Provider.TimeoutSec == 0 {
		c.Provider.TimeoutSec = int(collector.DefaultTimeout.Seconds())
	}
	if c.Analysis.Lookback == 0 {
		c.Analysis.Lookback = model.DefaultLookback
	}
	if c.Analysis.IndicatorBackend == "" {
		c.Analysis.IndicatorBackend = indicator.BackendTalib
	}
	if c.Schedule.WatchlistCron == "" {
		// Weekdays after the US close, seconds field first.
		c.Schedule.WatchlistCron = "0 30 16 * * 1-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	switch c.Provider.Name {
	case ProviderYahoo, ProviderEastMoney, ProviderMock:
	default:
		return fmt.Errorf("provider.name %q is not one of yahoo, eastmoney, mock", c.Provider.Name)
	}
	if c.Provider.MaxRequestsPerMin <= 0 {
		return fmt.Errorf("provider.max_requests_per_min must be positive")
	}
	if c.Provider.TimeoutSec <= 0 {
		return fmt.Errorf("provider.timeout_sec must be positive")
	}
	if c.Analysis.Lookback <= 0 {
		return fmt.Errorf("analysis.lookback must be positive")
	}
	if _, err := indicator.New(c.Analysis.IndicatorBackend); err != nil {
		return fmt.Errorf("analysis.indicator_backend: %w", err)
	}
	if c.Server.RateLimitPerSec < 0 || c.Server.RateLimitBurst < 0 {
		return fmt.Errorf("server rate limit must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	for i, w := range c.Watchlist {
		if strings.TrimSpace(w.Ticker) == "" {
			return fmt.Errorf("watchlist[%d].ticker is required", i)
		}
		if w.HoldingCost != nil && *w.HoldingCost < 0 {
			return fmt.Errorf("watchlist[%d].holding_cost must be non-negative", i)
		}
	}
	return nil
}

// TelegramEnabled reports whether both Telegram credentials are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
