package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"BasketMint/internal/fund"
	"BasketMint/internal/minimum"
	"BasketMint/internal/model"
)

// Feed kinds.
const (
	FeedStatic = "static"
	FeedHTTP   = "http"
	FeedBars   = "bars"
	FeedMock   = "mock"
)

// Config holds all application configuration.
type Config struct {
	Policy struct {
		Tiers             []model.LiquidityTier `yaml:"tiers"`
		Floor             decimal.Decimal       `yaml:"floor"`
		Ceiling           decimal.Decimal       `yaml:"ceiling"`
		VolatilityDivisor decimal.Decimal       `yaml:"volatility_divisor"`
		DemandDivisor     decimal.Decimal       `yaml:"demand_divisor"`
		RecalcThreshold   decimal.Decimal       `yaml:"recalc_threshold"`
		ShareScale        decimal.Decimal       `yaml:"share_scale"`
		MaxComponents     int                   `yaml:"max_components"`
	} `yaml:"policy"`
	Oracle struct {
		BaseURL string                     `yaml:"base_url"`
		APIKey  string                     `yaml:"api_key"`
		Prices  map[string]decimal.Decimal `yaml:"prices"`
	} `yaml:"oracle"`
	Feed struct {
		Kind    string `yaml:"kind"`
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Symbol  string `yaml:"symbol"`
		Cron    string `yaml:"cron"`
		Static  struct {
			Liquidity    decimal.Decimal `yaml:"liquidity"`
			VolatilityBP int64           `yaml:"volatility_bp"`
			DemandBP     int64           `yaml:"demand_bp"`
		} `yaml:"static"`
	} `yaml:"feed"`
	Telegram struct {
		BotToken  string `yaml:"bot_token"`
		ChatID    string `yaml:"chat_id"`
		QueueSize int    `yaml:"queue_size"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	State struct {
		Dir          string `yaml:"dir"`
		SnapshotCron string `yaml:"snapshot_cron"`
	} `yaml:"state"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		key string
		dst *string
	}{
		{"TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &c.Telegram.ChatID},
		{"ORACLE_BASE_URL", &c.Oracle.BaseURL},
		{"ORACLE_API_KEY", &c.Oracle.APIKey},
		{"FEED_BASE_URL", &c.Feed.BaseURL},
		{"FEED_CRON", &c.Feed.Cron},
		{"HTTPS_PROXY", &c.Proxy},
		{"SQLITE_PATH", &c.Database.SQLitePath},
		{"HTTP_ADDR", &c.HTTP.Addr},
		{"LOG_LEVEL", &c.Log.Level},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	def := minimum.DefaultPolicy()
	eng := fund.DefaultConfig()

	if len(c.Policy.Tiers) == 0 {
		c.Policy.Tiers = def.Tiers.Tiers()
	}
	if c.Policy.Floor.IsZero() {
		c.Policy.Floor = def.Floor
	}
	if c.Policy.Ceiling.IsZero() {
		c.Policy.Ceiling = def.Ceiling
	}
	if c.Policy.VolatilityDivisor.IsZero() {
		c.Policy.VolatilityDivisor = def.VolatilityDivisor
	}
	if c.Policy.DemandDivisor.IsZero() {
		c.Policy.DemandDivisor = def.DemandDivisor
	}
	if c.Policy.RecalcThreshold.IsZero() {
		c.Policy.RecalcThreshold = eng.RecalcThreshold
	}
	if c.Policy.ShareScale.IsZero() {
		c.Policy.ShareScale = eng.ShareScale
	}
	if c.Policy.MaxComponents == 0 {
		c.Policy.MaxComponents = eng.MaxComponents
	}

	if c.Feed.Kind == "" {
		c.Feed.Kind = FeedStatic
	}
	c.Feed.Kind = strings.ToLower(c.Feed.Kind)
	if c.Feed.Symbol == "" {
		c.Feed.Symbol = "SPX500"
	}
	if c.Feed.Cron == "" {
		c.Feed.Cron = "0 */5 * * * *"
	}
	if c.Telegram.QueueSize == 0 {
		c.Telegram.QueueSize = 128
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/basketmint.db"
	}
	if c.State.Dir == "" {
		c.State.Dir = "data/funds"
	}
	if c.State.SnapshotCron == "" {
		c.State.SnapshotCron = "0 0 * * * *"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := c.MinimumPolicy(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	if !c.Policy.RecalcThreshold.IsPositive() {
		return fmt.Errorf("policy.recalc_threshold must be positive")
	}
	if !c.Policy.ShareScale.IsPositive() {
		return fmt.Errorf("policy.share_scale must be positive")
	}
	if c.Policy.MaxComponents <= 0 {
		return fmt.Errorf("policy.max_components must be positive")
	}
	if c.Oracle.BaseURL == "" && len(c.Oracle.Prices) == 0 {
		return fmt.Errorf("oracle.base_url or oracle.prices is required")
	}
	for asset, price := range c.Oracle.Prices {
		if price.IsNegative() {
			return fmt.Errorf("oracle.prices[%s] must not be negative", asset)
		}
	}
	switch c.Feed.Kind {
	case FeedStatic:
		s := c.Feed.Static
		if s.Liquidity.IsNegative() || s.VolatilityBP < 0 || s.DemandBP < 0 {
			return fmt.Errorf("feed.static must not be negative")
		}
	case FeedHTTP:
		if c.Feed.BaseURL == "" {
			return fmt.Errorf("feed.base_url is required for the http feed")
		}
	case FeedBars, FeedMock:
	default:
		return fmt.Errorf("feed.kind %q is not one of static, http, bars, mock", c.Feed.Kind)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether chat notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// MinimumPolicy builds the calculator policy from the policy section.
func (c *Config) MinimumPolicy() (minimum.Policy, error) {
	table, err := minimum.NewTierTable(c.Policy.Tiers)
	if err != nil {
		return minimum.Policy{}, err
	}
	p := minimum.Policy{
		Tiers:             table,
		VolatilityDivisor: c.Policy.VolatilityDivisor,
		DemandDivisor:     c.Policy.DemandDivisor,
		Floor:             c.Policy.Floor,
		Ceiling:           c.Policy.Ceiling,
	}
	if err := p.Validate(); err != nil {
		return minimum.Policy{}, err
	}
	return p, nil
}

// EngineConfig builds the fund engine parameters.
func (c *Config) EngineConfig() fund.Config {
	return fund.Config{
		MaxComponents:   c.Policy.MaxComponents,
		ShareScale:      c.Policy.ShareScale,
		RecalcThreshold: c.Policy.RecalcThreshold,
	}
}
