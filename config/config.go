package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log        Logger     `mapstructure:"logger"`
	DB         Database   `mapstructure:"database"`
	API        API        `mapstructure:"api"`
	Cache      Cache      `mapstructure:"cache"`
	Redis      Redis      `mapstructure:"redis"`
	MarketData MarketData `mapstructure:"market_data"`
	Finnhub    Finnhub    `mapstructure:"finnhub"`
	Backtest   Backtest   `mapstructure:"backtest"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port              int           `mapstructure:"port"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	RateLimitExpiry   time.Duration `mapstructure:"rate_limit_expiry"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
	BarsTTL           time.Duration `mapstructure:"bars_ttl"`
	FundamentalsTTL   time.Duration `mapstructure:"fundamentals_ttl"`
}

// Redis is the optional second cache level. Disabled means in-memory only.
type Redis struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MarketData struct {
	Provider string       `mapstructure:"provider"`
	Yahoo    YahooFinance `mapstructure:"yahoo"`
	Alpaca   Alpaca       `mapstructure:"alpaca"`
}

type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

type Alpaca struct {
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	BaseURL   string `mapstructure:"base_url"`
	Feed      string `mapstructure:"feed"`
}

type Finnhub struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

type Backtest struct {
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	RiskFreeRate   float64       `mapstructure:"risk_free_rate"`
	WarmupDays     int           `mapstructure:"warmup_days"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type Scheduler struct {
	Enabled      bool          `mapstructure:"enabled"`
	Spec         string        `mapstructure:"spec"`
	LookbackDays int           `mapstructure:"lookback_days"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")

	v.SetDefault("api.port", 8080)
	v.SetDefault("api.requests_per_second", 10)
	v.SetDefault("api.burst", 30)
	v.SetDefault("api.rate_limit_expiry", 3*time.Minute)
	v.SetDefault("api.request_timeout", 5*time.Minute)

	v.SetDefault("cache.default_expiration", 30*time.Minute)
	v.SetDefault("cache.cleanup_interval", time.Hour)
	v.SetDefault("cache.bars_ttl", 12*time.Hour)
	v.SetDefault("cache.fundamentals_ttl", 24*time.Hour)

	v.SetDefault("market_data.provider", "yahoo")
	v.SetDefault("market_data.yahoo.base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("market_data.yahoo.timeout", 15*time.Second)
	v.SetDefault("market_data.yahoo.max_request_per_minute", 60)
	v.SetDefault("market_data.alpaca.feed", "iex")

	v.SetDefault("finnhub.base_url", "https://finnhub.io/api/v1")
	v.SetDefault("finnhub.timeout", 15*time.Second)
	v.SetDefault("finnhub.max_request_per_minute", 60)

	v.SetDefault("backtest.max_concurrency", 4)
	v.SetDefault("backtest.risk_free_rate", 0.02)
	v.SetDefault("backtest.warmup_days", 120)
	v.SetDefault("backtest.timeout", 10*time.Minute)

	v.SetDefault("scheduler.spec", "0 22 * * 1-5")
	v.SetDefault("scheduler.lookback_days", 365)
	v.SetDefault("scheduler.timeout", 30*time.Minute)
}

// Load reads .env (if any), config.yaml from the working directory and
// environment overrides, in that order of precedence from lowest to highest.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
