package dto

import (
	"encoding/json"
	"fmt"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// StrategyConfig is the full, read-only description of a strategy. Zero values
// are replaced by the `default` tags in ApplyDefaults, so a threshold has to be
// set negative to be disabled. Weights and Fundamental are the exception: they
// are defaulted as a whole section, and only when the section is empty.
type StrategyConfig struct {
	Name           string            `json:"name" yaml:"name"`
	Symbols        []string          `json:"symbols" yaml:"symbols" validate:"required,min=1,dive,required"`
	InitialCapital float64           `json:"initial_capital" yaml:"initial_capital" default:"100000" validate:"gte=0"`
	EntryMode      EntryMode         `json:"entry_mode" yaml:"entry_mode" default:"signals" validate:"omitempty,oneof=signals always"`
	Technical      TechnicalConfig   `json:"technical" yaml:"technical"`
	Fundamental    FundamentalConfig `json:"fundamental" yaml:"fundamental"`
	Sentiment      SentimentConfig   `json:"sentiment" yaml:"sentiment"`
	Risk           RiskConfig        `json:"risk" yaml:"risk"`
	Weights        SignalWeights     `json:"weights" yaml:"weights"`
}

type TechnicalConfig struct {
	RSIPeriod     int     `json:"rsi_period" yaml:"rsi_period" default:"14" validate:"gte=0"`
	RSIOversold   float64 `json:"rsi_oversold" yaml:"rsi_oversold" default:"30"`
	RSIOverbought float64 `json:"rsi_overbought" yaml:"rsi_overbought" default:"70"`
	SMAShort      int     `json:"sma_short" yaml:"sma_short" default:"20" validate:"gte=0"`
	SMALong       int     `json:"sma_long" yaml:"sma_long" default:"50" validate:"gte=0"`
	SMATrend      int     `json:"sma_trend" yaml:"sma_trend" default:"10" validate:"gte=0"`
}

type FundamentalConfig struct {
	PEMin            float64 `json:"pe_min" yaml:"pe_min" default:"5"`
	PEMax            float64 `json:"pe_max" yaml:"pe_max" default:"25"`
	EPSGrowthMin     float64 `json:"eps_growth_min" yaml:"eps_growth_min" default:"5"`
	BetaMax          float64 `json:"beta_max" yaml:"beta_max" default:"1.5"`
	DividendYieldMin float64 `json:"dividend_yield_min" yaml:"dividend_yield_min" default:"1"`
	MarketCapMin     float64 `json:"market_cap_min" yaml:"market_cap_min" default:"2000000000"`
}

type SentimentConfig struct {
	NewsScoreThreshold float64 `json:"news_score_threshold" yaml:"news_score_threshold" default:"60" validate:"gte=0,lte=100"`
}

// RiskConfig percentages are whole numbers (10 means 10%).
type RiskConfig struct {
	MaxPositionSizePercent float64 `json:"max_position_size_percent" yaml:"max_position_size_percent" default:"10" validate:"gte=0,lte=100"`
	MaxOpenPositions       int     `json:"max_open_positions" yaml:"max_open_positions" default:"5" validate:"gte=0"`
	StopLossPercent        float64 `json:"stop_loss_percent" yaml:"stop_loss_percent" default:"5"`
	TakeProfitPercent      float64 `json:"take_profit_percent" yaml:"take_profit_percent" default:"15"`
}

// SignalWeights are raw weights; they are normalized to percentages by the combiner.
type SignalWeights struct {
	Technical   float64 `json:"technical" yaml:"technical" default:"40" validate:"gte=0"`
	Fundamental float64 `json:"fundamental" yaml:"fundamental" default:"35" validate:"gte=0"`
	Sentiment   float64 `json:"sentiment" yaml:"sentiment" default:"25" validate:"gte=0"`
}

// ApplyDefaults fills zero-valued fields from their `default` tag. A
// non-empty Weights or Fundamental section is kept as given, zeros included.
func (c *StrategyConfig) ApplyDefaults() error {
	weights, fundamental := c.Weights, c.Fundamental
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("failed to apply strategy defaults: %w", err)
	}
	if weights != (SignalWeights{}) {
		c.Weights = weights
	}
	if fundamental != (FundamentalConfig{}) {
		c.Fundamental = fundamental
	}
	return nil
}

// Decoding starts from the defaults, so keys missing from a partial section
// get their default while keys present keep their value, even 0.

func (w *SignalWeights) UnmarshalJSON(data []byte) error {
	type plain SignalWeights
	v := plain{}
	if err := defaults.Set(&v); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*w = SignalWeights(v)
	return nil
}

func (w *SignalWeights) UnmarshalYAML(node *yaml.Node) error {
	type plain SignalWeights
	v := plain{}
	if err := defaults.Set(&v); err != nil {
		return err
	}
	if err := node.Decode(&v); err != nil {
		return err
	}
	*w = SignalWeights(v)
	return nil
}

func (f *FundamentalConfig) UnmarshalJSON(data []byte) error {
	type plain FundamentalConfig
	v := plain{}
	if err := defaults.Set(&v); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FundamentalConfig(v)
	return nil
}

func (f *FundamentalConfig) UnmarshalYAML(node *yaml.Node) error {
	type plain FundamentalConfig
	v := plain{}
	if err := defaults.Set(&v); err != nil {
		return err
	}
	if err := node.Decode(&v); err != nil {
		return err
	}
	*f = FundamentalConfig(v)
	return nil
}

// Clone returns a deep copy so callers can derive variants without touching the original.
func (c StrategyConfig) Clone() StrategyConfig {
	c.Symbols = append([]string(nil), c.Symbols...)
	return c
}

// MaxLookback is the longest indicator window the technical signal needs.
func (c TechnicalConfig) MaxLookback() int {
	lookback := c.RSIPeriod + 1
	for _, p := range []int{c.SMAShort, c.SMALong, c.SMATrend} {
		if p > lookback {
			lookback = p
		}
	}
	return lookback
}

func DefaultStrategyConfig(symbols ...string) StrategyConfig {
	cfg := StrategyConfig{Symbols: symbols}
	_ = cfg.ApplyDefaults()
	return cfg
}
