package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStrategyConfig_ApplyDefaults(t *testing.T) {
	tests := []struct {
		name            string
		in              StrategyConfig
		wantWeights     SignalWeights
		wantDividendMin float64
		wantPEMin       float64
	}{
		{
			name:            "empty sections are defaulted",
			in:              StrategyConfig{Symbols: []string{"AAPL"}},
			wantWeights:     SignalWeights{Technical: 40, Fundamental: 35, Sentiment: 25},
			wantDividendMin: 1,
			wantPEMin:       5,
		},
		{
			name: "explicit zeros survive",
			in: StrategyConfig{
				Symbols:     []string{"AAPL"},
				Weights:     SignalWeights{Technical: 100},
				Fundamental: FundamentalConfig{PEMax: 40},
			},
			wantWeights:     SignalWeights{Technical: 100},
			wantDividendMin: 0,
			wantPEMin:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in.Clone()
			require.NoError(t, cfg.ApplyDefaults())
			assert.Equal(t, tt.wantWeights, cfg.Weights)
			assert.Equal(t, tt.wantDividendMin, cfg.Fundamental.DividendYieldMin)
			assert.Equal(t, tt.wantPEMin, cfg.Fundamental.PEMin)
			assert.Equal(t, 100000.0, cfg.InitialCapital)
		})
	}
}

func TestStrategyConfig_DecodePartialSections(t *testing.T) {
	jsonBody := `{"symbols":["AAPL"],"weights":{"technical":100,"fundamental":0},"fundamental":{"dividend_yield_min":0}}`
	yamlBody := "symbols: [AAPL]\nweights:\n  technical: 100\n  fundamental: 0\nfundamental:\n  dividend_yield_min: 0\n"

	decoders := map[string]func(*StrategyConfig) error{
		"json": func(c *StrategyConfig) error { return json.Unmarshal([]byte(jsonBody), c) },
		"yaml": func(c *StrategyConfig) error { return yaml.Unmarshal([]byte(yamlBody), c) },
	}

	for name, decode := range decoders {
		t.Run(name, func(t *testing.T) {
			var cfg StrategyConfig
			require.NoError(t, decode(&cfg))
			require.NoError(t, cfg.ApplyDefaults())

			// present keys keep their value, absent ones get the default
			assert.Equal(t, SignalWeights{Technical: 100, Fundamental: 0, Sentiment: 25}, cfg.Weights)
			assert.Equal(t, 0.0, cfg.Fundamental.DividendYieldMin)
			assert.Equal(t, 5.0, cfg.Fundamental.PEMin)
			assert.Equal(t, 25.0, cfg.Fundamental.PEMax)
		})
	}
}

func TestStrategyConfig_JSONRoundTripKeepsZeroWeight(t *testing.T) {
	cfg := DefaultStrategyConfig("MSFT")
	cfg.Weights = SignalWeights{Technical: 1, Fundamental: 0, Sentiment: 0}

	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	var stored StrategyConfig
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.NoError(t, stored.ApplyDefaults())
	assert.Equal(t, cfg.Weights, stored.Weights)
}
