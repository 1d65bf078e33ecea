package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"golang-backtest/internal/dto"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStrategy(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadStrategyFile(t *testing.T) {
	path := writeStrategy(t, "momentum.yaml", `
symbols: [AAPL, MSFT]
entry_mode: signals
technical:
  rsi_oversold: 25
risk:
  stop_loss_percent: -1
  max_open_positions: 2
weights:
  technical: 60
  fundamental: 40
  sentiment: 0
`)

	entry, err := loadStrategyFile(path, goValidator.New())
	require.NoError(t, err)

	assert.Equal(t, "momentum", entry.Label)
	assert.Equal(t, "momentum", entry.Config.Name)
	assert.Equal(t, []string{"AAPL", "MSFT"}, entry.Config.Symbols)
	assert.Equal(t, 25.0, entry.Config.Technical.RSIOversold)
	assert.Equal(t, 70.0, entry.Config.Technical.RSIOverbought)
	assert.Equal(t, -1.0, entry.Config.Risk.StopLossPercent)
	assert.Equal(t, 15.0, entry.Config.Risk.TakeProfitPercent)
	assert.Equal(t, 2, entry.Config.Risk.MaxOpenPositions)
	assert.Equal(t, dto.EntryModeSignals, entry.Config.EntryMode)
	assert.Equal(t, dto.SignalWeights{Technical: 60, Fundamental: 40, Sentiment: 0}, entry.Config.Weights)
}

func TestLoadStrategyFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no symbols", content: "name: empty\n"},
		{name: "bad entry mode", content: "symbols: [AAPL]\nentry_mode: sometimes\n"},
		{name: "not yaml", content: "symbols: [AAPL\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadStrategyFile(writeStrategy(t, "s.yaml", tt.content), goValidator.New())
			assert.Error(t, err)
		})
	}

	_, err := loadStrategyFile(filepath.Join(t.TempDir(), "missing.yaml"), goValidator.New())
	assert.Error(t, err)
}
