package signal

import (
	"testing"
	"time"

	"golang-backtest/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearSeries(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func f(v float64) *float64 { return &v }

func defaultTechnicalConfig() dto.TechnicalConfig {
	return dto.DefaultStrategyConfig("AAPL").Technical
}

func defaultFundamentalConfig() dto.FundamentalConfig {
	return dto.DefaultStrategyConfig("AAPL").Fundamental
}

func TestTechnical_InsufficientData(t *testing.T) {
	sig := Technical(linearSeries(10, 100, 1), defaultTechnicalConfig())

	assert.Equal(t, dto.ActionHold, sig.Action)
	assert.Equal(t, 50.0, sig.Score)
	assert.False(t, sig.Sufficient)
	require.Len(t, sig.Reasons, 1)
	assert.Contains(t, sig.Reasons[0], "Insufficient data")
}

func TestTechnical_RisingSeriesIsBalanced(t *testing.T) {
	// RSI 100 (sell vote) against a golden cross (buy vote).
	sig := Technical(linearSeries(60, 100, 1), defaultTechnicalConfig())

	require.True(t, sig.Sufficient)
	assert.Equal(t, 100.0, sig.RSI)
	assert.Equal(t, 1, sig.BuyVotes)
	assert.Equal(t, 1, sig.SellVotes)
	assert.InDelta(t, 50.0, sig.Score, 1e-9)
	assert.Equal(t, dto.ActionHold, sig.Action)
}

func TestTechnical_FallingSeriesIsDeepValueBuy(t *testing.T) {
	sig := Technical(linearSeries(60, 200, -1), defaultTechnicalConfig())

	require.True(t, sig.Sufficient)
	assert.Less(t, sig.RSI, 30.0)
	assert.Equal(t, 2, sig.BuyVotes)
	assert.Equal(t, 1, sig.SellVotes)
	assert.InDelta(t, 65.0, sig.Score, 1e-9)
	assert.Equal(t, dto.ActionBuy, sig.Action)
}

func TestTechnical_ScoreAlwaysBounded(t *testing.T) {
	cfg := defaultTechnicalConfig()
	cfg.RSIOversold = 101
	sig := Technical(linearSeries(60, 200, -1), cfg)

	assert.GreaterOrEqual(t, sig.Score, 0.0)
	assert.LessOrEqual(t, sig.Score, 100.0)
}

func TestFundamental(t *testing.T) {
	reportDate := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		data      *dto.FundamentalData
		action    dto.SignalAction
		score     float64
		peFavored bool
	}{
		{
			name:   "no data is neutral",
			data:   nil,
			action: dto.ActionHold,
			score:  50,
		},
		{
			name: "strong company is a buy",
			data: &dto.FundamentalData{
				Symbol: "AAPL", PERatio: f(15), EPS: f(6), EPSGrowth: f(12), Beta: f(1.1),
				DividendYield: f(1.5), MarketCap: f(3e12), ReportDate: reportDate,
			},
			action:    dto.ActionBuy,
			score:     100,
			peFavored: true,
		},
		{
			name: "high score without favorable pe is not a buy",
			data: &dto.FundamentalData{
				Symbol: "TSLA", PERatio: f(60), EPS: f(3), EPSGrowth: f(30), Beta: f(1.2),
				DividendYield: f(2), MarketCap: f(5e11), ReportDate: reportDate,
			},
			action: dto.ActionHold,
			score:  75,
		},
		{
			name: "losing company is a sell",
			data: &dto.FundamentalData{
				Symbol: "XYZ", PERatio: f(-4), EPS: f(-1), EPSGrowth: f(-20), Beta: f(2.5),
				ReportDate: reportDate,
			},
			action: dto.ActionSell,
			score:  0,
		},
		{
			name:   "only eps known",
			data:   &dto.FundamentalData{Symbol: "ABC", EPS: f(2), ReportDate: reportDate},
			action: dto.ActionHold,
			score:  45,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := Fundamental(tt.data, defaultFundamentalConfig())
			assert.Equal(t, tt.action, sig.Action)
			assert.InDelta(t, tt.score, sig.Score, 1e-9)
			assert.Equal(t, tt.peFavored, sig.PEFavored)
			assert.NotEmpty(t, sig.Reasons)
		})
	}
}

func TestSentiment(t *testing.T) {
	cfg := dto.SentimentConfig{NewsScoreThreshold: 60}

	tests := []struct {
		name      string
		data      *dto.SentimentData
		action    dto.SignalAction
		confident bool
	}{
		{name: "nil", data: nil, action: dto.ActionHold},
		{name: "too few articles", data: &dto.SentimentData{Score: 90, Label: dto.SentimentBullish, ArticleCount: 2}, action: dto.ActionHold},
		{name: "bullish", data: &dto.SentimentData{Score: 75, Label: dto.SentimentBullish, ArticleCount: 8}, action: dto.ActionBuy, confident: true},
		{name: "bearish", data: &dto.SentimentData{Score: 20, Label: dto.SentimentBearish, ArticleCount: 5}, action: dto.ActionSell, confident: true},
		{name: "neutral", data: &dto.SentimentData{Score: 50, Label: dto.SentimentNeutral, ArticleCount: 5}, action: dto.ActionHold, confident: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := Sentiment(tt.data, cfg)
			assert.Equal(t, tt.action, sig.Action)
			assert.Equal(t, tt.confident, sig.Confident)
			if !tt.confident {
				assert.Equal(t, 50.0, sig.Score)
				assert.Contains(t, sig.Reasons[0], "low confidence")
			} else {
				assert.Contains(t, sig.Reasons[0], "articles")
				assert.Contains(t, sig.Reasons[1], tt.data.Label)
			}
		})
	}
}

func TestNormalizeWeights(t *testing.T) {
	w := NormalizeWeights(dto.SignalWeights{Technical: 40, Fundamental: 35, Sentiment: 25}, false)
	assert.InDelta(t, 53.33, w.Technical, 0.01)
	assert.InDelta(t, 46.67, w.Fundamental, 0.01)
	assert.Zero(t, w.Sentiment)
	assert.InDelta(t, 100.0, w.Technical+w.Fundamental, 1e-9)

	w = NormalizeWeights(dto.SignalWeights{Technical: 40, Fundamental: 35, Sentiment: 25}, true)
	assert.InDelta(t, 40.0, w.Technical, 1e-9)
	assert.InDelta(t, 35.0, w.Fundamental, 1e-9)
	assert.InDelta(t, 25.0, w.Sentiment, 1e-9)

	w = NormalizeWeights(dto.SignalWeights{}, false)
	assert.Equal(t, 50.0, w.Technical)
	assert.Equal(t, 50.0, w.Fundamental)
}

func defaultWeights() dto.SignalWeights {
	return dto.SignalWeights{Technical: 40, Fundamental: 35, Sentiment: 25}
}

func TestCombine_BullishBuy(t *testing.T) {
	out := Combine(dto.CombineInput{
		Technical:   dto.TechnicalSignal{Action: dto.ActionBuy, Score: 80, RSI: 35, Reasons: []string{"golden cross"}},
		Fundamental: dto.FundamentalSignal{Action: dto.ActionBuy, Score: 75, Reasons: []string{"cheap"}},
		Weights:     defaultWeights(),
	})

	assert.Equal(t, dto.ActionBuy, out.Action)
	assert.Greater(t, out.TotalScore, 55.0)
	assert.False(t, out.Vetoed)
	assert.Empty(t, out.VetoReason)
	assert.Nil(t, out.Sentiment)
	assert.InDelta(t, 53.33, out.Technical.Weight, 0.01)
	assert.InDelta(t, 46.67, out.Fundamental.Weight, 0.01)
	assert.Contains(t, out.Reasons, "[Technical] golden cross")
	assert.Contains(t, out.Reasons, "[Fundamental] cheap")
}

func TestCombine_FundamentalVeto(t *testing.T) {
	out := Combine(dto.CombineInput{
		Technical:   dto.TechnicalSignal{Action: dto.ActionBuy, Score: 100, RSI: 25},
		Fundamental: dto.FundamentalSignal{Action: dto.ActionHold, Score: 20},
		Weights:     defaultWeights(),
	})

	assert.True(t, out.Vetoed)
	assert.NotEqual(t, dto.ActionBuy, out.Action)
	assert.Contains(t, out.VetoReason, "fundamentals")
}

func TestCombine_RSIVeto(t *testing.T) {
	out := Combine(dto.CombineInput{
		Technical:   dto.TechnicalSignal{Action: dto.ActionBuy, Score: 80, RSI: 80},
		Fundamental: dto.FundamentalSignal{Action: dto.ActionBuy, Score: 75},
		Weights:     defaultWeights(),
	})

	assert.True(t, out.Vetoed)
	assert.Equal(t, dto.ActionHold, out.Action)
	assert.Contains(t, out.VetoReason, "RSI")
	assert.Equal(t, 80.0, out.TechnicalRSI)
}

func TestCombine_BearishSentimentVeto(t *testing.T) {
	out := Combine(dto.CombineInput{
		Technical:          dto.TechnicalSignal{Action: dto.ActionBuy, Score: 80, RSI: 50},
		Fundamental:        dto.FundamentalSignal{Action: dto.ActionBuy, Score: 75},
		Sentiment:          &dto.SentimentSignal{Action: dto.ActionBuy, Score: 70, Label: dto.SentimentBearish, Reasons: []string{"Based on 5 articles"}},
		SentimentAvailable: true,
		Weights:            defaultWeights(),
	})

	require.NotNil(t, out.Sentiment)
	assert.InDelta(t, 25.0, out.Sentiment.Weight, 1e-9)
	assert.Equal(t, 3, out.BuyVotes)
	assert.True(t, out.Vetoed)
	assert.Contains(t, out.VetoReason, "Bearish")
	assert.Contains(t, out.Reasons, "[Sentiment] Based on 5 articles")
}

func TestCombine_SentimentIgnoredWhenUnavailable(t *testing.T) {
	out := Combine(dto.CombineInput{
		Technical:          dto.TechnicalSignal{Action: dto.ActionBuy, Score: 80, RSI: 50},
		Fundamental:        dto.FundamentalSignal{Action: dto.ActionBuy, Score: 75},
		Sentiment:          &dto.SentimentSignal{Action: dto.ActionSell, Score: 10, Label: dto.SentimentBearish},
		SentimentAvailable: false,
		Weights:            defaultWeights(),
	})

	assert.Nil(t, out.Sentiment)
	assert.Equal(t, dto.ActionBuy, out.Action)
	assert.False(t, out.Vetoed)
}

func TestCombine_Sell(t *testing.T) {
	tests := []struct {
		name        string
		technical   dto.TechnicalSignal
		fundamental dto.FundamentalSignal
	}{
		{
			name:        "low total score",
			technical:   dto.TechnicalSignal{Action: dto.ActionHold, Score: 30},
			fundamental: dto.FundamentalSignal{Action: dto.ActionHold, Score: 30},
		},
		{
			name:        "two sell votes",
			technical:   dto.TechnicalSignal{Action: dto.ActionSell, Score: 45},
			fundamental: dto.FundamentalSignal{Action: dto.ActionSell, Score: 45},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Combine(dto.CombineInput{Technical: tt.technical, Fundamental: tt.fundamental, Weights: defaultWeights()})
			assert.Equal(t, dto.ActionSell, out.Action)
			assert.False(t, out.Vetoed)
		})
	}
}

func TestCombine_HoldWithoutBuyVote(t *testing.T) {
	out := Combine(dto.CombineInput{
		Technical:   dto.TechnicalSignal{Action: dto.ActionHold, Score: 65},
		Fundamental: dto.FundamentalSignal{Action: dto.ActionHold, Score: 65},
		Weights:     defaultWeights(),
	})

	assert.Equal(t, dto.ActionHold, out.Action)
	assert.InDelta(t, 65.0, out.TotalScore, 1e-9)
}
