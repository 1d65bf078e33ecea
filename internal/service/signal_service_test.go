package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-backtest/internal/dto"
	"golang-backtest/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestSignalService(repo *MockMarketDataRepository, now time.Time) *signalService {
	svc := NewSignalService(testConfig(), logger.NewNop(), repo).(*signalService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestSignalService_Evaluate(t *testing.T) {
	repo := &MockMarketDataRepository{}
	now := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	svc := newTestSignalService(repo, now)

	bars := risingBars(day(2024, 1, 1), 61)
	repo.On("GetBars", mock.Anything, mock.MatchedBy(func(p dto.GetBarsParam) bool {
		return p.Symbol == "AAPL" && p.EndDate.Equal(day(2024, 3, 1))
	})).Return(bars, nil)

	pe, eps := 18.0, 2.0
	repo.On("GetFundamentals", mock.Anything, "AAPL").Return([]dto.FundamentalData{
		{Symbol: "AAPL", PERatio: &pe, EPS: &eps, ReportDate: day(2024, 5, 15)},
		{Symbol: "AAPL", PERatio: &pe, EPS: &eps, ReportDate: day(2024, 2, 14)},
	}, nil)

	sentiment := &dto.SentimentData{Score: 80, RawScore: 0.6, Label: dto.SentimentBullish, ArticleCount: 10}
	result, err := svc.Evaluate(context.Background(), dto.EvaluateSignalRequest{
		Symbol:    "aapl",
		Sentiment: sentiment,
	})
	require.NoError(t, err)
	// the caller's sentiment is left as it was
	assert.Empty(t, sentiment.Symbol)

	assert.Equal(t, "AAPL", result.Symbol)
	assert.Equal(t, day(2024, 3, 1), result.Date)
	require.NotNil(t, result.Fundamental.ReportDate)
	assert.Equal(t, day(2024, 2, 14), *result.Fundamental.ReportDate)
	require.NotNil(t, result.Sentiment)
	require.NotNil(t, result.Combined.Sentiment)
	assert.Equal(t, 100.0, result.Technical.RSI)
}

func TestSignalService_EvaluateWithoutFundamentals(t *testing.T) {
	repo := &MockMarketDataRepository{}
	svc := newTestSignalService(repo, day(2024, 3, 1))

	repo.On("GetBars", mock.Anything, mock.Anything).Return(risingBars(day(2024, 1, 1), 61), nil)
	repo.On("GetFundamentals", mock.Anything, "MSFT").Return(nil, errors.New("finnhub api key is not configured"))

	result, err := svc.Evaluate(context.Background(), dto.EvaluateSignalRequest{Symbol: "MSFT"})
	require.NoError(t, err)
	assert.False(t, result.Fundamental.HasData)
	assert.Nil(t, result.Sentiment)
	assert.Nil(t, result.Combined.Sentiment)
}

func TestSignalService_EvaluateErrors(t *testing.T) {
	tests := []struct {
		name  string
		req   dto.EvaluateSignalRequest
		setup func(repo *MockMarketDataRepository)
	}{
		{name: "blank symbol", req: dto.EvaluateSignalRequest{Symbol: "  "}, setup: func(*MockMarketDataRepository) {}},
		{
			name: "bars error",
			req:  dto.EvaluateSignalRequest{Symbol: "AAPL"},
			setup: func(repo *MockMarketDataRepository) {
				repo.On("GetBars", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
			},
		},
		{
			name: "no bars",
			req:  dto.EvaluateSignalRequest{Symbol: "AAPL"},
			setup: func(repo *MockMarketDataRepository) {
				repo.On("GetBars", mock.Anything, mock.Anything).Return([]dto.OHLCV{}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockMarketDataRepository{}
			tt.setup(repo)
			svc := newTestSignalService(repo, day(2024, 3, 1))

			_, err := svc.Evaluate(context.Background(), tt.req)
			assert.Error(t, err)
			repo.AssertNotCalled(t, "GetFundamentals", mock.Anything, mock.Anything)
		})
	}
}
