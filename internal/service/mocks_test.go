package service

import (
	"context"
	"time"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/internal/model"
	"golang-backtest/pkg/metrics"
	"golang-backtest/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
)

type MockMarketDataRepository struct {
	mock.Mock
}

func (m *MockMarketDataRepository) GetBars(ctx context.Context, param dto.GetBarsParam) ([]dto.OHLCV, error) {
	args := m.Called(ctx, param)
	bars, _ := args.Get(0).([]dto.OHLCV)
	return bars, args.Error(1)
}

func (m *MockMarketDataRepository) GetFundamentals(ctx context.Context, symbol string) ([]dto.FundamentalData, error) {
	args := m.Called(ctx, symbol)
	records, _ := args.Get(0).([]dto.FundamentalData)
	return records, args.Error(1)
}

func (m *MockMarketDataRepository) GetProfile(ctx context.Context, symbol string) (*dto.CompanyProfile, error) {
	args := m.Called(ctx, symbol)
	profile, _ := args.Get(0).(*dto.CompanyProfile)
	return profile, args.Error(1)
}

type MockStrategyRepository struct {
	mock.Mock
}

func (m *MockStrategyRepository) Create(ctx context.Context, strategy *model.Strategy, opts ...utils.DBOption) error {
	args := m.Called(ctx, strategy)
	return args.Error(0)
}

func (m *MockStrategyRepository) GetByID(ctx context.Context, id string) (*model.Strategy, error) {
	args := m.Called(ctx, id)
	strategy, _ := args.Get(0).(*model.Strategy)
	return strategy, args.Error(1)
}

func (m *MockStrategyRepository) Get(ctx context.Context, param model.GetStrategyParam) ([]model.Strategy, error) {
	args := m.Called(ctx, param)
	strategies, _ := args.Get(0).([]model.Strategy)
	return strategies, args.Error(1)
}

type MockBacktestRunRepository struct {
	mock.Mock
}

func (m *MockBacktestRunRepository) Create(ctx context.Context, run *model.BacktestRun, opts ...utils.DBOption) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockBacktestRunRepository) Get(ctx context.Context, param model.GetBacktestRunParam) ([]model.BacktestRun, error) {
	args := m.Called(ctx, param)
	runs, _ := args.Get(0).([]model.BacktestRun)
	return runs, args.Error(1)
}

// fakeUnitOfWork runs fn without a transaction.
type fakeUnitOfWork struct {
	calls int
}

func (u *fakeUnitOfWork) Run(_ context.Context, fn func(opts ...utils.DBOption) error) error {
	u.calls++
	return fn()
}

type MockBacktestService struct {
	mock.Mock
}

func (m *MockBacktestService) RunBacktest(ctx context.Context, cfg dto.StrategyConfig, start, end time.Time, onProgress dto.ProgressFunc) (*dto.BacktestOutput, error) {
	args := m.Called(ctx, cfg, start, end)
	output, _ := args.Get(0).(*dto.BacktestOutput)
	return output, args.Error(1)
}

func (m *MockBacktestService) RunComparison(ctx context.Context, entries []dto.ComparisonEntry, start, end time.Time, onProgress dto.ProgressFunc) ([]dto.ComparisonResult, error) {
	args := m.Called(ctx, entries, start, end)
	results, _ := args.Get(0).([]dto.ComparisonResult)
	return results, args.Error(1)
}

type MockStrategyService struct {
	mock.Mock
}

func (m *MockStrategyService) CreateStrategy(ctx context.Context, req dto.CreateStrategyRequest) (*model.Strategy, error) {
	args := m.Called(ctx, req)
	strategy, _ := args.Get(0).(*model.Strategy)
	return strategy, args.Error(1)
}

func (m *MockStrategyService) GetStrategy(ctx context.Context, id string) (*model.Strategy, error) {
	args := m.Called(ctx, id)
	strategy, _ := args.Get(0).(*model.Strategy)
	return strategy, args.Error(1)
}

func (m *MockStrategyService) ListStrategies(ctx context.Context, param model.GetStrategyParam) ([]model.Strategy, error) {
	args := m.Called(ctx, param)
	strategies, _ := args.Get(0).([]model.Strategy)
	return strategies, args.Error(1)
}

func (m *MockStrategyService) RunStrategy(ctx context.Context, id string, start, end time.Time, trigger string) (*dto.BacktestOutput, error) {
	args := m.Called(ctx, id, start, end, trigger)
	output, _ := args.Get(0).(*dto.BacktestOutput)
	return output, args.Error(1)
}

func (m *MockStrategyService) ListRuns(ctx context.Context, param model.GetBacktestRunParam) ([]model.BacktestRun, error) {
	args := m.Called(ctx, param)
	runs, _ := args.Get(0).([]model.BacktestRun)
	return runs, args.Error(1)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Backtest.MaxConcurrency = 2
	cfg.Backtest.RiskFreeRate = 0.02
	cfg.Backtest.WarmupDays = 60
	cfg.Backtest.Timeout = time.Minute
	cfg.Scheduler.Spec = "0 22 * * 1-5"
	cfg.Scheduler.LookbackDays = 90
	cfg.Scheduler.Timeout = time.Minute
	return cfg
}

func testRecorder() *metrics.Recorder {
	return metrics.NewWithRegistry(prometheus.NewRegistry())
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// risingBars returns n consecutive calendar-day bars closing at 100, 101, ...
func risingBars(from time.Time, n int) []dto.OHLCV {
	bars := make([]dto.OHLCV, n)
	for i := range bars {
		price := 100 + float64(i)
		bars[i] = dto.OHLCV{Date: from.AddDate(0, 0, i), Open: price, High: price, Low: price, Close: price, Volume: 1000}
	}
	return bars
}
