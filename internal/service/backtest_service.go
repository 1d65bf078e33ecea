package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang-backtest/config"
	"golang-backtest/internal/backtest"
	"golang-backtest/internal/dto"
	"golang-backtest/internal/repository"
	"golang-backtest/pkg/common"
	"golang-backtest/pkg/logger"
	"golang-backtest/pkg/metrics"
	"golang-backtest/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoSymbols        = errors.New("strategy has no symbols")
	ErrInvalidDateRange = errors.New("end date is before start date")
	ErrNoStrategies     = errors.New("comparison needs at least one strategy")
)

// BacktestService mendefinisikan interface untuk layanan backtesting.
type BacktestService interface {
	RunBacktest(ctx context.Context, cfg dto.StrategyConfig, start, end time.Time, onProgress dto.ProgressFunc) (*dto.BacktestOutput, error)
	RunComparison(ctx context.Context, entries []dto.ComparisonEntry, start, end time.Time, onProgress dto.ProgressFunc) ([]dto.ComparisonResult, error)
}

type backtestService struct {
	cfg            *config.Config
	log            *logger.Logger
	marketDataRepo repository.MarketDataRepository
	metrics        *metrics.Recorder
}

// NewBacktestService membuat instance baru dari backtestService.
func NewBacktestService(
	cfg *config.Config,
	log *logger.Logger,
	marketDataRepo repository.MarketDataRepository,
	recorder *metrics.Recorder,
) BacktestService {
	return &backtestService{
		cfg:            cfg,
		log:            log,
		marketDataRepo: marketDataRepo,
		metrics:        recorder,
	}
}

// marketData is the materialized input of one or more simulations. It is
// read-only once loaded.
type marketData struct {
	bars         map[string][]dto.OHLCV
	fundamentals map[string][]dto.FundamentalData
}

func (s *backtestService) RunBacktest(ctx context.Context, cfg dto.StrategyConfig, start, end time.Time, onProgress dto.ProgressFunc) (*dto.BacktestOutput, error) {
	cfg, start, end, err := prepareRun(cfg, start, end)
	if err != nil {
		s.metrics.RecordBacktest(common.BacktestKindSingle, common.StatusFailed)
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	s.log.InfoContext(ctx, "Running backtest",
		logger.StringField("strategy", cfg.Name),
		logger.IntField("symbols", len(cfg.Symbols)),
		logger.StringField("start", utils.FormatDate(start)),
		logger.StringField("end", utils.FormatDate(end)),
	)

	data, err := s.loadMarketData(ctx, cfg.Symbols, warmupStart(cfg, start, s.cfg.Backtest.WarmupDays), end, onProgress)
	if err != nil {
		s.metrics.RecordBacktest(common.BacktestKindSingle, common.StatusFailed)
		return nil, err
	}

	output := s.simulate(ctx, cfg, data, start, end, onProgress)
	s.metrics.RecordBacktest(common.BacktestKindSingle, runStatus(output))
	onProgress.Report(dto.Progress{Phase: dto.PhaseComplete, Current: 1, Total: 1})
	return output, nil
}

// RunComparison runs every entry plus a buy & hold benchmark over the union
// of their symbols. Data is fetched once and shared by all runs.
func (s *backtestService) RunComparison(ctx context.Context, entries []dto.ComparisonEntry, start, end time.Time, onProgress dto.ProgressFunc) ([]dto.ComparisonResult, error) {
	if len(entries) == 0 {
		return nil, ErrNoStrategies
	}

	configs := make([]dto.StrategyConfig, len(entries))
	var symbols []string
	for i, entry := range entries {
		cfg, s0, e0, err := prepareRun(entry.Config, start, end)
		if err != nil {
			s.metrics.RecordBacktest(common.BacktestKindComparison, common.StatusFailed)
			return nil, fmt.Errorf("strategy %q: %w", entry.Label, err)
		}
		if cfg.Name == "" {
			cfg.Name = entry.Label
		}
		configs[i] = cfg
		start, end = s0, e0
		symbols = append(symbols, cfg.Symbols...)
	}
	symbols = utils.UniqueUpper(symbols)

	labels := make([]string, 0, len(entries)+1)
	for _, entry := range entries {
		labels = append(labels, entry.Label)
	}
	configs = append(configs, buyAndHoldConfig(symbols, configs[0].InitialCapital))
	labels = append(labels, dto.BuyAndHoldLabel)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	warmup := start
	for _, cfg := range configs {
		if w := warmupStart(cfg, start, s.cfg.Backtest.WarmupDays); w.Before(warmup) {
			warmup = w
		}
	}

	s.log.InfoContext(ctx, "Running strategy comparison",
		logger.IntField("strategies", len(entries)),
		logger.IntField("symbols", len(symbols)),
		logger.StringField("start", utils.FormatDate(start)),
		logger.StringField("end", utils.FormatDate(end)),
	)

	data, err := s.loadMarketData(ctx, symbols, warmup, end, onProgress)
	if err != nil {
		s.metrics.RecordBacktest(common.BacktestKindComparison, common.StatusFailed)
		return nil, err
	}

	results := make([]dto.ComparisonResult, len(configs))
	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())
	for i := range configs {
		i := i
		g.Go(func() error {
			// cancellation is only honored between whole backtests
			if err := gctx.Err(); err != nil {
				return err
			}
			output := s.simulate(gctx, configs[i], data, start, end, nil)
			results[i] = dto.ComparisonResult{
				Label:       labels[i],
				IsBenchmark: i == len(configs)-1,
				Output:      output,
			}

			mu.Lock()
			done++
			onProgress.Report(dto.Progress{Phase: dto.PhaseSimulating, Current: done, Total: len(configs), Message: labels[i]})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.WarnContext(ctx, "Strategy comparison cancelled", logger.ErrorField(err))
		s.metrics.RecordBacktest(common.BacktestKindComparison, common.StatusFailed)
		return nil, fmt.Errorf("comparison cancelled: %w", err)
	}

	s.metrics.RecordBacktest(common.BacktestKindComparison, common.StatusSuccess)
	onProgress.Report(dto.Progress{Phase: dto.PhaseComplete, Current: len(configs), Total: len(configs)})
	return results, nil
}

// prepareRun returns a defaulted copy of cfg with normalized symbols and a
// day-truncated range.
func prepareRun(cfg dto.StrategyConfig, start, end time.Time) (dto.StrategyConfig, time.Time, time.Time, error) {
	cfg = cfg.Clone()
	if err := cfg.ApplyDefaults(); err != nil {
		return cfg, start, end, err
	}
	cfg.Symbols = utils.UniqueUpper(cfg.Symbols)
	if len(cfg.Symbols) == 0 {
		return cfg, start, end, ErrNoSymbols
	}
	start, end = utils.TruncateDay(start), utils.TruncateDay(end)
	if end.Before(start) {
		return cfg, start, end, ErrInvalidDateRange
	}
	return cfg, start, end, nil
}

// buyAndHoldConfig enters every symbol once with an equal slice of capital and
// holds it to the end of the period.
func buyAndHoldConfig(symbols []string, initialCapital float64) dto.StrategyConfig {
	cfg := dto.DefaultStrategyConfig(symbols...)
	cfg.Name = dto.BuyAndHoldLabel
	cfg.InitialCapital = initialCapital
	cfg.EntryMode = dto.EntryModeAlways
	cfg.Risk.StopLossPercent = -1
	cfg.Risk.TakeProfitPercent = -1
	cfg.Risk.MaxOpenPositions = len(symbols)
	cfg.Risk.MaxPositionSizePercent = 100 / float64(len(symbols))
	return cfg
}

// warmupStart is how far before start bars are fetched so indicators are
// primed on the first simulated day.
func warmupStart(cfg dto.StrategyConfig, start time.Time, minDays int) time.Time {
	bars := cfg.Technical.MaxLookback()
	if bars < backtest.MinHistoryBars {
		bars = backtest.MinHistoryBars
	}
	// trading days to calendar days, plus a margin for holidays
	days := int(math.Ceil(float64(bars)*365/backtest.TradingDaysPerYear)) + 7
	if minDays > days {
		days = minDays
	}
	return start.AddDate(0, 0, -days)
}

func (s *backtestService) concurrency() int {
	if s.cfg.Backtest.MaxConcurrency > 0 {
		return s.cfg.Backtest.MaxConcurrency
	}
	return 1
}

func (s *backtestService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Backtest.Timeout > 0 {
		return context.WithTimeout(ctx, s.cfg.Backtest.Timeout)
	}
	return context.WithCancel(ctx)
}

// loadMarketData fetches bars, then fundamentals, for every symbol. A symbol
// whose fetch fails is logged and left out; only cancellation is an error.
func (s *backtestService) loadMarketData(ctx context.Context, symbols []string, from, to time.Time, onProgress dto.ProgressFunc) (*marketData, error) {
	data := &marketData{
		bars:         make(map[string][]dto.OHLCV, len(symbols)),
		fundamentals: make(map[string][]dto.FundamentalData, len(symbols)),
	}

	started := time.Now()
	err := s.forEachSymbol(ctx, symbols, dto.PhaseFetchingPrices, onProgress, func(ctx context.Context, symbol string) (func(), error) {
		bars, err := s.marketDataRepo.GetBars(ctx, dto.GetBarsParam{
			Symbol:    symbol,
			StartDate: from,
			EndDate:   to,
			Timeframe: dto.Timeframe1Day,
		})
		if err != nil {
			return nil, err
		}
		return func() { data.bars[symbol] = bars }, nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordPhase(string(dto.PhaseFetchingPrices), time.Since(started).Seconds())

	started = time.Now()
	err = s.forEachSymbol(ctx, symbols, dto.PhaseFetchingFundamentals, onProgress, func(ctx context.Context, symbol string) (func(), error) {
		records, err := s.marketDataRepo.GetFundamentals(ctx, symbol)
		if err != nil {
			return nil, err
		}
		return func() { data.fundamentals[symbol] = records }, nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordPhase(string(dto.PhaseFetchingFundamentals), time.Since(started).Seconds())

	return data, nil
}

// forEachSymbol runs fetch for every symbol with bounded parallelism. The
// returned func is applied under a lock so it may write to shared maps.
func (s *backtestService) forEachSymbol(
	ctx context.Context,
	symbols []string,
	phase dto.ProgressPhase,
	onProgress dto.ProgressFunc,
	fetch func(ctx context.Context, symbol string) (func(), error),
) error {
	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	for _, symbol := range symbols {
		if !utils.ShouldContinue(gctx, s.log) {
			break
		}
		symbol := symbol
		g.Go(func() error {
			apply, err := fetch(gctx, symbol)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.log.WarnContext(ctx, "Failed to fetch market data, symbol skipped",
					logger.StringField("phase", string(phase)),
					logger.StringField("symbol", symbol),
					logger.ErrorField(err),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			if apply != nil {
				apply()
			}
			done++
			onProgress.Report(dto.Progress{Phase: phase, Current: done, Total: len(symbols), Message: symbol})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load market data: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to load market data: %w", err)
	}
	return nil
}

func (s *backtestService) simulate(ctx context.Context, cfg dto.StrategyConfig, data *marketData, start, end time.Time, onProgress dto.ProgressFunc) *dto.BacktestOutput {
	onProgress.Report(dto.Progress{Phase: dto.PhaseSimulating, Current: 0, Total: 1, Message: cfg.Name})
	started := time.Now()
	sim := backtest.Simulate(cfg, data.bars, data.fundamentals, start, end)
	s.metrics.RecordPhase(string(dto.PhaseSimulating), time.Since(started).Seconds())

	onProgress.Report(dto.Progress{Phase: dto.PhaseCalculatingMetrics, Current: 0, Total: 1, Message: cfg.Name})
	started = time.Now()
	output := &dto.BacktestOutput{
		ID:            uuid.NewString(),
		Config:        cfg,
		StartDate:     start,
		EndDate:       end,
		Metrics:       backtest.CalculateMetrics(sim.Trades, sim.EquityCurve, cfg.InitialCapital, s.cfg.Backtest.RiskFreeRate),
		Trades:        sim.Trades,
		EquityCurve:   sim.EquityCurve,
		Attribution:   backtest.CalculateAttribution(sim.Trades),
		SignalsRecord: len(sim.SignalHistory),
		Timestamp:     utils.TimeNowUTC(),
	}
	s.metrics.RecordPhase(string(dto.PhaseCalculatingMetrics), time.Since(started).Seconds())
	s.metrics.RecordTrades(len(sim.Trades))

	if output.IsEmpty() {
		s.log.WarnContext(ctx, "No trading dates in range, backtest is empty",
			logger.StringField("strategy", cfg.Name),
			logger.StringField("start", utils.FormatDate(start)),
			logger.StringField("end", utils.FormatDate(end)),
		)
		return output
	}

	s.log.InfoContext(ctx, "Backtest simulation completed",
		logger.StringField("run_id", output.ID),
		logger.StringField("strategy", cfg.Name),
		logger.IntField("total_trades", output.Metrics.TotalTrades),
		logger.Float64Field("total_return", output.Metrics.TotalReturn),
		logger.Float64Field("max_drawdown", output.Metrics.MaxDrawdown),
	)
	return output
}

func runStatus(output *dto.BacktestOutput) string {
	if output.IsEmpty() {
		return common.StatusEmpty
	}
	return common.StatusSuccess
}
