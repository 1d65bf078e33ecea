package repository

import (
	"golang-backtest/config"
	"golang-backtest/pkg/cache"
	"golang-backtest/pkg/logger"
	"golang-backtest/pkg/metrics"
	"golang-backtest/pkg/ratelimit"

	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type Repository struct {
	MarketDataRepo  MarketDataRepository
	StrategyRepo    StrategyRepository
	BacktestRunRepo BacktestRunRepository
	UnitOfWork      UnitOfWork
}

// NewRepository wires the providers behind the market data cache. db may be
// nil for commands that never touch persistence (e.g. the backtest CLI).
func NewRepository(cfg *config.Config, c cache.Cache, db *gorm.DB, log *logger.Logger, recorder *metrics.Recorder) *Repository {
	limiters := ratelimit.NewLimiterStore(rate.Inf, 1)

	providers := []BarsProvider{NewYahooFinanceRepository(cfg, log, limiters, recorder)}
	if cfg.MarketData.Alpaca.APIKey != "" {
		providers = append(providers, NewAlpacaRepository(cfg, log, recorder))
	}
	bars := NewCandleRepository(log, cfg.MarketData.Provider, providers...)
	fundamentals := NewFinnhubRepository(cfg, log, limiters, recorder)

	repo := &Repository{
		MarketDataRepo: NewMarketDataRepository(cfg, log, c, bars, fundamentals, recorder),
	}
	if db != nil {
		repo.StrategyRepo = NewStrategyRepository(db)
		repo.BacktestRunRepo = NewBacktestRunRepository(db)
		repo.UnitOfWork = NewUnitOfWork(db)
	}
	return repo
}
