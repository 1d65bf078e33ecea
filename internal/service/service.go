package service

import (
	"golang-backtest/config"
	"golang-backtest/internal/repository"
	"golang-backtest/pkg/logger"
	"golang-backtest/pkg/metrics"
)

type Service struct {
	BacktestService  BacktestService
	StrategyService  StrategyService
	SignalService    SignalService
	SchedulerService SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	recorder *metrics.Recorder,
) *Service {
	backtestService := NewBacktestService(cfg, log, repo.MarketDataRepo, recorder)
	strategyService := NewStrategyService(log, repo.StrategyRepo, repo.BacktestRunRepo, repo.UnitOfWork, backtestService)
	signalService := NewSignalService(cfg, log, repo.MarketDataRepo)
	schedulerService := NewSchedulerService(cfg, log, repo.StrategyRepo, strategyService, recorder)

	return &Service{
		BacktestService:  backtestService,
		StrategyService:  strategyService,
		SignalService:    signalService,
		SchedulerService: schedulerService,
	}
}
