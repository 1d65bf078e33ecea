package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-backtest/internal/dto"
	"golang-backtest/internal/model"
	"golang-backtest/internal/repository"
	"golang-backtest/pkg/logger"
	"golang-backtest/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StrategyService manages saved strategies and their persisted runs.
type StrategyService interface {
	CreateStrategy(ctx context.Context, req dto.CreateStrategyRequest) (*model.Strategy, error)
	GetStrategy(ctx context.Context, id string) (*model.Strategy, error)
	ListStrategies(ctx context.Context, param model.GetStrategyParam) ([]model.Strategy, error)
	RunStrategy(ctx context.Context, id string, start, end time.Time, trigger string) (*dto.BacktestOutput, error)
	ListRuns(ctx context.Context, param model.GetBacktestRunParam) ([]model.BacktestRun, error)
}

type strategyService struct {
	log             *logger.Logger
	strategyRepo    repository.StrategyRepository
	backtestRunRepo repository.BacktestRunRepository
	unitOfWork      repository.UnitOfWork
	backtestService BacktestService
}

func NewStrategyService(
	log *logger.Logger,
	strategyRepo repository.StrategyRepository,
	backtestRunRepo repository.BacktestRunRepository,
	unitOfWork repository.UnitOfWork,
	backtestService BacktestService,
) StrategyService {
	return &strategyService{
		log:             log,
		strategyRepo:    strategyRepo,
		backtestRunRepo: backtestRunRepo,
		unitOfWork:      unitOfWork,
		backtestService: backtestService,
	}
}

func (s *strategyService) CreateStrategy(ctx context.Context, req dto.CreateStrategyRequest) (*model.Strategy, error) {
	cfg := req.Config.Clone()
	if cfg.Name == "" {
		cfg.Name = req.Name
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	cfg.Symbols = utils.UniqueUpper(cfg.Symbols)
	if len(cfg.Symbols) == 0 {
		return nil, ErrNoSymbols
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal strategy config: %w", err)
	}

	strategy := &model.Strategy{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Config:      datatypes.JSON(raw),
		IsActive:    true,
	}
	if req.IsActive != nil {
		strategy.IsActive = *req.IsActive
	}

	if err := s.strategyRepo.Create(ctx, strategy); err != nil {
		s.log.ErrorContext(ctx, "Failed to create strategy", logger.ErrorField(err), logger.StringField("name", req.Name))
		return nil, fmt.Errorf("failed to create strategy: %w", err)
	}

	s.log.InfoContext(ctx, "Strategy created",
		logger.StringField("strategy_id", strategy.ID),
		logger.StringField("name", strategy.Name),
		logger.IntField("symbols", len(cfg.Symbols)),
	)
	return strategy, nil
}

func (s *strategyService) GetStrategy(ctx context.Context, id string) (*model.Strategy, error) {
	return s.strategyRepo.GetByID(ctx, id)
}

func (s *strategyService) ListStrategies(ctx context.Context, param model.GetStrategyParam) ([]model.Strategy, error) {
	return s.strategyRepo.Get(ctx, param)
}

func (s *strategyService) ListRuns(ctx context.Context, param model.GetBacktestRunParam) ([]model.BacktestRun, error) {
	return s.backtestRunRepo.Get(ctx, param)
}

// RunStrategy backtests a saved strategy and stores the result. Empty runs
// are returned but not stored.
func (s *strategyService) RunStrategy(ctx context.Context, id string, start, end time.Time, trigger string) (*dto.BacktestOutput, error) {
	strategy, err := s.strategyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var cfg dto.StrategyConfig
	if err := json.Unmarshal(strategy.Config, &cfg); err != nil {
		s.log.ErrorContext(ctx, "Saved strategy config is invalid", logger.ErrorField(err), logger.StringField("strategy_id", id))
		return nil, fmt.Errorf("failed to unmarshal strategy config: %w", err)
	}
	if cfg.Name == "" {
		cfg.Name = strategy.Name
	}

	output, err := s.backtestService.RunBacktest(ctx, cfg, start, end, nil)
	if err != nil {
		return nil, err
	}
	if output.IsEmpty() {
		return output, nil
	}

	result, err := json.Marshal(output)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backtest output: %w", err)
	}

	run := &model.BacktestRun{
		ID:          output.ID,
		StrategyID:  strategy.ID,
		StartDate:   output.StartDate,
		EndDate:     output.EndDate,
		Trigger:     trigger,
		TotalReturn: output.Metrics.TotalReturn,
		MaxDrawdown: output.Metrics.MaxDrawdown,
		SharpeRatio: output.Metrics.SharpeRatio,
		TotalTrades: output.Metrics.TotalTrades,
		Result:      datatypes.JSON(result),
	}

	err = s.unitOfWork.Run(ctx, func(opts ...utils.DBOption) error {
		return s.backtestRunRepo.Create(ctx, run, opts...)
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to save backtest run", logger.ErrorField(err), logger.StringField("strategy_id", id))
		return nil, fmt.Errorf("failed to save backtest run: %w", err)
	}

	s.log.InfoContext(ctx, "Backtest run saved",
		logger.StringField("strategy_id", id),
		logger.StringField("run_id", run.ID),
		logger.StringField("trigger", trigger),
	)
	return output, nil
}
