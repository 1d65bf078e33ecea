package service

import (
	"context"
	"fmt"
	"time"

	"golang-backtest/config"
	"golang-backtest/internal/model"
	"golang-backtest/internal/repository"
	"golang-backtest/pkg/common"
	"golang-backtest/pkg/logger"
	"golang-backtest/pkg/metrics"
	"golang-backtest/pkg/utils"

	"github.com/robfig/cron/v3"
)

// SchedulerService periodically re-runs every active saved strategy over a
// rolling lookback window.
type SchedulerService interface {
	Start() error
	Stop(ctx context.Context)
	Execute(ctx context.Context) error
}

type schedulerService struct {
	cfg             *config.Config
	log             *logger.Logger
	cron            *cron.Cron
	strategyRepo    repository.StrategyRepository
	strategyService StrategyService
	metrics         *metrics.Recorder
	now             func() time.Time
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	strategyRepo repository.StrategyRepository,
	strategyService StrategyService,
	recorder *metrics.Recorder,
) SchedulerService {
	return &schedulerService{
		cfg:             cfg,
		log:             log,
		cron:            cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor))),
		strategyRepo:    strategyRepo,
		strategyService: strategyService,
		metrics:         recorder,
		now:             utils.TimeNowUTC,
	}
}

func (s *schedulerService) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Scheduler.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Scheduler.Timeout)
		defer cancel()
		if err := s.Execute(ctx); err != nil {
			s.log.ErrorContext(ctx, "Scheduled backtests failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid scheduler spec %q: %w", s.cfg.Scheduler.Spec, err)
	}
	s.cron.Start()
	s.log.Info("Scheduler started", logger.StringField("spec", s.cfg.Scheduler.Spec))
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *schedulerService) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("Scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("Scheduler stop timed out, a job may still be running")
	}
}

// Execute runs every active strategy once, one after another. A failing
// strategy does not stop the others.
func (s *schedulerService) Execute(ctx context.Context) error {
	active := true
	strategies, err := s.strategyRepo.Get(ctx, model.GetStrategyParam{IsActive: &active})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to find active strategies", logger.ErrorField(err))
		return fmt.Errorf("failed to find active strategies: %w", err)
	}
	if len(strategies) == 0 {
		s.log.InfoContext(ctx, "No active strategies to run")
		return nil
	}

	end := utils.TruncateDay(s.now()).AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -s.cfg.Scheduler.LookbackDays)
	s.log.InfoContext(ctx, "Start running scheduled backtests",
		logger.IntField("strategy_count", len(strategies)),
		logger.StringField("start", utils.FormatDate(start)),
		logger.StringField("end", utils.FormatDate(end)),
	)

	failed := 0
	for i, strategy := range strategies {
		if !utils.ShouldContinue(ctx, s.log) {
			s.log.WarnContext(ctx, "Scheduled backtests cancelled", logger.ErrorField(ctx.Err()), logger.IntField("completed", i))
			return fmt.Errorf("scheduled backtests cancelled after %d of %d: %w", i, len(strategies), ctx.Err())
		}

		started := time.Now()
		_, err := s.strategyService.RunStrategy(ctx, strategy.ID, start, end, model.RunTriggerScheduler)
		if err != nil {
			failed++
			s.metrics.RecordBacktest(common.BacktestKindScheduled, common.StatusFailed)
			s.log.ErrorContext(ctx, "Scheduled backtest failed",
				logger.ErrorField(err),
				logger.StringField("strategy_id", strategy.ID),
				logger.StringField("strategy_name", strategy.Name),
			)
			continue
		}
		s.metrics.RecordBacktest(common.BacktestKindScheduled, common.StatusSuccess)
		s.log.InfoContext(ctx, "Scheduled backtest completed",
			logger.StringField("strategy_id", strategy.ID),
			logger.StringField("strategy_name", strategy.Name),
			logger.DurationField("duration", time.Since(started)),
		)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scheduled backtests failed", failed, len(strategies))
	}
	return nil
}
