package repository

import (
	"context"
	"fmt"

	"golang-backtest/internal/model"
	"golang-backtest/pkg/utils"

	"gorm.io/gorm"
)

type BacktestRunRepository interface {
	Create(ctx context.Context, run *model.BacktestRun, opts ...utils.DBOption) error
	Get(ctx context.Context, param model.GetBacktestRunParam) ([]model.BacktestRun, error)
}

type backtestRunRepository struct {
	db *gorm.DB
}

func NewBacktestRunRepository(db *gorm.DB) BacktestRunRepository {
	return &backtestRunRepository{
		db: db,
	}
}

func (r *backtestRunRepository) Create(ctx context.Context, run *model.BacktestRun, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(run).Error
}

func (r *backtestRunRepository) Get(ctx context.Context, param model.GetBacktestRunParam) ([]model.BacktestRun, error) {
	var runs []model.BacktestRun

	opts := []utils.DBOption{utils.WithWhere("strategy_id = ?", param.StrategyID)}
	if param.Limit != nil {
		opts = append(opts, utils.WithLimit(*param.Limit))
	}

	q := utils.ApplyOptions(r.db.WithContext(ctx).Order("created_at DESC"), opts...)
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to get backtest runs: %w", err)
	}
	return runs, nil
}
