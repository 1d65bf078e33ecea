package repository

import (
	"context"
	"fmt"
	"strings"

	"golang-backtest/internal/model"
	"golang-backtest/pkg/utils"

	"gorm.io/gorm"
)

type StrategyRepository interface {
	Create(ctx context.Context, strategy *model.Strategy, opts ...utils.DBOption) error
	GetByID(ctx context.Context, id string) (*model.Strategy, error)
	Get(ctx context.Context, param model.GetStrategyParam) ([]model.Strategy, error)
}

type strategyRepository struct {
	db *gorm.DB
}

func NewStrategyRepository(db *gorm.DB) StrategyRepository {
	return &strategyRepository{
		db: db,
	}
}

func (r *strategyRepository) Create(ctx context.Context, strategy *model.Strategy, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(strategy).Error
}

func (r *strategyRepository) GetByID(ctx context.Context, id string) (*model.Strategy, error) {
	var strategy model.Strategy
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&strategy).Error; err != nil {
		return nil, err
	}
	return &strategy, nil
}

func (r *strategyRepository) Get(ctx context.Context, param model.GetStrategyParam) ([]model.Strategy, error) {
	var strategies []model.Strategy

	qFilter := []string{}
	qFilterParam := []interface{}{}

	if len(param.IDs) > 0 {
		qFilter = append(qFilter, "id IN (?)")
		qFilterParam = append(qFilterParam, param.IDs)
	}

	if param.IsActive != nil {
		qFilter = append(qFilter, "is_active = ?")
		qFilterParam = append(qFilterParam, *param.IsActive)
	}

	q := r.db.WithContext(ctx).Order("created_at DESC")
	if len(qFilter) > 0 {
		q = q.Where(strings.Join(qFilter, " AND "), qFilterParam...)
	}
	if param.Limit != nil {
		q = q.Limit(*param.Limit)
	}

	if err := q.Find(&strategies).Error; err != nil {
		return nil, fmt.Errorf("failed to get strategies: %w", err)
	}
	return strategies, nil
}
