package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RunTriggerAPI       = "api"
	RunTriggerScheduler = "scheduler"
)

// BacktestRun is one persisted run of a saved strategy. Result holds
// dto.BacktestOutput as jsonb; headline metrics are denormalized for listing.
type BacktestRun struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	StrategyID  string         `gorm:"type:uuid;not null;index" json:"strategy_id"`
	StartDate   time.Time      `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time      `gorm:"type:date;not null" json:"end_date"`
	Trigger     string         `gorm:"type:varchar(20);not null" json:"trigger"`
	TotalReturn float64        `gorm:"not null" json:"total_return"`
	MaxDrawdown float64        `gorm:"not null" json:"max_drawdown"`
	SharpeRatio float64        `gorm:"not null" json:"sharpe_ratio"`
	TotalTrades int            `gorm:"not null" json:"total_trades"`
	Result      datatypes.JSON `gorm:"type:jsonb;not null" json:"result"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (BacktestRun) TableName() string {
	return "backtest_runs"
}

type GetBacktestRunParam struct {
	StrategyID string
	Limit      *int
}
