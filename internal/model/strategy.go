package model

import (
	"time"

	"gorm.io/datatypes"
)

// Strategy is a saved strategy configuration. Config holds dto.StrategyConfig as jsonb.
type Strategy struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Config      datatypes.JSON `gorm:"type:jsonb;not null" json:"config"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	Runs        []BacktestRun  `gorm:"foreignKey:StrategyID" json:"runs,omitempty"`
}

func (Strategy) TableName() string {
	return "strategies"
}

type GetStrategyParam struct {
	IDs      []string
	IsActive *bool
	Limit    *int
}
