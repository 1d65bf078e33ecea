package repository

import (
	"context"

	"golang-backtest/internal/dto"
)

// BarsProvider fetches daily bars, ascending by date and unique per date.
type BarsProvider interface {
	Name() string
	GetBars(ctx context.Context, param dto.GetBarsParam) ([]dto.OHLCV, error)
}

// FundamentalsProvider fetches company data. FetchQuarterlyMetrics returns
// records sorted by ReportDate descending.
type FundamentalsProvider interface {
	FetchProfile(ctx context.Context, symbol string) (*dto.CompanyProfile, error)
	FetchQuarterlyMetrics(ctx context.Context, symbol string) ([]dto.FundamentalData, error)
}
