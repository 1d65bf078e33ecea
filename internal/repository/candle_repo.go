package repository

import (
	"context"
	"fmt"

	"golang-backtest/internal/dto"
	"golang-backtest/pkg/logger"
)

// candleRepository asks the configured provider first and falls back to the
// others, in order, when it fails.
type candleRepository struct {
	providers []BarsProvider
	log       *logger.Logger
}

// NewCandleRepository orders providers so that the one named primary comes first.
func NewCandleRepository(log *logger.Logger, primary string, providers ...BarsProvider) BarsProvider {
	ordered := make([]BarsProvider, 0, len(providers))
	for _, p := range providers {
		if p.Name() == primary {
			ordered = append(ordered, p)
		}
	}
	for _, p := range providers {
		if p.Name() != primary {
			ordered = append(ordered, p)
		}
	}
	return &candleRepository{providers: ordered, log: log}
}

func (r *candleRepository) Name() string {
	if len(r.providers) == 0 {
		return ""
	}
	return r.providers[0].Name()
}

func (r *candleRepository) GetBars(ctx context.Context, param dto.GetBarsParam) ([]dto.OHLCV, error) {
	if len(r.providers) == 0 {
		return nil, fmt.Errorf("no market data provider configured")
	}

	var lastErr error
	for i, p := range r.providers {
		bars, err := p.GetBars(ctx, param)
		if err == nil {
			return bars, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if i < len(r.providers)-1 {
			r.log.WarnContext(ctx, "Market data provider failed, trying next",
				logger.StringField("provider", p.Name()),
				logger.StringField("symbol", param.Symbol),
				logger.ErrorField(err),
			)
		}
	}
	return nil, fmt.Errorf("all market data providers failed for %s: %w", param.Symbol, lastErr)
}
