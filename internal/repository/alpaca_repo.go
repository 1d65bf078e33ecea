package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/pkg/common"
	"golang-backtest/pkg/logger"
	"golang-backtest/pkg/metrics"
	"golang-backtest/pkg/utils"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

type alpacaBarsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

type alpacaRepository struct {
	client  alpacaBarsClient
	feed    string
	log     *logger.Logger
	metrics *metrics.Recorder
}

func NewAlpacaRepository(cfg *config.Config, log *logger.Logger, recorder *metrics.Recorder) BarsProvider {
	opts := marketdata.ClientOpts{
		APIKey:    cfg.MarketData.Alpaca.APIKey,
		APISecret: cfg.MarketData.Alpaca.APISecret,
	}
	if cfg.MarketData.Alpaca.BaseURL != "" {
		opts.BaseURL = cfg.MarketData.Alpaca.BaseURL
	}
	return &alpacaRepository{
		client:  marketdata.NewClient(opts),
		feed:    cfg.MarketData.Alpaca.Feed,
		log:     log,
		metrics: recorder,
	}
}

func (r *alpacaRepository) Name() string {
	return common.ProviderAlpaca
}

func (r *alpacaRepository) GetBars(ctx context.Context, param dto.GetBarsParam) ([]dto.OHLCV, error) {
	if param.Timeframe != "" && param.Timeframe != dto.Timeframe1Day {
		return nil, fmt.Errorf("unsupported timeframe %q", param.Timeframe)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	start := utils.TruncateDay(param.StartDate)
	end := utils.TruncateDay(param.EndDate)

	started := time.Now()
	alpacaBars, err := r.client.GetBars(strings.ToUpper(param.Symbol), marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end.AddDate(0, 0, 1),
		Feed:      marketdata.Feed(r.feed),
	})
	if err != nil {
		r.metrics.RecordProviderCall(common.ProviderAlpaca, common.StatusFailed, time.Since(started).Seconds())
		r.log.ErrorContext(ctx, "Alpaca GetBars failed",
			logger.StringField("symbol", param.Symbol),
			logger.ErrorField(err),
		)
		return nil, fmt.Errorf("alpaca GetBars %s: %w", param.Symbol, err)
	}
	r.metrics.RecordProviderCall(common.ProviderAlpaca, common.StatusSuccess, time.Since(started).Seconds())

	byDate := make(map[time.Time]dto.OHLCV, len(alpacaBars))
	for _, ab := range alpacaBars {
		day := utils.TruncateDay(ab.Timestamp)
		if day.Before(start) || day.After(end) || ab.Close <= 0 {
			continue
		}
		byDate[day] = dto.OHLCV{
			Date:   day,
			Open:   ab.Open,
			High:   ab.High,
			Low:    ab.Low,
			Close:  ab.Close,
			Volume: int64(ab.Volume),
		}
	}

	bars := make([]dto.OHLCV, 0, len(byDate))
	for _, bar := range byDate {
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}
