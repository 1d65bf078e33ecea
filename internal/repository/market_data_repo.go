package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/pkg/cache"
	"golang-backtest/pkg/common"
	"golang-backtest/pkg/logger"
	"golang-backtest/pkg/metrics"
	"golang-backtest/pkg/utils"
)

// MarketDataRepository is the cache-through view over the bars and
// fundamentals providers used by the services.
type MarketDataRepository interface {
	GetBars(ctx context.Context, param dto.GetBarsParam) ([]dto.OHLCV, error)
	GetFundamentals(ctx context.Context, symbol string) ([]dto.FundamentalData, error)
	GetProfile(ctx context.Context, symbol string) (*dto.CompanyProfile, error)
}

// barsCacheEntry remembers the range that was requested, not just the bars
// returned, so holidays at the edges still count as covered.
type barsCacheEntry struct {
	Start     time.Time   `json:"start"`
	End       time.Time   `json:"end"`
	Bars      []dto.OHLCV `json:"bars"`
	FetchedAt time.Time   `json:"fetched_at"`
}

func (e *barsCacheEntry) covers(start, end time.Time) bool {
	return !e.Start.After(start) && !e.End.Before(end)
}

type marketDataRepository struct {
	cfg          *config.Config
	log          *logger.Logger
	cache        cache.Cache
	bars         BarsProvider
	fundamentals FundamentalsProvider
	metrics      *metrics.Recorder
}

func NewMarketDataRepository(
	cfg *config.Config,
	log *logger.Logger,
	c cache.Cache,
	bars BarsProvider,
	fundamentals FundamentalsProvider,
	recorder *metrics.Recorder,
) MarketDataRepository {
	return &marketDataRepository{
		cfg:          cfg,
		log:          log,
		cache:        c,
		bars:         bars,
		fundamentals: fundamentals,
		metrics:      recorder,
	}
}

func (r *marketDataRepository) GetBars(ctx context.Context, param dto.GetBarsParam) ([]dto.OHLCV, error) {
	if param.Timeframe == "" {
		param.Timeframe = dto.Timeframe1Day
	}
	if param.Timeframe != dto.Timeframe1Day {
		return nil, fmt.Errorf("unsupported timeframe %q", param.Timeframe)
	}
	param.Symbol = strings.ToUpper(param.Symbol)
	start, end := utils.TruncateDay(param.StartDate), utils.TruncateDay(param.EndDate)
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s", utils.FormatDate(end), utils.FormatDate(start))
	}

	key := fmt.Sprintf(common.KEY_BARS, r.bars.Name(), param.Symbol, param.Timeframe)
	var entry barsCacheEntry
	err := r.cache.Get(ctx, key, &entry)
	if err == nil && entry.covers(start, end) {
		r.metrics.RecordCacheLookup("bars", true)
		return sliceBars(entry.Bars, start, end), nil
	}
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		r.log.WarnContext(ctx, "Failed to read bars cache", logger.StringField("key", key), logger.ErrorField(err))
	}
	r.metrics.RecordCacheLookup("bars", false)

	// widen to the union with what is already cached so the entry keeps growing
	fetchStart, fetchEnd := start, end
	if err == nil {
		if entry.Start.Before(fetchStart) {
			fetchStart = entry.Start
		}
		if entry.End.After(fetchEnd) {
			fetchEnd = entry.End
		}
	}

	bars, err := r.bars.GetBars(ctx, dto.GetBarsParam{
		Symbol:    param.Symbol,
		StartDate: fetchStart,
		EndDate:   fetchEnd,
		Timeframe: param.Timeframe,
	})
	if err != nil {
		return nil, err
	}

	fresh := barsCacheEntry{Start: fetchStart, End: fetchEnd, Bars: bars, FetchedAt: utils.TimeNowUTC()}
	if err := r.cache.Set(ctx, key, fresh, r.cfg.Cache.BarsTTL); err != nil {
		r.log.WarnContext(ctx, "Failed to write bars cache", logger.StringField("key", key), logger.ErrorField(err))
	}

	return sliceBars(bars, start, end), nil
}

func sliceBars(bars []dto.OHLCV, start, end time.Time) []dto.OHLCV {
	out := make([]dto.OHLCV, 0, len(bars))
	for _, b := range bars {
		if b.Date.Before(start) || b.Date.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (r *marketDataRepository) GetFundamentals(ctx context.Context, symbol string) ([]dto.FundamentalData, error) {
	symbol = strings.ToUpper(symbol)
	key := fmt.Sprintf(common.KEY_FUNDAMENTALS, symbol)

	var records []dto.FundamentalData
	if err := r.cache.Get(ctx, key, &records); err == nil {
		r.metrics.RecordCacheLookup("fundamentals", true)
		return records, nil
	}
	r.metrics.RecordCacheLookup("fundamentals", false)

	records, err := r.fundamentals.FetchQuarterlyMetrics(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, records, r.cfg.Cache.FundamentalsTTL); err != nil {
		r.log.WarnContext(ctx, "Failed to write fundamentals cache", logger.StringField("key", key), logger.ErrorField(err))
	}
	return records, nil
}

func (r *marketDataRepository) GetProfile(ctx context.Context, symbol string) (*dto.CompanyProfile, error) {
	symbol = strings.ToUpper(symbol)
	key := fmt.Sprintf(common.KEY_PROFILE, symbol)

	var profile dto.CompanyProfile
	if err := r.cache.Get(ctx, key, &profile); err == nil {
		r.metrics.RecordCacheLookup("profile", true)
		return &profile, nil
	}
	r.metrics.RecordCacheLookup("profile", false)

	fetched, err := r.fundamentals.FetchProfile(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, fetched, r.cfg.Cache.FundamentalsTTL); err != nil {
		r.log.WarnContext(ctx, "Failed to write profile cache", logger.StringField("key", key), logger.ErrorField(err))
	}
	return fetched, nil
}
