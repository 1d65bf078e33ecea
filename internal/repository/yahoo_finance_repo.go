package repository

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/pkg/common"
	"golang-backtest/pkg/httpclient"
	"golang-backtest/pkg/logger"
	"golang-backtest/pkg/metrics"
	"golang-backtest/pkg/ratelimit"
	"golang-backtest/pkg/utils"
)

// yahooFinanceRepository reads daily bars from the Yahoo Finance chart API.
type yahooFinanceRepository struct {
	httpClient httpclient.HTTPClient
	cfg        *config.Config
	logger     *logger.Logger
	limiters   *ratelimit.LimiterStore
	metrics    *metrics.Recorder
}

func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger, limiters *ratelimit.LimiterStore, recorder *metrics.Recorder) BarsProvider {
	return newYahooFinanceRepository(
		httpclient.New(log, cfg.MarketData.Yahoo.BaseURL, cfg.MarketData.Yahoo.Timeout, ""),
		cfg, log, limiters, recorder,
	)
}

func newYahooFinanceRepository(client httpclient.HTTPClient, cfg *config.Config, log *logger.Logger, limiters *ratelimit.LimiterStore, recorder *metrics.Recorder) *yahooFinanceRepository {
	limiters.SetLimit(common.ProviderYahoo, ratelimit.PerMinute(cfg.MarketData.Yahoo.MaxRequestPerMinute), 1)
	return &yahooFinanceRepository{
		httpClient: client,
		cfg:        cfg,
		logger:     log,
		limiters:   limiters,
		metrics:    recorder,
	}
}

func (r *yahooFinanceRepository) Name() string {
	return common.ProviderYahoo
}

func (r *yahooFinanceRepository) GetBars(ctx context.Context, param dto.GetBarsParam) ([]dto.OHLCV, error) {
	if param.Timeframe != "" && param.Timeframe != dto.Timeframe1Day {
		return nil, fmt.Errorf("unsupported timeframe %q", param.Timeframe)
	}

	waited, err := r.limiters.Wait(ctx, common.ProviderYahoo)
	if err != nil {
		return nil, err
	}
	if waited {
		r.logger.WarnContext(ctx, "Yahoo Finance API request limit exceeded",
			logger.IntField("max_request_per_minute", r.cfg.MarketData.Yahoo.MaxRequestPerMinute),
			logger.StringField("symbol", param.Symbol),
		)
	}

	// period2 is exclusive on Yahoo's side, so ask for one extra day
	queryParams := map[string]string{
		"period1":        fmt.Sprintf("%d", utils.TruncateDay(param.StartDate).Unix()),
		"period2":        fmt.Sprintf("%d", utils.TruncateDay(param.EndDate).AddDate(0, 0, 1).Unix()),
		"interval":       dto.Timeframe1Day,
		"includePrePost": "false",
		"events":         "div,split",
	}

	headers := map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://finance.yahoo.com/",
	}

	started := time.Now()
	var yahooResp dto.YahooFinanceResponse
	resp, err := r.httpClient.Get(ctx, "/"+param.Symbol, queryParams, headers, &yahooResp)
	if err != nil {
		r.metrics.RecordProviderCall(common.ProviderYahoo, common.StatusFailed, time.Since(started).Seconds())
		return nil, fmt.Errorf("failed to fetch data from yahoo finance: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.metrics.RecordProviderCall(common.ProviderYahoo, common.StatusFailed, time.Since(started).Seconds())
		r.logger.ErrorContext(ctx, "Yahoo Finance API returned Non-OK status",
			logger.StringField("symbol", param.Symbol),
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("yahoo finance api returned status: %d", resp.StatusCode)
	}
	r.metrics.RecordProviderCall(common.ProviderYahoo, common.StatusSuccess, time.Since(started).Seconds())

	return parseYahooBars(param, &yahooResp)
}

func parseYahooBars(param dto.GetBarsParam, yahooResp *dto.YahooFinanceResponse) ([]dto.OHLCV, error) {
	if yahooResp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo finance api error: %v", yahooResp.Chart.Error)
	}
	if len(yahooResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data returned for symbol: %s", param.Symbol)
	}

	result := yahooResp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data available for symbol: %s", param.Symbol)
	}
	quote := result.Indicators.Quote[0]

	start, end := utils.TruncateDay(param.StartDate), utils.TruncateDay(param.EndDate)
	byDate := make(map[time.Time]dto.OHLCV, len(result.Timestamp))
	for i, timestamp := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			continue
		}

		// null entries decode as 0
		if quote.Open[i] == 0 || quote.High[i] == 0 || quote.Low[i] == 0 || quote.Close[i] == 0 {
			continue
		}

		day := utils.TruncateDay(time.Unix(timestamp+result.Meta.GmtOffset, 0).UTC())
		if day.Before(start) || day.After(end) {
			continue
		}
		// keep the last bar seen for a date
		byDate[day] = dto.OHLCV{
			Date:   day,
			Open:   quote.Open[i],
			High:   quote.High[i],
			Low:    quote.Low[i],
			Close:  quote.Close[i],
			Volume: quote.Volume[i],
		}
	}

	bars := make([]dto.OHLCV, 0, len(byDate))
	for _, bar := range byDate {
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}
