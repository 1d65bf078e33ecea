package repository

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
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

// Quarterly figures become public some weeks after the quarter closes; the
// record is dated by this lag so the simulator never sees it early.
const filingLagDays = 45

type finnhubRepository struct {
	httpClient httpclient.HTTPClient
	cfg        *config.Config
	log        *logger.Logger
	limiters   *ratelimit.LimiterStore
	metrics    *metrics.Recorder
}

func NewFinnhubRepository(cfg *config.Config, log *logger.Logger, limiters *ratelimit.LimiterStore, recorder *metrics.Recorder) FundamentalsProvider {
	return newFinnhubRepository(httpclient.New(log, cfg.Finnhub.BaseURL, cfg.Finnhub.Timeout, ""), cfg, log, limiters, recorder)
}

func newFinnhubRepository(client httpclient.HTTPClient, cfg *config.Config, log *logger.Logger, limiters *ratelimit.LimiterStore, recorder *metrics.Recorder) *finnhubRepository {
	limiters.SetLimit(common.ProviderFinnhub, ratelimit.PerMinute(cfg.Finnhub.MaxRequestPerMinute), 1)
	return &finnhubRepository{
		httpClient: client,
		cfg:        cfg,
		log:        log,
		limiters:   limiters,
		metrics:    recorder,
	}
}

func (r *finnhubRepository) get(ctx context.Context, endpoint string, params map[string]string, result interface{}) error {
	if r.cfg.Finnhub.APIKey == "" {
		return fmt.Errorf("finnhub api key is not configured")
	}
	if _, err := r.limiters.Wait(ctx, common.ProviderFinnhub); err != nil {
		return err
	}
	params["token"] = r.cfg.Finnhub.APIKey

	started := time.Now()
	resp, err := r.httpClient.Get(ctx, endpoint, params, nil, result)
	if err != nil {
		r.metrics.RecordProviderCall(common.ProviderFinnhub, common.StatusFailed, time.Since(started).Seconds())
		return fmt.Errorf("failed to call finnhub %s: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		r.metrics.RecordProviderCall(common.ProviderFinnhub, common.StatusFailed, time.Since(started).Seconds())
		r.log.ErrorContext(ctx, "Finnhub API returned Non-OK status",
			logger.StringField("endpoint", endpoint),
			logger.IntField("status_code", resp.StatusCode),
		)
		return fmt.Errorf("finnhub api returned status: %d", resp.StatusCode)
	}
	r.metrics.RecordProviderCall(common.ProviderFinnhub, common.StatusSuccess, time.Since(started).Seconds())
	return nil
}

func (r *finnhubRepository) FetchProfile(ctx context.Context, symbol string) (*dto.CompanyProfile, error) {
	var resp dto.FinnhubProfileResponse
	if err := r.get(ctx, "/stock/profile2", map[string]string{"symbol": strings.ToUpper(symbol)}, &resp); err != nil {
		return nil, err
	}
	if resp.Ticker == "" {
		return nil, fmt.Errorf("no profile found for symbol: %s", symbol)
	}
	return &dto.CompanyProfile{
		Symbol:    resp.Ticker,
		Name:      resp.Name,
		Exchange:  resp.Exchange,
		Industry:  resp.FinnhubIndustry,
		Currency:  resp.Currency,
		MarketCap: resp.MarketCapitalization * 1e6,
	}, nil
}

func (r *finnhubRepository) FetchQuarterlyMetrics(ctx context.Context, symbol string) ([]dto.FundamentalData, error) {
	var resp dto.FinnhubMetricResponse
	params := map[string]string{"symbol": strings.ToUpper(symbol), "metric": "all"}
	if err := r.get(ctx, "/stock/metric", params, &resp); err != nil {
		return nil, err
	}
	return buildFundamentals(strings.ToUpper(symbol), &resp), nil
}

// buildFundamentals joins the quarterly EPS and P/E series by period. Beta,
// dividend yield and market cap are only known as of today, so they are only
// attached to the latest record.
func buildFundamentals(symbol string, resp *dto.FinnhubMetricResponse) []dto.FundamentalData {
	type quarter struct {
		eps, pe *float64
	}
	quarters := make(map[string]*quarter)
	get := func(period string) *quarter {
		q, ok := quarters[period]
		if !ok {
			q = &quarter{}
			quarters[period] = q
		}
		return q
	}
	for _, p := range resp.Series.Quarterly.EPS {
		get(p.Period).eps = utils.ToPointer(p.V)
	}
	for _, p := range resp.Series.Quarterly.PE {
		get(p.Period).pe = utils.ToPointer(p.V)
	}

	periods := make([]time.Time, 0, len(quarters))
	byPeriod := make(map[time.Time]*quarter, len(quarters))
	for raw, q := range quarters {
		period, err := utils.ParseDate(raw)
		if err != nil {
			continue
		}
		periods = append(periods, period)
		byPeriod[period] = q
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].After(periods[j]) })

	records := make([]dto.FundamentalData, 0, len(periods))
	for i, period := range periods {
		q := byPeriod[period]
		record := dto.FundamentalData{
			Symbol:     symbol,
			PERatio:    q.pe,
			EPS:        q.eps,
			ReportDate: period.AddDate(0, 0, filingLagDays),
		}
		if prev, ok := byPeriod[sameQuarterLastYear(period, periods)]; ok && q.eps != nil && prev.eps != nil && *prev.eps != 0 {
			record.EPSGrowth = utils.ToPointer((*q.eps - *prev.eps) / math.Abs(*prev.eps) * 100)
		}
		if i == 0 {
			record.Beta = resp.Metric.Beta
			record.DividendYield = resp.Metric.DividendYieldIndicatedAnnual
			if resp.Metric.MarketCapitalization != nil {
				record.MarketCap = utils.ToPointer(*resp.Metric.MarketCapitalization * 1e6)
			}
		}
		records = append(records, record)
	}
	return records
}

// sameQuarterLastYear finds the period closest to one year before period,
// within two weeks, since fiscal quarter ends drift by a few days.
func sameQuarterLastYear(period time.Time, periods []time.Time) time.Time {
	target := period.AddDate(-1, 0, 0)
	for _, p := range periods {
		if diff := p.Sub(target); diff < 14*24*time.Hour && diff > -14*24*time.Hour {
			return p
		}
	}
	return time.Time{}
}
