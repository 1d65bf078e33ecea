package service

import (
	"context"
	"fmt"
	"time"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/internal/repository"
	"golang-backtest/internal/signal"
	"golang-backtest/pkg/logger"
	"golang-backtest/pkg/utils"
)

// SignalService evaluates the current signal for a single symbol. It is the
// only path that accepts sentiment data.
type SignalService interface {
	Evaluate(ctx context.Context, req dto.EvaluateSignalRequest) (*dto.EvaluateSignalResult, error)
}

type signalService struct {
	cfg            *config.Config
	log            *logger.Logger
	marketDataRepo repository.MarketDataRepository
	now            func() time.Time
}

func NewSignalService(cfg *config.Config, log *logger.Logger, marketDataRepo repository.MarketDataRepository) SignalService {
	return &signalService{
		cfg:            cfg,
		log:            log,
		marketDataRepo: marketDataRepo,
		now:            utils.TimeNowUTC,
	}
}

func (s *signalService) Evaluate(ctx context.Context, req dto.EvaluateSignalRequest) (*dto.EvaluateSignalResult, error) {
	cfg := req.Strategy.Clone()
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	symbols := utils.UniqueUpper([]string{req.Symbol})
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}
	symbol := symbols[0]
	cfg.Symbols = symbols

	today := utils.TruncateDay(s.now())
	bars, err := s.marketDataRepo.GetBars(ctx, dto.GetBarsParam{
		Symbol:    symbol,
		StartDate: warmupStart(cfg, today, s.cfg.Backtest.WarmupDays),
		EndDate:   today,
		Timeframe: dto.Timeframe1Day,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch bars for signal", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return nil, fmt.Errorf("failed to fetch bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no price data for %s", symbol)
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	var current *dto.FundamentalData
	records, err := s.marketDataRepo.GetFundamentals(ctx, symbol)
	if err != nil {
		s.log.WarnContext(ctx, "Fundamentals unavailable, evaluating without them", logger.ErrorField(err), logger.StringField("symbol", symbol))
	}
	for i := range records {
		// records are newest first
		if !records[i].ReportDate.After(today) {
			current = &records[i]
			break
		}
	}

	var sentiment *dto.SentimentData
	if req.Sentiment != nil {
		copied := *req.Sentiment
		sentiment = &copied
		if sentiment.Symbol == "" {
			sentiment.Symbol = symbol
		}
	}

	result := signal.Evaluate(closes, current, sentiment, cfg)
	result.Symbol = symbol
	result.Date = bars[len(bars)-1].Date

	s.log.DebugContext(ctx, "Signal evaluated",
		logger.StringField("symbol", symbol),
		logger.StringField("action", string(result.Combined.Action)),
		logger.Float64Field("score", result.Combined.TotalScore),
	)
	return &result, nil
}
