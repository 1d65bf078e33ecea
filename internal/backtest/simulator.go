package backtest

import (
	"math"
	"sort"
	"time"

	"golang-backtest/internal/dto"
	"golang-backtest/internal/indicator"
	"golang-backtest/internal/signal"
	"golang-backtest/pkg/utils"
)

// MinHistoryBars is the number of bars a symbol needs before it is evaluated.
const MinHistoryBars = 20

type symbolSeries struct {
	dates  []time.Time
	closes []float64
	byDate map[time.Time]int
	funds  []dto.FundamentalData // reportDate descending

	// indicator series aligned to closes
	rsi, smaShort, smaLong, smaTrend []float64
}

func newSymbolSeries(bars []dto.OHLCV, funds []dto.FundamentalData, cfg dto.TechnicalConfig) *symbolSeries {
	sorted := append([]dto.OHLCV(nil), bars...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	s := &symbolSeries{
		dates:  make([]time.Time, 0, len(sorted)),
		closes: make([]float64, 0, len(sorted)),
		byDate: make(map[time.Time]int, len(sorted)),
	}
	for _, bar := range sorted {
		day := utils.TruncateDay(bar.Date)
		if _, dup := s.byDate[day]; dup {
			continue
		}
		s.byDate[day] = len(s.closes)
		s.dates = append(s.dates, day)
		s.closes = append(s.closes, bar.Close)
	}

	s.funds = append([]dto.FundamentalData(nil), funds...)
	sort.SliceStable(s.funds, func(i, j int) bool { return s.funds[i].ReportDate.After(s.funds[j].ReportDate) })

	s.rsi = indicator.RSISeries(s.closes, cfg.RSIPeriod)
	s.smaShort = indicator.SMASeries(s.closes, cfg.SMAShort)
	s.smaLong = indicator.SMASeries(s.closes, cfg.SMALong)
	s.smaTrend = indicator.SMASeries(s.closes, cfg.SMATrend)
	return s
}

// indicatorsAt is the technical input for the bar at idx.
func (s *symbolSeries) indicatorsAt(idx int) signal.Indicators {
	at := func(series []float64) float64 {
		if idx >= len(series) {
			return math.NaN()
		}
		return series[idx]
	}
	return signal.Indicators{
		Bars:     idx + 1,
		Price:    s.closes[idx],
		RSI:      at(s.rsi),
		SMAShort: at(s.smaShort),
		SMALong:  at(s.smaLong),
		SMATrend: at(s.smaTrend),
	}
}

func (s *symbolSeries) quote(date time.Time) (int, bool) {
	idx, ok := s.byDate[date]
	return idx, ok
}

// fundamentalAt returns the most recent record reported on or before date.
func (s *symbolSeries) fundamentalAt(date time.Time) *dto.FundamentalData {
	// funds is descending, so the first index with reportDate <= date wins.
	i := sort.Search(len(s.funds), func(i int) bool {
		return !utils.TruncateDay(s.funds[i].ReportDate).After(date)
	})
	if i == len(s.funds) {
		return nil
	}
	record := s.funds[i]
	return &record
}

// tradingDates is the sorted union of bar dates inside [start, end].
func tradingDates(series map[string]*symbolSeries, start, end time.Time) []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, s := range series {
		for _, day := range s.dates {
			if day.Before(start) || day.After(end) {
				continue
			}
			if _, ok := seen[day]; ok {
				continue
			}
			seen[day] = struct{}{}
			dates = append(dates, day)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Simulate runs cfg over the given bars and fundamentals from start to end
// (inclusive). Bars before start only feed indicator history. Every run ends
// with no open positions.
func Simulate(cfg dto.StrategyConfig, bars map[string][]dto.OHLCV, fundamentals map[string][]dto.FundamentalData, start, end time.Time) dto.SimulationResult {
	start, end = utils.TruncateDay(start), utils.TruncateDay(end)

	series := make(map[string]*symbolSeries, len(cfg.Symbols))
	for _, symbol := range cfg.Symbols {
		if _, ok := series[symbol]; ok {
			continue
		}
		series[symbol] = newSymbolSeries(bars[symbol], fundamentals[symbol], cfg.Technical)
	}

	result := dto.SimulationResult{
		Trades:        []dto.ClosedTrade{},
		EquityCurve:   []dto.PortfolioSnapshot{},
		SignalHistory: []dto.SignalHistoryEntry{},
	}
	dates := tradingDates(series, start, end)
	if len(dates) == 0 {
		return result
	}

	tracker := NewPositionTracker(cfg.InitialCapital, cfg.Risk)

	for i, date := range dates {
		prices := make(map[string]float64, len(series))
		for symbol, s := range series {
			if idx, ok := s.quote(date); ok {
				prices[symbol] = s.closes[idx]
			}
		}

		// exits run before entries; a symbol closed today is not re-entered today
		exited := make(map[string]bool)
		for _, symbol := range tracker.OpenSymbols() {
			price, ok := prices[symbol]
			if !ok {
				continue
			}
			if reason := tracker.CheckExitConditions(symbol, price); reason != dto.ExitNone {
				if _, err := tracker.ClosePosition(symbol, date, price, reason); err == nil {
					exited[symbol] = true
				}
			}
		}

		if i == len(dates)-1 {
			for _, symbol := range tracker.OpenSymbols() {
				price, ok := series[symbol].closeAsOf(date)
				if !ok {
					p, _ := tracker.Position(symbol)
					price = p.EntryPrice
				}
				_, _ = tracker.ClosePosition(symbol, date, price, dto.ExitEndOfPeriod)
			}
		} else {
			for _, symbol := range cfg.Symbols {
				s := series[symbol]
				idx, ok := s.quote(date)
				if !ok || idx+1 < MinHistoryBars {
					continue
				}

				combined := signal.EvaluateIndicators(s.indicatorsAt(idx), s.fundamentalAt(date), nil, cfg).Combined
				result.SignalHistory = append(result.SignalHistory, dto.SignalHistoryEntry{
					Date:   date,
					Symbol: symbol,
					Signal: combined,
				})

				price := s.closes[idx]
				holding := tracker.HasPosition(symbol)
				switch {
				case exited[symbol]:
				case cfg.EntryMode == dto.EntryModeAlways:
					if !holding {
						_, _ = tracker.OpenPosition(symbol, date, price, prices, combined)
					}
				case combined.Action == dto.ActionBuy && !holding:
					_, _ = tracker.OpenPosition(symbol, date, price, prices, combined)
				case combined.Action == dto.ActionSell && holding:
					_, _ = tracker.ClosePosition(symbol, date, price, dto.ExitSignalSell)
				}
			}
		}

		positionsValue := tracker.PositionsValue(prices)
		result.EquityCurve = append(result.EquityCurve, dto.PortfolioSnapshot{
			Date:              date,
			Equity:            tracker.Cash() + positionsValue,
			Cash:              tracker.Cash(),
			PositionsValue:    positionsValue,
			OpenPositionCount: tracker.OpenPositionCount(),
		})
	}

	result.Trades = tracker.Trades()
	return result
}

// closeAsOf is the close on date or the latest close before it.
func (s *symbolSeries) closeAsOf(date time.Time) (float64, bool) {
	i := sort.Search(len(s.dates), func(i int) bool { return s.dates[i].After(date) })
	if i == 0 {
		return 0, false
	}
	return s.closes[i-1], true
}
