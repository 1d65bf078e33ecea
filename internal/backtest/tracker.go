// Package backtest holds the day-by-day portfolio simulator and everything it
// needs: position bookkeeping, performance metrics and signal attribution.
package backtest

import (
	"errors"
	"math"
	"time"

	"golang-backtest/internal/dto"
	"golang-backtest/pkg/utils"

	"github.com/google/uuid"
)

var (
	ErrPositionExists      = errors.New("position already open for symbol")
	ErrMaxPositions        = errors.New("max open positions reached")
	ErrInsufficientCapital = errors.New("insufficient capital for one share")
	ErrInvalidPrice        = errors.New("price must be positive")
	ErrNoPosition          = errors.New("no open position for symbol")
)

// PositionTracker owns cash, open positions and closed trades for one run.
// It is not safe for concurrent use.
type PositionTracker struct {
	risk      dto.RiskConfig
	cash      float64
	positions map[string]*dto.Position
	// order keeps open symbols in entry order so iteration is deterministic.
	order  []string
	trades []dto.ClosedTrade
}

func NewPositionTracker(initialCapital float64, risk dto.RiskConfig) *PositionTracker {
	return &PositionTracker{
		risk:      risk,
		cash:      initialCapital,
		positions: make(map[string]*dto.Position),
	}
}

func (t *PositionTracker) Cash() float64 {
	return t.cash
}

func (t *PositionTracker) HasPosition(symbol string) bool {
	_, ok := t.positions[symbol]
	return ok
}

// Position returns a copy of the open position for symbol.
func (t *PositionTracker) Position(symbol string) (dto.Position, bool) {
	p, ok := t.positions[symbol]
	if !ok {
		return dto.Position{}, false
	}
	return *p, true
}

func (t *PositionTracker) OpenPositionCount() int {
	return len(t.positions)
}

// OpenSymbols lists held symbols in entry order.
func (t *PositionTracker) OpenSymbols() []string {
	return append([]string(nil), t.order...)
}

// Trades returns the closed trades in closing order.
func (t *PositionTracker) Trades() []dto.ClosedTrade {
	return append([]dto.ClosedTrade(nil), t.trades...)
}

// PositionsValue marks every open position at prices[symbol], or at its entry
// price when no quote is present.
func (t *PositionTracker) PositionsValue(prices map[string]float64) float64 {
	var value float64
	for _, symbol := range t.order {
		p := t.positions[symbol]
		price, ok := prices[symbol]
		if !ok || price <= 0 {
			price = p.EntryPrice
		}
		value += price * float64(p.Quantity)
	}
	return value
}

func (t *PositionTracker) PortfolioValue(prices map[string]float64) float64 {
	return t.cash + t.PositionsValue(prices)
}

// OpenPosition buys as many whole shares as min(max position size, cash)
// allows. On error nothing changes.
func (t *PositionTracker) OpenPosition(symbol string, date time.Time, price float64, prices map[string]float64, signal dto.CombinedSignal) (*dto.Position, error) {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, ErrInvalidPrice
	}
	if t.HasPosition(symbol) {
		return nil, ErrPositionExists
	}
	if t.risk.MaxOpenPositions > 0 && len(t.positions) >= t.risk.MaxOpenPositions {
		return nil, ErrMaxPositions
	}

	budget := t.PortfolioValue(prices) * t.risk.MaxPositionSizePercent / 100
	if budget > t.cash {
		budget = t.cash
	}
	quantity := int64(math.Floor(budget / price))
	if quantity < 1 {
		return nil, ErrInsufficientCapital
	}

	position := &dto.Position{
		ID:            uuid.NewString(),
		Symbol:        symbol,
		EntryDate:     utils.TruncateDay(date),
		EntryPrice:    price,
		Quantity:      quantity,
		Side:          dto.SideLong,
		SignalAtEntry: signal,
	}
	t.cash -= price * float64(quantity)
	t.positions[symbol] = position
	t.order = append(t.order, symbol)

	result := *position
	return &result, nil
}

// ClosePosition sells the whole position and appends a ClosedTrade.
func (t *PositionTracker) ClosePosition(symbol string, date time.Time, price float64, reason dto.ExitReason) (*dto.ClosedTrade, error) {
	p, ok := t.positions[symbol]
	if !ok {
		return nil, ErrNoPosition
	}
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, ErrInvalidPrice
	}

	exitDate := utils.TruncateDay(date)
	holdingDays := utils.DaysBetween(p.EntryDate, exitDate)
	if holdingDays < 1 {
		holdingDays = 1
	}

	trade := dto.ClosedTrade{
		ID:            p.ID,
		Symbol:        symbol,
		EntryDate:     p.EntryDate,
		EntryPrice:    p.EntryPrice,
		ExitDate:      exitDate,
		ExitPrice:     price,
		Quantity:      p.Quantity,
		PnL:           (price - p.EntryPrice) * float64(p.Quantity),
		PnLPercent:    (price/p.EntryPrice - 1) * 100,
		HoldingDays:   holdingDays,
		ExitReason:    reason,
		SignalAtEntry: p.SignalAtEntry,
	}

	t.cash += price * float64(p.Quantity)
	delete(t.positions, symbol)
	for i, s := range t.order {
		if s == symbol {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	t.trades = append(t.trades, trade)

	return &trade, nil
}

// CheckExitConditions reports whether price hits the take-profit or stop-loss
// level of the open position. A threshold <= 0 disables that exit.
func (t *PositionTracker) CheckExitConditions(symbol string, price float64) dto.ExitReason {
	p, ok := t.positions[symbol]
	if !ok || price <= 0 {
		return dto.ExitNone
	}
	change := (price - p.EntryPrice) / p.EntryPrice * 100
	if t.risk.TakeProfitPercent > 0 && change >= t.risk.TakeProfitPercent {
		return dto.ExitTakeProfit
	}
	if t.risk.StopLossPercent > 0 && change <= -t.risk.StopLossPercent {
		return dto.ExitStopLoss
	}
	return dto.ExitNone
}
