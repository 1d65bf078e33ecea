package dto

import (
	"encoding/json"
	"math"
	"time"
)

type Position struct {
	ID            string         `json:"id"`
	Symbol        string         `json:"symbol"`
	EntryDate     time.Time      `json:"entry_date"`
	EntryPrice    float64        `json:"entry_price"`
	Quantity      int64          `json:"quantity"`
	Side          string         `json:"side"`
	SignalAtEntry CombinedSignal `json:"signal_at_entry"`
}

// ClosedTrade is an immutable round trip.
type ClosedTrade struct {
	ID            string         `json:"id"`
	Symbol        string         `json:"symbol"`
	EntryDate     time.Time      `json:"entry_date"`
	EntryPrice    float64        `json:"entry_price"`
	ExitDate      time.Time      `json:"exit_date"`
	ExitPrice     float64        `json:"exit_price"`
	Quantity      int64          `json:"quantity"`
	PnL           float64        `json:"pnl"`
	PnLPercent    float64        `json:"pnl_percent"`
	HoldingDays   int            `json:"holding_days"`
	ExitReason    ExitReason     `json:"exit_reason"`
	SignalAtEntry CombinedSignal `json:"signal_at_entry"`
}

type PortfolioSnapshot struct {
	Date              time.Time `json:"date"`
	Equity            float64   `json:"equity"`
	Cash              float64   `json:"cash"`
	PositionsValue    float64   `json:"positions_value"`
	OpenPositionCount int       `json:"open_position_count"`
}

type SimulationResult struct {
	Trades        []ClosedTrade        `json:"trades"`
	EquityCurve   []PortfolioSnapshot  `json:"equity_curve"`
	SignalHistory []SignalHistoryEntry `json:"signal_history"`
}

// Ratio is a float that may be +Inf. It encodes as the string "Infinity" in JSON.
type Ratio float64

func (r Ratio) IsInf() bool {
	return math.IsInf(float64(r), 1)
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.IsInf() {
		return []byte(`"Infinity"`), nil
	}
	return json.Marshal(float64(r))
}

func (r *Ratio) UnmarshalJSON(data []byte) error {
	if string(data) == `"Infinity"` {
		*r = Ratio(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Ratio(v)
	return nil
}

type BacktestMetrics struct {
	InitialCapital    float64 `json:"initial_capital"`
	FinalEquity       float64 `json:"final_equity"`
	TotalReturn       float64 `json:"total_return"`
	TotalReturnDollar float64 `json:"total_return_dollar"`
	AnnualizedReturn  float64 `json:"annualized_return"`
	TradingDays       int     `json:"trading_days"`
	TotalTrades       int     `json:"total_trades"`
	WinningTrades     int     `json:"winning_trades"`
	LosingTrades      int     `json:"losing_trades"`
	WinRate           float64 `json:"win_rate"`
	AvgWinPercent     float64 `json:"avg_win_percent"`
	AvgLossPercent    float64 `json:"avg_loss_percent"`
	AvgHoldingDays    float64 `json:"avg_holding_days"`
	BestTradePercent  float64 `json:"best_trade_percent"`
	WorstTradePercent float64 `json:"worst_trade_percent"`
	GrossProfit       float64 `json:"gross_profit"`
	GrossLoss         float64 `json:"gross_loss"`
	ProfitFactor      Ratio   `json:"profit_factor"`
	MaxDrawdown       float64 `json:"max_drawdown"`
	MaxDrawdownDollar float64 `json:"max_drawdown_dollar"`
	SharpeRatio       float64 `json:"sharpe_ratio"`
}

type SourceAttribution struct {
	Source               SignalSource `json:"source"`
	BuySignals           int          `json:"buy_signals"`
	ProfitableBuySignals int          `json:"profitable_buy_signals"`
	Accuracy             float64      `json:"accuracy"`
	AvgScoreWinners      float64      `json:"avg_score_winners"`
	AvgScoreLosers       float64      `json:"avg_score_losers"`
}

type ExitReasonStat struct {
	Reason        ExitReason `json:"reason"`
	Count         int        `json:"count"`
	Wins          int        `json:"wins"`
	AvgPnLPercent float64    `json:"avg_pnl_percent"`
}

type SignalAttribution struct {
	Technical   SourceAttribution `json:"technical"`
	Fundamental SourceAttribution `json:"fundamental"`
	ByExit      []ExitReasonStat  `json:"by_exit"`
}

// BacktestOutput is the terminal artifact of one run.
type BacktestOutput struct {
	ID            string              `json:"id"`
	Config        StrategyConfig      `json:"config"`
	StartDate     time.Time           `json:"start_date"`
	EndDate       time.Time           `json:"end_date"`
	Metrics       BacktestMetrics     `json:"metrics"`
	Trades        []ClosedTrade       `json:"trades"`
	EquityCurve   []PortfolioSnapshot `json:"equity_curve"`
	Attribution   SignalAttribution   `json:"attribution"`
	SignalsRecord int                 `json:"signals_recorded"`
	Timestamp     time.Time           `json:"timestamp"`
}

func (o *BacktestOutput) IsEmpty() bool {
	return len(o.EquityCurve) == 0
}

type Progress struct {
	Phase   ProgressPhase `json:"phase"`
	Current int           `json:"current"`
	Total   int           `json:"total"`
	Message string        `json:"message,omitempty"`
}

// ProgressFunc receives advisory progress; it must not block.
type ProgressFunc func(Progress)

func (f ProgressFunc) Report(p Progress) {
	if f != nil {
		f(p)
	}
}

type ComparisonEntry struct {
	Label  string         `json:"label" validate:"required"`
	Config StrategyConfig `json:"config" validate:"required"`
}

type ComparisonResult struct {
	Label       string          `json:"label"`
	IsBenchmark bool            `json:"is_benchmark"`
	Output      *BacktestOutput `json:"output"`
}

// BacktestRequest mendefinisikan parameter untuk menjalankan sebuah backtest.
type BacktestRequest struct {
	Strategy  StrategyConfig `json:"strategy" validate:"required"`
	StartDate time.Time      `json:"start_date" validate:"required"`
	EndDate   time.Time      `json:"end_date" validate:"required,gtefield=StartDate"`
}

type ComparisonRequest struct {
	Strategies []ComparisonEntry `json:"strategies" validate:"required,min=1,dive"`
	StartDate  time.Time         `json:"start_date" validate:"required"`
	EndDate    time.Time         `json:"end_date" validate:"required,gtefield=StartDate"`
}

type SavedBacktestRequest struct {
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
}

type EvaluateSignalRequest struct {
	Symbol    string         `json:"symbol" validate:"required"`
	Strategy  StrategyConfig `json:"strategy" validate:"-"`
	Sentiment *SentimentData `json:"sentiment" validate:"omitempty"`
}

type EvaluateSignalResult struct {
	Symbol      string            `json:"symbol"`
	Date        time.Time         `json:"date"`
	Technical   TechnicalSignal   `json:"technical"`
	Fundamental FundamentalSignal `json:"fundamental"`
	Sentiment   *SentimentSignal  `json:"sentiment,omitempty"`
	Combined    CombinedSignal    `json:"combined"`
}

type CreateStrategyRequest struct {
	Name        string         `json:"name" validate:"required,max=255"`
	Description string         `json:"description"`
	IsActive    *bool          `json:"is_active"`
	Config      StrategyConfig `json:"config" validate:"required"`
}

type ListStrategiesRequest struct {
	IsActive string `query:"is_active" validate:"omitempty,oneof=true false"`
	Limit    int    `query:"limit" validate:"gte=0,lte=500"`
}

type ListRunsRequest struct {
	Limit int `query:"limit" validate:"gte=0,lte=500"`
}
