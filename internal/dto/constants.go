package dto

type SignalAction string

const (
	ActionBuy  SignalAction = "buy"
	ActionSell SignalAction = "sell"
	ActionHold SignalAction = "hold"
)

func (a SignalAction) String() string {
	switch a {
	case ActionBuy:
		return "🟢 Buy"
	case ActionSell:
		return "🔴 Sell"
	case ActionHold:
		return "🟡 Hold"
	default:
		return "Unknown"
	}
}

type SignalSource string

const (
	SourceTechnical   SignalSource = "technical"
	SourceFundamental SignalSource = "fundamental"
	SourceSentiment   SignalSource = "sentiment"
)

type ExitReason string

const (
	ExitNone        ExitReason = ""
	ExitTakeProfit  ExitReason = "take_profit"
	ExitStopLoss    ExitReason = "stop_loss"
	ExitSignalSell  ExitReason = "signal_sell"
	ExitEndOfPeriod ExitReason = "end_of_period"
)

func ExitReasons() []ExitReason {
	return []ExitReason{ExitTakeProfit, ExitStopLoss, ExitSignalSell, ExitEndOfPeriod}
}

const (
	SideLong = "long"

	Timeframe1Day = "1d"

	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// EntryMode selects how the simulator decides to open positions.
type EntryMode string

const (
	EntryModeSignals EntryMode = "signals"
	// EntryModeAlways opens every configured symbol as soon as it has enough
	// history and never exits on a sell signal. Used by the buy & hold benchmark.
	EntryModeAlways EntryMode = "always"
)

type ProgressPhase string

const (
	PhaseFetchingPrices       ProgressPhase = "fetching_prices"
	PhaseFetchingFundamentals ProgressPhase = "fetching_fundamentals"
	PhaseSimulating           ProgressPhase = "simulating"
	PhaseCalculatingMetrics   ProgressPhase = "calculating_metrics"
	PhaseComplete             ProgressPhase = "complete"
)

const (
	BuyAndHoldLabel = "Buy & Hold"

	MarketDataProviderYahoo  = "yahoo"
	MarketDataProviderAlpaca = "alpaca"
)
