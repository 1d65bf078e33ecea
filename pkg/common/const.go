package common

// Cache keys
const (
	KEY_BARS         = "bars:%s:%s:%s" // provider, symbol, timeframe
	KEY_FUNDAMENTALS = "fundamentals:%s"
	KEY_PROFILE      = "profile:%s"
)

const (
	BacktestKindSingle     = "single"
	BacktestKindComparison = "comparison"
	BacktestKindScheduled  = "scheduled"

	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusEmpty   = "empty"
)

const (
	ProviderYahoo   = "yahoo"
	ProviderAlpaca  = "alpaca"
	ProviderFinnhub = "finnhub"
)
