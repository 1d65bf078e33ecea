package signal

import "golang-backtest/internal/dto"

// Evaluate runs every generator for one symbol and combines them. Sentiment is
// only considered when data is non-nil.
func Evaluate(closes []float64, fundamentals *dto.FundamentalData, sentiment *dto.SentimentData, cfg dto.StrategyConfig) dto.EvaluateSignalResult {
	return EvaluateIndicators(IndicatorsOf(closes, cfg.Technical), fundamentals, sentiment, cfg)
}

// EvaluateIndicators is Evaluate over indicators computed by the caller.
func EvaluateIndicators(ind Indicators, fundamentals *dto.FundamentalData, sentiment *dto.SentimentData, cfg dto.StrategyConfig) dto.EvaluateSignalResult {
	result := dto.EvaluateSignalResult{
		Technical:   TechnicalFrom(ind, cfg.Technical),
		Fundamental: Fundamental(fundamentals, cfg.Fundamental),
	}
	if sentiment != nil {
		s := Sentiment(sentiment, cfg.Sentiment)
		result.Sentiment = &s
	}
	result.Combined = Combine(dto.CombineInput{
		Technical:          result.Technical,
		Fundamental:        result.Fundamental,
		Sentiment:          result.Sentiment,
		SentimentAvailable: result.Sentiment != nil,
		Weights:            cfg.Weights,
	})
	return result
}
