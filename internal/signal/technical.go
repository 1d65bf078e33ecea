package signal

import (
	"fmt"
	"math"

	"golang-backtest/internal/dto"
	"golang-backtest/internal/indicator"
)

const (
	mildRSIThreshold      = 45.0
	deepValueRSIThreshold = 40.0
	technicalBuyScore     = 70.0
	technicalSellScore    = 30.0
)

// Indicators are the technical inputs as of one bar. Missing values are NaN.
type Indicators struct {
	Bars     int
	Price    float64
	RSI      float64
	SMAShort float64
	SMALong  float64
	SMATrend float64
}

// IndicatorsOf computes the indicators at the last bar of closes (oldest first).
func IndicatorsOf(closes []float64, cfg dto.TechnicalConfig) Indicators {
	ind := Indicators{
		Bars:     len(closes),
		Price:    math.NaN(),
		RSI:      indicator.RSI(closes, cfg.RSIPeriod),
		SMAShort: indicator.SMA(closes, cfg.SMAShort),
		SMALong:  indicator.SMA(closes, cfg.SMALong),
		SMATrend: indicator.SMA(closes, cfg.SMATrend),
	}
	if len(closes) > 0 {
		ind.Price = closes[len(closes)-1]
	}
	return ind
}

// Technical scores a close series (oldest first) against RSI and SMA rules.
func Technical(closes []float64, cfg dto.TechnicalConfig) dto.TechnicalSignal {
	return TechnicalFrom(IndicatorsOf(closes, cfg), cfg)
}

// TechnicalFrom scores indicators that were already computed.
func TechnicalFrom(ind Indicators, cfg dto.TechnicalConfig) dto.TechnicalSignal {
	rsi, smaShort, smaLong, smaTrend := ind.RSI, ind.SMAShort, ind.SMALong, ind.SMATrend
	if !indicator.Valid(rsi) || !indicator.Valid(smaShort) || !indicator.Valid(smaLong) {
		return dto.TechnicalSignal{
			Action:  dto.ActionHold,
			Score:   neutralScore,
			Reasons: []string{fmt.Sprintf("Insufficient data for technical analysis (%d bars)", ind.Bars)},
		}
	}

	price := ind.Price
	result := dto.TechnicalSignal{
		RSI:        rsi,
		SMAShort:   smaShort,
		SMALong:    smaLong,
		Price:      price,
		Sufficient: true,
	}
	score := neutralScore

	switch {
	case rsi < cfg.RSIOversold:
		score += 20
		result.BuyVotes++
		result.Reasons = append(result.Reasons, fmt.Sprintf("RSI %.1f is oversold (< %.0f)", rsi, cfg.RSIOversold))
	case rsi > cfg.RSIOverbought:
		score -= 20
		result.SellVotes++
		result.Reasons = append(result.Reasons, fmt.Sprintf("RSI %.1f is overbought (> %.0f)", rsi, cfg.RSIOverbought))
	case rsi < mildRSIThreshold:
		score += 5
		result.Reasons = append(result.Reasons, fmt.Sprintf("RSI %.1f leaning oversold", rsi))
	default:
		result.Reasons = append(result.Reasons, fmt.Sprintf("RSI %.1f is neutral", rsi))
	}

	if smaShort > smaLong {
		score += 15
		result.BuyVotes++
		result.Reasons = append(result.Reasons, fmt.Sprintf("Golden cross: SMA%d %.2f above SMA%d %.2f", cfg.SMAShort, smaShort, cfg.SMALong, smaLong))
	} else {
		score -= 15
		result.SellVotes++
		result.Reasons = append(result.Reasons, fmt.Sprintf("Death cross: SMA%d %.2f below SMA%d %.2f", cfg.SMAShort, smaShort, cfg.SMALong, smaLong))
	}

	if price < smaLong && rsi < deepValueRSIThreshold {
		score += 10
		result.BuyVotes++
		result.Reasons = append(result.Reasons, fmt.Sprintf("Deep value: price %.2f below SMA%d with RSI under %.0f", price, cfg.SMALong, deepValueRSIThreshold))
	}

	if indicator.Valid(smaTrend) {
		result.SMATrend = smaTrend
		if price > smaTrend {
			score += 5
			result.Reasons = append(result.Reasons, fmt.Sprintf("Price above SMA%d trend", cfg.SMATrend))
		}
	}

	result.Score = clampScore(score)
	switch {
	case result.BuyVotes >= 2 || result.Score >= technicalBuyScore:
		result.Action = dto.ActionBuy
	case result.SellVotes >= 2 || result.Score <= technicalSellScore:
		result.Action = dto.ActionSell
	default:
		result.Action = dto.ActionHold
	}
	return result
}
