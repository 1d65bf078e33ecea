package signal

import (
	"fmt"

	"golang-backtest/internal/dto"
)

const (
	fundamentalBaseScore = 30.0
	fundamentalBuyScore  = 50.0
	fundamentalSellScore = 25.0
)

// Fundamental scores the fundamentals record in effect. A nil record is neutral.
func Fundamental(data *dto.FundamentalData, cfg dto.FundamentalConfig) dto.FundamentalSignal {
	if data == nil {
		return dto.FundamentalSignal{
			Action:  dto.ActionHold,
			Score:   neutralScore,
			Reasons: []string{"No fundamental data available"},
		}
	}

	reportDate := data.ReportDate
	result := dto.FundamentalSignal{
		HasData:    true,
		EPS:        data.EPS,
		ReportDate: &reportDate,
	}
	score := fundamentalBaseScore

	if data.PERatio != nil {
		pe := *data.PERatio
		switch {
		case pe < 0:
			score -= 10
			result.Reasons = append(result.Reasons, fmt.Sprintf("Negative P/E %.1f", pe))
		case pe >= cfg.PEMin && pe <= cfg.PEMax:
			score += 20
			result.PEFavored = true
			result.Reasons = append(result.Reasons, fmt.Sprintf("P/E %.1f within %.0f-%.0f", pe, cfg.PEMin, cfg.PEMax))
		case pe > cfg.PEMax:
			score -= 5
			result.Reasons = append(result.Reasons, fmt.Sprintf("P/E %.1f above %.0f", pe, cfg.PEMax))
		case pe > 0:
			score -= 5
			result.Reasons = append(result.Reasons, fmt.Sprintf("P/E %.1f below %.0f", pe, cfg.PEMin))
		}
	}

	if data.EPS != nil {
		if *data.EPS > 0 {
			score += 15
			result.Reasons = append(result.Reasons, fmt.Sprintf("Positive EPS %.2f", *data.EPS))
		} else {
			score -= 10
			result.Reasons = append(result.Reasons, fmt.Sprintf("Non-positive EPS %.2f", *data.EPS))
		}
	}

	if data.EPSGrowth != nil {
		if *data.EPSGrowth >= cfg.EPSGrowthMin {
			score += 15
			result.Reasons = append(result.Reasons, fmt.Sprintf("EPS growth %.1f%% meets %.1f%%", *data.EPSGrowth, cfg.EPSGrowthMin))
		} else {
			score -= 5
			result.Reasons = append(result.Reasons, fmt.Sprintf("EPS growth %.1f%% below %.1f%%", *data.EPSGrowth, cfg.EPSGrowthMin))
		}
	}

	if data.Beta != nil {
		beta := *data.Beta
		if beta > 0 && beta <= cfg.BetaMax {
			score += 10
			result.Reasons = append(result.Reasons, fmt.Sprintf("Beta %.2f within risk limit", beta))
		} else if beta > cfg.BetaMax {
			score -= 5
			result.Reasons = append(result.Reasons, fmt.Sprintf("Beta %.2f above %.2f", beta, cfg.BetaMax))
		}
	}

	if data.DividendYield != nil && *data.DividendYield >= cfg.DividendYieldMin {
		score += 5
		result.Reasons = append(result.Reasons, fmt.Sprintf("Dividend yield %.2f%%", *data.DividendYield))
	}

	if data.MarketCap != nil && *data.MarketCap >= cfg.MarketCapMin {
		score += 5
		result.Reasons = append(result.Reasons, "Market cap above minimum")
	}

	result.Score = clampScore(score)
	epsPositive := data.EPS != nil && *data.EPS > 0
	switch {
	case result.Score >= fundamentalBuyScore && epsPositive && result.PEFavored:
		result.Action = dto.ActionBuy
	case result.Score <= fundamentalSellScore:
		result.Action = dto.ActionSell
	default:
		result.Action = dto.ActionHold
	}
	return result
}
