package backtest

import (
	"math"

	"golang-backtest/internal/dto"
)

const TradingDaysPerYear = 252

// CalculateMetrics derives return and risk statistics from a finished run.
// Percentages are whole numbers. Degenerate inputs give zero values.
func CalculateMetrics(trades []dto.ClosedTrade, curve []dto.PortfolioSnapshot, initialCapital, riskFreeRate float64) dto.BacktestMetrics {
	m := dto.BacktestMetrics{
		InitialCapital: initialCapital,
		FinalEquity:    initialCapital,
		TradingDays:    len(curve),
		TotalTrades:    len(trades),
	}
	if len(curve) > 0 {
		m.FinalEquity = curve[len(curve)-1].Equity
	}

	m.TotalReturnDollar = m.FinalEquity - initialCapital
	if initialCapital > 0 {
		growth := m.FinalEquity / initialCapital
		m.TotalReturn = (growth - 1) * 100
		if m.TradingDays >= 1 {
			if growth > 0 {
				years := float64(m.TradingDays) / TradingDaysPerYear
				// very short runs can overflow; report 0 rather than +Inf
				if annualized := (math.Pow(growth, 1/years) - 1) * 100; finite(annualized) {
					m.AnnualizedReturn = annualized
				}
			} else {
				m.AnnualizedReturn = -100
			}
		}
	}

	tradeStats(&m, trades)
	m.MaxDrawdown, m.MaxDrawdownDollar = maxDrawdown(curve)
	m.SharpeRatio = sharpeRatio(curve, riskFreeRate)
	return m
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func tradeStats(m *dto.BacktestMetrics, trades []dto.ClosedTrade) {
	if len(trades) == 0 {
		return
	}

	var winPct, lossPct, holding float64
	m.BestTradePercent = math.Inf(-1)
	m.WorstTradePercent = math.Inf(1)
	for _, t := range trades {
		holding += float64(t.HoldingDays)
		m.BestTradePercent = math.Max(m.BestTradePercent, t.PnLPercent)
		m.WorstTradePercent = math.Min(m.WorstTradePercent, t.PnLPercent)

		switch {
		case t.PnL > 0:
			m.WinningTrades++
			m.GrossProfit += t.PnL
			winPct += t.PnLPercent
		case t.PnL < 0:
			m.LosingTrades++
			m.GrossLoss += -t.PnL
			lossPct += t.PnLPercent
		}
	}

	n := float64(len(trades))
	m.WinRate = float64(m.WinningTrades) / n * 100
	m.AvgHoldingDays = holding / n
	if m.WinningTrades > 0 {
		m.AvgWinPercent = winPct / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLossPercent = lossPct / float64(m.LosingTrades)
	}
	m.ProfitFactor = profitFactor(m.GrossProfit, m.GrossLoss)
}

func profitFactor(grossProfit, grossLoss float64) dto.Ratio {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return dto.Ratio(math.Inf(1))
		}
		return 0
	}
	return dto.Ratio(grossProfit / grossLoss)
}

// maxDrawdown returns the deepest decline from a running peak, as a negative
// percentage and dollar amount.
func maxDrawdown(curve []dto.PortfolioSnapshot) (float64, float64) {
	var peak, worstPct, worstDollar float64
	for i, s := range curve {
		if i == 0 || s.Equity > peak {
			peak = s.Equity
		}
		if peak <= 0 {
			continue
		}
		if dd := (s.Equity - peak) / peak * 100; dd < worstPct {
			worstPct = dd
			worstDollar = s.Equity - peak
		}
	}
	return worstPct, worstDollar
}

// sharpeRatio annualizes mean daily excess return over the population standard
// deviation of daily returns.
func sharpeRatio(curve []dto.PortfolioSnapshot, riskFreeRate float64) float64 {
	if len(curve) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (curve[i].Equity-prev)/prev)
	}
	if len(returns) == 0 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))
	std := math.Sqrt(variance)
	if std < 1e-12 {
		return 0
	}

	excess := mean - riskFreeRate/TradingDaysPerYear
	return excess / std * math.Sqrt(TradingDaysPerYear)
}
