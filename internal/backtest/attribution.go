package backtest

import "golang-backtest/internal/dto"

type sourceAccumulator struct {
	attr             dto.SourceAttribution
	winScore, winN   float64
	lossScore, lossN float64
}

func (a *sourceAccumulator) add(action dto.SignalAction, score float64, win bool) {
	if action == dto.ActionBuy {
		a.attr.BuySignals++
		if win {
			a.attr.ProfitableBuySignals++
		}
	}
	if win {
		a.winScore += score
		a.winN++
	} else {
		a.lossScore += score
		a.lossN++
	}
}

func (a *sourceAccumulator) result() dto.SourceAttribution {
	out := a.attr
	if out.BuySignals > 0 {
		out.Accuracy = float64(out.ProfitableBuySignals) / float64(out.BuySignals) * 100
	}
	if a.winN > 0 {
		out.AvgScoreWinners = a.winScore / a.winN
	}
	if a.lossN > 0 {
		out.AvgScoreLosers = a.lossScore / a.lossN
	}
	return out
}

// CalculateAttribution credits each trade's outcome back to the technical and
// fundamental verdicts recorded at entry, and breaks trades down by exit reason.
func CalculateAttribution(trades []dto.ClosedTrade) dto.SignalAttribution {
	technical := sourceAccumulator{attr: dto.SourceAttribution{Source: dto.SourceTechnical}}
	fundamental := sourceAccumulator{attr: dto.SourceAttribution{Source: dto.SourceFundamental}}

	type exitAcc struct {
		count, wins int
		pnlPct      float64
	}
	byExit := make(map[dto.ExitReason]*exitAcc)

	for _, t := range trades {
		win := t.PnL > 0
		technical.add(t.SignalAtEntry.Technical.Action, t.SignalAtEntry.Technical.Score, win)
		fundamental.add(t.SignalAtEntry.Fundamental.Action, t.SignalAtEntry.Fundamental.Score, win)

		acc, ok := byExit[t.ExitReason]
		if !ok {
			acc = &exitAcc{}
			byExit[t.ExitReason] = acc
		}
		acc.count++
		acc.pnlPct += t.PnLPercent
		if win {
			acc.wins++
		}
	}

	out := dto.SignalAttribution{
		Technical:   technical.result(),
		Fundamental: fundamental.result(),
		ByExit:      []dto.ExitReasonStat{},
	}
	for _, reason := range dto.ExitReasons() {
		acc, ok := byExit[reason]
		if !ok {
			continue
		}
		out.ByExit = append(out.ByExit, dto.ExitReasonStat{
			Reason:        reason,
			Count:         acc.count,
			Wins:          acc.wins,
			AvgPnLPercent: acc.pnlPct / float64(acc.count),
		})
	}
	return out
}
