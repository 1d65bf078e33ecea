package signal

import (
	"fmt"
	"strings"

	"golang-backtest/internal/dto"
)

const (
	combinedBuyScore       = 55.0
	combinedSellScore      = 35.0
	vetoFundamentalScore   = 20.0
	vetoRSI                = 75.0
	combinedSellVotesLimit = 2
)

// NormalizeWeights rescales raw weights to percentages summing to 100. The
// sentiment weight is ignored (and returned as 0) when sentiment is unavailable.
// Zero raw weights fall back to an equal split.
func NormalizeWeights(w dto.SignalWeights, sentimentAvailable bool) dto.SignalWeights {
	sentiment := w.Sentiment
	if !sentimentAvailable {
		sentiment = 0
	}
	total := w.Technical + w.Fundamental + sentiment
	if total <= 0 {
		if sentimentAvailable {
			return dto.SignalWeights{Technical: 100.0 / 3, Fundamental: 100.0 / 3, Sentiment: 100.0 / 3}
		}
		return dto.SignalWeights{Technical: 50, Fundamental: 50}
	}
	return dto.SignalWeights{
		Technical:   w.Technical / total * 100,
		Fundamental: w.Fundamental / total * 100,
		Sentiment:   sentiment / total * 100,
	}
}

// Combine merges the per-source verdicts into one decision and applies vetoes
// to a tentative buy.
func Combine(in dto.CombineInput) dto.CombinedSignal {
	sentimentOn := in.SentimentAvailable && in.Sentiment != nil
	weights := NormalizeWeights(in.Weights, sentimentOn)

	result := dto.CombinedSignal{
		Technical: dto.SourceScore{
			Action: in.Technical.Action,
			Score:  in.Technical.Score,
			Weight: weights.Technical,
		},
		Fundamental: dto.SourceScore{
			Action: in.Fundamental.Action,
			Score:  in.Fundamental.Score,
			Weight: weights.Fundamental,
		},
		TechnicalRSI: in.Technical.RSI,
	}

	total := in.Technical.Score*weights.Technical/100 + in.Fundamental.Score*weights.Fundamental/100
	actions := []dto.SignalAction{in.Technical.Action, in.Fundamental.Action}
	if sentimentOn {
		result.Sentiment = &dto.SourceScore{
			Action: in.Sentiment.Action,
			Score:  in.Sentiment.Score,
			Weight: weights.Sentiment,
		}
		total += in.Sentiment.Score * weights.Sentiment / 100
		actions = append(actions, in.Sentiment.Action)
	}
	result.TotalScore = clampScore(total)

	for _, a := range actions {
		switch a {
		case dto.ActionBuy:
			result.BuyVotes++
		case dto.ActionSell:
			result.SellVotes++
		}
	}

	switch {
	case result.TotalScore >= combinedBuyScore && result.BuyVotes >= 1:
		result.Action = dto.ActionBuy
	case result.TotalScore <= combinedSellScore || result.SellVotes >= combinedSellVotesLimit:
		result.Action = dto.ActionSell
	default:
		result.Action = dto.ActionHold
	}

	result.Reasons = append(result.Reasons, tagReasons("Technical", in.Technical.Reasons)...)
	result.Reasons = append(result.Reasons, tagReasons("Fundamental", in.Fundamental.Reasons)...)
	if sentimentOn {
		result.Reasons = append(result.Reasons, tagReasons("Sentiment", in.Sentiment.Reasons)...)
	}

	if result.Action == dto.ActionBuy {
		var vetoes []string
		if in.Fundamental.Score <= vetoFundamentalScore {
			vetoes = append(vetoes, fmt.Sprintf("Weak fundamentals (score %.0f)", in.Fundamental.Score))
		}
		if in.Technical.RSI > vetoRSI {
			vetoes = append(vetoes, fmt.Sprintf("RSI %.1f too high to enter", in.Technical.RSI))
		}
		if sentimentOn && in.Sentiment.Label == dto.SentimentBearish {
			vetoes = append(vetoes, "Bearish news sentiment")
		}
		if len(vetoes) > 0 {
			result.Action = dto.ActionHold
			result.Vetoed = true
			result.VetoReason = strings.Join(vetoes, "; ")
			result.Reasons = append(result.Reasons, tagReasons("Veto", vetoes)...)
		}
	}

	result.Reasons = append(result.Reasons, fmt.Sprintf("Combined score %.1f -> %s", result.TotalScore, string(result.Action)))
	return result
}

func tagReasons(tag string, reasons []string) []string {
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, fmt.Sprintf("[%s] %s", tag, r))
	}
	return out
}
