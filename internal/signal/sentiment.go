package signal

import (
	"fmt"

	"golang-backtest/internal/dto"
)

const minSentimentArticles = 3

// Sentiment maps a news sentiment score to a verdict. It is only fed by live
// evaluation, never by the historical simulator.
func Sentiment(data *dto.SentimentData, cfg dto.SentimentConfig) dto.SentimentSignal {
	if data == nil {
		return dto.SentimentSignal{
			Action:  dto.ActionHold,
			Score:   neutralScore,
			Label:   dto.SentimentNeutral,
			Reasons: []string{"No sentiment data available - low confidence"},
		}
	}
	if data.ArticleCount < minSentimentArticles {
		return dto.SentimentSignal{
			Action:       dto.ActionHold,
			Score:        neutralScore,
			Label:        data.Label,
			ArticleCount: data.ArticleCount,
			Reasons:      []string{fmt.Sprintf("Only %d articles found - low confidence", data.ArticleCount)},
		}
	}

	result := dto.SentimentSignal{
		Score:        clampScore(data.Score),
		Label:        data.Label,
		ArticleCount: data.ArticleCount,
		Confident:    true,
		Reasons: []string{
			fmt.Sprintf("Based on %d articles", data.ArticleCount),
			fmt.Sprintf("Overall sentiment: %s (%.0f/100)", data.Label, data.Score),
		},
	}
	switch {
	case data.Score >= cfg.NewsScoreThreshold:
		result.Action = dto.ActionBuy
	case data.Score <= 100-cfg.NewsScoreThreshold:
		result.Action = dto.ActionSell
	default:
		result.Action = dto.ActionHold
	}
	return result
}
