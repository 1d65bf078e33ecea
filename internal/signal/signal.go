// Package signal turns indicator, fundamentals and news values into
// buy/sell/hold verdicts and merges them into one decision. Every function in
// this package is pure.
package signal

const (
	neutralScore = 50.0
	minScore     = 0.0
	maxScore     = 100.0
)

func clampScore(score float64) float64 {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
