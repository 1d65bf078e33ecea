package indicator

import "math"

const DefaultRSIPeriod = 14

// RSI computes Wilder's relative strength index of the whole series. It needs
// period+1 prices and returns NaN otherwise.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return math.NaN()
	}
	series := RSISeries(prices, period)
	return series[len(series)-1]
}

// RSISeries returns one RSI per index aligned to prices. Indexes below period
// are NaN. Averages are carried forward with Wilder smoothing, so the whole
// series costs O(n).
func RSISeries(prices []float64, period int) []float64 {
	if period <= 0 {
		return nil
	}
	out := make([]float64, len(prices))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(prices) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiFromAverages(avgGain, avgLoss)

	p := float64(period)
	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
