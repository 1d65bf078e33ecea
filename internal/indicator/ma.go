// Package indicator holds stateless technical indicator math over close series.
package indicator

import "math"

// SMA returns the mean of the last period values, or NaN when there are fewer
// than period values.
func SMA(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return math.NaN()
	}
	var sum float64
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}

// SMASeries returns a slice aligned to prices where index i holds the mean of
// the window ending at i. Warm-up entries are NaN.
func SMASeries(prices []float64, period int) []float64 {
	if period <= 0 {
		return nil
	}
	out := make([]float64, len(prices))
	var sum float64
	for i := range prices {
		sum += prices[i]
		if i >= period {
			sum -= prices[i-period]
		}
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(period)
	}
	return out
}

// Valid reports whether v is a usable indicator value.
func Valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
