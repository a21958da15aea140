package indicators

// RSI computes the Relative Strength Index from average gain/loss over the
// last period changes. Returns the neutral 50 when there is not enough
// history or when the series is flat, and 100 when the average loss is zero.
func RSI(values []float64, period int) float64 {
	if period <= 0 || len(values) < period+1 {
		return 50
	}

	gain := 0.0
	loss := 0.0
	for i := len(values) - period; i < len(values); i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}

	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}

	rs := avgGain / avgLoss
	rsi := 100 - (100 / (1 + rs))
	if rsi < 0 {
		return 0
	}
	if rsi > 100 {
		return 100
	}
	return rsi
}

// RSIHistory computes the RSI at every index of the series, using the data
// up to and including that index. Entries before the warm-up window hold the
// neutral 50.
func RSIHistory(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		out[i] = RSI(values[:i+1], period)
	}
	return out
}
