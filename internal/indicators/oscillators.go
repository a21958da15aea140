package indicators

// StochasticRSI min-max normalizes the current RSI within a rolling window of
// RSI readings. Result is in [0, 1]; the neutral 0.5 is returned when history
// is short or the RSI window is flat.
func StochasticRSI(values []float64, rsiPeriod, window int) float64 {
	if window <= 0 || len(values) < rsiPeriod+window {
		return 0.5
	}

	rsis := make([]float64, 0, window)
	for i := len(values) - window; i < len(values); i++ {
		rsis = append(rsis, RSI(values[:i+1], rsiPeriod))
	}

	lo, hi := rsis[0], rsis[0]
	for _, r := range rsis[1:] {
		if r < lo {
			lo = r
		}
		if r > hi {
			hi = r
		}
	}
	if hi == lo {
		return 0.5
	}
	return (rsis[len(rsis)-1] - lo) / (hi - lo)
}

// WilliamsR computes Williams %R over the last period bars. Range is
// [-100, 0]; the neutral -50 is returned when history is short or the
// high-low range is zero.
func WilliamsR(highs, lows, closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period || len(highs) < period || len(lows) < period {
		return -50
	}

	hh := highs[len(highs)-period]
	ll := lows[len(lows)-period]
	for i := len(highs) - period + 1; i < len(highs); i++ {
		if highs[i] > hh {
			hh = highs[i]
		}
	}
	for i := len(lows) - period + 1; i < len(lows); i++ {
		if lows[i] < ll {
			ll = lows[i]
		}
	}
	if hh == ll {
		return -50
	}
	return (hh - closes[len(closes)-1]) / (hh - ll) * -100
}

// CCI computes the Commodity Channel Index from typical-price deviation,
// scaled by the conventional 0.015 constant. Returns the neutral 0 when
// history is short or the mean deviation is zero.
func CCI(highs, lows, closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period || len(highs) < period || len(lows) < period {
		return 0
	}

	tp := make([]float64, period)
	for i := 0; i < period; i++ {
		j := len(closes) - period + i
		tp[i] = (highs[j] + lows[j] + closes[j]) / 3
	}

	mean := 0.0
	for _, v := range tp {
		mean += v
	}
	mean /= float64(period)

	meanDev := 0.0
	for _, v := range tp {
		d := v - mean
		if d < 0 {
			d = -d
		}
		meanDev += d
	}
	meanDev /= float64(period)

	if meanDev == 0 {
		return 0
	}
	return (tp[period-1] - mean) / (0.015 * meanDev)
}
