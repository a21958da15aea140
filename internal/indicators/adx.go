package indicators

import "math"

// DirectionalIndex bundles ADX with its directional components.
type DirectionalIndex struct {
	ADX     float64 `json:"adx"`
	PlusDI  float64 `json:"plusDI"`
	MinusDI float64 `json:"minusDI"`
}

// ADX computes directional movement over the last period bars using a
// window-local approximation: true range and directional movement are summed
// inside the window only, with no Wilder running smoothing carried across
// windows. This diverges from the textbook recursion on purpose; the signal
// thresholds downstream were tuned against it. Returns the zero value when
// history is short or the true-range sum is zero.
func ADX(highs, lows, closes []float64, period int) DirectionalIndex {
	if period <= 0 || len(closes) < period+1 || len(highs) < period+1 || len(lows) < period+1 {
		return DirectionalIndex{}
	}

	trSum := 0.0
	plusDM := 0.0
	minusDM := 0.0

	for i := len(closes) - period; i < len(closes); i++ {
		upMove := highs[i] - highs[i-1]
		downMove := lows[i-1] - lows[i]
		if upMove > downMove && upMove > 0 {
			plusDM += upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM += downMove
		}

		tr := highs[i] - lows[i]
		if v := math.Abs(highs[i] - closes[i-1]); v > tr {
			tr = v
		}
		if v := math.Abs(lows[i] - closes[i-1]); v > tr {
			tr = v
		}
		trSum += tr
	}

	if trSum == 0 {
		return DirectionalIndex{}
	}

	plusDI := plusDM / trSum * 100
	minusDI := minusDM / trSum * 100

	diSum := plusDI + minusDI
	if diSum == 0 {
		return DirectionalIndex{PlusDI: plusDI, MinusDI: minusDI}
	}

	dx := math.Abs(plusDI-minusDI) / diSum * 100
	return DirectionalIndex{ADX: dx, PlusDI: plusDI, MinusDI: minusDI}
}
