package indicators

// OBV computes the cumulative On-Balance Volume series: volume is added on
// up-closes and subtracted on down-closes. The returned slice has the same
// length as the input; a flat series yields a flat OBV.
func OBV(closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out
	}
	for i := 1; i < len(closes) && i < len(volumes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// OBVTrend compares the latest OBV value to its own rolling SMA.
// Returns +1 when OBV is above its average (accumulation), -1 when below
// (distribution) and 0 when equal or history is short.
func OBVTrend(closes, volumes []float64, smaPeriod int) int {
	if smaPeriod <= 0 || len(closes) < smaPeriod+1 {
		return 0
	}
	obv := OBV(closes, volumes)
	avg := SMA(obv, smaPeriod)
	last := obv[len(obv)-1]
	switch {
	case last > avg:
		return 1
	case last < avg:
		return -1
	default:
		return 0
	}
}

// VolumeRatio divides the current volume by the trailing average volume.
// Returns the neutral 1 when history is short or the average is zero.
func VolumeRatio(volumes []float64, period int) float64 {
	if period <= 0 || len(volumes) < period+1 {
		return 1
	}
	avg := SMA(volumes[:len(volumes)-1], period)
	if avg == 0 {
		return 1
	}
	return volumes[len(volumes)-1] / avg
}
