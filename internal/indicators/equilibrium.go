package indicators

// Equilibrium returns the mean of (open+close)/2 over the trailing days
// window, used as a value-anchor level. Returns 0 when there is not enough
// history; callers skip the value-zone rule in that case.
func Equilibrium(opens, closes []float64, days int) float64 {
	if days <= 0 || len(closes) < days || len(opens) < days {
		return 0
	}
	sum := 0.0
	for i := len(closes) - days; i < len(closes); i++ {
		sum += (opens[i] + closes[i]) / 2
	}
	return sum / float64(days)
}
