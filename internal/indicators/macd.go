package indicators

// MACDResult bundles the MACD line, its signal line and the histogram.
type MACDResult struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// MACD computes EMA12 - EMA26 with a simplified signal line of 0.2 x MACD.
// The simplified signal line is intentional: downstream confidence thresholds
// were tuned against it, so it must not be replaced with a true 9-period EMA
// of the MACD line. Returns the zero value when fewer than 26 values exist.
func MACD(values []float64) MACDResult {
	if len(values) < 26 {
		return MACDResult{}
	}
	macd := EMA(values, 12) - EMA(values, 26)
	signal := 0.2 * macd
	return MACDResult{
		MACD:      macd,
		Signal:    signal,
		Histogram: macd - signal,
	}
}
