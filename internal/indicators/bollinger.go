package indicators

import "math"

// Bands holds the three Bollinger band levels.
type Bands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Bollinger computes SMA-period bands at numStdDev standard deviations.
// Returns the zero value when there is not enough history; a flat series
// yields zero-width bands centered on the price.
func Bollinger(values []float64, period int, numStdDev float64) Bands {
	if period <= 0 || len(values) < period {
		return Bands{}
	}
	window := values[len(values)-period:]
	middle := SMA(values, period)

	variance := 0.0
	for _, v := range window {
		diff := v - middle
		variance += diff * diff
	}
	stdDev := math.Sqrt(variance / float64(period))

	return Bands{
		Upper:  middle + numStdDev*stdDev,
		Middle: middle,
		Lower:  middle - numStdDev*stdDev,
	}
}
