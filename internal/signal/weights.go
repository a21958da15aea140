package signal

import "math"

// WeightMap maps indicator name to a non-negative weight. After every
// Normalize the weights sum to 1.
type WeightMap map[string]float64

// epsilonWeight is the default used when a contributing indicator is missing
// from the map, so an unknown indicator never zeroes out its vote entirely.
const epsilonWeight = 0.02

// EqualWeights builds a uniform map over the given indicator names.
func EqualWeights(names []string) WeightMap {
	w := make(WeightMap, len(names))
	if len(names) == 0 {
		return w
	}
	share := 1.0 / float64(len(names))
	for _, name := range names {
		w[name] = share
	}
	return w
}

// DefaultWeights returns equal weights over all known indicators.
func DefaultWeights() WeightMap {
	return EqualWeights(AllIndicators)
}

// Clone returns an independent copy of the map.
func (w WeightMap) Clone() WeightMap {
	out := make(WeightMap, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Of returns the weight for an indicator, falling back to a small epsilon
// when the indicator is not in the map.
func (w WeightMap) Of(indicator string) float64 {
	if v, ok := w[indicator]; ok {
		return v
	}
	return epsilonWeight
}

// Sum returns the total of all weights.
func (w WeightMap) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// Normalize scales the map in place so the weights sum to 1. Negative
// entries are clipped to zero first. An empty or all-zero map falls back to
// equal weights so the invariant holds for every non-empty input.
func (w WeightMap) Normalize() {
	total := 0.0
	for k, v := range w {
		if v < 0 {
			w[k] = 0
			v = 0
		}
		total += v
	}
	if total == 0 {
		share := 1.0 / float64(len(w))
		for k := range w {
			w[k] = share
		}
		return
	}
	for k, v := range w {
		w[k] = v / total
	}
}

// Normalized reports whether the weights sum to 1 within tolerance.
func (w WeightMap) Normalized() bool {
	return len(w) > 0 && math.Abs(w.Sum()-1) < 1e-9
}
