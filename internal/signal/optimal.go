package signal

import "github.com/HatimDz/crypto-sub000/internal/market"

// Optimal price search parameters: 0.1% relative steps, 200 iterations per
// direction, and a strong-signal bar of 60 confidence.
const (
	optimalStepFraction  = 0.001
	optimalMaxIterations = 200
	optimalMinConfidence = 60
)

// OptimalPrices searches below the current price for the nearest level at
// which a BUY with confidence >= 60 would fire, and above it for the nearest
// SELL >= 60. Each step overwrites only the last bar's close and re-runs the
// full generator: the decision function is non-monotonic and piecewise, so a
// brute-force local search is deliberate here, not a shortcut. A side
// returns nil when no level qualifies within the iteration budget.
func OptimalPrices(series market.Series, settings Settings, weights WeightMap) (buy, sell *float64) {
	if len(series) == 0 {
		return nil, nil
	}

	current := series.Last().Close
	if current <= 0 {
		return nil, nil
	}
	step := current * optimalStepFraction
	index := len(series) - 1

	probe := make(market.Series, len(series))
	copy(probe, series)

	for i := 1; i <= optimalMaxIterations; i++ {
		candidate := current - float64(i)*step
		if candidate <= 0 {
			break
		}
		probe[index].Close = candidate
		sig := Generate(probe, index, settings, weights)
		if sig.Action == Buy && sig.Confidence >= optimalMinConfidence {
			p := candidate
			buy = &p
			break
		}
	}

	copy(probe, series)
	for i := 1; i <= optimalMaxIterations; i++ {
		candidate := current + float64(i)*step
		probe[index].Close = candidate
		sig := Generate(probe, index, settings, weights)
		if sig.Action == Sell && sig.Confidence >= optimalMinConfidence {
			p := candidate
			sell = &p
			break
		}
	}

	return buy, sell
}
