package learning

import "github.com/HatimDz/crypto-sub000/internal/signal"

// inLoopWeightFloor keeps every weight alive so a losing streak can never
// silence an indicator permanently.
const inLoopWeightFloor = 0.01

// AdjustInLoop is the in-backtest weight update: after a closed trade, each
// indicator that voted BUY at entry gets learningRate x profitPercent/100
// added to its weight, clipped to a small floor, and the map is renormalized.
// Weights therefore depend on the order trades close in; that path
// dependence is the point of the online update, not an accident.
func AdjustInLoop(weights signal.WeightMap, entryContributions []signal.Contribution, profitPercent, learningRate float64) signal.WeightMap {
	next := weights.Clone()
	adjustment := learningRate * (profitPercent / 100)

	applied := make(map[string]bool)
	for _, c := range entryContributions {
		if c.Direction != signal.Buy || applied[c.Indicator] {
			continue
		}
		applied[c.Indicator] = true
		next[c.Indicator] = next.Of(c.Indicator) + adjustment
	}

	for k, v := range next {
		if v < inLoopWeightFloor {
			next[k] = inLoopWeightFloor
		}
	}
	next.Normalize()
	return next
}
