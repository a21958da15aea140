package signal

import (
	"fmt"

	"github.com/HatimDz/crypto-sub000/internal/market"
)

// Confidence tier thresholds and caps. Tuned against the simplified
// indicator math in internal/indicators; changing either side alone breaks
// the calibration.
const (
	strongThreshold   = 65
	moderateThreshold = 45
	weakThreshold     = 25

	strongCap   = 95
	moderateCap = 75
	weakCap     = 55
)

// warmUpIndex returns the first index at which decisions are allowed:
// min(20, 25% of the series length).
func warmUpIndex(total int) int {
	warm := total / 4
	if warm > 20 {
		warm = 20
	}
	return warm
}

// Generate evaluates the series at the given decision index and combines the
// enabled indicators, weighted by weights, into one Signal. Only data in
// [0, index] is consulted. The result is deterministic for identical inputs,
// which reproducible backtests depend on.
func Generate(series market.Series, index int, settings Settings, weights WeightMap) Signal {
	if index < 0 || index >= len(series) || index < warmUpIndex(len(series)) {
		return Signal{
			Action:     Hold,
			Confidence: 0,
			Reasoning:  []string{"insufficient data for analysis"},
			Indicators: Snapshot{},
		}
	}

	contribs, snap := evaluate(series[:index+1], settings)

	// Every enabled indicator participates in the denominator, so a lone
	// triggered rule cannot claim full confidence on its own.
	totalActiveWeight := 0.0
	for _, name := range settings.Enabled() {
		totalActiveWeight += weights.Of(name)
	}

	var weightedBuy, weightedSell float64
	var buyCount, sellCount int
	seen := make(map[string]bool)
	highRelSeen := false

	for _, c := range contribs {
		w := weights.Of(c.Indicator)
		if highReliability(c.Indicator) {
			w *= 1.2
			highRelSeen = true
		}
		switch {
		case c.Strength > 0.8:
			w *= 1.1
		case c.Strength < 0.4:
			w *= 0.8
		}

		seen[c.Indicator] = true
		switch c.Direction {
		case Buy:
			weightedBuy += w * c.Strength
			buyCount++
		case Sell:
			weightedSell += w * c.Strength
			sellCount++
		}
	}

	if totalActiveWeight == 0 || (buyCount == 0 && sellCount == 0) {
		return Signal{
			Action:        Hold,
			Confidence:    0,
			Reasoning:     []string{"no indicator rules triggered"},
			Contributions: contribs,
			Indicators:    snap,
		}
	}

	normalizedBuy := weightedBuy / totalActiveWeight * 100
	normalizedSell := weightedSell / totalActiveWeight * 100
	quality := qualityMultiplier(len(seen), buyCount, sellCount, highRelSeen)

	action := Hold
	raw := 0.0
	switch {
	case normalizedBuy > normalizedSell:
		action = Buy
		raw = normalizedBuy * quality
	case normalizedSell > normalizedBuy:
		action = Sell
		raw = normalizedSell * quality
	}

	confidence, tier := applyTier(raw)
	if confidence == 0 {
		action = Hold
	}

	reasoning := make([]string, 0, len(contribs)+1)
	for _, c := range contribs {
		reasoning = append(reasoning, fmt.Sprintf("%s: %s %s (strength %.0f)",
			c.Indicator, c.Direction, c.Detail, c.Strength*100))
	}
	if action == Hold {
		reasoning = append(reasoning, "signal below actionable threshold")
	} else {
		reasoning = append(reasoning, fmt.Sprintf("%s %s signal (quality x%.2f)", tier, action, quality))
	}

	return Signal{
		Action:        action,
		Confidence:    confidence,
		Reasoning:     reasoning,
		Contributions: contribs,
		Indicators:    snap,
	}
}

// qualityMultiplier rewards diversified, high-reliability agreement and
// penalizes conflicting votes. Floor 0.5.
func qualityMultiplier(distinct, buyCount, sellCount int, highRel bool) float64 {
	m := 1.0
	switch {
	case distinct >= 4:
		m += 0.3
	case distinct == 3:
		m += 0.2
	case distinct == 2:
		m += 0.1
	}
	if highRel {
		m += 0.2
	}
	if buyCount > 0 && sellCount > 0 {
		minC, maxC := buyCount, sellCount
		if minC > maxC {
			minC, maxC = maxC, minC
		}
		if float64(minC)/float64(maxC) > 0.3 {
			m -= 0.2
		}
	}
	if m < 0.5 {
		m = 0.5
	}
	return m
}

// applyTier maps the quality-adjusted raw score into the three confidence
// tiers. Below the weak threshold the signal is not actionable.
func applyTier(raw float64) (float64, string) {
	switch {
	case raw >= strongThreshold:
		if raw > strongCap {
			raw = strongCap
		}
		return raw, "strong"
	case raw >= moderateThreshold:
		if raw > moderateCap {
			raw = moderateCap
		}
		return raw, "moderate"
	case raw >= weakThreshold:
		if raw > weakCap {
			raw = weakCap
		}
		return raw, "weak"
	}
	return 0, ""
}
