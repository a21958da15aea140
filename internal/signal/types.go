package signal

// Action is the decision emitted by the generator.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
	Hold Action = "HOLD"
)

// Indicator names. These are the keys used across Settings, WeightMap,
// Snapshot and the persisted learning state, so they are part of the
// stable contract with the presentation layer.
const (
	IndRSI           = "rsi"
	IndMACD          = "macd"
	IndBollinger     = "bollinger"
	IndStochRSI      = "stochRSI"
	IndWilliamsR     = "williamsR"
	IndCCI           = "cci"
	IndADX           = "adx"
	IndOBV           = "obv"
	IndMovingAverage = "movingAverage"
	IndEquilibrium30 = "equilibrium30"
	IndEquilibrium60 = "equilibrium60"
	IndEquilibrium90 = "equilibrium90"
	IndVolume        = "volumeAnalysis"
)

// AllIndicators lists every indicator the engine knows, in display order.
var AllIndicators = []string{
	IndRSI, IndMACD, IndBollinger, IndStochRSI, IndWilliamsR, IndCCI,
	IndADX, IndOBV, IndMovingAverage,
	IndEquilibrium30, IndEquilibrium60, IndEquilibrium90, IndVolume,
}

// Settings maps indicator name to its enabled flag. Read-only for the engine.
type Settings map[string]bool

// DefaultSettings enables the standard analysis profile.
func DefaultSettings() Settings {
	return Settings{
		IndRSI:           true,
		IndMACD:          true,
		IndBollinger:     true,
		IndStochRSI:      false,
		IndWilliamsR:     false,
		IndCCI:           false,
		IndADX:           true,
		IndOBV:           true,
		IndMovingAverage: true,
		IndEquilibrium30: false,
		IndEquilibrium60: true,
		IndEquilibrium90: false,
		IndVolume:        true,
	}
}

// Enabled returns the enabled indicator names in stable order.
func (s Settings) Enabled() []string {
	out := make([]string, 0, len(s))
	for _, name := range AllIndicators {
		if s[name] {
			out = append(out, name)
		}
	}
	return out
}

// Snapshot holds the raw indicator values computed at one decision point.
// Multi-valued indicators are flattened into separate keys (macdSignal,
// adxPlusDI, ...). Never mutated after creation.
type Snapshot map[string]float64

// Contribution is one triggered rule: an indicator voting for a direction
// with a strength in [0, 1]. The human-readable reasoning string is rendered
// from this record, never the other way around, so the weighting stage and
// the display text can never disagree.
type Contribution struct {
	Indicator string  `json:"indicator"`
	Direction Action  `json:"direction"`
	Strength  float64 `json:"strength"`
	Detail    string  `json:"detail"`
}

// Signal is one decision: action, confidence in [0, 100], the reasoning
// lines shown to the user, the structured contributions behind them and the
// raw indicator snapshot. Immutable once returned.
type Signal struct {
	Action        Action         `json:"action"`
	Confidence    float64        `json:"confidence"`
	Reasoning     []string       `json:"reasoning"`
	Contributions []Contribution `json:"contributions"`
	Indicators    Snapshot       `json:"indicatorValues"`
}
