package backtest

import (
	"time"

	"github.com/HatimDz/crypto-sub000/internal/signal"
)

// Side of an open position. The engine is spot-only; SHORT exists only for
// the non-adaptive symmetric mode.
type Side string

const (
	SideNone  Side = "NONE"
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Config drives one backtest run.
type Config struct {
	Symbol         string            `json:"symbol"`
	InitialCapital float64           `json:"initialCapital"`
	MinConfidence  float64           `json:"minConfidence"`
	Settings       signal.Settings   `json:"settings"`
	Weights        signal.WeightMap  `json:"weights"`

	// Adaptive switches the run to the learning variant: long-only, exits
	// on SELL only, and the weight map is adjusted after every closed trade.
	Adaptive     bool    `json:"adaptive"`
	LearningRate float64 `json:"learningRate"`

	// AllowShort enables the symmetric LONG/SHORT mode. Ignored when
	// Adaptive is set.
	AllowShort bool `json:"allowShort"`

	// UseOptimalEntry substitutes the optimal-price-search target for the
	// bar close when the target sits within 0.5% of it.
	UseOptimalEntry bool `json:"useOptimalEntry"`

	// OnProgress and OnTrade, when set, are invoked synchronously from the
	// replay loop. The API layer uses them to stream progress events.
	OnProgress func(bar, total int) `json:"-"`
	OnTrade    func(Trade)          `json:"-"`
}

// exitConfidenceFloor closes a baseline long when conviction decays below
// it, even without an explicit SELL.
const exitConfidenceFloor = 35

// optimalEntryTolerance is the maximum relative distance between the bar
// close and an optimal-price target for the target to be used as the fill.
const optimalEntryTolerance = 0.005

// Position is the transient in-run state between entry and exit.
type Position struct {
	Side            Side
	EntryPrice      float64
	EntryDate       time.Time
	Quantity        float64
	EntryConfidence float64
	EntryReasoning  []string
	EntryContribs   []signal.Contribution
	EntrySnapshot   signal.Snapshot
}

// Trade is one closed round-trip, immutable once appended to the report.
type Trade struct {
	ID            string    `json:"id"`
	EntryDate     time.Time `json:"entryDate"`
	ExitDate      time.Time `json:"exitDate"`
	EntryPrice    float64   `json:"entryPrice"`
	ExitPrice     float64   `json:"exitPrice"`
	Action        Side      `json:"action"`
	Quantity      float64   `json:"quantity"`
	Profit        float64   `json:"profit"`
	ProfitPercent float64   `json:"profitPercent"`
	Confidence    float64   `json:"confidence"`
	HoldingDays   int       `json:"holdingPeriodDays"`
	Reasoning     []string  `json:"reasoning"`
}

// EquityPoint is one mark-to-market sample of the daily equity curve.
type EquityPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Report aggregates a completed run.
type Report struct {
	RunID           string           `json:"runId"`
	Symbol          string           `json:"symbol"`
	PeriodStart     time.Time        `json:"periodStart"`
	PeriodEnd       time.Time        `json:"periodEnd"`
	InitialCapital  float64          `json:"initialCapital"`
	FinalCapital    float64          `json:"finalCapital"`
	TotalReturnPct  float64          `json:"totalReturnPercent"`
	Trades          []Trade          `json:"trades"`
	WinRate         float64          `json:"winRate"`
	AvgWin          float64          `json:"avgWin"`
	AvgLoss         float64          `json:"avgLoss"`
	MaxDrawdownPct  float64          `json:"maxDrawdownPercent"`
	SharpeRatio     float64          `json:"sharpeRatio"`
	EquityCurve     []EquityPoint    `json:"dailyEquityCurve"`
	FinalWeights    signal.WeightMap `json:"finalWeights,omitempty"`
	BarsProcessed   int              `json:"barsProcessed"`
}
