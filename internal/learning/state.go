package learning

import (
	"time"

	"github.com/HatimDz/crypto-sub000/internal/signal"
)

// recentOutcomeLimit bounds the per-indicator ring buffer of signed
// contribution outcomes.
const recentOutcomeLimit = 10

// snapshotTradeLimit bounds the trade history exported in a Snapshot.
const snapshotTradeLimit = 50

// IndicatorStats tracks how one indicator has performed across real trades.
type IndicatorStats struct {
	Trades      int       `json:"trades"`
	Wins        int       `json:"wins"`
	TotalProfit float64   `json:"totalProfit"`
	WinRate     float64   `json:"winRate"`
	Reliability float64   `json:"reliability"`
	Recent      []float64 `json:"recentOutcomes"`
}

// AvgProfit returns the running profit per trade for this indicator.
func (s *IndicatorStats) AvgProfit() float64 {
	if s.Trades == 0 {
		return 0
	}
	return s.TotalProfit / float64(s.Trades)
}

// pushRecent appends a signed contribution outcome, evicting the oldest
// entry once the ring buffer is full.
func (s *IndicatorStats) pushRecent(v float64) {
	s.Recent = append(s.Recent, v)
	if len(s.Recent) > recentOutcomeLimit {
		s.Recent = s.Recent[len(s.Recent)-recentOutcomeLimit:]
	}
}

func (s *IndicatorStats) recentMean() float64 {
	if len(s.Recent) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.Recent {
		sum += v
	}
	return sum / float64(len(s.Recent))
}

// TradeOutcome is one realized round-trip fed into the learner. Indicators
// maps each contributing indicator to its contribution fraction in [0, 1].
type TradeOutcome struct {
	ID            string             `json:"id"`
	Symbol        string             `json:"symbol"`
	Profit        float64            `json:"profit"`
	ProfitPercent float64            `json:"profitPercent"`
	Win           bool               `json:"win"`
	Indicators    map[string]float64 `json:"indicators"`
	ClosedAt      time.Time          `json:"closedAt"`
}

// State is the persisted, per-symbol learning state. Mutated after every
// trade outcome; removed only by an explicit reset.
type State struct {
	Symbol       string                     `json:"symbol"`
	Weights      signal.WeightMap           `json:"weights"`
	Stats        map[string]*IndicatorStats `json:"perIndicatorStats"`
	History      []TradeOutcome             `json:"tradeHistory"`
	LearningRate float64                    `json:"learningRate"`
	TotalTrades  int                        `json:"totalTrades"`
	UpdatedAt    time.Time                  `json:"updatedAt"`
}

// NewState initializes fresh equal-weight state for a symbol.
func NewState(symbol string, indicatorNames []string, learningRate float64) *State {
	return &State{
		Symbol:       symbol,
		Weights:      signal.EqualWeights(indicatorNames),
		Stats:        make(map[string]*IndicatorStats),
		LearningRate: learningRate,
	}
}

func (s *State) stats(indicator string) *IndicatorStats {
	st, ok := s.Stats[indicator]
	if !ok {
		st = &IndicatorStats{}
		s.Stats[indicator] = st
	}
	return st
}

// Snapshot is the inspection view exported to the presentation layer:
// current weights, per-indicator stats and the most recent trades.
type Snapshot struct {
	Symbol       string                     `json:"symbol"`
	Weights      signal.WeightMap           `json:"weights"`
	Stats        map[string]*IndicatorStats `json:"perIndicatorStats"`
	RecentTrades []TradeOutcome             `json:"recentTrades"`
	LearningRate float64                    `json:"learningRate"`
	TotalTrades  int                        `json:"totalTrades"`
}

// Snapshot exports the learning state with the trade history capped at the
// last 50 outcomes.
func (s *State) Snapshot() Snapshot {
	trades := s.History
	if len(trades) > snapshotTradeLimit {
		trades = trades[len(trades)-snapshotTradeLimit:]
	}
	return Snapshot{
		Symbol:       s.Symbol,
		Weights:      s.Weights.Clone(),
		Stats:        s.Stats,
		RecentTrades: trades,
		LearningRate: s.LearningRate,
		TotalTrades:  s.TotalTrades,
	}
}
