// Package learning adjusts indicator weights from realized trade outcomes.
// It is online, gradient-free reinforcement: weights follow what has been
// working, they do not solve for an optimum.
package learning

import (
	"errors"
	"log"
	"math"

	"github.com/HatimDz/crypto-sub000/internal/signal"
)

// Store persists per-symbol learning state. pkg/db provides the SQLite
// implementation; tests use an in-memory fake.
type Store interface {
	Load(symbol string) (*State, error)
	Save(state *State) error
	Reset(symbol string) error
}

// ErrNotFound is returned by a Store when no state exists for a symbol.
var ErrNotFound = errors.New("learning state not found")

// Weight recomputation bounds.
const (
	reliabilityFloor = 0.1
	reliabilityCeil  = 0.9
	weightFloor      = 0.10
	defaultRate      = 0.1
)

// Learner is the cross-session adaptive weight learner. It owns no state of
// its own; everything lives in the per-symbol State threaded through the
// Store.
type Learner struct {
	store Store
	rate  float64
}

// NewLearner builds a learner over the given store. A non-positive rate
// falls back to the default.
func NewLearner(store Store, rate float64) *Learner {
	if rate <= 0 {
		rate = defaultRate
	}
	return &Learner{store: store, rate: rate}
}

// StateFor loads the symbol's learning state, initializing fresh equal
// weights when none is persisted or the read fails. A failed read never
// fails the caller; it logs and starts over.
func (l *Learner) StateFor(symbol string) *State {
	state, err := l.store.Load(symbol)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("learning: load state for %s failed, reinitializing: %v", symbol, err)
		}
		return NewState(symbol, signal.AllIndicators, l.rate)
	}
	if state.LearningRate <= 0 {
		state.LearningRate = l.rate
	}
	return state
}

// Record applies one realized trade outcome to the symbol's state: updates
// per-indicator stats, recomputes reliabilities and weights, appends the
// trade to the history and persists the result.
func (l *Learner) Record(outcome TradeOutcome) (*State, error) {
	state := l.StateFor(outcome.Symbol)

	state.TotalTrades++
	state.History = append(state.History, outcome)
	state.UpdatedAt = outcome.ClosedAt

	for indicator, contribution := range outcome.Indicators {
		if contribution < 0 {
			contribution = 0
		}
		if contribution > 1 {
			contribution = 1
		}
		st := state.stats(indicator)
		st.Trades++
		if outcome.Win {
			st.Wins++
			st.pushRecent(contribution)
		} else {
			st.pushRecent(-contribution)
		}
		st.TotalProfit += outcome.Profit * contribution
		st.WinRate = float64(st.Wins) / float64(st.Trades)
		st.Reliability = reliability(st)
	}

	recomputeWeights(state)

	if err := l.store.Save(state); err != nil {
		return nil, err
	}
	return state, nil
}

// Reset clears the persisted state for a symbol.
func (l *Learner) Reset(symbol string) error {
	return l.store.Reset(symbol)
}

// reliability blends recent outcomes, average profit and win rate into a
// score clamped to [0.1, 0.9].
func reliability(st *IndicatorStats) float64 {
	score := 0.5 +
		0.4*st.recentMean() +
		0.3*math.Tanh(st.AvgProfit()/100) +
		0.3*((st.WinRate-0.5)*2)
	if score < reliabilityFloor {
		return reliabilityFloor
	}
	if score > reliabilityCeil {
		return reliabilityCeil
	}
	return score
}

// recomputeWeights derives a target score per indicator from its reliability
// and blends each weight toward it with exponential smoothing, so one trade
// never jumps the map. Indicators without stats keep their current weight as
// the target.
func recomputeWeights(state *State) {
	rate := state.LearningRate
	for indicator, current := range state.Weights {
		st, ok := state.Stats[indicator]
		if !ok || st.Trades == 0 {
			continue
		}

		target := st.Reliability
		if avg := st.AvgProfit(); avg > 0 {
			target *= 1 + math.Min(avg/100, 0.5)
		}
		if st.WinRate > 0.6 {
			target *= 1 + (st.WinRate - 0.6)
		}
		if st.WinRate < 0.4 && st.Trades >= 5 {
			target *= 0.7
		}

		next := current + (target-current)*rate
		if next < weightFloor {
			next = weightFloor
		}
		state.Weights[indicator] = next
	}
	state.Weights.Normalize()
}
