package learning

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/HatimDz/crypto-sub000/internal/signal"
)

type memStore struct {
	states map[string]*State
	fail   bool
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]*State)}
}

func (m *memStore) Load(symbol string) (*State, error) {
	if m.fail {
		return nil, errors.New("store unavailable")
	}
	state, ok := m.states[symbol]
	if !ok {
		return nil, ErrNotFound
	}
	return state, nil
}

func (m *memStore) Save(state *State) error {
	if m.fail {
		return errors.New("store unavailable")
	}
	m.states[state.Symbol] = state
	return nil
}

func (m *memStore) Reset(symbol string) error {
	delete(m.states, symbol)
	return nil
}

func winningTrade(symbol string, n int) TradeOutcome {
	return TradeOutcome{
		Symbol:        symbol,
		Profit:        50,
		ProfitPercent: 5,
		Win:           true,
		Indicators:    map[string]float64{signal.IndRSI: 1.0},
		ClosedAt:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n),
	}
}

func TestLearnerRepeatedWinsRaiseWeight(t *testing.T) {
	learner := NewLearner(newMemStore(), 0.1)

	var first, last float64
	for i := 0; i < 10; i++ {
		state, err := learner.Record(winningTrade("BTCUSDT", i))
		if err != nil {
			t.Fatalf("record trade %d: %v", i, err)
		}
		if !state.Weights.Normalized() {
			t.Fatalf("trade %d: weights sum to %v", i, state.Weights.Sum())
		}
		if i == 0 {
			first = state.Weights[signal.IndRSI]
		}
		last = state.Weights[signal.IndRSI]
	}

	if last <= first {
		t.Errorf("rsi weight did not increase: %v -> %v", first, last)
	}
}

func TestLearnerWeightsIncreaseMonotonically(t *testing.T) {
	learner := NewLearner(newMemStore(), 0.1)

	prev := 0.0
	for i := 0; i < 10; i++ {
		state, err := learner.Record(winningTrade("ETHUSDT", i))
		if err != nil {
			t.Fatalf("record trade %d: %v", i, err)
		}
		w := state.Weights[signal.IndRSI]
		if i > 0 && w <= prev {
			t.Fatalf("trade %d: weight %v not above previous %v", i, w, prev)
		}
		prev = w
	}
}

func TestLearnerStatsAndRingBuffer(t *testing.T) {
	learner := NewLearner(newMemStore(), 0.1)

	var state *State
	var err error
	for i := 0; i < 15; i++ {
		state, err = learner.Record(winningTrade("BTCUSDT", i))
		if err != nil {
			t.Fatalf("record trade %d: %v", i, err)
		}
	}

	st := state.Stats[signal.IndRSI]
	if st.Trades != 15 || st.Wins != 15 {
		t.Errorf("expected 15/15, got %d/%d", st.Trades, st.Wins)
	}
	if len(st.Recent) != 10 {
		t.Errorf("ring buffer should cap at 10, got %d", len(st.Recent))
	}
	if st.WinRate != 1 {
		t.Errorf("expected win rate 1, got %v", st.WinRate)
	}
	if st.Reliability != 0.9 {
		t.Errorf("expected reliability clamped at 0.9, got %v", st.Reliability)
	}
}

func TestLearnerLosingStreakPenalty(t *testing.T) {
	learner := NewLearner(newMemStore(), 0.1)

	var state *State
	var err error
	for i := 0; i < 8; i++ {
		state, err = learner.Record(TradeOutcome{
			Symbol:        "BTCUSDT",
			Profit:        -40,
			ProfitPercent: -4,
			Win:           false,
			Indicators:    map[string]float64{signal.IndCCI: 0.8},
			ClosedAt:      time.Now(),
		})
		if err != nil {
			t.Fatalf("record trade %d: %v", i, err)
		}
	}

	st := state.Stats[signal.IndCCI]
	if st.Reliability != 0.1 {
		t.Errorf("expected reliability clamped at 0.1, got %v", st.Reliability)
	}

	// A winning indicator must end up well above the losing one.
	for i := 8; i < 16; i++ {
		state, err = learner.Record(winningTrade("BTCUSDT", i))
		if err != nil {
			t.Fatalf("record trade %d: %v", i, err)
		}
	}
	if state.Weights[signal.IndRSI] <= state.Weights[signal.IndCCI] {
		t.Errorf("winning rsi weight %v should exceed losing cci weight %v",
			state.Weights[signal.IndRSI], state.Weights[signal.IndCCI])
	}
}

func TestLearnerContributionClamped(t *testing.T) {
	learner := NewLearner(newMemStore(), 0.1)
	state, err := learner.Record(TradeOutcome{
		Symbol:        "BTCUSDT",
		Profit:        10,
		ProfitPercent: 1,
		Win:           true,
		Indicators:    map[string]float64{signal.IndRSI: 7.5},
		ClosedAt:      time.Now(),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	recent := state.Stats[signal.IndRSI].Recent
	if len(recent) != 1 || recent[0] != 1 {
		t.Errorf("contribution should clamp to 1, got %v", recent)
	}
}

func TestLearnerStoreFailureFallsBackToEqualWeights(t *testing.T) {
	store := newMemStore()
	store.fail = true
	learner := NewLearner(store, 0.1)

	state := learner.StateFor("BTCUSDT")
	if !state.Weights.Normalized() {
		t.Errorf("fresh state weights sum to %v", state.Weights.Sum())
	}
	share := 1.0 / float64(len(signal.AllIndicators))
	if math.Abs(state.Weights[signal.IndRSI]-share) > 1e-9 {
		t.Errorf("expected equal share %v, got %v", share, state.Weights[signal.IndRSI])
	}
}

func TestLearnerReset(t *testing.T) {
	store := newMemStore()
	learner := NewLearner(store, 0.1)

	if _, err := learner.Record(winningTrade("BTCUSDT", 0)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := learner.Reset("BTCUSDT"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	state := learner.StateFor("BTCUSDT")
	if state.TotalTrades != 0 {
		t.Errorf("expected fresh state after reset, got %d trades", state.TotalTrades)
	}
}

func TestSnapshotCapsHistory(t *testing.T) {
	learner := NewLearner(newMemStore(), 0.1)

	var state *State
	var err error
	for i := 0; i < 60; i++ {
		state, err = learner.Record(winningTrade("BTCUSDT", i))
		if err != nil {
			t.Fatalf("record trade %d: %v", i, err)
		}
	}

	snap := state.Snapshot()
	if len(snap.RecentTrades) != 50 {
		t.Errorf("expected 50 recent trades, got %d", len(snap.RecentTrades))
	}
	if snap.TotalTrades != 60 {
		t.Errorf("expected 60 total trades, got %d", snap.TotalTrades)
	}
	// The cap keeps the newest trades.
	newest := snap.RecentTrades[len(snap.RecentTrades)-1]
	if !newest.ClosedAt.After(snap.RecentTrades[0].ClosedAt) {
		t.Error("snapshot should keep the most recent trades in order")
	}
}

func TestAdjustInLoop(t *testing.T) {
	entry := []signal.Contribution{
		{Indicator: signal.IndRSI, Direction: signal.Buy, Strength: 0.8},
		{Indicator: signal.IndRSI, Direction: signal.Buy, Strength: 0.6},
		{Indicator: signal.IndMACD, Direction: signal.Sell, Strength: 0.5},
	}

	t.Run("profit raises buy-side indicators once", func(t *testing.T) {
		weights := signal.EqualWeights([]string{signal.IndRSI, signal.IndMACD})
		next := AdjustInLoop(weights, entry, 10, 0.1)
		if !next.Normalized() {
			t.Fatalf("weights sum to %v", next.Sum())
		}
		if next[signal.IndRSI] <= weights[signal.IndRSI] {
			t.Errorf("rsi weight should rise, got %v", next[signal.IndRSI])
		}
		if next[signal.IndMACD] >= weights[signal.IndMACD] {
			t.Errorf("non-contributing weight should shrink after renormalization, got %v", next[signal.IndMACD])
		}
	})

	t.Run("loss lowers buy-side indicators", func(t *testing.T) {
		weights := signal.EqualWeights([]string{signal.IndRSI, signal.IndMACD})
		next := AdjustInLoop(weights, entry, -10, 0.1)
		if next[signal.IndRSI] >= weights[signal.IndRSI] {
			t.Errorf("rsi weight should fall on a loss, got %v", next[signal.IndRSI])
		}
	})

	t.Run("floor holds under heavy losses", func(t *testing.T) {
		weights := signal.WeightMap{signal.IndRSI: 0.02, signal.IndMACD: 0.98}
		next := AdjustInLoop(weights, entry, -100, 0.5)
		if !next.Normalized() {
			t.Fatalf("weights sum to %v", next.Sum())
		}
		for k, v := range next {
			if v <= 0 {
				t.Errorf("%s collapsed to %v", k, v)
			}
		}
	})

	t.Run("original map untouched", func(t *testing.T) {
		weights := signal.EqualWeights([]string{signal.IndRSI, signal.IndMACD})
		AdjustInLoop(weights, entry, 10, 0.1)
		if weights[signal.IndRSI] != 0.5 {
			t.Errorf("input map mutated: %v", weights[signal.IndRSI])
		}
	})

	t.Run("ten wins raise weight strictly", func(t *testing.T) {
		weights := signal.DefaultWeights()
		prev := weights[signal.IndRSI]
		rsiOnly := []signal.Contribution{{Indicator: signal.IndRSI, Direction: signal.Buy, Strength: 0.9}}
		for i := 0; i < 10; i++ {
			weights = AdjustInLoop(weights, rsiOnly, 5, 0.1)
			if !weights.Normalized() {
				t.Fatalf("trade %d: weights sum to %v", i, weights.Sum())
			}
			if weights[signal.IndRSI] <= prev {
				t.Fatalf("trade %d: weight %v did not increase from %v", i, weights[signal.IndRSI], prev)
			}
			prev = weights[signal.IndRSI]
		}
	})
}
