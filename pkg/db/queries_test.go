package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HatimDz/crypto-sub000/internal/backtest"
	"github.com/HatimDz/crypto-sub000/internal/learning"
	"github.com/HatimDz/crypto-sub000/internal/signal"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	database, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := ApplyMigrations(database); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}
	return database
}

func TestQueriesRequireSymbol(t *testing.T) {
	q := newTestDB(t).Queries()
	ctx := context.Background()

	t.Run("LoadWeights requires symbol", func(t *testing.T) {
		_, err := q.LoadWeights(ctx, "")
		if err != ErrSymbolRequired {
			t.Errorf("expected ErrSymbolRequired, got %v", err)
		}
	})

	t.Run("SaveWeights requires symbol", func(t *testing.T) {
		if err := q.SaveWeights(ctx, "", signal.DefaultWeights()); err != ErrSymbolRequired {
			t.Errorf("expected ErrSymbolRequired, got %v", err)
		}
	})

	t.Run("ListTradeOutcomes requires symbol", func(t *testing.T) {
		_, err := q.ListTradeOutcomes(ctx, "", 100)
		if err != ErrSymbolRequired {
			t.Errorf("expected ErrSymbolRequired, got %v", err)
		}
	})
}

func TestWeightConfigRoundTrip(t *testing.T) {
	q := newTestDB(t).Queries()
	ctx := context.Background()

	t.Run("missing symbol returns ErrNotFound", func(t *testing.T) {
		_, err := q.LoadWeights(ctx, "BTCUSDT")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	weights := signal.DefaultWeights()
	weights[signal.IndRSI] = 0.5
	weights.Normalize()

	if err := q.SaveWeights(ctx, "BTCUSDT", weights); err != nil {
		t.Fatalf("save weights: %v", err)
	}

	t.Run("load returns the saved profile", func(t *testing.T) {
		got, err := q.LoadWeights(ctx, "BTCUSDT")
		if err != nil {
			t.Fatalf("load weights: %v", err)
		}
		if got[signal.IndRSI] != weights[signal.IndRSI] {
			t.Errorf("rsi weight: expected %v, got %v", weights[signal.IndRSI], got[signal.IndRSI])
		}
		if !got.Normalized() {
			t.Errorf("loaded weights sum to %v", got.Sum())
		}
	})

	t.Run("upsert replaces the profile", func(t *testing.T) {
		if err := q.SaveWeights(ctx, "BTCUSDT", signal.DefaultWeights()); err != nil {
			t.Fatalf("save weights: %v", err)
		}
		got, err := q.LoadWeights(ctx, "BTCUSDT")
		if err != nil {
			t.Fatalf("load weights: %v", err)
		}
		if got[signal.IndRSI] == weights[signal.IndRSI] {
			t.Errorf("expected the second save to overwrite the first")
		}
	})

	t.Run("reset falls back to ErrNotFound", func(t *testing.T) {
		if err := q.ResetWeights(ctx, "BTCUSDT"); err != nil {
			t.Fatalf("reset weights: %v", err)
		}
		_, err := q.LoadWeights(ctx, "BTCUSDT")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after reset, got %v", err)
		}
	})
}

func TestLearningStorePersistence(t *testing.T) {
	database := newTestDB(t)
	store := database.LearningStore()

	outcome := learning.TradeOutcome{
		ID:            "trade-1",
		Symbol:        "BTCUSDT",
		Profit:        120,
		ProfitPercent: 4.5,
		Win:           true,
		Indicators:    map[string]float64{signal.IndRSI: 0.8},
		ClosedAt:      time.Now().UTC(),
	}

	learner := learning.NewLearner(store, 0.1)
	if _, err := learner.Record(outcome); err != nil {
		t.Fatalf("record outcome: %v", err)
	}

	t.Run("state survives a new learner instance", func(t *testing.T) {
		reloaded := learning.NewLearner(database.LearningStore(), 0.1)
		state := reloaded.StateFor("BTCUSDT")
		if state.TotalTrades != 1 {
			t.Errorf("expected 1 recorded trade, got %d", state.TotalTrades)
		}
		if !state.Weights.Normalized() {
			t.Errorf("reloaded weights sum to %v", state.Weights.Sum())
		}
		stats, ok := state.Stats[signal.IndRSI]
		if !ok || stats.Wins != 1 {
			t.Errorf("expected one rsi win, got %+v", stats)
		}
	})

	t.Run("reset starts over with equal weights", func(t *testing.T) {
		if err := learner.Reset("BTCUSDT"); err != nil {
			t.Fatalf("reset: %v", err)
		}
		state := learner.StateFor("BTCUSDT")
		if state.TotalTrades != 0 {
			t.Errorf("expected fresh state, got %d trades", state.TotalTrades)
		}
	})

	t.Run("unknown symbol returns ErrNotFound", func(t *testing.T) {
		_, err := store.Load("ETHUSDT")
		if !errors.Is(err, learning.ErrNotFound) {
			t.Errorf("expected learning.ErrNotFound, got %v", err)
		}
	})
}

func TestTradeOutcomeIsolation(t *testing.T) {
	q := newTestDB(t).Queries()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	outcomes := []learning.TradeOutcome{
		{ID: "t-1", Symbol: "BTCUSDT", Profit: 50, ProfitPercent: 2, Win: true,
			Indicators: map[string]float64{signal.IndRSI: 1}, ClosedAt: base},
		{ID: "t-2", Symbol: "BTCUSDT", Profit: -25, ProfitPercent: -1, Win: false,
			Indicators: map[string]float64{signal.IndMACD: 1}, ClosedAt: base.Add(time.Hour)},
		{ID: "t-3", Symbol: "ETHUSDT", Profit: 10, ProfitPercent: 0.5, Win: true,
			Indicators: map[string]float64{signal.IndRSI: 1}, ClosedAt: base},
	}
	for _, o := range outcomes {
		if err := q.SaveTradeOutcome(ctx, o); err != nil {
			t.Fatalf("save outcome %s: %v", o.ID, err)
		}
	}

	t.Run("filters by symbol", func(t *testing.T) {
		got, err := q.ListTradeOutcomes(ctx, "BTCUSDT", 100)
		if err != nil {
			t.Fatalf("list outcomes: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 outcomes, got %d", len(got))
		}
		if got[0].ID != "t-2" {
			t.Errorf("expected newest first, got %s", got[0].ID)
		}
		if got[0].Indicators[signal.IndMACD] != 1 {
			t.Errorf("contribution map lost in round trip: %+v", got[0].Indicators)
		}
	})

	t.Run("respects the limit", func(t *testing.T) {
		got, err := q.ListTradeOutcomes(ctx, "BTCUSDT", 1)
		if err != nil {
			t.Fatalf("list outcomes: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("expected 1 outcome, got %d", len(got))
		}
	})

	t.Run("unknown symbol sees nothing", func(t *testing.T) {
		got, err := q.ListTradeOutcomes(ctx, "SOLUSDT", 100)
		if err != nil {
			t.Fatalf("list outcomes: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected 0 outcomes, got %d", len(got))
		}
	})
}

func TestBacktestRunRoundTrip(t *testing.T) {
	q := newTestDB(t).Queries()
	ctx := context.Background()

	report := &backtest.Report{
		RunID:          "run-1",
		Symbol:         "BTCUSDT",
		InitialCapital: 10000,
		FinalCapital:   11500,
		TotalReturnPct: 15,
		WinRate:        100,
		SharpeRatio:    1.8,
		Trades: []backtest.Trade{
			{ID: "bt-1", Action: backtest.SideLong, EntryPrice: 100, ExitPrice: 115, Profit: 1500},
		},
	}
	if err := q.SaveBacktestRun(ctx, report, true); err != nil {
		t.Fatalf("save run: %v", err)
	}

	t.Run("list returns the summary row", func(t *testing.T) {
		runs, err := q.ListBacktestRuns(ctx, 10)
		if err != nil {
			t.Fatalf("list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}
		r := runs[0]
		if r.ID != "run-1" || !r.Adaptive || r.TradeCount != 1 || r.FinalCapital != 11500 {
			t.Errorf("unexpected summary row: %+v", r)
		}
	})

	t.Run("get returns the full report", func(t *testing.T) {
		got, err := q.GetBacktestRun(ctx, "run-1")
		if err != nil {
			t.Fatalf("get run: %v", err)
		}
		if got.FinalCapital != report.FinalCapital || len(got.Trades) != 1 {
			t.Errorf("report lost in round trip: %+v", got)
		}
		if got.Trades[0].Profit != 1500 {
			t.Errorf("trade lost in round trip: %+v", got.Trades[0])
		}
	})

	t.Run("unknown ID returns ErrNotFound", func(t *testing.T) {
		_, err := q.GetBacktestRun(ctx, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
