// Package backtest replays a historical series through the signal generator
// and simulates the resulting trades.
package backtest

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/HatimDz/crypto-sub000/internal/learning"
	"github.com/HatimDz/crypto-sub000/internal/market"
	"github.com/HatimDz/crypto-sub000/internal/signal"
)

// Run replays the series bar by bar from the warm-up index, invoking the
// signal generator at each step and opening/closing a simulated position.
// Each run owns its position, trade log and equity curve exclusively, so
// independent runs may execute concurrently without locking.
//
// A malformed or empty series yields a well-formed zero-activity report.
// Context cancellation stops issuing further bar iterations; the position is
// force-closed at the last processed bar and the partial report returned.
func Run(ctx context.Context, series market.Series, cfg Config) *Report {
	report := &Report{
		RunID:          uuid.NewString(),
		Symbol:         cfg.Symbol,
		InitialCapital: cfg.InitialCapital,
		FinalCapital:   cfg.InitialCapital,
		Trades:         []Trade{},
		EquityCurve:    []EquityPoint{},
	}

	if len(series) == 0 || cfg.InitialCapital <= 0 {
		return report
	}
	report.PeriodStart = series[0].Date
	report.PeriodEnd = series.Last().Date

	settings := cfg.Settings
	if settings == nil {
		settings = signal.DefaultSettings()
	}
	weights := cfg.Weights.Clone()
	if len(weights) == 0 {
		weights = signal.DefaultWeights()
	}
	learningRate := cfg.LearningRate
	if learningRate <= 0 {
		learningRate = 0.1
	}

	capital := cfg.InitialCapital
	position := Position{Side: SideNone}
	lastBar := len(series) - 1

	start := warmUpBar(len(series))
	cancelled := false
	for i := start; i <= lastBar && !cancelled; i++ {
		select {
		case <-ctx.Done():
			log.Printf("backtest %s: cancelled at bar %d/%d", cfg.Symbol, i, lastBar)
			lastBar = i - 1
			cancelled = true
			continue
		default:
		}

		bar := series[i]
		markEquity(report, &position, capital, bar)

		sig := signal.Generate(series, i, settings, weights)

		switch position.Side {
		case SideNone:
			if sig.Action == signal.Buy && sig.Confidence >= cfg.MinConfidence {
				entry := entryPrice(series, i, settings, weights, cfg, signal.Buy)
				position = openPosition(SideLong, entry, bar, capital, sig)
				capital = 0
			} else if !cfg.Adaptive && cfg.AllowShort &&
				sig.Action == signal.Sell && sig.Confidence >= cfg.MinConfidence {
				entry := entryPrice(series, i, settings, weights, cfg, signal.Sell)
				position = openPosition(SideShort, entry, bar, capital, sig)
			}

		case SideLong:
			shouldExit := sig.Action == signal.Sell
			if !cfg.Adaptive && sig.Confidence < exitConfidenceFloor {
				shouldExit = true
			}
			if shouldExit {
				exit := entryPrice(series, i, settings, weights, cfg, signal.Sell)
				trade := closePosition(&position, exit, bar)
				capital = position.Quantity * exit
				recordTrade(report, cfg, trade)
				if cfg.Adaptive {
					weights = learning.AdjustInLoop(weights, position.EntryContribs, trade.ProfitPercent, learningRate)
				}
				position = Position{Side: SideNone}
			}

		case SideShort:
			if sig.Action == signal.Buy || sig.Confidence < exitConfidenceFloor {
				trade := closePosition(&position, bar.Close, bar)
				capital += trade.Profit
				recordTrade(report, cfg, trade)
				position = Position{Side: SideNone}
			}
		}

		report.BarsProcessed++
		if cfg.OnProgress != nil {
			cfg.OnProgress(i, lastBar)
		}
	}

	if position.Side != SideNone && lastBar >= 0 {
		final := series[lastBar]
		trade := closePosition(&position, final.Close, final)
		if position.Side == SideLong {
			capital = position.Quantity * final.Close
		} else {
			capital += trade.Profit
		}
		recordTrade(report, cfg, trade)
	}

	report.FinalCapital = capital
	if cfg.Adaptive {
		report.FinalWeights = weights
	}
	fillMetrics(report)
	return report
}

// warmUpBar mirrors the generator's warm-up guard so the loop does not burn
// iterations on guaranteed HOLDs.
func warmUpBar(total int) int {
	warm := total / 4
	if warm > 20 {
		warm = 20
	}
	return warm
}

// markEquity samples the mark-to-market portfolio value for the bar.
func markEquity(report *Report, position *Position, capital float64, bar market.PricePoint) {
	value := capital
	switch position.Side {
	case SideLong:
		value = position.Quantity * bar.Close
	case SideShort:
		value = capital + position.Quantity*(position.EntryPrice-bar.Close)
	}
	report.EquityCurve = append(report.EquityCurve, EquityPoint{Date: bar.Date, Value: value})
}

// entryPrice returns the fill price for the bar: the optimal-price-search
// target when enabled and within tolerance of the close, otherwise the close.
func entryPrice(series market.Series, index int, settings signal.Settings, weights signal.WeightMap, cfg Config, side signal.Action) float64 {
	closePrice := series[index].Close
	if !cfg.UseOptimalEntry {
		return closePrice
	}

	buy, sell := signal.OptimalPrices(series[:index+1], settings, weights)
	target := buy
	if side == signal.Sell {
		target = sell
	}
	if target == nil {
		return closePrice
	}
	if diff := (*target - closePrice) / closePrice; diff > -optimalEntryTolerance && diff < optimalEntryTolerance {
		return *target
	}
	return closePrice
}

func openPosition(side Side, price float64, bar market.PricePoint, capital float64, sig signal.Signal) Position {
	return Position{
		Side:            side,
		EntryPrice:      price,
		EntryDate:       bar.Date,
		Quantity:        capital / price,
		EntryConfidence: sig.Confidence,
		EntryReasoning:  sig.Reasoning,
		EntryContribs:   sig.Contributions,
		EntrySnapshot:   sig.Indicators,
	}
}

func closePosition(position *Position, exitPrice float64, bar market.PricePoint) Trade {
	profit := position.Quantity * (exitPrice - position.EntryPrice)
	if position.Side == SideShort {
		profit = position.Quantity * (position.EntryPrice - exitPrice)
	}

	profitPct := 0.0
	if position.EntryPrice > 0 {
		profitPct = profit / (position.Quantity * position.EntryPrice) * 100
	}

	return Trade{
		ID:            uuid.NewString(),
		EntryDate:     position.EntryDate,
		ExitDate:      bar.Date,
		EntryPrice:    position.EntryPrice,
		ExitPrice:     exitPrice,
		Action:        position.Side,
		Quantity:      position.Quantity,
		Profit:        profit,
		ProfitPercent: profitPct,
		Confidence:    position.EntryConfidence,
		HoldingDays:   int(bar.Date.Sub(position.EntryDate).Hours() / 24),
		Reasoning:     position.EntryReasoning,
	}
}

func recordTrade(report *Report, cfg Config, trade Trade) {
	report.Trades = append(report.Trades, trade)
	if cfg.OnTrade != nil {
		cfg.OnTrade(trade)
	}
}
