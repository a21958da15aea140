// Package db persists weight profiles, learning state and backtest results
// in SQLite.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HatimDz/crypto-sub000/internal/backtest"
	"github.com/HatimDz/crypto-sub000/internal/learning"
	"github.com/HatimDz/crypto-sub000/internal/signal"
)

var (
	ErrSymbolRequired = errors.New("symbol is required")
	ErrNotFound       = errors.New("record not found")
)

// Queries is the query layer over the analysis tables.
type Queries struct {
	db *sql.DB
}

// ----------------------------------------
// Weight configs
// ----------------------------------------

// LoadWeights returns the persisted weight profile for a symbol.
func (q *Queries) LoadWeights(ctx context.Context, symbol string) (signal.WeightMap, error) {
	if symbol == "" {
		return nil, ErrSymbolRequired
	}

	var blob string
	err := q.db.QueryRowContext(ctx, `
		SELECT weights FROM weight_configs WHERE symbol = ?
	`, symbol).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query weights: %w", err)
	}

	var weights signal.WeightMap
	if err := json.Unmarshal([]byte(blob), &weights); err != nil {
		return nil, fmt.Errorf("decode weights for %s: %w", symbol, err)
	}
	return weights, nil
}

// SaveWeights upserts the weight profile for a symbol.
func (q *Queries) SaveWeights(ctx context.Context, symbol string, weights signal.WeightMap) error {
	if symbol == "" {
		return ErrSymbolRequired
	}

	blob, err := json.Marshal(weights)
	if err != nil {
		return fmt.Errorf("encode weights for %s: %w", symbol, err)
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO weight_configs (symbol, weights, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(symbol) DO UPDATE SET
			weights = excluded.weights,
			updated_at = CURRENT_TIMESTAMP
	`, symbol, string(blob))
	return err
}

// ResetWeights removes the persisted profile so the symbol falls back to
// defaults on the next load.
func (q *Queries) ResetWeights(ctx context.Context, symbol string) error {
	if symbol == "" {
		return ErrSymbolRequired
	}
	_, err := q.db.ExecContext(ctx, `DELETE FROM weight_configs WHERE symbol = ?`, symbol)
	return err
}

// ----------------------------------------
// Trade outcomes
// ----------------------------------------

// SaveTradeOutcome appends one realized trade outcome.
func (q *Queries) SaveTradeOutcome(ctx context.Context, outcome learning.TradeOutcome) error {
	if outcome.Symbol == "" {
		return ErrSymbolRequired
	}

	indicators, err := json.Marshal(outcome.Indicators)
	if err != nil {
		return fmt.Errorf("encode indicator contributions: %w", err)
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO trade_outcomes (id, symbol, profit, profit_percent, win, indicators, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, outcome.ID, outcome.Symbol, outcome.Profit, outcome.ProfitPercent,
		outcome.Win, string(indicators), outcome.ClosedAt)
	return err
}

// ListTradeOutcomes returns the most recent outcomes for a symbol.
func (q *Queries) ListTradeOutcomes(ctx context.Context, symbol string, limit int) ([]learning.TradeOutcome, error) {
	if symbol == "" {
		return nil, ErrSymbolRequired
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT id, symbol, profit, profit_percent, win, COALESCE(indicators, '{}'), closed_at
		FROM trade_outcomes
		WHERE symbol = ?
		ORDER BY closed_at DESC
		LIMIT ?
	`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query trade outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []learning.TradeOutcome
	for rows.Next() {
		var (
			o    learning.TradeOutcome
			blob string
		)
		if err := rows.Scan(&o.ID, &o.Symbol, &o.Profit, &o.ProfitPercent, &o.Win, &blob, &o.ClosedAt); err != nil {
			return nil, fmt.Errorf("scan trade outcome: %w", err)
		}
		if err := json.Unmarshal([]byte(blob), &o.Indicators); err != nil {
			return nil, fmt.Errorf("decode indicator contributions: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

// ----------------------------------------
// Backtest runs
// ----------------------------------------

// SaveBacktestRun stores the summary row plus the full report as JSON.
func (q *Queries) SaveBacktestRun(ctx context.Context, report *backtest.Report, adaptive bool) error {
	if report.Symbol == "" {
		return ErrSymbolRequired
	}

	blob, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode backtest report: %w", err)
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO backtest_runs (
			id, symbol, adaptive, initial_capital, final_capital,
			total_return_pct, trade_count, win_rate, max_drawdown_pct,
			sharpe_ratio, report, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, report.RunID, report.Symbol, adaptive, report.InitialCapital, report.FinalCapital,
		report.TotalReturnPct, len(report.Trades), report.WinRate, report.MaxDrawdownPct,
		report.SharpeRatio, string(blob))
	return err
}

// ListBacktestRuns returns run summaries, newest first.
func (q *Queries) ListBacktestRuns(ctx context.Context, limit int) ([]BacktestRun, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, symbol, adaptive, initial_capital, final_capital,
		       total_return_pct, trade_count, win_rate, max_drawdown_pct,
		       sharpe_ratio, created_at
		FROM backtest_runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query backtest runs: %w", err)
	}
	defer rows.Close()

	var runs []BacktestRun
	for rows.Next() {
		var r BacktestRun
		if err := rows.Scan(&r.ID, &r.Symbol, &r.Adaptive, &r.InitialCapital, &r.FinalCapital,
			&r.TotalReturnPct, &r.TradeCount, &r.WinRate, &r.MaxDrawdownPct,
			&r.SharpeRatio, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan backtest run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetBacktestRun returns the full stored report for a run ID.
func (q *Queries) GetBacktestRun(ctx context.Context, id string) (*backtest.Report, error) {
	var blob string
	err := q.db.QueryRowContext(ctx, `
		SELECT report FROM backtest_runs WHERE id = ?
	`, id).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query backtest run: %w", err)
	}

	var report backtest.Report
	if err := json.Unmarshal([]byte(blob), &report); err != nil {
		return nil, fmt.Errorf("decode backtest report %s: %w", id, err)
	}
	return &report, nil
}
