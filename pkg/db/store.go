package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/HatimDz/crypto-sub000/internal/learning"
)

// LearningStore persists learning state as one JSON row per symbol. It
// satisfies learning.Store.
type LearningStore struct {
	db *sql.DB
}

// LearningStore returns the learning.Store implementation backed by this
// database.
func (d *Database) LearningStore() *LearningStore {
	return &LearningStore{db: d.DB}
}

// Load returns the stored state for a symbol, or learning.ErrNotFound.
func (s *LearningStore) Load(symbol string) (*learning.State, error) {
	if symbol == "" {
		return nil, ErrSymbolRequired
	}

	var blob string
	err := s.db.QueryRowContext(context.Background(), `
		SELECT state_data FROM learning_state WHERE symbol = ?
	`, symbol).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, learning.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query learning state: %w", err)
	}

	var state learning.State
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		return nil, fmt.Errorf("decode learning state for %s: %w", symbol, err)
	}
	return &state, nil
}

// Save upserts the state row for the symbol.
func (s *LearningStore) Save(state *learning.State) error {
	if state == nil || state.Symbol == "" {
		return ErrSymbolRequired
	}

	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode learning state for %s: %w", state.Symbol, err)
	}

	_, err = s.db.ExecContext(context.Background(), `
		INSERT INTO learning_state (symbol, state_data, total_trades, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(symbol) DO UPDATE SET
			state_data = excluded.state_data,
			total_trades = excluded.total_trades,
			updated_at = CURRENT_TIMESTAMP
	`, state.Symbol, string(blob), state.TotalTrades)
	return err
}

// Reset removes the state row so the symbol starts over with equal weights.
func (s *LearningStore) Reset(symbol string) error {
	if symbol == "" {
		return ErrSymbolRequired
	}
	_, err := s.db.ExecContext(context.Background(), `
		DELETE FROM learning_state WHERE symbol = ?
	`, symbol)
	return err
}
