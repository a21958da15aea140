package db

import (
	"time"

	"github.com/HatimDz/crypto-sub000/internal/signal"
)

// WeightConfig is the persisted per-symbol indicator weight profile.
type WeightConfig struct {
	Symbol    string           `json:"symbol"`
	Weights   signal.WeightMap `json:"weights"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// BacktestRun is the summary row stored for every completed backtest. The
// full report is kept alongside as a JSON blob and fetched by ID.
type BacktestRun struct {
	ID             string    `json:"id"`
	Symbol         string    `json:"symbol"`
	Adaptive       bool      `json:"adaptive"`
	InitialCapital float64   `json:"initialCapital"`
	FinalCapital   float64   `json:"finalCapital"`
	TotalReturnPct float64   `json:"totalReturnPct"`
	TradeCount     int       `json:"tradeCount"`
	WinRate        float64   `json:"winRate"`
	MaxDrawdownPct float64   `json:"maxDrawdownPct"`
	SharpeRatio    float64   `json:"sharpeRatio"`
	CreatedAt      time.Time `json:"createdAt"`
}
