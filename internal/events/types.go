package events

import (
	"time"

	"github.com/HatimDz/crypto-sub000/internal/backtest"
	"github.com/HatimDz/crypto-sub000/internal/signal"
)

// Event enumerates high-level topics inside the analysis core.
type Event string

const (
	EventSignal           Event = "signal.generated"
	EventBacktestProgress Event = "backtest.progress"
	EventBacktestDone     Event = "backtest.done"
	EventTradeClosed      Event = "trade.closed"
	EventWeightsUpdated   Event = "weights.updated"
)

// SignalEvent is published whenever a live signal is generated.
type SignalEvent struct {
	Symbol   string        `json:"symbol"`
	Interval string        `json:"interval"`
	Signal   signal.Signal `json:"signal"`
	At       time.Time     `json:"at"`
}

// BacktestProgressEvent reports how far a running backtest has advanced.
type BacktestProgressEvent struct {
	RunID  string `json:"runId"`
	Symbol string `json:"symbol"`
	Bar    int    `json:"bar"`
	Total  int    `json:"total"`
}

// BacktestDoneEvent carries the finished report summary.
type BacktestDoneEvent struct {
	RunID          string  `json:"runId"`
	Symbol         string  `json:"symbol"`
	TotalReturnPct float64 `json:"totalReturnPct"`
	TradeCount     int     `json:"tradeCount"`
}

// TradeClosedEvent is published for every closed simulated trade.
type TradeClosedEvent struct {
	RunID  string         `json:"runId"`
	Symbol string         `json:"symbol"`
	Trade  backtest.Trade `json:"trade"`
}

// WeightsUpdatedEvent is published after the learner adjusts weights.
type WeightsUpdatedEvent struct {
	Symbol  string           `json:"symbol"`
	Weights signal.WeightMap `json:"weights"`
	At      time.Time        `json:"at"`
}
