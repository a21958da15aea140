package market

import (
	"errors"
	"fmt"
	"time"
)

// PricePoint is a single OHLCV candle. Once produced by a provider it is
// never mutated by the engine.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series is an ordered (oldest first) sequence of candles.
type Series []PricePoint

var (
	ErrEmptySeries = errors.New("price series is empty")
	ErrBadCandle   = errors.New("candle violates OHLC invariants")
)

// Validate checks candle invariants (high >= max(open, close),
// low <= min(open, close), volume >= 0) and chronological order.
// Providers validate once at the boundary; the engine trusts the series.
func Validate(s Series) error {
	if len(s) == 0 {
		return ErrEmptySeries
	}
	for i, p := range s {
		if p.High < p.Open || p.High < p.Close || p.Low > p.Open || p.Low > p.Close {
			return fmt.Errorf("%w: index %d (%s)", ErrBadCandle, i, p.Date.Format("2006-01-02"))
		}
		if p.Volume < 0 {
			return fmt.Errorf("%w: index %d negative volume", ErrBadCandle, i)
		}
		if i > 0 && p.Date.Before(s[i-1].Date) {
			return fmt.Errorf("%w: index %d out of order", ErrBadCandle, i)
		}
	}
	return nil
}

// Closes returns the close prices of the series, oldest first.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Close
	}
	return out
}

// Opens returns the open prices of the series.
func (s Series) Opens() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Open
	}
	return out
}

// Highs returns the high prices of the series.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.High
	}
	return out
}

// Lows returns the low prices of the series.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Low
	}
	return out
}

// Volumes returns the traded volumes of the series.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Volume
	}
	return out
}

// Last returns the most recent candle. The series must be non-empty.
func (s Series) Last() PricePoint {
	return s[len(s)-1]
}
