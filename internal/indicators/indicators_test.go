package indicators

import (
	"math"
	"testing"
)

func flatSeries(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func risingSeries(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	t.Run("basic window", func(t *testing.T) {
		if got := SMA(values, 3); got != 4 {
			t.Errorf("expected 4, got %v", got)
		}
	})

	t.Run("insufficient history", func(t *testing.T) {
		if got := SMA(values, 10); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("zero period", func(t *testing.T) {
		if got := SMA(values, 0); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})
}

func TestEMA(t *testing.T) {
	t.Run("flat series equals price", func(t *testing.T) {
		if got := EMA(flatSeries(50, 100), 12); math.Abs(got-100) > 1e-9 {
			t.Errorf("expected 100, got %v", got)
		}
	})

	t.Run("rising series lags last price", func(t *testing.T) {
		values := risingSeries(50, 100, 1)
		got := EMA(values, 12)
		if got <= values[0] || got >= values[len(values)-1] {
			t.Errorf("EMA %v outside series range", got)
		}
	})

	t.Run("insufficient history", func(t *testing.T) {
		if got := EMA([]float64{1, 2}, 12); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})
}

func TestRSIBounds(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
	}{
		{"rising", risingSeries(100, 50, 1)},
		{"falling", risingSeries(100, 200, -1)},
		{"flat", flatSeries(100, 100)},
		{"sawtooth", func() []float64 {
			out := make([]float64, 100)
			for i := range out {
				out[i] = 100 + float64(i%2)*5
			}
			return out
		}()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RSI(tc.values, 14)
			if got < 0 || got > 100 {
				t.Errorf("RSI out of bounds: %v", got)
			}
		})
	}
}

func TestRSIDefaults(t *testing.T) {
	t.Run("flat series settles at 50", func(t *testing.T) {
		if got := RSI(flatSeries(100, 42), 14); got != 50 {
			t.Errorf("expected 50, got %v", got)
		}
	})

	t.Run("all gains returns 100", func(t *testing.T) {
		if got := RSI(risingSeries(30, 100, 1), 14); got != 100 {
			t.Errorf("expected 100, got %v", got)
		}
	})

	t.Run("all losses returns 0", func(t *testing.T) {
		if got := RSI(risingSeries(30, 200, -1), 14); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("insufficient history returns 50", func(t *testing.T) {
		if got := RSI([]float64{1, 2, 3}, 14); got != 50 {
			t.Errorf("expected 50, got %v", got)
		}
	})
}

func TestMACD(t *testing.T) {
	t.Run("signal line is fifth of macd", func(t *testing.T) {
		res := MACD(risingSeries(60, 100, 1))
		if res.MACD == 0 {
			t.Fatal("expected non-zero MACD on a trending series")
		}
		if math.Abs(res.Signal-0.2*res.MACD) > 1e-9 {
			t.Errorf("signal %v is not 0.2 x macd %v", res.Signal, res.MACD)
		}
		if math.Abs(res.Histogram-(res.MACD-res.Signal)) > 1e-9 {
			t.Errorf("histogram %v mismatch", res.Histogram)
		}
	})

	t.Run("insufficient history", func(t *testing.T) {
		if res := MACD(flatSeries(10, 100)); res != (MACDResult{}) {
			t.Errorf("expected zero value, got %+v", res)
		}
	})

	t.Run("flat series is neutral", func(t *testing.T) {
		res := MACD(flatSeries(60, 100))
		if res.MACD != 0 || res.Histogram != 0 {
			t.Errorf("expected flat MACD, got %+v", res)
		}
	})
}

func TestBollinger(t *testing.T) {
	t.Run("flat series collapses band width", func(t *testing.T) {
		b := Bollinger(flatSeries(40, 100), 20, 2)
		if b.Upper != 100 || b.Middle != 100 || b.Lower != 100 {
			t.Errorf("expected zero-width bands at 100, got %+v", b)
		}
	})

	t.Run("upper above lower on noisy series", func(t *testing.T) {
		values := make([]float64, 40)
		for i := range values {
			values[i] = 100 + float64(i%5)
		}
		b := Bollinger(values, 20, 2)
		if !(b.Lower < b.Middle && b.Middle < b.Upper) {
			t.Errorf("band ordering broken: %+v", b)
		}
	})

	t.Run("insufficient history", func(t *testing.T) {
		if b := Bollinger(flatSeries(5, 100), 20, 2); b != (Bands{}) {
			t.Errorf("expected zero value, got %+v", b)
		}
	})
}

func TestStochasticRSI(t *testing.T) {
	t.Run("flat series neutral", func(t *testing.T) {
		if got := StochasticRSI(flatSeries(60, 100), 14, 14); got != 0.5 {
			t.Errorf("expected 0.5, got %v", got)
		}
	})

	t.Run("bounded", func(t *testing.T) {
		values := make([]float64, 80)
		for i := range values {
			values[i] = 100 + 10*math.Sin(float64(i)/5)
		}
		got := StochasticRSI(values, 14, 14)
		if got < 0 || got > 1 {
			t.Errorf("out of [0,1]: %v", got)
		}
	})

	t.Run("insufficient history neutral", func(t *testing.T) {
		if got := StochasticRSI(flatSeries(10, 100), 14, 14); got != 0.5 {
			t.Errorf("expected 0.5, got %v", got)
		}
	})
}

func TestWilliamsR(t *testing.T) {
	highs := risingSeries(30, 101, 1)
	lows := risingSeries(30, 99, 1)
	closes := risingSeries(30, 100, 1)

	t.Run("in range", func(t *testing.T) {
		got := WilliamsR(highs, lows, closes, 14)
		if got < -100 || got > 0 {
			t.Errorf("out of [-100,0]: %v", got)
		}
	})

	t.Run("zero range neutral", func(t *testing.T) {
		flat := flatSeries(30, 100)
		if got := WilliamsR(flat, flat, flat, 14); got != -50 {
			t.Errorf("expected -50, got %v", got)
		}
	})
}

func TestCCI(t *testing.T) {
	t.Run("flat series is zero", func(t *testing.T) {
		flat := flatSeries(30, 100)
		if got := CCI(flat, flat, flat, 20); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("spike down goes negative", func(t *testing.T) {
		highs := flatSeries(30, 101)
		lows := flatSeries(30, 99)
		closes := flatSeries(30, 100)
		closes[len(closes)-1] = 90
		if got := CCI(highs, lows, closes, 20); got >= 0 {
			t.Errorf("expected negative CCI, got %v", got)
		}
	})
}

func TestADX(t *testing.T) {
	t.Run("flat series zero value", func(t *testing.T) {
		flat := flatSeries(30, 100)
		if got := ADX(flat, flat, flat, 14); got != (DirectionalIndex{}) {
			t.Errorf("expected zero value, got %+v", got)
		}
	})

	t.Run("uptrend favors plusDI", func(t *testing.T) {
		highs := risingSeries(30, 102, 1)
		lows := risingSeries(30, 98, 1)
		closes := risingSeries(30, 100, 1)
		got := ADX(highs, lows, closes, 14)
		if got.PlusDI <= got.MinusDI {
			t.Errorf("expected plusDI > minusDI, got %+v", got)
		}
		if got.ADX < 0 || got.ADX > 100 {
			t.Errorf("ADX out of bounds: %v", got.ADX)
		}
	})
}

func TestOBV(t *testing.T) {
	closes := []float64{100, 101, 100, 102, 102}
	volumes := []float64{10, 20, 30, 40, 50}

	t.Run("signed accumulation", func(t *testing.T) {
		obv := OBV(closes, volumes)
		want := []float64{0, 20, -10, 30, 30}
		for i := range want {
			if obv[i] != want[i] {
				t.Errorf("index %d: expected %v, got %v", i, want[i], obv[i])
			}
		}
	})

	t.Run("flat series flat OBV trend", func(t *testing.T) {
		flat := flatSeries(30, 100)
		if got := OBVTrend(flat, flatSeries(30, 10), 10); got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
	})
}

func TestVolumeRatio(t *testing.T) {
	t.Run("steady volume is one", func(t *testing.T) {
		if got := VolumeRatio(flatSeries(30, 500), 20); got != 1 {
			t.Errorf("expected 1, got %v", got)
		}
	})

	t.Run("volume spike", func(t *testing.T) {
		volumes := flatSeries(30, 500)
		volumes[len(volumes)-1] = 1500
		if got := VolumeRatio(volumes, 20); math.Abs(got-3) > 1e-9 {
			t.Errorf("expected 3, got %v", got)
		}
	})

	t.Run("zero average neutral", func(t *testing.T) {
		if got := VolumeRatio(flatSeries(30, 0), 20); got != 1 {
			t.Errorf("expected 1, got %v", got)
		}
	})
}

func TestEquilibrium(t *testing.T) {
	t.Run("mean of midpoints", func(t *testing.T) {
		opens := flatSeries(40, 100)
		closes := flatSeries(40, 110)
		if got := Equilibrium(opens, closes, 30); math.Abs(got-105) > 1e-9 {
			t.Errorf("expected 105, got %v", got)
		}
	})

	t.Run("insufficient history", func(t *testing.T) {
		if got := Equilibrium(flatSeries(10, 100), flatSeries(10, 100), 30); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})
}
