package backtest

import "math"

// tradingDaysPerYear annualizes the Sharpe ratio for daily bars.
const tradingDaysPerYear = 252

// fillMetrics rolls win rate, average win/loss, total return, max drawdown
// and Sharpe into the report. Zero trades leaves every performance field at
// zero, which is a valid outcome, not an error.
func fillMetrics(report *Report) {
	var wins, losses int
	var winAmt, lossAmt float64

	for _, t := range report.Trades {
		if t.Profit > 0 {
			wins++
			winAmt += t.Profit
		} else {
			losses++
			lossAmt += -t.Profit
		}
	}

	if n := len(report.Trades); n > 0 {
		report.WinRate = float64(wins) / float64(n) * 100
	}
	if wins > 0 {
		report.AvgWin = winAmt / float64(wins)
	}
	if losses > 0 {
		report.AvgLoss = lossAmt / float64(losses)
	}

	if report.InitialCapital > 0 {
		report.TotalReturnPct = (report.FinalCapital - report.InitialCapital) / report.InitialCapital * 100
	}

	report.MaxDrawdownPct = maxDrawdownPercent(report.EquityCurve)
	report.SharpeRatio = sharpeRatio(report.EquityCurve)
}

// maxDrawdownPercent returns the largest peak-to-trough decline of the
// equity curve, as a percentage of the peak. Never negative; zero for a
// monotonically non-decreasing curve.
func maxDrawdownPercent(curve []EquityPoint) float64 {
	maxSeen := 0.0
	maxDD := 0.0
	for _, p := range curve {
		if p.Value > maxSeen {
			maxSeen = p.Value
		}
		if maxSeen > 0 {
			dd := (maxSeen - p.Value) / maxSeen * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// sharpeRatio annualizes mean/stddev of the daily percentage returns.
// Returns 0 when fewer than two return samples exist or volatility is zero.
func sharpeRatio(curve []EquityPoint) float64 {
	if len(curve) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Value
		if prev == 0 {
			continue
		}
		returns = append(returns, (curve[i].Value-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	stddev := math.Sqrt(variance)
	if stddev == 0 {
		return 0
	}
	return mean / stddev * math.Sqrt(tradingDaysPerYear)
}
