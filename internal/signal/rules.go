package signal

import (
	"fmt"
	"math"

	"github.com/HatimDz/crypto-sub000/internal/indicators"
	"github.com/HatimDz/crypto-sub000/internal/market"
)

// Indicator periods used by the rule set. Fixed by the analysis profile the
// confidence tiers were tuned against.
const (
	rsiPeriod       = 14
	stochRSIWindow  = 14
	williamsPeriod  = 14
	cciPeriod       = 20
	adxPeriod       = 14
	bollingerPeriod = 20
	bollingerStdDev = 2.0
	obvSMAPeriod    = 10
	maShortPeriod   = 20
	maLongPeriod    = 50
	volumePeriod    = 20
)

// highReliability marks the indicators that receive the +20% weighting bonus.
func highReliability(indicator string) bool {
	switch indicator {
	case IndMACD, IndADX, IndVolume:
		return true
	}
	return len(indicator) > 11 && indicator[:11] == "equilibrium"
}

// evaluate computes every enabled indicator over the truncated series and
// returns the triggered contributions plus the raw snapshot. The series must
// already be cut off at the decision point; no look-ahead happens here.
func evaluate(series market.Series, settings Settings) ([]Contribution, Snapshot) {
	closes := series.Closes()
	opens := series.Opens()
	highs := series.Highs()
	lows := series.Lows()
	volumes := series.Volumes()
	price := closes[len(closes)-1]

	snap := make(Snapshot)
	var contribs []Contribution

	add := func(indicator string, dir Action, strength float64, detail string) {
		if strength > 1 {
			strength = 1
		}
		contribs = append(contribs, Contribution{
			Indicator: indicator,
			Direction: dir,
			Strength:  strength,
			Detail:    detail,
		})
	}

	if settings[IndRSI] {
		rsi := indicators.RSI(closes, rsiPeriod)
		snap[IndRSI] = rsi
		if rsi < 30 {
			add(IndRSI, Buy, 0.5+(30-rsi)/60,
				fmt.Sprintf("RSI oversold at %.1f", rsi))
		} else if rsi > 70 {
			add(IndRSI, Sell, 0.5+(rsi-70)/60,
				fmt.Sprintf("RSI overbought at %.1f", rsi))
		}
	}

	if settings[IndMACD] {
		res := indicators.MACD(closes)
		snap[IndMACD] = res.MACD
		snap["macdSignal"] = res.Signal
		snap["macdHistogram"] = res.Histogram
		if res.Histogram > 0 {
			add(IndMACD, Buy, 0.55,
				fmt.Sprintf("MACD histogram positive (%.4f)", res.Histogram))
		} else if res.Histogram < 0 {
			add(IndMACD, Sell, 0.55,
				fmt.Sprintf("MACD histogram negative (%.4f)", res.Histogram))
		}
	}

	if settings[IndBollinger] {
		bands := indicators.Bollinger(closes, bollingerPeriod, bollingerStdDev)
		snap["bollingerUpper"] = bands.Upper
		snap["bollingerMiddle"] = bands.Middle
		snap["bollingerLower"] = bands.Lower
		if bands.Middle != 0 {
			if price < bands.Lower {
				add(IndBollinger, Buy, 0.60,
					fmt.Sprintf("price %.2f below lower band %.2f", price, bands.Lower))
			} else if price > bands.Upper {
				add(IndBollinger, Sell, 0.60,
					fmt.Sprintf("price %.2f above upper band %.2f", price, bands.Upper))
			}
		}
	}

	if settings[IndStochRSI] {
		v := indicators.StochasticRSI(closes, rsiPeriod, stochRSIWindow)
		snap[IndStochRSI] = v
		if v < 0.2 {
			add(IndStochRSI, Buy, 0.5+(0.2-v)*2.5,
				fmt.Sprintf("StochRSI oversold at %.2f", v))
		} else if v > 0.8 {
			add(IndStochRSI, Sell, 0.5+(v-0.8)*2.5,
				fmt.Sprintf("StochRSI overbought at %.2f", v))
		}
	}

	if settings[IndWilliamsR] {
		v := indicators.WilliamsR(highs, lows, closes, williamsPeriod)
		snap[IndWilliamsR] = v
		if v < -80 {
			add(IndWilliamsR, Buy, 0.55,
				fmt.Sprintf("Williams %%R oversold at %.1f", v))
		} else if v > -20 {
			add(IndWilliamsR, Sell, 0.55,
				fmt.Sprintf("Williams %%R overbought at %.1f", v))
		}
	}

	if settings[IndCCI] {
		v := indicators.CCI(highs, lows, closes, cciPeriod)
		snap[IndCCI] = v
		if v < -100 {
			add(IndCCI, Buy, 0.5+(-v-100)/400,
				fmt.Sprintf("CCI oversold at %.0f", v))
		} else if v > 100 {
			add(IndCCI, Sell, 0.5+(v-100)/400,
				fmt.Sprintf("CCI overbought at %.0f", v))
		}
	}

	if settings[IndADX] {
		di := indicators.ADX(highs, lows, closes, adxPeriod)
		snap[IndADX] = di.ADX
		snap["adxPlusDI"] = di.PlusDI
		snap["adxMinusDI"] = di.MinusDI
		if di.ADX >= 25 {
			strength := math.Min(0.9, 0.5+(di.ADX-25)/100)
			if di.PlusDI > di.MinusDI {
				add(IndADX, Buy, strength,
					fmt.Sprintf("ADX %.0f confirms uptrend (+DI %.1f > -DI %.1f)", di.ADX, di.PlusDI, di.MinusDI))
			} else if di.MinusDI > di.PlusDI {
				add(IndADX, Sell, strength,
					fmt.Sprintf("ADX %.0f confirms downtrend (-DI %.1f > +DI %.1f)", di.ADX, di.MinusDI, di.PlusDI))
			}
		}
	}

	if settings[IndOBV] {
		trend := indicators.OBVTrend(closes, volumes, obvSMAPeriod)
		snap[IndOBV] = float64(trend)
		if trend > 0 {
			add(IndOBV, Buy, 0.5, "OBV above its average (accumulation)")
		} else if trend < 0 {
			add(IndOBV, Sell, 0.5, "OBV below its average (distribution)")
		}
	}

	if settings[IndMovingAverage] {
		smaShort := indicators.SMA(closes, maShortPeriod)
		smaLong := indicators.SMA(closes, maLongPeriod)
		snap["smaShort"] = smaShort
		snap["smaLong"] = smaLong
		if smaShort != 0 {
			if price > smaShort {
				add(IndMovingAverage, Buy, 0.6,
					fmt.Sprintf("price %.2f above SMA%d %.2f", price, maShortPeriod, smaShort))
			} else if price < smaShort {
				add(IndMovingAverage, Sell, 0.6,
					fmt.Sprintf("price %.2f below SMA%d %.2f", price, maShortPeriod, smaShort))
			}
		}
		if smaShort != 0 && smaLong != 0 {
			if smaShort > smaLong {
				add(IndMovingAverage, Buy, 0.7,
					fmt.Sprintf("SMA%d above SMA%d (uptrend alignment)", maShortPeriod, maLongPeriod))
			} else if smaShort < smaLong {
				add(IndMovingAverage, Sell, 0.7,
					fmt.Sprintf("SMA%d below SMA%d (downtrend alignment)", maShortPeriod, maLongPeriod))
			}
		}
	}

	equilibriums := []struct {
		name string
		days int
	}{
		{IndEquilibrium30, 30},
		{IndEquilibrium60, 60},
		{IndEquilibrium90, 90},
	}
	for _, eq := range equilibriums {
		if !settings[eq.name] {
			continue
		}
		level := indicators.Equilibrium(opens, closes, eq.days)
		snap[eq.name] = level
		if level == 0 {
			continue
		}
		dev := (price - level) / level
		strength, tier := equilibriumTier(math.Abs(dev))
		if strength == 0 {
			continue
		}
		if dev < 0 {
			add(eq.name, Buy, strength,
				fmt.Sprintf("price %.1f%% below %d-day equilibrium %.2f (%s value zone)", -dev*100, eq.days, level, tier))
		} else {
			add(eq.name, Sell, strength,
				fmt.Sprintf("price %.1f%% above %d-day equilibrium %.2f (%s value zone)", dev*100, eq.days, level, tier))
		}
	}

	if settings[IndVolume] {
		ratio := indicators.VolumeRatio(volumes, volumePeriod)
		snap[IndVolume] = ratio
		if ratio >= 1.5 {
			last := series.Last()
			strength := 0.5 + math.Min(0.3, (ratio-1.5)/5)
			if last.Close > last.Open {
				add(IndVolume, Buy, strength,
					fmt.Sprintf("volume %.1fx average on an up candle", ratio))
			} else if last.Close < last.Open {
				add(IndVolume, Sell, strength,
					fmt.Sprintf("volume %.1fx average on a down candle", ratio))
			}
		}
	}

	return contribs, snap
}

// equilibriumTier maps an absolute deviation from the equilibrium level to
// the tiered strength: 5% -> 0.65, 8% -> 0.75, 10% -> 0.85.
func equilibriumTier(dev float64) (float64, string) {
	switch {
	case dev >= 0.10:
		return 0.85, "deep"
	case dev >= 0.08:
		return 0.75, "strong"
	case dev >= 0.05:
		return 0.65, "moderate"
	}
	return 0, ""
}
