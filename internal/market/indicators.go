package market

import (
	"math"
	"sort"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
)

// Closes extracts close prices
func Closes(candles []contracts.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// SMA returns the mean of the last period values
func SMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), true
}

// RSI calculates Wilder's Relative Strength Index over closes (oldest first)
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50.0 // Neutral
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// ATR returns the simple average true range of the last period candles
func ATR(candles []contracts.Candle, period int) float64 {
	if period <= 0 || len(candles) < 2 {
		return 0
	}
	start := len(candles) - period
	if start < 1 {
		start = 1
	}
	var sum float64
	n := 0
	for i := start; i < len(candles); i++ {
		c, prev := candles[i], candles[i-1]
		tr := math.Max(c.High-c.Low, math.Max(math.Abs(c.High-prev.Close), math.Abs(c.Low-prev.Close)))
		sum += tr
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Median returns the median of values, 0 when empty
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// PercentileRank returns the percentile (0-100) of value within history.
// Ties count half.
func PercentileRank(value float64, history []float64) float64 {
	if len(history) == 0 {
		return 50
	}
	var below, equal int
	for _, h := range history {
		switch {
		case h < value:
			below++
		case h == value:
			equal++
		}
	}
	return (float64(below) + 0.5*float64(equal)) / float64(len(history)) * 100
}

// HighLow returns the extremes of the candle window
func HighLow(candles []contracts.Candle) (float64, float64) {
	if len(candles) == 0 {
		return 0, 0
	}
	high, low := candles[0].High, candles[0].Low
	for _, c := range candles[1:] {
		high = math.Max(high, c.High)
		low = math.Min(low, c.Low)
	}
	return high, low
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Round1 rounds to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
