package market

import (
	"time"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
)

// IsWeekend reports whether the FX market is closed at t
// (Friday 22:00 UTC through Sunday 21:00 UTC)
func IsWeekend(t time.Time) bool {
	t = t.UTC()
	switch t.Weekday() {
	case time.Saturday:
		return true
	case time.Friday:
		return t.Hour() >= 22
	case time.Sunday:
		return t.Hour() < 21
	default:
		return false
	}
}

// SessionAt returns the trading session of t
func SessionAt(t time.Time) contracts.Session {
	if IsWeekend(t) {
		return contracts.SessionWeekend
	}
	h := t.UTC().Hour()
	switch {
	case h >= 7 && h < 12:
		return contracts.SessionLondon
	case h >= 12 && h < 16:
		return contracts.SessionOverlap
	case h >= 16 && h < 21:
		return contracts.SessionNewYork
	default:
		return contracts.SessionAsian
	}
}

// IsLowLiquidityHour reports the rollover window (21:00-01:00 UTC) or weekend
func IsLowLiquidityHour(t time.Time) bool {
	if IsWeekend(t) {
		return true
	}
	h := t.UTC().Hour()
	return h >= 21 || h < 1
}

// IsAsianPair reports whether symbol carries an Asia-Pacific currency
func IsAsianPair(symbol string) bool {
	for _, c := range Currencies(symbol) {
		switch c {
		case "JPY", "AUD", "NZD", "CNH", "SGD", "HKD":
			return true
		}
	}
	return false
}
