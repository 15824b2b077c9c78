package market

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
)

// PairType groups instruments that share pip size and cluster spacing
type PairType string

const (
	PairMajor PairType = "major"
	PairJPY   PairType = "jpy"
	PairMetal PairType = "metal"
	PairIndex PairType = "index" // 지수 + 크립토
)

var indexCurrencies = map[string]string{
	"US30":   "USD",
	"NAS100": "USD",
	"SPX500": "USD",
	"US500":  "USD",
	"GER40":  "EUR",
	"DE40":   "EUR",
	"UK100":  "GBP",
	"JP225":  "JPY",
	"AUS200": "AUD",
}

// NormalizeSymbol upper-cases and strips separators ("eur/usd" → "EURUSD")
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.NewReplacer("/", "", "_", "", "-", "", ".", "").Replace(s)
}

// ClassifyPair returns the pair type of symbol
func ClassifyPair(symbol string) PairType {
	s := NormalizeSymbol(symbol)
	switch {
	case strings.HasPrefix(s, "XAU"), strings.HasPrefix(s, "XAG"):
		return PairMetal
	case isIndexOrCrypto(s):
		return PairIndex
	case strings.Contains(s, "JPY"):
		return PairJPY
	default:
		return PairMajor
	}
}

func isIndexOrCrypto(s string) bool {
	if _, ok := indexCurrencies[s]; ok {
		return true
	}
	return strings.HasPrefix(s, "BTC") || strings.HasPrefix(s, "ETH")
}

// PipSize returns the price increment of one pip
func PipSize(symbol string) float64 {
	s := NormalizeSymbol(symbol)
	switch ClassifyPair(s) {
	case PairJPY:
		return 0.01
	case PairMetal:
		if strings.HasPrefix(s, "XAG") {
			return 0.01
		}
		return 0.1
	case PairIndex:
		return 1.0
	default:
		return 0.0001
	}
}

// ToPips converts a price distance into pips
func ToPips(symbol string, distance float64) float64 {
	return distance / PipSize(symbol)
}

// FromPips converts pips into a price distance
func FromPips(symbol string, pips float64) float64 {
	return pips * PipSize(symbol)
}

// Currencies returns the currencies whose news moves symbol
func Currencies(symbol string) []string {
	s := NormalizeSymbol(symbol)
	if ccy, ok := indexCurrencies[s]; ok {
		return []string{ccy}
	}
	switch {
	case strings.HasPrefix(s, "XAU"), strings.HasPrefix(s, "XAG"),
		strings.HasPrefix(s, "BTC"), strings.HasPrefix(s, "ETH"):
		if len(s) >= 6 {
			return []string{s[:3], s[3:6]}
		}
		return []string{"USD"}
	case len(s) == 6:
		return []string{s[:3], s[3:]}
	default:
		return nil
	}
}

// HasCurrency reports whether ccy is one of the pair's currencies
func HasCurrency(symbol, ccy string) bool {
	for _, c := range Currencies(symbol) {
		if c == ccy {
			return true
		}
	}
	return false
}

// RoundNumberStepPips is the spacing of round-number levels
const RoundNumberStepPips = 50

// NearRoundNumber reports whether price sits within tolPips of a 00/50 level
func NearRoundNumber(symbol string, price, tolPips float64) (bool, float64) {
	if price <= 0 {
		return false, 0
	}
	pip := decimal.NewFromFloat(PipSize(symbol))
	step := pip.Mul(decimal.NewFromInt(RoundNumberStepPips))
	p := decimal.NewFromFloat(price)

	level := p.Div(step).Round(0).Mul(step)
	dist := p.Sub(level).Abs().Div(pip)

	lv, _ := level.Float64()
	d, _ := dist.Float64()
	return d <= tolPips, lv
}

// Psychological returns the nearest 100-pip level and its strength.
// x.x000 is major, x.x500 strong, x.x200/x.x800 medium, other hundreds minor.
func Psychological(symbol string, price float64) contracts.PsychologicalLevel {
	if price <= 0 {
		return contracts.PsychologicalLevel{Kind: contracts.PsychMinor}
	}
	pip := decimal.NewFromFloat(PipSize(symbol))
	hundred := pip.Mul(decimal.NewFromInt(100))
	p := decimal.NewFromFloat(price)

	hundreds := p.Div(hundred).Round(0).IntPart()
	level := decimal.NewFromInt(hundreds).Mul(hundred)

	mod := (hundreds * 100) % 1000
	if mod < 0 {
		mod += 1000
	}

	kind := contracts.PsychMinor
	switch mod {
	case 0:
		kind = contracts.PsychMajor
	case 500:
		kind = contracts.PsychStrong
	case 200, 800:
		kind = contracts.PsychMedium
	}

	lv, _ := level.Float64()
	dist, _ := p.Sub(level).Abs().Div(pip).Float64()

	return contracts.PsychologicalLevel{
		Level:        lv,
		Kind:         kind,
		DistancePips: dist,
	}
}
