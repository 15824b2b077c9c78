package liquidity

import (
	"math"
	"sort"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/market"
)

func (m *Mapper) clusterDistances(symbol string) []float64 {
	switch market.ClassifyPair(symbol) {
	case market.PairJPY:
		return m.cfg.ClusterPips.JPY
	case market.PairMetal:
		return m.cfg.ClusterPips.Metal
	case market.PairIndex:
		return m.cfg.ClusterPips.Index
	default:
		return m.cfg.ClusterPips.Major
	}
}

// clusters synthesizes stop pools at canonical distances beyond the recent
// extremes and grades each by confluence
func (m *Mapper) clusters(sig contracts.Signal, snap *contracts.MarketSnapshot, candles []contracts.Candle, sweeps []contracts.LiquidityEvent) []contracts.StopCluster {
	high, low := extremes(snap, candles)
	if high <= 0 || low <= 0 {
		return nil
	}

	levels := keyLevels(snap)
	var out []contracts.StopCluster
	for _, d := range m.clusterDistances(sig.Symbol) {
		offset := market.FromPips(sig.Symbol, d)
		out = append(out,
			m.cluster(sig, high+offset, true, levels, candles, sweeps),
			m.cluster(sig, low-offset, false, levels, candles, sweeps),
		)
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].DistancePips < out[b].DistancePips })
	return out
}

func (m *Mapper) cluster(sig contracts.Signal, price float64, above bool, levels []float64, candles []contracts.Candle, sweeps []contracts.LiquidityEvent) contracts.StopCluster {
	tol := market.FromPips(sig.Symbol, m.cfg.ConfluenceTolPips)

	strength := 0.25
	for _, lvl := range levels {
		if math.Abs(lvl-price) <= tol {
			strength += 0.25
			break
		}
	}
	if ok, _ := market.NearRoundNumber(sig.Symbol, price, m.cfg.ConfluenceTolPips); ok {
		strength += 0.25
	}
	if reactions(candles, price, tol, above) >= 2 {
		strength += 0.25
	}

	return contracts.StopCluster{
		Price:        price,
		Above:        above,
		DistancePips: math.Round(market.ToPips(sig.Symbol, math.Abs(price-sig.Entry))*10) / 10,
		Strength:     strength,
		Swept:        swept(candles, price, above, sweeps, tol),
	}
}

// reactions counts bars that probed the level and closed away from it
func reactions(candles []contracts.Candle, price, tol float64, above bool) int {
	count := 0
	for _, c := range candles {
		if above && c.High >= price-tol && c.Close < price-tol {
			count++
		}
		if !above && c.Low <= price+tol && c.Close > price+tol {
			count++
		}
	}
	return count
}

func swept(candles []contracts.Candle, price float64, above bool, sweeps []contracts.LiquidityEvent, tol float64) bool {
	for _, sw := range sweeps {
		if above && sw.Type == contracts.SweepHigh && sw.Level >= price-tol {
			return true
		}
		if !above && sw.Type == contracts.SweepLow && sw.Level <= price+tol {
			return true
		}
	}
	for _, c := range candles {
		if above && c.High >= price {
			return true
		}
		if !above && c.Low <= price {
			return true
		}
	}
	return false
}

// nearestAhead returns the closest cluster the trade must run into
func (m *Mapper) nearestAhead(sig contracts.Signal, clusters []contracts.StopCluster) *contracts.StopCluster {
	wantAbove := sig.Direction == contracts.DirectionBuy
	for k := range clusters {
		c := clusters[k]
		if c.Above != wantAbove {
			continue
		}
		if (wantAbove && c.Price <= sig.Entry) || (!wantAbove && c.Price >= sig.Entry) {
			continue
		}
		return &c
	}
	return nil
}

func keyLevels(snap *contracts.MarketSnapshot) []float64 {
	levels := append([]float64(nil), snap.BrokenLevels...)
	for _, tf := range snap.Timeframes {
		levels = append(levels, tf.KeyLevels...)
		levels = append(levels, tf.SwingHighs...)
		levels = append(levels, tf.SwingLows...)
	}
	return levels
}
