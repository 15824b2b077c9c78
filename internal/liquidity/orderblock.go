package liquidity

import (
	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/market"
)

const followThroughBars = 3

// orderBlock finds the most recent opposite-colored candle that preceded a
// move of at least OrderBlockMult times its body in the trade direction
func (m *Mapper) orderBlock(candles []contracts.Candle, dir contracts.Direction) *contracts.OrderBlock {
	n := len(candles)
	if n < 3 {
		return nil
	}
	bullish := dir == contracts.DirectionBuy

	stop := n - m.cfg.OrderBlockLookback
	if stop < 0 {
		stop = 0
	}
	for k := n - 2; k >= stop; k-- {
		c := candles[k]
		body := c.Body()
		if body <= 0 {
			continue
		}
		if bullish && !c.IsBearish() || !bullish && !c.IsBullish() {
			continue
		}

		end := k + 1 + followThroughBars
		if end > n {
			end = n
		}
		next := candles[k+1 : end]

		var move float64
		if bullish {
			hi, _ := market.HighLow(next)
			move = hi - c.Open
		} else {
			_, lo := market.HighLow(next)
			move = c.Open - lo
		}
		if move < m.cfg.OrderBlockMult*body {
			continue
		}

		ob := &contracts.OrderBlock{
			High:     c.High,
			Low:      c.Low,
			Bullish:  bullish,
			Strength: market.Clamp(move/(2*m.cfg.OrderBlockMult*body), 0, 1),
			BarsAgo:  n - 1 - k,
		}
		markRetest(ob, candles[k+1:])
		return ob
	}
	return nil
}

// markRetest: price came back into the zone and held (retested) or closed
// through it (mitigated)
func markRetest(ob *contracts.OrderBlock, after []contracts.Candle) {
	if len(after) < 2 {
		return
	}
	for _, c := range after[1:] {
		if ob.Bullish {
			if c.Close < ob.Low {
				ob.Mitigated = true
				return
			}
			if c.Low <= ob.High {
				ob.Retested = true
			}
		} else {
			if c.Close > ob.High {
				ob.Mitigated = true
				return
			}
			if c.High >= ob.Low {
				ob.Retested = true
			}
		}
	}
}
