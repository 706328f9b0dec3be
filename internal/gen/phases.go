package gen

import (
	"fmt"

	"l3gen/internal/domain"
)

// Phase 1 ladder geometry. The buy ladder descends from just below the
// reference price, the sell ladder ascends from just above it, leaving a
// one-point spread between 42000 and 42001.
const (
	seedBuyAnchor    = 41950.0
	seedBuyLevels    = 101
	seedSellAnchor   = 42001.0
	seedSellLevels   = 99
	seedLevelSpacing = 0.5
)

// phaseSeed builds initial two-sided resting liquidity. ADD only: walk the
// buy ladder, then the sell ladder, 2-5 orders per level, and top up at
// random ladder levels if the ladders are exhausted before the target.
func (g *Generator) phaseSeed() error {
	target := g.params.Phase1Target
	count := 0

	buyLevels := make([]float64, seedBuyLevels)
	for i := range buyLevels {
		buyLevels[i] = seedBuyAnchor + float64(i)*seedLevelSpacing
	}
	sellLevels := make([]float64, seedSellLevels)
	for i := range sellLevels {
		sellLevels[i] = seedSellAnchor + float64(i)*seedLevelSpacing
	}

	for _, lvl := range buyLevels {
		n := g.randInt(2, 5)
		for i := 0; i < n; i++ {
			if count >= target {
				return nil
			}
			g.emitAdd(domain.SideBuy, lvl, g.randInt(1, 20))
			count++
		}
	}
	for _, lvl := range sellLevels {
		n := g.randInt(2, 5)
		for i := 0; i < n; i++ {
			if count >= target {
				return nil
			}
			g.emitAdd(domain.SideSell, lvl, g.randInt(1, 20))
			count++
		}
	}

	for count < target {
		if g.coin(0.5) {
			lvl := buyLevels[g.rng.Intn(len(buyLevels))]
			g.emitAdd(domain.SideBuy, lvl, g.randInt(1, 20))
		} else {
			lvl := sellLevels[g.rng.Intn(len(sellLevels))]
			g.emitAdd(domain.SideSell, lvl, g.randInt(1, 20))
		}
		count++
	}
	return nil
}

// phaseMicroNoise churns the book around the seeded spread: 60% ADD (with
// a 15% chance of pricing on the aggressive side of the spread), 30%
// CANCEL of a uniformly chosen active order, 10% TRADE near the midpoint.
func (g *Generator) phaseMicroNoise() error {
	const (
		priceMin = 41950.0
		priceMax = 42050.0
	)
	target := g.params.Phase2Target
	count := 0
	skips := 0

	for count < target {
		r := g.rng.Float64()
		switch {
		case r < 0.60:
			side := domain.SideSell
			if g.coin(0.5) {
				side = domain.SideBuy
			}
			var price float64
			if side == domain.SideBuy {
				if g.coin(0.15) {
					price = halfTick(g.uniform(42001.0, 42010.0)) // crosses the ask range
				} else {
					price = halfTick(g.uniform(priceMin, 42000.0))
				}
			} else {
				if g.coin(0.15) {
					price = halfTick(g.uniform(41990.0, 42000.0)) // crosses the bid range
				} else {
					price = halfTick(g.uniform(42001.0, priceMax))
				}
			}
			g.emitAdd(side, price, g.randInt(1, 20))
			count++
			skips = 0
		case r < 0.90:
			ids := g.tracker.ActiveIDs()
			if len(ids) == 0 {
				if err := g.skip(&skips); err != nil {
					return err
				}
				continue
			}
			g.emitCancel(ids[g.rng.Intn(len(ids))])
			count++
			skips = 0
		default:
			side := domain.SideSell
			if g.coin(0.5) {
				side = domain.SideBuy
			}
			price := halfTick(g.uniform(42000.0, 42001.0))
			g.emitTrade(side, price, g.randInt(1, 10))
			count++
			skips = 0
		}
	}
	return nil
}

// phaseTrend drifts the reference price linearly from 42000 to 42100 over
// the phase. Buy-heavy ADD flow skewed toward and above the moving
// reference supports the markup.
func (g *Generator) phaseTrend() error {
	const (
		midStart = 42000.0
		midEnd   = 42100.0
	)
	target := g.params.Phase3Target
	count := 0
	skips := 0

	for count < target {
		progress := float64(count) / float64(target)
		mid := midStart + (midEnd-midStart)*progress

		r := g.rng.Float64()
		switch {
		case r < 0.55:
			side := domain.SideSell
			if g.coin(0.55) {
				side = domain.SideBuy
			}
			var price float64
			if side == domain.SideBuy {
				if g.coin(0.35) {
					price = halfTick(g.uniform(mid, mid+15.0))
				} else {
					price = halfTick(g.uniform(mid-50.0, mid))
				}
			} else {
				if g.coin(0.25) {
					price = halfTick(g.uniform(mid-10.0, mid))
				} else {
					price = halfTick(g.uniform(mid, mid+50.0))
				}
			}
			g.emitAdd(side, g.clamp(price), g.randInt(1, 50))
			count++
			skips = 0
		case r < 0.80:
			ids := g.tracker.ActiveIDs()
			if len(ids) == 0 {
				if err := g.skip(&skips); err != nil {
					return err
				}
				continue
			}
			g.emitCancel(ids[g.rng.Intn(len(ids))])
			count++
			skips = 0
		default:
			side := domain.SideSell
			if g.coin(0.55) {
				side = domain.SideBuy
			}
			price := g.clamp(halfTick(g.uniform(mid-2.0, mid+2.0)))
			g.emitTrade(side, price, g.randInt(1, 30))
			count++
			skips = 0
		}
	}
	return nil
}

// phaseConsolidate ranges around a fixed elevated reference. Buys rest
// below it and sells above it, each with an 8% chance of poking through to
// the opposite side.
func (g *Generator) phaseConsolidate() error {
	const mid = 42050.0
	target := g.params.Phase4Target
	count := 0
	skips := 0

	for count < target {
		r := g.rng.Float64()
		switch {
		case r < 0.65:
			side := domain.SideSell
			if g.coin(0.5) {
				side = domain.SideBuy
			}
			var price float64
			if side == domain.SideBuy {
				price = halfTick(g.uniform(mid-50.0, mid))
				if g.coin(0.08) {
					price = halfTick(g.uniform(mid, mid+5.0))
				}
			} else {
				price = halfTick(g.uniform(mid+0.5, mid+50.0))
				if g.coin(0.08) {
					price = halfTick(g.uniform(mid-5.0, mid))
				}
			}
			g.emitAdd(side, g.clamp(price), g.randInt(1, 20))
			count++
			skips = 0
		case r < 0.90:
			ids := g.tracker.ActiveIDs()
			if len(ids) == 0 {
				if err := g.skip(&skips); err != nil {
					return err
				}
				continue
			}
			g.emitCancel(ids[g.rng.Intn(len(ids))])
			count++
			skips = 0
		default:
			side := domain.SideSell
			if g.coin(0.5) {
				side = domain.SideBuy
			}
			price := g.clamp(halfTick(g.uniform(mid-1.0, mid+1.0)))
			g.emitTrade(side, price, g.randInt(1, 10))
			count++
			skips = 0
		}
	}
	return nil
}

// skip records one retried iteration. A skipped iteration emits nothing,
// advances no clock, and does not count against the phase target. The
// consecutive-skip cap turns a tracker that never refills into a clean
// abort instead of an infinite loop.
func (g *Generator) skip(consecutive *int) error {
	g.stats.Skips++
	*consecutive++
	if *consecutive >= g.params.MaxSkips {
		return fmt.Errorf("%d consecutive empty-tracker retries: %w",
			*consecutive, domain.ErrNoActiveOrders)
	}
	return nil
}
