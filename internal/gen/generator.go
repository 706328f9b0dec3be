package gen

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/shopspring/decimal"

	"l3gen/internal/domain"
)

// Params holds every knob of one generation run. A given (seed, Params)
// pair always yields the same event sequence.
type Params struct {
	Seed           int64
	StartTimestamp int64 // nanoseconds
	TimestampStep  int64 // nanoseconds per event

	MinPrice float64
	MaxPrice float64

	Phase1Target int
	Phase2Target int
	Phase3Target int
	Phase4Target int

	// Acceptable range for the total emitted row count. Skipped
	// cancel/trade iterations against an empty tracker reduce the
	// realized count below the phase-target sum.
	ToleranceMin int
	ToleranceMax int

	// MaxSkips bounds consecutive skip-without-counting iterations so a
	// pathological configuration (e.g. a seeding phase that leaves no
	// resting orders) cannot loop forever.
	MaxSkips int
}

// DefaultParams returns the canonical BTC-USDT sample configuration.
func DefaultParams() Params {
	return Params{
		Seed:           42,
		StartTimestamp: 1704067200000000000, // 2024-01-01T00:00:00Z
		TimestampStep:  100_000,
		MinPrice:       41000.0,
		MaxPrice:       43000.0,
		Phase1Target:   500,
		Phase2Target:   2000,
		Phase3Target:   1000,
		Phase4Target:   1500,
		ToleranceMin:   4900,
		ToleranceMax:   5100,
		MaxSkips:       1_000_000,
	}
}

// Stats counts what one run actually emitted.
type Stats struct {
	Adds    int
	Cancels int
	Trades  int
	Skips   int // iterations retried because the tracker was empty
}

// Generator produces a self-consistent L3 event log in four market
// regimes: seeding, micro-noise, trending markup, consolidation. All
// stochastic decisions draw from a single seeded source in a fixed order,
// so runs are reproducible byte for byte.
type Generator struct {
	params  Params
	rng     *rand.Rand
	clock   *Clock
	tracker *Tracker
	events  []domain.Event
	stats   Stats
	log     *slog.Logger
}

// New creates a generator with its own seeded random stream. The stream is
// seeded exactly once; re-seeding mid-run would break reproducibility.
func New(params Params, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		params:  params,
		rng:     rand.New(rand.NewSource(params.Seed)),
		clock:   NewClock(params.StartTimestamp, params.TimestampStep),
		tracker: NewTracker(),
		events:  make([]domain.Event, 0, params.totalTarget()),
		log:     logger,
	}
}

func (p Params) totalTarget() int {
	return p.Phase1Target + p.Phase2Target + p.Phase3Target + p.Phase4Target
}

// Run executes the four phases in order over the shared state, then runs
// the invariant validator. The returned slice is the full ordered event
// log. Any error is a logic defect, never a transient condition.
func (g *Generator) Run() ([]domain.Event, error) {
	phases := []struct {
		name string
		fn   func() error
	}{
		{"seeding", g.phaseSeed},
		{"micro_noise", g.phaseMicroNoise},
		{"trending_markup", g.phaseTrend},
		{"consolidation", g.phaseConsolidate},
	}

	for i, p := range phases {
		if err := p.fn(); err != nil {
			return nil, fmt.Errorf("phase %d (%s): %w", i+1, p.name, err)
		}
		g.log.Info("phase complete",
			slog.String("phase", p.name),
			slog.Int("rows", len(g.events)),
			slog.Int("active", g.tracker.ActiveCount()),
			slog.Int("buys", g.tracker.BuyCount()),
			slog.Int("sells", g.tracker.SellCount()))
	}

	if err := Validate(g.events, g.tracker, g.params); err != nil {
		return nil, err
	}

	counts := Tabulate(g.events)
	g.log.Info("generation complete",
		slog.Int("rows", len(g.events)),
		slog.Int("adds", counts.Adds),
		slog.Int("cancels", counts.Cancels),
		slog.Int("trades", counts.Trades),
		slog.Int("skips", g.stats.Skips))

	return g.events, nil
}

// Stats returns the emission counters of the run so far.
func (g *Generator) Stats() Stats {
	return g.stats
}

// Tracker exposes the order state for post-run inspection.
func (g *Generator) Tracker() *Tracker {
	return g.tracker
}

// ---- emission primitives ----
// Each emits exactly one row and consumes exactly one clock tick.

func (g *Generator) emitAdd(side string, price float64, quantity int) {
	p := decimal.NewFromFloat(price)
	o := g.tracker.Add(side, p, quantity)
	g.events = append(g.events, domain.Event{
		Timestamp: g.clock.Tick(),
		Type:      domain.EventAdd,
		OrderID:   o.ID,
		Side:      side,
		Price:     p,
		Quantity:  quantity,
	})
	g.stats.Adds++
}

func (g *Generator) emitCancel(id int64) {
	o := g.tracker.Cancel(id)
	g.events = append(g.events, domain.Event{
		Timestamp: g.clock.Tick(),
		Type:      domain.EventCancel,
		OrderID:   id,
		Price:     o.Price,
		Quantity:  o.Quantity,
	})
	g.stats.Cancels++
}

func (g *Generator) emitTrade(side string, price float64, quantity int) {
	g.events = append(g.events, domain.Event{
		Timestamp: g.clock.Tick(),
		Type:      domain.EventTrade,
		Side:      side,
		Price:     decimal.NewFromFloat(price),
		Quantity:  quantity,
	})
	g.stats.Trades++
}

// ---- draw primitives ----
// Kept small and named so that the draw order per iteration stays obvious;
// that order is the determinism contract.

// randInt draws a uniform integer in [lo, hi] inclusive.
func (g *Generator) randInt(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

// uniform draws a uniform real in [lo, hi).
func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// coin reports true with probability p.
func (g *Generator) coin(p float64) bool {
	return g.rng.Float64() < p
}

// halfTick snaps a price to the 0.5 grid.
func halfTick(x float64) float64 {
	return math.Round(x*2) / 2
}

// clamp bounds a price to the global window.
func (g *Generator) clamp(x float64) float64 {
	return math.Max(g.params.MinPrice, math.Min(g.params.MaxPrice, x))
}
