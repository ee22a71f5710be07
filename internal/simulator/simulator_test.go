package simulator

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crypto-tracker/internal/market"
	"crypto-tracker/internal/models"
)

func newTestSimulator(source RandSource, mode ChangeMode) (*Simulator, *market.State) {
	state := market.NewState(market.DefaultSeed())
	sim := New(state, Config{Interval: 5 * time.Millisecond, ChangeMode: mode}, source, zerolog.Nop())
	return sim, state
}

func TestSimulator_ZeroDeltaLeavesMarketUnchanged(t *testing.T) {
	sim, state := newTestSimulator(ConstSource(0.5), ChangeDrift)
	before := state.All()

	for i := 0; i < 5; i++ {
		require.True(t, sim.Tick())
	}

	assert.Equal(t, before, state.All())
	assert.Equal(t, uint64(5), sim.Stats().Ticks)
}

func TestSimulator_StepUsesBoundedDeltas(t *testing.T) {
	// One price draw and one change draw per symbol, in market order.
	sim, state := newTestSimulator(NewSequenceSource(1.0, 1.0, 0.0, 0.0), ChangeDrift)

	sim.Step()

	btc, _ := state.Get("BTC")
	assert.InDelta(t, 43250.50*1.01, btc.Price, 1e-6)
	assert.InDelta(t, 2.75, btc.Change, 1e-9)

	eth, _ := state.Get("ETH")
	assert.InDelta(t, 2650.25*0.99, eth.Price, 1e-6)
	assert.InDelta(t, -1.45, eth.Change, 1e-9)
}

func TestSimulator_TrackedChangeFollowsPrice(t *testing.T) {
	sim, state := newTestSimulator(NewSequenceSource(1.0, 0.0), ChangeTracked)

	sim.Step()

	btc, _ := state.Get("BTC")
	assert.InDelta(t, 43250.50*1.01, btc.Price, 1e-6)
	assert.InDelta(t, (1.025*1.01-1)*100, btc.Change, 1e-9)
}

func TestSimulator_TickIsNotReentrant(t *testing.T) {
	sim, _ := newTestSimulator(ConstSource(0.5), ChangeDrift)

	var nested bool
	ran := sim.TickWith(func() {
		nested = sim.Tick()
	})

	assert.True(t, ran)
	assert.False(t, nested)
	assert.Equal(t, Stats{Ticks: 1, Skipped: 1}, sim.Stats())
}

func TestSimulator_SnapshotsSeeWholeTicks(t *testing.T) {
	// A constant draw of 1.0 scales every price by the same factor, so any
	// price ratio is fixed unless a reader lands inside a tick.
	sim, state := newTestSimulator(ConstSource(1.0), ChangeTracked)
	seed := state.Snapshot()
	btc0, _ := seed.Price("BTC")
	eth0, _ := seed.Price("ETH")
	want := btc0 / eth0

	done := make(chan struct{})
	var torn, compoundMismatch atomic.Int64
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			snap := state.Snapshot()
			btc, _ := snap.Price("BTC")
			eth, _ := snap.Price("ETH")
			if math.Abs(btc/eth/want-1) > 1e-9 {
				torn.Add(1)
			}
			rec, _ := snap.Get("BTC")
			implied := (1.025*(btc/btc0) - 1) * 100
			if math.Abs(rec.Change/implied-1) > 1e-9 {
				compoundMismatch.Add(1)
			}
		}
	}()

	for i := 0; i < 500; i++ {
		sim.Step()
	}
	<-done

	assert.Zero(t, torn.Load(), "snapshot observed a partly applied tick")
	assert.Zero(t, compoundMismatch.Load(), "snapshot observed price without its change")
}

func TestSimulator_RunStopsOnCancel(t *testing.T) {
	sim, _ := newTestSimulator(nil, ChangeDrift)

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64
	done := make(chan struct{})
	go func() {
		sim.Run(ctx, func() {
			if calls.Add(1) == 3 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.GreaterOrEqual(t, calls.Load(), int64(3))
}

// Property: every draw in [0,1) keeps the per-tick price move within +/-1%.
func TestProperty_PriceMoveBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("one tick moves price by at most 1%", prop.ForAll(
		func(draw float64) bool {
			sim, state := newTestSimulator(ConstSource(draw), ChangeDrift)
			before := state.All()
			sim.Step()
			for i, e := range state.All() {
				ratio := e.Record.Price / before[i].Record.Price
				if ratio < 0.99-1e-12 || ratio > 1.01+1e-12 {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0, 0.999999),
	))

	properties.TestingRun(t)
}

func TestHistory_CapsAtCapacity(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		h.Append(models.PricePoint{Symbol: "BTC", Price: float64(i), Time: base.Add(time.Duration(i) * time.Second)})
	}

	points := h.Points("BTC")
	require.Len(t, points, DefaultHistorySize)
	assert.Equal(t, 5.0, points[0].Price)
	assert.Equal(t, 24.0, points[len(points)-1].Price)
}

func TestHistory_PointsFiltersBySymbol(t *testing.T) {
	h := NewHistory(4)

	h.Append(models.PricePoint{Symbol: "BTC", Price: 1})
	h.Append(models.PricePoint{Symbol: "ETH", Price: 2})
	h.Append(models.PricePoint{Symbol: "BTC", Price: 3})

	assert.Len(t, h.Points("BTC"), 2)
	assert.Len(t, h.Points("ETH"), 1)
	assert.Empty(t, h.Points("SOL"))
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 4, h.Capacity())
}
