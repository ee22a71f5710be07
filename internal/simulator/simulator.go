// Package simulator drives the random-walk price simulation.
package simulator

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"crypto-tracker/internal/market"
)

// RandSource supplies uniform draws in [0, 1).
type RandSource interface {
	Float64() float64
}

// ChangeMode selects how a tick moves a record's change percentage.
type ChangeMode string

const (
	// ChangeDrift walks change independently of the price.
	ChangeDrift ChangeMode = "drift"
	// ChangeTracked compounds change with the price move actually applied.
	ChangeTracked ChangeMode = "tracked"
)

const (
	// PriceStep is the width of the uniform price perturbation (+/-1%).
	PriceStep = 0.02
	// ChangeStep is the width of the uniform change perturbation (+/-0.25 points).
	ChangeStep = 0.5
)

// Config holds simulator configuration.
type Config struct {
	Interval   time.Duration
	ChangeMode ChangeMode
}

// DefaultConfig returns the default simulator configuration.
func DefaultConfig() Config {
	return Config{
		Interval:   3 * time.Second,
		ChangeMode: ChangeDrift,
	}
}

// Stats counts simulator activity.
type Stats struct {
	Ticks   uint64 `json:"ticks"`
	Skipped uint64 `json:"skipped"`
}

// Simulator advances a market.State on every tick. It is the state's only
// writer.
type Simulator struct {
	config Config
	state  *market.State
	logger zerolog.Logger

	randMu sync.Mutex
	rand   RandSource

	inFlight atomic.Bool
	ticks    atomic.Uint64
	skipped  atomic.Uint64
}

// New creates a simulator over state. A nil source uses a time-seeded
// math/rand generator.
func New(state *market.State, cfg Config, source RandSource, logger zerolog.Logger) *Simulator {
	if source == nil {
		source = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.ChangeMode == "" {
		cfg.ChangeMode = ChangeDrift
	}
	return &Simulator{
		config: cfg,
		state:  state,
		rand:   source,
		logger: logger.With().Str("component", "simulator").Logger(),
	}
}

// Interval returns the tick cadence.
func (s *Simulator) Interval() time.Duration {
	return s.config.Interval
}

// Step perturbs every symbol once. All deltas are drawn first and applied
// as a single batch, so readers never observe a partly advanced market.
// Callers needing at-most-one in-flight step use Tick.
func (s *Simulator) Step() {
	symbols := s.state.Symbols()
	moves := make([]market.Move, 0, len(symbols))

	s.randMu.Lock()
	for _, sym := range symbols {
		priceDelta := (s.rand.Float64() - 0.5) * PriceStep
		changeDelta := (s.rand.Float64() - 0.5) * ChangeStep
		moves = append(moves, market.Move{
			Symbol:      sym,
			PriceDelta:  priceDelta,
			ChangeDelta: changeDelta,
			Compound:    s.config.ChangeMode == ChangeTracked,
		})
	}
	s.randMu.Unlock()

	// Symbols come from the state itself, so the batch cannot miss.
	_ = s.state.ApplyBatch(moves)
}

// Tick runs one step unless another is in flight. It reports whether the
// step ran.
func (s *Simulator) Tick() bool {
	return s.TickWith(nil)
}

// Run ticks on the configured interval until ctx is done, calling onTick
// after every completed step. onTick runs inside the in-flight window so the
// next firing cannot overlap it.
func (s *Simulator) Run(ctx context.Context, onTick func()) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.TickWith(onTick)
		}
	}
}

// TickWith is Tick followed by onTick, both inside the in-flight window.
func (s *Simulator) TickWith(onTick func()) bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.logger.Warn().Msg("Tick skipped: previous tick still in flight")
		return false
	}
	defer s.inFlight.Store(false)

	s.Step()
	n := s.ticks.Add(1)
	s.logger.Debug().Uint64("tick", n).Msg("Market advanced")
	if onTick != nil {
		onTick()
	}
	return true
}

// Stats returns tick counters.
func (s *Simulator) Stats() Stats {
	return Stats{
		Ticks:   s.ticks.Load(),
		Skipped: s.skipped.Load(),
	}
}

// ConstSource always returns the same draw. 0.5 yields zero deltas.
type ConstSource float64

// Float64 implements RandSource.
func (c ConstSource) Float64() float64 {
	return float64(c)
}

// SequenceSource replays a fixed sequence of draws, cycling at the end.
type SequenceSource struct {
	values []float64
	pos    int
}

// NewSequenceSource creates a SequenceSource.
func NewSequenceSource(values ...float64) *SequenceSource {
	return &SequenceSource{values: values}
}

// Float64 implements RandSource.
func (s *SequenceSource) Float64() float64 {
	if len(s.values) == 0 {
		return 0.5
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}
