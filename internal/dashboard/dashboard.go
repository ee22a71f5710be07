// Package dashboard wires the market, simulator, recommendation engine,
// alerts, portfolio and history into one object renderers talk to.
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"crypto-tracker/internal/analysis/scoring"
	"crypto-tracker/internal/logging"
	"crypto-tracker/internal/market"
	"crypto-tracker/internal/models"
	"crypto-tracker/internal/news"
	"crypto-tracker/internal/notify"
	"crypto-tracker/internal/portfolio"
	"crypto-tracker/internal/simulator"
	"crypto-tracker/internal/stream"
)

// Config holds dashboard configuration.
type Config struct {
	Seed          []market.Entry
	Simulator     simulator.Config
	Scoring       scoring.Config
	Alerts        stream.AlertPolicy
	Hub           stream.HubConfig
	HistorySize   int
	DefaultSymbol string
	Theme         models.Theme
}

// DefaultConfig returns the default dashboard configuration.
func DefaultConfig() Config {
	return Config{
		Seed:          market.DefaultSeed(),
		Simulator:     simulator.DefaultConfig(),
		Scoring:       scoring.DefaultConfig(),
		Hub:           stream.DefaultHubConfig(),
		HistorySize:   simulator.DefaultHistorySize,
		DefaultSymbol: "BTC",
		Theme:         models.ThemeLight,
	}
}

// Deps are the dashboard's pluggable collaborators. Zero values are valid.
type Deps struct {
	Rand     simulator.RandSource
	Notifier notify.Notifier
	Feed     *news.Feed
	Logger   zerolog.Logger
}

// Dashboard owns every piece of session state. It is safe for concurrent
// use; the tick is the market's only writer.
type Dashboard struct {
	logger zerolog.Logger

	state   *market.State
	sim     *simulator.Simulator
	engine  *scoring.Engine
	alerts  *stream.AlertMonitor
	ledger  *portfolio.Ledger
	history *simulator.History
	hub     *stream.Hub
	feed    *news.Feed

	mu       sync.RWMutex
	view     models.ViewState
	seq      uint64
	lastTick time.Time

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	now func() time.Time
}

// New builds a dashboard from cfg. An empty seed uses the built-in table; a
// default symbol absent from the seed falls back to the first seeded symbol.
func New(cfg Config, deps Deps) *Dashboard {
	if len(cfg.Seed) == 0 {
		cfg.Seed = market.DefaultSeed()
	}
	if cfg.Theme == "" {
		cfg.Theme = models.ThemeLight
	}

	logger := deps.Logger.With().Str("component", "dashboard").Logger()
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(deps.Logger)
	}
	feed := deps.Feed
	if feed == nil {
		feed = news.NewDefaultFeed()
	}

	state := market.NewState(cfg.Seed)
	selected := cfg.DefaultSymbol
	if !state.Has(selected) {
		selected = state.Symbols()[0]
	}

	return &Dashboard{
		logger:  logger,
		state:   state,
		sim:     simulator.New(state, cfg.Simulator, deps.Rand, deps.Logger),
		engine:  scoring.NewEngineWithConfig(cfg.Scoring),
		alerts:  stream.NewAlertMonitor(state, notifier, cfg.Alerts, deps.Logger),
		ledger:  portfolio.NewLedger(state, deps.Logger),
		history: simulator.NewHistory(cfg.HistorySize),
		hub:     stream.NewHubWithConfig(cfg.Hub),
		feed:    feed,
		view: models.ViewState{
			Theme:      cfg.Theme,
			ActiveView: models.ViewTracker,
			Selected:   selected,
		},
		now: time.Now,
	}
}

// Tick runs one simulation cycle now. It reports false when another cycle is
// still in flight.
func (d *Dashboard) Tick(ctx context.Context) bool {
	return d.sim.TickWith(func() { d.afterStep(ctx) })
}

// afterStep derives every view from the freshly stepped market and
// publishes the result. It runs inside the simulator's in-flight window.
func (d *Dashboard) afterStep(ctx context.Context) {
	now := d.now()
	d.mu.Lock()
	d.seq++
	seq := d.seq
	selected := d.view.Selected
	d.lastTick = now
	d.mu.Unlock()

	snap := d.state.Snapshot()

	var point *models.PricePoint
	if price, ok := snap.Price(selected); ok {
		p := models.PricePoint{Symbol: selected, Price: price, Time: now}
		d.history.Append(p)
		point = &p
	}

	ctx = logging.WithLogger(ctx, d.logger.With().Uint64("seq", seq).Logger())
	triggered := d.alerts.Check(ctx, snap)
	recs := d.engine.Rank(snap)

	d.hub.Publish(stream.Update{
		Seq:             seq,
		Time:            now,
		Market:          snap.Entries(),
		Recommendations: recs,
		Allocation:      d.engine.AllocationPlan(snap),
		Triggered:       triggered,
		Selected:        selected,
		Point:           point,
	})

	var price float64
	if point != nil {
		price = point.Price
	}
	logging.LogTick(d.logger, seq, selected, price, len(triggered))
}

// Start runs the hub and the tick loop in the background until ctx is done
// or Stop is called. Starting a running dashboard is a no-op.
func (d *Dashboard) Start(ctx context.Context) {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	if d.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.hub.Start(runCtx)

	go func(done chan struct{}) {
		defer close(done)
		d.sim.Run(runCtx, func() { d.afterStep(runCtx) })
	}(d.done)

	d.logger.Info().Dur("interval", d.sim.Interval()).Msg("Dashboard started")
}

// Stop halts the tick loop, waits for it to exit and closes every
// subscriber channel.
func (d *Dashboard) Stop() {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	if d.cancel == nil {
		d.hub.Stop()
		return
	}

	d.cancel()
	<-d.done
	d.cancel = nil
	d.done = nil
	d.hub.Stop()

	d.logger.Info().Msg("Dashboard stopped")
}

// Running reports whether the tick loop is active.
func (d *Dashboard) Running() bool {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	return d.cancel != nil
}

// LastTick returns when the most recent cycle ran, or the zero time.
func (d *Dashboard) LastTick() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastTick
}

// Interval returns the tick cadence.
func (d *Dashboard) Interval() time.Duration {
	return d.sim.Interval()
}

// Subscribe returns a channel of per-tick updates and a func that cancels
// the subscription.
func (d *Dashboard) Subscribe() (<-chan stream.Update, func()) {
	return d.hub.Subscribe()
}

// StartHub runs update delivery without the timed tick loop, for callers
// that drive Tick themselves.
func (d *Dashboard) StartHub(ctx context.Context) {
	d.hub.Start(ctx)
}
