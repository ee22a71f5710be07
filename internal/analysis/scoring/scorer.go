// Package scoring ranks tracked symbols and derives a suggested allocation.
package scoring

import (
	"math"
	"sort"

	"crypto-tracker/internal/market"
	"crypto-tracker/internal/models"
)

// DefaultTopN is the number of symbols a ranking returns.
const DefaultTopN = 5

// Weights defines the weight of each component in the composite score.
type Weights struct {
	Volume    float64 `json:"volume" mapstructure:"volume"`
	MarketCap float64 `json:"market_cap" mapstructure:"market_cap"`
	Change    float64 `json:"change" mapstructure:"change"`
}

// DefaultWeights returns the default component weights.
func DefaultWeights() Weights {
	return Weights{
		Volume:    0.3,
		MarketCap: 0.4,
		Change:    0.3,
	}
}

// UnitMode selects how volume and market cap enter the score.
type UnitMode string

const (
	// UnitsLiteral scores the mantissa as written, so "520M" counts as 520
	// and "23.4B" as 23.4.
	UnitsLiteral UnitMode = "literal"
	// UnitsNormalized scores every magnitude in billions.
	UnitsNormalized UnitMode = "normalized"
)

// Config holds engine configuration.
type Config struct {
	Weights Weights
	Units   UnitMode
	TopN    int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Weights: DefaultWeights(),
		Units:   UnitsLiteral,
		TopN:    DefaultTopN,
	}
}

// Engine combines volume, market cap and change into a composite score.
// It holds no market state; every call works on the snapshot it is given.
type Engine struct {
	weights Weights
	units   UnitMode
	topN    int
}

// NewEngine creates an engine with the default configuration.
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultConfig())
}

// NewEngineWithConfig creates an engine with custom configuration.
func NewEngineWithConfig(cfg Config) *Engine {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.Units == "" {
		cfg.Units = UnitsLiteral
	}
	return &Engine{
		weights: cfg.Weights,
		units:   cfg.Units,
		topN:    cfg.TopN,
	}
}

// Units returns the engine's unit mode.
func (e *Engine) Units() UnitMode {
	return e.units
}

// Score calculates the composite score of one record.
func (e *Engine) Score(rec models.MarketRecord) float64 {
	volumeScore := e.magnitude(rec.Volume)
	marketCapScore := e.magnitude(rec.MarketCap)
	changeScore := ChangeScore(rec.Change)

	return volumeScore*e.weights.Volume +
		marketCapScore*e.weights.MarketCap +
		changeScore*e.weights.Change
}

func (e *Engine) magnitude(m models.Magnitude) float64 {
	if e.units == UnitsNormalized {
		return m.Billions()
	}
	return m.Value
}

// ChangeScore rewards gains over losses of the same size.
func ChangeScore(change float64) float64 {
	if change > 0 {
		return math.Abs(change) * 1.2
	}
	return math.Abs(change) * 0.8
}

// Classify maps a change percentage to a trend.
func Classify(change float64) models.Trend {
	switch {
	case change > 3:
		return models.TrendHot
	case change > 0:
		return models.TrendUp
	default:
		return models.TrendDown
	}
}

// ScoreAll scores every symbol of the snapshot, in market order.
func (e *Engine) ScoreAll(snapshot market.Snapshot) []models.Recommendation {
	entries := snapshot.Entries()
	out := make([]models.Recommendation, 0, len(entries))
	for _, entry := range entries {
		out = append(out, models.Recommendation{
			Symbol: entry.Symbol,
			Record: entry.Record,
			Score:  e.Score(entry.Record),
			Trend:  Classify(entry.Record.Change),
		})
	}
	return out
}

// Rank returns the top symbols by descending score. Ties keep market order.
func (e *Engine) Rank(snapshot market.Snapshot) []models.Recommendation {
	return e.rank(snapshot, e.topN)
}

func (e *Engine) rank(snapshot market.Snapshot, n int) []models.Recommendation {
	scored := e.ScoreAll(snapshot)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}
