// Package portfolio keeps the append-only holdings ledger and derives its
// value and profit/loss from market snapshots.
package portfolio

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"crypto-tracker/internal/errors"
	"crypto-tracker/internal/logging"
	"crypto-tracker/internal/market"
	"crypto-tracker/internal/models"
)

var Hundred = decimal.NewFromInt(100)

// PriceSource resolves a symbol's current record.
type PriceSource interface {
	Get(symbol string) (models.MarketRecord, bool)
}

// Slice is one segment of the portfolio distribution.
type Slice struct {
	Symbol string          `json:"symbol" yaml:"symbol"`
	Value  decimal.Decimal `json:"value" yaml:"value"`
}

// Position is a holding valued at a snapshot.
type Position struct {
	models.Holding `yaml:",inline"`
	CurrentPrice   decimal.Decimal `json:"current_price" yaml:"current_price"`
	Value          decimal.Decimal `json:"value" yaml:"value"`
	PnL            decimal.Decimal `json:"pnl" yaml:"pnl"`
}

// Summary is the consolidated portfolio view.
type Summary struct {
	Positions       []Position      `json:"positions" yaml:"positions"`
	InvestedValue   decimal.Decimal `json:"invested_value" yaml:"invested_value"`
	CurrentValue    decimal.Decimal `json:"current_value" yaml:"current_value"`
	TotalPnL        decimal.Decimal `json:"total_pnl" yaml:"total_pnl"`
	TotalPnLPercent decimal.Decimal `json:"total_pnl_percent" yaml:"total_pnl_percent"`
}

// Ledger is the append-only list of holdings. Lots are never edited or
// removed.
type Ledger struct {
	prices PriceSource
	logger zerolog.Logger

	mu       sync.RWMutex
	holdings []models.Holding

	now func() time.Time
}

// NewLedger creates an empty ledger that prices new lots from prices.
func NewLedger(prices PriceSource, logger zerolog.Logger) *Ledger {
	return &Ledger{
		prices: prices,
		logger: logger.With().Str("component", "portfolio").Logger(),
		now:    time.Now,
	}
}

// AddHolding records a purchase of quantity units of symbol at its current
// price.
func (l *Ledger) AddHolding(symbol string, quantity float64) (models.Holding, error) {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return models.Holding{}, errors.NewValidationError("quantity", quantity, "must be a positive number")
	}
	rec, ok := l.prices.Get(symbol)
	if !ok {
		return models.Holding{}, errors.NewSymbolError("add holding", symbol)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return models.Holding{}, err
	}

	qty := decimal.NewFromFloat(quantity)
	price := decimal.NewFromFloat(rec.Price)
	h := models.Holding{
		ID:             id,
		Symbol:         symbol,
		Quantity:       qty,
		CostBasisPrice: price,
		CostBasisValue: qty.Mul(price),
		CreatedAt:      l.now(),
	}

	l.mu.Lock()
	l.holdings = append(l.holdings, h)
	l.mu.Unlock()

	logging.LogHolding(logging.WithOperation(l.logger, "add_holding"), id.String(), symbol, qty.String(), price.String())
	return h, nil
}

// Holdings returns every lot in insertion order.
func (l *Ledger) Holdings() []models.Holding {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Holding, len(l.holdings))
	copy(out, l.holdings)
	return out
}

// Len returns the number of lots.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.holdings)
}

// priceOf returns the snapshot price of h's symbol, or its cost basis price
// when the symbol is missing from the snapshot.
func priceOf(snapshot market.Snapshot, h models.Holding) decimal.Decimal {
	if p, ok := snapshot.Price(h.Symbol); ok {
		return decimal.NewFromFloat(p)
	}
	return h.CostBasisPrice
}

// CurrentValue sums every lot at its snapshot price.
func (l *Ledger) CurrentValue(snapshot market.Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, h := range l.Holdings() {
		total = total.Add(h.ValueAt(priceOf(snapshot, h)))
	}
	return total
}

// TotalPnL sums every lot's value at its snapshot price less its cost basis.
func (l *Ledger) TotalPnL(snapshot market.Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, h := range l.Holdings() {
		total = total.Add(h.PnLAt(priceOf(snapshot, h)))
	}
	return total
}

// Distribution returns one slice per lot, in insertion order. Two lots of the
// same symbol are two slices.
func (l *Ledger) Distribution(snapshot market.Snapshot) []Slice {
	holdings := l.Holdings()
	out := make([]Slice, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, Slice{Symbol: h.Symbol, Value: h.ValueAt(priceOf(snapshot, h))})
	}
	return out
}

// Aggregated returns one slice per symbol, ordered by first purchase.
func (l *Ledger) Aggregated(snapshot market.Snapshot) []Slice {
	var out []Slice
	index := make(map[string]int)
	for _, s := range l.Distribution(snapshot) {
		if i, ok := index[s.Symbol]; ok {
			out[i].Value = out[i].Value.Add(s.Value)
			continue
		}
		index[s.Symbol] = len(out)
		out = append(out, s)
	}
	return out
}

// Summary values every lot at snapshot and totals the ledger.
func (l *Ledger) Summary(snapshot market.Snapshot) Summary {
	holdings := l.Holdings()
	s := Summary{
		Positions:       make([]Position, 0, len(holdings)),
		InvestedValue:   decimal.Zero,
		CurrentValue:    decimal.Zero,
		TotalPnL:        decimal.Zero,
		TotalPnLPercent: decimal.Zero,
	}

	for _, h := range holdings {
		price := priceOf(snapshot, h)
		pos := Position{
			Holding:      h,
			CurrentPrice: price,
			Value:        h.ValueAt(price),
			PnL:          h.PnLAt(price),
		}
		s.Positions = append(s.Positions, pos)
		s.InvestedValue = s.InvestedValue.Add(h.CostBasisValue)
		s.CurrentValue = s.CurrentValue.Add(pos.Value)
		s.TotalPnL = s.TotalPnL.Add(pos.PnL)
	}

	if s.InvestedValue.IsPositive() {
		s.TotalPnLPercent = s.TotalPnL.Div(s.InvestedValue).Mul(Hundred)
	}
	return s
}
