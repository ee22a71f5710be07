// Package market holds the authoritative in-memory table of market data.
package market

import (
	"math"
	"sync"

	"crypto-tracker/internal/errors"
	"crypto-tracker/internal/models"
)

// MinPrice is the floor every price is held at.
const MinPrice = 0.001

// Entry pairs a symbol with its record.
type Entry struct {
	Symbol string              `json:"symbol" yaml:"symbol"`
	Record models.MarketRecord `json:"record" yaml:"record"`
}

// State is the market table. The set of symbols is fixed at construction;
// records are mutated in place by Apply.
type State struct {
	mu      sync.RWMutex
	order   []string
	records map[string]*models.MarketRecord
}

// NewState creates a market table from seed entries. Iteration order is the
// seed order; a repeated symbol keeps its first position and last record.
func NewState(seed []Entry) *State {
	s := &State{
		order:   make([]string, 0, len(seed)),
		records: make(map[string]*models.MarketRecord, len(seed)),
	}
	for _, e := range seed {
		rec := e.Record
		rec.Price = math.Max(MinPrice, rec.Price)
		if _, ok := s.records[e.Symbol]; !ok {
			s.order = append(s.order, e.Symbol)
		}
		s.records[e.Symbol] = &rec
	}
	return s
}

// Get returns the record for symbol.
func (s *State) Get(symbol string) (models.MarketRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[symbol]
	if !ok {
		return models.MarketRecord{}, false
	}
	return *rec, true
}

// Has reports whether symbol is tracked.
func (s *State) Has(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[symbol]
	return ok
}

// All returns every entry in insertion order.
func (s *State) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.order))
	for _, sym := range s.order {
		entries = append(entries, Entry{Symbol: sym, Record: *s.records[sym]})
	}
	return entries
}

// Symbols returns the tracked symbols in insertion order.
func (s *State) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of tracked symbols.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Move is one symbol's share of a batch.
type Move struct {
	Symbol      string
	PriceDelta  float64
	ChangeDelta float64
	// Compound replaces ChangeDelta: change is compounded with the price
	// move actually applied, after the floor.
	Compound bool
}

// Apply moves symbol's price by priceDelta (a fraction) and its change by
// changeDelta (percentage points). The price never drops below MinPrice.
func (s *State) Apply(symbol string, priceDelta, changeDelta float64) error {
	return s.ApplyBatch([]Move{{Symbol: symbol, PriceDelta: priceDelta, ChangeDelta: changeDelta}})
}

// ApplyBatch applies every move under one write lock, so readers see either
// none or all of them. Unknown symbols are rejected before anything changes.
func (s *State) ApplyBatch(moves []Move) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range moves {
		if _, ok := s.records[m.Symbol]; !ok {
			return errors.NewSymbolError("apply", m.Symbol)
		}
	}
	for _, m := range moves {
		rec := s.records[m.Symbol]
		before := rec.Price
		rec.Price = math.Max(MinPrice, rec.Price*(1+m.PriceDelta))
		if m.Compound {
			moved := rec.Price/before - 1
			rec.Change = ((1+rec.Change/100)*(1+moved) - 1) * 100
			continue
		}
		rec.Change += m.ChangeDelta
	}
	return nil
}

// Snapshot returns an immutable copy of the whole table.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		entries: make([]Entry, 0, len(s.order)),
		index:   make(map[string]int, len(s.order)),
	}
	for i, sym := range s.order {
		snap.entries = append(snap.entries, Entry{Symbol: sym, Record: *s.records[sym]})
		snap.index[sym] = i
	}
	return snap
}
