package market

import "crypto-tracker/internal/models"

// Snapshot is a point-in-time copy of the market table. It is safe to share
// between goroutines; nothing mutates it after creation.
type Snapshot struct {
	entries []Entry
	index   map[string]int
}

// NewSnapshot builds a snapshot directly from entries, mostly for tests and
// for evaluating hypothetical markets.
func NewSnapshot(entries []Entry) Snapshot {
	snap := Snapshot{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if i, ok := snap.index[e.Symbol]; ok {
			snap.entries[i] = e
			continue
		}
		snap.index[e.Symbol] = len(snap.entries)
		snap.entries = append(snap.entries, e)
	}
	return snap
}

// Entries returns the entries in market order. The slice is a copy.
func (s Snapshot) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Get returns the record for symbol.
func (s Snapshot) Get(symbol string) (models.MarketRecord, bool) {
	i, ok := s.index[symbol]
	if !ok {
		return models.MarketRecord{}, false
	}
	return s.entries[i].Record, true
}

// Price returns symbol's price.
func (s Snapshot) Price(symbol string) (float64, bool) {
	rec, ok := s.Get(symbol)
	return rec.Price, ok
}

// Len returns the number of symbols.
func (s Snapshot) Len() int {
	return len(s.entries)
}
