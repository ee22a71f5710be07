package simulator

import (
	"sync"

	"crypto-tracker/internal/models"
)

// DefaultHistorySize is the number of points the rolling history keeps.
const DefaultHistorySize = 20

// History is a fixed-capacity ring buffer of price points. Points are tagged
// with their symbol; when the selected symbol changes, older points of other
// symbols age out as new ones arrive.
type History struct {
	mu       sync.RWMutex
	data     []models.PricePoint
	capacity int
	index    int // next write position
	size     int
}

// NewHistory creates a history with the given capacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{
		data:     make([]models.PricePoint, capacity),
		capacity: capacity,
	}
}

// Append adds a point, overwriting the oldest when full.
func (h *History) Append(p models.PricePoint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.data[h.index] = p
	h.index = (h.index + 1) % h.capacity
	if h.size < h.capacity {
		h.size++
	}
}

// All returns every retained point, oldest first.
func (h *History) All() []models.PricePoint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]models.PricePoint, 0, h.size)
	start := (h.index - h.size + h.capacity) % h.capacity
	for i := 0; i < h.size; i++ {
		out = append(out, h.data[(start+i)%h.capacity])
	}
	return out
}

// Points returns the retained points of symbol, oldest first.
func (h *History) Points(symbol string) []models.PricePoint {
	all := h.All()
	out := make([]models.PricePoint, 0, len(all))
	for _, p := range all {
		if p.Symbol == symbol {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of retained points.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

// Capacity returns the buffer capacity.
func (h *History) Capacity() int {
	return h.capacity
}
