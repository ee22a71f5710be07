package scoring

import (
	"crypto-tracker/internal/market"
	"crypto-tracker/internal/models"
)

type allocationSlot struct {
	percent  int
	fallback string
	reason   string
}

// Percentages sum to 100.
var allocationSlots = [...]allocationSlot{
	{35, "BTC", "Market leader with high stability"},
	{25, "ETH", "Smart-contract ecosystem"},
	{20, "BNB", "Exchange token with strong utility"},
	{15, "SOL", "High-performance blockchain"},
	{5, "ADA", "Research-driven development"},
}

// AllocationSize is the fixed number of slots in a plan.
const AllocationSize = len(allocationSlots)

// Allocate zips a ranking against the fixed slots. Missing ranks fall back
// to the slot's default symbol.
func Allocate(ranked []models.Recommendation) []models.AllocationSlot {
	plan := make([]models.AllocationSlot, AllocationSize)
	for i, slot := range allocationSlots {
		symbol := slot.fallback
		if i < len(ranked) && ranked[i].Symbol != "" {
			symbol = ranked[i].Symbol
		}
		plan[i] = models.AllocationSlot{
			Symbol:  symbol,
			Percent: slot.percent,
			Reason:  slot.reason,
		}
	}
	return plan
}

// AllocationPlan ranks the snapshot and allocates across the result. The
// plan ranks at least AllocationSize symbols whatever the configured top N,
// so fallbacks only fill slots the market cannot.
func (e *Engine) AllocationPlan(snapshot market.Snapshot) []models.AllocationSlot {
	return Allocate(e.rank(snapshot, max(e.topN, AllocationSize)))
}

// TotalPercent sums a plan's percentages.
func TotalPercent(plan []models.AllocationSlot) int {
	total := 0
	for _, slot := range plan {
		total += slot.Percent
	}
	return total
}
