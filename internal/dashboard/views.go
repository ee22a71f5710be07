package dashboard

import (
	"crypto-tracker/internal/analysis/scoring"
	"crypto-tracker/internal/market"
	"crypto-tracker/internal/models"
	"crypto-tracker/internal/portfolio"
	"crypto-tracker/internal/simulator"
	"crypto-tracker/internal/stream"
)

// Snapshot returns an immutable copy of the market.
func (d *Dashboard) Snapshot() market.Snapshot {
	return d.state.Snapshot()
}

// MarketSnapshot returns every symbol's record in market order.
func (d *Dashboard) MarketSnapshot() []market.Entry {
	return d.state.Snapshot().Entries()
}

// Recommendations returns the current ranking.
func (d *Dashboard) Recommendations() []models.Recommendation {
	return d.engine.Rank(d.state.Snapshot())
}

// AllocationPlan returns the suggested allocation for the current ranking.
func (d *Dashboard) AllocationPlan() []models.AllocationSlot {
	return d.engine.AllocationPlan(d.state.Snapshot())
}

// Units returns how the engine scores magnitudes.
func (d *Dashboard) Units() scoring.UnitMode {
	return d.engine.Units()
}

// ActiveAlerts returns the alerts still being evaluated.
func (d *Dashboard) ActiveAlerts() []models.Alert {
	return d.alerts.Active()
}

// Alerts returns every alert including dismissed ones.
func (d *Dashboard) Alerts() []models.Alert {
	return d.alerts.All()
}

// AlertStats returns alert counters.
func (d *Dashboard) AlertStats() stream.AlertStats {
	return d.alerts.GetStats()
}

// PortfolioSummary values the ledger at the current market.
func (d *Dashboard) PortfolioSummary() portfolio.Summary {
	return d.ledger.Summary(d.state.Snapshot())
}

// Distribution returns one slice per holding.
func (d *Dashboard) Distribution() []portfolio.Slice {
	return d.ledger.Distribution(d.state.Snapshot())
}

// AggregatedDistribution returns one slice per symbol.
func (d *Dashboard) AggregatedDistribution() []portfolio.Slice {
	return d.ledger.Aggregated(d.state.Snapshot())
}

// PriceHistory returns the retained points of symbol, oldest first. An
// empty symbol returns every retained point.
func (d *Dashboard) PriceHistory(symbol string) []models.PricePoint {
	if symbol == "" {
		return d.history.All()
	}
	return d.history.Points(symbol)
}

// News returns the headlines, newest first.
func (d *Dashboard) News() []models.NewsItem {
	return d.feed.Items()
}

// NewsByImpact returns the headlines with the given impact.
func (d *Dashboard) NewsByImpact(impact models.Impact) []models.NewsItem {
	return d.feed.ByImpact(impact)
}

// ViewState returns the renderer-facing UI state.
func (d *Dashboard) ViewState() models.ViewState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.view
}

// Stats aggregates runtime counters.
type Stats struct {
	Simulator simulator.Stats   `json:"simulator"`
	Hub       stream.HubMetrics `json:"hub"`
	Alerts    stream.AlertStats `json:"alerts"`
	Holdings  int               `json:"holdings"`
}

// Stats returns runtime counters.
func (d *Dashboard) Stats() Stats {
	return Stats{
		Simulator: d.sim.Stats(),
		Hub:       d.hub.GetMetrics(),
		Alerts:    d.alerts.GetStats(),
		Holdings:  d.ledger.Len(),
	}
}
