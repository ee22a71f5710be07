// Package stream provides alert evaluation and fan-out of market updates.
package stream

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"crypto-tracker/internal/errors"
	"crypto-tracker/internal/logging"
	"crypto-tracker/internal/market"
	"crypto-tracker/internal/models"
	"crypto-tracker/internal/notify"
)

// PriceSource resolves a symbol's current record.
type PriceSource interface {
	Get(symbol string) (models.MarketRecord, bool)
}

// AlertPolicy controls what happens to an alert once it triggers.
type AlertPolicy struct {
	// AutoDismissOnTrigger deactivates an alert after its first trigger.
	// When false the alert stays active and re-triggers on every check
	// while its condition holds.
	AutoDismissOnTrigger bool
}

// Evaluate returns the alerts satisfied by snapshot, in input order. An alert
// whose symbol is absent from the snapshot never triggers.
func Evaluate(snapshot market.Snapshot, alerts []models.Alert) []models.Alert {
	var triggered []models.Alert
	for _, alert := range alerts {
		price, ok := snapshot.Price(alert.Symbol)
		if !ok {
			continue
		}
		if alert.Satisfied(price) {
			triggered = append(triggered, alert)
		}
	}
	return triggered
}

// AlertMonitor holds user alerts and checks them against market snapshots.
type AlertMonitor struct {
	prices   PriceSource
	notifier notify.Notifier
	policy   AlertPolicy
	logger   zerolog.Logger

	mu     sync.RWMutex
	alerts []*models.Alert // creation order
	seq    uint64

	onTrigger func(models.Alert, float64)
	now       func() time.Time
}

// NewAlertMonitor creates a new alert monitor. notifier may be nil.
func NewAlertMonitor(prices PriceSource, notifier notify.Notifier, policy AlertPolicy, logger zerolog.Logger) *AlertMonitor {
	return &AlertMonitor{
		prices:   prices,
		notifier: notifier,
		policy:   policy,
		logger:   logger.With().Str("component", "alerts").Logger(),
		now:      time.Now,
	}
}

// SetOnTrigger sets a callback function to be called when an alert triggers.
func (m *AlertMonitor) SetOnTrigger(fn func(models.Alert, float64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTrigger = fn
}

// CreateAlert adds an alert for symbol at targetPrice. The direction is fixed
// now, from the symbol's current price, and never recomputed.
func (m *AlertMonitor) CreateAlert(symbol string, targetPrice float64) (models.Alert, error) {
	if math.IsNaN(targetPrice) || math.IsInf(targetPrice, 0) || targetPrice <= 0 {
		return models.Alert{}, errors.NewValidationError("target_price", targetPrice, "must be a positive number")
	}
	rec, ok := m.prices.Get(symbol)
	if !ok {
		return models.Alert{}, errors.NewSymbolError("create alert", symbol)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return models.Alert{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	alert := &models.Alert{
		ID:          id,
		Seq:         m.seq,
		Symbol:      symbol,
		TargetPrice: targetPrice,
		Direction:   models.DirectionFor(targetPrice, rec.Price),
		Active:      true,
		CreatedAt:   m.now(),
	}
	m.alerts = append(m.alerts, alert)

	logger := logging.WithSymbol(logging.WithOperation(m.logger, "create_alert"), symbol)
	logger.Debug().
		Str("alert_id", id.String()).
		Str("direction", string(alert.Direction)).
		Float64("target", targetPrice).
		Float64("price", rec.Price).
		Msg("Alert created")

	return *alert, nil
}

// RemoveAlert deletes an alert by ID.
func (m *AlertMonitor) RemoveAlert(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, a := range m.alerts {
		if a.ID == id {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			return nil
		}
	}
	return errors.ErrAlertNotFound
}

// Active returns the active alerts in creation order.
func (m *AlertMonitor) Active() []models.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		if a.Active {
			out = append(out, *a)
		}
	}
	return out
}

// All returns every alert, active or not, in creation order.
func (m *AlertMonitor) All() []models.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		out = append(out, *a)
	}
	return out
}

// Check evaluates the active alerts against snapshot, reports each trigger to
// the notifier and applies the policy. It returns the triggered alerts as
// they stand after the check.
func (m *AlertMonitor) Check(ctx context.Context, snapshot market.Snapshot) []models.Alert {
	triggered := Evaluate(snapshot, m.Active())
	if len(triggered) == 0 {
		return nil
	}

	now := m.now()
	out := make([]models.Alert, 0, len(triggered))

	m.mu.Lock()
	for _, t := range triggered {
		a := m.find(t.ID)
		if a == nil {
			// Removed between evaluation and now.
			continue
		}
		a.TriggerCount++
		if a.TriggeredAt == nil {
			at := now
			a.TriggeredAt = &at
		}
		if m.policy.AutoDismissOnTrigger {
			a.Active = false
		}
		out = append(out, *a)
	}
	onTrigger := m.onTrigger
	m.mu.Unlock()

	for _, a := range out {
		price, _ := snapshot.Price(a.Symbol)
		if m.notifier != nil {
			if err := m.notifier.AlertTriggered(ctx, a, price); err != nil {
				logger := logging.WithSymbol(m.logger, a.Symbol)
				logger.Warn().Err(err).Str("alert_id", a.ID.String()).Msg("Alert notification failed")
			}
		}
		if onTrigger != nil {
			onTrigger(a, price)
		}
	}
	return out
}

func (m *AlertMonitor) find(id uuid.UUID) *models.Alert {
	for _, a := range m.alerts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// AlertStats contains statistics about alerts.
type AlertStats struct {
	TotalAlerts     int            `json:"total_alerts"`
	TriggeredAlerts int            `json:"triggered_alerts"`
	ActiveAlerts    int            `json:"active_alerts"`
	BySymbol        map[string]int `json:"by_symbol"`
	ByDirection     map[string]int `json:"by_direction"`
}

// GetStats returns alert statistics.
func (m *AlertMonitor) GetStats() AlertStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := AlertStats{
		BySymbol:    make(map[string]int),
		ByDirection: make(map[string]int),
	}

	for _, a := range m.alerts {
		stats.TotalAlerts++
		if a.TriggerCount > 0 {
			stats.TriggeredAlerts++
		}
		if a.Active {
			stats.ActiveAlerts++
		}
		stats.BySymbol[a.Symbol]++
		stats.ByDirection[string(a.Direction)]++
	}

	return stats
}
