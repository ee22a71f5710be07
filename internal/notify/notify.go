// Package notify provides diagnostic notification sinks for triggered alerts.
// Nothing here delivers over the network.
package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"crypto-tracker/internal/logging"
	"crypto-tracker/internal/models"
)

// Notifier defines the interface for reporting triggered alerts.
type Notifier interface {
	AlertTriggered(ctx context.Context, alert models.Alert, price float64) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, alert models.Alert, price float64) error

// AlertTriggered implements Notifier.
func (f NotifierFunc) AlertTriggered(ctx context.Context, alert models.Alert, price float64) error {
	return f(ctx, alert, price)
}

// LogNotifier writes one structured log line per trigger.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// AlertTriggered implements Notifier. A logger attached to ctx (carrying
// the tick's fields) is preferred over the notifier's own.
func (n *LogNotifier) AlertTriggered(ctx context.Context, alert models.Alert, price float64) error {
	logging.LogAlert(logging.FromContext(ctx, n.logger), alert.ID.String(), alert.Symbol, string(alert.Direction), alert.TargetPrice, price)
	return nil
}

// MultiNotifier fans a trigger out to several notifiers.
type MultiNotifier struct {
	mu        sync.RWMutex
	notifiers []Notifier
}

// NewMultiNotifier creates a MultiNotifier; nil entries are skipped.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	mn := &MultiNotifier{}
	for _, n := range notifiers {
		if n != nil {
			mn.notifiers = append(mn.notifiers, n)
		}
	}
	return mn
}

// Add appends a notifier.
func (mn *MultiNotifier) Add(n Notifier) {
	if n == nil {
		return
	}
	mn.mu.Lock()
	defer mn.mu.Unlock()
	mn.notifiers = append(mn.notifiers, n)
}

// AlertTriggered implements Notifier. Every notifier is called even if an
// earlier one fails; the failures are joined.
func (mn *MultiNotifier) AlertTriggered(ctx context.Context, alert models.Alert, price float64) error {
	mn.mu.RLock()
	notifiers := make([]Notifier, len(mn.notifiers))
	copy(notifiers, mn.notifiers)
	mn.mu.RUnlock()

	var errs []error
	for _, n := range notifiers {
		if err := n.AlertTriggered(ctx, alert, price); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
