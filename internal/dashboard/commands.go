package dashboard

import (
	"github.com/google/uuid"

	"crypto-tracker/internal/errors"
	"crypto-tracker/internal/logging"
	"crypto-tracker/internal/models"
)

// SelectSymbol chooses the symbol whose price feeds the rolling history.
func (d *Dashboard) SelectSymbol(symbol string) error {
	if !d.state.Has(symbol) {
		err := errors.NewSymbolError("select", symbol)
		logging.LogCommand(d.logger, "select", err)
		return err
	}

	d.mu.Lock()
	d.view.Selected = symbol
	d.mu.Unlock()

	logging.LogCommand(d.logger, "select", nil)
	return nil
}

// CreateAlert adds a price alert on symbol.
func (d *Dashboard) CreateAlert(symbol string, targetPrice float64) (models.Alert, error) {
	alert, err := d.alerts.CreateAlert(symbol, targetPrice)
	logging.LogCommand(d.logger, "create_alert", err)
	return alert, err
}

// RemoveAlert dismisses an alert.
func (d *Dashboard) RemoveAlert(id uuid.UUID) error {
	err := d.alerts.RemoveAlert(id)
	logging.LogCommand(d.logger, "remove_alert", err)
	return err
}

// AddHolding records a purchase at the symbol's current price.
func (d *Dashboard) AddHolding(symbol string, quantity float64) (models.Holding, error) {
	h, err := d.ledger.AddHolding(symbol, quantity)
	logging.LogCommand(d.logger, "add_holding", err)
	return h, err
}

// ToggleTheme flips between light and dark and returns the new theme.
func (d *Dashboard) ToggleTheme() models.Theme {
	d.mu.Lock()
	if d.view.Theme == models.ThemeDark {
		d.view.Theme = models.ThemeLight
	} else {
		d.view.Theme = models.ThemeDark
	}
	theme := d.view.Theme
	d.mu.Unlock()

	logging.LogCommand(d.logger, "toggle_theme", nil)
	return theme
}

// SetActiveView switches the renderer's tab.
func (d *Dashboard) SetActiveView(view models.View) error {
	valid := false
	for _, v := range models.Views {
		if v == view {
			valid = true
			break
		}
	}
	if !valid {
		err := errors.NewValidationError("view", view, "unknown view")
		logging.LogCommand(d.logger, "set_view", err)
		return err
	}

	d.mu.Lock()
	d.view.ActiveView = view
	d.mu.Unlock()

	logging.LogCommand(d.logger, "set_view", nil)
	return nil
}
