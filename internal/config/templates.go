package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Crypto Tracker Configuration

[simulation]
# Time between price ticks (e.g., "3s", "500ms")
interval = "3s"
# How a tick moves the 24h change: "drift" (independent walk) or "tracked"
# (compounds the applied price move)
change_mode = "drift"
# Number of points kept in the rolling price history
history_size = 20
# Symbol selected at startup
default_symbol = "BTC"

[scoring]
# Score volume and market cap in billions instead of the written mantissa
normalize_units = false
# Number of ranked recommendations
top_n = 5

[scoring.weights]
volume = 0.3
market_cap = 0.4
change = 0.3

[alerts]
# Deactivate an alert after its first trigger instead of re-alerting
# every tick while the condition holds
auto_dismiss_on_trigger = false
# Ring the terminal bell when an alert triggers
terminal_bell = false

[server]
# Listen address for "tracker serve"
addr = ":8080"
# Command requests per second allowed per client, and burst size
rate_limit = 5.0
rate_burst = 10

[ui]
# Enable colored output
color_enabled = true
# Initial theme: "light" or "dark"
theme = "light"
# Time format
time_format = "15:04:05"

[logging]
# Log level: debug, info, warn, error, disabled
level = "info"
console = true
# Write JSON logs to a rotating file
file = false
max_size = 100
max_backups = 7
max_age = 30

# Override the built-in market table by listing every symbol:
#
# [[market.seed]]
# symbol = "BTC"
# price = 43250.50
# change = 2.5
# volume = "23.4B"
# market_cap = "845B"
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
