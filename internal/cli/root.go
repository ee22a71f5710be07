// Package cli provides the command-line interface for the tracker.
package cli

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"crypto-tracker/internal/config"
	"crypto-tracker/internal/dashboard"
	"crypto-tracker/internal/logging"
	"crypto-tracker/internal/models"
	"crypto-tracker/internal/notify"
	"crypto-tracker/internal/stream"
)

// Version information
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	// LogOutput receives console logs of a logger rebuilt from a loaded
	// config. Nil means stderr.
	LogOutput io.Writer
}

// NewRootCmd creates the root command for the CLI. A nil cfg is loaded from
// --config, TRACKER_CONFIG_DIR or the default directory once flags are
// parsed; logger serves until then.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	return newRootCmd(&App{
		Config: cfg,
		Logger: logger,
	})
}

func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tracker",
		Short: "Crypto Tracker - simulated market dashboard",
		Long: `Crypto Tracker simulates a small cryptocurrency market and keeps a
dashboard over it: ranked recommendations, an allocation plan, price alerts,
a holdings ledger and a rolling price history.

Use 'tracker run' for a headless session or 'tracker serve' to expose the
dashboard over HTTP and websocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.loadConfig(cmd); err != nil {
				return err
			}

			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/crypto-tracker)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("yaml", false, "output in YAML format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addTrackerCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

// addTrackerCommands adds the dashboard commands.
func addTrackerCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newRecommendCmd(app))
	rootCmd.AddCommand(newMarketCmd(app))
	rootCmd.AddCommand(newNewsCmd(app))
}

// dashboardConfig converts the loaded configuration.
func (a *App) dashboardConfig() (dashboard.Config, error) {
	seed, err := a.Config.Seed()
	if err != nil {
		return dashboard.Config{}, err
	}
	return dashboard.Config{
		Seed:          seed,
		Simulator:     a.Config.SimulatorConfig(),
		Scoring:       a.Config.ScoringConfig(),
		Alerts:        a.Config.AlertPolicy(),
		Hub:           stream.DefaultHubConfig(),
		HistorySize:   a.Config.Simulation.HistorySize,
		DefaultSymbol: a.Config.Simulation.DefaultSymbol,
		Theme:         models.Theme(a.Config.UI.Theme),
	}, nil
}

// newDashboard builds a dashboard from the configuration.
func (a *App) newDashboard(notifier notify.Notifier) (*dashboard.Dashboard, error) {
	cfg, err := a.dashboardConfig()
	if err != nil {
		return nil, err
	}
	return dashboard.New(cfg, dashboard.Deps{
		Notifier: notifier,
		Logger:   a.Logger,
	}), nil
}

// newOutput creates the command's Output, honoring the configured color
// setting.
func (a *App) newOutput(cmd *cobra.Command) *Output {
	output := NewOutput(cmd)
	if !a.Config.UI.ColorEnabled {
		output.colorEnabled = false
	}
	return output
}

// loadConfig resolves the configuration after flag parsing. --config wins
// over a preloaded config. A loaded config also replaces the logger with
// one built from its [logging] section.
func (a *App) loadConfig(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("config")
	if dir == "" && a.Config != nil {
		return nil
	}
	if dir == "" {
		dir = a.configDir()
	}

	loaded, err := config.Load(dir)
	if err != nil {
		return err
	}
	a.Config = loaded
	a.ConfigDir = dir

	out := a.LogOutput
	if out == nil {
		out = os.Stderr
	}
	a.Logger = logging.NewLoggerWithWriter(loaded.LogConfig(), out)
	return nil
}

func (a *App) configDir() string {
	if a.ConfigDir != "" {
		return a.ConfigDir
	}
	if dir := os.Getenv("TRACKER_CONFIG_DIR"); dir != "" {
		return dir
	}
	return config.DefaultConfigDir()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsStructured() {
				return output.Data(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Crypto Tracker v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)
			if output.IsStructured() {
				return output.Data(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)
			path := config.ConfigPath(app.configDir())
			if output.IsStructured() {
				return output.Data(map[string]string{"path": path})
			}
			output.Println(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				if output.IsStructured() {
					_ = output.Data(map[string]interface{}{"valid": false, "error": err.Error()})
				} else {
					output.Error("Configuration validation failed: %v", err)
				}
				return err
			}
			if output.IsStructured() {
				return output.Data(map[string]bool{"valid": true})
			}
			output.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Simulation")
	output.Printf("  Interval:       %s\n", cfg.Simulation.Interval)
	output.Printf("  Change Mode:    %s\n", cfg.Simulation.ChangeMode)
	output.Printf("  History Size:   %d\n", cfg.Simulation.HistorySize)
	output.Printf("  Default Symbol: %s\n", cfg.Simulation.DefaultSymbol)
	output.Println()

	output.Bold("Scoring")
	output.Printf("  Normalize Units: %v\n", cfg.Scoring.NormalizeUnits)
	output.Printf("  Top N:           %d\n", cfg.Scoring.TopN)
	output.Printf("  Weights:         volume=%.2f market_cap=%.2f change=%.2f\n",
		cfg.Scoring.Weights.Volume, cfg.Scoring.Weights.MarketCap, cfg.Scoring.Weights.Change)
	output.Println()

	output.Bold("Alerts")
	output.Printf("  Auto Dismiss:  %v\n", cfg.Alerts.AutoDismissOnTrigger)
	output.Printf("  Terminal Bell: %v\n", cfg.Alerts.TerminalBell)
	output.Println()

	output.Bold("Server")
	output.Printf("  Address:    %s\n", cfg.Server.Addr)
	output.Printf("  Rate Limit: %.1f/s (burst %d)\n", cfg.Server.RateLimit, cfg.Server.RateBurst)
	output.Println()

	output.Bold("Market")
	if len(cfg.Market.Seed) == 0 {
		output.Printf("  Seed: built-in\n")
	} else {
		output.Printf("  Seed: %d symbols\n", len(cfg.Market.Seed))
	}
}
