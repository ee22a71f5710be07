package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"crypto-tracker/internal/analysis/scoring"
	"crypto-tracker/internal/dashboard"
	"crypto-tracker/internal/models"
	"crypto-tracker/internal/news"
	"crypto-tracker/internal/notify"
	"crypto-tracker/internal/portfolio"
	"crypto-tracker/internal/server"
	"crypto-tracker/internal/stream"
	"crypto-tracker/pkg/utils"
)

func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a headless simulation",
		Long: `Run the market simulation and print every dashboard update.

Alerts and holdings can be registered up front as SYMBOL:VALUE pairs.
Triggered alerts are printed as they fire. Without --ticks the session runs
until interrupted.`,
		Example: `  tracker run --ticks 10 --interval 500ms
  tracker run --select ETH --alert ETH:2700 --hold BTC:0.5
  tracker run --ticks 3 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)

			ticks, _ := cmd.Flags().GetInt("ticks")
			interval, _ := cmd.Flags().GetDuration("interval")
			selected, _ := cmd.Flags().GetString("select")
			alertPairs, _ := cmd.Flags().GetStringSlice("alert")
			holdPairs, _ := cmd.Flags().GetStringSlice("hold")

			if ticks < 0 {
				return fmt.Errorf("--ticks must not be negative")
			}

			cfg, err := app.dashboardConfig()
			if err != nil {
				return err
			}
			if interval > 0 {
				cfg.Simulator.Interval = interval
			}

			var notifier notify.Notifier = notify.NewLogNotifier(app.Logger)
			if !output.IsStructured() {
				notifier = notify.NewMultiNotifier(
					notifier,
					notify.NewTerminalNotifier(output.Writer(), output.ColorEnabled(), app.Config.Alerts.TerminalBell).
						WithTimeFormat(app.Config.UI.TimeFormat),
				)
			}
			d := dashboard.New(cfg, dashboard.Deps{Notifier: notifier, Logger: app.Logger})

			if selected != "" {
				if err := d.SelectSymbol(strings.ToUpper(selected)); err != nil {
					return err
				}
			}
			if err := registerAlerts(d, alertPairs); err != nil {
				return err
			}
			if err := registerHoldings(d, holdPairs); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !output.IsStructured() {
				output.Info("Simulating every %s (Ctrl+C to stop)", cfg.Simulator.Interval)
			}
			if err := runSession(ctx, d, cfg.Simulator.Interval, ticks, output); err != nil {
				return err
			}

			if len(holdPairs) > 0 && !output.IsStructured() {
				output.Println()
				displayPortfolio(output, d.PortfolioSummary())
			}
			return nil
		},
	}

	cmd.Flags().IntP("ticks", "n", 0, "number of ticks to run (0 runs until interrupted)")
	cmd.Flags().DurationP("interval", "i", 0, "tick interval (default from config)")
	cmd.Flags().StringP("select", "s", "", "symbol whose price history is recorded")
	cmd.Flags().StringSlice("alert", nil, "price alert as SYMBOL:TARGET (repeatable)")
	cmd.Flags().StringSlice("hold", nil, "holding as SYMBOL:QUANTITY (repeatable)")

	return cmd
}

// runSession ticks d every interval and prints each published update. A
// positive limit stops the session after that many updates.
func runSession(ctx context.Context, d *dashboard.Dashboard, interval time.Duration, limit int, output *Output) error {
	d.StartHub(ctx)
	defer d.Stop()

	updates, unsubscribe := d.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	printed := 0
	for limit == 0 || printed < limit {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if !d.Tick(ctx) {
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if err := printUpdate(output, u); err != nil {
				return err
			}
			printed++
		}
	}
	return nil
}

func printUpdate(output *Output, u stream.Update) error {
	if output.IsStructured() {
		if output.format == FormatYAML {
			output.Println("---")
		}
		return output.Data(u)
	}

	symbols := make([]string, len(u.Recommendations))
	for i, rec := range u.Recommendations {
		symbols[i] = rec.Symbol
	}

	line := fmt.Sprintf("#%-4d %s", u.Seq, output.ColoredString(ColorBold, u.Selected))
	if u.Point != nil {
		change := 0.0
		for _, e := range u.Market {
			if e.Symbol == u.Selected {
				change = e.Record.Change
				break
			}
		}
		line += fmt.Sprintf(" %s %s", utils.FormatPrice(u.Point.Price), output.Change(change))
	}
	line += output.ColoredString(ColorDim, "  top: ") + strings.Join(symbols, " ")
	output.Println(line)
	return nil
}

// parsePair splits a SYMBOL:VALUE flag value.
func parsePair(pair string) (string, float64, error) {
	symbol, raw, ok := strings.Cut(pair, ":")
	if !ok || symbol == "" {
		return "", 0, fmt.Errorf("invalid value %q: expected SYMBOL:VALUE", pair)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid value %q: %w", pair, err)
	}
	return strings.ToUpper(symbol), value, nil
}

func registerAlerts(d *dashboard.Dashboard, values []string) error {
	for _, pair := range values {
		symbol, target, err := parsePair(pair)
		if err != nil {
			return fmt.Errorf("--alert: %w", err)
		}
		if _, err := d.CreateAlert(symbol, target); err != nil {
			return fmt.Errorf("--alert %s: %w", pair, err)
		}
	}
	return nil
}

func registerHoldings(d *dashboard.Dashboard, values []string) error {
	for _, pair := range values {
		symbol, quantity, err := parsePair(pair)
		if err != nil {
			return fmt.Errorf("--hold: %w", err)
		}
		if _, err := d.AddHolding(symbol, quantity); err != nil {
			return fmt.Errorf("--hold %s: %w", pair, err)
		}
	}
	return nil
}

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long: `Start the simulation and expose dashboard views and commands over a
JSON API, with live updates on /ws.`,
		Example: `  tracker serve
  tracker serve --addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			debug, _ := cmd.Flags().GetBool("debug")
			if addr == "" {
				addr = app.Config.Server.Addr
			}

			d, err := app.newDashboard(nil)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d.Start(ctx)
			defer d.Stop()

			srv := server.New(d, server.Config{
				Addr:      addr,
				RateLimit: app.Config.Server.RateLimit,
				RateBurst: app.Config.Server.RateBurst,
				Debug:     debug,
			}, app.Logger)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default from config)")

	return cmd
}

// RecommendResult is the structured output of the recommend command.
type RecommendResult struct {
	Units           scoring.UnitMode        `json:"units" yaml:"units"`
	Recommendations []models.Recommendation `json:"recommendations" yaml:"recommendations"`
	Allocation      []models.AllocationSlot `json:"allocation" yaml:"allocation"`
}

func newRecommendCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Rank the seed market and suggest an allocation",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)
			d, err := app.newDashboard(nil)
			if err != nil {
				return err
			}

			result := RecommendResult{
				Units:           d.Units(),
				Recommendations: d.Recommendations(),
				Allocation:      d.AllocationPlan(),
			}
			if output.IsStructured() {
				return output.Data(result)
			}
			displayRecommendations(output, result)
			return nil
		},
	}
}

func displayRecommendations(output *Output, r RecommendResult) {
	output.Bold("Top Picks (%s units)", r.Units)
	table := NewTable(output, "#", "SYMBOL", "PRICE", "CHANGE", "SCORE", "TREND")
	for i, rec := range r.Recommendations {
		table.AddRow(
			strconv.Itoa(i+1),
			rec.Symbol,
			utils.FormatPrice(rec.Record.Price),
			output.Change(rec.Record.Change),
			fmt.Sprintf("%.2f", rec.Score),
			output.Trend(rec.Trend),
		)
	}
	table.Render()
	output.Println()

	output.Bold("Suggested Allocation")
	table = NewTable(output, "SYMBOL", "WEIGHT", "REASON")
	for _, slot := range r.Allocation {
		table.AddRow(slot.Symbol, fmt.Sprintf("%d%%", slot.Percent), slot.Reason)
	}
	table.Render()
}

func newMarketCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "market",
		Short: "Show the seed market table",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)
			d, err := app.newDashboard(nil)
			if err != nil {
				return err
			}

			entries := d.MarketSnapshot()
			if output.IsStructured() {
				return output.Data(entries)
			}

			table := NewTable(output, "SYMBOL", "PRICE", "CHANGE", "VOLUME", "MARKET CAP")
			for _, e := range entries {
				table.AddRow(
					e.Symbol,
					utils.FormatPrice(e.Record.Price),
					output.Change(e.Record.Change),
					e.Record.Volume.String(),
					e.Record.MarketCap.String(),
				)
			}
			table.Render()
			return nil
		},
	}
}

// NewsResult is the structured output of the news command.
type NewsResult struct {
	Mood      news.Mood         `json:"mood" yaml:"mood"`
	Sentiment float64           `json:"sentiment" yaml:"sentiment"`
	Items     []models.NewsItem `json:"items" yaml:"items"`
}

func newNewsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Show market headlines",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.newOutput(cmd)
			impact, _ := cmd.Flags().GetString("impact")

			feed := news.NewDefaultFeed()
			items := feed.Items()
			if impact != "" {
				items = feed.ByImpact(models.Impact(strings.ToLower(impact)))
			}

			result := NewsResult{
				Mood:      feed.Mood(),
				Sentiment: feed.Sentiment(),
				Items:     items,
			}
			if output.IsStructured() {
				return output.Data(result)
			}

			output.Bold("Market News (%s, %+.2f)", result.Mood, result.Sentiment)
			for _, item := range result.Items {
				output.Printf("  %s %s %s\n",
					output.Impact(item.Impact),
					utils.PadRight(item.Title, 48),
					output.ColoredString(ColorDim, utils.FormatAge(item.Age)))
			}
			return nil
		},
	}

	cmd.Flags().String("impact", "", "only show positive, negative or neutral items")

	return cmd
}

func displayPortfolio(output *Output, s portfolio.Summary) {
	output.Bold("Portfolio")
	table := NewTable(output, "SYMBOL", "QTY", "COST", "PRICE", "VALUE", "P&L")
	for _, p := range s.Positions {
		pnl, _ := p.PnL.Float64()
		table.AddRow(
			p.Symbol,
			p.Quantity.String(),
			p.CostBasisPrice.StringFixed(2),
			p.CurrentPrice.StringFixed(2),
			p.Value.StringFixed(2),
			output.ColoredString(ChangeColor(pnl), p.PnL.StringFixed(2)),
		)
	}
	table.Render()

	total, _ := s.TotalPnL.Float64()
	pct, _ := s.TotalPnLPercent.Float64()
	output.Printf("Invested %s  Value %s  P&L %s (%s)\n",
		s.InvestedValue.StringFixed(2),
		s.CurrentValue.StringFixed(2),
		output.ColoredString(ChangeColor(total), s.TotalPnL.StringFixed(2)),
		output.Change(pct))
}
