package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"crypto-tracker/internal/models"
	"crypto-tracker/pkg/utils"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	bell        = "\a"
)

// DefaultTimeFormat is the timestamp layout of an alert banner.
const DefaultTimeFormat = "15:04:05"

// TerminalNotifier writes a one-line alert banner to a terminal.
type TerminalNotifier struct {
	mu           sync.Mutex
	out          io.Writer
	colorEnabled bool
	bellEnabled  bool
	timeFormat   string
	now          func() time.Time
}

// NewTerminalNotifier creates a new TerminalNotifier.
func NewTerminalNotifier(out io.Writer, colorEnabled, bellEnabled bool) *TerminalNotifier {
	return &TerminalNotifier{
		out:          out,
		colorEnabled: colorEnabled,
		bellEnabled:  bellEnabled,
		timeFormat:   DefaultTimeFormat,
		now:          time.Now,
	}
}

// WithTimeFormat sets the banner timestamp layout. An empty layout keeps the
// default.
func (tn *TerminalNotifier) WithTimeFormat(layout string) *TerminalNotifier {
	if layout != "" {
		tn.timeFormat = layout
	}
	return tn
}

// AlertTriggered implements Notifier.
func (tn *TerminalNotifier) AlertTriggered(ctx context.Context, alert models.Alert, price float64) error {
	line := formatAlert(alert, price, tn.now().Format(tn.timeFormat), tn.colorEnabled)

	tn.mu.Lock()
	defer tn.mu.Unlock()

	if tn.bellEnabled {
		line = bell + line
	}
	_, err := fmt.Fprintln(tn.out, line)
	return err
}

func formatAlert(alert models.Alert, price float64, stamp string, colorEnabled bool) string {
	var sb strings.Builder

	indicator, color := "▲", colorGreen
	verb := "rose above"
	if alert.Direction == models.DirectionBelow {
		indicator, color = "▼", colorRed
		verb = "fell below"
	}

	if colorEnabled {
		sb.WriteString(colorYellow)
	}
	sb.WriteString("[" + stamp + "] ")
	if colorEnabled {
		sb.WriteString(colorReset + color + colorBold)
	}
	sb.WriteString(indicator + " " + alert.Symbol)
	if colorEnabled {
		sb.WriteString(colorReset)
	}
	fmt.Fprintf(&sb, " %s %s (now %s)", verb, utils.FormatPrice(alert.TargetPrice), utils.FormatPrice(price))

	return sb.String()
}
