// Package health aggregates component checks into one service status.
package health

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"
)

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "HEALTHY"
	StatusDegraded  Status = "DEGRADED"
	StatusUnhealthy Status = "UNHEALTHY"
)

// ComponentHealth represents the health of a single component.
type ComponentHealth struct {
	Name    string                 `json:"name"`
	Status  Status                 `json:"status"`
	Message string                 `json:"message"`
	Latency time.Duration          `json:"latency"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Check reports the health of one component.
type Check func(ctx context.Context) ComponentHealth

// Config holds monitor thresholds.
type Config struct {
	CheckTimeout       time.Duration
	MemoryThresholdMB  uint64
	GoroutineThreshold int
}

// DefaultConfig returns default thresholds.
func DefaultConfig() Config {
	return Config{
		CheckTimeout:       2 * time.Second,
		MemoryThresholdMB:  500,
		GoroutineThreshold: 1000,
	}
}

// Report is the aggregated result of one round of checks.
type Report struct {
	Status     Status            `json:"status"`
	Uptime     time.Duration     `json:"uptime"`
	Components []ComponentHealth `json:"components"`
}

// Healthy reports whether the service can serve requests. A degraded
// service still serves.
func (r Report) Healthy() bool {
	return r.Status != StatusUnhealthy
}

// Monitor runs registered checks on demand.
type Monitor struct {
	config    Config
	startTime time.Time

	mu         sync.RWMutex
	components map[string]Check
}

// NewMonitor creates a monitor with the built-in memory and goroutine checks.
func NewMonitor(config Config) *Monitor {
	if config.CheckTimeout <= 0 {
		config.CheckTimeout = DefaultConfig().CheckTimeout
	}
	m := &Monitor{
		config:     config,
		startTime:  time.Now(),
		components: make(map[string]Check),
	}
	m.Register("memory", m.checkMemory)
	m.Register("goroutines", m.checkGoroutines)
	return m
}

// Register adds or replaces the check for name.
func (m *Monitor) Register(name string, check Check) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[name] = check
}

// Run executes every check concurrently and aggregates the results. A
// panicking check is reported unhealthy.
func (m *Monitor) Run(ctx context.Context) Report {
	m.mu.RLock()
	components := make(map[string]Check, len(m.components))
	for k, v := range m.components {
		components[k] = v
	}
	m.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, m.config.CheckTimeout)
	defer cancel()

	var wg sync.WaitGroup
	results := make(chan ComponentHealth, len(components))

	for name, check := range components {
		wg.Add(1)
		go func(n string, c Check) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results <- ComponentHealth{
						Name:    n,
						Status:  StatusUnhealthy,
						Message: fmt.Sprintf("check panicked: %v", r),
					}
				}
			}()

			start := time.Now()
			h := c(ctx)
			h.Name = n
			h.Latency = time.Since(start)
			results <- h
		}(name, check)
	}

	wg.Wait()
	close(results)

	report := Report{
		Status: StatusHealthy,
		Uptime: time.Since(m.startTime),
	}
	for h := range results {
		report.Components = append(report.Components, h)
		switch h.Status {
		case StatusUnhealthy:
			report.Status = StatusUnhealthy
		case StatusDegraded:
			if report.Status == StatusHealthy {
				report.Status = StatusDegraded
			}
		}
	}
	sort.Slice(report.Components, func(i, j int) bool {
		return report.Components[i].Name < report.Components[j].Name
	})
	return report
}

func (m *Monitor) checkMemory(ctx context.Context) ComponentHealth {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	allocMB := memStats.Alloc / 1024 / 1024
	h := ComponentHealth{
		Status:  StatusHealthy,
		Message: fmt.Sprintf("Memory usage: %d MB", allocMB),
		Details: map[string]interface{}{
			"alloc_mb": allocMB,
			"sys_mb":   memStats.Sys / 1024 / 1024,
			"num_gc":   memStats.NumGC,
		},
	}
	if m.config.MemoryThresholdMB > 0 && allocMB > m.config.MemoryThresholdMB {
		h.Status = StatusDegraded
		h.Message = fmt.Sprintf("Memory usage high: %d MB", allocMB)
	}
	return h
}

func (m *Monitor) checkGoroutines(ctx context.Context) ComponentHealth {
	n := runtime.NumGoroutine()
	h := ComponentHealth{
		Status:  StatusHealthy,
		Message: fmt.Sprintf("Goroutine count: %d", n),
		Details: map[string]interface{}{"count": n},
	}
	if m.config.GoroutineThreshold > 0 && n > m.config.GoroutineThreshold {
		h.Status = StatusDegraded
		h.Message = fmt.Sprintf("High goroutine count: %d", n)
	}
	return h
}

// TickCheck reports a tick loop as degraded when it is stopped or has not
// ticked for three intervals.
func TickCheck(running func() bool, lastTick func() time.Time, interval time.Duration) Check {
	return func(ctx context.Context) ComponentHealth {
		last := lastTick()
		h := ComponentHealth{
			Details: map[string]interface{}{
				"running":   running(),
				"last_tick": last,
			},
		}

		switch {
		case !running():
			h.Status = StatusDegraded
			h.Message = "Tick loop stopped"
		case !last.IsZero() && time.Since(last) > 3*interval:
			h.Status = StatusDegraded
			h.Message = fmt.Sprintf("No tick for %v", time.Since(last).Round(time.Millisecond))
		default:
			h.Status = StatusHealthy
			h.Message = "Ticking"
		}
		return h
	}
}
