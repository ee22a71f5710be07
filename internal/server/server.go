// Package server exposes the dashboard over HTTP and a websocket update stream.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"crypto-tracker/internal/dashboard"
	"crypto-tracker/internal/health"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr      string
	RateLimit float64 // command requests per second per client
	RateBurst int
	Debug     bool
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:      ":8080",
		RateLimit: 5,
		RateBurst: 10,
	}
}

// Server serves dashboard views and commands.
type Server struct {
	config  Config
	dash    *dashboard.Dashboard
	logger  zerolog.Logger
	engine  *gin.Engine
	limiter *clientLimiter
	health  *health.Monitor
}

// New creates a server over d.
func New(d *dashboard.Dashboard, cfg Config, logger zerolog.Logger) *Server {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = def.RateLimit
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = def.RateBurst
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:  cfg,
		dash:    d,
		logger:  logger.With().Str("component", "server").Logger(),
		engine:  gin.New(),
		limiter: newClientLimiter(cfg.RateLimit, cfg.RateBurst),
		health:  health.NewMonitor(health.DefaultConfig()),
	}
	s.health.Register("ticker", health.TickCheck(d.Running, d.LastTick, d.Interval()))
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", s.getHealth)

	api := s.engine.Group("/api")
	api.GET("/market", s.getMarket)
	api.GET("/recommendations", s.getRecommendations)
	api.GET("/allocation", s.getAllocation)
	api.GET("/alerts", s.getAlerts)
	api.GET("/portfolio", s.getPortfolio)
	api.GET("/history/:symbol", s.getHistory)
	api.GET("/news", s.getNews)
	api.GET("/view", s.getView)
	api.GET("/stats", s.getStats)

	cmd := api.Group("", s.rateLimit())
	cmd.POST("/select", s.postSelect)
	cmd.POST("/alerts", s.postAlert)
	cmd.DELETE("/alerts/:id", s.deleteAlert)
	cmd.POST("/holdings", s.postHolding)
	cmd.POST("/theme", s.postTheme)
	cmd.POST("/view", s.postView)

	s.engine.GET("/ws", s.handleWebSocket)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.config.Addr).Msg("Starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info().Msg("Server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client", c.ClientIP()).
			Msg("Request")
	}
}
