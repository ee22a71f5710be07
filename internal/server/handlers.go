package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crypto-tracker/internal/errors"
	"crypto-tracker/internal/models"
)

type selectRequest struct {
	Symbol string `json:"symbol"`
}

type alertRequest struct {
	Symbol      string  `json:"symbol"`
	TargetPrice float64 `json:"target_price"`
}

type holdingRequest struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}

type viewRequest struct {
	View models.View `json:"view"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.IsInvalidInput(err):
		return http.StatusBadRequest
	case errors.IsUnknownSymbol(err), errors.Is(err, errors.ErrAlertNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return false
	}
	return true
}

func (s *Server) getHealth(c *gin.Context) {
	report := s.health.Run(c.Request.Context())

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(status, gin.H{
		"status":      report.Status,
		"uptime":      report.Uptime.String(),
		"components":  report.Components,
		"subscribers": s.dash.Stats().Hub.Subscribers,
	})
}

func (s *Server) getMarket(c *gin.Context) {
	c.JSON(http.StatusOK, s.dash.MarketSnapshot())
}

func (s *Server) getRecommendations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"units":           s.dash.Units(),
		"recommendations": s.dash.Recommendations(),
	})
}

func (s *Server) getAllocation(c *gin.Context) {
	c.JSON(http.StatusOK, s.dash.AllocationPlan())
}

func (s *Server) getAlerts(c *gin.Context) {
	if c.Query("all") == "true" {
		c.JSON(http.StatusOK, s.dash.Alerts())
		return
	}
	c.JSON(http.StatusOK, s.dash.ActiveAlerts())
}

func (s *Server) getPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"summary":      s.dash.PortfolioSummary(),
		"distribution": s.dash.Distribution(),
		"aggregated":   s.dash.AggregatedDistribution(),
	})
}

func (s *Server) getHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	if _, ok := s.dash.Snapshot().Get(symbol); !ok {
		writeError(c, errors.NewSymbolError("history", symbol))
		return
	}
	c.JSON(http.StatusOK, s.dash.PriceHistory(symbol))
}

func (s *Server) getNews(c *gin.Context) {
	if impact := c.Query("impact"); impact != "" {
		c.JSON(http.StatusOK, s.dash.NewsByImpact(models.Impact(impact)))
		return
	}
	c.JSON(http.StatusOK, s.dash.News())
}

func (s *Server) getView(c *gin.Context) {
	c.JSON(http.StatusOK, s.dash.ViewState())
}

func (s *Server) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.dash.Stats())
}

func (s *Server) postSelect(c *gin.Context) {
	var req selectRequest
	if !bind(c, &req) {
		return
	}
	if err := s.dash.SelectSymbol(req.Symbol); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.dash.ViewState())
}

func (s *Server) postAlert(c *gin.Context) {
	var req alertRequest
	if !bind(c, &req) {
		return
	}
	alert, err := s.dash.CreateAlert(req.Symbol, req.TargetPrice)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

func (s *Server) deleteAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, errors.NewValidationError("id", c.Param("id"), "not a valid alert id"))
		return
	}
	if err := s.dash.RemoveAlert(id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) postHolding(c *gin.Context) {
	var req holdingRequest
	if !bind(c, &req) {
		return
	}
	h, err := s.dash.AddHolding(req.Symbol, req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h)
}

func (s *Server) postTheme(c *gin.Context) {
	s.dash.ToggleTheme()
	c.JSON(http.StatusOK, s.dash.ViewState())
}

func (s *Server) postView(c *gin.Context) {
	var req viewRequest
	if !bind(c, &req) {
		return
	}
	if err := s.dash.SetActiveView(req.View); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.dash.ViewState())
}
