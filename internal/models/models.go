// Package models provides domain models for the crypto tracker.
package models

import (
	"time"
)

// MarketRecord is the current market data of one tracked symbol.
type MarketRecord struct {
	Price     float64   `json:"price" yaml:"price"`
	Change    float64   `json:"change" yaml:"change"`
	Volume    Magnitude `json:"volume" yaml:"volume"`
	MarketCap Magnitude `json:"market_cap" yaml:"market_cap"`
}

// Direction is the side of the target an alert waits for.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// Trend classifies a symbol's change percentage.
type Trend string

const (
	TrendHot  Trend = "hot"
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// Recommendation is a ranked symbol with its composite score.
type Recommendation struct {
	Symbol string       `json:"symbol" yaml:"symbol"`
	Record MarketRecord `json:"record" yaml:"record"`
	Score  float64      `json:"score" yaml:"score"`
	Trend  Trend        `json:"trend" yaml:"trend"`
}

// AllocationSlot is one entry of the suggested allocation plan.
type AllocationSlot struct {
	Symbol  string `json:"symbol" yaml:"symbol"`
	Percent int    `json:"percent" yaml:"percent"`
	Reason  string `json:"reason" yaml:"reason"`
}

// PricePoint is one sample of the rolling price history.
type PricePoint struct {
	Symbol string    `json:"symbol" yaml:"symbol"`
	Price  float64   `json:"price" yaml:"price"`
	Time   time.Time `json:"time" yaml:"time"`
}

// Theme is the renderer's color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// View is the renderer's active tab.
type View string

const (
	ViewTracker   View = "tracker"
	ViewPortfolio View = "portfolio"
	ViewNews      View = "news"
)

// Views lists the valid tabs in display order.
var Views = []View{ViewTracker, ViewPortfolio, ViewNews}

// ViewState holds the renderer-facing UI state.
type ViewState struct {
	Theme      Theme  `json:"theme" yaml:"theme"`
	ActiveView View   `json:"active_view" yaml:"active_view"`
	Selected   string `json:"selected" yaml:"selected"`
}
