package models

import (
	"time"

	"github.com/google/uuid"
)

// Alert represents a price alert.
type Alert struct {
	ID           uuid.UUID  `json:"id" yaml:"id"`
	Seq          uint64     `json:"seq" yaml:"seq"`
	Symbol       string     `json:"symbol" yaml:"symbol"`
	TargetPrice  float64    `json:"target_price" yaml:"target_price"`
	Direction    Direction  `json:"direction" yaml:"direction"`
	Active       bool       `json:"active" yaml:"active"`
	TriggerCount int        `json:"trigger_count" yaml:"trigger_count"`
	CreatedAt    time.Time  `json:"created_at" yaml:"created_at"`
	TriggeredAt  *time.Time `json:"triggered_at,omitempty" yaml:"triggered_at,omitempty"`
}

// Satisfied reports whether price meets the alert's condition.
func (a Alert) Satisfied(price float64) bool {
	switch a.Direction {
	case DirectionAbove:
		return price >= a.TargetPrice
	case DirectionBelow:
		return price <= a.TargetPrice
	default:
		return false
	}
}

// DirectionFor fixes an alert's direction from the price at creation time.
func DirectionFor(target, current float64) Direction {
	if target > current {
		return DirectionAbove
	}
	return DirectionBelow
}
