package models

import "time"

// Impact is the expected market direction of a news item.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// NewsItem is a canned headline.
type NewsItem struct {
	Title  string        `json:"title" yaml:"title"`
	Age    time.Duration `json:"age" yaml:"age"`
	Impact Impact        `json:"impact" yaml:"impact"`
}
