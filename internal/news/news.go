// Package news serves the canned market headlines shown alongside the tracker.
package news

import (
	"sort"
	"time"

	"crypto-tracker/internal/models"
)

// Mood is the overall direction of a feed.
type Mood string

const (
	MoodPositive Mood = "positive"
	MoodNegative Mood = "negative"
	MoodMixed    Mood = "mixed"
)

// DefaultItems returns the built-in headlines, newest first.
func DefaultItems() []models.NewsItem {
	return []models.NewsItem{
		{Title: "Bitcoin ETF approved by the SEC", Age: 2 * time.Hour, Impact: models.ImpactPositive},
		{Title: "Ethereum completes network upgrade", Age: 4 * time.Hour, Impact: models.ImpactPositive},
		{Title: "Fed rate decision weighs on crypto markets", Age: 6 * time.Hour, Impact: models.ImpactNegative},
		{Title: "New DeFi protocol raises major funding", Age: 8 * time.Hour, Impact: models.ImpactPositive},
		{Title: "Regulatory update affects exchange operations", Age: 12 * time.Hour, Impact: models.ImpactNeutral},
	}
}

// Feed is a fixed, read-only list of headlines.
type Feed struct {
	items []models.NewsItem
}

// NewFeed creates a feed from items, ordered newest first.
func NewFeed(items []models.NewsItem) *Feed {
	sorted := make([]models.NewsItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Age < sorted[j].Age
	})
	return &Feed{items: sorted}
}

// NewDefaultFeed creates a feed of the built-in headlines.
func NewDefaultFeed() *Feed {
	return NewFeed(DefaultItems())
}

// Items returns every headline, newest first.
func (f *Feed) Items() []models.NewsItem {
	out := make([]models.NewsItem, len(f.items))
	copy(out, f.items)
	return out
}

// ByImpact returns the headlines with the given impact, newest first.
func (f *Feed) ByImpact(impact models.Impact) []models.NewsItem {
	var out []models.NewsItem
	for _, item := range f.items {
		if item.Impact == impact {
			out = append(out, item)
		}
	}
	return out
}

// Sentiment returns a recency-weighted score in [-1, 1]. The i-th newest
// headline weighs 1/(i+1).
func (f *Feed) Sentiment() float64 {
	var weighted, total float64
	for i, item := range f.items {
		weight := 1.0 / float64(i+1)
		switch item.Impact {
		case models.ImpactPositive:
			weighted += weight
		case models.ImpactNegative:
			weighted -= weight
		}
		total += weight
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// Mood classifies Sentiment.
func (f *Feed) Mood() Mood {
	s := f.Sentiment()
	switch {
	case s > 0.3:
		return MoodPositive
	case s < -0.3:
		return MoodNegative
	default:
		return MoodMixed
	}
}
