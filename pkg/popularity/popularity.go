// Package popularity scores editions from their engagement counters.
package popularity

import (
	"math"
	"time"
)

// Weights and age thresholds of the score.
const (
	SaveWeight        = 3.0
	FollowWeight      = 2.0
	ClickWeight       = 0.1
	RecencyMultiplier = 1.2
	StaleMultiplier   = 0.5

	RecentDays = 90
	StaleDays  = 365
)

// BatchSize is the number of editions written concurrently by a
// recompute. Batches run one after another.
const BatchSize = 100

// ClickWindow is the rolling window of the click counter.
const ClickWindow = 30 * 24 * time.Hour

// Counters are the inputs of a score.
type Counters struct {
	Saves     int64
	Follows   int64
	Clicks30d int64
	CreatedAt time.Time
}

// AgeDays returns the fractional age in days at now.
func AgeDays(createdAt, now time.Time) float64 {
	return now.Sub(createdAt).Hours() / 24
}

// Score returns the popularity score at now, rounded to the nearest
// integer. Editions younger than RecentDays are boosted and editions older
// than StaleDays are halved.
func Score(c Counters, now time.Time) int64 {
	score := float64(c.Saves)*SaveWeight +
		float64(c.Follows)*FollowWeight +
		float64(c.Clicks30d)*ClickWeight

	age := AgeDays(c.CreatedAt, now)
	if age < RecentDays {
		score *= RecencyMultiplier
	}
	if age > StaleDays {
		score *= StaleMultiplier
	}

	return int64(math.Round(score))
}
