package srs

import (
	"math"
	"time"
)

// Rating is the user's recall grade for a single review.
type Rating int

const (
	RatingAgain Rating = 1
	RatingHard  Rating = 2
	RatingGood  Rating = 3
	RatingEasy  Rating = 4
)

// Valid reports whether r is one of the four accepted ratings.
func (r Rating) Valid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// quality folds the 4-point rating onto the classical SM-2 0-5 scale,
// preserving the shape of the ease-update formula.
func (r Rating) quality() float64 {
	switch r {
	case RatingAgain:
		return 0
	case RatingHard:
		return 3
	case RatingGood:
		return 4
	default:
		return 5
	}
}

const (
	// DefaultEase is the easiness factor assumed for a never-reviewed card.
	DefaultEase = 2.5
	minEase     = 1.3
	maxEase     = 2.5

	easyBonus = 1.3
)

// State is the scheduling state of a card before a review. The zero value
// of EaseFactor means "never reviewed" and is treated as DefaultEase.
type State struct {
	EaseFactor  float64
	Interval    int
	Repetitions int
}

// Result is the scheduling state after a review.
type Result struct {
	EaseFactor  float64
	Interval    int
	Repetitions int
	NextReview  time.Time
}

// Apply computes the next scheduling state for a card given its current
// state and the submitted rating. SM-2 variant: ratings below Good reset
// repetitions and force a 1-day interval; Easy earns an extra interval
// multiplier. Pure and deterministic, the caller supplies now.
func Apply(s State, r Rating, now time.Time) Result {
	ef := s.EaseFactor
	if ef == 0 {
		ef = DefaultEase
	}

	q := r.quality()
	ef = ef + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ef < minEase {
		ef = minEase
	}
	if ef > maxEase {
		ef = maxEase
	}

	repetitions := s.Repetitions
	interval := s.Interval
	if r < RatingGood {
		repetitions = 0
		interval = 1
	} else {
		repetitions++
		switch repetitions {
		case 1:
			interval = 1
		case 2:
			interval = 6
		default:
			interval = int(math.Round(float64(interval) * ef))
		}
		if r == RatingEasy {
			interval = int(math.Round(float64(interval) * easyBonus))
		}
	}

	return Result{
		// Stored precision is two decimal places.
		EaseFactor:  math.Round(ef*100) / 100,
		Interval:    interval,
		Repetitions: repetitions,
		// Intervals are calendar days, not elapsed seconds.
		NextReview: now.AddDate(0, 0, interval),
	}
}

// IsDue reports whether a card with the given next review timestamp is
// eligible for review at now. A nil timestamp means never scheduled and
// therefore immediately due. The SQL equivalent of this predicate lives in
// the sqlite repository package; both are exercised by the same fixtures.
func IsDue(nextReview *time.Time, now time.Time) bool {
	return nextReview == nil || !nextReview.After(now)
}
