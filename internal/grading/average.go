package grading

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SubjectEntry is one graded subject: a letter grade and its credit hours.
type SubjectEntry struct {
	Grade   string  `json:"grade" yaml:"grade"`
	Credits float64 `json:"credits" yaml:"credits"`
}

// ParseCredits reads a credit-hour field. Anything that is not a number
// comes back as NaN so it fails validation exactly like a bad number would.
func ParseCredits(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func validCredits(c float64) bool {
	return !math.IsNaN(c) && !math.IsInf(c, 0) && c > 0
}

// WeightedAverage returns the credit-weighted mean grade point of entries
// under policy.
//
// Each row is checked in order: a missing grade or bad credits is
// ErrInvalidEntry, a grade outside the policy is ErrUnknownGrade.
// Credits are scaled by the largest one before summing, so any finite
// credit values give a finite mean.
func WeightedAverage(entries []SubjectEntry, policy Policy) (float64, error) {
	if len(entries) == 0 {
		return 0, ErrEmptyInput
	}
	points := make([]float64, len(entries))
	var maxCredits float64
	for i, e := range entries {
		if e.Grade == "" || !validCredits(e.Credits) {
			return 0, fmt.Errorf("subject %d: %w", i+1, ErrInvalidEntry)
		}
		pts, err := PointsFor(policy, e.Grade)
		if err != nil {
			return 0, fmt.Errorf("subject %d: %w", i+1, err)
		}
		points[i] = pts
		maxCredits = math.Max(maxCredits, e.Credits)
	}

	var weighted, weights float64
	for i, e := range entries {
		w := e.Credits / maxCredits
		weighted += points[i] * w
		weights += w
	}
	if weights == 0 {
		return 0, ErrZeroCredits
	}
	avg := weighted / weights
	if math.IsNaN(avg) || math.IsInf(avg, 0) {
		return 0, ErrInvalidEntry
	}
	return avg, nil
}
