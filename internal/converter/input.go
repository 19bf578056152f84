package converter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-cgpa/internal/grading"
	"github.com/mind-engage/mindengage-cgpa/internal/scale"
)

// ErrOutOfRange covers raw CGPA input that is empty, not a number, or off the 0-4 scale.
var ErrOutOfRange = errors.New("Please enter a valid CGPA.")

// ErrCalculation is what callers show when something other than bad input failed.
var ErrCalculation = errors.New("An error occurred during calculation.")

// rangeError keeps the institution-specific wording while still matching ErrOutOfRange.
type rangeError struct{ inst grading.Institution }

func (e rangeError) Error() string {
	return fmt.Sprintf("Please enter an %s CGPA between 0.00 and %.2f.", e.inst, scale.Ceiling)
}

func (e rangeError) Unwrap() error { return ErrOutOfRange }

// ParseCGPA reads a CGPA typed on d's source scale.
func ParseCGPA(raw string, d scale.Direction) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrOutOfRange
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, ErrOutOfRange
	}
	if v < 0 || v > scale.Ceiling {
		return 0, rangeError{inst: d.Source()}
	}
	return v, nil
}

// Mode says which input the caller filled in.
type Mode string

const (
	ModeSubjects Mode = "subjects"
	ModeTotal    Mode = "total"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSubjects, "subject":
		return ModeSubjects, nil
	case ModeTotal, "cgpa":
		return ModeTotal, nil
	default:
		return "", fmt.Errorf("unknown input mode %q (want subjects or total)", s)
	}
}

// IsValidation reports whether err is a problem with the caller's input
// rather than a failure of the service.
func IsValidation(err error) bool {
	for _, target := range []error{
		grading.ErrEmptyInput,
		grading.ErrInvalidEntry,
		grading.ErrZeroCredits,
		grading.ErrUnknownGrade,
		ErrOutOfRange,
		errBadRequest,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var errBadRequest = errors.New("bad request")
