// Package scale converts a CGPA from one institution's scale to another's.
//
// A conversion runs through two step functions: the source CGPA picks an
// equivalent percentage, and the percentage picks the nearest legal CGPA on
// the target scale. Each direction has its own pair of tables; the reverse
// tables are tuned separately and are not the inverse of the forward ones,
// so a round trip does not in general return the starting value.
package scale

import (
	"fmt"
	"strings"

	"github.com/mind-engage/mindengage-cgpa/internal/grading"
)

// Ceiling is the top of both scales. Higher inputs convert as a perfect score.
const Ceiling = 4.0

// Direction selects the source and target institution of a conversion.
type Direction int

const (
	// SourceToTarget converts NSU to AIUB.
	SourceToTarget Direction = iota
	// TargetToSource converts AIUB to NSU.
	TargetToSource
)

var directionNames = map[Direction]string{
	SourceToTarget: "nsu-aiub",
	TargetToSource: "aiub-nsu",
}

func (d Direction) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	_, ok := routes[d]
	return ok
}

func (d Direction) Source() grading.Institution {
	if d == TargetToSource {
		return grading.AIUB
	}
	return grading.NSU
}

func (d Direction) Target() grading.Institution {
	if d == TargetToSource {
		return grading.NSU
	}
	return grading.AIUB
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == TargetToSource {
		return SourceToTarget
	}
	return TargetToSource
}

// ParseDirection accepts "nsu-aiub"/"aiub-nsu" (also with "_", ">" or "to"
// separators) and the names "forward"/"reverse".
func ParseDirection(s string) (Direction, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.NewReplacer("_", "-", ">", "-", " to ", "-").Replace(n)
	for strings.Contains(n, "--") {
		n = strings.ReplaceAll(n, "--", "-")
	}
	switch n {
	case "nsu-aiub", "forward", "source-target":
		return SourceToTarget, nil
	case "aiub-nsu", "reverse", "target-source":
		return TargetToSource, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (want nsu-aiub or aiub-nsu)", s)
	}
}

// MarshalText lets Direction travel as its name in JSON and YAML.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("unknown direction %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Route is the pair of step functions for one direction.
type Route struct {
	// ToPercent maps a source CGPA to an equivalent percentage.
	ToPercent Bands `json:"to_percent" yaml:"to_percent"`
	// ToCGPA maps the percentage to a target CGPA tier.
	ToCGPA Bands `json:"to_cgpa" yaml:"to_cgpa"`
}

var routes = map[Direction]Route{
	SourceToTarget: {
		ToPercent: Bands{
			{4.0, 95}, {3.7, 91}, {3.3, 88}, {3.0, 84}, {2.7, 81}, {2.3, 78},
			{2.0, 74}, {1.7, 71}, {1.3, 68}, {1.0, 63},
			// NSU F sits under AIUB's 50% pass line.
			{0, 45},
		},
		ToCGPA: Bands{
			{90, 4.00}, {85, 3.75}, {80, 3.50}, {75, 3.25}, {70, 3.00},
			{65, 2.75}, {60, 2.50}, {50, 2.25}, {0, 0.00},
		},
	},
	TargetToSource: {
		ToPercent: Bands{
			{4.00, 95}, {3.75, 87}, {3.50, 82}, {3.25, 77}, {3.00, 72},
			{2.75, 67}, {2.50, 62}, {2.25, 55}, {0, 40},
		},
		ToCGPA: Bands{
			{93, 4.0}, {90, 3.7}, {87, 3.3}, {83, 3.0}, {80, 2.7}, {77, 2.3},
			{73, 2.0}, {70, 1.7}, {67, 1.3}, {60, 1.0}, {0, 0.0},
		},
	},
}

// RouteFor returns a copy of the tables used for d.
func RouteFor(d Direction) (Route, bool) {
	r, ok := routes[d]
	if !ok {
		return Route{}, false
	}
	return Route{ToPercent: r.ToPercent.clone(), ToCGPA: r.ToCGPA.clone()}, true
}

// Conversion is a single conversion with its intermediate percentage.
type Conversion struct {
	Direction  Direction `json:"direction" yaml:"direction"`
	Source     float64   `json:"source_cgpa" yaml:"source_cgpa"`
	Percentage float64   `json:"percentage" yaml:"percentage"`
	Target     float64   `json:"target_cgpa" yaml:"target_cgpa"`
}

// Trace converts cgpa along d and keeps the percentage it went through.
// Inputs above Ceiling are treated as Ceiling; the function is total.
func Trace(cgpa float64, d Direction) Conversion {
	r := routes[d]
	in := cgpa
	if in > Ceiling {
		in = Ceiling
	}
	pct := r.ToPercent.Lookup(in)
	return Conversion{
		Direction:  d,
		Source:     cgpa,
		Percentage: pct,
		Target:     r.ToCGPA.Lookup(pct),
	}
}

// Convert maps cgpa on d's source scale to d's target scale.
func Convert(cgpa float64, d Direction) float64 {
	return Trace(cgpa, d).Target
}

// Directions lists the known directions in a stable order.
func Directions() []Direction {
	return []Direction{SourceToTarget, TargetToSource}
}
