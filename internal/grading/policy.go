package grading

import (
	"fmt"
	"strings"
)

// Institution identifies a university grading scale.
type Institution string

const (
	NSU  Institution = "NSU"
	AIUB Institution = "AIUB"
)

// ParseInstitution accepts the institution name in any case.
func ParseInstitution(s string) (Institution, error) {
	switch Institution(strings.ToUpper(strings.TrimSpace(s))) {
	case NSU:
		return NSU, nil
	case AIUB:
		return AIUB, nil
	default:
		return "", fmt.Errorf("unknown institution: %q", s)
	}
}

// Grade is a single letter grade and the points it is worth.
type Grade struct {
	Label  string  `json:"label" yaml:"label"`
	Points float64 `json:"points" yaml:"points"`
}

// Policy is an institution's letter-grade table, best grade first.
// The zero value is an empty policy that knows no grades.
type Policy struct {
	inst   Institution
	grades []Grade
	index  map[string]float64
}

func newPolicy(inst Institution, grades ...Grade) Policy {
	idx := make(map[string]float64, len(grades))
	for _, g := range grades {
		idx[g.Label] = g.Points
	}
	return Policy{inst: inst, grades: grades, index: idx}
}

var (
	nsuPolicy = newPolicy(NSU,
		Grade{"A", 4.0}, Grade{"A-", 3.7}, Grade{"B+", 3.3}, Grade{"B", 3.0}, Grade{"B-", 2.7},
		Grade{"C+", 2.3}, Grade{"C", 2.0}, Grade{"C-", 1.7}, Grade{"D+", 1.3}, Grade{"D", 1.0},
		Grade{"F", 0.0},
	)
	aiubPolicy = newPolicy(AIUB,
		Grade{"A+", 4.00}, Grade{"A", 3.75}, Grade{"B+", 3.50}, Grade{"B", 3.25}, Grade{"C+", 3.00},
		Grade{"C", 2.75}, Grade{"D+", 2.50}, Grade{"D", 2.25}, Grade{"F", 0.00},
	)
)

func NSUPolicy() Policy  { return nsuPolicy }
func AIUBPolicy() Policy { return aiubPolicy }

// PolicyFor returns the grade table of inst.
func PolicyFor(inst Institution) (Policy, error) {
	switch inst {
	case NSU:
		return nsuPolicy, nil
	case AIUB:
		return aiubPolicy, nil
	default:
		return Policy{}, fmt.Errorf("no grade policy for institution %q", inst)
	}
}

func (p Policy) Institution() Institution { return p.inst }

// Grades returns a copy of the table in order.
func (p Policy) Grades() []Grade {
	out := make([]Grade, len(p.grades))
	copy(out, p.grades)
	return out
}

// Labels lists the grade labels in table order.
func (p Policy) Labels() []string {
	out := make([]string, 0, len(p.grades))
	for _, g := range p.grades {
		out = append(out, g.Label)
	}
	return out
}

// Range returns the lowest and highest points in the table.
func (p Policy) Range() (lo, hi float64) {
	if len(p.grades) == 0 {
		return 0, 0
	}
	return p.grades[len(p.grades)-1].Points, p.grades[0].Points
}

// PointsFor looks up label in policy. Matching is exact and case-sensitive.
func PointsFor(policy Policy, label string) (float64, error) {
	pts, ok := policy.index[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a %s grade", ErrUnknownGrade, label, policy.inst)
	}
	return pts, nil
}
