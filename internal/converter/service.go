// Package converter turns caller input (a typed CGPA or a list of graded
// subjects) into a converted CGPA. It owns the input validation that sits in
// front of the pure grading and scale packages.
package converter

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mind-engage/mindengage-cgpa/internal/grading"
	"github.com/mind-engage/mindengage-cgpa/internal/scale"
)

// Request is one conversion as submitted by a caller.
type Request struct {
	Direction scale.Direction
	Mode      Mode
	CGPA      string // used in ModeTotal
	Subjects  []grading.SubjectEntry
}

// Result is handed back to the caller.
type Result struct {
	Direction   scale.Direction `json:"direction" yaml:"direction"`
	Mode        Mode            `json:"mode" yaml:"mode"`
	SourceCGPA  float64         `json:"source_cgpa" yaml:"source_cgpa"`
	Percentage  float64         `json:"percentage" yaml:"percentage"`
	TargetCGPA  float64         `json:"target_cgpa" yaml:"target_cgpa"`
	SourceLabel string          `json:"source_label" yaml:"source_label"`
	TargetLabel string          `json:"target_label" yaml:"target_label"`
	Subjects    int             `json:"subjects,omitempty" yaml:"subjects,omitempty"`
	At          time.Time       `json:"-" yaml:"-"`
}

func (r Result) FormatSource() string { return fmt.Sprintf("%.2f", r.SourceCGPA) }
func (r Result) FormatTarget() string { return fmt.Sprintf("%.2f", r.TargetCGPA) }

// Recorder receives every successful conversion.
type Recorder interface {
	Record(ctx context.Context, res Result) error
}

type Option func(*Service)

// WithRecorder keeps a log of conversions. Recording errors are logged and
// never fail the conversion itself.
func WithRecorder(r Recorder) Option { return func(s *Service) { s.rec = r } }
func WithLogger(l *log.Logger) Option { return func(s *Service) { s.log = l } }
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service is safe for concurrent use; it holds no per-call state.
type Service struct {
	rec Recorder
	log *log.Logger
	now func() time.Time
}

func NewService(opts ...Option) *Service {
	s := &Service{log: log.Default(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SourceCGPA reduces req to a CGPA on the direction's source scale.
func SourceCGPA(req Request) (float64, error) {
	switch req.Mode {
	case ModeSubjects:
		pol, err := grading.PolicyFor(req.Direction.Source())
		if err != nil {
			return 0, err
		}
		return grading.WeightedAverage(req.Subjects, pol)
	case ModeTotal:
		return ParseCGPA(req.CGPA, req.Direction)
	default:
		return 0, fmt.Errorf("%w: unknown input mode %q", errBadRequest, req.Mode)
	}
}

// Convert validates req and converts it.
func (s *Service) Convert(ctx context.Context, req Request) (Result, error) {
	if !req.Direction.Valid() {
		return Result{}, fmt.Errorf("%w: unknown direction %s", errBadRequest, req.Direction)
	}
	src, err := SourceCGPA(req)
	if err != nil {
		return Result{}, err
	}
	c := scale.Trace(src, req.Direction)
	res := Result{
		Direction:   req.Direction,
		Mode:        req.Mode,
		SourceCGPA:  src,
		Percentage:  c.Percentage,
		TargetCGPA:  c.Target,
		SourceLabel: string(req.Direction.Source()),
		TargetLabel: string(req.Direction.Target()),
		At:          s.now(),
	}
	if req.Mode == ModeSubjects {
		res.Subjects = len(req.Subjects)
	}
	if s.rec != nil {
		if err := s.rec.Record(ctx, res); err != nil {
			s.log.Printf("record conversion (%s %s -> %s): %v", res.Direction, res.FormatSource(), res.FormatTarget(), err)
		}
	}
	return res, nil
}
