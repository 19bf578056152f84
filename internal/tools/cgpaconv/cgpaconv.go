// Package cgpaconv is the offline command-line front end of the converter.
package cgpaconv

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/mind-engage/mindengage-cgpa/internal/converter"
	"github.com/mind-engage/mindengage-cgpa/internal/grading"
	"github.com/mind-engage/mindengage-cgpa/internal/scale"
)

// Output formats accepted by -o.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds the parsed command line.
type Config struct {
	Direction scale.Direction
	CGPA      string
	Subjects  []grading.SubjectEntry
	Format    string
	Explain   bool
	Grades    bool
}

// subjectFlags collects repeated -subject GRADE:CREDITS values.
type subjectFlags struct{ list *[]grading.SubjectEntry }

func (s subjectFlags) String() string {
	if s.list == nil {
		return ""
	}
	parts := make([]string, 0, len(*s.list))
	for _, e := range *s.list {
		parts = append(parts, fmt.Sprintf("%s:%g", e.Grade, e.Credits))
	}
	return strings.Join(parts, ",")
}

func (s subjectFlags) Set(v string) error {
	grade, credits, ok := strings.Cut(v, ":")
	if !ok {
		return fmt.Errorf("subject %q: want GRADE:CREDITS", v)
	}
	*s.list = append(*s.list, grading.SubjectEntry{
		Grade:   strings.TrimSpace(grade),
		Credits: grading.ParseCredits(credits),
	})
	return nil
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Direction: scale.SourceToTarget, Format: FormatText}
	fs.TextVar(&cfg.Direction, "direction", scale.SourceToTarget, "conversion direction: nsu-aiub or aiub-nsu")
	fs.StringVar(&cfg.CGPA, "cgpa", "", "CGPA on the source scale")
	fs.Var(subjectFlags{list: &cfg.Subjects}, "subject", "graded subject as GRADE:CREDITS (repeatable)")
	fs.StringVar(&cfg.Format, "o", cfg.Format, "output format: text, json or yaml")
	fs.BoolVar(&cfg.Explain, "explain", false, "show the intermediate percentage")
	fs.BoolVar(&cfg.Grades, "grades", false, "print the source institution's grade table and exit")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	switch cfg.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return Config{}, fmt.Errorf("unknown output format %q", cfg.Format)
	}
	if cfg.Grades {
		return cfg, nil
	}
	if cfg.CGPA != "" && len(cfg.Subjects) > 0 {
		return Config{}, errors.New("use either -cgpa or -subject, not both")
	}
	if cfg.CGPA == "" && len(cfg.Subjects) == 0 {
		return Config{}, errors.New("one of -cgpa or -subject is required")
	}
	return cfg, nil
}

// Request turns the command line into a converter request.
func (c Config) Request() converter.Request {
	if len(c.Subjects) > 0 {
		return converter.Request{Direction: c.Direction, Mode: converter.ModeSubjects, Subjects: c.Subjects}
	}
	return converter.Request{Direction: c.Direction, Mode: converter.ModeTotal, CGPA: c.CGPA}
}

// Run performs the conversion (or the grade listing) and writes it to out.
func Run(ctx context.Context, cfg Config, svc *converter.Service, out io.Writer) error {
	if out == nil {
		return errors.New("output is required")
	}
	if svc == nil {
		svc = converter.NewService()
	}
	if cfg.Grades {
		pol, err := grading.PolicyFor(cfg.Direction.Source())
		if err != nil {
			return err
		}
		return writeGrades(out, cfg.Format, pol)
	}

	res, err := svc.Convert(ctx, cfg.Request())
	if err != nil {
		return err
	}
	return writeResult(out, cfg.Format, cfg.Explain, res)
}

func writeResult(out io.Writer, format string, explain bool, res converter.Result) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case FormatYAML:
		return encodeYAML(out, res)
	}
	if _, err := fmt.Fprintf(out, "%s CGPA %s -> %s CGPA %s\n",
		res.SourceLabel, res.FormatSource(), res.TargetLabel, res.FormatTarget()); err != nil {
		return err
	}
	if explain {
		_, err := fmt.Fprintf(out, "  via %g%%\n", res.Percentage)
		return err
	}
	return nil
}

func writeGrades(out io.Writer, format string, pol grading.Policy) error {
	doc := struct {
		Institution grading.Institution `json:"institution" yaml:"institution"`
		Grades      []grading.Grade     `json:"grades" yaml:"grades"`
	}{pol.Institution(), pol.Grades()}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		return encodeYAML(out, doc)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s grade\tpoints\n", doc.Institution)
	for _, g := range doc.Grades {
		fmt.Fprintf(tw, "%s\t%.2f\n", g.Label, g.Points)
	}
	return tw.Flush()
}

func encodeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
