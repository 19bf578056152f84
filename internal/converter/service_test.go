package converter_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-cgpa/internal/converter"
	"github.com/mind-engage/mindengage-cgpa/internal/grading"
	"github.com/mind-engage/mindengage-cgpa/internal/scale"
)

type fakeRecorder struct {
	got []converter.Result
	err error
}

func (f *fakeRecorder) Record(_ context.Context, res converter.Result) error {
	f.got = append(f.got, res)
	return f.err
}

func TestParseCGPA(t *testing.T) {
	v, err := converter.ParseCGPA("3.5", scale.SourceToTarget)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	v, err = converter.ParseCGPA(" 4 ", scale.SourceToTarget)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	v, err = converter.ParseCGPA("0", scale.TargetToSource)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	for _, raw := range []string{"", "   ", "abc", "NaN", "3.5.1", "5", "-0.1", "4.01", "Inf"} {
		_, err := converter.ParseCGPA(raw, scale.SourceToTarget)
		assert.ErrorIs(t, err, converter.ErrOutOfRange, "raw %q", raw)
	}
}

func TestParseCGPA_Messages(t *testing.T) {
	_, err := converter.ParseCGPA("abc", scale.SourceToTarget)
	assert.EqualError(t, err, "Please enter a valid CGPA.")

	_, err = converter.ParseCGPA("5", scale.SourceToTarget)
	assert.EqualError(t, err, "Please enter an NSU CGPA between 0.00 and 4.00.")

	_, err = converter.ParseCGPA("5", scale.TargetToSource)
	assert.EqualError(t, err, "Please enter an AIUB CGPA between 0.00 and 4.00.")
}

func TestParseMode(t *testing.T) {
	m, err := converter.ParseMode("Subjects")
	require.NoError(t, err)
	assert.Equal(t, converter.ModeSubjects, m)
	m, err = converter.ParseMode("total")
	require.NoError(t, err)
	assert.Equal(t, converter.ModeTotal, m)
	_, err = converter.ParseMode("both")
	assert.Error(t, err)
}

func TestService_ConvertTotal(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := converter.NewService(converter.WithClock(func() time.Time { return at }))

	res, err := svc.Convert(context.Background(), converter.Request{
		Direction: scale.SourceToTarget,
		Mode:      converter.ModeTotal,
		CGPA:      "3.5",
	})
	require.NoError(t, err)
	assert.Equal(t, 3.5, res.SourceCGPA)
	assert.Equal(t, 88.0, res.Percentage)
	assert.Equal(t, 3.75, res.TargetCGPA)
	assert.Equal(t, "NSU", res.SourceLabel)
	assert.Equal(t, "AIUB", res.TargetLabel)
	assert.Equal(t, "3.50", res.FormatSource())
	assert.Equal(t, "3.75", res.FormatTarget())
	assert.Equal(t, at, res.At)
	assert.Zero(t, res.Subjects)
}

func TestService_ConvertSubjects(t *testing.T) {
	svc := converter.NewService()

	res, err := svc.Convert(context.Background(), converter.Request{
		Direction: scale.SourceToTarget,
		Mode:      converter.ModeSubjects,
		Subjects: []grading.SubjectEntry{
			{Grade: "A", Credits: 3},
			{Grade: "B", Credits: 3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3.5, res.SourceCGPA)
	assert.Equal(t, 3.75, res.TargetCGPA)
	assert.Equal(t, 2, res.Subjects)

	// subjects are graded on the source institution's scale
	res, err = svc.Convert(context.Background(), converter.Request{
		Direction: scale.TargetToSource,
		Mode:      converter.ModeSubjects,
		Subjects:  []grading.SubjectEntry{{Grade: "A+", Credits: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.SourceCGPA)
	assert.Equal(t, 4.0, res.TargetCGPA)
	assert.Equal(t, "AIUB", res.SourceLabel)

	_, err = svc.Convert(context.Background(), converter.Request{
		Direction: scale.TargetToSource,
		Mode:      converter.ModeSubjects,
		Subjects:  []grading.SubjectEntry{{Grade: "A-", Credits: 3}},
	})
	assert.ErrorIs(t, err, grading.ErrUnknownGrade)
}

func TestService_ValidationErrors(t *testing.T) {
	svc := converter.NewService()
	cases := []struct {
		name string
		req  converter.Request
		want error
	}{
		{"no subjects", converter.Request{Mode: converter.ModeSubjects}, grading.ErrEmptyInput},
		{"bad credits", converter.Request{Mode: converter.ModeSubjects, Subjects: []grading.SubjectEntry{{Grade: "A"}}}, grading.ErrInvalidEntry},
		{"unknown grade", converter.Request{Mode: converter.ModeSubjects, Subjects: []grading.SubjectEntry{{Grade: "Z", Credits: 3}}}, grading.ErrUnknownGrade},
		{"too high", converter.Request{Mode: converter.ModeTotal, CGPA: "5"}, converter.ErrOutOfRange},
		{"not a number", converter.Request{Mode: converter.ModeTotal, CGPA: "abc"}, converter.ErrOutOfRange},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Convert(context.Background(), c.req)
			assert.ErrorIs(t, err, c.want)
			assert.True(t, converter.IsValidation(err))
		})
	}
}

func TestService_RejectsBadModeAndDirection(t *testing.T) {
	svc := converter.NewService()
	_, err := svc.Convert(context.Background(), converter.Request{Mode: "both", CGPA: "3"})
	require.Error(t, err)
	assert.True(t, converter.IsValidation(err))

	_, err = svc.Convert(context.Background(), converter.Request{Direction: scale.Direction(7), Mode: converter.ModeTotal, CGPA: "3"})
	require.Error(t, err)
	assert.True(t, converter.IsValidation(err))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, converter.IsValidation(fmt.Errorf("row: %w", grading.ErrZeroCredits)))
	assert.False(t, converter.IsValidation(errors.New("disk on fire")))
	assert.False(t, converter.IsValidation(nil))
}

func TestService_RecordsConversions(t *testing.T) {
	rec := &fakeRecorder{}
	svc := converter.NewService(converter.WithRecorder(rec))

	_, err := svc.Convert(context.Background(), converter.Request{Direction: scale.TargetToSource, Mode: converter.ModeTotal, CGPA: "3.50"})
	require.NoError(t, err)
	_, err = svc.Convert(context.Background(), converter.Request{Direction: scale.TargetToSource, Mode: converter.ModeTotal, CGPA: "9"})
	require.Error(t, err)

	require.Len(t, rec.got, 1, "failed conversions are not recorded")
	assert.Equal(t, 2.7, rec.got[0].TargetCGPA)
	assert.Equal(t, scale.TargetToSource, rec.got[0].Direction)
}

func TestService_RecorderFailureIsLoggedOnly(t *testing.T) {
	var buf bytes.Buffer
	rec := &fakeRecorder{err: errors.New("db down")}
	svc := converter.NewService(converter.WithRecorder(rec), converter.WithLogger(log.New(&buf, "", 0)))

	res, err := svc.Convert(context.Background(), converter.Request{Direction: scale.SourceToTarget, Mode: converter.ModeTotal, CGPA: "2.0"})
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.TargetCGPA)
	assert.Contains(t, buf.String(), "db down")
}

func TestService_TypedCGPAJustBelowThreshold(t *testing.T) {
	svc := converter.NewService()
	for raw, want := range map[string]float64{
		"3.6999999999": 4.00, // within 1e-9 of 3.7
		"3.699999":     3.75,
	} {
		res, err := svc.Convert(context.Background(), converter.Request{
			Direction: scale.SourceToTarget,
			Mode:      converter.ModeTotal,
			CGPA:      raw,
		})
		require.NoError(t, err, raw)
		assert.Equal(t, want, res.TargetCGPA, raw)
	}
}
