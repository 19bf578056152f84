// Package history keeps an operator-facing log of conversions. The
// conversion itself never depends on it.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-cgpa/internal/converter"
	"github.com/mind-engage/mindengage-cgpa/internal/scale"
)

type Record struct {
	ID         string          `json:"id"`
	Direction  scale.Direction `json:"direction"`
	Mode       string          `json:"mode"`
	SourceCGPA float64         `json:"source_cgpa"`
	Percentage float64         `json:"percentage"`
	TargetCGPA float64         `json:"target_cgpa"`
	Subjects   int             `json:"subjects"`
	CreatedAt  time.Time       `json:"created_at"`
}

type ListOpts struct {
	Direction string // "" for both
	Limit     int
	Offset    int
}

const maxListLimit = 500

type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// Append stores r, filling in ID and CreatedAt when they are unset.
func (s *SQLStore) Append(ctx context.Context, r Record) (Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (id, direction, mode, source_cgpa, percentage, target_cgpa, subjects, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		r.ID, r.Direction.String(), r.Mode, r.SourceCGPA, r.Percentage, r.TargetCGPA, r.Subjects, r.CreatedAt.Unix())
	if err != nil {
		return Record{}, fmt.Errorf("append conversion: %w", err)
	}
	return r, nil
}

// Record implements converter.Recorder.
func (s *SQLStore) Record(ctx context.Context, res converter.Result) error {
	_, err := s.Append(ctx, Record{
		Direction:  res.Direction,
		Mode:       string(res.Mode),
		SourceCGPA: res.SourceCGPA,
		Percentage: res.Percentage,
		TargetCGPA: res.TargetCGPA,
		Subjects:   res.Subjects,
		CreatedAt:  res.At,
	})
	return err
}

// List returns records newest first.
func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Record, error) {
	if opts.Limit <= 0 || opts.Limit > maxListLimit {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	var (
		where []string
		args  []any
	)
	if d := strings.TrimSpace(opts.Direction); d != "" {
		dir, err := scale.ParseDirection(d)
		if err != nil {
			return nil, err
		}
		args = append(args, dir.String())
		where = append(where, fmt.Sprintf("direction = $%d", len(args)))
	}
	q := `SELECT id, direction, mode, source_cgpa, percentage, target_cgpa, subjects, created_at FROM conversions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, opts.Limit, opts.Offset)
	q += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			r       Record
			dir     string
			created int64
		)
		if err := rows.Scan(&r.ID, &dir, &r.Mode, &r.SourceCGPA, &r.Percentage, &r.TargetCGPA, &r.Subjects, &created); err != nil {
			return nil, err
		}
		if r.Direction, err = scale.ParseDirection(dir); err != nil {
			return nil, fmt.Errorf("conversion %s: %w", r.ID, err)
		}
		r.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Purge deletes every record and reports how many were removed.
func (s *SQLStore) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversions`)
	if err != nil {
		return 0, fmt.Errorf("purge conversions: %w", err)
	}
	return res.RowsAffected()
}
