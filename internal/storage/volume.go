// ABOUTME: Training volume aggregation over the log store.
// ABOUTME: Sums weight times reps per day, week or month bucket.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/adamsatar/lift/internal/models"
)

// bucketExpr maps a bucket to the SQLite expression for the bucket's first date.
// Weeks start on Monday.
var bucketExpr = map[models.VolumeBucket]string{
	models.BucketDay:   "w.date",
	models.BucketWeek:  "date(w.date, 'weekday 0', '-6 days')",
	models.BucketMonth: "strftime('%Y-%m-01', w.date)",
}

// Volume aggregates weight x reps per period. Only sets carrying both weight
// and reps contribute; duration sets and unweighted sets are skipped.
func (s *LogStore) Volume(ctx context.Context, f models.VolumeFilter) ([]models.VolumePoint, error) {
	bucket := f.Bucket
	if bucket == "" {
		bucket = models.BucketDay
	}
	period, ok := bucketExpr[bucket]
	if !ok {
		return nil, fmt.Errorf("volume: %w: unknown bucket %q", ErrMalformedInput, bucket)
	}

	where := []string{"e.weight IS NOT NULL", "e.reps IS NOT NULL"}
	var args []any

	if f.From != "" {
		from, err := models.NormalizeDate(f.From)
		if err != nil {
			return nil, fmt.Errorf("volume: %w: %v", ErrMalformedInput, err)
		}
		where = append(where, "w.date >= ?")
		args = append(args, from)
	}
	if f.To != "" {
		to, err := models.NormalizeDate(f.To)
		if err != nil {
			return nil, fmt.Errorf("volume: %w: %v", ErrMalformedInput, err)
		}
		where = append(where, "w.date <= ?")
		args = append(args, to)
	}
	if len(f.ExerciseIDs) > 0 {
		where = append(where, "e.exercise_id IN ("+placeholders(len(f.ExerciseIDs))+")")
		for _, id := range f.ExerciseIDs {
			args = append(args, id)
		}
	}

	exerciseCol := "NULL"
	groupBy := "period"
	if f.PerExercise {
		exerciseCol = "e.exercise_id"
		groupBy = "period, e.exercise_id"
	}

	query := fmt.Sprintf(`
		SELECT %s AS period, %s, SUM(e.weight * e.reps), COUNT(*), SUM(e.reps)
		FROM exercises e
		JOIN workouts w ON w.id = e.workout_id
		WHERE %s
		GROUP BY %s
		ORDER BY %s
	`, period, exerciseCol, strings.Join(where, " AND "), groupBy, groupBy)

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("volume: %w", err)
	}
	defer rows.Close()

	var out []models.VolumePoint
	for rows.Next() {
		var p models.VolumePoint
		var exerciseID sql.NullInt64
		if err := rows.Scan(&p.Period, &exerciseID, &p.Volume, &p.Sets, &p.Reps); err != nil {
			return nil, fmt.Errorf("scan volume: %w", err)
		}
		if exerciseID.Valid {
			id := exerciseID.Int64
			p.ExerciseID = &id
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
