// ABOUTME: Log store: workouts, per-workout exercise sequence and logged sets.
// ABOUTME: Catalog exercise ids are stored as opaque references, never joined.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/adamsatar/lift/internal/models"
	"github.com/google/uuid"
)

// LogStore holds workouts and logged sets in its own SQLite database.
type LogStore struct {
	db     *sql.DB
	q      querier
	dbPath string
	inTx   bool
}

// OpenLog opens or creates the log store at dbPath.
func OpenLog(dbPath string) (*LogStore, error) {
	db, err := openDB(dbPath, logMigrations)
	if err != nil {
		return nil, err
	}
	return &LogStore{db: db, q: db, dbPath: dbPath}, nil
}

// Close closes the database connection. It is a no-op on a transaction-bound store.
func (s *LogStore) Close() error {
	if s.inTx || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *LogStore) Path() string {
	return s.dbPath
}

// SchemaVersion returns the applied migration version.
func (s *LogStore) SchemaVersion() (uint, bool, error) {
	return schemaVersion(s.db)
}

// InTx runs fn with a store bound to a single transaction.
func (s *LogStore) InTx(ctx context.Context, fn func(LogRepository) error) error {
	return s.withTx(ctx, func(tx *LogStore) error { return fn(tx) })
}

func (s *LogStore) withTx(ctx context.Context, fn func(*LogStore) error) error {
	if s.inTx {
		return fn(s)
	}
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&LogStore{db: s.db, q: tx, dbPath: s.dbPath, inTx: true})
	})
}

// GetOrCreateWorkout returns the workout id for date, creating the row on first use.
// The id depends only on the date, so repeated calls and re-imports agree.
func (s *LogStore) GetOrCreateWorkout(ctx context.Context, date string) (uuid.UUID, error) {
	d, err := models.NormalizeDate(date)
	if err != nil {
		return uuid.Nil, fmt.Errorf("get or create workout: %w: %v", ErrMalformedInput, err)
	}

	w := models.NewWorkout(d)
	_, err = s.q.ExecContext(ctx,
		`INSERT INTO workouts (id, date) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		w.ID.String(), w.Date)
	if err != nil {
		return uuid.Nil, fmt.Errorf("get or create workout: %w", err)
	}
	return w.ID, nil
}

// RecordFirstOccurrence gives exerciseID the next sequence number in the workout
// unless it already has one. It returns the sequence number and whether it was new.
func (s *LogStore) RecordFirstOccurrence(ctx context.Context, workoutID uuid.UUID, exerciseID int64) (int, bool, error) {
	var seq int
	var created bool
	err := s.withTx(ctx, func(tx *LogStore) error {
		err := tx.q.QueryRowContext(ctx, `
			SELECT sequence_number FROM workout_sequence
			WHERE workout_id = ? AND exercise_id = ?
		`, workoutID.String(), exerciseID).Scan(&seq)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		err = tx.q.QueryRowContext(ctx, `
			SELECT COALESCE(MAX(sequence_number), 0) + 1 FROM workout_sequence
			WHERE workout_id = ?
		`, workoutID.String()).Scan(&seq)
		if err != nil {
			return err
		}

		_, err = tx.q.ExecContext(ctx, `
			INSERT INTO workout_sequence (workout_id, exercise_id, sequence_number)
			VALUES (?, ?, ?)
		`, workoutID.String(), exerciseID, seq)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("workout %s: %w", workoutID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("record first occurrence: %w", err)
	}
	return seq, created, nil
}

// ListSequence returns a workout's exercise order, first performed first.
func (s *LogStore) ListSequence(ctx context.Context, workoutID uuid.UUID) ([]models.SequenceEntry, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT workout_id, exercise_id, sequence_number
		FROM workout_sequence
		WHERE workout_id = ?
		ORDER BY sequence_number ASC
	`, workoutID.String())
	if err != nil {
		return nil, fmt.Errorf("list sequence: %w", err)
	}
	defer rows.Close()

	var out []models.SequenceEntry
	for rows.Next() {
		var e models.SequenceEntry
		if err := rows.Scan(&e.WorkoutID, &e.ExerciseID, &e.SequenceNumber); err != nil {
			return nil, fmt.Errorf("scan sequence: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertSet appends one logged set and sets its ID. Duplicate set numbers are
// not checked.
func (s *LogStore) InsertSet(ctx context.Context, set *models.Set) (int64, error) {
	if err := set.Validate(); err != nil {
		return 0, fmt.Errorf("insert set: %w: %v", ErrConstraintViolation, err)
	}

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO exercises (workout_id, exercise_id, set_number, weight, reps, duration, rest, note, side)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		set.WorkoutID.String(),
		set.ExerciseID,
		set.SetNumber,
		set.Weight,
		set.Reps,
		set.Duration,
		set.Rest,
		set.Note,
		sideValue(set.Side),
	)
	if isForeignKeyViolation(err) {
		return 0, fmt.Errorf("insert set: workout %s: %w", set.WorkoutID, ErrNotFound)
	}
	if isCheckViolation(err) {
		return 0, fmt.Errorf("insert set: %w: %v", ErrConstraintViolation, err)
	}
	if err != nil {
		return 0, fmt.Errorf("insert set: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert set: %w", err)
	}
	set.ID = id
	return id, nil
}

// UpdateSet overwrites every field of the set with set.ID except its workout.
func (s *LogStore) UpdateSet(ctx context.Context, set *models.Set) error {
	if err := set.Validate(); err != nil {
		return fmt.Errorf("update set: %w: %v", ErrConstraintViolation, err)
	}

	res, err := s.q.ExecContext(ctx, `
		UPDATE exercises
		SET exercise_id = ?, set_number = ?, weight = ?, reps = ?, duration = ?, rest = ?, note = ?, side = ?
		WHERE id = ?
	`,
		set.ExerciseID,
		set.SetNumber,
		set.Weight,
		set.Reps,
		set.Duration,
		set.Rest,
		set.Note,
		sideValue(set.Side),
		set.ID,
	)
	if isCheckViolation(err) {
		return fmt.Errorf("update set: %w: %v", ErrConstraintViolation, err)
	}
	if err != nil {
		return fmt.Errorf("update set: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update set: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update set %d: %w", set.ID, ErrNotFound)
	}
	return nil
}

// DeleteSet removes one set. The workout sequence is left as is, even when
// this was the exercise's last set that day.
func (s *LogStore) DeleteSet(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM exercises WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete set: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete set %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteWorkoutSets removes every set of a workout and returns how many were removed.
func (s *LogStore) DeleteWorkoutSets(ctx context.Context, workoutID uuid.UUID) (int64, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM exercises WHERE workout_id = ?`, workoutID.String())
	if err != nil {
		return 0, fmt.Errorf("delete workout sets: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete workout sets: %w", err)
	}
	return n, nil
}

const setColumns = `
	SELECT e.id, e.workout_id, w.date, e.exercise_id, e.set_number,
	       e.weight, e.reps, e.duration, e.rest, e.note, e.side
	FROM exercises e
	JOIN workouts w ON w.id = e.workout_id
`

// GetSet retrieves a single set by id.
func (s *LogStore) GetSet(ctx context.Context, id int64) (*models.Set, error) {
	set, err := scanSet(s.q.QueryRowContext(ctx, setColumns+` WHERE e.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("set %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get set: %w", err)
	}
	return set, nil
}

// ListSets returns sets ordered by date descending, then set number ascending.
func (s *LogStore) ListSets(ctx context.Context, f models.SetFilter) ([]*models.Set, error) {
	var where []string
	var args []any

	if len(f.Dates) > 0 {
		dates := make([]any, 0, len(f.Dates))
		for _, d := range f.Dates {
			nd, err := models.NormalizeDate(d)
			if err != nil {
				return nil, fmt.Errorf("list sets: %w: %v", ErrMalformedInput, err)
			}
			dates = append(dates, nd)
		}
		where = append(where, "w.date IN ("+placeholders(len(dates))+")")
		args = append(args, dates...)
	}

	if len(f.ExerciseIDs) > 0 {
		where = append(where, "e.exercise_id IN ("+placeholders(len(f.ExerciseIDs))+")")
		for _, id := range f.ExerciseIDs {
			args = append(args, id)
		}
	}

	query := setColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY w.date DESC, e.set_number ASC, e.id ASC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	var out []*models.Set
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		out = append(out, set)
	}
	return out, rows.Err()
}

// NextSetNumber returns one past the highest set number logged for the
// exercise in the workout. A nil exerciseID counts unresolved sets.
func (s *LogStore) NextSetNumber(ctx context.Context, workoutID uuid.UUID, exerciseID *int64) (int, error) {
	var next int
	err := s.q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(set_number), 0) + 1 FROM exercises
		WHERE workout_id = ? AND exercise_id IS ?
	`, workoutID.String(), exerciseID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next set number: %w", err)
	}
	return next, nil
}

// ListWorkouts returns workouts, most recent date first. A limit of 0 returns all.
func (s *LogStore) ListWorkouts(ctx context.Context, limit int) ([]*models.Workout, error) {
	query := `SELECT id, date FROM workouts ORDER BY date DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	var out []*models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.Date); err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}

// GetWorkout finds a workout by date, full id or unique id prefix.
func (s *LogStore) GetWorkout(ctx context.Context, ref string) (*models.Workout, error) {
	ref = strings.TrimSpace(ref)
	if d, err := models.NormalizeDate(ref); err == nil {
		return s.workoutWhere(ctx, "date = ?", d, ref)
	}

	id, err := s.resolveWorkoutID(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("get workout: %w", err)
	}
	return s.workoutWhere(ctx, "id = ?", id, ref)
}

func (s *LogStore) workoutWhere(ctx context.Context, cond string, arg any, ref string) (*models.Workout, error) {
	var w models.Workout
	err := s.q.QueryRowContext(ctx, `SELECT id, date FROM workouts WHERE `+cond, arg).Scan(&w.ID, &w.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("workout %s: %w", ref, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get workout: %w", err)
	}
	return &w, nil
}

// resolveWorkoutID finds the full ID from a prefix. Prefixes may contain only
// hex digits and dashes, so they are safe to use in a LIKE pattern.
func (s *LogStore) resolveWorkoutID(ctx context.Context, idOrPrefix string) (string, error) {
	if id, err := uuid.Parse(idOrPrefix); err == nil {
		return id.String(), nil
	}
	if idOrPrefix == "" {
		return "", fmt.Errorf("%w: empty workout reference", ErrMalformedInput)
	}
	prefix := strings.ToLower(idOrPrefix)
	if strings.Trim(prefix, "0123456789abcdef-") != "" {
		return "", fmt.Errorf("%w: workout reference %q is neither a date nor an id prefix", ErrMalformedInput, idOrPrefix)
	}

	rows, err := s.q.QueryContext(ctx, `SELECT id FROM workouts WHERE id LIKE ? || '%'`, prefix)
	if err != nil {
		return "", fmt.Errorf("resolve workout ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan workout ID: %w", err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("workout %s: %w", idOrPrefix, ErrNotFound)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("%w: prefix %s matches %d workouts", ErrMalformedInput, idOrPrefix, len(matches))
	}
	return matches[0], nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func sideValue(side *models.Side) any {
	if side == nil {
		return nil
	}
	return string(*side)
}

func scanSet(row rowScanner) (*models.Set, error) {
	var set models.Set
	var exerciseID sql.NullInt64
	var weight sql.NullFloat64
	var reps, duration, rest sql.NullInt64
	var note, side sql.NullString

	err := row.Scan(
		&set.ID,
		&set.WorkoutID,
		&set.Date,
		&exerciseID,
		&set.SetNumber,
		&weight,
		&reps,
		&duration,
		&rest,
		&note,
		&side,
	)
	if err != nil {
		return nil, err
	}

	if exerciseID.Valid {
		set.ExerciseID = &exerciseID.Int64
	}
	if weight.Valid {
		set.Weight = &weight.Float64
	}
	if reps.Valid {
		v := int(reps.Int64)
		set.Reps = &v
	}
	if duration.Valid {
		v := int(duration.Int64)
		set.Duration = &v
	}
	if rest.Valid {
		v := int(rest.Int64)
		set.Rest = &v
	}
	if note.Valid {
		set.Note = &note.String
	}
	if side.Valid {
		v := models.Side(side.String)
		set.Side = &v
	}
	return &set, nil
}
