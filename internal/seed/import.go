// ABOUTME: Bulk import of historical sets from CSV into the log store.
// ABOUTME: Groups rows by date into workouts and sequences exercises by first appearance.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/adamsatar/lift/internal/models"
	"github.com/adamsatar/lift/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// ImportOptions controls an import run.
type ImportOptions struct {
	// DryRun parses and resolves rows without writing.
	DryRun bool
	// Replace deletes the existing sets of every imported date first.
	Replace bool
	// SkipMalformed skips rows missing a date or exercise instead of aborting.
	SkipMalformed bool
}

// ImportStats counts what an import run did.
type ImportStats struct {
	Rows            int
	Workouts        int
	Sets            int
	SequenceEntries int
	Replaced        int64
	Malformed       int
	// Unresolved maps exercise names missing from the catalog to their row count.
	Unresolved map[string]int
	// RowErrors holds every skipped malformed row's error.
	RowErrors error
}

// Importer loads CSV set logs into the log store, resolving names against the catalog.
type Importer struct {
	catalog storage.CatalogRepository
	log     storage.LogRepository
	logger  logrus.FieldLogger
	opts    ImportOptions
}

// NewImporter creates an Importer over the given stores.
func NewImporter(catalog storage.CatalogRepository, log storage.LogRepository, logger logrus.FieldLogger, opts ImportOptions) *Importer {
	return &Importer{
		catalog: catalog,
		log:     log,
		logger:  logger,
		opts:    opts,
	}
}

// importRow is one parsed CSV line.
type importRow struct {
	line       int
	date       string
	exercise   string
	exerciseID *int64
	setNumber  *int
	weight     *float64
	reps       *int
	duration   *int
	rest       *int
	note       *string
	side       *models.Side
}

// Import reads CSV from r. The header row names the columns; date and exercise
// are required, the rest are optional. Each date is written in its own transaction.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*ImportStats, error) {
	stats := &ImportStats{Unresolved: make(map[string]int)}

	rows, err := im.parse(r, stats)
	if err != nil {
		return nil, err
	}

	if err := im.resolve(ctx, rows, stats); err != nil {
		return nil, err
	}
	rows = dropMalformed(rows)

	byDate := make(map[string][]*importRow)
	for _, row := range rows {
		byDate[row.date] = append(byDate[row.date], row)
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	for name, n := range stats.Unresolved {
		im.logger.WithFields(logrus.Fields{"exercise": name, "rows": n}).
			Warn("exercise not in catalog, importing without exercise id")
	}

	if im.opts.DryRun {
		stats.Workouts = len(dates)
		stats.Sets = len(rows)
		return stats, nil
	}

	for _, date := range dates {
		if err := im.importDate(ctx, date, byDate[date], stats); err != nil {
			return stats, fmt.Errorf("import %s: %w", date, err)
		}
		stats.Workouts++
	}

	im.logger.WithFields(logrus.Fields{
		"workouts": stats.Workouts,
		"sets":     stats.Sets,
		"skipped":  stats.Malformed,
	}).Info("import complete")

	return stats, nil
}

func (im *Importer) importDate(ctx context.Context, date string, rows []*importRow, stats *ImportStats) error {
	return im.log.InTx(ctx, func(tx storage.LogRepository) error {
		workoutID, err := tx.GetOrCreateWorkout(ctx, date)
		if err != nil {
			return err
		}

		if im.opts.Replace {
			n, err := tx.DeleteWorkoutSets(ctx, workoutID)
			if err != nil {
				return err
			}
			stats.Replaced += n
		}

		// Sequence exercises in first-appearance order.
		seen := make(map[int64]bool)
		for _, row := range rows {
			if row.exerciseID == nil || seen[*row.exerciseID] {
				continue
			}
			seen[*row.exerciseID] = true
			_, created, err := tx.RecordFirstOccurrence(ctx, workoutID, *row.exerciseID)
			if err != nil {
				return err
			}
			if created {
				stats.SequenceEntries++
			}
		}

		counters := make(map[string]int)
		for _, row := range rows {
			set := im.buildSet(workoutID, row, counters)
			if _, err := tx.InsertSet(ctx, set); err != nil {
				return fmt.Errorf("line %d: %w", row.line, err)
			}
			stats.Sets++
		}
		return nil
	})
}

// buildSet numbers rows without a set_number after the highest seen for that exercise.
func (im *Importer) buildSet(workoutID uuid.UUID, row *importRow, counters map[string]int) *models.Set {
	number := counters[row.exercise] + 1
	if row.setNumber != nil {
		number = *row.setNumber
	}
	if number > counters[row.exercise] {
		counters[row.exercise] = number
	}

	return &models.Set{
		WorkoutID:  workoutID,
		ExerciseID: row.exerciseID,
		SetNumber:  number,
		Weight:     row.weight,
		Reps:       row.reps,
		Duration:   row.duration,
		Rest:       row.rest,
		Note:       row.note,
		Side:       row.side,
	}
}

// resolve attaches catalog ids and applies each entry's measured-by mode.
func (im *Importer) resolve(ctx context.Context, rows []*importRow, stats *ImportStats) error {
	entries, err := im.catalog.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	byName := make(map[string]*models.CatalogEntry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	for _, row := range rows {
		entry, ok := byName[row.exercise]
		if !ok {
			stats.Unresolved[row.exercise]++
			if row.reps != nil && row.duration != nil {
				err := fmt.Errorf("line %d: %w: both reps and duration for %q", row.line, storage.ErrMalformedInput, row.exercise)
				if err := im.malformed(stats, err); err != nil {
					return err
				}
				row.line = -1
			}
			continue
		}

		id := entry.ID
		row.exerciseID = &id
		switch entry.MeasuredBy {
		case models.MeasuredByDuration:
			row.reps = nil
		default:
			row.duration = nil
		}
	}
	return nil
}

func (im *Importer) parse(r io.Reader, stats *ImportStats) ([]*importRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"date", "exercise"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing %q column", storage.ErrMalformedInput, required)
		}
	}

	var rows []*importRow
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		stats.Rows++

		row, err := parseRow(line, cols, record)
		if err != nil {
			if err := im.malformed(stats, err); err != nil {
				return nil, err
			}
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// malformed records err when skipping is allowed and returns it otherwise.
func (im *Importer) malformed(stats *ImportStats, err error) error {
	if !im.opts.SkipMalformed {
		return err
	}
	stats.Malformed++
	stats.RowErrors = multierr.Append(stats.RowErrors, err)
	im.logger.WithError(err).Warn("skipping malformed row")
	return nil
}

func dropMalformed(rows []*importRow) []*importRow {
	out := rows[:0]
	for _, row := range rows {
		if row.line >= 0 {
			out = append(out, row)
		}
	}
	return out
}

func parseRow(line int, cols map[string]int, record []string) (*importRow, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := &importRow{line: line, exercise: cell("exercise")}

	rawDate := cell("date")
	if rawDate == "" {
		return nil, fmt.Errorf("line %d: %w: missing date", line, storage.ErrMalformedInput)
	}
	if row.exercise == "" {
		return nil, fmt.Errorf("line %d: %w: missing exercise", line, storage.ErrMalformedInput)
	}
	date, err := models.NormalizeDate(rawDate)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w: %v", line, storage.ErrMalformedInput, err)
	}
	row.date = date

	var errs error
	row.setNumber, err = parseOptionalInt(cell("set_number"))
	errs = multierr.Append(errs, wrapCell(err, "set_number"))
	row.weight, err = parseOptionalFloat(cell("weight"))
	errs = multierr.Append(errs, wrapCell(err, "weight"))
	row.reps, err = parseOptionalInt(cell("reps"))
	errs = multierr.Append(errs, wrapCell(err, "reps"))
	row.duration, err = parseOptionalInt(cell("duration"))
	errs = multierr.Append(errs, wrapCell(err, "duration"))
	row.rest, err = parseOptionalInt(cell("rest"))
	errs = multierr.Append(errs, wrapCell(err, "rest"))
	row.side, err = models.ParseSide(cell("side"))
	errs = multierr.Append(errs, wrapCell(err, "side"))
	if errs != nil {
		return nil, fmt.Errorf("line %d: %w: %v", line, storage.ErrMalformedInput, errs)
	}

	if row.setNumber != nil && *row.setNumber < 1 {
		return nil, fmt.Errorf("line %d: %w: set_number must be positive", line, storage.ErrMalformedInput)
	}
	if note := cell("note"); note != "" {
		row.note = &note
	}
	return row, nil
}

func wrapCell(err error, column string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %v", column, err)
}

// isBlank treats spreadsheet null markers as empty cells.
func isBlank(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "null", "none":
		return true
	}
	return false
}

// parseOptionalInt accepts whole-number floats such as "10.0".
func parseOptionalInt(s string) (*int, error) {
	if isBlank(s) {
		return nil, nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return &v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return nil, fmt.Errorf("not a whole number: %q", s)
	}
	v := int(f)
	return &v, nil
}

func parseOptionalFloat(s string) (*float64, error) {
	if isBlank(s) {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	return &f, nil
}
