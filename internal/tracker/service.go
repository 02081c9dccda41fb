// ABOUTME: Tracker service joining the catalog and log stores for presentation.
// ABOUTME: Both the CLI and the MCP server log and read sets through it.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/adamsatar/lift/internal/models"
	"github.com/adamsatar/lift/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UnknownExercise is the display name for sets whose exercise is not in the catalog.
const UnknownExercise = "Unknown"

// Service resolves exercise names against the catalog and writes sets to the log.
// It never spans a transaction across the two stores.
type Service struct {
	catalog storage.CatalogRepository
	log     storage.LogRepository
	logger  logrus.FieldLogger
}

// New creates a Service over the given stores.
func New(catalog storage.CatalogRepository, log storage.LogRepository, logger logrus.FieldLogger) *Service {
	return &Service{catalog: catalog, log: log, logger: logger}
}

// Catalog returns the catalog store.
func (s *Service) Catalog() storage.CatalogRepository { return s.catalog }

// Log returns the log store.
func (s *Service) Log() storage.LogRepository { return s.log }

// SetInput is one set to log. Exactly one of Reps or Duration must match the
// entry's measured-by mode.
type SetInput struct {
	Weight   *float64
	Reps     *int
	Duration *int
	Rest     *int
	Note     string
	Side     string
}

// LogRequest logs one or more sets of a single exercise on a date.
type LogRequest struct {
	Date     string
	Exercise string
	Sets     []SetInput
}

// LogResult describes what LogSets wrote.
type LogResult struct {
	Workout        *models.Workout
	Entry          *models.CatalogEntry
	SequenceNumber int
	Sets           []*models.Set
}

// SetView is a set with its exercise name resolved.
type SetView struct {
	models.Set
	Exercise string `json:"exercise"`
}

// HistoryQuery filters History. Exercises are catalog names.
type HistoryQuery struct {
	Dates     []string
	Exercises []string
	Limit     int
}

// WorkoutSummary is a workout with its exercises in sequence order.
type WorkoutSummary struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"`
	Label     string   `json:"label"`
	Exercises []string `json:"exercises"`
	SetCount  int      `json:"set_count"`
}

// WorkoutDetail is one workout with all of its sets.
type WorkoutDetail struct {
	WorkoutSummary
	Sets []SetView `json:"sets"`
}

// SetPatch holds the fields of an edit. Nil fields are left unchanged.
type SetPatch struct {
	Exercise  *string
	SetNumber *int
	Weight    *float64
	Reps      *int
	Duration  *int
	Rest      *int
	Note      *string
	Side      *string
}

// VolumeQuery filters Volume. Exercises are catalog names.
type VolumeQuery struct {
	Bucket    models.VolumeBucket
	From      string
	To        string
	Exercises []string
}

// VolumeView is a volume point with its exercise name resolved.
type VolumeView struct {
	models.VolumePoint
	Exercise string `json:"exercise,omitempty"`
}

// ResolveEntry finds a catalog entry by exact name, then case-insensitively.
func (s *Service) ResolveEntry(ctx context.Context, name string) (*models.CatalogEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: exercise name is required", storage.ErrMalformedInput)
	}

	entry, err := s.catalog.GetEntry(ctx, name)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	entries, err := s.catalog.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name, name) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("exercise %q: %w", name, storage.ErrNotFound)
}

// LogSets appends sets for one exercise to the workout on req.Date.
func (s *Service) LogSets(ctx context.Context, req LogRequest) (*LogResult, error) {
	if len(req.Sets) == 0 {
		return nil, fmt.Errorf("%w: at least one set is required", storage.ErrMalformedInput)
	}
	date, err := models.NormalizeDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrMalformedInput, err)
	}

	entry, err := s.ResolveEntry(ctx, req.Exercise)
	if err != nil {
		return nil, err
	}
	equipment, err := s.catalog.GetEquipment(ctx, entry.EquipmentName)
	if err != nil {
		return nil, fmt.Errorf("equipment for %s: %w", entry.Name, err)
	}

	result := &LogResult{Entry: entry}
	err = s.log.InTx(ctx, func(tx storage.LogRepository) error {
		workoutID, err := tx.GetOrCreateWorkout(ctx, date)
		if err != nil {
			return err
		}
		result.Workout = &models.Workout{ID: workoutID, Date: date}

		seq, _, err := tx.RecordFirstOccurrence(ctx, workoutID, entry.ID)
		if err != nil {
			return err
		}
		result.SequenceNumber = seq

		next, err := tx.NextSetNumber(ctx, workoutID, &entry.ID)
		if err != nil {
			return err
		}

		for i, in := range req.Sets {
			set, err := buildSet(workoutID, next+i, entry, equipment, in)
			if err != nil {
				return fmt.Errorf("set %d: %w", i+1, err)
			}
			set.Date = date
			if _, err := tx.InsertSet(ctx, set); err != nil {
				return fmt.Errorf("set %d: %w", i+1, err)
			}
			result.Sets = append(result.Sets, set)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("log sets: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"date":     date,
		"exercise": entry.Name,
		"sets":     len(result.Sets),
	}).Debug("logged sets")

	return result, nil
}

func buildSet(workoutID uuid.UUID, number int, entry *models.CatalogEntry, equipment *models.Equipment, in SetInput) (*models.Set, error) {
	id := entry.ID
	set := models.NewSet(workoutID, &id, number)

	switch entry.MeasuredBy {
	case models.MeasuredByDuration:
		if in.Reps != nil {
			return nil, fmt.Errorf("%w: %s is measured by duration, not reps", storage.ErrConstraintViolation, entry.Name)
		}
		if in.Duration == nil {
			return nil, fmt.Errorf("%w: %s needs a duration", storage.ErrMalformedInput, entry.Name)
		}
		set.WithDuration(*in.Duration)
	default:
		if in.Duration != nil {
			return nil, fmt.Errorf("%w: %s is measured by reps, not duration", storage.ErrConstraintViolation, entry.Name)
		}
		if in.Reps == nil {
			return nil, fmt.Errorf("%w: %s needs reps", storage.ErrMalformedInput, entry.Name)
		}
		set.WithReps(*in.Reps)
	}

	if equipment.TrackWeight {
		if in.Weight != nil {
			set.WithWeight(*in.Weight)
		} else {
			set.WithWeight(entry.Weight)
		}
	}

	if in.Rest != nil {
		set.WithRest(*in.Rest)
	}
	if note := strings.TrimSpace(in.Note); note != "" {
		set.WithNote(note)
	}

	side, err := models.ParseSide(in.Side)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrMalformedInput, err)
	}
	if side != nil {
		if entry.Laterality != models.Unilateral {
			return nil, fmt.Errorf("%w: %s is bilateral and takes no side", storage.ErrConstraintViolation, entry.Name)
		}
		set.WithSide(*side)
	}

	return set, nil
}

// History lists sets newest first with exercise names attached.
func (s *Service) History(ctx context.Context, q HistoryQuery) ([]SetView, error) {
	filter := models.SetFilter{Limit: q.Limit}
	for _, d := range q.Dates {
		date, err := models.NormalizeDate(d)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", storage.ErrMalformedInput, err)
		}
		filter.Dates = append(filter.Dates, date)
	}
	for _, name := range q.Exercises {
		entry, err := s.ResolveEntry(ctx, name)
		if err != nil {
			return nil, err
		}
		filter.ExerciseIDs = append(filter.ExerciseIDs, entry.ID)
	}

	sets, err := s.log.ListSets(ctx, filter)
	if err != nil {
		return nil, err
	}
	names, err := s.catalog.IDToNameMap(ctx)
	if err != nil {
		return nil, err
	}
	return viewSets(sets, names), nil
}

func viewSets(sets []*models.Set, names map[int64]string) []SetView {
	views := make([]SetView, 0, len(sets))
	for _, set := range sets {
		views = append(views, SetView{Set: *set, Exercise: exerciseName(names, set.ExerciseID)})
	}
	return views
}

func exerciseName(names map[int64]string, id *int64) string {
	if id == nil {
		return UnknownExercise
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return UnknownExercise
}

// Workouts lists the most recent workouts, newest first.
func (s *Service) Workouts(ctx context.Context, limit int) ([]WorkoutSummary, error) {
	workouts, err := s.log.ListWorkouts(ctx, limit)
	if err != nil {
		return nil, err
	}
	names, err := s.catalog.IDToNameMap(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]WorkoutSummary, 0, len(workouts))
	for _, w := range workouts {
		summary, _, err := s.summarize(ctx, w, names)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// Workout returns one workout by date, full id or id prefix.
func (s *Service) Workout(ctx context.Context, ref string) (*WorkoutDetail, error) {
	w, err := s.log.GetWorkout(ctx, ref)
	if err != nil {
		return nil, err
	}
	names, err := s.catalog.IDToNameMap(ctx)
	if err != nil {
		return nil, err
	}

	summary, sets, err := s.summarize(ctx, w, names)
	if err != nil {
		return nil, err
	}

	// Show sets in the order the exercises were performed.
	position := make(map[string]int, len(summary.Exercises))
	for i, name := range summary.Exercises {
		position[name] = i
	}
	views := viewSets(sets, names)
	sort.SliceStable(views, func(i, j int) bool {
		pi, oki := position[views[i].Exercise]
		pj, okj := position[views[j].Exercise]
		if oki != okj {
			return oki
		}
		if pi != pj {
			return pi < pj
		}
		return views[i].SetNumber < views[j].SetNumber
	})

	return &WorkoutDetail{WorkoutSummary: *summary, Sets: views}, nil
}

func (s *Service) summarize(ctx context.Context, w *models.Workout, names map[int64]string) (*WorkoutSummary, []*models.Set, error) {
	seq, err := s.log.ListSequence(ctx, w.ID)
	if err != nil {
		return nil, nil, err
	}
	sets, err := s.log.ListSets(ctx, models.SetFilter{Dates: []string{w.Date}})
	if err != nil {
		return nil, nil, err
	}

	exercises := make([]string, 0, len(seq))
	for _, entry := range seq {
		id := entry.ExerciseID
		exercises = append(exercises, exerciseName(names, &id))
	}

	return &WorkoutSummary{
		ID:        w.ID.String(),
		Date:      w.Date,
		Label:     w.Label(),
		Exercises: exercises,
		SetCount:  len(sets),
	}, sets, nil
}

// EditSet applies patch to the set and writes the full row back. The edited
// set is checked against its catalog entry the same way LogSets checks new sets.
func (s *Service) EditSet(ctx context.Context, id int64, patch SetPatch) (*models.Set, error) {
	set, err := s.log.GetSet(ctx, id)
	if err != nil {
		return nil, err
	}

	var entry *models.CatalogEntry
	if patch.Exercise != nil {
		entry, err = s.ResolveEntry(ctx, *patch.Exercise)
		if err != nil {
			return nil, err
		}
		entryID := entry.ID
		set.ExerciseID = &entryID
	} else if set.ExerciseID != nil {
		entry, err = s.catalog.GetEntryByID(ctx, *set.ExerciseID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}

	if patch.SetNumber != nil {
		set.SetNumber = *patch.SetNumber
	}
	if patch.Weight != nil {
		set.WithWeight(*patch.Weight)
	}
	if patch.Reps != nil {
		set.WithReps(*patch.Reps)
	}
	if patch.Duration != nil {
		set.WithDuration(*patch.Duration)
	}
	if patch.Rest != nil {
		set.WithRest(*patch.Rest)
	}
	if patch.Note != nil {
		if *patch.Note == "" {
			set.Note = nil
		} else {
			set.WithNote(*patch.Note)
		}
	}
	if patch.Side != nil {
		side, err := models.ParseSide(*patch.Side)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", storage.ErrMalformedInput, err)
		}
		set.Side = side
	}

	if entry != nil {
		equipment, err := s.catalog.GetEquipment(ctx, entry.EquipmentName)
		if err != nil {
			return nil, fmt.Errorf("equipment for %s: %w", entry.Name, err)
		}
		if err := conformSet(set, entry, equipment); err != nil {
			return nil, err
		}
	}

	err = s.log.InTx(ctx, func(tx storage.LogRepository) error {
		if patch.Exercise != nil {
			if _, _, err := tx.RecordFirstOccurrence(ctx, set.WorkoutID, entry.ID); err != nil {
				return err
			}
		}
		return tx.UpdateSet(ctx, set)
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// conformSet enforces the entry's measured-by mode and laterality on an
// edited set. Weight follows the equipment: dropped when it is not tracked,
// defaulted from the entry when it is tracked but missing.
func conformSet(set *models.Set, entry *models.CatalogEntry, equipment *models.Equipment) error {
	switch entry.MeasuredBy {
	case models.MeasuredByDuration:
		if set.Reps != nil {
			return fmt.Errorf("%w: %s is measured by duration, not reps", storage.ErrConstraintViolation, entry.Name)
		}
		if set.Duration == nil {
			return fmt.Errorf("%w: %s needs a duration", storage.ErrMalformedInput, entry.Name)
		}
	default:
		if set.Duration != nil {
			return fmt.Errorf("%w: %s is measured by reps, not duration", storage.ErrConstraintViolation, entry.Name)
		}
		if set.Reps == nil {
			return fmt.Errorf("%w: %s needs reps", storage.ErrMalformedInput, entry.Name)
		}
	}

	if set.Side != nil && entry.Laterality != models.Unilateral {
		return fmt.Errorf("%w: %s is bilateral and takes no side", storage.ErrConstraintViolation, entry.Name)
	}

	switch {
	case !equipment.TrackWeight:
		set.Weight = nil
	case set.Weight == nil:
		set.WithWeight(entry.Weight)
	}
	return nil
}

// DeleteSet removes a set. The workout's sequence is left as it is.
func (s *Service) DeleteSet(ctx context.Context, id int64) error {
	return s.log.DeleteSet(ctx, id)
}

// Volume returns the weight times reps trend. With exercise names given,
// points are grouped per exercise.
func (s *Service) Volume(ctx context.Context, q VolumeQuery) ([]VolumeView, error) {
	filter := models.VolumeFilter{Bucket: q.Bucket}
	if filter.Bucket == "" {
		filter.Bucket = models.BucketDay
	}
	for _, bound := range []struct {
		raw string
		dst *string
	}{{q.From, &filter.From}, {q.To, &filter.To}} {
		if bound.raw == "" {
			continue
		}
		d, err := models.NormalizeDate(bound.raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", storage.ErrMalformedInput, err)
		}
		*bound.dst = d
	}
	for _, name := range q.Exercises {
		entry, err := s.ResolveEntry(ctx, name)
		if err != nil {
			return nil, err
		}
		filter.ExerciseIDs = append(filter.ExerciseIDs, entry.ID)
	}
	filter.PerExercise = len(filter.ExerciseIDs) > 0

	points, err := s.log.Volume(ctx, filter)
	if err != nil {
		return nil, err
	}
	names, err := s.catalog.IDToNameMap(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]VolumeView, 0, len(points))
	for _, p := range points {
		v := VolumeView{VolumePoint: p}
		if p.ExerciseID != nil {
			v.Exercise = exerciseName(names, p.ExerciseID)
		}
		views = append(views, v)
	}
	return views, nil
}

// Export gathers both stores into one document.
func (s *Service) Export(ctx context.Context) (*storage.ExportData, error) {
	return storage.CollectExport(ctx, s.catalog, s.log)
}
