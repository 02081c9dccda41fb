// ABOUTME: Tests for the log store.
// ABOUTME: Covers workout identity, sequence numbering and set CRUD semantics.
package storage

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/adamsatar/lift/internal/models"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateWorkoutIdempotent(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()

	id1, err := s.GetOrCreateWorkout(ctx, "2024-01-01")
	require.NoError(t, err)
	id2, err := s.GetOrCreateWorkout(ctx, "2024/01/01")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, models.WorkoutIDForDate("2024-01-01"), id1)

	workouts, err := s.ListWorkouts(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, workouts, 1)

	_, err = s.GetOrCreateWorkout(ctx, "not a date")
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestGetOrCreateWorkoutDistinctDates(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()
	faker := gofakeit.New(42)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	ids := make(map[string]uuid.UUID)
	for i := 0; i < 50; i++ {
		date := faker.DateRange(start, end).Format(models.DateLayout)
		id, err := s.GetOrCreateWorkout(ctx, date)
		require.NoError(t, err)
		if prev, ok := ids[date]; ok {
			assert.Equal(t, prev, id, "same date must yield same id")
			continue
		}
		for other, otherID := range ids {
			assert.NotEqual(t, otherID, id, "dates %s and %s share an id", date, other)
		}
		ids[date] = id
	}

	workouts, err := s.ListWorkouts(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, workouts, len(ids))
}

func TestRecordFirstOccurrenceContiguous(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()
	faker := gofakeit.New(7)

	workoutID, err := s.GetOrCreateWorkout(ctx, "2024-01-01")
	require.NoError(t, err)

	order := []int{11, 4, 27, 8, 15, 3}
	faker.ShuffleInts(order)

	// Log several sets per exercise, interleaved, the way a session is entered.
	for round := 0; round < 3; round++ {
		for _, ex := range order {
			seq, created, err := s.RecordFirstOccurrence(ctx, workoutID, int64(ex))
			require.NoError(t, err)
			assert.Equal(t, round == 0, created)
			assert.GreaterOrEqual(t, seq, 1)
		}
	}

	seq, err := s.ListSequence(ctx, workoutID)
	require.NoError(t, err)
	require.Len(t, seq, len(order))
	for i, entry := range seq {
		assert.Equal(t, i+1, entry.SequenceNumber)
		assert.Equal(t, int64(order[i]), entry.ExerciseID)
	}
}

func TestRecordFirstOccurrencePerWorkout(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()

	w1, err := s.GetOrCreateWorkout(ctx, "2024-01-01")
	require.NoError(t, err)
	w2, err := s.GetOrCreateWorkout(ctx, "2024-01-02")
	require.NoError(t, err)

	seq, _, err := s.RecordFirstOccurrence(ctx, w1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)
	seq, _, err = s.RecordFirstOccurrence(ctx, w1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, seq)

	seq, _, err = s.RecordFirstOccurrence(ctx, w2, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	_, _, err = s.RecordFirstOccurrence(ctx, models.WorkoutIDForDate("1999-01-01"), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSetsThreeSetsOrdered(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()
	bench := int64(1)

	workoutID, err := s.GetOrCreateWorkout(ctx, "2024-01-01")
	require.NoError(t, err)
	_, _, err = s.RecordFirstOccurrence(ctx, workoutID, bench)
	require.NoError(t, err)

	type planned struct {
		number int
		reps   int
		weight float64
	}
	// Insert out of order to check sorting.
	for _, p := range []planned{{3, 6, 155}, {1, 10, 135}, {2, 8, 145}} {
		_, err := s.InsertSet(ctx, models.NewSet(workoutID, &bench, p.number).WithWeight(p.weight).WithReps(p.reps))
		require.NoError(t, err)
	}

	sets, err := s.ListSets(ctx, models.SetFilter{Dates: []string{"2024-01-01"}})
	require.NoError(t, err)
	require.Len(t, sets, 3)

	for i, set := range sets {
		assert.Equal(t, i+1, set.SetNumber)
		assert.Equal(t, "2024-01-01", set.Date)
		assert.Equal(t, workoutID, set.WorkoutID)
		require.NotNil(t, set.ExerciseID)
		assert.Equal(t, bench, *set.ExerciseID)
		assert.Nil(t, set.Duration)
	}
	assert.Equal(t, 135.0, *sets[0].Weight)
	assert.Equal(t, 10, *sets[0].Reps)
	assert.Equal(t, 155.0, *sets[2].Weight)
	assert.Equal(t, 6, *sets[2].Reps)
}

func TestListSetsFiltersAndOrder(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()

	for _, date := range []string{"2024-01-01", "2024-01-03", "2024-01-02"} {
		id, err := s.GetOrCreateWorkout(ctx, date)
		require.NoError(t, err)
		for ex := int64(1); ex <= 2; ex++ {
			_, err := s.InsertSet(ctx, models.NewSet(id, int64Ptr(ex), 1).WithReps(5))
			require.NoError(t, err)
		}
	}

	all, err := s.ListSets(ctx, models.SetFilter{})
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "2024-01-03", all[0].Date)
	assert.Equal(t, "2024-01-01", all[5].Date)

	onlyTwo, err := s.ListSets(ctx, models.SetFilter{ExerciseIDs: []int64{2}})
	require.NoError(t, err)
	require.Len(t, onlyTwo, 3)
	for _, set := range onlyTwo {
		assert.Equal(t, int64(2), *set.ExerciseID)
	}

	both, err := s.ListSets(ctx, models.SetFilter{
		Dates:       []string{"2024-01-01", "2024-01-02"},
		ExerciseIDs: []int64{1},
	})
	require.NoError(t, err)
	require.Len(t, both, 2)
	assert.Equal(t, "2024-01-02", both[0].Date)

	limited, err := s.ListSets(ctx, models.SetFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = s.ListSets(ctx, models.SetFilter{Dates: []string{"someday"}})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestInsertSetRejectsRepsAndDuration(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()

	id, err := s.GetOrCreateWorkout(ctx, "2024-01-01")
	require.NoError(t, err)

	set := models.NewSet(id, nil, 1).WithReps(10)
	set.Duration = intPtr(30)
	_, err = s.InsertSet(ctx, set)
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestInsertSetUnknownWorkout(t *testing.T) {
	s := setupLog(t)

	_, err := s.InsertSet(context.Background(), models.NewSet(models.WorkoutIDForDate("2030-01-01"), nil, 1))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertSetAllowsDuplicateSetNumbers(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()

	id, err := s.GetOrCreateWorkout(ctx, "2024-01-01")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := s.InsertSet(ctx, models.NewSet(id, int64Ptr(1), 1).WithReps(5))
		require.NoError(t, err)
	}

	sets, err := s.ListSets(ctx, models.SetFilter{})
	require.NoError(t, err)
	assert.Len(t, sets, 2)
}

func TestUpdateSet(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()

	id, err := s.GetOrCreateWorkout(ctx, "2024-01-01")
	require.NoError(t, err)
	set := models.NewSet(id, int64Ptr(1), 1).WithWeight(100).WithReps(5).WithNote("first")
	_, err = s.InsertSet(ctx, set)
	require.NoError(t, err)

	set.ExerciseID = int64Ptr(2)
	set.SetNumber = 4
	set.Weight = nil
	set.WithDuration(45).WithRest(60).WithSide(models.SideRight)
	set.Note = nil
	require.NoError(t, s.UpdateSet(ctx, set))

	got, err := s.GetSet(ctx, set.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), *got.ExerciseID)
	assert.Equal(t, 4, got.SetNumber)
	assert.Nil(t, got.Weight)
	assert.Nil(t, got.Reps)
	assert.Equal(t, 45, *got.Duration)
	assert.Equal(t, 60, *got.Rest)
	assert.Nil(t, got.Note)
	assert.Equal(t, models.SideRight, *got.Side)
}

func TestUpdateSetNotFound(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()

	id, err := s.GetOrCreateWorkout(ctx, "2024-01-01")
	require.NoError(t, err)
	set := models.NewSet(id, nil, 1).WithReps(5)
	_, err = s.InsertSet(ctx, set)
	require.NoError(t, err)
	require.NoError(t, s.DeleteSet(ctx, set.ID))

	err = s.UpdateSet(ctx, set)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetSet(ctx, set.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSetKeepsSequence(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()

	id, err := s.GetOrCreateWorkout(ctx, "2024-01-01")
	require.NoError(t, err)
	_, _, err = s.RecordFirstOccurrence(ctx, id, 7)
	require.NoError(t, err)
	set := models.NewSet(id, int64Ptr(7), 1).WithReps(5)
	_, err = s.InsertSet(ctx, set)
	require.NoError(t, err)

	require.NoError(t, s.DeleteSet(ctx, set.ID))

	seq, err := s.ListSequence(ctx, id)
	require.NoError(t, err)
	require.Len(t, seq, 1)
	assert.Equal(t, int64(7), seq[0].ExerciseID)
	assert.Equal(t, 1, seq[0].SequenceNumber)

	assert.ErrorIs(t, s.DeleteSet(ctx, set.ID), ErrNotFound)
}

func TestNextSetNumber(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()

	id, err := s.GetOrCreateWorkout(ctx, "2024-01-01")
	require.NoError(t, err)

	n, err := s.NextSetNumber(ctx, id, int64Ptr(1))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.InsertSet(ctx, models.NewSet(id, int64Ptr(1), 1).WithReps(5))
	require.NoError(t, err)
	_, err = s.InsertSet(ctx, models.NewSet(id, int64Ptr(1), 2).WithReps(5))
	require.NoError(t, err)
	_, err = s.InsertSet(ctx, models.NewSet(id, nil, 1).WithReps(5))
	require.NoError(t, err)

	n, err = s.NextSetNumber(ctx, id, int64Ptr(1))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.NextSetNumber(ctx, id, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestGetWorkout(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()

	id, err := s.GetOrCreateWorkout(ctx, "2024-01-01")
	require.NoError(t, err)

	byDate, err := s.GetWorkout(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, id, byDate.ID)

	byPrefix, err := s.GetWorkout(ctx, id.String()[:8])
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", byPrefix.Date)

	byFull, err := s.GetWorkout(ctx, id.String())
	require.NoError(t, err)
	assert.Equal(t, id, byFull.ID)

	_, err = s.GetWorkout(ctx, "2023-12-31")
	assert.ErrorIs(t, err, ErrNotFound)

	byUpper, err := s.GetWorkout(ctx, strings.ToUpper(id.String()[:8]))
	require.NoError(t, err)
	assert.Equal(t, id, byUpper.ID)

	_, err = s.GetWorkout(ctx, "ffffffff-ffff")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetWorkoutRejectsPatternCharacters(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()

	_, err := s.GetOrCreateWorkout(ctx, "2024-01-01")
	require.NoError(t, err)

	for _, ref := range []string{"%", "_", "a%", "zzzz", "last tuesday"} {
		_, err := s.GetWorkout(ctx, ref)
		assert.ErrorIs(t, err, ErrMalformedInput, "ref %q", ref)
	}
}

func TestGetWorkoutAmbiguousPrefix(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()

	// Seventeen workouts guarantee two share a first hex digit.
	byFirst := make(map[byte]int)
	for day := 1; day <= 17; day++ {
		id, err := s.GetOrCreateWorkout(ctx, fmt.Sprintf("2024-02-%02d", day))
		require.NoError(t, err)
		byFirst[id.String()[0]]++
	}

	var shared string
	for c, n := range byFirst {
		if n > 1 {
			shared = string(c)
			break
		}
	}
	require.NotEmpty(t, shared)

	_, err := s.GetWorkout(ctx, shared)
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.Contains(t, err.Error(), "matches")
}

func TestDeleteWorkoutSets(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()

	id, err := s.GetOrCreateWorkout(ctx, "2024-01-01")
	require.NoError(t, err)
	_, _, err = s.RecordFirstOccurrence(ctx, id, 1)
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		_, err := s.InsertSet(ctx, models.NewSet(id, int64Ptr(1), i).WithReps(5))
		require.NoError(t, err)
	}

	n, err := s.DeleteWorkoutSets(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	seq, err := s.ListSequence(ctx, id)
	require.NoError(t, err)
	assert.Len(t, seq, 1)
}

func TestLogInTxRollsBack(t *testing.T) {
	s := setupLog(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx LogRepository) error {
		id, err := tx.GetOrCreateWorkout(ctx, "2024-01-01")
		if err != nil {
			return err
		}
		bad := models.NewSet(id, nil, 1).WithReps(1)
		bad.Duration = intPtr(1)
		_, err = tx.InsertSet(ctx, bad)
		return err
	})
	require.ErrorIs(t, err, ErrConstraintViolation)

	workouts, err := s.ListWorkouts(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, workouts)
}
