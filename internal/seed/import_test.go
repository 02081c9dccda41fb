// ABOUTME: Tests for CSV bulk import into the log store.
// ABOUTME: Covers sequencing by first appearance, unresolved names, malformed rows and replace mode.
package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/adamsatar/lift/internal/models"
	"github.com/adamsatar/lift/internal/storage"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seededStores returns a catalog seeded with the defaults and an empty log.
func seededStores(t *testing.T) (*storage.CatalogStore, *storage.LogStore) {
	t.Helper()

	catalog := setupCatalog(t)
	logger, _ := test.NewNullLogger()
	src, err := DefaultCatalogSource()
	require.NoError(t, err)
	_, err = NewSeeder(logger).SeedCatalog(context.Background(), catalog, src)
	require.NoError(t, err)

	return catalog, setupLog(t)
}

func runImport(t *testing.T, catalog storage.CatalogRepository, log storage.LogRepository, opts ImportOptions, csv string) (*ImportStats, error) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewImporter(catalog, log, logger, opts).Import(context.Background(), strings.NewReader(csv))
}

func TestImportSequencesByFirstAppearance(t *testing.T) {
	catalog, log := seededStores(t)
	ctx := context.Background()

	stats, err := runImport(t, catalog, log, ImportOptions{}, `date,exercise,set_number,weight,reps
2024-03-01,Barbell Back Squat,1,135,5
2024-03-01,Barbell Row,1,95,8
2024-03-01,Barbell Back Squat,2,135,5
`)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 1, stats.Workouts)
	assert.Equal(t, 3, stats.Sets)
	assert.Equal(t, 2, stats.SequenceEntries)

	squat, err := catalog.GetEntry(ctx, "Barbell Back Squat")
	require.NoError(t, err)
	row, err := catalog.GetEntry(ctx, "Barbell Row")
	require.NoError(t, err)

	seq, err := log.ListSequence(ctx, models.WorkoutIDForDate("2024-03-01"))
	require.NoError(t, err)
	require.Len(t, seq, 2)
	assert.Equal(t, squat.ID, seq[0].ExerciseID)
	assert.Equal(t, 1, seq[0].SequenceNumber)
	assert.Equal(t, row.ID, seq[1].ExerciseID)
	assert.Equal(t, 2, seq[1].SequenceNumber)
}

func TestImportUnresolvedExercise(t *testing.T) {
	catalog, log := seededStores(t)
	ctx := context.Background()

	stats, err := runImport(t, catalog, log, ImportOptions{}, `date,exercise,reps
2024-03-02,Zercher Squat,5
`)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Zercher Squat": 1}, stats.Unresolved)
	assert.Zero(t, stats.SequenceEntries)

	sets, err := log.ListSets(ctx, models.SetFilter{Dates: []string{"2024-03-02"}})
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Nil(t, sets[0].ExerciseID)
	assert.Equal(t, 1, sets[0].SetNumber)

	seq, err := log.ListSequence(ctx, models.WorkoutIDForDate("2024-03-02"))
	require.NoError(t, err)
	assert.Empty(t, seq)
}

func TestImportAppliesMeasuredBy(t *testing.T) {
	catalog, log := seededStores(t)
	ctx := context.Background()

	_, err := runImport(t, catalog, log, ImportOptions{}, `date,exercise,reps,duration
2024-03-03,Plank,10,60
2024-03-03,Pull Up,10,60
`)
	require.NoError(t, err)

	sets, err := log.ListSets(ctx, models.SetFilter{Dates: []string{"2024-03-03"}})
	require.NoError(t, err)
	require.Len(t, sets, 2)
	for _, s := range sets {
		if s.Duration != nil {
			assert.Nil(t, s.Reps)
			assert.Equal(t, 60, *s.Duration)
		} else {
			require.NotNil(t, s.Reps)
			assert.Equal(t, 10, *s.Reps)
		}
	}
}

func TestImportAutoNumbersSets(t *testing.T) {
	catalog, log := seededStores(t)
	ctx := context.Background()

	_, err := runImport(t, catalog, log, ImportOptions{}, `date,exercise,weight,reps
03/04/2024,Barbell Deadlift,225,5
03/04/2024,Barbell Deadlift,245,3.0
03/04/2024,Barbell Deadlift,265,NaN
`)
	require.NoError(t, err)

	sets, err := log.ListSets(ctx, models.SetFilter{Dates: []string{"2024-03-04"}})
	require.NoError(t, err)
	require.Len(t, sets, 3)
	assert.Equal(t, 1, sets[0].SetNumber)
	assert.Equal(t, 2, sets[1].SetNumber)
	assert.Equal(t, 3, sets[2].SetNumber)
	assert.Equal(t, 3, *sets[1].Reps)
	assert.Nil(t, sets[2].Reps)
}

func TestImportMalformedRowAborts(t *testing.T) {
	catalog, log := seededStores(t)
	ctx := context.Background()

	_, err := runImport(t, catalog, log, ImportOptions{}, `date,exercise,reps
2024-03-05,Barbell Row,8
,Barbell Row,8
`)
	require.ErrorIs(t, err, storage.ErrMalformedInput)

	workouts, err := log.ListWorkouts(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, workouts, "nothing is written when parsing fails")
}

func TestImportSkipMalformed(t *testing.T) {
	catalog, log := seededStores(t)

	stats, err := runImport(t, catalog, log, ImportOptions{SkipMalformed: true}, `date,exercise,reps,duration
2024-03-05,Barbell Row,8,
,Barbell Row,8,
2024-03-05,,8,
2024-03-05,Mystery Move,8,30
`)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Rows)
	assert.Equal(t, 3, stats.Malformed)
	assert.Equal(t, 1, stats.Sets)
	assert.Error(t, stats.RowErrors)
}

func TestImportMissingRequiredColumn(t *testing.T) {
	catalog, log := seededStores(t)

	_, err := runImport(t, catalog, log, ImportOptions{}, "exercise,reps\nBarbell Row,8\n")
	assert.ErrorIs(t, err, storage.ErrMalformedInput)
}

func TestImportHeaderCaseInsensitive(t *testing.T) {
	catalog, log := seededStores(t)

	stats, err := runImport(t, catalog, log, ImportOptions{}, "\ufeffDate,Exercise,Reps\n2024-03-06,Pull Up,8\n")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sets)
}

func TestImportReplace(t *testing.T) {
	catalog, log := seededStores(t)
	ctx := context.Background()
	csv := `date,exercise,set_number,weight,reps
2024-03-07,Barbell Bench Press,1,135,5
2024-03-07,Barbell Bench Press,2,135,5
`

	_, err := runImport(t, catalog, log, ImportOptions{}, csv)
	require.NoError(t, err)
	_, err = runImport(t, catalog, log, ImportOptions{}, csv)
	require.NoError(t, err)

	sets, err := log.ListSets(ctx, models.SetFilter{Dates: []string{"2024-03-07"}})
	require.NoError(t, err)
	assert.Len(t, sets, 4, "plain import appends")

	stats, err := runImport(t, catalog, log, ImportOptions{Replace: true}, csv)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Replaced)

	sets, err = log.ListSets(ctx, models.SetFilter{Dates: []string{"2024-03-07"}})
	require.NoError(t, err)
	assert.Len(t, sets, 2)

	seq, err := log.ListSequence(ctx, models.WorkoutIDForDate("2024-03-07"))
	require.NoError(t, err)
	assert.Len(t, seq, 1)
}

func TestImportDryRun(t *testing.T) {
	catalog, log := seededStores(t)
	ctx := context.Background()

	stats, err := runImport(t, catalog, log, ImportOptions{DryRun: true}, `date,exercise,reps
2024-03-08,Pull Up,8
2024-03-09,Pull Up,8
`)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Workouts)
	assert.Equal(t, 2, stats.Sets)

	workouts, err := log.ListWorkouts(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, workouts)
}
