// ABOUTME: Tests for catalog seeding from YAML documents.
// ABOUTME: Uses real temp-dir SQLite stores and a null logrus logger.
package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/adamsatar/lift/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCatalog(t *testing.T) *storage.CatalogStore {
	t.Helper()

	s, err := storage.OpenCatalog(filepath.Join(t.TempDir(), storage.CatalogFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func setupLog(t *testing.T) *storage.LogStore {
	t.Helper()

	s, err := storage.OpenLog(filepath.Join(t.TempDir(), storage.LogFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDefaultCatalogSource(t *testing.T) {
	src, err := DefaultCatalogSource()
	require.NoError(t, err)

	assert.Len(t, src.Equipment, 4)
	assert.Len(t, src.MuscleGroups, 13)
	assert.Len(t, src.Entries, 19)
}

func TestSeedCatalogDefaults(t *testing.T) {
	s := setupCatalog(t)
	ctx := context.Background()
	logger, _ := test.NewNullLogger()

	src, err := DefaultCatalogSource()
	require.NoError(t, err)

	stats, err := NewSeeder(logger).SeedCatalog(ctx, s, src)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.EquipmentCreated)
	assert.Equal(t, 13, stats.MuscleGroupsCreated)
	assert.Equal(t, 19, stats.EntriesCreated)
	assert.Zero(t, stats.EntriesSkipped)
	assert.Empty(t, stats.SkippedTables)

	plank, err := s.GetEntry(ctx, "Plank")
	require.NoError(t, err)
	assert.Equal(t, "Bodyweight", plank.EquipmentName)
	assert.Equal(t, "Duration", string(plank.MeasuredBy))
	assert.ElementsMatch(t, []string{"Abs", "Obliques"}, plank.MuscleGroups)

	bodyweight, err := s.GetEquipment(ctx, "Bodyweight")
	require.NoError(t, err)
	assert.False(t, bodyweight.TrackWeight)
}

func TestSeedCatalogTwiceIsNoop(t *testing.T) {
	s := setupCatalog(t)
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	seeder := NewSeeder(logger)

	src, err := DefaultCatalogSource()
	require.NoError(t, err)

	_, err = seeder.SeedCatalog(ctx, s, src)
	require.NoError(t, err)
	before, err := s.Counts(ctx)
	require.NoError(t, err)

	stats, err := seeder.SeedCatalog(ctx, s, src)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"equipment", "muscle_groups", "exercise_catalog"}, stats.SkippedTables)
	assert.Zero(t, stats.EntriesCreated)

	after, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSeedCatalogTablesCheckedIndependently(t *testing.T) {
	s := setupCatalog(t)
	ctx := context.Background()
	logger, _ := test.NewNullLogger()

	// Only muscle groups exist beforehand.
	_, _, err := s.UpsertMuscleGroup(ctx, "Chest")
	require.NoError(t, err)

	src, err := ParseCatalogSource(
		[]byte("- name: Barbell\n  default_weight: 45\n"),
		[]byte("- Chest\n- Triceps\n"),
		[]byte("- exercise: Bench Press\n  equipment: Barbell\n  measured_by: Reps\n  muscle_groups: [Chest, Triceps]\n"),
	)
	require.NoError(t, err)

	stats, err := NewSeeder(logger).SeedCatalog(ctx, s, src)
	require.NoError(t, err)
	assert.Equal(t, []string{"muscle_groups"}, stats.SkippedTables)
	assert.Equal(t, 1, stats.EquipmentCreated)
	assert.Zero(t, stats.MuscleGroupsCreated)
	assert.Equal(t, 1, stats.EntriesCreated)

	// Triceps was never seeded, so only Chest links.
	entry, err := s.GetEntry(ctx, "Bench Press")
	require.NoError(t, err)
	assert.Equal(t, []string{"Chest"}, entry.MuscleGroups)
	assert.Equal(t, 45.0, entry.Weight, "missing weight falls back to equipment default")
}

func TestSeedCatalogSkipsUnknownEquipment(t *testing.T) {
	s := setupCatalog(t)
	ctx := context.Background()
	logger, hook := test.NewNullLogger()

	src, err := ParseCatalogSource(
		[]byte("- name: Barbell\n  default_weight: 45\n"),
		[]byte("- Quads\n"),
		[]byte(`- exercise: Back Squat
  equipment: Barbell
  weight: 45
  measured_by: Reps
  muscle_groups: [Quads]
- exercise: Leg Press
  equipment: Sled
  weight: 0
  measured_by: Reps
  muscle_groups: [Quads]
`),
	)
	require.NoError(t, err)

	stats, err := NewSeeder(logger).SeedCatalog(ctx, s, src)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.EntriesCreated)
	assert.Equal(t, 1, stats.EntriesSkipped)

	_, err = s.GetEntry(ctx, "Leg Press")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "Sled", hook.LastEntry().Data["equipment"])
}

func TestParseCatalogSourceRejectsBadYAML(t *testing.T) {
	_, err := ParseCatalogSource([]byte("- name: [unterminated"), nil, nil)
	assert.Error(t, err)
}
