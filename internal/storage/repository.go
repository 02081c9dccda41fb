// ABOUTME: Repository interfaces for the catalog and log stores.
// ABOUTME: Consumers depend on these so tests and callers can swap implementations.
package storage

import (
	"context"

	"github.com/adamsatar/lift/internal/models"
	"github.com/google/uuid"
)

// CatalogRepository defines the catalog store contract.
type CatalogRepository interface {
	// Equipment and muscle groups
	UpsertEquipment(ctx context.Context, e models.Equipment) (int64, bool, error)
	UpsertMuscleGroup(ctx context.Context, name string) (int64, bool, error)
	GetEquipment(ctx context.Context, name string) (*models.Equipment, error)
	ListEquipment(ctx context.Context) ([]*models.Equipment, error)
	ListMuscleGroups(ctx context.Context) ([]*models.MuscleGroup, error)

	// Catalog entries
	AddEntry(ctx context.Context, p models.CatalogEntryParams) (*models.CatalogEntry, error)
	UpdateEntry(ctx context.Context, id int64, p models.CatalogEntryParams) (*models.CatalogEntry, error)
	GetEntry(ctx context.Context, name string) (*models.CatalogEntry, error)
	GetEntryByID(ctx context.Context, id int64) (*models.CatalogEntry, error)
	ListEntries(ctx context.Context) ([]*models.CatalogEntry, error)

	// Lookups
	IDToNameMap(ctx context.Context) (map[int64]string, error)
	NameToIDMap(ctx context.Context) (map[string]int64, error)
	Counts(ctx context.Context) (CatalogCounts, error)

	InTx(ctx context.Context, fn func(CatalogRepository) error) error
}

// LogRepository defines the log store contract.
type LogRepository interface {
	// Workouts
	GetOrCreateWorkout(ctx context.Context, date string) (uuid.UUID, error)
	GetWorkout(ctx context.Context, ref string) (*models.Workout, error)
	ListWorkouts(ctx context.Context, limit int) ([]*models.Workout, error)

	// Sequence
	RecordFirstOccurrence(ctx context.Context, workoutID uuid.UUID, exerciseID int64) (int, bool, error)
	ListSequence(ctx context.Context, workoutID uuid.UUID) ([]models.SequenceEntry, error)

	// Sets
	InsertSet(ctx context.Context, set *models.Set) (int64, error)
	UpdateSet(ctx context.Context, set *models.Set) error
	DeleteSet(ctx context.Context, id int64) error
	DeleteWorkoutSets(ctx context.Context, workoutID uuid.UUID) (int64, error)
	GetSet(ctx context.Context, id int64) (*models.Set, error)
	ListSets(ctx context.Context, f models.SetFilter) ([]*models.Set, error)
	NextSetNumber(ctx context.Context, workoutID uuid.UUID, exerciseID *int64) (int, error)

	// Aggregates
	Volume(ctx context.Context, f models.VolumeFilter) ([]models.VolumePoint, error)

	InTx(ctx context.Context, fn func(LogRepository) error) error
}

var (
	_ CatalogRepository = (*CatalogStore)(nil)
	_ LogRepository     = (*LogStore)(nil)
)
