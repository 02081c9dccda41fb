// ABOUTME: Restores an export into a catalog and log store pair.
// ABOUTME: Catalog ids are remapped by exercise name since they differ between stores.

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/adamsatar/lift/internal/models"
)

// RestoreSummary holds counts of restored entities.
type RestoreSummary struct {
	Equipment    int
	MuscleGroups int
	Entries      int
	Workouts     int
	Sets         int
	Unresolved   int
}

// RestoreData loads data into the given stores. Catalog rows that already
// exist by name are kept as they are. Sets are appended, so the log store
// should be empty before calling this function.
func RestoreData(ctx context.Context, data *ExportData, catalog CatalogRepository, log LogRepository) (*RestoreSummary, error) {
	summary := &RestoreSummary{}

	for _, e := range data.Equipment {
		_, created, err := catalog.UpsertEquipment(ctx, *e)
		if err != nil {
			return nil, fmt.Errorf("restore equipment %s: %w", e.Name, err)
		}
		if created {
			summary.Equipment++
		}
	}

	for _, mg := range data.MuscleGroups {
		_, created, err := catalog.UpsertMuscleGroup(ctx, mg.Name)
		if err != nil {
			return nil, fmt.Errorf("restore muscle group %s: %w", mg.Name, err)
		}
		if created {
			summary.MuscleGroups++
		}
	}

	oldNames := make(map[int64]string, len(data.Catalog))
	for _, entry := range data.Catalog {
		oldNames[entry.ID] = entry.Name
		_, err := catalog.AddEntry(ctx, models.ParamsFromEntry(entry))
		if errors.Is(err, ErrConstraintViolation) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("restore catalog entry %s: %w", entry.Name, err)
		}
		summary.Entries++
	}

	newIDs, err := catalog.NameToIDMap(ctx)
	if err != nil {
		return nil, err
	}
	remap := func(old *int64) *int64 {
		if old == nil {
			return nil
		}
		id, ok := newIDs[oldNames[*old]]
		if !ok {
			return nil
		}
		return &id
	}

	for _, w := range data.Workouts {
		err := log.InTx(ctx, func(tx LogRepository) error {
			workoutID, err := tx.GetOrCreateWorkout(ctx, w.Date)
			if err != nil {
				return err
			}
			for _, seq := range w.Sequence {
				id := remap(&seq.ExerciseID)
				if id == nil {
					continue
				}
				if _, _, err := tx.RecordFirstOccurrence(ctx, workoutID, *id); err != nil {
					return err
				}
			}
			for _, set := range w.Sets {
				restored := *set
				restored.ID = 0
				restored.WorkoutID = workoutID
				restored.ExerciseID = remap(set.ExerciseID)
				if set.ExerciseID != nil && restored.ExerciseID == nil {
					summary.Unresolved++
				}
				if _, err := tx.InsertSet(ctx, &restored); err != nil {
					return err
				}
				summary.Sets++
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("restore workout %s: %w", w.Date, err)
		}
		summary.Workouts++
	}

	return summary, nil
}
