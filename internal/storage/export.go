// ABOUTME: Export of catalog and log data for backup and interchange.
// ABOUTME: Supports JSON, YAML, and CSV in the bulk-import column layout.
package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/adamsatar/lift/internal/models"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ExportVersion is bumped when the export layout changes.
const ExportVersion = "1.0"

// CSVHeader is the column layout shared by CSV export and bulk import.
var CSVHeader = []string{"date", "exercise", "set_number", "weight", "reps", "duration", "rest", "note", "side"}

// ExportData represents the full export format for lift data.
type ExportData struct {
	Version      string                 `json:"version" yaml:"version"`
	ExportedAt   time.Time              `json:"exported_at" yaml:"exported_at"`
	Tool         string                 `json:"tool" yaml:"tool"`
	Equipment    []*models.Equipment    `json:"equipment" yaml:"equipment"`
	MuscleGroups []*models.MuscleGroup  `json:"muscle_groups" yaml:"muscle_groups"`
	Catalog      []*models.CatalogEntry `json:"catalog" yaml:"catalog"`
	Workouts     []*WorkoutExport       `json:"workouts" yaml:"workouts"`
}

// WorkoutExport is one workout with its exercise order and sets.
type WorkoutExport struct {
	ID       uuid.UUID              `json:"id" yaml:"id"`
	Date     string                 `json:"date" yaml:"date"`
	Sequence []models.SequenceEntry `json:"sequence" yaml:"sequence"`
	Sets     []*models.Set          `json:"sets" yaml:"sets"`
}

// CollectExport reads everything from both stores. Workouts are ordered by date ascending.
func CollectExport(ctx context.Context, catalog CatalogRepository, log LogRepository) (*ExportData, error) {
	equipment, err := catalog.ListEquipment(ctx)
	if err != nil {
		return nil, err
	}
	muscles, err := catalog.ListMuscleGroups(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := catalog.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	workouts, err := log.ListWorkouts(ctx, 0)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		Version:      ExportVersion,
		ExportedAt:   time.Now().UTC(),
		Tool:         "lift",
		Equipment:    equipment,
		MuscleGroups: muscles,
		Catalog:      entries,
		Workouts:     make([]*WorkoutExport, 0, len(workouts)),
	}

	for i := len(workouts) - 1; i >= 0; i-- {
		w := workouts[i]
		seq, err := log.ListSequence(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		sets, err := log.ListSets(ctx, models.SetFilter{Dates: []string{w.Date}})
		if err != nil {
			return nil, err
		}
		data.Workouts = append(data.Workouts, &WorkoutExport{
			ID:       w.ID,
			Date:     w.Date,
			Sequence: seq,
			Sets:     sets,
		})
	}

	return data, nil
}

// WriteJSON writes data as indented JSON.
func WriteJSON(w io.Writer, data *ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// WriteYAML writes data as YAML.
func WriteYAML(w io.Writer, data *ExportData) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// WriteCSV writes one row per set in the bulk-import layout. Within a workout,
// rows follow the exercise sequence so a re-import rebuilds the same order.
// Sets whose exercise is not in the catalog are written as "Unknown".
func WriteCSV(w io.Writer, data *ExportData) error {
	names := make(map[int64]string, len(data.Catalog))
	for _, e := range data.Catalog {
		names[e.ID] = e.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, workout := range data.Workouts {
		position := make(map[int64]int, len(workout.Sequence))
		for _, s := range workout.Sequence {
			position[s.ExerciseID] = s.SequenceNumber
		}

		sets := make([]*models.Set, len(workout.Sets))
		copy(sets, workout.Sets)
		sort.SliceStable(sets, func(i, j int) bool {
			pi, pj := sequencePosition(position, sets[i]), sequencePosition(position, sets[j])
			if pi != pj {
				return pi < pj
			}
			if sets[i].SetNumber != sets[j].SetNumber {
				return sets[i].SetNumber < sets[j].SetNumber
			}
			return sets[i].ID < sets[j].ID
		})

		for _, set := range sets {
			name := "Unknown"
			if set.ExerciseID != nil {
				if n, ok := names[*set.ExerciseID]; ok {
					name = n
				}
			}
			record := []string{
				workout.Date,
				name,
				strconv.Itoa(set.SetNumber),
				formatFloat(set.Weight),
				formatInt(set.Reps),
				formatInt(set.Duration),
				formatInt(set.Rest),
				"",
				"",
			}
			if set.Note != nil {
				record[7] = *set.Note
			}
			if set.Side != nil {
				record[8] = string(*set.Side)
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// sequencePosition orders unsequenced and unresolved sets after sequenced ones.
func sequencePosition(position map[int64]int, set *models.Set) int {
	if set.ExerciseID == nil {
		return int(^uint(0) >> 1)
	}
	if p, ok := position[*set.ExerciseID]; ok {
		return p
	}
	return int(^uint(0)>>1) - 1
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// Export writes both stores to w in the given format: json, yaml or csv.
func Export(ctx context.Context, catalog CatalogRepository, log LogRepository, format string, w io.Writer) error {
	data, err := CollectExport(ctx, catalog, log)
	if err != nil {
		return fmt.Errorf("collect export: %w", err)
	}

	switch format {
	case "json":
		return WriteJSON(w, data)
	case "yaml", "yml":
		return WriteYAML(w, data)
	case "csv":
		return WriteCSV(w, data)
	default:
		return fmt.Errorf("unknown export format: %q (want json, yaml or csv)", format)
	}
}
