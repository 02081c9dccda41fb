// ABOUTME: Catalog seeding from three YAML documents: equipment, muscle groups, entries.
// ABOUTME: Each table is seeded only when empty; unknown equipment skips the entry.
package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/adamsatar/lift/internal/models"
	"github.com/adamsatar/lift/internal/storage"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// EquipmentDoc is one item of the equipment document.
type EquipmentDoc struct {
	Name                string  `yaml:"name"`
	DefaultWeight       float64 `yaml:"default_weight"`
	TrackWeight         *bool   `yaml:"track_weight"`
	HasResistanceLevels bool    `yaml:"has_resistance_levels"`
}

// EntryDoc is one item of the catalog document. A missing weight falls back
// to the equipment's default weight.
type EntryDoc struct {
	Exercise     string   `yaml:"exercise"`
	Equipment    string   `yaml:"equipment"`
	Weight       *float64 `yaml:"weight"`
	MeasuredBy   string   `yaml:"measured_by"`
	Sides        string   `yaml:"sides"`
	MuscleGroups []string `yaml:"muscle_groups"`
}

// CatalogSource holds the three parsed seed documents.
type CatalogSource struct {
	Equipment    []EquipmentDoc
	MuscleGroups []string
	Entries      []EntryDoc
}

// ParseCatalogSource decodes the three YAML documents.
func ParseCatalogSource(equipment, muscleGroups, catalog []byte) (*CatalogSource, error) {
	var src CatalogSource
	if err := yaml.Unmarshal(equipment, &src.Equipment); err != nil {
		return nil, fmt.Errorf("parse equipment: %w", err)
	}
	if err := yaml.Unmarshal(muscleGroups, &src.MuscleGroups); err != nil {
		return nil, fmt.Errorf("parse muscle groups: %w", err)
	}
	if err := yaml.Unmarshal(catalog, &src.Entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &src, nil
}

// LoadCatalogSource reads the three seed documents from disk.
func LoadCatalogSource(equipmentPath, muscleGroupsPath, catalogPath string) (*CatalogSource, error) {
	equipment, err := os.ReadFile(equipmentPath)
	if err != nil {
		return nil, fmt.Errorf("read equipment: %w", err)
	}
	muscleGroups, err := os.ReadFile(muscleGroupsPath)
	if err != nil {
		return nil, fmt.Errorf("read muscle groups: %w", err)
	}
	catalog, err := os.ReadFile(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalogSource(equipment, muscleGroups, catalog)
}

// DefaultCatalogSource returns the built-in barbell, dumbbell and bodyweight catalog.
func DefaultCatalogSource() (*CatalogSource, error) {
	equipment, err := defaultsFS.ReadFile("defaults/equipment.yaml")
	if err != nil {
		return nil, err
	}
	muscleGroups, err := defaultsFS.ReadFile("defaults/muscle_groups.yaml")
	if err != nil {
		return nil, err
	}
	catalog, err := defaultsFS.ReadFile("defaults/catalog.yaml")
	if err != nil {
		return nil, err
	}
	return ParseCatalogSource(equipment, muscleGroups, catalog)
}

// CatalogStats counts what a catalog seed run did.
type CatalogStats struct {
	EquipmentCreated    int
	MuscleGroupsCreated int
	EntriesCreated      int
	EntriesSkipped      int
	SkippedTables       []string
}

// Seeder populates the catalog store.
type Seeder struct {
	logger logrus.FieldLogger
}

// NewSeeder creates a Seeder that reports skips to logger.
func NewSeeder(logger logrus.FieldLogger) *Seeder {
	return &Seeder{logger: logger}
}

// SeedCatalog seeds each catalog table from src when that table is empty.
// Tables are checked independently, so a partially seeded store is not topped up.
func (s *Seeder) SeedCatalog(ctx context.Context, catalog storage.CatalogRepository, src *CatalogSource) (*CatalogStats, error) {
	stats := &CatalogStats{}

	counts, err := catalog.Counts(ctx)
	if err != nil {
		return nil, err
	}

	if counts.Equipment > 0 {
		stats.SkippedTables = append(stats.SkippedTables, "equipment")
		s.logger.WithField("rows", counts.Equipment).Info("equipment already seeded")
	} else if err := s.seedEquipment(ctx, catalog, src.Equipment, stats); err != nil {
		return nil, err
	}

	if counts.MuscleGroups > 0 {
		stats.SkippedTables = append(stats.SkippedTables, "muscle_groups")
		s.logger.WithField("rows", counts.MuscleGroups).Info("muscle groups already seeded")
	} else if err := s.seedMuscleGroups(ctx, catalog, src.MuscleGroups, stats); err != nil {
		return nil, err
	}

	if counts.Entries > 0 {
		stats.SkippedTables = append(stats.SkippedTables, "exercise_catalog")
		s.logger.WithField("rows", counts.Entries).Info("exercise catalog already seeded")
	} else if err := s.seedEntries(ctx, catalog, src.Entries, stats); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *Seeder) seedEquipment(ctx context.Context, catalog storage.CatalogRepository, docs []EquipmentDoc, stats *CatalogStats) error {
	return catalog.InTx(ctx, func(tx storage.CatalogRepository) error {
		for _, doc := range docs {
			e := models.NewEquipment(doc.Name).WithDefaultWeight(doc.DefaultWeight)
			if doc.TrackWeight != nil && !*doc.TrackWeight {
				e.WithoutWeightTracking()
			}
			if doc.HasResistanceLevels {
				e.WithResistanceLevels()
			}

			_, created, err := tx.UpsertEquipment(ctx, *e)
			if err != nil {
				return fmt.Errorf("seed equipment %q: %w", doc.Name, err)
			}
			if created {
				stats.EquipmentCreated++
			}
		}
		return nil
	})
}

func (s *Seeder) seedMuscleGroups(ctx context.Context, catalog storage.CatalogRepository, names []string, stats *CatalogStats) error {
	return catalog.InTx(ctx, func(tx storage.CatalogRepository) error {
		for _, name := range names {
			_, created, err := tx.UpsertMuscleGroup(ctx, name)
			if err != nil {
				return fmt.Errorf("seed muscle group %q: %w", name, err)
			}
			if created {
				stats.MuscleGroupsCreated++
			}
		}
		return nil
	})
}

// seedEntries commits each entry on its own so one bad entry never blocks the rest.
func (s *Seeder) seedEntries(ctx context.Context, catalog storage.CatalogRepository, docs []EntryDoc, stats *CatalogStats) error {
	for _, doc := range docs {
		log := s.logger.WithFields(logrus.Fields{"exercise": doc.Exercise, "equipment": doc.Equipment})

		params := models.CatalogEntryParams{
			Name:         doc.Exercise,
			Equipment:    doc.Equipment,
			MeasuredBy:   models.MeasuredBy(doc.MeasuredBy),
			Laterality:   models.Laterality(doc.Sides),
			MuscleGroups: doc.MuscleGroups,
		}
		if doc.Weight != nil {
			params.Weight = *doc.Weight
		} else if e, err := catalog.GetEquipment(ctx, doc.Equipment); err == nil {
			params.Weight = e.DefaultWeight
		}

		_, err := catalog.AddEntry(ctx, params)
		switch {
		case err == nil:
			stats.EntriesCreated++
		case errors.Is(err, storage.ErrUnresolvedReference):
			stats.EntriesSkipped++
			log.Warn("skipping catalog entry: unknown equipment")
		case errors.Is(err, storage.ErrConstraintViolation):
			stats.EntriesSkipped++
			log.Debug("skipping duplicate catalog entry")
		case errors.Is(err, storage.ErrMalformedInput):
			stats.EntriesSkipped++
			log.WithError(err).Warn("skipping malformed catalog entry")
		default:
			return fmt.Errorf("seed catalog entry %q: %w", doc.Exercise, err)
		}
	}
	return nil
}
