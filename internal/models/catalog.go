// ABOUTME: Catalog models: equipment, muscle groups and exercise catalog entries.
// ABOUTME: Defines the MeasuredBy and Laterality enums shared by catalog and log code.
package models

import (
	"fmt"
	"strings"
)

// MeasuredBy is the intensity dimension of a catalog exercise.
type MeasuredBy string

const (
	MeasuredByReps     MeasuredBy = "Reps"
	MeasuredByDuration MeasuredBy = "Duration"
)

// ParseMeasuredBy accepts "reps"/"duration" in any case. Empty defaults to Reps.
func ParseMeasuredBy(s string) (MeasuredBy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reps", "rep":
		return MeasuredByReps, nil
	case "duration", "time", "seconds":
		return MeasuredByDuration, nil
	default:
		return "", fmt.Errorf("unknown measured_by %q (want Reps or Duration)", s)
	}
}

// Laterality records whether an exercise is worked one side at a time.
type Laterality string

const (
	Bilateral  Laterality = "Bilateral"
	Unilateral Laterality = "Unilateral"
)

// ParseLaterality accepts "bilateral"/"unilateral" in any case. Empty defaults to Bilateral.
func ParseLaterality(s string) (Laterality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bilateral":
		return Bilateral, nil
	case "unilateral":
		return Unilateral, nil
	default:
		return "", fmt.Errorf("unknown sides %q (want Bilateral or Unilateral)", s)
	}
}

// Equipment is a piece of gear an exercise is performed with.
type Equipment struct {
	ID                  int64   `json:"id" yaml:"id"`
	Name                string  `json:"name" yaml:"name"`
	DefaultWeight       float64 `json:"default_weight" yaml:"default_weight"`
	TrackWeight         bool    `json:"track_weight" yaml:"track_weight"`
	HasResistanceLevels bool    `json:"has_resistance_levels" yaml:"has_resistance_levels"`
}

// NewEquipment returns equipment that tracks weight, with no default added weight.
func NewEquipment(name string) *Equipment {
	return &Equipment{
		Name:        name,
		TrackWeight: true,
	}
}

// WithDefaultWeight sets the fixed weight added when logging with this equipment.
func (e *Equipment) WithDefaultWeight(w float64) *Equipment {
	e.DefaultWeight = w
	return e
}

// WithoutWeightTracking marks the equipment as not tracking weight per set.
func (e *Equipment) WithoutWeightTracking() *Equipment {
	e.TrackWeight = false
	return e
}

// WithResistanceLevels marks the equipment as using discrete resistance levels.
func (e *Equipment) WithResistanceLevels() *Equipment {
	e.HasResistanceLevels = true
	return e
}

// MuscleGroup is a named target muscle.
type MuscleGroup struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// CatalogEntry is a named exercise definition shared across all workouts.
type CatalogEntry struct {
	ID            int64      `json:"id" yaml:"id"`
	Name          string     `json:"name" yaml:"name"`
	EquipmentID   int64      `json:"equipment_id" yaml:"equipment_id"`
	EquipmentName string     `json:"equipment" yaml:"equipment"`
	Weight        float64    `json:"weight" yaml:"weight"`
	MeasuredBy    MeasuredBy `json:"measured_by" yaml:"measured_by"`
	Laterality    Laterality `json:"sides" yaml:"sides"`
	MuscleGroups  []string   `json:"muscle_groups,omitempty" yaml:"muscle_groups,omitempty"`
}

// MuscleGroupNames returns the entry's muscle groups joined for display.
func (c *CatalogEntry) MuscleGroupNames() string {
	return strings.Join(c.MuscleGroups, ", ")
}

// CatalogEntryParams carries the mutable attributes of a catalog entry,
// referencing equipment and muscle groups by name.
type CatalogEntryParams struct {
	Name         string
	Equipment    string
	Weight       float64
	MeasuredBy   MeasuredBy
	Laterality   Laterality
	MuscleGroups []string
}

// Validate checks required fields and fills enum defaults.
func (p *CatalogEntryParams) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Equipment = strings.TrimSpace(p.Equipment)
	if p.Name == "" {
		return fmt.Errorf("exercise name is required")
	}
	if p.Equipment == "" {
		return fmt.Errorf("equipment is required for %q", p.Name)
	}
	mb, err := ParseMeasuredBy(string(p.MeasuredBy))
	if err != nil {
		return err
	}
	p.MeasuredBy = mb
	lat, err := ParseLaterality(string(p.Laterality))
	if err != nil {
		return err
	}
	p.Laterality = lat
	return nil
}

// ParamsFromEntry returns params that would rewrite entry unchanged.
func ParamsFromEntry(entry *CatalogEntry) CatalogEntryParams {
	muscles := make([]string, len(entry.MuscleGroups))
	copy(muscles, entry.MuscleGroups)
	return CatalogEntryParams{
		Name:         entry.Name,
		Equipment:    entry.EquipmentName,
		Weight:       entry.Weight,
		MeasuredBy:   entry.MeasuredBy,
		Laterality:   entry.Laterality,
		MuscleGroups: muscles,
	}
}
