// ABOUTME: Workout, workout sequence and logged set models.
// ABOUTME: Workout ids are derived deterministically from the calendar date.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the canonical calendar date format stored in the log.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// NormalizeDate parses s in any accepted layout and returns it as YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("date is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q (use YYYY-MM-DD)", s)
}

// Today returns the local date in DateLayout.
func Today() string {
	return time.Now().Format(DateLayout)
}

// WorkoutIDForDate returns the stable workout id for a normalized date.
// It matches a version 5 UUID in the DNS namespace, so ids are reproducible
// across imports and machines.
func WorkoutIDForDate(date string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(date))
}

// Workout is every set logged on one calendar date.
type Workout struct {
	ID   uuid.UUID `json:"id" yaml:"id"`
	Date string    `json:"date" yaml:"date"`
}

// NewWorkout returns the workout for date. The date must already be normalized.
func NewWorkout(date string) *Workout {
	return &Workout{
		ID:   WorkoutIDForDate(date),
		Date: date,
	}
}

// ShortID is the 8-character id prefix shown in listings.
func (w *Workout) ShortID() string {
	return w.ID.String()[:8]
}

// Label is the display string "<date> (<short id>)".
func (w *Workout) Label() string {
	return fmt.Sprintf("%s (%s)", w.Date, w.ShortID())
}

// SequenceEntry records the position at which an exercise first appeared in a workout.
type SequenceEntry struct {
	WorkoutID      uuid.UUID `json:"workout_id" yaml:"workout_id"`
	ExerciseID     int64     `json:"exercise_id" yaml:"exercise_id"`
	SequenceNumber int       `json:"sequence_number" yaml:"sequence_number"`
}

// Side marks which side a unilateral set was performed on.
type Side string

const (
	SideLeft  Side = "Left"
	SideRight Side = "Right"
)

// ParseSide returns nil for an empty string.
func ParseSide(s string) (*Side, error) {
	var side Side
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "left", "l":
		side = SideLeft
	case "right", "r":
		side = SideRight
	default:
		return nil, fmt.Errorf("unknown side %q (want Left or Right)", s)
	}
	return &side, nil
}

// Set is one logged performance of an exercise.
type Set struct {
	ID         int64     `json:"id" yaml:"id"`
	WorkoutID  uuid.UUID `json:"workout_id" yaml:"workout_id"`
	Date       string    `json:"date" yaml:"date"`
	ExerciseID *int64    `json:"exercise_id,omitempty" yaml:"exercise_id,omitempty"`
	SetNumber  int       `json:"set_number" yaml:"set_number"`
	Weight     *float64  `json:"weight,omitempty" yaml:"weight,omitempty"`
	Reps       *int      `json:"reps,omitempty" yaml:"reps,omitempty"`
	Duration   *int      `json:"duration,omitempty" yaml:"duration,omitempty"`
	Rest       *int      `json:"rest,omitempty" yaml:"rest,omitempty"`
	Note       *string   `json:"note,omitempty" yaml:"note,omitempty"`
	Side       *Side     `json:"side,omitempty" yaml:"side,omitempty"`
}

// NewSet creates a set for the given workout. exerciseID may be nil when the
// exercise did not resolve against the catalog.
func NewSet(workoutID uuid.UUID, exerciseID *int64, setNumber int) *Set {
	return &Set{
		WorkoutID:  workoutID,
		ExerciseID: exerciseID,
		SetNumber:  setNumber,
	}
}

// WithWeight sets the weight used.
func (s *Set) WithWeight(w float64) *Set {
	s.Weight = &w
	return s
}

// WithReps sets the repetition count and clears any duration.
func (s *Set) WithReps(reps int) *Set {
	s.Reps = &reps
	s.Duration = nil
	return s
}

// WithDuration sets the elapsed seconds and clears any repetition count.
func (s *Set) WithDuration(seconds int) *Set {
	s.Duration = &seconds
	s.Reps = nil
	return s
}

// WithRest sets the rest period in seconds.
func (s *Set) WithRest(seconds int) *Set {
	s.Rest = &seconds
	return s
}

// WithNote sets a free-text note.
func (s *Set) WithNote(note string) *Set {
	s.Note = &note
	return s
}

// WithSide sets the side for a unilateral set.
func (s *Set) WithSide(side Side) *Set {
	s.Side = &side
	return s
}

// Validate checks row-level invariants that hold regardless of the catalog.
func (s *Set) Validate() error {
	if s.Reps != nil && s.Duration != nil {
		return fmt.Errorf("set has both reps and duration")
	}
	if s.SetNumber < 1 {
		return fmt.Errorf("set number must be positive, got %d", s.SetNumber)
	}
	if s.Side != nil && *s.Side != SideLeft && *s.Side != SideRight {
		return fmt.Errorf("unknown side %q", *s.Side)
	}
	return nil
}

// SetFilter restricts ListSets. Empty slices mean no restriction.
type SetFilter struct {
	Dates       []string
	ExerciseIDs []int64
	Limit       int
}
