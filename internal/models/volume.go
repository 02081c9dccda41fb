// ABOUTME: Training volume aggregation types.
// ABOUTME: Volume is the sum of weight times reps over a period bucket.
package models

import (
	"fmt"
	"strings"
)

// VolumeBucket is the period granularity of a volume trend.
type VolumeBucket string

const (
	BucketDay   VolumeBucket = "day"
	BucketWeek  VolumeBucket = "week"
	BucketMonth VolumeBucket = "month"
)

// ParseVolumeBucket defaults to day.
func ParseVolumeBucket(s string) (VolumeBucket, error) {
	switch VolumeBucket(strings.ToLower(strings.TrimSpace(s))) {
	case "", BucketDay:
		return BucketDay, nil
	case BucketWeek:
		return BucketWeek, nil
	case BucketMonth:
		return BucketMonth, nil
	default:
		return "", fmt.Errorf("unknown bucket %q (want day, week or month)", s)
	}
}

// VolumeFilter restricts a volume query. From and To are inclusive
// YYYY-MM-DD bounds and may be empty.
type VolumeFilter struct {
	Bucket      VolumeBucket
	From        string
	To          string
	ExerciseIDs []int64
	PerExercise bool
}

// VolumePoint is the aggregate for one period, and one exercise when grouped per exercise.
// Period is the bucket's first date.
type VolumePoint struct {
	Period     string  `json:"period" yaml:"period"`
	ExerciseID *int64  `json:"exercise_id,omitempty" yaml:"exercise_id,omitempty"`
	Volume     float64 `json:"volume" yaml:"volume"`
	Sets       int     `json:"sets" yaml:"sets"`
	Reps       int     `json:"reps" yaml:"reps"`
}
