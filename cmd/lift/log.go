// ABOUTME: CLI command for logging sets of one exercise.
// ABOUTME: Builds set inputs from per-set flag lists and writes them through the tracker.
package main

import (
	"fmt"
	"strings"

	"github.com/adamsatar/lift/internal/models"
	"github.com/adamsatar/lift/internal/tracker"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	logDate     string
	logWeights  []float64
	logReps     []int
	logDuration []int
	logRest     []int
	logNote     string
	logSide     string
	logSetCount int
)

var logCmd = &cobra.Command{
	Use:   "log <exercise>",
	Short: "Log sets of an exercise",
	Long: `Log one or more sets of a catalog exercise.

Sets go into the workout for --date (today by default). The number of sets
is the longest of --weight, --reps, --duration and --rest, or --sets. A flag
given once applies to every set.

The catalog decides what is recorded:

  Reps exercises take --reps, Duration exercises take --duration (seconds).
  Weight is ignored for equipment that does not track it, and defaults to
  the exercise's catalog weight.
  --side (left/right) is only accepted for unilateral exercises.

EXAMPLES:

  lift log "Barbell Back Squat" -w 135,155,175 -r 5,5,3
  lift log "Barbell Bench Press" -w 135 -r 8 --sets 3
  lift log Plank -d 60,45
  lift log "Dumbbell One Arm Row" -w 40 -r 10 --side left
  lift log "Pull Up" -r 8,6 --date 2024-03-01 --note "strict"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs, err := buildSetInputs()
		if err != nil {
			return err
		}

		date := logDate
		if date == "" {
			date = models.Today()
		}

		res, err := svc.LogSets(cmd.Context(), tracker.LogRequest{
			Date:     date,
			Exercise: args[0],
			Sets:     inputs,
		})
		if err != nil {
			return err
		}

		faint := color.New(color.Faint)
		color.Green("✓ Logged %d set(s) of %s on %s", len(res.Sets), res.Entry.Name, res.Workout.Date)
		fmt.Printf("  %s exercise #%d in workout %s\n",
			faint.Sprint("→"), res.SequenceNumber, faint.Sprint(res.Workout.ShortID()))
		for _, s := range res.Sets {
			fmt.Printf("  %s  set %d  %s\n", faint.Sprintf("#%d", s.ID), s.SetNumber, describeSet(s.Weight, s.Reps, s.Duration))
		}
		return nil
	},
}

// buildSetInputs expands the per-set flag lists into one input per set.
func buildSetInputs() ([]tracker.SetInput, error) {
	n := logSetCount
	for _, l := range []int{len(logWeights), len(logReps), len(logDuration), len(logRest)} {
		if l > n {
			n = l
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("give --reps or --duration for at least one set")
	}

	lists := map[string]int{
		"weight":   len(logWeights),
		"reps":     len(logReps),
		"duration": len(logDuration),
		"rest":     len(logRest),
	}
	for name, l := range lists {
		if l > 1 && l != n {
			return nil, fmt.Errorf("--%s has %d values but %d sets are being logged", name, l, n)
		}
	}

	inputs := make([]tracker.SetInput, n)
	for i := range inputs {
		in := tracker.SetInput{Note: logNote, Side: logSide}
		if v, ok := pick(logWeights, i); ok {
			in.Weight = &v
		}
		if v, ok := pick(logReps, i); ok {
			in.Reps = &v
		}
		if v, ok := pick(logDuration, i); ok {
			in.Duration = &v
		}
		if v, ok := pick(logRest, i); ok {
			in.Rest = &v
		}
		inputs[i] = in
	}
	return inputs, nil
}

// pick returns the i'th value, or the only value when one was given.
func pick[T any](values []T, i int) (T, bool) {
	var zero T
	switch {
	case len(values) == 0:
		return zero, false
	case len(values) == 1:
		return values[0], true
	case i < len(values):
		return values[i], true
	}
	return zero, false
}

func describeSet(weight *float64, reps, duration *int) string {
	var parts []string
	if weight != nil {
		parts = append(parts, fmt.Sprintf("%g", *weight))
	}
	if reps != nil {
		parts = append(parts, fmt.Sprintf("%d reps", *reps))
	}
	if duration != nil {
		parts = append(parts, fmt.Sprintf("%ds", *duration))
	}
	return strings.Join(parts, " × ")
}

func init() {
	logCmd.Flags().StringVar(&logDate, "date", "", "workout date (default today)")
	logCmd.Flags().Float64SliceVarP(&logWeights, "weight", "w", nil, "weight per set")
	logCmd.Flags().IntSliceVarP(&logReps, "reps", "r", nil, "reps per set")
	logCmd.Flags().IntSliceVarP(&logDuration, "duration", "d", nil, "duration per set in seconds")
	logCmd.Flags().IntSliceVar(&logRest, "rest", nil, "rest after each set in seconds")
	logCmd.Flags().StringVar(&logNote, "note", "", "note for every set")
	logCmd.Flags().StringVar(&logSide, "side", "", "left or right (unilateral exercises)")
	logCmd.Flags().IntVarP(&logSetCount, "sets", "s", 0, "number of sets when values repeat")
	rootCmd.AddCommand(logCmd)
}
