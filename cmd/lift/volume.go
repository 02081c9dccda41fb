// ABOUTME: CLI command for training volume trends.
// ABOUTME: Sums weight times reps per day, week, or month.
package main

import (
	"fmt"

	"github.com/adamsatar/lift/internal/models"
	"github.com/adamsatar/lift/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	volumeBucket    string
	volumeFrom      string
	volumeTo        string
	volumeExercises []string
)

var volumeCmd = &cobra.Command{
	Use:   "volume",
	Short: "Show training volume over time",
	Long: `Show training volume (weight × reps) per period.

Only sets with both weight and reps count. Weeks start on Monday and each
period is labeled with its first date. With --exercise the totals are split
per exercise.

EXAMPLES:

  lift volume
  lift volume --bucket week --from 2024-01-01
  lift volume --bucket month -e "Barbell Back Squat" -e "Barbell Deadlift"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bucket, err := models.ParseVolumeBucket(volumeBucket)
		if err != nil {
			return err
		}

		points, err := svc.Volume(cmd.Context(), tracker.VolumeQuery{
			Bucket:    bucket,
			From:      volumeFrom,
			To:        volumeTo,
			Exercises: volumeExercises,
		})
		if err != nil {
			return fmt.Errorf("failed to compute volume: %w", err)
		}

		if len(points) == 0 {
			fmt.Println("No volume found.")
			return nil
		}

		for _, p := range points {
			label := p.Period
			if p.Exercise != "" {
				label += "  " + padRight(truncate(p.Exercise, 26), 26)
			}
			fmt.Printf("%s  %s  %d sets  %d reps\n",
				label,
				padRight(fmt.Sprintf("%.0f", p.Volume), 10),
				p.Sets,
				p.Reps,
			)
		}
		return nil
	},
}

func init() {
	volumeCmd.Flags().StringVarP(&volumeBucket, "bucket", "b", "day", "day, week or month")
	volumeCmd.Flags().StringVar(&volumeFrom, "from", "", "first date (inclusive)")
	volumeCmd.Flags().StringVar(&volumeTo, "to", "", "last date (inclusive)")
	volumeCmd.Flags().StringSliceVarP(&volumeExercises, "exercise", "e", nil, "split by these exercises")
	rootCmd.AddCommand(volumeCmd)
}
