// ABOUTME: CLI commands for viewing workouts.
// ABOUTME: A workout is every set logged on one date, shown in exercise order.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var workoutsLimit int

var workoutsCmd = &cobra.Command{
	Use:     "workouts",
	Aliases: []string{"workout"},
	Short:   "View workouts",
	Long: `View workouts.

Workouts are created automatically when sets are logged. Refer to one by
its date or by an ID prefix.

EXAMPLES:

  lift workouts list
  lift workouts show 2024-03-01
  lift workouts show 3f2a`,
}

var workoutsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent workouts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		workouts, err := svc.Workouts(cmd.Context(), workoutsLimit)
		if err != nil {
			return fmt.Errorf("failed to list workouts: %w", err)
		}

		if len(workouts) == 0 {
			fmt.Println("No workouts found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, w := range workouts {
			fmt.Printf("%s  %s  %s  %s\n",
				faint.Sprint(w.ID[:8]),
				padRight(w.Label, 26),
				padRight(fmt.Sprintf("%d sets", w.SetCount), 8),
				truncate(strings.Join(w.Exercises, ", "), 50),
			)
		}
		return nil
	},
}

var workoutsShowCmd = &cobra.Command{
	Use:   "show <date|id>",
	Short: "Show a workout with its sets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := svc.Workout(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		faint := color.New(color.Faint)
		fmt.Printf("%s  %s\n", color.New(color.Bold).Sprint(w.Label), faint.Sprint(w.ID))
		if len(w.Sets) == 0 {
			fmt.Println("  No sets logged.")
			return nil
		}

		current := ""
		for _, s := range w.Sets {
			if s.Exercise != current {
				current = s.Exercise
				fmt.Printf("\n  %s\n", current)
			}
			fmt.Printf("    %s  %s  %s\n",
				faint.Sprint(padRight(fmt.Sprintf("%d", s.ID), 6)),
				padRight(fmt.Sprintf("#%d", s.SetNumber), 4),
				setDetail(s),
			)
		}
		return nil
	},
}

func init() {
	workoutsListCmd.Flags().IntVarP(&workoutsLimit, "limit", "n", 10, "max number of results")
	workoutsCmd.AddCommand(workoutsListCmd, workoutsShowCmd)
	rootCmd.AddCommand(workoutsCmd)
}
