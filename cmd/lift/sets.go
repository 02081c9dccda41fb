// ABOUTME: CLI commands for listing, editing, and deleting logged sets.
// ABOUTME: Also holds the table helpers shared by the listing commands.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/adamsatar/lift/internal/tracker"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	setsDates     []string
	setsExercises []string
	setsLimit     int

	setEditExercise string
	setEditNumber   int
	setEditWeight   float64
	setEditReps     int
	setEditDuration int
	setEditRest     int
	setEditNote     string
	setEditSide     string
)

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "List, edit and delete logged sets",
	Long: `List, edit and delete logged sets.

EXAMPLES:

  lift sets list                          # Most recent sets
  lift sets list --date 2024-03-01
  lift sets list --exercise "Pull Up" -n 50
  lift sets edit 42 --reps 9
  lift sets delete 42`,
}

var setsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List logged sets",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, err := svc.History(cmd.Context(), tracker.HistoryQuery{
			Dates:     setsDates,
			Exercises: setsExercises,
			Limit:     setsLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list sets: %w", err)
		}

		if len(sets) == 0 {
			fmt.Println("No sets found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, s := range sets {
			fmt.Printf("%s  %s  %s  %s  %s\n",
				faint.Sprint(padRight(strconv.FormatInt(s.ID, 10), 6)),
				s.Date,
				padRight(truncate(s.Exercise, 26), 26),
				padRight(fmt.Sprintf("#%d", s.SetNumber), 4),
				setDetail(s),
			)
		}
		return nil
	},
}

var setsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a logged set",
	Long: `Edit a logged set. Only the flags given are changed.

Setting --reps clears duration and setting --duration clears reps.
An empty --note removes the note. The result must still fit the exercise:
reps or duration per its catalog entry, and a side only when unilateral.

EXAMPLES:

  lift sets edit 42 --weight 140 --reps 5
  lift sets edit 42 --exercise Plank --duration 45
  lift sets edit 42 --note ""`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSetID(args[0])
		if err != nil {
			return err
		}

		var patch tracker.SetPatch
		flags := cmd.Flags()
		if flags.Changed("exercise") {
			patch.Exercise = &setEditExercise
		}
		if flags.Changed("set-number") {
			patch.SetNumber = &setEditNumber
		}
		if flags.Changed("weight") {
			patch.Weight = &setEditWeight
		}
		if flags.Changed("reps") {
			patch.Reps = &setEditReps
		}
		if flags.Changed("duration") {
			patch.Duration = &setEditDuration
		}
		if flags.Changed("rest") {
			patch.Rest = &setEditRest
		}
		if flags.Changed("note") {
			patch.Note = &setEditNote
		}
		if flags.Changed("side") {
			patch.Side = &setEditSide
		}

		set, err := svc.EditSet(cmd.Context(), id, patch)
		if err != nil {
			return fmt.Errorf("failed to edit set: %w", err)
		}

		color.Green("✓ Updated set %d", set.ID)
		fmt.Printf("  set %d  %s\n", set.SetNumber, describeSet(set.Weight, set.Reps, set.Duration))
		return nil
	},
}

var setsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a logged set",
	Long: `Delete a logged set by ID.

The exercise keeps its place in the workout's sequence.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSetID(args[0])
		if err != nil {
			return err
		}
		if err := svc.DeleteSet(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete set: %w", err)
		}
		color.Yellow("✗ Deleted set %d", id)
		return nil
	},
}

func parseSetID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid set ID %q", arg)
	}
	return id, nil
}

func setDetail(s tracker.SetView) string {
	detail := describeSet(s.Weight, s.Reps, s.Duration)
	if s.Side != nil {
		detail += " " + string(*s.Side)
	}
	if s.Rest != nil {
		detail += fmt.Sprintf(" rest %ds", *s.Rest)
	}
	if s.Note != nil {
		detail += color.New(color.Faint).Sprintf(" %s", truncate(*s.Note, 30))
	}
	return detail
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	setsListCmd.Flags().StringSliceVar(&setsDates, "date", nil, "only these dates")
	setsListCmd.Flags().StringSliceVarP(&setsExercises, "exercise", "e", nil, "only these exercises")
	setsListCmd.Flags().IntVarP(&setsLimit, "limit", "n", 20, "max number of results")

	setsEditCmd.Flags().StringVarP(&setEditExercise, "exercise", "e", "", "move the set to another exercise")
	setsEditCmd.Flags().IntVar(&setEditNumber, "set-number", 0, "set number")
	setsEditCmd.Flags().Float64VarP(&setEditWeight, "weight", "w", 0, "weight")
	setsEditCmd.Flags().IntVarP(&setEditReps, "reps", "r", 0, "reps")
	setsEditCmd.Flags().IntVarP(&setEditDuration, "duration", "d", 0, "duration in seconds")
	setsEditCmd.Flags().IntVar(&setEditRest, "rest", 0, "rest in seconds")
	setsEditCmd.Flags().StringVar(&setEditNote, "note", "", "note (empty clears)")
	setsEditCmd.Flags().StringVar(&setEditSide, "side", "", "left or right (empty clears)")

	setsCmd.AddCommand(setsListCmd, setsEditCmd, setsDeleteCmd)
	rootCmd.AddCommand(setsCmd)
}
