// ABOUTME: CLI command reporting where the stores live and what they hold.
// ABOUTME: Shows each store's path, applied schema version and row counts.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store locations and schema versions",
	Long: `Show current store status including:
- Catalog and log store paths
- Applied schema version of each store
- Catalog and workout counts`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		catalogVersion, catalogDirty, err := stores.Catalog.SchemaVersion()
		if err != nil {
			return fmt.Errorf("catalog schema: %w", err)
		}
		logVersion, logDirty, err := stores.Log.SchemaVersion()
		if err != nil {
			return fmt.Errorf("log schema: %w", err)
		}
		counts, err := svc.Catalog().Counts(ctx)
		if err != nil {
			return fmt.Errorf("catalog counts: %w", err)
		}
		workouts, err := svc.Log().ListWorkouts(ctx, 0)
		if err != nil {
			return fmt.Errorf("list workouts: %w", err)
		}

		color.New(color.Bold).Fprintln(out, "Catalog store")
		fmt.Fprintf(out, "  path:       %s\n", stores.Catalog.Path())
		fmt.Fprintf(out, "  schema:     %s\n", schemaLabel(catalogVersion, catalogDirty))
		fmt.Fprintf(out, "  equipment:  %d\n", counts.Equipment)
		fmt.Fprintf(out, "  muscles:    %d\n", counts.MuscleGroups)
		fmt.Fprintf(out, "  exercises:  %d\n", counts.Entries)

		color.New(color.Bold).Fprintln(out, "Log store")
		fmt.Fprintf(out, "  path:       %s\n", stores.Log.Path())
		fmt.Fprintf(out, "  schema:     %s\n", schemaLabel(logVersion, logDirty))
		fmt.Fprintf(out, "  workouts:   %d\n", len(workouts))

		if catalogDirty || logDirty {
			color.New(color.FgYellow).Fprintln(out, "A migration did not finish. Restore from an export before logging more sets.")
		}
		return nil
	},
}

func schemaLabel(version uint, dirty bool) string {
	if dirty {
		return fmt.Sprintf("v%d (dirty)", version)
	}
	return fmt.Sprintf("v%d", version)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
