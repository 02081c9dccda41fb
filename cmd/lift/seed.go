// ABOUTME: CLI commands for seeding the catalog and bulk-importing sets.
// ABOUTME: Seed reads YAML documents; import reads CSV in the export layout.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/adamsatar/lift/internal/config"
	"github.com/adamsatar/lift/internal/seed"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	seedEquipment    string
	seedMuscleGroups string
	seedCatalog      string

	importDryRun        bool
	importReplace       bool
	importSkipMalformed bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the exercise catalog",
	Long: `Seed the catalog store with equipment, muscle groups and exercises.

Each table is seeded only when it is empty, so running seed again is safe.
Exercises naming unknown equipment are skipped with a warning.

SOURCES:

  By default the built-in catalog is used (barbell, dumbbell and bodyweight
  exercises). To use your own, pass all three YAML documents or set
  seed.equipment, seed.muscle_groups and seed.catalog in the config file.

EXAMPLES:

  lift seed
  lift seed --equipment eq.yaml --muscle-groups mg.yaml --catalog ex.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := cfg.Seed
		if seedEquipment != "" || seedMuscleGroups != "" || seedCatalog != "" {
			paths.Equipment, paths.MuscleGroups, paths.Catalog = seedEquipment, seedMuscleGroups, seedCatalog
			if !paths.HasCustomSeed() {
				return fmt.Errorf("--equipment, --muscle-groups and --catalog must be given together")
			}
		}

		var src *seed.CatalogSource
		var err error
		if paths.HasCustomSeed() {
			src, err = seed.LoadCatalogSource(
				config.ExpandPath(paths.Equipment),
				config.ExpandPath(paths.MuscleGroups),
				config.ExpandPath(paths.Catalog),
			)
		} else {
			src, err = seed.DefaultCatalogSource()
		}
		if err != nil {
			return fmt.Errorf("failed to load seed documents: %w", err)
		}

		stats, err := seed.NewSeeder(logger).SeedCatalog(cmd.Context(), svc.Catalog(), src)
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}

		color.Green("✓ Seeded catalog")
		fmt.Printf("  equipment:     %d added\n", stats.EquipmentCreated)
		fmt.Printf("  muscle groups: %d added\n", stats.MuscleGroupsCreated)
		fmt.Printf("  exercises:     %d added, %d skipped\n", stats.EntriesCreated, stats.EntriesSkipped)
		for _, table := range stats.SkippedTables {
			color.New(color.Faint).Printf("  %s already populated\n", table)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import sets from CSV",
	Long: `Import historical sets from a CSV file.

COLUMNS:

  Required: date, exercise
  Optional: set_number, weight, reps, duration, rest, note, side

  Headers are matched case-insensitively. Rows are grouped into one
  workout per date, and exercises are sequenced in the order they first
  appear. Names not found in the catalog are imported without an exercise
  ID and reported.

OPTIONS:

  --dry-run          Parse and resolve only, write nothing
  --replace          Delete existing sets on each imported date first
  --skip-malformed   Skip rows missing a date or exercise instead of aborting

EXAMPLES:

  lift import history.csv
  lift import history.csv --dry-run
  lift export csv -o all.csv && lift import all.csv --replace`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()

		importer := seed.NewImporter(svc.Catalog(), svc.Log(), logger, seed.ImportOptions{
			DryRun:        importDryRun,
			Replace:       importReplace,
			SkipMalformed: importSkipMalformed,
		})
		stats, err := importer.Import(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		if importDryRun {
			color.Yellow("Dry run - no changes made")
		} else {
			color.Green("✓ Imported %s", args[0])
		}
		fmt.Printf("  rows:     %d\n", stats.Rows)
		fmt.Printf("  workouts: %d\n", stats.Workouts)
		fmt.Printf("  sets:     %d\n", stats.Sets)
		if stats.Replaced > 0 {
			fmt.Printf("  replaced: %d\n", stats.Replaced)
		}
		if stats.Malformed > 0 {
			color.Yellow("  skipped %d malformed row(s)", stats.Malformed)
		}

		if len(stats.Unresolved) > 0 {
			names := make([]string, 0, len(stats.Unresolved))
			for name := range stats.Unresolved {
				names = append(names, name)
			}
			sort.Strings(names)
			color.Yellow("  %d exercise name(s) not in catalog:", len(names))
			for _, name := range names {
				fmt.Printf("    %s (%d)\n", padRight(name, 30), stats.Unresolved[name])
			}
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedEquipment, "equipment", "", "equipment YAML document")
	seedCmd.Flags().StringVar(&seedMuscleGroups, "muscle-groups", "", "muscle groups YAML document")
	seedCmd.Flags().StringVar(&seedCatalog, "catalog", "", "exercise catalog YAML document")

	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and resolve without writing")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "replace existing sets on imported dates")
	importCmd.Flags().BoolVar(&importSkipMalformed, "skip-malformed", false, "skip malformed rows instead of aborting")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(importCmd)
}
