// ABOUTME: CLI commands for browsing and editing the exercise catalog.
// ABOUTME: Covers catalog entries, equipment, and muscle groups.
package main

import (
	"fmt"
	"strings"

	"github.com/adamsatar/lift/internal/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	catalogEquipmentFilter string
	catalogMuscleFilter    string

	entryEquipment  string
	entryWeight     float64
	entryMeasuredBy string
	entrySides      string
	entryMuscles    []string
	entryRename     string

	equipmentDefaultWeight float64
	equipmentNoWeight      bool
	equipmentResistance    bool
)

var catalogCmd = &cobra.Command{
	Use:     "catalog",
	Aliases: []string{"exercises"},
	Short:   "Browse and edit the exercise catalog",
	Long: `Browse and edit the exercise catalog.

Every exercise has one piece of equipment, a default weight, a measured-by
mode (Reps or Duration), a sides mode (Bilateral or Unilateral) and any
number of target muscle groups.

EXAMPLES:

  lift catalog list
  lift catalog list --equipment Dumbbell --muscle Biceps
  lift catalog show "Dumbbell Hammer Curl"
  lift catalog add "Goblet Squat" --equipment Dumbbell --weight 20 --muscles Quads,Glutes
  lift catalog edit "Goblet Squat" --weight 25
  lift catalog equipment
  lift catalog muscles`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog exercises",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := svc.Catalog().ListEntries(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list catalog: %w", err)
		}

		faint := color.New(color.Faint)
		shown := 0
		for _, e := range entries {
			if catalogEquipmentFilter != "" && !strings.EqualFold(e.EquipmentName, catalogEquipmentFilter) {
				continue
			}
			if catalogMuscleFilter != "" && !hasFold(e.MuscleGroups, catalogMuscleFilter) {
				continue
			}
			fmt.Printf("%s  %s  %s  %s\n",
				padRight(e.Name, 26),
				padRight(e.EquipmentName, 12),
				padRight(entryModes(e), 20),
				faint.Sprint(truncate(e.MuscleGroupNames(), 40)),
			)
			shown++
		}

		if shown == 0 {
			fmt.Println("No exercises found.")
		}
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one catalog exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := svc.ResolveEntry(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printEntry(entry)
		return nil
	},
}

var catalogAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an exercise to the catalog",
	Long: `Add an exercise to the catalog.

The equipment must already exist. When --weight is not given the
equipment's default weight is used.

EXAMPLES:

  lift catalog add "Goblet Squat" --equipment Dumbbell --weight 20 --muscles Quads,Glutes
  lift catalog add "Wall Sit" --equipment Bodyweight --measured-by duration
  lift catalog add "Single Leg RDL" --equipment Dumbbell --sides unilateral`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if entryEquipment == "" {
			return fmt.Errorf("--equipment is required")
		}

		weight := entryWeight
		if !cmd.Flags().Changed("weight") {
			eq, err := svc.Catalog().GetEquipment(ctx, entryEquipment)
			if err != nil {
				return err
			}
			weight = eq.DefaultWeight
		}

		entry, err := svc.Catalog().AddEntry(ctx, models.CatalogEntryParams{
			Name:         args[0],
			Equipment:    entryEquipment,
			Weight:       weight,
			MeasuredBy:   models.MeasuredBy(entryMeasuredBy),
			Laterality:   models.Laterality(entrySides),
			MuscleGroups: entryMuscles,
		})
		if err != nil {
			return fmt.Errorf("failed to add exercise: %w", err)
		}

		color.Green("✓ Added %s", entry.Name)
		printEntry(entry)
		return nil
	},
}

var catalogEditCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Edit a catalog exercise",
	Long: `Edit a catalog exercise. Only the flags given are changed.

--muscles replaces the whole muscle group list.

EXAMPLES:

  lift catalog edit "Goblet Squat" --weight 25
  lift catalog edit "Goblet Squat" --rename "Heel Elevated Goblet Squat"
  lift catalog edit Plank --muscles Abs,Obliques,Shoulders`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		entry, err := svc.ResolveEntry(ctx, args[0])
		if err != nil {
			return err
		}

		params := models.ParamsFromEntry(entry)
		flags := cmd.Flags()
		if flags.Changed("rename") {
			params.Name = entryRename
		}
		if flags.Changed("equipment") {
			params.Equipment = entryEquipment
		}
		if flags.Changed("weight") {
			params.Weight = entryWeight
		}
		if flags.Changed("measured-by") {
			params.MeasuredBy = models.MeasuredBy(entryMeasuredBy)
		}
		if flags.Changed("sides") {
			params.Laterality = models.Laterality(entrySides)
		}
		if flags.Changed("muscles") {
			params.MuscleGroups = entryMuscles
		}

		updated, err := svc.Catalog().UpdateEntry(ctx, entry.ID, params)
		if err != nil {
			return fmt.Errorf("failed to update exercise: %w", err)
		}

		color.Green("✓ Updated %s", updated.Name)
		printEntry(updated)
		return nil
	},
}

var equipmentCmd = &cobra.Command{
	Use:   "equipment",
	Short: "List equipment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		equipment, err := svc.Catalog().ListEquipment(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list equipment: %w", err)
		}
		if len(equipment) == 0 {
			fmt.Println("No equipment found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, e := range equipment {
			var traits []string
			if !e.TrackWeight {
				traits = append(traits, "no weight")
			}
			if e.HasResistanceLevels {
				traits = append(traits, "resistance levels")
			}
			fmt.Printf("%s  %s  %s\n",
				padRight(e.Name, 14),
				padRight(fmt.Sprintf("%g", e.DefaultWeight), 6),
				faint.Sprint(strings.Join(traits, ", ")),
			)
		}
		return nil
	},
}

var equipmentAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add equipment",
	Long: `Add a piece of equipment.

EXAMPLES:

  lift catalog equipment add "EZ Bar" --default-weight 25
  lift catalog equipment add Band --no-weight --resistance-levels`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e := models.NewEquipment(args[0]).WithDefaultWeight(equipmentDefaultWeight)
		if equipmentNoWeight {
			e.WithoutWeightTracking()
		}
		if equipmentResistance {
			e.WithResistanceLevels()
		}

		_, created, err := svc.Catalog().UpsertEquipment(cmd.Context(), *e)
		if err != nil {
			return fmt.Errorf("failed to add equipment: %w", err)
		}
		if !created {
			color.Yellow("%s already exists", e.Name)
			return nil
		}
		color.Green("✓ Added equipment %s", e.Name)
		return nil
	},
}

var musclesCmd = &cobra.Command{
	Use:   "muscles",
	Short: "List muscle groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := svc.Catalog().ListMuscleGroups(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list muscle groups: %w", err)
		}
		if len(groups) == 0 {
			fmt.Println("No muscle groups found.")
			return nil
		}
		for _, mg := range groups {
			fmt.Println(mg.Name)
		}
		return nil
	},
}

func entryModes(e *models.CatalogEntry) string {
	mode := string(e.MeasuredBy)
	if e.Laterality == models.Unilateral {
		mode += ", " + string(e.Laterality)
	}
	return mode
}

func printEntry(e *models.CatalogEntry) {
	faint := color.New(color.Faint)
	fmt.Printf("  %s  %s\n", faint.Sprintf("%-10s", "equipment"), e.EquipmentName)
	fmt.Printf("  %s  %g\n", faint.Sprintf("%-10s", "weight"), e.Weight)
	fmt.Printf("  %s  %s\n", faint.Sprintf("%-10s", "measured"), e.MeasuredBy)
	fmt.Printf("  %s  %s\n", faint.Sprintf("%-10s", "sides"), e.Laterality)
	if len(e.MuscleGroups) > 0 {
		fmt.Printf("  %s  %s\n", faint.Sprintf("%-10s", "muscles"), e.MuscleGroupNames())
	}
}

func hasFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

func init() {
	catalogListCmd.Flags().StringVar(&catalogEquipmentFilter, "equipment", "", "filter by equipment")
	catalogListCmd.Flags().StringVar(&catalogMuscleFilter, "muscle", "", "filter by muscle group")

	for _, c := range []*cobra.Command{catalogAddCmd, catalogEditCmd} {
		c.Flags().StringVar(&entryEquipment, "equipment", "", "equipment name")
		c.Flags().Float64Var(&entryWeight, "weight", 0, "default weight")
		c.Flags().StringVar(&entryMeasuredBy, "measured-by", "", "reps or duration")
		c.Flags().StringVar(&entrySides, "sides", "", "bilateral or unilateral")
		c.Flags().StringSliceVar(&entryMuscles, "muscles", nil, "target muscle groups (comma-separated)")
	}
	catalogEditCmd.Flags().StringVar(&entryRename, "rename", "", "new exercise name")

	equipmentAddCmd.Flags().Float64Var(&equipmentDefaultWeight, "default-weight", 0, "weight added when logging")
	equipmentAddCmd.Flags().BoolVar(&equipmentNoWeight, "no-weight", false, "do not track weight per set")
	equipmentAddCmd.Flags().BoolVar(&equipmentResistance, "resistance-levels", false, "uses discrete resistance levels")

	equipmentCmd.AddCommand(equipmentAddCmd)
	catalogCmd.AddCommand(catalogListCmd, catalogShowCmd, catalogAddCmd, catalogEditCmd, equipmentCmd, musclesCmd)
	rootCmd.AddCommand(catalogCmd)
}
