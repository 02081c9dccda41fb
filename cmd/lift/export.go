// ABOUTME: CLI commands for exporting and restoring lift data.
// ABOUTME: Supports JSON, YAML, and CSV export; restore reads JSON or YAML exports.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adamsatar/lift/internal/storage"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export [format]",
	Short: "Export lift data",
	Long: `Export the catalog and training log.

FORMATS:

  json   Full export (default, suitable for backup/restore)
  yaml   Full export (human-readable)
  csv    One row per set in the import layout

OPTIONS:

  --output, -o   Write to file instead of stdout

EXAMPLES:

  lift export                        # Export all data as JSON
  lift export json -o backup.json    # Save to file
  lift export yaml
  lift export csv -o sets.csv`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"json", "yaml", "csv"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := "json"
		if len(args) == 1 {
			format = strings.ToLower(args[0])
		}

		var buf bytes.Buffer
		if err := storage.Export(cmd.Context(), svc.Catalog(), svc.Log(), format, &buf); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, buf.Bytes(), 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
			return nil
		}

		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore a JSON or YAML export",
	Long: `Restore data from a previous 'lift export json' or 'lift export yaml'.

Catalog rows that already exist by name are kept. Exercise IDs in the
export are remapped by name, so an export can be restored into a store
with a different catalog. Sets are appended, so restore into an empty log.

EXAMPLES:

  lift restore backup.json
  lift --log-db /tmp/fresh.db restore backup.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		raw, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		var data storage.ExportData
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(raw, &data)
		default:
			err = json.Unmarshal(raw, &data)
		}
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", filename, err)
		}

		summary, err := storage.RestoreData(cmd.Context(), &data, svc.Catalog(), svc.Log())
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		color.Green("✓ Restored from %s", filename)
		fmt.Printf("  equipment: %d, muscle groups: %d, exercises: %d\n",
			summary.Equipment, summary.MuscleGroups, summary.Entries)
		fmt.Printf("  workouts: %d, sets: %d\n", summary.Workouts, summary.Sets)
		if summary.Unresolved > 0 {
			color.Yellow("  %d set(s) lost their exercise reference", summary.Unresolved)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(restoreCmd)
}
