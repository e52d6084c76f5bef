package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List the locations configured in the reference data",
	Long: `List every station found in the reference workbook with its warehouse code,
invoice symbol and zone. Incompletely configured stations are flagged; they
cannot be converted until the missing fields are filled in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLocations()
	},
}

func init() {
	rootCmd.AddCommand(locationsCmd)
}

func runLocations() error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer func() { _ = env.logger.Sync() }()

	bundle, err := env.bundle()
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCATION\tWAREHOUSE\tSYMBOL\tZONE\t")
	for _, name := range bundle.LocationOrder {
		loc := bundle.Locations[name]
		status := ""
		if _, err := bundle.Location(name); err != nil {
			status = errorStyle.Render("incomplete")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, loc.WarehouseCode, loc.SymbolPrefix, loc.Zone, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	printInfof(os.Stdout, "%d location(s)", len(bundle.LocationOrder))
	return nil
}
