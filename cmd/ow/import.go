package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/oceanwatch/oceanwatch/internal/registry"
)

func newImportCmd() *cobra.Command {
	var (
		configPath string
		fiskerOnly bool
	)

	cmd := &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Import the TLC vehicle registry from a CSV export",
		Long: `Loads a NYC TLC "For Hire Vehicles" CSV export into the registry,
upserting on plate so re-imports refresh existing rows.

With --fisker-only, rows whose VIN does not identify a Fisker Ocean are
removed after import.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, configPath, args[0], fiskerOnly)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "oceanwatch.yaml", "path to config file")
	cmd.Flags().BoolVar(&fiskerOnly, "fisker-only", true, "keep only Fisker Ocean VINs after import")
	return cmd
}

func runImport(cmd *cobra.Command, configPath, csvPath string, fiskerOnly bool) error {
	out := cmd.OutOrStdout()

	_, store, err := openStore(configPath)
	if err != nil {
		return err
	}
	reg := registry.New(store.DB())

	imported, err := reg.ImportCSV(csvPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %d registry rows from %s\n", imported, csvPath)

	if fiskerOnly {
		remaining, err := reg.FilterByVINPrefix(registry.FiskerVINPrefix)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Kept %d Fisker Ocean rows (VIN prefix %s)\n", remaining, registry.FiskerVINPrefix)
	}
	return nil
}
