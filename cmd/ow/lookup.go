package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/oceanwatch/oceanwatch/internal/registry"
)

func newLookupCmd() *cobra.Command {
	var (
		configPath string
		max        int
	)

	cmd := &cobra.Command{
		Use:   "lookup <plate-or-pattern>",
		Short: "Look up a plate in the registry",
		Long: `Looks up a plate by exact match. A pattern containing '*' (one unknown
character per star) runs a wildcard search instead. When an exact lookup
misses, similar plates are suggested.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, configPath, args[0], max)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "oceanwatch.yaml", "path to config file")
	cmd.Flags().IntVar(&max, "max", 10, "maximum suggestions to show")
	return cmd
}

func runLookup(cmd *cobra.Command, configPath, query string, max int) error {
	out := cmd.OutOrStdout()

	_, store, err := openStore(configPath)
	if err != nil {
		return err
	}
	reg := registry.New(store.DB())

	norm := registry.Normalize(query)

	vehicle, found, err := reg.Validate(norm)
	if err != nil {
		return err
	}
	if found {
		fmt.Fprintf(out, "Plate %s found in registry\n", vehicle.Plate)
		fmt.Fprintf(out, "  VIN:   %s\n", vehicle.VIN)
		fmt.Fprintf(out, "  Year:  %s\n", vehicle.VehicleYear)
		fmt.Fprintf(out, "  Owner: %s\n", vehicle.OwnerName)
		fmt.Fprintf(out, "  Base:  %s (%s)\n", vehicle.BaseName, vehicle.BaseNumber)

		count, err := store.PlateSightingCount(vehicle.Plate)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  Sightings: %d\n", count)
		return nil
	}

	suggestions, err := reg.Suggest(norm, max)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		fmt.Fprintf(out, "Plate %s not found, no similar plates\n", norm)
		return nil
	}

	fmt.Fprintf(out, "Plate %s not found. Similar plates:\n", norm)
	for _, p := range suggestions {
		fmt.Fprintf(out, "  %s\n", p)
	}
	return nil
}
