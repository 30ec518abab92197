package main

import (
	"github.com/spf13/cobra"

	"github.com/thebtf/focusforge/internal/config"
	"github.com/thebtf/focusforge/internal/taxonomy"
)

func newTaxonomyCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Print the effective taxonomy as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			if path == "" {
				path = cfg.TaxonomyPath
			}
			tax, err := taxonomy.Load(path)
			if err != nil {
				return err
			}
			data, err := tax.WithInternalDomains(cfg.InternalDomains...).Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&path, "taxonomy", "", "Taxonomy YAML file (default: configured or embedded)")
	return cmd
}
