package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/seed"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and seed service configs",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	cmd.AddCommand(newConfigShowCmd(opts))
	cmd.AddCommand(newConfigSeedCmd(opts))
	return cmd
}

func newConfigShowCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <service>",
		Short: "Print the effective config of a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			rule, err := e.catalog.Get(args[0])
			if err != nil {
				return err
			}
			eff := e.resolver.Fetch(cmd.Context(), rule.ID, rule.Schema)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), eff)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tusing defaults: %t\n", rule.DisplayName, eff.UsingDefaults)
			for _, key := range eff.Config.Keys() {
				fmt.Fprintf(w, "%s\t%g\t%s\n", key, eff.Config.Get(key), eff.Origins[key])
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newConfigSeedCmd(opts *options) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store every service's default config as its active config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.offline {
				return fmt.Errorf("seed needs the database; drop --offline")
			}
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			stats, err := seed.Run(cmd.Context(), e.db, seed.Config{Catalog: e.catalog, Overwrite: overwrite})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded service configs: %d inserted, %d updated\n", stats.Inserts, stats.Updates)
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "store defaults as a new version even when a config exists")
	return cmd
}
