package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/quote"
)

func newQuoteCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "quote <form.json|->",
		Short: "Price one service form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var form quote.FormState
			if err := readJSON(args[0], &form); err != nil {
				return err
			}

			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			rule, err := e.catalog.Get(form.ServiceID)
			if err != nil {
				return err
			}
			eff := e.resolver.Fetch(cmd.Context(), rule.ID, rule.Schema)
			res := quote.Compute(rule, form, eff.Config)

			out := cmd.OutOrStdout()
			if format == "json" {
				return printJSON(out, res)
			}
			fmt.Fprintf(out, "%s\n", res.DisplayName)
			if eff.UsingDefaults {
				fmt.Fprintln(out, "  (priced from default rates)")
			}
			for _, line := range res.Details {
				fmt.Fprintf(out, "  %s\n", line)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	return cmd
}
