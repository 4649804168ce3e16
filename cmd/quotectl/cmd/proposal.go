package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/export"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/quote"
)

// agreementFile is the input of proposal and export.
type agreementFile struct {
	Title    string            `json:"title"`
	Services []quote.FormState `json:"services"`
}

func (o *options) assemble(ctx context.Context, path string) (quote.Proposal, string, error) {
	var in agreementFile
	if err := readJSON(path, &in); err != nil {
		return quote.Proposal{}, "", err
	}

	e, err := o.open(ctx)
	if err != nil {
		return quote.Proposal{}, "", err
	}
	defer e.Close()

	p, err := quote.Assemble(ctx, e.catalog, e.resolver, in.Services, o.months)
	if err != nil {
		return quote.Proposal{}, "", err
	}
	return p, in.Title, nil
}

func newProposalCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal <agreement.json|->",
		Short: "Assemble the proposal of an agreement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := opts.assemble(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().IntVar(&opts.months, "months", opts.months, "global contract length in months")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <agreement.json|->",
		Short: "Export the proposal of an agreement as an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, title, err := opts.assemble(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			raw, err := export.Proposal(p, title)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, raw, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d services)\n", output, len(p.Services))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "proposal.xlsx", "workbook path")
	cmd.Flags().IntVar(&opts.months, "months", opts.months, "global contract length in months")
	return cmd
}
