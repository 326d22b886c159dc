package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"cpa-savings/config"
	"cpa-savings/domain"
	"cpa-savings/service"
)

type estimateOptions struct {
	fields  map[string]*string
	lenient bool
	asJSON  bool
}

func estimateCmd() *cobra.Command {
	opts := estimateOptions{fields: map[string]*string{}}

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Compute the estimated annual savings for a business",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runEstimate(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	flags := []struct{ field, name, usage string }{
		{service.FieldEmployees, "employees", "number of employees in accounting/finance"},
		{service.FieldMonthlyCost, "monthly-cost", "monthly cost per in-house accountant"},
		{service.FieldPenaltyFees, "penalty-fees", "annual compliance/penalty fees"},
		{service.FieldSoftwareSpend, "software-spend", "monthly accounting software spend"},
		{service.FieldHoursSpent, "hours-spent", "hours per month spent on bookkeeping"},
	}
	for _, f := range flags {
		opts.fields[f.field] = cmd.Flags().String(f.name, "0", f.usage)
	}
	cmd.Flags().BoolVar(&opts.lenient, "lenient", false, "treat unusable values as zero instead of failing")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the raw result as JSON")

	return cmd
}

func runEstimate(ctx context.Context, out io.Writer, cfg config.Config, opts estimateOptions) error {
	mode := cfg.Coercion
	if opts.lenient {
		mode = service.CoerceLenient
	}

	fields := make(map[string]string, len(opts.fields))
	for name, v := range opts.fields {
		fields[name] = *v
	}
	input, err := service.ParseCalculatorInput(fields, mode)
	if err != nil {
		return err
	}

	savings, err := service.NewSavingsService(nil, cfg.Assumptions, 0)
	if err != nil {
		return err
	}
	result, err := savings.Calculate(ctx, input)
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	view := service.Present(result, cfg.BookingURL)
	_, err = fmt.Fprint(out, service.SummaryMarkdown(view))
	return err
}

func assumptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assumptions",
		Short: "Print the savings assumptions in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return printAssumptions(cmd.OutOrStdout(), cfg.Assumptions)
		},
	}
}

func printAssumptions(out io.Writer, a domain.Assumptions) error {
	b, err := yaml.Marshal(a)
	if err != nil {
		return err
	}
	_, err = out.Write(b)
	return err
}
