package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"warikan/internal/cli"
)

var (
	flagYear  int
	flagMonth int
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Monthly settlement (default: newest month in the ledger)",
	RunE:  runMonthly,
}

var yearlyCmd = &cobra.Command{
	Use:   "yearly",
	Short: "Yearly settlement, without the fixed share",
	RunE:  runYearly,
}

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "List the years present in the ledger",
	RunE:  runYears,
}

func init() {
	for _, c := range []*cobra.Command{monthlyCmd, yearlyCmd} {
		c.Flags().IntVarP(&flagYear, "year", "y", 0, "Year (default: newest)")
	}
	monthlyCmd.Flags().IntVarP(&flagMonth, "month", "m", 0, "Month 1-12 (default: newest)")

	rootCmd.AddCommand(monthlyCmd, yearlyCmd, yearsCmd)
}

func runMonthly(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.resolvePeriod(ctx, flagYear, flagMonth)
	if err != nil {
		return err
	}
	report, err := a.settlements.Monthly(ctx, p.Year, p.Month)
	if err != nil {
		return err
	}
	if flagJSON {
		return a.printJSON(report)
	}
	fmt.Fprintln(a.out)
	fmt.Fprint(a.out, cli.RenderMonthly(report))
	return nil
}

func runYearly(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.resolvePeriod(ctx, flagYear, 1)
	if err != nil {
		return err
	}
	report, err := a.settlements.Yearly(ctx, p.Year)
	if err != nil {
		return err
	}
	if flagJSON {
		return a.printJSON(report)
	}
	fmt.Fprintln(a.out)
	fmt.Fprint(a.out, cli.RenderYearly(report))
	return nil
}

func runYears(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ov, err := a.settlements.Overview(ctx)
	if err != nil {
		return err
	}
	if flagJSON {
		return a.printJSON(ov)
	}
	for _, y := range ov.Years {
		fmt.Fprintln(a.out, y)
	}
	return nil
}
