package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"warikan/internal/cli"
	"warikan/internal/sheets"
)

var advanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Read or set the counterparty's advance for a month",
}

var advanceGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the stored advance",
	RunE:  runAdvanceGet,
}

var advanceSetCmd = &cobra.Command{
	Use:   "set AMOUNT",
	Short: "Store an advance; non-digits are dropped, empty means 0",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdvanceSet,
}

func init() {
	for _, c := range []*cobra.Command{advanceGetCmd, advanceSetCmd} {
		c.Flags().IntVarP(&flagYear, "year", "y", 0, "Year (default: newest)")
		c.Flags().IntVarP(&flagMonth, "month", "m", 0, "Month 1-12 (default: newest)")
	}
	advanceCmd.AddCommand(advanceGetCmd, advanceSetCmd)
	rootCmd.AddCommand(advanceCmd)
}

func runAdvanceGet(cmd *cobra.Command, _ []string) error {
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
	amount, err := a.advances.GetAdvance(ctx, p.Year, p.Month)
	if err != nil {
		return err
	}
	if flagJSON {
		return a.printJSON(map[string]any{"key": sheets.AdvanceKey(p), "period": p, "amount": amount})
	}
	fmt.Fprintf(a.out, "%s  %s\n", p, cli.Yen(amount))
	return nil
}

func runAdvanceSet(cmd *cobra.Command, args []string) error {
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
	amount, err := a.advances.SetAdvance(ctx, p.Year, p.Month, args[0])
	if err != nil {
		return err
	}
	if flagJSON {
		return a.printJSON(map[string]any{"key": sheets.AdvanceKey(p), "period": p, "amount": amount})
	}
	fmt.Fprintf(a.out, "%s  %s saved\n", p, cli.Yen(amount))
	return nil
}
