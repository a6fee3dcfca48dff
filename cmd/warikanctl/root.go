package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"warikan/internal/backend"
	"warikan/internal/cli"
	"warikan/internal/config"
	"warikan/internal/core"
	"warikan/internal/log"
	"warikan/internal/services"
)

var (
	flagSource  string
	flagStore   string
	flagFixture string
	flagJSON    bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "warikanctl",
	Short: "Household settlement reports in the terminal",
	Long: "Fetch the household ledger and print monthly or yearly settlements,\n" +
		"manage the counterparty's advances and list stored snapshots.",
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSource, "source", "", "Ledger source: gas, sheets or memory (default: DATA_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "Advance store: sqlite or memory (default: STORE_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&flagFixture, "fixture", "", "JSON ledger for the memory source (default: MEMORY_FIXTURE)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log to stderr")
}

// app is what every subcommand works with.
type app struct {
	cfg         *config.Config
	backend     *backend.BackendResult
	settlements *services.SettlementService
	advances    *services.AdvanceService
	out         io.Writer
}

func (a *app) Close() {
	if a.backend.Cleanup != nil {
		_ = a.backend.Cleanup()
	}
}

// loadApp reads the environment, applies flag overrides and opens the
// backend. The caller must Close the result.
func loadApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cli.LoadEnvFile()

	lc := log.DefaultConfig()
	lc.Component = log.ComponentCLI
	lc.Output = os.Stderr
	lc.Level = slog.LevelWarn
	if flagVerbose {
		lc.Level = slog.LevelDebug
	}
	logger := log.New(lc)
	log.SetDefault(logger)

	cfg := config.Load()
	if flagSource != "" {
		cfg.DataBackend = flagSource
	}
	if flagStore != "" {
		cfg.StoreBackend = flagStore
	}
	if flagFixture != "" {
		cfg.FixtureFile = flagFixture
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	policy.Location = cfg.Location()

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bc)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		backend: res,
		settlements: services.NewSettlementService(res.Source, res.Store, policy, services.SettlementServiceConfig{
			CacheTTL: cfg.CacheTTL,
		}),
		// the CLI runs without a broker; the worker's timer catches up
		advances: services.NewAdvanceService(res.Store, nil, ""),
		out:      cmd.OutOrStdout(),
	}, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resolvePeriod fills unset flags from the newest ledger month.
func (a *app) resolvePeriod(ctx context.Context, year, month int) (core.Period, error) {
	if year == 0 || month == 0 {
		ov, err := a.settlements.Overview(ctx)
		if err != nil {
			return core.Period{}, err
		}
		if year == 0 {
			year = ov.Latest.Year
		}
		if month == 0 {
			month = ov.Latest.Month
		}
	}
	p, err := core.NewPeriod(year, month)
	if err != nil {
		return core.Period{}, fmt.Errorf("invalid period %d-%d: %w", year, month, err)
	}
	return p, nil
}
