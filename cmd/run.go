package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/kpiprobe/internal/browser"
	"github.com/xkilldash9x/kpiprobe/internal/config"
	"github.com/xkilldash9x/kpiprobe/internal/observability"
	"github.com/xkilldash9x/kpiprobe/internal/scenario"
)

const shutdownTimeout = 10 * time.Second

// browserProvider starts the browser scenarios run in. The returned shutdown
// function stops it.
type browserProvider interface {
	Start(ctx context.Context, cfg config.Interface, logger *zap.Logger) (scenario.OpenFunc, func(context.Context) error, error)
}

// managerProvider launches a local Chrome through browser.Manager.
type managerProvider struct{}

func (managerProvider) Start(ctx context.Context, cfg config.Interface, logger *zap.Logger) (scenario.OpenFunc, func(context.Context) error, error) {
	m, err := browser.NewManager(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	open := func(ctx context.Context) (browser.Tab, error) {
		s, err := m.NewSession(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return open, m.Shutdown, nil
}

func newRunCmd(provider browserProvider) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [scenarios...]",
		Short: "Runs the given scenarios, or all of them, against the configured deployment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}
			if err := applyRunOverrides(cmd, cfg); err != nil {
				return err
			}
			return runScenarios(cmd.Context(), cmd.OutOrStdout(), cfg, args, provider, observability.GetLogger())
		},
	}

	runCmd.Flags().Bool("headless", true, "Run Chrome without a window")
	runCmd.Flags().StringP("env", "e", "", "Target environment (qa or prod)")
	runCmd.Flags().String("host", "", "Target host, e.g. ottoviz.ominf.net")
	runCmd.Flags().StringP("data", "d", "", "YAML scenario data replacing the built-in data")
	runCmd.Flags().Float64("tolerance", 0, "Accepted difference between a column average and its footer")
	return runCmd
}

// applyRunOverrides copies the flags the user set onto cfg and validates the result.
func applyRunOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("headless") {
		headless, err := flags.GetBool("headless")
		if err != nil {
			return err
		}
		cfg.SetBrowserHeadless(headless)
	}
	for name, set := range map[string]func(string){
		"env":  cfg.SetTargetEnvironment,
		"host": cfg.SetTargetHost,
		"data": cfg.SetScenarioDataFile,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		set(value)
	}
	if flags.Changed("tolerance") {
		tolerance, err := flags.GetFloat64("tolerance")
		if err != nil {
			return err
		}
		cfg.VerifyCfg.Tolerance = tolerance
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// runScenarios is the testable core of the run command.
func runScenarios(ctx context.Context, out io.Writer, cfg config.Interface, names []string, provider browserProvider, logger *zap.Logger) error {
	props, err := config.LoadProperties(cfg.Credentials().PropertiesFile)
	if err != nil {
		return err
	}
	creds, err := props.Credentials()
	if err != nil {
		return err
	}

	data, err := scenario.LoadData(cfg.Scenario().DataFile)
	if err != nil {
		return err
	}
	selected, err := scenario.Select(scenario.Registry(data), names)
	if err != nil {
		return err
	}

	logger.Info("Starting run.",
		zap.String("target", cfg.Target().BaseURL()),
		zap.Int("scenarios", len(selected)),
	)

	open, shutdown, err := provider.Start(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("Browser shutdown reported errors.", zap.Error(err))
		}
	}()

	runner := scenario.NewRunner(cfg, data, creds, open, logger)
	results := runner.Run(ctx, selected)
	printResults(out, results)

	if err := ctx.Err(); err != nil {
		return err
	}
	if failed := scenario.Failed(results); failed > 0 {
		return fmt.Errorf("%d of %d scenario(s) failed", failed, len(results))
	}
	return nil
}

func printResults(out io.Writer, results []scenario.Result) {
	for _, res := range results {
		status := "PASS"
		if !res.Passed() {
			status = "FAIL"
		}
		fmt.Fprintf(out, "%s  %s (%s)\n", status, res.Title, res.Duration.Round(time.Millisecond))
		if res.Err != nil {
			fmt.Fprintf(out, "      %v\n", res.Err)
		}
	}
	fmt.Fprintf(out, "\n%d passed, %d failed\n", len(results)-scenario.Failed(results), scenario.Failed(results))
}
