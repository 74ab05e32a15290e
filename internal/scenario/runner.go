package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/kpiprobe/internal/browser"
	"github.com/xkilldash9x/kpiprobe/internal/config"
	"github.com/xkilldash9x/kpiprobe/internal/observability"
	"github.com/xkilldash9x/kpiprobe/internal/pages"
	"github.com/xkilldash9x/kpiprobe/internal/softassert"
)

// OpenFunc opens a fresh, isolated browser tab.
type OpenFunc func(ctx context.Context) (browser.Tab, error)

// Result is the outcome of one scenario.
type Result struct {
	ID       string
	Name     string
	Title    string
	Attempts int
	Duration time.Duration
	Err      error
}

// Passed reports whether the scenario succeeded.
func (r Result) Passed() bool { return r.Err == nil }

// Runner executes scenarios one after another. Every attempt gets its own
// tab, ledger and page objects, bounded by the scenario timeout.
type Runner struct {
	cfg    config.Interface
	data   *Data
	creds  config.Credentials
	open   OpenFunc
	logger *zap.Logger
}

func NewRunner(cfg config.Interface, data *Data, creds config.Credentials, open OpenFunc, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = observability.GetLogger()
	}
	return &Runner{cfg: cfg, data: data, creds: creds, open: open, logger: logger}
}

// Title returns the display title of sc for the configured target.
func (r *Runner) Title(sc Scenario) string {
	return r.cfg.Target().TitlePrefix() + " " + sc.Title
}

// Run executes scenarios in order. A failing scenario does not stop the ones
// after it; cancellation of ctx does.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) []Result {
	results := make([]Result, 0, len(scenarios))
	for _, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Name: sc.Name, Title: r.Title(sc), Err: fmt.Errorf("not run: %w", err)})
			continue
		}
		results = append(results, r.runScenario(ctx, sc))
	}
	return results
}

func (r *Runner) runScenario(ctx context.Context, sc Scenario) Result {
	res := Result{ID: uuid.New().String(), Name: sc.Name, Title: r.Title(sc)}
	logger := observability.ScenarioLogger(r.logger, res.ID, res.Title)
	logger.Info("Scenario started.")

	start := time.Now()
	res.Attempts, res.Err = browser.Retry(ctx, r.cfg.Scenario().Retries, 0, func(ctx context.Context) error {
		err := r.attempt(ctx, sc, logger)
		if err != nil {
			logger.Warn("Scenario attempt failed.", zap.Error(err))
		}
		return err
	})
	res.Duration = time.Since(start)

	if res.Err != nil {
		logger.Error("Scenario failed.", zap.Int("attempts", res.Attempts), zap.Duration("duration", res.Duration), zap.Error(res.Err))
	} else {
		logger.Info("Scenario passed.", zap.Int("attempts", res.Attempts), zap.Duration("duration", res.Duration))
	}
	return res
}

func (r *Runner) attempt(ctx context.Context, sc Scenario, logger *zap.Logger) (err error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Scenario().Timeout)
	defer cancel()

	tab, err := r.open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer closeAndLog(tab, "session", logger)

	timing := pages.TimingFrom(r.cfg.Network())
	ledger := softassert.New(logger)
	env := &Env{
		Landing:     pages.NewLanding(tab, logger, timing),
		Navigation:  pages.NewNavigation(tab, logger, timing),
		Sensor:      pages.NewKPISensor(tab, logger, timing, ledger, r.cfg.Verify().Tolerance),
		Feature:     pages.NewKPIFeature(tab, logger, timing),
		Credentials: r.creds,
		Data:        r.data,
		Logger:      logger,
	}

	if err := env.Landing.OpenSite(ctx, r.cfg.Target().BaseURL()); err != nil {
		return err
	}
	if sc.LoginFirst {
		if err := env.Landing.LoginUser(ctx, r.creds.Username, r.creds.Password); err != nil {
			return err
		}
		if err := env.Navigation.VerifyUserIsLoggedIn(ctx); err != nil {
			return err
		}
	}

	if err := sc.Run(ctx, env); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
			return fmt.Errorf("scenario timed out after %v: %w", r.cfg.Scenario().Timeout, err)
		}
		return err
	}
	// Mismatches a scenario recorded but never asserted still fail it.
	return ledger.Finalize()
}

// Failed counts the failed results.
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if !res.Passed() {
			n++
		}
	}
	return n
}

type closer interface {
	Close(ctx context.Context) error
}

// closeAndLog closes c on a fresh context and logs a failure instead of
// returning it, for use in defers.
func closeAndLog(c closer, what string, logger *zap.Logger) {
	if err := c.Close(context.Background()); err != nil {
		logger.Warn("Failed to close "+what+".", zap.Error(err))
	}
}
