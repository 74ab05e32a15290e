package scenario

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/kpiprobe/internal/config"
	"github.com/xkilldash9x/kpiprobe/internal/pages"
)

// Env is what a scenario runs against: the page objects of one fresh session.
type Env struct {
	Landing     *pages.Landing
	Navigation  *pages.Navigation
	Sensor      *pages.KPISensor
	Feature     *pages.KPIFeature
	Credentials config.Credentials
	Data        *Data
	Logger      *zap.Logger
}

// Scenario is one end-to-end check.
type Scenario struct {
	// Name is the stable identifier used on the command line.
	Name  string
	Title string
	// LoginFirst logs in and verifies the landing report before Run.
	LoginFirst bool
	Run        func(ctx context.Context, env *Env) error
}

// Registry returns every scenario, in run order.
func Registry(data *Data) []Scenario {
	sensor := data.SensorTotals
	feature := data.FeatureEvents
	return []Scenario{
		{
			Name:  "login-logout",
			Title: "@smoke Verify that user can login and logout",
			Run:   loginLogout,
		},
		{
			Name:  "login-without-email",
			Title: "@smoke Verify that user cant login without email",
			Run:   loginWithoutEmail,
		},
		{
			Name:  "login-without-password",
			Title: "@smoke Verify that user cant login without password",
			Run:   loginWithoutPassword,
		},
		{
			Name:       "sensor-column-totals",
			Title:      fmt.Sprintf("@smoke Test 1 / Login > %s > KPI Sensor > %s > %s", sensor.Program, sensor.Category, sensor.Option),
			LoginFirst: true,
			Run:        sensorColumnTotals,
		},
		{
			Name:       "feature-dtid-events",
			Title:      fmt.Sprintf("@smoke Test 2 / Login > %s > KPI Feature > %s > %s", feature.Program, feature.Category, feature.Option),
			LoginFirst: true,
			Run:        featureDTIDEvents,
		},
		{
			Name:       "details-timeline-events",
			Title:      fmt.Sprintf("Login > %s > KPI Feature > %s > %s > Details timeline %s", feature.Program, feature.Category, feature.Option, feature.EventName),
			LoginFirst: true,
			Run:        detailsTimelineEvents,
		},
	}
}

// Select picks scenarios by name, keeping registry order. No names selects all.
func Select(all []Scenario, names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return all, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out []Scenario
	for _, sc := range all {
		if wanted[sc.Name] {
			out = append(out, sc)
			delete(wanted, sc.Name)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for n := range wanted {
			unknown = append(unknown, n)
		}
		sort.Strings(unknown)
		known := make([]string, 0, len(all))
		for _, sc := range all {
			known = append(known, sc.Name)
		}
		return nil, fmt.Errorf("unknown scenario(s) %s. Available: %s", strings.Join(unknown, ", "), strings.Join(known, ", "))
	}
	return out, nil
}

func loginLogout(ctx context.Context, env *Env) error {
	return runSteps(ctx, []func(context.Context) error{
		env.Landing.VerifyOpen,
		func(ctx context.Context) error { return env.Landing.EnterEmail(ctx, env.Credentials.Username) },
		func(ctx context.Context) error { return env.Landing.EnterPassword(ctx, env.Credentials.Password) },
		env.Landing.ClickLogin,
		env.Navigation.VerifyUserIsLoggedIn,
		env.Navigation.ClickUserAccount,
		env.Navigation.ClickLogout,
		env.Landing.VerifyOpen,
	})
}

func loginWithoutEmail(ctx context.Context, env *Env) error {
	return runSteps(ctx, []func(context.Context) error{
		env.Landing.VerifyOpen,
		func(ctx context.Context) error { return env.Landing.EnterEmail(ctx, "") },
		func(ctx context.Context) error { return env.Landing.EnterPassword(ctx, env.Credentials.Password) },
		env.Landing.ClickLogin,
		func(ctx context.Context) error { return env.Landing.VerifyEmailError(ctx, env.Data.Login.EmailRequired) },
	})
}

func loginWithoutPassword(ctx context.Context, env *Env) error {
	return runSteps(ctx, []func(context.Context) error{
		env.Landing.VerifyOpen,
		func(ctx context.Context) error { return env.Landing.EnterEmail(ctx, env.Credentials.Username) },
		func(ctx context.Context) error { return env.Landing.EnterPassword(ctx, "") },
		env.Landing.ClickLogin,
		func(ctx context.Context) error { return env.Landing.VerifyPasswordError(ctx, env.Data.Login.PasswordRequired) },
	})
}

// openReport picks the program of r and opens its report from the side bar
// entry menu (KPI Sensor or KPI Feature).
func openReport(ctx context.Context, env *Env, r Report, menu func(context.Context) error) error {
	return runSteps(ctx, []func(context.Context) error{
		env.Navigation.ClickProgramDropdown,
		func(ctx context.Context) error { return env.Navigation.ChooseProgram(ctx, r.Program) },
		func(ctx context.Context) error { return env.Navigation.VerifyProgramIsChosen(ctx, r.Program) },
		menu,
		func(ctx context.Context) error { return env.Navigation.ChooseOption(ctx, r.Category, r.Option) },
	})
}

func sensorColumnTotals(ctx context.Context, env *Env) error {
	d := env.Data.SensorTotals
	if err := openReport(ctx, env, d.Report, env.Navigation.ClickKPISensor); err != nil {
		return err
	}
	if err := env.Sensor.VerifyOpened(ctx, d.Title); err != nil {
		return err
	}
	for _, c := range d.Columns {
		for _, opt := range c.Options {
			if _, err := env.Sensor.VerifyTotalSumOfColumn(ctx, c.Column, opt); err != nil {
				return err
			}
		}
	}
	return env.Sensor.FinalAssert()
}

// openSortedFeature opens the feature report and sorts it as configured.
func openSortedFeature(ctx context.Context, env *Env) error {
	d := env.Data.FeatureEvents
	if err := openReport(ctx, env, d.Report, env.Navigation.ClickKPIFeature); err != nil {
		return err
	}
	if err := env.Feature.VerifyOpened(ctx, d.Title); err != nil {
		return err
	}
	if err := env.Feature.SortTableValuesBy(ctx, d.SortColumn, d.SortOption); err != nil {
		return err
	}
	return env.Feature.VerifyTableIsSorted(ctx, d.SortColumn, d.SortOption)
}

func featureDTIDEvents(ctx context.Context, env *Env) error {
	d := env.Data.FeatureEvents
	if err := openSortedFeature(ctx, env); err != nil {
		return err
	}
	total, err := env.Feature.CollectEventsFromFirstDTIDs(ctx, d.Amount)
	if err != nil {
		return err
	}
	env.Logger.Info("Collected events from first DTIDs.",
		zap.Int("amount", d.Amount),
		zap.String("sorted_by", d.SortOption),
		zap.Int("events", total),
	)
	return nil
}

func detailsTimelineEvents(ctx context.Context, env *Env) error {
	d := env.Data.FeatureEvents
	if err := openSortedFeature(ctx, env); err != nil {
		return err
	}
	details, err := env.Feature.OpenDetails(ctx)
	if err != nil {
		return err
	}
	defer closeAndLog(details, "details tab", env.Logger)

	if err := details.VerifyOpened(ctx, d.Title); err != nil {
		return err
	}
	count, err := details.CountEventsFromTimeline(ctx, d.EventName)
	if err != nil {
		return err
	}
	env.Logger.Info("Counted timeline events.", zap.String("event", d.EventName), zap.Int("count", count))
	return nil
}

func runSteps(ctx context.Context, steps []func(context.Context) error) error {
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}
