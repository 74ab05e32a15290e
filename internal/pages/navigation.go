package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/kpiprobe/internal/browser"
)

// IngestionReportPath is where a successful login lands.
const IngestionReportPath = "/reporting/ingestion-report"

var (
	headerLogo        = browser.Locate(`div[data-testid="returnToLandingPage"]`)
	programDropdown   = browser.Locate(`div[data-testid="program-picker-menu-select"]`)
	programItem       = browser.Locate(".MuiMenuItem-root")
	kpiSensorButton   = browser.Locate("button").HasText("KPI Sensor")
	kpiFeatureButton  = browser.Locate("button").HasText("KPI Feature")
	userAccountButton = browser.Locate("button").HasText("User account")
	logoutButton      = browser.Locate(`div[data-testid="logout"]`)
)

// ErrProgramNotFound is returned when the program picker has no matching entry.
var ErrProgramNotFound = errors.New("program not found")

// Navigation is the header and side bar shown once logged in.
type Navigation struct {
	base
}

func NewNavigation(drv browser.Driver, logger *zap.Logger, timing Timing) *Navigation {
	return &Navigation{base: newBase(drv, logger, "navigation", timing)}
}

func (p *Navigation) VerifyUserIsLoggedIn(ctx context.Context) error {
	p.step("Verifying that the user is logged in.")
	if err := p.waitVisible(ctx, headerLogo); err != nil {
		return err
	}
	return p.urlContains(ctx, IngestionReportPath)
}

func (p *Navigation) ClickProgramDropdown(ctx context.Context) error {
	p.step("Clicking program dropdown.")
	if err := p.waitVisible(ctx, programDropdown); err != nil {
		return err
	}
	return p.click(ctx, programDropdown)
}

// ChooseProgram clicks the first visible program entry whose text contains name.
func (p *Navigation) ChooseProgram(ctx context.Context, name string) error {
	p.step("Choosing program.", zap.String("program", name))
	if err := p.waitVisible(ctx, programDropdown); err != nil {
		return err
	}
	item, err := p.firstVisible(ctx, programItem.HasText(name))
	if errors.Is(err, browser.ErrNoVisibleElement) {
		return fmt.Errorf("%w: no program %q found or maybe you should check spelling", ErrProgramNotFound, name)
	}
	if err != nil {
		return err
	}
	return p.click(ctx, item)
}

// VerifyProgramIsChosen checks that the URL carries the last word of the
// program name, e.g. "VT1" for "Camera System VT1".
func (p *Navigation) VerifyProgramIsChosen(ctx context.Context, name string) error {
	p.step("Verifying program is chosen.", zap.String("program", name))
	if err := p.waitVisible(ctx, headerLogo); err != nil {
		return err
	}
	words := strings.Fields(name)
	if len(words) == 0 {
		return fmt.Errorf("empty program name")
	}
	return p.urlContains(ctx, words[len(words)-1])
}

func (p *Navigation) ClickKPISensor(ctx context.Context) error {
	p.step("Clicking KPI Sensor.")
	return p.clickVisible(ctx, kpiSensorButton)
}

func (p *Navigation) ClickKPIFeature(ctx context.Context) error {
	p.step("Clicking KPI Feature.")
	return p.clickVisible(ctx, kpiFeatureButton)
}

// ChooseOption opens a side bar category and, when subOption is set, one of
// its entries.
func (p *Navigation) ChooseOption(ctx context.Context, option, subOption string) error {
	p.step("Clicking option.", zap.String("option", option), zap.String("sub_option", subOption))
	if err := p.clickVisible(ctx, browser.Locate("button").HasText(option)); err != nil {
		return err
	}
	if subOption == "" {
		return nil
	}
	return p.clickVisible(ctx, browser.Locate("button").HasText(subOption))
}

func (p *Navigation) ClickUserAccount(ctx context.Context) error {
	p.step("Clicking user account button.")
	return p.clickVisible(ctx, userAccountButton)
}

func (p *Navigation) ClickLogout(ctx context.Context) error {
	p.step("Clicking logout button.")
	return p.clickVisible(ctx, logoutButton)
}

func (p *Navigation) clickVisible(ctx context.Context, loc browser.Locator) error {
	if err := p.waitVisible(ctx, loc); err != nil {
		return err
	}
	return p.click(ctx, loc)
}
