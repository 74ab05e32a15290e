package pages

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/kpiprobe/internal/browser"
)

// LandingTitle is the document title of the login page.
const LandingTitle = "Ottoviz"

var (
	landingLogo   = browser.Locate(".login-logo")
	emailInput    = browser.Locate("#outlined-basic")
	passwordInput = browser.Locate("#outlined-adornment-password")
	loginButton   = browser.Locate(`button[type="submit"]`)

	formControls         = browser.Locate(".MuiStack-root").Find(".MuiFormControl-root")
	emailErrorMessage    = formControls.Nth(1).Find("p")
	passwordErrorMessage = formControls.Nth(2).Find("p")
)

// Landing is the login page.
type Landing struct {
	base
}

func NewLanding(drv browser.Driver, logger *zap.Logger, timing Timing) *Landing {
	return &Landing{base: newBase(drv, logger, "landing", timing)}
}

func (p *Landing) VerifyOpen(ctx context.Context) error {
	p.step("Verifying that the landing page is open.")
	if err := p.waitVisible(ctx, landingLogo); err != nil {
		return err
	}
	return p.verifyTitle(ctx, LandingTitle)
}

func (p *Landing) EnterEmail(ctx context.Context, email string) error {
	p.step("Entering email.", zap.String("email", email))
	return p.enter(ctx, emailInput, email)
}

func (p *Landing) EnterPassword(ctx context.Context, password string) error {
	p.step("Entering password.", zap.Bool("empty", password == ""))
	return p.enter(ctx, passwordInput, password)
}

func (p *Landing) enter(ctx context.Context, input browser.Locator, text string) error {
	if err := p.waitVisible(ctx, input); err != nil {
		return err
	}
	if err := p.clearInput(ctx, input); err != nil {
		return err
	}
	return p.fill(ctx, input, text)
}

func (p *Landing) ClickLogin(ctx context.Context) error {
	p.step("Clicking login button.")
	if err := p.waitVisible(ctx, loginButton); err != nil {
		return err
	}
	return p.click(ctx, loginButton)
}

// VerifyEmailError checks the message under the email field and that it is red.
func (p *Landing) VerifyEmailError(ctx context.Context, message string) error {
	p.step("Verifying email error message.", zap.String("message", message))
	return p.verifyError(ctx, emailErrorMessage, message)
}

// VerifyPasswordError checks the message under the password field and that it is red.
func (p *Landing) VerifyPasswordError(ctx context.Context, message string) error {
	p.step("Verifying password error message.", zap.String("message", message))
	return p.verifyError(ctx, passwordErrorMessage, message)
}

func (p *Landing) verifyError(ctx context.Context, loc browser.Locator, message string) error {
	if err := p.waitVisible(ctx, loc); err != nil {
		return err
	}
	if err := p.containsText(ctx, loc, message); err != nil {
		return err
	}
	return p.verifyTextColor(ctx, loc, "red")
}

// LoginUser fills both credentials and submits the form.
func (p *Landing) LoginUser(ctx context.Context, username, password string) error {
	p.step("Logging in.", zap.String("username", username))
	if err := p.EnterEmail(ctx, username); err != nil {
		return err
	}
	if err := p.EnterPassword(ctx, password); err != nil {
		return err
	}
	return p.ClickLogin(ctx)
}
