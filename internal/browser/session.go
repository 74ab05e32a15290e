// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/kpiprobe/internal/config"
)

const pollInterval = 100 * time.Millisecond

// Session drives one chromedp tab. It implements Driver and Tab.
type Session struct {
	id      string
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     config.Interface
	logger  *zap.Logger
	limiter *rate.Limiter

	// dispose releases resources owned by the session beyond its tab, such as
	// the isolated browser context of a scenario.
	dispose   func(ctx context.Context) error
	closeOnce sync.Once
	closeErr  error
}

var _ Tab = (*Session)(nil)

func newSession(ctx context.Context, cancel context.CancelFunc, cfg config.Interface, logger *zap.Logger, dispose func(context.Context) error) *Session {
	id := uuid.New().String()
	limit := rate.Inf
	if slowMo := cfg.Browser().SlowMo; slowMo > 0 {
		limit = rate.Every(slowMo)
	}
	return &Session{
		id:      id,
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		logger:  logger.With(zap.String("session_id", id)),
		limiter: rate.NewLimiter(limit, 1),
		dispose: dispose,
	}
}

// ID returns the unique session identifier.
func (s *Session) ID() string { return s.id }

// run executes actions on the tab, bounded by both the tab and ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// eval evaluates script and decodes its JSON result into out.
func (s *Session) eval(ctx context.Context, script string, out interface{}) error {
	var raw []byte
	err := s.run(ctx, chromedp.Evaluate(script, &raw, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithReturnByValue(true).WithAwaitPromise(true)
	}))
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode evaluation result: %w (payload: %s)", err, string(raw))
	}
	return nil
}

// evalLocator runs body with `nodes` bound to the elements matched by loc.
func (s *Session) evalLocator(ctx context.Context, loc Locator, body string, out interface{}) error {
	script, err := locatorScript(loc, body)
	if err != nil {
		return err
	}
	return s.eval(ctx, script, out)
}

// poll calls check until it reports done, returns an error, or ctx expires.
// Evaluation errors while the page is re-rendering are retried.
func (s *Session) poll(ctx context.Context, check func(context.Context) (bool, error)) error {
	var lastErr error
	for {
		done, err := check(ctx)
		if err == nil && done {
			return nil
		}
		if err != nil {
			lastErr = err
		}
		if sleepErr := Sleep(ctx, pollInterval); sleepErr != nil {
			if lastErr != nil {
				return fmt.Errorf("%w (last error: %v)", sleepErr, lastErr)
			}
			return sleepErr
		}
	}
}

// act paces, times and retries one page action.
func (s *Session) act(ctx context.Context, action string, loc Locator, fn func(context.Context) error) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	s.logger.Debug("Page action.", zap.String("action", action), zap.Stringer("locator", loc))

	timeout := s.cfg.Network().ActionTimeout
	retryCfg := s.cfg.Retry()
	attempts, err := Retry(ctx, retryCfg.Attempts, retryCfg.Delay, func(ctx context.Context) error {
		opCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return fn(opCtx)
	})
	if err != nil {
		s.logger.Warn("Page action failed.", zap.String("action", action), zap.Stringer("locator", loc), zap.Int("attempts", attempts), zap.Error(err))
		return &ActionTimeoutError{Action: action, Locator: loc.String(), Attempts: attempts, Err: err}
	}
	return nil
}

type point struct {
	Found   bool    `json:"found"`
	Visible bool    `json:"visible"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// interactable waits until loc has a visible match and returns its center.
func (s *Session) interactable(ctx context.Context, loc Locator) (point, error) {
	var pt point
	err := s.poll(ctx, func(ctx context.Context) (bool, error) {
		if err := s.evalLocator(ctx, loc, geometryJS, &pt); err != nil {
			return false, err
		}
		return pt.Visible, nil
	})
	if err != nil {
		if !pt.Found {
			return pt, fmt.Errorf("%w: %s: %v", ErrElementNotFound, loc, err)
		}
		return pt, fmt.Errorf("%w: %s: %v", ErrNoVisibleElement, loc, err)
	}
	return pt, nil
}

// attached waits until loc matches at least one element, then evaluates body.
func (s *Session) attached(ctx context.Context, loc Locator, body string, out interface{}) error {
	opCtx, cancel := context.WithTimeout(ctx, s.cfg.Network().ActionTimeout)
	defer cancel()

	var found struct {
		Found bool `json:"found"`
	}
	err := s.poll(opCtx, func(ctx context.Context) (bool, error) {
		if err := s.evalLocator(ctx, loc, `return {found: nodes.length > 0};`, &found); err != nil {
			return false, err
		}
		return found.Found, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrElementNotFound, loc, err)
	}
	return s.evalLocator(ctx, loc, body, out)
}

// Navigate loads url and waits for the network to go idle. A page that never
// reports idle within the navigation timeout is logged, not failed.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Info("Navigating session.", zap.String("url", url))

	navTimeout := s.cfg.Network().NavigationTimeout
	navCtx, navCancel := context.WithTimeout(ctx, navTimeout)
	defer navCancel()

	idle := make(chan struct{}, 1)
	listenCtx, stopListening := context.WithCancel(s.ctx)
	defer stopListening()
	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
			select {
			case idle <- struct{}{}:
			default:
			}
		}
	})

	if err := s.run(navCtx, page.SetLifecycleEventsEnabled(true), chromedp.Navigate(url)); err != nil {
		if errors.Is(navCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("navigation to %s timed out after %v: %w", url, navTimeout, navCtx.Err())
		}
		if ctx.Err() != nil {
			return fmt.Errorf("navigation canceled: %w", err)
		}
		return fmt.Errorf("navigation failed: %w", err)
	}

	select {
	case <-idle:
	case <-navCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("Network did not go idle after navigation (non-critical).", zap.String("url", url))
	}
	return nil
}

func (s *Session) Location(ctx context.Context) (string, error) {
	var u string
	if err := s.run(ctx, chromedp.Location(&u)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return u, nil
}

func (s *Session) Title(ctx context.Context) (string, error) {
	var t string
	if err := s.run(ctx, chromedp.Title(&t)); err != nil {
		return "", fmt.Errorf("failed to read title: %w", err)
	}
	return t, nil
}

func (s *Session) ClearCookies(ctx context.Context) error {
	if err := s.run(ctx, network.ClearBrowserCookies()); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}

// SetViewport resizes the emulated viewport of the tab.
func (s *Session) SetViewport(ctx context.Context, width, height int) error {
	return s.run(ctx, chromedp.EmulateViewport(int64(width), int64(height)))
}

// Click dispatches a real mouse click at the center of the first visible match.
func (s *Session) Click(ctx context.Context, loc Locator) error {
	return s.act(ctx, "click", loc, func(ctx context.Context) error {
		pt, err := s.interactable(ctx, loc)
		if err != nil {
			return err
		}
		return s.run(ctx, chromedp.MouseClickXY(pt.X, pt.Y))
	})
}

func (s *Session) Hover(ctx context.Context, loc Locator) error {
	return s.act(ctx, "hover", loc, func(ctx context.Context) error {
		pt, err := s.interactable(ctx, loc)
		if err != nil {
			return err
		}
		return s.run(ctx, chromedp.MouseEvent(input.MouseMoved, pt.X, pt.Y))
	})
}

// Fill replaces the value of an input. An empty text clears it.
func (s *Session) Fill(ctx context.Context, loc Locator, text string) error {
	return s.act(ctx, "fill", loc, func(ctx context.Context) error {
		if _, err := s.interactable(ctx, loc); err != nil {
			return err
		}
		var focused bool
		err := s.evalLocator(ctx, loc, `{
	const el = nodes.find(isVisible);
	if (!el) return false;
	el.focus();
	if (typeof el.select === 'function') el.select();
	return document.activeElement === el;
}`, &focused)
		if err != nil {
			return err
		}
		if !focused {
			return fmt.Errorf("element %s did not take focus", loc)
		}
		if err := s.run(ctx, chromedp.KeyEvent(kb.Backspace)); err != nil {
			return err
		}
		if text == "" {
			return nil
		}
		return s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			return input.InsertText(text).Do(ctx)
		}))
	})
}

// ClickForNewTab clicks loc and attaches to the tab opened by the click.
func (s *Session) ClickForNewTab(ctx context.Context, loc Locator) (Tab, error) {
	current := chromedp.FromContext(s.ctx).Target.TargetID
	opened := chromedp.WaitNewTarget(s.ctx, func(info *target.Info) bool {
		return info.Type == "page" && info.OpenerID == current
	})

	if err := s.Click(ctx, loc); err != nil {
		return nil, err
	}

	var id target.ID
	select {
	case id = <-opened:
	case <-time.After(s.cfg.Network().WaitTimeout):
		return nil, fmt.Errorf("no tab opened after clicking %s", loc)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	tabCtx, cancel := chromedp.NewContext(s.ctx, chromedp.WithTargetID(id))
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to attach to new tab: %w", err)
	}
	tab := newSession(tabCtx, cancel, s.cfg, s.logger.Named("tab"), nil)
	s.logger.Info("Attached to secondary tab.", zap.String("tab_session_id", tab.ID()))
	return tab, nil
}

func (s *Session) Text(ctx context.Context, loc Locator) (string, error) {
	var text string
	if err := s.attached(ctx, loc, `return nodes[0].innerText ?? nodes[0].textContent ?? '';`, &text); err != nil {
		return "", err
	}
	return text, nil
}

func (s *Session) Texts(ctx context.Context, loc Locator) ([]string, error) {
	var texts []string
	if err := s.evalLocator(ctx, loc, `return nodes.map(el => el.innerText ?? el.textContent ?? '');`, &texts); err != nil {
		return nil, err
	}
	return texts, nil
}

func (s *Session) OuterHTML(ctx context.Context, loc Locator) (string, error) {
	var html string
	if err := s.attached(ctx, loc, `return nodes[0].outerHTML;`, &html); err != nil {
		return "", err
	}
	return html, nil
}

func (s *Session) Attribute(ctx context.Context, loc Locator, name string) (string, bool, error) {
	var attr struct {
		Has   bool   `json:"has"`
		Value string `json:"value"`
	}
	body := fmt.Sprintf(`{
	const v = nodes[0].getAttribute(%s);
	return {has: v !== null, value: v ?? ''};
}`, jsString(name))
	if err := s.attached(ctx, loc, body, &attr); err != nil {
		return "", false, err
	}
	return attr.Value, attr.Has, nil
}

func (s *Session) ComputedStyle(ctx context.Context, loc Locator, property string) (string, error) {
	var value string
	body := fmt.Sprintf(`return window.getComputedStyle(nodes[0]).getPropertyValue(%s);`, jsString(property))
	if err := s.attached(ctx, loc, body, &value); err != nil {
		return "", err
	}
	return value, nil
}

func (s *Session) Count(ctx context.Context, loc Locator) (int, error) {
	var n int
	if err := s.evalLocator(ctx, loc, `return nodes.length;`, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Session) Visible(ctx context.Context, loc Locator) (bool, error) {
	var visible bool
	if err := s.evalLocator(ctx, loc, `return nodes.length > 0 && isVisible(nodes[0]);`, &visible); err != nil {
		return false, err
	}
	return visible, nil
}

func (s *Session) WaitVisible(ctx context.Context, loc Locator) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.Network().WaitTimeout)
	defer cancel()
	err := s.poll(waitCtx, func(ctx context.Context) (bool, error) {
		var visible bool
		err := s.evalLocator(ctx, loc, `return nodes.some(isVisible);`, &visible)
		return visible, err
	})
	if err != nil {
		return fmt.Errorf("waiting for %s to be visible: %w: %v", loc, ErrNoVisibleElement, err)
	}
	return nil
}

func (s *Session) WaitHidden(ctx context.Context, loc Locator) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.Network().WaitTimeout)
	defer cancel()
	err := s.poll(waitCtx, func(ctx context.Context) (bool, error) {
		var hidden bool
		err := s.evalLocator(ctx, loc, `return !nodes.some(isVisible);`, &hidden)
		return hidden, err
	})
	if err != nil {
		return fmt.Errorf("waiting for %s to be hidden: %w", loc, err)
	}
	return nil
}

func (s *Session) WaitIdle(ctx context.Context) error {
	idleCtx, cancel := context.WithTimeout(ctx, s.cfg.Network().IdleTimeout)
	defer cancel()
	err := s.poll(idleCtx, func(ctx context.Context) (bool, error) {
		var idle bool
		err := s.eval(ctx, idleJS, &idle)
		return idle, err
	})
	if err != nil {
		return fmt.Errorf("page did not become idle: %w", err)
	}
	return Sleep(ctx, s.cfg.Network().SettleDelay)
}

// Close closes the tab and releases anything else the session owns. It is
// safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing session.")
		if s.cancel != nil {
			s.cancel()
		}
		if s.dispose != nil {
			s.closeErr = s.dispose(ctx)
		}
	})
	return s.closeErr
}
