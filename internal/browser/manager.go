// internal/browser/manager.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/kpiprobe/internal/config"
)

const disposeTimeout = 5 * time.Second

// ErrManagerClosed is returned by NewSession after Shutdown.
var ErrManagerClosed = errors.New("browser manager is shut down")

// Manager owns one Chrome process. Every session it hands out runs in its own
// browser context so cookies and storage never leak between scenarios.
type Manager struct {
	cfg    config.Interface
	logger *zap.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context

	// browserCancel is released after chromedp.Cancel has closed the browser.
	browserCancel context.CancelFunc

	// contextCreationLock serializes browser context creation on the shared
	// browser connection.
	contextCreationLock sync.Mutex

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewManager launches Chrome as configured by cfg.
func NewManager(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		cfg:      cfg,
		logger:   logger.Named("browser_manager"),
		sessions: make(map[string]*Session),
	}

	m.allocCtx, m.allocCancel = chromedp.NewExecAllocator(Detach(ctx), DefaultAllocatorOptions(cfg.Browser())...)

	ctxOpts := []chromedp.ContextOption{chromedp.WithErrorf(m.logger.Sugar().Debugf)}
	if cfg.Browser().Debug {
		ctxOpts = append(ctxOpts, chromedp.WithLogf(m.logger.Sugar().Debugf))
	}
	m.browserCtx, m.browserCancel = chromedp.NewContext(m.allocCtx, ctxOpts...)

	launchCtx, cancel := CombineContext(m.browserCtx, ctx)
	defer cancel()
	if err := chromedp.Run(launchCtx); err != nil {
		m.browserCancel()
		m.allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	m.logger.Info("Browser launched.", zap.Bool("headless", cfg.Browser().Headless))
	return m, nil
}

// NewSession opens a blank tab in a fresh browser context, sized to the
// configured viewport.
func (m *Manager) NewSession(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	m.mu.Unlock()

	m.contextCreationLock.Lock()
	defer m.contextCreationLock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before creating browser context: %w", err)
	}

	controller := cdp.WithExecutor(m.browserCtx, chromedp.FromContext(m.browserCtx).Browser)

	browserContextID, err := target.CreateBrowserContext().Do(controller)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	targetID, err := target.CreateTarget("about:blank").
		WithBrowserContextID(browserContextID).
		Do(controller)
	if err != nil {
		m.disposeBrowserContext(browserContextID)
		return nil, fmt.Errorf("failed to create target: %w", err)
	}

	tabCtx, cancelTab := chromedp.NewContext(m.browserCtx, chromedp.WithTargetID(targetID))

	var s *Session
	s = newSession(tabCtx, cancelTab, m.cfg, m.logger, func(context.Context) error {
		m.forget(s.ID())
		return m.disposeBrowserContext(browserContextID)
	})

	vp := m.cfg.Browser().Viewport
	if err := s.SetViewport(ctx, vp.Width, vp.Height); err != nil {
		_ = s.Close(context.Background())
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	s.logger.Info("Browser session created.")
	return s, nil
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) disposeBrowserContext(id cdp.BrowserContextID) error {
	if m.browserCtx.Err() != nil {
		return nil
	}
	controller := cdp.WithExecutor(m.browserCtx, chromedp.FromContext(m.browserCtx).Browser)
	cleanupCtx, cancel := context.WithTimeout(controller, disposeTimeout)
	defer cancel()
	if err := target.DisposeBrowserContext(id).Do(cleanupCtx); err != nil {
		m.logger.Debug("Failed to dispose browser context.", zap.String("browserContextID", string(id)), zap.Error(err))
		return fmt.Errorf("failed to dispose browser context: %w", err)
	}
	return nil
}

// Shutdown closes every open session and stops Chrome.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	m.logger.Info("Shutting down browser manager.", zap.Int("open_sessions", len(open)))
	var errs []error
	for _, s := range open {
		if err := s.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := chromedp.Cancel(m.browserCtx); err != nil && !errors.Is(err, context.Canceled) {
		errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
	}
	m.browserCancel()
	m.allocCancel()
	return errors.Join(errs...)
}
