// internal/browser/context.go
package browser

import (
	"context"
	"time"
)

// CombineContext returns a context that carries the values of primary (the
// chromedp tab) and is canceled when either primary or operational is done.
func CombineContext(primary, operational context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)
	go func() {
		select {
		case <-operational.Done():
			cancel()
		case <-combined.Done():
		}
	}()
	return combined, cancel
}

// detachedContext keeps the values of its parent but never expires.
type detachedContext struct {
	context.Context
}

func (detachedContext) Deadline() (deadline time.Time, ok bool) { return }
func (detachedContext) Done() <-chan struct{}                   { return nil }
func (detachedContext) Err() error                              { return nil }

// Detach returns a context with the values of ctx that is not canceled with it.
// The browser process is started from a detached context so that it lives
// until Manager.Shutdown rather than until the command context ends.
func Detach(ctx context.Context) context.Context {
	return detachedContext{ctx}
}
