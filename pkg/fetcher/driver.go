package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmylchreest/csedork/internal/logger"
	"github.com/jmylchreest/csedork/pkg/query"
)

const (
	// MaxSettle caps the wait after a page load for scripts to render results.
	MaxSettle = 3 * time.Second

	// captureTimeout bounds the source capture after a navigation timeout.
	captureTimeout = 5 * time.Second
)

// SettleInterval returns the post-load wait for a navigation timeout:
// a quarter of the timeout, capped at MaxSettle.
func SettleInterval(timeout time.Duration) time.Duration {
	return min(MaxSettle, timeout/4)
}

// Driver loads one search result page per query through a Browser.
// It is not safe for concurrent use.
type Driver struct {
	browser  Browser
	template string
	timeout  time.Duration
	settle   time.Duration
	timeouts int

	closeOnce sync.Once
	closeErr  error
}

// NewDriver creates a Driver that owns b. template is a search URL
// containing query.Placeholder.
func NewDriver(b Browser, template string, timeout time.Duration) *Driver {
	return &Driver{
		browser:  b,
		template: template,
		timeout:  timeout,
		settle:   SettleInterval(timeout),
	}
}

// Fetch loads the result page for q and returns its rendered markup.
//
// A navigation timeout is not an error: the partially rendered page, or ""
// if nothing can be captured, is returned and Timeouts is incremented.
// Any other browser failure is returned wrapped in ErrSessionFault.
func (d *Driver) Fetch(ctx context.Context, q string) (string, error) {
	target := query.URL(d.template, q)
	logger.Debug("navigating", "query", q, "url", target, "timeout", d.timeout)

	navCtx, cancel := context.WithTimeout(ctx, d.timeout)
	err := d.browser.Navigate(navCtx, target)
	cancel()

	switch {
	case err == nil:
		if err := sleep(ctx, d.settle); err != nil {
			return "", err
		}
		html, err := d.browser.Source(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("%w: capture page source: %w", ErrSessionFault, err)
		}
		d.checkChallenge(q, html)
		return html, nil

	case ctx.Err() != nil:
		return "", fmt.Errorf("navigation interrupted: %w", ctx.Err())

	case errors.Is(err, ErrNavigationTimeout), errors.Is(err, context.DeadlineExceeded):
		d.timeouts++
		logger.Warn("page load timeout, continuing with partial page",
			"query", q,
			"timeout", d.timeout)
		return d.partialSource(ctx, q), nil

	default:
		return "", fmt.Errorf("%w: navigate: %w", ErrSessionFault, err)
	}
}

// partialSource captures whatever has rendered after a timeout.
func (d *Driver) partialSource(ctx context.Context, q string) string {
	capCtx, cancel := context.WithTimeout(ctx, captureTimeout)
	defer cancel()

	html, err := d.browser.Source(capCtx)
	if err != nil {
		logger.Warn("no page source after timeout", "query", q, "error", err)
		return ""
	}
	logger.Debug("captured partial page", "query", q, "html_size", len(html))
	return html
}

func (d *Driver) checkChallenge(q, html string) {
	if challenge := DetectChallenge(pageTitle(html), html); challenge != "" {
		logger.Warn("challenge page detected", "query", q, "type", challenge)
	}
}

// Timeouts returns how many fetches ended in a navigation timeout.
func (d *Driver) Timeouts() int {
	return d.timeouts
}

// Type returns the underlying browser type.
func (d *Driver) Type() string {
	return d.browser.Type()
}

// Close releases the browser. Calls after the first return the first
// result.
func (d *Driver) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.browser.Close()
		logger.Debug("browser session released", "type", d.browser.Type(), "error", d.closeErr)
	})
	return d.closeErr
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
