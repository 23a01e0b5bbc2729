package fetcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/corpix/uarand"

	"github.com/jmylchreest/csedork/internal/logger"
	"github.com/jmylchreest/csedork/pkg/fetcher"
)

// ChromeSession is a single Chrome tab driven over the DevTools protocol.
// It implements fetcher.Browser.
type ChromeSession struct {
	config    Config
	userAgent string

	ctx         context.Context // tab context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	closeOnce   sync.Once
}

var _ fetcher.Browser = (*ChromeSession)(nil)

// NewChromeSession launches Chrome and opens the tab all navigations use.
// The browser process is started before returning so later per-page
// deadlines cannot tear it down.
func NewChromeSession(ctx context.Context, cfg Config) (*ChromeSession, error) {
	chromePath, err := ResolveChromePath(cfg.ChromePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fetcher.ErrSessionFault, err)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = uarand.GetRandom()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(),
		allocatorOptions(cfg, userAgent, chromePath)...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)

	s := &ChromeSession{
		config:      cfg,
		userAgent:   userAgent,
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}

	var actions []chromedp.Action
	if cfg.Stealth {
		actions = append(actions, InjectStealthScript())
	}

	// The first Run launches Chrome under the context it is given, so it
	// must be the tab context itself. Cancelling ctx during startup still
	// aborts the launch.
	stop := context.AfterFunc(ctx, cancelTab)
	err = chromedp.Run(tabCtx, actions...)
	stop()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: start browser: %w", fetcher.ErrSessionFault, err)
	}

	logger.Debug("browser session started",
		"headless", cfg.Headless,
		"stealth", cfg.Stealth,
		"chrome", chromePath,
		"user_agent", userAgent)

	return s, nil
}

// derive returns a context carrying the tab that also ends when ctx does.
func (s *ChromeSession) derive(ctx context.Context) (context.Context, context.CancelFunc) {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if deadline, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(s.ctx, deadline)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// Navigate loads url and waits for the load event. An expired deadline is
// reported as fetcher.ErrNavigationTimeout.
func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := s.derive(ctx)
	defer cancel()

	err := chromedp.Run(runCtx, chromedp.Navigate(url))
	if err == nil {
		return nil
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		s.saveScreenshot()
		return fmt.Errorf("%w: %s", fetcher.ErrNavigationTimeout, url)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("navigate %s: %w", url, err)
}

// Source returns document.documentElement.outerHTML as it stands.
func (s *ChromeSession) Source(ctx context.Context) (string, error) {
	runCtx, cancel := s.derive(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx,
		chromedp.Evaluate(`document.documentElement ? document.documentElement.outerHTML : ""`, &html),
	); err != nil {
		return "", fmt.Errorf("read page source: %w", err)
	}
	return html, nil
}

// saveScreenshot writes the stalled page to the screenshot directory, if
// one is configured.
func (s *ChromeSession) saveScreenshot() {
	if s.config.ScreenshotDir == "" {
		return
	}
	png := captureScreenshot(s.ctx)
	if png == nil {
		return
	}

	if err := os.MkdirAll(s.config.ScreenshotDir, 0o755); err != nil {
		logger.Debug("cannot create screenshot directory", "dir", s.config.ScreenshotDir, "error", err)
		return
	}
	path := filepath.Join(s.config.ScreenshotDir, fmt.Sprintf("csedork-timeout-%d.png", time.Now().UnixNano()))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		logger.Debug("cannot save screenshot", "path", path, "error", err)
		return
	}
	logger.Info("timeout screenshot saved", "path", path)
}

// UserAgent returns the user agent the browser presents.
func (s *ChromeSession) UserAgent() string {
	return s.userAgent
}

// Close shuts Chrome down. Safe to call more than once.
func (s *ChromeSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if cerr := chromedp.Cancel(s.ctx); cerr != nil && !errors.Is(cerr, context.Canceled) {
			err = cerr
		}
		s.cancelTab()
		s.cancelAlloc()
	})
	return err
}

// Type returns the browser type.
func (s *ChromeSession) Type() string {
	return "chrome"
}
