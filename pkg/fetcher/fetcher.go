// Package fetcher drives a browser session through search result pages.
//
// A Browser is the minimal page-automation surface the Driver needs. The
// CLI supplies a chromedp-backed implementation; tests supply fakes.
package fetcher

import (
	"context"
	"errors"
)

// Browser abstracts a single long-lived browser tab.
type Browser interface {
	// Navigate loads url and returns once the page has loaded. It must
	// return an error wrapping ErrNavigationTimeout when ctx's deadline
	// expires before the load completes.
	Navigate(ctx context.Context, url string) error

	// Source returns the current document markup without waiting for
	// further loading.
	Source(ctx context.Context) (string, error)

	// Close releases the browser and any processes it owns.
	Close() error

	// Type returns a string identifying the browser implementation.
	Type() string
}

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, fetcher.ErrSessionFault).
var (
	// ErrNavigationTimeout indicates the page did not finish loading in
	// time. The Driver recovers from it by using whatever has rendered.
	ErrNavigationTimeout = errors.New("navigation timeout")
	// ErrSessionFault indicates any other browser failure. It ends the run.
	ErrSessionFault = errors.New("browser session fault")
)
