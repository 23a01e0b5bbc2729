// Package fetcher provides the chromedp browser session used by the CLI,
// with stealth fingerprint masking and Chrome binary discovery.
package fetcher

// Config holds configuration for the browser session.
type Config struct {
	Headless      bool
	Stealth       bool   // Mask common headless-browser tells
	UserAgent     string // Empty picks a random desktop user agent
	ChromePath    string // Empty searches common install locations
	ScreenshotDir string // Save a PNG of the page on navigation timeout
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Headless: true,
		Stealth:  true,
	}
}
