package fetcher

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/jmylchreest/csedork/internal/logger"
)

// chromeCandidates lists Chrome/Chromium binaries per platform, PATH names
// first.
var chromeCandidates = map[string][]string{
	"linux": {
		"google-chrome-stable",
		"google-chrome",
		"chromium",
		"chromium-browser",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	},
	"darwin": {
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
	},
	"windows": {
		"chrome",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	},
}

// ResolveChromePath returns the browser binary to launch. An explicit path
// must be executable. Otherwise FindChromePath is consulted, and "" means
// chromedp falls back to its own lookup.
func ResolveChromePath(explicit string) (string, error) {
	if explicit != "" {
		path, err := exec.LookPath(explicit)
		if err != nil {
			return "", fmt.Errorf("chrome binary %q: %w", explicit, err)
		}
		return path, nil
	}
	return FindChromePath(), nil
}

// FindChromePath searches for a Chrome/Chromium binary for the current
// platform. Returns empty string if none is found.
func FindChromePath() string {
	for _, name := range chromeCandidates[runtime.GOOS] {
		if path, err := exec.LookPath(name); err == nil {
			logger.Debug("found Chrome binary", "name", name, "path", path)
			return path
		}
	}
	logger.Warn("no Chrome binary found, relying on chromedp default lookup")
	return ""
}
