package fetcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Headless || !cfg.Stealth {
		t.Errorf("expected headless stealth defaults, got %+v", cfg)
	}
	if cfg.UserAgent != "" {
		t.Errorf("expected empty user agent (random), got %q", cfg.UserAgent)
	}
}

func TestResolveChromePath_Explicit(t *testing.T) {
	self, err := os.Executable()
	if err != nil {
		t.Skipf("cannot locate test binary: %v", err)
	}

	got, err := ResolveChromePath(self)
	if err != nil {
		t.Fatalf("ResolveChromePath() error = %v", err)
	}
	if got != self {
		t.Errorf("ResolveChromePath() = %q, want %q", got, self)
	}
}

func TestResolveChromePath_ExplicitMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-chrome")
	if _, err := ResolveChromePath(missing); err == nil {
		t.Error("expected error for missing chrome binary")
	}
}

func TestStealthScript(t *testing.T) {
	for _, want := range []string{"navigator, 'webdriver'", "navigator, 'languages'", "window.chrome.runtime"} {
		if !strings.Contains(StealthScript, want) {
			t.Errorf("stealth script missing %q", want)
		}
	}
}

func TestAllocatorOptions(t *testing.T) {
	base := len(allocatorOptions(Config{}, "ua", ""))
	stealth := len(allocatorOptions(Config{Stealth: true}, "ua", ""))
	withPath := len(allocatorOptions(Config{}, "ua", "/usr/bin/chromium"))

	if stealth <= base {
		t.Errorf("stealth should add flags: base=%d stealth=%d", base, stealth)
	}
	if withPath != base+1 {
		t.Errorf("chrome path should add one option: base=%d with=%d", base, withPath)
	}
}
