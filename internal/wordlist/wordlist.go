// Package wordlist loads dork word lists from disk or over HTTP.
package wordlist

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/corpix/uarand"
	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/csedork/internal/logger"
)

// ErrInput indicates the word list could not be read.
var ErrInput = errors.New("word list unavailable")

// DefaultTimeout bounds a remote word list download.
const DefaultTimeout = 30 * time.Second

// Options controls remote loading.
type Options struct {
	UserAgent string        // Empty picks a random desktop user agent
	Timeout   time.Duration // Zero uses DefaultTimeout
}

// Parse reads one dork per line. Lines are trimmed; blank lines and lines
// starting with '#' are dropped. Invalid UTF-8 bytes are discarded.
func Parse(r io.Reader) ([]string, error) {
	var dorks []string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(strings.ToValidUTF8(sc.Text(), ""))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		dorks = append(dorks, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return dorks, nil
}

// IsRemote reports whether source names an http or https URL.
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads the word list at source, a file path or an http(s) URL.
// Failures are wrapped in ErrInput.
func Load(ctx context.Context, source string, opts Options) ([]string, error) {
	var (
		data []byte
		err  error
	)
	if IsRemote(source) {
		data, err = download(ctx, source, opts)
	} else {
		data, err = os.ReadFile(source) //#nosec G304 -- CLI tool reads user-specified word list
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInput, source, err)
	}

	dorks, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInput, source, err)
	}

	logger.Debug("word list loaded", "source", source, "dorks", len(dorks), "bytes", len(data))
	return dorks, nil
}

// download fetches url with colly and returns the body of a 2xx response.
func download(ctx context.Context, url string, opts Options) ([]byte, error) {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = uarand.GetRandom()
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(timeout)

	var (
		body     []byte
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		logger.Debug("word list response received",
			"status", r.StatusCode,
			"content_type", r.Headers.Get("Content-Type"),
			"body_size", len(r.Body))
	})

	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = fmt.Errorf("status %d: %w", status, err)
	})

	if err := c.Visit(url); err != nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, err
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	return body, nil
}
