// Package batch runs a word list of dorks through the fetch, extract and
// report pipeline, one query at a time.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/jmylchreest/csedork/internal/logger"
	"github.com/jmylchreest/csedork/pkg/extractor"
	"github.com/jmylchreest/csedork/pkg/query"
)

// Fetcher returns the rendered result page for a query.
type Fetcher interface {
	Fetch(ctx context.Context, q string) (string, error)
	Close() error
}

// Sink receives one block per processed query.
type Sink interface {
	Append(q string, records []extractor.Record) error
}

// timeoutCounter is implemented by fetchers that recover from navigation
// timeouts.
type timeoutCounter interface {
	Timeouts() int
}

// Result summarises a run. It is valid even when Run returns an error.
type Result struct {
	Queries  int           // dorks fully processed and written
	Records  int           // records written across all blocks
	Timeouts int           // fetches that fell back to a partial page
	Elapsed  time.Duration // wall time including pacing
}

// Runner executes a batch.
type Runner struct {
	fetcher   Fetcher
	sink      Sink
	extractor *extractor.Extractor
	site      string
	delay     time.Duration
	progress  io.Writer
	random    func() float64
	sleep     func(ctx context.Context, d time.Duration) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithSite scopes every query without its own site: operator to site.
func WithSite(site string) Option {
	return func(r *Runner) {
		r.site = site
	}
}

// WithDelay sets the base delay between queries.
func WithDelay(d time.Duration) Option {
	return func(r *Runner) {
		r.delay = d
	}
}

// WithExtractor replaces the default result extractor.
func WithExtractor(e *extractor.Extractor) Option {
	return func(r *Runner) {
		r.extractor = e
	}
}

// WithProgress renders a progress bar to w.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) {
		r.progress = w
	}
}

// WithRand sets the source of uniform [0, 1) samples used for jitter.
func WithRand(f func() float64) Option {
	return func(r *Runner) {
		r.random = f
	}
}

// WithSleep replaces the pacing sleep.
func WithSleep(f func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Runner) {
		r.sleep = f
	}
}

// New creates a Runner that owns f and closes it when Run returns.
func New(f Fetcher, sink Sink, opts ...Option) *Runner {
	r := &Runner{
		fetcher:   f,
		sink:      sink,
		extractor: extractor.New(),
		random:    rand.Float64,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes dorks in order. Each dork is built into a query, fetched,
// extracted and written before the next one starts, with a jittered pause
// in between. A fetch or write failure stops the run; blocks already
// written stay in the report. The fetcher is closed on every return path.
func (r *Runner) Run(ctx context.Context, dorks []string) (res Result, err error) {
	start := time.Now()
	defer func() {
		if cerr := r.fetcher.Close(); cerr != nil {
			logger.Warn("failed to release browser session", "error", cerr)
			if err == nil {
				err = fmt.Errorf("release browser session: %w", cerr)
			}
		}
		if tc, ok := r.fetcher.(timeoutCounter); ok {
			res.Timeouts = tc.Timeouts()
		}
		res.Elapsed = time.Since(start)
	}()

	bar := r.newBar(len(dorks))

	for i, dork := range dorks {
		q := query.Build(dork, r.site)
		log := logger.With("query", q, "n", i+1, "of", len(dorks))

		html, err := r.fetcher.Fetch(ctx, q)
		if err != nil {
			return res, fmt.Errorf("fetch %q: %w", q, err)
		}

		records := r.extractor.Extract(html)
		if err := r.sink.Append(q, records); err != nil {
			return res, fmt.Errorf("write results for %q: %w", q, err)
		}

		res.Queries++
		res.Records += len(records)
		log.Debug("query processed", "records", len(records))

		if bar != nil {
			bar.Add(1)
		}

		if i == len(dorks)-1 {
			break
		}

		wait := PacingDelay(r.delay, jitter(r.random()))
		log.Debug("pacing before next query", "wait", wait)
		if err := r.sleep(ctx, wait); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return res, fmt.Errorf("interrupted after %d queries: %w", res.Queries, err)
			}
			return res, err
		}
	}

	if bar != nil {
		bar.Finish()
	}
	return res, nil
}

func (r *Runner) newBar(total int) *progressbar.ProgressBar {
	if r.progress == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.progress),
		progressbar.OptionSetDescription("dorks"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
}
