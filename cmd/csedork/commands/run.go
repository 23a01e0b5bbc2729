package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	clifetcher "github.com/jmylchreest/csedork/cmd/csedork/fetcher"
	"github.com/jmylchreest/csedork/internal/batch"
	"github.com/jmylchreest/csedork/internal/config"
	"github.com/jmylchreest/csedork/internal/logger"
	"github.com/jmylchreest/csedork/internal/wordlist"
	"github.com/jmylchreest/csedork/pkg/extractor"
	"github.com/jmylchreest/csedork/pkg/fetcher"
	"github.com/jmylchreest/csedork/pkg/query"
	"github.com/jmylchreest/csedork/pkg/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a word list of dorks and append results to a report",
	Long: `Run loads the word list, then for each dork builds a site-scoped
query, opens the search page in Chrome, extracts the results and appends
a block to the report before moving on. Queries run one at a time with a
jittered pause between them.

A page that does not finish loading within --timeout is not an error:
whatever rendered is parsed and the run continues. Any other browser
failure stops the run; blocks already written stay in the report.

Examples:
  csedork run -w dorks.txt -s example.com
  csedork run -w dorks.txt -s example.com --selectors selectors.yaml`,
	Args: cobra.NoArgs,
	RunE: runDorks,
}

// flagKeys maps run flags to their viper keys.
var flagKeys = map[string]string{
	"wordlist":       "wordlist",
	"site":           "site",
	"cx":             "cx",
	"endpoint":       "endpoint",
	"output":         "output",
	"delay":          "delay",
	"timeout":        "timeout",
	"headless":       "headless",
	"overwrite":      "overwrite",
	"stealth":        "stealth",
	"user-agent":     "user_agent",
	"chrome-path":    "chrome_path",
	"selectors":      "selectors",
	"screenshot-dir": "screenshot_dir",
	"no-progress":    "no_progress",
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()

	// Inputs
	flags.StringP("wordlist", "w", "", "word list path or http(s) URL, one dork per line (required)")
	flags.StringP("site", "s", "", "domain every dork is scoped to unless it has its own site: (required)")

	// Search engine
	flags.String("cx", query.DefaultCX, "custom search engine ID")
	flags.String("endpoint", query.DefaultEndpoint, "search page base URL")

	// Output
	flags.StringP("output", "o", config.DefaultOutput, "report file")
	flags.Bool("overwrite", false, "truncate the report instead of appending")

	// Pacing and browser
	flags.Float64("delay", config.DefaultDelay, "base delay between queries in seconds (jittered by ±20%, min 1s)")
	flags.Float64("timeout", config.DefaultTimeout, "page load timeout in seconds")
	flags.Bool("headless", false, "run Chrome without a window")
	flags.Bool("stealth", true, "mask common automation fingerprints")
	flags.String("user-agent", "", "browser user agent (default: random desktop agent)")
	flags.String("chrome-path", "", "Chrome/Chromium binary (default: search PATH)")
	flags.String("screenshot-dir", "", "save a screenshot of pages that time out to this directory")

	// Extraction
	flags.String("selectors", "", "YAML file overriding result selectors")

	flags.Bool("no-progress", false, "hide the progress bar")

	// Bind to viper
	for name, key := range flagKeys {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

func runDorks(cmd *cobra.Command, _ []string) error {
	// Initialize logger based on flags
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var progress io.Writer
	if !cfg.NoProgress && logger.Enabled(slog.LevelInfo) {
		progress = cmd.ErrOrStderr()
	}

	res, total, err := execute(ctx, cfg, progress)
	logInfo("%s", summary(res, total, cfg.Output))
	return err
}

// newBrowser starts the browser session. Replaced in tests.
var newBrowser = func(ctx context.Context, cfg clifetcher.Config) (fetcher.Browser, error) {
	return clifetcher.NewChromeSession(ctx, cfg)
}

// execute performs a run and returns its result and the number of dorks
// loaded. The result is meaningful even when err is non-nil.
func execute(ctx context.Context, cfg config.Config, progress io.Writer) (batch.Result, int, error) {
	ext := extractor.New()
	if cfg.Selectors != "" {
		sel, err := extractor.LoadSelectors(cfg.Selectors)
		if err != nil {
			return batch.Result{}, 0, err
		}
		ext = extractor.New(extractor.WithSelectors(sel))
	}

	existed, err := report.Prepare(cfg.Output, cfg.Overwrite)
	if err != nil {
		return batch.Result{}, 0, err
	}
	if existed && !cfg.Overwrite {
		logger.Info("report exists, appending (use --overwrite to replace)", "path", cfg.Output)
	}

	dorks, err := wordlist.Load(ctx, cfg.Wordlist, wordlist.Options{UserAgent: cfg.UserAgent})
	if err != nil {
		return batch.Result{}, 0, err
	}
	logger.Info("word list loaded", "dorks", len(dorks), "source", cfg.Wordlist)
	if len(dorks) == 0 {
		return batch.Result{}, 0, nil
	}

	browser, err := newBrowser(ctx, clifetcher.Config{
		Headless:      cfg.Headless,
		Stealth:       cfg.Stealth,
		UserAgent:     cfg.UserAgent,
		ChromePath:    cfg.ChromePath,
		ScreenshotDir: cfg.ScreenshotDir,
	})
	if err != nil {
		return batch.Result{}, len(dorks), err
	}
	driver := fetcher.NewDriver(browser, cfg.SearchTemplate(), cfg.TimeoutDuration())

	opts := []batch.Option{
		batch.WithSite(cfg.Site),
		batch.WithDelay(cfg.DelayDuration()),
		batch.WithExtractor(ext),
	}
	if progress != nil {
		opts = append(opts, batch.WithProgress(progress))
	}

	res, err := batch.New(driver, report.NewWriter(cfg.Output), opts...).Run(ctx, dorks)
	if err != nil {
		logger.Error("run stopped", "error", err, "processed", res.Queries, "of", len(dorks))
	}
	return res, len(dorks), err
}

// summary renders the end-of-run line.
func summary(res batch.Result, total int, output string) string {
	line := fmt.Sprintf("Done: %s results from %d/%d queries written to %s in %s",
		humanize.Comma(int64(res.Records)),
		res.Queries,
		total,
		output,
		res.Elapsed.Round(time.Second))
	if res.Timeouts > 0 {
		line += fmt.Sprintf(" (%d page load %s)", res.Timeouts, plural(res.Timeouts, "timeout", "timeouts"))
	}
	return line
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
