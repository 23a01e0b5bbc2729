// Package report appends per-query result blocks to a plain text report.
//
// Every Append opens, writes, flushes and closes the file, so a crash
// mid-run loses at most the block being written.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/jmylchreest/csedork/pkg/extractor"
)

// NoResults marks a query whose page yielded no records.
const NoResults = "[no results]"

const width = 80

var (
	headerRule = strings.Repeat("=", width)
	queryRule  = strings.Repeat("-", width)
)

// Prepare applies the start-of-run policy to path. With overwrite the file
// is truncated; otherwise an existing report is left for appending and a
// missing one is created empty. It reports whether the file already existed.
func Prepare(path string, overwrite bool) (bool, error) {
	_, err := os.Stat(path)
	existed := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat report %s: %w", path, err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if overwrite {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644) //#nosec G304 -- CLI tool writes to user-specified output file
	if err != nil {
		return existed, fmt.Errorf("failed to prepare report %s: %w", path, err)
	}
	return existed, f.Close()
}

// Writer appends blocks to a report file.
type Writer struct {
	path string
}

// NewWriter creates a Writer for path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the report location.
func (w *Writer) Path() string {
	return w.path
}

// Append writes one block for query and closes the file before returning.
func (w *Writer) Append(query string, records []extractor.Record) (err error) {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //#nosec G304 -- CLI tool writes to user-specified output file
	if err != nil {
		return fmt.Errorf("failed to open report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report: %w", cerr)
		}
	}()

	if err := WriteBlock(f, query, records); err != nil {
		return fmt.Errorf("failed to write report block: %w", err)
	}
	return nil
}

// WriteBlock renders one query block to w.
func WriteBlock(w io.Writer, query string, records []extractor.Record) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, headerRule)
	fmt.Fprintf(bw, "Query: %s\n", query)
	fmt.Fprintln(bw, queryRule)

	if len(records) == 0 {
		fmt.Fprintf(bw, "%s\n\n", NoResults)
		return bw.Flush()
	}

	for i, r := range records {
		fmt.Fprintf(bw, "[%d] Title: %s\n", i+1, r.Title)
		fmt.Fprintf(bw, "    Link: %s\n", r.Link)
		fmt.Fprintf(bw, "    Display: %s\n", r.Display)
		fmt.Fprintf(bw, "    Snippet: %s\n\n", r.Snippet)
	}
	fmt.Fprintln(bw)

	return bw.Flush()
}
