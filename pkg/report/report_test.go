package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/csedork/pkg/extractor"
)

func readReport(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	return string(data)
}

func TestWriteBlock_NoResults(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteBlock(buf, "site:example.com foo", nil); err != nil {
		t.Fatalf("WriteBlock() error = %v", err)
	}

	want := strings.Repeat("=", 80) + "\n" +
		"Query: site:example.com foo\n" +
		strings.Repeat("-", 80) + "\n" +
		"[no results]\n\n"
	if buf.String() != want {
		t.Errorf("WriteBlock() =\n%q\nwant\n%q", buf.String(), want)
	}
	if strings.Contains(buf.String(), "[1]") {
		t.Error("empty block must not contain numbered entries")
	}
}

func TestWriteBlock_Records(t *testing.T) {
	records := []extractor.Record{
		{Title: "Admin", Link: "https://example.com/admin", Display: "example.com", Snippet: "login page"},
		{Snippet: "only a snippet"},
	}

	buf := &bytes.Buffer{}
	if err := WriteBlock(buf, "q", records); err != nil {
		t.Fatalf("WriteBlock() error = %v", err)
	}

	want := strings.Repeat("=", 80) + "\n" +
		"Query: q\n" +
		strings.Repeat("-", 80) + "\n" +
		"[1] Title: Admin\n" +
		"    Link: https://example.com/admin\n" +
		"    Display: example.com\n" +
		"    Snippet: login page\n\n" +
		"[2] Title: \n" +
		"    Link: \n" +
		"    Display: \n" +
		"    Snippet: only a snippet\n\n" +
		"\n"
	if buf.String() != want {
		t.Errorf("WriteBlock() =\n%q\nwant\n%q", buf.String(), want)
	}
	if strings.Contains(buf.String(), NoResults) {
		t.Error("non-empty block must not contain the no-results marker")
	}
}

func TestWriter_AppendTwoBlocksInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	w := NewWriter(path)

	if err := w.Append("site:example.com first", nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := w.Append("site:example.com second", []extractor.Record{{Title: "T", Link: "L"}}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	content := readReport(t, path)

	first := strings.Index(content, "Query: site:example.com first")
	second := strings.Index(content, "Query: site:example.com second")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("blocks missing or out of order:\n%s", content)
	}

	if n := strings.Count(content, strings.Repeat("=", 80)+"\n"); n != 2 {
		t.Errorf("expected 2 separators, got %d", n)
	}

	firstBlock := content[:second]
	if !strings.Contains(firstBlock, NoResults) || strings.Contains(firstBlock, "[1]") {
		t.Errorf("first block should only hold the no-results marker:\n%s", firstBlock)
	}
	secondBlock := content[second:]
	if !strings.Contains(secondBlock, "[1] Title: T") || strings.Contains(secondBlock, NoResults) {
		t.Errorf("unexpected second block:\n%s", secondBlock)
	}
}

func TestPrepare_AppendKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	if err := os.WriteFile(path, []byte("previous run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	existed, err := Prepare(path, false)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !existed {
		t.Error("expected existed = true")
	}

	if err := NewWriter(path).Append("q", nil); err != nil {
		t.Fatal(err)
	}
	content := readReport(t, path)
	if !strings.HasPrefix(content, "previous run\n") || !strings.Contains(content, "Query: q") {
		t.Errorf("expected previous content followed by new block, got:\n%s", content)
	}
}

func TestPrepare_OverwriteTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	if err := os.WriteFile(path, []byte("previous run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Prepare(path, true); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if content := readReport(t, path); content != "" {
		t.Errorf("expected empty report after overwrite, got %q", content)
	}
}

func TestPrepare_CreatesMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.txt")

	existed, err := Prepare(path, false)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if existed {
		t.Error("expected existed = false")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected report to be created: %v", err)
	}
}

func TestPrepare_BadDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "results.txt")
	if _, err := Prepare(path, false); err == nil {
		t.Error("expected error for missing parent directory")
	}
}

func TestWriter_AppendFailsOnDirectory(t *testing.T) {
	w := NewWriter(t.TempDir())
	if err := w.Append("q", nil); err == nil {
		t.Error("expected error when report path is a directory")
	}
}
