package wordlist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sample = "foo\n# comment\n\n   \n  site:bar.com baz  \r\n#another\ninurl:admin\n"

var sampleDorks = []string{"foo", "site:bar.com baz", "inurl:admin"}

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dorks.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// --- Parse Tests ---

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"mixed", sample, sampleDorks},
		{"empty", "", nil},
		{"only comments", "# a\n#b\n", nil},
		{"no trailing newline", "one\ntwo", []string{"one", "two"}},
		{"indented comment", "   # still a comment\nx", []string{"x"}},
		{"hash inside", "intext:\"#1 admin\"", []string{"intext:\"#1 admin\""}},
		{"invalid utf8", "ab\xffc\n\xfe\n", []string{"abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_InvariantNoBlankOrComment(t *testing.T) {
	got, err := Parse(strings.NewReader(sample + "\t\t\n#x\n  y  \n"))
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range got {
		if d == "" || strings.HasPrefix(d, "#") || d != strings.TrimSpace(d) {
			t.Errorf("invalid dork %q", d)
		}
	}
}

// --- Load Tests ---

func TestLoad_File(t *testing.T) {
	got, err := Load(context.Background(), writeList(t, sample), Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, sampleDorks) {
		t.Errorf("Load() = %q, want %q", got, sampleDorks)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), Options{})
	if !errors.Is(err, ErrInput) {
		t.Errorf("expected ErrInput, got %v", err)
	}
}

func TestLoad_URL(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	got, err := Load(context.Background(), srv.URL+"/dorks.txt", Options{UserAgent: "csedork-test"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, sampleDorks) {
		t.Errorf("Load() = %q, want %q", got, sampleDorks)
	}
	if gotUA != "csedork-test" {
		t.Errorf("User-Agent = %q, want csedork-test", gotUA)
	}
}

func TestLoad_URLMatchesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	fromURL, err := Load(context.Background(), srv.URL, Options{})
	if err != nil {
		t.Fatal(err)
	}
	fromFile, err := Load(context.Background(), writeList(t, sample), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fromURL, fromFile) {
		t.Errorf("URL load %q differs from file load %q", fromURL, fromFile)
	}
}

func TestLoad_URLNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL+"/missing.txt", Options{})
	if !errors.Is(err, ErrInput) {
		t.Errorf("expected ErrInput, got %v", err)
	}
}

func TestIsRemote(t *testing.T) {
	tests := map[string]bool{
		"http://example.com/d.txt":  true,
		"HTTPS://example.com/d.txt": true,
		"dorks.txt":                 false,
		"/tmp/http-dorks.txt":       false,
		"ftp://example.com/d.txt":   false,
	}
	for in, want := range tests {
		if got := IsRemote(in); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", in, got, want)
		}
	}
}
