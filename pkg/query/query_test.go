package query

import (
	"strings"
	"testing"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		dork string
		site string
		want string
	}{
		{"adds site", "inurl:admin", "example.com", "site:example.com inurl:admin"},
		{"empty site", "inurl:admin", "", "inurl:admin"},
		{"existing site kept", "site:bar.com baz", "example.com", "site:bar.com baz"},
		{"site token mid dork", `filetype:pdf site:gov.uk "budget"`, "example.com", `filetype:pdf site:gov.uk "budget"`},
		{"case sensitive token", "SITE:bar.com baz", "example.com", "site:example.com SITE:bar.com baz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Build(tt.dork, tt.site); got != tt.want {
				t.Errorf("Build(%q, %q) = %q, want %q", tt.dork, tt.site, got, tt.want)
			}
		})
	}
}

func TestBuild_SitePassthroughIgnoresSiteArgument(t *testing.T) {
	dorks := []string{"site:a.com x", "intitle:index site:b.org", "site:"}
	sites := []string{"", "example.com", "other.net"}

	for _, d := range dorks {
		for _, s := range sites {
			if got := Build(d, s); got != d {
				t.Errorf("Build(%q, %q) = %q, want unchanged", d, s, got)
			}
		}
	}
}

func TestBuild_PrefixWhenSiteGiven(t *testing.T) {
	dorks := []string{"foo", "inurl:login", `"index of" backup`, ""}

	for _, d := range dorks {
		got := Build(d, "example.com")
		if !strings.HasPrefix(got, "site:example.com ") {
			t.Errorf("Build(%q) = %q, want site prefix", d, got)
		}
	}
}

func TestEndpoint(t *testing.T) {
	tests := []struct {
		name string
		base string
		cx   string
		want string
	}{
		{"default base", "", "abc123", "https://cse.google.com/cse?cx=abc123&q={query}"},
		{"custom base", "https://search.example.org/cse", "x:y", "https://search.example.org/cse?cx=x%3Ay&q={query}"},
		{"base with query", "https://cse.google.com/cse?hl=en", "abc", "https://cse.google.com/cse?hl=en&cx=abc&q={query}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Endpoint(tt.base, tt.cx); got != tt.want {
				t.Errorf("Endpoint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestURL(t *testing.T) {
	template := Endpoint("", "abc")

	got := URL(template, `site:example.com "index of" & more`)
	want := "https://cse.google.com/cse?cx=abc&q=site%3Aexample.com+%22index+of%22+%26+more"
	if got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}

func TestURL_NoPlaceholderAppends(t *testing.T) {
	got := URL("https://cse.google.com/cse?cx=abc&q=", "a b")
	if got != "https://cse.google.com/cse?cx=abc&q=a+b" {
		t.Errorf("URL() = %q", got)
	}
}
