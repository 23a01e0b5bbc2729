// Package query composes search queries from dorks and turns them into
// search endpoint URLs.
package query

import (
	"net/url"
	"strings"
)

// DefaultEndpoint is the hosted custom search engine frontend.
const DefaultEndpoint = "https://cse.google.com/cse"

// DefaultCX is the search engine instance used when none is configured.
const DefaultCX = "f32fc71d9c0f54c66"

// Placeholder marks where the encoded query goes in a URL template.
const Placeholder = "{query}"

const siteToken = "site:"

// Build scopes dork to site. A dork that already carries its own site:
// restriction, or an empty site, is returned unchanged.
func Build(dork, site string) string {
	if site == "" || strings.Contains(dork, siteToken) {
		return dork
	}
	return siteToken + site + " " + dork
}

// Endpoint returns a URL template for the search engine instance cx served
// from base. An empty base uses DefaultEndpoint.
func Endpoint(base, cx string) string {
	if base == "" {
		base = DefaultEndpoint
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "cx=" + url.QueryEscape(cx) + "&q=" + Placeholder
}

// URL substitutes the form-encoded q into template. If template has no
// placeholder the encoded query is appended.
func URL(template, q string) string {
	encoded := url.QueryEscape(q)
	if !strings.Contains(template, Placeholder) {
		return template + encoded
	}
	return strings.Replace(template, Placeholder, encoded, 1)
}
