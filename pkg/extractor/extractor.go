// Package extractor turns rendered search result pages into structured
// records. Result containers are located through an ordered list of
// tiers; the first tier that matches anything wins, so markup drift
// degrades into fewer or emptier records rather than an error.
package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/csedork/internal/logger"
)

// Record is a single search result.
type Record struct {
	Title   string `json:"title" yaml:"title"`
	Link    string `json:"link" yaml:"link"`
	Snippet string `json:"snippet" yaml:"snippet"`
	Display string `json:"display" yaml:"display"`
}

// Empty reports whether the record carries none of title, link or snippet.
// Display alone does not make a record worth keeping.
func (r Record) Empty() bool {
	return r.Title == "" && r.Link == "" && r.Snippet == ""
}

// Tier locates candidate result containers in a document.
type Tier struct {
	Name  string
	Match func(doc *goquery.Document) *goquery.Selection
}

// SelectorTier returns a Tier matching the CSS selector group css.
// Invalid selectors match nothing.
func SelectorTier(name, css string) Tier {
	return Tier{
		Name: name,
		Match: func(doc *goquery.Document) *goquery.Selection {
			return doc.Find(css)
		},
	}
}

// Extractor extracts records using tiered candidate selection.
type Extractor struct {
	tiers   []Tier
	display []string
	snippet []string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSelectors replaces tiers, display and snippet selectors with sel.
// Empty sections of sel keep the defaults.
func WithSelectors(sel Selectors) Option {
	return func(e *Extractor) {
		sel = sel.withDefaults()
		e.tiers = sel.tiers()
		e.display = sel.Display
		e.snippet = sel.Snippet
	}
}

// WithTiers replaces the candidate tiers, keeping field selectors.
func WithTiers(tiers ...Tier) Option {
	return func(e *Extractor) {
		e.tiers = tiers
	}
}

// New creates an Extractor using DefaultSelectors unless overridden.
func New(opts ...Option) *Extractor {
	def := DefaultSelectors()
	e := &Extractor{
		tiers:   def.tiers(),
		display: def.Display,
		snippet: def.Snippet,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = New()

// Extract parses html with the default selectors.
func Extract(html string) []Record {
	return defaultExtractor.Extract(html)
}

// Extract parses html into records in document order. It never fails:
// empty, partial or non-HTML input yields an empty result.
func (e *Extractor) Extract(html string) []Record {
	if strings.TrimSpace(html) == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Debug("unparseable result page", "error", err, "html_size", len(html))
		return nil
	}

	candidates, tier := e.candidates(doc)
	if candidates == nil {
		logger.Debug("no result containers matched", "tiers", len(e.tiers))
		return nil
	}

	var records []Record
	candidates.Each(func(_ int, c *goquery.Selection) {
		r := e.record(c)
		if r.Empty() {
			return
		}
		records = append(records, r)
	})

	logger.Debug("extracted results",
		"tier", tier,
		"candidates", candidates.Length(),
		"records", len(records))

	return records
}

// candidates returns the matches of the first tier that found anything.
func (e *Extractor) candidates(doc *goquery.Document) (*goquery.Selection, string) {
	for _, t := range e.tiers {
		if t.Match == nil {
			continue
		}
		sel := t.Match(doc)
		if sel != nil && sel.Length() > 0 {
			return sel, t.Name
		}
	}
	return nil, ""
}

func (e *Extractor) record(c *goquery.Selection) Record {
	var r Record

	if a := c.Find("a").First(); a.Length() > 0 {
		if href, ok := a.Attr("href"); ok && strings.TrimSpace(href) != "" {
			r.Link = strings.TrimSpace(href)
			r.Title = cleanText(a.Text())
		}
	}

	if dsp := firstMatch(c, e.display); dsp != nil {
		r.Display = cleanText(dsp.Text())
	}

	if sn := firstMatch(c, e.snippet); sn != nil {
		r.Snippet = cleanText(sn.Text())
	} else if inline := firstTextElement(c); inline != nil {
		r.Snippet = cleanText(inline.Text())
	}

	return r
}

// firstMatch returns the first element matched by the earliest selector in
// priority order, or nil.
func firstMatch(c *goquery.Selection, selectors []string) *goquery.Selection {
	for _, sel := range selectors {
		if m := c.Find(sel).First(); m.Length() > 0 {
			return m
		}
	}
	return nil
}

// firstTextElement returns the first span or div inside c that holds
// non-blank text of its own.
func firstTextElement(c *goquery.Selection) *goquery.Selection {
	var found *goquery.Selection
	c.Find("span, div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if ownText(s) != "" {
			found = s
			return false
		}
		return true
	})
	return found
}

func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, n *goquery.Selection) {
		if goquery.NodeName(n) == "#text" {
			b.WriteString(n.Text())
		}
	})
	return strings.TrimSpace(b.String())
}

// cleanText normalizes whitespace in text.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
