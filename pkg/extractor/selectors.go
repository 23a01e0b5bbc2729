package extractor

import (
	"errors"
	"fmt"
	"os"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSelector is returned by LoadSelectors when an override does not
// parse as CSS.
var ErrInvalidSelector = errors.New("invalid selector")

// TierSpec names a CSS selector group used as one candidate tier.
type TierSpec struct {
	Name     string `yaml:"name"`
	Selector string `yaml:"selector"`
}

// Selectors holds the CSS selectors an Extractor works from. Display and
// Snippet are in priority order: the first selector that matches inside a
// candidate supplies the field.
type Selectors struct {
	Tiers   []TierSpec `yaml:"tiers"`
	Display []string   `yaml:"display"`
	Snippet []string   `yaml:"snippet"`
}

// DefaultSelectors returns selectors for the embedded CSE result markup,
// falling back to classic web-search result shapes.
func DefaultSelectors() Selectors {
	return Selectors{
		Tiers: []TierSpec{
			{Name: "cse", Selector: "div.gsc-webResult, div.gsc-result"},
			{Name: "legacy", Selector: "div.g, div.rc, div.yuRUbf"},
		},
		Display: []string{
			".gs-visibleUrl",
			".gs-bidi-start-align",
			".gsc-url-top",
		},
		Snippet: []string{
			".gsc-thumbnail-inside",
			".gs-bidi-start-align + .gs-snippet",
			".gs-snippet",
			".rc .s",
			".IsZvec",
		},
	}
}

func (s Selectors) withDefaults() Selectors {
	def := DefaultSelectors()
	if len(s.Tiers) == 0 {
		s.Tiers = def.Tiers
	}
	if len(s.Display) == 0 {
		s.Display = def.Display
	}
	if len(s.Snippet) == 0 {
		s.Snippet = def.Snippet
	}
	return s
}

func (s Selectors) tiers() []Tier {
	tiers := make([]Tier, 0, len(s.Tiers))
	for i, t := range s.Tiers {
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("tier%d", i+1)
		}
		tiers = append(tiers, SelectorTier(name, t.Selector))
	}
	return tiers
}

// Validate checks that every selector parses.
func (s Selectors) Validate() error {
	check := func(kind, sel string) error {
		if _, err := cascadia.ParseGroup(sel); err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidSelector, kind, sel, err)
		}
		return nil
	}
	for _, t := range s.Tiers {
		if err := check("tier "+t.Name, t.Selector); err != nil {
			return err
		}
	}
	for _, sel := range s.Display {
		if err := check("display", sel); err != nil {
			return err
		}
	}
	for _, sel := range s.Snippet {
		if err := check("snippet", sel); err != nil {
			return err
		}
	}
	return nil
}

// LoadSelectors reads selector overrides from a YAML file. Sections left
// empty in the file keep their defaults.
func LoadSelectors(path string) (Selectors, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-specified selector file
	if err != nil {
		return Selectors{}, fmt.Errorf("failed to read selectors: %w", err)
	}

	var s Selectors
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Selectors{}, fmt.Errorf("failed to parse selectors %s: %w", path, err)
	}

	s = s.withDefaults()
	if err := s.Validate(); err != nil {
		return Selectors{}, err
	}
	return s, nil
}
