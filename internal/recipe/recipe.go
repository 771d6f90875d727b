// ABOUTME: Recipe definitions loaded from a YAML file
// ABOUTME: Each recipe names its source URLs, title filters, and fulfillment flag

package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/harper/feedmill/internal/filter"
)

// Recipe describes one output feed: which sources to pull, which entry
// titles to keep, and whether entry pages should be fetched for full content.
type Recipe struct {
	Name    string        `yaml:"-"`
	URLs    []string      `yaml:"urls"`
	Filters []filter.Rule `yaml:"filters,omitempty"`
	Fulfill bool          `yaml:"fulfill,omitempty"`

	chain filter.Chain
}

// Include reports whether an entry with the given title passes the
// recipe's filter chain.
func (r *Recipe) Include(title string) bool {
	return r.chain.Include(title)
}

// Set is a named collection of recipes, as loaded from one YAML file.
type Set struct {
	Recipes map[string]*Recipe
}

type recipeFile struct {
	Recipes map[string]*Recipe `yaml:"recipes"`
}

// Load reads and validates a recipe file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipes: %w", err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return set, nil
}

// Parse decodes recipe YAML and validates every recipe. Unknown fields are
// rejected so a misspelled key fails loudly instead of silently changing
// behavior.
func Parse(data []byte) (*Set, error) {
	var rf recipeFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if len(rf.Recipes) == 0 {
		return nil, fmt.Errorf("no recipes defined")
	}

	for name, r := range rf.Recipes {
		if r == nil {
			return nil, fmt.Errorf("recipe %q is empty", name)
		}
		r.Name = name
		if len(r.URLs) == 0 {
			return nil, fmt.Errorf("recipe %q has no urls", name)
		}
		for _, raw := range r.URLs {
			u, err := url.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("recipe %q: invalid url %q: %w", name, raw, err)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return nil, fmt.Errorf("recipe %q: url %q must be http or https", name, raw)
			}
			if u.Host == "" {
				return nil, fmt.Errorf("recipe %q: url %q has no host", name, raw)
			}
		}
		chain, err := filter.Compile(r.Filters)
		if err != nil {
			return nil, fmt.Errorf("recipe %q: %w", name, err)
		}
		r.chain = chain
	}

	return &Set{Recipes: rf.Recipes}, nil
}

// Marshal renders the set back to YAML in the recipe file layout.
func (s *Set) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(recipeFile{Recipes: s.Recipes})
	if err != nil {
		return nil, fmt.Errorf("encoding recipes: %w", err)
	}
	return data, nil
}

// Get returns the recipe with the given name.
func (s *Set) Get(name string) (*Recipe, bool) {
	r, ok := s.Recipes[name]
	return r, ok
}

// Names returns recipe names in sorted order for deterministic runs.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.Recipes))
	for name := range s.Recipes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllURLs returns the deduplicated union of every recipe's source URLs,
// sorted. This is the set of cache keys a full run is expected to touch.
func (s *Set) AllURLs() []string {
	seen := make(map[string]bool)
	var urls []string
	for _, r := range s.Recipes {
		for _, u := range r.URLs {
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}
	sort.Strings(urls)
	return urls
}
