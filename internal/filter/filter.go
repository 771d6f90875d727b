// ABOUTME: Title filter chain applied to entries during acquisition
// ABOUTME: Case-insensitive regex rules with optional inversion, all rules must pass

package filter

import (
	"fmt"
	"regexp"
)

// Rule is a single filter as written in a recipe: a regex matched against
// the entry title, optionally inverted. Rules with an empty pattern are
// ignored (reserved for future body filters).
type Rule struct {
	Title  string `yaml:"title"`
	Invert bool   `yaml:"invert,omitempty"`
}

// Chain is a compiled rule list. An entry is included only when every rule
// in the chain passes; the empty chain includes everything.
type Chain []compiledRule

type compiledRule struct {
	re     *regexp.Regexp
	invert bool
}

// Compile validates and compiles the rules of one recipe. Patterns are
// matched case-insensitively. An invalid pattern is a configuration error,
// reported against its source rule.
func Compile(rules []Rule) (Chain, error) {
	chain := make(Chain, 0, len(rules))
	for _, r := range rules {
		if r.Title == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + r.Title)
		if err != nil {
			return nil, fmt.Errorf("compile title filter %q: %w", r.Title, err)
		}
		chain = append(chain, compiledRule{re: re, invert: r.Invert})
	}
	return chain, nil
}

// Include reports whether an entry with the given title passes every rule.
// Entries without a title are not judged by title rules and pass.
func (c Chain) Include(title string) bool {
	if title == "" {
		return true
	}
	for _, r := range c {
		matches := r.re.MatchString(title)
		if r.invert {
			matches = !matches
		}
		if !matches {
			return false
		}
	}
	return true
}
