// Package filter provides ordered include/exclude path filtering for the
// directory scanner. Rules are regular expressions evaluated against a
// candidate's full relative path, in the order they were given on the
// command line; the first matching rule decides.
package filter

import (
	"fmt"
	"regexp"
)

// Action is the decision a matching rule makes.
type Action int

const (
	// Include admits the candidate.
	Include Action = iota
	// Exclude rejects the candidate.
	Exclude
)

// Rule pairs a compiled pattern with its action.
type Rule struct {
	Pattern *regexp.Regexp
	Action  Action
}

// Spec is one uncompiled rule, as collected from the command line.
type Spec struct {
	Pattern string
	Action  Action
}

// Filter evaluates an ordered rule list against relative paths.
// Directories are matched with a trailing separator in the subject so a
// pattern can target directories specifically (e.g. `/$`).
type Filter struct {
	rules       []Rule
	defaultIncl bool
}

// Compile builds a Filter from ordered specs. The default decision, applied
// when no rule matches, is "excluded" when the list contains only include
// rules and "included" otherwise.
func Compile(specs []Spec) (*Filter, error) {
	f := &Filter{defaultIncl: true}

	onlyIncludes := len(specs) > 0
	for _, s := range specs {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", s.Pattern, err)
		}
		f.rules = append(f.rules, Rule{Pattern: re, Action: s.Action})
		if s.Action != Include {
			onlyIncludes = false
		}
	}
	if onlyIncludes {
		f.defaultIncl = false
	}
	return f, nil
}

// File reports whether the file at relative path rel is admitted.
func (f *Filter) File(rel string) bool {
	return f.match(rel)
}

// Dir reports whether the directory at relative path rel is admitted.
// The match subject carries a trailing separator.
func (f *Filter) Dir(rel string) bool {
	return f.match(rel + "/")
}

// match applies the rules in order; the first match wins.
func (f *Filter) match(subject string) bool {
	for _, r := range f.rules {
		if r.Pattern.MatchString(subject) {
			return r.Action == Include
		}
	}
	return f.defaultIncl
}
