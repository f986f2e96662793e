package rules

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// Set is the compiled, read-only result of a build: the profile's rules in
// priority order together with their compiled matchers. After Build nothing
// in a Set is ever mutated, so one Set can serve any number of inputs.
type Set struct {
	profile         string
	caseInsensitive bool

	regexRules []*Rule
	globRules  []*Rule

	// compiled matchers, index-aligned with the rule slices
	regexps []*regexp.Regexp
	globs   []glob.Glob
}

// Profile returns the name of the profile this set was built for
func (s *Set) Profile() string {
	return s.profile
}

// Len returns the total number of rules in the set
func (s *Set) Len() int {
	return len(s.regexRules) + len(s.globRules)
}

// MatchOne returns the single highest-priority rule matching input, or nil.
// Regex rules outrank glob rules: any matching regex rule wins outright,
// and globs are only consulted when no regex matches. Within a kind the
// most recently declared rule wins.
func (s *Set) MatchOne(input string) *Rule {
	if rule := s.matchRegex(input); rule != nil {
		return rule
	}
	return s.matchGlob(input)
}

// Matches returns every rule matching input, regex matches before glob
// matches, each block in priority order. The slice is fully materialized;
// an input nothing matches yields an empty slice.
func (s *Set) Matches(input string) []*Rule {
	var matched []*Rule

	for i, re := range s.regexps {
		if re.MatchString(input) {
			matched = append(matched, s.regexRules[i])
		}
	}

	globInput := s.globInput(input)
	for i, g := range s.globs {
		if g.Match(globInput) {
			matched = append(matched, s.globRules[i])
		}
	}

	return matched
}

func (s *Set) matchRegex(input string) *Rule {
	for i, re := range s.regexps {
		if re.MatchString(input) {
			return s.regexRules[i]
		}
	}
	return nil
}

func (s *Set) matchGlob(input string) *Rule {
	globInput := s.globInput(input)
	for i, g := range s.globs {
		if g.Match(globInput) {
			return s.globRules[i]
		}
	}
	return nil
}

func (s *Set) globInput(input string) string {
	if s.caseInsensitive {
		return strings.ToLower(input)
	}
	return input
}
