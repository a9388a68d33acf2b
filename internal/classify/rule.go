// Package classify maps bank transaction descriptions to account codes
// with regex rules, and learns new rules from manual classifications.
package classify

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/smallbiz-dev/smallbiz/internal/errs"
)

// Rule assigns AccountCode to transactions whose description matches Pattern.
// Higher Priority wins when several rules match.
type Rule struct {
	Pattern      string `yaml:"pattern"`
	AccountCode  string `yaml:"account_code"`
	Description  string `yaml:"description"`
	GSTInclusive bool   `yaml:"gst_inclusive"`
	Priority     int    `yaml:"priority"`
}

// Validate requires a compiling pattern, an account code, a description and a
// non-negative priority.
func (r Rule) Validate() error {
	var problems []string
	if r.Pattern == "" {
		problems = append(problems, "pattern must not be empty")
	} else if _, err := compile(r.Pattern); err != nil {
		problems = append(problems, fmt.Sprintf("pattern %q does not compile: %v", r.Pattern, err))
	}
	if r.AccountCode == "" {
		problems = append(problems, "account_code must not be empty")
	}
	if r.Description == "" {
		problems = append(problems, "description must not be empty")
	}
	if r.Priority < 0 {
		problems = append(problems, fmt.Sprintf("priority must be >= 0, got %d", r.Priority))
	}
	if len(problems) > 0 {
		return fmt.Errorf("rule %q: %v: %w", r.Pattern, problems, errs.ErrInvalid)
	}
	return nil
}

// Match is a rule that matched a description.
type Match struct {
	Rule       Rule
	Confidence float64 // always 1.0 for regex rules
	Text       string  // the matched substring
}

// Matcher finds a match in a description.
type Matcher interface {
	Match(description string) (Match, bool)
}

// RegexMatcher matches one rule case-insensitively anywhere in a description.
type RegexMatcher struct {
	rule Rule
	re   *regexp.Regexp
}

// NewRegexMatcher compiles rule's pattern.
func NewRegexMatcher(rule Rule) (*RegexMatcher, error) {
	re, err := compile(rule.Pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling rule %q: %w", rule.Pattern, err)
	}
	return &RegexMatcher{rule: rule, re: re}, nil
}

func (m *RegexMatcher) Match(description string) (Match, bool) {
	loc := m.re.FindStringIndex(description)
	if loc == nil {
		return Match{}, false
	}
	return Match{Rule: m.rule, Confidence: 1.0, Text: description[loc[0]:loc[1]]}, true
}

func compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

// MatchRule matches a single rule against description. A rule whose
// pattern does not compile never matches.
func MatchRule(description string, rule Rule) (Match, bool) {
	m, err := NewRegexMatcher(rule)
	if err != nil {
		return Match{}, false
	}
	return m.Match(description)
}

// FindBestMatch returns the highest priority matching rule. Equal
// priorities resolve to the earlier rule.
func FindBestMatch(description string, rules []Rule) (Match, bool) {
	var matches []Match
	for _, r := range rules {
		if m, ok := MatchRule(description, r); ok {
			matches = append(matches, m)
		}
	}
	if len(matches) == 0 {
		return Match{}, false
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Rule.Priority > matches[j].Rule.Priority
	})
	return matches[0], true
}
