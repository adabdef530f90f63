package inject

import (
	"fmt"
	"regexp"

	"nullinject/internal/dataset"
)

// Matcher decides whether a cell value is a replacement candidate.
//
// With no pattern, every non-null value is a candidate. With a pattern, the
// value's canonical text form is tested for a match anywhere in the text
// ("contains" semantics; callers wanting anchoring put ^/$ in the pattern).
// A cell that is already null is never a candidate, so nulling a null can
// neither happen nor be counted twice.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles pattern. An empty pattern yields a match-everything
// matcher.
func NewMatcher(pattern string) (*Matcher, error) {
	if pattern == "" {
		return &Matcher{}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	return &Matcher{re: re}, nil
}

// Matches reports whether v is a replacement candidate.
func (m *Matcher) Matches(v any) bool {
	if v == nil {
		return false
	}
	if m.re == nil {
		return true
	}
	return m.re.MatchString(dataset.CanonicalText(v))
}
