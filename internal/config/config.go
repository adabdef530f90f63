// Package config holds the run configuration for the null-injection tool and
// its validation. Validation never stops at the first problem: it returns
// every violation it finds so a user can fix a bad invocation in one pass.
package config

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue in the list has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Config is the validated parameter set for one injection run.
type Config struct {
	// Probability is the per-candidate-cell replacement chance, in [0, 1].
	Probability float64

	// Pattern is an optional regular expression. Empty means "match every
	// value". Matching is substring-style against the canonical text form.
	Pattern string

	// Columns restricts injection to the named columns. ColumnsSet
	// distinguishes "not configured" (all columns) from an explicit empty
	// list, which is a validation error rather than a silent no-op.
	Columns    []string
	ColumnsSet bool

	// Seed drives the per-cell deterministic draw. Two runs with the same
	// dataset, config and seed produce byte-identical output.
	Seed int64

	// Workers is the injection parallelism. <= 0 means "pick a default".
	Workers int
}

// ParseColumns splits a comma-separated column list, trimming each entry.
// Empty entries are dropped; a fully empty result with set=true is flagged
// later by Validate.
func ParseColumns(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the schema-independent invariants of c and returns every
// violation found. Schema-dependent checks (unknown column names) run later,
// once the input dataset's schema is known.
func Validate(c Config) []Issue {
	var issues []Issue

	if c.Probability < 0 || c.Probability > 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "probability",
			Message:  fmt.Sprintf("must be between 0.0 and 1.0, got %g", c.Probability),
		})
	}

	if c.Pattern != "" {
		if _, err := regexp.Compile(c.Pattern); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "pattern",
				Message:  fmt.Sprintf("invalid regular expression: %v", err),
			})
		}
	}

	if c.ColumnsSet && len(c.Columns) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "columns",
			Message:  "explicit column list is empty; omit the flag to select all columns",
		})
	}

	return issues
}
