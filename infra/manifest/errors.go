package manifest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFrozen            = errors.New("stack is finalized")
	ErrDuplicateStack    = errors.New("stack already declared")
	ErrDuplicateResource = errors.New("resource already declared")
	ErrUnknownResource   = errors.New("resource not declared")
	ErrReferenced        = errors.New("resource is referenced by a later resource")
)

// Rule names an invariant checked at finalize time.
type Rule string

const (
	RuleDuplicatePath     Rule = "duplicate-parameter-path"
	RuleDanglingReference Rule = "dangling-reference"
	RuleForwardReference  Rule = "forward-reference"
)

// Violation is one broken invariant.
type Violation struct {
	Rule    Rule   `json:"rule" yaml:"rule"`
	Subject string `json:"subject" yaml:"subject"`
	Detail  string `json:"detail" yaml:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s: %s", v.Rule, v.Subject, v.Detail)
}

// ValidationError lists every violation found while finalizing a stack or a
// whole run.
type ValidationError struct {
	Scope      string
	Violations []Violation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	noun := "violations"
	if len(parts) == 1 {
		noun = "violation"
	}
	return fmt.Sprintf("manifest %s: %d %s: %s", e.Scope, len(parts), noun, strings.Join(parts, "; "))
}

// Has reports whether any violation of the given rule was recorded.
func (e *ValidationError) Has(rule Rule) bool {
	for _, v := range e.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(rule Rule, subject, format string, args ...any) {
	e.Violations = append(e.Violations, Violation{
		Rule:    rule,
		Subject: subject,
		Detail:  fmt.Sprintf(format, args...),
	})
}

func (e *ValidationError) hasViolations() bool {
	return len(e.Violations) > 0
}
