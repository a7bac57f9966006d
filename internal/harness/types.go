package harness

import (
	"github.com/roach88/archgen/internal/design"
	"github.com/roach88/archgen/internal/enumerate"
)

// Result contains the outcome of one scenario run.
type Result struct {
	// Scenario is the name of the scenario that produced this result.
	Scenario string

	// Session is the compiled design, nil when compilation failed.
	Session *design.Session

	// Enumeration is nil when the run failed.
	Enumeration *enumerate.Result

	// Err is the compile, validation, or enumeration failure, if any.
	Err error

	// Errors lists every unmet expectation and failed assertion.
	Errors []string
}

// NewResult creates a result for the named scenario.
func NewResult(scenario string) *Result {
	return &Result{Scenario: scenario, Errors: []string{}}
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool {
	return len(r.Errors) == 0
}

// AddError records an unmet expectation.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}
