package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/archgen/internal/compiler"
	"github.com/roach88/archgen/internal/design"
	"github.com/roach88/archgen/internal/enumerate"
	"github.com/roach88/archgen/internal/ir"
)

// Error names a scenario can expect besides design error codes.
const (
	ErrorCompile   = "compile"
	ErrorLimit     = "limit"
	ErrorCollision = "collision"
)

// Option configures a scenario run.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger passed to the compiler and enumerator.
// Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Run executes a scenario and returns its result.
//
// Execution flow:
//  1. Load the CUE instance in the design directory
//  2. Compile the design struct and validate the session
//  3. Enumerate it under the scenario limits
//  4. Check the expected outcome and evaluate assertions
//
// Compile, validation, and enumeration failures are part of the result
// and are matched against expect.error. The returned error is reserved
// for designs that are not loadable CUE at all.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	v, err := loadDesign(scenario.Design)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult(scenario.Name)
	result.Session, result.Err = compile(v, scenario.Design, cfg.logger)

	if result.Err == nil {
		eopts := []enumerate.Option{enumerate.WithLogger(cfg.logger)}
		if n := scenario.Limits.MaxConfigurations; n > 0 {
			eopts = append(eopts, enumerate.WithMaxConfigurations(n))
		}
		if n := scenario.Limits.MaxFragments; n > 0 {
			eopts = append(eopts, enumerate.WithMaxFragments(n))
		}
		result.Enumeration, result.Err = enumerate.Run(ctx, result.Session, eopts...)
	}

	checkExpect(result, scenario.Expect)
	if result.Err == nil {
		for _, msg := range EvaluateAssertions(result.Enumeration, scenario.Assertions) {
			result.AddError(msg)
		}
	}
	return result, nil
}

// loadDesign builds the CUE instance in dir and returns its design struct.
func loadDesign(dir string) (cue.Value, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, fmt.Errorf("no CUE instances in %s", dir)
	}
	if err := instances[0].Err; err != nil {
		return cue.Value{}, fmt.Errorf("loading %s: %w", dir, err)
	}
	v := cuecontext.New().BuildInstance(instances[0])
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("building %s: %w", dir, err)
	}
	return v.LookupPath(cue.ParsePath("design")), nil
}

func compile(v cue.Value, dir string, logger *slog.Logger) (*design.Session, error) {
	s, err := compiler.Compile(v,
		compiler.WithLogger(logger),
		compiler.WithName(filepath.Base(filepath.Clean(dir))))
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// ErrorName classifies a run failure the way scenarios spell it.
func ErrorName(err error) string {
	if code, ok := design.ErrorCodeOf(err); ok {
		return string(code)
	}
	switch {
	case enumerate.IsLimitError(err):
		return ErrorLimit
	case ir.IsMergeCollision(err):
		return ErrorCollision
	case compiler.IsCompileError(err):
		return ErrorCompile
	default:
		return ""
	}
}

func checkExpect(result *Result, e Expect) {
	if e.Error != "" {
		switch got := ErrorName(result.Err); {
		case result.Err == nil:
			result.AddError(fmt.Sprintf("expected error %s, run succeeded", e.Error))
		case got != e.Error:
			result.AddError(fmt.Sprintf("expected error %s, got %q: %v", e.Error, got, result.Err))
		}
		return
	}
	if result.Err != nil {
		result.AddError(fmt.Sprintf("unexpected error: %v", result.Err))
		return
	}

	res := result.Enumeration
	checkCount(result, "architectures", e.Architectures, len(res.Architectures))
	checkCount(result, "workloads", e.Workloads, len(res.Workloads))
	checkCount(result, "configurations", e.Configurations, len(res.Pairs))
	if e.Mixed != nil && *e.Mixed != res.Mixed {
		result.AddError(fmt.Sprintf("expected mixed %v, got %v", *e.Mixed, res.Mixed))
	}
}

func checkCount(result *Result, what string, want *int, got int) {
	if want != nil && *want != got {
		result.AddError(fmt.Sprintf("expected %d %s, got %d", *want, what, got))
	}
}
