package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"github.com/hashicorp/go-multierror"

	"github.com/roach88/archgen/internal/compiler"
	"github.com/roach88/archgen/internal/design"
	"github.com/roach88/archgen/internal/enumerate"
	"github.com/roach88/archgen/internal/ir"
)

// LoadMode controls how errors are handled during design loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// designLabel is the top-level field holding the design struct.
const designLabel = "design"

// LoadResult contains the results of loading a design directory.
type LoadResult struct {
	Session   *design.Session
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during design loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDesign loads the CUE files of dir and compiles their design struct.
// A nil result means the directory itself could not be loaded. In
// LoadModeCollectAll every compile error is returned; the session is nil
// whenever errs is non-empty.
func LoadDesign(dir string, mode LoadMode, logger *slog.Logger) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("design directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing design directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	designVal := value.LookupPath(cue.ParsePath(designLabel))
	if !designVal.Exists() {
		return result, []error{&LoadError{Code: ErrCodeNoDesign, Message: fmt.Sprintf("no %q struct found in %s", designLabel, dir)}}
	}

	cmode := compiler.FailFast
	if mode == LoadModeCollectAll {
		cmode = compiler.CollectAll
	}
	session, err := compiler.Compile(designVal,
		compiler.WithMode(cmode),
		compiler.WithLogger(logger),
		compiler.WithName(filepath.Base(filepath.Clean(dir))))
	if err != nil {
		return result, flattenErrors(err)
	}
	result.Session = session
	return result, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// flattenErrors splits a collect-all compile error into its parts.
func flattenErrors(err error) []error {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return merr.WrappedErrors()
	}
	return []error{err}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeCatalog     = "E008" // Catalog database error

	// Design errors
	ErrCodeNoDesign    = "E100" // No design struct
	ErrCodeMalformed   = "E101" // Malformed design value
	ErrCodeDeclaration = "E102" // Bad parameter or entity declaration
	ErrCodeConstraint  = "E103" // Unresolvable constraint
	ErrCodeIncomplete  = "E104" // Session-level validation failed

	// Generation errors
	ErrCodeLimit     = "E201" // Size cap exceeded
	ErrCodeCollision = "E202" // Two fragments disagree on one key
)

// MapErrorCode maps a load, compile, or generation error to an error code.
func MapErrorCode(err error) string {
	var loadErr *LoadError
	switch {
	case errors.As(err, &loadErr):
		return loadErr.Code
	case design.IsConstraintError(err):
		return ErrCodeConstraint
	case design.IsSchemaError(err):
		return ErrCodeDeclaration
	case compiler.IsCompileError(err):
		return ErrCodeMalformed
	case enumerate.IsLimitError(err):
		return ErrCodeLimit
	case ir.IsMergeCollision(err):
		return ErrCodeCollision
	default:
		return ErrCodeGeneric
	}
}

// toCLIError converts an error into its response form, keeping the CUE
// position when there is one.
func toCLIError(err error) CLIError {
	out := CLIError{Code: MapErrorCode(err), Message: err.Error()}

	var pos token.Pos
	var loadErr *LoadError
	var compileErr *compiler.CompileError
	switch {
	case errors.As(err, &loadErr):
		out.Message = loadErr.Message
		pos = loadErr.Pos
	case errors.As(err, &compileErr):
		out.Message = compileErr.Field + ": " + compileErr.Message
		pos = compileErr.Pos
	}
	if pos.IsValid() {
		out.Details = map[string]any{
			"file":   pos.Filename(),
			"line":   pos.Line(),
			"column": pos.Column(),
		}
	}
	return out
}
