package design

import (
	"errors"
	"fmt"

	"github.com/roach88/archgen/internal/ir"
)

// ErrorCode categorizes declaration and constraint errors.
type ErrorCode string

const (
	// ErrCodeDuplicateField indicates an owner+field pair declared twice.
	ErrCodeDuplicateField ErrorCode = "DUPLICATE_FIELD"

	// ErrCodeDuplicateOwner indicates an owner name reused by another entity.
	ErrCodeDuplicateOwner ErrorCode = "DUPLICATE_OWNER"

	// ErrCodeMissingOwner indicates a field declared on an undeclared owner.
	ErrCodeMissingOwner ErrorCode = "MISSING_OWNER"

	// ErrCodeReservedName indicates use of the reserved attribute owner.
	ErrCodeReservedName ErrorCode = "RESERVED_NAME"

	// ErrCodeEmptyName indicates an empty owner or field name.
	ErrCodeEmptyName ErrorCode = "EMPTY_NAME"

	// ErrCodeEmptyDomain indicates a sweep with no candidate values.
	ErrCodeEmptyDomain ErrorCode = "EMPTY_DOMAIN"

	// ErrCodeDuplicateEntry indicates an event or metric declared twice.
	ErrCodeDuplicateEntry ErrorCode = "DUPLICATE_ENTRY"
)

const (
	// ErrCodeUnknownField indicates a constraint endpoint that was never declared.
	ErrCodeUnknownField ErrorCode = "UNKNOWN_FIELD"

	// ErrCodeNotSweep indicates a constraint endpoint holding a single value.
	ErrCodeNotSweep ErrorCode = "NOT_SWEEP"

	// ErrCodeLengthMismatch indicates positional pairing over unequal domains.
	ErrCodeLengthMismatch ErrorCode = "LENGTH_MISMATCH"

	// ErrCodeUnsupportedKind indicates a constraint kind with no implementation.
	ErrCodeUnsupportedKind ErrorCode = "UNSUPPORTED_KIND"

	// ErrCodeMissingCondition indicates an anti constraint without a condition.
	ErrCodeMissingCondition ErrorCode = "MISSING_CONDITION"

	// ErrCodeSelfConstraint indicates a constraint from a field to itself.
	ErrCodeSelfConstraint ErrorCode = "SELF_CONSTRAINT"

	// ErrCodeDuplicateConstraint indicates a second constraint on one field pair.
	ErrCodeDuplicateConstraint ErrorCode = "DUPLICATE_CONSTRAINT"

	// ErrCodeIndexOutOfRange indicates an index predicate linking a position
	// that exists in only one domain.
	ErrCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"

	// ErrCodePredicateFailed indicates a predicate returned an error.
	ErrCodePredicateFailed ErrorCode = "PREDICATE_FAILED"
)

// SchemaError reports a bad declaration. Fatal at declaration time.
type SchemaError struct {
	Code    ErrorCode
	Ref     ir.FieldRef
	Message string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	switch {
	case e.Ref.Owner != "" && e.Ref.Field != "":
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Ref)
	case e.Ref.Owner != "":
		return fmt.Sprintf("%s: %s (owner=%s)", e.Code, e.Message, e.Ref.Owner)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// ConstraintError reports a constraint that cannot be resolved.
// Fatal at AddConstraint time.
type ConstraintError struct {
	Code    ErrorCode
	Kind    Kind
	Source  ir.FieldRef
	Target  ir.FieldRef
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConstraintError) Error() string {
	msg := fmt.Sprintf("%s: %s constraint %s -> %s: %s", e.Code, e.Kind, e.Source, e.Target, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying predicate error, if any.
func (e *ConstraintError) Unwrap() error { return e.Err }

// IsSchemaError returns true if err wraps a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsConstraintError returns true if err wraps a ConstraintError.
func IsConstraintError(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce)
}

// ErrorCodeOf returns the code of a wrapped SchemaError or ConstraintError.
func ErrorCodeOf(err error) (ErrorCode, bool) {
	var se *SchemaError
	if errors.As(err, &se) {
		return se.Code, true
	}
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return "", false
}

func schemaErr(code ErrorCode, ref ir.FieldRef, format string, args ...any) *SchemaError {
	return &SchemaError{Code: code, Ref: ref, Message: fmt.Sprintf(format, args...)}
}
