package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDesign(t *testing.T) {
	out, _, err := execute(t, "validate", designDir("gemm"))
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Design gemm valid")
	assert.Contains(t, out, "parameters:  10")
	assert.Contains(t, out, "sweeps:      2")
	assert.Contains(t, out, "constraints: 1")
	assert.Contains(t, out, "naive space: 9")
}

func TestValidateDesignJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "validate", designDir("mixed"))
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, "mixed", result.Name)
	assert.Len(t, result.DesignHash, 64)
	assert.Equal(t, 1, result.Stats.Constraints)
}

func TestValidateReportsAllErrors(t *testing.T) {
	out, _, err := execute(t, "validate", designDir("broken"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "2 error(s)")

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, ErrCodeMalformed)
	assert.Contains(t, out, ErrCodeConstraint)
	assert.Contains(t, out, "LENGTH_MISMATCH")
}

func TestValidateReportsAllErrorsJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "validate", designDir("broken"))
	require.Error(t, err)

	var errs []CLIError
	resp := decodeData(t, out, &errs)
	assert.Equal(t, "error", resp.Status)
	require.Len(t, errs, 2)
	assert.Equal(t, ErrCodeMalformed, resp.Error.Code)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, _, err := execute(t, "validate", "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	_, _, err := execute(t, "validate", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
}

func TestValidateEmptyConfiguration(t *testing.T) {
	dir := writeDesign(t, `package x

design: workload: gemm: configuration: {}
`)
	out, _, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeIncomplete)
}
