package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/archgen/internal/testutil"
)

func writeDesign(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "design.cue"), []byte(src), 0644))
	return dir
}

func TestLoadDesign(t *testing.T) {
	res, errs := LoadDesign(designDir("gemm"), LoadModeFailFast, testutil.QuietLogger())
	require.Empty(t, errs)
	require.NotNil(t, res.Session)
	assert.Equal(t, 1, res.FileCount)
	assert.Equal(t, "gemm", res.Session.Name())
	assert.Len(t, res.Session.Events(), 1)
	assert.Len(t, res.Session.Metrics(), 2)
}

func TestLoadDesignDefaultsNameToDirectory(t *testing.T) {
	res, errs := LoadDesign(designDir("mixed"), LoadModeFailFast, testutil.QuietLogger())
	require.Empty(t, errs)
	assert.Equal(t, "mixed", res.Session.Name())
}

func TestLoadDesignErrors(t *testing.T) {
	tests := []struct {
		name string
		dir  func(t *testing.T) string
		code string
	}{
		{"missing directory", func(*testing.T) string { return "/nonexistent/design" }, ErrCodeNotFound},
		{"file not directory", func(*testing.T) string { return filepath.Join(designDir("gemm"), "design.cue") }, ErrCodeNotFound},
		{"no cue files", func(t *testing.T) string { return t.TempDir() }, ErrCodeNoFiles},
		{"syntax error", func(t *testing.T) string { return writeDesign(t, "package x\n\ndesign: {") }, ErrCodeLoadFailed},
		{"no design struct", func(t *testing.T) string { return writeDesign(t, "package x\n\nother: 1\n") }, ErrCodeNoDesign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := LoadDesign(tt.dir(t), LoadModeFailFast, testutil.QuietLogger())
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.code, MapErrorCode(errs[0]))
		})
	}
}

func TestLoadDesignModes(t *testing.T) {
	res, errs := LoadDesign(designDir("broken"), LoadModeFailFast, testutil.QuietLogger())
	require.NotNil(t, res)
	assert.Nil(t, res.Session)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrCodeMalformed, MapErrorCode(errs[0]))

	res, errs = LoadDesign(designDir("broken"), LoadModeCollectAll, testutil.QuietLogger())
	require.NotNil(t, res)
	assert.Nil(t, res.Session)
	require.Len(t, errs, 2)
	assert.Equal(t, ErrCodeMalformed, MapErrorCode(errs[0]))
	assert.Equal(t, ErrCodeConstraint, MapErrorCode(errs[1]))
}

func TestToCLIErrorKeepsPosition(t *testing.T) {
	dir := writeDesign(t, `package x

design: architecture: module: pe: {
	instance: [1]
}
`)
	_, errs := LoadDesign(dir, LoadModeFailFast, testutil.QuietLogger())
	require.Len(t, errs, 1)

	e := toCLIError(errs[0])
	assert.Equal(t, ErrCodeMalformed, e.Code)
	assert.Contains(t, e.Message, "module.pe.tag")
	details, ok := e.Details.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details["file"], "design.cue")
	assert.Greater(t, details["line"], 0)
}
