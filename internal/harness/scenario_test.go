package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/a_gemm.yaml")
	require.NoError(t, err)

	assert.Equal(t, "gemm", s.Name)
	assert.Equal(t, filepath.Join("..", "..", "testdata", "designs", "gemm"), s.Design)
	require.NotNil(t, s.Expect.Configurations)
	assert.Equal(t, 3, *s.Expect.Configurations)
	require.NotNil(t, s.Expect.Mixed)
	assert.False(t, *s.Expect.Mixed)
	require.Len(t, s.Assertions, 4)
	assert.Equal(t, AssertContains, s.Assertions[0].Type)
	assert.Equal(t, 4, s.Assertions[0].Where["module.mult.instance"])
	assert.Equal(t, 0.9, s.Assertions[2].Where["attribute.voltage"])
}

func TestLoadScenarioLimitsAndError(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/h_limit.yaml")
	require.NoError(t, err)
	assert.Equal(t, 4, s.Limits.MaxConfigurations)
	assert.Equal(t, ErrorLimit, s.Expect.Error)
	assert.Nil(t, s.Expect.Configurations)
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	_, err := LoadScenario("testdata/invalid/typo.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertion")
}

func TestLoadScenarioMissingDesign(t *testing.T) {
	_, err := LoadScenario("testdata/invalid/missing_design.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "design directory not found")
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestValidateScenario(t *testing.T) {
	design, err := filepath.Abs("../../testdata/designs/gemm")
	require.NoError(t, err)
	three := 3

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\ndesign: " + design + "\nexpect: {configurations: 3}\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\ndesign: " + design + "\nexpect: {configurations: 3}\n",
			wantErr: "description is required",
		},
		{
			name:    "missing design",
			yaml:    "name: n\ndescription: d\nexpect: {configurations: 3}\n",
			wantErr: "design is required",
		},
		{
			name:    "nothing checked",
			yaml:    "name: n\ndescription: d\ndesign: " + design + "\n",
			wantErr: "must check something",
		},
		{
			name:    "error with counts",
			yaml:    "name: n\ndescription: d\ndesign: " + design + "\nexpect: {error: limit, configurations: 3}\n",
			wantErr: "error excludes counts",
		},
		{
			name:    "negative limit",
			yaml:    "name: n\ndescription: d\ndesign: " + design + "\nlimits: {max_fragments: -1}\nexpect: {configurations: 3}\n",
			wantErr: "must not be negative",
		},
		{
			name:    "unknown assertion type",
			yaml:    "name: n\ndescription: d\ndesign: " + design + "\nassertions: [{type: nope}]\n",
			wantErr: `unknown assertion type "nope"`,
		},
		{
			name:    "contains without catalog",
			yaml:    "name: n\ndescription: d\ndesign: " + design + "\nassertions: [{type: contains, where: {a: 1}}]\n",
			wantErr: "catalog must be",
		},
		{
			name:    "absent without where",
			yaml:    "name: n\ndescription: d\ndesign: " + design + "\nassertions: [{type: absent, catalog: workload}]\n",
			wantErr: "where is required",
		},
		{
			name:    "paired without sides",
			yaml:    "name: n\ndescription: d\ndesign: " + design + "\nassertions: [{type: paired}]\n",
			wantErr: "architecture or workload is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scenario.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid", func(t *testing.T) {
		s := &Scenario{Name: "n", Description: "d", Design: design, Expect: Expect{Configurations: &three}}
		assert.NoError(t, validateScenario(s))
	})
}

func TestLoadScenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.Len(t, scenarios, 10)
	assert.Equal(t, "gemm", scenarios[0].Name)
	assert.Equal(t, "broken", scenarios[8].Name)
	assert.Equal(t, "index", scenarios[9].Name)
}

func TestLoadScenariosRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	design, err := filepath.Abs("../../testdata/designs/sram")
	require.NoError(t, err)
	for _, name := range []string{"one.yaml", "two.yaml"} {
		content := "name: sram\ndescription: d\ndesign: " + design + "\nexpect: {configurations: 4}\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	_, err = LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defined in one.yaml")
}
