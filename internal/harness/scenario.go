package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines a design conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Design is the directory of the CUE design to enumerate.
	// Relative paths are resolved against the scenario file location.
	Design string `yaml:"design"`

	// Limits overrides the enumeration caps. Zero values keep the defaults.
	Limits Limits `yaml:"limits,omitempty"`

	// Expect is the overall outcome.
	Expect Expect `yaml:"expect"`

	// Assertions inspect the catalogs of a successful run.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Limits are the enumeration caps for one scenario.
type Limits struct {
	MaxConfigurations int `yaml:"max_configurations,omitempty"`
	MaxFragments      int `yaml:"max_fragments,omitempty"`
}

// Expect is the expected outcome of a scenario. Error excludes the counts.
type Expect struct {
	Error          string `yaml:"error,omitempty"`
	Architectures  *int   `yaml:"architectures,omitempty"`
	Workloads      *int   `yaml:"workloads,omitempty"`
	Configurations *int   `yaml:"configurations,omitempty"`
	Mixed          *bool  `yaml:"mixed,omitempty"`
}

// Assertion inspects the result of a successful run.
type Assertion struct {
	// Type is one of contains, absent, or paired.
	Type string `yaml:"type"`

	// Catalog is architecture or workload (contains, absent).
	Catalog string `yaml:"catalog,omitempty"`

	// Where maps dotted document paths to values (contains, absent).
	Where map[string]any `yaml:"where,omitempty"`

	// Architecture and Workload match the two sides of one
	// configuration (paired).
	Architecture map[string]any `yaml:"architecture,omitempty"`
	Workload     map[string]any `yaml:"workload,omitempty"`
}

// Assertion type constants.
const (
	AssertContains = "contains"
	AssertAbsent   = "absent"
	AssertPaired   = "paired"
)

// Catalog names.
const (
	CatalogArchitecture = "architecture"
	CatalogWorkload     = "workload"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict fields catch typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Design != "" && !filepath.IsAbs(scenario.Design) {
		scenario.Design = filepath.Join(filepath.Dir(path), scenario.Design)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, ordered by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	names := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if prev, ok := names[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario %q already defined in %s", filepath.Base(path), s.Name, prev)
		}
		names[s.Name] = filepath.Base(path)
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Design == "" {
		return fmt.Errorf("design is required")
	}
	if info, err := os.Stat(s.Design); err != nil || !info.IsDir() {
		return fmt.Errorf("design directory not found: %s", s.Design)
	}
	if s.Limits.MaxConfigurations < 0 || s.Limits.MaxFragments < 0 {
		return fmt.Errorf("limits must not be negative")
	}

	e := s.Expect
	if e.Error != "" {
		if e.Architectures != nil || e.Workloads != nil || e.Configurations != nil || e.Mixed != nil {
			return fmt.Errorf("expect: error excludes counts")
		}
		if len(s.Assertions) > 0 {
			return fmt.Errorf("assertions require a successful run")
		}
	} else if e.Architectures == nil && e.Workloads == nil && e.Configurations == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or assertions must check something")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertContains, AssertAbsent:
		if !slices.Contains([]string{CatalogArchitecture, CatalogWorkload}, a.Catalog) {
			return fmt.Errorf("assertions[%d]: catalog must be %q or %q for %s",
				index, CatalogArchitecture, CatalogWorkload, a.Type)
		}
		if len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for %s", index, a.Type)
		}
	case AssertPaired:
		if len(a.Architecture) == 0 && len(a.Workload) == 0 {
			return fmt.Errorf("assertions[%d]: architecture or workload is required for paired", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
