package harness

import (
	"context"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/archgen/internal/enumerate"
	"github.com/roach88/archgen/internal/ir"
)

// Snapshot is the golden form of a run: the scenario name plus the
// catalogs and pairs in emission order.
func Snapshot(name string, res *enumerate.Result) ir.IRObject {
	snap := res.Snapshot()
	snap["name"] = ir.IRString(name)
	return snap
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot run or did not enumerate.
// Golden mismatches fail t through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if result.Enumeration == nil {
		return result, fmt.Errorf("scenario %s did not enumerate: %v", scenario.Name, result.Err)
	}

	data, err := ir.MarshalCanonical(Snapshot(scenario.Name, result.Enumeration))
	if err != nil {
		return result, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return result, nil
}
