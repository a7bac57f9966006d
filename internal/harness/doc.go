// Package harness runs design conformance scenarios.
//
// A scenario names a design directory, the limits to enumerate it under,
// and what the enumeration must produce. Each run compiles the design,
// validates the session, and enumerates it in memory; nothing is written
// to disk.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: sram
//	description: "depth is always twice the width"
//	design: ../../../../testdata/designs/sram
//	limits:
//	  max_configurations: 100
//	expect:
//	  architectures: 4
//	  workloads: 1
//	  configurations: 4
//	  mixed: false
//	assertions:
//	  - type: contains
//	    catalog: architecture
//	    where: { module.sram.query.width: 8, module.sram.query.depth: 16 }
//	  - type: absent
//	    catalog: architecture
//	    where: { module.sram.query.width: 8, module.sram.query.depth: 8 }
//
// A scenario that must fail names the error instead of counts:
//
//	expect:
//	  error: LENGTH_MISMATCH
//
// Error names are design error codes (LENGTH_MISMATCH, INDEX_OUT_OF_RANGE, ...)
// or one of "compile", "limit", and "collision".
//
// # Assertion Types
//
//   - contains: some entry of the catalog matches every where path
//   - absent: no entry of the catalog matches every where path
//   - paired: some configuration pairs an architecture matching
//     architecture with a workload matching workload
//
// Where paths are dotted document paths; values are compared as IR values,
// so YAML 8 matches an integer field and 0.9 a float field.
//
// # Golden Files
//
// RunWithGolden snapshots the catalogs and pairs as canonical JSON under
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
