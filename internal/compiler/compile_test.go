package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/archgen/internal/design"
	"github.com/roach88/archgen/internal/ir"
	"github.com/roach88/archgen/internal/testutil"
)

func compileDesign(t *testing.T, src string, opts ...Option) (*design.Session, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	opts = append([]Option{WithLogger(testutil.QuietLogger())}, opts...)
	return Compile(v.LookupPath(cue.ParsePath("design")), opts...)
}

func requireSameDesign(t *testing.T, want, got *design.Session) {
	t.Helper()
	wh, err := want.Hash()
	require.NoError(t, err)
	gh, err := got.Hash()
	require.NoError(t, err)
	assert.Equal(t, ir.String(want.Describe()), ir.String(got.Describe()))
	assert.Equal(t, wh, gh)
}

const gemm = `
	workload: gemm: configuration: m: 64
`

func TestCompileScenarioA(t *testing.T) {
	s, err := compileDesign(t, `
		design: {
			name: "scenario-a"
			architecture: {
				attribute: technology: 45
				module: {
					mult: {instance: {sweep: [2, 4, 8]}, tag: "mult"}
					acc: {instance: {sweep: [2, 4, 8]}, tag: ["acc"]}
				}
			}
			`+gemm+`
			constraint: [{
				kind:   "direct"
				source: {owner: "mult", field: "instance"}
				target: {owner: "acc", field: "instance"}
			}]
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, "scenario-a", s.Name())
	requireSameDesign(t, testutil.ScenarioA(t), s)
}

func TestCompileScenarioB(t *testing.T) {
	s, err := compileDesign(t, `
		design: {
			architecture: module: sram: {
				instance: [1]
				tag: "memory"
				query: {
					width: {sweep: [4, 8, 16, 32]}
					depth: {sweep: [8, 16, 32, 64]}
				}
			}
			`+gemm+`
			constraint: [{
				source:  {owner: "sram", field: "width"}
				target:  {owner: "sram", field: "depth"}
				compare: "src * 2 == trg"
			}]
		}
	`)
	require.NoError(t, err)
	requireSameDesign(t, testutil.ScenarioB(t), s)
}

func TestCompileScenarioC(t *testing.T) {
	s, err := compileDesign(t, `
		design: {
			architecture: attribute: frequency: {sweep: [500, 1000, 2000]}
			workload: gemm: configuration: m: {sweep: [16, 32, 64]}
		}
	`)
	require.NoError(t, err)
	requireSameDesign(t, testutil.ScenarioC(t), s)
	assert.Equal(t, 9, s.Stats().NaiveSpace)
}

func TestCompileScenarioD(t *testing.T) {
	_, err := compileDesign(t, `
		design: {
			architecture: attribute: lanes: {sweep: [1, 2, 4, 8, 16]}
			workload: gemm: configuration: tile: {sweep: [1, 2, 4]}
			constraint: [{
				source: {owner: "attribute", field: "lanes"}
				target: {owner: "gemm", field: "tile"}
			}]
		}
	`)
	require.Error(t, err)
	assert.True(t, IsCompileError(err))
	assert.True(t, design.IsConstraintError(err))
	code, ok := design.ErrorCodeOf(err)
	require.True(t, ok)
	assert.Equal(t, design.ErrCodeLengthMismatch, code)
	assert.Contains(t, err.Error(), "constraint[0]")
}

func TestCompileMixed(t *testing.T) {
	s, err := compileDesign(t, `
		design: {
			architecture: {
				attribute: technology: 45
				module: pe: {instance: [[2], [4], [8]], tag: "compute"}
			}
			workload: gemm: configuration: {
				m: 64
				tile: {sweep: [2, 4, 8]}
			}
			constraint: [{
				source:  {owner: "pe", field: "instance"}
				target:  {owner: "gemm", field: "tile"}
				compare: "src[0] == trg"
			}]
		}
	`)
	require.NoError(t, err)
	requireSameDesign(t, testutil.Mixed(t), s)
}

func TestCompileAnti(t *testing.T) {
	s, err := compileDesign(t, `
		design: {
			architecture: attribute: {
				precision: {sweep: [8, 16, 32]}
				buffer: {sweep: [256, 1024]}
			}
			`+gemm+`
			constraint: [{
				kind:    "anti"
				source:  {owner: "attribute", field: "precision"}
				target:  {owner: "attribute", field: "buffer"}
				compare: "src == 32 && trg == 256"
			}]
		}
	`)
	require.NoError(t, err)
	requireSameDesign(t, testutil.Anti(t), s)
}

func TestCompileGroupConstraint(t *testing.T) {
	s, err := compileDesign(t, `
		design: {
			architecture: module: {
				a: {instance: {sweep: [1, 2]}, tag: "a"}
				b: {instance: {sweep: [3, 4]}, tag: "b"}
				c: {instance: {sweep: [5, 6]}, tag: "c"}
			}
			constraint: [{group: {a: ["instance"], b: ["instance"], c: "instance"}}]
		}
	`)
	require.NoError(t, err)

	cs := s.Constraints()
	require.Len(t, cs, 3)
	assert.Equal(t, ir.Ref("a", "instance"), cs[0].Source)
	assert.Equal(t, ir.Ref("b", "instance"), cs[0].Target)
	assert.Equal(t, ir.Ref("a", "instance"), cs[1].Source)
	assert.Equal(t, ir.Ref("c", "instance"), cs[1].Target)
	assert.Equal(t, ir.Ref("b", "instance"), cs[2].Source)
	assert.Equal(t, ir.Ref("c", "instance"), cs[2].Target)
}

func TestCompileIndexPredicate(t *testing.T) {
	s, err := compileDesign(t, `
		design: {
			architecture: attribute: {
				x: {sweep: [1, 2, 3]}
				y: {sweep: [10, 20, 30]}
			}
			constraint: [{
				source: {owner: "attribute", field: "x"}
				target: {owner: "attribute", field: "y"}
				index:  "i == 0"
			}]
		}
	`)
	require.NoError(t, err)

	cs := s.Constraints()
	require.Len(t, cs, 1)
	assert.Equal(t, []design.Pair{
		{Src: 0, Trg: 0},
		{Src: 1, Trg: 1}, {Src: 1, Trg: 2},
		{Src: 2, Trg: 1}, {Src: 2, Trg: 2},
	}, cs[0].Pairs)
}

func TestCompileModuleNames(t *testing.T) {
	s, err := compileDesign(t, `
		design: architecture: module: lane: {
			names: ["lane0", "lane1"]
			instance: [4]
			tag: "lane"
			query: depth: 16
		}
	`)
	require.NoError(t, err)

	for _, name := range []string{"lane0", "lane1"} {
		p, ok := s.Parameter(ir.Ref(name, "depth"))
		require.True(t, ok, name)
		assert.Equal(t, ir.KindQuery, p.Kind)
		assert.False(t, p.Sweep)
	}
	_, ok := s.Parameter(ir.Ref("lane", "instance"))
	assert.False(t, ok)
}

func TestCompileEventsAndMetrics(t *testing.T) {
	s, err := compileDesign(t, `
		design: {
			event: gemm: {subevent: ["mult", "acc"], performance: "perf.py"}
			metric: energy: {unit: "nJ", aggregation: "summation"}
		}
	`)
	require.NoError(t, err)

	assert.Equal(t, []design.Event{{Name: "gemm", Subevents: []string{"mult", "acc"}, Performance: "perf.py"}}, s.Events())
	assert.Equal(t, []design.Metric{{Name: "energy", Unit: "nJ", Aggregation: "summation"}}, s.Metrics())
}

func TestCompileFloatsAndStrings(t *testing.T) {
	s, err := compileDesign(t, `
		design: architecture: attribute: {
			voltage: 0.9
			process: "7nm"
			corners: {sweep: ["ss", "tt", "ff"]}
		}
	`)
	require.NoError(t, err)

	p, ok := s.Parameter(ir.Ref(ir.AttributeOwner, "voltage"))
	require.True(t, ok)
	assert.Equal(t, ir.IRFloat(0.9), p.Value)

	p, ok = s.Parameter(ir.Ref(ir.AttributeOwner, "corners"))
	require.True(t, ok)
	assert.True(t, p.Sweep)
	assert.Equal(t, []ir.IRValue{ir.IRString("ss"), ir.IRString("tt"), ir.IRString("ff")}, p.Domain)
}

func TestCompileSweepGenerators(t *testing.T) {
	s, err := compileDesign(t, `
		design: architecture: attribute: {
			doubling: {sweep: {start: 1, step: "x * 2", while: "x <= 64"}}
			counted: {sweep: {start: 10, step: "x + 5", count: 3}}
			single: {sweep: {start: 3, step: "x * x"}}
			zipped: {sweep: {zip: [[1, 2], {start: 8, step: "x * 2", count: 2}]}}
			rows: {sweep: {start: [1, 2], step: "x * 10", count: 2}}
		}
	`)
	require.NoError(t, err)

	domain := func(field string) []ir.IRValue {
		p, ok := s.Parameter(ir.Ref(ir.AttributeOwner, field))
		require.True(t, ok, field)
		require.True(t, p.Sweep, field)
		return p.Domain
	}

	assert.Equal(t, testutil.Ints(1, 2, 4, 8, 16, 32, 64), domain("doubling"))
	assert.Equal(t, testutil.Ints(10, 15, 20), domain("counted"))
	assert.Equal(t, testutil.Ints(9), domain("single"))
	assert.Equal(t, []ir.IRValue{
		ir.IRArray{ir.IRInt(1), ir.IRInt(8)},
		ir.IRArray{ir.IRInt(2), ir.IRInt(16)},
	}, domain("zipped"))
	assert.Equal(t, []ir.IRValue{
		ir.IRArray{ir.IRInt(1), ir.IRInt(2)},
		ir.IRArray{ir.IRInt(10), ir.IRInt(20)},
	}, domain("rows"))
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{
			name:  "design not a struct",
			src:   `design: 3`,
			field: "design",
		},
		{
			name:  "missing instance",
			src:   `design: architecture: module: m: tag: "m"`,
			field: "module.m.instance",
		},
		{
			name:  "missing tag",
			src:   `design: architecture: module: m: instance: [1]`,
			field: "module.m.tag",
		},
		{
			name:  "workload without configuration",
			src:   `design: workload: gemm: {}`,
			field: "workload.gemm.configuration",
		},
		{
			name:  "sweep struct with extra field",
			src:   `design: architecture: attribute: a: {sweep: [1, 2], extra: 1}`,
			field: "attribute.a",
		},
		{
			name:  "empty sweep",
			src:   `design: architecture: attribute: a: {sweep: []}`,
			field: "attribute.a",
		},
		{
			name:  "generator without start",
			src:   `design: architecture: attribute: a: {sweep: {step: "x + 1", count: 2}}`,
			field: "attribute.a",
		},
		{
			name:  "generator with while and count",
			src:   `design: architecture: attribute: a: {sweep: {start: 1, step: "x + 1", count: 2, while: "x < 3"}}`,
			field: "attribute.a",
		},
		{
			name:  "bad step expression",
			src:   `design: architecture: attribute: a: {sweep: {start: 1, step: "x +", count: 2}}`,
			field: "attribute.a.step",
		},
		{
			name: "unknown kind",
			src: `design: {
				architecture: attribute: {a: {sweep: [1]}, b: {sweep: [2]}}
				constraint: [{kind: "sideways", source: {owner: "attribute", field: "a"}, target: {owner: "attribute", field: "b"}}]
			}`,
			field: "constraint[0].kind",
		},
		{
			name: "index and compare",
			src: `design: {
				architecture: attribute: {a: {sweep: [1]}, b: {sweep: [2]}}
				constraint: [{source: {owner: "attribute", field: "a"}, target: {owner: "attribute", field: "b"}, index: "true", compare: "true"}]
			}`,
			field: "constraint[0]",
		},
		{
			name: "missing target",
			src: `design: {
				architecture: attribute: a: {sweep: [1]}
				constraint: [{source: {owner: "attribute", field: "a"}}]
			}`,
			field: "constraint[0].target",
		},
		{
			name:  "metric without unit",
			src:   `design: metric: energy: aggregation: "summation"`,
			field: "metric.energy.unit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileDesign(t, tt.src)
			require.Error(t, err)
			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCompileDeclarationErrorsKeepCodes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code design.ErrorCode
	}{
		{
			name: "reserved owner",
			src:  `design: architecture: module: attribute: {instance: [1], tag: "x"}`,
			code: design.ErrCodeReservedName,
		},
		{
			name: "owner reused by workload",
			src: `design: {
				architecture: module: pe: {instance: [1], tag: "pe"}
				workload: pe: configuration: m: 1
			}`,
			code: design.ErrCodeDuplicateOwner,
		},
		{
			name: "constraint on fixed value",
			src: `design: {
				architecture: attribute: {a: 1, b: {sweep: [1]}}
				constraint: [{source: {owner: "attribute", field: "a"}, target: {owner: "attribute", field: "b"}}]
			}`,
			code: design.ErrCodeNotSweep,
		},
		{
			name: "anti without condition",
			src: `design: {
				architecture: attribute: {a: {sweep: [1]}, b: {sweep: [2]}}
				constraint: [{kind: "anti", source: {owner: "attribute", field: "a"}, target: {owner: "attribute", field: "b"}}]
			}`,
			code: design.ErrCodeMissingCondition,
		},
		{
			name: "conditional kind",
			src: `design: {
				architecture: attribute: {a: {sweep: [1]}, b: {sweep: [2]}}
				constraint: [{kind: "conditional", source: {owner: "attribute", field: "a"}, target: {owner: "attribute", field: "b"}, index: "true"}]
			}`,
			code: design.ErrCodeUnsupportedKind,
		},
		{
			name: "compare not a bool",
			src: `design: {
				architecture: attribute: {a: {sweep: [1, 2]}, b: {sweep: [3, 4]}}
				constraint: [{source: {owner: "attribute", field: "a"}, target: {owner: "attribute", field: "b"}, compare: "src + trg"}]
			}`,
			code: design.ErrCodePredicateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileDesign(t, tt.src)
			require.Error(t, err)
			assert.True(t, IsCompileError(err))
			code, ok := design.ErrorCodeOf(err)
			require.True(t, ok, err.Error())
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestCompileCollectAll(t *testing.T) {
	src := `
		design: {
			architecture: {
				attribute: a: {sweep: []}
				module: m: tag: "m"
			}
			metric: energy: unit: "nJ"
		}
	`

	_, err := compileDesign(t, src)
	require.Error(t, err)
	var merr *multierror.Error
	assert.False(t, errors.As(err, &merr), "fail-fast returns a single error")

	_, err = compileDesign(t, src, WithMode(CollectAll))
	require.Error(t, err)
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 3)
}

func TestCompileDefaultName(t *testing.T) {
	s, err := compileDesign(t, `design: {}`, WithName("gemm-sweep"))
	require.NoError(t, err)
	assert.Equal(t, "gemm-sweep", s.Name())
	assert.Empty(t, s.Parameters())
}
