package compiler

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/archgen/internal/ir"
)

func TestExpressionEval(t *testing.T) {
	ctx := cuecontext.New()

	tests := []struct {
		name string
		src  string
		vars []string
		args []ir.IRValue
		want ir.IRValue
	}{
		{"int arithmetic", "x * 2 + 1", []string{"x"}, []ir.IRValue{ir.IRInt(4)}, ir.IRInt(9)},
		{"division is float", "x / 2", []string{"x"}, []ir.IRValue{ir.IRInt(8)}, ir.IRFloat(4)},
		{"float stays float", "x * 2", []string{"x"}, []ir.IRValue{ir.IRFloat(1.5)}, ir.IRFloat(3)},
		{"builtin mod", "mod(i, 2) == 0", []string{"i"}, []ir.IRValue{ir.IRInt(4)}, ir.IRBool(true)},
		{"list index", "src[1] == trg", []string{"src", "trg"},
			[]ir.IRValue{ir.IRArray{ir.IRInt(1), ir.IRInt(2)}, ir.IRInt(2)}, ir.IRBool(true)},
		{"string concat", `x + "-lp"`, []string{"x"}, []ir.IRValue{ir.IRString("sram")}, ir.IRString("sram-lp")},
		{"list result", "[x, x * 2]", []string{"x"}, []ir.IRValue{ir.IRInt(3)},
			ir.IRArray{ir.IRInt(3), ir.IRInt(6)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := compileExpression(ctx, tt.src, tt.vars...)
			require.NoError(t, err)
			got, err := e.eval(tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpressionReuse(t *testing.T) {
	e, err := compileExpression(cuecontext.New(), "x + 1", "x")
	require.NoError(t, err)

	for n := int64(0); n < 3; n++ {
		got, err := e.eval(ir.IRInt(n))
		require.NoError(t, err)
		assert.Equal(t, ir.IRInt(n+1), got)
	}
}

func TestExpressionErrors(t *testing.T) {
	ctx := cuecontext.New()

	_, err := compileExpression(ctx, "   ", "x")
	assert.Error(t, err)

	_, err = compileExpression(ctx, "x +", "x")
	assert.Error(t, err)

	e, err := compileExpression(ctx, "x + 1", "x")
	require.NoError(t, err)
	_, err = e.eval()
	assert.Error(t, err, "missing argument")

	_, err = e.evalBool(ir.IRInt(1))
	assert.ErrorContains(t, err, "want bool")

	_, err = e.eval(ir.IRString("a"))
	assert.Error(t, err, "mismatched operand types")
}

func TestPredicates(t *testing.T) {
	ctx := cuecontext.New()

	idx, err := indexPredicate(ctx, "i < 2")
	require.NoError(t, err)
	ok, err := idx(1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = idx(2)
	require.NoError(t, err)
	assert.False(t, ok)

	cmp, err := comparisonPredicate(ctx, "src * 2 == trg")
	require.NoError(t, err)
	ok, err = cmp(ir.IRInt(4), ir.IRInt(8))
	require.NoError(t, err)
	assert.True(t, ok)

	step, err := stepFunc(ctx, "x * 2")
	require.NoError(t, err)
	next, err := step(ir.IRInt(16))
	require.NoError(t, err)
	assert.Equal(t, ir.IRInt(32), next)

	test, err := testFunc(ctx, "x <= 64")
	require.NoError(t, err)
	ok, err = test(ir.IRInt(128))
	require.NoError(t, err)
	assert.False(t, ok)
}
