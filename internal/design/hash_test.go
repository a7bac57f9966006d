package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/archgen/internal/ir"
)

func buildHashed(t *testing.T, name string, depth []int64) *Session {
	t.Helper()
	s := NewSession(name, WithSessionLogger(quietSession(t).logger))
	require.NoError(t, s.DeclareAttribute("width", Sweep(ints(4, 8)...)))
	require.NoError(t, s.DeclareAttribute("depth", Sweep(ints(depth...)...)))
	require.NoError(t, s.AddConstraint(Direct, ir.Ref(ir.AttributeOwner, "width"), ir.Ref(ir.AttributeOwner, "depth"), NoCondition{}))
	return s
}

func TestHashIgnoresName(t *testing.T) {
	a, err := buildHashed(t, "first", []int64{8, 16}).Hash()
	require.NoError(t, err)
	b, err := buildHashed(t, "second", []int64{8, 16}).Hash()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestHashTracksDomains(t *testing.T) {
	a, err := buildHashed(t, "d", []int64{8, 16}).Hash()
	require.NoError(t, err)
	b, err := buildHashed(t, "d", []int64{8, 32}).Hash()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDescribeListsResolvedPairs(t *testing.T) {
	d := buildHashed(t, "d", []int64{8, 16}).Describe()

	constraints := d["constraints"].(ir.IRArray)
	require.Len(t, constraints, 1)
	c := constraints[0].(ir.IRObject)
	assert.Equal(t, ir.IRString("direct"), c["kind"])
	assert.Equal(t, ir.IRString("attribute.width"), c["source"])
	assert.Equal(t, ir.IRArray{
		ir.IRArray{ir.IRInt(0), ir.IRInt(0)},
		ir.IRArray{ir.IRInt(1), ir.IRInt(1)},
	}, c["pairs"])
	assert.Len(t, d["parameters"].(ir.IRArray), 2)
}
