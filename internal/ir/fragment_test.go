package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreePath(t *testing.T) {
	tests := []struct {
		kind     FieldKind
		ref      FieldRef
		expected []string
	}{
		{KindAttribute, Ref(AttributeOwner, "technology"), []string{"attribute", "technology"}},
		{KindInstance, Ref("mult", "instance"), []string{"module", "mult", "instance"}},
		{KindTag, Ref("mult", "tag"), []string{"module", "mult", "tag"}},
		{KindQuery, Ref("mult", "width"), []string{"module", "mult", "query", "width"}},
		{KindConfiguration, Ref("gemm", "m"), []string{"gemm", "configuration", "m"}},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, TreePath(tt.kind, tt.ref))
		})
	}
}

func TestFragmentSetBuildsDocumentShape(t *testing.T) {
	f := NewFragment()
	require.NoError(t, f.Set(KindInstance, Ref("mult", "instance"), IRArray{IRInt(4)}))
	require.NoError(t, f.Set(KindQuery, Ref("mult", "width"), IRInt(8)))
	require.NoError(t, f.Set(KindConfiguration, Ref("gemm", "m"), IRInt(64)))

	assert.Equal(t, IRObject{
		"module": IRObject{
			"mult": IRObject{
				"instance": IRArray{IRInt(4)},
				"query":    IRObject{"width": IRInt(8)},
			},
		},
	}, f.Architecture)
	assert.Equal(t, IRObject{
		"gemm": IRObject{"configuration": IRObject{"m": IRInt(64)}},
	}, f.Workload)
	assert.True(t, f.HasArchitecture())
	assert.True(t, f.HasWorkload())
}

func TestFragmentSetSameValueIsNoop(t *testing.T) {
	f := NewFragment()
	require.NoError(t, f.Set(KindAttribute, Ref(AttributeOwner, "technology"), IRInt(45)))
	require.NoError(t, f.Set(KindAttribute, Ref(AttributeOwner, "technology"), IRInt(45)))
}

func TestFragmentSetCollision(t *testing.T) {
	f := NewFragment()
	require.NoError(t, f.Set(KindAttribute, Ref(AttributeOwner, "technology"), IRInt(45)))

	err := f.Set(KindAttribute, Ref(AttributeOwner, "technology"), IRInt(7))
	require.Error(t, err)

	var mce *MergeCollisionError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, "architecture.attribute.technology", mce.Path)
	assert.Equal(t, IRInt(45), mce.Existing)
	assert.Equal(t, IRInt(7), mce.Incoming)
}

func TestFragmentMergeUnion(t *testing.T) {
	a := NewFragment()
	require.NoError(t, a.Set(KindInstance, Ref("mult", "instance"), IRArray{IRInt(2)}))
	b := NewFragment()
	require.NoError(t, b.Set(KindTag, Ref("mult", "tag"), IRArray{IRString("mult")}))
	require.NoError(t, b.Set(KindConfiguration, Ref("gemm", "k"), IRInt(32)))

	merged, err := a.Merge(b)
	require.NoError(t, err)

	assert.Equal(t, IRObject{
		"module": IRObject{"mult": IRObject{
			"instance": IRArray{IRInt(2)},
			"tag":      IRArray{IRString("mult")},
		}},
	}, merged.Architecture)
	assert.True(t, merged.HasWorkload())

	// inputs untouched
	assert.NotContains(t, a.Architecture["module"].(IRObject)["mult"].(IRObject), "tag")
	assert.False(t, a.HasWorkload())
}

func TestFragmentMergeCollisionReportsPathAndValues(t *testing.T) {
	a := NewFragment()
	require.NoError(t, a.Set(KindQuery, Ref("mult", "width"), IRInt(8)))
	b := NewFragment()
	require.NoError(t, b.Set(KindQuery, Ref("mult", "width"), IRInt(16)))

	_, err := a.Merge(b)
	require.Error(t, err)
	assert.True(t, IsMergeCollision(err))
	assert.Contains(t, err.Error(), "architecture.module.mult.query.width")
	assert.Contains(t, err.Error(), "8")
	assert.Contains(t, err.Error(), "16")
}

func TestFragmentMergeEqualValuesAllowed(t *testing.T) {
	a := NewFragment()
	require.NoError(t, a.Set(KindConfiguration, Ref("gemm", "m"), IRInt(64)))

	merged, err := a.Merge(a.Clone())
	require.NoError(t, err)
	assert.Equal(t, a, merged)
}

func TestFragmentEmpty(t *testing.T) {
	f := NewFragment()
	assert.True(t, f.IsEmpty())

	var zero Fragment
	require.NoError(t, zero.Set(KindAttribute, Ref(AttributeOwner, "voltage"), IRFloat(0.9)))
	assert.False(t, zero.IsEmpty())
}
