package eager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/tensor"
)

// stagedAttrs stages attributes through an Op and returns the kernel-side
// view, so getters are tested against the same path kernels use.
func stagedAttrs(t *testing.T, stage func(op *Op)) *Attrs {
	t.Helper()
	ctx := newTestContext(t)
	op, err := NewOp(ctx, "Identity")
	require.NoError(t, err)
	t.Cleanup(op.Release)
	stage(op)
	return &Attrs{m: op.attrs}
}

func TestAttrs_ScalarKinds(t *testing.T) {
	a := stagedAttrs(t, func(op *Op) {
		require.NoError(t, op.SetAttrString("name", "conv1"))
		require.NoError(t, op.SetAttrInt("axis", -2))
		require.NoError(t, op.SetAttrFloat("epsilon", 1e-5))
		require.NoError(t, op.SetAttrBool("transpose_a", true))
		require.NoError(t, op.SetAttrType("T", tensor.Float32))
	})

	s, err := a.String("name")
	require.NoError(t, err)
	assert.Equal(t, "conv1", s)

	i, err := a.Int("axis")
	require.NoError(t, err)
	assert.Equal(t, int64(-2), i)

	f, err := a.Float("epsilon")
	require.NoError(t, err)
	assert.Equal(t, float32(1e-5), f)

	b, err := a.Bool("transpose_a")
	require.NoError(t, err)
	assert.True(t, b)

	dt, err := a.Type("T")
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, dt)
}

func TestAttrs_ListKinds(t *testing.T) {
	a := stagedAttrs(t, func(op *Op) {
		require.NoError(t, op.SetAttrStringList("names", []string{"a", "b"}))
		require.NoError(t, op.SetAttrIntList("strides", []int64{1, 2, 2, 1}))
		require.NoError(t, op.SetAttrFloatList("scales", []float32{0.5, 2}))
		require.NoError(t, op.SetAttrBoolList("mask", []bool{true, false}))
		require.NoError(t, op.SetAttrTypeList("Ts", []tensor.DataType{tensor.Int32, tensor.Bool}))
	})

	ss, err := a.StringList("names")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ss)

	is, err := a.IntList("strides")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 2, 1}, is)

	fs, err := a.FloatList("scales")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 2}, fs)

	bs, err := a.BoolList("mask")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, bs)

	dts, err := a.TypeList("Ts")
	require.NoError(t, err)
	assert.Equal(t, []tensor.DataType{tensor.Int32, tensor.Bool}, dts)
}

func TestAttrs_ShapeKinds(t *testing.T) {
	a := stagedAttrs(t, func(op *Op) {
		require.NoError(t, op.SetAttrShape("shape", MakeShape(2, -1)))
		require.NoError(t, op.SetAttrShapeList("shapes", []PartialShape{
			MakeShape(3), UnknownShape(),
		}))
	})

	ps, err := a.Shape("shape")
	require.NoError(t, err)
	assert.True(t, ps.Equal(MakeShape(2, -1)))

	pss, err := a.ShapeList("shapes")
	require.NoError(t, err)
	require.Len(t, pss, 2)
	assert.True(t, pss[0].Equal(MakeShape(3)))
	assert.True(t, pss[1].UnknownRank())
}

func TestAttrs_TensorKind(t *testing.T) {
	raw, err := tensor.FromSlice([]float32{7}, tensor.Shape{}, tensor.CPU)
	require.NoError(t, err)

	a := stagedAttrs(t, func(op *Op) {
		require.NoError(t, op.SetAttrTensor("value", raw))
		// The descriptor took a copy; the original is ours to release.
		raw.Release()
	})

	got, err := a.Tensor("value")
	require.NoError(t, err)
	assert.Equal(t, []float32{7}, got.AsFloat32())
}

func TestAttrs_MissingAndWrongKind(t *testing.T) {
	a := stagedAttrs(t, func(op *Op) {
		require.NoError(t, op.SetAttrInt("axis", 1))
	})

	_, err := a.Int("missing")
	assert.Equal(t, NotFound, CodeOf(err))

	_, err = a.String("axis")
	assert.Equal(t, InvalidArgument, CodeOf(err))

	assert.True(t, a.Has("axis"))
	assert.False(t, a.Has("missing"))
}

func TestAttrs_Defaults(t *testing.T) {
	a := stagedAttrs(t, func(op *Op) {
		require.NoError(t, op.SetAttrInt("axis", 3))
	})

	i, err := a.IntOrDefault("axis", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), i)

	i, err = a.IntOrDefault("missing", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), i)

	b, err := a.BoolOrDefault("missing", true)
	require.NoError(t, err)
	assert.True(t, b)
}

// TestAttrs_LastSetWins covers re-staging a name, including across kinds.
func TestAttrs_LastSetWins(t *testing.T) {
	a := stagedAttrs(t, func(op *Op) {
		require.NoError(t, op.SetAttrInt("x", 1))
		require.NoError(t, op.SetAttrInt("x", 2))
		require.NoError(t, op.SetAttrString("x", "final"))
	})

	_, err := a.Int("x")
	assert.Equal(t, InvalidArgument, CodeOf(err))

	s, err := a.String("x")
	require.NoError(t, err)
	assert.Equal(t, "final", s)
}
