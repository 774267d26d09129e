package eager

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/tensor"
)

// run stages and executes a single-output op in one call.
func run(t *testing.T, ctx *Context, name string, inputs []*TensorHandle, stage func(op *Op)) *TensorHandle {
	t.Helper()
	op, err := NewOp(ctx, name)
	require.NoError(t, err)
	for _, in := range inputs {
		require.NoError(t, op.AddInput(in))
	}
	if stage != nil {
		stage(op)
	}
	var out [1]*TensorHandle
	require.NoError(t, op.Execute(out[:]))
	t.Cleanup(func() { out[0].Close() })
	return out[0]
}

func resolve(t *testing.T, h *TensorHandle) *tensor.RawTensor {
	t.Helper()
	raw, err := h.Resolve()
	require.NoError(t, err)
	t.Cleanup(raw.Release)
	return raw
}

func TestExecute_AddInt32(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []int32{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)
	defer x.Close()

	out := run(t, ctx, "Add", []*TensorHandle{x, x}, func(op *Op) {
		require.NoError(t, op.SetAttrType("T", tensor.Int32))
	})

	assert.Equal(t, tensor.Int32, out.DataType())
	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []int32{2, 4, 6, 8}, resolve(t, out).AsInt32())
}

func TestExecute_AddBroadcast(t *testing.T) {
	ctx := newTestContext(t)

	m, err := HandleFromSlice(ctx, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	defer m.Close()
	row, err := HandleFromSlice(ctx, []float32{10, 20, 30}, tensor.Shape{1, 3})
	require.NoError(t, err)
	defer row.Close()

	out := run(t, ctx, "Add", []*TensorHandle{m, row}, nil)
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, resolve(t, out).AsFloat32())
}

func TestExecute_MatMul(t *testing.T) {
	ctx := newTestContext(t)

	a, err := HandleFromSlice(ctx, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)
	defer a.Close()
	b, err := HandleFromSlice(ctx, []float32{5, 6, 7, 8}, tensor.Shape{2, 2})
	require.NoError(t, err)
	defer b.Close()

	out := run(t, ctx, "MatMul", []*TensorHandle{a, b}, nil)
	assert.Equal(t, []float32{19, 22, 43, 50}, resolve(t, out).AsFloat32())
}

func TestExecute_MatMulBadShapes(t *testing.T) {
	ctx := newTestContext(t)

	a, err := HandleFromSlice(ctx, []float32{1, 2, 3}, tensor.Shape{1, 3})
	require.NoError(t, err)
	defer a.Close()
	b, err := HandleFromSlice(ctx, []float32{1, 2}, tensor.Shape{1, 2})
	require.NoError(t, err)
	defer b.Close()

	op, err := NewOp(ctx, "MatMul")
	require.NoError(t, err)
	require.NoError(t, op.AddInput(a))
	require.NoError(t, op.AddInput(b))

	var out [1]*TensorHandle
	err = op.Execute(out[:])
	assert.Equal(t, InvalidArgument, CodeOf(err))
	assert.Nil(t, out[0])
}

func TestExecute_ReshapeWithInference(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	defer x.Close()
	shape, err := HandleFromSlice(ctx, []int32{3, -1}, tensor.Shape{2})
	require.NoError(t, err)
	defer shape.Close()

	out := run(t, ctx, "Reshape", []*TensorHandle{x, shape}, nil)
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, resolve(t, out).AsFloat32())
}

func TestExecute_ReshapeBadTarget(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []float32{1, 2, 3, 4}, tensor.Shape{4})
	require.NoError(t, err)
	defer x.Close()

	for _, target := range [][]int32{{3}, {-1, -1}, {0, -1}} {
		shape, err := HandleFromSlice(ctx, target, tensor.Shape{len(target)})
		require.NoError(t, err)

		op, err := NewOp(ctx, "Reshape")
		require.NoError(t, err)
		require.NoError(t, op.AddInput(x))
		require.NoError(t, op.AddInput(shape))

		var out [1]*TensorHandle
		err = op.Execute(out[:])
		assert.Equal(t, InvalidArgument, CodeOf(err), "target %v", target)
		shape.Close()
	}
}

func TestExecute_Transpose(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	defer x.Close()

	out := run(t, ctx, "Transpose", []*TensorHandle{x}, func(op *Op) {
		require.NoError(t, op.SetAttrIntList("perm", []int64{1, 0}))
	})
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, resolve(t, out).AsFloat32())
}

func TestExecute_Cast(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []int32{1, 0, -3}, tensor.Shape{3})
	require.NoError(t, err)
	defer x.Close()

	out := run(t, ctx, "Cast", []*TensorHandle{x}, func(op *Op) {
		require.NoError(t, op.SetAttrType("SrcT", tensor.Int32))
		require.NoError(t, op.SetAttrType("DstT", tensor.Float32))
	})
	assert.Equal(t, tensor.Float32, out.DataType())
	assert.Equal(t, []float32{1, 0, -3}, resolve(t, out).AsFloat32())
}

func TestExecute_SoftmaxRowsSumToOne(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []float32{1, 2, 3, 1, 1, 1}, tensor.Shape{2, 3})
	require.NoError(t, err)
	defer x.Close()

	out := run(t, ctx, "Softmax", []*TensorHandle{x}, nil)
	data := resolve(t, out).AsFloat32()
	for row := 0; row < 2; row++ {
		var sum float64
		for col := 0; col < 3; col++ {
			sum += float64(data[row*3+col])
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	}
}

func TestExecute_SumAllAndAxis(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	defer x.Close()

	total := run(t, ctx, "Sum", []*TensorHandle{x}, nil)
	assert.Equal(t, []float32{21}, resolve(t, total).AsFloat32())

	cols := run(t, ctx, "Sum", []*TensorHandle{x}, func(op *Op) {
		require.NoError(t, op.SetAttrInt("axis", 0))
	})
	assert.Equal(t, tensor.Shape{3}, cols.Shape())
	assert.Equal(t, []float32{5, 7, 9}, resolve(t, cols).AsFloat32())

	rows := run(t, ctx, "Sum", []*TensorHandle{x}, func(op *Op) {
		require.NoError(t, op.SetAttrInt("axis", -1))
		require.NoError(t, op.SetAttrBool("keep_dims", true))
	})
	assert.Equal(t, tensor.Shape{2, 1}, rows.Shape())
	assert.Equal(t, []float32{6, 15}, resolve(t, rows).AsFloat32())
}

func TestExecute_UnaryMath(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []float32{0, 1, 4}, tensor.Shape{3})
	require.NoError(t, err)
	defer x.Close()

	exp := resolve(t, run(t, ctx, "Exp", []*TensorHandle{x}, nil)).AsFloat32()
	assert.InDelta(t, 1, exp[0], 1e-5)
	assert.InDelta(t, math.E, exp[1], 1e-5)

	sqrt := resolve(t, run(t, ctx, "Sqrt", []*TensorHandle{x}, nil)).AsFloat32()
	assert.Equal(t, []float32{0, 1, 2}, sqrt)

	neg := resolve(t, run(t, ctx, "Neg", []*TensorHandle{x}, nil)).AsFloat32()
	assert.Equal(t, []float32{0, -1, -4}, neg)
}

func TestExecute_UnaryMathRejectsInts(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []int32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	defer x.Close()

	op, err := NewOp(ctx, "Exp")
	require.NoError(t, err)
	require.NoError(t, op.AddInput(x))

	var out [1]*TensorHandle
	assert.Equal(t, InvalidArgument, CodeOf(op.Execute(out[:])))
}

func TestExecute_Comparisons(t *testing.T) {
	ctx := newTestContext(t)

	a, err := HandleFromSlice(ctx, []int32{1, 5, 3}, tensor.Shape{3})
	require.NoError(t, err)
	defer a.Close()
	b, err := HandleFromSlice(ctx, []int32{1, 2, 9}, tensor.Shape{3})
	require.NoError(t, err)
	defer b.Close()

	eq := run(t, ctx, "Equal", []*TensorHandle{a, b}, nil)
	assert.Equal(t, tensor.Bool, eq.DataType())
	assert.Equal(t, []bool{true, false, false}, resolve(t, eq).AsBool())

	gt := run(t, ctx, "Greater", []*TensorHandle{a, b}, nil)
	assert.Equal(t, []bool{false, true, false}, resolve(t, gt).AsBool())
}

// TestExecute_ComparisonShapeMismatch covers that comparisons reject
// differing shapes up front. They do not broadcast, and the rejection must
// happen before backend dispatch.
func TestExecute_ComparisonShapeMismatch(t *testing.T) {
	ctx := newTestContext(t)

	a, err := HandleFromSlice(ctx, []int32{1, 2, 3}, tensor.Shape{3})
	require.NoError(t, err)
	defer a.Close()
	b, err := HandleFromSlice(ctx, []int32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	defer b.Close()

	for _, name := range []string{"Equal", "Greater"} {
		op, err := NewOp(ctx, name)
		require.NoError(t, err)
		require.NoError(t, op.AddInput(a))
		require.NoError(t, op.AddInput(b))

		var out [1]*TensorHandle
		assert.Equal(t, InvalidArgument, CodeOf(op.Execute(out[:])), "op %s", name)
		assert.Nil(t, out[0])
	}
	assert.Equal(t, 0, ctx.LiveOps())
}

// TestExecute_IntegerDivisionByZero covers that a zero in an integer
// divisor surfaces as a status error instead of a runtime fault.
func TestExecute_IntegerDivisionByZero(t *testing.T) {
	ctx := newTestContext(t)

	num, err := HandleFromSlice(ctx, []int32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	defer num.Close()
	den, err := HandleFromSlice(ctx, []int32{0, 1}, tensor.Shape{2})
	require.NoError(t, err)
	defer den.Close()

	op, err := NewOp(ctx, "Div")
	require.NoError(t, err)
	require.NoError(t, op.AddInput(num))
	require.NoError(t, op.AddInput(den))

	var out [1]*TensorHandle
	assert.Equal(t, InvalidArgument, CodeOf(op.Execute(out[:])))
	assert.Nil(t, out[0])
	assert.Equal(t, 0, ctx.LiveOps())

	// Non-zero integer divisors still divide.
	ok, err := HandleFromSlice(ctx, []int32{2, 1}, tensor.Shape{2})
	require.NoError(t, err)
	defer ok.Close()
	quot := run(t, ctx, "Div", []*TensorHandle{num, ok}, nil)
	assert.Equal(t, []int32{0, 2}, resolve(t, quot).AsInt32())
}

// TestExecute_FloatDivisionByZero keeps IEEE semantics: float division by
// zero yields infinities, not an error.
func TestExecute_FloatDivisionByZero(t *testing.T) {
	ctx := newTestContext(t)

	num, err := HandleFromSlice(ctx, []float32{1, -1}, tensor.Shape{2})
	require.NoError(t, err)
	defer num.Close()
	den, err := HandleFromSlice(ctx, []float32{0, 0}, tensor.Shape{2})
	require.NoError(t, err)
	defer den.Close()

	quot := run(t, ctx, "Div", []*TensorHandle{num, den}, nil)
	data := resolve(t, quot).AsFloat32()
	assert.True(t, math.IsInf(float64(data[0]), 1))
	assert.True(t, math.IsInf(float64(data[1]), -1))
}

func TestExecute_Fill(t *testing.T) {
	ctx := newTestContext(t)

	value, err := tensor.FromSlice([]float32{2.5}, tensor.Shape{}, tensor.CPU)
	require.NoError(t, err)

	out := run(t, ctx, "Fill", nil, func(op *Op) {
		require.NoError(t, op.SetAttrShape("shape", MakeShape(2, 3)))
		require.NoError(t, op.SetAttrTensor("value", value))
		value.Release()
	})
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assert.Equal(t, []float32{2.5, 2.5, 2.5, 2.5, 2.5, 2.5}, resolve(t, out).AsFloat32())
}

func TestExecute_FillNeedsDefinedShape(t *testing.T) {
	ctx := newTestContext(t)

	value, err := tensor.FromSlice([]float32{1}, tensor.Shape{}, tensor.CPU)
	require.NoError(t, err)
	defer value.Release()

	op, err := NewOp(ctx, "Fill")
	require.NoError(t, err)
	require.NoError(t, op.SetAttrShape("shape", MakeShape(2, -1)))
	require.NoError(t, op.SetAttrTensor("value", value))

	var out [1]*TensorHandle
	assert.Equal(t, InvalidArgument, CodeOf(op.Execute(out[:])))
}

func TestExecute_EnsureShape(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	defer x.Close()

	out := run(t, ctx, "EnsureShape", []*TensorHandle{x}, func(op *Op) {
		require.NoError(t, op.SetAttrShape("shape", MakeShape(2, -1)))
	})
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())

	op, err := NewOp(ctx, "EnsureShape")
	require.NoError(t, err)
	require.NoError(t, op.AddInput(x))
	require.NoError(t, op.SetAttrShape("shape", MakeShape(4, -1)))
	var bad [1]*TensorHandle
	assert.Equal(t, InvalidArgument, CodeOf(op.Execute(bad[:])))
}

func TestExecute_InputCountBounds(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []int32{1}, tensor.Shape{1})
	require.NoError(t, err)
	defer x.Close()

	// Too few.
	op, err := NewOp(ctx, "Add")
	require.NoError(t, err)
	require.NoError(t, op.AddInput(x))
	var out [1]*TensorHandle
	assert.Equal(t, InvalidArgument, CodeOf(op.Execute(out[:])))

	// Too many.
	op, err = NewOp(ctx, "Identity")
	require.NoError(t, err)
	require.NoError(t, op.AddInput(x))
	require.NoError(t, op.AddInput(x))
	assert.Equal(t, InvalidArgument, CodeOf(op.Execute(out[:])))
}

func TestExecute_OutputSlotMismatch(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []int32{1}, tensor.Shape{1})
	require.NoError(t, err)
	defer x.Close()

	op, err := NewOp(ctx, "Identity")
	require.NoError(t, err)
	require.NoError(t, op.AddInput(x))

	var out [2]*TensorHandle
	assert.Equal(t, InvalidArgument, CodeOf(op.Execute(out[:])))
}

func TestExecute_TypeAttrMismatch(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []int32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	defer x.Close()

	op, err := NewOp(ctx, "Add")
	require.NoError(t, err)
	require.NoError(t, op.AddInput(x))
	require.NoError(t, op.AddInput(x))
	require.NoError(t, op.SetAttrType("T", tensor.Float32))

	var out [1]*TensorHandle
	assert.Equal(t, InvalidArgument, CodeOf(op.Execute(out[:])))
}

func TestExecute_ClosedInput(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []int32{1}, tensor.Shape{1})
	require.NoError(t, err)

	op, err := NewOp(ctx, "Identity")
	require.NoError(t, err)
	require.NoError(t, op.AddInput(x))
	require.NoError(t, x.Close())

	var out [1]*TensorHandle
	assert.Equal(t, FailedPrecondition, CodeOf(op.Execute(out[:])))
}

func TestExecute_ClosedContext(t *testing.T) {
	ctx, err := NewContext(ContextOptions{})
	require.NoError(t, err)

	op, err := NewOp(ctx, "Fill")
	require.NoError(t, err)
	require.NoError(t, ctx.Close())

	var out [1]*TensorHandle
	assert.Equal(t, FailedPrecondition, CodeOf(op.Execute(out[:])))
}

// TestExecute_NoLeakOnFailure runs several failing executions and checks
// that every descriptor and handle is accounted for afterwards.
func TestExecute_NoLeakOnFailure(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []float32{1, 2, 3}, tensor.Shape{1, 3})
	require.NoError(t, err)
	y, err := HandleFromSlice(ctx, []float32{1, 2}, tensor.Shape{1, 2})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		op, err := NewOp(ctx, "MatMul")
		require.NoError(t, err)
		require.NoError(t, op.AddInput(x))
		require.NoError(t, op.AddInput(y))

		var out [1]*TensorHandle
		require.Error(t, op.Execute(out[:]))
		assert.Nil(t, out[0])
	}

	assert.Equal(t, 0, ctx.LiveOps())
	assert.Equal(t, 2, ctx.LiveHandles())
	require.NoError(t, x.Close())
	require.NoError(t, y.Close())
	assert.Equal(t, 0, ctx.LiveHandles())
}

func TestHandle_ResolveIsIndependent(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []float32{1, 2}, tensor.Shape{2})
	require.NoError(t, err)
	defer x.Close()

	raw := resolve(t, x)
	raw.AsFloat32()[0] = 99

	again := resolve(t, x)
	assert.Equal(t, []float32{1, 2}, again.AsFloat32())
}

func TestHandle_CloseIdempotentAndCopySharing(t *testing.T) {
	ctx := newTestContext(t)

	x, err := HandleFromSlice(ctx, []int32{7}, tensor.Shape{1})
	require.NoError(t, err)
	assert.Equal(t, 1, ctx.LiveHandles())

	shared, err := x.CopySharingTensor()
	require.NoError(t, err)
	assert.Equal(t, 2, ctx.LiveHandles())

	require.NoError(t, x.Close())
	require.NoError(t, x.Close())
	assert.Equal(t, 1, ctx.LiveHandles())

	// The sibling still reads the shared storage.
	assert.Equal(t, []int32{7}, resolve(t, shared).AsInt32())
	require.NoError(t, shared.Close())
	assert.Equal(t, 0, ctx.LiveHandles())
}
