package eager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/backend/cpu"
	"github.com/ember-ml/ember/tensor"
)

func TestNewContext_Defaults(t *testing.T) {
	ctx, err := NewContext(ContextOptions{})
	require.NoError(t, err)
	defer ctx.Close()

	assert.Equal(t, []string{"/device:CPU:0"}, ctx.DeviceNames())
	assert.Contains(t, ctx.OpNames(), "Add")
	assert.Contains(t, ctx.OpNames(), "MatMul")
	assert.Equal(t, 0, ctx.LiveOps())
	assert.Equal(t, 0, ctx.LiveHandles())
}

func TestNewContext_MultipleDevices(t *testing.T) {
	ctx, err := NewContext(ContextOptions{
		Devices: []tensor.Backend{cpu.New(), cpu.New()},
	})
	require.NoError(t, err)
	defer ctx.Close()

	assert.Equal(t, []string{"/device:CPU:0", "/device:CPU:1"}, ctx.DeviceNames())
}

func TestNewContext_NilDevice(t *testing.T) {
	_, err := NewContext(ContextOptions{Devices: []tensor.Backend{nil}})
	assert.Equal(t, InvalidArgument, CodeOf(err))
}

func TestNewContext_CustomOp(t *testing.T) {
	double := OpDef{
		Name: "Double", MinInputs: 1, MaxInputs: 1, NumOutputs: 1,
		Kernel: func(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
			return []*tensor.RawTensor{dev.Add(inputs[0], inputs[0])}, nil
		},
	}
	ctx, err := NewContext(ContextOptions{CustomOps: []OpDef{double}})
	require.NoError(t, err)
	defer ctx.Close()

	x, err := HandleFromSlice(ctx, []float32{1, 2, 3}, tensor.Shape{3})
	require.NoError(t, err)
	defer x.Close()

	op, err := NewOp(ctx, "Double")
	require.NoError(t, err)
	require.NoError(t, op.AddInput(x))

	var out [1]*TensorHandle
	require.NoError(t, op.Execute(out[:]))
	defer out[0].Close()

	raw, err := out[0].Resolve()
	require.NoError(t, err)
	defer raw.Release()
	assert.Equal(t, []float32{2, 4, 6}, raw.AsFloat32())
}

func TestNewContext_CustomOpCollision(t *testing.T) {
	dup := OpDef{
		Name: "Add", MinInputs: 2, MaxInputs: 2, NumOutputs: 1,
		Kernel: func(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
			return nil, nil
		},
	}
	_, err := NewContext(ContextOptions{CustomOps: []OpDef{dup}})
	assert.Equal(t, AlreadyExists, CodeOf(err))
}

func TestContext_CloseIdempotent(t *testing.T) {
	ctx, err := NewContext(ContextOptions{})
	require.NoError(t, err)
	assert.NoError(t, ctx.Close())
	assert.NoError(t, ctx.Close())
}

func TestRegistry_Validation(t *testing.T) {
	r := NewRegistry()

	err := r.Register(OpDef{Name: "", NumOutputs: 1})
	assert.Equal(t, InvalidArgument, CodeOf(err))

	err = r.Register(OpDef{Name: "Bad\x00Name", NumOutputs: 1, Kernel: identityKernel})
	assert.Equal(t, InvalidArgument, CodeOf(err))

	err = r.Register(OpDef{Name: "NoKernel", NumOutputs: 1})
	assert.Equal(t, InvalidArgument, CodeOf(err))

	require.NoError(t, r.Register(OpDef{Name: "Ok", MinInputs: 1, MaxInputs: 1, NumOutputs: 1, Kernel: identityKernel}))
	err = r.Register(OpDef{Name: "Ok", MinInputs: 1, MaxInputs: 1, NumOutputs: 1, Kernel: identityKernel})
	assert.Equal(t, AlreadyExists, CodeOf(err))

	def, ok := r.Lookup("Ok")
	assert.True(t, ok)
	assert.Equal(t, "Ok", def.Name)
	assert.Equal(t, []string{"Ok"}, r.Names())
}
