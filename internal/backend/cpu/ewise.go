package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// number covers the dtypes arithmetic kernels accept.
type number interface {
	~float32 | ~float64 | ~int32 | ~int64
}

// binaryOp allocates the broadcast result and dispatches on dtype.
func binaryOp(name string, a, b *tensor.RawTensor, dev tensor.Device) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("cpu: %s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, a.DType(), dev)
	if err != nil {
		panic(fmt.Sprintf("cpu: %s: failed to create result tensor: %v", name, err))
	}

	switch a.DType() {
	case tensor.Float32:
		binaryKernel(binFunc[float32](name), result.AsFloat32(), a.AsFloat32(), b.AsFloat32(),
			a.Shape(), b.Shape(), outShape, needsBroadcast)
	case tensor.Float64:
		binaryKernel(binFunc[float64](name), result.AsFloat64(), a.AsFloat64(), b.AsFloat64(),
			a.Shape(), b.Shape(), outShape, needsBroadcast)
	case tensor.Int32:
		binaryKernel(binFunc[int32](name), result.AsInt32(), a.AsInt32(), b.AsInt32(),
			a.Shape(), b.Shape(), outShape, needsBroadcast)
	case tensor.Int64:
		binaryKernel(binFunc[int64](name), result.AsInt64(), a.AsInt64(), b.AsInt64(),
			a.Shape(), b.Shape(), outShape, needsBroadcast)
	default:
		panic(fmt.Sprintf("cpu: %s: unsupported dtype %s", name, a.DType()))
	}

	return result
}

// binaryKernel applies f element-wise, walking broadcast indices when needed.
func binaryKernel[T number](f func(T, T) T, out, a, b []T, aShape, bShape, outShape tensor.Shape, broadcast bool) {
	if !broadcast {
		for i := range out {
			out[i] = f(a[i], b[i])
		}
		return
	}

	aStrides := broadcastStrides(aShape, outShape)
	bStrides := broadcastStrides(bShape, outShape)
	outStrides := outShape.ComputeStrides()

	for i := range out {
		ai, bi := 0, 0
		rem := i
		for d := range outShape {
			idx := rem / outStrides[d]
			rem %= outStrides[d]
			ai += idx * aStrides[d]
			bi += idx * bStrides[d]
		}
		out[i] = f(a[ai], b[bi])
	}
}

func binFunc[T number](name string) func(T, T) T {
	switch name {
	case "add":
		return func(x, y T) T { return x + y }
	case "sub":
		return func(x, y T) T { return x - y }
	case "mul":
		return func(x, y T) T { return x * y }
	case "div":
		return func(x, y T) T { return x / y }
	default:
		panic("cpu: unknown binary op " + name)
	}
}

// broadcastStrides maps an operand's strides onto the output's dimensions,
// with stride 0 for broadcast (size-1 or missing) dimensions.
func broadcastStrides(in, out tensor.Shape) []int {
	strides := make([]int, len(out))
	inStrides := in.ComputeStrides()
	offset := len(out) - len(in)
	for d := range out {
		if d >= offset && in[d-offset] != 1 {
			strides[d] = inStrides[d-offset]
		}
	}
	return strides
}
