package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Equal compares element-wise and returns a Bool tensor.
// Shapes must match exactly; the eager layer validates before dispatch.
func (c *CPUBackend) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := c.newBoolResult("equal", a, b)
	switch a.DType() {
	case tensor.Float32:
		compareKernel(result.AsBool(), a.AsFloat32(), b.AsFloat32(), func(x, y float32) bool { return x == y })
	case tensor.Float64:
		compareKernel(result.AsBool(), a.AsFloat64(), b.AsFloat64(), func(x, y float64) bool { return x == y })
	case tensor.Int32:
		compareKernel(result.AsBool(), a.AsInt32(), b.AsInt32(), func(x, y int32) bool { return x == y })
	case tensor.Int64:
		compareKernel(result.AsBool(), a.AsInt64(), b.AsInt64(), func(x, y int64) bool { return x == y })
	case tensor.Uint8:
		compareKernel(result.AsBool(), a.AsUint8(), b.AsUint8(), func(x, y uint8) bool { return x == y })
	case tensor.Bool:
		out, av, bv := result.AsBool(), a.AsBool(), b.AsBool()
		for i := range out {
			out[i] = av[i] == bv[i]
		}
	default:
		panic(fmt.Sprintf("cpu: equal: unsupported dtype %s", a.DType()))
	}
	return result
}

// Greater compares element-wise (a > b) and returns a Bool tensor.
func (c *CPUBackend) Greater(a, b *tensor.RawTensor) *tensor.RawTensor {
	result := c.newBoolResult("greater", a, b)
	switch a.DType() {
	case tensor.Float32:
		compareKernel(result.AsBool(), a.AsFloat32(), b.AsFloat32(), func(x, y float32) bool { return x > y })
	case tensor.Float64:
		compareKernel(result.AsBool(), a.AsFloat64(), b.AsFloat64(), func(x, y float64) bool { return x > y })
	case tensor.Int32:
		compareKernel(result.AsBool(), a.AsInt32(), b.AsInt32(), func(x, y int32) bool { return x > y })
	case tensor.Int64:
		compareKernel(result.AsBool(), a.AsInt64(), b.AsInt64(), func(x, y int64) bool { return x > y })
	case tensor.Uint8:
		compareKernel(result.AsBool(), a.AsUint8(), b.AsUint8(), func(x, y uint8) bool { return x > y })
	default:
		panic(fmt.Sprintf("cpu: greater: unsupported dtype %s", a.DType()))
	}
	return result
}

func (c *CPUBackend) newBoolResult(name string, a, b *tensor.RawTensor) *tensor.RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("cpu: %s: shape mismatch: %v vs %v", name, a.Shape(), b.Shape()))
	}
	result, err := tensor.NewRaw(a.Shape(), tensor.Bool, c.device)
	if err != nil {
		panic(fmt.Sprintf("cpu: %s: %v", name, err))
	}
	return result
}

func compareKernel[T tensor.DType](out []bool, a, b []T, f func(T, T) bool) {
	for i := range out {
		out[i] = f(a[i], b[i])
	}
}
