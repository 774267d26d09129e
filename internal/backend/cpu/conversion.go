package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Cast converts a tensor to another dtype. Bool converts to 0/1; casting to
// Bool yields x != 0.
func (c *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x.DeepCopy()
	}

	result, err := tensor.NewRaw(x.Shape(), dtype, c.device)
	if err != nil {
		panic(fmt.Sprintf("cpu: cast: %v", err))
	}

	// Widen through float64; exact for all supported integer ranges that
	// tensors in this runtime carry in practice.
	n := x.NumElements()
	wide := make([]float64, n)
	switch x.DType() {
	case tensor.Float32:
		for i, v := range x.AsFloat32() {
			wide[i] = float64(v)
		}
	case tensor.Float64:
		copy(wide, x.AsFloat64())
	case tensor.Int32:
		for i, v := range x.AsInt32() {
			wide[i] = float64(v)
		}
	case tensor.Int64:
		for i, v := range x.AsInt64() {
			wide[i] = float64(v)
		}
	case tensor.Uint8:
		for i, v := range x.AsUint8() {
			wide[i] = float64(v)
		}
	case tensor.Bool:
		for i, v := range x.AsBool() {
			if v {
				wide[i] = 1
			}
		}
	default:
		panic(fmt.Sprintf("cpu: cast: unsupported source dtype %s", x.DType()))
	}

	switch dtype {
	case tensor.Float32:
		out := result.AsFloat32()
		for i, v := range wide {
			out[i] = float32(v)
		}
	case tensor.Float64:
		copy(result.AsFloat64(), wide)
	case tensor.Int32:
		out := result.AsInt32()
		for i, v := range wide {
			out[i] = int32(v)
		}
	case tensor.Int64:
		out := result.AsInt64()
		for i, v := range wide {
			out[i] = int64(v)
		}
	case tensor.Uint8:
		out := result.AsUint8()
		for i, v := range wide {
			out[i] = uint8(v)
		}
	case tensor.Bool:
		out := result.AsBool()
		for i, v := range wide {
			out[i] = v != 0
		}
	default:
		panic(fmt.Sprintf("cpu: cast: unsupported target dtype %s", dtype))
	}
	return result
}
