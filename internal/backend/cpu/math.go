package cpu

import (
	"fmt"
	"math"

	"github.com/ember-ml/ember/internal/tensor"
)

// Exp computes the element-wise exponential. Float dtypes only.
func (c *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return floatUnaryOp("exp", x, c.device, math.Exp)
}

// Log computes the element-wise natural logarithm. Float dtypes only.
func (c *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return floatUnaryOp("log", x, c.device, math.Log)
}

// Sqrt computes the element-wise square root. Float dtypes only.
func (c *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return floatUnaryOp("sqrt", x, c.device, math.Sqrt)
}

// Neg computes the element-wise negation for any numeric dtype.
func (c *CPUBackend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("cpu: neg: %v", err))
	}
	switch x.DType() {
	case tensor.Float32:
		negKernel(result.AsFloat32(), x.AsFloat32())
	case tensor.Float64:
		negKernel(result.AsFloat64(), x.AsFloat64())
	case tensor.Int32:
		negKernel(result.AsInt32(), x.AsInt32())
	case tensor.Int64:
		negKernel(result.AsInt64(), x.AsInt64())
	default:
		panic(fmt.Sprintf("cpu: neg: unsupported dtype %s", x.DType()))
	}
	return result
}

// Softmax computes softmax along dim with max-subtraction for stability.
func (c *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("cpu: softmax: dim %d out of range for shape %v", dim, shape))
	}

	result, err := tensor.NewRaw(shape, x.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("cpu: softmax: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		softmaxKernel(result.AsFloat32(), x.AsFloat32(), shape, dim)
	case tensor.Float64:
		softmaxKernel(result.AsFloat64(), x.AsFloat64(), shape, dim)
	default:
		panic(fmt.Sprintf("cpu: softmax: unsupported dtype %s", x.DType()))
	}
	return result
}

func floatUnaryOp(name string, x *tensor.RawTensor, dev tensor.Device, f func(float64) float64) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), dev)
	if err != nil {
		panic(fmt.Sprintf("cpu: %s: %v", name, err))
	}
	switch x.DType() {
	case tensor.Float32:
		out, in := result.AsFloat32(), x.AsFloat32()
		for i := range in {
			out[i] = float32(f(float64(in[i])))
		}
	case tensor.Float64:
		out, in := result.AsFloat64(), x.AsFloat64()
		for i := range in {
			out[i] = f(in[i])
		}
	default:
		panic(fmt.Sprintf("cpu: %s: unsupported dtype %s", name, x.DType()))
	}
	return result
}

func negKernel[T number](out, in []T) {
	for i := range in {
		out[i] = -in[i]
	}
}

// softmaxKernel treats the tensor as [outer, n, inner] around dim and
// normalizes each lane of length n.
func softmaxKernel[T ~float32 | ~float64](out, in []T, shape tensor.Shape, dim int) {
	n := shape[dim]
	inner := 1
	for d := dim + 1; d < len(shape); d++ {
		inner *= shape[d]
	}
	outer := len(in) / (n * inner)

	for o := 0; o < outer; o++ {
		for c := 0; c < inner; c++ {
			base := o*n*inner + c

			maxVal := in[base]
			for k := 1; k < n; k++ {
				if v := in[base+k*inner]; v > maxVal {
					maxVal = v
				}
			}

			var sum float64
			for k := 0; k < n; k++ {
				e := math.Exp(float64(in[base+k*inner] - maxVal))
				out[base+k*inner] = T(e)
				sum += e
			}
			for k := 0; k < n; k++ {
				out[base+k*inner] = T(float64(out[base+k*inner]) / sum)
			}
		}
	}
}
