package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Sum reduces the whole tensor to a scalar (rank-0 tensor).
func (c *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(tensor.Shape{}, x.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("cpu: sum: %v", err))
	}
	switch x.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] = sumKernel(x.AsFloat32())
	case tensor.Float64:
		result.AsFloat64()[0] = sumKernel(x.AsFloat64())
	case tensor.Int32:
		result.AsInt32()[0] = sumKernel(x.AsInt32())
	case tensor.Int64:
		result.AsInt64()[0] = sumKernel(x.AsInt64())
	default:
		panic(fmt.Sprintf("cpu: sum: unsupported dtype %s", x.DType()))
	}
	return result
}

// SumDim reduces along one dimension, optionally keeping it with size 1.
func (c *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("cpu: sumdim: dim %d out of range for shape %v", dim, shape))
	}

	outShape := make(tensor.Shape, 0, len(shape))
	for d, size := range shape {
		switch {
		case d != dim:
			outShape = append(outShape, size)
		case keepDim:
			outShape = append(outShape, 1)
		}
	}

	result, err := tensor.NewRaw(outShape, x.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("cpu: sumdim: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		sumDimKernel(result.AsFloat32(), x.AsFloat32(), shape, dim)
	case tensor.Float64:
		sumDimKernel(result.AsFloat64(), x.AsFloat64(), shape, dim)
	case tensor.Int32:
		sumDimKernel(result.AsInt32(), x.AsInt32(), shape, dim)
	case tensor.Int64:
		sumDimKernel(result.AsInt64(), x.AsInt64(), shape, dim)
	default:
		panic(fmt.Sprintf("cpu: sumdim: unsupported dtype %s", x.DType()))
	}
	return result
}

func sumKernel[T number](in []T) T {
	var total T
	for _, v := range in {
		total += v
	}
	return total
}

// sumDimKernel treats the input as [outer, n, inner] around dim.
func sumDimKernel[T number](out, in []T, shape tensor.Shape, dim int) {
	n := shape[dim]
	inner := 1
	for d := dim + 1; d < len(shape); d++ {
		inner *= shape[d]
	}
	outer := len(in) / (n * inner)

	for o := 0; o < outer; o++ {
		for c := 0; c < inner; c++ {
			var total T
			for k := 0; k < n; k++ {
				total += in[o*n*inner+k*inner+c]
			}
			out[o*inner+c] = total
		}
	}
}
