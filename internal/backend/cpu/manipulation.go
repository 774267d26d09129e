package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Reshape returns a view with the same data and a new shape.
func (c *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("cpu: reshape: invalid shape: %v", err))
	}
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("cpu: reshape: incompatible shapes: %v -> %v (different number of elements)",
			t.Shape(), newShape))
	}
	return t.WithShape(newShape)
}

// Transpose permutes the tensor's axes. With no axes given, the order is
// reversed (matrix transpose for 2D).
func (c *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	rank := len(shape)

	if len(axes) == 0 {
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = rank - 1 - i
		}
	}
	if len(axes) != rank {
		panic(fmt.Sprintf("cpu: transpose: got %d axes for rank %d", len(axes), rank))
	}
	seen := make([]bool, rank)
	for _, ax := range axes {
		if ax < 0 || ax >= rank || seen[ax] {
			panic(fmt.Sprintf("cpu: transpose: invalid axes %v for rank %d", axes, rank))
		}
		seen[ax] = true
	}

	outShape := make(tensor.Shape, rank)
	for i, ax := range axes {
		outShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(outShape, t.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("cpu: transpose: %v", err))
	}

	inStrides := shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()
	elemSize := t.DType().Size()
	src, dst := t.Data(), result.Data()

	for i := 0; i < result.NumElements(); i++ {
		srcIdx := 0
		rem := i
		for d := 0; d < rank; d++ {
			idx := rem / outStrides[d]
			rem %= outStrides[d]
			srcIdx += idx * inStrides[axes[d]]
		}
		copy(dst[i*elemSize:(i+1)*elemSize], src[srcIdx*elemSize:(srcIdx+1)*elemSize])
	}
	return result
}

// Cat concatenates tensors along dim. All inputs share rank, dtype, and all
// dimensions except dim.
func (c *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cpu: cat: no tensors")
	}
	first := tensors[0]
	rank := len(first.Shape())
	if dim < 0 {
		dim += rank
	}
	if dim < 0 || dim >= rank {
		panic(fmt.Sprintf("cpu: cat: dim %d out of range for rank %d", dim, rank))
	}

	outShape := first.Shape().Clone()
	for _, t := range tensors[1:] {
		s := t.Shape()
		if len(s) != rank || t.DType() != first.DType() {
			panic(fmt.Sprintf("cpu: cat: incompatible tensor %v (%s) vs %v (%s)",
				s, t.DType(), first.Shape(), first.DType()))
		}
		for d := 0; d < rank; d++ {
			if d != dim && s[d] != outShape[d] {
				panic(fmt.Sprintf("cpu: cat: dimension %d mismatch: %v vs %v", d, s, first.Shape()))
			}
		}
		outShape[dim] += s[dim]
	}

	result, err := tensor.NewRaw(outShape, first.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("cpu: cat: %v", err))
	}

	// Copy [outer, n_i, inner] blocks: each outer slice takes one block from
	// every input in order.
	inner := 1
	for d := dim + 1; d < rank; d++ {
		inner *= outShape[d]
	}
	outer := 1
	for d := 0; d < dim; d++ {
		outer *= outShape[d]
	}

	elemSize := first.DType().Size()
	dst := result.Data()
	dstOff := 0
	for o := 0; o < outer; o++ {
		for _, t := range tensors {
			block := t.Shape()[dim] * inner * elemSize
			src := t.Data()[o*block : (o+1)*block]
			copy(dst[dstOff:dstOff+block], src)
			dstOff += block
		}
	}
	return result
}
