// Copyright 2026 Ember Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package rawops provides typed wrappers over the eager op surface. Each
// function stages one operation, sets its conventional attributes, and
// executes it, so callers avoid the descriptor plumbing for common ops.
package rawops

import (
	"github.com/ember-ml/ember/eager"
	"github.com/ember-ml/ember/tensor"
)

// runOne stages and executes a single-output op.
func runOne(ctx *eager.Context, name string, inputs []*eager.TensorHandle, stage func(op *eager.Op) error) (*eager.TensorHandle, error) {
	op, err := eager.NewOp(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, in := range inputs {
		if err := op.AddInput(in); err != nil {
			op.Release()
			return nil, err
		}
	}
	if stage != nil {
		if err := stage(op); err != nil {
			op.Release()
			return nil, err
		}
	}
	var out [1]*eager.TensorHandle
	if err := op.Execute(out[:]); err != nil {
		return nil, err
	}
	return out[0], nil
}

// binary dispatches a two-input op, pinning the T attribute to the first
// input's dtype.
func binary(ctx *eager.Context, name string, x, y *eager.TensorHandle) (*eager.TensorHandle, error) {
	return runOne(ctx, name, []*eager.TensorHandle{x, y}, func(op *eager.Op) error {
		return op.SetAttrType("T", x.DataType())
	})
}

func unary(ctx *eager.Context, name string, x *eager.TensorHandle) (*eager.TensorHandle, error) {
	return runOne(ctx, name, []*eager.TensorHandle{x}, func(op *eager.Op) error {
		return op.SetAttrType("T", x.DataType())
	})
}

// Identity returns a handle with the same contents as x.
func Identity(ctx *eager.Context, x *eager.TensorHandle) (*eager.TensorHandle, error) {
	return unary(ctx, "Identity", x)
}

// Add returns x + y with broadcasting.
func Add(ctx *eager.Context, x, y *eager.TensorHandle) (*eager.TensorHandle, error) {
	return binary(ctx, "Add", x, y)
}

// Sub returns x - y with broadcasting.
func Sub(ctx *eager.Context, x, y *eager.TensorHandle) (*eager.TensorHandle, error) {
	return binary(ctx, "Sub", x, y)
}

// Mul returns x * y element-wise with broadcasting.
func Mul(ctx *eager.Context, x, y *eager.TensorHandle) (*eager.TensorHandle, error) {
	return binary(ctx, "Mul", x, y)
}

// Div returns x / y element-wise with broadcasting.
func Div(ctx *eager.Context, x, y *eager.TensorHandle) (*eager.TensorHandle, error) {
	return binary(ctx, "Div", x, y)
}

// MatMul returns the 2D matrix product x @ y.
func MatMul(ctx *eager.Context, x, y *eager.TensorHandle) (*eager.TensorHandle, error) {
	return binary(ctx, "MatMul", x, y)
}

// Exp returns e**x element-wise.
func Exp(ctx *eager.Context, x *eager.TensorHandle) (*eager.TensorHandle, error) {
	return unary(ctx, "Exp", x)
}

// Log returns the natural logarithm element-wise.
func Log(ctx *eager.Context, x *eager.TensorHandle) (*eager.TensorHandle, error) {
	return unary(ctx, "Log", x)
}

// Sqrt returns the square root element-wise.
func Sqrt(ctx *eager.Context, x *eager.TensorHandle) (*eager.TensorHandle, error) {
	return unary(ctx, "Sqrt", x)
}

// Neg returns -x element-wise.
func Neg(ctx *eager.Context, x *eager.TensorHandle) (*eager.TensorHandle, error) {
	return unary(ctx, "Neg", x)
}

// Softmax normalizes along the last axis.
func Softmax(ctx *eager.Context, x *eager.TensorHandle) (*eager.TensorHandle, error) {
	return unary(ctx, "Softmax", x)
}

// SoftmaxAxis normalizes along the given axis; negative axes count from
// the end.
func SoftmaxAxis(ctx *eager.Context, x *eager.TensorHandle, axis int64) (*eager.TensorHandle, error) {
	return runOne(ctx, "Softmax", []*eager.TensorHandle{x}, func(op *eager.Op) error {
		return op.SetAttrInt("axis", axis)
	})
}

// Sum reduces all elements to a scalar.
func Sum(ctx *eager.Context, x *eager.TensorHandle) (*eager.TensorHandle, error) {
	return unary(ctx, "Sum", x)
}

// SumAxis reduces along one axis.
func SumAxis(ctx *eager.Context, x *eager.TensorHandle, axis int64, keepDims bool) (*eager.TensorHandle, error) {
	return runOne(ctx, "Sum", []*eager.TensorHandle{x}, func(op *eager.Op) error {
		if err := op.SetAttrInt("axis", axis); err != nil {
			return err
		}
		return op.SetAttrBool("keep_dims", keepDims)
	})
}

// Transpose permutes dimensions by perm; with no perm the axes reverse.
func Transpose(ctx *eager.Context, x *eager.TensorHandle, perm ...int64) (*eager.TensorHandle, error) {
	return runOne(ctx, "Transpose", []*eager.TensorHandle{x}, func(op *eager.Op) error {
		if len(perm) == 0 {
			return nil
		}
		return op.SetAttrIntList("perm", perm)
	})
}

// Reshape returns x with a new shape; one dimension may be -1, inferred
// from the element count.
func Reshape(ctx *eager.Context, x *eager.TensorHandle, dims []int64) (*eager.TensorHandle, error) {
	shape, err := eager.HandleFromSlice(ctx, dims, tensor.Shape{len(dims)})
	if err != nil {
		return nil, err
	}
	defer shape.Close()
	return runOne(ctx, "Reshape", []*eager.TensorHandle{x, shape}, nil)
}

// Cast converts x to the destination dtype.
func Cast(ctx *eager.Context, x *eager.TensorHandle, dst tensor.DataType) (*eager.TensorHandle, error) {
	return runOne(ctx, "Cast", []*eager.TensorHandle{x}, func(op *eager.Op) error {
		if err := op.SetAttrType("SrcT", x.DataType()); err != nil {
			return err
		}
		return op.SetAttrType("DstT", dst)
	})
}

// Concat joins tensors along an axis.
func Concat(ctx *eager.Context, xs []*eager.TensorHandle, axis int64) (*eager.TensorHandle, error) {
	op, err := eager.NewOp(ctx, "ConcatV2")
	if err != nil {
		return nil, err
	}
	if err := op.AddInputList(xs); err != nil {
		op.Release()
		return nil, err
	}
	if err := op.SetAttrInt("axis", axis); err != nil {
		op.Release()
		return nil, err
	}
	var out [1]*eager.TensorHandle
	if err := op.Execute(out[:]); err != nil {
		return nil, err
	}
	return out[0], nil
}

// Equal compares element-wise, producing a Bool tensor.
func Equal(ctx *eager.Context, x, y *eager.TensorHandle) (*eager.TensorHandle, error) {
	return binary(ctx, "Equal", x, y)
}

// Greater compares element-wise, producing a Bool tensor.
func Greater(ctx *eager.Context, x, y *eager.TensorHandle) (*eager.TensorHandle, error) {
	return binary(ctx, "Greater", x, y)
}

// Fill builds a constant tensor of the given shape from a scalar value.
func Fill[T tensor.DType](ctx *eager.Context, shape eager.PartialShape, value T) (*eager.TensorHandle, error) {
	raw, err := tensor.FromSlice([]T{value}, tensor.Shape{}, tensor.CPU)
	if err != nil {
		return nil, err
	}
	defer raw.Release()
	return runOne(ctx, "Fill", nil, func(op *eager.Op) error {
		if err := op.SetAttrShape("shape", shape); err != nil {
			return err
		}
		return op.SetAttrTensor("value", raw)
	})
}

// EnsureShape passes x through after checking it against a possibly
// partial shape.
func EnsureShape(ctx *eager.Context, x *eager.TensorHandle, shape eager.PartialShape) (*eager.TensorHandle, error) {
	return runOne(ctx, "EnsureShape", []*eager.TensorHandle{x}, func(op *eager.Op) error {
		return op.SetAttrShape("shape", shape)
	})
}
