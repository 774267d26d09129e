// Copyright 2026 Ember Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor types for the Ember runtime.
//
// The package re-exports the core types consumed by the eager execution
// layer:
//   - RawTensor: flat reference-counted tensor storage
//   - Shape, DataType, Device: type and placement metadata
//   - Backend: the compute surface device backends implement
//
// Example:
//
//	raw, err := tensor.FromSlice([]int32{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.CPU)
package tensor

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// DType is a constraint for supported tensor element types.
type DType = tensor.DType

// DataType is the runtime tag for a tensor's element type.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Device identifies the compute device a tensor lives on.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// Shape holds the dimensions of a tensor.
// Example: Shape{2, 3, 4} is a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// RawTensor is the low-level tensor representation shared by all backends.
type RawTensor = tensor.RawTensor

// Backend is the compute surface eager kernels dispatch to.
type Backend = tensor.Backend

// NewRaw allocates a zero-initialized RawTensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromSlice builds a RawTensor by copying data into fresh storage.
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	return tensor.FromSlice(data, shape, device)
}

// Full builds a RawTensor with every element set to value.
func Full[T DType](shape Shape, value T, device Device) (*RawTensor, error) {
	return tensor.Full(shape, value, device)
}

// Zeros builds a zero-filled RawTensor of the given dtype.
func Zeros(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.Zeros(shape, dtype, device)
}

// DataTypeOf returns the runtime tag for the element type T.
func DataTypeOf[T DType]() DataType {
	return tensor.DataTypeOf[T]()
}

// BroadcastShapes applies NumPy-style broadcasting to two shapes.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
