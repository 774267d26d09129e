package tensor

import "fmt"

// FromSlice builds a RawTensor by copying data into fresh storage.
// The slice length must match the shape's element count.
func FromSlice[T DType](data []T, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	raw, err := NewRaw(shape, DataTypeOf[T](), device)
	if err != nil {
		return nil, err
	}
	copy(sliceOf[T](raw), data)
	return raw, nil
}

// Full builds a RawTensor with every element set to value.
func Full[T DType](shape Shape, value T, device Device) (*RawTensor, error) {
	raw, err := NewRaw(shape, DataTypeOf[T](), device)
	if err != nil {
		return nil, err
	}
	out := sliceOf[T](raw)
	for i := range out {
		out[i] = value
	}
	return raw, nil
}

// Zeros builds a zero-filled RawTensor of the given dtype.
func Zeros(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	// NewRaw storage is already zeroed by make().
	return NewRaw(shape, dtype, device)
}

// sliceOf reinterprets the tensor data as a typed slice.
func sliceOf[T DType](r *RawTensor) []T {
	switch any(*new(T)).(type) {
	case float32:
		return any(r.AsFloat32()).([]T)
	case float64:
		return any(r.AsFloat64()).([]T)
	case int32:
		return any(r.AsInt32()).([]T)
	case int64:
		return any(r.AsInt64()).([]T)
	case uint8:
		return any(r.AsUint8()).([]T)
	case bool:
		return any(r.AsBool()).([]T)
	default:
		panic("unsupported element type")
	}
}
