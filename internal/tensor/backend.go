package tensor

// Backend is the compute surface eager kernels dispatch to. Implementations
// own device placement and kernel execution; they may assume inputs were
// validated by the caller and panic on internal invariant violations.
//
// Implementations:
//   - CPU: pure Go
//   - WebGPU: GPU compute with CPU fallback for ops without shaders
type Backend interface {
	// Element-wise binary operations (NumPy-style broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix multiplication for 2D tensors: [M, K] @ [K, N] -> [M, N]
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Element-wise math
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor
	Neg(x *RawTensor) *RawTensor

	// Softmax along a dimension
	Softmax(x *RawTensor, dim int) *RawTensor

	// Reductions
	Sum(x *RawTensor) *RawTensor
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Concatenation along a dimension
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Comparisons (result dtype is Bool)
	Equal(a, b *RawTensor) *RawTensor
	Greater(a, b *RawTensor) *RawTensor

	// Type conversion
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
