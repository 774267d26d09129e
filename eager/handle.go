package eager

import (
	"github.com/ember-ml/ember/tensor"
)

// TensorHandle binds tensor storage to a context and a device. Handles are
// the currency of the eager layer: descriptors hold non-owning references
// to them, and the caller keeps each input handle alive until the execute
// call returns.
type TensorHandle struct {
	ctx    *Context
	raw    *tensor.RawTensor
	device string
	closed bool
}

// NewTensorHandle wraps existing tensor storage in a handle. The handle
// takes a reference on the storage; the caller's reference is untouched.
func NewTensorHandle(ctx *Context, raw *tensor.RawTensor) (*TensorHandle, error) {
	if ctx == nil {
		return nil, Statusf(InvalidArgument, "nil context")
	}
	if raw == nil {
		return nil, Statusf(InvalidArgument, "nil tensor")
	}
	return newHandle(ctx, raw.Clone(), ctx.defaultDevice().name), nil
}

// HandleFromSlice builds a tensor from data and wraps it in a handle.
func HandleFromSlice[T tensor.DType](ctx *Context, data []T, shape tensor.Shape) (*TensorHandle, error) {
	if ctx == nil {
		return nil, Statusf(InvalidArgument, "nil context")
	}
	raw, err := tensor.FromSlice(data, shape, ctx.defaultDevice().backend.Device())
	if err != nil {
		return nil, WrapStatus(InvalidArgument, err, "building tensor")
	}
	return newHandle(ctx, raw, ctx.defaultDevice().name), nil
}

// newHandle takes ownership of raw's reference and registers the handle.
func newHandle(ctx *Context, raw *tensor.RawTensor, device string) *TensorHandle {
	ctx.liveHandles.Add(1)
	return &TensorHandle{ctx: ctx, raw: raw, device: device}
}

// DataType returns the element type.
func (h *TensorHandle) DataType() tensor.DataType {
	return h.raw.DType()
}

// Shape returns the tensor's shape.
func (h *TensorHandle) Shape() tensor.Shape {
	return h.raw.Shape()
}

// NumElements returns the total number of elements.
func (h *TensorHandle) NumElements() int {
	return h.raw.NumElements()
}

// Device returns the canonical name of the device the handle is bound to.
func (h *TensorHandle) Device() string {
	return h.device
}

// Resolve materializes the handle's contents as an independent tensor the
// caller owns.
func (h *TensorHandle) Resolve() (*tensor.RawTensor, error) {
	if h.closed {
		return nil, Statusf(FailedPrecondition, "tensor handle is closed")
	}
	return h.raw.DeepCopy(), nil
}

// CopySharingTensor returns a new handle sharing this handle's storage.
func (h *TensorHandle) CopySharingTensor() (*TensorHandle, error) {
	if h.closed {
		return nil, Statusf(FailedPrecondition, "tensor handle is closed")
	}
	return newHandle(h.ctx, h.raw.Clone(), h.device), nil
}

// Close releases the handle's storage reference. Idempotent.
func (h *TensorHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.raw.Release()
	h.ctx.liveHandles.Add(-1)
	return nil
}

// borrow returns the underlying storage for kernel dispatch.
func (h *TensorHandle) borrow() *tensor.RawTensor {
	return h.raw
}
