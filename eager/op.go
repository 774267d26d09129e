package eager

import (
	"github.com/ember-ml/ember/tensor"
)

// Op stages one operation invocation: a name, input tensor references, and
// typed attributes, executed against the owning context. The lifecycle is
// strictly built → executed-or-released: Execute consumes the descriptor,
// and Release is idempotent and safe on every path.
//
// An Op is not safe for concurrent mutation; callers serialize access.
type Op struct {
	ctx  *Context
	name string
	def  OpDef

	device deviceEntry

	// inputs holds non-owning references, flattened in staging order.
	inputs []*TensorHandle

	attrs map[string]attrValue

	executed bool
	released bool
}

// NewOp creates a descriptor for the named operation. The name must be
// registered with the context and free of embedded null bytes.
func NewOp(ctx *Context, name string) (*Op, error) {
	if ctx == nil {
		return nil, Statusf(InvalidArgument, "nil context")
	}
	if ctx.closed.Load() {
		return nil, Statusf(FailedPrecondition, "context is closed")
	}
	if name == "" {
		return nil, Statusf(InvalidArgument, "op name is empty")
	}
	if hasNullByte(name) {
		return nil, Statusf(InvalidArgument, "op name %q contains an embedded null byte", name)
	}
	def, ok := ctx.registry.Lookup(name)
	if !ok {
		return nil, Statusf(NotFound, "op %q is not registered", name)
	}

	ctx.liveOps.Add(1)
	return &Op{
		ctx:    ctx,
		name:   name,
		def:    def,
		device: ctx.defaultDevice(),
		attrs:  make(map[string]attrValue),
	}, nil
}

// Name returns the operation name.
func (op *Op) Name() string {
	return op.name
}

// Context returns the owning context.
func (op *Op) Context() *Context {
	return op.ctx
}

// NumInputs returns the flattened input count staged so far.
func (op *Op) NumInputs() int {
	return len(op.inputs)
}

// mutable guards every staging call against use after Execute or Release.
func (op *Op) mutable() error {
	if op.released {
		return Statusf(FailedPrecondition, "op %q: descriptor already released", op.name)
	}
	if op.executed {
		return Statusf(FailedPrecondition, "op %q: descriptor already executed", op.name)
	}
	return nil
}

func (op *Op) checkInput(h *TensorHandle) error {
	if h == nil {
		return Statusf(InvalidArgument, "op %q: nil input handle", op.name)
	}
	if h.closed {
		return Statusf(FailedPrecondition, "op %q: input handle is closed", op.name)
	}
	if h.ctx != op.ctx {
		return Statusf(InvalidArgument, "op %q: input handle belongs to a different context", op.name)
	}
	return nil
}

// AddInput appends one input reference. The descriptor does not take
// ownership; the handle must stay alive through Execute.
func (op *Op) AddInput(h *TensorHandle) error {
	if err := op.mutable(); err != nil {
		return err
	}
	if err := op.checkInput(h); err != nil {
		return err
	}
	op.inputs = append(op.inputs, h)
	return nil
}

// AddInputList appends a contiguous list of input references as one
// variadic slot, preserving the supplied order exactly.
func (op *Op) AddInputList(hs []*TensorHandle) error {
	if err := op.mutable(); err != nil {
		return err
	}
	for _, h := range hs {
		if err := op.checkInput(h); err != nil {
			return err
		}
	}
	op.inputs = append(op.inputs, hs...)
	return nil
}

// SetDevice records a placement hint, resolved against the context's
// device table immediately.
func (op *Op) SetDevice(name string) error {
	if err := op.mutable(); err != nil {
		return err
	}
	if hasNullByte(name) {
		return Statusf(InvalidArgument, "op %q: device name contains an embedded null byte", op.name)
	}
	dev, err := op.ctx.resolveDevice(name)
	if err != nil {
		return err
	}
	op.device = dev
	return nil
}

// Device returns the canonical name of the resolved placement, which may
// differ from the hint passed to SetDevice.
func (op *Op) Device() (string, error) {
	if op.released {
		return "", Statusf(FailedPrecondition, "op %q: descriptor already released", op.name)
	}
	return op.device.name, nil
}

// Release frees the descriptor's runtime registration. Idempotent; safe
// after a failed Execute.
func (op *Op) Release() {
	if op.released {
		return
	}
	op.released = true
	op.inputs = nil
	for _, v := range op.attrs {
		if v.kind == attrTensor && v.t != nil {
			v.t.Release()
		}
	}
	op.attrs = nil
	op.ctx.liveOps.Add(-1)
}

func (op *Op) setAttr(name string, v attrValue) error {
	if err := op.mutable(); err != nil {
		return err
	}
	if err := checkAttrName(name); err != nil {
		return err
	}
	if prev, ok := op.attrs[name]; ok && prev.kind == attrTensor && prev.t != nil {
		prev.t.Release()
	}
	op.attrs[name] = v
	return nil
}

// SetAttrString sets a string attribute.
func (op *Op) SetAttrString(name, value string) error {
	if hasNullByte(value) {
		return Statusf(InvalidArgument, "op %q: attribute %q value contains an embedded null byte", op.name, name)
	}
	return op.setAttr(name, attrValue{kind: attrString, s: value})
}

// SetAttrStringList sets a string list attribute.
func (op *Op) SetAttrStringList(name string, values []string) error {
	for _, v := range values {
		if hasNullByte(v) {
			return Statusf(InvalidArgument, "op %q: attribute %q value contains an embedded null byte", op.name, name)
		}
	}
	return op.setAttr(name, attrValue{kind: attrStringList, strs: append([]string(nil), values...)})
}

// SetAttrInt sets an int attribute.
func (op *Op) SetAttrInt(name string, value int64) error {
	return op.setAttr(name, attrValue{kind: attrInt, i: value})
}

// SetAttrIntList sets an int list attribute.
func (op *Op) SetAttrIntList(name string, values []int64) error {
	return op.setAttr(name, attrValue{kind: attrIntList, ints: append([]int64(nil), values...)})
}

// SetAttrFloat sets a float attribute.
func (op *Op) SetAttrFloat(name string, value float32) error {
	return op.setAttr(name, attrValue{kind: attrFloat, f: value})
}

// SetAttrFloatList sets a float list attribute.
func (op *Op) SetAttrFloatList(name string, values []float32) error {
	return op.setAttr(name, attrValue{kind: attrFloatList, floats: append([]float32(nil), values...)})
}

// SetAttrBool sets a bool attribute.
func (op *Op) SetAttrBool(name string, value bool) error {
	return op.setAttr(name, attrValue{kind: attrBool, b: value})
}

// SetAttrBoolList sets a bool list attribute.
func (op *Op) SetAttrBoolList(name string, values []bool) error {
	return op.setAttr(name, attrValue{kind: attrBoolList, bools: append([]bool(nil), values...)})
}

// SetAttrType sets a data type attribute.
func (op *Op) SetAttrType(name string, value tensor.DataType) error {
	return op.setAttr(name, attrValue{kind: attrType, dt: value})
}

// SetAttrTypeList sets a data type list attribute.
func (op *Op) SetAttrTypeList(name string, values []tensor.DataType) error {
	return op.setAttr(name, attrValue{kind: attrTypeList, dts: append([]tensor.DataType(nil), values...)})
}

// SetAttrShape sets a shape attribute. The shape is lowered to the
// sentinel wire encoding here; kernels decode it back through Attrs.
func (op *Op) SetAttrShape(name string, shape PartialShape) error {
	return op.setAttr(name, attrValue{kind: attrShape, shape: encodeShape(shape)})
}

// SetAttrShapeList sets a shape list attribute.
func (op *Op) SetAttrShapeList(name string, shapes []PartialShape) error {
	ws := make([]wireShape, len(shapes))
	for i, s := range shapes {
		ws[i] = encodeShape(s)
	}
	return op.setAttr(name, attrValue{kind: attrShapeList, shapes: ws})
}

// SetAttrTensor sets a tensor attribute. The value is copied; the
// descriptor owns its copy and releases it with the descriptor.
func (op *Op) SetAttrTensor(name string, value *tensor.RawTensor) error {
	if value == nil {
		return Statusf(InvalidArgument, "op %q: attribute %q tensor is nil", op.name, name)
	}
	return op.setAttr(name, attrValue{kind: attrTensor, t: value.DeepCopy()})
}
