package eager

import (
	"github.com/ember-ml/ember/tensor"
)

// newBuiltinRegistry returns the registry every context starts from. The
// set mirrors the common eager op surface: element-wise math, matmul,
// shape manipulation, reductions, comparisons, and a few attribute-driven
// constructors.
func newBuiltinRegistry() *Registry {
	r := NewRegistry()
	for _, def := range []OpDef{
		{Name: "Identity", MinInputs: 1, MaxInputs: 1, NumOutputs: 1, Kernel: identityKernel},
		{Name: "Add", MinInputs: 2, MaxInputs: 2, NumOutputs: 1, Kernel: binaryKernel("Add", tensor.Backend.Add)},
		{Name: "Sub", MinInputs: 2, MaxInputs: 2, NumOutputs: 1, Kernel: binaryKernel("Sub", tensor.Backend.Sub)},
		{Name: "Mul", MinInputs: 2, MaxInputs: 2, NumOutputs: 1, Kernel: binaryKernel("Mul", tensor.Backend.Mul)},
		{Name: "Div", MinInputs: 2, MaxInputs: 2, NumOutputs: 1, Kernel: divKernel},
		{Name: "MatMul", MinInputs: 2, MaxInputs: 2, NumOutputs: 1, Kernel: matMulKernel},
		{Name: "Transpose", MinInputs: 1, MaxInputs: 1, NumOutputs: 1, Kernel: transposeKernel},
		{Name: "Reshape", MinInputs: 2, MaxInputs: 2, NumOutputs: 1, Kernel: reshapeKernel},
		{Name: "Cast", MinInputs: 1, MaxInputs: 1, NumOutputs: 1, Kernel: castKernel},
		{Name: "Exp", MinInputs: 1, MaxInputs: 1, NumOutputs: 1, Kernel: floatUnaryKernel("Exp", tensor.Backend.Exp)},
		{Name: "Log", MinInputs: 1, MaxInputs: 1, NumOutputs: 1, Kernel: floatUnaryKernel("Log", tensor.Backend.Log)},
		{Name: "Sqrt", MinInputs: 1, MaxInputs: 1, NumOutputs: 1, Kernel: floatUnaryKernel("Sqrt", tensor.Backend.Sqrt)},
		{Name: "Neg", MinInputs: 1, MaxInputs: 1, NumOutputs: 1, Kernel: negKernel},
		{Name: "Softmax", MinInputs: 1, MaxInputs: 1, NumOutputs: 1, Kernel: softmaxKernel},
		{Name: "Sum", MinInputs: 1, MaxInputs: 1, NumOutputs: 1, Kernel: sumKernel},
		{Name: "ConcatV2", MinInputs: 1, MaxInputs: -1, NumOutputs: 1, Kernel: concatKernel},
		{Name: "Equal", MinInputs: 2, MaxInputs: 2, NumOutputs: 1, Kernel: compareKernel("Equal", tensor.Backend.Equal)},
		{Name: "Greater", MinInputs: 2, MaxInputs: 2, NumOutputs: 1, Kernel: compareKernel("Greater", tensor.Backend.Greater)},
		{Name: "Fill", MinInputs: 0, MaxInputs: 0, NumOutputs: 1, Kernel: fillKernel},
		{Name: "EnsureShape", MinInputs: 1, MaxInputs: 1, NumOutputs: 1, Kernel: ensureShapeKernel},
	} {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
	return r
}

// checkTypeAttr validates the conventional "T" dtype attribute, when set,
// against every input. Ops that never saw an explicit type attr skip the
// check; the backends handle dtype dispatch either way.
func checkTypeAttr(name string, attrs *Attrs, inputs []*tensor.RawTensor) error {
	if !attrs.Has("T") {
		return nil
	}
	want, err := attrs.Type("T")
	if err != nil {
		return err
	}
	for i, in := range inputs {
		if in.DType() != want {
			return Statusf(InvalidArgument, "op %q: input %d has dtype %s, attribute T says %s", name, i, in.DType(), want)
		}
	}
	return nil
}

func sameDType(name string, a, b *tensor.RawTensor) error {
	if a.DType() != b.DType() {
		return Statusf(InvalidArgument, "op %q: mismatched input dtypes %s and %s", name, a.DType(), b.DType())
	}
	return nil
}

func identityKernel(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
	if err := checkTypeAttr("Identity", attrs, inputs); err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{inputs[0].Clone()}, nil
}

// binaryKernel adapts a broadcasting backend method into a kernel with
// up-front shape and dtype validation. The backends assume valid inputs.
func binaryKernel(name string, f func(tensor.Backend, *tensor.RawTensor, *tensor.RawTensor) *tensor.RawTensor) Kernel {
	return func(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
		a, b := inputs[0], inputs[1]
		if err := checkTypeAttr(name, attrs, inputs); err != nil {
			return nil, err
		}
		if err := sameDType(name, a, b); err != nil {
			return nil, err
		}
		if !a.DType().IsNumeric() {
			return nil, Statusf(InvalidArgument, "op %q: dtype %s is not numeric", name, a.DType())
		}
		if _, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape()); err != nil {
			return nil, Statusf(InvalidArgument, "op %q: shapes %v and %v do not broadcast", name, a.Shape(), b.Shape())
		}
		return []*tensor.RawTensor{f(dev, a, b)}, nil
	}
}

// divKernel guards integer division: a zero anywhere in the divisor is an
// invalid-argument error rather than a runtime fault. Float division
// follows IEEE semantics and needs no scan.
func divKernel(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
	switch b := inputs[1]; b.DType() {
	case tensor.Int32:
		for _, v := range b.AsInt32() {
			if v == 0 {
				return nil, Statusf(InvalidArgument, "op \"Div\": integer division by zero")
			}
		}
	case tensor.Int64:
		for _, v := range b.AsInt64() {
			if v == 0 {
				return nil, Statusf(InvalidArgument, "op \"Div\": integer division by zero")
			}
		}
	}
	return binaryKernel("Div", tensor.Backend.Div)(dev, inputs, attrs)
}

// compareKernel adapts an exact-shape comparison backend method into a
// kernel. Comparisons do not broadcast; shapes must match exactly.
func compareKernel(name string, f func(tensor.Backend, *tensor.RawTensor, *tensor.RawTensor) *tensor.RawTensor) Kernel {
	return func(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
		a, b := inputs[0], inputs[1]
		if err := checkTypeAttr(name, attrs, inputs); err != nil {
			return nil, err
		}
		if err := sameDType(name, a, b); err != nil {
			return nil, err
		}
		if !a.Shape().Equal(b.Shape()) {
			return nil, Statusf(InvalidArgument, "op %q: shapes %v and %v must match exactly", name, a.Shape(), b.Shape())
		}
		return []*tensor.RawTensor{f(dev, a, b)}, nil
	}
}

func matMulKernel(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
	a, b := inputs[0], inputs[1]
	if err := checkTypeAttr("MatMul", attrs, inputs); err != nil {
		return nil, err
	}
	if err := sameDType("MatMul", a, b); err != nil {
		return nil, err
	}
	if len(a.Shape()) != 2 || len(b.Shape()) != 2 {
		return nil, Statusf(InvalidArgument, "op \"MatMul\": want 2D inputs, got %v and %v", a.Shape(), b.Shape())
	}
	if a.Shape()[1] != b.Shape()[0] {
		return nil, Statusf(InvalidArgument, "op \"MatMul\": inner dimensions %d and %d differ", a.Shape()[1], b.Shape()[0])
	}
	return []*tensor.RawTensor{dev.MatMul(a, b)}, nil
}

func transposeKernel(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
	x := inputs[0]
	if err := checkTypeAttr("Transpose", attrs, inputs); err != nil {
		return nil, err
	}
	var axes []int
	if attrs.Has("perm") {
		perm, err := attrs.IntList("perm")
		if err != nil {
			return nil, err
		}
		rank := len(x.Shape())
		if len(perm) != rank {
			return nil, Statusf(InvalidArgument, "op \"Transpose\": perm has %d entries for rank %d", len(perm), rank)
		}
		seen := make([]bool, rank)
		axes = make([]int, rank)
		for i, p := range perm {
			if p < 0 || int(p) >= rank || seen[p] {
				return nil, Statusf(InvalidArgument, "op \"Transpose\": perm %v is not a permutation of [0,%d)", perm, rank)
			}
			seen[p] = true
			axes[i] = int(p)
		}
	}
	return []*tensor.RawTensor{dev.Transpose(x, axes...)}, nil
}

// reshapeKernel treats the second input as the target shape vector. One
// entry may be -1, inferred from the element count.
func reshapeKernel(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
	x, shapeT := inputs[0], inputs[1]
	if err := checkTypeAttr("Reshape", attrs, inputs[:1]); err != nil {
		return nil, err
	}
	if len(shapeT.Shape()) != 1 {
		return nil, Statusf(InvalidArgument, "op \"Reshape\": shape input must be 1D, got %v", shapeT.Shape())
	}
	var dims []int
	switch shapeT.DType() {
	case tensor.Int32:
		for _, d := range shapeT.AsInt32() {
			dims = append(dims, int(d))
		}
	case tensor.Int64:
		for _, d := range shapeT.AsInt64() {
			dims = append(dims, int(d))
		}
	default:
		return nil, Statusf(InvalidArgument, "op \"Reshape\": shape input must be int32 or int64, got %s", shapeT.DType())
	}

	infer := -1
	known := 1
	for i, d := range dims {
		switch {
		case d == -1:
			if infer >= 0 {
				return nil, Statusf(InvalidArgument, "op \"Reshape\": more than one -1 in shape %v", dims)
			}
			infer = i
		case d < 0:
			return nil, Statusf(InvalidArgument, "op \"Reshape\": invalid dimension %d", d)
		default:
			known *= d
		}
	}
	total := x.NumElements()
	if infer >= 0 {
		if known == 0 || total%known != 0 {
			return nil, Statusf(InvalidArgument, "op \"Reshape\": cannot infer -1 in %v for %d elements", dims, total)
		}
		dims[infer] = total / known
	} else if known != total {
		return nil, Statusf(InvalidArgument, "op \"Reshape\": shape %v has %d elements, input has %d", dims, known, total)
	}
	return []*tensor.RawTensor{dev.Reshape(x, tensor.Shape(dims))}, nil
}

func castKernel(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
	x := inputs[0]
	dst, err := attrs.Type("DstT")
	if err != nil {
		return nil, WrapStatus(InvalidArgument, err, "op \"Cast\": missing destination type")
	}
	if attrs.Has("SrcT") {
		src, err := attrs.Type("SrcT")
		if err != nil {
			return nil, err
		}
		if x.DType() != src {
			return nil, Statusf(InvalidArgument, "op \"Cast\": input dtype %s, attribute SrcT says %s", x.DType(), src)
		}
	}
	return []*tensor.RawTensor{dev.Cast(x, dst)}, nil
}

func floatUnaryKernel(name string, f func(tensor.Backend, *tensor.RawTensor) *tensor.RawTensor) Kernel {
	return func(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
		x := inputs[0]
		if err := checkTypeAttr(name, attrs, inputs); err != nil {
			return nil, err
		}
		if !x.DType().IsFloat() {
			return nil, Statusf(InvalidArgument, "op %q: want a float dtype, got %s", name, x.DType())
		}
		return []*tensor.RawTensor{f(dev, x)}, nil
	}
}

func negKernel(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
	x := inputs[0]
	if err := checkTypeAttr("Neg", attrs, inputs); err != nil {
		return nil, err
	}
	if !x.DType().IsNumeric() {
		return nil, Statusf(InvalidArgument, "op \"Neg\": dtype %s is not numeric", x.DType())
	}
	return []*tensor.RawTensor{dev.Neg(x)}, nil
}

func softmaxKernel(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
	x := inputs[0]
	if err := checkTypeAttr("Softmax", attrs, inputs); err != nil {
		return nil, err
	}
	if !x.DType().IsFloat() {
		return nil, Statusf(InvalidArgument, "op \"Softmax\": want a float dtype, got %s", x.DType())
	}
	rank := len(x.Shape())
	if rank == 0 {
		return nil, Statusf(InvalidArgument, "op \"Softmax\": input must have rank >= 1")
	}
	dim, err := attrs.IntOrDefault("axis", int64(rank-1))
	if err != nil {
		return nil, err
	}
	if dim < 0 {
		dim += int64(rank)
	}
	if dim < 0 || int(dim) >= rank {
		return nil, Statusf(InvalidArgument, "op \"Softmax\": axis %d out of range for rank %d", dim, rank)
	}
	return []*tensor.RawTensor{dev.Softmax(x, int(dim))}, nil
}

// sumKernel reduces over one axis when "axis" is set, otherwise over all
// elements to a scalar.
func sumKernel(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
	x := inputs[0]
	if err := checkTypeAttr("Sum", attrs, inputs); err != nil {
		return nil, err
	}
	if !x.DType().IsNumeric() {
		return nil, Statusf(InvalidArgument, "op \"Sum\": dtype %s is not numeric", x.DType())
	}
	if !attrs.Has("axis") {
		return []*tensor.RawTensor{dev.Sum(x)}, nil
	}
	axis, err := attrs.Int("axis")
	if err != nil {
		return nil, err
	}
	rank := len(x.Shape())
	if axis < 0 {
		axis += int64(rank)
	}
	if axis < 0 || int(axis) >= rank {
		return nil, Statusf(InvalidArgument, "op \"Sum\": axis %d out of range for rank %d", axis, rank)
	}
	keep, err := attrs.BoolOrDefault("keep_dims", false)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{dev.SumDim(x, int(axis), keep)}, nil
}

func concatKernel(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
	if err := checkTypeAttr("ConcatV2", attrs, inputs); err != nil {
		return nil, err
	}
	axis, err := attrs.Int("axis")
	if err != nil {
		return nil, WrapStatus(InvalidArgument, err, "op \"ConcatV2\": missing axis")
	}
	rank := len(inputs[0].Shape())
	if axis < 0 {
		axis += int64(rank)
	}
	if axis < 0 || int(axis) >= rank {
		return nil, Statusf(InvalidArgument, "op \"ConcatV2\": axis %d out of range for rank %d", axis, rank)
	}
	first := inputs[0]
	for i, in := range inputs[1:] {
		if err := sameDType("ConcatV2", first, in); err != nil {
			return nil, err
		}
		if len(in.Shape()) != rank {
			return nil, Statusf(InvalidArgument, "op \"ConcatV2\": input %d has rank %d, want %d", i+1, len(in.Shape()), rank)
		}
		for d := 0; d < rank; d++ {
			if d != int(axis) && in.Shape()[d] != first.Shape()[d] {
				return nil, Statusf(InvalidArgument, "op \"ConcatV2\": input %d shape %v differs from %v outside axis %d", i+1, in.Shape(), first.Shape(), axis)
			}
		}
	}
	return []*tensor.RawTensor{dev.Cat(inputs, int(axis))}, nil
}

// fillKernel builds a constant tensor from a fully defined "shape"
// attribute and a scalar "value" tensor attribute.
func fillKernel(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
	ps, err := attrs.Shape("shape")
	if err != nil {
		return nil, WrapStatus(InvalidArgument, err, "op \"Fill\": missing shape")
	}
	shape, err := ps.Shape()
	if err != nil {
		return nil, Statusf(InvalidArgument, "op \"Fill\": shape %s is not fully defined", ps)
	}
	value, err := attrs.Tensor("value")
	if err != nil {
		return nil, WrapStatus(InvalidArgument, err, "op \"Fill\": missing value")
	}
	if value.NumElements() != 1 {
		return nil, Statusf(InvalidArgument, "op \"Fill\": value must be a scalar, got shape %v", value.Shape())
	}
	out, err := tensor.NewRaw(shape, value.DType(), dev.Device())
	if err != nil {
		return nil, Statusf(InvalidArgument, "op \"Fill\": %v", err)
	}
	elem := value.DType().Size()
	src := value.Data()[:elem]
	dst := out.Data()
	for off := 0; off < len(dst); off += elem {
		copy(dst[off:off+elem], src)
	}
	return []*tensor.RawTensor{out}, nil
}

// ensureShapeKernel passes its input through after checking it against a
// possibly partial "shape" attribute. Unknown ranks and -1 dimensions
// match anything.
func ensureShapeKernel(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error) {
	x := inputs[0]
	if err := checkTypeAttr("EnsureShape", attrs, inputs); err != nil {
		return nil, err
	}
	ps, err := attrs.Shape("shape")
	if err != nil {
		return nil, WrapStatus(InvalidArgument, err, "op \"EnsureShape\": missing shape")
	}
	if !ps.Compatible(x.Shape()) {
		return nil, Statusf(InvalidArgument, "op \"EnsureShape\": shape %v is not compatible with %s", x.Shape(), ps)
	}
	return []*tensor.RawTensor{x.Clone()}, nil
}
