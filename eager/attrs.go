package eager

import (
	"github.com/ember-ml/ember/tensor"
)

// Attrs is the read-side view kernels receive over an operation's staged
// attributes. Getters are strongly typed; asking for the wrong kind is an
// invalid-argument error, a missing name is not-found.
type Attrs struct {
	m map[string]attrValue
}

// Has reports whether an attribute was set.
func (a *Attrs) Has(name string) bool {
	_, ok := a.m[name]
	return ok
}

func (a *Attrs) get(name string, kind attrKind) (attrValue, error) {
	v, ok := a.m[name]
	if !ok {
		return attrValue{}, Statusf(NotFound, "attribute %q is not set", name)
	}
	if v.kind != kind {
		return attrValue{}, Statusf(InvalidArgument, "attribute %q holds %s, not %s", name, v.kind, kind)
	}
	return v, nil
}

// String returns a string attribute.
func (a *Attrs) String(name string) (string, error) {
	v, err := a.get(name, attrString)
	if err != nil {
		return "", err
	}
	return v.s, nil
}

// StringList returns a string list attribute.
func (a *Attrs) StringList(name string) ([]string, error) {
	v, err := a.get(name, attrStringList)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.strs...), nil
}

// Int returns an int attribute.
func (a *Attrs) Int(name string) (int64, error) {
	v, err := a.get(name, attrInt)
	if err != nil {
		return 0, err
	}
	return v.i, nil
}

// IntOrDefault returns an int attribute, or def when unset.
func (a *Attrs) IntOrDefault(name string, def int64) (int64, error) {
	if !a.Has(name) {
		return def, nil
	}
	return a.Int(name)
}

// IntList returns an int list attribute.
func (a *Attrs) IntList(name string) ([]int64, error) {
	v, err := a.get(name, attrIntList)
	if err != nil {
		return nil, err
	}
	return append([]int64(nil), v.ints...), nil
}

// Float returns a float attribute.
func (a *Attrs) Float(name string) (float32, error) {
	v, err := a.get(name, attrFloat)
	if err != nil {
		return 0, err
	}
	return v.f, nil
}

// FloatList returns a float list attribute.
func (a *Attrs) FloatList(name string) ([]float32, error) {
	v, err := a.get(name, attrFloatList)
	if err != nil {
		return nil, err
	}
	return append([]float32(nil), v.floats...), nil
}

// Bool returns a bool attribute.
func (a *Attrs) Bool(name string) (bool, error) {
	v, err := a.get(name, attrBool)
	if err != nil {
		return false, err
	}
	return v.b, nil
}

// BoolOrDefault returns a bool attribute, or def when unset.
func (a *Attrs) BoolOrDefault(name string, def bool) (bool, error) {
	if !a.Has(name) {
		return def, nil
	}
	return a.Bool(name)
}

// BoolList returns a bool list attribute.
func (a *Attrs) BoolList(name string) ([]bool, error) {
	v, err := a.get(name, attrBoolList)
	if err != nil {
		return nil, err
	}
	return append([]bool(nil), v.bools...), nil
}

// Type returns a data type attribute.
func (a *Attrs) Type(name string) (tensor.DataType, error) {
	v, err := a.get(name, attrType)
	if err != nil {
		return 0, err
	}
	return v.dt, nil
}

// TypeList returns a data type list attribute.
func (a *Attrs) TypeList(name string) ([]tensor.DataType, error) {
	v, err := a.get(name, attrTypeList)
	if err != nil {
		return nil, err
	}
	return append([]tensor.DataType(nil), v.dts...), nil
}

// Shape returns a shape attribute, decoding the sentinel wire form back
// into the explicit representation.
func (a *Attrs) Shape(name string) (PartialShape, error) {
	v, err := a.get(name, attrShape)
	if err != nil {
		return PartialShape{}, err
	}
	return decodeShape(v.shape), nil
}

// ShapeList returns a shape list attribute.
func (a *Attrs) ShapeList(name string) ([]PartialShape, error) {
	v, err := a.get(name, attrShapeList)
	if err != nil {
		return nil, err
	}
	shapes := make([]PartialShape, len(v.shapes))
	for i, w := range v.shapes {
		shapes[i] = decodeShape(w)
	}
	return shapes, nil
}

// Tensor returns a tensor attribute. The returned tensor is owned by the
// descriptor; kernels must not mutate it.
func (a *Attrs) Tensor(name string) (*tensor.RawTensor, error) {
	v, err := a.get(name, attrTensor)
	if err != nil {
		return nil, err
	}
	return v.t, nil
}
