package eager

import (
	"strings"

	"github.com/ember-ml/ember/tensor"
)

// attrKind tags the value stored for one attribute name. Attributes are a
// tagged union keyed by name; each name holds exactly one kind and the last
// set wins.
type attrKind int

const (
	attrString attrKind = iota
	attrStringList
	attrInt
	attrIntList
	attrFloat
	attrFloatList
	attrBool
	attrBoolList
	attrType
	attrTypeList
	attrShape
	attrShapeList
	attrTensor
)

func (k attrKind) String() string {
	switch k {
	case attrString:
		return "string"
	case attrStringList:
		return "list(string)"
	case attrInt:
		return "int"
	case attrIntList:
		return "list(int)"
	case attrFloat:
		return "float"
	case attrFloatList:
		return "list(float)"
	case attrBool:
		return "bool"
	case attrBoolList:
		return "list(bool)"
	case attrType:
		return "type"
	case attrTypeList:
		return "list(type)"
	case attrShape:
		return "shape"
	case attrShapeList:
		return "list(shape)"
	case attrTensor:
		return "tensor"
	default:
		return "unknown"
	}
}

// attrValue holds one attribute of any kind. Slice values are copied on
// entry so later caller mutation cannot reach staged state.
type attrValue struct {
	kind attrKind

	s      string
	strs   []string
	i      int64
	ints   []int64
	f      float32
	floats []float32
	b      bool
	bools  []bool
	dt     tensor.DataType
	dts    []tensor.DataType
	shape  wireShape
	shapes []wireShape
	t      *tensor.RawTensor
}

// hasNullByte reports whether a string carries an embedded NUL, which the
// attribute and name encoding cannot represent.
func hasNullByte(s string) bool {
	return strings.IndexByte(s, 0) >= 0
}

// checkAttrName validates an attribute name before staging.
func checkAttrName(name string) error {
	if name == "" {
		return Statusf(InvalidArgument, "attribute name is empty")
	}
	if hasNullByte(name) {
		return Statusf(InvalidArgument, "attribute name %q contains an embedded null byte", name)
	}
	return nil
}
