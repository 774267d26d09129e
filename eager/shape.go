package eager

import (
	"fmt"
	"strings"

	"github.com/ember-ml/ember/tensor"
)

// Dimension is one axis of a PartialShape: either a known non-negative size
// or explicitly unknown.
type Dimension struct {
	Size    int64
	Unknown bool
}

// Dim returns a known dimension.
func Dim(size int64) Dimension {
	return Dimension{Size: size}
}

// UnknownDim returns an unknown dimension.
func UnknownDim() Dimension {
	return Dimension{Unknown: true}
}

// PartialShape is a possibly incomplete shape used in operation attributes:
// the rank, or any individual dimension, may be unknown. The core runtime
// only ever sees this explicit form; the -1 sentinel exists solely in the
// wire encoding at the kernel boundary.
type PartialShape struct {
	dims        []Dimension
	unknownRank bool
}

// UnknownShape returns a shape with unknown rank.
func UnknownShape() PartialShape {
	return PartialShape{unknownRank: true}
}

// MakeShape builds a PartialShape of known rank. A negative size marks that
// dimension as unknown.
func MakeShape(dims ...int64) PartialShape {
	ds := make([]Dimension, len(dims))
	for i, d := range dims {
		if d < 0 {
			ds[i] = UnknownDim()
		} else {
			ds[i] = Dim(d)
		}
	}
	return PartialShape{dims: ds}
}

// MakePartialShape builds a PartialShape of known rank from explicit
// dimensions.
func MakePartialShape(dims []Dimension) PartialShape {
	return PartialShape{dims: append([]Dimension(nil), dims...)}
}

// FromShape lifts a fully known tensor shape into a PartialShape.
func FromShape(s tensor.Shape) PartialShape {
	ds := make([]Dimension, len(s))
	for i, d := range s {
		ds[i] = Dim(int64(d))
	}
	return PartialShape{dims: ds}
}

// UnknownRank reports whether even the rank is unknown.
func (p PartialShape) UnknownRank() bool {
	return p.unknownRank
}

// Rank returns the number of dimensions and whether it is known.
func (p PartialShape) Rank() (int, bool) {
	if p.unknownRank {
		return 0, false
	}
	return len(p.dims), true
}

// Dims returns a copy of the dimensions. Nil when the rank is unknown.
func (p PartialShape) Dims() []Dimension {
	if p.unknownRank {
		return nil
	}
	return append([]Dimension(nil), p.dims...)
}

// IsFullyDefined reports whether the rank and every dimension are known.
func (p PartialShape) IsFullyDefined() bool {
	if p.unknownRank {
		return false
	}
	for _, d := range p.dims {
		if d.Unknown {
			return false
		}
	}
	return true
}

// Shape converts a fully defined PartialShape to a tensor.Shape.
func (p PartialShape) Shape() (tensor.Shape, error) {
	if !p.IsFullyDefined() {
		return nil, Statusf(InvalidArgument, "shape %s is not fully defined", p)
	}
	s := make(tensor.Shape, len(p.dims))
	for i, d := range p.dims {
		s[i] = int(d.Size)
	}
	return s, nil
}

// Compatible reports whether a concrete shape satisfies this partial shape:
// unknown rank matches anything, unknown dimensions match any size.
func (p PartialShape) Compatible(s tensor.Shape) bool {
	if p.unknownRank {
		return true
	}
	if len(p.dims) != len(s) {
		return false
	}
	for i, d := range p.dims {
		if !d.Unknown && d.Size != int64(s[i]) {
			return false
		}
	}
	return true
}

// Equal reports structural equality. Recognized by go-cmp.
func (p PartialShape) Equal(o PartialShape) bool {
	if p.unknownRank != o.unknownRank {
		return false
	}
	if p.unknownRank {
		return true
	}
	if len(p.dims) != len(o.dims) {
		return false
	}
	for i := range p.dims {
		if p.dims[i] != o.dims[i] {
			return false
		}
	}
	return true
}

// String renders the shape, using ? for unknown dimensions and rank.
func (p PartialShape) String() string {
	if p.unknownRank {
		return "<unknown rank>"
	}
	parts := make([]string, len(p.dims))
	for i, d := range p.dims {
		if d.Unknown {
			parts[i] = "?"
		} else {
			parts[i] = fmt.Sprintf("%d", d.Size)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// encodeShape lowers a PartialShape to the wire form kernels consume:
// rank -1 with nil dims for unknown rank, and -1 entries for unknown
// dimensions. The -1 mapping is a hard contract of the attribute encoding.
func encodeShape(p PartialShape) wireShape {
	if p.unknownRank {
		return wireShape{rank: -1}
	}
	dims := make([]int64, len(p.dims))
	for i, d := range p.dims {
		if d.Unknown {
			dims[i] = -1
		} else {
			dims[i] = d.Size
		}
	}
	return wireShape{dims: dims, rank: len(dims)}
}

// decodeShape lifts the wire form back into the explicit representation.
func decodeShape(w wireShape) PartialShape {
	if w.rank < 0 {
		return UnknownShape()
	}
	dims := make([]Dimension, w.rank)
	for i, d := range w.dims {
		if d < 0 {
			dims[i] = UnknownDim()
		} else {
			dims[i] = Dim(d)
		}
	}
	return PartialShape{dims: dims}
}

// wireShape is the sentinel-encoded shape attribute representation.
type wireShape struct {
	dims []int64
	rank int
}
