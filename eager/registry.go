package eager

import (
	"sort"

	"github.com/ember-ml/ember/tensor"
)

// Kernel executes one operation against a device backend. Inputs arrive
// flattened in staging order; attrs is the typed view over the staged
// attributes. Kernels validate and return status errors; they never panic
// on bad user input.
type Kernel func(dev tensor.Backend, inputs []*tensor.RawTensor, attrs *Attrs) ([]*tensor.RawTensor, error)

// OpDef describes one registered operation.
type OpDef struct {
	// Name is the registry key, e.g. "MatMul".
	Name string

	// MinInputs and MaxInputs bound the flattened input count, checked at
	// execute time. MaxInputs of -1 means unbounded (variadic ops).
	MinInputs int
	MaxInputs int

	// NumOutputs is the fixed output count the kernel produces.
	NumOutputs int

	Kernel Kernel
}

// Registry maps operation names to definitions. Immutable once a Context
// holds it.
type Registry struct {
	defs map[string]OpDef
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]OpDef)}
}

// Register adds one definition. Names are unique.
func (r *Registry) Register(def OpDef) error {
	if def.Name == "" {
		return Statusf(InvalidArgument, "op definition has an empty name")
	}
	if hasNullByte(def.Name) {
		return Statusf(InvalidArgument, "op name %q contains an embedded null byte", def.Name)
	}
	if def.Kernel == nil {
		return Statusf(InvalidArgument, "op %q has no kernel", def.Name)
	}
	if _, exists := r.defs[def.Name]; exists {
		return Statusf(AlreadyExists, "op %q is already registered", def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// Lookup returns the definition for name.
func (r *Registry) Lookup(name string) (OpDef, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
