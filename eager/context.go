package eager

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/multierr"

	"github.com/ember-ml/ember/backend/cpu"
	"github.com/ember-ml/ember/tensor"
)

// ContextOptions configures a Context.
type ContextOptions struct {
	// Devices lists the compute backends to expose, in priority order.
	// The first entry is the default placement. Empty means a fresh CPU
	// backend.
	Devices []tensor.Backend

	// CustomOps are registered alongside the builtin operations.
	CustomOps []OpDef
}

type deviceEntry struct {
	name    string
	backend tensor.Backend
}

// Context is the eager runtime: a device table plus an operation registry.
// Both are immutable after construction, so a Context is safe for
// concurrent use across distinct descriptors. It also tracks live
// descriptors and tensor handles so resource leaks are observable.
type Context struct {
	devices  []deviceEntry
	registry *Registry

	liveOps     atomic.Int64
	liveHandles atomic.Int64
	closed      atomic.Bool
}

// NewContext creates a runtime context from the given options.
func NewContext(opts ContextOptions) (*Context, error) {
	backends := opts.Devices
	if len(backends) == 0 {
		backends = []tensor.Backend{cpu.New()}
	}

	ctx := &Context{}
	counts := make(map[string]int)
	for _, b := range backends {
		if b == nil {
			return nil, Statusf(InvalidArgument, "nil device backend")
		}
		kind := strings.ToUpper(b.Name())
		name := fmt.Sprintf("/device:%s:%d", kind, counts[kind])
		counts[kind]++
		ctx.devices = append(ctx.devices, deviceEntry{name: name, backend: b})
	}

	registry := newBuiltinRegistry()
	for _, def := range opts.CustomOps {
		if err := registry.Register(def); err != nil {
			return nil, err
		}
	}
	ctx.registry = registry
	return ctx, nil
}

// DeviceNames returns the canonical names of all registered devices.
func (c *Context) DeviceNames() []string {
	names := make([]string, len(c.devices))
	for i, d := range c.devices {
		names[i] = d.name
	}
	return names
}

// OpNames returns the sorted names of all registered operations.
func (c *Context) OpNames() []string {
	return c.registry.Names()
}

// LiveOps returns the number of descriptors not yet released.
func (c *Context) LiveOps() int {
	return int(c.liveOps.Load())
}

// LiveHandles returns the number of tensor handles not yet closed.
func (c *Context) LiveHandles() int {
	return int(c.liveHandles.Load())
}

// Close releases the device backends. The context must not be used
// afterwards; live descriptors and handles are the caller's to release
// and remain observable through LiveOps and LiveHandles.
func (c *Context) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	var errs error
	for _, d := range c.devices {
		switch b := d.backend.(type) {
		case interface{ Close() error }:
			errs = multierr.Append(errs, b.Close())
		case interface{ Release() }:
			b.Release()
		}
	}
	return errs
}

func (c *Context) defaultDevice() deviceEntry {
	return c.devices[0]
}

// resolveDevice normalizes a placement hint to a registered device. The
// empty hint means the default device. Accepted forms, case-insensitively:
// the canonical "/device:CPU:0", the short "CPU:0", and the bare kind
// "CPU" (first device of that kind).
func (c *Context) resolveDevice(hint string) (deviceEntry, error) {
	if hint == "" {
		return c.defaultDevice(), nil
	}
	h := strings.ToUpper(hint)
	for _, d := range c.devices {
		du := strings.ToUpper(d.name)
		if du == h || strings.TrimPrefix(du, "/DEVICE:") == h {
			return d, nil
		}
	}
	// Bare kind: first device whose kind matches.
	for _, d := range c.devices {
		if strings.ToUpper(d.backend.Name()) == h {
			return d, nil
		}
	}
	return deviceEntry{}, Statusf(InvalidArgument, "unknown device %q (have %v)", hint, c.DeviceNames())
}
