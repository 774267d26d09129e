//go:build !windows

// Package webgpu implements the GPU compute backend via go-webgpu.
//
// The native wgpu loader only ships for windows in this build; on other
// platforms New reports the backend as unavailable.
package webgpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/tensor"
)

// Backend is the WebGPU backend stub for platforms without the native
// library. It is never instantiated; New always fails here.
type Backend struct {
	*cpu.CPUBackend
}

// New reports that WebGPU is not supported on this platform.
func New() (*Backend, error) {
	return nil, fmt.Errorf("webgpu: not supported on this platform")
}

// IsAvailable reports whether a WebGPU adapter can be created.
func IsAvailable() bool {
	return false
}

// Release frees all GPU resources.
func (b *Backend) Release() {}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}
