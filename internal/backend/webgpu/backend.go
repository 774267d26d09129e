//go:build windows

// Package webgpu implements the GPU compute backend via go-webgpu.
//
// Float32 element-wise and matmul kernels run on the GPU; every other
// operation delegates to the embedded CPU backend.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/tensor"
)

// Backend implements tensor operations on GPU, falling back to the embedded
// CPU backend for dtypes and ops without shaders.
type Backend struct {
	*cpu.CPUBackend

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline caches
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex
}

// New creates a new WebGPU backend. Returns an error if no compatible GPU
// or native library is available.
func New() (backend *Backend, err error) {
	// The native loader panics when wgpu_native is missing.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	return &Backend{
		CPUBackend: cpu.New(),
		instance:   instance,
		adapter:    adapter,
		device:     device,
		queue:      queue,
		shaders:    make(map[string]*wgpu.ShaderModule),
		pipelines:  make(map[string]*wgpu.ComputePipeline),
	}, nil
}

// IsAvailable reports whether a WebGPU adapter can be created.
func IsAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}

// Release frees all GPU resources. The backend must not be used afterwards.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.pipelines {
		p.Release()
	}
	b.pipelines = nil
	for _, s := range b.shaders {
		s.Release()
	}
	b.shaders = nil

	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// gpuEligible reports whether the binary GPU path applies.
func gpuEligible(a, c *tensor.RawTensor) bool {
	return a.DType() == tensor.Float32 && c.DType() == tensor.Float32 && a.Shape().Equal(c.Shape())
}

// Add performs element-wise addition, on GPU for same-shape float32 inputs.
func (b *Backend) Add(a, c *tensor.RawTensor) *tensor.RawTensor {
	if !gpuEligible(a, c) {
		return b.CPUBackend.Add(a, c)
	}
	return b.mustBinary(a, c, "add", addShader)
}

// Sub performs element-wise subtraction, on GPU for same-shape float32 inputs.
func (b *Backend) Sub(a, c *tensor.RawTensor) *tensor.RawTensor {
	if !gpuEligible(a, c) {
		return b.CPUBackend.Sub(a, c)
	}
	return b.mustBinary(a, c, "sub", subShader)
}

// Mul performs element-wise multiplication, on GPU for same-shape float32 inputs.
func (b *Backend) Mul(a, c *tensor.RawTensor) *tensor.RawTensor {
	if !gpuEligible(a, c) {
		return b.CPUBackend.Mul(a, c)
	}
	return b.mustBinary(a, c, "mul", mulShader)
}

// Div performs element-wise division, on GPU for same-shape float32 inputs.
func (b *Backend) Div(a, c *tensor.RawTensor) *tensor.RawTensor {
	if !gpuEligible(a, c) {
		return b.CPUBackend.Div(a, c)
	}
	return b.mustBinary(a, c, "div", divShader)
}

// Exp computes the element-wise exponential, on GPU for float32.
func (b *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		return b.CPUBackend.Exp(x)
	}
	return b.mustUnary(x, "exp", expShader)
}

// Sqrt computes the element-wise square root, on GPU for float32.
func (b *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		return b.CPUBackend.Sqrt(x)
	}
	return b.mustUnary(x, "sqrt", sqrtShader)
}

// Neg computes the element-wise negation, on GPU for float32.
func (b *Backend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		return b.CPUBackend.Neg(x)
	}
	return b.mustUnary(x, "neg", negShader)
}

// MatMul computes C = A @ B, on GPU for 2D float32 inputs.
func (b *Backend) MatMul(a, c *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != tensor.Float32 || len(a.Shape()) != 2 || len(c.Shape()) != 2 {
		return b.CPUBackend.MatMul(a, c)
	}
	result, err := b.runMatMul(a, c)
	if err != nil {
		panic(fmt.Sprintf("webgpu: matmul: %v", err))
	}
	return result
}

func (b *Backend) mustBinary(a, c *tensor.RawTensor, name, shader string) *tensor.RawTensor {
	result, err := b.runBinaryOp(a, c, name, shader)
	if err != nil {
		panic(fmt.Sprintf("webgpu: %s: %v", name, err))
	}
	return result
}

func (b *Backend) mustUnary(x *tensor.RawTensor, name, shader string) *tensor.RawTensor {
	result, err := b.runUnaryOp(x, name, shader)
	if err != nil {
		panic(fmt.Sprintf("webgpu: %s: %v", name, err))
	}
	return result
}
