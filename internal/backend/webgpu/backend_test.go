//go:build windows

package webgpu

import (
	"testing"

	"github.com/ember-ml/ember/internal/tensor"
)

func newGPUBackend(t *testing.T) *Backend {
	t.Helper()
	if !IsAvailable() {
		t.Skip("WebGPU not available")
	}
	b, err := New()
	if err != nil {
		t.Skipf("WebGPU init failed: %v", err)
	}
	t.Cleanup(b.Release)
	return b
}

func TestWebGPU_Add(t *testing.T) {
	b := newGPUBackend(t)

	a, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.WebGPU)
	c, _ := tensor.FromSlice([]float32{10, 20, 30, 40}, tensor.Shape{2, 2}, tensor.WebGPU)

	result := b.Add(a, c)
	want := []float32{11, 22, 33, 44}
	for i, w := range want {
		if result.AsFloat32()[i] != w {
			t.Errorf("Add[%d] = %v, want %v", i, result.AsFloat32()[i], w)
		}
	}
}

func TestWebGPU_MatMul(t *testing.T) {
	b := newGPUBackend(t)

	a, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.WebGPU)
	c, _ := tensor.FromSlice([]float32{5, 6, 7, 8}, tensor.Shape{2, 2}, tensor.WebGPU)

	result := b.MatMul(a, c)
	want := []float32{19, 22, 43, 50}
	for i, w := range want {
		if result.AsFloat32()[i] != w {
			t.Errorf("MatMul[%d] = %v, want %v", i, result.AsFloat32()[i], w)
		}
	}
}

func TestWebGPU_FallbackToCPU(t *testing.T) {
	b := newGPUBackend(t)

	// Int64 has no shader; the embedded CPU backend must take over.
	a, _ := tensor.FromSlice([]int64{1, 2, 3}, tensor.Shape{3}, tensor.WebGPU)
	result := b.Add(a, a)
	for i, w := range []int64{2, 4, 6} {
		if result.AsInt64()[i] != w {
			t.Errorf("fallback Add[%d] = %d, want %d", i, result.AsInt64()[i], w)
		}
	}
}
