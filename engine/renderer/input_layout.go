package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/mdl-go/engine/renderer/shader"
)

// inputLayout is the WebGPU realization of device.InputLayout. It pairs the shader the
// layout was validated against with the translated vertex attributes; the backend
// expands it into a wgpu.VertexBufferLayout when a pipeline variant is created.
type inputLayout struct {
	sh         shader.Shader
	attributes []wgpu.VertexAttribute
}

// Release implements device.InputLayout. The layout holds no GPU objects of its own;
// pipelines derived from it are owned by the backend's variant cache.
func (l *inputLayout) Release() {}
