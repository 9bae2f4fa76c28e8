// package states provides the canonical render-state set the draw algorithm selects
// from: blend, depth, rasterizer, and sampler states. Instances are shared per device
// through an explicit pool with creation-on-first-use and teardown tied to the device
// (ReleaseDevice), never a bare global.
package states

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/mdl-go/common"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
)

// renderStates is the implementation of the RenderStates interface.
type renderStates struct {
	linearWrap  *wgpu.Sampler
	linearClamp *wgpu.Sampler
}

// RenderStates defines the interface for the shared set of render states a Mesh binds
// before drawing a pass. Blend and depth/rasterizer accessors are pure descriptors;
// samplers are device-created objects owned by the per-device pool.
type RenderStates interface {
	// Opaque returns the blend state for opaque geometry (source replaces destination).
	//
	// Returns:
	//   - *wgpu.BlendState: the opaque blend state
	Opaque() *wgpu.BlendState

	// AlphaBlend returns the blend state for premultiplied-alpha transparency.
	//
	// Returns:
	//   - *wgpu.BlendState: the premultiplied alpha blend state
	AlphaBlend() *wgpu.BlendState

	// NonPremultiplied returns the blend state for straight-alpha transparency.
	//
	// Returns:
	//   - *wgpu.BlendState: the straight alpha blend state
	NonPremultiplied() *wgpu.BlendState

	// DepthDefault returns the depth state for opaque geometry: test and write.
	//
	// Returns:
	//   - device.DepthStencilState: the default depth state
	DepthDefault() device.DepthStencilState

	// DepthRead returns the depth state for transparent geometry: test without writing.
	//
	// Returns:
	//   - device.DepthStencilState: the read-only depth state
	DepthRead() device.DepthStencilState

	// CullClockwise returns the rasterizer state that culls clockwise-wound faces.
	//
	// Returns:
	//   - device.RasterizerState: the clockwise-culling rasterizer state
	CullClockwise() device.RasterizerState

	// CullCounterClockwise returns the rasterizer state that culls counter-clockwise-wound faces.
	//
	// Returns:
	//   - device.RasterizerState: the counter-clockwise-culling rasterizer state
	CullCounterClockwise() device.RasterizerState

	// Wireframe returns the rasterizer state for wireframe rendering with no culling.
	//
	// Returns:
	//   - device.RasterizerState: the wireframe rasterizer state
	Wireframe() device.RasterizerState

	// LinearWrap returns the shared linear-filtering, repeat-addressing sampler.
	//
	// Returns:
	//   - *wgpu.Sampler: the linear wrap sampler
	LinearWrap() *wgpu.Sampler

	// LinearClamp returns the shared linear-filtering, clamp-addressing sampler.
	//
	// Returns:
	//   - *wgpu.Sampler: the linear clamp sampler
	LinearClamp() *wgpu.Sampler
}

var _ RenderStates = &renderStates{}

// pool holds the per-device shared RenderStates instances.
var pool = struct {
	mu      sync.Mutex
	entries map[device.Device]*renderStates
}{entries: make(map[device.Device]*renderStates)}

// ForDevice returns the shared RenderStates for the given device, creating the
// device-owned resources on first use. Subsequent calls with the same device return the
// same instance.
//
// Parameters:
//   - dev: the device whose shared states are requested
//
// Returns:
//   - RenderStates: the shared render states for the device
//   - error: an error if sampler creation fails
func ForDevice(dev device.Device) (RenderStates, error) {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	if st, ok := pool.entries[dev]; ok {
		return st, nil
	}

	wrap, err := dev.CreateSampler(common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeRepeat,
		AddressModeV: wgpu.AddressModeRepeat,
		AddressModeW: wgpu.AddressModeRepeat,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeLinear,
		LodMaxClamp:  32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("states: failed to create linear wrap sampler: %w", err)
	}
	clamp, err := dev.CreateSampler(common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeLinear,
		LodMaxClamp:  32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		wrap.Release()
		return nil, fmt.Errorf("states: failed to create linear clamp sampler: %w", err)
	}

	st := &renderStates{linearWrap: wrap, linearClamp: clamp}
	pool.entries[dev] = st
	return st, nil
}

// ReleaseDevice releases the shared RenderStates for the given device and removes them
// from the pool. Call this when the device itself is being torn down.
//
// Parameters:
//   - dev: the device whose shared states should be released
func ReleaseDevice(dev device.Device) {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	st, ok := pool.entries[dev]
	if !ok {
		return
	}
	if st.linearWrap != nil {
		st.linearWrap.Release()
	}
	if st.linearClamp != nil {
		st.linearClamp.Release()
	}
	delete(pool.entries, dev)
}

func (s *renderStates) Opaque() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorZero,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorZero,
		},
	}
}

func (s *renderStates) AlphaBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	}
}

func (s *renderStates) NonPremultiplied() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	}
}

func (s *renderStates) DepthDefault() device.DepthStencilState {
	return device.DepthStencilState{
		DepthWriteEnabled: true,
		DepthCompare:      wgpu.CompareFunctionLessEqual,
	}
}

func (s *renderStates) DepthRead() device.DepthStencilState {
	return device.DepthStencilState{
		DepthWriteEnabled: false,
		DepthCompare:      wgpu.CompareFunctionLessEqual,
	}
}

func (s *renderStates) CullClockwise() device.RasterizerState {
	return device.RasterizerState{
		FrontFace: wgpu.FrontFaceCCW,
		CullMode:  wgpu.CullModeBack,
	}
}

func (s *renderStates) CullCounterClockwise() device.RasterizerState {
	return device.RasterizerState{
		FrontFace: wgpu.FrontFaceCW,
		CullMode:  wgpu.CullModeBack,
	}
}

func (s *renderStates) Wireframe() device.RasterizerState {
	return device.RasterizerState{
		FrontFace: wgpu.FrontFaceCCW,
		CullMode:  wgpu.CullModeNone,
		Wireframe: true,
	}
}

func (s *renderStates) LinearWrap() *wgpu.Sampler {
	return s.linearWrap
}

func (s *renderStates) LinearClamp() *wgpu.Sampler {
	return s.linearClamp
}
