// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"sync"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/fill.wgsl
var fillShaderWGSL string

// fillWorkgroupSize matches @workgroup_size in fill.wgsl.
const fillWorkgroupSize = 256

// fillParamsSize is the byte size of the FillParams uniform, padded to
// the 16-byte uniform alignment.
const fillParamsSize = 16

// fillPipeline expands a texel value into a whole-surface byte slab on
// the GPU. The compute shader writes a repeating 4-byte pattern into a
// storage buffer which is read back and uploaded as texture data. When
// pipeline creation fails (no compute support), run expands on the CPU.
type fillPipeline struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue

	shaderModule hal.ShaderModule
	bindLayout   hal.BindGroupLayout
	pipeLayout   hal.PipelineLayout
	pipeline     hal.ComputePipeline

	initOnce sync.Once
	ready    bool
}

func newFillPipeline(device hal.Device, queue hal.Queue) *fillPipeline {
	return &fillPipeline{device: device, queue: queue}
}

// init compiles the fill shader and builds the compute pipeline. Failure
// is not an error; run falls back to the CPU expansion.
func (p *fillPipeline) init() {
	p.initOnce.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if err := p.build(); err != nil {
			p.destroyLocked()
			return
		}
		p.ready = true
	})
}

func (p *fillPipeline) build() error {
	spirvBytes, err := naga.Compile(fillShaderWGSL)
	if err != nil {
		return fmt.Errorf("wgpu: compile fill shader: %w", err)
	}
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	shaderModule, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "surf3d_fill_shader",
		Source: hal.ShaderSource{SPIRV: spirvCode},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create fill shader module: %w", err)
	}
	p.shaderModule = shaderModule

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "surf3d_fill_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type:           gputypes.BufferBindingTypeUniform,
					MinBindingSize: fillParamsSize,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create fill bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "surf3d_fill_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create fill pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "surf3d_fill_pipeline",
		Layout: p.pipeLayout,
		Compute: hal.ComputeState{
			Module:     p.shaderModule,
			EntryPoint: "cs_fill",
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create fill pipeline: %w", err)
	}
	p.pipeline = pipeline
	return nil
}

// run produces a byteSize slab of the repeated texel. texel must be 1, 2
// or 4 bytes so the pattern repeats within a 32-bit word.
func (p *fillPipeline) run(texel []byte, byteSize uint64) ([]byte, error) {
	pattern := patternWord(texel)
	words := (byteSize + 3) / 4

	p.init()
	p.mu.Lock()
	ready := p.ready
	p.mu.Unlock()

	if ready {
		if slab, err := p.dispatch(pattern, words); err == nil {
			return slab[:byteSize], nil
		}
	}
	return cpuFill(pattern, byteSize), nil
}

// dispatch runs the fill shader into a storage buffer and reads it back.
func (p *fillPipeline) dispatch(pattern uint32, words uint64) ([]byte, error) {
	bufSize := words * 4

	storageBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "surf3d_fill_storage", Size: bufSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create fill storage buffer: %w", err)
	}
	defer p.device.DestroyBuffer(storageBuf)

	stagingBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "surf3d_fill_staging", Size: bufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create fill staging buffer: %w", err)
	}
	defer p.device.DestroyBuffer(stagingBuf)

	uniformBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "surf3d_fill_params", Size: fillParamsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create fill uniform buffer: %w", err)
	}
	defer p.device.DestroyBuffer(uniformBuf)

	params := make([]byte, fillParamsSize)
	binary.LittleEndian.PutUint32(params[0:], pattern)
	binary.LittleEndian.PutUint32(params[4:], uint32(words))
	if err := p.queue.WriteBuffer(uniformBuf, 0, params); err != nil {
		return nil, fmt.Errorf("wgpu: write fill params: %w", err)
	}

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "surf3d_fill_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: fillParamsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: storageBuf.NativeHandle(), Offset: 0, Size: bufSize}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create fill bind group: %w", err)
	}
	defer p.device.DestroyBindGroup(bindGroup)

	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "surf3d_fill_encoder"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create fill encoder: %w", err)
	}
	if err := encoder.BeginEncoding("surf3d_fill"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	computePass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "surf3d_fill_pass"})
	computePass.SetPipeline(p.pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.Dispatch(uint32((words+fillWorkgroupSize-1)/fillWorkgroupSize), 1, 1)
	computePass.End()

	encoder.CopyBufferToBuffer(storageBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: bufSize},
	})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	if _, err := p.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return nil, fmt.Errorf("wgpu: submit: %w", err)
	}
	if err := p.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wgpu: wait for GPU: %w", err)
	}

	mapping, err := p.device.MapBuffer(stagingBuf, 0, bufSize)
	if err != nil {
		return nil, fmt.Errorf("wgpu: fill readback: %w", err)
	}
	slab := make([]byte, bufSize)
	copy(slab, unsafe.Slice((*byte)(mapping.Ptr), bufSize))
	if err := p.device.UnmapBuffer(stagingBuf); err != nil {
		return nil, fmt.Errorf("wgpu: unmap fill staging buffer: %w", err)
	}
	return slab, nil
}

// destroy releases pipeline resources.
func (p *fillPipeline) destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destroyLocked()
}

func (p *fillPipeline) destroyLocked() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyComputePipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shaderModule != nil {
		p.device.DestroyShaderModule(p.shaderModule)
		p.shaderModule = nil
	}
	p.ready = false
}

// patternWord repeats a 1-, 2- or 4-byte texel into a 32-bit word.
func patternWord(texel []byte) uint32 {
	var b [4]byte
	for i := 0; i < 4; i++ {
		b[i] = texel[i%len(texel)]
	}
	return binary.LittleEndian.Uint32(b[:])
}

// cpuFill expands the pattern on the host.
func cpuFill(pattern uint32, byteSize uint64) []byte {
	slab := make([]byte, (byteSize+3)/4*4)
	for off := 0; off < len(slab); off += 4 {
		binary.LittleEndian.PutUint32(slab[off:], pattern)
	}
	return slab[:byteSize]
}
