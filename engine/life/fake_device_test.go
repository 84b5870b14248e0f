package life

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

type dispatchRecord struct {
	provider   bind_group_provider.BindGroupProvider
	workgroups [3]uint32
}

type drawRecord struct {
	provider      bind_group_provider.BindGroupProvider
	mesh          bind_group_provider.BindGroupProvider
	instanceCount uint32
}

// fakeDevice keeps buffers in host memory and runs dispatches with StepCells when the frame
// is submitted. Its GPU handles are placeholders and must never be released.
type fakeDevice struct {
	mu sync.Mutex

	buffers   map[*wgpu.Buffer][]byte
	pipelines map[string]pipeline.Pipeline
	calls     []string
	submits   int

	frameOpen bool
	passOpen  bool
	pending   []dispatchRecord

	dispatches []dispatchRecord
	draws      []drawRecord

	initCalls       int
	failInitAt      int
	failInit        error
	failBeginFrame  error
	failDispatch    error
	failRenderPass  error
	failEndFrame    error
	failReadBuffer  error
	corruptReadback bool
}

var _ Device = &fakeDevice{}
var _ Device = renderer.Renderer(nil)

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		buffers:   make(map[*wgpu.Buffer][]byte),
		pipelines: make(map[string]pipeline.Pipeline),
	}
}

func (f *fakeDevice) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range pipelines {
		if err := p.Validate(); err != nil {
			return err
		}
		f.pipelines[p.PipelineKey()] = p
	}
	return nil
}

func (f *fakeDevice) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, _ map[int]wgpu.BufferUsage, sizes map[int]uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if provider.BindGroupLayout() == nil {
		provider.SetBindGroupLayout(new(wgpu.BindGroupLayout))
	}
	for _, e := range descriptor.Entries {
		binding := int(e.Binding)
		if provider.Buffer(binding) != nil {
			continue
		}
		size := e.Buffer.MinBindingSize
		if s, ok := sizes[binding]; ok {
			size = s
		}
		buf := new(wgpu.Buffer)
		f.buffers[buf] = make([]byte, size)
		provider.SetBuffer(binding, buf)
	}
	f.initCalls++
	if f.failInit != nil && f.initCalls == f.failInitAt {
		// buffers exist, the bind group does not
		return f.failInit
	}
	provider.SetBindGroup(new(wgpu.BindGroup))
	return nil
}

func (f *fakeDevice) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, _ []byte, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	buf := new(wgpu.Buffer)
	f.buffers[buf] = append([]byte(nil), vertexData...)
	provider.SetVertexBuffer(buf)
	provider.SetVertexCount(count)
	return nil
}

func (f *fakeDevice) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, w := range writes {
		if err := w.Validate(); err != nil {
			return err
		}
		data, ok := f.buffers[w.Provider.Buffer(w.Binding)]
		if !ok {
			return fmt.Errorf("write %s[%d]: no buffer", w.Provider.Label(), w.Binding)
		}
		if int(w.Offset)+len(w.Data) > len(data) {
			return fmt.Errorf("write %s[%d]: %d bytes overflow %d", w.Provider.Label(), w.Binding, len(w.Data), len(data))
		}
		copy(data[w.Offset:], w.Data)
	}
	return nil
}

func (f *fakeDevice) ReadBuffer(ctx context.Context, provider bind_group_provider.BindGroupProvider, binding int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.failReadBuffer != nil {
		return nil, f.failReadBuffer
	}
	data, ok := f.buffers[provider.Buffer(binding)]
	if !ok {
		return nil, fmt.Errorf("read %s[%d]: no buffer", provider.Label(), binding)
	}
	out := append([]byte(nil), data...)
	if f.corruptReadback && len(out) >= 4 {
		out[0] ^= 1
	}
	return out, nil
}

func (f *fakeDevice) BeginFrame() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "begin")
	if f.failBeginFrame != nil {
		return f.failBeginFrame
	}
	if f.frameOpen {
		return renderer.ErrFrameInProgress
	}
	f.frameOpen = true
	return nil
}

func (f *fakeDevice) CancelFrame() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "cancel")
	f.frameOpen, f.passOpen = false, false
	f.pending = nil
}

func (f *fakeDevice) DispatchCompute(pipelineKey string, provider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "dispatch")
	if f.failDispatch != nil {
		return f.failDispatch
	}
	if !f.frameOpen {
		return renderer.ErrNoActiveFrame
	}
	if f.passOpen {
		return renderer.ErrFrameInProgress
	}
	if _, ok := f.pipelines[pipelineKey]; !ok {
		return fmt.Errorf("compute pipeline %q not registered", pipelineKey)
	}
	rec := dispatchRecord{provider: provider, workgroups: workGroupCount}
	f.pending = append(f.pending, rec)
	f.dispatches = append(f.dispatches, rec)
	return nil
}

func (f *fakeDevice) BeginRenderPass() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "pass")
	if f.failRenderPass != nil {
		return f.failRenderPass
	}
	if !f.frameOpen {
		return renderer.ErrNoActiveFrame
	}
	f.passOpen = true
	return nil
}

func (f *fakeDevice) DrawCall(pipelineKey string, mesh bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "draw")
	if !f.passOpen {
		return renderer.ErrNoActiveFrame
	}
	if _, ok := f.pipelines[pipelineKey]; !ok {
		return fmt.Errorf("render pipeline %q not registered", pipelineKey)
	}
	f.draws = append(f.draws, drawRecord{provider: bindGroups[0], mesh: mesh, instanceCount: instanceCount})
	return nil
}

func (f *fakeDevice) EndFrame() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "end")
	if !f.frameOpen {
		return renderer.ErrNoActiveFrame
	}
	f.frameOpen, f.passOpen = false, false
	pending := f.pending
	f.pending = nil
	if f.failEndFrame != nil {
		return f.failEndFrame
	}

	for _, d := range pending {
		f.execute(d)
	}
	f.submits++
	return nil
}

func (f *fakeDevice) Present() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "present")
}

// execute runs one dispatch the way the kernel does, reading the grid from the uniform.
func (f *fakeDevice) execute(d dispatchRecord) {
	u := f.buffers[d.provider.Buffer(UniformBinding)]
	g := grid.Grid{
		Width:  int(math.Float32frombits(binary.LittleEndian.Uint32(u[0:]))),
		Height: int(math.Float32frombits(binary.LittleEndian.Uint32(u[4:]))),
	}
	src, _ := DecodeCells(f.buffers[d.provider.Buffer(ReadBinding)])
	dst := make([]uint32, len(src))
	StepCells(g, src, dst)
	copy(f.buffers[d.provider.Buffer(WriteBinding)], EncodeCells(dst))
}

func (f *fakeDevice) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeDevice) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeDevice) bufferCells(buf *wgpu.Buffer) []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	cells, _ := DecodeCells(f.buffers[buf])
	return cells
}
