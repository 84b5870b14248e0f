package life

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/geometry"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

const (
	// ComputePipelineKey is the renderer cache key of the simulation kernel.
	ComputePipelineKey = "life_compute"

	// RenderPipelineKey is the renderer cache key of the cell drawing pipeline.
	RenderPipelineKey = "life_render"

	// VerticesPerCell is the vertex count of the instanced cell quad.
	VerticesPerCell = 6

	// DefaultGridSize is the default width and height of the grid.
	DefaultGridSize = 32

	// DefaultWorkgroupSize is the default workgroup edge length along x and y.
	DefaultWorkgroupSize = 8

	// MaxWorkgroupSize is the largest edge whose square fits the WebGPU default
	// maxComputeInvocationsPerWorkgroup of 256.
	MaxWorkgroupSize = 16

	// MaxCells keeps instance indices exact when the vertex stage converts them to f32.
	MaxCells = 1 << 24
)

var (
	// ErrInvalidGrid is returned for non-positive or oversized grid dimensions.
	ErrInvalidGrid = errors.New("life: invalid grid")

	// ErrInvalidWorkgroupSize is returned for a workgroup size outside 1..MaxWorkgroupSize.
	ErrInvalidWorkgroupSize = errors.New("life: invalid workgroup size")
)

// Device is the slice of the renderer the simulation drives. renderer.Renderer satisfies it.
type Device interface {
	RegisterPipelines(pipelines ...pipeline.Pipeline) error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, count int) error
	WriteBuffers(writes []bind_group_provider.BufferWrite) error
	ReadBuffer(ctx context.Context, provider bind_group_provider.BindGroupProvider, binding int) ([]byte, error)
	BeginFrame() error
	CancelFrame()
	DispatchCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error
	BeginRenderPass() error
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error
	EndFrame() error
	Present()
}

// simulation is the implementation of the Simulation interface.
type simulation struct {
	mu     *sync.Mutex
	logger *zap.Logger
	device Device

	grid          grid.Grid
	workgroupSize uint32
	workgroups    [3]uint32

	seedA Seeder
	seedB Seeder

	computeSource  string
	vertexSource   string
	fragmentSource string

	sets bindingSets
	mesh bind_group_provider.BindGroupProvider

	// step counts recorded dispatches; step % 2 picks the binding set
	step uint64

	errorHandler  func(err error)
	frameObserver func(step uint64, elapsed time.Duration, err error)
}

// Simulation advances a Game of Life grid on the GPU and draws it, one generation per frame.
//
// Each frame is recorded into one submission: a compute dispatch over binding set step%2, the
// step increment, then a render pass that draws the buffer the dispatch just wrote.
type Simulation interface {
	// Frame records and presents one frame. Errors go to the configured error handler.
	// This is the pacing loop's entry point.
	Frame()

	// Step records and presents one frame and returns any error.
	//
	// Returns:
	//   - error: an error from any stage of the frame
	Step() error

	// Generation returns the number of dispatches recorded since the last seeding.
	//
	// Returns:
	//   - uint64: the step counter
	Generation() uint64

	// Grid returns the grid dimensions.
	//
	// Returns:
	//   - grid.Grid: the grid
	Grid() grid.Grid

	// Workgroups returns the dispatch size, ceil(width/wg) x ceil(height/wg) x 1.
	//
	// Returns:
	//   - [3]uint32: workgroups per axis
	Workgroups() [3]uint32

	// BindingSet returns orientation i (0 or 1).
	//
	// Parameters:
	//   - i: the orientation
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the binding set
	BindingSet(i int) bind_group_provider.BindGroupProvider

	// Snapshot reads back the buffer currently on screen together with its generation.
	// Intended for debugging and verification; it blocks until the device is idle.
	//
	// Parameters:
	//   - ctx: cancels the readback
	//
	// Returns:
	//   - uint64: the generation the cells belong to
	//   - []uint32: the decoded flags
	//   - error: an error if the readback fails
	Snapshot(ctx context.Context) (uint64, []uint32, error)

	// Cells is Snapshot without the generation.
	Cells(ctx context.Context) ([]uint32, error)

	// Reseed overwrites buffer A with a and buffer B with b, and resets the step counter.
	//
	// Parameters:
	//   - a: the seeder for buffer A
	//   - b: the seeder for buffer B
	//
	// Returns:
	//   - error: an error if the upload fails
	Reseed(a, b Seeder) error

	// Release frees the state buffers, binding sets, and mesh. Pipelines stay with the renderer.
	Release()
}

var _ Simulation = &simulation{}

// NewSimulation validates the configuration, builds the shaders, buffers, binding sets, and
// pipelines, and uploads the uniform, mesh, and both seeds. The returned simulation is at
// generation 0 and displays buffer A.
//
// Parameters:
//   - device: the device to create resources on, typically a renderer.Renderer
//   - options: SimulationBuilderOption values
//
// Returns:
//   - Simulation: the simulation
//   - error: ErrInvalidGrid, ErrInvalidWorkgroupSize, or a wrapped resource creation error
func NewSimulation(device Device, options ...SimulationBuilderOption) (Simulation, error) {
	s := &simulation{
		mu:             &sync.Mutex{},
		logger:         zap.NewNop(),
		device:         device,
		grid:           grid.Grid{Width: DefaultGridSize, Height: DefaultGridSize},
		workgroupSize:  DefaultWorkgroupSize,
		seedA:          SeedRandom(time.Now().UnixNano(), DefaultDensity),
		seedB:          SeedStripes(),
		computeSource:  ComputeShaderSource,
		vertexSource:   VertexShaderSource,
		fragmentSource: FragmentShaderSource,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.errorHandler == nil {
		s.errorHandler = func(err error) {
			s.logger.Error("frame failed", zap.Error(err))
		}
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	s.workgroups = [3]uint32{
		common.CeilDiv(uint32(s.grid.Width), s.workgroupSize),
		common.CeilDiv(uint32(s.grid.Height), s.workgroupSize),
		1,
	}

	if err := s.init(); err != nil {
		s.Release()
		return nil, err
	}

	s.logger.Info("simulation ready",
		zap.Stringer("grid", s.grid),
		zap.Uint32("workgroupSize", s.workgroupSize),
		zap.Uint32s("workgroups", s.workgroups[:]),
	)
	return s, nil
}

func (s *simulation) validate() error {
	if err := s.grid.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGrid, err)
	}
	if s.grid.Exceeds(MaxCells) {
		return fmt.Errorf("%w: %s exceeds %d cells", ErrInvalidGrid, s.grid, MaxCells)
	}
	if s.workgroupSize == 0 || s.workgroupSize > MaxWorkgroupSize {
		return fmt.Errorf("%w: %d (must be in 1..%d)", ErrInvalidWorkgroupSize, s.workgroupSize, MaxWorkgroupSize)
	}
	return nil
}

func (s *simulation) init() error {
	wg := shader.WithDefine("WORKGROUP_SIZE", strconv.FormatUint(uint64(s.workgroupSize), 10))

	cs, err := shader.NewShader(ComputePipelineKey, shader.ShaderTypeCompute, s.computeSource, wg)
	if err != nil {
		return fmt.Errorf("compute shader: %w", err)
	}
	vs, err := shader.NewShader(RenderPipelineKey+"_vert", shader.ShaderTypeVertex, s.vertexSource)
	if err != nil {
		return fmt.Errorf("vertex shader: %w", err)
	}
	fs, err := shader.NewShader(RenderPipelineKey+"_frag", shader.ShaderTypeFragment, s.fragmentSource)
	if err != nil {
		return fmt.Errorf("fragment shader: %w", err)
	}

	merged := shader.MergeBindGroupLayouts(
		cs.BindGroupLayoutDescriptors(),
		vs.BindGroupLayoutDescriptors(),
		fs.BindGroupLayoutDescriptors(),
	)
	descriptor, ok := merged[0]
	if !ok {
		return fmt.Errorf("shaders declare no bindings in group 0")
	}
	descriptor.Label = "Cell Bindings"

	s.sets, err = newBindingSets(s.device, s.grid, descriptor)
	if err != nil {
		return err
	}
	layout := s.sets[0].BindGroupLayout()

	computePipeline := pipeline.NewPipeline(ComputePipelineKey, pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(cs),
		pipeline.WithBindGroupLayout(0, layout),
	)
	renderPipeline := pipeline.NewPipeline(RenderPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithBindGroupLayout(0, layout),
		pipeline.WithBlendEnabled(true),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
	)
	if err := s.device.RegisterPipelines(computePipeline, renderPipeline); err != nil {
		return fmt.Errorf("register pipelines: %w", err)
	}

	quad := geometry.CellQuad()
	s.mesh = bind_group_provider.NewBindGroupProvider("Cell Quad")
	if err := s.device.InitMeshBuffers(s.mesh, quad.Marshal(), nil, quad.VertexCount()); err != nil {
		return fmt.Errorf("cell quad: %w", err)
	}

	uniform := s.grid.Uniform()
	writes := []bind_group_provider.BufferWrite{
		{Provider: s.sets[0], Binding: UniformBinding, Data: uniform.Marshal()},
	}
	if err := s.device.WriteBuffers(writes); err != nil {
		return fmt.Errorf("grid uniform: %w", err)
	}

	return s.seed(s.seedA, s.seedB)
}

// seed uploads both seeds and resets the counter. Callers hold s.mu or own s exclusively.
func (s *simulation) seed(a, b Seeder) error {
	cellsA, cellsB := a(s.grid), b(s.grid)
	if len(cellsA) != s.grid.CellCount() || len(cellsB) != s.grid.CellCount() {
		return fmt.Errorf("seeder produced %d and %d cells for a %s grid", len(cellsA), len(cellsB), s.grid)
	}
	if slices.Equal(cellsA, cellsB) {
		s.logger.Warn("buffers A and B were seeded identically")
	}
	if err := s.device.WriteBuffers(s.sets.seedWrites(cellsA, cellsB)); err != nil {
		return fmt.Errorf("seed state: %w", err)
	}
	s.step = 0
	return nil
}

func (s *simulation) Frame() {
	if err := s.Step(); err != nil {
		s.errorHandler(err)
	}
}

func (s *simulation) Step() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	err := s.recordFrame()
	if s.frameObserver != nil {
		s.frameObserver(s.step, time.Since(start), err)
	}
	if err == nil {
		s.logger.Debug("frame", zap.Uint64("generation", s.step))
	}
	return err
}

// recordFrame runs one frame. Callers hold s.mu.
func (s *simulation) recordFrame() error {
	if err := s.device.BeginFrame(); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}

	if err := s.device.DispatchCompute(ComputePipelineKey, s.sets[s.step%2], s.workgroups); err != nil {
		s.device.CancelFrame()
		return fmt.Errorf("dispatch generation %d: %w", s.step+1, err)
	}
	s.step++

	// an abandoned frame takes its increment with it
	if err := s.device.BeginRenderPass(); err != nil {
		s.device.CancelFrame()
		s.step--
		return fmt.Errorf("render pass: %w", err)
	}
	err := s.device.DrawCall(RenderPipelineKey, s.mesh, uint32(s.grid.CellCount()),
		[]bind_group_provider.BindGroupProvider{s.sets[s.step%2]})
	if err != nil {
		s.device.CancelFrame()
		s.step--
		return fmt.Errorf("draw cells: %w", err)
	}

	if err := s.device.EndFrame(); err != nil {
		return fmt.Errorf("submit generation %d: %w", s.step, err)
	}
	s.device.Present()
	return nil
}

func (s *simulation) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *simulation) Grid() grid.Grid {
	return s.grid
}

func (s *simulation) Workgroups() [3]uint32 {
	return s.workgroups
}

func (s *simulation) BindingSet(i int) bind_group_provider.BindGroupProvider {
	return s.sets[i&1]
}

func (s *simulation) Snapshot(ctx context.Context) (uint64, []uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.device.ReadBuffer(ctx, s.sets[s.step%2], ReadBinding)
	if err != nil {
		return 0, nil, fmt.Errorf("read generation %d: %w", s.step, err)
	}
	cells, err := DecodeCells(data)
	if err != nil {
		return 0, nil, err
	}
	if len(cells) > s.grid.CellCount() {
		cells = cells[:s.grid.CellCount()]
	}
	return s.step, cells, nil
}

func (s *simulation) Cells(ctx context.Context) ([]uint32, error) {
	_, cells, err := s.Snapshot(ctx)
	return cells, err
}

func (s *simulation) Reseed(a, b Seeder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.seed(a, b); err != nil {
		return err
	}
	s.logger.Info("reseeded", zap.Stringer("grid", s.grid))
	return nil
}

func (s *simulation) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets.release()
	s.sets = bindingSets{}
	if s.mesh != nil {
		s.mesh.Release()
		s.mesh = nil
	}
}
