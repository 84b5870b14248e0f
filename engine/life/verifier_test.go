package life

import (
	"context"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceStepperMatchesStepCells(t *testing.T) {
	g := grid.Grid{Width: 17, Height: 11}
	src := SeedRandom(3, 0.5)(g)
	want := make([]uint32, g.CellCount())
	StepCells(g, src, want)

	got := make([]uint32, g.CellCount())
	NewReferenceStepper(g, 3).Step(src, got)
	assert.Equal(t, want, got)
}

func TestReferenceAdvanceLeavesInput(t *testing.T) {
	g := grid.Grid{Width: 5, Height: 5}
	blinker := SeedPattern([2]int{1, 2}, [2]int{2, 2}, [2]int{3, 2})(g)
	input := append([]uint32(nil), blinker...)
	ref := NewReferenceStepper(g, 0)

	assert.Equal(t, blinker, ref.Advance(blinker, 2))
	assert.NotEqual(t, blinker, ref.Advance(blinker, 1))
	assert.Equal(t, input, blinker)
	assert.Equal(t, blinker, ref.Advance(blinker, 0))
}

func TestVerifierAgreesWithSimulation(t *testing.T) {
	_, sim := newTestSimulation(t, WithGrid(12, 12), WithSeeders(SeedRandom(11, 0.4), SeedStripes()))
	ctx := context.Background()

	v, err := NewVerifier(ctx, sim, NewReferenceStepper(sim.Grid(), 2), 3, nil)
	require.NoError(t, err)

	stepN(t, sim, 2)
	assert.False(t, v.Due(sim.Generation()))
	stepN(t, sim, 2)
	assert.True(t, v.Due(sim.Generation()))

	res, err := v.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), res.Generation)
	assert.Equal(t, uint64(4), res.Stepped)
	assert.Zero(t, res.Mismatches)
	assert.Equal(t, -1, res.First)
}

func TestVerifierReportsDivergence(t *testing.T) {
	dev, sim := newTestSimulation(t, WithGrid(8, 8), WithSeeders(SeedRandom(5, 0.4), SeedStripes()))
	ctx := context.Background()

	v, err := NewVerifier(ctx, sim, NewReferenceStepper(sim.Grid(), 1), 1, nil)
	require.NoError(t, err)

	stepN(t, sim, 1)
	dev.corruptReadback = true
	res, err := v.Check(ctx)
	require.ErrorIs(t, err, ErrMismatch)
	assert.Equal(t, 1, res.Mismatches)
	assert.Equal(t, 0, res.First)
}

func TestVerifierRebasesAfterReseed(t *testing.T) {
	_, sim := newTestSimulation(t, WithGrid(8, 8), WithSeeders(SeedRandom(5, 0.4), SeedStripes()))
	ctx := context.Background()

	v, err := NewVerifier(ctx, sim, NewReferenceStepper(sim.Grid(), 1), 1, nil)
	require.NoError(t, err)
	stepN(t, sim, 3)
	_, err = v.Check(ctx)
	require.NoError(t, err)

	require.NoError(t, sim.Reseed(SeedRandom(6, 0.4), SeedStripes()))
	stepN(t, sim, 1)
	assert.True(t, v.Due(sim.Generation()))

	res, err := v.Check(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Stepped, "a generation behind the baseline only rebases")

	stepN(t, sim, 2)
	res, err = v.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Stepped)
}

type failingSnapshotter struct{ err error }

func (f failingSnapshotter) Snapshot(context.Context) (uint64, []uint32, error) {
	return 0, nil, f.err
}

func TestNewVerifierBaselineError(t *testing.T) {
	boom := errors.New("readback failed")
	_, err := NewVerifier(context.Background(), failingSnapshotter{boom}, nil, 1, nil)
	assert.ErrorIs(t, err, boom)
}
