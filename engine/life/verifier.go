package life

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrMismatch is returned by Verifier.Check when GPU and reference generations disagree.
var ErrMismatch = errors.New("life: gpu state diverged from reference")

// Snapshotter is the part of Simulation a Verifier reads from.
type Snapshotter interface {
	Snapshot(ctx context.Context) (uint64, []uint32, error)
}

// VerifyResult describes one comparison.
type VerifyResult struct {
	// Generation is the GPU generation that was compared.
	Generation uint64

	// Stepped is how many generations the reference advanced to reach it.
	Stepped uint64

	// Mismatches is the number of cells that differ.
	Mismatches int

	// First is the index of the first differing cell, or -1.
	First int
}

// Verifier periodically compares GPU output against the reference stepper. After each
// comparison the GPU state becomes the new baseline, so one divergence is reported once.
type Verifier struct {
	mu     sync.Mutex
	logger *zap.Logger
	sim    Snapshotter
	ref    *ReferenceStepper
	every  uint64

	baseGeneration uint64
	baseCells      []uint32
}

// NewVerifier creates a verifier for sim and captures the current generation as its baseline.
//
// Parameters:
//   - ctx: cancels the initial readback
//   - sim: the simulation to check
//   - ref: the reference stepper for the simulation's grid
//   - every: the minimum number of generations between comparisons, at least 1
//   - logger: receives mismatch reports, nil for none
//
// Returns:
//   - *Verifier: the verifier
//   - error: an error if the baseline could not be read
func NewVerifier(ctx context.Context, sim Snapshotter, ref *ReferenceStepper, every uint64, logger *zap.Logger) (*Verifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Verifier{
		logger: logger,
		sim:    sim,
		ref:    ref,
		every:  max(every, 1),
	}
	if err := v.Rebase(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

// Rebase replaces the baseline with the simulation's current state. Call it after reseeding.
func (v *Verifier) Rebase(ctx context.Context) error {
	gen, cells, err := v.sim.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("verifier baseline: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.baseGeneration = gen
	v.baseCells = cells
	return nil
}

// Due reports whether enough generations have passed since the baseline for Check to compare.
func (v *Verifier) Due(generation uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return generation < v.baseGeneration || generation-v.baseGeneration >= v.every
}

// Check reads the GPU state, advances the baseline to the same generation on the host, and
// compares them. A generation behind the baseline means the simulation was reseeded; the
// baseline is replaced and nothing is compared.
//
// Parameters:
//   - ctx: cancels the readback
//
// Returns:
//   - VerifyResult: the comparison, Stepped is zero when nothing was compared
//   - error: ErrMismatch when cells differ, or a readback error
func (v *Verifier) Check(ctx context.Context) (VerifyResult, error) {
	gen, gpu, err := v.sim.Snapshot(ctx)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("verifier readback: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	result := VerifyResult{Generation: gen, First: -1}
	if gen < v.baseGeneration || len(gpu) != len(v.baseCells) {
		v.baseGeneration, v.baseCells = gen, gpu
		return result, nil
	}

	result.Stepped = gen - v.baseGeneration
	want := v.ref.Advance(v.baseCells, result.Stepped)
	for i := range want {
		if want[i] != gpu[i] {
			if result.First < 0 {
				result.First = i
			}
			result.Mismatches++
		}
	}
	v.baseGeneration, v.baseCells = gen, gpu

	if result.Mismatches > 0 {
		x, y := v.ref.grid.Coords(result.First)
		v.logger.Warn("gpu generation diverged from reference",
			zap.Uint64("generation", gen),
			zap.Int("mismatches", result.Mismatches),
			zap.Int("firstX", x),
			zap.Int("firstY", y),
		)
		return result, fmt.Errorf("%w: %d cells at generation %d", ErrMismatch, result.Mismatches, gen)
	}
	v.logger.Debug("gpu generation verified",
		zap.Uint64("generation", gen),
		zap.Uint64("stepped", result.Stepped),
	)
	return result, nil
}
