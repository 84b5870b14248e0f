package main

import (
	"context"
	"time"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/life"
	"go.uber.org/zap"
)

type pacer interface {
	Pause()
	Resume()
	Paused() bool
}

type stepper interface {
	Frame()
	Generation() uint64
	Reseed(a, b life.Seeder) error
}

// controls maps key presses onto the pacing loop and the simulation.
type controls struct {
	logger  *zap.Logger
	pacer   pacer
	sim     stepper
	density float64
	reseed  func() int64
	// onReseed runs after a successful reseed, typically to rebase the verifier.
	onReseed func(ctx context.Context) error
}

func newControls(logger *zap.Logger, p pacer, sim stepper, density float64) *controls {
	return &controls{
		logger:  logger,
		pacer:   p,
		sim:     sim,
		density: density,
		reseed:  func() int64 { return time.Now().UnixNano() },
	}
}

// handleKey is registered as the window key-down callback.
func (c *controls) handleKey(keyCode uint32) {
	switch keyCode {
	case common.KeySpace:
		if c.pacer.Paused() {
			c.pacer.Resume()
			return
		}
		c.pacer.Pause()
	case common.KeyN:
		if !c.pacer.Paused() {
			return
		}
		c.sim.Frame()
		c.logger.Info("single step", zap.Uint64("generation", c.sim.Generation()))
	case common.KeyR:
		seed := c.reseed()
		if err := c.sim.Reseed(life.SeedRandom(seed, c.density), life.SeedStripes()); err != nil {
			c.logger.Error("reseed failed", zap.Error(err))
			return
		}
		c.logger.Info("reseed", zap.Int64("seed", seed))
		if c.onReseed != nil {
			if err := c.onReseed(context.Background()); err != nil {
				c.logger.Warn("verifier rebase failed", zap.Error(err))
			}
		}
	}
}
