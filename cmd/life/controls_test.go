package main

import (
	"context"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/life"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakePacer struct{ paused bool }

func (p *fakePacer) Pause() { p.paused = true }
func (p *fakePacer) Resume() { p.paused = false }
func (p *fakePacer) Paused() bool { return p.paused }

type fakeStepper struct {
	frames    int
	reseeds   int
	reseedErr error
}

func (s *fakeStepper) Frame() { s.frames++ }
func (s *fakeStepper) Generation() uint64 { return uint64(s.frames) }

func (s *fakeStepper) Reseed(a, b life.Seeder) error {
	if s.reseedErr != nil {
		return s.reseedErr
	}
	s.reseeds++
	return nil
}

func newTestControls() (*controls, *fakePacer, *fakeStepper) {
	p, s := &fakePacer{}, &fakeStepper{}
	c := newControls(zap.NewNop(), p, s, 0.4)
	c.reseed = func() int64 { return 1 }
	return c, p, s
}

func TestSpaceTogglesPause(t *testing.T) {
	c, p, _ := newTestControls()

	c.handleKey(common.KeySpace)
	assert.True(t, p.paused)
	c.handleKey(common.KeySpace)
	assert.False(t, p.paused)
}

func TestStepOnlyWhilePaused(t *testing.T) {
	c, p, s := newTestControls()

	c.handleKey(common.KeyN)
	assert.Equal(t, 0, s.frames)

	p.paused = true
	c.handleKey(common.KeyN)
	c.handleKey(common.KeyN)
	assert.Equal(t, 2, s.frames)
}

func TestReseedRebases(t *testing.T) {
	c, _, s := newTestControls()
	rebased := 0
	c.onReseed = func(context.Context) error {
		rebased++
		return nil
	}

	c.handleKey(common.KeyR)
	assert.Equal(t, 1, s.reseeds)
	assert.Equal(t, 1, rebased)

	s.reseedErr = errors.New("upload failed")
	c.handleKey(common.KeyR)
	assert.Equal(t, 1, rebased, "a failed reseed leaves the verifier alone")
}

func TestUnknownKeyIgnored(t *testing.T) {
	c, p, s := newTestControls()

	c.handleKey(common.KeyEnter)
	assert.False(t, p.paused)
	assert.Zero(t, s.frames)
	assert.Zero(t, s.reseeds)
}
