package main

import (
	"flag"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func parse(t *testing.T, args ...string) *Config {
	t.Helper()
	cfg := NewConfig()
	fs := flag.NewFlagSet("life", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg.Bind(fs)
	require.NoError(t, fs.Parse(args))
	return cfg
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := parse(t)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 32, cfg.GridWidth)
	assert.Equal(t, 32, cfg.GridHeight)
	assert.Equal(t, uint(8), cfg.Workgroup)
	assert.Equal(t, time.Second, cfg.Period)
	assert.Equal(t, 4, cfg.MSAA)
	assert.Zero(t, cfg.VerifyEvery)
}

func TestBindParsesFlags(t *testing.T) {
	cfg := parse(t,
		"-grid-width", "64",
		"-grid-height", "48",
		"-workgroup", "16",
		"-period", "250ms",
		"-seed", "7",
		"-density", "0.25",
		"-msaa", "1",
		"-vsync=false",
		"-software",
		"-log-level", "debug",
		"-metrics-addr", ":9090",
		"-verify-every", "10",
	)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 64, cfg.GridWidth)
	assert.Equal(t, 48, cfg.GridHeight)
	assert.Equal(t, uint(16), cfg.Workgroup)
	assert.Equal(t, 250*time.Millisecond, cfg.Period)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.InDelta(t, 0.25, cfg.Density, 1e-9)
	assert.False(t, cfg.VSync)
	assert.True(t, cfg.Software)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, uint64(10), cfg.VerifyEvery)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string][]string{
		"zero width":      {"-grid-width", "0"},
		"zero workgroup":  {"-workgroup", "0"},
		"large workgroup": {"-workgroup", "32"},
		"workgroup wraps": {"-workgroup", "65536"},
		"workgroup 2^32":  {"-workgroup", "4294967296"},
		"too many cells":  {"-grid-width", "4097", "-grid-height", "4096"},
		"grid overflows":  {"-grid-width", "4294967296", "-grid-height", "4294967296"},
		"zero period":     {"-period", "0s"},
		"density":         {"-density", "1.5"},
		"window":          {"-window-height", "-1"},
		"msaa":            {"-msaa", "2"},
		"log level":       {"-log-level", "loud"},
		"background":      {"-background", "red"},
		"profile period":  {"-profile-interval", "0s"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, parse(t, args...).Validate())
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	err := parse(t, "-grid-width", "0", "-msaa", "3").Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "grid must be positive")
	assert.Contains(t, err.Error(), "msaa must be 1 or 4")
}

func TestSeedAUsesClockWhenUnset(t *testing.T) {
	_, seed := NewConfig().SeedA()
	assert.NotZero(t, seed)

	cfg := parse(t, "-seed", "42")
	_, seed = cfg.SeedA()
	assert.Equal(t, int64(42), seed)
}

func TestOptionSlices(t *testing.T) {
	cfg := NewConfig()

	assert.Len(t, cfg.RendererOptions(zap.NewNop()), 5)
	assert.Len(t, cfg.WindowOptions(zap.NewNop()), 4)
	assert.Len(t, cfg.ProfilerOptions(zap.NewNop()), 2)
	opts, err := cfg.SimulationOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 2)
	assert.Equal(t, "life", cfg.LoggerConfig().Name)
}

func TestComputeShaderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel.wgsl")
	require.NoError(t, os.WriteFile(path, []byte("@compute @workgroup_size(1) fn main() {}"), 0o600))

	opts, err := parse(t, "-compute-shader", path).SimulationOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 3)

	_, err = parse(t, "-compute-shader", filepath.Join(t.TempDir(), "missing.wgsl")).SimulationOptions()
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestParseColor(t *testing.T) {
	c, err := parseColor("#ff0033")
	require.NoError(t, err)
	assert.Equal(t, wgpu.Color{R: 1, G: 0, B: 0.2, A: 1}, c)

	for _, bad := range []string{"", "ff0033", "#ff003", "#ff00331", "#gg0000"} {
		_, err := parseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestRunExitCodes(t *testing.T) {
	assert.Equal(t, exitFlags, run([]string{"-no-such-flag"}))
	assert.Equal(t, exitFlags, run([]string{"-msaa", "8"}))
	assert.Equal(t, exitFlags, run([]string{"-workgroup", "4294967296"}))
	assert.Equal(t, exitFlags, run([]string{"-grid-width", "4294967296", "-grid-height", "4294967296"}))
	assert.Equal(t, exitOK, run([]string{"-h"}))
}
