package profiler

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestObserveFrame(t *testing.T) {
	p := NewProfiler()

	p.ObserveFrame(2*time.Millisecond, nil)
	p.ObserveFrame(3*time.Millisecond, nil)
	p.ObserveFrame(time.Millisecond, errors.New("lost surface"))

	assert.Equal(t, 2.0, testutil.ToFloat64(p.generations))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.frameErrors))
	assert.Equal(t, 1, testutil.CollectAndCount(p.frameRecord))
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewProfiler()

	require.NoError(t, p.Register(reg))
	assert.Error(t, p.Register(reg))
}

func TestTickLogsAfterInterval(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewProfiler(WithLogger(zap.New(core)), WithUpdateInterval(time.Nanosecond))

	time.Sleep(time.Millisecond)
	assert.True(t, p.Tick())
	require.Equal(t, 1, logs.FilterMessage("profile").Len())

	entry := logs.All()[0]
	assert.Contains(t, entry.ContextMap(), "ticks_per_second")
	assert.Contains(t, entry.ContextMap(), "generations_per_second")
	assert.Equal(t, 0, p.frameCount)
}

func TestGenerationRateCountsOnlySuccessfulFrames(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewProfiler(WithLogger(zap.New(core)), WithUpdateInterval(time.Hour))

	for _, err := range []error{nil, errors.New("lost surface"), nil, errors.New("lost surface")} {
		p.ObserveFrame(time.Millisecond, err)
		assert.False(t, p.Tick())
	}
	assert.Equal(t, 4, p.frameCount)
	assert.Equal(t, 2, p.generationCount)

	p.updateInterval = time.Nanosecond
	assert.True(t, p.Tick())
	require.Equal(t, 1, logs.Len())

	fields := logs.All()[0].ContextMap()
	ticks, gens := fields["ticks_per_second"].(float64), fields["generations_per_second"].(float64)
	assert.InDelta(t, 5.0/2.0, ticks/gens, 1e-9)
	assert.Zero(t, p.generationCount)
}

func TestTickBeforeIntervalIsQuiet(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewProfiler(WithLogger(zap.New(core)), WithUpdateInterval(time.Hour))

	assert.False(t, p.Tick())
	assert.False(t, p.Tick())
	assert.Equal(t, 0, logs.Len())
	assert.Equal(t, 2, p.frameCount)
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	p := NewProfiler(WithLogger(nil), WithUpdateInterval(-time.Second))

	assert.NotNil(t, p.logger)
	assert.Equal(t, time.Second, p.updateInterval)
}

func TestMetricsServerExposesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewProfiler()
	require.NoError(t, p.Register(reg))
	p.ObserveFrame(time.Millisecond, nil)

	srv := NewMetricsServer(":0", reg)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(string(body), "oxy_life_generations_total 1"))
	assert.Contains(t, string(body), "oxy_life_frame_record_seconds_bucket")
}
