package spring

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gathered(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		metric := family.GetMetric()[0]
		switch {
		case metric.GetCounter() != nil:
			return metric.GetCounter().GetValue()
		case metric.GetGauge() != nil:
			return metric.GetGauge().GetValue()
		}
	}

	t.Fatalf("metric %s not found", name)
	return 0
}

func TestLoop(t *testing.T) {
	t.Run("run drives frames until cancelled", func(t *testing.T) {
		loop := NewLoop(WithInterval(time.Millisecond))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		stopped := make(chan error, 1)
		go func() { stopped <- loop.Run(ctx) }()

		started := make(chan *Promise, 1)
		loop.Post(func() {
			v, err := NewValueOn(loop, 0.0)
			if err != nil {
				panic(err)
			}
			started <- v.To(1, &Config{Duration: 20 * time.Millisecond})
		})

		r, err := (<-started).Wait(ctx)
		require.NoError(t, err)
		assert.True(t, r.Finished)
		assert.Equal(t, 1.0, r.Value)

		cancel()
		assert.ErrorIs(t, <-stopped, context.Canceled)
	})

	t.Run("frame reads the clock", func(t *testing.T) {
		clock := NewManualClock(time.Now())
		loop := NewLoop(WithClock(clock))

		v, err := NewValueOn(loop, 0.0)
		require.NoError(t, err)
		v.To(1, &Config{Duration: 100 * time.Millisecond})

		clock.Advance(50 * time.Millisecond)
		require.NoError(t, loop.Frame())
		assert.Equal(t, 0.5, v.Get())

		clock.Advance(50 * time.Millisecond)
		require.NoError(t, loop.Frame())
		assert.Equal(t, 1.0, v.Get())
	})

	t.Run("metrics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		loop := NewLoop(WithRegisterer(reg))

		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}})
		c.Start(&Props{To: []*Props{{
			To:     map[string]any{"x": 1},
			Config: &Config{Duration: 64 * time.Millisecond},
		}}})

		frames(t, loop, 0, 32)
		assert.Equal(t, 2.0, gathered(t, reg, "spring_frames_total"))
		assert.Equal(t, 1.0, gathered(t, reg, "spring_active_handlers"))

		c.Stop()
		require.NoError(t, loop.Advance(48))
		assert.Equal(t, 0.0, gathered(t, reg, "spring_active_handlers"))
		assert.Equal(t, 0.0, gathered(t, reg, "spring_step_errors_total"))

		count, err := testutil.GatherAndCount(reg, "spring_scripts_total", "spring_frame_duration_seconds")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("default loop is per goroutine", func(t *testing.T) {
		loop := DefaultLoop()
		assert.Same(t, loop, DefaultLoop())

		other := make(chan *Loop)
		go func() { other <- DefaultLoop() }()
		assert.NotSame(t, loop, <-other)
	})
}
