package spring

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController(t *testing.T) {
	t.Run("batches events", func(t *testing.T) {
		loop := NewLoop()
		log := []string{}
		rests := []Result{}

		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0, "y": 0}})

		c.Start(&Props{
			To:       map[string]any{"x": 1, "y": 2},
			Config:   &Config{Duration: 32 * time.Millisecond},
			OnStart:  func() { log = append(log, "start") },
			OnChange: func(v any) { log = append(log, fmt.Sprintf("change %v", v)) },
			OnRest: func(r Result) {
				log = append(log, "rest")
				rests = append(rests, r)
			},
		})

		frames(t, loop, 0, 64)

		assert.Equal(t, []string{
			"start",
			"change map[x:0.5 y:1]",
			"change map[x:1 y:2]",
			"rest",
		}, log)
		assert.Equal(t, []Result{{Value: map[string]any{"x": 1.0, "y": 2.0}, Finished: true}}, rests)
	})

	t.Run("start fires once per activation", func(t *testing.T) {
		loop := NewLoop()
		log := []string{}
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0, "y": 0}})

		c.Start(&Props{
			To:      map[string]any{"x": 1},
			Config:  &Config{Duration: 64 * time.Millisecond},
			OnStart: func() { log = append(log, "start x") },
		})
		require.NoError(t, loop.Advance(16))

		c.Start(&Props{
			To:      map[string]any{"y": 1},
			Config:  &Config{Duration: 32 * time.Millisecond},
			OnStart: func() { log = append(log, "start y") },
		})
		frames(t, loop, 16, 128)

		assert.Equal(t, []string{"start x"}, log)
		assert.Equal(t, PhaseIdle, c.Phase())

		c.Start(&Props{To: map[string]any{"x": 0}, Config: &Config{Duration: 32 * time.Millisecond}})
		require.NoError(t, loop.Advance(144))

		assert.Equal(t, []string{"start x", "start y"}, log)
	})

	t.Run("update queues until start", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}})

		c.Update(&Props{To: map[string]any{"x": 1}, Config: &Config{Immediate: Ptr(true)}})
		assert.Equal(t, 0.0, c.Get()["x"])

		p := c.Start()
		require.NoError(t, loop.Advance(16))

		assert.Equal(t, 1.0, c.Get()["x"])
		assert.True(t, settled(t, p).Finished)
	})

	t.Run("only touches affected keys", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0, "y": 0}})

		c.Start(&Props{To: map[string]any{"x": 1}, Config: &Config{Immediate: Ptr(true)}})
		require.NoError(t, loop.Advance(16))

		assert.Equal(t, map[string]any{"x": 1.0, "y": 0.0}, c.Get())
		assert.Equal(t, []string{"x", "y"}, c.Keys())
	})

	t.Run("no-op updates finish right away", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 1}})

		p := c.Start(&Props{To: map[string]any{"x": 1}})

		r := settled(t, p)
		assert.True(t, r.Finished)
		assert.False(t, loop.Awake())
	})

	t.Run("delay", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}})

		p := c.Start(&Props{
			To:     map[string]any{"x": 1},
			Delay:  100 * time.Millisecond,
			Config: &Config{Duration: 100 * time.Millisecond},
		})
		assert.False(t, c.Idle())

		require.NoError(t, loop.Advance(50))
		assert.Equal(t, 0.0, c.Get()["x"])

		require.NoError(t, loop.Advance(100))
		require.NoError(t, loop.Advance(150))
		assert.Equal(t, 0.5, c.Get()["x"])

		require.NoError(t, loop.Advance(200))
		assert.True(t, settled(t, p).Finished)
	})

	t.Run("stop cancels delayed updates", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}})

		p := c.Start(&Props{To: map[string]any{"x": 1}, Delay: 100 * time.Millisecond})
		c.Stop()

		r := settled(t, p)
		assert.True(t, r.Cancelled)

		frames(t, loop, 0, 500)
		assert.Equal(t, 0.0, c.Get()["x"])
		assert.False(t, loop.Awake())
	})

	t.Run("cancel prop", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}})

		first := c.Start(&Props{To: map[string]any{"x": 1}})
		frames(t, loop, 0, 32)

		second := c.Start(&Props{Cancel: true})

		assert.True(t, settled(t, first).Cancelled)
		assert.True(t, settled(t, second).Cancelled)
		assert.False(t, c.Spring("x").Animating())
	})

	t.Run("retargeting supersedes the previous run", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}})

		first := c.Start(&Props{To: map[string]any{"x": 1}})
		frames(t, loop, 0, 48)

		second := c.Start(&Props{To: map[string]any{"x": 2}})

		r := settled(t, first)
		assert.False(t, r.Finished)
		assert.False(t, r.Cancelled)

		frames(t, loop, 48, 5000)
		assert.True(t, settled(t, second).Finished)
		assert.Equal(t, 2.0, c.Get()["x"])
	})

	t.Run("pause and resume", func(t *testing.T) {
		loop := NewLoop()
		rests := 0
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}})

		p := c.Start(&Props{
			To:     map[string]any{"x": 1},
			Config: &Config{Duration: 100 * time.Millisecond},
			OnRest: func(Result) { rests++ },
		})

		require.NoError(t, loop.Advance(50))
		c.Pause()

		require.NoError(t, loop.Advance(100))
		require.NoError(t, loop.Advance(150))
		assert.Equal(t, 0.5, c.Get()["x"])
		assert.False(t, loop.Awake())
		assert.Equal(t, 0, rests)

		c.Resume()
		require.NoError(t, loop.Advance(200))
		assert.Equal(t, 0.5, c.Get()["x"])

		require.NoError(t, loop.Advance(250))
		assert.Equal(t, 1.0, c.Get()["x"])
		assert.True(t, settled(t, p).Finished)
		assert.Equal(t, 1, rests)
	})

	t.Run("reset", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}})

		c.Start(&Props{To: map[string]any{"x": 1}, Config: &Config{Duration: 100 * time.Millisecond}})
		require.NoError(t, loop.Advance(100))
		assert.Equal(t, 1.0, c.Get()["x"])

		p := c.Reset()
		assert.Equal(t, 0.0, c.Get()["x"])

		require.NoError(t, loop.Advance(150))
		assert.Equal(t, 0.5, c.Get()["x"])

		require.NoError(t, loop.Advance(200))
		assert.True(t, settled(t, p).Finished)
	})

	t.Run("loop", func(t *testing.T) {
		loop := NewLoop()
		rests := 0
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}})

		p := c.Start(&Props{
			To:     map[string]any{"x": 1},
			Config: &Config{Duration: 100 * time.Millisecond},
			Loop:   2,
			OnRest: func(Result) { rests++ },
		})

		require.NoError(t, loop.Advance(100))
		assert.Equal(t, 0.0, c.Get()["x"])
		require.NoError(t, loop.Advance(150))
		assert.Equal(t, 0.5, c.Get()["x"])

		require.NoError(t, loop.Advance(200))
		require.NoError(t, loop.Advance(300))
		assert.True(t, settled(t, p).Finished)
		assert.Equal(t, 1.0, c.Get()["x"])
		assert.Equal(t, 1, rests)
	})

	t.Run("update law replaces the default law", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{
			From:   map[string]any{"x": 0},
			Config: &Config{Decay: Ptr(true)},
		})

		p := c.Start(&Props{To: map[string]any{"x": 1}, Config: &Config{Duration: 32 * time.Millisecond}})
		require.NoError(t, loop.Advance(16))
		assert.Equal(t, 0.5, c.Get()["x"])

		require.NoError(t, loop.Advance(32))
		assert.True(t, settled(t, p).Finished)
		assert.Equal(t, 1.0, c.Get()["x"])
	})

	t.Run("rejected updates never error", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}})

		p := c.Start(&Props{
			To:     map[string]any{"x": 1},
			Config: &Config{Duration: time.Second, Decay: Ptr(true)},
		})

		r := settled(t, p)
		assert.False(t, r.Finished)
		assert.False(t, r.Cancelled)
		assert.Equal(t, 0.0, c.Get()["x"])
	})

	t.Run("step errors are isolated", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0, "y": 0}})

		bad := c.Start(&Props{
			To: map[string]any{"x": 1},
			Config: &Config{
				Duration: 100 * time.Millisecond,
				Easing:   func(float64) float64 { panic("bad easing") },
			},
		})
		good := c.Start(&Props{To: map[string]any{"y": 1}, Config: &Config{Duration: 100 * time.Millisecond}})

		err := loop.Advance(50)
		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, "x", stepErr.Key)

		r := settled(t, bad)
		assert.False(t, r.Finished)

		require.NoError(t, loop.Advance(100))
		assert.True(t, settled(t, good).Finished)
		assert.Equal(t, map[string]any{"x": 0.0, "y": 1.0}, c.Get())
	})

	t.Run("follows another node", func(t *testing.T) {
		loop := NewLoop()

		leader, err := NewValueOn(loop, 0.0)
		require.NoError(t, err)
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}})

		leader.To(10, &Config{Duration: 100 * time.Millisecond})
		p := c.Start(&Props{To: map[string]any{"x": leader.Node()}, Config: &Config{Immediate: Ptr(true)}})

		require.NoError(t, loop.Advance(50))
		assert.Equal(t, 5.0, c.Get()["x"])
		assert.True(t, leader.Animating())

		require.NoError(t, loop.Advance(100))
		require.NoError(t, loop.Advance(116))
		assert.Equal(t, 10.0, c.Get()["x"])
		assert.True(t, settled(t, p).Finished)
	})

	t.Run("dispose", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}})

		p := c.Start(&Props{To: map[string]any{"x": 1}})
		require.NoError(t, loop.Advance(16))

		c.Dispose()
		c.Dispose()

		assert.True(t, settled(t, p).Cancelled)
		assert.Empty(t, c.Get())
		assert.False(t, loop.Awake())

		r := settled(t, c.Start(&Props{To: map[string]any{"x": 2}}))
		assert.False(t, r.Finished)
	})
}
