package spring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScript(t *testing.T) {
	duration := &Config{Duration: 100 * time.Millisecond}

	t.Run("runs steps in order", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{Config: duration})
		rested := []Result{}

		p := c.Start(&Props{
			From: map[string]any{"x": 0},
			To: []*Props{
				{To: map[string]any{"x": 1}},
				{To: map[string]any{"x": 2}},
			},
			OnRest: func(r Result) { rested = append(rested, r) },
		})
		assert.False(t, c.Idle())

		require.NoError(t, loop.Advance(50))
		assert.Equal(t, 0.5, c.Get()["x"])

		require.NoError(t, loop.Advance(100))
		assert.Equal(t, 1.0, c.Get()["x"])

		require.NoError(t, loop.Advance(150))
		assert.Equal(t, 1.5, c.Get()["x"])

		require.NoError(t, loop.Advance(200))

		r := settled(t, p)
		assert.True(t, r.Finished)
		assert.Equal(t, map[string]any{"x": 2.0}, r.Value)
		assert.True(t, c.Idle())

		require.NoError(t, loop.Advance(216))
		require.Len(t, rested, 1)
		assert.True(t, rested[0].Finished)
	})

	t.Run("script function", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}, Config: duration})
		calls := []int{}

		p := c.Start(&Props{
			To: ScriptFunc(func(i int, last Result) *Props {
				calls = append(calls, i)
				if i == 2 {
					return nil
				}
				return &Props{To: map[string]any{"x": float64(i + 1)}}
			}),
			Loop: 1,
		})

		for now := 100.0; now <= 400; now += 100 {
			require.NoError(t, loop.Advance(now))
		}

		assert.True(t, settled(t, p).Finished)
		assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, calls)
		assert.Equal(t, 2.0, c.Get()["x"])
	})

	t.Run("step delays", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}, Config: duration})

		p := c.Start(&Props{To: []*Props{
			{To: map[string]any{"x": 1}, Delay: 50 * time.Millisecond},
		}})

		require.NoError(t, loop.Advance(25))
		assert.Equal(t, 0.0, c.Get()["x"])

		require.NoError(t, loop.Advance(50))
		require.NoError(t, loop.Advance(100))
		assert.Equal(t, 0.5, c.Get()["x"])

		require.NoError(t, loop.Advance(150))
		assert.True(t, settled(t, p).Finished)
	})

	t.Run("stop cancels the script", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}, Config: duration})

		p := c.Start(&Props{To: []*Props{
			{To: map[string]any{"x": 1}},
			{To: map[string]any{"x": 2}},
		}})

		require.NoError(t, loop.Advance(50))
		c.Stop()

		r := settled(t, p)
		assert.False(t, r.Finished)
		assert.True(t, r.Cancelled)

		for now := 100.0; now <= 1000; now += 100 {
			require.NoError(t, loop.Advance(now))
		}
		assert.Equal(t, 0.5, c.Get()["x"])
		assert.True(t, c.Idle())
	})

	t.Run("a new script cancels the running one", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}, Config: duration})

		first := c.Start(&Props{To: []*Props{{To: map[string]any{"x": 1}}}})
		require.NoError(t, loop.Advance(50))

		second := c.Start(&Props{To: []*Props{{To: map[string]any{"x": -1}}}})

		assert.True(t, settled(t, first).Cancelled)

		require.NoError(t, loop.Advance(150))
		assert.True(t, settled(t, second).Finished)
		assert.Equal(t, -1.0, c.Get()["x"])
	})

	t.Run("looping no-op steps continue one frame at a time", func(t *testing.T) {
		loop := NewLoop()
		c := NewControllerOn(loop, &Props{From: map[string]any{"x": 0}})
		steps := 0

		p := c.Start(&Props{
			To: ScriptFunc(func(i int, last Result) *Props {
				if i > 0 {
					return nil
				}
				steps++
				return &Props{To: map[string]any{"x": 0}}
			}),
			Loop: LoopForever,
		})

		frames(t, loop, 0, 160)
		assert.Equal(t, 11, steps)
		assert.False(t, p.Settled())

		c.Stop()
		assert.True(t, settled(t, p).Cancelled)

		require.NoError(t, loop.Advance(176))
		assert.False(t, loop.Awake())
	})

	t.Run("standalone values run scripts", func(t *testing.T) {
		loop := NewLoop()
		v, err := NewValueOn(loop, 0.0, &Props{Config: duration})
		require.NoError(t, err)

		p := v.Start(&Props{To: []*Props{{To: 1.0}, {To: 3.0}}})

		require.NoError(t, loop.Advance(100))
		assert.Equal(t, 1.0, v.Get())

		require.NoError(t, loop.Advance(150))
		assert.Equal(t, 2.0, v.Get())

		require.NoError(t, loop.Advance(200))
		r := settled(t, p)
		assert.True(t, r.Finished)
		assert.Equal(t, 3.0, r.Value)
	})
}
