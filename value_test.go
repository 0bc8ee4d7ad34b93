package spring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	t.Run("immediate jumps in one frame", func(t *testing.T) {
		loop := NewLoop()
		v, err := NewValueOn(loop, 0.0)
		require.NoError(t, err)

		p := v.To(100, &Config{Immediate: Ptr(true)})
		require.NoError(t, loop.Advance(16))

		assert.Equal(t, 100.0, v.Get())
		assert.True(t, settled(t, p).Finished)
	})

	t.Run("updates override default flags", func(t *testing.T) {
		loop := NewLoop()
		v, err := NewValueOn(loop, 0.0, &Props{Config: &Config{Immediate: Ptr(true)}})
		require.NoError(t, err)

		p := v.To(2, &Config{Immediate: Ptr(false)})
		require.NoError(t, loop.Advance(16))
		assert.Greater(t, v.Get(), 0.0)
		assert.Less(t, v.Get(), 2.0)

		frames(t, loop, 32, 3000)
		assert.True(t, settled(t, p).Finished)
		assert.Equal(t, 2.0, v.Get())
	})

	t.Run("decay", func(t *testing.T) {
		loop := NewLoop()
		v, err := NewValueOn(loop, 0.0)
		require.NoError(t, err)

		p := v.Start(&Props{Config: &Config{Decay: Ptr(true), Velocity: Ptr(1.0)}})

		last := 0.0
		for now := 16.0; now <= 10000; now += 16 {
			require.NoError(t, loop.Advance(now))
			assert.GreaterOrEqual(t, v.Get(), last)
			last = v.Get()
		}

		assert.True(t, settled(t, p).Finished)
		assert.InDelta(t, 500, v.Get(), 10)
		assert.Equal(t, v.Get(), v.Goal())
	})

	t.Run("clamp never overshoots", func(t *testing.T) {
		loop := NewLoop()
		wobbly, err := Preset("wobbly")
		require.NoError(t, err)
		wobbly.Clamp = Ptr(true)

		v, err := NewValueOn(loop, 0.0, &Props{Config: &wobbly})
		require.NoError(t, err)

		p := v.To(1)
		for now := 16.0; now <= 5000; now += 16 {
			require.NoError(t, loop.Advance(now))
			assert.LessOrEqual(t, v.Get(), 1.0)
		}
		assert.True(t, settled(t, p).Finished)
		assert.Equal(t, 1.0, v.Get())
	})

	t.Run("strings", func(t *testing.T) {
		loop := NewLoop()
		v, err := NewValueOn(loop, "red")
		require.NoError(t, err)

		p := v.To("blue")
		require.NoError(t, loop.Advance(16))

		assert.Equal(t, "blue", v.Get())
		assert.True(t, settled(t, p).Finished)
	})

	t.Run("arrays", func(t *testing.T) {
		loop := NewLoop()
		v, err := NewValueOn(loop, []float64{0, 0})
		require.NoError(t, err)

		p := v.To([]float64{1, 2}, &Config{Duration: 100 * time.Millisecond})
		require.NoError(t, loop.Advance(50))
		assert.Equal(t, []float64{0.5, 1}, v.Get())

		require.NoError(t, loop.Advance(100))
		assert.True(t, settled(t, p).Finished)
		assert.Equal(t, []float64{1, 2}, v.Goal())
	})

	t.Run("array length mismatch is rejected", func(t *testing.T) {
		loop := NewLoop()
		v, err := NewValueOn(loop, []float64{0, 0})
		require.NoError(t, err)

		r := settled(t, v.To([]float64{1}))
		assert.False(t, r.Finished)
		assert.Equal(t, []float64{0, 0}, v.Get())

		assert.ErrorIs(t, v.Set([]float64{1, 2, 3}), ErrLengthMismatch)
	})

	t.Run("from resets the first run", func(t *testing.T) {
		loop := NewLoop()
		v, err := NewValueOn(loop, 5.0)
		require.NoError(t, err)

		v.Start(&Props{From: 0, To: 10, Config: &Config{Duration: 100 * time.Millisecond}})
		assert.Equal(t, 0.0, v.Get())

		require.NoError(t, loop.Advance(50))
		assert.Equal(t, 5.0, v.Get())
	})

	t.Run("spring carries its velocity when retargeted", func(t *testing.T) {
		loop := NewLoop()
		v, err := NewValueOn(loop, 0.0)
		require.NoError(t, err)

		v.To(1)
		frames(t, loop, 0, 64)
		before := v.Get()

		// going back, the spring first keeps moving forward
		v.To(0)
		require.NoError(t, loop.Advance(80))
		assert.Greater(t, v.Get(), before)
	})

	t.Run("events fire once per activation", func(t *testing.T) {
		loop := NewLoop()
		log := []string{}

		v, err := NewValueOn(loop, 0.0)
		require.NoError(t, err)

		props := func(to float64) *Props {
			return &Props{
				To:      to,
				Config:  &Config{Duration: 32 * time.Millisecond},
				OnStart: func() { log = append(log, "start") },
				OnRest:  func(r Result) { log = append(log, "rest") },
			}
		}

		v.Start(props(1))
		frames(t, loop, 0, 64)
		v.Start(props(0))
		frames(t, loop, 64, 128)

		assert.Equal(t, []string{"start", "rest", "start", "rest"}, log)
	})

	t.Run("derived nodes follow array values", func(t *testing.T) {
		loop := NewLoop()
		v, err := NewValueOn(loop, []float64{0, 0})
		require.NoError(t, err)

		sum, err := Map(func(args ...any) any {
			return args[0].(float64) + args[1].(float64)
		}, v.Node())
		require.NoError(t, err)

		seen := []any{}
		unsubscribe := sum.OnChange(func(v any) { seen = append(seen, v) })
		defer unsubscribe()

		require.NoError(t, v.Set([]float64{1, 2}))
		require.NoError(t, v.Set([]float64{3, 4}))

		assert.Equal(t, 7.0, Get[float64](sum))
		assert.Equal(t, []any{3.0, 7.0}, seen)
	})

	t.Run("dispose detaches derived nodes", func(t *testing.T) {
		loop := NewLoop()
		v, err := NewValueOn(loop, 0.0)
		require.NoError(t, err)

		derived, err := Map(func(args ...any) any { return args[0] }, v.Node())
		require.NoError(t, err)
		unsubscribe := derived.OnChange(func(any) {})
		defer unsubscribe()
		assert.Len(t, v.Node().Children(), 1)

		p := v.To(1)
		v.Dispose()

		assert.Empty(t, v.Node().Children())
		assert.True(t, settled(t, p).Cancelled)
		assert.False(t, loop.Awake())

		assert.ErrorIs(t, v.Set(2), ErrDisposed)
		assert.Equal(t, 0.0, v.Get())
	})
}
