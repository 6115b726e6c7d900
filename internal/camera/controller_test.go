package camera

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
)

var (
	home = domain.CameraState{Center: domain.Point{Lat: 51.5, Lon: -0.1}, Zoom: 10}
	away = domain.CameraState{Center: domain.Point{Lat: 55.9, Lon: -3.2}, Zoom: 14}
)

func TestEasing(t *testing.T) {
	for _, f := range []EasingFunc{EaseInOutCubic, Linear} {
		assert.Equal(t, 0.0, f(0))
		assert.Equal(t, 1.0, f(1))
	}
	assert.InDelta(t, 0.5, EaseInOutCubic(0.5), 1e-9)
	assert.Less(t, EaseInOutCubic(0.25), 0.25, "slow start")
	assert.Greater(t, EaseInOutCubic(0.75), 0.75, "slow finish")
}

func TestController_Transition(t *testing.T) {
	now := time.Now()

	t.Run("reaches the target at the duration", func(t *testing.T) {
		c := NewController(home, zap.NewNop())

		var doneCalls int
		var cancelledFlag bool
		c.TransitionTo(away, time.Second, now, func(cancelled bool) {
			doneCalls++
			cancelledFlag = cancelled
		})
		require.True(t, c.Animating())

		state := c.Advance(now.Add(time.Second))
		assert.Equal(t, away, state)
		assert.False(t, c.Animating())
		assert.Equal(t, 1, doneCalls)
		assert.False(t, cancelledFlag)

		// Further advances keep returning the settled state.
		assert.Equal(t, away, c.Advance(now.Add(2*time.Second)))
		assert.Equal(t, 1, doneCalls, "done fires exactly once")
	})

	t.Run("midpoint lies strictly between start and target", func(t *testing.T) {
		c := NewController(home, zap.NewNop())
		c.TransitionTo(away, time.Second, now, nil)

		mid := c.Advance(now.Add(500 * time.Millisecond))
		assert.Greater(t, mid.Center.Lat, home.Center.Lat)
		assert.Less(t, mid.Center.Lat, away.Center.Lat)
		assert.Less(t, mid.Center.Lon, home.Center.Lon)
		assert.Greater(t, mid.Center.Lon, away.Center.Lon)
		assert.Greater(t, mid.Zoom, home.Zoom)
		assert.Less(t, mid.Zoom, away.Zoom)
	})

	t.Run("skipped frames do not stretch the animation", func(t *testing.T) {
		c := NewController(home, zap.NewNop())
		c.TransitionTo(away, time.Second, now, nil)

		// No intermediate Advance calls: one late call lands on the target.
		assert.Equal(t, away, c.Advance(now.Add(5*time.Second)))
	})

	t.Run("zero duration applies immediately", func(t *testing.T) {
		c := NewController(home, zap.NewNop())

		var cancelled *bool
		c.TransitionTo(away, 0, now, func(v bool) { cancelled = &v })

		assert.Equal(t, away, c.State())
		assert.False(t, c.Animating())
		require.NotNil(t, cancelled)
		assert.False(t, *cancelled)
	})

	t.Run("advance before start clamps to the start state", func(t *testing.T) {
		c := NewController(home, zap.NewNop())
		c.TransitionTo(away, time.Second, now, nil)

		assert.Equal(t, home, c.Advance(now.Add(-time.Second)))
	})
}

func TestController_Retarget(t *testing.T) {
	now := time.Now()

	t.Run("new transition starts from the mid-flight state", func(t *testing.T) {
		c := NewController(home, zap.NewNop())

		var firstCancelled bool
		c.TransitionTo(away, time.Second, now, func(cancelled bool) { firstCancelled = cancelled })

		mid := c.Advance(now.Add(500 * time.Millisecond))

		other := domain.CameraState{Center: domain.Point{Lat: 48.9, Lon: 2.35}, Zoom: 12}
		c.TransitionTo(other, time.Second, now.Add(500*time.Millisecond), nil)

		assert.True(t, firstCancelled, "pre-empted transition reports cancelled")
		// No snap: immediately after retargeting the camera is still at mid.
		assert.Equal(t, mid, c.State())

		assert.Equal(t, other, c.Advance(now.Add(1500*time.Millisecond)))
	})

	t.Run("cancel keeps the partial state", func(t *testing.T) {
		c := NewController(home, zap.NewNop())

		var cancelled bool
		c.TransitionTo(away, time.Second, now, func(v bool) { cancelled = v })
		mid := c.Advance(now.Add(300 * time.Millisecond))

		c.Cancel()
		assert.True(t, cancelled)
		assert.False(t, c.Animating())
		assert.Equal(t, mid, c.State())
	})

	t.Run("retarget from inside the done callback does not deadlock", func(t *testing.T) {
		c := NewController(home, zap.NewNop())

		c.TransitionTo(away, time.Second, now, func(cancelled bool) {
			if !cancelled {
				c.TransitionTo(home, time.Second, now.Add(time.Second), nil)
			}
		})

		c.Advance(now.Add(time.Second))
		assert.True(t, c.Animating())
		assert.Equal(t, home, c.Advance(now.Add(2*time.Second)))
	})
}

func TestController_SetEasing(t *testing.T) {
	now := time.Now()
	c := NewController(home, zap.NewNop())

	c.TransitionTo(away, time.Second, now, nil)
	c.SetEasing(Linear)

	mid := c.Advance(now.Add(500 * time.Millisecond))
	assert.InDelta(t, (home.Center.Lat+away.Center.Lat)/2, mid.Center.Lat, 1e-9)
	assert.InDelta(t, (home.Zoom+away.Zoom)/2, mid.Zoom, 1e-9)
}
