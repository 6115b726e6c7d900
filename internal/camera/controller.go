package camera

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
)

// EasingFunc maps progress [0,1] to eased progress [0,1]. It must be
// monotonic with f(0)=0 and f(1)=1.
type EasingFunc func(t float64) float64

// EaseInOutCubic is the default easing curve.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	d := -2*t + 2
	return 1 - d*d*d/2
}

// Linear easing, mostly useful in tests.
func Linear(t float64) float64 { return t }

// DoneFunc reports transition completion. cancelled is true when the
// transition was pre-empted or cancelled before reaching its target.
type DoneFunc func(cancelled bool)

type transition struct {
	start     domain.CameraState
	target    domain.CameraState
	startedAt time.Time
	duration  time.Duration
	easing    EasingFunc
	done      DoneFunc
}

// Controller owns camera animation state. It is decoupled from any
// scheduling mechanism: the host drives it by calling Advance from its
// animation-frame callback and forwards the returned state to the
// map-rendering backend. Progress is computed from wall-clock time, so
// skipped frames do not change the animation's real-time duration.
//
// At most one transition is in flight. Starting a new one pre-empts the
// current one and retargets from the current (possibly mid-flight) camera
// state, so rapid successive selections do not snap.
type Controller struct {
	mu      sync.Mutex
	current domain.CameraState
	active  *transition
	logger  *zap.Logger
}

func NewController(initial domain.CameraState, logger *zap.Logger) *Controller {
	return &Controller{
		current: initial,
		logger:  logger,
	}
}

// TransitionTo starts a transition from the current camera state to target.
// A transition already in flight is cancelled first: its done callback fires
// with cancelled=true and the partially-applied camera state is kept as the
// new start state (no rollback). A non-positive duration applies the target
// immediately. done may be nil; when set it fires exactly once.
func (c *Controller) TransitionTo(target domain.CameraState, duration time.Duration, now time.Time, done DoneFunc) {
	c.mu.Lock()
	preempted := c.takeActiveLocked()

	if duration <= 0 {
		c.current = target
		c.mu.Unlock()

		fireDone(preempted, true)
		fireDone(done, false)
		return
	}

	c.active = &transition{
		start:     c.current,
		target:    target,
		startedAt: now,
		duration:  duration,
		easing:    EaseInOutCubic,
		done:      done,
	}
	c.mu.Unlock()

	fireDone(preempted, true)

	c.logger.Debug("Camera transition started",
		zap.Float64("target_lat", target.Center.Lat),
		zap.Float64("target_lon", target.Center.Lon),
		zap.Float64("target_zoom", target.Zoom),
		zap.Duration("duration", duration),
	)
}

// SetEasing replaces the easing curve for the active transition. No-op when
// idle; intended to be called right after TransitionTo.
func (c *Controller) SetEasing(f EasingFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil && f != nil {
		c.active.easing = f
	}
}

// Advance computes the camera state at the given wall-clock instant and
// returns it. When the transition completes, the controller goes Idle and
// the done callback fires once with cancelled=false. Safe to call while
// Idle; it then just returns the current state.
func (c *Controller) Advance(now time.Time) domain.CameraState {
	c.mu.Lock()

	if c.active == nil {
		state := c.current
		c.mu.Unlock()
		return state
	}

	tr := c.active
	progress := float64(now.Sub(tr.startedAt)) / float64(tr.duration)
	if progress >= 1 {
		c.current = tr.target
		c.active = nil
		state := c.current
		c.mu.Unlock()

		fireDone(tr.done, false)
		return state
	}
	if progress < 0 {
		progress = 0
	}

	eased := tr.easing(progress)
	c.current = domain.CameraState{
		Center: domain.Point{
			Lat: lerp(tr.start.Center.Lat, tr.target.Center.Lat, eased),
			Lon: lerp(tr.start.Center.Lon, tr.target.Center.Lon, eased),
		},
		Zoom: lerp(tr.start.Zoom, tr.target.Zoom, eased),
	}
	state := c.current
	c.mu.Unlock()
	return state
}

// Cancel aborts any transition in flight, keeping the camera wherever the
// last Advance left it. The done callback fires with cancelled=true.
func (c *Controller) Cancel() {
	c.mu.Lock()
	cancelled := c.takeActiveLocked()
	c.mu.Unlock()

	fireDone(cancelled, true)
}

// Animating reports whether a transition is in flight.
func (c *Controller) Animating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// State returns the current camera state without advancing time.
func (c *Controller) State() domain.CameraState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// takeActiveLocked detaches the active transition and returns its done
// callback so it can be fired outside the lock. Callers hold c.mu.
func (c *Controller) takeActiveLocked() DoneFunc {
	if c.active == nil {
		return nil
	}
	done := c.active.done
	c.active = nil
	return done
}

func fireDone(done DoneFunc, cancelled bool) {
	if done != nil {
		done(cancelled)
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
