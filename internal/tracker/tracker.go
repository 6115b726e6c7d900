package tracker

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/domain/repository"
	"github.com/discovery-engine/internal/pkg/errors"
	"github.com/discovery-engine/internal/pkg/geo"
	"github.com/discovery-engine/internal/usecase"
)

// State is the tracker lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateAcquiring State = "acquiring"
	StateTracking  State = "tracking"
)

// Config holds the tracker's explicit construction parameters.
type Config struct {
	// DiscoveryRadiusKm is the proximity radius for discovery events.
	DiscoveryRadiusKm float64

	// HistoryLimit bounds the retained reading history.
	HistoryLimit int

	// PredictionHorizon is the look-ahead for position prediction.
	PredictionHorizon time.Duration

	// OnError surfaces terminal position-source failures. May be nil.
	OnError func(error)
}

func (c Config) withDefaults() Config {
	if c.DiscoveryRadiusKm <= 0 {
		c.DiscoveryRadiusKm = 2.0
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 50
	}
	if c.PredictionHorizon <= 0 {
		c.PredictionHorizon = 5 * time.Minute
	}
	return c
}

// Tracker owns continuous position acquisition, movement statistics,
// short-horizon position prediction, and the discovery state machine.
//
// Each Tracker owns its own discovery record: entities are notified at most
// once per session, and the record survives Stop/Start; only Reset clears
// it. Callbacks into collaborators are always made without holding the
// internal lock, so stopping the tracker from inside a notification is safe.
type Tracker struct {
	cfg      Config
	source   repository.PositionSource
	notifier repository.DiscoveryNotifier
	ranker   *usecase.RankUseCase
	logger   *zap.Logger

	mu         sync.Mutex
	sessionID  string
	state      State
	generation int
	entities   []domain.Entity
	discovered map[string]struct{}
	history    []domain.TrackedPosition
	stats      domain.TrackingStats
	nearby     []usecase.RankedEntity
	predicted  *domain.PredictedPosition
}

func New(
	cfg Config,
	source repository.PositionSource,
	notifier repository.DiscoveryNotifier,
	logger *zap.Logger,
) *Tracker {
	return &Tracker{
		cfg:        cfg.withDefaults(),
		source:     source,
		notifier:   notifier,
		ranker:     usecase.NewRankUseCase(logger),
		logger:     logger,
		sessionID:  uuid.NewString(),
		state:      StateIdle,
		discovered: make(map[string]struct{}),
	}
}

// SetEntities replaces the entity list used for discovery. The tracker never
// fetches entities itself. Takes effect on the next reading.
func (t *Tracker) SetEntities(entities []domain.Entity) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entities = entities
}

// Start requests the first position fix and subscribes to updates. A failure
// to start the source returns the tracker to Idle and surfaces the error; a
// failure reported asynchronously before the first fix goes through
// Config.OnError. There is no automatic retry: retrying may require user
// interaction (a permission prompt) and is the caller's decision.
func (t *Tracker) Start() error {
	t.mu.Lock()
	if t.state != StateIdle {
		t.mu.Unlock()
		return errors.ErrTrackerAlreadyStarted
	}
	t.state = StateAcquiring
	t.generation++
	gen := t.generation
	t.mu.Unlock()

	err := t.source.Start(
		func(r domain.TrackedPosition) { t.handleUpdate(gen, r) },
		func(srcErr error) { t.handleError(gen, srcErr) },
	)
	if err != nil {
		t.mu.Lock()
		t.state = StateIdle
		t.mu.Unlock()
		t.logger.Error("Position source failed to start", zap.Error(err))
		return errors.ErrPositionAcquisitionFailed.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}

	t.logger.Info("Tracking started",
		zap.String("session_id", t.sessionID),
		zap.Float64("discovery_radius_km", t.cfg.DiscoveryRadiusKm),
	)
	return nil
}

// Stop cancels the position subscription and returns to Idle. The discovery
// record is kept: stop/start is not a session restart, Reset is.
// No tracker callbacks fire after Stop returns.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if t.state == StateIdle {
		t.mu.Unlock()
		return
	}
	t.state = StateIdle
	t.generation++
	t.mu.Unlock()

	t.source.Stop()
	t.logger.Info("Tracking stopped", zap.String("session_id", t.sessionID))
}

// Reset starts a fresh session: clears the discovery record, history and
// statistics. An entity discovered in a previous session fires again after
// Reset. Call while idle; a running tracker keeps its subscription.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sessionID = uuid.NewString()
	t.discovered = make(map[string]struct{})
	t.history = nil
	t.stats = domain.TrackingStats{}
	t.nearby = nil
	t.predicted = nil
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SessionID identifies the current discovery session.
func (t *Tracker) SessionID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sessionID
}

// Nearby returns the entities currently within the discovery radius, sorted
// by distance. Already-discovered entities stay in this list; they just do
// not re-fire the discovery event.
func (t *Tracker) Nearby() []usecase.RankedEntity {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]usecase.RankedEntity, len(t.nearby))
	copy(out, t.nearby)
	return out
}

// Predicted returns the latest short-horizon position prediction, or nil
// when the current reading carries no speed/heading.
func (t *Tracker) Predicted() *domain.PredictedPosition {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.predicted == nil {
		return nil
	}
	p := *t.predicted
	return &p
}

// Stats returns movement statistics for the current session.
func (t *Tracker) Stats() domain.TrackingStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// handleError processes a terminal failure from the position source.
func (t *Tracker) handleError(gen int, err error) {
	t.mu.Lock()
	if gen != t.generation || t.state == StateIdle {
		t.mu.Unlock()
		return
	}
	acquiring := t.state == StateAcquiring
	t.state = StateIdle
	t.generation++
	t.mu.Unlock()

	t.source.Stop()

	if acquiring {
		t.logger.Warn("First position fix failed", zap.Error(err))
	} else {
		t.logger.Warn("Position source failed while tracking", zap.Error(err))
	}
	if t.cfg.OnError != nil {
		t.cfg.OnError(errors.ErrPositionAcquisitionFailed.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		}))
	}
}

// handleUpdate processes one reading atomically: history, statistics,
// prediction and discovery all update under the lock, then notifications
// fire after it is released.
func (t *Tracker) handleUpdate(gen int, reading domain.TrackedPosition) {
	t.mu.Lock()

	if gen != t.generation || t.state == StateIdle {
		t.mu.Unlock()
		return
	}

	if !geo.IsValid(reading.Point()) {
		// Transient sensor noise: drop the reading, keep tracking.
		t.stats.Dropped++
		t.mu.Unlock()
		t.logger.Debug("Dropped malformed position reading",
			zap.Float64("lat", reading.Lat),
			zap.Float64("lon", reading.Lon),
		)
		return
	}

	if t.state == StateAcquiring {
		t.state = StateTracking
		t.stats.StartedAt = reading.Timestamp
	}

	if len(t.history) > 0 {
		prev := t.history[len(t.history)-1]
		t.stats.TotalDistanceKm += geo.Distance(prev.Point(), reading.Point())
	}
	t.history = append(t.history, reading)
	if len(t.history) > t.cfg.HistoryLimit {
		t.history = t.history[len(t.history)-t.cfg.HistoryLimit:]
	}

	t.stats.Readings++
	t.stats.LastReadingAt = reading.Timestamp
	if elapsed := reading.Timestamp.Sub(t.stats.StartedAt).Seconds(); elapsed > 0 {
		t.stats.AverageSpeedMps = t.stats.TotalDistanceKm * 1000 / elapsed
	}

	t.predicted = t.predict(reading)

	ranked := t.ranker.Rank(t.entities, reading.Point(), false)
	t.nearby = t.nearby[:0]
	var discoveries []usecase.RankedEntity
	for _, r := range ranked {
		if r.DistanceKm > t.cfg.DiscoveryRadiusKm {
			break // sorted ascending
		}
		t.nearby = append(t.nearby, r)
		if _, seen := t.discovered[r.Entity.ID]; seen {
			continue
		}
		t.discovered[r.Entity.ID] = struct{}{}
		discoveries = append(discoveries, r)
	}

	t.mu.Unlock()

	for _, d := range discoveries {
		// A callback may stop the tracker; stop delivering if it did.
		t.mu.Lock()
		stale := gen != t.generation
		t.mu.Unlock()
		if stale {
			return
		}

		t.logger.Info("Entity discovered",
			zap.String("session_id", t.sessionID),
			zap.String("entity_id", d.Entity.ID),
			zap.Float64("distance_km", d.DistanceKm),
		)
		if t.notifier != nil {
			t.notifier.EntityDiscovered(d.Entity, d.DistanceKm)
		}
	}
}

// predict extrapolates the position along the current heading at the current
// speed over the configured horizon. Degenerate without speed and heading.
func (t *Tracker) predict(reading domain.TrackedPosition) *domain.PredictedPosition {
	if reading.SpeedMps == nil || reading.HeadingDeg == nil || *reading.SpeedMps <= 0 {
		return nil
	}

	distanceKm := *reading.SpeedMps * t.cfg.PredictionHorizon.Seconds() / 1000
	return &domain.PredictedPosition{
		Point:   geo.Destination(reading.Point(), *reading.HeadingDeg, distanceKm),
		Horizon: t.cfg.PredictionHorizon,
		At:      reading.Timestamp.Add(t.cfg.PredictionHorizon),
	}
}
