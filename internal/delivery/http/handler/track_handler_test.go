package handler

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/tracker"
	"github.com/discovery-engine/internal/usecase"
	"github.com/discovery-engine/internal/usecase/dto"
)

type recordingSender struct {
	mu     sync.Mutex
	frames []dto.TrackServerFrame
}

func (s *recordingSender) send(frame dto.TrackServerFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
	return nil
}

func (s *recordingSender) byType(frameType string) []dto.TrackServerFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []dto.TrackServerFrame
	for _, f := range s.frames {
		if f.Type == frameType {
			out = append(out, f)
		}
	}
	return out
}

func trackingFixture(t *testing.T) (*TrackHandler, *recordingSender, *tracker.PushSource, *tracker.Tracker) {
	t.Helper()
	logger := zap.NewNop()
	rankUC := usecase.NewRankUseCase(logger)
	h := NewTrackHandler(nil, tracker.Config{}, rankUC, logger)

	sender := &recordingSender{}
	source := tracker.NewPushSource()
	notifier := &wsNotifier{writer: sender, rankUC: rankUC, logger: logger}
	tr := tracker.New(tracker.Config{}, source, notifier, logger)
	tr.SetEntities([]domain.Entity{
		{ID: "f1", Name: "Hilltop Farm", Lat: 51.50, Lon: -0.10},
	})
	return h, sender, source, tr
}

func atFarm(ts time.Time) domain.TrackedPosition {
	return domain.TrackedPosition{Lat: 51.50, Lon: -0.10, Timestamp: ts}
}

func TestTrackHandler_HandleReset(t *testing.T) {
	t.Run("keeps a live session and allows re-discovery", func(t *testing.T) {
		h, sender, source, tr := trackingFixture(t)
		require.NoError(t, tr.Start())
		defer tr.Stop()

		now := time.Now()
		source.Push(atFarm(now))
		source.Push(atFarm(now.Add(time.Second)))
		require.Len(t, sender.byType("discovery"), 1)

		require.NoError(t, h.handleReset(sender, tr))
		assert.Equal(t, tracker.StateTracking, tr.State())
		assert.Empty(t, sender.byType("error"))

		source.Push(atFarm(now.Add(2 * time.Second)))
		discoveries := sender.byType("discovery")
		require.Len(t, discoveries, 2)
		assert.Equal(t, "f1", discoveries[1].Entity.ID)
	})

	t.Run("restarts a tracker idled by a source failure", func(t *testing.T) {
		h, sender, source, tr := trackingFixture(t)
		require.NoError(t, tr.Start())

		source.Fail(fmt.Errorf("gps unavailable"))
		require.Equal(t, tracker.StateIdle, tr.State())

		require.NoError(t, h.handleReset(sender, tr))
		defer tr.Stop()
		assert.Equal(t, tracker.StateAcquiring, tr.State())

		source.Push(atFarm(time.Now()))
		assert.Len(t, sender.byType("discovery"), 1)
	})
}
