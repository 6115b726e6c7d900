package usecase

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
)

type recordingReporter struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingReporter) InvalidCoordinate(entityID string, lat, lon float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, entityID)
}

func TestQualityUseCase_Screen(t *testing.T) {
	entities := []domain.Entity{
		{ID: "ok", Name: "Locatable Farm", Lat: 51.5, Lon: -0.1},
		{ID: "zero", Name: "Zero Island"},
		{ID: "range", Name: "Out Of Range", Lat: 95.0, Lon: 10.0},
	}

	t.Run("splits locatable from unlocatable", func(t *testing.T) {
		uc := NewQualityUseCase(nil, zap.NewNop())

		locatable, unlocatable := uc.Screen(entities)
		require.Len(t, locatable, 1)
		assert.Equal(t, "ok", locatable[0].ID)
		require.Len(t, unlocatable, 2)
	})

	t.Run("reports each unlocatable entity once per instance", func(t *testing.T) {
		reporter := &recordingReporter{}
		uc := NewQualityUseCase(reporter, zap.NewNop())

		uc.Screen(entities)
		uc.Screen(entities)

		assert.ElementsMatch(t, []string{"zero", "range"}, reporter.ids)
	})

	t.Run("is safe under concurrent screening", func(t *testing.T) {
		uc := NewQualityUseCase(&recordingReporter{}, zap.NewNop())

		shared := make([]domain.Entity, 0, 50)
		for i := 0; i < 50; i++ {
			shared = append(shared, domain.Entity{ID: fmt.Sprintf("bad-%d", i)})
		}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				locatable, unlocatable := uc.Screen(shared)
				assert.Empty(t, locatable)
				assert.Len(t, unlocatable, 50)
			}()
		}
		wg.Wait()
	})
}
