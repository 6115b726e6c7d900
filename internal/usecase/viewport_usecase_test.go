package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
)

func TestViewportUseCase_Filter(t *testing.T) {
	uc := NewViewportUseCase(zap.NewNop())

	entities := []domain.Entity{
		{ID: "inside", Lat: 51.5, Lon: -0.1},
		{ID: "west-edge", Lat: 51.5, Lon: -1.0},
		{ID: "north-of", Lat: 53.0, Lon: -0.1},
		{ID: "east-of", Lat: 51.5, Lon: 2.0},
		{ID: "missing"},
	}
	viewport := domain.Viewport{West: -1, South: 51, East: 1, North: 52}

	t.Run("keeps entities inside, boundary inclusive", func(t *testing.T) {
		visible := uc.Filter(entities, viewport)
		ids := idsOf(visible)
		assert.ElementsMatch(t, []string{"inside", "west-edge"}, ids)
	})

	t.Run("excludes entities without coordinates", func(t *testing.T) {
		visible := uc.Filter(entities, viewport)
		assert.NotContains(t, idsOf(visible), "missing")
	})

	t.Run("idempotent", func(t *testing.T) {
		once := uc.Filter(entities, viewport)
		twice := uc.Filter(once, viewport)
		assert.Equal(t, once, twice)
	})

	t.Run("antimeridian wrap keeps both sides", func(t *testing.T) {
		pacific := []domain.Entity{
			{ID: "fiji", Lat: -17.7, Lon: 178.0},
			{ID: "samoa", Lat: -13.8, Lon: -171.8},
			{ID: "london", Lat: 51.5, Lon: -0.1},
		}
		wrapped := domain.Viewport{West: 170, South: -30, East: -160, North: 0}

		visible := uc.Filter(pacific, wrapped)
		assert.ElementsMatch(t, []string{"fiji", "samoa"}, idsOf(visible))
	})

	t.Run("inverted south and north are normalized", func(t *testing.T) {
		flipped := domain.Viewport{West: -1, South: 52, East: 1, North: 51}
		visible := uc.Filter(entities, flipped)
		assert.Contains(t, idsOf(visible), "inside")
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		require.Empty(t, uc.Filter(nil, viewport))
	})
}

func idsOf(entities []domain.Entity) []string {
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID)
	}
	return ids
}
