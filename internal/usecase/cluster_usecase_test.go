package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/pkg/geo"
)

func newClusterUC() *ClusterUseCase {
	return NewClusterUseCase(DefaultClusterConfig(), geo.NewWebMercator(), zap.NewNop())
}

func TestClusterConfig_RadiusAtZoom(t *testing.T) {
	cfg := DefaultClusterConfig()

	assert.Equal(t, 80.0, cfg.RadiusAtZoom(0))
	assert.Equal(t, 80.0, cfg.RadiusAtZoom(3.9)) // nearest lower entry
	assert.Equal(t, 70.0, cfg.RadiusAtZoom(4))
	assert.Equal(t, 50.0, cfg.RadiusAtZoom(11.5))
	assert.Equal(t, 30.0, cfg.RadiusAtZoom(14))

	empty := ClusterConfig{DefaultRadiusPx: 42}
	assert.Equal(t, 42.0, empty.RadiusAtZoom(7))
}

func TestClusterUseCase_Clusters(t *testing.T) {
	uc := newClusterUC()

	pair := []domain.Entity{
		{ID: "f1", Name: "Hilltop Farm", Lat: 51.50, Lon: -0.10},
		{ID: "f2", Name: "Riverside Farm", Lat: 51.51, Lon: -0.12},
	}

	t.Run("nearby entities merge at low zoom", func(t *testing.T) {
		clusters := uc.Clusters(pair, 10)
		require.Len(t, clusters, 1)

		c := clusters[0]
		assert.Equal(t, 2, c.Count)
		assert.Equal(t, []string{"f1", "f2"}, c.MemberIDs)
		assert.InDelta(t, 51.505, c.Centroid.Lat, 1e-9)
		assert.InDelta(t, -0.11, c.Centroid.Lon, 1e-9)
	})

	t.Run("full separation at high zoom", func(t *testing.T) {
		clusters := uc.Clusters(pair, 16)
		require.Len(t, clusters, 2)
		for _, c := range clusters {
			assert.Equal(t, 1, c.Count)
		}
	})

	t.Run("every entity lands in exactly one cluster", func(t *testing.T) {
		spread := []domain.Entity{
			{ID: "a", Lat: 51.50, Lon: -0.10},
			{ID: "b", Lat: 51.51, Lon: -0.12},
			{ID: "c", Lat: 52.20, Lon: 0.12},
			{ID: "d", Lat: 55.95, Lon: -3.19},
		}
		for _, zoom := range []float64{0, 5, 9, 12, 15, 20} {
			clusters := uc.Clusters(spread, zoom)
			total := 0
			seen := map[string]int{}
			for _, c := range clusters {
				total += c.Count
				assert.Len(t, c.MemberIDs, c.Count)
				for _, id := range c.MemberIDs {
					seen[id]++
				}
			}
			assert.Equal(t, len(spread), total, "zoom %v", zoom)
			for id, n := range seen {
				assert.Equal(t, 1, n, "entity %s at zoom %v", id, zoom)
			}
		}
	})

	t.Run("empty input yields nil", func(t *testing.T) {
		assert.Nil(t, uc.Clusters(nil, 10))
	})
}

func TestClusterUseCase_ExpansionZoom(t *testing.T) {
	uc := newClusterUC()

	pair := []domain.Entity{
		{ID: "f1", Lat: 51.50, Lon: -0.10},
		{ID: "f2", Lat: 51.51, Lon: -0.12},
	}

	t.Run("separates members above the returned zoom", func(t *testing.T) {
		ez := uc.ExpansionZoom(pair, 10)
		assert.Greater(t, ez, 10.0)
		assert.LessOrEqual(t, ez, 15.0)

		clusters := uc.Clusters(pair, ez)
		assert.Len(t, clusters, 2)
	})

	t.Run("is minimal", func(t *testing.T) {
		ez := uc.ExpansionZoom(pair, 10)
		if ez > 11 {
			clusters := uc.Clusters(pair, ez-1)
			assert.Len(t, clusters, 1)
		}
	})

	t.Run("identical coordinates return full separation zoom", func(t *testing.T) {
		stacked := []domain.Entity{
			{ID: "a", Lat: 51.5, Lon: -0.1},
			{ID: "b", Lat: 51.5, Lon: -0.1},
		}
		assert.Equal(t, 15.0, uc.ExpansionZoom(stacked, 10))
	})

	t.Run("single member bumps one level", func(t *testing.T) {
		assert.Equal(t, 11.0, uc.ExpansionZoom(pair[:1], 10))
	})
}

// End to end: screen, filter, cluster at two zooms, expansion converges.
func TestClusteringPipeline(t *testing.T) {
	logger := zap.NewNop()
	quality := NewQualityUseCase(nil, logger)
	viewport := NewViewportUseCase(logger)
	cluster := newClusterUC()

	entities := []domain.Entity{
		{ID: "f1", Name: "Hilltop Farm", Lat: 51.50, Lon: -0.10},
		{ID: "f2", Name: "Riverside Farm", Lat: 51.51, Lon: -0.12},
		{ID: "far", Name: "Northern Croft", Lat: 57.48, Lon: -4.22},
		{ID: "broken", Name: "Unmapped Farm"},
	}
	view := domain.Viewport{West: -1, South: 51, East: 1, North: 52}

	locatable, unlocatable := quality.Screen(entities)
	require.Len(t, unlocatable, 1)

	visible := viewport.Filter(locatable, view)
	require.Len(t, visible, 2)

	zoomedOut := cluster.Clusters(visible, 10)
	require.Len(t, zoomedOut, 1)
	assert.Equal(t, 2, zoomedOut[0].Count)

	zoomedIn := cluster.Clusters(visible, 16)
	assert.Len(t, zoomedIn, 2)

	ez := cluster.ExpansionZoom(visible, 10)
	assert.Len(t, cluster.Clusters(visible, ez), 2)
}
