package usecase

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/domain/repository"
)

// ClusterConfig drives the zoom-dependent clustering behaviour. All values
// are explicit construction parameters; there is no global configuration.
type ClusterConfig struct {
	// RadiusByZoom maps integer zoom levels to a clustering radius in
	// screen pixels. Radii must be non-increasing with zoom: the
	// expansion-zoom binary search depends on separation being monotone.
	RadiusByZoom map[int]float64

	// DefaultRadiusPx is used for zoom levels absent from the table.
	DefaultRadiusPx float64

	// FullSeparationZoom disables clustering entirely at or above this
	// zoom; every entity renders individually.
	FullSeparationZoom float64

	// MaxZoom caps expansion-zoom results.
	MaxZoom float64
}

// DefaultClusterConfig mirrors typical marker-clustering defaults: 60px
// merge radius shrinking with zoom, markers fully separate from zoom 15.
func DefaultClusterConfig() ClusterConfig {
	return ClusterConfig{
		RadiusByZoom: map[int]float64{
			0: 80, 4: 70, 8: 60, 10: 50, 12: 40, 14: 30,
		},
		DefaultRadiusPx:    60,
		FullSeparationZoom: 15,
		MaxZoom:            20,
	}
}

// RadiusAtZoom resolves the clustering radius for a zoom level: the table
// entry at floor(zoom), else the nearest lower entry, else the default.
func (c ClusterConfig) RadiusAtZoom(zoom float64) float64 {
	z := int(math.Floor(zoom))
	for ; z >= 0; z-- {
		if r, ok := c.RadiusByZoom[z]; ok {
			return r
		}
	}
	return c.DefaultRadiusPx
}

// ClusterUseCase groups visible entities into zoom-dependent clusters.
//
// The algorithm is greedy grid-bucket aggregation in screen space: an
// approximation, not an exact nearest-neighbour union. Cluster membership
// can depend on input order near the radius boundary, which is acceptable
// for display-only aggregation and keeps recomputation cheap at
// viewport-change frequency.
type ClusterUseCase struct {
	cfg       ClusterConfig
	projector repository.Projector
	logger    *zap.Logger
}

func NewClusterUseCase(cfg ClusterConfig, projector repository.Projector, logger *zap.Logger) *ClusterUseCase {
	return &ClusterUseCase{
		cfg:       cfg,
		projector: projector,
		logger:    logger,
	}
}

type clusterBuilder struct {
	seedX, seedY float64
	members      []domain.Entity
}

type gridKey struct{ x, y int }

// Clusters groups the visible entities at the given zoom. Every visible
// entity belongs to exactly one cluster; a cluster of size 1 is a bare
// entity. The returned set fully replaces any previous one.
func (uc *ClusterUseCase) Clusters(visible []domain.Entity, zoom float64) []domain.Cluster {
	if len(visible) == 0 {
		return nil
	}

	if zoom >= uc.cfg.FullSeparationZoom {
		return uc.singletons(visible)
	}

	radius := uc.cfg.RadiusAtZoom(zoom)
	if radius <= 0 {
		return uc.singletons(visible)
	}

	grid := make(map[gridKey][]*clusterBuilder)
	builders := make([]*clusterBuilder, 0, len(visible))

	for _, e := range visible {
		x, y := uc.projector.Project(e.Point(), zoom)
		cell := gridKey{int(math.Floor(x / radius)), int(math.Floor(y / radius))}

		// Search the 3x3 neighbourhood for a cluster seed within radius.
		var target *clusterBuilder
		for dx := -1; dx <= 1 && target == nil; dx++ {
			for dy := -1; dy <= 1 && target == nil; dy++ {
				for _, b := range grid[gridKey{cell.x + dx, cell.y + dy}] {
					if math.Hypot(b.seedX-x, b.seedY-y) <= radius {
						target = b
						break
					}
				}
			}
		}

		if target == nil {
			target = &clusterBuilder{seedX: x, seedY: y}
			grid[cell] = append(grid[cell], target)
			builders = append(builders, target)
		}
		target.members = append(target.members, e)
	}

	clusters := make([]domain.Cluster, 0, len(builders))
	for _, b := range builders {
		clusters = append(clusters, buildCluster(b.members))
	}
	return clusters
}

// ExpansionZoom returns the minimum zoom at which every pair of members is
// farther apart in screen space than the clustering radius, i.e. the zoom to
// fly to so the cluster visually breaks apart. Found by binary search over
// integer zooms; members sharing a coordinate never separate, in which case
// the full-separation zoom is returned.
func (uc *ClusterUseCase) ExpansionZoom(members []domain.Entity, fromZoom float64) float64 {
	hi := math.Min(uc.cfg.FullSeparationZoom, uc.cfg.MaxZoom)
	if len(members) < 2 {
		return math.Min(fromZoom+1, hi)
	}

	lo := int(math.Floor(fromZoom)) + 1
	top := int(math.Ceil(hi))
	if lo > top {
		return hi
	}

	// separation is monotone in zoom as long as the radius table is
	// non-increasing, so binary search applies.
	lowest := top
	found := false
	for l, r := lo, top; l <= r; {
		mid := (l + r) / 2
		if uc.separated(members, float64(mid)) {
			lowest = mid
			found = true
			r = mid - 1
		} else {
			l = mid + 1
		}
	}

	if !found {
		return hi
	}
	return float64(lowest)
}

func (uc *ClusterUseCase) separated(members []domain.Entity, zoom float64) bool {
	radius := uc.cfg.RadiusAtZoom(zoom)
	if zoom >= uc.cfg.FullSeparationZoom {
		return true
	}

	type px struct{ x, y float64 }
	pixels := make([]px, len(members))
	for i, e := range members {
		x, y := uc.projector.Project(e.Point(), zoom)
		pixels[i] = px{x, y}
	}

	for i := 0; i < len(pixels); i++ {
		for j := i + 1; j < len(pixels); j++ {
			if math.Hypot(pixels[i].x-pixels[j].x, pixels[i].y-pixels[j].y) <= radius {
				return false
			}
		}
	}
	return true
}

func (uc *ClusterUseCase) singletons(visible []domain.Entity) []domain.Cluster {
	clusters := make([]domain.Cluster, 0, len(visible))
	for _, e := range visible {
		clusters = append(clusters, buildCluster([]domain.Entity{e}))
	}
	return clusters
}

// buildCluster computes the arithmetic-mean centroid. Not a geodesic
// centroid; fine at marker-clustering scales.
func buildCluster(members []domain.Entity) domain.Cluster {
	var sumLat, sumLon float64
	ids := make([]string, 0, len(members))
	for _, e := range members {
		sumLat += e.Lat
		sumLon += e.Lon
		ids = append(ids, e.ID)
	}
	sort.Strings(ids)

	n := float64(len(members))
	return domain.Cluster{
		Centroid:  domain.Point{Lat: sumLat / n, Lon: sumLon / n},
		Count:     len(members),
		MemberIDs: ids,
	}
}
