package usecase

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/discovery-engine/internal/domain"
	"github.com/discovery-engine/internal/pkg/geo"
)

const defaultWalkingSpeedKmh = 3.0

// RankedEntity is an entity annotated with its distance from a reference
// point. Located is false for entities without a usable coordinate; their
// DistanceKm is meaningless.
type RankedEntity struct {
	Entity     domain.Entity `json:"entity"`
	DistanceKm float64       `json:"distance_km"`
	Located    bool          `json:"located"`
}

// RankUseCase sorts entities by distance from a reference point and
// estimates arrival times.
type RankUseCase struct {
	logger *zap.Logger
}

func NewRankUseCase(logger *zap.Logger) *RankUseCase {
	return &RankUseCase{logger: logger}
}

// Rank returns entities annotated with distance from origin, sorted
// ascending. Entities without a valid coordinate are excluded from the sort;
// when includeUnlocatable is set they are appended unsorted at the end.
func (uc *RankUseCase) Rank(entities []domain.Entity, origin domain.Point, includeUnlocatable bool) []RankedEntity {
	ranked := make([]RankedEntity, 0, len(entities))
	var unlocatable []RankedEntity

	for _, e := range entities {
		if !geo.IsValid(e.Point()) {
			if includeUnlocatable {
				unlocatable = append(unlocatable, RankedEntity{Entity: e})
			}
			continue
		}
		ranked = append(ranked, RankedEntity{
			Entity:     e,
			DistanceKm: geo.Distance(origin, e.Point()),
			Located:    true,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	return append(ranked, unlocatable...)
}

// EstimateArrivalMinutes estimates time to arrival in minutes by linear
// extrapolation. A missing or zero speed falls back to a walking pace of
// ~3 km/h. The result is always finite and never negative.
func (uc *RankUseCase) EstimateArrivalMinutes(distanceKm float64, speedMps *float64) float64 {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm <= 0 {
		return 0
	}

	speedKmh := defaultWalkingSpeedKmh
	if speedMps != nil && *speedMps > 0 && !math.IsNaN(*speedMps) && !math.IsInf(*speedMps, 0) {
		speedKmh = *speedMps * 3.6
	}

	minutes := distanceKm / speedKmh * 60
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes < 0 {
		return 0
	}
	return minutes
}
