package geo

import (
	"math"

	"github.com/discovery-engine/internal/domain"
)

const (
	earthRadiusKm = 6371.0

	// kilometers per degree of latitude (and of longitude at the equator)
	kmPerDegree = 111.32
)

// Distance computes the great-circle distance between two points in
// kilometers using the haversine formula on a mean Earth radius.
func Distance(a, b domain.Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Bearing computes the initial bearing from a to b in degrees [0, 360).
func Bearing(a, b domain.Point) float64 {
	lat1 := toRad(a.Lat)
	lat2 := toRad(b.Lat)
	dLon := toRad(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Contains reports whether the viewport contains the point, bounds
// inclusive. A viewport with West > East wraps around the antimeridian and
// is treated as two disjoint longitude ranges.
func Contains(v domain.Viewport, p domain.Point) bool {
	v = v.Normalize()

	if p.Lat < v.South || p.Lat > v.North {
		return false
	}
	if v.WrapsAntimeridian() {
		return p.Lon >= v.West || p.Lon <= v.East
	}
	return p.Lon >= v.West && p.Lon <= v.East
}

// IsValid reports whether the point is a usable coordinate: finite, within
// range, and not exactly (0,0). The origin is rejected as a sentinel for
// missing data, consistent with upstream data quality.
func IsValid(p domain.Point) bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) ||
		math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) {
		return false
	}
	if p.Lat == 0 && p.Lon == 0 {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Destination extrapolates a point at distanceKm along bearingDeg from p
// using the equirectangular small-angle approximation at p's latitude. Good
// enough for short horizons; do not use for long geodesics.
func Destination(p domain.Point, bearingDeg, distanceKm float64) domain.Point {
	br := toRad(bearingDeg)

	dLat := distanceKm * math.Cos(br) / kmPerDegree
	lonScale := kmPerDegree * math.Cos(toRad(p.Lat))
	dLon := 0.0
	if lonScale != 0 {
		dLon = distanceKm * math.Sin(br) / lonScale
	}

	out := domain.Point{Lat: p.Lat + dLat, Lon: p.Lon + dLon}
	if out.Lon > 180 {
		out.Lon -= 360
	} else if out.Lon < -180 {
		out.Lon += 360
	}
	return out
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
