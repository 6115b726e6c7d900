package domain

// Point is a (lat, lon) pair in degrees.
type Point struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

// Viewport is the rectangular geographic area currently visible on the map.
// Produced by the map-rendering backend on every camera move.
//
// West > East means the viewport crosses the antimeridian and the longitude
// range wraps around ±180°.
type Viewport struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Normalize swaps south/north if they arrive inverted. Longitude order is
// preserved because west > east is meaningful (antimeridian wrap).
func (v Viewport) Normalize() Viewport {
	if v.South > v.North {
		v.South, v.North = v.North, v.South
	}
	return v
}

// WrapsAntimeridian reports whether the longitude range wraps around ±180°.
func (v Viewport) WrapsAntimeridian() bool {
	return v.West > v.East
}

// CameraState is the map camera: center coordinate and zoom level.
type CameraState struct {
	Center Point   `json:"center"`
	Zoom   float64 `json:"zoom"`
}
