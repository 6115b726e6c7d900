package repository

import "github.com/discovery-engine/internal/domain"

// Projector converts coordinates to screen-space pixels at a zoom level.
// Normally supplied by the map-rendering backend so that clustering agrees
// with what is actually on screen; geo.WebMercator is a standalone default.
type Projector interface {
	Project(p domain.Point, zoom float64) (x, y float64)
}
