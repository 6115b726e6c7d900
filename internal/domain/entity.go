package domain

import "time"

// Entity is a point of interest in the directory. Entities are immutable
// inputs to the engine; their lifecycle is owned by an external source.
type Entity struct {
	ID         string   `json:"id" db:"id"`
	Name       string   `json:"name" db:"name"`
	Lat        float64  `json:"lat" db:"lat"`
	Lon        float64  `json:"lon" db:"lon"`
	Categories []string `json:"categories,omitempty" db:"-"`

	Description *string `json:"description,omitempty" db:"description"`
	Address     *string `json:"address,omitempty" db:"address"`
	Postcode    *string `json:"postcode,omitempty" db:"postcode"`
	Website     *string `json:"website,omitempty" db:"website"`
	Phone       *string `json:"phone,omitempty" db:"phone"`

	CreatedAt time.Time `json:"created_at,omitzero" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitzero" db:"updated_at"`
}

// Point returns the entity coordinate.
func (e Entity) Point() Point {
	return Point{Lat: e.Lat, Lon: e.Lon}
}

// Cluster is a transient aggregation of nearby entities at low zoom.
// Recomputed from scratch on every qualifying viewport/zoom change; a new
// cluster set always fully replaces the old one. A cluster of size 1 is a
// bare entity marker.
type Cluster struct {
	Centroid  Point    `json:"centroid"`
	Count     int      `json:"count"`
	MemberIDs []string `json:"member_ids"`
}
