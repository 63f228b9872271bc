package zonemap

import "time"

// Minimal structures for zone boundaries and the spatial check.
// Geometry supports GeoJSON Polygon/MultiPolygon only; rings follow the
// GeoJSON convention, first ring is the shell and the rest are holes.
// Kept light so the whole municipal zoning map stays resident in memory.

// Zone: one zoning district with its geometry.
type Zone struct {
	Sigla string
	Polys []Polygon
}

// Polygon: ring set with a precomputed bounding box for candidate filtering.
type Polygon struct {
	Rings [][]Point
	BBox  [4]float64 // minLon, minLat, maxLon, maxLat
}

// Point: WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Snapshot: read-only load result, shared by queries until the next swap.
type Snapshot struct {
	Zones   []Zone
	BuiltAt time.Time
}
