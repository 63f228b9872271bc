// Package streets: nearest named way within a radius, from a GeoJSON export.
// Loading is fail-soft end to end: a missing or broken file yields an empty
// index and every query answers "no street", never an error. The street name
// is advisory context on the zone report, not part of the rule lookup.
package streets

import (
	"encoding/json"
	"math"
	"os"
	"strings"

	"zoning-api/internal/logger"
)

const metersPerDegLat = 111320.0

// Hit: the closest way and its distance from the query point.
type Hit struct {
	Name      string  `json:"name"`
	Type      string  `json:"type,omitempty"`
	DistanceM float64 `json:"distance_m"`
}

type way struct {
	name string
	typ  string
	pts  []point
	bbox [4]float64 // minLon, minLat, maxLon, maxLat
}

type point struct {
	lat float64
	lon float64
}

// Index: in-memory way list with bounding boxes for candidate filtering.
type Index struct {
	ways []way
}

// Load: build the index from a GeoJSON file. Accepts a FeatureCollection or a
// bare feature list; LineString and MultiLineString geometries only. Name
// comes from the name/nome/rua/logradouro property, first one present.
func Load(path string) *Index {
	ix := &Index{}
	b, err := os.ReadFile(path)
	if err != nil {
		logger.L().Info("streets_unavailable", "path", path, "err", err)
		return ix
	}
	var root any
	if err := json.Unmarshal(b, &root); err != nil {
		logger.L().Error("streets_parse_error", "path", path, "err", err)
		return ix
	}
	var feats []any
	switch v := root.(type) {
	case map[string]any:
		if arr, ok := v["features"].([]any); ok {
			feats = arr
		}
	case []any:
		feats = v
	}
	for _, it := range feats {
		f, ok := it.(map[string]any)
		if !ok {
			continue
		}
		props, _ := f["properties"].(map[string]any)
		name := firstStr(props, "name", "nome", "rua", "logradouro")
		typ := firstStr(props, "type", "tipo")
		g, ok := f["geometry"].(map[string]any)
		if !ok {
			continue
		}
		for _, pts := range lines(g) {
			if len(pts) < 2 {
				continue
			}
			ix.ways = append(ix.ways, way{
				name: strings.TrimSpace(name),
				typ:  strings.TrimSpace(typ),
				pts:  pts,
				bbox: bboxOf(pts),
			})
		}
	}
	logger.L().Info("streets_loaded", "path", path, "ways", len(ix.ways))
	return ix
}

// Count: number of indexed way segments, for the health payload.
func (ix *Index) Count() int { return len(ix.ways) }

// Nearest: closest way within radiusM meters of the coordinate, or ok=false.
// Candidates are prefiltered by a degree-padded bounding box; exact distance
// is point-to-segment on an equirectangular projection centered on the query
// latitude, accurate to well under a meter at municipal scale.
func (ix *Index) Nearest(lat, lon, radiusM float64) (*Hit, bool) {
	if radiusM <= 0 || len(ix.ways) == 0 {
		return nil, false
	}
	degLat := radiusM / metersPerDegLat
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.1 {
		cosLat = 0.1
	}
	degLon := radiusM / (metersPerDegLat * cosLat)
	qb := [4]float64{lon - degLon, lat - degLat, lon + degLon, lat + degLat}

	bestD := math.MaxFloat64
	bestIdx := -1
	for i := range ix.ways {
		w := &ix.ways[i]
		if !bboxOverlap(w.bbox, qb) {
			continue
		}
		d := w.distanceM(lat, lon, cosLat)
		if d < bestD {
			bestD = d
			bestIdx = i
		}
	}
	if bestIdx < 0 || bestD > radiusM {
		return nil, false
	}
	w := ix.ways[bestIdx]
	return &Hit{Name: w.name, Type: w.typ, DistanceM: bestD}, true
}

// distanceM: minimum distance from the point to any segment of the way,
// in meters on the local projection.
func (w *way) distanceM(lat, lon, cosLat float64) float64 {
	px := lon * metersPerDegLat * cosLat
	py := lat * metersPerDegLat
	best := math.MaxFloat64
	for i := 0; i+1 < len(w.pts); i++ {
		ax := w.pts[i].lon * metersPerDegLat * cosLat
		ay := w.pts[i].lat * metersPerDegLat
		bx := w.pts[i+1].lon * metersPerDegLat * cosLat
		by := w.pts[i+1].lat * metersPerDegLat
		d := segDist(px, py, ax, ay, bx, by)
		if d < best {
			best = d
		}
	}
	return best
}

func segDist(px, py, ax, ay, bx, by float64) float64 {
	dx := bx - ax
	dy := by - ay
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}

func lines(g map[string]any) [][]point {
	gt, _ := g["type"].(string)
	var out [][]point
	switch strings.ToLower(gt) {
	case "linestring":
		if coords, ok := g["coordinates"].([]any); ok {
			out = append(out, parseLine(coords))
		}
	case "multilinestring":
		if parts, ok := g["coordinates"].([]any); ok {
			for _, part := range parts {
				if coords, ok := part.([]any); ok {
					out = append(out, parseLine(coords))
				}
			}
		}
	}
	return out
}

func parseLine(coords []any) []point {
	var pts []point
	for _, p := range coords {
		if vv, ok := p.([]any); ok && len(vv) >= 2 {
			lon, okLon := asFloat(vv[0])
			lat, okLat := asFloat(vv[1])
			if okLon && okLat {
				pts = append(pts, point{lat: lat, lon: lon})
			}
		}
	}
	return pts
}

func bboxOf(pts []point) [4]float64 {
	b := [4]float64{180, 90, -180, -90}
	for _, p := range pts {
		if p.lon < b[0] {
			b[0] = p.lon
		}
		if p.lat < b[1] {
			b[1] = p.lat
		}
		if p.lon > b[2] {
			b[2] = p.lon
		}
		if p.lat > b[3] {
			b[3] = p.lat
		}
	}
	return b
}

func bboxOverlap(a, b [4]float64) bool {
	return a[0] <= b[2] && b[0] <= a[2] && a[1] <= b[3] && b[1] <= a[3]
}

func firstStr(m map[string]any, keys ...string) string {
	if m == nil {
		return ""
	}
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
